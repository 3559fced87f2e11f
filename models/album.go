package models

import "stashbin/db"

type Album struct {
	ID          uint64 `gorm:"primaryKey"`
	UUID        string `gorm:"type:varchar(36);index:uniq_album_uuid,unique;not null"`
	UserID      uint64 `gorm:"not null;index:user_album_created,priority:1;"`
	User        User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   int64  `gorm:"index:user_album_created,priority:2"`
	UpdatedAt   int64
	Name        string `gorm:"type:varchar(300)"`
	Description string `gorm:"type:text"`
	NSFW        bool   `gorm:"not null;default:false"`
	// SortOrder overrides the global default file ordering, "field:direction"
	SortOrder string `gorm:"type:varchar(50)"`
	Files     []File
}

// AlbumByUUID loads the album with the given external id, but only if it
// is owned by the given user. Returns false otherwise.
func AlbumByUUID(uuid string, userID uint64) (album Album, found bool) {
	if uuid == "" {
		return Album{}, false
	}
	result := db.Instance.First(&album, "uuid = ? AND user_id = ?", uuid, userID)
	if result.Error != nil {
		return Album{}, false
	}
	return album, true
}
