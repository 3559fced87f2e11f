package models

import (
	"path/filepath"
	"stashbin/config"
	"stashbin/db"
	"stashbin/storage"
	"stashbin/utils"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	presignViewURLFor      = time.Hour * 24 * 7
	presignValidAtLeastFor = time.Minute * 30
)

type File struct {
	ID        uint64  `gorm:"primaryKey"`
	UUID      string  `gorm:"type:varchar(36);index:uniq_file_uuid,unique;not null"`
	UserID    uint64  `gorm:"not null;index:user_file_created,priority:1;index:user_file_hash,priority:1"`
	User      User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AlbumID   *uint64 `gorm:"index"` // can be null
	Album     *Album  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	BucketID  uint64
	Bucket    storage.Bucket `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	CreatedAt int64          `gorm:"index:user_file_created,priority:2"`
	UpdatedAt int64
	// Name is the stored (randomized) file name, also used in public links
	Name string `gorm:"type:varchar(300);index:uniq_file_name,unique;not null"`
	// Original is the file name the client uploaded with
	Original   string `gorm:"type:varchar(300)"`
	Hash       string `gorm:"type:varchar(64);index:user_file_hash,priority:2"`
	UploaderIP string `gorm:"type:varchar(45)"`
	Size       int64
	ThumbSize  int64
	MimeType   string `gorm:"type:varchar(100)"`
	// Watched marks files ingested from the watch folder rather than uploaded
	Watched        bool `gorm:"not null;default:false"`
	PresignedUntil int64
	PresignedURL   string `gorm:"type:varchar(2000)"`
}

// GetPath returns the object path of the file inside its bucket. For example:
//   - user/3/h7Jq0weT.jpg
//   - watch/scan-0042.pdf
func (f *File) GetPath() string {
	if f.Watched {
		return "watch/" + f.Name
	}
	return "user/" + strconv.FormatUint(f.UserID, 10) + "/" + f.Name
}

// GetThumbPath returns the path of the JPEG thumbnail (images only)
func (f *File) GetThumbPath() string {
	return "thumb/" + f.UUID + ".jpg"
}

func (f *File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}

func (f *File) BeforeSave(tx *gorm.DB) (err error) {
	// Restrict the characters in Name
	var name strings.Builder
	for i, c := range f.Name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			(c == '.' && i > 0) || (c == '-') || (c == '_') {

			name.WriteRune(c)
		} else {
			// Replace all other characters with '_' (underscore)
			name.WriteString("_")
		}
	}
	f.Name = name.String()
	return
}

// NOTE: f.Bucket must be preloaded
func (f *File) GetS3DownloadURL() (string, int64) {
	// Valid at least for another 30 minutes?
	if f.PresignedURL == "" || f.PresignedUntil < time.Now().Add(presignValidAtLeastFor).Unix() {
		// Need to sign again..
		f.PresignedURL = f.Bucket.CreateS3DownloadURI(f.GetPath(), presignViewURLFor)
		f.PresignedUntil = time.Now().Add(presignViewURLFor).Unix()
		db.Instance.Updates(f)
	}
	return f.PresignedURL, f.PresignedUntil
}

// PublicLink returns the externally visible URL for the file, depending on
// its storage backend.
// NOTE: f.Bucket must be preloaded
func (f *File) PublicLink() string {
	if f.Bucket.IsS3() {
		if config.PUBLIC_STORAGE_URL != "" {
			return strings.TrimSuffix(config.PUBLIC_STORAGE_URL, "/") + "/" + f.Bucket.GetRemotePath(f.GetPath())
		}
		url, _ := f.GetS3DownloadURL()
		return url
	}
	return config.BASE_URL + "/f/" + f.Name
}

// RandomFileName returns a new stored name keeping the original extension
func RandomFileName(original string) string {
	return utils.Rand8BytesToBase62() + strings.ToLower(filepath.Ext(original))
}
