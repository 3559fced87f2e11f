package models

import (
	"stashbin/db"
	"stashbin/storage"
	"stashbin/utils"
)

type User struct {
	ID          uint64         `gorm:"primaryKey"`
	CreatedAt   int64
	UpdatedAt   int64
	CreatedByID *uint64
	CreatedBy   *User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Name        string         `gorm:"type:varchar(100)"`
	Email       string         `gorm:"type:varchar(150);index:uniq_email,unique"`
	Password    string         `gorm:"type:varchar(128)"`
	PassSalt    string         `gorm:"type:varchar(200)"`
	APIKey      string         `gorm:"type:varchar(100);index:uniq_api_key,unique"`
	Grants      []Grant        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	BucketID    *uint64
	Bucket      storage.Bucket `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`

	// Settings
	Quota int64 `gorm:"not null"` // in MB
}

const saltSize = 60

func UserCreate(name, email, plainTextPassword string) (u User, err error) {
	storage := storage.GetDefaultStorage()

	u.Email = email
	u.Name = name
	u.PassSalt = utils.RandSalt(saltSize)
	u.Password = utils.Sha512String(plainTextPassword + u.PassSalt)
	u.APIKey = utils.Rand16BytesToBase62() + utils.Rand8BytesToBase62()
	if storage != nil {
		u.BucketID = &storage.GetBucket().ID
	}
	return u, db.Instance.Create(&u).Error
}

func (u *User) SetPassword(plainTextPassword string) {
	u.PassSalt = utils.RandSalt(saltSize)
	u.Password = utils.Sha512String(plainTextPassword + u.PassSalt)
}

// NewAPIKey rotates the user's API key, invalidating the old one
func (u *User) NewAPIKey() string {
	u.APIKey = utils.Rand16BytesToBase62() + utils.Rand8BytesToBase62()
	db.Instance.Model(u).Update("api_key", u.APIKey)
	return u.APIKey
}

func UserLogin(email, plainTextPassword string) (u User, success bool) {
	result := db.Instance.Preload("Grants").First(&u, "email = ?", email)
	if result.Error != nil {
		return User{}, false
	}
	if u.Password != utils.Sha512String(plainTextPassword+u.PassSalt) {
		return User{}, false
	}
	return u, true
}

func UserByAPIKey(key string) (u User, success bool) {
	if key == "" {
		return User{}, false
	}
	result := db.Instance.Preload("Grants").First(&u, "api_key = ?", key)
	if result.Error != nil {
		return User{}, false
	}
	return u, true
}

// FirstAdminUser returns the oldest admin account. Watch folder ingests
// are attributed to it.
func FirstAdminUser() (u User, found bool) {
	err := db.Instance.
		Joins("join grants on grants.user_id = users.id and grants.permission = ?", PermissionAdmin).
		Preload("Bucket").
		Order("users.id ASC").
		First(&u).Error
	if err != nil || u.ID == 0 {
		return User{}, false
	}
	return u, true
}

func (u *User) GetPermissions() []int {
	permissions := []int{}
	for _, grant := range u.Grants {
		permissions = append(permissions, int(grant.Permission))
	}
	return permissions
}

func (u *User) HasPermission(required Permission) bool {
	for _, permission := range u.Grants {
		if permission.Permission == required {
			return true
		}
	}
	return false
}

func (u *User) HasPermissions(required []Permission) bool {
	for _, permission := range required {
		if !u.HasPermission(permission) {
			return false
		}
	}
	return true
}

// GetUsage returns the usage for the current bucket (only)
func (u *User) GetUsage() (used, quota int64) {
	result := int64(-1)
	if err := db.Instance.Raw("select ifnull(sum(size+thumb_size), 0) from files where user_id=? and bucket_id=?", u.ID, u.BucketID).Scan(&result).Error; err != nil {
		return -1, 0
	}
	return result / 1024 / 1024, u.Quota
}
