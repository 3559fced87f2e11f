package models

import (
	"log"
	"stashbin/db"
	"stashbin/utils"
)

func Init() {
	db.Instance.AutoMigrate(&User{})
	db.Instance.AutoMigrate(&Grant{})
	db.Instance.AutoMigrate(&Album{})
	db.Instance.AutoMigrate(&File{})
	db.Instance.AutoMigrate(&AlbumShare{})

	ensureAdminUser()
}

// ensureAdminUser creates the initial admin account on an empty database
// and logs its generated password once
func ensureAdminUser() {
	var count int64
	if err := db.Instance.Table("users").Count(&count).Error; err != nil {
		panic(err)
	}
	if count > 0 {
		return
	}
	password := utils.Rand8BytesToBase62()
	user, err := UserCreate("admin", "admin", password)
	if err != nil {
		panic(err)
	}
	for _, permission := range []Permission{PermissionAdmin, PermissionUpload} {
		grant := Grant{
			GrantorID:  user.ID,
			UserID:     user.ID,
			Permission: permission,
		}
		if err = db.Instance.Create(&grant).Error; err != nil {
			panic(err)
		}
	}
	log.Printf("Created initial admin user, login: admin, password: %s", password)
}
