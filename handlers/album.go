package handlers

import (
	"net/http"
	"stashbin/config"
	"stashbin/db"
	"stashbin/models"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

type AlbumInfo struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	IsNsfw    bool   `json:"isNsfw"`
	CreatedAt int64  `json:"createdAt"`
	Count     int64  `json:"count"`
}

type AlbumCreateRequest struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	NSFW        bool   `form:"nsfw"`
}

type AlbumSaveRequest struct {
	Name        *string `form:"name"`
	Description *string `form:"description"`
	NSFW        *bool   `form:"nsfw"`
	SortOrder   *string `form:"sort_order"`
}

type AlbumFileRequest struct {
	FileUUID string `form:"file" binding:"required"`
}

type AlbumShareRequest struct {
	ExpiresIn int64 `form:"expires_in"` // seconds, 0 means no expiration
}

// AlbumGetResponse is the fixed envelope of GET /album/:uuid
type AlbumGetResponse struct {
	Message     string     `json:"message"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsNsfw      bool       `json:"isNsfw"`
	SortOrder   string     `json:"sortOrder"`
	Count       int64      `json:"count"`
	Files       []FileInfo `json:"files"`
}

// AlbumGet returns the album's metadata plus one page of its files with
// resolved public links. Only the owner can see the album - anything
// else is a plain not-found.
func AlbumGet(c *gin.Context, user *models.User) {
	album, found := models.AlbumByUUID(c.Param("uuid"), user.ID)
	if !found {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	r := PageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	r.Normalize()
	order := models.ResolveSortOrder(album.SortOrder)

	var count int64
	if db.Instance.Model(&models.File{}).Where("album_id = ?", album.ID).Count(&count).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	files := []models.File{}
	err := db.Instance.Preload("Bucket").
		Where("album_id = ?", album.ID).
		Order(order).
		Offset(r.Skip()).
		Limit(r.Limit).
		Find(&files).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	c.JSON(http.StatusOK, AlbumGetResponse{
		Message:     "Successfully retrieved album",
		Name:        album.Name,
		Description: album.Description,
		IsNsfw:      album.NSFW,
		SortOrder:   album.SortOrder,
		Count:       count,
		Files:       LoadFileInfos(files),
	})
}

func AlbumList(c *gin.Context, user *models.User) {
	rows, err := db.Instance.
		Table("albums").
		Select("albums.uuid, albums.name, albums.nsfw, albums.created_at, count(files.id)").
		Joins("left join files on files.album_id = albums.id").
		Where("albums.user_id = ?", user.ID).
		Group("albums.id, albums.uuid, albums.name, albums.nsfw, albums.created_at").
		Order("albums.created_at DESC").
		Rows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	defer rows.Close()
	result := []AlbumInfo{}
	for rows.Next() {
		albumInfo := AlbumInfo{}
		if err = rows.Scan(&albumInfo.UUID, &albumInfo.Name, &albumInfo.IsNsfw, &albumInfo.CreatedAt, &albumInfo.Count); err != nil {
			c.JSON(http.StatusInternalServerError, DBError2Response)
			return
		}
		result = append(result, albumInfo)
	}
	c.JSON(http.StatusOK, result)
}

func AlbumCreate(c *gin.Context, user *models.User) {
	r := AlbumCreateRequest{}
	err := c.ShouldBindWith(&r, binding.Form)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	album := models.Album{
		UUID:        uuid.NewString(),
		UserID:      user.ID,
		Name:        r.Name,
		Description: r.Description,
		NSFW:        r.NSFW,
	}
	result := db.Instance.Create(&album)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, Response{result.Error.Error()})
		return
	}
	c.JSON(http.StatusOK, AlbumInfo{
		UUID:      album.UUID,
		Name:      album.Name,
		IsNsfw:    album.NSFW,
		CreatedAt: album.CreatedAt,
	})
}

func AlbumSave(c *gin.Context, user *models.User) {
	album, found := models.AlbumByUUID(c.Param("uuid"), user.ID)
	if !found {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	r := AlbumSaveRequest{}
	err := c.ShouldBindWith(&r, binding.Form)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.Name != nil {
		album.Name = *r.Name
	}
	if r.Description != nil {
		album.Description = *r.Description
	}
	if r.NSFW != nil {
		album.NSFW = *r.NSFW
	}
	if r.SortOrder != nil {
		// Stored as-is; malformed values silently fall back at read time
		album.SortOrder = *r.SortOrder
	}
	if db.Instance.Save(&album).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

// AlbumDelete removes the album. Its files are detached, not deleted.
func AlbumDelete(c *gin.Context, user *models.User) {
	album, found := models.AlbumByUUID(c.Param("uuid"), user.ID)
	if !found {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	if db.Instance.Model(&models.File{}).Where("album_id = ?", album.ID).Update("album_id", nil).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	if db.Instance.Delete(&models.AlbumShare{}, "album_id = ?", album.ID).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	if db.Instance.Delete(&album).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError3Response)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

// AlbumAddFile puts one of the caller's files into the album
func AlbumAddFile(c *gin.Context, user *models.User) {
	album, found := models.AlbumByUUID(c.Param("uuid"), user.ID)
	if !found {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	r := AlbumFileRequest{}
	err := c.ShouldBindWith(&r, binding.Form)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	result := db.Instance.Model(&models.File{}).
		Where("uuid = ? AND user_id = ?", r.FileUUID, user.ID).
		Update("album_id", album.ID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	if result.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

func AlbumRemoveFile(c *gin.Context, user *models.User) {
	album, found := models.AlbumByUUID(c.Param("uuid"), user.ID)
	if !found {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	r := AlbumFileRequest{}
	err := c.ShouldBindWith(&r, binding.Form)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	result := db.Instance.Model(&models.File{}).
		Where("uuid = ? AND user_id = ? AND album_id = ?", r.FileUUID, user.ID, album.ID).
		Update("album_id", nil)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	if result.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

// AlbumShare creates (or returns the existing) public link for the album
func AlbumShare(c *gin.Context, user *models.User) {
	album, found := models.AlbumByUUID(c.Param("uuid"), user.ID)
	if !found {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	r := AlbumShareRequest{}
	_ = c.ShouldBindWith(&r, binding.Form)

	// Reuse only a still-valid share; an expired token stays dead and a
	// fresh one is created in its place
	shareInfo := models.NewAlbumShare(user.ID, album.ID, r.ExpiresIn)
	result := db.Instance.
		Where("user_id = ? AND album_id = ? AND (expires_at = 0 OR expires_at > ?)",
			user.ID, album.ID, time.Now().Unix()).
		FirstOrCreate(&shareInfo)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title": "[ " + album.Name + " ]",
		"path":  "/s/" + shareInfo.Token,
		"url":   config.BASE_URL + "/s/" + shareInfo.Token,
	})
}
