package web

import (
	"net/http"
	"stashbin/db"
	"stashbin/handlers"
	"stashbin/models"

	"github.com/gin-gonic/gin"
)

func loadShare(c *gin.Context) (share models.AlbumShare, ok bool) {
	token := c.Param("token")
	err := db.Instance.Preload("Album").First(&share, "token = ?", token).Error
	if err != nil || share.Expired() {
		c.JSON(http.StatusNotFound, handlers.NotFoundResponse)
		return share, false
	}
	return share, true
}

// AlbumView returns the shared album and a page of its files, using the
// same envelope and ordering rules as the owner's album view
func AlbumView(c *gin.Context) {
	share, ok := loadShare(c)
	if !ok {
		return
	}
	album := share.Album
	r := handlers.PageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, handlers.Response{Error: err.Error()})
		return
	}
	r.Normalize()
	order := models.ResolveSortOrder(album.SortOrder)

	var count int64
	if db.Instance.Model(&models.File{}).Where("album_id = ?", album.ID).Count(&count).Error != nil {
		c.JSON(http.StatusInternalServerError, handlers.DBError1Response)
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
		c.JSON(http.StatusInternalServerError, handlers.DBError2Response)
		return
	}
	c.JSON(http.StatusOK, handlers.AlbumGetResponse{
		Message:     "Successfully retrieved album",
		Name:        album.Name,
		Description: album.Description,
		IsNsfw:      album.NSFW,
		SortOrder:   album.SortOrder,
		Count:       count,
		Files:       handlers.LoadFileInfos(files),
	})
}

// AlbumFileView serves one file of a shared album by uuid
func AlbumFileView(c *gin.Context) {
	share, ok := loadShare(c)
	if !ok {
		return
	}
	file := models.File{}
	result := db.Instance.Joins("Bucket").
		Where("files.uuid = ? AND files.album_id = ?", c.Query("uuid"), share.AlbumID).
		Find(&file)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, handlers.DBError1Response)
		return
	}
	if result.RowsAffected != 1 || file.ID == 0 {
		c.JSON(http.StatusNotFound, handlers.NotFoundResponse)
		return
	}
	ServeStoredFile(c, &file)
}
