package handlers

import (
	"log"
	"net/http"
	"stashbin/db"
	"stashbin/models"
	"stashbin/storage"

	"github.com/gin-gonic/gin"
)

type FileInfo struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Original  string `json:"original"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimetype"`
	CreatedAt int64  `json:"createdAt"`
	IsWatched bool   `json:"isWatched"`
	Link      string `json:"link"`
}

// FileListResponse is the fixed envelope of GET /files
type FileListResponse struct {
	Message string     `json:"message"`
	Count   int64      `json:"count"`
	Files   []FileInfo `json:"files"`
}

// LoadFileInfos maps file rows to their public DTO form.
// NOTE: Bucket must be preloaded on every row
func LoadFileInfos(files []models.File) []FileInfo {
	result := []FileInfo{}
	for i := range files {
		file := &files[i]
		result = append(result, FileInfo{
			UUID:      file.UUID,
			Name:      file.Name,
			Original:  file.Original,
			Size:      file.Size,
			MimeType:  file.MimeType,
			CreatedAt: file.CreatedAt,
			IsWatched: file.Watched,
			Link:      file.PublicLink(),
		})
	}
	return result
}

// FileList returns the caller's files, newest first
func FileList(c *gin.Context, user *models.User) {
	tx := db.Instance.
		Table("files").
		Select("ifnull(max(updated_at), 0), count(*)").
		Where("user_id = ?", user.ID)
	if c.Query("reload") != "1" && isNotModified(c, tx) {
		return
	}
	r := PageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	r.Normalize()

	var count int64
	if db.Instance.Model(&models.File{}).Where("user_id = ?", user.ID).Count(&count).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	files := []models.File{}
	err := db.Instance.Preload("Bucket").
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Offset(r.Skip()).
		Limit(r.Limit).
		Find(&files).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	c.JSON(http.StatusOK, FileListResponse{
		Message: "Successfully retrieved files",
		Count:   count,
		Files:   LoadFileInfos(files),
	})
}

// FileDelete removes the caller's file - both the DB record and the
// stored object (and its thumbnail, if any)
func FileDelete(c *gin.Context, user *models.User) {
	file := models.File{}
	result := db.Instance.Joins("Bucket").
		Where("files.uuid = ? AND files.user_id = ?", c.Param("uuid"), user.ID).
		Find(&file)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	if result.RowsAffected != 1 || file.ID == 0 {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	if db.Instance.Delete(&file).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	store := storage.StorageFrom(&file.Bucket)
	if store == nil {
		log.Printf("File %s: storage is nil", file.UUID)
		c.JSON(http.StatusInternalServerError, Response{"storage unavailable"})
		return
	}
	if err := store.Delete(file.GetPath()); err != nil {
		log.Printf("File %s: delete error: %s", file.UUID, err.Error())
	}
	if err := store.DeleteRemoteFile(file.GetPath()); err != nil {
		log.Printf("File %s: remote delete error: %s", file.UUID, err.Error())
	}
	if file.ThumbSize > 0 {
		if err := store.Delete(file.GetThumbPath()); err != nil {
			log.Printf("File %s: thumb delete error: %s", file.UUID, err.Error())
		}
		_ = store.DeleteRemoteFile(file.GetThumbPath())
	}
	c.JSON(http.StatusOK, OKResponse)
}
