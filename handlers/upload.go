package handlers

import (
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"stashbin/config"
	"stashbin/db"
	"stashbin/models"
	"stashbin/processing"
	"stashbin/storage"
	"stashbin/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadResponse is the fixed envelope of POST /upload
type UploadResponse struct {
	Message string   `json:"message"`
	File    FileInfo `json:"file"`
}

// Upload stores one multipart file for the caller. Re-uploading content
// the user already has (same hash) returns the existing file instead of
// storing a second copy.
func Upload(c *gin.Context, user *models.User) {
	if user.BucketID == nil {
		c.JSON(http.StatusInternalServerError, Response{"no bucket assigned"})
		return
	}
	if user.Quota > 0 {
		used, _ := user.GetUsage()
		if used > user.Quota {
			c.JSON(http.StatusForbidden, Response{"Quota exceeded"})
			return
		}
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(config.MAX_UPLOAD_MB)<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
		return
	}
	defer src.Close()

	hash, err := utils.Sha256Reader(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
		return
	}
	if _, err = src.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
		return
	}

	// Same content already uploaded by this user?
	existing := models.File{}
	result := db.Instance.Preload("Bucket").Where("user_id = ? AND hash = ?", user.ID, hash).Limit(1).Find(&existing)
	if result.Error == nil && existing.ID != 0 {
		c.JSON(http.StatusOK, UploadResponse{
			Message: "File already uploaded",
			File:    LoadFileInfos([]models.File{existing})[0],
		})
		return
	}

	file := models.File{
		UUID:       uuid.NewString(),
		UserID:     user.ID,
		BucketID:   *user.BucketID,
		Name:       models.RandomFileName(fileHeader.Filename),
		Original:   fileHeader.Filename,
		Hash:       hash,
		UploaderIP: c.ClientIP(),
		Size:       fileHeader.Size,
		MimeType:   fileHeader.Header.Get("Content-Type"),
	}
	if file.MimeType == "" {
		// Guess the mime type from the extension
		file.MimeType = mime.TypeByExtension(filepath.Ext(fileHeader.Filename))
	}
	if albumUUID := c.PostForm("album"); albumUUID != "" {
		album, found := models.AlbumByUUID(albumUUID, user.ID)
		if !found {
			c.JSON(http.StatusNotFound, NotFoundResponse)
			return
		}
		file.AlbumID = &album.ID
	}
	if db.Instance.Create(&file).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	if db.Instance.Preload("Bucket").First(&file).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}

	store := storage.StorageFrom(&file.Bucket)
	if store == nil {
		c.JSON(http.StatusInternalServerError, Response{"storage unavailable"})
		return
	}
	size, err := store.Save(file.GetPath(), src)
	if err != nil {
		db.Instance.Delete(&file)
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
		return
	}
	if err = store.UpdateRemoteFile(file.GetPath(), file.MimeType); err != nil {
		log.Printf("File %s: remote upload error: %s", file.UUID, err.Error())
		db.Instance.Delete(&file)
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
		return
	}
	if file.Bucket.IsS3() {
		store.ReleaseLocalFile(file.GetPath())
	}
	file.Size = size
	if db.Instance.Updates(&file).Error != nil {
		c.JSON(http.StatusInternalServerError, DBError3Response)
		return
	}
	if file.IsImage() {
		processing.EnqueueThumb(file.ID)
	}
	info := LoadFileInfos([]models.File{file})[0]
	NotifyUser(user.ID, Event{Type: EventTypeUpload, File: info})
	c.JSON(http.StatusOK, UploadResponse{
		Message: "Successfully uploaded file",
		File:    info,
	})
}
