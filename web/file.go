package web

import (
	"net/http"
	"stashbin/config"
	"stashbin/db"
	"stashbin/handlers"
	"stashbin/models"
	"stashbin/storage"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// FileView serves a locally stored file by its public (stored) name.
// S3-backed files redirect to their public or presigned URL instead.
func FileView(c *gin.Context) {
	file := models.File{}
	result := db.Instance.Joins("Bucket").
		Where("files.name = ?", c.Param("name")).
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

// ServeStoredFile streams the file from its bucket, or redirects when
// the bucket is S3-backed.
// NOTE: file.Bucket must be preloaded
func ServeStoredFile(c *gin.Context, file *models.File) {
	store := storage.StorageFrom(&file.Bucket)
	if store == nil {
		c.JSON(http.StatusInternalServerError, handlers.Response{Error: "storage unavailable"})
		return
	}
	if file.Bucket.IsS3() {
		if config.PUBLIC_STORAGE_URL != "" {
			c.Redirect(http.StatusFound, file.PublicLink())
			return
		}
		url, expires := file.GetS3DownloadURL()
		maxAge := expires - time.Now().Unix()
		c.Header("cache-control", "public, max-age="+strconv.FormatInt(maxAge, 10))
		c.Redirect(http.StatusFound, url)
		return
	}
	c.Header("content-type", file.MimeType)
	if c.Query("download") == "1" {
		c.Header("content-disposition", "attachment; filename=\""+file.Original+"\"")
	}
	// Handles Byte-ranges too
	store.Serve(file.GetPath(), c.Request, c.Writer)
}

// DisallowRobots keeps crawlers away from public links
func DisallowRobots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /\n")
}
