package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Response struct {
	Error string `json:"error"`
}

const (
	etagHeader = "ETag"

	defaultPageLimit = 50
	maxPageLimit     = 500
)

var (
	// Predefined errors
	OKResponse       = Response{}
	NopeResponse     = Response{"nope"}
	NotFoundResponse = Response{"not found"}
	DBError1Response = Response{"DB Error 1"}
	DBError2Response = Response{"DB Error 2"}
	DBError3Response = Response{"DB Error 3"}
)

// PageRequest is the common pagination input: 1-based page, limit
// defaulting to 50
type PageRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize clamps the pagination window; out-of-range values are
// corrected rather than rejected
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultPageLimit
	}
	if r.Limit > maxPageLimit {
		r.Limit = maxPageLimit
	}
}

// Skip returns the offset corresponding to the requested page
func (r *PageRequest) Skip() int {
	return (r.Page - 1) * r.Limit
}

// isNotModified expects tx to select two columns: the latest update time
// and the row count. Both go into the ETag - rows are hard-deleted, so
// the max(updated_at) alone would not change when an older row goes away.
func isNotModified(c *gin.Context, tx *gorm.DB) bool {
	// Set the current ETag in all cases
	row := tx.Row()
	lastUpdatedAt := uint64(0)
	total := uint64(0)
	if row.Scan(&lastUpdatedAt, &total) != nil {
		return false
	}
	etag := strconv.FormatUint(lastUpdatedAt, 10) + "-" + strconv.FormatUint(total, 10)
	c.Header("cache-control", "private, max-age=1")
	c.Header(etagHeader, etag)

	if c.Request.Header.Get("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
