package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stashbin/db"
	"stashbin/models"

	"github.com/gin-gonic/gin"
)

func listFiles(t *testing.T, user *models.User, ifNoneMatch string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/files", nil)
	if ifNoneMatch != "" {
		c.Request.Header.Set("If-None-Match", ifNoneMatch)
	}
	FileList(c, user)
	// The gin engine flushes a body-less status after the handler chain;
	// calling the handler directly leaves it pending in the test writer.
	c.Writer.WriteHeaderNow()
	return recorder
}

func TestFileList_ETag(t *testing.T) {
	setupTestDB(t)
	user, _ := seedAlbum(t, "", []string{"a.bin", "b.bin"})

	recorder := listFiles(t, &user, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	etag := recorder.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	// Unchanged list revalidates
	recorder = listFiles(t, &user, etag)
	if recorder.Code != http.StatusNotModified {
		t.Fatalf("expected 304 for a matching ETag, got %d", recorder.Code)
	}
}

func TestFileList_ETagChangesOnDelete(t *testing.T) {
	setupTestDB(t)
	user, _ := seedAlbum(t, "", []string{"a.bin", "b.bin"})

	recorder := listFiles(t, &user, "")
	etag := recorder.Header().Get("ETag")

	// Hard-delete the older file; removing a non-newest row must still
	// invalidate cached listings
	if err := db.Instance.Delete(&models.File{}, "name = ?", "a.bin").Error; err != nil {
		t.Fatalf("delete file: %v", err)
	}
	recorder = listFiles(t, &user, etag)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 after a delete, got %d", recorder.Code)
	}
	if newTag := recorder.Header().Get("ETag"); newTag == etag {
		t.Errorf("ETag %q did not change after a delete", etag)
	}
	response := FileListResponse{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Count != 1 || len(response.Files) != 1 || response.Files[0].Name != "b.bin" {
		t.Errorf("expected only b.bin to remain, got count %d, files %v", response.Count, fileNames(response.Files))
	}
}
