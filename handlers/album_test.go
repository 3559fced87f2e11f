package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"stashbin/config"
	"stashbin/db"
	"stashbin/models"
	"stashbin/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) {
	t.Helper()
	var err error
	db.Instance, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.Instance.AutoMigrate(
		&storage.Bucket{},
		&models.User{},
		&models.Grant{},
		&models.Album{},
		&models.File{},
		&models.AlbumShare{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
}

// seedAlbum creates a user, a disk bucket, an album and one file per
// name, with sizes and creation times increasing in slice order
func seedAlbum(t *testing.T, sortOrder string, names []string) (models.User, models.Album) {
	t.Helper()
	bucket := storage.Bucket{Name: "test", StorageType: storage.StorageTypeFile, Path: t.TempDir()}
	if err := db.Instance.Create(&bucket).Error; err != nil {
		t.Fatalf("create bucket: %v", err)
	}
	user := models.User{Name: "tester", Email: "tester@example.com", APIKey: "key-tester", BucketID: &bucket.ID}
	if err := db.Instance.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	album := models.Album{UUID: "a-" + sortOrder, UserID: user.ID, Name: "Test album", SortOrder: sortOrder}
	if err := db.Instance.Create(&album).Error; err != nil {
		t.Fatalf("create album: %v", err)
	}
	for i, name := range names {
		file := models.File{
			UUID:      "f-" + strconv.Itoa(i),
			UserID:    user.ID,
			AlbumID:   &album.ID,
			BucketID:  bucket.ID,
			CreatedAt: int64(1000 + i),
			Name:      name,
			Original:  name,
			Size:      int64((i + 1) * 100),
			MimeType:  "application/octet-stream",
		}
		if err := db.Instance.Create(&file).Error; err != nil {
			t.Fatalf("create file %s: %v", name, err)
		}
	}
	return user, album
}

func getAlbum(t *testing.T, user *models.User, uuid, query string) (*httptest.ResponseRecorder, AlbumGetResponse) {
	t.Helper()
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/album/"+uuid+query, nil)
	c.Params = gin.Params{{Key: "uuid", Value: uuid}}
	AlbumGet(c, user)

	response := AlbumGetResponse{}
	if recorder.Code == http.StatusOK {
		if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return recorder, response
}

func fileNames(files []FileInfo) []string {
	names := []string{}
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names
}

func TestAlbumGet_NotOwner(t *testing.T) {
	setupTestDB(t)
	_, album := seedAlbum(t, "", []string{"a.bin"})
	stranger := models.User{Name: "stranger", Email: "stranger@example.com", APIKey: "key-stranger"}
	if err := db.Instance.Create(&stranger).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	recorder, _ := getAlbum(t, &stranger, album.UUID, "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's album, got %d", recorder.Code)
	}
}

func TestAlbumGet_UnknownUUID(t *testing.T) {
	setupTestDB(t)
	user, _ := seedAlbum(t, "", []string{"a.bin"})
	recorder, _ := getAlbum(t, &user, "no-such-album", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown album, got %d", recorder.Code)
	}
}

func TestAlbumGet_SortOrder(t *testing.T) {
	setupTestDB(t)
	user, album := seedAlbum(t, "name:asc", []string{"c.bin", "a.bin", "b.bin"})
	recorder, response := getAlbum(t, &user, album.UUID, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if response.Message != "Successfully retrieved album" {
		t.Errorf("unexpected message: %s", response.Message)
	}
	if response.SortOrder != "name:asc" {
		t.Errorf("unexpected sortOrder: %s", response.SortOrder)
	}
	got := fileNames(response.Files)
	want := []string{"a.bin", "b.bin", "c.bin"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("wrong order: got %v, want %v", got, want)
		}
	}
}

func TestAlbumGet_MalformedSortOrderFallsBack(t *testing.T) {
	setupTestDB(t)
	savedDefault := config.DEFAULT_SORT_ORDER
	config.DEFAULT_SORT_ORDER = "size:desc"
	defer func() { config.DEFAULT_SORT_ORDER = savedDefault }()

	// Sizes increase in slice order, so size:desc reverses it
	user, album := seedAlbum(t, "sideways:up", []string{"a.bin", "b.bin", "c.bin"})
	recorder, response := getAlbum(t, &user, album.UUID, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	got := fileNames(response.Files)
	want := []string{"c.bin", "b.bin", "a.bin"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("fallback order wrong: got %v, want %v", got, want)
		}
	}
}

func TestAlbumGet_Pagination(t *testing.T) {
	setupTestDB(t)
	user, album := seedAlbum(t, "name:asc", []string{"a.bin", "b.bin", "c.bin", "d.bin", "e.bin"})

	recorder, response := getAlbum(t, &user, album.UUID, "?page=2&limit=2")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	// Count reflects the whole album, not the page
	if response.Count != 5 {
		t.Errorf("expected count 5, got %d", response.Count)
	}
	got := fileNames(response.Files)
	want := []string{"c.bin", "d.bin"}
	if len(got) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("wrong page window: got %v, want %v", got, want)
		}
	}

	// Out-of-range page is empty but still a 200 with the full count
	recorder, response = getAlbum(t, &user, album.UUID, "?page=4&limit=2")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if response.Count != 5 || len(response.Files) != 0 {
		t.Errorf("expected count 5 and no files, got count %d and %v", response.Count, fileNames(response.Files))
	}
}

func TestAlbumGet_PublicLinks(t *testing.T) {
	setupTestDB(t)
	savedBase := config.BASE_URL
	config.BASE_URL = "https://stash.example.com"
	defer func() { config.BASE_URL = savedBase }()

	user, album := seedAlbum(t, "", []string{"a.bin"})
	recorder, response := getAlbum(t, &user, album.UUID, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if len(response.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(response.Files))
	}
	want := "https://stash.example.com/f/a.bin"
	if response.Files[0].Link != want {
		t.Errorf("link = %s, want %s", response.Files[0].Link, want)
	}
}

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		in        PageRequest
		wantPage  int
		wantLimit int
		wantSkip  int
	}{
		{"defaults", PageRequest{}, 1, 50, 0},
		{"negative page", PageRequest{Page: -3, Limit: 10}, 1, 10, 0},
		{"limit too large", PageRequest{Page: 2, Limit: 9999}, 2, 500, 500},
		{"regular", PageRequest{Page: 3, Limit: 20}, 3, 20, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.in
			r.Normalize()
			if r.Page != tt.wantPage || r.Limit != tt.wantLimit || r.Skip() != tt.wantSkip {
				t.Errorf("got page=%d limit=%d skip=%d, want page=%d limit=%d skip=%d",
					r.Page, r.Limit, r.Skip(), tt.wantPage, tt.wantLimit, tt.wantSkip)
			}
		})
	}
}

func shareAlbum(t *testing.T, user *models.User, album *models.Album) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/album/"+album.UUID+"/share", nil)
	c.Params = gin.Params{{Key: "uuid", Value: album.UUID}}
	AlbumShare(c, user)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	response := map[string]string{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return response["path"]
}

func TestAlbumShare_TokenReused(t *testing.T) {
	setupTestDB(t)
	user, album := seedAlbum(t, "", []string{"a.bin"})

	first := shareAlbum(t, &user, &album)
	second := shareAlbum(t, &user, &album)
	if first == "" || first != second {
		t.Errorf("expected a stable share path, got %q then %q", first, second)
	}
}

func TestAlbumShare_ExpiredNotReused(t *testing.T) {
	setupTestDB(t)
	user, album := seedAlbum(t, "", []string{"a.bin"})
	expired := models.AlbumShare{
		UserID:    user.ID,
		AlbumID:   album.ID,
		Token:     "dead-token",
		ExpiresAt: time.Now().Unix() - 3600,
	}
	if err := db.Instance.Create(&expired).Error; err != nil {
		t.Fatalf("create expired share: %v", err)
	}

	path := shareAlbum(t, &user, &album)
	if path == "/s/dead-token" {
		t.Fatal("expired share token was handed out again")
	}
	// The replacement must actually work
	share := models.AlbumShare{}
	if err := db.Instance.First(&share, "token = ?", strings.TrimPrefix(path, "/s/")).Error; err != nil {
		t.Fatalf("replacement share not stored: %v", err)
	}
	if share.Expired() {
		t.Error("replacement share is already expired")
	}
}

func TestAlbumDelete_DetachesFilesAndRemovesShares(t *testing.T) {
	setupTestDB(t)
	user, album := seedAlbum(t, "", []string{"a.bin"})
	share := models.AlbumShare{UserID: user.ID, AlbumID: album.ID, Token: "tok"}
	if err := db.Instance.Create(&share).Error; err != nil {
		t.Fatalf("create share: %v", err)
	}

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/album/"+album.UUID+"/delete", nil)
	c.Params = gin.Params{{Key: "uuid", Value: album.UUID}}
	AlbumDelete(c, &user)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var shareCount int64
	db.Instance.Model(&models.AlbumShare{}).Where("album_id = ?", album.ID).Count(&shareCount)
	if shareCount != 0 {
		t.Errorf("expected no shares left, got %d", shareCount)
	}
	file := models.File{}
	if err := db.Instance.First(&file, "name = ?", "a.bin").Error; err != nil {
		t.Fatalf("file should survive album deletion: %v", err)
	}
	if file.AlbumID != nil {
		t.Errorf("file still attached to album %d", *file.AlbumID)
	}
}
