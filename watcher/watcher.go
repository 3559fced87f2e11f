package watcher

import (
	"log"
	"mime"
	"os"
	"path/filepath"
	"stashbin/config"
	"stashbin/db"
	"stashbin/handlers"
	"stashbin/models"
	"stashbin/processing"
	"stashbin/storage"
	"stashbin/utils"
	"strings"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Files younger than this may still be written to and are skipped
// until the next scan
const settleTime = 5 * time.Second

var inFlight = cmap.New[bool]()

// Start polls WATCH_DIR and ingests anything dropped there into the
// default bucket, attributed to the first admin user. Does nothing if
// no watch directory is configured.
func Start() {
	if config.WATCH_DIR == "" {
		return
	}
	log.Printf("Watching %s for new files", config.WATCH_DIR)
	for {
		scanOnce()
		time.Sleep(time.Duration(config.WATCH_INTERVAL_SEC) * time.Second)
	}
}

func scanOnce() {
	entries, err := os.ReadDir(config.WATCH_DIR)
	if err != nil {
		log.Printf("Watch dir error: %v", err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !inFlight.SetIfAbsent(name, true) {
			continue
		}
		if err := ingest(name); err != nil {
			log.Printf("Ingest %s: %v", name, err)
		}
		inFlight.Remove(name)
	}
}

func ingest(name string) error {
	sourcePath := filepath.Join(config.WATCH_DIR, name)
	info, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}
	if time.Since(info.ModTime()) < settleTime {
		// Probably still being copied in
		return nil
	}
	owner, found := models.FirstAdminUser()
	if !found || owner.BucketID == nil {
		return nil
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	hash, err := utils.Sha256Reader(source)
	source.Close()
	if err != nil {
		return err
	}
	// Same content already ingested or uploaded by the owner?
	existing := models.File{}
	result := db.Instance.Where("user_id = ? AND hash = ?", owner.ID, hash).Limit(1).Find(&existing)
	if result.Error == nil && existing.ID != 0 {
		log.Printf("Ingest %s: duplicate of %s, removing", name, existing.UUID)
		return os.Remove(sourcePath)
	}

	file := models.File{
		UUID:     uuid.NewString(),
		UserID:   owner.ID,
		BucketID: *owner.BucketID,
		Name:     name,
		Original: name,
		Hash:     hash,
		Size:     info.Size(),
		MimeType: mimeTypeFor(name),
		Watched:  true,
	}
	if db.Instance.Create(&file).Error != nil {
		// Most likely a stored-name collision - retry once with a prefix
		file.Name = utils.Rand8BytesToBase62() + "_" + name
		if err = db.Instance.Create(&file).Error; err != nil {
			return err
		}
	}
	if err = db.Instance.Preload("Bucket").First(&file).Error; err != nil {
		return err
	}

	store := storage.StorageFrom(&file.Bucket)
	if store == nil {
		db.Instance.Delete(&file)
		return nil
	}
	source, err = os.Open(sourcePath)
	if err != nil {
		db.Instance.Delete(&file)
		return err
	}
	size, err := store.Save(file.GetPath(), source)
	source.Close()
	if err != nil {
		db.Instance.Delete(&file)
		return err
	}
	if err = store.UpdateRemoteFile(file.GetPath(), file.MimeType); err != nil {
		db.Instance.Delete(&file)
		return err
	}
	if file.Bucket.IsS3() {
		store.ReleaseLocalFile(file.GetPath())
	}
	file.Size = size
	if err = db.Instance.Updates(&file).Error; err != nil {
		return err
	}
	if file.IsImage() {
		processing.EnqueueThumb(file.ID)
	}
	handlers.NotifyUser(owner.ID, handlers.Event{
		Type: handlers.EventTypeIngest,
		File: handlers.LoadFileInfos([]models.File{file})[0],
	})
	log.Printf("Ingested %s as %s", name, file.UUID)
	return os.Remove(sourcePath)
}

func mimeTypeFor(name string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(name)); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}
