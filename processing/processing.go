package processing

import (
	"bytes"
	"log"
	"stashbin/config"
	"stashbin/db"
	"stashbin/models"
	"stashbin/storage"
	"stashbin/utils"
	"time"

	"github.com/alitto/pond/v2"
)

// Thumbnails are always scaled to fit this box
const thumbBound = 1280

var pool pond.Pool

func Init() {
	pool = pond.NewPool(config.THUMB_WORKERS)
}

// EnqueueThumb schedules thumbnail creation for the given file
func EnqueueThumb(fileID uint64) {
	pool.Submit(func() {
		if err := createThumb(fileID); err != nil {
			log.Printf("Thumbnail for file %d: %v", fileID, err)
		}
	})
}

func createThumb(fileID uint64) error {
	file := models.File{ID: fileID}
	if err := db.Instance.Preload("Bucket").First(&file).Error; err != nil {
		return err
	}
	if !file.IsImage() || file.ThumbSize != 0 {
		return nil
	}
	store := storage.StorageFrom(&file.Bucket)
	if store == nil {
		// Mark as tried so the scan loop doesn't pick it up forever
		file.ThumbSize = -1
		db.Instance.Updates(&file)
		return nil
	}
	if err := store.EnsureLocalFile(file.GetPath()); err != nil {
		return err
	}
	defer store.ReleaseLocalFile(file.GetPath())

	var original bytes.Buffer
	if _, err := store.Load(file.GetPath(), &original); err != nil {
		return err
	}
	var thumb bytes.Buffer
	thumbInfo, err := utils.CreateThumb(thumbBound, &original, &thumb)
	if err != nil {
		// Not decodable after all - don't retry
		file.ThumbSize = -1
		db.Instance.Updates(&file)
		return err
	}
	if _, err = store.Save(file.GetThumbPath(), &thumb); err != nil {
		return err
	}
	if err = store.UpdateRemoteFile(file.GetThumbPath(), "image/jpeg"); err != nil {
		return err
	}
	if file.Bucket.IsS3() {
		store.ReleaseLocalFile(file.GetThumbPath())
	}
	file.ThumbSize = thumbInfo.ThumbSize
	return db.Instance.Updates(&file).Error
}

// StartProcessing periodically picks up image files that still have no
// thumbnail (e.g. watch folder ingests from before a restart)
func StartProcessing() {
	lastProcessedID := uint64(0)
	for {
		files := []models.File{}
		db.Instance.
			Where("thumb_size = 0 AND size > 0 AND id > ? AND mime_type LIKE 'image/%'", lastProcessedID).
			Order("id ASC").Limit(20).Find(&files)
		if len(files) == 0 {
			// Nothing to process...
			time.Sleep(30 * time.Second)
			lastProcessedID = 0
			continue
		}
		group := pool.NewGroup()
		for _, file := range files {
			id := file.ID
			if id > lastProcessedID {
				lastProcessedID = id
			}
			group.Submit(func() {
				if err := createThumb(id); err != nil {
					log.Printf("Thumbnail for file %d: %v", id, err)
				}
			})
		}
		group.Wait()
	}
}
