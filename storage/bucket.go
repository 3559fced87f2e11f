package storage

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
)

const (
	StorageLocationUser  = "/user"
	StorageLocationWatch = "/watch"
)

type Bucket struct {
	ID          uint64      `gorm:"primaryKey" json:"id"`
	CreatedAt   int64       `json:"-"`
	UpdatedAt   int64       `json:"-"`
	Name        string      `gorm:"type:varchar(200)" json:"name" binding:"required"`
	StorageType StorageType `json:"type"`
	// Path on a drive for disk buckets or a key prefix for S3 buckets
	Path          string `gorm:"type:varchar(300)" json:"path"`
	S3Key         string `gorm:"type:varchar(200)" json:"s3key"`
	S3Secret      string `gorm:"type:varchar(200)" json:"s3secret"`
	Endpoint      string `gorm:"type:varchar(300)" json:"endpoint"`
	Region        string `gorm:"type:varchar(50)" json:"region"`
	SSEEncryption string `gorm:"type:varchar(50)" json:"sse_encryption"`
}

func (b *Bucket) IsS3() bool {
	return b.StorageType == StorageTypeS3
}

// TryInit pre-creates the on-disk locations for disk buckets
func (b *Bucket) TryInit() error {
	if b.StorageType != StorageTypeFile {
		return nil
	}
	if b.Path == "" {
		return errors.New("empty bucket path")
	}
	if err := os.MkdirAll(b.Path+StorageLocationUser, 0777); err != nil {
		return err
	}
	return os.MkdirAll(b.Path+StorageLocationWatch, 0777)
}

// GetRemotePath returns the object key for the given logical path,
// honouring the bucket's key prefix
func (b *Bucket) GetRemotePath(path string) string {
	if b.Path == "" {
		return path
	}
	return strings.Trim(b.Path, "/") + "/" + path
}

func (b *Bucket) CreateSVC() *s3.S3 {
	awsConfig := aws.Config{
		Credentials: credentials.NewStaticCredentials(b.S3Key, b.S3Secret, ""),
		Region:      aws.String(b.Region),
	}
	if b.Endpoint != "" {
		awsConfig.Endpoint = aws.String(b.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	return s3.New(session.Must(session.NewSession(&awsConfig)))
}

func (b *Bucket) CreateS3UploadURI(path string) string {
	svc := b.CreateSVC()
	req, _ := svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket: &b.Name,
		Key:    aws.String(b.GetRemotePath(path)),
	})
	uri, err := req.Presign(15 * time.Minute)
	if err != nil {
		return ""
	}
	return uri
}

func (b *Bucket) CreateS3DownloadURI(path string, validFor time.Duration) string {
	svc := b.CreateSVC()
	req, _ := svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: &b.Name,
		Key:    aws.String(b.GetRemotePath(path)),
	})
	uri, err := req.Presign(validFor)
	if err != nil {
		return ""
	}
	return uri
}
