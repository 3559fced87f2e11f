package models

import (
	"stashbin/config"
	"stashbin/storage"
	"testing"
)

func TestFile_GetPath(t *testing.T) {
	tests := []struct {
		name string
		file File
		want string
	}{
		{
			name: "uploaded file",
			file: File{UserID: 3, Name: "h7Jq0weT.jpg"},
			want: "user/3/h7Jq0weT.jpg",
		},
		{
			name: "watch folder file",
			file: File{UserID: 1, Name: "scan-0042.pdf", Watched: true},
			want: "watch/scan-0042.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.file.GetPath(); got != tt.want {
				t.Errorf("File.GetPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFile_PublicLink(t *testing.T) {
	oldBase := config.BASE_URL
	oldPublic := config.PUBLIC_STORAGE_URL
	defer func() {
		config.BASE_URL = oldBase
		config.PUBLIC_STORAGE_URL = oldPublic
	}()
	config.BASE_URL = "https://files.example.com"
	config.PUBLIC_STORAGE_URL = "https://cdn.example.com"

	tests := []struct {
		name string
		file File
		want string
	}{
		{
			name: "local disk file",
			file: File{UserID: 3, Name: "h7Jq0weT.jpg", Bucket: storage.Bucket{StorageType: storage.StorageTypeFile}},
			want: "https://files.example.com/f/h7Jq0weT.jpg",
		},
		{
			name: "s3 file behind public url",
			file: File{UserID: 3, Name: "h7Jq0weT.jpg", Bucket: storage.Bucket{StorageType: storage.StorageTypeS3}},
			want: "https://cdn.example.com/user/3/h7Jq0weT.jpg",
		},
		{
			name: "s3 file with bucket prefix",
			file: File{UserID: 3, Name: "h7Jq0weT.jpg", Bucket: storage.Bucket{StorageType: storage.StorageTypeS3, Path: "stash/"}},
			want: "https://cdn.example.com/stash/user/3/h7Jq0weT.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.file.PublicLink(); got != tt.want {
				t.Errorf("File.PublicLink() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRandomFileName(t *testing.T) {
	name := RandomFileName("My Photo.JPG")
	if len(name) < 5 {
		t.Fatalf("name too short: %q", name)
	}
	if got := name[len(name)-4:]; got != ".jpg" {
		t.Errorf("extension = %q, want .jpg", got)
	}
	if RandomFileName("a.png") == RandomFileName("a.png") {
		t.Error("two random names should not collide")
	}
}
