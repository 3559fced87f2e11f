package config

import (
	"os"
	"strconv"
	"strings"
)

var (
	// TLS_DOMAINS enables Let's Encrypt for the given domains, e.g. "files.example.com"
	TLS_DOMAINS = ""
	// MYSQL_DSN - MySQL will be used if this is set
	MYSQL_DSN = ""
	// SQLITE_FILE - SQLite will be used if MYSQL_DSN is not configured and this is set
	SQLITE_FILE  = ""
	BIND_ADDRESS = "0.0.0.0:8080"
	// BASE_URL is the public base URL of this server, e.g. "https://files.example.com".
	// Empty means relative links
	BASE_URL = ""
	// PUBLIC_STORAGE_URL is the public base URL for S3-stored files (e.g. CDN in
	// front of the bucket). If empty, presigned URLs are used
	PUBLIC_STORAGE_URL = ""
	// DEFAULT_SORT_ORDER is the global default file ordering inside albums, "field:direction"
	DEFAULT_SORT_ORDER = "createdAt:desc"
	// DEFAULT_BUCKET_DIR is used for creating an initial disk bucket on first start
	DEFAULT_BUCKET_DIR = ""
	// TMP_DIR is local scratch space for S3-backed objects
	TMP_DIR = "/tmp"
	// WATCH_DIR - if set, files dropped in this directory are ingested automatically
	WATCH_DIR          = ""
	WATCH_INTERVAL_SEC = 30
	MAX_UPLOAD_MB      = 512
	THUMB_WORKERS      = 2
	DEBUG_MODE         = true
	SESSION_KEY        = "change me in production"
)

func init() {
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("BASE_URL", &BASE_URL)
	readEnvString("PUBLIC_STORAGE_URL", &PUBLIC_STORAGE_URL)
	readEnvString("DEFAULT_SORT_ORDER", &DEFAULT_SORT_ORDER)
	readEnvString("DEFAULT_BUCKET_DIR", &DEFAULT_BUCKET_DIR)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvString("WATCH_DIR", &WATCH_DIR)
	readEnvInt("WATCH_INTERVAL_SEC", &WATCH_INTERVAL_SEC)
	readEnvInt("MAX_UPLOAD_MB", &MAX_UPLOAD_MB)
	readEnvInt("THUMB_WORKERS", &THUMB_WORKERS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("SESSION_KEY", &SESSION_KEY)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
