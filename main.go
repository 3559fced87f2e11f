package main

import (
	"log"
	"strings"
	"time"

	"stashbin/auth"
	"stashbin/config"
	"stashbin/db"
	"stashbin/handlers"
	"stashbin/models"
	"stashbin/processing"
	"stashbin/storage"
	"stashbin/utils"
	"stashbin/watcher"
	"stashbin/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName     = "token"
	sessionExpirationTime = 365 * 86400 // 1 year
)

func main() {
	db.Init()
	storage.Init()
	models.Init()
	processing.Init()
	go processing.StartProcessing()
	go watcher.Start()

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "PUT", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", auth.APIKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))

	cookieStore := gormsessions.NewStore(db.Instance, true, []byte(config.SESSION_KEY))
	cookieStore.Options(sessions.Options{MaxAge: sessionExpirationTime})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/f/", "/s/"})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, individual end-points can override that
	// Custom Auth Router
	authRouter := &auth.Router{Base: router}
	// User handlers
	router.POST("/user/login", handlers.UserLogin)
	authRouter.POST("/user/logout", handlers.UserLogout)
	authRouter.GET("/user/status", handlers.UserGetStatus)
	authRouter.POST("/user/apikey", handlers.UserNewAPIKey)
	authRouter.POST("/user/save", handlers.UserSave, models.PermissionAdmin)
	authRouter.GET("/user/list", handlers.UserList, models.PermissionAdmin)
	// Bucket handlers
	authRouter.GET("/bucket/list", handlers.BucketList, models.PermissionAdmin)
	authRouter.POST("/bucket/save", handlers.BucketSave, models.PermissionAdmin)
	// Album handlers
	authRouter.GET("/albums", handlers.AlbumList)
	authRouter.POST("/albums", handlers.AlbumCreate, models.PermissionUpload)
	authRouter.GET("/album/:uuid", handlers.AlbumGet)
	authRouter.POST("/album/:uuid/save", handlers.AlbumSave, models.PermissionUpload)
	authRouter.POST("/album/:uuid/delete", handlers.AlbumDelete, models.PermissionUpload)
	authRouter.POST("/album/:uuid/add", handlers.AlbumAddFile, models.PermissionUpload)
	authRouter.POST("/album/:uuid/remove", handlers.AlbumRemoveFile, models.PermissionUpload)
	authRouter.POST("/album/:uuid/share", handlers.AlbumShare)
	// File handlers
	authRouter.POST("/upload", handlers.Upload, models.PermissionUpload)
	authRouter.GET("/files", handlers.FileList)
	authRouter.POST("/file/:uuid/delete", handlers.FileDelete, models.PermissionUpload)
	// Event push
	authRouter.GET("/events", handlers.WebSocket)

	/*
	 *	Public interface (no session required)
	 */
	publicCache := (&utils.CacheRouter{CacheTime: utils.CachePublicFile}).Handler()
	router.GET("/f/:name", publicCache, web.FileView)
	router.GET("/s/:token", web.AlbumView)
	router.GET("/s/:token/file", publicCache, web.AlbumFileView)
	// Misc
	router.GET("/robots.txt", web.DisallowRobots)

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
