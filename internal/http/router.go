package http

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/damlink/damlink/internal/auth"
	"github.com/damlink/damlink/internal/handshake"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// The import endpoint is called from the picker window on the DAM
	// origin; nothing else may reach it cross-origin.
	if cfg.DAM.ServerURL != "" {
		if origin, err := handshake.OriginOf(cfg.DAM.ServerURL); err == nil {
			router.Use(cors.New(cors.Config{
				AllowOrigins:     []string{origin},
				AllowMethods:     []string{"POST", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type"},
				MaxAge:           12 * time.Hour,
				AllowCredentials: false,
			}))
		} else {
			log.Printf("Skipping CORS setup, DAM server URL is unusable: %v", err)
		}
	}

	// Apply session middleware if enabled
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Next()
		})
	}

	// Stored binaries, so the URLs the import response reports resolve.
	if cfg.StorageDir != "" {
		router.Static("/files", cfg.StorageDir)
	}

	// Register auth routes if auth is enabled
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		auth.NewAuthController(cfg.AuthService, cfg.SessionManager).RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	importController := NewImportController(cfg.Pipeline, cfg.Sessions, cfg.SessionManager)
	pickerController := NewPickerController(cfg.Sessions, cfg.Records, cfg.DAM, cfg.BaseURL)
	noticesController := NewNoticesController(cfg.Notices)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Import endpoint, driven by the picker window
	router.POST("/import/:token", importController.Import)

	// Picker session endpoints, driven by the host page
	router.GET("/picker/launch", pickerController.Launch)
	router.GET("/picker/imported", pickerController.Imported)

	// Operator notices
	router.GET("/notices", noticesController.List)
	router.DELETE("/notices", noticesController.Clear)

	return router
}
