package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/damlink/damlink/internal/auth"
	"github.com/damlink/damlink/internal/config"
	"github.com/damlink/damlink/internal/database"
	"github.com/damlink/damlink/internal/database/notices"
	"github.com/damlink/damlink/internal/database/pickers"
	"github.com/damlink/damlink/internal/database/records"
	"github.com/damlink/damlink/internal/fetcher"
	http_controllers "github.com/damlink/damlink/internal/http"
	"github.com/damlink/damlink/internal/pipeline"
	"github.com/damlink/damlink/internal/reconcile"
	"github.com/damlink/damlink/internal/scheduler"
	"github.com/damlink/damlink/internal/session"
	"github.com/damlink/damlink/internal/storage"
	"github.com/damlink/damlink/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting damlink v%s", version)

	if cfg.DAM.ServerURL == "" {
		log.Printf("WARNING: DAM server URL is not set. The picker launch URL will be empty. Set 'DAM_SERVER_URL' to enable.")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	recordsRepo := records.NewRepository(db.DB)
	noticesRepo := notices.NewRepository(db.DB)
	pickersRepo := pickers.NewRepository(db.DB)

	sessions := session.NewService(pickersRepo)

	// Binary store backing the imported files
	store, err := storage.NewDiskStore(cfg.Storage.Dir, cfg.Storage.Subdir, strings.TrimRight(cfg.HTTP.BaseURL, "/")+"/files")
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}
	log.Printf("Storing binaries under %s", store.BaseDir())

	languages := pipeline.EffectiveLanguages(cfg.Languages.Mapping, cfg.Languages.Enabled)
	if len(languages.HostOrder) == 0 {
		log.Printf("WARNING: Language mapping leaves no usable language. Imports will fail until 'LANGUAGE_MAPPING' covers an enabled language.")
	}

	translatable := len(cfg.Languages.Enabled) > 1
	reconciler := reconcile.New(recordsRepo, translatable, cfg.Languages.Current)

	importPipeline := pipeline.New(
		fetcher.NewClient(),
		store,
		recordsRepo,
		reconciler,
		noticesRepo,
		languages,
		cfg.DAM.Extensions,
	)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSweepOrphanBinariesQueue(recordsRepo, store.BaseDir()),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Nightly cleanup of expired picker tokens and orphaned binaries
	var cleanupScheduler *scheduler.TokenCleanupScheduler
	var cleanupCtxCancel context.CancelFunc
	if cfg.Cleanup.Enabled {
		var queue scheduler.SweepEnqueuer
		if taskClient != nil {
			queue = taskClient
		}
		cleanupScheduler = scheduler.NewTokenCleanupScheduler(pickersRepo, queue, cfg.Cleanup)

		var cleanupCtx context.Context
		cleanupCtx, cleanupCtxCancel = context.WithCancel(context.Background())
		if err := cleanupScheduler.Start(cleanupCtx); err != nil {
			log.Fatalf("Failed to start cleanup scheduler: %v", err)
		}
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. Run 'damlink create-user' to create one.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Records:        recordsRepo,
		Notices:        noticesRepo,
		Sessions:       sessions,
		Pipeline:       importPipeline,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		AuthConfig:     cfg.Auth,
		DAM:            cfg.DAM,
		BaseURL:        strings.TrimRight(cfg.HTTP.BaseURL, "/"),
		StorageDir:     store.BaseDir(),
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
			cleanupCtxCancel()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
