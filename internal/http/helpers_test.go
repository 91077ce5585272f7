package http

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/damlink/damlink/internal/config"
	"github.com/damlink/damlink/internal/database"
	"github.com/damlink/damlink/internal/database/notices"
	"github.com/damlink/damlink/internal/database/pickers"
	"github.com/damlink/damlink/internal/database/records"
	"github.com/damlink/damlink/internal/entities"
	"github.com/damlink/damlink/internal/fetcher"
	"github.com/damlink/damlink/internal/pipeline"
	"github.com/damlink/damlink/internal/reconcile"
	"github.com/damlink/damlink/internal/session"
	"github.com/damlink/damlink/internal/storage"
)

const testBaseURL = "http://host.test"

type testEnv struct {
	router   *gin.Engine
	records  *records.Repository
	notices  *notices.Repository
	sessions *session.Service
	filesDir string
}

func setupTestEnv(t *testing.T, damServerURL string) (*testEnv, func()) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.ContentRecord{},
		&entities.RecordTranslation{},
		&entities.PickerToken{},
		&entities.ImportedRecord{},
		&entities.WindowPreference{},
		&entities.Notice{},
	))

	filesDir := t.TempDir()
	store, err := storage.NewDiskStore(filesDir, "dam", testBaseURL+"/files")
	require.NoError(t, err)

	recordsRepo := records.NewRepository(db)
	noticesRepo := notices.NewRepository(db)
	sessions := session.NewService(pickers.NewRepository(db))

	dam := config.DAM{
		ServerURL:  damServerURL,
		Extensions: []string{"jpg", "png", "tif"},
	}

	languages := pipeline.EffectiveLanguages(map[string]string{"en": "en-US"}, []string{"en"})
	p := pipeline.New(
		fetcher.NewClient(),
		store,
		recordsRepo,
		reconcile.New(recordsRepo, true, "en"),
		noticesRepo,
		languages,
		dam.Extensions,
	)

	router := NewRouter(RouterConfig{
		Database:   &database.Database{DB: db},
		Records:    recordsRepo,
		Notices:    noticesRepo,
		Sessions:   sessions,
		Pipeline:   p,
		DAM:        dam,
		BaseURL:    testBaseURL,
		StorageDir: filesDir,
		Version:    "test",
	})

	env := &testEnv{
		router:   router,
		records:  recordsRepo,
		notices:  noticesRepo,
		sessions: sessions,
		filesDir: filesDir,
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return env, cleanup
}
