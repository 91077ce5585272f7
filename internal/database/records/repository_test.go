package records

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/damlink/damlink/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_records_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.ContentRecord{}, &entities.RecordTranslation{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateAndFindByExternalUID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	record := &entities.ContentRecord{
		ExternalUID: "dam-42",
		FileURI:     "dam/cat.jpg",
		Translations: []entities.RecordTranslation{
			{Langcode: "en", Name: "Cat", ImageAlt: "Cat"},
			{Langcode: "de", Name: "Katze", ImageAlt: "Katze"},
		},
	}
	require.NoError(t, repo.Create(record))
	require.NotZero(t, record.ID)

	found, err := repo.FindByExternalUID("dam-42")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "dam/cat.jpg", found[0].FileURI)
	assert.Len(t, found[0].Translations, 2)

	none, err := repo.FindByExternalUID("dam-999")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_Save_UpdatesTranslations(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	record := &entities.ContentRecord{
		ExternalUID: "dam-42",
		FileURI:     "dam/cat.jpg",
		Translations: []entities.RecordTranslation{
			{Langcode: "en", Name: "Cat"},
		},
	}
	require.NoError(t, repo.Create(record))

	record.FileURI = "dam/cat_0.jpg"
	record.Revision = 2
	record.Translations[0].Name = "Better cat"
	require.NoError(t, repo.Save(record))

	got, err := repo.GetByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, "dam/cat_0.jpg", got.FileURI)
	assert.Equal(t, 2, got.Revision)
	require.Len(t, got.Translations, 1)
	assert.Equal(t, "Better cat", got.Translations[0].Name)
}

func TestRepository_AllExternalUIDs(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(&entities.ContentRecord{ExternalUID: "a", FileURI: "a.jpg"}))
	require.NoError(t, repo.Create(&entities.ContentRecord{ExternalUID: "b", FileURI: "b.jpg"}))

	uids, err := repo.AllExternalUIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, uids)

	uris, err := repo.AllFileURIs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.jpg", "b.jpg"}, uris)
}

func TestRepository_GetByIDs(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	a := &entities.ContentRecord{ExternalUID: "a"}
	b := &entities.ContentRecord{ExternalUID: "b"}
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))

	got, err := repo.GetByIDs([]uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.GetByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
