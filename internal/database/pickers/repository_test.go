package pickers

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/damlink/damlink/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_pickers_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.PickerToken{},
		&entities.ImportedRecord{},
		&entities.WindowPreference{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_IssueAndAuthorize(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	token, err := repo.IssueToken(1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := repo.Authorized(1, token)
	require.NoError(t, err)
	assert.True(t, ok)

	// Wrong user, wrong token, empty token.
	ok, err = repo.Authorized(2, token)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Authorized(1, "deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Authorized(1, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_MergeImported_AppendsInOrder(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	token, err := repo.IssueToken(1)
	require.NoError(t, err)

	require.NoError(t, repo.MergeImported(token, []uint{3, 1}))
	require.NoError(t, repo.MergeImported(token, []uint{7}))

	ids, err := repo.Imported(token)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1, 7}, ids)
}

func TestRepository_MergeImported_KeepsDuplicates(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	token, err := repo.IssueToken(1)
	require.NoError(t, err)

	require.NoError(t, repo.MergeImported(token, []uint{5}))
	require.NoError(t, repo.MergeImported(token, []uint{5}))

	ids, err := repo.Imported(token)
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 5}, ids)
}

func TestRepository_MergeImported_Empty(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.MergeImported("whatever", nil))
}

func TestRepository_WindowPreferences(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, _, ok, err := repo.WindowPreferences(1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SaveWindowPreferences(1, 800, 700))

	w, h, ok, err := repo.WindowPreferences(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 800, w)
	assert.Equal(t, 700, h)

	// Upsert path.
	require.NoError(t, repo.SaveWindowPreferences(1, 900, 750))
	w, h, _, err = repo.WindowPreferences(1)
	require.NoError(t, err)
	assert.Equal(t, 900, w)
	assert.Equal(t, 750, h)
}

func TestRepository_DeleteTokensOlderThan(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	token, err := repo.IssueToken(1)
	require.NoError(t, err)
	require.NoError(t, repo.MergeImported(token, []uint{1, 2}))

	// Cutoff in the past keeps the fresh token.
	deleted, err := repo.DeleteTokensOlderThan(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = repo.DeleteTokensOlderThan(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	ok, err := repo.Authorized(1, token)
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := repo.Imported(token)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
