// Package pickers provides database operations for picker session tokens,
// the per-token list of imported records, and per-user window preferences.
package pickers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/damlink/damlink/internal/entities"
)

// Repository handles all picker session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new pickers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IssueToken mints a fresh picker token for the user and adds it to the
// user's issued set.
func (r *Repository) IssueToken(userID uint) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	record := &entities.PickerToken{
		UserID: userID,
		Token:  token,
	}
	if err := r.db.Create(record).Error; err != nil {
		return "", err
	}

	return token, nil
}

// Authorized reports whether the token belongs to the user's issued set.
func (r *Repository) Authorized(userID uint, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&entities.PickerToken{}).
		Where("user_id = ? AND token = ?", userID, token).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TokenOwner resolves a token to the user it was issued to. ok is false for
// unknown tokens.
func (r *Repository) TokenOwner(token string) (userID uint, ok bool, err error) {
	if token == "" {
		return 0, false, nil
	}
	var row entities.PickerToken
	err = r.db.Where("token = ?", token).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return row.UserID, true, nil
}

// Imported returns the ordered sequence of record ids imported under the
// token.
func (r *Repository) Imported(token string) ([]uint, error) {
	var rows []entities.ImportedRecord
	err := r.db.Where("token = ?", token).Order("position ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RecordID)
	}
	return ids, nil
}

// MergeImported appends newIDs after the token's existing sequence. Existing
// ids are not deduplicated; re-imports simply extend the list.
func (r *Repository) MergeImported(token string, newIDs []uint) error {
	if len(newIDs) == 0 {
		return nil
	}

	var maxPos int
	err := r.db.Model(&entities.ImportedRecord{}).
		Where("token = ?", token).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPos).Error
	if err != nil {
		return err
	}

	rows := make([]entities.ImportedRecord, 0, len(newIDs))
	for i, id := range newIDs {
		rows = append(rows, entities.ImportedRecord{
			Token:    token,
			RecordID: id,
			Position: maxPos + i + 1,
		})
	}
	return r.db.Create(&rows).Error
}

// WindowPreferences returns the user's saved picker window size, or ok=false
// when none was saved yet.
func (r *Repository) WindowPreferences(userID uint) (width, height int, ok bool, err error) {
	var pref entities.WindowPreference
	err = r.db.Where("user_id = ?", userID).First(&pref).Error
	if err == gorm.ErrRecordNotFound {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return pref.Width, pref.Height, true, nil
}

// SaveWindowPreferences upserts the user's picker window size.
func (r *Repository) SaveWindowPreferences(userID uint, width, height int) error {
	var pref entities.WindowPreference
	result := r.db.Where("user_id = ?", userID).First(&pref)

	if result.Error == gorm.ErrRecordNotFound {
		pref = entities.WindowPreference{
			UserID: userID,
			Width:  width,
			Height: height,
		}
		return r.db.Create(&pref).Error
	} else if result.Error != nil {
		return result.Error
	}

	pref.Width = width
	pref.Height = height
	return r.db.Save(&pref).Error
}

// DeleteTokensOlderThan prunes picker tokens issued before the cutoff,
// together with their imported-record lists. Returns how many tokens went.
func (r *Repository) DeleteTokensOlderThan(cutoff time.Time) (int64, error) {
	var stale []entities.PickerToken
	if err := r.db.Where("created_at < ?", cutoff).Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tokens := make([]string, 0, len(stale))
	for _, t := range stale {
		tokens = append(tokens, t.Token)
	}

	if err := r.db.Where("token IN ?", tokens).Delete(&entities.ImportedRecord{}).Error; err != nil {
		return 0, err
	}
	result := r.db.Where("token IN ?", tokens).Delete(&entities.PickerToken{})
	return result.RowsAffected, result.Error
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
