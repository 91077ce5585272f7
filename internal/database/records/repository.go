// Package records provides database operations for imported content records
// and their translations.
package records

import (
	"gorm.io/gorm"

	"github.com/damlink/damlink/internal/entities"
)

// Repository handles all content record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new records repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByExternalUID returns every record carrying the given DAM UID, oldest
// first, translations preloaded. Normally there is one or none; extra rows
// are a tolerated anomaly handled by the caller.
func (r *Repository) FindByExternalUID(uid string) ([]entities.ContentRecord, error) {
	var records []entities.ContentRecord
	err := r.db.Preload("Translations").
		Where("external_uid = ?", uid).
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// Create persists a new record with its translations.
func (r *Repository) Create(record *entities.ContentRecord) error {
	return r.db.Create(record).Error
}

// Save persists changes to an existing record and its translations.
func (r *Repository) Save(record *entities.ContentRecord) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(record).Error
}

// GetByID retrieves one record with translations.
func (r *Repository) GetByID(id uint) (*entities.ContentRecord, error) {
	var record entities.ContentRecord
	err := r.db.Preload("Translations").First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByIDs loads the given records, preserving no particular order.
func (r *Repository) GetByIDs(ids []uint) ([]entities.ContentRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []entities.ContentRecord
	err := r.db.Preload("Translations").Where("id IN ?", ids).Find(&records).Error
	return records, err
}

// AllExternalUIDs lists the DAM UIDs of every record, for the picker's
// already-imported inventory.
func (r *Repository) AllExternalUIDs() ([]string, error) {
	var uids []string
	err := r.db.Model(&entities.ContentRecord{}).
		Where("external_uid <> ''").
		Pluck("external_uid", &uids).Error
	return uids, err
}

// AllFileURIs lists the stored binary URIs referenced by any record.
func (r *Repository) AllFileURIs() ([]string, error) {
	var uris []string
	err := r.db.Model(&entities.ContentRecord{}).
		Where("file_uri <> ''").
		Pluck("file_uri", &uris).Error
	return uris, err
}
