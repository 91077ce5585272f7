// Package notices provides database operations for operator-facing notices.
package notices

import (
	"log"

	"gorm.io/gorm"

	"github.com/damlink/damlink/internal/entities"
)

// Repository handles all notice database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notices repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add records a notice. Failures are logged, not propagated: a lost notice
// must never break an import.
func (r *Repository) Add(level entities.NoticeLevel, message string) {
	notice := entities.Notice{
		Level:   level,
		Message: message,
	}
	if err := r.db.Create(&notice).Error; err != nil {
		log.Printf("failed to save notice: %v", err)
	}
}

// Recent returns the newest notices, newest first.
func (r *Repository) Recent(limit int) ([]entities.Notice, error) {
	var rows []entities.Notice
	err := r.db.Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// Clear removes all notices.
func (r *Repository) Clear() error {
	return r.db.Where("1 = 1").Delete(&entities.Notice{}).Error
}
