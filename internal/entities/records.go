package entities

import (
	"time"

	"gorm.io/gorm"
)

// ContentRecord is the host-side representation of one imported DAM asset.
// There is normally at most one record per external UID; extra records are
// tolerated and updated alongside, see reconcile.Reconciler.
type ContentRecord struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ExternalUID string `gorm:"index;size:256" json:"external_uid"`
	FileURI     string `gorm:"size:1024" json:"file_uri"`
	Revision    int    `gorm:"default:1" json:"revision"`

	Translations []RecordTranslation `gorm:"foreignKey:RecordID" json:"translations,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// RecordTranslation holds the normalized metadata of one record in one host
// language.
type RecordTranslation struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RecordID uint   `gorm:"index" json:"record_id"`
	Langcode string `gorm:"index;size:12" json:"langcode"`

	// Name is the record's display label; ImageAlt/ImageTitle belong to the
	// stored image itself.
	Name       string `gorm:"size:512" json:"name"`
	ImageAlt   string `gorm:"size:512" json:"image_alt"`
	ImageTitle string `gorm:"size:512" json:"image_title"`

	Title       string `gorm:"size:512" json:"title,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Caption     string `gorm:"type:text" json:"caption,omitempty"`
	Keywords    string `gorm:"type:text" json:"keywords,omitempty"`
	Copyright   string `gorm:"size:512" json:"copyright,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PickerToken is an opaque session token minted when a picker widget is
// rendered for a user. A token authorizes import submissions for that user
// only.
type PickerToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;size:64" json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportedRecord maps a picker token to one record imported under it.
// Rows are append-only and ordered by Position.
type ImportedRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"index;size:64" json:"token"`
	RecordID  uint      `json:"record_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// WindowPreference stores a user's last picker window size.
type WindowPreference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex" json:"user_id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoticeLevel classifies operator-facing notices.
type NoticeLevel string

const (
	NoticeLevelError  NoticeLevel = "error"
	NoticeLevelStatus NoticeLevel = "status"
)

// Notice is an operator-facing message produced during import, rendered by
// the host UI alongside the machine-readable response.
type Notice struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Level     NoticeLevel `gorm:"size:10" json:"level"`
	Message   string      `gorm:"type:text" json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}

func (ContentRecord) TableName() string {
	return "content_records"
}

func (RecordTranslation) TableName() string {
	return "record_translations"
}

func (PickerToken) TableName() string {
	return "picker_tokens"
}

func (ImportedRecord) TableName() string {
	return "imported_records"
}

func (WindowPreference) TableName() string {
	return "window_preferences"
}

func (Notice) TableName() string {
	return "notices"
}
