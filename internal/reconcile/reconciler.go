// Package reconcile maps normalized DAM metadata onto host content records,
// creating or updating them idempotently keyed by the external UID.
package reconcile

import (
	"fmt"
	"log"
	"path"

	"github.com/damlink/damlink/internal/entities"
	"github.com/damlink/damlink/internal/metadata"
)

// Action reports whether a reconcile created or updated the record.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
)

// RecordStore is the storage collaborator the reconciler writes through.
type RecordStore interface {
	FindByExternalUID(uid string) ([]entities.ContentRecord, error)
	Create(record *entities.ContentRecord) error
	Save(record *entities.ContentRecord) error
}

// Reconciler applies per-language field sets to content records. When
// translatable is false the host runs single-language and only currentLang's
// fields are applied.
type Reconciler struct {
	store        RecordStore
	translatable bool
	currentLang  string
}

// New creates a Reconciler.
func New(store RecordStore, translatable bool, currentLang string) *Reconciler {
	return &Reconciler{
		store:        store,
		translatable: translatable,
		currentLang:  currentLang,
	}
}

// Reconcile creates or updates the record(s) for uid from the per-language
// fields, in langOrder. fileURI is the already-stored binary the record must
// reference.
//
// More than one existing record per uid is an anomaly, not an error: all of
// them are updated and the last one's id is reported.
func (r *Reconciler) Reconcile(uid string, perLang map[string]metadata.NormalizedFields, langOrder []string, fileURI string) (uint, Action, error) {
	if len(langOrder) == 0 {
		return 0, "", fmt.Errorf("no languages to reconcile for uid %s", uid)
	}

	existing, err := r.store.FindByExternalUID(uid)
	if err != nil {
		return 0, "", fmt.Errorf("looking up records for uid %s: %w", uid, err)
	}

	if len(existing) > 1 {
		log.Printf("found %d records for DAM uid %s, expected at most one; updating all", len(existing), uid)
	}

	if len(existing) > 0 {
		return r.update(existing, perLang, langOrder, fileURI)
	}
	return r.insert(uid, perLang, langOrder, fileURI)
}

func (r *Reconciler) update(existing []entities.ContentRecord, perLang map[string]metadata.NormalizedFields, langOrder []string, fileURI string) (uint, Action, error) {
	var lastID uint
	for i := range existing {
		record := &existing[i]
		record.FileURI = fileURI
		record.Revision++

		for _, lang := range r.applicableLangs(langOrder) {
			fields, ok := perLang[lang]
			if !ok {
				continue
			}
			r.applyTranslation(record, lang, fields)
		}

		if err := r.store.Save(record); err != nil {
			return 0, "", fmt.Errorf("updating record %d: %w", record.ID, err)
		}
		lastID = record.ID
	}
	return lastID, ActionUpdate, nil
}

func (r *Reconciler) insert(uid string, perLang map[string]metadata.NormalizedFields, langOrder []string, fileURI string) (uint, Action, error) {
	record := &entities.ContentRecord{
		ExternalUID: uid,
		FileURI:     fileURI,
		Revision:    1,
	}

	for _, lang := range r.applicableLangs(langOrder) {
		fields, ok := perLang[lang]
		if !ok {
			continue
		}
		record.Translations = append(record.Translations, r.newTranslation(lang, fields, fileURI))
	}

	if err := r.store.Create(record); err != nil {
		return 0, "", fmt.Errorf("creating record for uid %s: %w", uid, err)
	}
	return record.ID, ActionInsert, nil
}

// applicableLangs narrows langOrder to the current host language on
// single-language hosts. The current language is part of the mapping
// whenever the mapping is non-empty, but fall back to the full order rather
// than dropping the asset if it isn't.
func (r *Reconciler) applicableLangs(langOrder []string) []string {
	if r.translatable {
		return langOrder
	}
	for _, lang := range langOrder {
		if lang == r.currentLang {
			return []string{lang}
		}
	}
	return langOrder[:1]
}

func (r *Reconciler) applyTranslation(record *entities.ContentRecord, lang string, fields metadata.NormalizedFields) {
	for i := range record.Translations {
		if record.Translations[i].Langcode == lang {
			existingID := record.Translations[i].ID
			record.Translations[i] = r.newTranslation(lang, fields, record.FileURI)
			record.Translations[i].ID = existingID
			record.Translations[i].RecordID = record.ID
			return
		}
	}
	translation := r.newTranslation(lang, fields, record.FileURI)
	translation.RecordID = record.ID
	record.Translations = append(record.Translations, translation)
}

func (r *Reconciler) newTranslation(lang string, fields metadata.NormalizedFields, fileURI string) entities.RecordTranslation {
	name := fields.Name
	if name == "" {
		name = defaultLabel(fileURI)
	}
	return entities.RecordTranslation{
		Langcode:    lang,
		Name:        name,
		ImageAlt:    fields.ImageAlt,
		ImageTitle:  fields.ImageTitle,
		Title:       fields.Title,
		Description: fields.Description,
		Caption:     fields.Caption,
		Keywords:    fields.Keywords,
		Copyright:   fields.Copyright,
	}
}

// defaultLabel names records whose metadata resolved to nothing displayable.
func defaultLabel(fileURI string) string {
	return "DAM image " + path.Base(fileURI)
}
