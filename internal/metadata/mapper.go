// Package metadata maps the raw per-asset metadata delivered by the DAM
// picker onto normalized field sets, resolving multilingual values against a
// single DAM language code.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldValue is a descriptive metadata field as sent by the DAM: either a
// plain string or a mapping from DAM language code to string.
type FieldValue struct {
	Plain       string
	PerLanguage map[string]string
}

// UnmarshalJSON accepts either form; null decodes to the zero value.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = FieldValue{}
		return nil
	}
	if data[0] == '"' {
		v.PerLanguage = nil
		return json.Unmarshal(data, &v.Plain)
	}
	if data[0] == '{' {
		v.Plain = ""
		return json.Unmarshal(data, &v.PerLanguage)
	}
	return fmt.Errorf("metadata field is neither string nor object: %s", data)
}

// MarshalJSON emits the form the value was decoded from.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.PerLanguage != nil {
		return json.Marshal(v.PerLanguage)
	}
	return json.Marshal(v.Plain)
}

// Resolve returns the value for the given DAM language: the language's entry
// for per-language fields (absent entries resolve to empty), the string
// itself for plain fields.
func (v FieldValue) Resolve(damLang string) string {
	if v.PerLanguage != nil {
		return v.PerLanguage[damLang]
	}
	return v.Plain
}

// IsZero reports whether the field carries no value at all.
func (v FieldValue) IsZero() bool {
	return v.Plain == "" && v.PerLanguage == nil
}

// AssetMetadata is one inbound asset descriptor from the picker submission.
// UID is required and keys deduplication; URL is required when the binary is
// not delivered inline.
type AssetMetadata struct {
	UID      string `json:"uid"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`

	Title       FieldValue `json:"title,omitempty"`
	Description FieldValue `json:"description,omitempty"`
	Caption     FieldValue `json:"caption,omitempty"`
	Alternative FieldValue `json:"alternative,omitempty"`
	Keywords    FieldValue `json:"keywords,omitempty"`
	Copyright   FieldValue `json:"copyright,omitempty"`
}

// NormalizedFields is the per-language output of MapFields. Name is the
// record's display label; an empty Name means no descriptive field resolved
// and the caller should fall back to a file-derived default.
type NormalizedFields struct {
	Name       string
	ImageAlt   string
	ImageTitle string

	Title       string
	Description string
	Caption     string
	Keywords    string
	Copyright   string
}

// MapFields resolves every descriptive field of meta against damLang and
// derives the display name and image alt/title.
//
// The display name is the first non-empty of title, caption, alternative and
// filename. The image alt text is the alternative if present, otherwise the
// display name; when a display name resolves it doubles as the image title.
func MapFields(meta AssetMetadata, damLang string) NormalizedFields {
	fields := NormalizedFields{
		Title:       meta.Title.Resolve(damLang),
		Description: meta.Description.Resolve(damLang),
		Caption:     meta.Caption.Resolve(damLang),
		Keywords:    meta.Keywords.Resolve(damLang),
		Copyright:   meta.Copyright.Resolve(damLang),
	}

	alternative := meta.Alternative.Resolve(damLang)
	for _, candidate := range []string{fields.Title, fields.Caption, alternative, meta.Filename} {
		if candidate != "" {
			fields.Name = candidate
			break
		}
	}

	fields.ImageAlt = alternative
	if fields.ImageAlt == "" {
		fields.ImageAlt = fields.Name
	}
	if fields.Name != "" {
		fields.ImageTitle = fields.Name
	}

	return fields
}
