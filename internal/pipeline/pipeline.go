// Package pipeline orchestrates the per-asset import flow: retrieval of the
// binary, storage, and metadata reconciliation, with the cross-asset
// short-circuit policy on network failure.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"

	"github.com/damlink/damlink/internal/entities"
	"github.com/damlink/damlink/internal/fetcher"
	"github.com/damlink/damlink/internal/metadata"
	"github.com/damlink/damlink/internal/reconcile"
	"github.com/damlink/damlink/internal/storage"
)

// Error codes reported back to the picker per asset.
const (
	ErrCodeNetwork          = "error.import.network"
	ErrCodeNotMultipart     = "error.import.not_multipart"
	ErrCodeFilenameMismatch = "error.import.filename_mismatch"
	ErrCodeNoURL            = "error.import.no_url"
	ErrCodeFileSave         = "error.import.file_save"
	ErrCodeRecordSave       = "error.import.record_save"
	ErrCodeLanguageMapping  = "error.import.language_mapping"
)

// NoTranslationSentinel marks a host language the operator mapped to
// "do not translate". Entries carrying it are dropped from the effective
// mapping.
const NoTranslationSentinel = "none"

// AssetError is the machine-readable error attached to a failed asset.
type AssetError struct {
	Code        string            `json:"code"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

// AssetResult is the outcome for one submitted asset, in submission order.
type AssetResult struct {
	UID         string      `json:"uid"`
	Status      string      `json:"status"`
	ResourceID  uint        `json:"resourceid,omitempty"`
	ActionTaken string      `json:"action_taken,omitempty"`
	URL         string      `json:"url,omitempty"`
	Error       *AssetError `json:"error,omitempty"`
}

const (
	StatusDone  = "done"
	StatusError = "error"
)

// InlinePayload carries the binary delivered inside the import request
// itself, when the picker chose inline delivery over a fetchable URL.
type InlinePayload struct {
	ContentType string
	Filename    string
	Data        []byte
	Present     bool
}

// Fetcher downloads one remote binary.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// BinaryStore persists asset binaries.
type BinaryStore interface {
	Save(data []byte, desiredName string) (string, error)
	Delete(uri string) error
	URL(uri string) string
}

// Reconciler maps normalized fields onto a content record.
type Reconciler interface {
	Reconcile(uid string, perLang map[string]metadata.NormalizedFields, langOrder []string, fileURI string) (uint, reconcile.Action, error)
}

// RecordFinder looks up existing records so their stored binaries can be
// replaced instead of accumulated.
type RecordFinder interface {
	FindByExternalUID(uid string) ([]entities.ContentRecord, error)
}

// Noticer records operator-facing messages alongside the machine-readable
// response.
type Noticer interface {
	Add(level entities.NoticeLevel, message string)
}

// Languages is the effective host-to-DAM language mapping for a batch, in a
// stable order.
type Languages struct {
	// HostOrder lists the host langcodes with a real DAM mapping, in the
	// host's enabled-language order.
	HostOrder []string
	// DAMByHost maps each host langcode to the DAM language its fields are
	// resolved against.
	DAMByHost map[string]string
}

// EffectiveLanguages intersects the configured mapping with the enabled host
// languages and drops sentinel entries. An empty result is batch-fatal for
// the caller.
func EffectiveLanguages(mapping map[string]string, enabled []string) Languages {
	langs := Languages{DAMByHost: make(map[string]string)}
	for _, host := range enabled {
		dam, ok := mapping[host]
		if !ok || dam == "" || dam == NoTranslationSentinel {
			continue
		}
		langs.HostOrder = append(langs.HostOrder, host)
		langs.DAMByHost[host] = dam
	}
	return langs
}

// Pipeline runs import batches. Assets are processed strictly in submission
// order; concurrency would break the short-circuit policy.
type Pipeline struct {
	fetcher    Fetcher
	store      BinaryStore
	records    RecordFinder
	reconciler Reconciler
	notices    Noticer
	languages  Languages
	extensions []string
}

// New creates a Pipeline over its collaborators. extensions is the allow-list
// used when sanitizing stored file names.
func New(f Fetcher, store BinaryStore, records RecordFinder, r Reconciler, notices Noticer, languages Languages, extensions []string) *Pipeline {
	return &Pipeline{
		fetcher:    f,
		store:      store,
		records:    records,
		reconciler: r,
		notices:    notices,
		languages:  languages,
		extensions: extensions,
	}
}

// IngestBatch processes the submitted assets in order and returns one result
// per processed asset.
//
// After the first transport-level fetch failure every following asset is
// failed immediately without a fetch attempt, on the assumption that the
// remote server is down. An empty effective language mapping aborts the batch
// at the asset where it is detected; results produced before it stand.
func (p *Pipeline) IngestBatch(ctx context.Context, assets []metadata.AssetMetadata, inline *InlinePayload) []AssetResult {
	results := make([]AssetResult, 0, len(assets))
	networkDown := false

	for _, asset := range assets {
		if len(p.languages.HostOrder) == 0 {
			result := p.fail(asset.UID, ErrCodeLanguageMapping,
				"no language mapping is configured, check the import settings", nil)
			results = append(results, result)
			break
		}

		if networkDown {
			results = append(results, p.fail(asset.UID, ErrCodeNetwork,
				fmt.Sprintf("file %s was not retrieved: a previous file already failed with a network error", asset.Filename),
				map[string]string{"filename": asset.Filename}))
			continue
		}

		result, transportFailed := p.ingestOne(ctx, asset, inline)
		if transportFailed {
			networkDown = true
		}
		results = append(results, result)
	}

	return results
}

func (p *Pipeline) ingestOne(ctx context.Context, asset metadata.AssetMetadata, inline *InlinePayload) (AssetResult, bool) {
	data, result, transportFailed := p.retrieve(ctx, asset, inline)
	if result != nil {
		return *result, transportFailed
	}

	// Replace, never accumulate: drop the binaries of any existing records
	// for this uid before saving, so re-imports do not pile up renamed files.
	existing, err := p.records.FindByExternalUID(asset.UID)
	if err != nil {
		log.Printf("looking up records for uid %s: %v", asset.UID, err)
	}
	for _, record := range existing {
		if record.FileURI == "" {
			continue
		}
		if err := p.store.Delete(record.FileURI); err != nil {
			log.Printf("deleting old binary %s: %v", record.FileURI, err)
		}
	}

	uri, err := p.store.Save(data, p.storedName(asset))
	if err != nil {
		return p.fail(asset.UID, ErrCodeFileSave,
			fmt.Sprintf("file %s could not be saved: %v", asset.Filename, err),
			map[string]string{"filename": asset.Filename}), false
	}

	perLang := make(map[string]metadata.NormalizedFields, len(p.languages.HostOrder))
	for _, host := range p.languages.HostOrder {
		perLang[host] = metadata.MapFields(asset, p.languages.DAMByHost[host])
	}

	id, action, err := p.reconciler.Reconcile(asset.UID, perLang, p.languages.HostOrder, uri)
	if err != nil {
		return p.fail(asset.UID, ErrCodeRecordSave,
			fmt.Sprintf("record for %s could not be saved: %v", asset.Filename, err),
			map[string]string{"filename": asset.Filename}), false
	}

	return AssetResult{
		UID:         asset.UID,
		Status:      StatusDone,
		ResourceID:  id,
		ActionTaken: string(action),
		URL:         p.store.URL(uri),
	}, false
}

// retrieve obtains the asset's bytes, inline or over the network. A non-nil
// result means retrieval failed; the bool marks a transport-level failure.
func (p *Pipeline) retrieve(ctx context.Context, asset metadata.AssetMetadata, inline *InlinePayload) ([]byte, *AssetResult, bool) {
	if inline != nil {
		if !strings.HasPrefix(inline.ContentType, "multipart/form-data") {
			result := p.fail(asset.UID, ErrCodeNotMultipart,
				"inline file delivery requires a multipart form submission", nil)
			return nil, &result, false
		}
		if !inline.Present || inline.Filename != asset.Filename {
			result := p.fail(asset.UID, ErrCodeFilenameMismatch,
				fmt.Sprintf("delivered file %s does not match the announced file %s", inline.Filename, asset.Filename),
				map[string]string{"filename": asset.Filename})
			return nil, &result, false
		}
		return inline.Data, nil, false
	}

	if asset.URL == "" {
		result := p.fail(asset.UID, ErrCodeNoURL,
			fmt.Sprintf("no URL was supplied for file %s", asset.Filename),
			map[string]string{"filename": asset.Filename})
		return nil, &result, false
	}

	data, err := p.fetcher.Fetch(ctx, asset.URL)
	if err != nil {
		result := p.fail(asset.UID, ErrCodeNetwork,
			fmt.Sprintf("file %s could not be retrieved: %v", asset.Filename, err),
			map[string]string{"filename": asset.Filename, "url": asset.URL})
		return nil, &result, fetcher.IsTransportError(err)
	}

	return data, nil, false
}

// storedName picks the on-disk name for an asset, falling back to the URL
// path when no filename was announced.
func (p *Pipeline) storedName(asset metadata.AssetMetadata) string {
	name := asset.Filename
	if name == "" && asset.URL != "" {
		if u, err := url.Parse(asset.URL); err == nil {
			name = path.Base(u.Path)
		}
	}
	return storage.MungeFilename(name, p.extensions)
}

func (p *Pipeline) fail(uid, code, description string, params map[string]string) AssetResult {
	p.notices.Add(entities.NoticeLevelError, description)
	return AssetResult{
		UID:    uid,
		Status: StatusError,
		Error: &AssetError{
			Code:        code,
			Description: description,
			Parameters:  params,
		},
	}
}
