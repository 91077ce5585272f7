// Package session binds picker import sessions to authenticated users:
// token checks, the per-token imported-record list, and window preferences.
package session

import (
	"errors"
	"fmt"
	"log"
)

// Default picker window size, used when a user has no stored preference.
// Stored sizes are clamped to a sane minimum on use.
const (
	DefaultWidth  = 650
	DefaultHeight = 600
	MinDimension  = 100
)

// ErrUnauthorized is returned for any token failure. It carries no detail on
// purpose; the remote side only ever learns that it was denied.
var ErrUnauthorized = errors.New("unauthorized")

// TokenStore persists issued tokens and per-token import state.
// *pickers.Repository implements it.
type TokenStore interface {
	IssueToken(userID uint) (string, error)
	Authorized(userID uint, token string) (bool, error)
	TokenOwner(token string) (userID uint, ok bool, err error)
	Imported(token string) ([]uint, error)
	MergeImported(token string, newIDs []uint) error
	WindowPreferences(userID uint) (width, height int, ok bool, err error)
	SaveWindowPreferences(userID uint, width, height int) error
}

// Service implements the import session operations on top of a TokenStore.
type Service struct {
	store TokenStore
}

// NewService creates a session service.
func NewService(store TokenStore) *Service {
	return &Service{store: store}
}

// IssueToken mints a fresh import token for the user, to be embedded in the
// picker launch configuration.
func (s *Service) IssueToken(userID uint) (string, error) {
	return s.store.IssueToken(userID)
}

// Authenticate checks that token was issued to userID. Any failure, including
// store errors, comes back as ErrUnauthorized.
func (s *Service) Authenticate(userID uint, token string) error {
	if userID == 0 || token == "" {
		return ErrUnauthorized
	}
	ok, err := s.store.Authorized(userID, token)
	if err != nil {
		log.Printf("token check failed for user %d: %v", userID, err)
		return ErrUnauthorized
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// ResolveToken authenticates a bare token and returns the user it was
// issued to. The picker submits cross-origin without a host session, so the
// token itself is the credential; it is an unguessable 256-bit value scoped
// to one user.
func (s *Service) ResolveToken(token string) (uint, error) {
	if token == "" {
		return 0, ErrUnauthorized
	}
	userID, ok, err := s.store.TokenOwner(token)
	if err != nil {
		log.Printf("token lookup failed: %v", err)
		return 0, ErrUnauthorized
	}
	if !ok {
		return 0, ErrUnauthorized
	}
	return userID, nil
}

// RecordImported appends newIDs to the token's imported-record sequence.
// Existing ids are kept; duplicates are allowed. Concurrent calls for one
// token are last-writer-wins, which is fine because a picker session is
// driven by a single browser tab.
func (s *Service) RecordImported(token string, newIDs []uint) error {
	if len(newIDs) == 0 {
		return nil
	}
	if err := s.store.MergeImported(token, newIDs); err != nil {
		return fmt.Errorf("recording imported ids for token: %w", err)
	}
	return nil
}

// ImportedRecords returns the ids imported under token so far, in import
// order.
func (s *Service) ImportedRecords(token string) ([]uint, error) {
	return s.store.Imported(token)
}

// SavePreferences stores the picker window size for the user. Capture is
// best-effort: it only happens when both dimensions were submitted as
// integers, and failures are logged, not returned.
func (s *Service) SavePreferences(userID uint, width, height *int) {
	if width == nil || height == nil {
		return
	}
	if err := s.store.SaveWindowPreferences(userID, *width, *height); err != nil {
		log.Printf("saving window preferences for user %d: %v", userID, err)
	}
}

// WindowSize returns the user's stored picker window size, defaulted and
// minimum-clamped.
func (s *Service) WindowSize(userID uint) (width, height int) {
	width, height = DefaultWidth, DefaultHeight
	w, h, ok, err := s.store.WindowPreferences(userID)
	if err != nil {
		log.Printf("loading window preferences for user %d: %v", userID, err)
		return width, height
	}
	if ok {
		width, height = w, h
	}
	if width < MinDimension {
		width = MinDimension
	}
	if height < MinDimension {
		height = MinDimension
	}
	return width, height
}
