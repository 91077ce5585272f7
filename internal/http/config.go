package http

import (
	"github.com/damlink/damlink/internal/auth"
	"github.com/damlink/damlink/internal/config"
	"github.com/damlink/damlink/internal/database"
	"github.com/damlink/damlink/internal/database/notices"
	"github.com/damlink/damlink/internal/database/records"
	"github.com/damlink/damlink/internal/pipeline"
	"github.com/damlink/damlink/internal/session"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Records  *records.Repository
	Notices  *notices.Repository
	Sessions *session.Service
	Pipeline *pipeline.Pipeline

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth

	// Remote picker
	DAM config.DAM

	// BaseURL is this host as reachable from the picker window.
	BaseURL string

	// StorageDir is served under /files so stored URLs resolve.
	StorageDir string

	// Application info
	Version string
}
