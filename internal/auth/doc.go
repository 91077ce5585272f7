// Package auth provides authentication for host users driving the picker.
//
// It supports two modes:
//   - "none": no authentication required (default), all requests use a default user ID
//   - "local": local user database with session cookies
//
// # Configuration
//
// Set AUTH_MODE environment variable to select the mode:
//
//	AUTH_MODE=none   # Default, no auth required
//	AUTH_MODE=local  # Requires user creation and login
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_LIFETIME=24h  # Session duration
//	AUTH_BCRYPT_COST=12        # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true   # HTTPS-only cookies
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(db, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)  // Returns DefaultUserID in "none" mode
//
// Picker import submissions are not session-authenticated: they come from
// the DAM window cross-origin and are gated by the per-session import token
// instead, see the session package.
package auth
