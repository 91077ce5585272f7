package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damlink/damlink/internal/config"
)

func setupRouter(t *testing.T) (*gin.Engine, *Service, func()) {
	gin.SetMode(gin.TestMode)

	db, cleanup := setupAuthDB(t)

	cfg := config.Auth{
		Mode:            config.AuthModeLocal,
		BcryptCost:      4,
		SessionLifetime: 3600e9,
	}

	svc := NewService(db, cfg)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sm, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(NewMiddleware(svc, sm, cfg).Handler())

	NewAuthController(svc, sm).RegisterRoutes(router)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/import/sometoken", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"reached": true})
	})
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})

	return router, svc, cleanup
}

func TestMiddleware_PublicPaths(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// The import endpoint is token-gated, not session-gated.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/import/sometoken", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_RejectsWithoutSession(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginFlow(t *testing.T) {
	router, svc, cleanup := setupRouter(t)
	defer cleanup()

	_, err := svc.CreateUser("editor", "a long enough password")
	require.NoError(t, err)

	body := bytes.NewBufferString(`{"username":"editor","password":"a long enough password"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"editor"`)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, svc, cleanup := setupRouter(t)
	defer cleanup()

	_, err := svc.CreateUser("editor", "a long enough password")
	require.NoError(t, err)

	body := bytes.NewBufferString(`{"username":"editor","password":"wrong password here"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthModeNoneInjectsDefaultUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, cleanup := setupAuthDB(t)
	defer cleanup()

	cfg := config.Auth{Mode: config.AuthModeNone, BcryptCost: 4}
	router := gin.New()
	router.Use(NewMiddleware(NewService(db, cfg), nil, cfg).Handler())
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)
}
