package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damlink/damlink/internal/entities"
	"github.com/damlink/damlink/internal/pipeline"
)

func TestNoticesListAndClear(t *testing.T) {
	env, cleanup := setupTestEnv(t, "https://dam.example/picker")
	defer cleanup()

	env.notices.Add(entities.NoticeLevelError, "fetch failed for asset 7")
	env.notices.Add(entities.NoticeLevelStatus, "imported 3 assets")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notices", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Notices []entities.Notice `json:"notices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Notices, 2)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notices?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Len(t, listing.Notices, 1)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notices?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/notices", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notices", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Empty(t, listing.Notices)
}

func TestFailedImportLeavesNotice(t *testing.T) {
	env, cleanup := setupTestEnv(t, "https://dam.example/picker")
	defer cleanup()

	token, err := env.sessions.IssueToken(0)
	require.NoError(t, err)

	// No URL and no inline payload, so the asset cannot be retrieved.
	envelope := `{"files":[{"uid":"9","filename":"broken.jpg"}]}`
	w := postImport(env, token, envelope)
	require.Equal(t, http.StatusOK, w.Code)

	var response ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Files, 1)
	assert.Equal(t, pipeline.StatusError, response.Files[0].Status)

	rows, err := env.notices.Recent(10)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, entities.NoticeLevelError, rows[0].Level)
	assert.Contains(t, rows[0].Message, "broken.jpg")
}
