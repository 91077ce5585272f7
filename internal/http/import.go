package http

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/damlink/damlink/internal/auth"
	"github.com/damlink/damlink/internal/metadata"
	"github.com/damlink/damlink/internal/pipeline"
	"github.com/damlink/damlink/internal/session"
)

// importEnvelope is the JSON envelope the picker submits in the "body" form
// field. Window preference values are kept raw: only integer submissions are
// honored, anything else is silently dropped.
type importEnvelope struct {
	Files             []metadata.AssetMetadata `json:"files"`
	SendData          bool                     `json:"send_data"`
	WindowPreferences *windowPreferences       `json:"window_preferences"`
}

type windowPreferences struct {
	Width  json.RawMessage `json:"width"`
	Height json.RawMessage `json:"height"`
}

// ImportResponse is returned to the picker window.
type ImportResponse struct {
	Took  int64                  `json:"took"`
	Files []pipeline.AssetResult `json:"files"`
}

// ImportController handles the batch submissions of the picker window.
type ImportController struct {
	pipeline       *pipeline.Pipeline
	sessions       *session.Service
	sessionManager *auth.SessionManager
}

// NewImportController creates a new ImportController. sessionManager may be
// nil when host sessions are disabled.
func NewImportController(p *pipeline.Pipeline, sessions *session.Service, sessionManager *auth.SessionManager) *ImportController {
	return &ImportController{
		pipeline:       p,
		sessions:       sessions,
		sessionManager: sessionManager,
	}
}

// Import handles POST /import/:token.
//
// The token authenticates the request on its own: the submission comes from
// the picker window on the DAM origin, which does not share the host
// session. A failed check answers with a bare 401 and an empty body, the
// picker gets no detail to probe with.
func (controller *ImportController) Import(c *gin.Context) {
	started := time.Now()

	token := c.Param("token")
	userID, err := controller.sessions.ResolveToken(token)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// A host session, when present, must belong to the token's user.
	if controller.sessionManager != nil {
		if sessionUser := controller.sessionManager.GetUserID(c.Request); sessionUser != 0 && sessionUser != userID {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	}

	body := c.PostForm("body")
	if body == "" {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "missing body field"})
		return
	}

	var envelope importEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "malformed body field: " + err.Error()})
		return
	}
	if len(envelope.Files) == 0 {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	var inline *pipeline.InlinePayload
	if envelope.SendData {
		inline = controller.inlinePayload(c)
	}

	results := controller.pipeline.IngestBatch(c.Request.Context(), envelope.Files, inline)

	var imported []uint
	for _, result := range results {
		if result.Status == pipeline.StatusDone {
			imported = append(imported, result.ResourceID)
		}
	}
	if err := controller.sessions.RecordImported(token, imported); err != nil {
		log.Printf("recording imported ids: %v", err)
	}

	if prefs := envelope.WindowPreferences; prefs != nil {
		controller.sessions.SavePreferences(userID, intValue(prefs.Width), intValue(prefs.Height))
	}

	c.JSON(http.StatusOK, ImportResponse{
		Took:  time.Since(started).Milliseconds(),
		Files: results,
	})
}

// inlinePayload extracts the single delivered binary, the first file part
// under the form name "files". The pipeline validates envelope and filename.
func (controller *ImportController) inlinePayload(c *gin.Context) *pipeline.InlinePayload {
	inline := &pipeline.InlinePayload{ContentType: c.GetHeader("Content-Type")}

	file, header, err := c.Request.FormFile("files")
	if err != nil {
		return inline
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("reading inline file part: %v", err)
		return inline
	}

	inline.Filename = header.Filename
	inline.Data = data
	inline.Present = true
	return inline
}

// intValue parses a raw JSON value that must be an integer number. Floats,
// strings and absent values come back nil.
func intValue(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}
