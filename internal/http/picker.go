package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/damlink/damlink/internal/auth"
	"github.com/damlink/damlink/internal/config"
	"github.com/damlink/damlink/internal/database/records"
	"github.com/damlink/damlink/internal/entities"
	"github.com/damlink/damlink/internal/handshake"
	"github.com/damlink/damlink/internal/session"
)

// PickerController serves the host page driving the picker window: minting
// the launch payload and listing what a session has imported.
type PickerController struct {
	sessions *session.Service
	records  *records.Repository
	dam      config.DAM
	baseURL  string
}

// NewPickerController creates a new PickerController.
func NewPickerController(sessions *session.Service, repo *records.Repository, dam config.DAM, baseURL string) *PickerController {
	return &PickerController{
		sessions: sessions,
		records:  repo,
		dam:      dam,
		baseURL:  baseURL,
	}
}

// LaunchResponse carries everything the host page needs to open the picker
// window and answer its configuration request.
type LaunchResponse struct {
	Token string `json:"token"`
	// URL opens the picker with the short configuration embedded.
	URL string `json:"url,omitempty"`
	// Config is the full configuration posted on the picker's send_config
	// request, EncodedConfig its wire form.
	Config        handshake.Config `json:"config"`
	EncodedConfig string           `json:"encoded_config"`
	Window        WindowSize       `json:"window"`
}

type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Launch handles GET /picker/launch.
func (controller *PickerController) Launch(c *gin.Context) {
	userID := auth.GetUserID(c)

	token, err := controller.sessions.IssueToken(userID)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	uids, err := controller.records.AllExternalUIDs()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to list known assets"})
		return
	}

	fullConfig := handshake.Config{
		CallbackURL:  controller.baseURL + "/import/" + token,
		Extensions:   controller.dam.Extensions,
		ExistingUIDs: uids,
	}

	width, height := controller.sessions.WindowSize(userID)

	response := LaunchResponse{
		Token:         token,
		Config:        fullConfig,
		EncodedConfig: handshake.EncodeConfig(fullConfig),
		Window:        WindowSize{Width: width, Height: height},
	}
	if controller.dam.ServerURL != "" {
		short := handshake.Config{CallbackURL: fullConfig.CallbackURL}
		response.URL = controller.dam.ServerURL + "?" + handshake.Namespace + "=" + handshake.EncodeConfig(short)
	}

	c.IndentedJSON(http.StatusOK, response)
}

// ImportedResponse lists the records imported under one picker token, in
// import order.
type ImportedResponse struct {
	Records []entities.ContentRecord `json:"records"`
}

// Imported handles GET /picker/imported?token=. The requesting user must be
// the one the token was issued to.
func (controller *PickerController) Imported(c *gin.Context) {
	token := c.Query("token")

	owner, err := controller.sessions.ResolveToken(token)
	if err != nil || owner != auth.GetUserID(c) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ids, err := controller.sessions.ImportedRecords(token)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to list imports"})
		return
	}

	loaded, err := controller.records.GetByIDs(ids)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to load records"})
		return
	}

	byID := make(map[uint]entities.ContentRecord, len(loaded))
	for _, record := range loaded {
		byID[record.ID] = record
	}

	// Import order, skipping records deleted since.
	ordered := make([]entities.ContentRecord, 0, len(ids))
	for _, id := range ids {
		if record, ok := byID[id]; ok {
			ordered = append(ordered, record)
		}
	}

	c.IndentedJSON(http.StatusOK, ImportedResponse{Records: ordered})
}
