package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/NFC-FC/sponsorship-hub-wiz/internal/errors"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/preview"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/services"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/session"
)

// SessionHandler serves the edit session lifecycle and its live preview.
type SessionHandler struct {
	manager *session.Manager
	hub     *preview.Hub
}

// NewSessionHandler creates a new SessionHandler instance.
func NewSessionHandler(manager *session.Manager, hub *preview.Hub) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		hub:     hub,
	}
}

// OpenSessionRequest represents the open-session payload.
type OpenSessionRequest struct {
	CityID    string `json:"cityId" binding:"required"`
	SponsorID string `json:"sponsorId"`
}

// SessionResponse represents a session id with its current preview.
type SessionResponse struct {
	SessionID string            `json:"sessionId,omitempty"`
	Preview   models.SiteConfig `json:"preview"`
}

// FieldUpdateRequest represents one template-field edit. Value stays raw
// until the key tells us what shape to decode.
type FieldUpdateRequest struct {
	Key   models.FieldKey `json:"key" binding:"required"`
	Value json.RawMessage `json:"value" binding:"required"`
}

// SponsorFieldRequest represents a sponsor identity edit.
type SponsorFieldRequest struct {
	Field session.SponsorField `json:"field" binding:"required"`
	Value string               `json:"value"`
}

// NameRequest carries a city rename.
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// WardNameRequest carries a ward rename. Empty names are allowed.
type WardNameRequest struct {
	Name string `json:"name"`
}

// BeginDragRequest starts a drag on one map item.
type BeginDragRequest struct {
	ID   string           `json:"id" binding:"required"`
	Kind session.DragKind `json:"kind" binding:"required"`
}

// DragRequest moves the active drag to a pointer position.
type DragRequest struct {
	PointerX float64 `json:"pointerX"`
	PointerY float64 `json:"pointerY"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width" binding:"required,gt=0"`
	Height   float64 `json:"height" binding:"required,gt=0"`
}

// Open handles POST /api/v1/admin/sessions.
func (h *SessionHandler) Open(c *gin.Context) {
	var req OpenSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	id, cfg, err := h.manager.Open(req.CityID, req.SponsorID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{SessionID: id, Preview: cfg})
}

// Get handles GET /api/v1/admin/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	cfg, err := h.manager.Preview(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Preview: cfg})
}

// SetName handles PUT /api/v1/admin/sessions/:id/name.
func (h *SessionHandler) SetName(c *gin.Context) {
	var req NameRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := h.manager.SetCityName(c.Param("id"), req.Name)
	h.respond(c, cfg, err)
}

// UpdateField handles PUT /api/v1/admin/sessions/:id/fields.
func (h *SessionHandler) UpdateField(c *gin.Context) {
	var req FieldUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	value, err := models.DecodeFieldValue(req.Key, req.Value)
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}
	cfg, err := h.manager.UpdateField(c.Param("id"), req.Key, value)
	h.respond(c, cfg, err)
}

// UpdateSponsorField handles PUT /api/v1/admin/sessions/:id/sponsor.
func (h *SessionHandler) UpdateSponsorField(c *gin.Context) {
	var req SponsorFieldRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := h.manager.UpdateSponsorField(c.Param("id"), req.Field, req.Value)
	h.respond(c, cfg, err)
}

// AddMarker handles POST /api/v1/admin/sessions/:id/markers.
func (h *SessionHandler) AddMarker(c *gin.Context) {
	cfg, err := h.manager.AddMarker(c.Param("id"))
	h.respond(c, cfg, err)
}

// UpdateMarker handles PATCH /api/v1/admin/sessions/:id/markers/:itemID.
func (h *SessionHandler) UpdateMarker(c *gin.Context) {
	var patch session.MarkerPatch
	if !bindJSON(c, &patch) {
		return
	}
	cfg, err := h.manager.UpdateMarker(c.Param("id"), c.Param("itemID"), patch)
	h.respond(c, cfg, err)
}

// RemoveMarker handles DELETE /api/v1/admin/sessions/:id/markers/:itemID.
func (h *SessionHandler) RemoveMarker(c *gin.Context) {
	cfg, err := h.manager.RemoveMarker(c.Param("id"), c.Param("itemID"))
	h.respond(c, cfg, err)
}

// AddCallout handles POST /api/v1/admin/sessions/:id/callouts.
func (h *SessionHandler) AddCallout(c *gin.Context) {
	cfg, err := h.manager.AddCallout(c.Param("id"))
	h.respond(c, cfg, err)
}

// UpdateCallout handles PATCH /api/v1/admin/sessions/:id/callouts/:itemID.
func (h *SessionHandler) UpdateCallout(c *gin.Context) {
	var patch session.CalloutPatch
	if !bindJSON(c, &patch) {
		return
	}
	cfg, err := h.manager.UpdateCallout(c.Param("id"), c.Param("itemID"), patch)
	h.respond(c, cfg, err)
}

// RemoveCallout handles DELETE /api/v1/admin/sessions/:id/callouts/:itemID.
func (h *SessionHandler) RemoveCallout(c *gin.Context) {
	cfg, err := h.manager.RemoveCallout(c.Param("id"), c.Param("itemID"))
	h.respond(c, cfg, err)
}

// AddLeader handles POST /api/v1/admin/sessions/:id/leaders.
func (h *SessionHandler) AddLeader(c *gin.Context) {
	cfg, err := h.manager.AddLeader(c.Param("id"))
	h.respond(c, cfg, err)
}

// UpdateLeader handles PATCH /api/v1/admin/sessions/:id/leaders/:itemID.
func (h *SessionHandler) UpdateLeader(c *gin.Context) {
	var patch session.LeaderPatch
	if !bindJSON(c, &patch) {
		return
	}
	cfg, err := h.manager.UpdateLeader(c.Param("id"), c.Param("itemID"), patch)
	h.respond(c, cfg, err)
}

// RemoveLeader handles DELETE /api/v1/admin/sessions/:id/leaders/:itemID.
func (h *SessionHandler) RemoveLeader(c *gin.Context) {
	cfg, err := h.manager.RemoveLeader(c.Param("id"), c.Param("itemID"))
	h.respond(c, cfg, err)
}

// SetWardName handles PUT /api/v1/admin/sessions/:id/wards/:index.
func (h *SessionHandler) SetWardName(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		apierrors.BadRequest(c, "Ward index must be an integer", nil)
		return
	}

	var req WardNameRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := h.manager.SetWardName(c.Param("id"), index, req.Name)
	h.respond(c, cfg, err)
}

// BeginDrag handles POST /api/v1/admin/sessions/:id/drag.
func (h *SessionHandler) BeginDrag(c *gin.Context) {
	var req BeginDragRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.manager.BeginDrag(c.Param("id"), req.ID, req.Kind); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Drag handles PUT /api/v1/admin/sessions/:id/drag.
func (h *SessionHandler) Drag(c *gin.Context) {
	var req DragRequest
	if !bindJSON(c, &req) {
		return
	}

	bounds := session.Bounds{Left: req.Left, Top: req.Top, Width: req.Width, Height: req.Height}
	cfg, err := h.manager.Drag(c.Param("id"), req.PointerX, req.PointerY, bounds)
	h.respond(c, cfg, err)
}

// EndDrag handles DELETE /api/v1/admin/sessions/:id/drag.
func (h *SessionHandler) EndDrag(c *gin.Context) {
	if err := h.manager.EndDrag(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Save handles POST /api/v1/admin/sessions/:id/save.
func (h *SessionHandler) Save(c *gin.Context) {
	if err := h.manager.Save(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Discard handles DELETE /api/v1/admin/sessions/:id.
func (h *SessionHandler) Discard(c *gin.Context) {
	if err := h.manager.Discard(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewSocket handles GET /api/v1/admin/sessions/:id/preview/ws.
func (h *SessionHandler) PreviewSocket(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.manager.Preview(sessionID); err != nil {
		h.writeError(c, err)
		return
	}
	h.hub.HandleConnection(c.Writer, c.Request, sessionID)
}

// respond writes the refreshed preview or maps the error.
func (h *SessionHandler) respond(c *gin.Context, cfg models.SiteConfig, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Preview: cfg})
}

// writeError translates session and catalog errors into the API envelope.
func (h *SessionHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		apierrors.NotFound(c, "Session not found")
	case errors.Is(err, session.ErrCityBusy):
		apierrors.Conflict(c, "City already has an open edit session")
	case errors.Is(err, session.ErrItemNotFound):
		apierrors.NotFound(c, "Item not found")
	case errors.Is(err, session.ErrNoActiveDrag):
		apierrors.Conflict(c, "No drag in progress")
	case errors.Is(err, session.ErrBadIndex),
		errors.Is(err, session.ErrInvalidKind),
		errors.Is(err, session.ErrUnknownField),
		errors.Is(err, session.ErrNoSponsor),
		errors.Is(err, services.ErrEmptyName):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrCityNotFound):
		apierrors.NotFound(c, "City not found")
	case errors.Is(err, services.ErrSponsorNotFound):
		apierrors.NotFound(c, "Sponsor not found")
	default:
		apierrors.InternalServerError(c, "Session operation failed", err)
	}
}

// bindJSON binds the body and writes the error response on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}
