package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/preview"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/services"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/session"
)

func newSessionRouter(t *testing.T) (*gin.Engine, services.CatalogService) {
	t.Helper()
	catalog, _ := newTestServices(t)

	hub := preview.NewHub(logger.New("test"))
	go hub.Run()

	manager := session.NewManager(catalog, hub, logger.New("test"))
	handler := NewSessionHandler(manager, hub)

	router := gin.New()
	sessions := router.Group("/api/v1/admin/sessions")
	{
		sessions.POST("", handler.Open)
		sessions.GET("/:id", handler.Get)
		sessions.DELETE("/:id", handler.Discard)
		sessions.PUT("/:id/name", handler.SetName)
		sessions.PUT("/:id/fields", handler.UpdateField)
		sessions.PUT("/:id/sponsor", handler.UpdateSponsorField)
		sessions.POST("/:id/markers", handler.AddMarker)
		sessions.PATCH("/:id/markers/:itemID", handler.UpdateMarker)
		sessions.DELETE("/:id/markers/:itemID", handler.RemoveMarker)
		sessions.POST("/:id/callouts", handler.AddCallout)
		sessions.PATCH("/:id/callouts/:itemID", handler.UpdateCallout)
		sessions.DELETE("/:id/callouts/:itemID", handler.RemoveCallout)
		sessions.POST("/:id/leaders", handler.AddLeader)
		sessions.PATCH("/:id/leaders/:itemID", handler.UpdateLeader)
		sessions.DELETE("/:id/leaders/:itemID", handler.RemoveLeader)
		sessions.PUT("/:id/wards/:index", handler.SetWardName)
		sessions.POST("/:id/drag", handler.BeginDrag)
		sessions.PUT("/:id/drag", handler.Drag)
		sessions.DELETE("/:id/drag", handler.EndDrag)
		sessions.POST("/:id/save", handler.Save)
		sessions.GET("/:id/preview/ws", handler.PreviewSocket)
	}
	return router, catalog
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = strings.NewReader(string(payload))
	} else {
		reader = strings.NewReader("")
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func openSession(t *testing.T, router *gin.Engine, cityID, sponsorID string) (string, models.SiteConfig) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/admin/sessions",
		OpenSessionRequest{CityID: cityID, SponsorID: sponsorID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID, resp.Preview
}

func decodePreview(t *testing.T, w *httptest.ResponseRecorder) models.SiteConfig {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Preview
}

func TestSessionHandler_Open(t *testing.T) {
	router, _ := newSessionRouter(t)

	_, cfg := openSession(t, router, "city-vegas", "vegas-dignity")
	assert.Equal(t, "vegas-dignity", cfg.ID)
	assert.Equal(t, "VIBRANT", cfg.ProjectName)
}

func TestSessionHandler_Open_CityBusy(t *testing.T) {
	router, _ := newSessionRouter(t)

	openSession(t, router, "city-vegas", "")
	w := doJSON(router, http.MethodPost, "/api/v1/admin/sessions", OpenSessionRequest{CityID: "city-vegas"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_Open_UnknownCity(t *testing.T) {
	router, _ := newSessionRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/sessions", OpenSessionRequest{CityID: "city-nowhere"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_UpdateField(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "vegas-dignity")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/fields", gin.H{
		"key":   "investmentAmount",
		"value": "$9 MILLION",
	})
	cfg := decodePreview(t, w)
	assert.Equal(t, "$9 MILLION", cfg.InvestmentAmount)
}

func TestSessionHandler_UpdateField_UnknownKey(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/fields", gin.H{
		"key":   "sponsorName",
		"value": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_UpdateField_WrongShape(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/fields", gin.H{
		"key":   "wardNames",
		"value": 42,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_UpdateSponsorField(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "vegas-dignity")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/sponsor", gin.H{
		"field": "sponsorName",
		"value": "Dignity Health West",
	})
	cfg := decodePreview(t, w)
	assert.Equal(t, "Dignity Health West", cfg.SponsorName)
}

func TestSessionHandler_UpdateSponsorField_TemplateSession(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/sponsor", gin.H{
		"field": "sponsorName",
		"value": "anybody",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_MarkerLifecycle(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, base := openSession(t, router, "city-vegas", "")
	baseCount := len(base.Markers)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/sessions/"+id+"/markers", nil)
	cfg := decodePreview(t, w)
	require.Len(t, cfg.Markers, baseCount+1)

	added := cfg.Markers[len(cfg.Markers)-1]
	assert.Equal(t, "New Location", added.Name)
	assert.Equal(t, models.MarkerStandard, added.Type)

	w = doJSON(router, http.MethodPatch,
		fmt.Sprintf("/api/v1/admin/sessions/%s/markers/%s", id, added.ID),
		gin.H{"name": "North Court", "type": "pod"})
	cfg = decodePreview(t, w)
	patched := cfg.Markers[len(cfg.Markers)-1]
	assert.Equal(t, "North Court", patched.Name)
	assert.Equal(t, models.MarkerPod, patched.Type)

	w = doJSON(router, http.MethodDelete,
		fmt.Sprintf("/api/v1/admin/sessions/%s/markers/%s", id, added.ID), nil)
	cfg = decodePreview(t, w)
	assert.Len(t, cfg.Markers, baseCount)
}

func TestSessionHandler_UpdateMarker_NotFound(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "")

	w := doJSON(router, http.MethodPatch,
		"/api/v1/admin/sessions/"+id+"/markers/ghost", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_CalloutDefaults(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, base := openSession(t, router, "city-vegas", "")

	w := doJSON(router, http.MethodPost, "/api/v1/admin/sessions/"+id+"/callouts", nil)
	cfg := decodePreview(t, w)
	require.Len(t, cfg.Callouts, len(base.Callouts)+1)

	added := cfg.Callouts[len(cfg.Callouts)-1]
	assert.Equal(t, "NEW CALLOUT", added.Title)
	assert.Equal(t, models.CalloutPrimary, added.ColorType)
	assert.Equal(t, models.MarkerStandard, added.MarkerType)
}

func TestSessionHandler_WardName(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/wards/0",
		WardNameRequest{Name: "Ward One"})
	cfg := decodePreview(t, w)
	assert.Equal(t, "Ward One", cfg.WardNames[0])

	w = doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/wards/99",
		WardNameRequest{Name: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/wards/first",
		WardNameRequest{Name: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_DragLifecycle(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, base := openSession(t, router, "city-vegas", "")
	markerID := base.Markers[0].ID

	w := doJSON(router, http.MethodPost, "/api/v1/admin/sessions/"+id+"/drag",
		BeginDragRequest{ID: markerID, Kind: session.DragMarker})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/drag", DragRequest{
		PointerX: 100, PointerY: 450,
		Left: 0, Top: 0, Width: 1000, Height: 500,
	})
	cfg := decodePreview(t, w)
	assert.InDelta(t, 10, cfg.Markers[0].X, 0.001)
	assert.InDelta(t, 90, cfg.Markers[0].Y, 0.001)

	w = doJSON(router, http.MethodDelete, "/api/v1/admin/sessions/"+id+"/drag", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSessionHandler_Drag_WithoutBegin(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/drag", DragRequest{
		PointerX: 10, PointerY: 10, Width: 100, Height: 100,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_Drag_ZeroBounds(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/drag", DragRequest{
		PointerX: 10, PointerY: 10, Width: 0, Height: 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_SaveAndDiscard(t *testing.T) {
	router, catalog := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "vegas-dignity")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/fields", gin.H{
		"key":   "courtCount",
		"value": "30+",
	})
	decodePreview(t, w)

	w = doJSON(router, http.MethodPost, "/api/v1/admin/sessions/"+id+"/save", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	site, err := catalog.ResolveSite("vegas-dignity")
	require.NoError(t, err)
	assert.Equal(t, "30+", site.CourtCount)

	// The session is gone after save.
	w = doJSON(router, http.MethodGet, "/api/v1/admin/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Discard(t *testing.T) {
	router, catalog := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "vegas-dignity")

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/fields", gin.H{
		"key":   "courtCount",
		"value": "99+",
	})
	decodePreview(t, w)

	w = doJSON(router, http.MethodDelete, "/api/v1/admin/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	site, err := catalog.ResolveSite("vegas-dignity")
	require.NoError(t, err)
	assert.Equal(t, "20+", site.CourtCount)

	// The city is free again.
	openSession(t, router, "city-vegas", "")
}

func TestSessionHandler_PreviewSocket(t *testing.T) {
	router, _ := newSessionRouter(t)
	id, _ := openSession(t, router, "city-vegas", "vegas-dignity")

	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/api/v1/admin/sessions/" + id + "/preview/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the hub's run loop a beat to register the client.
	time.Sleep(50 * time.Millisecond)

	w := doJSON(router, http.MethodPut, "/api/v1/admin/sessions/"+id+"/fields", gin.H{
		"key":   "projectName",
		"value": "RADIANT",
	})
	decodePreview(t, w)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var cfg models.SiteConfig
	require.NoError(t, json.Unmarshal(payload, &cfg))
	assert.Equal(t, "RADIANT", cfg.ProjectName)
}

func TestSessionHandler_PreviewSocket_UnknownSession(t *testing.T) {
	router, _ := newSessionRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/admin/sessions/ghost/preview/ws", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
