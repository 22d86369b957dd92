package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/lucsky/cuid"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/services"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCityBusy        = errors.New("city already has an open edit session")
	ErrNoSponsor       = errors.New("session is not editing a sponsor")
	ErrItemNotFound    = errors.New("item not found")
	ErrBadIndex        = errors.New("index out of range")
	ErrNoActiveDrag    = errors.New("no drag in progress")
	ErrInvalidKind     = errors.New("drag kind must be marker or callout")
	ErrUnknownField    = errors.New("unknown field key")
)

// DragKind selects which collection a drag moves items in.
type DragKind string

const (
	DragMarker  DragKind = "marker"
	DragCallout DragKind = "callout"
)

// Bounds is the map image's bounding box in the client's pixel space.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width" binding:"required,gt=0"`
	Height float64 `json:"height" binding:"required,gt=0"`
}

// SponsorField names a sponsor identity field editable in a session.
type SponsorField string

const (
	SponsorFieldName     SponsorField = "sponsorName"
	SponsorFieldLogo     SponsorField = "sponsorLogo"
	SponsorFieldPassword SponsorField = "sponsorPassword"
)

// Patch types carry partial item updates; nil fields are left untouched.
type MarkerPatch struct {
	X    *float64           `json:"x"`
	Y    *float64           `json:"y"`
	Name *string            `json:"name"`
	Type *models.MarkerType `json:"type"`
}

type CalloutPatch struct {
	X          *float64             `json:"x"`
	Y          *float64             `json:"y"`
	Title      *string              `json:"title"`
	Image      *string              `json:"image"`
	ColorType  *models.CalloutColor `json:"colorType"`
	MarkerType *models.MarkerType   `json:"markerType"`
}

type LeaderPatch struct {
	Name  *string `json:"name"`
	Title *string `json:"title"`
	Image *string `json:"image"`
}

type dragState struct {
	id   string
	kind DragKind
}

// editSession is the draft state for one open editor. It is a snapshot of
// the committed city; nothing here touches the catalog until Save.
type editSession struct {
	id           string
	cityID       string
	cityName     string
	cityArchived bool
	template     models.CityTemplate
	sponsor      *models.SponsorRecord

	// base sponsors at snapshot time, used for the preview placeholder logo.
	baseSponsors []models.SponsorRecord

	drag *dragState
}

// Broadcaster receives preview recomputes for connected live-preview
// clients. Implementations must not block.
type Broadcaster interface {
	BroadcastPreview(sessionID string, cfg models.SiteConfig)
	CloseSession(sessionID string)
}

// Manager owns all open edit sessions. One session per city at a time; a
// second open attempt gets ErrCityBusy until the first saves or discards.
type Manager struct {
	mu          sync.Mutex
	catalog     services.CatalogService
	log         *logger.Logger
	broadcaster Broadcaster
	sessions    map[string]*editSession
	byCity      map[string]string
}

// NewManager creates a session manager. broadcaster may be nil.
func NewManager(catalog services.CatalogService, broadcaster Broadcaster, log *logger.Logger) *Manager {
	return &Manager{
		catalog:     catalog,
		log:         log,
		broadcaster: broadcaster,
		sessions:    make(map[string]*editSession),
		byCity:      make(map[string]string),
	}
}

// Open starts an edit session for a city template (sponsorID empty) or a
// sponsor. The returned preview reflects the untouched snapshot.
func (m *Manager) Open(cityID, sponsorID string) (string, models.SiteConfig, error) {
	city, err := m.catalog.CityByID(cityID)
	if err != nil {
		return "", models.SiteConfig{}, err
	}

	var sponsor *models.SponsorRecord
	if sponsorID != "" {
		found := city.SponsorByID(sponsorID)
		if found == nil {
			return "", models.SiteConfig{}, services.ErrSponsorNotFound
		}
		cloned := found.Clone()
		sponsor = &cloned
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, busy := m.byCity[cityID]; busy {
		m.log.Warn("Rejected concurrent edit session", map[string]interface{}{
			"city_id":    cityID,
			"session_id": existing,
		})
		return "", models.SiteConfig{}, ErrCityBusy
	}

	sess := &editSession{
		id:           cuid.New(),
		cityID:       cityID,
		cityName:     city.Name,
		cityArchived: city.IsArchived,
		template:     city.Template.Clone(),
		sponsor:      sponsor,
		baseSponsors: city.Sponsors,
	}
	m.sessions[sess.id] = sess
	m.byCity[cityID] = sess.id

	m.log.Info("Edit session opened", map[string]interface{}{
		"session_id": sess.id,
		"city_id":    cityID,
		"sponsor_id": sponsorID,
	})
	return sess.id, m.preview(sess), nil
}

// Preview returns the current merged draft.
func (m *Manager) Preview(sessionID string) (models.SiteConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return models.SiteConfig{}, ErrSessionNotFound
	}
	return m.preview(sess), nil
}

// SetCityName renames the draft city.
func (m *Manager) SetCityName(sessionID, name string) (models.SiteConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.SiteConfig{}, services.ErrEmptyName
	}
	return m.mutate(sessionID, func(sess *editSession) error {
		sess.cityName = name
		return nil
	})
}

// UpdateField applies one template-field edit. With a draft sponsor the
// value is compared against the template: an equal value removes the
// override, anything else sets it. Without a sponsor the template itself is
// written.
func (m *Manager) UpdateField(sessionID string, key models.FieldKey, value any) (models.SiteConfig, error) {
	if !key.Valid() {
		return models.SiteConfig{}, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	return m.mutate(sessionID, func(sess *editSession) error {
		return sess.updateField(key, value)
	})
}

// UpdateSponsorField edits a sponsor identity field on the draft.
func (m *Manager) UpdateSponsorField(sessionID string, field SponsorField, value string) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		if sess.sponsor == nil {
			return ErrNoSponsor
		}
		switch field {
		case SponsorFieldName:
			sess.sponsor.SponsorName = value
		case SponsorFieldLogo:
			sess.sponsor.SponsorLogo = value
		case SponsorFieldPassword:
			sess.sponsor.SponsorPassword = value
		default:
			return fmt.Errorf("unknown sponsor field %q", field)
		}
		return nil
	})
}

// AddMarker appends a placeholder marker at the map center.
func (m *Manager) AddMarker(sessionID string) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		markers := append(sess.currentMarkers(), models.MapMarker{
			ID:   makeItemID("marker"),
			X:    50,
			Y:    50,
			Name: "New Location",
			Type: models.MarkerStandard,
		})
		return sess.updateField(models.FieldMarkers, markers)
	})
}

// RemoveMarker deletes a marker by id.
func (m *Manager) RemoveMarker(sessionID, markerID string) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		markers := sess.currentMarkers()
		next := markers[:0:0]
		for _, mk := range markers {
			if mk.ID != markerID {
				next = append(next, mk)
			}
		}
		if len(next) == len(markers) {
			return ErrItemNotFound
		}
		return sess.updateField(models.FieldMarkers, next)
	})
}

// UpdateMarker patches a marker by id.
func (m *Manager) UpdateMarker(sessionID, markerID string, patch MarkerPatch) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		markers := sess.currentMarkers()
		found := false
		for i := range markers {
			if markers[i].ID != markerID {
				continue
			}
			found = true
			if patch.X != nil {
				markers[i].X = *patch.X
			}
			if patch.Y != nil {
				markers[i].Y = *patch.Y
			}
			if patch.Name != nil {
				markers[i].Name = *patch.Name
			}
			if patch.Type != nil {
				if !patch.Type.Valid() {
					return fmt.Errorf("invalid marker type %q", *patch.Type)
				}
				markers[i].Type = *patch.Type
			}
		}
		if !found {
			return ErrItemNotFound
		}
		return sess.updateField(models.FieldMarkers, markers)
	})
}

// AddCallout appends a placeholder callout.
func (m *Manager) AddCallout(sessionID string) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		callouts := append(sess.currentCallouts(), models.MapCallout{
			ID:         makeItemID("callout"),
			X:          50,
			Y:          30,
			Title:      "NEW CALLOUT",
			ColorType:  models.CalloutPrimary,
			MarkerType: models.MarkerStandard,
		})
		return sess.updateField(models.FieldCallouts, callouts)
	})
}

// RemoveCallout deletes a callout by id.
func (m *Manager) RemoveCallout(sessionID, calloutID string) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		callouts := sess.currentCallouts()
		next := callouts[:0:0]
		for _, c := range callouts {
			if c.ID != calloutID {
				next = append(next, c)
			}
		}
		if len(next) == len(callouts) {
			return ErrItemNotFound
		}
		return sess.updateField(models.FieldCallouts, next)
	})
}

// UpdateCallout patches a callout by id.
func (m *Manager) UpdateCallout(sessionID, calloutID string, patch CalloutPatch) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		callouts := sess.currentCallouts()
		found := false
		for i := range callouts {
			if callouts[i].ID != calloutID {
				continue
			}
			found = true
			if patch.X != nil {
				callouts[i].X = *patch.X
			}
			if patch.Y != nil {
				callouts[i].Y = *patch.Y
			}
			if patch.Title != nil {
				callouts[i].Title = *patch.Title
			}
			if patch.Image != nil {
				callouts[i].Image = *patch.Image
			}
			if patch.ColorType != nil {
				if !patch.ColorType.Valid() {
					return fmt.Errorf("invalid callout color %q", *patch.ColorType)
				}
				callouts[i].ColorType = *patch.ColorType
			}
			if patch.MarkerType != nil {
				if !patch.MarkerType.Valid() {
					return fmt.Errorf("invalid marker type %q", *patch.MarkerType)
				}
				callouts[i].MarkerType = *patch.MarkerType
			}
		}
		if !found {
			return ErrItemNotFound
		}
		return sess.updateField(models.FieldCallouts, callouts)
	})
}

// AddLeader appends a placeholder leader.
func (m *Manager) AddLeader(sessionID string) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		leaders := append(sess.currentLeaders(), models.Leader{
			ID:    makeItemID("leader"),
			Name:  "NEW LEADER",
			Title: "TITLE",
		})
		return sess.updateField(models.FieldLeaders, leaders)
	})
}

// RemoveLeader deletes a leader by id.
func (m *Manager) RemoveLeader(sessionID, leaderID string) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		leaders := sess.currentLeaders()
		next := leaders[:0:0]
		for _, l := range leaders {
			if l.ID != leaderID {
				next = append(next, l)
			}
		}
		if len(next) == len(leaders) {
			return ErrItemNotFound
		}
		return sess.updateField(models.FieldLeaders, next)
	})
}

// UpdateLeader patches a leader by id.
func (m *Manager) UpdateLeader(sessionID, leaderID string, patch LeaderPatch) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		leaders := sess.currentLeaders()
		found := false
		for i := range leaders {
			if leaders[i].ID != leaderID {
				continue
			}
			found = true
			if patch.Name != nil {
				leaders[i].Name = *patch.Name
			}
			if patch.Title != nil {
				leaders[i].Title = *patch.Title
			}
			if patch.Image != nil {
				leaders[i].Image = *patch.Image
			}
		}
		if !found {
			return ErrItemNotFound
		}
		return sess.updateField(models.FieldLeaders, leaders)
	})
}

// SetWardName renames one ward by position.
func (m *Manager) SetWardName(sessionID string, index int, name string) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		wards := sess.currentWardNames()
		if index < 0 || index >= len(wards) {
			return ErrBadIndex
		}
		wards[index] = name
		return sess.updateField(models.FieldWardNames, wards)
	})
}

// BeginDrag starts moving a marker or callout.
func (m *Manager) BeginDrag(sessionID, itemID string, kind DragKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if kind != DragMarker && kind != DragCallout {
		return ErrInvalidKind
	}

	switch kind {
	case DragMarker:
		if !containsMarker(sess.currentMarkers(), itemID) {
			return ErrItemNotFound
		}
	case DragCallout:
		if !containsCallout(sess.currentCallouts(), itemID) {
			return ErrItemNotFound
		}
	}

	sess.drag = &dragState{id: itemID, kind: kind}
	return nil
}

// Drag moves the active item to the pointer position, expressed as a
// percentage of the bounding box and clamped to [0,100] on both axes. The
// pointer may be outside the box; the item stays on the edge.
func (m *Manager) Drag(sessionID string, pointerX, pointerY float64, bounds Bounds) (models.SiteConfig, error) {
	return m.mutate(sessionID, func(sess *editSession) error {
		if sess.drag == nil {
			return ErrNoActiveDrag
		}
		if bounds.Width <= 0 || bounds.Height <= 0 {
			return fmt.Errorf("bounds must have positive width and height")
		}

		x := clampPercent((pointerX - bounds.Left) / bounds.Width * 100)
		y := clampPercent((pointerY - bounds.Top) / bounds.Height * 100)

		switch sess.drag.kind {
		case DragMarker:
			markers := sess.currentMarkers()
			for i := range markers {
				if markers[i].ID == sess.drag.id {
					markers[i].X = x
					markers[i].Y = y
				}
			}
			return sess.updateField(models.FieldMarkers, markers)
		default:
			callouts := sess.currentCallouts()
			for i := range callouts {
				if callouts[i].ID == sess.drag.id {
					callouts[i].X = x
					callouts[i].Y = y
				}
			}
			return sess.updateField(models.FieldCallouts, callouts)
		}
	})
}

// EndDrag releases the active drag. It is a no-op when nothing is dragging,
// so a mouse-up outside the map never errors.
func (m *Manager) EndDrag(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	sess.drag = nil
	return nil
}

// Save commits the draft through the catalog and closes the session.
func (m *Manager) Save(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	m.close(sess)
	m.mu.Unlock()

	var err error
	if sess.sponsor != nil {
		err = m.catalog.CommitSponsor(ctx, sess.cityID, *sess.sponsor)
	} else {
		err = m.catalog.CommitTemplate(ctx, sess.cityID, sess.cityName, sess.template)
	}
	if err != nil {
		return err
	}

	m.log.Info("Edit session saved", map[string]interface{}{
		"session_id": sessionID,
		"city_id":    sess.cityID,
	})
	return nil
}

// Discard closes the session without committing anything.
func (m *Manager) Discard(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	m.close(sess)
	return nil
}

// close expects the mutex held.
func (m *Manager) close(sess *editSession) {
	delete(m.sessions, sess.id)
	delete(m.byCity, sess.cityID)
	if m.broadcaster != nil {
		m.broadcaster.CloseSession(sess.id)
	}
}

// mutate runs fn under the lock, recomputes the preview, and pushes it to
// the broadcaster.
func (m *Manager) mutate(sessionID string, fn func(*editSession) error) (models.SiteConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return models.SiteConfig{}, ErrSessionNotFound
	}
	if err := fn(sess); err != nil {
		return models.SiteConfig{}, err
	}

	cfg := m.preview(sess)
	if m.broadcaster != nil {
		m.broadcaster.BroadcastPreview(sess.id, cfg)
	}
	return cfg, nil
}

// preview expects the mutex held.
func (m *Manager) preview(sess *editSession) models.SiteConfig {
	draftCity := models.CityGroup{
		ID:         sess.cityID,
		Name:       sess.cityName,
		IsArchived: sess.cityArchived,
		Template:   sess.template,
	}

	if sess.sponsor != nil {
		return models.Merge(draftCity, *sess.sponsor)
	}

	logo := sess.template.NFCLogo
	if len(sess.baseSponsors) > 0 && sess.baseSponsors[0].SponsorLogo != "" {
		logo = sess.baseSponsors[0].SponsorLogo
	}
	return models.Merge(draftCity, models.SponsorRecord{
		ID:          "preview",
		SponsorName: "PREVIEW MODE",
		SponsorLogo: logo,
		Overrides:   models.Overrides{},
	})
}

// updateField is the single write path for draft edits.
func (s *editSession) updateField(key models.FieldKey, value any) error {
	if s.sponsor == nil {
		return models.SetTemplateValue(&s.template, key, value)
	}

	if reflect.DeepEqual(value, models.TemplateValue(&s.template, key)) {
		delete(s.sponsor.Overrides, key)
		return nil
	}
	if s.sponsor.Overrides == nil {
		s.sponsor.Overrides = models.Overrides{}
	}
	s.sponsor.Overrides[key] = value
	return nil
}

// current* return a mutable copy of the effective collection: the sponsor
// override when present, the template otherwise.
func (s *editSession) currentMarkers() []models.MapMarker {
	if s.sponsor != nil {
		if v, ok := s.sponsor.Overrides[models.FieldMarkers].([]models.MapMarker); ok {
			return append([]models.MapMarker(nil), v...)
		}
	}
	return append([]models.MapMarker(nil), s.template.Markers...)
}

func (s *editSession) currentCallouts() []models.MapCallout {
	if s.sponsor != nil {
		if v, ok := s.sponsor.Overrides[models.FieldCallouts].([]models.MapCallout); ok {
			return append([]models.MapCallout(nil), v...)
		}
	}
	return append([]models.MapCallout(nil), s.template.Callouts...)
}

func (s *editSession) currentLeaders() []models.Leader {
	if s.sponsor != nil {
		if v, ok := s.sponsor.Overrides[models.FieldLeaders].([]models.Leader); ok {
			return append([]models.Leader(nil), v...)
		}
	}
	return append([]models.Leader(nil), s.template.Leaders...)
}

func (s *editSession) currentWardNames() []string {
	if s.sponsor != nil {
		if v, ok := s.sponsor.Overrides[models.FieldWardNames].([]string); ok {
			return append([]string(nil), v...)
		}
	}
	return append([]string(nil), s.template.WardNames...)
}

func containsMarker(markers []models.MapMarker, id string) bool {
	for _, m := range markers {
		if m.ID == id {
			return true
		}
	}
	return false
}

func containsCallout(callouts []models.MapCallout, id string) bool {
	for _, c := range callouts {
		if c.ID == id {
			return true
		}
	}
	return false
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func makeItemID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), cuid.Slug())
}
