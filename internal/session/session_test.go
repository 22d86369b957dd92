package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/services"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/store"
)

type recordingBroadcaster struct {
	previews []models.SiteConfig
	closed   []string
}

func (r *recordingBroadcaster) BroadcastPreview(sessionID string, cfg models.SiteConfig) {
	r.previews = append(r.previews, cfg)
}

func (r *recordingBroadcaster) CloseSession(sessionID string) {
	r.closed = append(r.closed, sessionID)
}

func newTestManager(t *testing.T) (*Manager, services.CatalogService, *recordingBroadcaster) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()
	for _, city := range store.SeedCities() {
		require.NoError(t, mem.UpsertCity(ctx, city))
		for _, sponsor := range city.Sponsors {
			require.NoError(t, mem.UpsertSponsor(ctx, city.ID, sponsor))
		}
	}

	catalog := services.NewCatalogService(mem, logger.New("test"))
	require.NoError(t, catalog.Load(ctx))

	b := &recordingBroadcaster{}
	return NewManager(catalog, b, logger.New("test")), catalog, b
}

func TestManager_Open_TemplateSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	id, preview, err := m.Open("city-vegas", "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// Placeholder sponsor identity, first sponsor's logo.
	assert.Equal(t, "preview", preview.ID)
	assert.Equal(t, "PREVIEW MODE", preview.SponsorName)
	assert.Equal(t, store.SeedCities()[0].Sponsors[0].SponsorLogo, preview.SponsorLogo)
	assert.Equal(t, "#009cdc", preview.PrimaryColor)
}

func TestManager_Open_SponsorSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, preview, err := m.Open("city-vegas", "vegas-dignity")
	require.NoError(t, err)

	assert.Equal(t, "vegas-dignity", preview.ID)
	assert.Equal(t, "VIBRANT", preview.ProjectName)
	assert.Equal(t, "#0072ce", preview.PrimaryColor)
}

func TestManager_Open_Errors(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, _, err := m.Open("city-missing", "")
	assert.ErrorIs(t, err, services.ErrCityNotFound)

	_, _, err = m.Open("city-vegas", "no-such-sponsor")
	assert.ErrorIs(t, err, services.ErrSponsorNotFound)
}

func TestManager_Open_CityBusy(t *testing.T) {
	m, _, _ := newTestManager(t)

	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	_, _, err = m.Open("city-vegas", "vegas-dignity")
	assert.ErrorIs(t, err, ErrCityBusy)

	// Discarding frees the city for a new session.
	require.NoError(t, m.Discard(id))
	_, _, err = m.Open("city-vegas", "vegas-dignity")
	assert.NoError(t, err)
}

func TestManager_UpdateField_SetsOverride(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "default-vegas")
	require.NoError(t, err)

	preview, err := m.UpdateField(id, models.FieldPrimaryColor, "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", preview.PrimaryColor)

	// The template keeps its value; only the draft override changed.
	require.NoError(t, m.Save(context.Background(), id))
}

func TestManager_UpdateField_NoOpRemovesOverride(t *testing.T) {
	m, catalog, _ := newTestManager(t)
	ctx := context.Background()

	id, _, err := m.Open("city-vegas", "vegas-dignity")
	require.NoError(t, err)

	// Dignity overrides primaryColor; typing the template value back should
	// erase the override, not store a redundant equal copy.
	_, err = m.UpdateField(id, models.FieldPrimaryColor, "#009cdc")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, id))

	city, err := catalog.CityByID("city-vegas")
	require.NoError(t, err)
	sponsor := city.SponsorByID("vegas-dignity")
	require.NotNil(t, sponsor)
	_, overridden := sponsor.Overrides[models.FieldPrimaryColor]
	assert.False(t, overridden)
	// Untouched overrides survive.
	assert.Equal(t, "VIBRANT", sponsor.Overrides[models.FieldProjectName])
}

func TestManager_UpdateField_TemplateSessionWritesTemplate(t *testing.T) {
	m, catalog, _ := newTestManager(t)
	ctx := context.Background()

	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	_, err = m.UpdateField(id, models.FieldCourtCount, "40+")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, id))

	city, err := catalog.CityByID("city-vegas")
	require.NoError(t, err)
	assert.Equal(t, "40+", city.Template.CourtCount)

	// Sponsors with no override now inherit the new value.
	site, err := catalog.ResolveSite("default-vegas")
	require.NoError(t, err)
	assert.Equal(t, "40+", site.CourtCount)
	// Sponsors that override the field keep their value.
	site, err = catalog.ResolveSite("vegas-dignity")
	require.NoError(t, err)
	assert.Equal(t, "20+", site.CourtCount)
}

func TestManager_UpdateField_UnknownKey(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	_, err = m.UpdateField(id, models.FieldKey("sponsorPassword"), "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestManager_UpdateSponsorField(t *testing.T) {
	m, catalog, _ := newTestManager(t)
	ctx := context.Background()

	id, _, err := m.Open("city-vegas", "default-vegas")
	require.NoError(t, err)

	preview, err := m.UpdateSponsorField(id, SponsorFieldName, "Allegiant Airlines")
	require.NoError(t, err)
	assert.Equal(t, "Allegiant Airlines", preview.SponsorName)

	_, err = m.UpdateSponsorField(id, SponsorFieldPassword, "new-pass-2027")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, id))

	site, err := catalog.ResolveSite("default-vegas")
	require.NoError(t, err)
	assert.Equal(t, "Allegiant Airlines", site.SponsorName)
	assert.Equal(t, "new-pass-2027", site.SponsorPassword)
}

func TestManager_UpdateSponsorField_TemplateSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	_, err = m.UpdateSponsorField(id, SponsorFieldName, "x")
	assert.ErrorIs(t, err, ErrNoSponsor)
}

func TestManager_Collections_WholeArrayOverride(t *testing.T) {
	m, catalog, _ := newTestManager(t)
	ctx := context.Background()

	id, _, err := m.Open("city-vegas", "default-vegas")
	require.NoError(t, err)

	preview, err := m.AddLeader(id)
	require.NoError(t, err)
	assert.Len(t, preview.Leaders, 6)
	assert.Equal(t, "NEW LEADER", preview.Leaders[5].Name)

	require.NoError(t, m.Save(ctx, id))

	city, err := catalog.CityByID("city-vegas")
	require.NoError(t, err)
	sponsor := city.SponsorByID("default-vegas")
	require.NotNil(t, sponsor)

	// The sponsor now carries the whole 6-element list as one override; the
	// template still has 5 leaders.
	leaders, ok := sponsor.Overrides[models.FieldLeaders].([]models.Leader)
	require.True(t, ok)
	assert.Len(t, leaders, 6)
	assert.Len(t, city.Template.Leaders, 5)
}

func TestManager_RemoveLeader_BackToTemplateRemovesOverride(t *testing.T) {
	m, _, _ := newTestManager(t)

	id, _, err := m.Open("city-vegas", "default-vegas")
	require.NoError(t, err)

	preview, err := m.AddLeader(id)
	require.NoError(t, err)
	added := preview.Leaders[len(preview.Leaders)-1].ID

	preview, err = m.RemoveLeader(id, added)
	require.NoError(t, err)
	assert.Len(t, preview.Leaders, 5)
}

func TestManager_MarkerLifecycle(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	preview, err := m.AddMarker(id)
	require.NoError(t, err)
	require.Len(t, preview.Markers, 9)
	added := preview.Markers[8]
	assert.Equal(t, 50.0, added.X)
	assert.Equal(t, 50.0, added.Y)
	assert.Equal(t, "New Location", added.Name)
	assert.Equal(t, models.MarkerStandard, added.Type)

	name := "Airport Plaza"
	mtype := models.MarkerPod
	preview, err = m.UpdateMarker(id, added.ID, MarkerPatch{Name: &name, Type: &mtype})
	require.NoError(t, err)
	assert.Equal(t, "Airport Plaza", preview.Markers[8].Name)
	assert.Equal(t, models.MarkerPod, preview.Markers[8].Type)

	preview, err = m.RemoveMarker(id, added.ID)
	require.NoError(t, err)
	assert.Len(t, preview.Markers, 8)

	_, err = m.RemoveMarker(id, "no-such-marker")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestManager_CalloutLifecycle(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	preview, err := m.AddCallout(id)
	require.NoError(t, err)
	require.Len(t, preview.Callouts, 4)
	added := preview.Callouts[3]
	assert.Equal(t, 50.0, added.X)
	assert.Equal(t, 30.0, added.Y)
	assert.Equal(t, "NEW CALLOUT", added.Title)
	assert.Equal(t, models.CalloutPrimary, added.ColorType)

	color := models.CalloutPod
	pair := models.MarkerPod
	preview, err = m.UpdateCallout(id, added.ID, CalloutPatch{ColorType: &color, MarkerType: &pair})
	require.NoError(t, err)
	assert.Equal(t, models.CalloutPod, preview.Callouts[3].ColorType)
	assert.Equal(t, models.MarkerPod, preview.Callouts[3].MarkerType)

	bad := models.CalloutColor("neon")
	_, err = m.UpdateCallout(id, added.ID, CalloutPatch{ColorType: &bad})
	assert.Error(t, err)
}

func TestManager_SetWardName(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "vegas-dignity")
	require.NoError(t, err)

	preview, err := m.SetWardName(id, 2, "New Council Member")
	require.NoError(t, err)
	assert.Equal(t, "New Council Member", preview.WardNames[2])
	// Others untouched.
	assert.Equal(t, "Shelley Berkley", preview.WardNames[0])

	_, err = m.SetWardName(id, 42, "x")
	assert.ErrorIs(t, err, ErrBadIndex)
}

func TestManager_Drag(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	require.NoError(t, m.BeginDrag(id, "m1", DragMarker))

	// 1000x500 box at (0,0): pointer (100,450) lands at 10%/90%.
	bounds := Bounds{Left: 0, Top: 0, Width: 1000, Height: 500}
	preview, err := m.Drag(id, 100, 450, bounds)
	require.NoError(t, err)

	var m1 models.MapMarker
	for _, mk := range preview.Markers {
		if mk.ID == "m1" {
			m1 = mk
		}
	}
	assert.Equal(t, 10.0, m1.X)
	assert.Equal(t, 90.0, m1.Y)

	// Pointer outside the box clamps to the edges.
	preview, err = m.Drag(id, -50, 9999, bounds)
	require.NoError(t, err)
	for _, mk := range preview.Markers {
		if mk.ID == "m1" {
			assert.Equal(t, 0.0, mk.X)
			assert.Equal(t, 100.0, mk.Y)
		}
	}

	// Ending outside the map is fine, and ending twice is fine.
	require.NoError(t, m.EndDrag(id))
	require.NoError(t, m.EndDrag(id))

	_, err = m.Drag(id, 1, 1, bounds)
	assert.ErrorIs(t, err, ErrNoActiveDrag)
}

func TestManager_Drag_OffsetBounds(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	require.NoError(t, m.BeginDrag(id, "c1", DragCallout))

	bounds := Bounds{Left: 200, Top: 100, Width: 800, Height: 400}
	preview, err := m.Drag(id, 600, 300, bounds)
	require.NoError(t, err)

	for _, c := range preview.Callouts {
		if c.ID == "c1" {
			assert.Equal(t, 50.0, c.X)
			assert.Equal(t, 50.0, c.Y)
		}
	}
}

func TestManager_BeginDrag_Errors(t *testing.T) {
	m, _, _ := newTestManager(t)
	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	assert.ErrorIs(t, m.BeginDrag(id, "m1", DragKind("blob")), ErrInvalidKind)
	assert.ErrorIs(t, m.BeginDrag(id, "no-such", DragMarker), ErrItemNotFound)
	assert.ErrorIs(t, m.BeginDrag("no-session", "m1", DragMarker), ErrSessionNotFound)
}

func TestManager_Discard_LeavesCatalogUntouched(t *testing.T) {
	m, catalog, _ := newTestManager(t)

	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)
	_, err = m.UpdateField(id, models.FieldPrimaryColor, "#000000")
	require.NoError(t, err)
	require.NoError(t, m.Discard(id))

	city, err := catalog.CityByID("city-vegas")
	require.NoError(t, err)
	assert.Equal(t, "#009cdc", city.Template.PrimaryColor)

	_, err = m.Preview(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_SetCityName_FlowsIntoProjectCity(t *testing.T) {
	m, catalog, _ := newTestManager(t)
	ctx := context.Background()

	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	preview, err := m.SetCityName(id, "VEGAS METRO")
	require.NoError(t, err)
	assert.Equal(t, "VEGAS METRO", preview.ProjectCity)

	require.NoError(t, m.Save(ctx, id))
	site, err := catalog.ResolveSite("default-vegas")
	require.NoError(t, err)
	assert.Equal(t, "VEGAS METRO", site.ProjectCity)
}

func TestManager_BroadcastsEveryRecompute(t *testing.T) {
	m, _, b := newTestManager(t)

	id, _, err := m.Open("city-vegas", "")
	require.NoError(t, err)

	_, err = m.UpdateField(id, models.FieldCourtCount, "31+")
	require.NoError(t, err)
	_, err = m.AddMarker(id)
	require.NoError(t, err)

	require.Len(t, b.previews, 2)
	assert.Equal(t, "31+", b.previews[0].CourtCount)
	assert.Len(t, b.previews[1].Markers, 9)

	require.NoError(t, m.Discard(id))
	assert.Equal(t, []string{id}, b.closed)
}
