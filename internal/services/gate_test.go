package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/config"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
)

func testGate(t *testing.T) (GateService, CatalogService) {
	t.Helper()
	catalog := seededCatalog(t)
	cfg := config.AdminConfig{
		Password:  "Fitnesscourt0987!",
		MasterKey: "nfc-admin-2026",
	}
	return NewGateService(catalog, cfg, logger.New("test")), catalog
}

func TestGate_MasterKey(t *testing.T) {
	gate, _ := testGate(t)

	dest, err := gate.Resolve("nfc-admin-2026")
	require.NoError(t, err)
	assert.True(t, dest.Admin)
	assert.Empty(t, dest.SiteID)
}

func TestGate_SponsorPassword(t *testing.T) {
	gate, _ := testGate(t)

	dest, err := gate.Resolve("vegas-dignity-2026")
	require.NoError(t, err)
	assert.False(t, dest.Admin)
	assert.Equal(t, "vegas-dignity", dest.SiteID)
}

func TestGate_PasswordIsCaseSensitive(t *testing.T) {
	gate, _ := testGate(t)

	// Wrong-cased passwords only succeed if a fallback field matches, and
	// none of them equal this string.
	_, err := gate.Resolve("VEGAS-DIGNITY-2026")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGate_FallbackTiers(t *testing.T) {
	gate, _ := testGate(t)

	tests := []struct {
		name   string
		key    string
		siteID string
	}{
		{"sponsor id, case-insensitive", "VEGAS-DIGNITY", "vegas-dignity"},
		{"city name", "las vegas", "default-vegas"},
		{"sponsor name", "allegiant air", "default-vegas"},
		{"surrounding whitespace trimmed", "  Dignity Health  ", "vegas-dignity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, err := gate.Resolve(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.siteID, dest.SiteID)
		})
	}
}

func TestGate_NoMatch(t *testing.T) {
	gate, _ := testGate(t)

	_, err := gate.Resolve("definitely-not-a-key")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = gate.Resolve("   ")
	assert.ErrorIs(t, err, ErrEmptyAccessKey)
}

func TestGate_ArchivedSitesDoNotParticipate(t *testing.T) {
	gate, catalog := testGate(t)
	ctx := context.Background()

	require.NoError(t, catalog.RequestArchive(ArchiveTarget{CityID: "city-vegas", SponsorID: "vegas-dignity"}))
	require.NoError(t, catalog.ConfirmArchive(ctx))

	_, err := gate.Resolve("vegas-dignity-2026")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGate_CheckAdminPassword(t *testing.T) {
	gate, _ := testGate(t)

	assert.NoError(t, gate.CheckAdminPassword("Fitnesscourt0987!"))
	assert.ErrorIs(t, gate.CheckAdminPassword("wrong"), ErrBadAdminLogin)
	assert.ErrorIs(t, gate.CheckAdminPassword(""), ErrBadAdminLogin)
}
