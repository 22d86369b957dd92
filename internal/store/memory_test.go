package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
)

func seedMemory(t *testing.T) *Memory {
	t.Helper()
	s := NewMemory()
	ctx := context.Background()
	for _, city := range SeedCities() {
		require.NoError(t, s.UpsertCity(ctx, city))
		for _, sponsor := range city.Sponsors {
			require.NoError(t, s.UpsertSponsor(ctx, city.ID, sponsor))
		}
	}
	return s
}

func TestMemory_ListCities_Empty(t *testing.T) {
	s := NewMemory()

	cities, err := s.ListCities(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestMemory_RoundTrip(t *testing.T) {
	s := seedMemory(t)

	cities, err := s.ListCities(context.Background())
	require.NoError(t, err)
	require.Len(t, cities, 1)

	city := cities[0]
	assert.Equal(t, "city-vegas", city.ID)
	assert.Equal(t, "LAS VEGAS", city.Name)
	assert.Equal(t, "#009cdc", city.Template.PrimaryColor)
	require.Len(t, city.Sponsors, 2)
	assert.Equal(t, "Allegiant Air", city.Sponsors[0].SponsorName)
	assert.Equal(t, "VIBRANT", city.Sponsors[1].Overrides[models.FieldProjectName])
}

func TestMemory_UpsertCity_ReplacesTemplate(t *testing.T) {
	s := seedMemory(t)
	ctx := context.Background()

	cities, err := s.ListCities(ctx)
	require.NoError(t, err)
	updated := cities[0]
	updated.Template.PrimaryColor = "#112233"
	updated.IsArchived = true
	require.NoError(t, s.UpsertCity(ctx, updated))

	cities, err = s.ListCities(ctx)
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "#112233", cities[0].Template.PrimaryColor)
	assert.True(t, cities[0].IsArchived)
	// Sponsor rows survive a city upsert.
	assert.Len(t, cities[0].Sponsors, 2)
}

func TestMemory_UpsertSponsor_ReplacesRow(t *testing.T) {
	s := seedMemory(t)
	ctx := context.Background()

	sponsor := models.SponsorRecord{
		ID:          "vegas-dignity",
		SponsorName: "Dignity Health",
		SponsorLogo: "https://example.test/dignity.svg",
		IsArchived:  true,
		Overrides:   models.Overrides{models.FieldCourtCount: "25+"},
	}
	require.NoError(t, s.UpsertSponsor(ctx, "city-vegas", sponsor))

	cities, err := s.ListCities(ctx)
	require.NoError(t, err)
	require.Len(t, cities[0].Sponsors, 2)
	got := cities[0].Sponsors[1]
	assert.True(t, got.IsArchived)
	assert.Equal(t, "25+", got.Overrides[models.FieldCourtCount])
	_, hasProject := got.Overrides[models.FieldProjectName]
	assert.False(t, hasProject)
}

func TestMemory_UpsertSponsor_UnknownCity(t *testing.T) {
	s := NewMemory()

	err := s.UpsertSponsor(context.Background(), "city-missing", models.SponsorRecord{ID: "x"})
	assert.Error(t, err)
}

func TestMemory_ListCities_ReturnsCopies(t *testing.T) {
	s := seedMemory(t)
	ctx := context.Background()

	first, err := s.ListCities(ctx)
	require.NoError(t, err)
	first[0].Template.PrimaryColor = "#bad"
	first[0].Sponsors[0].SponsorName = "mutated"
	first[0].Template.Markers[0].X = 99

	second, err := s.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, "#009cdc", second[0].Template.PrimaryColor)
	assert.Equal(t, "Allegiant Air", second[0].Sponsors[0].SponsorName)
	assert.Equal(t, 50.0, second[0].Template.Markers[0].X)
}
