package store

import (
	"context"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
)

// Store defines the interface for city and sponsor persistence.
// Implementations must treat city groups as the unit of write for template
// data, with sponsors persisted per-row so concurrent edits to different
// sponsors never clobber each other.
type Store interface {
	// ListCities returns every city group, including archived ones, with
	// sponsors attached. Returns an empty slice when the store is empty.
	ListCities(ctx context.Context) ([]models.CityGroup, error)

	// UpsertCity inserts or updates the city row (name, archive flag,
	// template). Sponsor rows are not touched.
	UpsertCity(ctx context.Context, city models.CityGroup) error

	// UpsertSponsor inserts or updates a single sponsor row under the
	// given city.
	UpsertSponsor(ctx context.Context, cityID string, sponsor models.SponsorRecord) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
