package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/database"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
)

// Postgres is the Store implementation backed by a pgx connection pool.
// Templates and override maps are stored as JSONB columns; the row-level
// fields use snake_case column names.
type Postgres struct {
	db *database.Database
}

// NewPostgres creates a Store backed by the given database.
func NewPostgres(db *database.Database) *Postgres {
	return &Postgres{
		db: db,
	}
}

// ListCities loads every city row with its sponsors attached, ordered by
// city name so the dashboard listing is stable across restarts.
func (s *Postgres) ListCities(ctx context.Context) ([]models.CityGroup, error) {
	cityQuery := `
		SELECT id, name, is_archived, template
		FROM cities
		ORDER BY name
	`

	rows, err := s.db.Pool.Query(ctx, cityQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []models.CityGroup
	index := make(map[string]int)

	for rows.Next() {
		var city models.CityGroup
		var templateJSON []byte

		if err := rows.Scan(&city.ID, &city.Name, &city.IsArchived, &templateJSON); err != nil {
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}
		if err := json.Unmarshal(templateJSON, &city.Template); err != nil {
			return nil, fmt.Errorf("failed to decode template for city %s: %w", city.ID, err)
		}

		index[city.ID] = len(cities)
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate city rows: %w", err)
	}

	sponsorQuery := `
		SELECT id, city_id, sponsor_name, sponsor_logo, sponsor_password, is_archived, overrides
		FROM sponsors
		ORDER BY city_id, created_at
	`

	sponsorRows, err := s.db.Pool.Query(ctx, sponsorQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query sponsors: %w", err)
	}
	defer sponsorRows.Close()

	for sponsorRows.Next() {
		var sponsor models.SponsorRecord
		var cityID string
		var overridesJSON []byte

		err := sponsorRows.Scan(
			&sponsor.ID,
			&cityID,
			&sponsor.SponsorName,
			&sponsor.SponsorLogo,
			&sponsor.SponsorPassword,
			&sponsor.IsArchived,
			&overridesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sponsor row: %w", err)
		}
		if err := json.Unmarshal(overridesJSON, &sponsor.Overrides); err != nil {
			return nil, fmt.Errorf("failed to decode overrides for sponsor %s: %w", sponsor.ID, err)
		}
		if sponsor.Overrides == nil {
			sponsor.Overrides = models.Overrides{}
		}

		// Sponsors whose city row is missing are skipped rather than failing
		// the whole load.
		if i, ok := index[cityID]; ok {
			cities[i].Sponsors = append(cities[i].Sponsors, sponsor)
		}
	}
	if err := sponsorRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sponsor rows: %w", err)
	}

	return cities, nil
}

// UpsertCity writes the city row, replacing the stored template wholesale.
func (s *Postgres) UpsertCity(ctx context.Context, city models.CityGroup) error {
	templateJSON, err := json.Marshal(city.Template)
	if err != nil {
		return fmt.Errorf("failed to encode template for city %s: %w", city.ID, err)
	}

	query := `
		INSERT INTO cities (id, name, is_archived, template)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_archived = EXCLUDED.is_archived,
			template = EXCLUDED.template,
			updated_at = NOW()
	`

	if _, err := s.db.Pool.Exec(ctx, query, city.ID, city.Name, city.IsArchived, templateJSON); err != nil {
		return fmt.Errorf("failed to upsert city %s: %w", city.ID, err)
	}
	return nil
}

// UpsertSponsor writes a single sponsor row under the given city.
func (s *Postgres) UpsertSponsor(ctx context.Context, cityID string, sponsor models.SponsorRecord) error {
	overridesJSON, err := json.Marshal(sponsor.Overrides)
	if err != nil {
		return fmt.Errorf("failed to encode overrides for sponsor %s: %w", sponsor.ID, err)
	}

	query := `
		INSERT INTO sponsors (id, city_id, sponsor_name, sponsor_logo, sponsor_password, is_archived, overrides)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			city_id = EXCLUDED.city_id,
			sponsor_name = EXCLUDED.sponsor_name,
			sponsor_logo = EXCLUDED.sponsor_logo,
			sponsor_password = EXCLUDED.sponsor_password,
			is_archived = EXCLUDED.is_archived,
			overrides = EXCLUDED.overrides,
			updated_at = NOW()
	`

	_, err = s.db.Pool.Exec(ctx, query,
		sponsor.ID,
		cityID,
		sponsor.SponsorName,
		sponsor.SponsorLogo,
		sponsor.SponsorPassword,
		sponsor.IsArchived,
		overridesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sponsor %s: %w", sponsor.ID, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
