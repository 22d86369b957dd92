package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
)

// Memory is an in-process Store used when no database is configured and in
// tests. All reads return deep copies so callers can never mutate stored
// state through aliased slices.
type Memory struct {
	mu       sync.RWMutex
	cities   map[string]models.CityGroup
	order    []string
	sponsors map[string][]models.SponsorRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cities:   make(map[string]models.CityGroup),
		sponsors: make(map[string][]models.SponsorRecord),
	}
}

// ListCities returns all stored city groups in insertion order.
func (s *Memory) ListCities(ctx context.Context) ([]models.CityGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities := make([]models.CityGroup, 0, len(s.order))
	for _, id := range s.order {
		city := s.cities[id].Clone()
		city.Sponsors = nil
		for _, sponsor := range s.sponsors[id] {
			city.Sponsors = append(city.Sponsors, sponsor.Clone())
		}
		cities = append(cities, city)
	}
	return cities, nil
}

// UpsertCity stores the city row. Sponsor rows already held for the city are
// kept untouched.
func (s *Memory) UpsertCity(ctx context.Context, city models.CityGroup) error {
	if city.ID == "" {
		return fmt.Errorf("city id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := city.Clone()
	stored.Sponsors = nil
	if _, exists := s.cities[city.ID]; !exists {
		s.order = append(s.order, city.ID)
	}
	s.cities[city.ID] = stored
	return nil
}

// UpsertSponsor stores a sponsor row under the given city, replacing any
// existing row with the same id.
func (s *Memory) UpsertSponsor(ctx context.Context, cityID string, sponsor models.SponsorRecord) error {
	if sponsor.ID == "" {
		return fmt.Errorf("sponsor id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cities[cityID]; !exists {
		return fmt.Errorf("city %s not found", cityID)
	}

	rows := s.sponsors[cityID]
	for i, existing := range rows {
		if existing.ID == sponsor.ID {
			rows[i] = sponsor.Clone()
			return nil
		}
	}
	s.sponsors[cityID] = append(rows, sponsor.Clone())
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *Memory) Ping(ctx context.Context) error {
	return nil
}
