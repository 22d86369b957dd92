package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lucsky/cuid"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/store"
)

// Service-level errors
var (
	ErrCityNotFound    = errors.New("city not found")
	ErrSponsorNotFound = errors.New("sponsor not found")
	ErrSiteNotFound    = errors.New("site not found")
	ErrEmptyName       = errors.New("name must not be empty")
	ErrCityArchived    = errors.New("city is archived")
	ErrNoPendingAction = errors.New("no pending archive action")
)

// ArchiveTarget identifies the subject of a two-step archive. A city target
// leaves SponsorID empty.
type ArchiveTarget struct {
	CityID    string `json:"cityId"`
	SponsorID string `json:"sponsorId,omitempty"`
}

// CatalogService defines the interface for city and sponsor lifecycle
// operations. The committed catalog lives inside the service; every read
// returns deep copies and every mutation replaces whole entities, so callers
// can never reach in and change committed state directly.
type CatalogService interface {
	// Load populates the catalog from the store, falling back to the bundled
	// seed dataset when the store is unreachable or empty.
	Load(ctx context.Context) error

	// Cities returns a deep copy of every city group, archived ones included.
	Cities() []models.CityGroup

	// CityByID returns a deep copy of one city group.
	// Returns ErrCityNotFound when no city has the id.
	CityByID(cityID string) (models.CityGroup, error)

	// Subscribe returns a channel that receives a signal after every commit.
	// The channel is buffered and signals coalesce; receivers re-read state.
	Subscribe() <-chan struct{}

	// CreateCity adds a city hub seeded with placeholder template content.
	// Returns ErrEmptyName when the trimmed name is empty.
	CreateCity(ctx context.Context, name string) (models.CityGroup, error)

	// CreateSponsor adds a sponsor with empty overrides under the city.
	// Returns ErrCityNotFound or ErrCityArchived, or ErrEmptyName.
	CreateSponsor(ctx context.Context, cityID, sponsorName string) (models.SponsorRecord, error)

	// RequestArchive stages an archive action without applying it.
	RequestArchive(target ArchiveTarget) error

	// ConfirmArchive applies the pending archive action.
	// Returns ErrNoPendingAction when nothing is staged.
	ConfirmArchive(ctx context.Context) error

	// CancelArchive clears the pending archive action, if any.
	CancelArchive()

	// PendingArchive reports the currently staged action, if any.
	PendingArchive() (ArchiveTarget, bool)

	// PublicSites returns merged site configs for every active sponsor of
	// every active city, sorted by city then sponsor name.
	PublicSites() []models.SiteConfig

	// ResolveSite returns the merged site config for a sponsor id. Archived
	// sponsors and cities are still resolvable so a direct link can render
	// its archived notice. Returns ErrSiteNotFound for unknown ids.
	ResolveSite(sponsorID string) (models.SiteConfig, error)

	// CommitTemplate replaces a city's name and template wholesale.
	CommitTemplate(ctx context.Context, cityID, name string, template models.CityTemplate) error

	// CommitSponsor replaces a sponsor record wholesale.
	// Returns ErrSponsorNotFound when the sponsor is not in the city.
	CommitSponsor(ctx context.Context, cityID string, sponsor models.SponsorRecord) error
}

// catalogService is the concrete implementation of CatalogService.
// All exported methods take the mutex; internal helpers expect it held.
type catalogService struct {
	mu      sync.RWMutex
	store   store.Store
	log     *logger.Logger
	cities  []models.CityGroup
	pending *ArchiveTarget
	subs    []chan struct{}
}

// NewCatalogService creates a catalog backed by the given store. Call Load
// before serving requests.
func NewCatalogService(st store.Store, log *logger.Logger) CatalogService {
	return &catalogService{
		store: st,
		log:   log,
	}
}

// Load populates the catalog from the store. When the store is unreachable
// or empty the bundled seed dataset is used instead, and seeded data is
// written back so the next boot finds it persisted.
func (s *catalogService) Load(ctx context.Context) error {
	cities, err := s.store.ListCities(ctx)
	if err != nil {
		s.log.Error("Failed to load catalog from store, falling back to seed data", err, nil)
		cities = nil
	}
	if len(cities) == 0 {
		cities = store.SeedCities()
		for _, city := range cities {
			s.persistCity(ctx, city)
			for _, sponsor := range city.Sponsors {
				s.persistSponsor(ctx, city.ID, sponsor)
			}
		}
	}

	s.mu.Lock()
	s.cities = cities
	s.mu.Unlock()

	s.log.Info("Catalog loaded", map[string]interface{}{"cities": len(cities)})
	return nil
}

func (s *catalogService) Cities() []models.CityGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CityGroup, 0, len(s.cities))
	for _, city := range s.cities {
		out = append(out, city.Clone())
	}
	return out
}

func (s *catalogService) CityByID(cityID string) (models.CityGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(cityID)
	if i < 0 {
		return models.CityGroup{}, ErrCityNotFound
	}
	return s.cities[i].Clone(), nil
}

func (s *catalogService) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *catalogService) CreateCity(ctx context.Context, name string) (models.CityGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CityGroup{}, ErrEmptyName
	}

	city := models.CityGroup{
		ID:       makeID("city"),
		Name:     name,
		Template: blankTemplate(),
		Sponsors: []models.SponsorRecord{},
	}

	s.mu.Lock()
	s.cities = append(s.cities, city)
	s.mu.Unlock()

	s.persistCity(ctx, city)
	s.notify()
	s.log.Info("City created", map[string]interface{}{"city_id": city.ID, "name": name})
	return city.Clone(), nil
}

func (s *catalogService) CreateSponsor(ctx context.Context, cityID, sponsorName string) (models.SponsorRecord, error) {
	sponsorName = strings.TrimSpace(sponsorName)
	if sponsorName == "" {
		return models.SponsorRecord{}, ErrEmptyName
	}

	sponsor := models.SponsorRecord{
		ID:          makeID("proj"),
		SponsorName: sponsorName,
		SponsorLogo: "https://via.placeholder.com/200x100?text=Sponsor+Logo",
		Overrides:   models.Overrides{},
	}

	s.mu.Lock()
	i := s.indexOf(cityID)
	if i < 0 {
		s.mu.Unlock()
		return models.SponsorRecord{}, ErrCityNotFound
	}
	if s.cities[i].IsArchived {
		s.mu.Unlock()
		return models.SponsorRecord{}, ErrCityArchived
	}
	s.cities[i].Sponsors = append(s.cities[i].Sponsors, sponsor)
	s.mu.Unlock()

	s.persistSponsor(ctx, cityID, sponsor)
	s.notify()
	s.log.Info("Sponsor created", map[string]interface{}{
		"city_id":    cityID,
		"sponsor_id": sponsor.ID,
		"name":       sponsorName,
	})
	return sponsor.Clone(), nil
}

func (s *catalogService) RequestArchive(target ArchiveTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(target.CityID)
	if i < 0 {
		return ErrCityNotFound
	}
	if target.SponsorID != "" && s.cities[i].SponsorByID(target.SponsorID) == nil {
		return ErrSponsorNotFound
	}

	s.pending = &target
	return nil
}

func (s *catalogService) ConfirmArchive(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return ErrNoPendingAction
	}
	target := *s.pending
	s.pending = nil

	i := s.indexOf(target.CityID)
	if i < 0 {
		s.mu.Unlock()
		return ErrCityNotFound
	}

	var archivedCity *models.CityGroup
	var archivedSponsor *models.SponsorRecord

	if target.SponsorID == "" {
		s.cities[i].IsArchived = true
		c := s.cities[i].Clone()
		archivedCity = &c
	} else {
		sp := s.cities[i].SponsorByID(target.SponsorID)
		if sp == nil {
			s.mu.Unlock()
			return ErrSponsorNotFound
		}
		sp.IsArchived = true
		c := sp.Clone()
		archivedSponsor = &c
	}
	s.mu.Unlock()

	if archivedCity != nil {
		s.persistCity(ctx, *archivedCity)
	}
	if archivedSponsor != nil {
		s.persistSponsor(ctx, target.CityID, *archivedSponsor)
	}
	s.notify()
	s.log.Info("Archive confirmed", map[string]interface{}{
		"city_id":    target.CityID,
		"sponsor_id": target.SponsorID,
	})
	return nil
}

func (s *catalogService) CancelArchive() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

func (s *catalogService) PendingArchive() (ArchiveTarget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pending == nil {
		return ArchiveTarget{}, false
	}
	return *s.pending, true
}

func (s *catalogService) PublicSites() []models.SiteConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sites []models.SiteConfig
	for _, city := range s.cities {
		if city.IsArchived {
			continue
		}
		for _, sponsor := range city.Sponsors {
			if sponsor.IsArchived {
				continue
			}
			sites = append(sites, models.Merge(city, sponsor))
		}
	}

	sort.Slice(sites, func(a, b int) bool {
		if sites[a].ProjectCity != sites[b].ProjectCity {
			return sites[a].ProjectCity < sites[b].ProjectCity
		}
		return sites[a].SponsorName < sites[b].SponsorName
	})
	return sites
}

func (s *catalogService) ResolveSite(sponsorID string) (models.SiteConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, city := range s.cities {
		for _, sponsor := range city.Sponsors {
			if sponsor.ID == sponsorID {
				return models.Merge(city, sponsor), nil
			}
		}
	}
	return models.SiteConfig{}, ErrSiteNotFound
}

func (s *catalogService) CommitTemplate(ctx context.Context, cityID, name string, template models.CityTemplate) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	i := s.indexOf(cityID)
	if i < 0 {
		s.mu.Unlock()
		return ErrCityNotFound
	}
	s.cities[i].Name = name
	s.cities[i].Template = template.Clone()
	city := s.cities[i].Clone()
	s.mu.Unlock()

	s.persistCity(ctx, city)
	s.notify()
	return nil
}

func (s *catalogService) CommitSponsor(ctx context.Context, cityID string, sponsor models.SponsorRecord) error {
	s.mu.Lock()
	i := s.indexOf(cityID)
	if i < 0 {
		s.mu.Unlock()
		return ErrCityNotFound
	}
	existing := s.cities[i].SponsorByID(sponsor.ID)
	if existing == nil {
		s.mu.Unlock()
		return ErrSponsorNotFound
	}
	*existing = sponsor.Clone()
	s.mu.Unlock()

	s.persistSponsor(ctx, cityID, sponsor)
	s.notify()
	return nil
}

// indexOf expects the mutex held.
func (s *catalogService) indexOf(cityID string) int {
	for i := range s.cities {
		if s.cities[i].ID == cityID {
			return i
		}
	}
	return -1
}

// persistCity writes the city row to the store. Failures are logged and
// swallowed; in-memory state stays authoritative for the running process.
func (s *catalogService) persistCity(ctx context.Context, city models.CityGroup) {
	if err := s.store.UpsertCity(ctx, city); err != nil {
		s.log.Error("Failed to persist city", err, map[string]interface{}{"city_id": city.ID})
	}
}

func (s *catalogService) persistSponsor(ctx context.Context, cityID string, sponsor models.SponsorRecord) {
	if err := s.store.UpsertSponsor(ctx, cityID, sponsor); err != nil {
		s.log.Error("Failed to persist sponsor", err, map[string]interface{}{
			"city_id":    cityID,
			"sponsor_id": sponsor.ID,
		})
	}
}

func (s *catalogService) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// makeID builds collision-resistant ids like city-1756425600000-ab12cd34.
func makeID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), cuid.Slug())
}

// blankTemplate is the clean-slate template a new city hub starts from.
// Every field carries placeholder content so a fresh site renders end to end.
func blankTemplate() models.CityTemplate {
	return models.CityTemplate{
		ProjectName:          "Community Wellness Innovation",
		CityLogo:             "https://via.placeholder.com/400x400?text=City+Seal+Link",
		NFCLogo:              "https://github.com/NFC-FC/NFC-image-hosting/blob/main/01-Main-Shield.png?raw=true",
		PrimaryColor:         "#009cdc",
		AccentColor:          "#FF5432",
		SecondaryColor:       "#FBAB18",
		InvestmentAmount:     "$0",
		CourtCount:           "0",
		WardCount:            "1",
		WardType:             "Wards",
		WardNames:            []string{"Enter Council Member Name"},
		HeroVideo:            "https://cdn.prod.website-files.com/638a20d9b98c2f709f1402cb/63efc95f26ac7b6b0e192a29_V14%20(1920%20%C3%97%20650%20px)-transcode.mp4",
		SecondaryVideo:       "https://cdn.prod.website-files.com/638a20d9b98c2f709f1402cb/63efc95f26ac7b6b0e192a29_V14%20(1920%20%C3%97%20650%20px)-transcode.mp4",
		MasterPlanBackground: "https://via.placeholder.com/1920x1080?text=Map+Layer+Background+Link",
		SponsorRender:        "https://nationalfitnesscampaign.com/wp-content/uploads/2023/06/LV_ALLEGIANT_RENDER_HQ.png",
		Leaders:              []models.Leader{},
		EndorsementQuote:     `"Enter the official city leadership quote here. This is a placeholder for your partnership endorsement."`,
		EndorsementName:      "NAME OF SPEAKER",
		EndorsementImage:     "https://via.placeholder.com/600x800?text=Leader+Portrait+Link",
		Markers:              []models.MapMarker{},
		Callouts:             []models.MapCallout{},
		CommunityAccess:      "650k+",
		AnnualUses:           "250k+",
		CaloriesBurned:       "25M+",
	}
}
