package services

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/config"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
)

var (
	ErrNoMatch        = errors.New("no site matches the access key")
	ErrBadAdminLogin  = errors.New("invalid admin password")
	ErrEmptyAccessKey = errors.New("access key must not be empty")
)

// GateDestination is where a resolved access key sends the visitor.
type GateDestination struct {
	// Admin is true when the key was the master access key. SiteID is empty.
	Admin bool `json:"admin"`

	// SiteID identifies the sponsor site to open when Admin is false.
	SiteID string `json:"siteId,omitempty"`
}

// GateService resolves entry-page access keys against the public listing.
type GateService interface {
	// Resolve maps a raw access key to a destination.
	// Returns ErrEmptyAccessKey for blank input and ErrNoMatch when nothing
	// matched.
	Resolve(key string) (GateDestination, error)

	// CheckAdminPassword validates the admin console login.
	CheckAdminPassword(password string) error
}

type gateService struct {
	catalog CatalogService
	cfg     config.AdminConfig
	log     *logger.Logger
}

// NewGateService creates a gate backed by the catalog's public listing.
func NewGateService(catalog CatalogService, cfg config.AdminConfig, log *logger.Logger) GateService {
	return &gateService{
		catalog: catalog,
		cfg:     cfg,
		log:     log,
	}
}

// Resolve checks the master key first, then exact sponsor passwords, then a
// case-insensitive convenience fallback over sponsor id, city name, and
// sponsor name. Only active sites participate.
func (s *gateService) Resolve(key string) (GateDestination, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return GateDestination{}, ErrEmptyAccessKey
	}

	if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.MasterKey)) == 1 {
		return GateDestination{Admin: true}, nil
	}

	sites := s.catalog.PublicSites()

	for _, site := range sites {
		if site.SponsorPassword != "" && site.SponsorPassword == key {
			return GateDestination{SiteID: site.ID}, nil
		}
	}

	// Demo-friendly fallback tiers, most specific first.
	lower := strings.ToLower(key)
	for _, pick := range []func(models.SiteConfig) string{
		func(c models.SiteConfig) string { return c.ID },
		func(c models.SiteConfig) string { return c.ProjectCity },
		func(c models.SiteConfig) string { return c.SponsorName },
	} {
		for _, site := range sites {
			if strings.ToLower(pick(site)) == lower {
				return GateDestination{SiteID: site.ID}, nil
			}
		}
	}

	s.log.Warn("Access key matched nothing", map[string]interface{}{"key_length": len(key)})
	return GateDestination{}, ErrNoMatch
}

func (s *gateService) CheckAdminPassword(password string) error {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) != 1 {
		return ErrBadAdminLogin
	}
	return nil
}
