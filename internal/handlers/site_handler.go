package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/NFC-FC/sponsorship-hub-wiz/internal/errors"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/middleware"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/services"
)

// SiteHandler serves the public site listing and the entry gate.
type SiteHandler struct {
	catalog services.CatalogService
	gate    services.GateService
}

// NewSiteHandler creates a new SiteHandler instance.
func NewSiteHandler(catalog services.CatalogService, gate services.GateService) *SiteHandler {
	return &SiteHandler{
		catalog: catalog,
		gate:    gate,
	}
}

// SitesResponse represents the public listing response.
type SitesResponse struct {
	Sites []models.SiteConfig `json:"sites"`
	Count int                 `json:"count"`
}

// GateRequest represents the entry gate payload.
type GateRequest struct {
	Key string `json:"key" binding:"required"`
}

// GateResponse represents a resolved entry key.
type GateResponse struct {
	Route  string `json:"route"`
	SiteID string `json:"siteId,omitempty"`
}

// List handles GET /api/v1/sites.
// Archived cities and sponsors are filtered out of the listing.
func (h *SiteHandler) List(c *gin.Context) {
	sites := h.catalog.PublicSites()
	if sites == nil {
		sites = []models.SiteConfig{}
	}
	c.JSON(http.StatusOK, SitesResponse{
		Sites: sites,
		Count: len(sites),
	})
}

// Get handles GET /api/v1/sites/:id.
// Archived sites still resolve; clients read isArchived to show the notice.
func (h *SiteHandler) Get(c *gin.Context) {
	site, err := h.catalog.ResolveSite(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSiteNotFound) {
			apierrors.NotFound(c, "No site found for this id")
			return
		}
		apierrors.InternalServerError(c, "Failed to resolve site", err)
		return
	}
	c.JSON(http.StatusOK, site)
}

// Gate handles POST /api/v1/gate.
// A wrong key gets the same 404 as an unknown one; the entry page shows a
// single "invalid key" state either way.
func (h *SiteHandler) Gate(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req GateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	dest, err := h.gate.Resolve(req.Key)
	if err != nil {
		if errors.Is(err, services.ErrEmptyAccessKey) {
			apierrors.BadRequest(c, "Access key must not be empty", nil)
			return
		}
		if errors.Is(err, services.ErrNoMatch) {
			apierrors.NotFound(c, "Invalid access key")
			return
		}
		apierrors.InternalServerError(c, "Failed to resolve access key", err)
		return
	}

	if dest.Admin {
		if log != nil {
			log.Info("Master key accepted at gate", nil)
		}
		c.JSON(http.StatusOK, GateResponse{Route: "admin"})
		return
	}
	c.JSON(http.StatusOK, GateResponse{Route: "site", SiteID: dest.SiteID})
}
