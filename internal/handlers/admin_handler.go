package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/NFC-FC/sponsorship-hub-wiz/internal/errors"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/services"
)

// AdminHandler serves the dashboard: login, city and sponsor creation, and
// the two-step archive flow.
type AdminHandler struct {
	catalog services.CatalogService
	gate    services.GateService
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(catalog services.CatalogService, gate services.GateService) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		gate:    gate,
	}
}

// LoginRequest represents the admin console login payload.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// CreateCityRequest represents the new city hub payload.
type CreateCityRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSponsorRequest represents the new sponsor payload.
type CreateSponsorRequest struct {
	Name string `json:"name" binding:"required"`
}

// ArchiveRequest represents a staged archive action.
type ArchiveRequest struct {
	CityID    string `json:"cityId" binding:"required"`
	SponsorID string `json:"sponsorId"`
}

// CitiesResponse represents the dashboard city listing.
type CitiesResponse struct {
	Cities []models.CityGroup `json:"cities"`
	Count  int                `json:"count"`
}

// Login handles POST /api/v1/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if err := h.gate.CheckAdminPassword(req.Password); err != nil {
		apierrors.Unauthorized(c, "Invalid admin password")
		return
	}
	c.Status(http.StatusNoContent)
}

// Cities handles GET /api/v1/admin/cities.
// The dashboard sees everything, archived entries included.
func (h *AdminHandler) Cities(c *gin.Context) {
	cities := h.catalog.Cities()
	c.JSON(http.StatusOK, CitiesResponse{
		Cities: cities,
		Count:  len(cities),
	})
}

// CreateCity handles POST /api/v1/admin/cities.
func (h *AdminHandler) CreateCity(c *gin.Context) {
	var req CreateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	city, err := h.catalog.CreateCity(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, services.ErrEmptyName) {
			apierrors.BadRequest(c, "City name must not be empty", nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to create city", err)
		return
	}
	c.JSON(http.StatusCreated, city)
}

// CreateSponsor handles POST /api/v1/admin/cities/:cityID/sponsors.
func (h *AdminHandler) CreateSponsor(c *gin.Context) {
	var req CreateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	sponsor, err := h.catalog.CreateSponsor(c.Request.Context(), c.Param("cityID"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCityNotFound):
			apierrors.NotFound(c, "City not found")
		case errors.Is(err, services.ErrCityArchived):
			apierrors.Conflict(c, "City is archived")
		case errors.Is(err, services.ErrEmptyName):
			apierrors.BadRequest(c, "Sponsor name must not be empty", nil)
		default:
			apierrors.InternalServerError(c, "Failed to create sponsor", err)
		}
		return
	}
	c.JSON(http.StatusCreated, sponsor)
}

// RequestArchive handles POST /api/v1/admin/archive.
// Nothing is archived until the confirm call lands.
func (h *AdminHandler) RequestArchive(c *gin.Context) {
	var req ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	target := services.ArchiveTarget{CityID: req.CityID, SponsorID: req.SponsorID}
	if err := h.catalog.RequestArchive(target); err != nil {
		switch {
		case errors.Is(err, services.ErrCityNotFound):
			apierrors.NotFound(c, "City not found")
		case errors.Is(err, services.ErrSponsorNotFound):
			apierrors.NotFound(c, "Sponsor not found")
		default:
			apierrors.InternalServerError(c, "Failed to stage archive", err)
		}
		return
	}
	c.JSON(http.StatusOK, target)
}

// ConfirmArchive handles POST /api/v1/admin/archive/confirm.
func (h *AdminHandler) ConfirmArchive(c *gin.Context) {
	if err := h.catalog.ConfirmArchive(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, services.ErrNoPendingAction):
			apierrors.Conflict(c, "No archive action is pending")
		case errors.Is(err, services.ErrCityNotFound), errors.Is(err, services.ErrSponsorNotFound):
			apierrors.NotFound(c, "Archive target no longer exists")
		default:
			apierrors.InternalServerError(c, "Failed to confirm archive", err)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelArchive handles POST /api/v1/admin/archive/cancel.
func (h *AdminHandler) CancelArchive(c *gin.Context) {
	h.catalog.CancelArchive()
	c.Status(http.StatusNoContent)
}
