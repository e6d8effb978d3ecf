package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/offers-api/internal/dto"
	"github.com/noah-isme/offers-api/internal/models"
	appErrors "github.com/noah-isme/offers-api/pkg/errors"
	"github.com/noah-isme/offers-api/pkg/response"
)

type offerService interface {
	FindAll(ctx context.Context, filter dto.OfferFilter) ([]models.Offer, error)
	FindOne(ctx context.Context, id string) (*models.Offer, error)
	Create(ctx context.Context, req dto.CreateOfferRequest, userID string) (*models.Offer, error)
	Update(ctx context.Context, id string, req dto.UpdateOfferRequest, userID string) (*models.Offer, error)
}

// OfferHandler exposes offer search and lifecycle endpoints.
type OfferHandler struct {
	service offerService
}

// NewOfferHandler builds a new handler.
func NewOfferHandler(service offerService) *OfferHandler {
	return &OfferHandler{service: service}
}

// List godoc
// @Summary Search offers
// @Tags Offers
// @Produce json
// @Param title query string false "Title substring"
// @Param city query string false "City substring"
// @Param salary_from query int false "Lower bound for salary_to (default 0)"
// @Param salary_to query int false "Upper bound for salary_to (default 20000)"
// @Param order query string false "latest, salary-max or salary-min"
// @Success 200 {object} response.Envelope
// @Router /offers [get]
func (h *OfferHandler) List(c *gin.Context) {
	filter, err := parseOfferFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	offers, err := h.service.FindAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offers, map[string]interface{}{"count": len(offers)})
}

// Get godoc
// @Summary Get offer detail
// @Tags Offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Envelope
// @Router /offers/{id} [get]
func (h *OfferHandler) Get(c *gin.Context) {
	offer, err := h.service.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offer)
}

// Create godoc
// @Summary Publish offer
// @Tags Offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateOfferRequest true "Offer payload"
// @Success 201 {object} response.Envelope
// @Router /offers [post]
func (h *OfferHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid offer payload"))
		return
	}
	offer, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offer)
}

// Update godoc
// @Summary Update offer
// @Tags Offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Param payload body dto.UpdateOfferRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /offers/{id} [patch]
func (h *OfferHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid offer payload"))
		return
	}
	offer, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offer)
}

// parseOfferFilter maps query parameters onto the filter. Keys other than the named ones go to the equality bag.
func parseOfferFilter(c *gin.Context) (dto.OfferFilter, error) {
	filter := dto.OfferFilter{
		Title: c.Query(dto.FilterTitle),
		City:  c.Query(dto.FilterCity),
		Order: strings.TrimSpace(c.Query(dto.FilterOrder)),
	}

	for _, key := range []string{dto.FilterSalaryFrom, dto.FilterSalaryTo} {
		raw, ok := c.GetQuery(key)
		if !ok || raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return dto.OfferFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, fmt.Sprintf("%s must be an integer", key))
		}
		if key == dto.FilterSalaryFrom {
			filter.SalaryFrom = &value
		} else {
			filter.SalaryTo = &value
		}
	}

	for key, values := range c.Request.URL.Query() {
		switch key {
		case dto.FilterTitle, dto.FilterCity, dto.FilterOrder, dto.FilterSalaryFrom, dto.FilterSalaryTo:
			continue
		}
		if len(values) == 0 {
			continue
		}
		if filter.Equals == nil {
			filter.Equals = make(map[string]string)
		}
		filter.Equals[key] = values[0]
	}
	return filter, nil
}
