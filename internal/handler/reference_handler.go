package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/offers-api/internal/dto"
	"github.com/noah-isme/offers-api/internal/models"
	appErrors "github.com/noah-isme/offers-api/pkg/errors"
	"github.com/noah-isme/offers-api/pkg/response"
)

type referenceService interface {
	FindAllProfessions(ctx context.Context) ([]models.Profession, error)
	FindAllSpecializations(ctx context.Context, filter dto.SpecializationFilter) ([]models.Specialization, error)
	FindAllAgreementTypes(ctx context.Context) ([]models.AgreementType, error)
}

// ReferenceHandler serves the reference lists used to classify offers.
type ReferenceHandler struct {
	service referenceService
}

// NewReferenceHandler builds a new handler.
func NewReferenceHandler(service referenceService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

// Professions godoc
// @Summary List professions
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /professions [get]
func (h *ReferenceHandler) Professions(c *gin.Context) {
	items, err := h.service.FindAllProfessions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Specializations godoc
// @Summary List specializations
// @Tags Reference
// @Produce json
// @Param profession_id query string false "Profession ID"
// @Success 200 {object} response.Envelope
// @Router /specializations [get]
func (h *ReferenceHandler) Specializations(c *gin.Context) {
	var filter dto.SpecializationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid specialization filter"))
		return
	}
	items, err := h.service.FindAllSpecializations(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// AgreementTypes godoc
// @Summary List agreement types
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /agreement-types [get]
func (h *ReferenceHandler) AgreementTypes(c *gin.Context) {
	items, err := h.service.FindAllAgreementTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}
