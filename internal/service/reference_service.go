package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/offers-api/internal/dto"
	"github.com/noah-isme/offers-api/internal/models"
	appErrors "github.com/noah-isme/offers-api/pkg/errors"
)

type referenceLister interface {
	ListProfessions(ctx context.Context) ([]models.Profession, error)
	ListSpecializations(ctx context.Context, filter dto.SpecializationFilter) ([]models.Specialization, error)
	ListAgreementTypes(ctx context.Context) ([]models.AgreementType, error)
}

// ReferenceService exposes the static lists offers are classified by.
type ReferenceService struct {
	repo    referenceLister
	metrics *MetricsService
	logger  *zap.Logger
}

// NewReferenceService constructs a ReferenceService.
func NewReferenceService(repo referenceLister, metrics *MetricsService, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{repo: repo, metrics: metrics, logger: logger}
}

// FindAllProfessions lists every profession.
func (s *ReferenceService) FindAllProfessions(ctx context.Context) ([]models.Profession, error) {
	start := time.Now()
	items, err := s.repo.ListProfessions(ctx)
	s.metrics.ObserveDBQuery("professions_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list professions")
	}
	return items, nil
}

// FindAllSpecializations lists specializations, optionally narrowed to one profession.
func (s *ReferenceService) FindAllSpecializations(ctx context.Context, filter dto.SpecializationFilter) ([]models.Specialization, error) {
	start := time.Now()
	items, err := s.repo.ListSpecializations(ctx, filter)
	s.metrics.ObserveDBQuery("specializations_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list specializations")
	}
	return items, nil
}

// FindAllAgreementTypes lists every agreement type.
func (s *ReferenceService) FindAllAgreementTypes(ctx context.Context) ([]models.AgreementType, error) {
	start := time.Now()
	items, err := s.repo.ListAgreementTypes(ctx)
	s.metrics.ObserveDBQuery("agreement_types_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list agreement types")
	}
	return items, nil
}
