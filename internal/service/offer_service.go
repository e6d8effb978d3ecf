package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/noah-isme/offers-api/internal/dto"
	"github.com/noah-isme/offers-api/internal/models"
	"github.com/noah-isme/offers-api/internal/repository"
	appErrors "github.com/noah-isme/offers-api/pkg/errors"
	"github.com/noah-isme/offers-api/pkg/middleware/requestid"
)

const (
	errNoCompany      = "User have to create company first"
	errForeignOffer   = "User cannot update others company's offer"
	errOfferNotFound  = "Offer not found"
	relationAgreement = "agreement_types"
	relationLocations = "locations"
)

type offerStore interface {
	FindByQuery(ctx context.Context, search dto.OfferSearch) ([]models.Offer, error)
	FindByID(ctx context.Context, id string) (*models.Offer, error)
	Create(ctx context.Context, offer *models.Offer) error
	Update(ctx context.Context, offer *models.Offer, changes repository.OfferRelationChanges) error
}

type companyReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Company, error)
	ListOfferIDs(ctx context.Context, companyID string) ([]string, error)
}

type offerReferenceResolver interface {
	FindAgreementTypesByIDs(ctx context.Context, ids []string) ([]models.AgreementType, error)
	FindLocationsByIDs(ctx context.Context, ids []string) ([]models.CompanyLocation, error)
}

type txRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// OfferServiceConfig tunes write handling.
type OfferServiceConfig struct {
	SanitizeHTML bool
}

// OfferService implements offer search and the offer lifecycle for company owners.
type OfferService struct {
	offers     offerStore
	companies  companyReader
	references offerReferenceResolver
	tx         txRunner
	validator  *validator.Validate
	metrics    *MetricsService
	logger     *zap.Logger

	titlePolicy       *bluemonday.Policy
	descriptionPolicy *bluemonday.Policy
	now               func() time.Time
}

// NewOfferService constructs an OfferService. A nil tx runs writes without a surrounding transaction.
func NewOfferService(offers offerStore, companies companyReader, references offerReferenceResolver, tx txRunner, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg OfferServiceConfig) *OfferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if tx == nil {
		tx = noTx{}
	}
	svc := &OfferService{
		offers:     offers,
		companies:  companies,
		references: references,
		tx:         tx,
		validator:  validate,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
	if cfg.SanitizeHTML {
		svc.titlePolicy = bluemonday.StrictPolicy()
		svc.descriptionPolicy = bluemonday.UGCPolicy()
	}
	return svc
}

// FindAll returns every publicly visible offer matching the filter.
func (s *OfferService) FindAll(ctx context.Context, filter dto.OfferFilter) ([]models.Offer, error) {
	search, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	offers, err := s.offers.FindByQuery(ctx, search)
	s.metrics.ObserveDBQuery("offer_search", time.Since(start))
	if err != nil {
		return nil, asAppError(err, "failed to search offers")
	}
	return offers, nil
}

// FindOne returns a single offer with all of its relations.
func (s *OfferService) FindOne(ctx context.Context, id string) (*models.Offer, error) {
	notFound := appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Offer with ID \"%s\" not found", id))
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, notFound
	}

	start := time.Now()
	offer, err := s.offers.FindByID(ctx, parsed.String())
	s.metrics.ObserveDBQuery("offer_find_one", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, appErrors.Internal(err, "failed to load offer")
	}
	return offer, nil
}

// Create publishes an offer on behalf of the company owned by userID.
func (s *OfferService) Create(ctx context.Context, req dto.CreateOfferRequest, userID string) (*models.Offer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offer payload")
	}

	var created *models.Offer
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		company, err := s.resolveCompany(ctx, userID)
		if err != nil {
			return err
		}

		offer := &models.Offer{
			CompanyID:        company.ID,
			SpecializationID: req.SpecializationID,
			ProfessionID:     req.ProfessionID,
			Title:            s.sanitizeTitle(req.Title),
			Description:      s.sanitizeDescription(req.Description),
			SalaryFrom:       *req.SalaryFrom,
			SalaryTo:         *req.SalaryTo,
			Active:           true,
			PaidTill:         req.PaidTill.UTC(),
		}
		if req.Active != nil {
			offer.Active = *req.Active
		}

		if len(req.AgreementTypeIDs) > 0 {
			if offer.AgreementTypes, err = s.resolveAgreementTypes(ctx, req.AgreementTypeIDs); err != nil {
				return err
			}
		}
		if len(req.CompanyLocationIDs) > 0 {
			if offer.Locations, err = s.resolveLocations(ctx, company, req.CompanyLocationIDs); err != nil {
				return err
			}
		}

		if err := s.offers.Create(ctx, offer); err != nil {
			return appErrors.Internal(err, "failed to create offer")
		}
		created, err = s.offers.FindByID(ctx, offer.ID)
		if err != nil {
			return appErrors.Internal(err, "failed to load created offer")
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to create offer")
	}

	s.log(ctx).Info("offer created",
		zap.String("offer_id", created.ID),
		zap.String("company_id", created.CompanyID),
		zap.Bool("visible", created.Visible(s.now())),
	)
	return created, nil
}

// Update merges the payload into an offer owned by the company of userID. Absent fields keep their value.
func (s *OfferService) Update(ctx context.Context, id string, req dto.UpdateOfferRequest, userID string) (*models.Offer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offer payload")
	}

	var updated *models.Offer
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		company, err := s.resolveCompany(ctx, userID)
		if err != nil {
			return err
		}

		owned, err := s.companies.ListOfferIDs(ctx, company.ID)
		if err != nil {
			return appErrors.Internal(err, "failed to load company offers")
		}
		// Store ids are lowercase canonical UUIDs.
		if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		}
		if !containsID(owned, id) {
			return appErrors.Clone(appErrors.ErrInvalidRequest, errForeignOffer)
		}

		offer, err := s.offers.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, errOfferNotFound)
			}
			return appErrors.Internal(err, "failed to load offer")
		}

		s.merge(offer, req)
		offer.CompanyID = company.ID
		offer.Company = company

		var changes repository.OfferRelationChanges
		if req.AgreementTypeIDs != nil {
			if offer.AgreementTypes, err = s.resolveAgreementTypes(ctx, req.AgreementTypeIDs); err != nil {
				return err
			}
			changes.AgreementTypes = true
		}
		if req.CompanyLocationIDs != nil {
			if offer.Locations, err = s.resolveLocations(ctx, company, req.CompanyLocationIDs); err != nil {
				return err
			}
			changes.Locations = true
		}

		if err := s.offers.Update(ctx, offer, changes); err != nil {
			return appErrors.Internal(err, "failed to update offer")
		}
		updated, err = s.offers.FindByID(ctx, offer.ID)
		if err != nil {
			return appErrors.Internal(err, "failed to load updated offer")
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to update offer")
	}

	s.log(ctx).Info("offer updated", zap.String("offer_id", updated.ID), zap.String("company_id", updated.CompanyID))
	return updated, nil
}

func (s *OfferService) merge(offer *models.Offer, req dto.UpdateOfferRequest) {
	if req.Title != nil {
		offer.Title = s.sanitizeTitle(*req.Title)
	}
	if req.Description != nil {
		offer.Description = s.sanitizeDescription(*req.Description)
	}
	if req.SalaryFrom != nil {
		offer.SalaryFrom = *req.SalaryFrom
	}
	if req.SalaryTo != nil {
		offer.SalaryTo = *req.SalaryTo
	}
	if req.Active != nil {
		offer.Active = *req.Active
	}
	if req.PaidTill != nil {
		offer.PaidTill = req.PaidTill.UTC()
	}
	if req.SpecializationID != nil {
		offer.SpecializationID = *req.SpecializationID
	}
	if req.ProfessionID != nil {
		offer.ProfessionID = *req.ProfessionID
	}
}

func (s *OfferService) resolveCompany(ctx context.Context, userID string) (*models.Company, error) {
	company, err := s.companies.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidRequest, errNoCompany)
		}
		return nil, appErrors.Internal(err, "failed to load company")
	}
	return company, nil
}

func (s *OfferService) resolveAgreementTypes(ctx context.Context, ids []string) ([]models.AgreementType, error) {
	valid, invalid := splitIDs(ids)
	types, err := s.references.FindAgreementTypesByIDs(ctx, valid)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to resolve agreement types")
	}

	found := make(map[string]struct{}, len(types))
	for _, at := range types {
		found[at.ID] = struct{}{}
	}
	s.reportDropped(ctx, relationAgreement, append(invalid, missingIDs(valid, found)...))
	return types, nil
}

// resolveLocations accepts locations of any company. Foreign ones are only logged.
func (s *OfferService) resolveLocations(ctx context.Context, company *models.Company, ids []string) ([]models.CompanyLocation, error) {
	valid, invalid := splitIDs(ids)
	locations, err := s.references.FindLocationsByIDs(ctx, valid)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to resolve company locations")
	}

	found := make(map[string]struct{}, len(locations))
	var foreign []string
	for _, loc := range locations {
		found[loc.ID] = struct{}{}
		if loc.CompanyID != company.ID {
			foreign = append(foreign, loc.ID)
		}
	}
	if len(foreign) > 0 {
		s.log(ctx).Warn("offer references locations of another company",
			zap.String("company_id", company.ID),
			zap.Strings("location_ids", foreign),
		)
	}
	s.reportDropped(ctx, relationLocations, append(invalid, missingIDs(valid, found)...))
	return locations, nil
}

func (s *OfferService) reportDropped(ctx context.Context, relation string, ids []string) {
	if len(ids) == 0 {
		return
	}
	s.log(ctx).Warn("dropping unresolved reference ids", zap.String("relation", relation), zap.Strings("ids", ids))
	s.metrics.RecordDroppedReferences(relation, len(ids))
}

func (s *OfferService) log(ctx context.Context) *zap.Logger {
	if reqID := requestid.FromContext(ctx); reqID != "" {
		return s.logger.With(zap.String("request_id", reqID))
	}
	return s.logger
}

func (s *OfferService) sanitizeTitle(value string) string {
	return sanitizeWith(s.titlePolicy, value)
}

func (s *OfferService) sanitizeDescription(value string) string {
	return sanitizeWith(s.descriptionPolicy, value)
}

// sanitizeWith strips disallowed markup but stores plain characters such as & and < as typed.
// The unescaped form is kept only when the policy leaves it unchanged, so escaped markup never turns live.
func sanitizeWith(policy *bluemonday.Policy, value string) string {
	if policy == nil {
		return value
	}
	sanitized := policy.Sanitize(value)
	if unescaped := html.UnescapeString(sanitized); policy.Sanitize(unescaped) == sanitized {
		sanitized = unescaped
	}
	return strings.TrimSpace(sanitized)
}

// splitIDs deduplicates ids and separates well-formed UUIDs from the rest.
func splitIDs(ids []string) (valid, invalid []string) {
	seen := make(map[string]struct{}, len(ids))
	valid = make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := uuid.Parse(id); err != nil {
			invalid = append(invalid, id)
			continue
		}
		valid = append(valid, id)
	}
	return valid, invalid
}

func missingIDs(requested []string, found map[string]struct{}) []string {
	var missing []string
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func asAppError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, message)
}
