package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/offers-api/internal/dto"
	"github.com/noah-isme/offers-api/internal/models"
	"github.com/noah-isme/offers-api/pkg/database"
)

// ReferenceRepository reads professions, specializations, agreement types and company locations.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs a ReferenceRepository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListProfessions returns every profession.
func (r *ReferenceRepository) ListProfessions(ctx context.Context) ([]models.Profession, error) {
	items := []models.Profession{}
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &items, `SELECT id, name FROM professions ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list professions: %w", err)
	}
	return items, nil
}

// ListSpecializations returns specializations matching the filter.
func (r *ReferenceRepository) ListSpecializations(ctx context.Context, filter dto.SpecializationFilter) ([]models.Specialization, error) {
	query := "SELECT id, name, profession_id FROM specializations"
	var conditions []string
	var args []interface{}
	if filter.ProfessionID != "" {
		conditions = append(conditions, fmt.Sprintf("profession_id = $%d", len(args)+1))
		args = append(args, filter.ProfessionID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name, id"

	items := []models.Specialization{}
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &items, query, args...); err != nil {
		return nil, fmt.Errorf("list specializations: %w", err)
	}
	return items, nil
}

// ListAgreementTypes returns every agreement type.
func (r *ReferenceRepository) ListAgreementTypes(ctx context.Context) ([]models.AgreementType, error) {
	items := []models.AgreementType{}
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &items, `SELECT id, name FROM agreement_types ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list agreement types: %w", err)
	}
	return items, nil
}

// FindAgreementTypesByIDs returns the agreement types that exist among ids. Missing ids are not an error.
func (r *ReferenceRepository) FindAgreementTypesByIDs(ctx context.Context, ids []string) ([]models.AgreementType, error) {
	items := []models.AgreementType{}
	if len(ids) == 0 {
		return items, nil
	}
	const query = `SELECT id, name FROM agreement_types WHERE id = ANY($1) ORDER BY name, id`
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &items, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find agreement types by ids: %w", err)
	}
	return items, nil
}

// FindLocationsByIDs returns the company locations that exist among ids, regardless of owning company.
func (r *ReferenceRepository) FindLocationsByIDs(ctx context.Context, ids []string) ([]models.CompanyLocation, error) {
	items := []models.CompanyLocation{}
	if len(ids) == 0 {
		return items, nil
	}
	const query = `SELECT id, company_id, city FROM company_locations WHERE id = ANY($1) ORDER BY city, id`
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &items, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find company locations by ids: %w", err)
	}
	return items, nil
}
