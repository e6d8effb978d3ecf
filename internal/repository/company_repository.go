package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/offers-api/internal/models"
	"github.com/noah-isme/offers-api/pkg/database"
)

// CompanyRepository reads companies and their offer ownership.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs a CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// FindByUserID returns the company owned by the user or sql.ErrNoRows.
func (r *CompanyRepository) FindByUserID(ctx context.Context, userID string) (*models.Company, error) {
	const query = `SELECT id, user_id, name, created_at, updated_at FROM companies WHERE user_id = $1 ORDER BY created_at LIMIT 1`
	var company models.Company
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &company, query, userID); err != nil {
		return nil, err
	}
	return &company, nil
}

// ListOfferIDs returns the ids of every offer currently owned by the company.
func (r *CompanyRepository) ListOfferIDs(ctx context.Context, companyID string) ([]string, error) {
	const query = `SELECT id FROM offers WHERE company_id = $1 ORDER BY created_at`
	var ids []string
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &ids, query, companyID); err != nil {
		return nil, fmt.Errorf("list company offer ids: %w", err)
	}
	return ids, nil
}
