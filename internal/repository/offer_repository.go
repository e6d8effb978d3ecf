package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/offers-api/internal/dto"
	"github.com/noah-isme/offers-api/internal/models"
	"github.com/noah-isme/offers-api/pkg/database"
)

// OfferRelationChanges marks which offer collections an update rewrites.
type OfferRelationChanges struct {
	AgreementTypes bool
	Locations      bool
}

// offerRow is one offer joined with its single-valued relations. LEFT JOIN columns are nullable.
type offerRow struct {
	models.Offer
	CompanyRefID               sql.NullString `db:"company_ref_id"`
	CompanyUserID              sql.NullString `db:"company_user_id"`
	CompanyName                sql.NullString `db:"company_name"`
	CompanyCreatedAt           sql.NullTime   `db:"company_created_at"`
	CompanyUpdatedAt           sql.NullTime   `db:"company_updated_at"`
	SpecializationRefID        sql.NullString `db:"specialization_ref_id"`
	SpecializationName         sql.NullString `db:"specialization_name"`
	SpecializationProfessionID sql.NullString `db:"specialization_profession_id"`
	ProfessionRefID            sql.NullString `db:"profession_ref_id"`
	ProfessionName             sql.NullString `db:"profession_name"`
}

func (row offerRow) toOffer() models.Offer {
	offer := row.Offer
	if row.CompanyRefID.Valid {
		offer.Company = &models.Company{
			ID:        row.CompanyRefID.String,
			UserID:    row.CompanyUserID.String,
			Name:      row.CompanyName.String,
			CreatedAt: row.CompanyCreatedAt.Time,
			UpdatedAt: row.CompanyUpdatedAt.Time,
		}
	}
	if row.SpecializationRefID.Valid {
		offer.Specialization = &models.Specialization{
			ID:           row.SpecializationRefID.String,
			Name:         row.SpecializationName.String,
			ProfessionID: row.SpecializationProfessionID.String,
		}
	}
	if row.ProfessionRefID.Valid {
		offer.Profession = &models.Profession{
			ID:   row.ProfessionRefID.String,
			Name: row.ProfessionName.String,
		}
	}
	return offer
}

type offerLocationRow struct {
	OfferID string `db:"offer_id"`
	models.CompanyLocation
}

type offerAgreementTypeRow struct {
	OfferID string `db:"offer_id"`
	models.AgreementType
}

// OfferRepository manages persistence for offers and their join tables.
type OfferRepository struct {
	db  *sqlx.DB
	txm *database.TxManager
	now func() time.Time
}

// NewOfferRepository constructs an OfferRepository.
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db, txm: database.NewTxManager(db), now: time.Now}
}

// FindByQuery compiles the search and returns matching offers fully hydrated. The clock is read on every call.
func (r *OfferRepository) FindByQuery(ctx context.Context, search dto.OfferSearch) ([]models.Offer, error) {
	compiled, err := CompileOfferSearch(search, r.now().UTC())
	if err != nil {
		return nil, err
	}

	conn := database.Conn(ctx, r.db)
	var rows []offerRow
	if err := sqlx.SelectContext(ctx, conn, &rows, compiled.SQL, compiled.Args...); err != nil {
		return nil, fmt.Errorf("find offers by query: %w", err)
	}

	offers := make([]models.Offer, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, row.toOffer())
	}
	if err := r.hydrateCollections(ctx, conn, offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// FindByID returns one offer with every relation loaded. It returns sql.ErrNoRows when absent.
func (r *OfferRepository) FindByID(ctx context.Context, id string) (*models.Offer, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM offers o
        %s
        %s
        WHERE o.id = $1`, offerColumns, offerCompanyJoin, offerReferenceJoins)

	conn := database.Conn(ctx, r.db)
	var row offerRow
	if err := sqlx.GetContext(ctx, conn, &row, query, id); err != nil {
		return nil, err
	}

	offers := []models.Offer{row.toOffer()}
	if err := r.hydrateCollections(ctx, conn, offers); err != nil {
		return nil, err
	}
	return &offers[0], nil
}

func (r *OfferRepository) hydrateCollections(ctx context.Context, conn database.Executor, offers []models.Offer) error {
	if len(offers) == 0 {
		return nil
	}

	ids := make([]string, len(offers))
	index := make(map[string]int, len(offers))
	for i := range offers {
		ids[i] = offers[i].ID
		index[offers[i].ID] = i
		offers[i].Locations = []models.CompanyLocation{}
		offers[i].AgreementTypes = []models.AgreementType{}
	}

	const locationsQuery = `SELECT ol.offer_id, cl.id, cl.company_id, cl.city
        FROM offer_locations ol
        JOIN company_locations cl ON cl.id = ol.company_location_id
        WHERE ol.offer_id = ANY($1)
        ORDER BY cl.city, cl.id`
	var locations []offerLocationRow
	if err := sqlx.SelectContext(ctx, conn, &locations, locationsQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load offer locations: %w", err)
	}
	for _, loc := range locations {
		if i, ok := index[loc.OfferID]; ok {
			offers[i].Locations = append(offers[i].Locations, loc.CompanyLocation)
		}
	}

	const agreementTypesQuery = `SELECT oat.offer_id, at.id, at.name
        FROM offer_agreement_types oat
        JOIN agreement_types at ON at.id = oat.agreement_type_id
        WHERE oat.offer_id = ANY($1)
        ORDER BY at.name, at.id`
	var agreementTypes []offerAgreementTypeRow
	if err := sqlx.SelectContext(ctx, conn, &agreementTypes, agreementTypesQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load offer agreement types: %w", err)
	}
	for _, at := range agreementTypes {
		if i, ok := index[at.OfferID]; ok {
			offers[i].AgreementTypes = append(offers[i].AgreementTypes, at.AgreementType)
		}
	}
	return nil
}

// Create inserts the offer row together with its location and agreement type links.
func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.NewString()
	}
	now := r.now().UTC()
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = now
	}
	offer.UpdatedAt = now

	return r.txm.WithinTx(ctx, func(ctx context.Context) error {
		conn := database.Conn(ctx, r.db)
		const query = `INSERT INTO offers (id, company_id, specialization_id, profession_id, title, description, salary_from, salary_to, active, paid_till, created_at, updated_at)
        VALUES (:id, :company_id, :specialization_id, :profession_id, :title, :description, :salary_from, :salary_to, :active, :paid_till, :created_at, :updated_at)`
		if _, err := sqlx.NamedExecContext(ctx, conn, query, offer); err != nil {
			return fmt.Errorf("create offer: %w", err)
		}
		if err := linkAgreementTypes(ctx, conn, offer.ID, offer.AgreementTypes); err != nil {
			return err
		}
		return linkLocations(ctx, conn, offer.ID, offer.Locations)
	})
}

// Update rewrites the offer row. created_at is never changed. Collections flagged in changes are replaced
// by the offer's current sets.
func (r *OfferRepository) Update(ctx context.Context, offer *models.Offer, changes OfferRelationChanges) error {
	offer.UpdatedAt = r.now().UTC()

	return r.txm.WithinTx(ctx, func(ctx context.Context) error {
		conn := database.Conn(ctx, r.db)
		const query = `UPDATE offers SET company_id = :company_id, specialization_id = :specialization_id, profession_id = :profession_id, title = :title, description = :description, salary_from = :salary_from, salary_to = :salary_to, active = :active, paid_till = :paid_till, updated_at = :updated_at WHERE id = :id`
		if _, err := sqlx.NamedExecContext(ctx, conn, query, offer); err != nil {
			return fmt.Errorf("update offer: %w", err)
		}

		if changes.AgreementTypes {
			if _, err := conn.ExecContext(ctx, `DELETE FROM offer_agreement_types WHERE offer_id = $1`, offer.ID); err != nil {
				return fmt.Errorf("clear offer agreement types: %w", err)
			}
			if err := linkAgreementTypes(ctx, conn, offer.ID, offer.AgreementTypes); err != nil {
				return err
			}
		}
		if changes.Locations {
			if _, err := conn.ExecContext(ctx, `DELETE FROM offer_locations WHERE offer_id = $1`, offer.ID); err != nil {
				return fmt.Errorf("clear offer locations: %w", err)
			}
			if err := linkLocations(ctx, conn, offer.ID, offer.Locations); err != nil {
				return err
			}
		}
		return nil
	})
}

func linkAgreementTypes(ctx context.Context, conn database.Executor, offerID string, types []models.AgreementType) error {
	if len(types) == 0 {
		return nil
	}
	ids := make([]string, len(types))
	for i, at := range types {
		ids[i] = at.ID
	}
	const query = `INSERT INTO offer_agreement_types (offer_id, agreement_type_id) SELECT $1::uuid, UNNEST($2::uuid[])`
	if _, err := conn.ExecContext(ctx, query, offerID, pq.Array(ids)); err != nil {
		return fmt.Errorf("link offer agreement types: %w", err)
	}
	return nil
}

func linkLocations(ctx context.Context, conn database.Executor, offerID string, locations []models.CompanyLocation) error {
	if len(locations) == 0 {
		return nil
	}
	ids := make([]string, len(locations))
	for i, loc := range locations {
		ids[i] = loc.ID
	}
	const query = `INSERT INTO offer_locations (offer_id, company_location_id) SELECT $1::uuid, UNNEST($2::uuid[])`
	if _, err := conn.ExecContext(ctx, query, offerID, pq.Array(ids)); err != nil {
		return fmt.Errorf("link offer locations: %w", err)
	}
	return nil
}
