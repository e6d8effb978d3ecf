package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/offers-api/internal/dto"
	"github.com/noah-isme/offers-api/internal/models"
	"github.com/noah-isme/offers-api/internal/repository"
	appErrors "github.com/noah-isme/offers-api/pkg/errors"
)

const (
	ownerID        = "user-owner"
	companyID      = "6f1c7c52-5d0b-4b43-9d8c-2b3b6c0c0001"
	otherCompanyID = "6f1c7c52-5d0b-4b43-9d8c-2b3b6c0c0002"
	offerID        = "0b6f5a8e-8b43-4a57-9c7e-5b8f1d2e0001"
	foreignOfferID = "0b6f5a8e-8b43-4a57-9c7e-5b8f1d2e0002"
	agreementB2B   = "3d1b2f10-0a4f-4f9e-8f5d-61f1c0a00001"
	agreementUoP   = "3d1b2f10-0a4f-4f9e-8f5d-61f1c0a00002"
	locationKrakow = "7a9e3c44-1d2b-4c6f-a1e0-90b4d8e00001"
	locationGdansk = "7a9e3c44-1d2b-4c6f-a1e0-90b4d8e00002"
	missingID      = "ffffffff-ffff-4fff-8fff-ffffffffffff"
	backendSpecID  = "5b0c6a5e-4d1f-4b8a-9f3e-0d7c1a2b0009"
)

type mockOfferStore struct {
	items           map[string]*models.Offer
	specializations map[string]models.Specialization
	lastSearch   *dto.OfferSearch
	searchResult []models.Offer
	searchErr    error
	findCalls    []string
	created      []*models.Offer
	updated      []*models.Offer
	lastChanges  repository.OfferRelationChanges
	createErr    error
}

func (m *mockOfferStore) FindByQuery(ctx context.Context, search dto.OfferSearch) ([]models.Offer, error) {
	m.lastSearch = &search
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResult, nil
}

func (m *mockOfferStore) FindByID(ctx context.Context, id string) (*models.Offer, error) {
	m.findCalls = append(m.findCalls, id)
	offer, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *offer
	cp.Specialization = nil
	if spec, ok := m.specializations[cp.SpecializationID]; ok {
		cp.Specialization = &spec
	}
	return &cp, nil
}

func (m *mockOfferStore) Create(ctx context.Context, offer *models.Offer) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.items == nil {
		m.items = make(map[string]*models.Offer)
	}
	offer.ID = offerID
	cp := *offer
	m.items[offer.ID] = &cp
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockOfferStore) Update(ctx context.Context, offer *models.Offer, changes repository.OfferRelationChanges) error {
	cp := *offer
	m.items[offer.ID] = &cp
	m.updated = append(m.updated, &cp)
	m.lastChanges = changes
	return nil
}

type mockCompanyReader struct {
	byUser   map[string]*models.Company
	offerIDs map[string][]string
}

func (m *mockCompanyReader) FindByUserID(ctx context.Context, userID string) (*models.Company, error) {
	if company, ok := m.byUser[userID]; ok {
		cp := *company
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCompanyReader) ListOfferIDs(ctx context.Context, companyID string) ([]string, error) {
	return m.offerIDs[companyID], nil
}

type mockReferenceResolver struct {
	agreementTypes map[string]models.AgreementType
	locations      map[string]models.CompanyLocation
	requested      [][]string
}

func (m *mockReferenceResolver) FindAgreementTypesByIDs(ctx context.Context, ids []string) ([]models.AgreementType, error) {
	m.requested = append(m.requested, ids)
	items := []models.AgreementType{}
	for _, id := range ids {
		if at, ok := m.agreementTypes[id]; ok {
			items = append(items, at)
		}
	}
	return items, nil
}

func (m *mockReferenceResolver) FindLocationsByIDs(ctx context.Context, ids []string) ([]models.CompanyLocation, error) {
	m.requested = append(m.requested, ids)
	items := []models.CompanyLocation{}
	for _, id := range ids {
		if loc, ok := m.locations[id]; ok {
			items = append(items, loc)
		}
	}
	return items, nil
}

type recordingTx struct {
	calls int
}

func (r *recordingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

type offerServiceFixture struct {
	svc       *OfferService
	store     *mockOfferStore
	companies *mockCompanyReader
	refs      *mockReferenceResolver
	tx        *recordingTx
}

func newOfferServiceFixture(sanitize bool) *offerServiceFixture {
	paidTill := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &mockOfferStore{items: map[string]*models.Offer{
		offerID: {
			ID:               offerID,
			CompanyID:        companyID,
			SpecializationID: "spec-1",
			ProfessionID:     "prof-1",
			Title:            "A",
			Description:      "original",
			SalaryFrom:       10000,
			SalaryTo:         15000,
			Active:           true,
			PaidTill:         paidTill,
			CreatedAt:        created,
			Locations:        []models.CompanyLocation{{ID: locationKrakow, CompanyID: companyID, City: "Krakow"}},
			AgreementTypes:   []models.AgreementType{{ID: agreementB2B, Name: "B2B"}},
		},
		foreignOfferID: {ID: foreignOfferID, CompanyID: otherCompanyID, Title: "Other"},
	}, specializations: map[string]models.Specialization{
		"spec-1":      {ID: "spec-1", Name: "Frontend", ProfessionID: "prof-1"},
		backendSpecID: {ID: backendSpecID, Name: "Backend", ProfessionID: "prof-1"},
	}}
	companies := &mockCompanyReader{
		byUser: map[string]*models.Company{
			ownerID: {ID: companyID, UserID: ownerID, Name: "Acme"},
		},
		offerIDs: map[string][]string{
			companyID:      {offerID},
			otherCompanyID: {foreignOfferID},
		},
	}
	refs := &mockReferenceResolver{
		agreementTypes: map[string]models.AgreementType{
			agreementB2B: {ID: agreementB2B, Name: "B2B"},
			agreementUoP: {ID: agreementUoP, Name: "Employment"},
		},
		locations: map[string]models.CompanyLocation{
			locationKrakow: {ID: locationKrakow, CompanyID: companyID, City: "Krakow"},
			locationGdansk: {ID: locationGdansk, CompanyID: otherCompanyID, City: "Gdansk"},
		},
	}
	tx := &recordingTx{}
	svc := NewOfferService(store, companies, refs, tx, nil, NewMetricsService(), nil, OfferServiceConfig{SanitizeHTML: sanitize})
	return &offerServiceFixture{svc: svc, store: store, companies: companies, refs: refs, tx: tx}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func validCreateRequest() dto.CreateOfferRequest {
	return dto.CreateOfferRequest{
		Title:            "Go Developer",
		Description:      "Build APIs",
		SalaryFrom:       intPtr(12000),
		SalaryTo:         intPtr(18000),
		PaidTill:         time.Now().Add(30 * 24 * time.Hour),
		SpecializationID: "5b0c6a5e-4d1f-4b8a-9f3e-0d7c1a2b0001",
		ProfessionID:     "5b0c6a5e-4d1f-4b8a-9f3e-0d7c1a2b0002",
	}
}

func TestOfferServiceFindAllAppliesDefaults(t *testing.T) {
	f := newOfferServiceFixture(false)

	explicit := 20000
	zero := 0
	_, err := f.svc.FindAll(context.Background(), dto.OfferFilter{})
	require.NoError(t, err)
	implicit := *f.store.lastSearch

	_, err = f.svc.FindAll(context.Background(), dto.OfferFilter{SalaryFrom: &zero, SalaryTo: &explicit})
	require.NoError(t, err)
	assert.Equal(t, implicit, *f.store.lastSearch)
	assert.Equal(t, dto.OrderLatest, implicit.Order)
	assert.Equal(t, 0, implicit.SalaryFrom)
	assert.Equal(t, 20000, implicit.SalaryTo)
}

func TestOfferServiceFindAllRejectsBeforeQuerying(t *testing.T) {
	f := newOfferServiceFixture(false)

	_, err := f.svc.FindAll(context.Background(), dto.OfferFilter{Order: "cheapest"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequest)

	_, err = f.svc.FindAll(context.Background(), dto.OfferFilter{Equals: map[string]string{"salary_secret": "1"}})
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequest)

	assert.Nil(t, f.store.lastSearch)
}

func TestOfferServiceFindAllWrapsStoreError(t *testing.T) {
	f := newOfferServiceFixture(false)
	storeErr := errors.New("connection refused")
	f.store.searchErr = storeErr

	_, err := f.svc.FindAll(context.Background(), dto.OfferFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.ErrorIs(t, err, storeErr)
}

func TestOfferServiceFindOne(t *testing.T) {
	f := newOfferServiceFixture(false)

	offer, err := f.svc.FindOne(context.Background(), offerID)
	require.NoError(t, err)
	assert.Equal(t, "A", offer.Title)

	_, err = f.svc.FindOne(context.Background(), missingID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, `Offer with ID "`+missingID+`" not found`, appErr.Message)
}

func TestOfferServiceFindOneMalformedID(t *testing.T) {
	f := newOfferServiceFixture(false)

	_, err := f.svc.FindOne(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, f.store.findCalls)
}

func TestOfferServiceCreateRequiresCompany(t *testing.T) {
	f := newOfferServiceFixture(false)

	_, err := f.svc.Create(context.Background(), validCreateRequest(), "user-without-company")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidRequest.Code, appErr.Code)
	assert.Equal(t, "User have to create company first", appErr.Message)
	assert.Empty(t, f.store.created)
	assert.Empty(t, f.refs.requested)
}

func TestOfferServiceCreateValidatesPayload(t *testing.T) {
	f := newOfferServiceFixture(false)
	req := validCreateRequest()
	req.Title = ""
	req.SalaryTo = nil

	_, err := f.svc.Create(context.Background(), req, ownerID)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, f.tx.calls)
}

func TestOfferServiceCreate(t *testing.T) {
	f := newOfferServiceFixture(false)
	req := validCreateRequest()
	req.AgreementTypeIDs = []string{agreementB2B, missingID, "garbage"}
	req.CompanyLocationIDs = []string{locationKrakow, locationGdansk}

	offer, err := f.svc.Create(context.Background(), req, ownerID)
	require.NoError(t, err)
	require.Len(t, f.store.created, 1)
	assert.Equal(t, 1, f.tx.calls)

	created := f.store.created[0]
	assert.Equal(t, companyID, created.CompanyID)
	assert.True(t, created.Active)
	assert.Equal(t, []models.AgreementType{{ID: agreementB2B, Name: "B2B"}}, created.AgreementTypes)
	assert.Len(t, created.Locations, 2, "locations of other companies are attached")
	assert.Equal(t, []string{agreementB2B, missingID}, f.refs.requested[0])

	assert.Equal(t, offerID, offer.ID)
	assert.Equal(t, "Go Developer", offer.Title)
}

func TestOfferServiceCreateHonoursExplicitInactive(t *testing.T) {
	f := newOfferServiceFixture(false)
	req := validCreateRequest()
	req.Active = boolPtr(false)

	offer, err := f.svc.Create(context.Background(), req, ownerID)
	require.NoError(t, err)
	assert.False(t, offer.Active)
	assert.Nil(t, offer.AgreementTypes)
	assert.Empty(t, f.refs.requested)
}

func TestOfferServiceCreateSanitizesText(t *testing.T) {
	f := newOfferServiceFixture(true)
	req := validCreateRequest()
	req.Title = "<b>Go</b> Developer<script>alert(1)</script>"
	req.Description = "<p>Build <em>APIs</em></p><script>alert(1)</script>"

	offer, err := f.svc.Create(context.Background(), req, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Go Developer", offer.Title)
	assert.Equal(t, "<p>Build <em>APIs</em></p>", offer.Description)
}

func TestOfferServiceCreateKeepsPlainTextCharacters(t *testing.T) {
	f := newOfferServiceFixture(true)
	req := validCreateRequest()
	req.Title = "R&D Engineer"
	req.Description = "Salary < 20k & growth"

	offer, err := f.svc.Create(context.Background(), req, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "R&D Engineer", offer.Title)
	assert.Equal(t, "Salary < 20k & growth", offer.Description)
	assert.Equal(t, "R&D Engineer", f.store.created[0].Title)
}

func TestOfferServiceCreateKeepsEscapedMarkupInert(t *testing.T) {
	f := newOfferServiceFixture(true)
	req := validCreateRequest()
	req.Title = "&lt;b&gt;Go&lt;/b&gt;"
	req.Description = "&lt;script&gt;alert(1)&lt;/script&gt;"

	offer, err := f.svc.Create(context.Background(), req, ownerID)
	require.NoError(t, err)
	assert.NotContains(t, offer.Title, "<b>")
	assert.NotContains(t, offer.Description, "<script>")
}

func TestOfferServiceCreateWrapsStoreError(t *testing.T) {
	f := newOfferServiceFixture(false)
	f.store.createErr = errors.New("insert failed")

	_, err := f.svc.Create(context.Background(), validCreateRequest(), ownerID)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestOfferServiceUpdateOwnershipCheckedFirst(t *testing.T) {
	f := newOfferServiceFixture(false)

	_, err := f.svc.Update(context.Background(), foreignOfferID, dto.UpdateOfferRequest{Title: strPtr("B")}, ownerID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidRequest.Code, appErr.Code)
	assert.Equal(t, "User cannot update others company's offer", appErr.Message)
	assert.Empty(t, f.store.findCalls, "target offer must not be fetched before the ownership check")
	assert.Empty(t, f.store.updated)
}

func TestOfferServiceUpdateRequiresCompany(t *testing.T) {
	f := newOfferServiceFixture(false)

	_, err := f.svc.Update(context.Background(), offerID, dto.UpdateOfferRequest{}, "stranger")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "User have to create company first", appErr.Message)
}

func TestOfferServiceUpdateMissingOffer(t *testing.T) {
	f := newOfferServiceFixture(false)
	delete(f.store.items, offerID)

	_, err := f.svc.Update(context.Background(), offerID, dto.UpdateOfferRequest{}, ownerID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Offer not found", appErr.Message)
}

func TestOfferServiceUpdateMergesPresentFields(t *testing.T) {
	f := newOfferServiceFixture(false)
	before := *f.store.items[offerID]

	offer, err := f.svc.Update(context.Background(), offerID, dto.UpdateOfferRequest{
		Title:      strPtr("B"),
		SalaryFrom: intPtr(10),
	}, ownerID)
	require.NoError(t, err)

	assert.Equal(t, "B", offer.Title)
	assert.Equal(t, 10, offer.SalaryFrom)
	assert.Equal(t, before.SalaryTo, offer.SalaryTo)
	assert.Equal(t, before.Description, offer.Description)
	assert.Equal(t, before.PaidTill, offer.PaidTill)
	assert.Equal(t, before.CreatedAt, offer.CreatedAt)
	assert.Equal(t, before.Locations, offer.Locations)
	assert.Equal(t, before.AgreementTypes, offer.AgreementTypes)
	require.NotNil(t, offer.Company)
	assert.Equal(t, companyID, offer.Company.ID)
	assert.Equal(t, repository.OfferRelationChanges{}, f.store.lastChanges)
	assert.Equal(t, 1, f.tx.calls)
}

func TestOfferServiceUpdateReplacesRelations(t *testing.T) {
	f := newOfferServiceFixture(false)

	offer, err := f.svc.Update(context.Background(), offerID, dto.UpdateOfferRequest{
		AgreementTypeIDs:   []string{agreementUoP},
		CompanyLocationIDs: []string{},
	}, ownerID)
	require.NoError(t, err)

	assert.Equal(t, []models.AgreementType{{ID: agreementUoP, Name: "Employment"}}, offer.AgreementTypes)
	assert.Empty(t, offer.Locations)
	assert.Equal(t, repository.OfferRelationChanges{AgreementTypes: true, Locations: true}, f.store.lastChanges)
}

func TestOfferServiceUpdateReloadsRelations(t *testing.T) {
	f := newOfferServiceFixture(false)

	offer, err := f.svc.Update(context.Background(), offerID, dto.UpdateOfferRequest{
		SpecializationID: strPtr(backendSpecID),
	}, ownerID)
	require.NoError(t, err)

	assert.Equal(t, backendSpecID, offer.SpecializationID)
	require.NotNil(t, offer.Specialization)
	assert.Equal(t, backendSpecID, offer.Specialization.ID)
	assert.Equal(t, "Backend", offer.Specialization.Name)
	assert.Equal(t, []string{offerID, offerID}, f.store.findCalls)
}

func TestOfferServiceUpdateAcceptsUppercaseID(t *testing.T) {
	f := newOfferServiceFixture(false)

	offer, err := f.svc.Update(context.Background(), strings.ToUpper(offerID), dto.UpdateOfferRequest{Title: strPtr("B")}, ownerID)
	require.NoError(t, err)
	assert.Equal(t, offerID, offer.ID)
	assert.Equal(t, "B", offer.Title)
}

func TestOfferServiceFindOneCanonicalizesID(t *testing.T) {
	f := newOfferServiceFixture(false)

	offer, err := f.svc.FindOne(context.Background(), strings.ToUpper(offerID))
	require.NoError(t, err)
	assert.Equal(t, offerID, offer.ID)
	assert.Equal(t, []string{offerID}, f.store.findCalls)
}
