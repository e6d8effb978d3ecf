package dto

import "time"

// CreateOfferRequest is the payload for publishing a new offer. Any company reference sent by the client is ignored.
type CreateOfferRequest struct {
	Title              string    `json:"title" validate:"required,max=255"`
	Description        string    `json:"description"`
	SalaryFrom         *int      `json:"salary_from" validate:"required,min=0"`
	SalaryTo           *int      `json:"salary_to" validate:"required,min=0"`
	Active             *bool     `json:"active"`
	PaidTill           time.Time `json:"paid_till" validate:"required"`
	SpecializationID   string    `json:"specialization_id" validate:"required,uuid"`
	ProfessionID       string    `json:"profession_id" validate:"required,uuid"`
	AgreementTypeIDs   []string  `json:"agreement_type_ids" validate:"omitempty,dive,required"`
	CompanyLocationIDs []string  `json:"company_location_ids" validate:"omitempty,dive,required"`
}

// UpdateOfferRequest carries a partial update. Nil fields are left untouched; a non-nil id slice, even an empty one,
// replaces the corresponding relation.
type UpdateOfferRequest struct {
	Title              *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description        *string    `json:"description"`
	SalaryFrom         *int       `json:"salary_from" validate:"omitempty,min=0"`
	SalaryTo           *int       `json:"salary_to" validate:"omitempty,min=0"`
	Active             *bool      `json:"active"`
	PaidTill           *time.Time `json:"paid_till"`
	SpecializationID   *string    `json:"specialization_id" validate:"omitempty,uuid"`
	ProfessionID       *string    `json:"profession_id" validate:"omitempty,uuid"`
	AgreementTypeIDs   []string   `json:"agreement_type_ids" validate:"omitempty,dive,required"`
	CompanyLocationIDs []string   `json:"company_location_ids" validate:"omitempty,dive,required"`
}
