package models

import "time"

// Offer is a job posting published by a company.
type Offer struct {
	ID               string    `db:"id" json:"id"`
	CompanyID        string    `db:"company_id" json:"company_id"`
	SpecializationID string    `db:"specialization_id" json:"specialization_id"`
	ProfessionID     string    `db:"profession_id" json:"profession_id"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	SalaryFrom       int       `db:"salary_from" json:"salary_from"`
	SalaryTo         int       `db:"salary_to" json:"salary_to"`
	Active           bool      `db:"active" json:"active"`
	PaidTill         time.Time `db:"paid_till" json:"paid_till"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	Company        *Company          `db:"-" json:"company,omitempty"`
	Specialization *Specialization   `db:"-" json:"specialization,omitempty"`
	Profession     *Profession       `db:"-" json:"profession,omitempty"`
	Locations      []CompanyLocation `db:"-" json:"locations"`
	AgreementTypes []AgreementType   `db:"-" json:"agreement_types"`
}

// Visible reports whether the offer is eligible for public search at the given instant.
func (o *Offer) Visible(now time.Time) bool {
	return o.Active && o.PaidTill.After(now)
}
