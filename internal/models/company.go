package models

import "time"

// Company owns offers and is owned by exactly one user.
type Company struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CompanyLocation is an office of a company; offers reference a subset of them.
type CompanyLocation struct {
	ID        string `db:"id" json:"id"`
	CompanyID string `db:"company_id" json:"company_id"`
	City      string `db:"city" json:"city"`
}
