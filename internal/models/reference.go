package models

// Profession is a static reference entity, e.g. "Developer".
type Profession struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Specialization narrows a profession, e.g. "Backend" under "Developer".
type Specialization struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	ProfessionID string `db:"profession_id" json:"profession_id"`
}

// AgreementType describes a contract form such as B2B or full-time employment.
type AgreementType struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
