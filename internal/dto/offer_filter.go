package dto

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/offers-api/pkg/errors"
)

// Search defaults applied when the request omits salary bounds.
const (
	DefaultSalaryFrom = 0
	DefaultSalaryTo   = 20000
)

// Named search fields. They are never treated as equality filters.
const (
	FilterTitle      = "title"
	FilterCity       = "city"
	FilterSalaryFrom = "salary_from"
	FilterSalaryTo   = "salary_to"
	FilterOrder      = "order"
)

// OfferOrder is the closed set of result orderings.
type OfferOrder int

const (
	OrderLatest OfferOrder = iota
	OrderSalaryMax
	OrderSalaryMin
)

var orderNames = map[OfferOrder]string{
	OrderLatest:    "latest",
	OrderSalaryMax: "salary-max",
	OrderSalaryMin: "salary-min",
}

func (o OfferOrder) String() string {
	if name, ok := orderNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OfferOrder(%d)", int(o))
}

// ParseOfferOrder maps the wire value to an OfferOrder. An empty value means latest.
func ParseOfferOrder(raw string) (OfferOrder, error) {
	if raw == "" {
		return OrderLatest, nil
	}
	for order, name := range orderNames {
		if name == raw {
			return order, nil
		}
	}
	return 0, appErrors.Clone(appErrors.ErrInvalidRequest, fmt.Sprintf("unknown order %q", raw))
}

type columnKind int

const (
	columnText columnKind = iota
	columnUUID
	columnBool
)

// equalityColumns lists the offer columns accepted in the equality bag.
var equalityColumns = map[string]columnKind{
	"id":                columnUUID,
	"company_id":        columnUUID,
	"specialization_id": columnUUID,
	"profession_id":     columnUUID,
	"description":       columnText,
	"active":            columnBool,
}

// OfferFilter is a search request as received from the transport layer.
type OfferFilter struct {
	Title      string
	City       string
	SalaryFrom *int
	SalaryTo   *int
	Order      string
	Equals     map[string]string
}

// EqualityFilter is one exact-match predicate on an offer column.
type EqualityFilter struct {
	Column string
	Value  interface{}
}

// OfferSearch is a defaulted filter ready to be compiled into a query.
type OfferSearch struct {
	Title      string
	City       string
	SalaryFrom int
	SalaryTo   int
	Order      OfferOrder
	// Equals is sorted by column and always ends up containing active = true.
	Equals []EqualityFilter
}

// Normalize applies defaults and validates the equality bag. It is the only place defaults are filled.
func (f OfferFilter) Normalize() (OfferSearch, error) {
	search := OfferSearch{
		Title:      f.Title,
		City:       f.City,
		SalaryFrom: DefaultSalaryFrom,
		SalaryTo:   DefaultSalaryTo,
	}
	if f.SalaryFrom != nil {
		search.SalaryFrom = *f.SalaryFrom
	}
	if f.SalaryTo != nil {
		search.SalaryTo = *f.SalaryTo
	}

	order, err := ParseOfferOrder(f.Order)
	if err != nil {
		return OfferSearch{}, err
	}
	search.Order = order

	bag := make(map[string]interface{}, len(f.Equals)+1)
	for key, value := range f.Equals {
		if isNamedFilter(key) {
			continue
		}
		kind, ok := equalityColumns[key]
		if !ok {
			return OfferSearch{}, appErrors.Clone(appErrors.ErrInvalidRequest, fmt.Sprintf("unknown filter field %q", key))
		}
		if kind == columnUUID {
			if _, err := uuid.Parse(value); err != nil {
				return OfferSearch{}, appErrors.Clone(appErrors.ErrInvalidRequest, fmt.Sprintf("filter field %q must be a UUID", key))
			}
		}
		bag[key] = value
	}
	bag["active"] = true

	columns := make([]string, 0, len(bag))
	for column := range bag {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	search.Equals = make([]EqualityFilter, 0, len(columns))
	for _, column := range columns {
		search.Equals = append(search.Equals, EqualityFilter{Column: column, Value: bag[column]})
	}

	return search, nil
}

// IsEqualityColumn reports whether column may appear in the equality bag.
func IsEqualityColumn(column string) bool {
	_, ok := equalityColumns[column]
	return ok
}

func isNamedFilter(key string) bool {
	switch key {
	case FilterTitle, FilterCity, FilterSalaryFrom, FilterSalaryTo, FilterOrder:
		return true
	}
	return false
}

// SpecializationFilter narrows the specialization list by exact match.
type SpecializationFilter struct {
	ProfessionID string `form:"profession_id" binding:"omitempty,uuid"`
}
