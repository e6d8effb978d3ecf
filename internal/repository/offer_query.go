package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/offers-api/internal/dto"
	appErrors "github.com/noah-isme/offers-api/pkg/errors"
)

// CompiledQuery is SQL text with its positional arguments.
type CompiledQuery struct {
	SQL  string
	Args []interface{}
}

const offerColumns = `o.id, o.company_id, o.specialization_id, o.profession_id, o.title, o.description, o.salary_from, o.salary_to, o.active, o.paid_till, o.created_at, o.updated_at,
        c.id AS company_ref_id, c.user_id AS company_user_id, c.name AS company_name, c.created_at AS company_created_at, c.updated_at AS company_updated_at,
        s.id AS specialization_ref_id, s.name AS specialization_name, s.profession_id AS specialization_profession_id,
        p.id AS profession_ref_id, p.name AS profession_name`

const offerCompanyJoin = `LEFT JOIN companies c ON c.id = o.company_id`

const offerReferenceJoins = `LEFT JOIN specializations s ON s.id = o.specialization_id
        LEFT JOIN professions p ON p.id = o.profession_id`

// Offers without any location row never match: the filtering join is an inner join.
const offerLocationFilterJoin = `INNER JOIN offer_locations ol ON ol.offer_id = o.id
        INNER JOIN company_locations locations_condition ON locations_condition.id = ol.company_location_id`

var offerOrderClauses = map[dto.OfferOrder]string{
	dto.OrderLatest:    "o.created_at DESC",
	dto.OrderSalaryMax: "o.salary_to DESC",
	dto.OrderSalaryMin: "o.salary_from ASC",
}

// CompileOfferSearch translates a normalized search into a single query over offers and their joined relations.
// now bounds the paid_till visibility check. Both salary bounds are compared against the offer's salary_to.
func CompileOfferSearch(search dto.OfferSearch, now time.Time) (CompiledQuery, error) {
	orderBy, ok := offerOrderClauses[search.Order]
	if !ok {
		return CompiledQuery{}, appErrors.Clone(appErrors.ErrInvalidRequest, fmt.Sprintf("unknown order %q", search.Order.String()))
	}

	var args []interface{}
	bind := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conditions := make([]string, 0, len(search.Equals)+6)
	for _, eq := range search.Equals {
		if !dto.IsEqualityColumn(eq.Column) {
			return CompiledQuery{}, appErrors.Clone(appErrors.ErrInvalidRequest, fmt.Sprintf("unknown filter field %q", eq.Column))
		}
		conditions = append(conditions, fmt.Sprintf("o.%s = %s", eq.Column, bind(eq.Value)))
	}
	conditions = append(conditions,
		"o.title LIKE "+bind("%"+search.Title+"%"),
		"locations_condition.city LIKE "+bind("%"+search.City+"%"),
		"o.active IS TRUE",
		"o.paid_till > "+bind(now),
		"o.salary_to <= "+bind(search.SalaryTo),
		"o.salary_to >= "+bind(search.SalaryFrom),
	)

	query := fmt.Sprintf(`SELECT DISTINCT %s
        FROM offers o
        %s
        %s
        %s
        WHERE %s
        ORDER BY %s, o.id ASC`,
		offerColumns,
		offerCompanyJoin,
		offerLocationFilterJoin,
		offerReferenceJoins,
		strings.Join(conditions, " AND "),
		orderBy,
	)

	return CompiledQuery{SQL: query, Args: args}, nil
}
