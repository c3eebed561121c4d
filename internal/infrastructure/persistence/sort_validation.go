package persistence

import (
	"strings"

	"github.com/hexasamples/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a listing may be ordered by. Anything
// else in a filter's OrderBy, including SQL fragments, falls back to the
// default column, so the value never reaches the query text.
type sortColumns struct {
	fallback string
	allowed  map[string]struct{}
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	s := sortColumns{fallback: fallback, allowed: map[string]struct{}{}}
	for _, c := range append(columns, "id", "created_at", "updated_at", fallback) {
		s.allowed[c] = struct{}{}
	}
	return s
}

var (
	storeSort      = newSortColumns("code", "legal_name", "trade_name")
	customerSort   = newSortColumns("name", "cpf")
	productSort    = newSortColumns("code", "description")
	salesOrderSort = newSortColumns("created_at", "status", "total_amount", "customer_name", "store_code", "closed_at")
)

func (s sortColumns) column(requested string) string {
	if _, ok := s.allowed[strings.TrimSpace(requested)]; ok {
		return strings.TrimSpace(requested)
	}
	return s.fallback
}

// orderBy sorts descending unless "asc" is asked for. The primary key breaks
// ties so consecutive pages never share a row.
func (s sortColumns) orderBy(filter shared.Filter) clause.OrderBy {
	col := s.column(filter.OrderBy)
	columns := []clause.OrderByColumn{{
		Column: clause.Column{Name: col},
		Desc:   !strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc"),
	}}
	if col != "id" {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return clause.OrderBy{Columns: columns}
}

// page orders the query and selects the filter's page
func (s sortColumns) page(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Clauses(s.orderBy(filter)).Offset(filter.Offset()).Limit(filter.Limit())
	}
}

// likePattern escapes LIKE wildcards in a user search term
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}
