// Package filter implements the admin listing query grammar: operator
// resolution, query-parameter parsing against a per-entity config, and
// canonical request signatures for caching.
package filter

// Clause is a single parsed filter condition on a column.
// Scalar operators populate Value; list operators populate Values.
// Type carries the column's declared bind-type hint so the compiler
// knows whether a value may be coerced away from text.
type Clause struct {
	Field  string
	Op     Op
	Value  string
	Values []string
	Type   ColumnType
}

// SortField is a single ordering term. Field is always a bare column
// name; direction lives in Desc.
type SortField struct {
	Field string
	Desc  bool
}

// ParsedQuery is the validated, normalized form of a listing request.
// Everything downstream (compiler, cache signature) consumes this, never
// the raw query string.
type ParsedQuery struct {
	Entity  string
	Clauses []Clause
	Search  string
	Sort    []SortField
	Include []string
	Fields  []string
	Page    int
	PerPage int
}

// HasInclude reports whether the relation name was requested (or is in
// the entity's default include set).
func (q *ParsedQuery) HasInclude(name string) bool {
	for _, inc := range q.Include {
		if inc == name {
			return true
		}
	}
	return false
}
