package filter

import (
	"sort"
	"strconv"
	"strings"

	"shopper/internal/core/apperror"
)

// Params is the decoded query-parameter set for one listing request.
// Values are one of:
//
//	string            - a bare scalar (name=shoes)
//	[]string          - a repeated parameter (id=1&id=2)
//	map[string]string - bracketed operators (price[gte]=100&price[lte]=200)
//
// The transport layer is responsible for decoding bracket syntax into
// the map form before calling Parse.
type Params map[string]any

// Control parameter names. Anything else in Params is treated as a
// filter field.
const (
	paramPage    = "page"
	paramPerPage = "per_page"
	paramLimit   = "limit"
	paramSort    = "sort"
	paramInclude = "include"
	paramFields  = "fields"
	paramSearch  = "search"
)

var controlParams = map[string]struct{}{
	paramPage: {}, paramPerPage: {}, paramLimit: {}, paramSort: {},
	paramInclude: {}, paramFields: {}, paramSearch: {},
}

// Parse validates and normalizes a raw parameter set against the
// entity's config. Unknown filter and sort fields are dropped silently;
// an unknown operator token aborts the whole request.
func (r *Registry) Parse(entity string, params Params) (*ParsedQuery, error) {
	cfg, err := r.Get(entity)
	if err != nil {
		return nil, err
	}

	q := &ParsedQuery{
		Entity:  cfg.Entity,
		Page:    1,
		PerPage: cfg.DefaultPerPage,
	}

	q.Page = parsePositiveInt(scalarParam(params, paramPage), 1)
	q.PerPage = clampPerPage(params, cfg)
	q.Search = strings.TrimSpace(scalarParam(params, paramSearch))
	q.Sort = parseSort(scalarList(params, paramSort), cfg)
	q.Include = parseInclude(scalarList(params, paramInclude), cfg)
	q.Fields = parseFields(scalarList(params, paramFields), cfg, q.Include)

	clauses, err := r.parseClauses(cfg, params)
	if err != nil {
		return nil, err
	}
	q.Clauses = clauses

	return q, nil
}

// parseClauses walks the non-control params in sorted key order so the
// resulting clause list is deterministic for a given request.
func (r *Registry) parseClauses(cfg *EntityConfig, params Params) ([]Clause, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if _, ctl := controlParams[k]; ctl {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var clauses []Clause
	for _, field := range keys {
		fieldClauses, err := buildFieldClauses(field, params[field])
		if err != nil {
			return nil, err
		}
		// Operator errors fire even for fields about to be dropped; a
		// malformed request should not pass just because the field is
		// not filterable.
		if !r.fieldAllowed(cfg, field) {
			continue
		}
		typ := r.columnTypeFor(cfg, field)
		for _, c := range fieldClauses {
			c.Type = typ
			clauses = append(clauses, c)
		}
	}
	return clauses, nil
}

// buildFieldClauses converts one param value into clauses.
func buildFieldClauses(field string, value any) ([]Clause, error) {
	switch v := value.(type) {
	case string:
		return []Clause{{Field: field, Op: OpEq, Value: v}}, nil

	case []string:
		return []Clause{{Field: field, Op: OpIn, Values: v}}, nil

	case map[string]string:
		tokens := make([]string, 0, len(v))
		for tok := range v {
			tokens = append(tokens, tok)
		}
		sort.Strings(tokens)

		clauses := make([]Clause, 0, len(tokens))
		for _, tok := range tokens {
			op, ok := ResolveOp(tok)
			if !ok {
				return nil, apperror.NewUnknownOperator(tok)
			}
			clauses = append(clauses, makeClause(field, op, v[tok]))
		}
		return clauses, nil

	default:
		// Transport layer only produces the three forms above.
		return nil, nil
	}
}

func makeClause(field string, op Op, raw string) Clause {
	c := Clause{Field: field, Op: op}
	switch {
	case op.IgnoresValue():
		// null/nnull: presence alone matters.
	case op.NeedsList():
		c.Values = splitList(raw)
	default:
		c.Value = raw
	}
	return c
}

// fieldAllowed checks a filter field against the allow-lists. A dotted
// field (relation.column) is allowed when the relation is declared and
// the column passes the related entity's own filterable set; if the
// related entity is not registered, the column is accepted as declared.
func (r *Registry) fieldAllowed(cfg *EntityConfig, field string) bool {
	rel, col, nested := strings.Cut(field, ".")
	if !nested {
		return cfg.CanFilter(field)
	}

	relation, ok := cfg.RelationByName(rel)
	if !ok {
		return false
	}
	related, err := r.Get(relation.Entity)
	if err != nil {
		return true
	}
	return related.CanFilter(col)
}

// columnTypeFor resolves a field's bind-type hint, following dotted
// fields into the related entity's config when it is registered.
func (r *Registry) columnTypeFor(cfg *EntityConfig, field string) ColumnType {
	rel, col, nested := strings.Cut(field, ".")
	if !nested {
		return cfg.ColumnType(field)
	}
	relation, ok := cfg.RelationByName(rel)
	if !ok {
		return ColumnText
	}
	related, err := r.Get(relation.Entity)
	if err != nil {
		return ColumnText
	}
	return related.ColumnType(col)
}

func parseSort(raw []string, cfg *EntityConfig) []SortField {
	var out []SortField
	for _, term := range raw {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		desc := strings.HasPrefix(term, "-")
		field := strings.TrimPrefix(term, "-")
		if !cfg.CanSort(field) {
			continue
		}
		out = append(out, SortField{Field: field, Desc: desc})
	}
	return out
}

func parseInclude(raw []string, cfg *EntityConfig) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := cfg.RelationByName(name); !ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, name := range cfg.DefaultInclude {
		add(name)
	}
	for _, name := range raw {
		add(name)
	}
	return out
}

// parseFields narrows the selected column set. The ID column and the
// parent-side foreign keys of every included belongs-to relation are
// forced in so eager loading still has something to join on.
func parseFields(raw []string, cfg *EntityConfig, includes []string) []string {
	if len(raw) == 0 {
		return nil
	}

	valid := make(map[string]struct{}, len(cfg.Columns))
	for _, c := range cfg.Columns {
		valid[c] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(col string) {
		col = strings.TrimSpace(col)
		if col == "" {
			return
		}
		if _, ok := valid[col]; !ok {
			return
		}
		if _, dup := seen[col]; dup {
			return
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}

	add(cfg.IDColumn)
	for _, name := range includes {
		if rel, ok := cfg.RelationByName(name); ok && rel.Kind == BelongsTo {
			add(rel.ForeignKey)
		}
	}
	for _, col := range raw {
		add(col)
	}
	return out
}

// --- low-level param helpers ---

func scalarParam(params Params, key string) string {
	switch v := params[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// scalarList resolves a param that may be a comma-separated scalar or a
// repeated parameter, into a flat list.
func scalarList(params Params, key string) []string {
	switch v := params[key].(type) {
	case string:
		return splitList(v)
	case []string:
		var out []string
		for _, item := range v {
			out = append(out, splitList(item)...)
		}
		return out
	}
	return nil
}

// splitList splits a comma-separated value. An empty string yields an
// empty list, which for in/nin keeps the "match nothing / everything"
// semantics intact.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func parsePositiveInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func clampPerPage(params Params, cfg *EntityConfig) int {
	raw := scalarParam(params, paramPerPage)
	if raw == "" {
		raw = scalarParam(params, paramLimit)
	}
	n := parsePositiveInt(raw, cfg.DefaultPerPage)
	if n > cfg.MaxPerPage {
		return cfg.MaxPerPage
	}
	return n
}
