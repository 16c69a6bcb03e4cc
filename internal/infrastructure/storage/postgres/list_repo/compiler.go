// Package list_repo compiles parsed listing queries into PostgreSQL and
// executes them against a generic row store.
package list_repo

import (
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"shopper/internal/domain/filter"
)

// Plan is a compiled listing request: a windowed data query and its
// matching unwindowed count query, plus the relations to eager-load.
type Plan struct {
	DataSQL   string
	DataArgs  []any
	CountSQL  string
	CountArgs []any
	Includes  []filter.Relation
}

// Compile turns a parsed query into SQL. Everything is built with
// question-mark placeholders so nested EXISTS subqueries compose, and
// renumbered to dollar placeholders only at the final render.
func Compile(cfg *filter.EntityConfig, q *filter.ParsedQuery) (*Plan, error) {
	where, err := buildWhere(cfg, q)
	if err != nil {
		return nil, err
	}

	data := sq.Select(selectColumns(cfg, q)...).From(cfg.Table)
	for _, pred := range where {
		data = data.Where(pred)
	}
	for _, s := range q.Sort {
		dir := " ASC"
		if s.Desc {
			dir = " DESC"
		}
		data = data.OrderBy(qualify(cfg.Table, s.Field) + dir)
	}
	data = data.
		Limit(uint64(q.PerPage)).
		Offset(uint64((q.Page - 1) * q.PerPage))

	filtered := sq.Select("1").From(cfg.Table)
	for _, pred := range where {
		filtered = filtered.Where(pred)
	}
	count := sq.Select("COUNT(*)").FromSelect(filtered, "sub")

	plan := &Plan{}
	plan.DataSQL, plan.DataArgs, err = data.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	plan.CountSQL, plan.CountArgs, err = count.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	for _, name := range q.Include {
		if rel, ok := cfg.RelationByName(name); ok {
			plan.Includes = append(plan.Includes, rel)
		}
	}
	return plan, nil
}

func selectColumns(cfg *filter.EntityConfig, q *filter.ParsedQuery) []string {
	cols := cfg.Columns
	if len(q.Fields) > 0 {
		cols = q.Fields
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = qualify(cfg.Table, c)
	}
	return out
}

func buildWhere(cfg *filter.EntityConfig, q *filter.ParsedQuery) ([]sq.Sqlizer, error) {
	var preds []sq.Sqlizer

	// Own-column predicates first, relation probes second, search last,
	// so the generated SQL is stable for a given parsed query.
	for _, c := range q.Clauses {
		if strings.Contains(c.Field, ".") {
			continue
		}
		if pred := predicate(qualify(cfg.Table, c.Field), c); pred != nil {
			preds = append(preds, pred)
		}
	}

	for _, c := range q.Clauses {
		rel, col, nested := strings.Cut(c.Field, ".")
		if !nested {
			continue
		}
		relation, ok := cfg.RelationByName(rel)
		if !ok {
			continue
		}
		pred := predicate(qualify(relation.Table, col), c)
		if pred == nil {
			continue
		}
		preds = append(preds, existsSubquery(cfg, relation, pred))
	}

	if q.Search != "" && len(cfg.Searchable) > 0 {
		var or sq.Or
		for _, col := range cfg.Searchable {
			or = append(or, sq.ILike{qualify(cfg.Table, col): "%" + q.Search + "%"})
		}
		preds = append(preds, or)
	}

	return preds, nil
}

// existsSubquery builds the correlated EXISTS probe for a relation
// filter. The join column pair depends on which side owns the foreign
// key.
func existsSubquery(cfg *filter.EntityConfig, rel filter.Relation, pred sq.Sqlizer) sq.Sqlizer {
	var join string
	switch rel.Kind {
	case filter.BelongsTo:
		join = qualify(rel.Table, rel.LocalKey) + " = " + qualify(cfg.Table, rel.ForeignKey)
	default: // HasMany
		join = qualify(rel.Table, rel.ForeignKey) + " = " + qualify(cfg.Table, rel.LocalKey)
	}

	inner := sq.Select("1").
		From(rel.Table).
		Where(sq.Expr(join)).
		Where(pred)

	return sq.Expr("EXISTS (?)", inner)
}

// predicate maps one clause to a squirrel condition. A nil return means
// the clause is a no-op (e.g. a between with fewer than two bounds).
func predicate(field string, c filter.Clause) sq.Sqlizer {
	switch c.Op {
	case filter.OpEq:
		return sq.Eq{field: coerce(c.Value, c.Type)}
	case filter.OpNe:
		return sq.NotEq{field: coerce(c.Value, c.Type)}
	case filter.OpGt:
		return sq.Gt{field: coerce(c.Value, c.Type)}
	case filter.OpGte:
		return sq.GtOrEq{field: coerce(c.Value, c.Type)}
	case filter.OpLt:
		return sq.Lt{field: coerce(c.Value, c.Type)}
	case filter.OpLte:
		return sq.LtOrEq{field: coerce(c.Value, c.Type)}
	case filter.OpLike:
		return sq.ILike{field: "%" + c.Value + "%"}
	case filter.OpNotLike:
		return sq.NotILike{field: "%" + c.Value + "%"}
	case filter.OpStarts:
		return sq.ILike{field: c.Value + "%"}
	case filter.OpEnds:
		return sq.ILike{field: "%" + c.Value}
	case filter.OpIn:
		// Empty list renders (1=0): an explicit empty set matches nothing.
		return sq.Eq{field: coerceList(c.Values, c.Type)}
	case filter.OpNotIn:
		// Empty list renders (1=1): excluding nothing matches everything.
		return sq.NotEq{field: coerceList(c.Values, c.Type)}
	case filter.OpBetween:
		if len(c.Values) < 2 {
			return nil
		}
		return sq.Expr(field+" BETWEEN ? AND ?", coerce(c.Values[0], c.Type), coerce(c.Values[1], c.Type))
	case filter.OpNBetween:
		if len(c.Values) < 2 {
			return nil
		}
		return sq.Expr(field+" NOT BETWEEN ? AND ?", coerce(c.Values[0], c.Type), coerce(c.Values[1], c.Type))
	case filter.OpNull:
		return sq.Eq{field: nil}
	case filter.OpNotNull:
		return sq.NotEq{field: nil}
	case filter.OpDate:
		return sq.Expr(field+"::date = ?", c.Value)
	case filter.OpMonth:
		// EXTRACT yields a numeric regardless of the column's own type.
		return sq.Expr("EXTRACT(MONTH FROM "+field+") = ?", coerce(c.Value, filter.ColumnNumber))
	case filter.OpYear:
		return sq.Expr("EXTRACT(YEAR FROM "+field+") = ?", coerce(c.Value, filter.ColumnNumber))
	}
	return nil
}

func qualify(table, column string) string {
	return table + "." + column
}

// coerce binds a raw query-string value according to the column's
// declared type hint. Undeclared columns stay text: a string column
// holding "123456" must compare as a string, not a bigint, or Postgres
// rejects the operator pairing outright.
func coerce(raw string, t filter.ColumnType) any {
	switch t {
	case filter.ColumnNumber:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case filter.ColumnBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	// Text, time, and unparsable values bind as-is; the driver and
	// Postgres handle timestamp literals natively.
	return raw
}

func coerceList(raw []string, t filter.ColumnType) []any {
	out := make([]any, len(raw))
	for i, v := range raw {
		out[i] = coerce(v, t)
	}
	return out
}
