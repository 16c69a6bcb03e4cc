package list_repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"shopper/internal/core/apperror"
	"shopper/internal/domain/filter"
	"shopper/internal/domain/listing"
)

// Store is the minimal query surface the repository needs. The postgres
// package provides the pgx-backed implementation; tests use a fake.
type Store interface {
	Select(ctx context.Context, sql string, args []any) ([]map[string]any, error)
	Count(ctx context.Context, sql string, args []any) (int64, error)
	Exec(ctx context.Context, sql string, args []any) (int64, error)
}

// Repo executes compiled listing plans. It implements listing.Repo.
type Repo struct {
	store Store
}

// NewRepo creates a listing repository over a row store.
func NewRepo(store Store) *Repo {
	return &Repo{store: store}
}

// List compiles and runs the count and data queries, then eager-loads
// the requested relations onto the page.
func (r *Repo) List(ctx context.Context, cfg *filter.EntityConfig, q *filter.ParsedQuery) (*listing.PageResult, error) {
	plan, err := Compile(cfg, q)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	total, err := r.store.Count(ctx, plan.CountSQL, plan.CountArgs)
	if err != nil {
		return nil, err
	}

	page := &listing.PageResult{
		Data:     []listing.Row{},
		Total:    total,
		Page:     q.Page,
		PerPage:  q.PerPage,
		LastPage: lastPage(total, q.PerPage),
	}
	if total == 0 {
		return page, nil
	}

	rows, err := r.store.Select(ctx, plan.DataSQL, plan.DataArgs)
	if err != nil {
		return nil, err
	}
	page.Data = rows

	for _, rel := range plan.Includes {
		if err := r.attachRelation(ctx, rel, page.Data); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// lastPage is ceil(total/perPage), never below 1 so empty listings
// still report page 1 of 1.
func lastPage(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	n := int((total + int64(perPage) - 1) / int64(perPage))
	if n < 1 {
		return 1
	}
	return n
}

// attachRelation eager-loads one relation for the page in a single
// query keyed on the join column values.
func (r *Repo) attachRelation(ctx context.Context, rel filter.Relation, rows []listing.Row) error {
	switch rel.Kind {
	case filter.BelongsTo:
		return r.attachBelongsTo(ctx, rel, rows)
	case filter.HasMany:
		return r.attachHasMany(ctx, rel, rows)
	}
	return nil
}

func (r *Repo) attachBelongsTo(ctx context.Context, rel filter.Relation, rows []listing.Row) error {
	keys := collectKeys(rows, rel.ForeignKey)
	if len(keys) == 0 {
		for _, row := range rows {
			row[rel.Name] = nil
		}
		return nil
	}

	related, err := r.fetchByKeys(ctx, rel.Table, rel.LocalKey, keys)
	if err != nil {
		return err
	}

	byKey := make(map[any]listing.Row, len(related))
	for _, rr := range related {
		byKey[rr[rel.LocalKey]] = rr
	}
	for _, row := range rows {
		if match, ok := byKey[row[rel.ForeignKey]]; ok {
			row[rel.Name] = match
		} else {
			row[rel.Name] = nil
		}
	}
	return nil
}

func (r *Repo) attachHasMany(ctx context.Context, rel filter.Relation, rows []listing.Row) error {
	keys := collectKeys(rows, rel.LocalKey)
	if len(keys) == 0 {
		for _, row := range rows {
			row[rel.Name] = []listing.Row{}
		}
		return nil
	}

	related, err := r.fetchByKeys(ctx, rel.Table, rel.ForeignKey, keys)
	if err != nil {
		return err
	}

	grouped := make(map[any][]listing.Row)
	for _, rr := range related {
		k := rr[rel.ForeignKey]
		grouped[k] = append(grouped[k], rr)
	}
	for _, row := range rows {
		group := grouped[row[rel.LocalKey]]
		if group == nil {
			group = []listing.Row{}
		}
		row[rel.Name] = group
	}
	return nil
}

func (r *Repo) fetchByKeys(ctx context.Context, table, column string, keys []any) ([]map[string]any, error) {
	sql, args, err := sq.Select("*").
		From(table).
		Where(sq.Eq{column: keys}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return r.store.Select(ctx, sql, args)
}

// collectKeys gathers distinct non-nil join values from the page rows.
func collectKeys(rows []listing.Row, column string) []any {
	seen := make(map[any]struct{})
	var keys []any
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		keys = append(keys, v)
	}
	return keys
}
