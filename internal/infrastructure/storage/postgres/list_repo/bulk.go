package list_repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"shopper/internal/core/apperror"
	"shopper/internal/domain/filter"
)

// BulkApply runs a state mutation over the given IDs and returns the
// number of affected rows. Enable and disable write the entity's state
// column; delete removes the rows outright.
func (r *Repo) BulkApply(ctx context.Context, cfg *filter.EntityConfig, action filter.Action, ids []string) (int64, error) {
	var (
		sql  string
		args []any
		err  error
	)

	switch action {
	case filter.ActionEnable, filter.ActionDisable:
		if cfg.StateColumn == "" {
			return 0, apperror.NewInvalidBulkAction(cfg.Entity, string(action))
		}
		value := cfg.EnableValue
		if action == filter.ActionDisable {
			value = cfg.DisableValue
		}
		sql, args, err = sq.Update(cfg.Table).
			Set(cfg.StateColumn, value).
			Where(sq.Eq{cfg.IDColumn: ids}).
			PlaceholderFormat(sq.Dollar).
			ToSql()

	case filter.ActionDelete:
		sql, args, err = sq.Delete(cfg.Table).
			Where(sq.Eq{cfg.IDColumn: ids}).
			PlaceholderFormat(sq.Dollar).
			ToSql()

	default:
		return 0, apperror.NewInvalidBulkAction(cfg.Entity, string(action))
	}

	if err != nil {
		return 0, apperror.NewInternal(err)
	}
	return r.store.Exec(ctx, sql, args)
}
