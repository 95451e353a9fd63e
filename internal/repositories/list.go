package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"isp-system/internal/infrastructure/bd"
	"isp-system/pkg/types"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// listSource - описание выборки ресурса: таблица, джойны, колонки, разрешённые поля.
type listSource struct {
	From         string
	Joins        []string
	Columns      []string
	Spec         bd.ListSpec
	Base         sq.Sqlizer // постоянное условие, например deleted_at IS NULL
	CountColumn  string
	StatusColumn string
}

func (s listSource) where(b sq.SelectBuilder, scope sq.Sqlizer) sq.SelectBuilder {
	for _, j := range s.Joins {
		b = b.JoinClause(j)
	}
	if s.Base != nil {
		b = b.Where(s.Base)
	}
	if scope != nil {
		b = b.Where(scope)
	}
	return b
}

// selectOne - SELECT колонок без фильтров списка, для поиска по id.
func (s listSource) selectOne(where sq.Sqlizer) sq.SelectBuilder {
	return s.where(psql.Select(s.Columns...).From(s.From), nil).Where(where)
}

func (s listSource) count(filter types.Filter, scope sq.Sqlizer) sq.SelectBuilder {
	b := s.where(psql.Select(fmt.Sprintf("COUNT(%s)", s.CountColumn)).From(s.From), scope)
	return bd.ApplyFilters(b, filter, s.Spec)
}

func (s listSource) list(filter types.Filter, scope sq.Sqlizer) sq.SelectBuilder {
	b := s.where(psql.Select(s.Columns...).From(s.From), scope)
	b = bd.ApplyFilters(b, filter, s.Spec)
	return bd.ApplyListParams(b, filter, s.Spec)
}

func (s listSource) stats(filter types.Filter, scope sq.Sqlizer) sq.SelectBuilder {
	b := s.where(psql.Select(s.StatusColumn, "COUNT(*)").From(s.From), scope)
	return bd.ApplyFilters(b, filter, s.Spec).GroupBy(s.StatusColumn)
}

// fetchList - COUNT + SELECT по одному описанию.
func fetchList[T any](ctx context.Context, q Querier, src listSource, filter types.Filter, scope sq.Sqlizer, scan func(pgx.Row) (*T, error)) ([]T, uint64, error) {
	countSQL, countArgs, err := src.count(filter, scope).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки count-запроса: %w", err)
	}

	var total uint64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}
	if total == 0 {
		return []T{}, 0, nil
	}

	query, args, err := src.list(filter, scope).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка: %w", err)
	}
	defer rows.Close()

	items := make([]T, 0, filter.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// fetchOne - одна запись по условию; ErrNoRows превращается в ErrNotFound.
func fetchOne[T any](ctx context.Context, q Querier, src listSource, where sq.Sqlizer, scan func(pgx.Row) (*T, error), entity string) (*T, error) {
	query, args, err := src.selectOne(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	item, err := scan(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, entity)
	}
	return item, nil
}

// fetchStats - карточки: количество по статусам под теми же фильтрами, кроме самого статуса.
func fetchStats(ctx context.Context, q Querier, src listSource, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	stats := types.StatusStats{ByStatus: make(map[string]uint64)}

	query, args, err := src.stats(withoutStatus(filter), scope).ToSql()
	if err != nil {
		return stats, fmt.Errorf("ошибка сборки запроса статистики: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("ошибка получения статистики: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var cnt uint64
		if err := rows.Scan(&status, &cnt); err != nil {
			return stats, fmt.Errorf("ошибка сканирования статистики: %w", err)
		}
		stats.ByStatus[status] = cnt
		stats.Total += cnt
	}
	return stats, rows.Err()
}

// withoutStatus - копия фильтра без filter[status]; карточки считаются по всем статусам.
func withoutStatus(filter types.Filter) types.Filter {
	out := filter
	out.Filter = make(map[string]interface{}, len(filter.Filter))
	for k, v := range filter.Filter {
		if k != "status" {
			out.Filter[k] = v
		}
	}
	return out
}

// AndScope склеивает условия, пропуская nil. nil, если условий нет.
func AndScope(parts ...sq.Sqlizer) sq.Sqlizer {
	and := sq.And{}
	for _, p := range parts {
		if p != nil {
			and = append(and, p)
		}
	}
	if len(and) == 0 {
		return nil
	}
	return and
}
