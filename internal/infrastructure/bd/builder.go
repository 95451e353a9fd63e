package bd

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"isp-system/pkg/types"
)

// ListSpec - разрешённые для списка колонки ресурса.
type ListSpec struct {
	// json-поле -> колонка (для filter[] и sort[])
	Allowed map[string]string
	// колонки для ILIKE по ?search=
	Search []string
	// сортировка по умолчанию, например "c.id DESC"
	DefaultOrder string
}

// ApplyFilters - поиск и фильтры. Используется и для списка, и для count/stats.
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, spec ListSpec) sq.SelectBuilder {
	if filter.Search != "" && len(spec.Search) > 0 {
		term := "%" + escapeLike(filter.Search) + "%"
		or := sq.Or{}
		for _, col := range spec.Search {
			or = append(or, sq.ILike{col: term})
		}
		builder = builder.Where(or)
	}

	keys := make([]string, 0, len(filter.Filter))
	for k := range filter.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, jsonField := range keys {
		dbCol, ok := spec.Allowed[jsonField]
		if !ok {
			continue
		}
		val := filter.Filter[jsonField]

		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			parts := make([]string, 0)
			for _, p := range strings.Split(s, ",") {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
			builder = builder.Where(sq.Eq{dbCol: parts})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}

	return builder
}

// ApplyListParams - сортировка и пагинация.
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, spec ListSpec) sq.SelectBuilder {
	keys := make([]string, 0, len(filter.Sort))
	for k := range filter.Sort {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sorted := false
	for _, jsonField := range keys {
		dbCol, ok := spec.Allowed[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.ToLower(filter.Sort[jsonField]) == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
		sorted = true
	}
	if !sorted && spec.DefaultOrder != "" {
		builder = builder.OrderBy(spec.DefaultOrder)
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	return builder
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
