package utils

import (
	"net/url"
	"strconv"
	"strings"

	"isp-system/pkg/types"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// ParseFilterFromQuery разбирает ?search=..&filter[x]=..&sort[y]=desc&page=&limit=&offset=&withPagination=
func ParseFilterFromQuery(values url.Values) types.Filter {
	filter := types.Filter{
		Sort:           make(map[string]string),
		Filter:         make(map[string]interface{}),
		Limit:          DefaultLimit,
		Page:           1,
		WithPagination: true,
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		switch {
		case strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]"):
			filter.Filter[key[7:len(key)-1]] = strings.TrimSpace(vals[0])
		case strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]"):
			filter.Sort[key[5:len(key)-1]] = strings.ToLower(vals[0])
		}
	}

	filter.Search = strings.TrimSpace(values.Get("search"))

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filter.Page = p
		}
	}
	filter.Offset = (filter.Page - 1) * filter.Limit

	// offset имеет приоритет над page
	if offsetStr := values.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
			filter.Page = o/filter.Limit + 1
		}
	}

	if wp := values.Get("withPagination"); wp != "" {
		if b, err := strconv.ParseBool(wp); err == nil {
			filter.WithPagination = b
		}
	}

	return filter
}
