package controllers

import (
	"net/http"

	"github.com/angelmondragon/stashkeeper-backend/api/validators"
	"github.com/angelmondragon/stashkeeper-backend/internal/filters"
	"github.com/angelmondragon/stashkeeper-backend/pkg/pagination"
)

const maxPage = 1_000_000

// listFilter reads q, status, page and page_size plus the kind specific
// dimension parameter (category or season).
func listFilter(r *http.Request, dimensionKey string) (filters.Filter, error) {
	query := r.URL.Query()
	page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
	if err != nil {
		return filters.Filter{}, err
	}
	pageSize, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return filters.Filter{}, err
	}
	return filters.Filter{
		Search:    query.Get("q"),
		Status:    query.Get("status"),
		Dimension: query.Get(dimensionKey),
		Page:      page,
		PageSize:  pageSize,
	}, nil
}
