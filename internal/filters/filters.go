// Package filters normalises list requests into canonical queries and cache
// shapes.
package filters

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
	"github.com/angelmondragon/stashkeeper-backend/pkg/pagination"
	"github.com/angelmondragon/stashkeeper-backend/pkg/validation"
)

// All is accepted as an explicit "no filter" value.
const All = "ALL"

const maxSearchLen = 200

// Filter is a raw list request.
type Filter struct {
	Search    string
	Status    string
	Dimension string
	Page      int
	PageSize  int
}

// Query is a normalised Filter. Empty Status or Dimension means unfiltered.
type Query struct {
	Search    string
	Status    string
	Dimension string
	Params    pagination.Params
}

// Validator reports whether a raw enum value is acceptable.
type Validator func(string) bool

// Normalize trims input, maps "" and ALL to unset, rejects unknown enum values
// and clamps pagination.
func Normalize(f Filter, validStatus, validDimension Validator) (Query, error) {
	q := Query{
		Search: strings.TrimSpace(f.Search),
		Params: pagination.Params{Page: f.Page, PageSize: f.PageSize}.Normalize(),
	}
	if len(q.Search) > maxSearchLen {
		return Query{}, validation.Field("q", "must be at most 200 characters")
	}

	status, err := normalizeEnum("status", f.Status, validStatus)
	if err != nil {
		return Query{}, err
	}
	dimension, err := normalizeEnum("dimension", f.Dimension, validDimension)
	if err != nil {
		return Query{}, err
	}
	q.Status = status
	q.Dimension = dimension
	return q, nil
}

func normalizeEnum(field, raw string, valid Validator) (string, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" || value == All {
		return "", nil
	}
	if valid == nil || !valid(value) {
		return "", validation.Field(field, "is invalid")
	}
	return value, nil
}

// Shape returns the cache shape for the query run by owner against kind.
func (q Query) Shape(kind enums.ItemKind, owner uuid.UUID) cache.QueryShape {
	return cache.QueryShape{
		Kind:      string(kind),
		Owner:     owner.String(),
		Type:      cache.ShapeList,
		Search:    q.Search,
		Status:    q.Status,
		Dimension: q.Dimension,
		Page:      q.Params.Page,
		PageSize:  q.Params.PageSize,
	}
}
