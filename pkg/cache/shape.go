package cache

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/stashkeeper-backend/pkg/types"
)

// ShapeType distinguishes the read paths that are cached.
type ShapeType string

const (
	ShapeDetail  ShapeType = "detail"
	ShapeList    ShapeType = "list"
	ShapeHistory ShapeType = "history"
)

// QueryShape describes one cacheable read. Two reads with equal shapes must
// return equal results given the same stored data.
type QueryShape struct {
	Kind      string
	Owner     string
	Type      ShapeType
	ID        string
	Search    string
	Status    string
	Dimension string
	Page      int
	PageSize  int
}

// Tier returns the freshness tier of the read.
func (q QueryShape) Tier() Tier {
	switch q.Type {
	case ShapeList:
		return TierList
	case ShapeHistory:
		return TierLog
	default:
		return TierDetail
	}
}

// Key renders the shape deterministically. Only ASCII case is folded in the
// search term: every store dialect matches ASCII case-insensitively, but
// SQLite does not fold other letters, so those must keep distinct keys.
func (q QueryShape) Key() string {
	switch q.Type {
	case ShapeList:
		return fmt.Sprintf("%s:%s:list:q=%s:s=%s:d=%s:p=%d:n=%d",
			q.Kind, q.Owner, types.FoldASCII(strings.TrimSpace(q.Search)),
			q.Status, q.Dimension, q.Page, q.PageSize)
	default:
		return fmt.Sprintf("%s:%s:%s:%s", q.Kind, q.Owner, q.Type, q.ID)
	}
}
