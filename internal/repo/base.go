package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/stashkeeper-backend/pkg/pagination"
	"github.com/angelmondragon/stashkeeper-backend/pkg/types"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Raw returns the unbound connection, e.g. to derive a transaction-scoped copy.
func (b Base) Raw() *gorm.DB {
	return b.db
}

// ForUpdate adds a row lock to query. Dialects without SELECT ... FOR UPDATE
// (SQLite) ignore the clause.
func ForUpdate(query *gorm.DB) *gorm.DB {
	return query.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Search adds a case-insensitive substring match of term across columns.
// Postgres uses ILIKE; other dialects compare LOWER(column), which folds ASCII
// only, so the term is folded the same way. A blank term leaves the query
// unchanged.
func Search(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	dialect := ""
	if query.Dialector != nil {
		dialect = query.Dialector.Name()
	}
	if dialect != "postgres" {
		term = types.FoldASCII(term)
	}
	pattern := "%" + escapeLike(term) + "%"
	conds := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, column := range columns {
		conds = append(conds, likeCondition(dialect, column))
		args = append(args, pattern)
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func likeCondition(dialect, column string) string {
	if dialect == "postgres" {
		return "COALESCE(" + column + ", '') ILIKE ? ESCAPE '\\'"
	}
	return "LOWER(COALESCE(" + column + ", '')) LIKE ? ESCAPE '\\'"
}

// Paginate counts the filtered rows, then loads the requested page into dest.
func Paginate[T any](query *gorm.DB, params pagination.Params, order string) (pagination.Page[T], error) {
	params = params.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return pagination.Page[T]{}, err
	}

	var rows []T
	if err := query.Session(&gorm.Session{}).
		Order(order).
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&rows).Error; err != nil {
		return pagination.Page[T]{}, err
	}
	return pagination.NewPage(rows, total, params), nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
