package aggregates

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// CASGuard runs compare-and-set updates: a row is written only if the
// guarded columns still hold the values the caller read.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// UpdateIfMatch updates the row with id only when every column in expected
// still equals its value. It returns false when another writer got there first.
func (g CASGuard) UpdateIfMatch(dbc dbctx.Context, table string, id uuid.UUID, expected map[string]any, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for UpdateIfMatch")
	}
	if len(expected) == 0 {
		return false, ValidationError("expected columns must not be empty")
	}
	if len(updates) == 0 {
		return false, ValidationError("updates must not be empty")
	}
	q := db.Table(table).Where("id = ?", id)
	cols := make([]string, 0, len(expected))
	for col := range expected {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		q = q.Where(col+" = ?", expected[col])
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a conflict error.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(strings.TrimSpace(message))
}
