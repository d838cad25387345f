package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
)

func TestTxRunnerRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	runner := NewGormTxRunner(db)
	id := uuid.New()
	boom := errors.New("boom")

	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		if err := dbc.Tx.Create(&casRow{ID: id, XP: 1, Level: 1}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var n int64
	db.Model(&casRow{}).Where("id = ?", id).Count(&n)
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
}

func TestTxRunnerNilDB(t *testing.T) {
	runner := NewGormTxRunner(nil)
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error { return nil })
	if !IsCode(err, CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
