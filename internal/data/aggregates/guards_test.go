package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type casRow struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	XP    int       `gorm:"column:xp"`
	Level int       `gorm:"column:level"`
}

func (casRow) TableName() string { return "cas_row" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&casRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCASGuardUpdateIfMatch(t *testing.T) {
	db := openTestDB(t)
	row := casRow{ID: uuid.New(), XP: 10, Level: 1}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	g := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: context.Background()}

	ok, err := g.UpdateIfMatch(dbc, "cas_row", row.ID,
		map[string]any{"xp": 10, "level": 1},
		map[string]any{"xp": 30, "level": 1})
	if err != nil || !ok {
		t.Fatalf("first update: ok=%v err=%v", ok, err)
	}

	ok, err = g.UpdateIfMatch(dbc, "cas_row", row.ID,
		map[string]any{"xp": 10, "level": 1},
		map[string]any{"xp": 50, "level": 1})
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if ok {
		t.Fatalf("expected stale update to be rejected")
	}

	var got casRow
	if err := db.First(&got, "id = ?", row.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.XP != 30 {
		t.Fatalf("expected xp 30, got %d", got.XP)
	}
}

func TestCASGuardValidation(t *testing.T) {
	g := NewCASGuard(nil)
	if _, err := g.UpdateIfMatch(dbctx.Context{Ctx: context.Background()}, "t", uuid.New(), nil, nil); err == nil {
		t.Fatalf("expected error without db")
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); err == nil {
		t.Fatalf("expected conflict error")
	}
}
