package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	types "github.com/yungbote/skillpath-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, level, xp int) *types.UserProfile {
	tb.Helper()
	p := &types.UserProfile{UserID: userID, Level: level, XP: xp}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, position int) *types.Module {
	tb.Helper()
	m := &types.Module{Title: "Module", Position: position}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, kind string, content string, xpReward int) *types.Activity {
	tb.Helper()
	a := &types.Activity{
		ModuleID: moduleID,
		Type:     kind,
		Title:    kind + " activity",
		Content:  datatypes.JSON([]byte(content)),
		XPReward: xpReward,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return a
}

func SeedSkill(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Skill {
	tb.Helper()
	s := &types.Skill{Name: name}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed skill: %v", err)
	}
	return s
}

func TagActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, activityID uuid.UUID, skillIDs ...uuid.UUID) {
	tb.Helper()
	for _, id := range skillIDs {
		row := &types.ActivitySkill{ActivityID: activityID, SkillID: id}
		if err := tx.WithContext(ctx).Create(row).Error; err != nil {
			tb.Fatalf("tag activity: %v", err)
		}
	}
}

func SeedResource(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, storageKey string) *types.Resource {
	tb.Helper()
	r := &types.Resource{
		OwnerUserID: ownerID,
		Title:       "Resource",
		FileName:    "resource.pdf",
		MimeType:    "application/pdf",
		StorageKey:  storageKey,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed resource: %v", err)
	}
	return r
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
