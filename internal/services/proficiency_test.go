package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/skillpath-backend/internal/data/repos/testutil"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
)

func testDBC() dbctx.Context { return dbctx.New(context.Background()) }

func TestGainForScore(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 1: 1, 10: 1, 11: 2, 70: 7, 95: 10, 100: 10, 150: 10}
	prev := 0
	for _, score := range []int{-5, 0, 1, 10, 11, 70, 95, 100, 150} {
		got := GainForScore(score)
		if got != cases[score] {
			t.Fatalf("GainForScore(%d)=%d want %d", score, got, cases[score])
		}
		if got < prev {
			t.Fatalf("gain not monotonic at %d", score)
		}
		prev = got
	}
}

func TestProficiencyNeverExceedsMax(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	activity := e.seedQuiz(t, 10)
	skill := testutil.SeedSkill(t, ctx, e.db, "searching")
	other := testutil.SeedSkill(t, ctx, e.db, "arrays")
	testutil.TagActivity(t, ctx, e.db, activity.ID, skill.ID, other.ID)
	userID := uuid.New()
	profile := testutil.SeedProfile(t, ctx, e.db, userID, 1, 0)

	if err := e.proficiency.UpdateProficiency(ctx, userID, activity.ID, true, 80); err != nil {
		t.Fatalf("first update: %v", err)
	}
	row, err := e.profRepo.Get(testDBC(), profile.ID, skill.ID)
	if err != nil || row == nil {
		t.Fatalf("Get: %v %v", row, err)
	}
	if row.Proficiency != BaselineProficiency || row.Attempts != 1 {
		t.Fatalf("expected baseline row, got %+v", row)
	}

	if err := e.proficiency.UpdateProficiency(ctx, userID, activity.ID, true, 80); err != nil {
		t.Fatalf("second update: %v", err)
	}
	row, _ = e.profRepo.Get(testDBC(), profile.ID, skill.ID)
	if row.Proficiency != BaselineProficiency+GainForScore(80) {
		t.Fatalf("expected %d, got %d", BaselineProficiency+GainForScore(80), row.Proficiency)
	}

	for i := 0; i < 25; i++ {
		if err := e.proficiency.UpdateProficiency(ctx, userID, activity.ID, true, 100); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	rows, err := e.profiles.ListSkills(ctx, userID)
	if err != nil {
		t.Fatalf("ListSkills: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Proficiency > MaxProficiency {
			t.Fatalf("proficiency %d exceeds max", r.Proficiency)
		}
		if r.Proficiency != MaxProficiency {
			t.Fatalf("expected proficiency to saturate at %d, got %d", MaxProficiency, r.Proficiency)
		}
	}
}

func TestProficiencySkipsFailedResults(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	activity := e.seedQuiz(t, 10)
	skill := testutil.SeedSkill(t, ctx, e.db, "graphs")
	testutil.TagActivity(t, ctx, e.db, activity.ID, skill.ID)
	userID := uuid.New()
	profile := testutil.SeedProfile(t, ctx, e.db, userID, 1, 0)

	if err := e.proficiency.UpdateProficiency(ctx, userID, activity.ID, false, 40); err != nil {
		t.Fatalf("update: %v", err)
	}
	if row, _ := e.profRepo.Get(testDBC(), profile.ID, skill.ID); row != nil {
		t.Fatalf("failed result must not touch proficiency: %+v", row)
	}
}
