package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/skillpath-backend/internal/data/aggregates"
	"github.com/yungbote/skillpath-backend/internal/data/repos"
	"github.com/yungbote/skillpath-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/grading"
	"github.com/yungbote/skillpath-backend/internal/platform/dbctx"
)

func TestXPForResult(t *testing.T) {
	cases := []struct {
		reward int
		passed bool
		want   int
	}{
		{50, true, 50},
		{50, false, 5},
		{9, false, 0},
		{15, false, 1},
		{0, true, 0},
	}
	for _, tc := range cases {
		if got := XPForResult(tc.reward, tc.passed); got != tc.want {
			t.Fatalf("XPForResult(%d,%v)=%d want %d", tc.reward, tc.passed, got, tc.want)
		}
	}
}

func TestNextLevel(t *testing.T) {
	cases := []struct {
		level, xp, gained int
		policy            LevelPolicy
		want              int
	}{
		{1, 90, 20, LevelPolicySingle, 2},
		{1, 70, 20, LevelPolicySingle, 1},
		{1, 0, 100, LevelPolicySingle, 2},
		{2, 150, 49, LevelPolicySingle, 2},
		{2, 150, 50, LevelPolicySingle, 3},
		{1, 0, 500, LevelPolicySingle, 2},
		{1, 0, 500, LevelPolicyCascade, 6},
		{1, 0, 99, LevelPolicyCascade, 1},
	}
	for _, tc := range cases {
		if got := NextLevel(tc.level, tc.xp, tc.gained, tc.policy); got != tc.want {
			t.Fatalf("NextLevel(%d,%d,%d,%s)=%d want %d", tc.level, tc.xp, tc.gained, tc.policy, got, tc.want)
		}
	}
}

func TestSubmitQuizPassThenFail(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	activity := e.seedQuiz(t, 50)

	pass := json.RawMessage(`{"answers":{"q1":"a","q2":"B","q3":" c ","q4":"d"}}`)
	res, err := e.submissions.Submit(ctx, userID, activity.ID, pass)
	if err != nil {
		t.Fatalf("Submit pass: %v", err)
	}
	if res.Result.Score != 100 || !res.Result.Passed {
		t.Fatalf("unexpected result %+v", res.Result)
	}
	if res.XPGained != 50 || res.NewXP != 50 || res.NewLevel != 1 || res.Attempts != 1 {
		t.Fatalf("unexpected ledger outcome %+v", res)
	}

	fail := json.RawMessage(`{"answers":{"q1":"x","q2":"x","q3":"x","q4":"x"}}`)
	res, err = e.submissions.Submit(ctx, userID, activity.ID, fail)
	if err != nil {
		t.Fatalf("Submit fail: %v", err)
	}
	if res.Result.Score != 0 || res.Result.Passed {
		t.Fatalf("unexpected result %+v", res.Result)
	}
	if res.XPGained != 5 || res.NewXP != 55 || res.NewLevel != 1 || res.Attempts != 2 {
		t.Fatalf("unexpected ledger outcome %+v", res)
	}

	attempt, err := e.ledger.GetAttempt(ctx, userID, activity.ID)
	if err != nil || attempt == nil {
		t.Fatalf("GetAttempt: %v %v", attempt, err)
	}
	if attempt.Completed {
		t.Fatalf("latest completion policy should clear completed after a failing attempt")
	}
	if attempt.Score != 0 {
		t.Fatalf("score not overwritten: %d", attempt.Score)
	}
}

func TestSubmitErrors(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := e.submissions.Submit(ctx, userID, uuid.New(), json.RawMessage(`{}`)); !errors.Is(err, ErrActivityNotFound) {
		t.Fatalf("expected ErrActivityNotFound, got %v", err)
	}

	m := testutil.SeedModule(t, ctx, e.db, 1)
	video := testutil.SeedActivity(t, ctx, e.db, m.ID, "video", `{}`, 10)
	if _, err := e.submissions.Submit(ctx, userID, video.ID, json.RawMessage(`{}`)); !errors.Is(err, grading.ErrUnsupportedActivityType) {
		t.Fatalf("expected ErrUnsupportedActivityType, got %v", err)
	}

	quiz := e.seedQuiz(t, 50)
	if _, err := e.submissions.Submit(ctx, userID, quiz.ID, json.RawMessage(`{"answers":"nope"}`)); !errors.Is(err, grading.ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission, got %v", err)
	}
	if p, _ := e.profileRepo.GetByUserID(testDBC(), userID); p != nil && p.XP != 0 {
		t.Fatalf("failed submissions must not grant xp: %+v", p)
	}
}

func TestLedgerLevelBoundary(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	activity := e.seedQuiz(t, 20)

	userID := uuid.New()
	testutil.SeedProfile(t, ctx, e.db, userID, 1, 90)
	res, err := e.ledger.ApplyResult(ctx, userID, activity.ID, 20, 100, true)
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if res.NewXP != 110 || res.NewLevel != 2 {
		t.Fatalf("expected xp=110 level=2, got %+v", res)
	}

	other := uuid.New()
	testutil.SeedProfile(t, ctx, e.db, other, 1, 70)
	res, err = e.ledger.ApplyResult(ctx, other, activity.ID, 20, 100, true)
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if res.NewXP != 90 || res.NewLevel != 1 {
		t.Fatalf("expected xp=90 level=1, got %+v", res)
	}

	p, err := e.profiles.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get profile: %v", err)
	}
	if p.XP != 110 || p.Level != 2 {
		t.Fatalf("profile not persisted: %+v", p)
	}
	if p.CurrentModuleID == nil || *p.CurrentModuleID != activity.ModuleID {
		t.Fatalf("current module not recorded: %+v", p.CurrentModuleID)
	}
	m, err := e.profiles.CurrentModule(ctx, p)
	if err != nil || m == nil || m.ID != activity.ModuleID {
		t.Fatalf("CurrentModule: %+v %v", m, err)
	}
}

func TestLedgerSingleLevelPerSubmission(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		policy LevelPolicy
		want   int
	}{
		{LevelPolicySingle, 2},
		{LevelPolicyCascade, 6},
	} {
		e := newTestEnv(t, withLedger(LedgerConfig{LevelPolicy: tc.policy}))
		activity := e.seedQuiz(t, 500)
		userID := uuid.New()
		testutil.SeedProfile(t, ctx, e.db, userID, 1, 0)
		res, err := e.ledger.ApplyResult(ctx, userID, activity.ID, 500, 100, true)
		if err != nil {
			t.Fatalf("ApplyResult: %v", err)
		}
		if res.NewLevel != tc.want || res.NewXP != 500 {
			t.Fatalf("%s: got %+v", tc.policy, res)
		}
	}
}

func TestLedgerProfileNotFound(t *testing.T) {
	e := newTestEnv(t)
	activity := e.seedQuiz(t, 10)
	_, err := e.ledger.ApplyResult(context.Background(), uuid.New(), activity.ID, 10, 100, true)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestLedgerAttemptsIncreaseByOne(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	activity := e.seedQuiz(t, 10)
	userID := uuid.New()
	testutil.SeedProfile(t, ctx, e.db, userID, 1, 0)
	for i := 1; i <= 4; i++ {
		res, err := e.ledger.ApplyResult(ctx, userID, activity.ID, 1, 50, false)
		if err != nil {
			t.Fatalf("ApplyResult %d: %v", i, err)
		}
		if res.Attempt.Attempts != i {
			t.Fatalf("attempt %d recorded as %d", i, res.Attempt.Attempts)
		}
	}
}

func TestLedgerStickyCompletion(t *testing.T) {
	e := newTestEnv(t, withLedger(LedgerConfig{CompletionPolicy: CompletionSticky}))
	ctx := context.Background()
	activity := e.seedQuiz(t, 10)
	userID := uuid.New()
	testutil.SeedProfile(t, ctx, e.db, userID, 1, 0)

	if _, err := e.ledger.ApplyResult(ctx, userID, activity.ID, 10, 100, true); err != nil {
		t.Fatalf("ApplyResult pass: %v", err)
	}
	res, err := e.ledger.ApplyResult(ctx, userID, activity.ID, 1, 0, false)
	if err != nil {
		t.Fatalf("ApplyResult fail: %v", err)
	}
	if !res.Attempt.Completed || res.Attempt.Score != 0 || res.Attempt.Attempts != 2 {
		t.Fatalf("sticky completion not kept: %+v", res.Attempt)
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseLevelPolicy(""); err != nil || p != LevelPolicySingle {
		t.Fatalf("default level policy: %v %v", p, err)
	}
	if p, err := ParseLevelPolicy("Cascade"); err != nil || p != LevelPolicyCascade {
		t.Fatalf("cascade: %v %v", p, err)
	}
	if _, err := ParseLevelPolicy("double"); err == nil {
		t.Fatalf("expected error for unknown level policy")
	}
	if p, err := ParseCompletionPolicy("sticky"); err != nil || p != CompletionSticky {
		t.Fatalf("sticky: %v %v", p, err)
	}
	if _, err := ParseCompletionPolicy("ever"); err == nil {
		t.Fatalf("expected error for unknown completion policy")
	}
}

func TestSubmitConcurrentSameActivity(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedProfile(t, ctx, e.db, userID, 1, 0)
	activity := e.seedQuiz(t, 50)
	pass := json.RawMessage(`{"answers":{"q1":"a","q2":"b","q3":"c","q4":"d"}}`)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.submissions.Submit(ctx, userID, activity.ID, pass); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Submit: %v", err)
	}

	p, err := e.profiles.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get profile: %v", err)
	}
	if p.XP != workers*50 || p.Level != 5 {
		t.Fatalf("expected xp=%d level=5, got xp=%d level=%d", workers*50, p.XP, p.Level)
	}
	attempt, err := e.ledger.GetAttempt(ctx, userID, activity.ID)
	if err != nil || attempt == nil {
		t.Fatalf("GetAttempt: %v %v", attempt, err)
	}
	if attempt.Attempts != workers || !attempt.Completed {
		t.Fatalf("expected %d attempts and completed, got %+v", workers, attempt)
	}
}

// racingProfiles bumps a profile's xp inside the caller's transaction right
// after it is read, so the following compare-and-set sees a stale value.
type racingProfiles struct {
	repos.UserProfileRepo
	t            *testing.T
	raceOnLoad   int
	raceOnReload bool
	reloads      int
}

func (r *racingProfiles) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProfile, error) {
	p, err := r.UserProfileRepo.GetByUserID(dbc, userID)
	if err == nil && p != nil && r.raceOnLoad > 0 {
		r.raceOnLoad--
		r.bump(dbc, p.ID)
	}
	return p, err
}

func (r *racingProfiles) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserProfile, error) {
	r.reloads++
	p, err := r.UserProfileRepo.GetByID(dbc, id)
	if err == nil && p != nil && r.raceOnReload {
		r.bump(dbc, id)
	}
	return p, err
}

func (r *racingProfiles) bump(dbc dbctx.Context, id uuid.UUID) {
	r.t.Helper()
	if err := dbc.Tx.WithContext(dbc.Ctx).Exec("UPDATE user_profile SET xp = xp + 1 WHERE id = ?", id).Error; err != nil {
		r.t.Fatalf("bump xp: %v", err)
	}
}

func TestLedgerRetriesAfterConcurrentUpdate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedProfile(t, ctx, e.db, userID, 1, 0)
	activity := e.seedQuiz(t, 50)

	profiles := &racingProfiles{UserProfileRepo: e.profileRepo, t: t, raceOnLoad: 1}
	ledger := NewProgressLedger(e.db, testutil.Logger(t), profiles, e.activityRepo, e.progressRepo, LedgerConfig{})
	res, err := ledger.ApplyResult(ctx, userID, activity.ID, 50, 100, true)
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if profiles.reloads != 1 {
		t.Fatalf("expected one reload, got %d", profiles.reloads)
	}
	if res.NewXP != 51 || res.Attempt == nil || res.Attempt.Attempts != 1 {
		t.Fatalf("gain not applied on top of the concurrent write: %+v", res)
	}
	p, _ := e.profiles.Get(ctx, userID)
	if p.XP != 51 {
		t.Fatalf("expected persisted xp 51, got %d", p.XP)
	}
}

func TestLedgerGivesUpAfterRepeatedConflicts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedProfile(t, ctx, e.db, userID, 1, 10)
	activity := e.seedQuiz(t, 50)

	profiles := &racingProfiles{UserProfileRepo: e.profileRepo, t: t, raceOnLoad: 1, raceOnReload: true}
	ledger := NewProgressLedger(e.db, testutil.Logger(t), profiles, e.activityRepo, e.progressRepo, LedgerConfig{})
	_, err := ledger.ApplyResult(ctx, userID, activity.ID, 50, 100, true)
	if !errors.Is(err, aggregates.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if profiles.reloads != maxLedgerCASAttempts-1 {
		t.Fatalf("expected %d reloads, got %d", maxLedgerCASAttempts-1, profiles.reloads)
	}
	p, _ := e.profiles.Get(ctx, userID)
	if p.XP != 10 {
		t.Fatalf("conflicting apply must roll back, got xp %d", p.XP)
	}
	if attempt, _ := e.ledger.GetAttempt(ctx, userID, activity.ID); attempt != nil {
		t.Fatalf("no attempt should be recorded, got %+v", attempt)
	}
}
