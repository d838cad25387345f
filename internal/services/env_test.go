package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillpath-backend/internal/data/repos"
	"github.com/yungbote/skillpath-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillpath-backend/internal/domain"
	"github.com/yungbote/skillpath-backend/internal/jobs"
	"github.com/yungbote/skillpath-backend/internal/platform/crypto"
	"github.com/yungbote/skillpath-backend/internal/platform/llm"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
	"github.com/yungbote/skillpath-backend/internal/platform/objectstore"
)

const testLegacyIV = "000102030405060708090a0b0c0d0e0f"

type testEnv struct {
	db     *gorm.DB
	log    *logger.Logger
	mock   *llm.MockProvider
	client *llm.Client
	cipher *crypto.Versioned
	store  *objectstore.LocalStore
	queue  *jobs.MemoryQueue

	profileRepo  repos.UserProfileRepo
	keyRepo      repos.UserAPIKeyRepo
	activityRepo repos.ActivityRepo
	moduleRepo   repos.ModuleRepo
	skillRepo    repos.SkillRepo
	progressRepo repos.UserActivityProgressRepo
	profRepo     repos.SkillProficiencyRepo
	resourceRepo repos.ResourceRepo
	conceptRepo  repos.ConceptExplanationRepo
	callLogRepo  repos.AICallLogRepo

	profiles    ProfileService
	ledger      ProgressLedger
	proficiency ProficiencyUpdater
	submissions SubmissionService
	keys        APIKeyService
	annotations AnnotationService
	concepts    ConceptService
	assist      AssistService
}

type envOption func(*envConfig)

type envConfig struct {
	ledger      LedgerConfig
	defaultKeys map[string]string
	extractor   TextExtractor
}

func withLedger(cfg LedgerConfig) envOption {
	return func(c *envConfig) { c.ledger = cfg }
}

func withDefaultKey(service, key string) envOption {
	return func(c *envConfig) { c.defaultKeys[service] = key }
}

func withExtractor(x TextExtractor) envOption {
	return func(c *envConfig) { c.extractor = x }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := envConfig{defaultKeys: map[string]string{}}
	for _, o := range opts {
		o(&cfg)
	}

	db := testutil.DB(t)
	log := testutil.Logger(t)
	e := &testEnv{db: db, log: log}

	e.profileRepo = repos.NewUserProfileRepo(db, log)
	e.keyRepo = repos.NewUserAPIKeyRepo(db, log)
	e.activityRepo = repos.NewActivityRepo(db, log)
	e.moduleRepo = repos.NewModuleRepo(db, log)
	e.skillRepo = repos.NewSkillRepo(db, log)
	e.progressRepo = repos.NewUserActivityProgressRepo(db, log)
	e.profRepo = repos.NewSkillProficiencyRepo(db, log)
	e.resourceRepo = repos.NewResourceRepo(db, log)
	e.conceptRepo = repos.NewConceptExplanationRepo(db, log)
	e.callLogRepo = repos.NewAICallLogRepo(db, log)

	var err error
	e.cipher, err = crypto.New(crypto.Config{Passphrase: "test-passphrase", Salt: "test-salt", LegacyIV: testLegacyIV})
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}
	e.mock = llm.NewMockProvider(llm.ServiceGemini)
	e.client, err = llm.NewClient(log, nil, llm.WithLogging(e.mock, NewCallLogRecorder(e.callLogRepo), nil, log))
	if err != nil {
		t.Fatalf("llm.NewClient: %v", err)
	}
	e.store, err = objectstore.NewLocalStore(log, t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	e.queue = jobs.NewMemoryQueue(16)
	t.Cleanup(func() { _ = e.queue.Close() })

	e.profiles = NewProfileService(db, log, e.profileRepo, e.moduleRepo, e.profRepo, e.progressRepo)
	e.ledger = NewProgressLedger(db, log, e.profileRepo, e.activityRepo, e.progressRepo, cfg.ledger)
	e.proficiency = NewProficiencyUpdater(db, log, e.profileRepo, e.skillRepo, e.profRepo)
	e.submissions = NewSubmissionService(db, log, e.activityRepo, e.profiles, e.ledger, e.proficiency, nil)
	e.keys = NewAPIKeyService(db, log, e.profileRepo, e.keyRepo, e.cipher, e.client, APIKeyConfig{
		DefaultService: llm.ServiceGemini,
		DefaultKeys:    cfg.defaultKeys,
	})
	e.annotations = NewAnnotationService(db, log, e.resourceRepo, e.store, cfg.extractor, e.keys, e.client, e.queue, AnnotationConfig{})
	e.concepts = NewConceptService(db, log, e.conceptRepo, e.profileRepo, e.keys, e.client)
	e.assist = NewAssistService(log, e.keys, e.profiles, e.client)
	return e
}

const fourQuestionQuiz = `{"questions":[
	{"id":"q1","answer":"a"},
	{"id":"q2","answer":"b"},
	{"id":"q3","answer":"c"},
	{"id":"q4","answer":"d"}
]}`

func (e *testEnv) seedQuiz(t *testing.T, reward int) *types.Activity {
	t.Helper()
	ctx := context.Background()
	m := testutil.SeedModule(t, ctx, e.db, 1)
	return testutil.SeedActivity(t, ctx, e.db, m.ID, "quiz", fourQuestionQuiz, reward)
}

func (e *testEnv) seedResource(t *testing.T, owner uuid.UUID, body string) *types.Resource {
	t.Helper()
	key := "resources/" + uuid.NewString() + ".txt"
	if err := e.store.Put(context.Background(), key, strings.NewReader(body)); err != nil {
		t.Fatalf("store put: %v", err)
	}
	r := testutil.SeedResource(t, context.Background(), e.db, owner, key)
	r.MimeType = "text/plain"
	r.FileName = "notes.txt"
	if err := e.db.Save(r).Error; err != nil {
		t.Fatalf("update resource: %v", err)
	}
	return r
}

func (e *testEnv) saveKey(t *testing.T, userID uuid.UUID, key string) {
	t.Helper()
	e.mock.AddResponse(llm.MockResponse{Text: "OK"})
	v, err := e.keys.Save(context.Background(), userID, llm.ServiceGemini, key)
	if err != nil || !v.Valid {
		t.Fatalf("save key: %+v %v", v, err)
	}
}

var studyText = strings.Repeat("Binary search halves the search interval on every comparison. ", 20)
