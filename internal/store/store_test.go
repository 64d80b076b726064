package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/certguru/internal/progress"
	"github.com/abhisek/certguru/internal/question"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// brokenBackend fails every call.
type brokenBackend struct{}

var errBroken = errors.New("backend down")

func (brokenBackend) Name() string { return "broken" }
func (brokenBackend) Get(context.Context, string, string) ([]byte, error) {
	return nil, errBroken
}
func (brokenBackend) List(context.Context, string) ([]Document, error) { return nil, errBroken }
func (brokenBackend) Put(context.Context, string, ...Document) error { return errBroken }

// flakyBackend fails every call while down is set.
type flakyBackend struct {
	Backend
	down bool
}

func (b *flakyBackend) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if b.down {
		return nil, errBroken
	}
	return b.Backend.Get(ctx, collection, id)
}

func (b *flakyBackend) List(ctx context.Context, collection string) ([]Document, error) {
	if b.down {
		return nil, errBroken
	}
	return b.Backend.List(ctx, collection)
}

func (b *flakyBackend) Put(ctx context.Context, collection string, docs ...Document) error {
	if b.down {
		return errBroken
	}
	return b.Backend.Put(ctx, collection, docs...)
}

func sampleQuestion(n int) *question.Question {
	return &question.Question{
		Number: n,
		Text:   "Which service stores objects?",
		Answers: question.Answers{
			{Key: "a", Text: "Cloud Storage", Correct: true},
			{Key: "b", Text: "Cloud SQL"},
		},
		Tags:   []string{"storage"},
		Active: true,
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSQLiteDocuments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "c", "1")
	require.ErrorIs(t, err, ErrNotFound)

	docs, err := s.List(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, docs)

	require.NoError(t, s.Put(ctx, "c", Document{ID: "2", Data: []byte(`{"v":2}`)}, Document{ID: "1", Data: []byte(`{"v":1}`)}))
	require.NoError(t, s.Put(ctx, "c", Document{ID: "1", Data: []byte(`{"v":10}`)}))

	data, err := s.Get(ctx, "c", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":10}`, string(data))

	docs, err = s.List(ctx, "c")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "2", docs[1].ID)
}

func TestDirDocuments(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	docs, err := d.List(ctx, "questions")
	require.NoError(t, err, "missing file is an empty collection")
	assert.Empty(t, docs)

	require.NoError(t, d.Put(ctx, "questions", Document{ID: "7", Data: []byte(`{"x":1}`)}))
	data, err := d.Get(ctx, "questions", "7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(data))

	_, err = d.Get(ctx, "questions", "8")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, d.Put(ctx, "questions", Document{ID: "9", Data: []byte(`not json`)}))
}

func TestFallback_WriteFallsThrough(t *testing.T) {
	dir, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	f := NewFallback(quietLogger(), brokenBackend{}, dir)
	ctx := context.Background()

	res := f.Put(ctx, "c", Document{ID: "1", Data: []byte(`{}`)})
	assert.True(t, res.OK())
	assert.True(t, res.Degraded())
	assert.Equal(t, "jsonfile", res.Backend)
	assert.NoError(t, res.Err())

	_, res = f.Get(ctx, "c", "1")
	assert.Equal(t, "jsonfile", res.Backend)
}

func TestFallback_DegradedWriteSurvivesRecovery(t *testing.T) {
	sqlite := &flakyBackend{Backend: openTestStore(t)}
	dir, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	f := NewFallback(quietLogger(), sqlite, dir)
	ctx := context.Background()

	require.True(t, f.Put(ctx, "history", Document{ID: "daily", Data: []byte(`"v1"`)}).OK())

	sqlite.down = true
	res := f.Put(ctx, "history", Document{ID: "daily", Data: []byte(`"v2"`)})
	require.True(t, res.OK())
	assert.Equal(t, "jsonfile", res.Backend)
	assert.True(t, res.Degraded())

	sqlite.down = false
	data, res := f.Get(ctx, "history", "daily")
	require.NoError(t, res.Err())
	assert.JSONEq(t, `"v2"`, string(data))
	assert.Equal(t, "sqlite", res.Backend, "sqlite is resynced before serving")

	copied, err := sqlite.Backend.Get(ctx, "history", "daily")
	require.NoError(t, err)
	assert.JSONEq(t, `"v2"`, string(copied))
}

func TestFallback_StaleMarkerSurvivesRestart(t *testing.T) {
	sqlite := &flakyBackend{Backend: openTestStore(t)}
	dir, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	f := NewFallback(quietLogger(), sqlite, dir)
	require.True(t, f.Put(ctx, "questions", Document{ID: "1", Data: []byte(`{"v":1}`)}, Document{ID: "2", Data: []byte(`{"v":1}`)}).OK())
	sqlite.down = true
	require.True(t, f.Put(ctx, "questions", Document{ID: "2", Data: []byte(`{"v":2}`)}).OK())

	// A new process sees sqlite healthy again but holding an old copy.
	sqlite.down = false
	restarted := NewFallback(quietLogger(), sqlite, dir)
	docs, res := restarted.List(ctx, "questions")
	require.NoError(t, res.Err())
	require.Len(t, docs, 2)
	assert.JSONEq(t, `{"v":2}`, string(docs[1].Data))
	assert.False(t, res.Degraded())
}

func TestFallback_StaleBackendSkippedWhileDown(t *testing.T) {
	primary := &flakyBackend{Backend: openTestStore(t)}
	dir, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	f := NewFallback(quietLogger(), primary, dir)
	ctx := context.Background()

	primary.down = true
	require.True(t, f.Put(ctx, "c", Document{ID: "1", Data: []byte(`{}`)}).OK())

	_, res := f.Get(ctx, "c", "1")
	assert.Equal(t, "jsonfile", res.Backend)
	assert.True(t, res.Degraded())
}

func TestFallback_AllFail(t *testing.T) {
	f := NewFallback(quietLogger(), brokenBackend{})
	res := f.Put(context.Background(), "c", Document{ID: "1", Data: []byte(`{}`)})
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), errBroken)
}

func TestFallback_GetNotFound(t *testing.T) {
	s := openTestStore(t)
	f := NewFallback(quietLogger(), s)
	_, res := f.Get(context.Background(), "c", "missing")
	assert.ErrorIs(t, res.Err(), ErrNotFound)
}

func TestFallback_ListPromotesFromLowerBackend(t *testing.T) {
	s := openTestStore(t)
	dir, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, dir.Put(ctx, "questions", Document{ID: "1", Data: []byte(`{"a":1}`)}))

	f := NewFallback(quietLogger(), s, dir)
	docs, res := f.List(ctx, "questions")
	require.NoError(t, res.Err())
	assert.Equal(t, "jsonfile", res.Backend)
	require.Len(t, docs, 1)

	promoted, err := s.List(ctx, "questions")
	require.NoError(t, err)
	assert.Len(t, promoted, 1, "documents should be copied to sqlite")
}

func TestQuestionRepo(t *testing.T) {
	repo := NewQuestionRepo(NewFallback(quietLogger(), openTestStore(t)))
	ctx := context.Background()

	res := repo.UpsertMany(ctx, []*question.Question{sampleQuestion(10), sampleQuestion(2)})
	require.True(t, res.OK())

	qs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, 2, qs[0].Number, "ordered numerically, not lexically")
	assert.Equal(t, 10, qs[1].Number)

	q, err := repo.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Cloud Storage", q.Answers[0].Text)

	_, err = repo.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryRepo_EmptyOnFirstRun(t *testing.T) {
	repo := NewHistoryRepo(NewFallback(quietLogger(), openTestStore(t)))
	ctx := context.Background()

	h, err := LoadHistory(ctx, repo)
	require.NoError(t, err)
	assert.Empty(t, h.Daily)
	assert.Empty(t, h.Sessions)

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.Local)
	h.Daily = []progress.DailySessionHistory{{Date: day, TotalQuestions: 4, Tags: []string{"iam"}}}
	h.Sessions = []progress.IndividualSession{{ID: "s1", TotalQuestions: 4}}
	require.True(t, SaveHistory(ctx, repo, h).OK())

	got, err := LoadHistory(ctx, repo)
	require.NoError(t, err)
	require.Len(t, got.Daily, 1)
	assert.True(t, got.Daily[0].Date.Equal(day))
	assert.Equal(t, "s1", got.Sessions[0].ID)
}

// countingRepo wraps a QuestionRepo and can be switched to fail.
type countingRepo struct {
	QuestionRepo
	lists int
	fail  bool
}

func (r *countingRepo) ListAll(ctx context.Context) ([]*question.Question, error) {
	r.lists++
	if r.fail {
		return nil, errBroken
	}
	return r.QuestionRepo.ListAll(ctx)
}

func TestQuestionCache_StateMachine(t *testing.T) {
	ctx := context.Background()
	inner := NewQuestionRepo(NewFallback(quietLogger(), openTestStore(t)))
	require.True(t, inner.Upsert(ctx, sampleQuestion(1)).OK())

	repo := &countingRepo{QuestionRepo: inner}
	c := NewQuestionCache(repo, quietLogger())
	assert.Equal(t, CacheUnloaded, c.State())

	qs, err := c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, qs, 1)
	assert.Equal(t, CacheReady, c.State())

	_, err = c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists, "ready cache must not reload")

	c.Invalidate()
	assert.Equal(t, CacheStale, c.State())

	require.True(t, inner.Upsert(ctx, sampleQuestion(2)).OK())
	qs, err = c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.Equal(t, 2, repo.lists)

	c.Invalidate()
	repo.fail = true
	qs, err = c.All(ctx)
	require.NoError(t, err, "stale data is served when reload fails")
	assert.Len(t, qs, 2)
	assert.Equal(t, CacheStale, c.State())
}

func TestQuestionCache_LoadFailureWhenUnloaded(t *testing.T) {
	repo := &countingRepo{fail: true}
	c := NewQuestionCache(repo, quietLogger())
	_, err := c.All(context.Background())
	assert.Error(t, err)
	assert.Equal(t, CacheUnloaded, c.State())
}

func TestQuestionCache_SaveKeepsMemoryOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	good := NewQuestionRepo(NewFallback(quietLogger(), openTestStore(t)))
	require.True(t, good.Upsert(ctx, sampleQuestion(1)).OK())

	c := NewQuestionCache(good, quietLogger())
	q, err := c.Get(ctx, 1)
	require.NoError(t, err)

	c.repo = NewQuestionRepo(NewFallback(quietLogger(), brokenBackend{}))
	q.Score = 3
	res := c.Save(ctx, q)
	assert.False(t, res.OK())

	again, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Score)

	_, err = c.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, purpose := range []string{"explanation", "hint", "explanation"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock-model",
			Purpose:      purpose,
			InputTokens:  10 * (i + 1),
			OutputTokens: 5,
			LatencyMs:    100,
			Success:      true,
			RequestBody:  "[user]\nhello",
		})
		require.NoError(t, err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Greater(t, events[0].Sequence, events[1].Sequence, "newest first")

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "hint"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	e, err := repo.GetLLMEvent(ctx, filtered[0].ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "[user]\nhello", e.RequestBody)
	assert.True(t, e.Success)

	missing, err := repo.GetLLMEvent(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "explanation", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 40, byPurpose[0].InputTokens)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 3, byModel[0].Calls)
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestCacheStateString(t *testing.T) {
	assert.Equal(t, "stale", CacheStale.String())
	assert.Equal(t, "CacheState(9)", CacheState(9).String())
}
