package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/certguru/internal/explain"
	"github.com/abhisek/certguru/internal/llm"
	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/scoring"
	"github.com/abhisek/certguru/internal/selector"
	"github.com/abhisek/certguru/internal/store"
)

var testNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.Local)

type fixture struct {
	trainer   *Trainer
	questions store.QuestionRepo
	history   store.HistoryRepo
	clock     *time.Time
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func mkQuestion(n int, score int, tags ...string) *question.Question {
	return &question.Question{
		Number: n,
		Text:   "Question text " + string(rune('A'+n%26)),
		Answers: question.Answers{
			{Key: "a", Text: "Cloud Storage", Correct: true},
			{Key: "b", Text: "Cloud SQL"},
			{Key: "c", Text: "Pub/Sub"},
		},
		Tags:   tags,
		Score:  score,
		Active: true,
	}
}

func newFixture(t *testing.T, provider llm.Provider, qs ...*question.Question) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	log := quietLogger()
	docs := store.NewFallback(log, s)
	qrepo := store.NewQuestionRepo(docs)
	hrepo := store.NewHistoryRepo(docs)
	if len(qs) > 0 {
		require.True(t, qrepo.UpsertMany(context.Background(), qs).OK())
	}

	clock := testNow
	tr := New(Options{
		Questions: store.NewQuestionCache(qrepo, log),
		History:   hrepo,
		Explainer: explain.New(provider, nil, explain.DefaultConfig(), log),
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Now:       func() time.Time { return clock },
		Log:       log,
	})
	return &fixture{trainer: tr, questions: qrepo, history: hrepo, clock: &clock}
}

func (f *fixture) stored(t *testing.T, n int) *question.Question {
	t.Helper()
	q, err := f.questions.Get(context.Background(), n)
	require.NoError(t, err)
	return q
}

func TestNextQuestion_NoRepeatsThenSessionComplete(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"), mkQuestion(2, 1, "net"), mkQuestion(3, -1, "iam"))
	ctx := context.Background()

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		q, err := f.trainer.NextQuestion(ctx, selector.Filter{})
		require.NoError(t, err)
		assert.False(t, seen[q.Number], "question %d served twice", q.Number)
		seen[q.Number] = true
	}

	_, err := f.trainer.NextQuestion(ctx, selector.Filter{})
	assert.ErrorIs(t, err, ErrSessionComplete)

	_, err = f.trainer.StartNewSession(ctx, nil)
	require.NoError(t, err)
	_, err = f.trainer.NextQuestion(ctx, selector.Filter{})
	assert.NoError(t, err, "a new session makes shown questions eligible again")
}

func TestNextQuestion_AllMastered(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 4, "net"), mkQuestion(2, 4, "net"), mkQuestion(3, 0, "iam"))
	ctx := context.Background()

	_, err := f.trainer.NextQuestion(ctx, selector.Filter{Tags: []string{"net"}})
	assert.ErrorIs(t, err, ErrAllMastered)

	q, err := f.trainer.NextQuestion(ctx, selector.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, q.Number)
}

func TestNextQuestion_PerfectedNeverServedInMixedPool(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"), mkQuestion(2, 4, "net"))
	ctx := context.Background()
	filter := selector.Filter{Tags: []string{"net"}}

	q, err := f.trainer.NextQuestion(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Number)

	_, err = f.trainer.NextQuestion(ctx, filter)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestNextQuestion_StarredAllPerfected(t *testing.T) {
	q1 := mkQuestion(1, 4, "net")
	q1.Starred = true
	f := newFixture(t, nil, q1, mkQuestion(2, 0, "iam"))

	_, err := f.trainer.NextQuestion(context.Background(), selector.Filter{StarredOnly: true})
	assert.ErrorIs(t, err, ErrAllMastered)
}

func TestNextQuestion_PerfectedLevelReview(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 4, "net"), mkQuestion(2, 4, "net"))
	ctx := context.Background()

	f1 := selector.Filter{Tags: []string{"net"}, Levels: []scoring.Band{scoring.BandPerfected}}
	for i := 0; i < 2; i++ {
		q, err := f.trainer.NextQuestion(ctx, f1)
		require.NoError(t, err)
		assert.Equal(t, scoring.BandPerfected, q.Band())
	}
	_, err := f.trainer.NextQuestion(ctx, f1)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestNextQuestion_NoMatch(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"))
	_, err := f.trainer.NextQuestion(context.Background(), selector.Filter{Tags: []string{"storage"}})
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestNextQuestion_ReturnsCopy(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"))
	q, err := f.trainer.NextQuestion(context.Background(), selector.Filter{})
	require.NoError(t, err)
	q.Score = 3

	again, err := f.trainer.Question(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Score)
}

func TestSubmitAnswer(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"))
	ctx := context.Background()

	res, err := f.trainer.SubmitAnswer(ctx, 1, []string{"A"}, false)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, []string{"a"}, res.CorrectKeys)
	assert.Equal(t, 0, res.PrevScore)
	assert.Equal(t, 1, res.Question.Score)
	assert.Empty(t, res.Explanation)
	assert.Equal(t, 1, f.stored(t, 1).Score, "score persisted")

	res, err = f.trainer.SubmitAnswer(ctx, 1, []string{"a", "b"}, false)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 0, res.Question.Score)

	sum := f.trainer.CurrentSession()
	assert.Equal(t, 2, sum.QuestionsAnswered)
	assert.Equal(t, 1, sum.CorrectAnswers)
	assert.Equal(t, 1, sum.IncorrectAnswers)
	assert.Equal(t, 50.0, sum.AccuracyPercent)
	assert.Equal(t, 1, sum.QuestionsShown)
	assert.Equal(t, []string{"net"}, sum.Tags)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 2, "net"))
	ctx := context.Background()

	_, err := f.trainer.SubmitAnswer(ctx, 99, []string{"a"}, false)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = f.trainer.SubmitAnswer(ctx, 1, []string{"z"}, false)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.Equal(t, 2, f.stored(t, 1).Score, "rejected answers do not score")
	assert.Equal(t, 0, f.trainer.CurrentSession().QuestionsAnswered)
}

func TestSubmitAnswer_MistakeToPerfected(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"), mkQuestion(2, 0, "net"))
	ctx := context.Background()

	res, err := f.trainer.SubmitAnswer(ctx, 1, []string{"b"}, false)
	require.NoError(t, err)
	assert.Equal(t, -1, res.Question.Score)
	assert.Equal(t, scoring.BandMistakes, res.Band)

	for i := 0; i < 6; i++ {
		res, err = f.trainer.SubmitAnswer(ctx, 1, []string{"a"}, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, res.Question.Score)
	assert.Equal(t, scoring.BandPerfected, res.Band)

	for i := 0; i < 20; i++ {
		_, err = f.trainer.StartNewSession(ctx, nil)
		require.NoError(t, err)
		q, err := f.trainer.NextQuestion(ctx, selector.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 2, q.Number, "perfected question is never served")
	}

	_, err = f.trainer.NextQuestion(ctx, selector.Filter{})
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestSubmitAnswer_Concurrent(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, -1, "net"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(correct bool) {
			defer wg.Done()
			key := "b"
			if correct {
				key = "a"
			}
			_, _ = f.trainer.SubmitAnswer(ctx, 1, []string{key}, false)
		}(i%2 == 0)
	}
	wg.Wait()

	sum := f.trainer.CurrentSession()
	assert.Equal(t, 40, sum.QuestionsAnswered)
	assert.Equal(t, 20, sum.CorrectAnswers)
	score := f.stored(t, 1).Score
	assert.GreaterOrEqual(t, score, -1)
	assert.LessOrEqual(t, score, 4)
}

func TestSkip(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"), mkQuestion(2, 0, "iam"))
	ctx := context.Background()

	require.NoError(t, f.trainer.Skip(ctx, 1))
	assert.ErrorIs(t, f.trainer.Skip(ctx, 7), ErrQuestionNotFound)

	q, err := f.trainer.NextQuestion(ctx, selector.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Number)

	sum := f.trainer.CurrentSession()
	assert.Equal(t, 0, sum.QuestionsAnswered)
	assert.Equal(t, 2, sum.QuestionsShown)
}

func TestStarAndNote(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"), mkQuestion(2, 0, "iam"))
	ctx := context.Background()

	q, err := f.trainer.Star(ctx, 2, true)
	require.NoError(t, err)
	assert.True(t, q.Starred)
	assert.True(t, f.stored(t, 2).Starred)

	q, err = f.trainer.SetNote(ctx, 1, "check quotas")
	require.NoError(t, err)
	assert.Equal(t, "check quotas", q.Note)
	assert.Equal(t, "check quotas", f.stored(t, 1).Note)

	_, err = f.trainer.Star(ctx, 5, true)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	starred, err := f.trainer.List(ctx, ListOptions{StarredOnly: true})
	require.NoError(t, err)
	require.Len(t, starred, 1)
	assert.Equal(t, 2, starred[0].Number)

	byTag, err := f.trainer.List(ctx, ListOptions{Tags: []string{"net", question.StarredTag}})
	require.NoError(t, err)
	assert.Len(t, byTag, 2)
}

func TestExplanation_CachesGeneratedText(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"explanation":"Storage holds objects."}`)},
		llm.MockResponse{Content: json.RawMessage(`{"explanation":"Regenerated."}`)},
	)
	f := newFixture(t, mock, mkQuestion(1, 0, "storage"))
	ctx := context.Background()

	res, err := f.trainer.SubmitAnswer(ctx, 1, []string{"b"}, true)
	require.NoError(t, err)
	assert.Equal(t, "Storage holds objects.", res.Explanation)
	assert.Equal(t, "Storage holds objects.", f.stored(t, 1).Explanation)

	text, err := f.trainer.Explanation(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "Storage holds objects.", text)
	assert.Equal(t, 1, mock.CallCount(), "cached explanation is reused")

	text, err = f.trainer.Explanation(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, "Regenerated.", text)
	assert.Equal(t, "Regenerated.", f.stored(t, 1).Explanation)
}

func TestExplanation_FallbackNotCached(t *testing.T) {
	f := newFixture(t, llm.NewMockProvider(), mkQuestion(1, 0, "storage"))
	ctx := context.Background()

	text, err := f.trainer.Explanation(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, explain.FallbackExplanation, text)
	assert.Empty(t, f.stored(t, 1).Explanation)

	hint, err := f.trainer.Hint(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, explain.FallbackHint, hint)
	assert.Empty(t, f.stored(t, 1).Hint)
}

func TestHint_Cached(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"hint":"Think about object storage."}`)})
	f := newFixture(t, mock, mkQuestion(1, 0, "storage"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		hint, err := f.trainer.Hint(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Think about object storage.", hint)
	}
	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "Think about object storage.", f.stored(t, 1).Hint)

	_, err := f.trainer.Hint(ctx, 42)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestStartNewSession_RollsIntoHistory(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"), mkQuestion(2, 0, "iam"))
	ctx := context.Background()

	ended, err := f.trainer.StartNewSession(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ended.QuestionsAnswered)
	sessions, err := f.trainer.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions, "empty session is not recorded")

	_, err = f.trainer.SubmitAnswer(ctx, 1, []string{"a"}, false)
	require.NoError(t, err)
	_, err = f.trainer.SubmitAnswer(ctx, 2, []string{"c"}, false)
	require.NoError(t, err)
	*f.clock = testNow.Add(12 * time.Minute)

	active := 7.5
	ended, err = f.trainer.StartNewSession(ctx, &active)
	require.NoError(t, err)
	assert.Equal(t, 2, ended.QuestionsAnswered)
	assert.Equal(t, 0, f.trainer.CurrentSession().QuestionsAnswered)

	daily, err := f.history.ReadDaily(ctx)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 2, daily[0].TotalQuestions)
	assert.Equal(t, 7.5, daily[0].DurationMinutes)
	assert.Equal(t, []string{"iam", "net"}, daily[0].Tags)

	stored, err := f.history.ReadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 50.0, stored[0].Accuracy)
}

func TestProgress(t *testing.T) {
	qs := []*question.Question{
		mkQuestion(1, -1, "net"), mkQuestion(2, 0, "net"), mkQuestion(3, 2, "net"), mkQuestion(4, 4, "iam"),
	}
	inactive := mkQuestion(5, 4, "net")
	inactive.Active = false
	f := newFixture(t, nil, append(qs, inactive)...)
	ctx := context.Background()

	up, err := f.trainer.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, up.StreakDays)
	assert.Nil(t, up.LastSession)
	assert.Equal(t, 4, up.Overall.TotalQuestions)
	assert.Equal(t, 1, up.Overall.PerfectedCount)
	require.Len(t, up.Overall.TagProgress, 2)
	assert.Equal(t, "iam", up.Overall.TagProgress[0].Tag)

	_, err = f.trainer.SubmitAnswer(ctx, 2, []string{"a"}, false)
	require.NoError(t, err)
	up, err = f.trainer.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, up.StreakDays)
	assert.Equal(t, 1, up.CurrentSession.TotalQuestions)

	tags, err := f.trainer.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"iam", "net"}, tags)

	levels, err := f.trainer.MasteryLevels(ctx, []string{"iam"})
	require.NoError(t, err)
	assert.Equal(t, []scoring.Band{scoring.BandPerfected}, levels)
}

func TestList(t *testing.T) {
	a := mkQuestion(1, 0, "net")
	a.Text = "Configure a VPC peering connection"
	b := mkQuestion(2, 3, "iam")
	b.Text = "Grant a service account a role"
	c := mkQuestion(3, 1, "net")
	c.Text = "Hidden question"
	c.Active = false
	f := newFixture(t, nil, a, b, c)
	ctx := context.Background()

	got, err := f.trainer.List(ctx, ListOptions{Search: "vpc"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Number)

	got, err = f.trainer.List(ctx, ListOptions{Search: "pub/sub"})
	require.NoError(t, err)
	assert.Len(t, got, 2, "search covers answer text")

	got, err = f.trainer.List(ctx, ListOptions{Tags: []string{"net"}})
	require.NoError(t, err)
	assert.Len(t, got, 1, "inactive questions are hidden")

	got, err = f.trainer.List(ctx, ListOptions{Tags: []string{"net"}, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	expr, err := question.CompileExpr(`score >= 2`)
	require.NoError(t, err)
	got, err = f.trainer.List(ctx, ListOptions{Expr: expr})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Number)
}

func TestReset(t *testing.T) {
	a := mkQuestion(1, 3, "net")
	a.Starred, a.Note, a.Explanation, a.Hint = true, "n", "e", "h"
	inactive := mkQuestion(2, 3, "net")
	inactive.Active = false
	f := newFixture(t, nil, a, inactive)
	ctx := context.Background()

	_, err := f.trainer.SubmitAnswer(ctx, 1, []string{"a"}, false)
	require.NoError(t, err)
	_, err = f.trainer.StartNewSession(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, f.trainer.Reset(ctx))

	got := f.stored(t, 1)
	assert.Equal(t, 0, got.Score)
	assert.False(t, got.Starred)
	assert.Empty(t, got.Note)
	assert.Empty(t, got.Explanation)
	assert.Empty(t, got.Hint)
	assert.Equal(t, 3, f.stored(t, 2).Score, "inactive questions are untouched")

	daily, err := f.history.ReadDaily(ctx)
	require.NoError(t, err)
	assert.Empty(t, daily)
}

func TestResetSelective(t *testing.T) {
	a := mkQuestion(1, 3, "net")
	a.Starred, a.Note = true, "keep me"
	f := newFixture(t, nil, a, mkQuestion(2, 0, "net"))
	ctx := context.Background()

	done, err := f.trainer.ResetSelective(ctx, ResetOptions{})
	require.NoError(t, err)
	assert.False(t, done)

	_, err = f.trainer.SubmitAnswer(ctx, 2, []string{"a"}, false)
	require.NoError(t, err)
	_, err = f.trainer.StartNewSession(ctx, nil)
	require.NoError(t, err)
	_, err = f.trainer.NextQuestion(ctx, selector.Filter{})
	require.NoError(t, err)

	done, err = f.trainer.ResetSelective(ctx, ResetOptions{Stars: true, TrainingTime: true})
	require.NoError(t, err)
	assert.True(t, done)

	got := f.stored(t, 1)
	assert.False(t, got.Starred)
	assert.Equal(t, "keep me", got.Note)
	assert.Equal(t, 3, got.Score)
	assert.Equal(t, 0, f.trainer.CurrentSession().QuestionsShown, "tracker cleared")

	daily, err := f.history.ReadDaily(ctx)
	require.NoError(t, err)
	require.Len(t, daily, 1, "history kept")
	assert.Equal(t, 0.0, daily[0].DurationMinutes)

	_, err = f.trainer.ResetSelective(ctx, ResetOptions{Scores: true, SessionHistory: true})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stored(t, 1).Score)
	daily, err = f.history.ReadDaily(ctx)
	require.NoError(t, err)
	assert.Empty(t, daily)
}

func TestClearExplanationsAndHints(t *testing.T) {
	a := mkQuestion(1, 0, "net")
	a.Explanation, a.Hint = "e", "h"
	b := mkQuestion(2, 0, "net")
	b.Hint = "h"
	f := newFixture(t, nil, a, b)
	ctx := context.Background()

	n, err := f.trainer.ClearExplanations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.stored(t, 1).Explanation)
	assert.Equal(t, "h", f.stored(t, 1).Hint)

	n, err = f.trainer.ClearHints(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, f.stored(t, 2).Hint)
}

func TestImportExport(t *testing.T) {
	existing := mkQuestion(1, 3, "net")
	existing.Starred, existing.Note = true, "mine"
	f := newFixture(t, nil, existing)
	ctx := context.Background()

	in := `[
	  {"question_number": 1, "question_text": "Updated text", "tag": ["net"],
	   "answers": {"a": {"answer_text": "x", "status": "correct"}, "b": {"answer_text": "y", "status": "incorrect"}}},
	  {"question_number": 2, "question_text": "New one", "tag": ["iam"],
	   "answers": {"a": {"answer_text": "x", "status": "incorrect"}, "b": {"answer_text": "y", "status": "correct"}}}
	]`

	stats, _, err := f.trainer.Import(ctx, strings.NewReader(in), false)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Added: 1, Skipped: 1}, stats)
	assert.Equal(t, "Question text B", f.stored(t, 1).Text)

	stats, res, err := f.trainer.Import(ctx, strings.NewReader(in), true)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, ImportStats{Updated: 2}, stats)
	got := f.stored(t, 1)
	assert.Equal(t, "Updated text", got.Text)
	assert.Equal(t, 3, got.Score, "progress preserved on overwrite")
	assert.True(t, got.Starred)
	assert.Equal(t, "mine", got.Note)

	var buf bytes.Buffer
	n, err := f.trainer.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), `"format_version": "v1.0.0"`)
	assert.Contains(t, buf.String(), "New one")

	_, _, err = f.trainer.Import(ctx, strings.NewReader(`{"format_version":"v9.0.0","questions":[]}`), false)
	assert.Error(t, err)
}

func TestSetActive(t *testing.T) {
	f := newFixture(t, nil, mkQuestion(1, 0, "net"), mkQuestion(2, 0, "net"))
	ctx := context.Background()

	changed, missing, err := f.trainer.SetActive(ctx, []int{1, 1, 9}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, []int{9}, missing)
	assert.False(t, f.stored(t, 1).Active)

	for i := 0; i < 3; i++ {
		q, err := f.trainer.NextQuestion(ctx, selector.Filter{})
		if err != nil {
			assert.ErrorIs(t, err, ErrSessionComplete)
			break
		}
		assert.Equal(t, 2, q.Number)
	}
}
