// Package trainer is the single entry point for quiz operations. It owns the
// session state, the question cache and the training history, and serializes
// every operation so score updates never interleave.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/certguru/internal/explain"
	"github.com/abhisek/certguru/internal/progress"
	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/scoring"
	"github.com/abhisek/certguru/internal/selector"
	"github.com/abhisek/certguru/internal/session"
	"github.com/abhisek/certguru/internal/store"
)

// Options wires a Trainer. Questions and History are required.
type Options struct {
	Questions *store.QuestionCache
	History   store.HistoryRepo
	Explainer *explain.Explainer
	Rand      *rand.Rand
	Now       func() time.Time
	Log       logrus.FieldLogger
}

// Trainer serves questions, grades answers and tracks progress.
type Trainer struct {
	mu sync.Mutex

	questions *store.QuestionCache
	history   store.HistoryRepo
	explainer *explain.Explainer
	rng       *rand.Rand
	now       func() time.Time
	log       logrus.FieldLogger

	hist     *progress.History
	state    *session.State
	selector *selector.Selector
}

// New creates a Trainer with a fresh session.
func New(opts Options) *Trainer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		seed := uint64(opts.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Explainer == nil {
		opts.Explainer = explain.New(nil, nil, explain.DefaultConfig(), opts.Log)
	}

	state := session.NewState(opts.Now())
	return &Trainer{
		questions: opts.Questions,
		history:   opts.History,
		explainer: opts.Explainer,
		rng:       opts.Rand,
		now:       opts.Now,
		log:       opts.Log,
		state:     state,
		selector:  selector.New(opts.Rand, state.Tracker()),
	}
}

// Load reads the question bank and history up front so later calls do not pay
// for it. Calling it is optional.
func (t *Trainer) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.questions.All(ctx); err != nil {
		return err
	}
	_, err := t.loadHistory(ctx)
	return err
}

func (t *Trainer) loadHistory(ctx context.Context) (*progress.History, error) {
	if t.hist != nil {
		return t.hist, nil
	}
	h, err := store.LoadHistory(ctx, t.history)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	h.Prune(t.now())
	t.hist = h
	return h, nil
}

func (t *Trainer) saveHistory(ctx context.Context) {
	if res := store.SaveHistory(ctx, t.history, t.hist); !res.OK() {
		t.log.WithError(res.Err()).Error("history write failed; keeping in-memory state")
	}
}

func (t *Trainer) lookup(ctx context.Context, number int) (*question.Question, error) {
	q, err := t.questions.Get(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	return q, err
}

// Question returns a copy of one question.
func (t *Trainer) Question(ctx context.Context, number int) (*question.Question, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, err := t.lookup(ctx, number)
	if err != nil {
		return nil, err
	}
	return q.Clone(), nil
}

// NextQuestion picks the next question for the session and marks it shown.
// When nothing is left it returns ErrAllMastered, ErrSessionComplete or
// ErrNoQuestions.
func (t *Trainer) NextQuestion(ctx context.Context, f selector.Filter) (*question.Question, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.questions.All(ctx)
	if err != nil {
		return nil, err
	}

	// Reviewing the perfected band on purpose is the one way to see them again.
	if progress.AllMastered(all, f.Tags) && !slices.Contains(f.Levels, scoring.BandPerfected) {
		return nil, ErrAllMastered
	}

	pool := selector.Candidates(all, f, t.state.Tracker())
	if q := t.selector.Pick(pool); q != nil {
		t.log.WithFields(logrus.Fields{
			"question": q.Number,
			"score":    q.Score,
			"pool":     len(pool),
		}).Debug("question selected")
		return q.Clone(), nil
	}

	if len(selector.Candidates(all, f, nil)) > 0 {
		return nil, ErrSessionComplete
	}
	// Only perfected questions match, e.g. every starred one is perfected.
	review := f
	review.Levels = append(slices.Clone(f.Levels), scoring.BandPerfected)
	if len(selector.Candidates(all, review, nil)) > 0 {
		return nil, ErrAllMastered
	}
	return nil, ErrNoQuestions
}

// Shuffle presents q's answers in random order under A-F display letters.
func (t *Trainer) Shuffle(q *question.Question) question.Shuffled {
	t.mu.Lock()
	defer t.mu.Unlock()
	return question.Shuffle(q, t.rng)
}

// AnswerResult is the outcome of SubmitAnswer.
type AnswerResult struct {
	Question    *question.Question `json:"question"`
	Correct     bool               `json:"is_correct"`
	CorrectKeys []string           `json:"correct_answers"`
	Explanation string             `json:"explanation,omitempty"`
	PrevScore   int                `json:"previous_score"`
	Band        scoring.Band       `json:"band"`
}

// SubmitAnswer grades selected (original answer keys), updates the score and
// the session counts, and optionally generates an explanation.
func (t *Trainer) SubmitAnswer(ctx context.Context, number int, selected []string, withExplanation bool) (*AnswerResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, err := t.lookup(ctx, number)
	if err != nil {
		return nil, err
	}

	check := question.Check(q, selected)
	if len(check.UnknownKeys) > 0 {
		return nil, fmt.Errorf("%w: question %d has no answer %v", ErrInvalidAnswer, number, check.UnknownKeys)
	}

	prev := q.Score
	q.Score = scoring.Apply(q.Score, check.Correct)
	t.questions.Save(ctx, q)
	t.state.RecordAnswer(check.Correct)
	// Answering directly by number still counts as showing the question.
	t.state.Tracker().MarkShown(q)

	t.log.WithFields(logrus.Fields{
		"question": number,
		"correct":  check.Correct,
		"score":    q.Score,
	}).Debug("answer recorded")

	res := &AnswerResult{
		Correct:     check.Correct,
		CorrectKeys: check.CorrectKeys,
		PrevScore:   prev,
		Band:        q.Band(),
	}
	if withExplanation {
		res.Explanation = t.explanation(ctx, q, check.SelectedKeys, check.CorrectKeys, false)
	}
	res.Question = q.Clone()
	return res, nil
}

// Skip marks a question shown without touching any counts.
func (t *Trainer) Skip(ctx context.Context, number int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, err := t.lookup(ctx, number)
	if err != nil {
		return err
	}
	t.state.Tracker().MarkShown(q)
	return nil
}

// Star sets the starred flag.
func (t *Trainer) Star(ctx context.Context, number int, starred bool) (*question.Question, error) {
	return t.update(ctx, number, func(q *question.Question) { q.Starred = starred })
}

// SetNote replaces the note.
func (t *Trainer) SetNote(ctx context.Context, number int, note string) (*question.Question, error) {
	return t.update(ctx, number, func(q *question.Question) { q.Note = note })
}

func (t *Trainer) update(ctx context.Context, number int, fn func(*question.Question)) (*question.Question, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, err := t.lookup(ctx, number)
	if err != nil {
		return nil, err
	}
	fn(q)
	t.questions.Save(ctx, q)
	return q.Clone(), nil
}

// Hint returns the cached hint or generates and caches one.
func (t *Trainer) Hint(ctx context.Context, number int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, err := t.lookup(ctx, number)
	if err != nil {
		return "", err
	}
	hint := t.explainer.Hint(ctx, q)
	if hint != q.Hint && !explain.IsFallback(hint) {
		q.Hint = hint
		t.questions.Save(ctx, q)
	}
	return hint, nil
}

// Explanation returns the explanation for the correct answers, generating
// it when missing or when regenerate is set.
func (t *Trainer) Explanation(ctx context.Context, number int, regenerate bool) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, err := t.lookup(ctx, number)
	if err != nil {
		return "", err
	}
	return t.explanation(ctx, q, nil, q.CorrectKeys(), regenerate), nil
}

func (t *Trainer) explanation(ctx context.Context, q *question.Question, selected, correct []string, regenerate bool) string {
	text := t.explainer.Explanation(ctx, q, selected, correct, regenerate)
	if text != q.Explanation && !explain.IsFallback(text) {
		q.Explanation = text
		t.questions.Save(ctx, q)
	}
	return text
}

// CurrentSession summarizes the running session.
func (t *Trainer) CurrentSession() session.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Summarize(t.now())
}

// StartNewSession folds the running session into history when it has answers
// and starts a fresh one. activeMinutes, when set, overrides the wall-clock
// duration. It returns the summary of the session that ended.
func (t *Trainer) StartNewSession(ctx context.Context, activeMinutes *float64) (session.Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ended, err := t.rollSession(ctx, activeMinutes)
	if err != nil {
		return session.Summary{}, err
	}
	t.restartSession()
	return ended, nil
}

func (t *Trainer) rollSession(ctx context.Context, activeMinutes *float64) (session.Summary, error) {
	now := t.now()
	ended := t.state.Summarize(now)

	h, err := t.loadHistory(ctx)
	if err != nil {
		return ended, err
	}
	if h.Roll(t.state, activeMinutes, now) {
		t.saveHistory(ctx)
		t.log.WithFields(logrus.Fields{
			"session":  t.state.ID,
			"answered": t.state.Total,
			"accuracy": ended.AccuracyPercent,
		}).Info("session saved to history")
	}
	return ended, nil
}

func (t *Trainer) restartSession() {
	t.state = session.NewState(t.now())
	t.selector.SetTracker(t.state.Tracker())
}

// Progress returns the full progress view.
func (t *Trainer) Progress(ctx context.Context) (progress.UserProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.questions.All(ctx)
	if err != nil {
		return progress.UserProgress{}, err
	}
	h, err := t.loadHistory(ctx)
	if err != nil {
		return progress.UserProgress{}, err
	}
	return progress.User(all, h, t.state), nil
}

// Sessions returns the most recent individual sessions, newest first.
func (t *Trainer) Sessions(ctx context.Context) ([]progress.IndividualSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]progress.IndividualSession, len(h.Sessions))
	copy(out, h.Sessions)
	slices.Reverse(out)
	return out, nil
}

// Tags lists the tags of active questions in sorted order.
func (t *Trainer) Tags(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.questions.All(ctx)
	if err != nil {
		return nil, err
	}
	tags := lo.Uniq(lo.FlatMap(all, func(q *question.Question, _ int) []string {
		if !q.Active {
			return nil
		}
		return q.Tags
	}))
	sort.Strings(tags)
	return tags, nil
}

// MasteryLevels lists the bands holding at least one active question that
// matches tags.
func (t *Trainer) MasteryLevels(ctx context.Context, tags []string) ([]scoring.Band, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.questions.All(ctx)
	if err != nil {
		return nil, err
	}
	return progress.AvailableMasteryLevels(all, tags), nil
}

// ListOptions filters List.
type ListOptions struct {
	Tags            []string
	Search          string
	StarredOnly     bool
	IncludeInactive bool
	Expr            *question.Expr
}

// List returns copies of the questions matching opts, ordered by number.
func (t *Trainer) List(ctx context.Context, opts ListOptions) ([]*question.Question, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.questions.All(ctx)
	if err != nil {
		return nil, err
	}

	qs := selector.FilterByTags(all, opts.Tags)
	qs = lo.Filter(qs, func(q *question.Question, _ int) bool {
		if !opts.IncludeInactive && !q.Active {
			return false
		}
		if opts.StarredOnly && !q.Starred {
			return false
		}
		return question.Matches(q, opts.Search)
	})
	if opts.Expr != nil {
		if qs, err = opts.Expr.Filter(qs); err != nil {
			return nil, err
		}
	}
	return lo.Map(qs, func(q *question.Question, _ int) *question.Question { return q.Clone() }), nil
}
