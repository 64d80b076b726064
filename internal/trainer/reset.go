package trainer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/certguru/internal/question"
)

// ResetOptions selects what ResetSelective clears.
type ResetOptions struct {
	Scores         bool `json:"reset_scores"`
	SessionHistory bool `json:"reset_session_history"`
	Stars          bool `json:"reset_stars"`
	Notes          bool `json:"reset_notes"`
	TrainingTime   bool `json:"reset_training_time"`
}

// Any reports whether at least one flag is set.
func (o ResetOptions) Any() bool {
	return o.Scores || o.SessionHistory || o.Stars || o.Notes || o.TrainingTime
}

// Reset clears scores, stars, notes and cached text on active questions,
// drops all history and starts a new session.
func (t *Trainer) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.rewrite(ctx, func(q *question.Question) bool {
		q.Score, q.Starred, q.Note, q.Explanation, q.Hint = 0, false, "", "", ""
		return true
	}); err != nil {
		return err
	}

	h, err := t.loadHistory(ctx)
	if err != nil {
		return err
	}
	h.Clear()
	t.saveHistory(ctx)
	t.restartSession()

	t.log.Info("all progress reset")
	return nil
}

// ResetSelective clears the parts named by opts. Any reset also discards the
// running session, so previously shown questions become eligible again.
// It reports whether anything was reset.
func (t *Trainer) ResetSelective(ctx context.Context, opts ResetOptions) (bool, error) {
	if !opts.Any() {
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if opts.Scores || opts.Stars || opts.Notes {
		err := t.rewrite(ctx, func(q *question.Question) bool {
			changed := false
			if opts.Scores && q.Score != 0 {
				q.Score, changed = 0, true
			}
			if opts.Stars && q.Starred {
				q.Starred, changed = false, true
			}
			if opts.Notes && q.Note != "" {
				q.Note, changed = "", true
			}
			return changed
		})
		if err != nil {
			return false, err
		}
	}

	if opts.SessionHistory || opts.TrainingTime {
		h, err := t.loadHistory(ctx)
		if err != nil {
			return false, err
		}
		if opts.SessionHistory {
			h.Clear()
		} else {
			h.ZeroTrainingTime()
		}
		t.saveHistory(ctx)
	}

	t.restartSession()
	t.log.WithFields(logrus.Fields{
		"scores":        opts.Scores,
		"history":       opts.SessionHistory,
		"stars":         opts.Stars,
		"notes":         opts.Notes,
		"training_time": opts.TrainingTime,
	}).Info("selective reset")
	return true, nil
}

// ClearExplanations drops every cached explanation and returns how many
// questions changed.
func (t *Trainer) ClearExplanations(ctx context.Context) (int, error) {
	return t.clearText(ctx, func(q *question.Question) *string { return &q.Explanation })
}

// ClearHints drops every cached hint and returns how many questions changed.
func (t *Trainer) ClearHints(ctx context.Context) (int, error) {
	return t.clearText(ctx, func(q *question.Question) *string { return &q.Hint })
}

func (t *Trainer) clearText(ctx context.Context, field func(*question.Question) *string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	err := t.rewrite(ctx, func(q *question.Question) bool {
		if p := field(q); *p != "" {
			*p = ""
			n++
			return true
		}
		return false
	})
	return n, err
}

// rewrite applies fn to every active question and persists the ones it
// reports as changed in one batch.
func (t *Trainer) rewrite(ctx context.Context, fn func(*question.Question) bool) error {
	all, err := t.questions.All(ctx)
	if err != nil {
		return err
	}
	var changed []*question.Question
	for _, q := range all {
		if q.Active && fn(q) {
			changed = append(changed, q)
		}
	}
	if len(changed) > 0 {
		t.questions.SaveMany(ctx, changed)
	}
	return nil
}
