package trainer

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/certguru/internal/bank"
	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/store"
)

// ImportStats counts what Import did.
type ImportStats struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Import merges the questions of a bank file. New numbers are added. An
// existing question is skipped unless overwrite is set, in which case its
// content is replaced while score, star, note, explanation and hint are kept.
func (t *Trainer) Import(ctx context.Context, r io.Reader, overwrite bool) (ImportStats, store.Result, error) {
	f, err := bank.Decode(r)
	if err != nil {
		return ImportStats{}, store.Result{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.questions.All(ctx)
	if err != nil {
		return ImportStats{}, store.Result{}, err
	}
	existing := make(map[int]*question.Question, len(all))
	for _, q := range all {
		existing[q.Number] = q
	}

	var stats ImportStats
	var batch []*question.Question
	for _, in := range f.Questions {
		cur, ok := existing[in.Number]
		switch {
		case !ok:
			stats.Added++
		case !overwrite:
			stats.Skipped++
			continue
		default:
			in.Score = cur.Score
			in.Starred = cur.Starred
			in.Note = cur.Note
			in.Explanation = cur.Explanation
			in.Hint = cur.Hint
			stats.Updated++
		}
		batch = append(batch, in)
	}

	var res store.Result
	if len(batch) > 0 {
		res = t.questions.SaveMany(ctx, batch)
	}
	t.log.WithFields(logrus.Fields{
		"format":  f.FormatVersion,
		"added":   stats.Added,
		"updated": stats.Updated,
		"skipped": stats.Skipped,
	}).Info("question bank imported")
	return stats, res, nil
}

// Export writes every question, active or not, as a bank file.
func (t *Trainer) Export(ctx context.Context, w io.Writer) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	all, err := t.questions.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), bank.Encode(w, all, t.now())
}

// SetActive activates or deactivates questions by number. Unknown numbers are
// returned in missing and otherwise ignored.
func (t *Trainer) SetActive(ctx context.Context, numbers []int, active bool) (changed int, missing []int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var batch []*question.Question
	for _, n := range numbers {
		q, err := t.lookup(ctx, n)
		if errors.Is(err, ErrQuestionNotFound) {
			missing = append(missing, n)
			continue
		}
		if err != nil {
			return 0, nil, err
		}
		if q.Active != active {
			q.Active = active
			batch = append(batch, q)
		}
	}
	if len(batch) > 0 {
		t.questions.SaveMany(ctx, batch)
	}
	return len(batch), missing, nil
}
