// Package selector picks the next question to show. Candidates are narrowed by
// tag, mastery band and the session's shown set; the pick is a weighted
// random draw where lower scores weigh more.
package selector

import (
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"

	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/scoring"
	"github.com/abhisek/certguru/internal/session"
)

// Filter narrows the candidate pool. Zero value means no narrowing.
type Filter struct {
	// Tags uses OR semantics. The pseudo-tag "starred" adds every starred
	// question regardless of its real tags.
	Tags []string

	// Levels restricts candidates to the given mastery bands.
	Levels []scoring.Band

	// StarredOnly keeps only starred questions.
	StarredOnly bool
}

// Selector draws questions from a pool and records them as shown.
type Selector struct {
	rng     *rand.Rand
	tracker *session.Tracker
}

// New creates a Selector. rng must not be nil.
func New(rng *rand.Rand, tracker *session.Tracker) *Selector {
	return &Selector{rng: rng, tracker: tracker}
}

// SetTracker swaps the tracker, used when a new session starts.
func (s *Selector) SetTracker(tracker *session.Tracker) {
	s.tracker = tracker
}

// Candidates returns the eligible questions for the current session in
// their original order. Perfected questions are left out unless the filter
// asks for the perfected band.
func Candidates(questions []*question.Question, f Filter, tracker *session.Tracker) []*question.Question {
	pool := FilterByTags(questions, f.Tags)
	reviewPerfected := slices.Contains(f.Levels, scoring.BandPerfected)

	return lo.Filter(pool, func(q *question.Question, _ int) bool {
		if !q.Active {
			return false
		}
		if q.Score >= scoring.MaxScore && !reviewPerfected {
			return false
		}
		if tracker != nil && tracker.IsShown(q.Number) {
			return false
		}
		if f.StarredOnly && !q.Starred {
			return false
		}
		if len(f.Levels) > 0 && !slices.Contains(f.Levels, q.Band()) {
			return false
		}
		return true
	})
}

// FilterByTags applies the OR tag filter with the starred pseudo-tag.
// With no tags the input is returned unchanged. The result is deduplicated
// by question number.
func FilterByTags(questions []*question.Question, tags []string) []*question.Question {
	if len(tags) == 0 {
		return questions
	}

	wantStarred := slices.Contains(tags, question.StarredTag)
	realTags := lo.Without(tags, question.StarredTag)

	seen := make(map[int]struct{}, len(questions))
	var out []*question.Question
	for _, q := range questions {
		if _, dup := seen[q.Number]; dup {
			continue
		}
		if (wantStarred && q.Starred) || q.HasAnyTag(realTags) {
			seen[q.Number] = struct{}{}
			out = append(out, q)
		}
	}
	return out
}

// Pick draws one question from pool and marks it shown. Returns nil for an
// empty pool. When every weight is zero the draw is uniform.
func (s *Selector) Pick(pool []*question.Question) *question.Question {
	if len(pool) == 0 {
		return nil
	}

	q := pool[s.index(pool)]
	if s.tracker != nil {
		s.tracker.MarkShown(q)
	}
	return q
}

func (s *Selector) index(pool []*question.Question) int {
	weights := make([]float64, len(pool))
	var total float64
	for i, q := range pool {
		weights[i] = scoring.WeightFor(q.Score)
		total += weights[i]
	}

	if total <= 0 {
		return s.rng.IntN(len(pool))
	}

	target := s.rng.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if target < acc {
			return i
		}
	}

	// Float rounding can leave target == total; fall to the last weighted entry.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(pool) - 1
}
