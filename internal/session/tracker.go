package session

import (
	"sort"

	"github.com/abhisek/certguru/internal/question"
)

// Tracker remembers which questions were shown in the current session and
// which tags those questions carried.
type Tracker struct {
	shown map[int]struct{}
	tags  map[string]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		shown: make(map[int]struct{}),
		tags:  make(map[string]struct{}),
	}
}

// MarkShown records q as shown and unions its tags into the touched set.
// Marking the same question twice is a no-op.
func (t *Tracker) MarkShown(q *question.Question) {
	t.shown[q.Number] = struct{}{}
	for _, tag := range q.Tags {
		t.tags[tag] = struct{}{}
	}
}

// IsShown reports whether the question was shown in this session.
func (t *Tracker) IsShown(number int) bool {
	_, ok := t.shown[number]
	return ok
}

// ShownCount returns the number of distinct questions shown.
func (t *Tracker) ShownCount() int {
	return len(t.shown)
}

// Shown returns the shown question numbers in ascending order.
func (t *Tracker) Shown() []int {
	out := make([]int, 0, len(t.shown))
	for n := range t.shown {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Tags returns the touched tags in ascending order.
func (t *Tracker) Tags() []string {
	out := make([]string, 0, len(t.tags))
	for tag := range t.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Reset clears both sets. Called exactly when a new session starts.
func (t *Tracker) Reset() {
	clear(t.shown)
	clear(t.tags)
}
