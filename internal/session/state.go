// Package session holds the ephemeral state of one sitting: running answer
// counts and the shown-question tracker that prevents repeats.
package session

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// State is the in-memory state of the current session.
type State struct {
	ID        string
	Start     time.Time
	Total     int
	Correct   int
	Incorrect int

	tracker *Tracker
}

// NewState starts a fresh session at now.
func NewState(now time.Time) *State {
	return &State{
		ID:      uuid.New().String(),
		Start:   now,
		tracker: NewTracker(),
	}
}

// Tracker returns the session's shown-question tracker.
func (s *State) Tracker() *Tracker {
	return s.tracker
}

// RecordAnswer updates the running counts.
func (s *State) RecordAnswer(correct bool) {
	s.Total++
	if correct {
		s.Correct++
	} else {
		s.Incorrect++
	}
}

// Accuracy returns correct/total*100, or 0 when nothing was answered.
func (s *State) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// Elapsed returns the wall-clock time since the session started.
func (s *State) Elapsed(now time.Time) time.Duration {
	if now.Before(s.Start) {
		return 0
	}
	return now.Sub(s.Start)
}

// IsEmpty reports whether no question was answered.
func (s *State) IsEmpty() bool {
	return s.Total == 0
}

// Summary is a display-ready view of the current session.
type Summary struct {
	SessionID         string   `json:"session_id"`
	QuestionsAnswered int      `json:"questions_answered"`
	CorrectAnswers    int      `json:"correct_answers"`
	IncorrectAnswers  int      `json:"incorrect_answers"`
	AccuracyPercent   float64  `json:"accuracy_percentage"`
	DurationMinutes   float64  `json:"session_duration_minutes"`
	QuestionsShown    int      `json:"questions_shown"`
	Tags              []string `json:"tags"`
}

// Summarize builds a Summary with percentages and minutes rounded to one
// decimal place.
func (s *State) Summarize(now time.Time) Summary {
	return Summary{
		SessionID:         s.ID,
		QuestionsAnswered: s.Total,
		CorrectAnswers:    s.Correct,
		IncorrectAnswers:  s.Incorrect,
		AccuracyPercent:   round1(s.Accuracy()),
		DurationMinutes:   round1(s.Elapsed(now).Minutes()),
		QuestionsShown:    s.tracker.ShownCount(),
		Tags:              s.tracker.Tags(),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
