// Package progress derives mastery aggregates from question scores and folds
// finished sessions into the persisted training history.
package progress

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/certguru/internal/session"
)

const (
	// HistoryRetentionDays is how far back daily records are kept.
	HistoryRetentionDays = 30

	// MaxIndividualSessions caps the per-session snapshot list.
	MaxIndividualSessions = 50

	dateLayout = "2006-01-02"
)

// DailySessionHistory accumulates every session finished on one calendar day.
type DailySessionHistory struct {
	Date             time.Time `json:"-"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers"`
	Accuracy         float64   `json:"accuracy"`
	DurationMinutes  float64   `json:"duration_minutes"`
	Tags             []string  `json:"tags"`
}

type dailyAlias DailySessionHistory

type dailyJSON struct {
	Date string `json:"date"`
	*dailyAlias
}

// MarshalJSON writes the date as YYYY-MM-DD.
func (d DailySessionHistory) MarshalJSON() ([]byte, error) {
	alias := dailyAlias(d)
	if alias.Tags == nil {
		alias.Tags = []string{}
	}
	return json.Marshal(dailyJSON{Date: d.Date.Format(dateLayout), dailyAlias: &alias})
}

// UnmarshalJSON reads records written by older versions too: a missing
// duration reads as 0 and missing tags as an empty list.
func (d *DailySessionHistory) UnmarshalJSON(data []byte) error {
	aux := dailyJSON{dailyAlias: (*dailyAlias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	day, err := time.ParseInLocation(dateLayout, aux.Date, time.Local)
	if err != nil {
		return fmt.Errorf("parse history date %q: %w", aux.Date, err)
	}
	d.Date = day
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return nil
}

// IndividualSession is a snapshot of one finished session.
type IndividualSession struct {
	ID               string    `json:"session_id"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	DurationMinutes  float64   `json:"duration_minutes"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers"`
	Accuracy         float64   `json:"accuracy"`
	Tags             []string  `json:"tags"`
}

// TagProgress is the band breakdown for one tag.
type TagProgress struct {
	Tag               string  `json:"tag"`
	TotalQuestions    int     `json:"total_questions"`
	MistakesCount     int     `json:"mistakes_count"`
	LearningCount     int     `json:"learning_count"`
	MasteredCount     int     `json:"mastered_count"`
	PerfectedCount    int     `json:"perfected_count"`
	MasteryPercentage float64 `json:"mastery_percentage"`
}

// OverallProgress is the band breakdown over every active question.
type OverallProgress struct {
	TotalQuestions           int           `json:"total_questions"`
	MistakesCount            int           `json:"mistakes_count"`
	LearningCount            int           `json:"learning_count"`
	MasteredCount            int           `json:"mastered_count"`
	PerfectedCount           int           `json:"perfected_count"`
	StarredQuestions         int           `json:"starred_questions"`
	QuestionsWithNotes       int           `json:"questions_with_notes"`
	TotalTrainingTimeMinutes float64       `json:"total_training_time_minutes"`
	TagProgress              []TagProgress `json:"tag_progress"`
}

// SessionStats is the live view of the current session.
type SessionStats struct {
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers"`
	Accuracy         float64   `json:"accuracy"`
	SessionStart     time.Time `json:"session_start"`
}

// StatsOf converts session state to its public view.
func StatsOf(s *session.State) SessionStats {
	return SessionStats{
		TotalQuestions:   s.Total,
		CorrectAnswers:   s.Correct,
		IncorrectAnswers: s.Incorrect,
		Accuracy:         s.Accuracy(),
		SessionStart:     s.Start,
	}
}

// UserProgress is everything the progress page shows.
type UserProgress struct {
	CurrentSession SessionStats          `json:"current_session"`
	LastSession    *DailySessionHistory  `json:"last_session"`
	Overall        OverallProgress       `json:"overall"`
	StreakDays     int                   `json:"streak_days"`
	SessionHistory []DailySessionHistory `json:"session_history"`
}
