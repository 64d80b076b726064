package progress

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/certguru/internal/session"
)

// History is the persisted training record: one entry per day plus the most
// recent individual sessions.
type History struct {
	Daily    []DailySessionHistory
	Sessions []IndividualSession
}

// Roll folds a finished session into the history. It returns false and leaves
// the history untouched when no question was answered. activeMinutes, when
// non-nil, replaces the wall-clock duration.
func (h *History) Roll(state *session.State, activeMinutes *float64, now time.Time) bool {
	if state.IsEmpty() {
		return false
	}

	duration := state.Elapsed(now).Minutes()
	if activeMinutes != nil {
		duration = max(*activeMinutes, 0)
	}
	tags := state.Tracker().Tags()
	today := dayOf(now)

	idx := -1
	for i := range h.Daily {
		if dayOf(h.Daily[i].Date).Equal(today) {
			idx = i
			break
		}
	}

	if idx >= 0 {
		d := &h.Daily[idx]
		d.TotalQuestions += state.Total
		d.CorrectAnswers += state.Correct
		d.IncorrectAnswers += state.Incorrect
		d.DurationMinutes += duration
		d.Tags = lo.Union(d.Tags, tags)
		sort.Strings(d.Tags)
		if d.TotalQuestions > 0 {
			d.Accuracy = float64(d.CorrectAnswers) / float64(d.TotalQuestions) * 100
		}
	} else {
		h.Daily = append(h.Daily, DailySessionHistory{
			Date:             today,
			TotalQuestions:   state.Total,
			CorrectAnswers:   state.Correct,
			IncorrectAnswers: state.Incorrect,
			Accuracy:         state.Accuracy(),
			DurationMinutes:  duration,
			Tags:             tags,
		})
	}
	h.Prune(now)

	h.Sessions = append(h.Sessions, IndividualSession{
		ID:               state.ID,
		StartTime:        state.Start,
		EndTime:          now,
		DurationMinutes:  duration,
		TotalQuestions:   state.Total,
		CorrectAnswers:   state.Correct,
		IncorrectAnswers: state.Incorrect,
		Accuracy:         state.Accuracy(),
		Tags:             tags,
	})
	if n := len(h.Sessions); n > MaxIndividualSessions {
		h.Sessions = h.Sessions[n-MaxIndividualSessions:]
	}
	return true
}

// Prune drops daily records older than the retention window and sorts the
// rest by date.
func (h *History) Prune(now time.Time) {
	cutoff := dayOf(now).AddDate(0, 0, -HistoryRetentionDays)
	h.Daily = lo.Filter(h.Daily, func(d DailySessionHistory, _ int) bool {
		return !dayOf(d.Date).Before(cutoff)
	})
	sort.SliceStable(h.Daily, func(i, j int) bool { return h.Daily[i].Date.Before(h.Daily[j].Date) })
}

// Clear drops all daily records and individual sessions.
func (h *History) Clear() {
	h.Daily = nil
	h.Sessions = nil
}

// ZeroTrainingTime keeps the records but resets every duration.
func (h *History) ZeroTrainingTime() {
	for i := range h.Daily {
		h.Daily[i].DurationMinutes = 0
	}
	for i := range h.Sessions {
		h.Sessions[i].DurationMinutes = 0
	}
}

// dayOf truncates t to local midnight.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
