package progress

import (
	"sort"

	"github.com/samber/lo"

	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/scoring"
	"github.com/abhisek/certguru/internal/selector"
	"github.com/abhisek/certguru/internal/session"
)

func activeOnly(questions []*question.Question) []*question.Question {
	return lo.Filter(questions, func(q *question.Question, _ int) bool { return q.Active })
}

// AllMastered reports whether every active question matching tags is
// perfected. A filter that matches no active question is not mastered.
func AllMastered(questions []*question.Question, tags []string) bool {
	active := activeOnly(selector.FilterByTags(questions, tags))
	if len(active) == 0 {
		return false
	}
	return lo.EveryBy(active, func(q *question.Question) bool {
		return q.Score >= scoring.MaxScore
	})
}

// AvailableMasteryLevels lists, in band order, the bands holding at least one
// active question that matches tags.
func AvailableMasteryLevels(questions []*question.Question, tags []string) []scoring.Band {
	present := make(map[scoring.Band]bool)
	for _, q := range activeOnly(selector.FilterByTags(questions, tags)) {
		present[q.Band()] = true
	}
	return lo.Filter(scoring.AllBands(), func(b scoring.Band, _ int) bool { return present[b] })
}

type bandCounts struct {
	total, mistakes, learning, mastered, perfected int
}

func (c *bandCounts) add(score int) {
	c.total++
	switch scoring.BandOf(score) {
	case scoring.BandMistakes:
		c.mistakes++
	case scoring.BandLearning:
		c.learning++
	case scoring.BandMastered:
		c.mastered++
	case scoring.BandPerfected:
		c.perfected++
	}
}

// TagBreakdown returns one entry per tag of the active questions, sorted by
// tag name.
func TagBreakdown(questions []*question.Question) []TagProgress {
	counts := make(map[string]*bandCounts)
	for _, q := range activeOnly(questions) {
		for _, tag := range q.Tags {
			c, ok := counts[tag]
			if !ok {
				c = &bandCounts{}
				counts[tag] = c
			}
			c.add(q.Score)
		}
	}

	out := make([]TagProgress, 0, len(counts))
	for tag, c := range counts {
		var pct float64
		if c.total > 0 {
			pct = float64(c.mastered+c.perfected) / float64(c.total) * 100
		}
		out = append(out, TagProgress{
			Tag:               tag,
			TotalQuestions:    c.total,
			MistakesCount:     c.mistakes,
			LearningCount:     c.learning,
			MasteredCount:     c.mastered,
			PerfectedCount:    c.perfected,
			MasteryPercentage: pct,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Overall computes band counts over all active questions together with the
// starred and note counts and the total training time from daily history.
func Overall(questions []*question.Question, daily []DailySessionHistory) OverallProgress {
	var c bandCounts
	var starred, notes int
	for _, q := range activeOnly(questions) {
		c.add(q.Score)
		if q.Starred {
			starred++
		}
		if q.HasNote() {
			notes++
		}
	}

	minutes := lo.SumBy(daily, func(d DailySessionHistory) float64 { return d.DurationMinutes })

	return OverallProgress{
		TotalQuestions:           c.total,
		MistakesCount:            c.mistakes,
		LearningCount:            c.learning,
		MasteredCount:            c.mastered,
		PerfectedCount:           c.perfected,
		StarredQuestions:         starred,
		QuestionsWithNotes:       notes,
		TotalTrainingTimeMinutes: minutes,
		TagProgress:              TagBreakdown(questions),
	}
}

// User assembles the progress page. The streak is 1 while the current session
// has answers and 0 otherwise.
func User(questions []*question.Question, h *History, state *session.State) UserProgress {
	up := UserProgress{
		CurrentSession: StatsOf(state),
		Overall:        Overall(questions, h.Daily),
		SessionHistory: h.Daily,
	}
	if up.SessionHistory == nil {
		up.SessionHistory = []DailySessionHistory{}
	}
	if !state.IsEmpty() {
		up.StreakDays = 1
	}
	if n := len(h.Daily); n > 0 {
		last := h.Daily[n-1]
		up.LastSession = &last
	}
	return up
}
