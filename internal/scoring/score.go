// Package scoring implements the per-question mastery score: how answers move
// it and how it translates into a selection weight.
package scoring

const (
	// MinScore is the "mistake" floor.
	MinScore = -1
	// MaxScore is the "perfected" ceiling. Questions at this score are no
	// longer selected.
	MaxScore = 4
)

// Apply returns the score after an answer: +1 capped at MaxScore when
// correct, -1 floored at MinScore otherwise.
func Apply(score int, correct bool) int {
	if correct {
		return min(MaxScore, score+1)
	}
	return max(MinScore, score-1)
}

// WeightFor returns the sampling weight for a score. Lower scores surface
// more often. Every score outside [-1, 3] yields 0, which removes the
// question from weighted sampling.
func WeightFor(score int) float64 {
	switch score {
	case -1:
		return 1.5
	case 0:
		return 1.0
	case 1:
		return 0.65
	case 2:
		return 0.4
	case 3:
		return 0.2
	default:
		return 0
	}
}

// Clamp forces a persisted score back into [MinScore, MaxScore].
func Clamp(score int) int {
	return max(MinScore, min(MaxScore, score))
}
