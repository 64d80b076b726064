package scoring

import "fmt"

// Band is a mastery bucket derived from a question's score.
type Band string

const (
	BandMistakes  Band = "mistakes"
	BandLearning  Band = "learning"
	BandMastered  Band = "mastered"
	BandPerfected Band = "perfected"
)

// AllBands returns the bands in ascending mastery order.
func AllBands() []Band {
	return []Band{BandMistakes, BandLearning, BandMastered, BandPerfected}
}

// BandOf maps a score to its band. Scores below the floor count as
// mistakes, scores at or above the ceiling count as perfected.
func BandOf(score int) Band {
	switch {
	case score <= MinScore:
		return BandMistakes
	case score <= 1:
		return BandLearning
	case score < MaxScore:
		return BandMastered
	default:
		return BandPerfected
	}
}

// Label returns the human-readable description of the band.
func (b Band) Label() string {
	switch b {
	case BandMistakes:
		return "actively wrong"
	case BandLearning:
		return "in progress"
	case BandMastered:
		return "solid"
	case BandPerfected:
		return "excluded from further selection"
	default:
		return string(b)
	}
}

// Contains reports whether score falls inside the band.
func (b Band) Contains(score int) bool {
	return BandOf(score) == b
}

// ParseBand parses a band name.
func ParseBand(s string) (Band, error) {
	for _, b := range AllBands() {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown mastery level: %q", s)
}
