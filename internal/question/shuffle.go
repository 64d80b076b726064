package question

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// displayKeys are the letters shown to the learner, in order.
var displayKeys = []string{"A", "B", "C", "D", "E", "F"}

// Shuffled is a question whose answer content has been permuted while the
// display letters stay in alphabetical order.
type Shuffled struct {
	Question *Question
	// Answers holds the displayed answers keyed by display letter.
	Answers Answers
	// Mapping maps a display letter to the original answer key.
	Mapping map[string]string
}

// Shuffle permutes the answers of q using r. Questions with more answers than
// display letters keep their original order.
func Shuffle(q *Question, r *rand.Rand) Shuffled {
	n := len(q.Answers)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if n <= len(displayKeys) {
		r.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	s := Shuffled{
		Question: q,
		Answers:  make(Answers, 0, n),
		Mapping:  make(map[string]string, n),
	}
	for i, idx := range order {
		orig := q.Answers[idx]
		key := orig.Key
		if i < len(displayKeys) {
			key = displayKeys[i]
		}
		s.Answers = append(s.Answers, Answer{Key: key, Text: orig.Text, Correct: orig.Correct})
		s.Mapping[key] = orig.Key
	}
	return s
}

// ToOriginal converts displayed letters back to original answer keys.
func (s Shuffled) ToOriginal(keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		orig, ok := s.Mapping[strings.ToUpper(k)]
		if !ok {
			return nil, fmt.Errorf("unknown answer %q", k)
		}
		out = append(out, orig)
	}
	return out, nil
}

// ToDisplay converts original answer keys to displayed letters.
func (s Shuffled) ToDisplay(keys []string) []string {
	reverse := make(map[string]string, len(s.Mapping))
	for disp, orig := range s.Mapping {
		reverse[strings.ToLower(orig)] = disp
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if d, ok := reverse[strings.ToLower(k)]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Unshuffled presents q in its stored order with upper-case display letters,
// so callers can treat shuffled and plain presentation alike.
func Unshuffled(q *Question) Shuffled {
	s := Shuffled{
		Question: q,
		Answers:  make(Answers, 0, len(q.Answers)),
		Mapping:  make(map[string]string, len(q.Answers)),
	}
	for _, a := range q.Answers {
		key := strings.ToUpper(a.Key)
		s.Answers = append(s.Answers, Answer{Key: key, Text: a.Text, Correct: a.Correct})
		s.Mapping[key] = a.Key
	}
	return s
}
