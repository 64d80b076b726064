// Package question defines the quiz question document and the pure helpers
// that operate on it: answer checking, search, filtering and shuffling.
package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/certguru/internal/scoring"
)

// StarredTag is the pseudo-tag that selects starred questions in a tag filter.
const StarredTag = "starred"

// Answer is one answer option.
type Answer struct {
	Key     string
	Text    string
	Correct bool
}

// Answers is the ordered list of answer options of a question.
// It serializes as an object keyed by answer key, matching the stored
// document format: {"a": {"answer_text": "...", "status": "correct"}}.
type Answers []Answer

type answerDoc struct {
	AnswerText string `json:"answer_text"`
	Status     string `json:"status"`
}

func (a Answers) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, ans := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(ans.Key)
		if err != nil {
			return nil, err
		}
		status := "incorrect"
		if ans.Correct {
			status = "correct"
		}
		val, err := json.Marshal(answerDoc{AnswerText: ans.Text, Status: status})
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// UnmarshalJSON keeps the answers in document order, so the keys print
// the way the question author wrote them. A repeated key replaces the
// earlier entry in place.
func (a *Answers) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	switch {
	case err != nil:
		return fmt.Errorf("decode answers: %w", err)
	case tok == nil:
		return nil
	case tok != json.Delim('{'):
		return fmt.Errorf("decode answers: expected an object keyed by answer, got %v", tok)
	}

	out := Answers{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}
		key := tok.(string)
		var doc answerDoc
		if err := dec.Decode(&doc); err != nil {
			return fmt.Errorf("decode answer %q: %w", key, err)
		}
		ans := Answer{Key: key, Text: doc.AnswerText, Correct: doc.Status == "correct"}
		if i := slices.IndexFunc(out, func(x Answer) bool { return x.Key == key }); i >= 0 {
			out[i] = ans
		} else {
			out = append(out, ans)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	*a = out
	return nil
}

// Question is a single multiple-choice exam question.
type Question struct {
	Number      int      `json:"question_number"`
	Text        string   `json:"question_text"`
	Answers     Answers  `json:"answers"`
	Tags        []string `json:"tag"`
	Explanation string   `json:"explanation"`
	Hint        string   `json:"hint"`
	Score       int      `json:"score"`
	Starred     bool     `json:"starred"`
	Note        string   `json:"note"`
	Active      bool     `json:"active"`
	CaseStudy   string   `json:"case_study,omitempty"`
}

// UnmarshalJSON defaults Active to true when the field is absent and clamps
// the score into the valid domain.
func (q *Question) UnmarshalJSON(data []byte) error {
	type alias Question
	aux := struct {
		*alias
		Active    *bool   `json:"active"`
		CaseStudy *string `json:"case_study"`
	}{alias: (*alias)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	q.Active = aux.Active == nil || *aux.Active
	if aux.CaseStudy != nil {
		q.CaseStudy = *aux.CaseStudy
	}
	q.Score = scoring.Clamp(q.Score)
	return nil
}

// Band returns the question's mastery band.
func (q *Question) Band() scoring.Band {
	return scoring.BandOf(q.Score)
}

// HasTag reports whether the question carries tag.
func (q *Question) HasTag(tag string) bool {
	return slices.Contains(q.Tags, tag)
}

// HasAnyTag reports whether the question carries at least one of tags.
func (q *Question) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if q.HasTag(t) {
			return true
		}
	}
	return false
}

// HasNote reports whether the question has a non-blank note.
func (q *Question) HasNote() bool {
	return strings.TrimSpace(q.Note) != ""
}

// CorrectKeys returns the keys of all correct answers in answer order.
func (q *Question) CorrectKeys() []string {
	var keys []string
	for _, a := range q.Answers {
		if a.Correct {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

// Answer returns the answer with the given key.
func (q *Question) Answer(key string) (Answer, bool) {
	for _, a := range q.Answers {
		if strings.EqualFold(a.Key, key) {
			return a, true
		}
	}
	return Answer{}, false
}

// Clone returns a deep copy of q.
func (q *Question) Clone() *Question {
	c := *q
	c.Answers = slices.Clone(q.Answers)
	c.Tags = slices.Clone(q.Tags)
	return &c
}

// Validate checks the structural invariants of an imported question.
func (q *Question) Validate() error {
	if q.Number <= 0 {
		return fmt.Errorf("question_number must be positive, got %d", q.Number)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %d: text is empty", q.Number)
	}
	if len(q.Tags) == 0 {
		return fmt.Errorf("question %d: at least one tag is required", q.Number)
	}
	if len(q.Answers) < 2 {
		return fmt.Errorf("question %d: at least two answers are required", q.Number)
	}
	if len(q.CorrectKeys()) == 0 {
		return fmt.Errorf("question %d: no correct answer", q.Number)
	}
	return nil
}
