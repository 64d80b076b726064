package question

import "strings"

// Matches reports whether query occurs in the question text or in any answer
// text, case-insensitively.
func Matches(q *Question, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(q.Text), query) {
		return true
	}
	for _, a := range q.Answers {
		if strings.Contains(strings.ToLower(a.Text), query) {
			return true
		}
	}
	return false
}

// Search returns the questions matching query, in input order.
func Search(qs []*Question, query string) []*Question {
	var out []*Question
	for _, q := range qs {
		if Matches(q, query) {
			out = append(out, q)
		}
	}
	return out
}
