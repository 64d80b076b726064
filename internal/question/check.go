package question

import "strings"

// CheckResult is the outcome of grading a submission.
type CheckResult struct {
	Correct      bool
	CorrectKeys  []string
	SelectedKeys []string
	UnknownKeys  []string
}

// Check grades a submission. It is correct only when the selected key set
// equals the set of correct keys. Key comparison ignores case.
func Check(q *Question, selected []string) CheckResult {
	res := CheckResult{
		CorrectKeys:  q.CorrectKeys(),
		SelectedKeys: selected,
	}

	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		key := strings.ToLower(strings.TrimSpace(s))
		if _, ok := q.Answer(key); !ok {
			res.UnknownKeys = append(res.UnknownKeys, s)
			continue
		}
		chosen[key] = true
	}

	want := make(map[string]bool, len(res.CorrectKeys))
	for _, k := range res.CorrectKeys {
		want[strings.ToLower(k)] = true
	}

	res.Correct = len(res.UnknownKeys) == 0 && len(chosen) == len(want)
	if res.Correct {
		for k := range want {
			if !chosen[k] {
				res.Correct = false
				break
			}
		}
	}
	return res
}
