package explain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/certguru/internal/question"
)

const explanationSystemPrompt = `You are an expert cloud certification instructor helping a student prepare for a professional architect exam.

Give a CONCISE explanation that teaches the core concept:
1. State the correct answer and the core reason it is right.
2. Briefly explain why the other options are incorrect.
3. Name the relevant services and key concepts, using markdown for emphasis (**bold**, *italic*).

Use at most 5 sentences in total. Be direct.`

const hintSystemPrompt = `You are a helpful cloud certification exam coach. Give a subtle hint for the question without revealing the answer.

The hint must:
1. Point toward the relevant concept or service.
2. NOT state the answer.
3. Help the student reason about the requirements in the question.
4. Be 1-2 sentences.`

func caseStudyPreamble(name, content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf("Review the case study material from `%s` before answering.\n\n**Case Study:** %s\n\n%s\n\n---\n\n",
		FileName(name), name, content)
}

func buildExplanationMessage(q *question.Question, selected, correct []string, caseStudy string) string {
	var b strings.Builder
	b.WriteString(caseStudyPreamble(q.CaseStudy, caseStudy))

	fmt.Fprintf(&b, "**Question:** %s\n\n**Answer Options:**\n", q.Text)
	for _, a := range q.Answers {
		status := "✗ INCORRECT"
		if slices.Contains(correct, a.Key) {
			status = "✓ CORRECT"
		}
		fmt.Fprintf(&b, "%s) %s [%s]\n", strings.ToUpper(a.Key), a.Text, status)
	}

	fmt.Fprintf(&b, "\n**Student selected:** %s\n", upperJoin(selected))
	fmt.Fprintf(&b, "**Correct answer(s):** %s\n", upperJoin(correct))
	return b.String()
}

func buildHintMessage(q *question.Question, caseStudy string) string {
	var b strings.Builder
	b.WriteString(caseStudyPreamble(q.CaseStudy, caseStudy))
	fmt.Fprintf(&b, "**Question:** %s\n\nProvide just the hint, nothing else.", q.Text)
	return b.String()
}

func upperJoin(keys []string) string {
	if len(keys) == 0 {
		return "(none)"
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strings.ToUpper(k)
	}
	return strings.Join(out, ", ")
}
