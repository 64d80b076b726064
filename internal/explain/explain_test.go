package explain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/certguru/internal/llm"
	"github.com/abhisek/certguru/internal/question"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sample() *question.Question {
	return &question.Question{
		Number: 12,
		Text:   "Which database fits global strongly consistent writes?",
		Answers: question.Answers{
			{Key: "a", Text: "Cloud Spanner", Correct: true},
			{Key: "b", Text: "Cloud SQL"},
		},
		Tags:   []string{"databases"},
		Active: true,
	}
}

func TestExplanation_Generated(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"explanation":"  **Spanner** scales writes globally.  "}`),
	})
	e := New(mock, nil, DefaultConfig(), quietLogger())

	got := e.Explanation(context.Background(), sample(), []string{"b"}, []string{"a"}, false)
	assert.Equal(t, "**Spanner** scales writes globally.", got)

	require.Equal(t, 1, mock.CallCount())
	msg := mock.Calls[0].Messages[0].Content
	assert.Contains(t, msg, "A) Cloud Spanner [✓ CORRECT]")
	assert.Contains(t, msg, "B) Cloud SQL [✗ INCORRECT]")
	assert.Contains(t, msg, "**Student selected:** B")
	assert.Equal(t, ExplanationSchema, mock.Calls[0].Schema)
}

func TestExplanation_CachedUnlessRegenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"explanation":"fresh"}`)})
	e := New(mock, nil, DefaultConfig(), quietLogger())
	q := sample()
	q.Explanation = "cached"

	assert.Equal(t, "cached", e.Explanation(context.Background(), q, nil, nil, false))
	assert.Zero(t, mock.CallCount())

	assert.Equal(t, "fresh", e.Explanation(context.Background(), q, nil, nil, true))
}

func TestExplanation_Fallbacks(t *testing.T) {
	e := New(nil, nil, DefaultConfig(), quietLogger())
	assert.False(t, e.Enabled())
	assert.Equal(t, FallbackExplanation, e.Explanation(context.Background(), sample(), nil, nil, false))
	assert.Equal(t, FallbackHint, e.Hint(context.Background(), sample()))

	failing := llm.NewMockProvider(llm.MockResponse{Err: errors.New("boom")})
	e = New(failing, nil, DefaultConfig(), quietLogger())
	assert.Equal(t, FallbackExplanation, e.Explanation(context.Background(), sample(), nil, nil, false))

	empty := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"hint":"   "}`)})
	e = New(empty, nil, DefaultConfig(), quietLogger())
	assert.Equal(t, FallbackHint, e.Hint(context.Background(), sample()))

	assert.True(t, IsFallback(FallbackHint))
	assert.False(t, IsFallback("real text"))
}

func TestHint_WithCaseStudy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terramearth.md"), []byte("TerramEarth makes heavy equipment."), 0o644))

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"hint":"Consider IoT ingestion."}`)})
	e := New(mock, NewCaseStudies(dir), DefaultConfig(), quietLogger())

	q := sample()
	q.CaseStudy = "TerramEarth"
	assert.Equal(t, "Consider IoT ingestion.", e.Hint(context.Background(), q))

	msg := mock.Calls[0].Messages[0].Content
	assert.True(t, strings.HasPrefix(msg, "Review the case study material from `terramearth.md`"))
	assert.Contains(t, msg, "TerramEarth makes heavy equipment.")
}

func TestCaseStudies(t *testing.T) {
	assert.Equal(t, "hrl.md", FileName("Helicopter Racing League"))
	assert.Equal(t, "dress_4_win.md", FileName("Dress 4 Win"))

	cs := NewCaseStudies(t.TempDir())
	text, err := cs.Load("Mountkirk Games")
	require.NoError(t, err)
	assert.Empty(t, text, "missing file is not an error")

	var disabled *CaseStudies
	text, err = disabled.Load("TerramEarth")
	require.NoError(t, err)
	assert.Empty(t, text)
}
