// Package explain produces answer explanations and hints for questions with
// an LLM, falling back to fixed text when no provider is available.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/certguru/internal/llm"
	"github.com/abhisek/certguru/internal/question"
)

const (
	// FallbackExplanation is returned when no explanation could be generated.
	FallbackExplanation = "Unable to generate explanation at this time. Please try again later."

	// FallbackHint is returned when no hint could be generated.
	FallbackHint = "Think about which cloud service would best address the specific requirements mentioned in the question."
)

// Config tunes generation.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.3,
		Timeout:     30 * time.Second,
	}
}

// Explainer generates explanations and hints. It never fails: errors are
// logged and replaced by the fallback text.
type Explainer struct {
	provider llm.Provider
	cases    *CaseStudies
	cfg      Config
	log      logrus.FieldLogger
}

// New creates an Explainer. provider may be nil, in which case every call
// returns the fallback text.
func New(provider llm.Provider, cases *CaseStudies, cfg Config, log logrus.FieldLogger) *Explainer {
	return &Explainer{provider: provider, cases: cases, cfg: cfg, log: log}
}

// Enabled reports whether an LLM provider is configured.
func (e *Explainer) Enabled() bool {
	return e.provider != nil
}

// IsFallback reports whether text is one of the fallback strings and so
// must not be cached.
func IsFallback(text string) bool {
	return text == FallbackExplanation || text == FallbackHint
}

// Explanation returns q's cached explanation unless regenerate is set, and
// otherwise asks the provider. selected and correct are original answer keys.
func (e *Explainer) Explanation(ctx context.Context, q *question.Question, selected, correct []string, regenerate bool) string {
	if q.Explanation != "" && !regenerate {
		return q.Explanation
	}

	caseStudy := e.caseStudy(q)
	var out struct {
		Explanation string `json:"explanation"`
	}
	err := e.generate(llm.WithPurpose(ctx, llm.PurposeExplanation), llm.Request{
		System:   explanationSystemPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: buildExplanationMessage(q, selected, correct, caseStudy)}},
		Schema:   ExplanationSchema,
	}, &out)
	if err != nil || strings.TrimSpace(out.Explanation) == "" {
		e.logFailure("explanation", q, err)
		return FallbackExplanation
	}
	return strings.TrimSpace(out.Explanation)
}

// Hint returns q's cached hint or asks the provider for one.
func (e *Explainer) Hint(ctx context.Context, q *question.Question) string {
	if q.Hint != "" {
		return q.Hint
	}

	caseStudy := e.caseStudy(q)
	var out struct {
		Hint string `json:"hint"`
	}
	err := e.generate(llm.WithPurpose(ctx, llm.PurposeHint), llm.Request{
		System:   hintSystemPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: buildHintMessage(q, caseStudy)}},
		Schema:   HintSchema,
	}, &out)
	if err != nil || strings.TrimSpace(out.Hint) == "" {
		e.logFailure("hint", q, err)
		return FallbackHint
	}
	return strings.TrimSpace(out.Hint)
}

func (e *Explainer) generate(ctx context.Context, req llm.Request, out any) error {
	if e.provider == nil {
		return errNoProvider
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	req.MaxTokens = e.cfg.MaxTokens
	req.Temperature = e.cfg.Temperature

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (e *Explainer) caseStudy(q *question.Question) string {
	if q.CaseStudy == "" {
		return ""
	}
	text, err := e.cases.Load(q.CaseStudy)
	if err != nil {
		e.log.WithError(err).WithField("case_study", q.CaseStudy).Warn("could not read case study")
	}
	return text
}

var errNoProvider = errors.New("no LLM provider configured")

func (e *Explainer) logFailure(kind string, q *question.Question, err error) {
	entry := e.log.WithFields(logrus.Fields{"kind": kind, "question": q.Number})
	if errors.Is(err, errNoProvider) {
		entry.Debug("llm disabled, using fallback text")
		return
	}
	if err == nil {
		err = fmt.Errorf("empty %s", kind)
	}
	entry.WithError(err).Warn("generation failed, using fallback text")
}
