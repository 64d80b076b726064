package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	progressdata "github.com/abhisek/certguru/internal/progress"
	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/router"
	"github.com/abhisek/certguru/internal/screens/train"
	"github.com/abhisek/certguru/internal/selector"
	"github.com/abhisek/certguru/internal/session"
	"github.com/abhisek/certguru/internal/trainer"
)

// fakeTrainer answers the stats query; the quiz operations are never
// reached from the home screen itself.
type fakeTrainer struct{}

func (fakeTrainer) NextQuestion(context.Context, selector.Filter) (*question.Question, error) {
	return nil, trainer.ErrNoQuestions
}
func (fakeTrainer) Shuffle(q *question.Question) question.Shuffled { return question.Unshuffled(q) }
func (fakeTrainer) SubmitAnswer(context.Context, int, []string, bool) (*trainer.AnswerResult, error) {
	return nil, trainer.ErrQuestionNotFound
}
func (fakeTrainer) Skip(context.Context, int) error { return nil }
func (fakeTrainer) Star(context.Context, int, bool) (*question.Question, error) {
	return nil, trainer.ErrQuestionNotFound
}
func (fakeTrainer) SetNote(context.Context, int, string) (*question.Question, error) {
	return nil, trainer.ErrQuestionNotFound
}
func (fakeTrainer) Hint(context.Context, int) (string, error)              { return "", nil }
func (fakeTrainer) Explanation(context.Context, int, bool) (string, error) { return "", nil }
func (fakeTrainer) CurrentSession() session.Summary                        { return session.Summary{} }
func (fakeTrainer) StartNewSession(context.Context, *float64) (session.Summary, error) {
	return session.Summary{}, nil
}
func (fakeTrainer) Sessions(context.Context) ([]progressdata.IndividualSession, error) {
	return nil, nil
}
func (fakeTrainer) Progress(context.Context) (progressdata.UserProgress, error) {
	return progressdata.UserProgress{
		StreakDays: 4,
		Overall:    progressdata.OverallProgress{MistakesCount: 2, PerfectedCount: 7},
	}, nil
}

func pushedTitle(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	return push.Screen.Title()
}

func TestHomeScreen_Stats(t *testing.T) {
	h := New(fakeTrainer{}, train.Options{})
	h.Update(h.Init()())

	view := h.View(100, 30)
	if !strings.Contains(view, "✗ 2") || !strings.Contains(view, "★ 7") {
		t.Errorf("expected band counts in view, got:\n%s", view)
	}
	if !strings.Contains(view, "4 day streak") {
		t.Error("expected streak in view")
	}
}

func TestHomeScreen_MenuNavigation(t *testing.T) {
	h := New(fakeTrainer{}, train.Options{})

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := pushedTitle(t, cmd); got != "Train" {
		t.Errorf("expected Train, got %q", got)
	}

	for range 3 {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := pushedTitle(t, cmd); got != "Progress" {
		t.Errorf("expected Progress, got %q", got)
	}

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := pushedTitle(t, cmd); got != "History" {
		t.Errorf("expected History, got %q", got)
	}
}

func TestHomeScreen_Title(t *testing.T) {
	h := New(fakeTrainer{}, train.Options{})
	if h.Title() != "Home" {
		t.Errorf("Title = %q, want %q", h.Title(), "Home")
	}
}
