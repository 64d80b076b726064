package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/certguru/internal/router"
	"github.com/abhisek/certguru/internal/screen"
	"github.com/abhisek/certguru/internal/session"
)

type fakeStarter struct {
	calls int
	err   error
}

func (f *fakeStarter) StartNewSession(context.Context, *float64) (session.Summary, error) {
	f.calls++
	return session.Summary{}, f.err
}

type stubScreen struct{}

func (s stubScreen) Init() tea.Cmd                           { return nil }
func (s stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s stubScreen) View(int, int) string                    { return "next" }
func (s stubScreen) Title() string                           { return "Next" }

func testSummary() session.Summary {
	return session.Summary{
		SessionID:         "abc",
		QuestionsAnswered: 14,
		CorrectAnswers:    11,
		IncorrectAnswers:  3,
		AccuracyPercent:   78.6,
		DurationMinutes:   15.2,
		QuestionsShown:    15,
		Tags:              []string{"compute", "storage"},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(&fakeStarter{}, testSummary(), "", nil)
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(&fakeStarter{}, testSummary(), "All questions shown", nil)
	view := s.View(80, 24)
	for _, want := range []string{"78.6%", "All questions shown", "compute, storage"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(&fakeStarter{}, testSummary(), "", nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected command on Enter")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestSummaryScreen_NewSession(t *testing.T) {
	starter := &fakeStarter{}
	s := New(starter, testSummary(), "", func() screen.Screen { return stubScreen{} })

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if cmd == nil {
		t.Fatal("expected command on N")
	}
	msg := cmd()
	if starter.calls != 1 {
		t.Errorf("expected StartNewSession once, got %d", starter.calls)
	}

	_, cmd = s.Update(msg)
	if cmd == nil {
		t.Fatal("expected navigation after session start")
	}
	replace, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if replace.Screen.Title() != "Next" {
		t.Errorf("expected next screen, got %q", replace.Screen.Title())
	}
}

func TestSummaryScreen_NewSessionError(t *testing.T) {
	s := New(&fakeStarter{err: errors.New("disk full")}, testSummary(), "", nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	_, cmd = s.Update(cmd())
	if cmd != nil {
		t.Error("expected no navigation on error")
	}
	if !strings.Contains(s.View(80, 24), "disk full") {
		t.Error("expected error in view")
	}
}
