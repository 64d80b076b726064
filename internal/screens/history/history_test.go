package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/certguru/internal/progress"
)

type fakeSource struct {
	sessions []progress.IndividualSession
	err      error
}

func (f fakeSource) Sessions(context.Context) ([]progress.IndividualSession, error) {
	return f.sessions, f.err
}

func testSessions() []progress.IndividualSession {
	start := time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local)
	return []progress.IndividualSession{
		{
			ID:               "s2",
			StartTime:        start,
			EndTime:          start.Add(20 * time.Minute),
			DurationMinutes:  20,
			TotalQuestions:   10,
			CorrectAnswers:   8,
			IncorrectAnswers: 2,
			Accuracy:         80,
			Tags:             []string{"networking"},
		},
		{
			ID:             "s1",
			StartTime:      start.Add(-24 * time.Hour),
			TotalQuestions: 3,
		},
	}
}

func TestHistoryScreen_List(t *testing.T) {
	s := New(fakeSource{sessions: testSessions()})
	s.Update(s.Init()())

	view := s.View(100, 30)
	if !strings.Contains(view, "Oct 17, 2026 09:30") {
		t.Errorf("expected session date in view, got:\n%s", view)
	}
	if !strings.Contains(view, "80.0% accuracy") {
		t.Error("expected accuracy in view")
	}
	if strings.Contains(view, "networking") {
		t.Error("expected details hidden until expanded")
	}
}

func TestHistoryScreen_Expand(t *testing.T) {
	s := New(fakeSource{sessions: testSessions()})
	s.Update(s.Init()())

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(100, 30), "Tags: networking") {
		t.Error("expected tags after expanding")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("expected selection clamped at 1, got %d", s.selected)
	}
}

func TestHistoryScreen_EmptyAndError(t *testing.T) {
	s := New(fakeSource{})
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "No sessions yet") {
		t.Error("expected empty message")
	}

	s = New(fakeSource{err: errors.New("db locked")})
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "db locked") {
		t.Error("expected error in view")
	}
}
