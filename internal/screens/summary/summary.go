// Package summary shows the running session's statistics and lets the
// learner roll over into a new session.
package summary

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certguru/internal/router"
	"github.com/abhisek/certguru/internal/screen"
	"github.com/abhisek/certguru/internal/session"
	"github.com/abhisek/certguru/internal/ui/layout"
	"github.com/abhisek/certguru/internal/ui/theme"
)

// Starter begins a new session, archiving the current one.
type Starter interface {
	StartNewSession(ctx context.Context, activeMinutes *float64) (session.Summary, error)
}

type sessionStartedMsg struct {
	Previous session.Summary
	Err      error
}

// SummaryScreen displays a session summary.
type SummaryScreen struct {
	starter Starter
	summary session.Summary
	reason  string
	next    func() screen.Screen
	errMsg  string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. reason explains why training stopped and may
// be empty. next builds the screen shown after a new session starts; when it
// is nil the summary pops back instead.
func New(starter Starter, summary session.Summary, reason string, next func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{
		starter: starter,
		summary: summary,
		reason:  reason,
		next:    next,
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "N", Description: "New session"},
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if s.next == nil {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		next := s.next()
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyMsg:
		switch msg.String() {
		case "n", "N":
			starter := s.starter
			return s, func() tea.Msg {
				prev, err := starter.StartNewSession(context.Background(), nil)
				return sessionStartedMsg{Previous: prev, Err: err}
			}
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render("Session summary"))
	b.WriteString("\n")
	if s.reason != "" {
		b.WriteString(center.Foreground(theme.TextDim).Render(s.reason))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rows := []struct {
		label string
		value string
	}{
		{"Questions answered", fmt.Sprintf("%d", sum.QuestionsAnswered)},
		{"Correct", fmt.Sprintf("%d", sum.CorrectAnswers)},
		{"Incorrect", fmt.Sprintf("%d", sum.IncorrectAnswers)},
		{"Accuracy", fmt.Sprintf("%.1f%%", sum.AccuracyPercent)},
		{"Duration", fmt.Sprintf("%.1f min", sum.DurationMinutes)},
		{"Questions shown", fmt.Sprintf("%d", sum.QuestionsShown)},
	}
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(22)
	value := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	for _, r := range rows {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			label.Render(r.label)+value.Render(fmt.Sprintf("%10s", r.value))))
		b.WriteString("\n")
	}

	if len(sum.Tags) > 0 {
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Secondary).
			Render("Tags: " + strings.Join(sum.Tags, ", ")))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Error).Render("Error: " + s.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.TextDim).
		Render("Press N to save this session and start a new one."))
	return b.String()
}
