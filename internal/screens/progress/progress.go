// Package progress renders mastery progress per tag and overall.
package progress

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	progressdata "github.com/abhisek/certguru/internal/progress"
	"github.com/abhisek/certguru/internal/router"
	"github.com/abhisek/certguru/internal/screen"
	"github.com/abhisek/certguru/internal/ui/components"
	"github.com/abhisek/certguru/internal/ui/layout"
	"github.com/abhisek/certguru/internal/ui/theme"
)

// Source provides the progress view.
type Source interface {
	Progress(ctx context.Context) (progressdata.UserProgress, error)
}

type progressLoadedMsg struct {
	Progress progressdata.UserProgress
	Err      error
}

// ProgressScreen displays overall and per-tag mastery.
type ProgressScreen struct {
	source   Source
	progress progressdata.UserProgress
	offset   int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)

// New creates a ProgressScreen.
func New(source Source) *ProgressScreen {
	return &ProgressScreen{source: source}
}

func (s *ProgressScreen) Init() tea.Cmd {
	source := s.source
	return func() tea.Msg {
		p, err := source.Progress(context.Background())
		return progressLoadedMsg{Progress: p, Err: err}
	}
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.progress = msg.Progress
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.progress.Overall.TagProgress)-1 {
				s.offset++
			}
		}
	}
	return s, nil
}

func (s *ProgressScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading progress...")
	}

	cw := components.ContentWidth(width)
	o := s.progress.Overall

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(renderBands(o.MistakesCount, o.LearningCount, o.MasteredCount, o.PerfectedCount))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(
		"%d questions  ★ %d starred  %d with notes  %.0f min trained  %d day streak",
		o.TotalQuestions, o.StarredQuestions, o.QuestionsWithNotes,
		o.TotalTrainingTimeMinutes, s.progress.StreakDays)))
	b.WriteString("\n\n")

	cur := s.progress.CurrentSession
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(fmt.Sprintf(
		"Current session: %d answered, %.1f%% accuracy", cur.TotalQuestions, cur.Accuracy)))
	b.WriteString("\n\n")

	tags := o.TagProgress
	if len(tags) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("No questions yet. Import a question bank to start."))
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
	}

	// Each tag takes one line; keep the list inside the content area.
	visible := height - 8
	if visible < 1 {
		visible = 1
	}
	end := min(len(tags), s.offset+visible)
	for _, tp := range tags[s.offset:end] {
		label := fmt.Sprintf("%-20s", truncate(tp.Tag, 20))
		bar := components.NewProgressBar(label, tp.MasteryPercentage/100, true, cw-12)
		b.WriteString(bar.View())
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf(" %3d", tp.TotalQuestions)))
		b.WriteString("\n")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func renderBands(mistakes, learning, mastered, perfected int) string {
	parts := []string{
		theme.BandColor("mistakes").Bold(true).Render(fmt.Sprintf("✗ %d mistakes", mistakes)),
		theme.BandColor("learning").Bold(true).Render(fmt.Sprintf("◐ %d learning", learning)),
		theme.BandColor("mastered").Bold(true).Render(fmt.Sprintf("● %d mastered", mastered)),
		theme.BandColor("perfected").Bold(true).Render(fmt.Sprintf("★ %d perfected", perfected)),
	}
	return strings.Join(parts, "   ")
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
