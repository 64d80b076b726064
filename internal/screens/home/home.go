// Package home is the main menu.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	progressdata "github.com/abhisek/certguru/internal/progress"
	"github.com/abhisek/certguru/internal/router"
	"github.com/abhisek/certguru/internal/scoring"
	"github.com/abhisek/certguru/internal/screen"
	"github.com/abhisek/certguru/internal/screens/history"
	"github.com/abhisek/certguru/internal/screens/progress"
	"github.com/abhisek/certguru/internal/screens/summary"
	"github.com/abhisek/certguru/internal/screens/train"
	"github.com/abhisek/certguru/internal/ui/components"
	"github.com/abhisek/certguru/internal/ui/theme"
)

// Trainer is everything the screens reachable from home need.
type Trainer interface {
	train.Trainer
	progress.Source
	history.Source
}

const title = "C E R T G U R U"

type statsLoadedMsg struct {
	Overall progressdata.OverallProgress
	Streak  int
	Err     error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	trainer    Trainer
	menu       components.Menu
	menuLabels []string
	overall    progressdata.OverallProgress
	streak     int
	errMsg     string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. opts is the base training setup; the
// starred and mistakes entries narrow its filter further.
func New(t Trainer, opts train.Options) *HomeScreen {
	starred := opts
	starred.Filter.StarredOnly = true

	mistakes := opts
	mistakes.Filter.Levels = []scoring.Band{scoring.BandMistakes}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	menuLabels := []string{"TRAIN", "STARRED", "MISTAKES", "PROGRESS", "HISTORY", "SESSION", "QUIT"}
	items := []components.MenuItem{
		{Label: menuLabels[0], Action: push(func() screen.Screen { return train.New(t, opts) })},
		{Label: menuLabels[1], Action: push(func() screen.Screen { return train.New(t, starred) })},
		{Label: menuLabels[2], Action: push(func() screen.Screen { return train.New(t, mistakes) })},
		{Label: menuLabels[3], Action: push(func() screen.Screen { return progress.New(t) })},
		{Label: menuLabels[4], Action: push(func() screen.Screen { return history.New(t) })},
		{Label: menuLabels[5], Action: push(func() screen.Screen {
			return summary.New(t, t.CurrentSession(), "", nil)
		})},
		{Label: menuLabels[6], Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		trainer:    t,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	t := h.trainer
	return func() tea.Msg {
		p, err := t.Progress(context.Background())
		return statsLoadedMsg{Overall: p.Overall, Streak: p.StreakDays, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.overall = msg.Overall
		h.streak = msg.Streak
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Warning).
		Bold(true).
		Render(title))
	sections = append(sections, h.renderStats(cw))

	buttons := make([]string, 0, len(h.menuLabels))
	for i, label := range h.menuLabels {
		buttons = append(buttons, components.MenuButton(label, i == h.menu.Selected, cw/2))
	}
	sections = append(sections, lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, buttons...)))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) renderStats(cw int) string {
	if h.errMsg != "" {
		return lipgloss.NewStyle().Foreground(theme.Error).Render("Error: " + h.errMsg)
	}
	o := h.overall
	stats := fmt.Sprintf("%s  %s  %s  %s",
		theme.BandColor("mistakes").Bold(true).Render(fmt.Sprintf("✗ %d", o.MistakesCount)),
		theme.BandColor("learning").Bold(true).Render(fmt.Sprintf("◐ %d", o.LearningCount)),
		theme.BandColor("mastered").Bold(true).Render(fmt.Sprintf("● %d", o.MasteredCount)),
		theme.BandColor("perfected").Bold(true).Render(fmt.Sprintf("★ %d", o.PerfectedCount)),
	)
	stats += lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("   %d day streak", h.streak))

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
