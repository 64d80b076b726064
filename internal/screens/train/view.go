package train

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/certguru/internal/ui/components"
	"github.com/abhisek/certguru/internal/ui/theme"
)

func (s *TrainScreen) View(width, height int) string {
	switch s.phase {
	case phaseError:
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", s.errMsg))
	case phaseLoading:
		if s.question == nil {
			return lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.TextDim).
				Render("\n\n  Picking a question...")
		}
	}

	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(s.renderInfoLine(cw))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(cw).
		Foreground(theme.Text).
		Bold(true).
		Render(s.question.Text))
	b.WriteString("\n\n")
	b.WriteString(s.choices.View(cw))

	if s.phase == phaseFeedback || s.phase == phaseNote {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(cw))
	} else if s.hint != "" {
		b.WriteString("\n")
		b.WriteString(components.Card(
			lipgloss.NewStyle().Foreground(theme.Secondary).Render("Hint: "+s.hint), cw))
		b.WriteString("\n")
	}

	if s.phase == phaseNote {
		b.WriteString("\n")
		b.WriteString(s.note.View())
		b.WriteString("\n")
	}

	if s.pending {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("Thinking..."))
		b.WriteString("\n")
	}
	if s.status != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(s.status))
		b.WriteString("\n")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

// renderInfoLine shows the question number, tags and mastery on the left and
// the running session on the right.
func (s *TrainScreen) renderInfoLine(cw int) string {
	q := s.question
	star := ""
	if q.Starred {
		star = " ★"
	}
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("Q%d%s", q.Number, star))
	if len(q.Tags) > 0 {
		left += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  " + strings.Join(q.Tags, ", "))
	}

	band := q.Band()
	right := theme.BandColor(string(band)).Render(fmt.Sprintf("%s (%+d)", band, q.Score))

	gap := cw - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (s *TrainScreen) renderFeedback(cw int) string {
	res := s.result
	if res == nil {
		return ""
	}

	var b strings.Builder
	if res.Correct {
		b.WriteString(theme.Correct.Render("Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite"))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(
			"  Correct answer: " + strings.Join(s.shown.ToDisplay(res.CorrectKeys), ", ")))
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(
		fmt.Sprintf("Score %+d → %+d  ", res.PrevScore, res.Question.Score)))
	b.WriteString(theme.BandColor(string(res.Band)).Render(string(res.Band)))
	b.WriteString("\n")

	if s.explanation != "" {
		b.WriteString("\n")
		b.WriteString(components.Card(
			lipgloss.NewStyle().Foreground(theme.Text).Render(s.explanation), cw))
		b.WriteString("\n")
	}
	if s.question.Note != "" && s.phase != phaseNote {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render("Note: " + s.question.Note))
		b.WriteString("\n")
	}
	return b.String()
}
