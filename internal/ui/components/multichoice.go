package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certguru/internal/ui/theme"
)

// Choice is one selectable answer.
type Choice struct {
	Label string
	Text  string
}

// MultiChoice is an answer picker. Space toggles the option under the
// cursor, a letter key toggles that option directly. Questions with more
// than one correct answer need every correct option checked.
type MultiChoice struct {
	Choices   []Choice
	Cursor    int
	Checked   []bool
	Submitted bool

	// Correct marks the right options once the answer is graded.
	Correct []bool
}

// NewMultiChoice creates an answer picker.
func NewMultiChoice(choices []Choice) MultiChoice {
	return MultiChoice{
		Choices: choices,
		Checked: make([]bool, len(choices)),
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and toggling.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Choices)-1 {
			m.Cursor++
		}
	case "space", " ":
		m.toggle(m.Cursor)
	default:
		if i := m.indexOf(key); i >= 0 {
			m.Cursor = i
			m.toggle(i)
		}
	}

	return m, nil
}

func (m *MultiChoice) toggle(i int) {
	if i >= 0 && i < len(m.Checked) {
		m.Checked[i] = !m.Checked[i]
	}
}

func (m MultiChoice) indexOf(label string) int {
	for i, c := range m.Choices {
		if strings.EqualFold(c.Label, label) {
			return i
		}
	}
	return -1
}

// Selected returns the labels of the checked options in display order.
func (m MultiChoice) Selected() []string {
	var out []string
	for i, c := range m.Choices {
		if m.Checked[i] {
			out = append(out, c.Label)
		}
	}
	return out
}

// Grade freezes the picker and marks the correct options by label.
func (m *MultiChoice) Grade(correctLabels []string) {
	m.Submitted = true
	m.Correct = make([]bool, len(m.Choices))
	for _, l := range correctLabels {
		if i := m.indexOf(l); i >= 0 {
			m.Correct[i] = true
		}
	}
}

// View renders the options, wrapping long answer text at width.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	for i, c := range m.Choices {
		cursor := "  "
		if i == m.Cursor && !m.Submitted {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %s)  %s", cursor, box, c.Label, c.Text)

		style := lipgloss.NewStyle().Width(width).Foreground(theme.Text)
		switch {
		case m.Submitted && m.Correct[i]:
			style = style.Foreground(theme.Success).Bold(true)
		case m.Submitted && m.Checked[i]:
			style = style.Foreground(theme.Error).Bold(true)
		case m.Submitted:
			style = style.Foreground(theme.TextDim)
		case i == m.Cursor:
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
