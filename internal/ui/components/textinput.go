package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certguru/internal/ui/theme"
)

// NoteLimit caps the length of a question note typed in the TUI.
const NoteLimit = 500

// TextInput wraps bubbles/textinput with certguru styling. It is used to
// edit a question's free-text note.
type TextInput struct {
	Model textinput.Model
	Label string
}

// NewTextInput creates a focused input prefilled with value.
func NewTextInput(label, placeholder, value string) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = NoteLimit
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()

	return TextInput{Model: ti, Label: label}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label above the input.
func (t TextInput) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(t.Label)
	return label + "\n" + t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}
