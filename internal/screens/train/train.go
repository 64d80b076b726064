// Package train is the quiz screen: it draws questions from the trainer,
// collects answers and shows feedback.
package train

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/router"
	"github.com/abhisek/certguru/internal/screen"
	"github.com/abhisek/certguru/internal/screens/summary"
	"github.com/abhisek/certguru/internal/selector"
	"github.com/abhisek/certguru/internal/session"
	"github.com/abhisek/certguru/internal/trainer"
	"github.com/abhisek/certguru/internal/ui/components"
	"github.com/abhisek/certguru/internal/ui/layout"
)

// Trainer is the subset of trainer operations the screen drives.
type Trainer interface {
	NextQuestion(ctx context.Context, f selector.Filter) (*question.Question, error)
	Shuffle(q *question.Question) question.Shuffled
	SubmitAnswer(ctx context.Context, number int, selected []string, withExplanation bool) (*trainer.AnswerResult, error)
	Skip(ctx context.Context, number int) error
	Star(ctx context.Context, number int, starred bool) (*question.Question, error)
	SetNote(ctx context.Context, number int, note string) (*question.Question, error)
	Hint(ctx context.Context, number int) (string, error)
	Explanation(ctx context.Context, number int, regenerate bool) (string, error)
	CurrentSession() session.Summary
	StartNewSession(ctx context.Context, activeMinutes *float64) (session.Summary, error)
}

// Options tunes a training run.
type Options struct {
	Filter  selector.Filter
	Shuffle bool
}

type phase int

const (
	phaseLoading phase = iota
	phaseAnswering
	phaseFeedback
	phaseNote
	phaseError
)

// TrainScreen runs the question loop.
type TrainScreen struct {
	trainer Trainer
	opts    Options

	phase       phase
	question    *question.Question
	shown       question.Shuffled
	choices     components.MultiChoice
	result      *trainer.AnswerResult
	hint        string
	explanation string
	note        components.TextInput

	// pending is set while a hint or explanation is being generated.
	pending bool
	status  string
	errMsg  string
}

var _ screen.Screen = (*TrainScreen)(nil)
var _ screen.KeyHintProvider = (*TrainScreen)(nil)
var _ screen.InputCapturer = (*TrainScreen)(nil)

// New creates a TrainScreen.
func New(t Trainer, opts Options) *TrainScreen {
	return &TrainScreen{trainer: t, opts: opts}
}

func (s *TrainScreen) Init() tea.Cmd {
	return s.loadNext()
}

func (s *TrainScreen) Title() string {
	return "Train"
}

// CapturingInput is true while the note editor is open.
func (s *TrainScreen) CapturingInput() bool {
	return s.phase == phaseNote
}

func (s *TrainScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAnswering:
		return []layout.KeyHint{
			{Key: "A-F", Description: "Toggle"},
			{Key: "Enter", Description: "Submit"},
			{Key: "H", Description: "Hint"},
			{Key: "S", Description: "Star"},
			{Key: "N", Description: "Skip"},
			{Key: "Q", Description: "End"},
		}
	case phaseFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "X", Description: "Explain"},
			{Key: "R", Description: "Regenerate"},
			{Key: "S", Description: "Star"},
			{Key: "E", Description: "Note"},
			{Key: "Q", Description: "End"},
		}
	case phaseNote:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
		}
	}
}

func (s *TrainScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionReadyMsg:
		return s.handleQuestionReady(msg)
	case answerGradedMsg:
		return s.handleAnswerGraded(msg)
	case hintReadyMsg:
		s.pending = false
		if msg.Err != nil {
			s.status = msg.Err.Error()
			return s, nil
		}
		s.hint = msg.Text
		return s, nil
	case explanationReadyMsg:
		s.pending = false
		if msg.Err != nil {
			s.status = msg.Err.Error()
			return s, nil
		}
		s.explanation = msg.Text
		return s, nil
	case starredMsg:
		if msg.Err != nil {
			s.status = msg.Err.Error()
			return s, nil
		}
		s.question.Starred = msg.Question.Starred
		s.status = "Unstarred"
		if s.question.Starred {
			s.status = "Starred"
		}
		return s, nil
	case noteSavedMsg:
		if msg.Err != nil {
			s.status = msg.Err.Error()
			return s, nil
		}
		s.question.Note = msg.Question.Note
		s.status = "Note saved"
		return s, nil
	case skippedMsg:
		if msg.Err != nil {
			s.status = msg.Err.Error()
			return s, nil
		}
		return s, s.loadNext()
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *TrainScreen) handleQuestionReady(msg questionReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if reason, ok := endReason(msg.Err); ok {
			return s, s.finish(reason)
		}
		s.phase = phaseError
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	s.question = msg.Question
	s.shown = msg.Shown
	choices := make([]components.Choice, 0, len(msg.Shown.Answers))
	for _, a := range msg.Shown.Answers {
		choices = append(choices, components.Choice{Label: a.Key, Text: a.Text})
	}
	s.choices = components.NewMultiChoice(choices)
	s.result = nil
	s.hint = msg.Question.Hint
	s.explanation = ""
	s.status = ""
	s.phase = phaseAnswering
	return s, nil
}

func (s *TrainScreen) handleAnswerGraded(msg answerGradedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.status = msg.Err.Error()
		return s, nil
	}
	s.result = msg.Result
	s.question = msg.Result.Question
	s.choices.Grade(s.shown.ToDisplay(msg.Result.CorrectKeys))
	s.explanation = msg.Result.Explanation
	if s.explanation == "" {
		s.explanation = msg.Result.Question.Explanation
	}
	s.status = ""
	s.phase = phaseFeedback
	return s, nil
}

func (s *TrainScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.phase {
	case phaseError:
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case phaseAnswering:
		switch key {
		case "enter":
			return s, s.submit()
		case "h", "H":
			return s, s.requestHint()
		case "s", "S":
			return s, s.toggleStar()
		case "n", "N":
			return s, s.skip()
		case "q", "Q":
			return s, s.finish("Session ended early.")
		}
		var cmd tea.Cmd
		s.choices, cmd = s.choices.Update(msg)
		return s, cmd

	case phaseFeedback:
		switch key {
		case "enter", "space", "n", "N":
			return s, s.loadNext()
		case "x", "X":
			if s.explanation != "" {
				return s, nil
			}
			return s, s.requestExplanation(false)
		case "r", "R":
			return s, s.requestExplanation(true)
		case "s", "S":
			return s, s.toggleStar()
		case "e", "E":
			s.note = components.NewTextInput("Note", "Your note for this question", s.question.Note)
			s.phase = phaseNote
			return s, s.note.Init()
		case "q", "Q":
			return s, s.finish("Session ended early.")
		}

	case phaseNote:
		switch key {
		case "enter":
			s.phase = phaseFeedback
			return s, s.saveNote(s.note.Value())
		case "esc":
			s.phase = phaseFeedback
			return s, nil
		}
		var cmd tea.Cmd
		s.note, cmd = s.note.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TrainScreen) loadNext() tea.Cmd {
	t, opts := s.trainer, s.opts
	s.phase = phaseLoading
	return func() tea.Msg {
		q, err := t.NextQuestion(context.Background(), opts.Filter)
		if err != nil {
			return questionReadyMsg{Err: err}
		}
		shown := question.Unshuffled(q)
		if opts.Shuffle {
			shown = t.Shuffle(q)
		}
		return questionReadyMsg{Question: q, Shown: shown}
	}
}

// submit grades the checked options. Nothing is sent when no option is
// checked.
func (s *TrainScreen) submit() tea.Cmd {
	selected := s.choices.Selected()
	if len(selected) == 0 {
		s.status = "Select at least one answer"
		return nil
	}
	keys, err := s.shown.ToOriginal(selected)
	if err != nil {
		s.status = err.Error()
		return nil
	}
	t, number := s.trainer, s.question.Number
	return func() tea.Msg {
		res, err := t.SubmitAnswer(context.Background(), number, keys, false)
		return answerGradedMsg{Result: res, Err: err}
	}
}

func (s *TrainScreen) requestHint() tea.Cmd {
	if s.hint != "" || s.pending {
		return nil
	}
	s.pending = true
	t, number := s.trainer, s.question.Number
	return func() tea.Msg {
		text, err := t.Hint(context.Background(), number)
		return hintReadyMsg{Text: text, Err: err}
	}
}

func (s *TrainScreen) requestExplanation(regenerate bool) tea.Cmd {
	if s.pending {
		return nil
	}
	s.pending = true
	t, number := s.trainer, s.question.Number
	return func() tea.Msg {
		text, err := t.Explanation(context.Background(), number, regenerate)
		return explanationReadyMsg{Text: text, Err: err}
	}
}

func (s *TrainScreen) toggleStar() tea.Cmd {
	t, number, starred := s.trainer, s.question.Number, !s.question.Starred
	return func() tea.Msg {
		q, err := t.Star(context.Background(), number, starred)
		return starredMsg{Question: q, Err: err}
	}
}

func (s *TrainScreen) saveNote(note string) tea.Cmd {
	t, number := s.trainer, s.question.Number
	return func() tea.Msg {
		q, err := t.SetNote(context.Background(), number, note)
		return noteSavedMsg{Question: q, Err: err}
	}
}

func (s *TrainScreen) skip() tea.Cmd {
	t, number := s.trainer, s.question.Number
	return func() tea.Msg {
		return skippedMsg{Err: t.Skip(context.Background(), number)}
	}
}

// finish swaps this screen for the session summary.
func (s *TrainScreen) finish(reason string) tea.Cmd {
	t, opts := s.trainer, s.opts
	sum := t.CurrentSession()
	next := func() screen.Screen { return New(t, opts) }
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(t, sum, reason, next)}
	}
}

func endReason(err error) (string, bool) {
	switch {
	case errors.Is(err, trainer.ErrSessionComplete):
		return "Every eligible question was shown in this session.", true
	case errors.Is(err, trainer.ErrAllMastered):
		return "All questions with the selected tags are mastered.", true
	case errors.Is(err, trainer.ErrNoQuestions):
		return "No questions match the current filter.", true
	}
	return "", false
}
