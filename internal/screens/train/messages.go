package train

import (
	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/trainer"
)

// questionReadyMsg carries the next question and its display order.
type questionReadyMsg struct {
	Question *question.Question
	Shown    question.Shuffled
	Err      error
}

// answerGradedMsg carries the graded answer.
type answerGradedMsg struct {
	Result *trainer.AnswerResult
	Err    error
}

// hintReadyMsg carries a generated or cached hint.
type hintReadyMsg struct {
	Text string
	Err  error
}

// explanationReadyMsg carries a generated or cached explanation.
type explanationReadyMsg struct {
	Text string
	Err  error
}

// starredMsg reports a star toggle.
type starredMsg struct {
	Question *question.Question
	Err      error
}

// noteSavedMsg reports a saved note.
type noteSavedMsg struct {
	Question *question.Question
	Err      error
}

// skippedMsg reports that the current question was skipped.
type skippedMsg struct {
	Err error
}
