package trainer

import "errors"

var (
	// ErrQuestionNotFound is returned for an unknown question number.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrAllMastered means every active question matching the filter is
	// perfected.
	ErrAllMastered = errors.New("all questions with related tag(s) are mastered")

	// ErrSessionComplete means every eligible question was already shown in
	// this session.
	ErrSessionComplete = errors.New("session complete: no more questions available")

	// ErrNoQuestions means the filter matches no active question at all.
	ErrNoQuestions = errors.New("no questions found")

	// ErrInvalidAnswer is returned when a submission names answer keys the
	// question does not have.
	ErrInvalidAnswer = errors.New("invalid answer selection")
)
