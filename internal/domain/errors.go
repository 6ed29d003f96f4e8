package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an exam session id is unknown.
	ErrSessionNotFound = errors.New("exam session not found")
	// ErrSessionSubmitted is returned when an intent reaches a session that was already submitted.
	ErrSessionSubmitted = errors.New("exam session already submitted")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrInvalidBank indicates a loaded bank violates the question invariants.
	ErrInvalidBank = errors.New("invalid question bank")
	// ErrQuestionNotFound indicates a question ID is not part of the session.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an option ID does not belong to the current question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidUser is returned when the candidate name or collegiate number is blank.
	ErrInvalidUser = errors.New("full name and collegiate number are required")
	// ErrInvalidQuizType is returned for quiz types other than OFFICIAL and PRACTICE.
	ErrInvalidQuizType = errors.New("unknown quiz type")
	// ErrInvalidCredentials is returned when a role secret does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAttemptTaken is returned when an official attempt was already recorded for the candidate.
	ErrAttemptTaken = errors.New("official exam already taken")
)
