package session

import "errors"

var (
	ErrNoQuestions     = errors.New("session: question bank has no questions for subject")
	ErrNotActive       = errors.New("session: not active")
	ErrNotSummarizing  = errors.New("session: not on the review screen")
	ErrIndexOutOfRange = errors.New("session: question index out of range")
	ErrInvalidOption   = errors.New("session: option is not one of the question's choices")
	ErrCannotResume    = errors.New("session: this submission cannot be resumed")
	ErrFinalized       = errors.New("session: already finalized")
	ErrClosed          = errors.New("session: controller closed")
)
