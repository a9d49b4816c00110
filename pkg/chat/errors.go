package chat

import (
	"errors"
	"fmt"
)

// ErrNoChoices is returned when a response carries no choices[0].message.
var ErrNoChoices = errors.New("no choices[0].message in response")

// AttemptError describes why a single endpoint/auth candidate was rejected.
type AttemptError struct {
	Candidate  Candidate
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *AttemptError) Error() string {
	if e.StatusCode >= 400 {
		return fmt.Sprintf("HTTP %d at %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("Exception at %s: %v", e.URL, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when every endpoint/auth candidate failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all endpoint/auth attempts failed (%d tried); last error: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
