package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionFailed marks a turn where the completion service could not extract fields.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrGenerationFailed marks a question generation that fell back to the bank.
	ErrGenerationFailed = errors.New("question generation failed")
	// ErrProtocol marks a message that arrived when nothing could accept it.
	ErrProtocol = errors.New("protocol error")
)

// FatalSessionError is returned when the session state is inconsistent.
// The session is ended with reason error and is never repaired.
type FatalSessionError struct {
	SessionID string
	Reason    string
	Err       error
}

func (e *FatalSessionError) Error() string {
	msg := fmt.Sprintf("session %s is inconsistent: %s", e.SessionID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FatalSessionError) Unwrap() error {
	return e.Err
}
