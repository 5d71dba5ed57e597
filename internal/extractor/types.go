package extractor

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("no messages from target")

	// ErrInvalidEncoding is returned by ReadTranscript for non-UTF-8 input.
	ErrInvalidEncoding = errors.New("transcript is not valid UTF-8")
)

// NotFoundError reports that no transcript line was attributed to Target.
// It is not retryable: a misspelled name or a foreign export format is the
// expected cause.
type NotFoundError struct {
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no messages from %q in transcript", e.Target)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Line is one recognized transcript line.
type Line struct {
	Sender  string // as written in the export
	Body    string // trimmed
	Pattern string // name of the pattern that matched
}
