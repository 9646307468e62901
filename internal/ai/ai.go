package ai

import (
	"context"
	"errors"

	"github.com/spigell/cv-screener/internal/resume"
)

// Extractor turns raw resume text into a structured Resume.
type Extractor interface {
	Extract(ctx context.Context, text string) (*resume.Resume, error)
}

// Kind classifies a processing failure.
type Kind int

const (
	// KindInput is returned when the extractor is given empty text.
	KindInput Kind = iota + 1
	// KindTransport covers connection errors, non-2xx statuses and timeouts.
	KindTransport
	// KindParse covers unexpected response envelopes and non-JSON answers.
	KindParse
	// KindExtraction covers unreadable documents and empty extracted text.
	KindExtraction
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindExtraction:
		return "extraction"
	default:
		return "unknown"
	}
}

// Error is a recoverable processing failure. Its message is shown to end users as is.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInput:
		return "CV text is empty."
	case KindTransport:
		return "API request failed: " + e.Detail
	case KindParse:
		return "Could not parse API response."
	case KindExtraction:
		return "Could not extract text from file: " + e.Detail
	default:
		return e.Detail
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ErrEmptyText is returned for blank extractor input.
var ErrEmptyText = &Error{Kind: KindInput}

// Transport wraps a failed call to the model provider.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Detail: err.Error(), Err: err}
}

// Parse wraps an unusable model response.
func Parse(err error) *Error {
	return &Error{Kind: KindParse, Err: err}
}

// Extraction reports that no text could be read from path.
func Extraction(path string, err error) *Error {
	return &Error{Kind: KindExtraction, Detail: path, Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
