package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies why a run failed.
type Kind int

const (
	KindUnexpected Kind = iota
	KindMissingCredential
	KindMissingURL
	KindMalformedURL
	KindLoad
	KindSummarization
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing credential"
	case KindMissingURL:
		return "missing URL"
	case KindMalformedURL:
		return "malformed URL"
	case KindLoad:
		return "load error"
	case KindSummarization:
		return "summarization error"
	default:
		return "unexpected error"
	}
}

// IsValidation reports whether the kind is raised before any network I/O.
func (k Kind) IsValidation() bool {
	switch k {
	case KindMissingCredential, KindMissingURL, KindMalformedURL:
		return true
	default:
		return false
	}
}

var (
	errEmptyCredential = errors.New("credential is empty")
	errEmptyURL        = errors.New("URL is empty")
)

type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a pipeline error, or KindUnexpected for
// anything else.
func KindOf(err error) Kind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}

	return KindUnexpected
}
