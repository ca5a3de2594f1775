package walker

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode classifies a reconstruction failure.
type ErrorCode string

const (
	CodeMissingAttribute  ErrorCode = "MissingAttribute"
	CodeMarkOrderMismatch ErrorCode = "MarkOrderMismatch"
	CodeInvalid           ErrorCode = "Invalid"
)

var (
	ErrMissingAttribute  = errors.New("missing attribute on recognized tag")
	ErrMarkOrderMismatch = errors.New("mark nesting matches no canonical order")
	ErrInvalid           = errors.New("reconstructed tree is invalid")
)

// ReconstructionError reports markup that could not be turned into a valid
// document. For CodeInvalid, Err holds the *adf.ValidationError.
type ReconstructionError struct {
	Code   ErrorCode
	Tag    string
	Detail string
	Err    error
}

func (e *ReconstructionError) Error() string {
	msg := string(e.Code)
	if e.Tag != "" {
		msg += fmt.Sprintf(" at <%s>", e.Tag)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped validation error, if any.
func (e *ReconstructionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error code.
func (e *ReconstructionError) Is(target error) bool {
	switch e.Code {
	case CodeMissingAttribute:
		return target == ErrMissingAttribute
	case CodeMarkOrderMismatch:
		return target == ErrMarkOrderMismatch
	case CodeInvalid:
		return target == ErrInvalid
	}
	return false
}

func missingAttr(tag, attr string) error {
	return &ReconstructionError{Code: CodeMissingAttribute, Tag: tag, Detail: attr}
}
