package bridge

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode classifies a bridge failure.
type ErrorCode string

const (
	// CodeTransformFailed: the markdown transformer produced no markup.
	CodeTransformFailed ErrorCode = "TransformFailed"
	// CodeMalformedRawBlock: an embedded raw markup block lacks what its
	// feature needs.
	CodeMalformedRawBlock ErrorCode = "MalformedRawBlock"
	// CodeReconstructionFailed: the markup could not be walked into a valid
	// document. Err holds the *walker.ReconstructionError.
	CodeReconstructionFailed ErrorCode = "ReconstructionFailed"
)

var (
	ErrTransformFailed      = errors.New("markdown transform failed")
	ErrMalformedRawBlock    = errors.New("malformed raw markup block")
	ErrReconstructionFailed = errors.New("markup could not be reconstructed")
)

// BridgeError reports a markdown conversion failure.
type BridgeError struct {
	Code   ErrorCode
	Tag    string
	Detail string
	Err    error
}

func (e *BridgeError) Error() string {
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

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error code.
func (e *BridgeError) Is(target error) bool {
	switch e.Code {
	case CodeTransformFailed:
		return target == ErrTransformFailed
	case CodeMalformedRawBlock:
		return target == ErrMalformedRawBlock
	case CodeReconstructionFailed:
		return target == ErrReconstructionFailed
	}
	return false
}

func malformed(tag, detail string) error {
	return &BridgeError{Code: CodeMalformedRawBlock, Tag: tag, Detail: detail}
}
