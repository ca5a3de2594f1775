package adf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCode classifies a validation failure.
type ErrorCode string

const (
	CodeMissingAttribute     ErrorCode = "MissingAttribute"
	CodeInvalidAttribute     ErrorCode = "InvalidAttribute"
	CodeInvalidChildKind     ErrorCode = "InvalidChildKind"
	CodeDuplicateMark        ErrorCode = "DuplicateMark"
	CodeEmptyRequiredContent ErrorCode = "EmptyRequiredContent"
	CodeInvalidMark          ErrorCode = "InvalidMark"
)

// Sentinels matched by errors.Is against a *ValidationError.
var (
	ErrMissingAttribute     = errors.New("missing attribute")
	ErrInvalidAttribute     = errors.New("invalid attribute")
	ErrInvalidChildKind     = errors.New("invalid child kind")
	ErrDuplicateMark        = errors.New("duplicate mark")
	ErrEmptyRequiredContent = errors.New("empty required content")
	ErrInvalidMark          = errors.New("invalid mark")
)

var sentinels = map[ErrorCode]error{
	CodeMissingAttribute:     ErrMissingAttribute,
	CodeInvalidAttribute:     ErrInvalidAttribute,
	CodeInvalidChildKind:     ErrInvalidChildKind,
	CodeDuplicateMark:        ErrDuplicateMark,
	CodeEmptyRequiredContent: ErrEmptyRequiredContent,
	CodeInvalidMark:          ErrInvalidMark,
}

// Path locates a node by child indices from the root. The root is the empty path.
type Path []int

func (p Path) String() string {
	var b strings.Builder
	b.WriteString("doc")
	for _, i := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Child returns a new path extended by index i.
func (p Path) Child(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

// ValidationError reports the first structural violation found in a tree.
type ValidationError struct {
	Code ErrorCode
	Path Path
	Type NodeType
	// Name is the offending attribute, mark or child kind.
	Name   string
	Detail string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s at %s (%s)", e.Code, e.Path, e.Type)
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes the sentinel for the error code.
func (e *ValidationError) Unwrap() error {
	return sentinels[e.Code]
}

func newValidationError(code ErrorCode, path Path, t NodeType, name, detail string) *ValidationError {
	p := make(Path, len(path))
	copy(p, path)
	return &ValidationError{Code: code, Path: p, Type: t, Name: name, Detail: detail}
}
