package bore

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	KindSyntax Kind = iota + 1
	KindExpression
	KindStructure
	KindValue
	KindIO
)

// Sentinels for errors.Is matching against a Kind.
var (
	ErrSyntax     = errors.New("syntax error")
	ErrExpression = errors.New("expression error")
	ErrStructure  = errors.New("structure error")
	ErrValue      = errors.New("value error")
	ErrIO         = errors.New("io error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindExpression:
		return ErrExpression
	case KindStructure:
		return ErrStructure
	case KindValue:
		return ErrValue
	case KindIO:
		return ErrIO
	}
	return nil
}

// String returns the human readable kind name.
func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the typed failure returned by every layer. File and Line are
// optional context; Err is the optional underlying cause.
type Error struct {
	Kind Kind
	File string
	Line int
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "%d:", e.Line)
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(e.Kind.String())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the kind sentinel and the cause, so errors.Is works
// for either.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind Kind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Syntaxf reports an unrecognized token or line shape.
func Syntaxf(line int, format string, args ...any) *Error {
	return newError(KindSyntax, line, format, args...)
}

// Structuref reports a topology or document-shape violation.
func Structuref(line int, format string, args ...any) *Error {
	return newError(KindStructure, line, format, args...)
}

// Valuef reports an out-of-range physical quantity.
func Valuef(line int, format string, args ...any) *Error {
	return newError(KindValue, line, format, args...)
}

// Expression wraps an evaluator failure.
func Expression(line int, src string, err error) *Error {
	return &Error{Kind: KindExpression, Line: line, Msg: fmt.Sprintf("cannot evaluate %q", src), Err: err}
}

// IO wraps a file system failure for path.
func IO(path string, err error) *Error {
	return &Error{Kind: KindIO, File: path, Err: err}
}

// WithFile attaches a file name to err when it is an *Error without one.
// Other errors are returned unchanged.
func WithFile(err error, file string) error {
	var be *Error
	if file == "" || !errors.As(err, &be) || be.File != "" {
		return err
	}
	cp := *be
	cp.File = file
	return &cp
}

// KindOf returns the Kind of err, or 0 when err carries none.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}
