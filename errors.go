package lsystem

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Error is a failure located in an L-system definition.
//
// Line and Col point into the definition text (zero when the failure isn't tied
// to a position, e.g. while rewriting). File and FileLine identify the check in
// this code base that raised it.
type Error struct {
	Msg      string
	Line     int
	Col      int
	File     string
	FileLine int

	cause error
}

// Errorf builds an Error at line:col. skip counts the stack frames above the
// caller to attribute it to, 0 being the direct caller of Errorf.
func Errorf(skip, line, col int, format string, args ...interface{}) *Error {
	return newError(skip+1, line, col, nil, format, args...)
}

// WrapError is Errorf keeping cause reachable through errors.Is/As.
func WrapError(cause error, skip, line, col int, format string, args ...interface{}) *Error {
	return newError(skip+1, line, col, cause, format, args...)
}

func newError(skip, line, col int, cause error, format string, args ...interface{}) *Error {
	e := &Error{
		Msg:   fmt.Sprintf(format, args...),
		Line:  line,
		Col:   col,
		cause: cause,
	}
	if _, file, fileLine, ok := runtime.Caller(skip + 1); ok {
		e.File = filepath.Base(file)
		e.FileLine = fileLine
	}
	return e
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d, col %d: %s", e.Line, e.Col, msg)
	}
	if e.File != "" {
		msg = fmt.Sprintf("%s [%s:%d]", msg, e.File, e.FileLine)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}
