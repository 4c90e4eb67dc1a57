// Package camerr defines the typed error taxonomy used at component and
// worker boundaries: InvalidInput, InvalidMachining, Transient,
// DependencyMissing, Internal. Components return plain Go errors wrapping
// one of the sentinel classes below; the worker classifies failures by
// unwrapping with errors.Is/errors.As to decide retry vs terminal Failed.
package camerr

import (
	"errors"
	"fmt"
)

// Class identifies one of the five error categories from the error
// handling design: it decides whether the worker retries a job.
type Class string

const (
	ClassInvalidInput      Class = "InvalidInput"
	ClassInvalidMachining  Class = "InvalidMachining"
	ClassTransient         Class = "Transient"
	ClassDependencyMissing Class = "DependencyMissing"
	ClassInternal          Class = "Internal"
)

// Retryable reports whether the worker should re-enqueue a job that failed
// with this class, rather than sending it straight to Failed/DLQ.
func (c Class) Retryable() bool {
	switch c {
	case ClassTransient, ClassInternal:
		return true
	default:
		return false
	}
}

// Error is a classified error carrying its taxonomy class and the
// underlying cause.
type Error struct {
	Class Class
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func new_(class Class, msg string, cause error) *Error {
	return &Error{Class: class, Msg: msg, Cause: cause}
}

func InvalidInput(msg string, args ...any) error {
	return new_(ClassInvalidInput, fmt.Sprintf(msg, args...), nil)
}

func InvalidMachining(msg string, args ...any) error {
	return new_(ClassInvalidMachining, fmt.Sprintf(msg, args...), nil)
}

func Transient(cause error, msg string, args ...any) error {
	return new_(ClassTransient, fmt.Sprintf(msg, args...), cause)
}

func DependencyMissing(msg string, args ...any) error {
	return new_(ClassDependencyMissing, fmt.Sprintf(msg, args...), nil)
}

func Internal(cause error, msg string, args ...any) error {
	return new_(ClassInternal, fmt.Sprintf(msg, args...), cause)
}

// ClassOf classifies err into one of the five taxonomy classes. Errors not
// produced by this package are treated as Internal, matching the "uncaught
// exception in geometry/G-code code" case from the error handling design.
func ClassOf(err error) Class {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ClassInternal
}

// Retryable reports whether err should be retried by the worker.
func Retryable(err error) bool {
	return ClassOf(err).Retryable()
}
