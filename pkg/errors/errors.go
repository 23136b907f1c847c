// Package errors provides structured error handling for storesync.
//
// Validation failures are returned to callers as *SelectError values that
// match ErrInvalidArgument or ErrMissingContext under errors.Is. Development
// diagnostics (unstable selectors, identity selectors) are never returned as
// errors; they are reported to the global ErrorHandler as *Diagnostic values.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidArgument indicates a missing or unusable selector or
	// equality function.
	KindInvalidArgument
	// KindMissingContext indicates that no store context was provided to
	// a binding.
	KindMissingContext
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindMissingContext:
		return "missing context"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidArgument matches every KindInvalidArgument error.
	ErrInvalidArgument = stderrors.New("invalid argument")
	// ErrMissingContext matches every KindMissingContext error.
	ErrMissingContext = stderrors.New("missing store context")
)

// SelectError represents a structured error returned by a selection binding.
type SelectError struct {
	// Op is the operation that failed (e.g., "selector.Select").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SelectError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SelectError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels so callers can test with errors.Is.
func (e *SelectError) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrMissingContext:
		return e.Kind == KindMissingContext
	}
	return false
}

// InvalidArgument builds a KindInvalidArgument error for op.
func InvalidArgument(op, format string, args ...any) *SelectError {
	return &SelectError{
		Op:        op,
		Kind:      KindInvalidArgument,
		Err:       fmt.Errorf(format, args...),
		Timestamp: time.Now(),
	}
}

// MissingContext builds a KindMissingContext error for op.
func MissingContext(op string) *SelectError {
	return &SelectError{
		Op:        op,
		Kind:      KindMissingContext,
		Err:       stderrors.New("could not find store context; wrap the component in a provider"),
		Timestamp: time.Now(),
	}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.FlushBuild").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// BuildError represents a failure during a component build.
type BuildError struct {
	// Component is the type name of the component that failed.
	Component string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Build(): %v", e.Component, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Build(): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Build()", e.Component)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// DiagnosticKind identifies a development-mode diagnostic.
type DiagnosticKind int

const (
	// DiagnosticUnstableSelector means a selector returned different results
	// for the same input.
	DiagnosticUnstableSelector DiagnosticKind = iota + 1
	// DiagnosticIdentitySelector means a selector returned its whole input.
	DiagnosticIdentitySelector
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticUnstableSelector:
		return "unstable selector"
	case DiagnosticIdentitySelector:
		return "identity selector"
	default:
		return "unknown"
	}
}

// Diagnostic is a development-mode warning. It never affects control flow.
type Diagnostic struct {
	Kind DiagnosticKind
	// Selector is the diagnostic label of the selector, or "unknown".
	Selector string
	// Message is the human readable warning.
	Message string
	// StackTrace locates the offending call.
	StackTrace string
	Timestamp  time.Time
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("selector %s: %s", d.Selector, d.Message)
}

// ErrorHandler receives errors reported by storesync.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *SelectError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a component build fails.
	HandleBuildError(err *BuildError)
	// HandleDiagnostic is called for development-mode warnings.
	HandleDiagnostic(d *Diagnostic)
}
