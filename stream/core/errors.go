package core

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Misuse conditions. They are raised by panicking with a *MisuseError that
// wraps one of these, so errors.Is works on the value recovered by Catch.
var (
	// ErrReentrantDrive is raised when a partition hub is asked to pull its
	// upstream while it is already pulling, e.g. a sorter or upstream mapper
	// consuming another partition of the same hub.
	ErrReentrantDrive = errors.New("partition hub driven re-entrantly")

	// ErrNotPair is raised when unzipping an element that is not a pair.
	ErrNotPair = errors.New("element is not a pair")

	// ErrZeroStep is raised by Range and Step with a zero step.
	ErrZeroStep = errors.New("step must be non-zero")

	// ErrInvalidSize is raised by grouping operations with a non-positive size.
	ErrInvalidSize = errors.New("size must be positive")
)

// MisuseError reports an operation that was called in a way the engine
// cannot honor. It is always delivered by panic.
type MisuseError struct {
	Op  string
	Err error
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("stream: %s: %v", e.Op, e.Err)
}

func (e *MisuseError) Unwrap() error { return e.Err }

func misuse(op string, err error) *MisuseError {
	return &MisuseError{Op: op, Err: err}
}

// ErrPanic wraps a recovered panic value as an error.
// It includes a cleaned-up stack trace that excludes internal min-stream frames.
type ErrPanic struct {
	Value any
	Stack string // Cleaned stack trace
}

func (e ErrPanic) Error() string {
	if e.Stack != "" {
		return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// NewPanicError creates an ErrPanic from a recovered value with a cleaned stack trace.
func NewPanicError(recovered any) ErrPanic {
	return ErrPanic{
		Value: recovered,
		Stack: cleanStack(captureStack(4)), // skip: runtime.Callers, captureStack, NewPanicError, defer func
	}
}

// Catch runs fn and converts a panic raised inside it into an error.
// Panic values that already are errors (including *MisuseError) are
// returned as they are; anything else is wrapped in an ErrPanic.
//
// A Stream whose callback panicked is in an unspecified state and must not
// be consumed further.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = NewPanicError(r)
		}
	}()
	fn()
	return nil
}

// captureStack returns the current stack trace as a string.
func captureStack(skip int) string {
	const maxFrames = 32
	var pcs [maxFrames]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder

	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}

	return sb.String()
}

// cleanStack removes internal min-stream frames from a stack trace.
func cleanStack(stack string) string {
	lines := strings.Split(stack, "\n")
	var result []string
	var skipNext bool

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Function lines are unindented; file:line lines start with a tab.
		if !strings.HasPrefix(line, "\t") {
			if strings.Contains(line, "github.com/lguimbarda/min-stream/stream/") {
				skipNext = true
				continue
			}
			skipNext = false
		} else if skipNext {
			continue
		}

		result = append(result, line)
	}

	return strings.Join(result, "\n")
}
