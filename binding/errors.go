package binding

import (
	"errors"
	"fmt"
)

var (
	// ErrVariableNotFound is returned when a variable name is not declared on a
	// model or does not exist in the graph.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrInsufficientArgs is returned when a required argument is missing entirely.
	ErrInsufficientArgs = errors.New("insufficient number of arguments")

	// ErrRunInProgress is returned when Run is called on a model whose previous
	// run has not signaled completion yet.
	ErrRunInProgress = errors.New("run already in progress")

	// ErrModelClosed is returned when an operation is attempted on a closed model.
	ErrModelClosed = errors.New("model is closed")

	// ErrBuilderClosed is returned when an operation is attempted on a closed builder.
	ErrBuilderClosed = errors.New("builder is closed")

	// ErrDimsMismatch is returned when declared dims are incompatible with the graph.
	ErrDimsMismatch = errors.New("dims mismatch")

	// ErrLengthMismatch is returned by the copying data path when a flat
	// sequence does not match the buffer's element count.
	ErrLengthMismatch = errors.New("length mismatch")
)

// ArgumentError reports an invalid positional argument. Position is 1-based;
// a zero Position means the argument was missing entirely.
type ArgumentError struct {
	Position int
	Msg      string
}

func (e *ArgumentError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("graphbind: %s", ErrInsufficientArgs)
	}
	return fmt.Sprintf("graphbind: arg %d %s", e.Position, e.Msg)
}

func (e *ArgumentError) Is(target error) bool {
	return e.Position == 0 && target == ErrInsufficientArgs
}

func insufficientArgs() error {
	return &ArgumentError{}
}

func invalidArg(position int, format string, args ...any) error {
	return &ArgumentError{Position: position, Msg: fmt.Sprintf(format, args...)}
}

// LookupError reports a reference to a variable that the model does not know.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s", ErrVariableNotFound, e.Name)
}

func (e *LookupError) Unwrap() error { return ErrVariableNotFound }

// CompileError reports a declaration that failed validation against the graph.
type CompileError struct {
	Name string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile model: %s: %s", e.Err, e.Name)
}

func (e *CompileError) Unwrap() error { return e.Err }

// LengthError reports a flat data sequence whose length does not match the
// element count of the target buffer.
type LengthError struct {
	Name string
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	relation := "too long"
	if e.Got < e.Want {
		relation = "too short"
	}
	return fmt.Sprintf("data for %q is %s: want %d elements, got %d", e.Name, relation, e.Want, e.Got)
}

func (e *LengthError) Unwrap() error { return ErrLengthMismatch }

// ConcurrencyError is returned when a run is rejected because the same model
// is already running.
type ConcurrencyError struct {
	ModelID string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("model %s: previous %s", e.ModelID, ErrRunInProgress)
}

func (e *ConcurrencyError) Unwrap() error { return ErrRunInProgress }

// EngineError wraps an opaque failure reported by the inference engine. The
// engine's message is preserved verbatim.
type EngineError struct {
	Op   string
	Path string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
