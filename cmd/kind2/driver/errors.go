package driver

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrFileRead       = errors.New("cannot read source file")
	ErrCompile        = errors.New("compilation failed")
	ErrMissingSymbol  = errors.New("missing symbol")
	ErrAlloc          = errors.New("allocation failed")
	ErrEngine         = errors.New("engine failure")
	ErrDecode         = errors.New("malformed output")
)

// FileReadError reports that the user's source file could not be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string        { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *FileReadError) Unwrap() error        { return e.Err }
func (e *FileReadError) Is(target error) bool { return target == ErrFileRead }

// CompileError wraps an error returned by Engine.Compile.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string        { return fmt.Sprintf("%v: %v", ErrCompile, e.Err) }
func (e *CompileError) Unwrap() error        { return e.Err }
func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// MissingSymbolError reports a constructor the driver relies on that the
// compiled program does not define.
type MissingSymbolError struct {
	Name string
}

func (e *MissingSymbolError) Error() string {
	return fmt.Sprintf("%v: %s is not defined by the program", ErrMissingSymbol, e.Name)
}
func (e *MissingSymbolError) Is(target error) bool { return target == ErrMissingSymbol }

// AllocError wraps an error returned by Engine.Alloc, typically an unknown
// entry point.
type AllocError struct {
	Entry string
	Err   error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("%v: calling %s: %v", ErrAlloc, e.Entry, e.Err)
}
func (e *AllocError) Unwrap() error        { return e.Err }
func (e *AllocError) Is(target error) bool { return target == ErrAlloc }

// EngineError reports a failure during reduction: a runtime fault returned
// by the engine or a panic raised inside it.
type EngineError struct {
	Err   error
	Panic any
}

func (e *EngineError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%v: panic: %v", ErrEngine, e.Panic)
	}
	return fmt.Sprintf("%v: %v", ErrEngine, e.Err)
}
func (e *EngineError) Unwrap() error        { return e.Err }
func (e *EngineError) Is(target error) bool { return target == ErrEngine }

// DecodeError reports that the reduced graph is not a well-formed string.
// Index is the position in the list where the walk stopped.
type DecodeError struct {
	Index  int
	Reason string
	Kind   NodeKind
	ID     uint64
	Name   string
	Arity  int
	Shape  string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%v at cell %d: %s", ErrDecode, e.Index, e.Reason)
	if e.Shape != "" {
		return msg + ": " + e.Shape
	}
	switch e.Kind {
	case KindCtr, KindCall:
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("#%d", e.ID)
		}
		return fmt.Sprintf("%s: %s %s/%d", msg, e.Kind, name, e.Arity)
	}
	return fmt.Sprintf("%s: %s", msg, e.Kind)
}
func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
