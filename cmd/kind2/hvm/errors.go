package hvm

import "errors"

var (
	ErrParse          = errors.New("parse error")
	ErrArity          = errors.New("arity mismatch")
	ErrUnboundVar     = errors.New("unbound variable")
	ErrDuplicateVar   = errors.New("duplicate variable")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrUnknownName    = errors.New("unknown name")
	ErrOutOfMemory    = errors.New("node budget exhausted")
	ErrDivByZero      = errors.New("division by zero")
)
