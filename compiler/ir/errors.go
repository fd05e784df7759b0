package ir

import "tlog.app/go/errors"

// Error kinds. Every one aborts the compilation. Match with errors.Is.
var (
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrUndefinedVariable    = errors.New("undefined variable")
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	ErrInvalidOperandKind   = errors.New("invalid operand kind")
	ErrScopeUnderflow       = errors.New("scope underflow")
)
