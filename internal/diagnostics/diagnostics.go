// Package diagnostics defines the coded error type shared by every pass of
// the Quack compiler, from definite-assignment through emission.
package diagnostics

import "fmt"

// Code identifies the surface error kind, matching the taxonomy of the
// language specification's error-handling design.
type Code string

const (
	ErrParseError             Code = "ParseError"
	ErrUseBeforeInit          Code = "UseBeforeInit"
	ErrAssignFieldOutsideCtor Code = "AssignFieldOutsideCtor"
	ErrReturnInCtor           Code = "ReturnInCtor"
	ErrInvalidType            Code = "InvalidType"
	ErrTypeMismatch           Code = "TypeMismatch"
	ErrMethodNotFound         Code = "MethodNotFound"
	ErrFieldNotFound          Code = "FieldNotFound"
	ErrArityMismatch          Code = "ArityMismatch"
	ErrArgumentTypeMismatch   Code = "ArgumentTypeMismatch"
	ErrBadOverride            Code = "BadOverride"
	ErrMissingSuperField      Code = "MissingSuperField"
)

// Position is a best-effort source location. The concrete parser is the
// collaborator that stamps AST nodes with real positions; a zero Position
// means "unknown" and is rendered without a location suffix.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string {
	if p.Line == 0 {
		return ""
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Error is a fatal, reported compiler diagnostic. All errors in this
// compiler are fatal: there is no local recovery, only propagation to the
// driver that reports and exits non-zero.
type Error struct {
	Code    Code
	Pos     Position
	Message string
}

func New(code Code, pos Position, format string, args ...interface{}) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	loc := e.Pos.String()
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Message)
}

// Bag collects diagnostics across one or more passes, the way a single
// analyzer run accumulates errors from several files before reporting.
type Bag struct {
	Errors []*Error
}

func (b *Bag) Add(err *Error) {
	if err == nil {
		return
	}
	b.Errors = append(b.Errors, err)
}

func (b *Bag) HasErrors() bool { return len(b.Errors) > 0 }
