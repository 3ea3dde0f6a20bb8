// Package ast defines the Quack abstract syntax tree: a closed set of
// tagged node variants (C2). Ownership is strictly tree-shaped — no node
// is shared between two parents, no back-pointers.
//
// Each pass (definite-assignment, type inference, code emission) is
// implemented as a type switch over these variants rather than as a
// classic Visitor with one interface method per node kind: with nearly
// thirty variants and five partial operations, a full double-dispatch
// Visitor would multiply into well over a hundred near-empty
// methods. A type switch keeps the "which operations are defined for
// which variant" contract exactly as explicit — a variant a pass does
// not handle falls through to that switch's default case — while matching how this codebase's teacher
// itself falls back to type switches for narrower per-pass concerns (see
// e.g. internal/analyzer/helpers.go's implicitGenericVisitor). See
// DESIGN.md for the full rationale.
package ast

// Pos is a best-effort source position. The concrete parser collaborator
// is expected to stamp every node it builds; a zero Pos is tolerated.
type Pos struct {
	Line int
	Col  int
}

// Base is embedded by every node. It carries the node's position and,
// for expression nodes, the type annotation written by the type-check
// pass (C5) — mutable exactly once per carrier's fixpoint round.
type Base struct {
	P   Pos
	Typ string // set by type_eval; "" until then
}

func (b *Base) Position() Pos     { return b.P }
func (b *Base) Type() string      { return b.Typ }
func (b *Base) SetType(t string)  { b.Typ = t }

// Node is the common contract every AST node satisfies.
type Node interface {
	Position() Pos
}

// Stmt tags statement-kind nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr tags expression-kind (right-evaluable) nodes. Every Expr carries a
// type annotation slot, filled in by C5.
type Expr interface {
	Node
	exprNode()
	Type() string
	SetType(string)
}

// LValue tags the subset of expressions that may appear as an
// assignment target: VarReference, ThisFieldReference, FieldReference.
type LValue interface {
	Expr
	lvalueNode()
}
