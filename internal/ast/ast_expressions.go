package ast

// IntLiteral is a literal integer, fixed type Int.
type IntLiteral struct {
	Base
	Value int64
}

// StringLiteral is a literal string, fixed type String. Value holds the
// already-unescaped text.
type StringLiteral struct {
	Base
	Value string
}

// BoolLiteral is `true` or `false`, fixed type Boolean.
type BoolLiteral struct {
	Base
	Value bool
}

// VarReference reads (or, as an LValue, is assigned to) a local variable
// or parameter by name.
type VarReference struct {
	Base
	Name string
}

// ThisFieldReference reads (or is assigned to) `this.Name` inside a
// constructor or method.
type ThisFieldReference struct {
	Base
	Name string
}

// FieldReference is `expr.Name`, reading (or, as an LValue, assigning) a
// field on an arbitrary receiver expression.
type FieldReference struct {
	Base
	Recv Expr
	Name string
}

// MethodCall is `recv.Method(args...)`. DefiningClass is filled in by C5
// with the class that actually defines Method (found by walking recv's
// static type toward the root), so emission can route the call to the
// class that defines it rather than recv's static type.
//
// Operator is true when this call is itself the desugaring of a binary
// arithmetic/comparison operator or unary negation (built in
// internal/astbuild from a BinaryExpr/UnaryExpr), as opposed to a
// user-written `recv.method(args)` call. §4.6 gives these two shapes
// different evaluation orders: an operator call emits the receiver
// (left operand) then its single argument (right operand) then the
// call, while a plain MethodCall emits its arguments then the receiver
// then the call.
type MethodCall struct {
	Base
	Recv          Expr
	Method        string
	Args          []Expr
	DefiningClass string
	Operator      bool
}

// ConstructorCall is `ClassName(args...)`.
type ConstructorCall struct {
	Base
	Class string
	Args  []Expr
}

// And is short-circuiting logical conjunction.
type And struct {
	Base
	Left, Right Expr
}

// Or is short-circuiting logical disjunction.
type Or struct {
	Base
	Left, Right Expr
}

// Not is logical negation.
type Not struct {
	Base
	X Expr
}

// IsInstance is `expr isinstance T` used both as a value (via Boolean's
// synthesized value) and, more commonly, directly in a branch context
// (typecase lowering always uses it this way).
type IsInstance struct {
	Base
	X    Expr
	Type string
}

func (*IntLiteral) exprNode()         {}
func (*StringLiteral) exprNode()      {}
func (*BoolLiteral) exprNode()        {}
func (*VarReference) exprNode()       {}
func (*ThisFieldReference) exprNode() {}
func (*FieldReference) exprNode()     {}
func (*MethodCall) exprNode()         {}
func (*ConstructorCall) exprNode()    {}
func (*And) exprNode()                {}
func (*Or) exprNode()                 {}
func (*Not) exprNode()                {}
func (*IsInstance) exprNode()         {}

func (*VarReference) lvalueNode()       {}
func (*ThisFieldReference) lvalueNode() {}
func (*FieldReference) lvalueNode()     {}
