package ast

import "github.com/funvibe/quackc/internal/hierarchy"

// Root is the top-level AST node produced for one compilation: the class
// declarations plus the bare top-level statements.
type Root struct {
	Base
	Program *Program
}

// Program holds the class declarations and the bare statement block that
// follows them in source order.
type Program struct {
	Base
	Classes []*ClassDecl
	Bare    *BareStatementBlock
}

// ClassDecl is one `class Name(args) [extends Parent] { ... }`
// declaration. Fields is populated in constructor-assignment order by
// the type-check pass and becomes the class's field list at the end of
// the constructor pass (C5 scope-seeding rule).
type ClassDecl struct {
	Base
	Signature   *ClassSignature
	Constructor *ConstructorBlock
	Methods     *MethodBlock

	// Populated by C5:
	Fields []hierarchy.FieldDesc
}

func (c *ClassDecl) Name() string  { return c.Signature.Name }
func (c *ClassDecl) Super() string { return c.Signature.Super }

// ClassSignature carries the class's name, declared superclass (defaults
// to "Obj" when absent in source), and constructor formal arguments.
type ClassSignature struct {
	Base
	Name  string
	Super string
	Args  *FormalArgs
}

// ConstructorBlock is the sequence of statements inside a class's
// constructor. Assignment to this.x here is what registers a field.
type ConstructorBlock struct {
	Base
	Stmts []Stmt

	// Populated by C4: names definitely assigned (params, locals,
	// "this."+field) by the end of the constructor.
	Initialized []string
}

// MethodBlock groups a class's method declarations.
type MethodBlock struct {
	Base
	Methods []*MethodDecl
}

// MethodDecl is one `def name(args)[: Type] { ... }`.
type MethodDecl struct {
	Base
	Name       string
	Args       *FormalArgs
	DeclaredRet string // "" means unspecified; C5 treats as Obj|Nothing
	Body       *StatementBlock

	// Populated by C5: the owning class. The emitter does not read it.
	Owner string
	// Populated by C4:
	Initialized []string
}

// FormalArgs is an ordered parameter list: names paired with declared
// types.
type FormalArgs struct {
	Base
	Names []string
	Types []string
}

// StatementBlock is a braced sequence of statements inside a method,
// constructor, if-arm, or while-body.
type StatementBlock struct {
	Base
	Stmts []Stmt

	// Populated by C5: the lca-joined type contributed by this block's
	// return-bearing children (If/While/Return), "" if none return.
	Contributed string
}

// BareStatementBlock is the sequence of statements outside any class,
// compiled as the body of the synthetic main module's constructor.
type BareStatementBlock struct {
	Base
	Stmts []Stmt

	Initialized []string
}

