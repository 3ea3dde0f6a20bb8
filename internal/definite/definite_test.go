package definite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/quackc/internal/ast"
	"github.com/funvibe/quackc/internal/diagnostics"
)

func hasCode(bag *diagnostics.Bag, code diagnostics.Code) bool {
	for _, e := range bag.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestSetIntersectJoinsOnlyCommonNames(t *testing.T) {
	a := NewSet()
	a.Add("x")
	a.Add("y")
	b := NewSet()
	b.Add("y")
	b.Add("z")

	joined := a.Intersect(b)
	assert.Equal(t, []string{"y"}, joined.Names())
}

func TestSetNamesSorted(t *testing.T) {
	s := NewSet()
	s.Add("z")
	s.Add("a")
	s.Add("m")
	assert.Equal(t, []string{"a", "m", "z"}, s.Names())
}

func TestUseBeforeInitIsReported(t *testing.T) {
	bag := &diagnostics.Bag{}
	root := &ast.Root{Program: &ast.Program{
		Bare: &ast.BareStatementBlock{Stmts: []ast.Stmt{
			&ast.BareExprStmt{X: &ast.VarReference{Name: "x"}},
		}},
	}}
	New(bag).CheckRoot(root)
	assert.True(t, hasCode(bag, diagnostics.ErrUseBeforeInit))
}

func TestAssignmentThenUseIsClean(t *testing.T) {
	bag := &diagnostics.Bag{}
	root := &ast.Root{Program: &ast.Program{
		Bare: &ast.BareStatementBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.VarReference{Name: "x"}, Rhs: &ast.IntLiteral{Value: 1}},
			&ast.BareExprStmt{X: &ast.VarReference{Name: "x"}},
		}},
	}}
	New(bag).CheckRoot(root)
	assert.False(t, bag.HasErrors())
}

func TestReturnInsideConstructorIsRejected(t *testing.T) {
	bag := &diagnostics.Bag{}
	cls := &ast.ClassDecl{
		Signature:   &ast.ClassSignature{Name: "C", Super: "Obj", Args: &ast.FormalArgs{}},
		Constructor: &ast.ConstructorBlock{Stmts: []ast.Stmt{&ast.ReturnStatement{Value: &ast.IntLiteral{Value: 1}}}},
		Methods:     &ast.MethodBlock{},
	}
	root := &ast.Root{Program: &ast.Program{
		Classes: []*ast.ClassDecl{cls},
		Bare:    &ast.BareStatementBlock{},
	}}
	New(bag).CheckRoot(root)
	assert.True(t, hasCode(bag, diagnostics.ErrReturnInCtor))
}

func TestFieldAssignmentOutsideConstructorIsRejected(t *testing.T) {
	bag := &diagnostics.Bag{}
	method := &ast.MethodDecl{
		Name: "poke",
		Args: &ast.FormalArgs{},
		Body: &ast.StatementBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.ThisFieldReference{Name: "x"}, Rhs: &ast.IntLiteral{Value: 1}},
		}},
	}
	cls := &ast.ClassDecl{
		Signature:   &ast.ClassSignature{Name: "C", Super: "Obj", Args: &ast.FormalArgs{}},
		Constructor: &ast.ConstructorBlock{},
		Methods:     &ast.MethodBlock{Methods: []*ast.MethodDecl{method}},
	}
	root := &ast.Root{Program: &ast.Program{
		Classes: []*ast.ClassDecl{cls},
		Bare:    &ast.BareStatementBlock{},
	}}
	New(bag).CheckRoot(root)
	assert.True(t, hasCode(bag, diagnostics.ErrAssignFieldOutsideCtor))
}

func TestIfBothArmsJoinOnlyCommonBindings(t *testing.T) {
	bag := &diagnostics.Bag{}
	ifStmt := &ast.If{
		Cond: &ast.BoolLiteral{Value: true},
		Then: &ast.StatementBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.VarReference{Name: "x"}, Rhs: &ast.IntLiteral{Value: 1}},
		}},
		Else: &ast.StatementBlock{Stmts: []ast.Stmt{}},
	}
	root := &ast.Root{Program: &ast.Program{
		Bare: &ast.BareStatementBlock{Stmts: []ast.Stmt{
			ifStmt,
			&ast.BareExprStmt{X: &ast.VarReference{Name: "x"}},
		}},
	}}
	New(bag).CheckRoot(root)
	assert.True(t, hasCode(bag, diagnostics.ErrUseBeforeInit),
		"x is only bound on the then-arm, so it must not be definitely assigned after the if")
}

func TestIfBothArmsBindSameNameIsDefinite(t *testing.T) {
	bag := &diagnostics.Bag{}
	ifStmt := &ast.If{
		Cond: &ast.BoolLiteral{Value: true},
		Then: &ast.StatementBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.VarReference{Name: "x"}, Rhs: &ast.IntLiteral{Value: 1}},
		}},
		Else: &ast.StatementBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.VarReference{Name: "x"}, Rhs: &ast.IntLiteral{Value: 2}},
		}},
	}
	root := &ast.Root{Program: &ast.Program{
		Bare: &ast.BareStatementBlock{Stmts: []ast.Stmt{
			ifStmt,
			&ast.BareExprStmt{X: &ast.VarReference{Name: "x"}},
		}},
	}}
	New(bag).CheckRoot(root)
	assert.False(t, bag.HasErrors())
}

// S2 — `if c { x: Int = 1; } else { x: String = "a"; } y = x;`: x is bound
// on both arms, but the arms declare it with incompatible types, so it
// must not be treated as definitely assigned after the if.
func TestIfArmsWithIncompatibleDeclaredTypesIsNotDefinite(t *testing.T) {
	bag := &diagnostics.Bag{}
	ifStmt := &ast.If{
		Cond: &ast.BoolLiteral{Value: true},
		Then: &ast.StatementBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.VarReference{Name: "x"}, Declared: "Int", Rhs: &ast.IntLiteral{Value: 1}},
		}},
		Else: &ast.StatementBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.VarReference{Name: "x"}, Declared: "String", Rhs: &ast.StringLiteral{Value: "a"}},
		}},
	}
	root := &ast.Root{Program: &ast.Program{
		Bare: &ast.BareStatementBlock{Stmts: []ast.Stmt{
			ifStmt,
			&ast.Assignment{Target: &ast.VarReference{Name: "y"}, Rhs: &ast.VarReference{Name: "x"}},
		}},
	}}
	New(bag).CheckRoot(root)
	assert.True(t, hasCode(bag, diagnostics.ErrUseBeforeInit),
		"x's arms declare incompatible types, so it is not definitely assigned after the if")
}

func TestWhileBodyBindingIsNotGuaranteed(t *testing.T) {
	bag := &diagnostics.Bag{}
	whileStmt := &ast.While{
		Cond: &ast.BoolLiteral{Value: true},
		Body: &ast.StatementBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.VarReference{Name: "x"}, Rhs: &ast.IntLiteral{Value: 1}},
		}},
	}
	root := &ast.Root{Program: &ast.Program{
		Bare: &ast.BareStatementBlock{Stmts: []ast.Stmt{
			whileStmt,
			&ast.BareExprStmt{X: &ast.VarReference{Name: "x"}},
		}},
	}}
	New(bag).CheckRoot(root)
	assert.True(t, hasCode(bag, diagnostics.ErrUseBeforeInit),
		"a loop body may run zero times, so x must not be considered definitely assigned after the loop")
}

func TestConstructorInitializedIncludesThisPrefixedFields(t *testing.T) {
	bag := &diagnostics.Bag{}
	cls := &ast.ClassDecl{
		Signature: &ast.ClassSignature{Name: "C", Super: "Obj", Args: &ast.FormalArgs{}},
		Constructor: &ast.ConstructorBlock{Stmts: []ast.Stmt{
			&ast.Assignment{Target: &ast.ThisFieldReference{Name: "x"}, Rhs: &ast.IntLiteral{Value: 1}},
		}},
		Methods: &ast.MethodBlock{},
	}
	root := &ast.Root{Program: &ast.Program{Classes: []*ast.ClassDecl{cls}, Bare: &ast.BareStatementBlock{}}}
	New(bag).CheckRoot(root)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []string{"this.x"}, cls.Constructor.Initialized)
}
