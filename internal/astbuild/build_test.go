package astbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/quackc/internal/ast"
	"github.com/funvibe/quackc/internal/config"
	"github.com/funvibe/quackc/internal/parsetree"
)

func TestBuildDefaultsMissingSuperToObj(t *testing.T) {
	prog := &parsetree.Program{Classes: []*parsetree.Class{{Name: "Widget"}}}
	root := New().Build(prog)
	assert.Equal(t, "Obj", root.Program.Classes[0].Super())
}

func TestBuildDesugarsArithmeticIntoMethodCall(t *testing.T) {
	prog := &parsetree.Program{Bare: []parsetree.Stmt{
		&parsetree.ExprStmt{Value: &parsetree.BinaryExpr{
			Op:    parsetree.OpPlus,
			Left:  &parsetree.NameExpr{Name: "x"},
			Right: &parsetree.IntExpr{Value: 1},
		}},
	}}
	root := New().Build(prog)
	require.Len(t, root.Program.Bare.Stmts, 1)

	stmt := root.Program.Bare.Stmts[0].(*ast.BareExprStmt)
	call, ok := stmt.X.(*ast.MethodCall)
	require.True(t, ok, "binary + must desugar into a MethodCall")
	assert.Equal(t, config.MethodPlus, call.Method)
	assert.IsType(t, &ast.VarReference{}, call.Recv)
	require.Len(t, call.Args, 1)
	assert.IsType(t, &ast.IntLiteral{}, call.Args[0])
	assert.True(t, call.Operator, "a desugared operator call must be marked as such for emission order")
}

func TestBuildKeepsAndOrAsDistinctNodes(t *testing.T) {
	prog := &parsetree.Program{Bare: []parsetree.Stmt{
		&parsetree.ExprStmt{Value: &parsetree.BinaryExpr{
			Op:    parsetree.OpAnd,
			Left:  &parsetree.BoolExpr{Value: true},
			Right: &parsetree.BoolExpr{Value: false},
		}},
	}}
	root := New().Build(prog)
	stmt := root.Program.Bare.Stmts[0].(*ast.BareExprStmt)
	assert.IsType(t, &ast.And{}, stmt.X, "and/or must not be desugared into MethodCall nodes")
}

func TestBuildUnaryNegationLowersToZeroMinus(t *testing.T) {
	prog := &parsetree.Program{Bare: []parsetree.Stmt{
		&parsetree.ExprStmt{Value: &parsetree.UnaryExpr{Op: parsetree.OpNeg, X: &parsetree.NameExpr{Name: "x"}}},
	}}
	root := New().Build(prog)
	stmt := root.Program.Bare.Stmts[0].(*ast.BareExprStmt)
	call := stmt.X.(*ast.MethodCall)
	assert.Equal(t, config.MethodMinus, call.Method)
	lit, ok := call.Recv.(*ast.IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(0), lit.Value)
	assert.True(t, call.Operator, "unary negation desugars to an operator call too")
}

func TestBuildBareExprStmtVsClassExprStmt(t *testing.T) {
	bare := &parsetree.Program{Bare: []parsetree.Stmt{
		&parsetree.ExprStmt{Value: &parsetree.IntExpr{Value: 1}},
	}}
	root := New().Build(bare)
	assert.IsType(t, &ast.BareExprStmt{}, root.Program.Bare.Stmts[0])

	inClass := &parsetree.Program{Classes: []*parsetree.Class{{
		Name: "C",
		CtorStmts: []parsetree.Stmt{
			&parsetree.ExprStmt{Value: &parsetree.IntExpr{Value: 1}},
		},
	}}}
	root = New().Build(inClass)
	assert.IsType(t, &ast.ExprStmt{}, root.Program.Classes[0].Constructor.Stmts[0])
}

func TestLowerTypecaseProducesNestedIfIsInstanceChain(t *testing.T) {
	prog := &parsetree.Program{Bare: []parsetree.Stmt{
		&parsetree.TypecaseStmt{
			X: &parsetree.NameExpr{Name: "v"},
			Arms: []parsetree.TypecaseArm{
				{Binder: "d", Type: "Dog", Body: []parsetree.Stmt{
					&parsetree.ExprStmt{Value: &parsetree.NameExpr{Name: "d"}},
				}},
				{Binder: "c", Type: "Cat", Body: []parsetree.Stmt{
					&parsetree.ExprStmt{Value: &parsetree.NameExpr{Name: "c"}},
				}},
			},
		},
	}}
	root := New().Build(prog)
	require.Len(t, root.Program.Bare.Stmts, 1)

	outer, ok := root.Program.Bare.Stmts[0].(*ast.If)
	require.True(t, ok, "typecase must lower to an If")
	isInst, ok := outer.Cond.(*ast.IsInstance)
	require.True(t, ok)
	assert.Equal(t, "Dog", isInst.Type)

	// then-block: binder assignment followed by the renamed body reference.
	require.Len(t, outer.Then.Stmts, 2)
	bind, ok := outer.Then.Stmts[0].(*ast.Assignment)
	require.True(t, ok)
	boundName := bind.Target.(*ast.VarReference).Name
	assert.NotEqual(t, "d", boundName, "the lowered binder must be a fresh, collision-free name")

	bodyStmt := outer.Then.Stmts[1].(*ast.ExprStmt)
	ref := bodyStmt.X.(*ast.VarReference)
	assert.Equal(t, boundName, ref.Name, "references to the original binder must be rewritten to the fresh name")

	// else-branch nests the second arm.
	require.NotNil(t, outer.Else)
	require.Len(t, outer.Else.Stmts, 1)
	inner, ok := outer.Else.Stmts[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, "Cat", inner.Cond.(*ast.IsInstance).Type)
	assert.Nil(t, inner.Else, "the last arm has no further alternative")
}

func TestLowerTypecaseEmptyArmsIsNoOp(t *testing.T) {
	prog := &parsetree.Program{Bare: []parsetree.Stmt{
		&parsetree.TypecaseStmt{X: &parsetree.NameExpr{Name: "v"}},
	}}
	root := New().Build(prog)
	require.Len(t, root.Program.Bare.Stmts, 1)
	stmt, ok := root.Program.Bare.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	assert.IsType(t, &ast.BoolLiteral{}, stmt.X)
}

func TestFreshNamesAreUniqueAcrossArms(t *testing.T) {
	b := New()
	first := b.freshName("a")
	second := b.freshName("a")
	assert.NotEqual(t, first, second)
}
