// Package astbuild implements C3: it maps parse-tree productions
// (internal/parsetree) onto the real ast.* variants, desugaring
// arithmetic/comparison operators into MethodCall nodes and lowering
// typecase into nested If/IsInstance chains.
package astbuild

import (
	"fmt"

	"github.com/funvibe/quackc/internal/ast"
	"github.com/funvibe/quackc/internal/config"
	"github.com/funvibe/quackc/internal/parsetree"
)

// dunder names the built-in methods that binary/unary operators desugar
// into.
var dunder = map[parsetree.BinaryOp]string{
	parsetree.OpPlus:    config.MethodPlus,
	parsetree.OpMinus:   config.MethodMinus,
	parsetree.OpTimes:   config.MethodTimes,
	parsetree.OpDivide:  config.MethodDivide,
	parsetree.OpEq:      config.MethodEquals,
	parsetree.OpLess:    config.MethodLess,
	parsetree.OpMore:    config.MethodMore,
	parsetree.OpAtMost:  config.MethodAtMost,
	parsetree.OpAtLeast: config.MethodAtLeast,
}

// Builder turns a parsetree.Program into an ast.Root. It owns the fresh
// name counter used to name typecase binders.
type Builder struct {
	freshCounter int
}

func New() *Builder { return &Builder{} }

func (b *Builder) freshName(base string) string {
	b.freshCounter++
	return fmt.Sprintf("%s$%d", base, b.freshCounter)
}

// Build lowers a whole parsetree.Program into an ast.Root.
func (b *Builder) Build(p *parsetree.Program) *ast.Root {
	classes := make([]*ast.ClassDecl, 0, len(p.Classes))
	for _, c := range p.Classes {
		classes = append(classes, b.buildClass(c))
	}
	bare := &ast.BareStatementBlock{Stmts: b.buildBareStmts(p.Bare)}
	prog := &ast.Program{Classes: classes, Bare: bare}
	return &ast.Root{Program: prog}
}

func (b *Builder) buildClass(c *parsetree.Class) *ast.ClassDecl {
	super := c.Super
	if super == "" {
		super = "Obj"
	}
	names := make([]string, len(c.Args))
	types := make([]string, len(c.Args))
	for i, a := range c.Args {
		names[i] = a.Name
		types[i] = a.Type
	}
	sig := &ast.ClassSignature{
		Base:  ast.Base{P: c.Pos},
		Name:  c.Name,
		Super: super,
		Args:  &ast.FormalArgs{Base: ast.Base{P: c.Pos}, Names: names, Types: types},
	}
	ctor := &ast.ConstructorBlock{
		Base:  ast.Base{P: c.Pos},
		Stmts: b.buildStmts(c.CtorStmts),
	}
	methods := make([]*ast.MethodDecl, 0, len(c.Methods))
	for _, m := range c.Methods {
		methods = append(methods, b.buildMethod(m))
	}
	return &ast.ClassDecl{
		Base:        ast.Base{P: c.Pos},
		Signature:   sig,
		Constructor: ctor,
		Methods:     &ast.MethodBlock{Base: ast.Base{P: c.Pos}, Methods: methods},
	}
}

func (b *Builder) buildMethod(m *parsetree.Method) *ast.MethodDecl {
	names := make([]string, len(m.Args))
	types := make([]string, len(m.Args))
	for i, a := range m.Args {
		names[i] = a.Name
		types[i] = a.Type
	}
	return &ast.MethodDecl{
		Base:        ast.Base{P: m.Pos},
		Name:        m.Name,
		Args:        &ast.FormalArgs{Base: ast.Base{P: m.Pos}, Names: names, Types: types},
		DeclaredRet: m.Ret,
		Body:        &ast.StatementBlock{Base: ast.Base{P: m.Pos}, Stmts: b.buildStmts(m.Body)},
	}
}

func (b *Builder) buildBareStmts(stmts []parsetree.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, b.buildBareStmt(s)...)
	}
	return out
}

// buildBareStmt is like buildStmt but wraps plain expression statements
// in BareExprStmt rather than ExprStmt, matching the bare-scope variant
// the specification names separately.
func (b *Builder) buildBareStmt(s parsetree.Stmt) []ast.Stmt {
	if es, ok := s.(*parsetree.ExprStmt); ok {
		return []ast.Stmt{&ast.BareExprStmt{Base: ast.Base{P: es.Pos}, X: b.buildExpr(es.Value)}}
	}
	return b.buildStmt(s)
}

func (b *Builder) buildStmts(stmts []parsetree.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, b.buildStmt(s)...)
	}
	return out
}

// buildStmt returns a slice because typecase lowers to a single nested
// If — one statement in, one statement out, but keeping the signature
// list-shaped keeps callers uniform if future desugaring needs to expand
// into more than one statement.
func (b *Builder) buildStmt(s parsetree.Stmt) []ast.Stmt {
	switch s := s.(type) {
	case *parsetree.AssignStmt:
		target := b.buildExpr(s.Target).(ast.LValue)
		return []ast.Stmt{&ast.Assignment{
			Base:     ast.Base{P: s.Pos},
			Target:   target,
			Declared: s.Declared,
			Rhs:      b.buildExpr(s.Value),
		}}
	case *parsetree.ExprStmt:
		return []ast.Stmt{&ast.ExprStmt{Base: ast.Base{P: s.Pos}, X: b.buildExpr(s.Value)}}
	case *parsetree.IfStmt:
		var elseBlock *ast.StatementBlock
		if s.Else != nil {
			elseBlock = &ast.StatementBlock{Base: ast.Base{P: s.Pos}, Stmts: b.buildStmts(s.Else)}
		}
		return []ast.Stmt{&ast.If{
			Base: ast.Base{P: s.Pos},
			Cond: b.buildExpr(s.Cond),
			Then: &ast.StatementBlock{Base: ast.Base{P: s.Pos}, Stmts: b.buildStmts(s.Then)},
			Else: elseBlock,
		}}
	case *parsetree.WhileStmt:
		return []ast.Stmt{&ast.While{
			Base: ast.Base{P: s.Pos},
			Cond: b.buildExpr(s.Cond),
			Body: &ast.StatementBlock{Base: ast.Base{P: s.Pos}, Stmts: b.buildStmts(s.Body)},
		}}
	case *parsetree.ReturnStmt:
		return []ast.Stmt{&ast.ReturnStatement{Base: ast.Base{P: s.Pos}, Value: b.buildExpr(s.Value)}}
	case *parsetree.TypecaseStmt:
		return []ast.Stmt{b.lowerTypecase(s)}
	default:
		panic(fmt.Sprintf("astbuild: unhandled statement kind %T", s))
	}
}

// lowerTypecase lowers `typecase E { a1: T1 S1 ... an: Tn Sn }` into a
// right-nested chain of If(IsInstance(E, Ti), {ai := E; Si}, ...). The
// tested expression E is built afresh from the original parse node for
// each use (every arm's is_instance test and its binder assignment); a shared local is
// not introduced since E is a pure sub-expression supplied by the
// parser's already-reduced tree (re-evaluating it per arm has no
// observable effect beyond re-running its r_eval, which the emission
// contract treats as free to repeat here since this is a guard chain,
// not a loop).
func (b *Builder) lowerTypecase(s *parsetree.TypecaseStmt) ast.Stmt {
	var build func(i int) *ast.If
	build = func(i int) *ast.If {
		if i >= len(s.Arms) {
			return nil
		}
		arm := s.Arms[i]
		tested := b.buildExpr(s.X)
		binderName := b.freshName(arm.Binder)
		bind := &ast.Assignment{
			Base:     ast.Base{P: s.Pos},
			Target:   &ast.VarReference{Base: ast.Base{P: s.Pos}, Name: binderName},
			Declared: arm.Type,
			Rhs:      tested,
		}
		bodyStmts := append([]ast.Stmt{bind}, b.renameBinder(arm.Binder, binderName, b.buildStmts(arm.Body))...)
		thenBlock := &ast.StatementBlock{Base: ast.Base{P: s.Pos}, Stmts: bodyStmts}

		var elseBlock *ast.StatementBlock
		if next := build(i + 1); next != nil {
			elseBlock = &ast.StatementBlock{Base: ast.Base{P: s.Pos}, Stmts: []ast.Stmt{next}}
		}
		return &ast.If{
			Base: ast.Base{P: s.Pos},
			Cond: &ast.IsInstance{Base: ast.Base{P: s.Pos}, X: b.buildExpr(s.X), Type: arm.Type},
			Then: thenBlock,
			Else: elseBlock,
		}
	}
	root := build(0)
	if root == nil {
		// No arms: typecase with an empty body is a no-op statement.
		return &ast.ExprStmt{Base: ast.Base{P: s.Pos}, X: &ast.BoolLiteral{Base: ast.Base{P: s.Pos}, Value: true}}
	}
	return root
}

// renameBinder rewrites every VarReference named `from` inside stmts to
// `to`. The parse-tree arm body refers to the user-written alternative
// binder name; the lowered AST gives it a fresh, collision-free name so
// distinct arms never alias.
func (b *Builder) renameBinder(from, to string, stmts []ast.Stmt) []ast.Stmt {
	var walkExpr func(e ast.Expr) ast.Expr
	var walkStmt func(s ast.Stmt) ast.Stmt

	walkExpr = func(e ast.Expr) ast.Expr {
		switch e := e.(type) {
		case *ast.VarReference:
			if e.Name == from {
				e.Name = to
			}
			return e
		case *ast.FieldReference:
			e.Recv = walkExpr(e.Recv)
			return e
		case *ast.MethodCall:
			e.Recv = walkExpr(e.Recv)
			for i := range e.Args {
				e.Args[i] = walkExpr(e.Args[i])
			}
			return e
		case *ast.ConstructorCall:
			for i := range e.Args {
				e.Args[i] = walkExpr(e.Args[i])
			}
			return e
		case *ast.And:
			e.Left, e.Right = walkExpr(e.Left), walkExpr(e.Right)
			return e
		case *ast.Or:
			e.Left, e.Right = walkExpr(e.Left), walkExpr(e.Right)
			return e
		case *ast.Not:
			e.X = walkExpr(e.X)
			return e
		case *ast.IsInstance:
			e.X = walkExpr(e.X)
			return e
		default:
			return e
		}
	}
	walkStmt = func(s ast.Stmt) ast.Stmt {
		switch s := s.(type) {
		case *ast.ExprStmt:
			s.X = walkExpr(s.X)
		case *ast.BareExprStmt:
			s.X = walkExpr(s.X)
		case *ast.Assignment:
			if v, ok := s.Target.(*ast.VarReference); ok && v.Name == from {
				v.Name = to
			}
			s.Rhs = walkExpr(s.Rhs)
		case *ast.If:
			s.Cond = walkExpr(s.Cond)
			for i, st := range s.Then.Stmts {
				s.Then.Stmts[i] = walkStmt(st)
			}
			if s.Else != nil {
				for i, st := range s.Else.Stmts {
					s.Else.Stmts[i] = walkStmt(st)
				}
			}
		case *ast.While:
			s.Cond = walkExpr(s.Cond)
			for i, st := range s.Body.Stmts {
				s.Body.Stmts[i] = walkStmt(st)
			}
		case *ast.ReturnStatement:
			s.Value = walkExpr(s.Value)
		}
		return s
	}
	for i, s := range stmts {
		stmts[i] = walkStmt(s)
	}
	return stmts
}

func (b *Builder) buildExpr(e parsetree.Expr) ast.Expr {
	switch e := e.(type) {
	case *parsetree.IntExpr:
		return &ast.IntLiteral{Base: ast.Base{P: e.Pos}, Value: e.Value}
	case *parsetree.StringExpr:
		return &ast.StringLiteral{Base: ast.Base{P: e.Pos}, Value: e.Value}
	case *parsetree.BoolExpr:
		return &ast.BoolLiteral{Base: ast.Base{P: e.Pos}, Value: e.Value}
	case *parsetree.NameExpr:
		return &ast.VarReference{Base: ast.Base{P: e.Pos}, Name: e.Name}
	case *parsetree.ThisFieldExpr:
		return &ast.ThisFieldReference{Base: ast.Base{P: e.Pos}, Name: e.Name}
	case *parsetree.FieldExpr:
		return &ast.FieldReference{Base: ast.Base{P: e.Pos}, Recv: b.buildExpr(e.Recv), Name: e.Name}
	case *parsetree.CallExpr:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = b.buildExpr(a)
		}
		return &ast.MethodCall{Base: ast.Base{P: e.Pos}, Recv: b.buildExpr(e.Recv), Method: e.Method, Args: args}
	case *parsetree.ConstructorExpr:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = b.buildExpr(a)
		}
		return &ast.ConstructorCall{Base: ast.Base{P: e.Pos}, Class: e.Class, Args: args}
	case *parsetree.IsInstanceExpr:
		return &ast.IsInstance{Base: ast.Base{P: e.Pos}, X: b.buildExpr(e.X), Type: e.Type}
	case *parsetree.UnaryExpr:
		switch e.Op {
		case parsetree.OpNot:
			return &ast.Not{Base: ast.Base{P: e.Pos}, X: b.buildExpr(e.X)}
		case parsetree.OpNeg:
			// Unary negation lowers to MethodCall(IntLiteral(0), "MINUS", [operand]).
			return &ast.MethodCall{
				Base:     ast.Base{P: e.Pos},
				Recv:     &ast.IntLiteral{Base: ast.Base{P: e.Pos}, Value: 0},
				Method:   "MINUS",
				Args:     []ast.Expr{b.buildExpr(e.X)},
				Operator: true,
			}
		default:
			panic(fmt.Sprintf("astbuild: unhandled unary operator %q", e.Op))
		}
	case *parsetree.BinaryExpr:
		switch e.Op {
		case parsetree.OpAnd:
			return &ast.And{Base: ast.Base{P: e.Pos}, Left: b.buildExpr(e.Left), Right: b.buildExpr(e.Right)}
		case parsetree.OpOr:
			return &ast.Or{Base: ast.Base{P: e.Pos}, Left: b.buildExpr(e.Left), Right: b.buildExpr(e.Right)}
		default:
			name, ok := dunder[e.Op]
			if !ok {
				panic(fmt.Sprintf("astbuild: unhandled binary operator %q", e.Op))
			}
			return &ast.MethodCall{
				Base:     ast.Base{P: e.Pos},
				Recv:     b.buildExpr(e.Left),
				Method:   name,
				Args:     []ast.Expr{b.buildExpr(e.Right)},
				Operator: true,
			}
		}
	default:
		panic(fmt.Sprintf("astbuild: unhandled expression kind %T", e))
	}
}
