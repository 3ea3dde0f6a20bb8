// Package emit implements C6: the code emission pass. It walks a
// type-checked AST and produces one textual assembly module per class
// plus a synthetic main module, following the r_eval/c_eval contracts of
// §4.6 — argument-then-receiver evaluation order for plain method calls,
// receiver-then-argument order for desugared binary/unary operator
// calls, the `return TOFILL` placeholder technique for filling in a
// method's return arity after its body is built, and the per-class
// `$`-self-reference rewrite.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/quackc/internal/ast"
	"github.com/funvibe/quackc/internal/config"
	"github.com/funvibe/quackc/internal/label"
)

// returnPlaceholder stands in for a method's or constructor's argument
// count inside a `return` instruction until the enclosing scope is known
// — mirrors the original Python implementation's "return TOFILL" technique, so a ReturnStatement
// nested three ifs deep doesn't need the arity threaded down to it.
const returnPlaceholder = "return TOFILL"

// Module is one emitted `.asm` unit: a class's module or the synthetic
// main module.
type Module struct {
	Name  string
	Lines []string
}

// Text renders a module's lines into the assembler's textual format:
// directives (`.class`, `.field`, `.method`, `.args`, `.local`) and
// labels are flush-left; every other instruction is tab-indented.
func (m Module) Text() string {
	var b strings.Builder
	for _, ln := range m.Lines {
		if strings.HasPrefix(ln, ".") || strings.HasSuffix(ln, ":") {
			b.WriteString(ln)
		} else {
			b.WriteString("\t")
			b.WriteString(ln)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Emitter holds the label generator shared across one compilation run.
type Emitter struct {
	Lbl *label.Generator
}

func New(lbl *label.Generator) *Emitter {
	return &Emitter{Lbl: lbl}
}

// EmitRoot emits one module per class, in topological (superclass-first)
// order, followed by the synthetic `<Main>_main` module for the bare
// statement block.
func (em *Emitter) EmitRoot(root *ast.Root) ([]Module, error) {
	order, err := classTopoOrder(root.Program.Classes)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*ast.ClassDecl, len(root.Program.Classes))
	for _, c := range root.Program.Classes {
		byName[c.Name()] = c
	}

	modules := make([]Module, 0, len(order)+1)
	for _, name := range order {
		modules = append(modules, em.EmitClass(byName[name]))
	}
	modules = append(modules, em.EmitMain(root.Program.Bare))
	return modules, nil
}

func classTopoOrder(classes []*ast.ClassDecl) ([]string, error) {
	nodes := make([]label.ClassNode, 0, len(classes))
	for _, c := range classes {
		nodes = append(nodes, label.ClassNode{Name: c.Name(), Super: c.Super()})
	}
	return label.TopoSort(nodes)
}

// EmitClass lays out one class's module per §4.6's seven-item layout,
// then rewrites self-references (`new C`, `load_field C:f`, ...) into
// their `$`-prefixed form.
func (em *Emitter) EmitClass(cls *ast.ClassDecl) Module {
	var lines []string

	lines = append(lines, fmt.Sprintf(".class %s:%s", cls.Name(), cls.Super()))
	for _, f := range cls.Fields {
		lines = append(lines, ".field "+f.Name)
	}
	for _, m := range cls.Methods.Methods {
		lines = append(lines, ".method "+m.Name+" forward")
	}

	ctorArgs := cls.Signature.Args.Names
	lines = append(lines, ".method "+config.ConstructorName)
	if len(ctorArgs) > 0 {
		lines = append(lines, ".args "+strings.Join(ctorArgs, ","))
	}
	if locals := localsOf(cls.Constructor.Initialized, ctorArgs); len(locals) > 0 {
		lines = append(lines, ".local "+strings.Join(locals, ","))
	}
	body := em.emitBlock(cls.Constructor.Stmts)
	// return is illegal inside a constructor (C4 rejects it), so the
	// placeholder never appears here: the trailer is unconditional.
	body = fillReturnArity(body, len(ctorArgs))
	lines = append(lines, body...)
	lines = append(lines, "load $", fmt.Sprintf("return %d", len(ctorArgs)))

	for _, m := range cls.Methods.Methods {
		lines = append(lines, em.emitMethod(m)...)
	}

	return Module{Name: cls.Name(), Lines: selfRewrite(lines, cls.Name())}
}

func (em *Emitter) emitMethod(m *ast.MethodDecl) []string {
	var lines []string
	lines = append(lines, ".method "+m.Name)
	if len(m.Args.Names) > 0 {
		lines = append(lines, ".args "+strings.Join(m.Args.Names, ","))
	}
	if locals := localsOf(m.Initialized, m.Args.Names); len(locals) > 0 {
		lines = append(lines, ".local "+strings.Join(locals, ","))
	}

	body := em.emitBlock(m.Body.Stmts)
	filled, hadReturn := fillReturnArityTracked(body, len(m.Args.Names))
	lines = append(lines, filled...)
	if !hadReturn {
		lines = append(lines, "const nothing", fmt.Sprintf("return %d", len(m.Args.Names)))
	}
	return lines
}

// EmitMain emits the synthetic main module: a trivial `$constructor`
// whose body is the bare block, with every embedded `return`'s arity
// filled in as 0, followed unconditionally by `const nothing`/`return 0`.
func (em *Emitter) EmitMain(b *ast.BareStatementBlock) Module {
	lines := []string{".method " + config.ConstructorName}
	if locals := localsOf(b.Initialized, nil); len(locals) > 0 {
		lines = append(lines, ".local "+strings.Join(locals, ","))
	}
	body := em.emitBlock(b.Stmts)
	body = fillReturnArity(body, 0)
	lines = append(lines, body...)
	lines = append(lines, "const nothing", "return 0")
	return Module{Name: config.MainModuleName, Lines: lines}
}

func fillReturnArity(lines []string, arity int) []string {
	filled, _ := fillReturnArityTracked(lines, arity)
	return filled
}

func fillReturnArityTracked(lines []string, arity int) ([]string, bool) {
	found := false
	out := make([]string, len(lines))
	for i, ln := range lines {
		if ln == returnPlaceholder {
			out[i] = fmt.Sprintf("return %d", arity)
			found = true
		} else {
			out[i] = ln
		}
	}
	return out, found
}

// localsOf returns the names in initialized that are neither a parameter
// nor a `this.`-prefixed field binding — i.e. the constructor's or
// method's true local variables. initialized is already sorted
// (definite.Set.Names), so the result is deterministic.
func localsOf(initialized []string, params []string) []string {
	isParam := make(map[string]bool, len(params))
	for _, p := range params {
		isParam[p] = true
	}
	var out []string
	for _, name := range initialized {
		if strings.HasPrefix(name, "this.") || isParam[name] {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (em *Emitter) emitBlock(stmts []ast.Stmt) []string {
	var out []string
	for _, s := range stmts {
		out = append(out, em.emitStmt(s)...)
	}
	return out
}

func (em *Emitter) emitStmt(s ast.Stmt) []string {
	switch s := s.(type) {
	case *ast.ExprStmt:
		return append(em.rEval(s.X), "pop")
	case *ast.BareExprStmt:
		return append(em.rEval(s.X), "pop")
	case *ast.Assignment:
		return em.emitAssignment(s)
	case *ast.If:
		return em.emitIf(s)
	case *ast.While:
		return em.emitWhile(s)
	case *ast.ReturnStatement:
		return append(em.rEval(s.Value), returnPlaceholder)
	default:
		panic(fmt.Sprintf("emit: unhandled statement kind %T", s))
	}
}

func (em *Emitter) emitAssignment(a *ast.Assignment) []string {
	out := em.rEval(a.Rhs)
	switch t := a.Target.(type) {
	case *ast.VarReference:
		return append(out, "store "+t.Name)
	case *ast.ThisFieldReference:
		return append(out, "load $", "store_field $:"+t.Name)
	case *ast.FieldReference:
		out = append(out, em.rEval(t.Recv)...)
		return append(out, fmt.Sprintf("store_field %s:%s", t.Recv.Type(), t.Name))
	default:
		panic(fmt.Sprintf("emit: unhandled assignment target %T", t))
	}
}

// emitIf: c_eval(then, else) of the condition, then-block, jump endif,
// else:, else-block (if any), endif:.
func (em *Emitter) emitIf(s *ast.If) []string {
	thenLbl := em.Lbl.Fresh("then")
	elseLbl := em.Lbl.Fresh("else")
	endLbl := em.Lbl.Fresh("endif")

	var out []string
	out = append(out, em.cEval(s.Cond, thenLbl, elseLbl)...)
	out = append(out, thenLbl+":")
	out = append(out, em.emitBlock(s.Then.Stmts)...)
	out = append(out, "jump "+endLbl)
	out = append(out, elseLbl+":")
	if s.Else != nil {
		out = append(out, em.emitBlock(s.Else.Stmts)...)
	}
	out = append(out, endLbl+":")
	return out
}

// emitWhile: jump test, head:, body, test:, c_eval(head, done), done:.
func (em *Emitter) emitWhile(s *ast.While) []string {
	headLbl := em.Lbl.Fresh("loop_head")
	testLbl := em.Lbl.Fresh("loop_test")
	doneLbl := em.Lbl.Fresh("done")

	out := []string{"jump " + testLbl, headLbl + ":"}
	out = append(out, em.emitBlock(s.Body.Stmts)...)
	out = append(out, testLbl+":")
	out = append(out, em.cEval(s.Cond, headLbl, doneLbl)...)
	out = append(out, doneLbl+":")
	return out
}

// rEval emits code that leaves exactly one value on the operand stack.
func (em *Emitter) rEval(e ast.Expr) []string {
	switch e := e.(type) {
	case *ast.IntLiteral:
		return []string{fmt.Sprintf("const %d", e.Value)}
	case *ast.StringLiteral:
		return []string{fmt.Sprintf("const %s", strconv.Quote(e.Value))}
	case *ast.BoolLiteral:
		if e.Value {
			return []string{"const true"}
		}
		return []string{"const false"}
	case *ast.VarReference:
		return []string{"load " + e.Name}
	case *ast.ThisFieldReference:
		return []string{"load $", "load_field $:" + e.Name}
	case *ast.FieldReference:
		out := em.rEval(e.Recv)
		return append(out, fmt.Sprintf("load_field %s:%s", e.Recv.Type(), e.Name))
	case *ast.MethodCall:
		if e.Operator {
			// Desugared binary arithmetic/comparison (and unary negation):
			// §4.6 emits the receiver (left operand), then the argument
			// (right operand), then the call — the call consumes the
			// right operand off the top of the stack with the left
			// beneath it.
			out := em.rEval(e.Recv)
			for _, a := range e.Args {
				out = append(out, em.rEval(a)...)
			}
			return append(out, fmt.Sprintf("call %s:%s", e.DefiningClass, e.Method))
		}
		var out []string
		for _, a := range e.Args {
			out = append(out, em.rEval(a)...)
		}
		out = append(out, em.rEval(e.Recv)...)
		return append(out, fmt.Sprintf("call %s:%s", e.DefiningClass, e.Method))
	case *ast.ConstructorCall:
		var out []string
		for _, a := range e.Args {
			out = append(out, em.rEval(a)...)
		}
		out = append(out, "new "+e.Class)
		return append(out, fmt.Sprintf("call %s:%s", e.Class, config.ConstructorName))
	case *ast.And:
		out := em.rEval(e.Left)
		out = append(out, em.rEval(e.Right)...)
		return append(out, "call Boolean:"+config.MethodAnd)
	case *ast.Or:
		out := em.rEval(e.Left)
		out = append(out, em.rEval(e.Right)...)
		return append(out, "call Boolean:"+config.MethodOr)
	case *ast.Not:
		out := em.rEval(e.X)
		return append(out, "call Boolean:"+config.MethodNot)
	case *ast.IsInstance:
		out := em.rEval(e.X)
		return append(out, "is_instance "+e.Type)
	default:
		panic(fmt.Sprintf("emit: unhandled expression kind %T", e))
	}
}

// cEval emits code ending in a jump to one of the two labels, leaving
// nothing on the stack.
func (em *Emitter) cEval(e ast.Expr, trueLbl, falseLbl string) []string {
	switch e := e.(type) {
	case *ast.And:
		cont := em.Lbl.Fresh("and")
		out := em.cEval(e.Left, cont, falseLbl)
		out = append(out, cont+":")
		return append(out, em.cEval(e.Right, trueLbl, falseLbl)...)
	case *ast.Or:
		cont := em.Lbl.Fresh("and")
		out := em.cEval(e.Left, trueLbl, cont)
		out = append(out, cont+":")
		return append(out, em.cEval(e.Right, trueLbl, falseLbl)...)
	case *ast.Not:
		return em.cEval(e.X, falseLbl, trueLbl)
	case *ast.IsInstance:
		out := em.rEval(e.X)
		out = append(out, "is_instance "+e.Type)
		return append(out, "jump_if "+trueLbl, "jump "+falseLbl)
	default:
		out := em.rEval(e)
		return append(out, "jump_if "+trueLbl, "jump "+falseLbl)
	}
}

// selfRewrite rewrites any fully-qualified reference to className within
// lines into its `$`-prefixed form — the only place in the module where
// `$` may legitimately stand for the class itself.
func selfRewrite(lines []string, className string) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = rewriteSelfRef(ln, className)
	}
	return out
}

func rewriteSelfRef(ln, className string) string {
	switch {
	case ln == "new "+className:
		return "new $"
	case ln == "is_instance "+className:
		return "is_instance $"
	case strings.HasPrefix(ln, "load_field "+className+":"):
		return "load_field $:" + strings.TrimPrefix(ln, "load_field "+className+":")
	case strings.HasPrefix(ln, "store_field "+className+":"):
		return "store_field $:" + strings.TrimPrefix(ln, "store_field "+className+":")
	case strings.HasPrefix(ln, "call "+className+":"):
		return "call $:" + strings.TrimPrefix(ln, "call "+className+":")
	default:
		return ln
	}
}
