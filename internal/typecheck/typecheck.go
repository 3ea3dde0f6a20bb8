// Package typecheck implements C5: ascending-join type inference to
// fixpoint, followed by subtype checking, over an AST already annotated
// by the definite-assignment pass.
package typecheck

import (
	"fmt"
	"strings"

	"github.com/funvibe/quackc/internal/ast"
	"github.com/funvibe/quackc/internal/diagnostics"
	"github.com/funvibe/quackc/internal/hierarchy"
	"github.com/funvibe/quackc/internal/label"
)

// Checker runs C5 over a root AST, mutating the hierarchy as user
// classes are registered and annotating every expression node's Type.
type Checker struct {
	H   *hierarchy.Hierarchy
	Bag *diagnostics.Bag
}

func New(h *hierarchy.Hierarchy, bag *diagnostics.Bag) *Checker {
	return &Checker{H: h, Bag: bag}
}

func (c *Checker) errf(code diagnostics.Code, p ast.Pos, format string, args ...interface{}) {
	c.Bag.Add(diagnostics.New(code, diagnostics.Position{Line: p.Line, Col: p.Col}, format, args...))
}

func (c *Checker) lca(a, b string) string {
	t, err := c.H.LCA(a, b)
	if err != nil {
		c.Bag.Add(diagnostics.New(diagnostics.ErrInvalidType, diagnostics.Position{}, "%s", err.Error()))
		return "Obj"
	}
	return t
}

func cloneScope(s map[string]string) map[string]string {
	out := make(map[string]string, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func scopesEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// CheckRoot type-checks every user class (in topological order of
// inheritance, so a subclass's fields can reference parent fields
// already registered) and then the bare block.
func (c *Checker) CheckRoot(root *ast.Root) {
	order, err := c.classTopoOrder(root.Program.Classes)
	if err != nil {
		c.Bag.Add(diagnostics.New(diagnostics.ErrInvalidType, diagnostics.Position{}, "%s", err.Error()))
		return
	}
	byName := make(map[string]*ast.ClassDecl, len(root.Program.Classes))
	for _, cls := range root.Program.Classes {
		byName[cls.Name()] = cls
	}
	for _, name := range order {
		c.checkClass(byName[name])
	}
	c.checkBare(root.Program.Bare)
}

func (c *Checker) classTopoOrder(classes []*ast.ClassDecl) ([]string, error) {
	nodes := make([]label.ClassNode, 0, len(classes))
	for _, cls := range classes {
		nodes = append(nodes, label.ClassNode{Name: cls.Name(), Super: cls.Super()})
	}
	return label.TopoSort(nodes)
}

func (c *Checker) checkClass(cls *ast.ClassDecl) {
	className := cls.Name()
	superName := cls.Super()

	for _, t := range cls.Signature.Args.Types {
		if _, ok := c.H.FindClass(t); !ok {
			c.errf(diagnostics.ErrInvalidType, cls.Signature.P, "unknown type %q in %s's constructor arguments", t, className)
		}
	}
	superDesc, ok := c.H.FindClass(superName)
	if !ok {
		c.errf(diagnostics.ErrInvalidType, cls.Signature.P, "unknown superclass %q for class %s", superName, className)
		return
	}

	// Seed the constructor scope: DA-confirmed names at bottom, then
	// override constructor parameters with their declared types.
	scope := make(map[string]string, len(cls.Constructor.Initialized))
	for _, n := range cls.Constructor.Initialized {
		scope[n] = ""
	}
	for i, name := range cls.Signature.Args.Names {
		scope[name] = cls.Signature.Args.Types[i]
	}

	c.runFixpoint(scope, func() {
		c.checkStmtList(scope, true, cls.Constructor.Stmts)
	})

	// Derive the field list from every "this.*" entry left in the
	// stabilized constructor scope, in the order fields were first
	// assigned in source.
	fieldOrder := collectFieldOrder(cls.Constructor.Stmts)
	fields := make([]hierarchy.FieldDesc, 0, len(fieldOrder))
	fieldTypes := make(map[string]string, len(fieldOrder))
	for _, name := range fieldOrder {
		t := scope["this."+name]
		fields = append(fields, hierarchy.FieldDesc{Name: name, Type: t})
		fieldTypes[name] = t
	}
	cls.Fields = fields

	// Field compatibility: every field the superclass declares must be
	// redeclared here with a subtype.
	for _, sf := range superDesc.Fields {
		actual, ok := fieldTypes[sf.Name]
		if !ok {
			c.errf(diagnostics.ErrMissingSuperField, cls.Signature.P,
				"%s's superclass %s defines field %q but %s does not", className, superName, sf.Name, className)
			continue
		}
		if !c.H.IsSubtype(sf.Type, actual) {
			c.errf(diagnostics.ErrMissingSuperField, cls.Signature.P,
				"%s's superclass %s declares field %q as %s but %s declares it as %s",
				className, superName, sf.Name, sf.Type, className, actual)
		}
	}

	// Build the method list (constructor + declared methods) and check
	// overrides against the superclass before registering the class.
	methods := []hierarchy.MethodDescriptor{{
		Owner: className, Name: hierarchy.ConstructorName,
		Params: cls.Signature.Args.Types, Ret: className,
	}}
	for _, m := range cls.Methods.Methods {
		ret := m.DeclaredRet
		if ret == "" {
			ret = "Nothing"
		}
		m.Owner = className
		methods = append(methods, hierarchy.MethodDescriptor{
			Owner: className, Name: m.Name, Params: m.Args.Types, Ret: ret,
		})
		c.checkOverride(cls, m, superName)
	}

	if err := c.H.AddClass(&hierarchy.ClassDescriptor{
		Name: className, Super: superName, Fields: fields, Methods: methods,
	}); err != nil {
		c.errf(diagnostics.ErrInvalidType, cls.Signature.P, "%s", err.Error())
		return
	}

	for _, m := range cls.Methods.Methods {
		c.checkMethod(cls, m, fieldTypes)
	}
}

func (c *Checker) checkOverride(cls *ast.ClassDecl, m *ast.MethodDecl, superName string) {
	_, parentMethod, err := c.H.ResolveMethod(superName, m.Name)
	if err != nil {
		return // no override, nothing to check
	}
	ret := m.DeclaredRet
	if ret == "" {
		ret = "Nothing"
	}
	if len(parentMethod.Params) != len(m.Args.Types) {
		c.errf(diagnostics.ErrBadOverride, m.P,
			"%s overrides %s:%s with a different number of parameters", cls.Name(), superName, m.Name)
		return
	}
	for i, parentParam := range parentMethod.Params {
		overrideParam := m.Args.Types[i]
		if !c.H.IsSubtype(overrideParam, parentParam) {
			c.errf(diagnostics.ErrBadOverride, m.P,
				"%s.%s parameter %d must be a supertype of %s's %s, got %s",
				cls.Name(), m.Name, i, superName, parentParam, overrideParam)
		}
	}
	if !c.H.IsSubtype(parentMethod.Ret, ret) {
		c.errf(diagnostics.ErrBadOverride, m.P,
			"%s.%s return type %s must be a subtype of %s's %s", cls.Name(), m.Name, ret, superName, parentMethod.Ret)
	}
}

func (c *Checker) checkMethod(cls *ast.ClassDecl, m *ast.MethodDecl, fieldTypes map[string]string) {
	for _, t := range m.Args.Types {
		if _, ok := c.H.FindClass(t); !ok {
			c.errf(diagnostics.ErrInvalidType, m.P, "unknown type %q in %s.%s's arguments", t, cls.Name(), m.Name)
		}
	}

	scope := make(map[string]string, len(m.Initialized))
	for _, n := range m.Initialized {
		if len(n) >= 5 && n[:5] == "this." {
			scope[n] = fieldTypes[n[5:]]
		} else {
			scope[n] = ""
		}
	}
	for i, name := range m.Args.Names {
		scope[name] = m.Args.Types[i]
	}

	var contributed string
	c.runFixpoint(scope, func() {
		contributed = c.checkStmtList(scope, false, m.Body.Stmts)
	})
	m.Body.Contributed = contributed

	declared := m.DeclaredRet
	if contributed != "" {
		if declared == "" {
			declared = "Nothing"
		}
		if !c.H.IsSubtype(declared, contributed) {
			c.errf(diagnostics.ErrTypeMismatch, m.P,
				"%s.%s declares return type %s but returns %s", cls.Name(), m.Name, declared, contributed)
		}
	} else if declared != "" && declared != "Obj" && declared != "Nothing" {
		c.errf(diagnostics.ErrTypeMismatch, m.P,
			"%s.%s declares return type %s but does not return on every path", cls.Name(), m.Name, declared)
	}
}

// runFixpoint re-runs body (which mutates scope in place) until scope
// stops changing, bounded by depth(hierarchy)+1 rounds. Exceeding the
// bound is a compiler bug: each step is monotone upward in a lattice of
// finite height, so this can only happen if a pass violates that
// contract.
func (c *Checker) runFixpoint(scope map[string]string, body func()) {
	maxRounds := c.H.Depth() + 1
	for round := 1; ; round++ {
		before := cloneScope(scope)
		body()
		if scopesEqual(before, scope) {
			return
		}
		if round > maxRounds {
			panic(fmt.Sprintf("typecheck: fixpoint did not converge within %d rounds (compiler bug)", maxRounds))
		}
	}
}

// collectFieldOrder walks a constructor's statements (including nested
// branches) recording each distinct this.<name> target in first-seen,
// left-to-right source order — the order C6 emits `.field` declarations
// in.
func collectFieldOrder(stmts []ast.Stmt) []string {
	seen := make(map[string]bool)
	var order []string
	var walkStmt func(s ast.Stmt)
	walkStmt = func(s ast.Stmt) {
		switch s := s.(type) {
		case *ast.Assignment:
			if tf, ok := s.Target.(*ast.ThisFieldReference); ok && !seen[tf.Name] {
				seen[tf.Name] = true
				order = append(order, tf.Name)
			}
		case *ast.If:
			for _, st := range s.Then.Stmts {
				walkStmt(st)
			}
			if s.Else != nil {
				for _, st := range s.Else.Stmts {
					walkStmt(st)
				}
			}
		case *ast.While:
			for _, st := range s.Body.Stmts {
				walkStmt(st)
			}
		}
	}
	for _, s := range stmts {
		walkStmt(s)
	}
	return order
}

func (c *Checker) checkBare(b *ast.BareStatementBlock) {
	scope := make(map[string]string, len(b.Initialized))
	for _, n := range b.Initialized {
		scope[n] = ""
	}
	c.runFixpoint(scope, func() {
		c.checkStmtList(scope, false, b.Stmts)
	})
}

// checkStmtList threads scope sequentially through stmts (mutating it in
// place) and folds each return-bearing child's contribution via lca.
func (c *Checker) checkStmtList(scope map[string]string, inCtor bool, stmts []ast.Stmt) string {
	contributed := ""
	for _, s := range stmts {
		if r := c.checkStmt(scope, inCtor, s); r != "" {
			if contributed == "" {
				contributed = r
			} else {
				contributed = c.lca(contributed, r)
			}
		}
	}
	return contributed
}

func (c *Checker) checkStmt(scope map[string]string, inCtor bool, s ast.Stmt) string {
	switch s := s.(type) {
	case *ast.ExprStmt:
		c.checkExpr(scope, s.X)
		return ""
	case *ast.BareExprStmt:
		c.checkExpr(scope, s.X)
		return ""
	case *ast.Assignment:
		c.checkAssignment(scope, s)
		return ""
	case *ast.If:
		return c.checkIf(scope, inCtor, s)
	case *ast.While:
		return c.checkWhile(scope, inCtor, s)
	case *ast.ReturnStatement:
		if inCtor {
			// Already reported by the definite-assignment pass; don't
			// cascade into a bogus contribution.
			c.checkExpr(scope, s.Value)
			return ""
		}
		return c.checkExpr(scope, s.Value)
	default:
		return ""
	}
}

func (c *Checker) checkAssignment(scope map[string]string, a *ast.Assignment) {
	actual := c.checkExpr(scope, a.Rhs)

	switch target := a.Target.(type) {
	case *ast.VarReference:
		joined := c.lca(scope[target.Name], actual)
		if a.Declared != "" {
			if !c.H.IsSubtype(a.Declared, joined) {
				c.errf(diagnostics.ErrTypeMismatch, a.P, "cannot assign %s to %s declared as %s", joined, target.Name, a.Declared)
			}
			scope[target.Name] = a.Declared
		} else {
			scope[target.Name] = joined
		}
	case *ast.ThisFieldReference:
		key := "this." + target.Name
		joined := c.lca(scope[key], actual)
		if a.Declared != "" {
			if !c.H.IsSubtype(a.Declared, joined) {
				c.errf(diagnostics.ErrTypeMismatch, a.P, "cannot assign %s to this.%s declared as %s", joined, target.Name, a.Declared)
			}
			scope[key] = a.Declared
		} else {
			scope[key] = joined
		}
	case *ast.FieldReference:
		recvType := c.checkExpr(scope, target.Recv)
		fieldType := c.fieldType(recvType, target.Name, target.P)
		if fieldType != "" && !c.H.IsSubtype(fieldType, actual) {
			c.errf(diagnostics.ErrTypeMismatch, a.P, "cannot assign %s to field %s.%s declared as %s", actual, recvType, target.Name, fieldType)
		}
	}
}

func (c *Checker) checkIf(scope map[string]string, inCtor bool, n *ast.If) string {
	c.checkExpr(scope, n.Cond)

	thenScope := cloneScope(scope)
	contributedThen := c.checkStmtList(thenScope, inCtor, n.Then.Stmts)
	n.Then.Contributed = contributedThen

	if n.Else == nil {
		for k, v := range scope {
			if tv, ok := thenScope[k]; ok {
				scope[k] = c.lca(v, tv)
			}
		}
		return contributedThen
	}

	elseScope := cloneScope(scope)
	contributedElse := c.checkStmtList(elseScope, inCtor, n.Else.Stmts)
	n.Else.Contributed = contributedElse

	for k := range scope {
		delete(scope, k)
	}
	for k, tv := range thenScope {
		if ev, ok := elseScope[k]; ok {
			scope[k] = c.lca(tv, ev)
		}
	}
	return c.lca(contributedThen, contributedElse)
}

func (c *Checker) checkWhile(scope map[string]string, inCtor bool, n *ast.While) string {
	c.checkExpr(scope, n.Cond)
	bodyScope := cloneScope(scope)
	contributed := c.checkStmtList(bodyScope, inCtor, n.Body.Stmts)
	n.Body.Contributed = contributed
	for k, v := range scope {
		if bv, ok := bodyScope[k]; ok {
			scope[k] = c.lca(v, bv)
		}
	}
	return contributed
}

func (c *Checker) fieldType(class, field string, p ast.Pos) string {
	desc, ok := c.H.FindClass(class)
	if !ok {
		c.errf(diagnostics.ErrInvalidType, p, "unknown type %q", class)
		return ""
	}
	t, ok := desc.FieldType(field)
	if !ok {
		c.errf(diagnostics.ErrFieldNotFound, p, "class %s has no field %q", class, field)
		return ""
	}
	return t
}

func (c *Checker) checkExpr(scope map[string]string, e ast.Expr) string {
	var t string
	switch e := e.(type) {
	case *ast.IntLiteral:
		t = "Int"
	case *ast.StringLiteral:
		t = "String"
	case *ast.BoolLiteral:
		t = "Boolean"
	case *ast.VarReference:
		t = scope[e.Name]
	case *ast.ThisFieldReference:
		t = scope["this."+e.Name]
	case *ast.FieldReference:
		recvType := c.checkExpr(scope, e.Recv)
		t = c.fieldType(recvType, e.Name, e.P)
	case *ast.MethodCall:
		recvType := c.checkExpr(scope, e.Recv)
		argTypes := make([]string, len(e.Args))
		for i, a := range e.Args {
			argTypes[i] = c.checkExpr(scope, a)
		}
		defClass, ret, err := c.H.CheckCall(recvType, e.Method, argTypes)
		if err != nil {
			c.reportCallError(e.P, recvType, e.Method, err)
			t = "Obj"
		} else {
			e.DefiningClass = defClass
			t = ret
		}
	case *ast.ConstructorCall:
		argTypes := make([]string, len(e.Args))
		for i, a := range e.Args {
			argTypes[i] = c.checkExpr(scope, a)
		}
		if _, ok := c.H.FindClass(e.Class); !ok {
			c.errf(diagnostics.ErrInvalidType, e.P, "unknown class %q", e.Class)
			t = "Obj"
		} else {
			_, ret, err := c.H.CheckCall(e.Class, hierarchy.ConstructorName, argTypes)
			if err != nil {
				c.reportCallError(e.P, e.Class, hierarchy.ConstructorName, err)
				t = e.Class
			} else {
				t = ret
			}
		}
	case *ast.And:
		c.checkExpr(scope, e.Left)
		c.checkExpr(scope, e.Right)
		t = "Boolean"
	case *ast.Or:
		c.checkExpr(scope, e.Left)
		c.checkExpr(scope, e.Right)
		t = "Boolean"
	case *ast.Not:
		c.checkExpr(scope, e.X)
		t = "Boolean"
	case *ast.IsInstance:
		c.checkExpr(scope, e.X)
		if _, ok := c.H.FindClass(e.Type); !ok {
			c.errf(diagnostics.ErrInvalidType, e.P, "unknown type %q in isinstance test", e.Type)
		}
		t = "Boolean"
	default:
		t = "Obj"
	}
	e.SetType(t)
	return t
}

// reportCallError classifies a hierarchy call-resolution error into the
// right diagnostic code. The hierarchy package reports plain errors since
// it has no notion of source position or the diagnostics taxonomy; this
// is the seam that attaches both.
func (c *Checker) reportCallError(p ast.Pos, class, method string, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "class") && strings.Contains(msg, "not found"):
		c.errf(diagnostics.ErrInvalidType, p, "%s", msg)
	case strings.Contains(msg, "method") && strings.Contains(msg, "not found"):
		c.errf(diagnostics.ErrMethodNotFound, p, "%s", msg)
	case strings.Contains(msg, "arity mismatch"):
		c.errf(diagnostics.ErrArityMismatch, p, "%s", msg)
	default:
		c.errf(diagnostics.ErrArgumentTypeMismatch, p, "%s", msg)
	}
}
