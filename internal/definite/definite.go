// Package definite implements C4: the definite-assignment pass. It
// computes, for every scope carrier, the set of variable names that are
// surely initialized at the carrier's end, and rejects uses that are not
// yet definitely assigned on every path.
package definite

import (
	"sort"

	"github.com/funvibe/quackc/internal/ast"
	"github.com/funvibe/quackc/internal/diagnostics"
)

// Set is an explicit, copyable set of initialized names — the object the
// design notes ask for in place of hand-copied maps: Clone gives a fresh
// snapshot, Intersect implements the if-else join. Each member also
// carries the declared type it was last bound with ("" if the binding
// had no explicit `: Type` annotation), so the if-else join can tell a
// name that is definitely assigned with the same shape on both arms
// from one that merely shares a name while its arms declare it
// incompatibly (spec.md §8 S2).
type Set struct {
	m map[string]string
}

func NewSet() *Set { return &Set{m: make(map[string]string)} }

func (s *Set) Has(name string) bool { _, ok := s.m[name]; return ok }

// Add binds name with no declared-type information.
func (s *Set) Add(name string) { s.AddTyped(name, "") }

// AddTyped binds name, recording declared as its explicit type
// annotation ("" if the assignment carried none).
func (s *Set) AddTyped(name, declared string) { s.m[name] = declared }

func (s *Set) Clone() *Set {
	c := NewSet()
	for k, v := range s.m {
		c.m[k] = v
	}
	return c
}

// Intersect returns a new set containing the names present in both s and
// other — the join rule for two-arm if. A name present on both arms but
// declared with two different, non-empty types on each is dropped from
// the join: the two arms bound it incompatibly, so it is not definitely
// assigned in any single shape after the if, and a later use reports
// UseBeforeInit.
func (s *Set) Intersect(other *Set) *Set {
	out := NewSet()
	for k, dt := range s.m {
		odt, ok := other.m[k]
		if !ok {
			continue
		}
		if dt != "" && odt != "" && dt != odt {
			continue
		}
		merged := dt
		if merged == "" {
			merged = odt
		}
		out.m[k] = merged
	}
	return out
}

// Names returns the set's members in sorted order, for deterministic
// snapshots.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Checker runs the definite-assignment pass over one compilation unit,
// collecting diagnostics as it goes.
type Checker struct {
	Bag *diagnostics.Bag
}

func New(bag *diagnostics.Bag) *Checker {
	return &Checker{Bag: bag}
}

func (c *Checker) errf(code diagnostics.Code, p ast.Pos, format string, args ...interface{}) {
	c.Bag.Add(diagnostics.New(code, diagnostics.Position{Line: p.Line, Col: p.Col}, format, args...))
}

// CheckRoot runs the pass over a whole compilation: each class's
// constructor, each of its methods, then the bare block.
func (c *Checker) CheckRoot(root *ast.Root) {
	for _, cls := range root.Program.Classes {
		c.checkClass(cls)
	}
	c.checkBare(root.Program.Bare)
}

func (c *Checker) checkClass(cls *ast.ClassDecl) {
	set := NewSet()
	for _, name := range cls.Signature.Args.Names {
		set.Add(name)
	}
	for _, s := range cls.Constructor.Stmts {
		set = c.checkStmt(set, true, s)
	}
	cls.Constructor.Initialized = set.Names()

	for _, m := range cls.Methods.Methods {
		c.checkMethod(m, set)
	}
}

func (c *Checker) checkMethod(m *ast.MethodDecl, ctorFields *Set) {
	set := NewSet()
	for _, name := range m.Args.Names {
		set.Add(name)
	}
	// Fields assigned in the constructor are part of `this.*` and are
	// available (as the method scope's this.name keys) from the start.
	for _, name := range ctorFields.Names() {
		if len(name) >= 5 && name[:5] == "this." {
			set.Add(name)
		}
	}
	for _, s := range m.Body.Stmts {
		set = c.checkStmt(set, false, s)
	}
	m.Initialized = set.Names()
}

func (c *Checker) checkBare(b *ast.BareStatementBlock) {
	set := NewSet()
	for _, s := range b.Stmts {
		set = c.checkStmt(set, false, s)
	}
	b.Initialized = set.Names()
}

func (c *Checker) checkStmt(set *Set, inCtor bool, s ast.Stmt) *Set {
	switch s := s.(type) {
	case *ast.ExprStmt:
		c.checkExpr(set, inCtor, s.X)
		return set
	case *ast.BareExprStmt:
		c.checkExpr(set, inCtor, s.X)
		return set
	case *ast.Assignment:
		c.checkExpr(set, inCtor, s.Rhs)
		switch target := s.Target.(type) {
		case *ast.VarReference:
			set.AddTyped(target.Name, s.Declared)
		case *ast.ThisFieldReference:
			if !inCtor {
				c.errf(diagnostics.ErrAssignFieldOutsideCtor, s.P, "assignment to this.%s outside a constructor", target.Name)
			}
			set.Add("this." + target.Name)
		case *ast.FieldReference:
			c.checkExpr(set, inCtor, target.Recv)
		}
		return set
	case *ast.If:
		c.checkExpr(set, inCtor, s.Cond)
		thenSet := c.checkBlock(set.Clone(), inCtor, s.Then)
		if s.Else == nil {
			// Single-arm if: names bound only in the then-arm are lost.
			return set
		}
		elseSet := c.checkBlock(set.Clone(), inCtor, s.Else)
		return thenSet.Intersect(elseSet)
	case *ast.While:
		c.checkExpr(set, inCtor, s.Cond)
		c.checkBlock(set.Clone(), inCtor, s.Body)
		// Loop body may execute zero times: no guaranteed new bindings.
		return set
	case *ast.ReturnStatement:
		if inCtor {
			c.errf(diagnostics.ErrReturnInCtor, s.P, "return is not allowed inside a constructor")
		}
		c.checkExpr(set, inCtor, s.Value)
		return set
	default:
		return set
	}
}

func (c *Checker) checkBlock(set *Set, inCtor bool, b *ast.StatementBlock) *Set {
	for _, s := range b.Stmts {
		set = c.checkStmt(set, inCtor, s)
	}
	return set
}

func (c *Checker) checkExpr(set *Set, inCtor bool, e ast.Expr) {
	switch e := e.(type) {
	case *ast.VarReference:
		if !set.Has(e.Name) {
			c.errf(diagnostics.ErrUseBeforeInit, e.P, "use of %q before it is definitely assigned", e.Name)
		}
	case *ast.ThisFieldReference:
		if !set.Has("this." + e.Name) {
			c.errf(diagnostics.ErrUseBeforeInit, e.P, "use of this.%s before it is definitely assigned", e.Name)
		}
	case *ast.FieldReference:
		c.checkExpr(set, inCtor, e.Recv)
	case *ast.MethodCall:
		for _, a := range e.Args {
			c.checkExpr(set, inCtor, a)
		}
		c.checkExpr(set, inCtor, e.Recv)
	case *ast.ConstructorCall:
		for _, a := range e.Args {
			c.checkExpr(set, inCtor, a)
		}
	case *ast.And:
		c.checkExpr(set, inCtor, e.Left)
		c.checkExpr(set, inCtor, e.Right)
	case *ast.Or:
		c.checkExpr(set, inCtor, e.Left)
		c.checkExpr(set, inCtor, e.Right)
	case *ast.Not:
		c.checkExpr(set, inCtor, e.X)
	case *ast.IsInstance:
		c.checkExpr(set, inCtor, e.X)
	}
}
