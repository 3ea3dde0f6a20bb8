// Package hierarchy implements the class hierarchy (C1): identity,
// subtyping, least-common-ancestor joins, and method resolution over the
// forest of Quack class descriptors rooted at Obj.
package hierarchy

import "fmt"

// FieldDesc is a single field slot: name and declared type, in declaration
// order.
type FieldDesc struct {
	Name string
	Type string
}

// MethodDescriptor describes one method signature: its owning class,
// name, parameter types in order, and return type ("Nothing" if absent).
// The constructor is recorded under the name "$constructor" with a return
// type equal to its owning class.
type MethodDescriptor struct {
	Owner  string
	Name   string
	Params []string
	Ret    string
}

const ConstructorName = "$constructor"

// ClassDescriptor is a single node's payload: everything known about one
// class, independent of its place in the tree.
type ClassDescriptor struct {
	Name    string
	Super   string
	Fields  []FieldDesc
	Methods []MethodDescriptor
}

func (c *ClassDescriptor) FieldType(name string) (string, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

func (c *ClassDescriptor) Method(name string) (MethodDescriptor, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodDescriptor{}, false
}

type node struct {
	desc     *ClassDescriptor
	children []*node
}

// Hierarchy is a forest rooted at the synthetic Obj class. It is built once
// (builtins loaded from the catalog), then user classes are appended to
// their parent's child list in topological (superclass-first) order
// during the type-check pass.
// Every query afterward is pure.
type Hierarchy struct {
	root   *node
	byName map[string]*node
	order  []string // insertion order, for deterministic traversal
}

// New constructs an empty hierarchy seeded with the synthetic Obj root.
// Obj's superclass is itself; callers should still add Obj's built-in
// methods (STR, PRINT, EQUALS) via AddClass/catalog loading before use.
func New() *Hierarchy {
	obj := &node{desc: &ClassDescriptor{Name: "Obj", Super: "Obj"}}
	h := &Hierarchy{root: obj, byName: map[string]*node{"Obj": obj}, order: []string{"Obj"}}
	return h
}

// AddClass appends a class descriptor as a child of its declared
// superclass. The superclass must already be present in the hierarchy.
func (h *Hierarchy) AddClass(desc *ClassDescriptor) error {
	if desc.Name == "Obj" {
		// Obj itself: fill in the root's descriptor (used when loading the
		// built-in catalog, which lists Obj explicitly).
		h.root.desc = desc
		return nil
	}
	parent, ok := h.byName[desc.Super]
	if !ok {
		return fmt.Errorf("superclass %q of %q not found in hierarchy", desc.Super, desc.Name)
	}
	n := &node{desc: desc}
	parent.children = append(parent.children, n)
	h.byName[desc.Name] = n
	h.order = append(h.order, desc.Name)
	return nil
}

// FindClass returns the descriptor for name, or false if absent.
func (h *Hierarchy) FindClass(name string) (*ClassDescriptor, bool) {
	n, ok := h.byName[name]
	if !ok {
		return nil, false
	}
	return n.desc, true
}

// PathFromRoot returns the chain of class names from Obj down to name,
// inclusive of both ends. It panics-free fails with ok=false if name is
// not present.
func (h *Hierarchy) PathFromRoot(name string) ([]string, bool) {
	target, ok := h.byName[name]
	if !ok {
		return nil, false
	}
	var path []string
	var walk func(n *node) bool
	walk = func(n *node) bool {
		path = append(path, n.desc.Name)
		if n == target {
			return true
		}
		for _, c := range n.children {
			if walk(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if !walk(h.root) {
		return nil, false
	}
	return path, true
}

// LCA returns the least common ancestor (the join under subtyping) of a
// and b. An empty name denotes the bottom type and is absorbed: LCA with
// it yields the other side unchanged.
func (h *Hierarchy) LCA(a, b string) (string, error) {
	if a == "" {
		return b, nil
	}
	if b == "" {
		return a, nil
	}
	pa, ok := h.PathFromRoot(a)
	if !ok {
		return "", fmt.Errorf("class %q not found", a)
	}
	pb, ok := h.PathFromRoot(b)
	if !ok {
		return "", fmt.Errorf("class %q not found", b)
	}
	last := -1
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			break
		}
		last = i
	}
	if last < 0 {
		// Can't happen: both paths start at Obj.
		return "Obj", nil
	}
	return pa[last], nil
}

// IsSubtype reports whether actual is a subtype of expected: expected's
// root path is a prefix of actual's.
func (h *Hierarchy) IsSubtype(expected, actual string) bool {
	pe, ok := h.PathFromRoot(expected)
	if !ok {
		return false
	}
	pa, ok := h.PathFromRoot(actual)
	if !ok {
		return false
	}
	if len(pe) > len(pa) {
		return false
	}
	for i := range pe {
		if pe[i] != pa[i] {
			return false
		}
	}
	return true
}

// ResolveMethod walks from class toward the root and returns the first
// descriptor whose name matches, along with the class that defines it.
func (h *Hierarchy) ResolveMethod(class, method string) (defClass string, desc MethodDescriptor, err error) {
	path, ok := h.PathFromRoot(class)
	if !ok {
		return "", MethodDescriptor{}, fmt.Errorf("class %q not found", class)
	}
	for i := len(path) - 1; i >= 0; i-- {
		cd, _ := h.FindClass(path[i])
		if m, ok := cd.Method(method); ok {
			return path[i], m, nil
		}
	}
	return "", MethodDescriptor{}, fmt.Errorf("method %q not found on %q or any ancestor", method, class)
}

// CheckCall resolves method on class, then verifies arity and each
// argument's subtype compatibility, returning the method's return type.
func (h *Hierarchy) CheckCall(class, method string, argTypes []string) (defClass, retType string, err error) {
	defClass, desc, err := h.ResolveMethod(class, method)
	if err != nil {
		return "", "", err
	}
	if len(desc.Params) != len(argTypes) {
		return "", "", fmt.Errorf("arity mismatch calling %s:%s: expected %d arguments, got %d",
			class, method, len(desc.Params), len(argTypes))
	}
	for i, want := range desc.Params {
		got := argTypes[i]
		if !h.IsSubtype(want, got) {
			return "", "", fmt.Errorf("argument %d of %s:%s expected %s, got %s", i, class, method, want, got)
		}
	}
	return defClass, desc.Ret, nil
}

// ClassNames returns every class name known to the hierarchy, in the
// order they were added (builtins first, then user classes in
// topological order) — deterministic given identical input, as the label/emission
// passes require.
func (h *Hierarchy) ClassNames() []string {
	names := make([]string, len(h.order))
	copy(names, h.order)
	return names
}

// Depth returns the hierarchy's maximum path length from Obj, used to
// bound fixpoint iteration in the type-check pass.
func (h *Hierarchy) Depth() int {
	max := 0
	var walk func(n *node, d int)
	walk = func(n *node, d int) {
		if d > max {
			max = d
		}
		for _, c := range n.children {
			walk(c, d+1)
		}
	}
	walk(h.root, 0)
	return max
}

// Root returns the root class name, always "Obj".
func (h *Hierarchy) Root() string { return h.root.desc.Name }
