// Package catalog loads the built-in class catalog — the external JSON
// description of Obj, Int, String, Boolean, Nothing and any other
// pre-declared classes — and seeds a hierarchy.Hierarchy with it.
//
// The catalog format mirrors funxy's own builtin registration style
// (internal/analyzer/builtins.go registers a fixed table rather than a
// hand-rolled struct-by-struct switch); here the table lives in JSON on
// disk since the specification requires that collaborator boundary.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/funvibe/quackc/internal/hierarchy"
)

// rawMethod is the JSON shape of one method entry.
type rawMethod struct {
	Params []string `json:"params"`
	Ret    string   `json:"ret"`
}

// rawClass is the JSON shape of one class entry.
type rawClass struct {
	Super   string               `json:"super"`
	Fields  map[string]string    `json:"fields"`
	Methods map[string]rawMethod `json:"methods"`
}

// Load reads a catalog JSON file and returns a hierarchy seeded with its
// classes. The catalog must contain Obj, Int, String, Boolean, Nothing.
func Load(path string) (*hierarchy.Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader is Load but over an already-open reader, for embedding or
// testing without touching the filesystem.
func LoadReader(r io.Reader) (*hierarchy.Hierarchy, error) {
	var raw map[string]rawClass
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	for _, required := range []string{"Obj", "Int", "String", "Boolean", "Nothing"} {
		if _, ok := raw[required]; !ok {
			return nil, fmt.Errorf("catalog is missing required built-in class %q", required)
		}
	}

	h := hierarchy.New()

	// Obj must be registered first since every other class's super chain
	// bottoms out at it; everything else is registered in a topological
	// order derived from the super-class edges so AddClass never sees an
	// unregistered parent.
	names := make([]string, 0, len(raw))
	for name := range raw {
		if name != "Obj" {
			names = append(names, name)
		}
	}
	sort.Strings(names) // deterministic before topo-sorting

	if err := addObj(h, raw["Obj"]); err != nil {
		return nil, err
	}

	remaining := names
	for len(remaining) > 0 {
		progressed := false
		var next []string
		for _, name := range remaining {
			rc := raw[name]
			if _, ok := h.FindClass(rc.Super); !ok {
				next = append(next, name)
				continue
			}
			if err := addClass(h, name, rc); err != nil {
				return nil, err
			}
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("catalog has classes whose superclass is never defined: %v", next)
		}
		remaining = next
	}

	return h, nil
}

func addObj(h *hierarchy.Hierarchy, rc rawClass) error {
	desc := &hierarchy.ClassDescriptor{Name: "Obj", Super: "Obj"}
	desc.Fields = fieldsOf(rc)
	desc.Methods = methodsOf("Obj", rc)
	return h.AddClass(desc)
}

func addClass(h *hierarchy.Hierarchy, name string, rc rawClass) error {
	desc := &hierarchy.ClassDescriptor{
		Name:    name,
		Super:   rc.Super,
		Fields:  fieldsOf(rc),
		Methods: methodsOf(name, rc),
	}
	return h.AddClass(desc)
}

func fieldsOf(rc rawClass) []hierarchy.FieldDesc {
	names := make([]string, 0, len(rc.Fields))
	for n := range rc.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]hierarchy.FieldDesc, 0, len(names))
	for _, n := range names {
		out = append(out, hierarchy.FieldDesc{Name: n, Type: rc.Fields[n]})
	}
	return out
}

func methodsOf(owner string, rc rawClass) []hierarchy.MethodDescriptor {
	names := make([]string, 0, len(rc.Methods))
	for n := range rc.Methods {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]hierarchy.MethodDescriptor, 0, len(names))
	for _, n := range names {
		m := rc.Methods[n]
		out = append(out, hierarchy.MethodDescriptor{Owner: owner, Name: n, Params: m.Params, Ret: m.Ret})
	}
	return out
}
