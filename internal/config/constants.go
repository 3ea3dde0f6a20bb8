// Package config holds process-wide constants and the quack.yaml
// project configuration, mirroring how the teacher splits "named
// constants" (internal/config/constants.go) from "project config file"
// (internal/ext/config.go) into separate concerns under one package
// name for the smaller scope this module needs.
package config

// SourceFileExt is the canonical Quack source extension.
const SourceFileExt = ".qk"

// HasSourceExt reports whether path ends with the recognized source
// extension.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceFileExt) && path[len(path)-len(SourceFileExt):] == SourceFileExt
}

// TrimSourceExt removes the source extension from name, if present.
func TrimSourceExt(name string) string {
	if HasSourceExt(name) {
		return name[:len(name)-len(SourceFileExt)]
	}
	return name
}

// ConstructorName is the synthetic method name every class's constructor
// is emitted under.
const ConstructorName = "$constructor"

// Dunder method names that binary operators and unary minus desugar to
// (C3's builder table, reproduced here as named constants so the
// builder, the catalog, and the emitter all reference the same spelling
// instead of each hand-rolling string literals).
const (
	MethodPlus    = "PLUS"
	MethodMinus   = "MINUS"
	MethodTimes   = "TIMES"
	MethodDivide  = "DIVIDE"
	MethodEquals  = "EQUALS"
	MethodLess    = "LESS"
	MethodMore    = "MORE"
	MethodAtMost  = "ATMOST"
	MethodAtLeast = "ATLEAST"
	MethodAnd     = "AND"
	MethodOr      = "OR"
	MethodNot     = "NOT"
)

// Built-in class names the catalog is required to define (§6).
const (
	ClassObj     = "Obj"
	ClassInt     = "Int"
	ClassString  = "String"
	ClassBoolean = "Boolean"
	ClassNothing = "Nothing"
)

// Label prefixes C7's generator draws from, listed here for reference by
// tests and tooling that need to recognize a label's kind.
const (
	LabelThen     = "then"
	LabelElse     = "else"
	LabelEndif    = "endif"
	LabelLoopHead = "loop_head"
	LabelLoopTest = "loop_test"
	LabelDone     = "done"
	LabelAnd      = "and"
)

// MainModuleName is the synthetic module the bare top-level statements
// are emitted into.
const MainModuleName = "<Main>_main"
