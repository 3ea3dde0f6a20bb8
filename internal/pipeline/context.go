package pipeline

import (
	"github.com/funvibe/quackc/internal/ast"
	"github.com/funvibe/quackc/internal/diagnostics"
	"github.com/funvibe/quackc/internal/emit"
	"github.com/funvibe/quackc/internal/parsetree"
)

// Context carries one compilation run through the pipeline. The
// concrete lexer/parser collaborator (out of scope for this module, per
// §1's explicit Non-goals) is expected to populate ParseTree before the
// pipeline runs; everything from there on is this module's own C3-C6
// chain.
type Context struct {
	SourceCode string
	FilePath   string

	ParseTree *parsetree.Program
	AstRoot   *ast.Root

	Modules  []emit.Module
	Manifest emit.Manifest

	Errors *diagnostics.Bag
}

func NewContext(source, filePath string, tree *parsetree.Program) *Context {
	return &Context{
		SourceCode: source,
		FilePath:   filePath,
		ParseTree:  tree,
		Errors:     &diagnostics.Bag{},
	}
}
