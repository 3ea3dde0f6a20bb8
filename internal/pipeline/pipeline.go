// Package pipeline threads one compilation through a fixed sequence of
// staged processors — the same staged-processor shape the teacher uses
// to run its own lexer/parser/analyzer/evaluator chain, generalized here
// to the builder/definite-assignment/type-check/emit chain (C3-C6).
package pipeline

// Processor is one stage of a compilation run.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order. Stages are expected to no-op (not
// panic) once ctx.Errors holds a fatal diagnostic, so later stages never
// run against a half-built AST.
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}
