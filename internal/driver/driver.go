// Package driver wires C3 through C6 into a single pipeline.Pipeline and
// owns the one catalog-seeded hierarchy and label generator a run
// shares, the way the teacher's cmd/funxy main assembles its own
// lexer/parser/analyzer/evaluator chain around one shared loader.
package driver

import (
	"fmt"

	"github.com/funvibe/quackc/internal/astbuild"
	"github.com/funvibe/quackc/internal/catalog"
	"github.com/funvibe/quackc/internal/definite"
	"github.com/funvibe/quackc/internal/diagnostics"
	"github.com/funvibe/quackc/internal/emit"
	"github.com/funvibe/quackc/internal/hierarchy"
	"github.com/funvibe/quackc/internal/label"
	"github.com/funvibe/quackc/internal/pipeline"
	"github.com/funvibe/quackc/internal/typecheck"
)

// astBuildProcessor runs C3: lowers the collaborator's parse tree into
// the real AST.
type astBuildProcessor struct{}

func (astBuildProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.ParseTree == nil {
		ctx.Errors.Add(diagnostics.New(diagnostics.ErrParseError, diagnostics.Position{}, "driver: no parse tree to build from"))
		return ctx
	}
	ctx.AstRoot = astbuild.New().Build(ctx.ParseTree)
	return ctx
}

// definiteAssignmentProcessor runs C4.
type definiteAssignmentProcessor struct{}

func (definiteAssignmentProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil || ctx.Errors.HasErrors() {
		return ctx
	}
	definite.New(ctx.Errors).CheckRoot(ctx.AstRoot)
	return ctx
}

// typeCheckProcessor runs C5 against a hierarchy pre-seeded from the
// built-in class catalog.
type typeCheckProcessor struct {
	Hierarchy *hierarchy.Hierarchy
}

func (p typeCheckProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil || ctx.Errors.HasErrors() {
		return ctx
	}
	typecheck.New(p.Hierarchy, ctx.Errors).CheckRoot(ctx.AstRoot)
	return ctx
}

// emitProcessor runs C6, stamping the run's build ID onto the manifest.
type emitProcessor struct {
	Labels  *label.Generator
	BuildID string
}

func (p emitProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil || ctx.Errors.HasErrors() {
		return ctx
	}
	modules, err := emit.New(p.Labels).EmitRoot(ctx.AstRoot)
	if err != nil {
		ctx.Errors.Add(diagnostics.New(diagnostics.ErrInvalidType, diagnostics.Position{}, "emit: %s", err))
		return ctx
	}
	ctx.Modules = modules
	ctx.Manifest = emit.NewManifest(p.BuildID, modules)
	return ctx
}

// Compiler owns the hierarchy a run's catalog seeds and the label
// generator C6 draws from — the two pieces of shared mutable state
// §5 calls out as owned by "a single top-level driver".
type Compiler struct {
	Hierarchy *hierarchy.Hierarchy
	Labels    *label.Generator
}

// NewCompiler loads the built-in class catalog from path and returns a
// Compiler ready to run a compilation against it. Run adds the unit's
// user classes to Hierarchy and advances Labels; neither is reset
// between runs on the same Compiler.
func NewCompiler(catalogPath string) (*Compiler, error) {
	h, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("driver: loading catalog: %w", err)
	}
	return &Compiler{Hierarchy: h, Labels: label.NewGenerator()}, nil
}

// Run compiles one unit through C3-C6, tagging the emitted manifest with
// buildID (the driver's CLI layer is responsible for generating one —
// the core itself never calls into time/rand, see §5).
func (c *Compiler) Run(ctx *pipeline.Context, buildID string) *pipeline.Context {
	p := pipeline.New(
		astBuildProcessor{},
		definiteAssignmentProcessor{},
		typeCheckProcessor{Hierarchy: c.Hierarchy},
		emitProcessor{Labels: c.Labels, BuildID: buildID},
	)
	return p.Run(ctx)
}
