// Command quackc is the Quack compiler's CLI driver. It is the
// collaborator boundary §5 and §6 describe: file I/O, output-path
// conventions, and CLI parsing all live here, outside the core.
//
// Usage mirrors the teacher's own raw os.Args subcommand style rather
// than the flag package (see cmd/funxy/main.go):
//
//	quackc <parse-tree.json> [-catalog path] [-out dir]
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/funvibe/quackc/internal/cache"
	"github.com/funvibe/quackc/internal/config"
	"github.com/funvibe/quackc/internal/diagnostics"
	"github.com/funvibe/quackc/internal/driver"
	"github.com/funvibe/quackc/internal/parsejson"
	"github.com/funvibe/quackc/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <parse-tree.json> [-catalog path] [-out dir]\n", os.Args[0])
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}

func run(sourcePath string, rest []string) error {
	proj, err := loadProject(rest)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourcePath, err)
	}
	sum := sha256.Sum256(data)
	sourceHash := hex.EncodeToString(sum[:])

	var bc *cache.Cache
	if proj.Cache {
		bc, err = cache.Open(proj.CacheDB)
		if err != nil {
			return err
		}
		defer bc.Close()

		if buildID, _, ok, err := bc.Lookup(sourceHash); err != nil {
			return err
		} else if ok {
			fmt.Printf("quackc: %s unchanged, build %s is current\n", sourcePath, buildID)
			return nil
		}
	}

	tree, err := parsejson.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	comp, err := driver.NewCompiler(proj.Catalog)
	if err != nil {
		return err
	}

	ctx := pipeline.NewContext(string(data), sourcePath, tree)
	buildID := uuid.New().String()
	ctx = comp.Run(ctx, buildID)

	if ctx.Errors.HasErrors() {
		for _, e := range ctx.Errors.Errors {
			fmt.Fprintln(os.Stderr, formatDiagnostic(e))
		}
		return fmt.Errorf("%s: %d error(s)", sourcePath, len(ctx.Errors.Errors))
	}

	if err := os.MkdirAll(proj.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", proj.OutDir, err)
	}
	for _, m := range ctx.Modules {
		outPath := filepath.Join(proj.OutDir, m.Name+".asm")
		if err := os.WriteFile(outPath, []byte(m.Text()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
	}
	manifestPath := filepath.Join(proj.OutDir, "manifest.txt")
	if err := os.WriteFile(manifestPath, []byte(ctx.Manifest.Text()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", manifestPath, err)
	}

	if bc != nil {
		if err := bc.Record(sourceHash, buildID, strings.Join(ctx.Manifest.Modules, ",")); err != nil {
			return err
		}
	}

	fmt.Printf("quackc: build %s: %d module(s) written to %s\n", buildID, len(ctx.Modules), proj.OutDir)
	return nil
}

// loadProject resolves quack.yaml (searched for from the working
// directory) and applies any -catalog/-out overrides from rest.
func loadProject(rest []string) (*config.Project, error) {
	var catalogOverride, outOverride string
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-catalog":
			i++
			if i < len(rest) {
				catalogOverride = rest[i]
			}
		case "-out":
			i++
			if i < len(rest) {
				outOverride = rest[i]
			}
		}
	}

	proj := &config.Project{Catalog: catalogOverride, OutDir: outOverride}
	if path, err := config.FindProject("."); err == nil && path != "" {
		found, err := config.LoadProject(path)
		if err != nil {
			return nil, err
		}
		if catalogOverride == "" {
			proj.Catalog = found.Catalog
		}
		if outOverride == "" {
			proj.OutDir = found.OutDir
		}
		proj.Cache = found.Cache
		proj.CacheDB = found.CacheDB
	}
	if proj.Catalog == "" {
		return nil, fmt.Errorf("no catalog configured: pass -catalog or set catalog in quack.yaml")
	}
	if proj.OutDir == "" {
		proj.OutDir = "."
	}
	return proj, nil
}

func formatDiagnostic(e *diagnostics.Error) string {
	return yellow(e.Error())
}
