package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project is the top-level quack.yaml configuration: where the built-in
// class catalog lives, where emitted modules are written, and whether
// the incremental-build cache is enabled. Shaped after the teacher's
// own funxy.yaml loader (internal/ext/config.go): Load reads and
// validates, setDefaults fills in the rest.
type Project struct {
	// Catalog is the path to the built-in class catalog JSON file.
	Catalog string `yaml:"catalog"`

	// OutDir is where emitted .asm modules and the manifest are written.
	OutDir string `yaml:"out_dir,omitempty"`

	// Cache, if true, enables the sqlite incremental-build cache at
	// CacheDB.
	Cache bool `yaml:"cache,omitempty"`

	// CacheDB is the path to the incremental-build cache database.
	CacheDB string `yaml:"cache_db,omitempty"`
}

// LoadProject reads and parses a quack.yaml file at path.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseProject(data, path)
}

// ParseProject parses quack.yaml content from bytes. path is used only
// for error messages.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if p.Catalog == "" {
		return nil, fmt.Errorf("%s: catalog is required", path)
	}
	p.setDefaults()
	return &p, nil
}

func (p *Project) setDefaults() {
	if p.OutDir == "" {
		p.OutDir = "."
	}
	if p.Cache && p.CacheDB == "" {
		p.CacheDB = ".quack-cache.db"
	}
}

// FindProject searches for quack.yaml starting at dir and walking up to
// parent directories, the way the teacher's FindConfig locates funxy.yaml.
func FindProject(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "quack.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
