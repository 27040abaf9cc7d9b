// Package workspace loads a mica.yaml manifest: the ordered set of module
// source files that make up a workspace, plus an optional default capability
// list. The list is loaded as-is; no code in this module reads it, and the
// CLI's -run flag does not load a manifest.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/parser"
	"github.com/Sir-Teo/mica/internal/resolver"
)

// SchemaVersion identifies the mica.yaml schema this package understands.
const SchemaVersion = "mica.workspace/v1"

// Manifest is the parsed contents of a mica.yaml workspace file.
type Manifest struct {
	Schema              string   `yaml:"schema"`
	Modules             []string `yaml:"modules"`
	DefaultCapabilities []string `yaml:"default_capabilities"`
}

// Load reads and validates a workspace manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse workspace manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("workspace manifest validation failed: %w", err)
	}

	return &m, nil
}

// Validate checks the manifest for internal consistency: a recognized
// schema, at least one module, and no duplicate module paths.
func (m *Manifest) Validate() error {
	if m.Schema != "" && m.Schema != SchemaVersion {
		return fmt.Errorf("unsupported workspace schema: %s (expected %s)", m.Schema, SchemaVersion)
	}
	if len(m.Modules) == 0 {
		return fmt.Errorf("workspace manifest lists no modules")
	}
	seen := make(map[string]bool, len(m.Modules))
	for _, mod := range m.Modules {
		if seen[mod] {
			return fmt.Errorf("duplicate module path: %s", mod)
		}
		seen[mod] = true
	}
	return nil
}

// LoadModules parses every module path in m, relative to dir (the directory
// containing the manifest itself, so module paths may be written relative to
// it), in manifest order.
func (m *Manifest) LoadModules(dir string) ([]*ast.Module, error) {
	modules := make([]*ast.Module, 0, len(m.Modules))
	for _, rel := range m.Modules {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, rel)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read module %s: %w", rel, err)
		}
		mod, err := parser.Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("failed to parse module %s: %w", rel, err)
		}
		modules = append(modules, mod)
	}
	return modules, nil
}

// Graph parses every module named in the manifest and builds the
// cross-module resolution graph over them, ready for
// resolver.ModuleGraph.ResolveModules.
func (m *Manifest) Graph(dir string) (*resolver.ModuleGraph, []*ast.Module, error) {
	modules, err := m.LoadModules(dir)
	if err != nil {
		return nil, nil, err
	}
	return resolver.NewModuleGraph(modules), modules, nil
}
