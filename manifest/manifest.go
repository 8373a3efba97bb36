// Package manifest handles tern.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a tern.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Interop Interop `toml:"interop"`

	// Dir is the directory containing the tern.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains the module identity carried into binding wrappers.
type Project struct {
	Org     string `toml:"org"`
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Interop configures the native member catalog.
type Interop struct {
	// Classpath lists jars, directories, or .class files to index.
	Classpath []string `toml:"classpath"`
	// Index is the path of the persistent class index database; empty
	// means index in memory only.
	Index string `toml:"index"`
	// Workers bounds parallel binding resolution; zero means one worker
	// per CPU.
	Workers int `toml:"workers"`
}

// Load parses a tern.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "tern.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Project.Version == "" {
		m.Project.Version = "0.1.0"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a tern.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "tern.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// ClasspathEntries returns the configured classpath resolved against the
// manifest directory.
func (m *Manifest) ClasspathEntries() []string {
	entries := make([]string, 0, len(m.Interop.Classpath))
	for _, e := range m.Interop.Classpath {
		if !filepath.IsAbs(e) {
			e = filepath.Join(m.Dir, e)
		}
		entries = append(entries, e)
	}
	return entries
}

// IndexPath returns the configured index database path resolved against
// the manifest directory, or empty if no persistent index is configured.
func (m *Manifest) IndexPath() string {
	if m.Interop.Index == "" {
		return ""
	}
	if filepath.IsAbs(m.Interop.Index) {
		return m.Interop.Index
	}
	return filepath.Join(m.Dir, m.Interop.Index)
}
