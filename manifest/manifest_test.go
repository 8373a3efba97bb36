package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with a tern.toml
	dir := t.TempDir()
	tomlContent := `
[project]
org = "acme"
name = "widgets"
version = "0.2.0"

[interop]
classpath = ["lib/guava.jar", "build/classes"]
index = ".tern/classindex.db"
workers = 4
`
	if err := os.WriteFile(filepath.Join(dir, "tern.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Org != "acme" {
		t.Errorf("org = %q, want acme", m.Project.Org)
	}
	if m.Project.Name != "widgets" {
		t.Errorf("name = %q, want widgets", m.Project.Name)
	}
	if m.Project.Version != "0.2.0" {
		t.Errorf("version = %q, want 0.2.0", m.Project.Version)
	}
	if m.Interop.Workers != 4 {
		t.Errorf("workers = %d, want 4", m.Interop.Workers)
	}

	entries := m.ClasspathEntries()
	if len(entries) != 2 {
		t.Fatalf("classpath entries = %v", entries)
	}
	if entries[0] != filepath.Join(m.Dir, "lib/guava.jar") {
		t.Errorf("entry 0 = %q", entries[0])
	}

	if m.IndexPath() != filepath.Join(m.Dir, ".tern/classindex.db") {
		t.Errorf("index path = %q", m.IndexPath())
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
org = "acme"
name = "bare"
`
	if err := os.WriteFile(filepath.Join(dir, "tern.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("default version = %q, want 0.1.0", m.Project.Version)
	}
	if m.IndexPath() != "" {
		t.Errorf("index path = %q, want empty", m.IndexPath())
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	tomlContent := `
[project]
org = "acme"
name = "walkup"
version = "1.0.0"
`
	if err := os.WriteFile(filepath.Join(root, "tern.toml"), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m == nil {
		t.Fatal("manifest not found walking up")
	}
	if m.Project.Name != "walkup" {
		t.Errorf("name = %q", m.Project.Name)
	}
}

func TestFindAndLoadMissing(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil manifest, got %+v", m)
	}
}
