// Package classindex builds and stores member catalogs over JVM class
// files, supplying the interop resolver's view of the classpath.
package classindex

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazu/tern/interop"
	"github.com/chazu/tern/jvm"
)

// Index is an in-memory member catalog keyed by internal binary class
// name. Build it once per compilation; lookups afterwards are read-only.
type Index struct {
	classes map[string][]*interop.MemberSignature
}

// New creates an empty index.
func New() *Index {
	return &Index{classes: make(map[string][]*interop.MemberSignature)}
}

// AddClass converts a parsed class file into catalog entries. Synthetic
// members and class initializers never take part in interop resolution
// and are skipped.
func (ix *Index) AddClass(cf *jvm.ClassFile) error {
	var members []*interop.MemberSignature

	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.Flags&jvm.AccSynthetic != 0 || m.Name == "<clinit>" {
			continue
		}
		sig, err := interop.MemberFromMethod(cf.Name, m)
		if err != nil {
			return fmt.Errorf("class %s method %s: %w", cf.Name, m.Name, err)
		}
		members = append(members, sig)
	}
	for i := range cf.Fields {
		f := &cf.Fields[i]
		if f.Flags&jvm.AccSynthetic != 0 {
			continue
		}
		sig, err := interop.MemberFromField(cf.Name, f)
		if err != nil {
			return fmt.Errorf("class %s field %s: %w", cf.Name, f.Name, err)
		}
		members = append(members, sig)
	}

	ix.classes[cf.Name] = members
	return nil
}

// AddClasspathEntry indexes a classpath element: a jar file, a single
// .class file, or a directory tree of .class files.
func (ix *Index) AddClasspathEntry(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("classpath entry %s: %w", path, err)
	}

	if info.IsDir() {
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(p, ".class") {
				return nil
			}
			return ix.addClassFile(p)
		})
	}

	if strings.HasSuffix(path, ".jar") || strings.HasSuffix(path, ".zip") {
		return jvm.ReadJar(path, ix.AddClass)
	}
	if strings.HasSuffix(path, ".class") {
		return ix.addClassFile(path)
	}
	return fmt.Errorf("classpath entry %s: unsupported file type", path)
}

func (ix *Index) addClassFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	cf, err := jvm.ParseClassFile(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return ix.AddClass(cf)
}

// Lookup implements interop.Catalog.
func (ix *Index) Lookup(className string) ([]*interop.MemberSignature, error) {
	members, ok := ix.classes[className]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interop.ErrClassNotFound, jvm.ExternalName(className))
	}
	return members, nil
}

// Classes returns the indexed class names, sorted.
func (ix *Index) Classes() []string {
	names := make([]string, 0, len(ix.classes))
	for name := range ix.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of indexed classes.
func (ix *Index) Len() int {
	return len(ix.classes)
}

// BuildFromClasspath indexes every entry of a classpath.
func BuildFromClasspath(entries []string) (*Index, error) {
	ix := New()
	for _, entry := range entries {
		if err := ix.AddClasspathEntry(entry); err != nil {
			return nil, err
		}
	}
	return ix, nil
}
