package jvm

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// ReadJar opens a jar (or any zip) archive and parses every .class entry,
// invoking fn for each parsed class. Entries that are not class files
// (manifests, resources, module-info) are skipped.
func ReadJar(path string, fn func(*ClassFile) error) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("cannot open jar %s: %w", path, err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if !strings.HasSuffix(entry.Name, ".class") {
			continue
		}
		if strings.HasSuffix(entry.Name, "module-info.class") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("cannot open %s in %s: %w", entry.Name, path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("cannot read %s in %s: %w", entry.Name, path, err)
		}

		cf, err := ParseClassFile(data)
		if err != nil {
			return fmt.Errorf("parsing %s in %s: %w", entry.Name, path, err)
		}
		if err := fn(cf); err != nil {
			return err
		}
	}
	return nil
}
