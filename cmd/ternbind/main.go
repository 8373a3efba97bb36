// ternbind - resolves Tern extern bindings against a JVM classpath and
// writes the binding table consumed by the bytecode emitter.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/tern/classindex"
	"github.com/chazu/tern/interop"
	"github.com/chazu/tern/manifest"
)

var log = commonlog.GetLogger("tern.bind")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	projectDir := flag.String("project", ".", "Project directory (tern.toml is searched upward from here)")
	classpath := flag.String("cp", "", "Additional classpath entries (comma separated jars, dirs, or .class files)")
	bindingsPath := flag.String("bindings", "", "Bindings file produced by the front end")
	outPath := flag.String("o", "", "Output path for the resolved binding table")
	reindex := flag.Bool("reindex", false, "Rebuild the persistent class index from the classpath")
	workers := flag.Int("workers", 0, "Parallel resolution workers (0 = one per CPU)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ternbind [options] -bindings FILE\n\n")
		fmt.Fprintf(os.Stderr, "Resolves extern bindings against the project classpath.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ternbind -bindings build/externs.toml -o build/bindings.tbl\n")
		fmt.Fprintf(os.Stderr, "  ternbind -cp lib/guava.jar -bindings externs.toml\n")
		fmt.Fprintf(os.Stderr, "  ternbind -reindex            # refresh the class index cache\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if err := run(*projectDir, *classpath, *bindingsPath, *outPath, *reindex, *workers); err != nil {
		var failures diagnosticErrors
		if errors.As(err, &failures) {
			for _, f := range failures {
				fmt.Fprintf(os.Stderr, "%s: error: %s\n", f.Pos, f.Error())
			}
			fmt.Fprintf(os.Stderr, "%d binding error(s)\n", len(failures))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// diagnosticErrors aggregates per-binding failures so they render as
// positioned compile errors rather than one opaque error.
type diagnosticErrors []*interop.ResolutionFailure

func (d diagnosticErrors) Error() string {
	return fmt.Sprintf("%d binding error(s)", len(d))
}

func run(projectDir, classpath, bindingsPath, outPath string, reindex bool, workers int) error {
	mf, err := manifest.FindAndLoad(projectDir)
	if err != nil {
		return err
	}
	if mf == nil {
		mf = &manifest.Manifest{Dir: projectDir}
		log.Info("no tern.toml found, using defaults")
	}

	entries := mf.ClasspathEntries()
	if classpath != "" {
		for _, e := range strings.Split(classpath, ",") {
			if e = strings.TrimSpace(e); e != "" {
				entries = append(entries, e)
			}
		}
	}

	catalog, err := openCatalog(mf, entries, reindex)
	if err != nil {
		return err
	}

	if bindingsPath == "" {
		if reindex {
			return nil
		}
		return fmt.Errorf("no bindings file given (see -bindings)")
	}

	reqs, err := loadBindings(bindingsPath, mf.Project.Org, mf.Project.Name, mf.Project.Version)
	if err != nil {
		return err
	}
	log.Infof("resolving %d extern binding(s)", len(reqs))

	if workers == 0 {
		workers = mf.Interop.Workers
	}
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	table := interop.NewBindingTable()
	resolver := interop.NewResolver(catalog)
	if err := table.ResolveAll(resolver, reqs, workers); err != nil {
		return err
	}

	if failures := table.Failures(); len(failures) > 0 {
		return diagnosticErrors(failures)
	}
	log.Infof("resolved %d binding(s)", table.Len())

	if outPath != "" {
		data, err := interop.MarshalTable(table)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("writing binding table: %w", err)
		}
		log.Infof("wrote binding table to %s", outPath)
	}
	return nil
}

// openCatalog builds the member catalog: a persistent index when the
// manifest configures one, otherwise an in-memory index over the
// classpath. Either way lookups are memoized per class name.
func openCatalog(mf *manifest.Manifest, entries []string, reindex bool) (interop.Catalog, error) {
	indexPath := mf.IndexPath()
	if indexPath == "" {
		ix, err := classindex.BuildFromClasspath(entries)
		if err != nil {
			return nil, err
		}
		log.Debugf("indexed %d class(es) in memory", ix.Len())
		return interop.NewCachedCatalog(ix), nil
	}

	_, statErr := os.Stat(indexPath)
	fresh := errors.Is(statErr, os.ErrNotExist)

	store, err := classindex.OpenStore(indexPath)
	if err != nil {
		return nil, err
	}

	if fresh || reindex {
		ix, err := classindex.BuildFromClasspath(entries)
		if err != nil {
			store.Close()
			return nil, err
		}
		if err := store.SaveIndex(ix); err != nil {
			store.Close()
			return nil, err
		}
		log.Infof("indexed %d class(es) into %s", ix.Len(), indexPath)
	}
	return interop.NewCachedCatalog(store), nil
}
