package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/chazu/tern/interop"
)

// bindingsFile is the TOML format the front end hands off: one [[binding]]
// block per extern declaration.
type bindingsFile struct {
	Bindings []bindingDecl `toml:"binding"`
}

type bindingDecl struct {
	Function string   `toml:"function"`
	Params   []string `toml:"params"`
	Returns  string   `toml:"returns"`
	Class    string   `toml:"class"`
	Member   string   `toml:"member"`
	Kind     string   `toml:"kind"`
	Static   bool     `toml:"static"`
	File     string   `toml:"file"`
	Line     int      `toml:"line"`
	Column   int      `toml:"column"`
}

// loadBindings parses a bindings file into resolver requests, stamping
// each with the project's module identity.
func loadBindings(path, org, module, version string) ([]*interop.BindingRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var bf bindingsFile
	if err := toml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	reqs := make([]*interop.BindingRequest, 0, len(bf.Bindings))
	for i, b := range bf.Bindings {
		req, err := b.toRequest(org, module, version)
		if err != nil {
			return nil, fmt.Errorf("%s: binding %d (%s): %w", path, i+1, b.Function, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (b *bindingDecl) toRequest(org, module, version string) (*interop.BindingRequest, error) {
	kind, err := parseCallKind(b.Kind)
	if err != nil {
		return nil, err
	}
	if b.Class == "" {
		return nil, fmt.Errorf("missing class")
	}
	if b.Member == "" && kind != interop.CallConstructor {
		return nil, fmt.Errorf("missing member")
	}

	fn := &interop.ExternFunction{
		Name: b.Function,
		Pos:  interop.Position{File: b.File, Line: b.Line, Column: b.Column},
	}
	for _, p := range b.Params {
		st, err := interop.ParseSourceType(p)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, st)
	}
	ret := b.Returns
	if ret == "" {
		ret = "nil"
	}
	if fn.Return, err = interop.ParseSourceType(ret); err != nil {
		return nil, err
	}

	return &interop.BindingRequest{
		Org:     org,
		Module:  module,
		Version: version,
		Func:    fn,
		Class:   b.Class,
		Member:  b.Member,
		Kind:    kind,
		Static:  b.Static,
	}, nil
}

func parseCallKind(s string) (interop.CallKind, error) {
	switch s {
	case "", "method":
		return interop.CallMethod, nil
	case "constructor":
		return interop.CallConstructor, nil
	case "field-get":
		return interop.CallFieldGet, nil
	case "field-set":
		return interop.CallFieldSet, nil
	default:
		return 0, fmt.Errorf("unknown binding kind %q", s)
	}
}
