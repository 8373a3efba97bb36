package interop

import (
	"fmt"

	"github.com/chazu/tern/jvm"
)

// CallKind is the call shape a binding requests.
type CallKind int

const (
	CallMethod CallKind = iota
	CallConstructor
	CallFieldGet
	CallFieldSet
)

func (k CallKind) String() string {
	switch k {
	case CallMethod:
		return "method"
	case CallConstructor:
		return "constructor"
	case CallFieldGet:
		return "field-get"
	case CallFieldSet:
		return "field-set"
	}
	return "unknown"
}

// memberKind maps the requested call shape to the catalog member kind it
// must resolve against.
func (k CallKind) memberKind() MemberKind {
	switch k {
	case CallConstructor:
		return KindConstructor
	case CallFieldGet, CallFieldSet:
		return KindField
	default:
		return KindMethod
	}
}

// Position locates a binding declaration in Tern source, for diagnostic
// attribution.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// ExternFunction is the front end's resolved view of an extern function
// definition: its name and declared boundary types.
type ExternFunction struct {
	Name   string
	Params []SourceType
	Return SourceType
	Pos    Position
}

// BindingRequest asks the resolver to bind one extern declaration to a
// member of a JVM class. Org, Module, and Version identify the owning Tern
// module and are carried through to the wrapper unchanged.
type BindingRequest struct {
	Org     string
	Module  string
	Version string

	Func   *ExternFunction
	Class  string // dotted class name as written in the declaration
	Member string // ignored for constructors
	Kind   CallKind
	Static bool
}

// ClassName returns the target class in internal binary form.
func (r *BindingRequest) ClassName() string {
	return jvm.InternalName(r.Class)
}

// Key returns the binding's identity in the compilation unit's table.
func (r *BindingRequest) Key() BindingKey {
	return BindingKey{
		Org:     r.Org,
		Module:  r.Module,
		Version: r.Version,
		Class:   r.ClassName(),
		Member:  r.Member,
		Kind:    r.Kind,
	}
}

// BindingKey identifies a resolved binding. One wrapper exists per key.
type BindingKey struct {
	Org     string
	Module  string
	Version string
	Class   string
	Member  string
	Kind    CallKind
}

func (k BindingKey) String() string {
	return fmt.Sprintf("%s/%s:%s %s %s.%s",
		k.Org, k.Module, k.Version, k.Kind, jvm.ExternalName(k.Class), k.Member)
}
