// Package jvm models the JVM's descriptor-based type system: primitive
// kinds, boxed wrappers, arrays, and reference types, plus the binary
// descriptor grammar and a class file reader.
package jvm

import "strings"

// PrimKind identifies a JVM primitive type.
type PrimKind int

const (
	Boolean PrimKind = iota
	Byte
	Char
	Short
	Int
	Long
	Float
	Double
)

var primNames = [...]string{"boolean", "byte", "char", "short", "int", "long", "float", "double"}

// descriptor codes indexed by PrimKind
var primCodes = [...]byte{'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D'}

func (k PrimKind) String() string {
	return primNames[k]
}

// Type is the closed set of JVM types that can appear in a member
// signature. All implementations are immutable and comparable, so two
// Types built independently from the same descriptor compare equal.
type Type interface {
	// Descriptor returns the JVM binary descriptor encoding of the type.
	Descriptor() string
	String() string

	jvmType()
}

// Prim is a JVM primitive type.
type Prim struct {
	Kind PrimKind
}

// Boxed is a java.lang wrapper reference type (java/lang/Integer etc).
type Boxed struct {
	Kind PrimKind
}

// Ref is a (non-wrapper) reference type, identified by its internal
// binary name, e.g. "java/lang/String".
type Ref struct {
	Name string
}

// Array is a JVM array type.
type Array struct {
	Elem Type
}

// Void is the return pseudo-type of void methods.
type Void struct{}

func (Prim) jvmType()  {}
func (Boxed) jvmType() {}
func (Ref) jvmType()   {}
func (Array) jvmType() {}
func (Void) jvmType()  {}

// wrapper class internal names indexed by PrimKind
var boxedNames = [...]string{
	"java/lang/Boolean",
	"java/lang/Byte",
	"java/lang/Character",
	"java/lang/Short",
	"java/lang/Integer",
	"java/lang/Long",
	"java/lang/Float",
	"java/lang/Double",
}

// BoxedKind reports whether the internal binary name names a java.lang
// primitive wrapper class, and if so which primitive it boxes.
func BoxedKind(name string) (PrimKind, bool) {
	for k, n := range boxedNames {
		if n == name {
			return PrimKind(k), true
		}
	}
	return 0, false
}

func (t Prim) Descriptor() string {
	return string(primCodes[t.Kind])
}

func (t Boxed) Descriptor() string {
	return "L" + boxedNames[t.Kind] + ";"
}

func (t Ref) Descriptor() string {
	return "L" + t.Name + ";"
}

func (t Array) Descriptor() string {
	return "[" + t.Elem.Descriptor()
}

func (Void) Descriptor() string {
	return "V"
}

func (t Prim) String() string {
	return t.Kind.String()
}

func (t Boxed) String() string {
	return ExternalName(boxedNames[t.Kind])
}

func (t Ref) String() string {
	return ExternalName(t.Name)
}

func (t Array) String() string {
	return t.Elem.String() + "[]"
}

func (Void) String() string {
	return "void"
}

// InternalName converts a dotted class name to its internal binary form
// ("java.lang.String" -> "java/lang/String").
func InternalName(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "/")
}

// ExternalName converts an internal binary name back to dotted form.
func ExternalName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}
