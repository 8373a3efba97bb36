package interop

import (
	"strings"

	"github.com/chazu/tern/jvm"
)

// MemberKind classifies a catalogued class member.
type MemberKind int

const (
	KindMethod MemberKind = iota
	KindConstructor
	KindField
)

func (k MemberKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindField:
		return "field"
	}
	return "unknown"
}

// MemberSignature is one catalogued native member of a class. For fields,
// Params is empty and Return holds the field type. For constructors,
// Return is the owning class reference.
type MemberSignature struct {
	Kind       MemberKind
	Class      string // internal binary name of the owning class
	Name       string // member name; "<init>" for constructors
	Params     []jvm.Type
	Return     jvm.Type
	Exceptions []string // declared checked exceptions, internal binary names
	Static     bool
	Varargs    bool
	Public     bool
}

// Descriptor returns the member's JVM binary descriptor. Field members
// yield their field type descriptor; constructors a void method descriptor.
func (m *MemberSignature) Descriptor() string {
	if m.Kind == KindField {
		return m.Return.Descriptor()
	}
	if m.Kind == KindConstructor {
		return jvm.MethodDescriptor(m.Params, jvm.Void{})
	}
	return jvm.MethodDescriptor(m.Params, m.Return)
}

// String renders the member in a javap-like form for diagnostics, e.g.
// "static java.lang.String valueOf(int)".
func (m *MemberSignature) String() string {
	var sb strings.Builder
	if m.Static {
		sb.WriteString("static ")
	}
	switch m.Kind {
	case KindConstructor:
		sb.WriteString(jvm.ExternalName(m.Class))
	case KindField:
		sb.WriteString(m.Return.String())
		sb.WriteByte(' ')
		sb.WriteString(m.Name)
		return sb.String()
	default:
		sb.WriteString(m.Return.String())
		sb.WriteByte(' ')
		sb.WriteString(m.Name)
	}
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if m.Varargs && i == len(m.Params)-1 {
			if arr, ok := p.(jvm.Array); ok {
				sb.WriteString(arr.Elem.String())
				sb.WriteString("...")
				continue
			}
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// MemberFromMethod converts a parsed class file method into a catalog
// signature. Constructors are recognized by the "<init>" name and typed as
// returning the owning class.
func MemberFromMethod(className string, m *jvm.MethodInfo) (*MemberSignature, error) {
	params, ret, err := jvm.ParseMethodDescriptor(m.Descriptor)
	if err != nil {
		return nil, err
	}

	sig := &MemberSignature{
		Kind:       KindMethod,
		Class:      className,
		Name:       m.Name,
		Params:     params,
		Return:     ret,
		Exceptions: m.Exceptions,
		Static:     m.IsStatic(),
		Varargs:    m.IsVarargs(),
		Public:     m.IsPublic(),
	}
	if m.Name == "<init>" {
		sig.Kind = KindConstructor
		sig.Return = jvm.Ref{Name: className}
	}
	return sig, nil
}

// MemberFromField converts a parsed class file field into a catalog
// signature.
func MemberFromField(className string, f *jvm.FieldInfo) (*MemberSignature, error) {
	ft, err := jvm.ParseFieldDescriptor(f.Descriptor)
	if err != nil {
		return nil, err
	}
	return &MemberSignature{
		Kind:   KindField,
		Class:  className,
		Name:   f.Name,
		Return: ft,
		Static: f.IsStatic(),
		Public: f.IsPublic(),
	}, nil
}
