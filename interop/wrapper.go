package interop

import (
	"github.com/chazu/tern/jvm"
)

// ---------------------------------------------------------------------------
// Function Wrappers
// ---------------------------------------------------------------------------

// FunctionWrapper carries everything the bytecode emitter needs to invoke
// a resolved binding: the owning module identity, the extern definition,
// the target class, and the call descriptor in both string encodings.
// Immutable once constructed.
type FunctionWrapper struct {
	Org     string
	Module  string
	Version string

	Func *ExternFunction

	// ClassName is the fully qualified owning class, internal binary form.
	ClassName string

	// MethodDescriptor encodes the call with the host string type;
	// MethodDescriptorBString substitutes the runtime's BString reference
	// at positions where the extern declared a boxed string.
	MethodDescriptor        string
	MethodDescriptorBString string
}

// Wrapper is the discriminated result of wrapper construction: a method or
// constructor wrapper, or a field access wrapper.
type Wrapper interface {
	// Base returns the shared wrapper fields.
	Base() *FunctionWrapper
	// CallKind reports the call shape the emitter must produce.
	CallKind() CallKind
}

// JMethodWrapper wraps a resolved method or constructor.
type JMethodWrapper struct {
	FunctionWrapper

	// Member is the resolved signature the descriptor was derived from.
	Member *MemberSignature
	// Exceptions is the member's declared checked-exception set, used by
	// the emitter to generate bridging catch logic.
	Exceptions []string
}

func (w *JMethodWrapper) Base() *FunctionWrapper { return &w.FunctionWrapper }

func (w *JMethodWrapper) CallKind() CallKind {
	if w.Member.Kind == KindConstructor {
		return CallConstructor
	}
	return CallMethod
}

// FieldAccess is the fixed access mode of a field wrapper.
type FieldAccess int

const (
	GetAccess FieldAccess = iota
	SetAccess
)

func (a FieldAccess) String() string {
	if a == SetAccess {
		return "set"
	}
	return "get"
}

// JFieldWrapper wraps a resolved field as a synthetic zero-argument (get)
// or one-argument (set) call, so the emitter sees a uniform call-wrapper
// contract for members of every kind.
type JFieldWrapper struct {
	FunctionWrapper

	// Field is the resolved field signature.
	Field *MemberSignature
	// Mode selects the getter or setter call shape; fixed at construction.
	Mode FieldAccess
}

func (w *JFieldWrapper) Base() *FunctionWrapper { return &w.FunctionWrapper }

func (w *JFieldWrapper) CallKind() CallKind {
	if w.Mode == SetAccess {
		return CallFieldSet
	}
	return CallFieldGet
}

// ---------------------------------------------------------------------------
// Wrapper Factory
// ---------------------------------------------------------------------------

// BuildWrapper constructs the immutable wrapper for a member returned by
// Resolve. It cannot fail on valid input; an error here is an
// *InternalDescriptorError and indicates a bridge or catalog defect.
func BuildWrapper(req *BindingRequest, m *MemberSignature) (Wrapper, error) {
	if err := checkEncodable(m); err != nil {
		return nil, err
	}

	switch req.Kind {
	case CallFieldGet:
		base := buildBase(req, m, nil, m.Return)
		return &JFieldWrapper{FunctionWrapper: base, Field: m, Mode: GetAccess}, nil

	case CallFieldSet:
		base := buildBase(req, m, []jvm.Type{m.Return}, jvm.Void{})
		return &JFieldWrapper{FunctionWrapper: base, Field: m, Mode: SetAccess}, nil

	case CallConstructor:
		base := buildBase(req, m, m.Params, jvm.Void{})
		return &JMethodWrapper{FunctionWrapper: base, Member: m, Exceptions: m.Exceptions}, nil

	default:
		base := buildBase(req, m, m.Params, m.Return)
		return &JMethodWrapper{FunctionWrapper: base, Member: m, Exceptions: m.Exceptions}, nil
	}
}

// buildBase derives both descriptor encodings over the given call shape.
func buildBase(req *BindingRequest, m *MemberSignature, params []jvm.Type, ret jvm.Type) FunctionWrapper {
	bsParams := make([]jvm.Type, len(params))
	for i, p := range params {
		bsParams[i] = substituteBString(sourceParam(req, i), p)
	}
	bsRet := substituteBString(req.Func.Return, ret)

	return FunctionWrapper{
		Org:                     req.Org,
		Module:                  req.Module,
		Version:                 req.Version,
		Func:                    req.Func,
		ClassName:               m.Class,
		MethodDescriptor:        jvm.MethodDescriptor(params, ret),
		MethodDescriptorBString: jvm.MethodDescriptor(bsParams, bsRet),
	}
}

// sourceParam returns the declared source type at position i, or nil past
// the declared arity (trailing varargs positions collapsed into one array
// parameter).
func sourceParam(req *BindingRequest, i int) SourceType {
	if i < len(req.Func.Params) {
		return req.Func.Params[i]
	}
	return nil
}

// substituteBString swaps the host string reference for the runtime's
// BString reference at positions whose declared source type is a boxed
// string. Substitution applies to the outermost position only, never
// inside array element types.
func substituteBString(st SourceType, jt jvm.Type) jvm.Type {
	s, ok := st.(TString)
	if !ok || !s.Boxed {
		return jt
	}
	if r, isRef := jt.(jvm.Ref); isRef && r.Name == StringClass {
		return jvm.Ref{Name: BStringClass}
	}
	return jt
}

// checkEncodable guards against catalog entries the descriptor grammar
// cannot express. Resolve never produces such a member; hitting this is
// fatal for the module.
func checkEncodable(m *MemberSignature) error {
	if m.Return == nil {
		return &InternalDescriptorError{Class: m.Class, Member: m.Name, Detail: "missing return type"}
	}
	for _, p := range m.Params {
		if p == nil {
			return &InternalDescriptorError{
				Class:  m.Class,
				Member: m.Name,
				Detail: "missing parameter type",
			}
		}
		if _, isVoid := p.(jvm.Void); isVoid {
			return &InternalDescriptorError{
				Class:  m.Class,
				Member: m.Name,
				Detail: "void parameter",
			}
		}
	}
	return nil
}
