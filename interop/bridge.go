package interop

import "github.com/chazu/tern/jvm"

// ---------------------------------------------------------------------------
// Type Bridge: Tern types vs JVM descriptor types
// ---------------------------------------------------------------------------

// Compat ranks how a Tern type matches a JVM type. Lower is better; the
// ordering drives overload tie-breaking in the resolver.
type Compat int

const (
	// Exact: the types line up with no conversion at the boundary.
	Exact Compat = iota
	// Widening: a value-preserving numeric widening is required.
	Widening
	// Boxing: a representation change (box/unbox, string rewrap) is
	// required.
	Boxing
	// Incompatible: the member cannot accept the Tern type.
	Incompatible
)

func (c Compat) String() string {
	switch c {
	case Exact:
		return "exact"
	case Widening:
		return "widening"
	case Boxing:
		return "boxing"
	}
	return "incompatible"
}

// isReference reports whether the JVM type is a reference (class, wrapper,
// or array) type.
func isReference(jt jvm.Type) bool {
	switch jt.(type) {
	case jvm.Ref, jvm.Boxed, jvm.Array:
		return true
	}
	return false
}

// Compatibility ranks how the declared Tern type st matches the JVM type
// jt. The mapping is total over both closed type sets.
func Compatibility(st SourceType, jt jvm.Type) Compat {
	switch s := st.(type) {
	case TInt:
		// Tern int is 64-bit: long is the exact counterpart, narrower
		// integral types would truncate.
		switch j := jt.(type) {
		case jvm.Prim:
			switch j.Kind {
			case jvm.Long:
				return Exact
			case jvm.Float, jvm.Double:
				return Widening
			}
		case jvm.Boxed:
			if j.Kind == jvm.Long {
				return Boxing
			}
		}
		return Incompatible

	case TFloat:
		switch j := jt.(type) {
		case jvm.Prim:
			if j.Kind == jvm.Double {
				return Exact
			}
		case jvm.Boxed:
			if j.Kind == jvm.Double {
				return Boxing
			}
		}
		return Incompatible

	case TBool:
		switch j := jt.(type) {
		case jvm.Prim:
			if j.Kind == jvm.Boolean {
				return Exact
			}
		case jvm.Boxed:
			if j.Kind == jvm.Boolean {
				return Boxing
			}
		}
		return Incompatible

	case TDecimal:
		if r, ok := jt.(jvm.Ref); ok && r.Name == BigDecimalClass {
			return Exact
		}
		return Incompatible

	case TString:
		switch j := jt.(type) {
		case jvm.Ref:
			if s.Boxed {
				switch j.Name {
				case BStringClass:
					return Exact
				default:
					// unwrap to java.lang.String, CharSequence, Object, ...
					return Boxing
				}
			}
			if j.Name == StringClass {
				return Exact
			}
			// String assigns to wider references (CharSequence, Object)
			// via an upcast the emitter treats as a conversion step.
			return Boxing
		case jvm.Array:
			if p, ok := j.Elem.(jvm.Prim); ok && p.Kind == jvm.Char {
				return Boxing
			}
		}
		return Incompatible

	case TArray:
		if j, ok := jt.(jvm.Array); ok {
			return Compatibility(s.Elem, j.Elem)
		}
		return Incompatible

	case THandle:
		// Handles are opaque: any reference type is acceptable as-is.
		if isReference(jt) {
			return Exact
		}
		return Incompatible

	case TNilable:
		// nil maps to a null reference, so any reference type works;
		// primitives cannot carry null.
		if isReference(jt) {
			return Exact
		}
		return Incompatible

	case TNil:
		if _, ok := jt.(jvm.Void); ok {
			return Exact
		}
		if isReference(jt) {
			return Exact
		}
		return Incompatible
	}

	return Incompatible
}

// DefaultJType returns the JVM type a Tern type maps to when the binding
// does not constrain the native side, e.g. when synthesizing descriptors
// for defaulted positions.
func DefaultJType(st SourceType) jvm.Type {
	switch s := st.(type) {
	case TInt:
		return jvm.Prim{Kind: jvm.Long}
	case TFloat:
		return jvm.Prim{Kind: jvm.Double}
	case TBool:
		return jvm.Prim{Kind: jvm.Boolean}
	case TDecimal:
		return jvm.Ref{Name: BigDecimalClass}
	case TString:
		if s.Boxed {
			return jvm.Ref{Name: BStringClass}
		}
		return jvm.Ref{Name: StringClass}
	case TArray:
		return jvm.Array{Elem: DefaultJType(s.Elem)}
	case THandle:
		return jvm.Ref{Name: "java/lang/Object"}
	case TNilable:
		// the boxed form of the element, since the position must admit
		// null
		elem := DefaultJType(s.Elem)
		if p, ok := elem.(jvm.Prim); ok {
			return jvm.Boxed{Kind: p.Kind}
		}
		return elem
	case TNil:
		return jvm.Void{}
	}
	return jvm.Ref{Name: "java/lang/Object"}
}
