// Package interop resolves Tern extern bindings against JVM class members
// and builds the immutable call wrappers the bytecode emitter consumes.
package interop

import (
	"fmt"
	"strings"
)

// Internal binary names of the runtime reference types that anchor the
// Tern side of the boundary.
const (
	StringClass     = "java/lang/String"
	BStringClass    = "io/tern/runtime/values/BString"
	BigDecimalClass = "java/math/BigDecimal"
)

// SourceType is the closed set of Tern types that may cross the native
// boundary. All implementations are immutable and comparable.
type SourceType interface {
	String() string

	sourceType()
}

// TInt is Tern's 64-bit integer type.
type TInt struct{}

// TFloat is Tern's 64-bit floating point type.
type TFloat struct{}

// TBool is Tern's boolean type.
type TBool struct{}

// TDecimal is Tern's arbitrary-precision decimal type, carried across the
// boundary as java.math.BigDecimal.
type TDecimal struct{}

// TString is Tern's string type. Boxed selects the runtime's own BString
// representation instead of the host java.lang.String.
type TString struct {
	Boxed bool
}

// TArray is a Tern array type.
type TArray struct {
	Elem SourceType
}

// THandle wraps an opaque native reference; it is the escape hatch for
// arbitrary JVM objects.
type THandle struct{}

// TNilable is a Tern optional type (T?, or a union with nil). Nil crosses
// the boundary as a null reference.
type TNilable struct {
	Elem SourceType
}

// TNil is the nil/unit type, used as the declared return of externs bound
// to void methods.
type TNil struct{}

func (TInt) sourceType()     {}
func (TFloat) sourceType()   {}
func (TBool) sourceType()    {}
func (TDecimal) sourceType() {}
func (TString) sourceType()  {}
func (TArray) sourceType()   {}
func (THandle) sourceType()  {}
func (TNilable) sourceType() {}
func (TNil) sourceType()     {}

func (TInt) String() string     { return "int" }
func (TFloat) String() string   { return "float" }
func (TBool) String() string    { return "boolean" }
func (TDecimal) String() string { return "decimal" }

func (t TString) String() string {
	if t.Boxed {
		return "bstring"
	}
	return "string"
}

func (t TArray) String() string   { return t.Elem.String() + "[]" }
func (THandle) String() string    { return "handle" }
func (t TNilable) String() string { return t.Elem.String() + "?" }
func (TNil) String() string       { return "nil" }

// ParseSourceType parses the textual spelling used in binding declarations
// and tests: scalar names, "T[]" arrays, and "T?" optionals.
func ParseSourceType(s string) (SourceType, error) {
	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, "?") {
		elem, err := ParseSourceType(s[:len(s)-1])
		if err != nil {
			return nil, err
		}
		return TNilable{Elem: elem}, nil
	}
	if strings.HasSuffix(s, "[]") {
		elem, err := ParseSourceType(s[:len(s)-2])
		if err != nil {
			return nil, err
		}
		return TArray{Elem: elem}, nil
	}

	switch s {
	case "int":
		return TInt{}, nil
	case "float":
		return TFloat{}, nil
	case "boolean":
		return TBool{}, nil
	case "decimal":
		return TDecimal{}, nil
	case "string":
		return TString{}, nil
	case "bstring":
		return TString{Boxed: true}, nil
	case "handle":
		return THandle{}, nil
	case "nil", "()":
		return TNil{}, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", s)
	}
}
