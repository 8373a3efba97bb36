package jvm

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Descriptor Encoding
// ---------------------------------------------------------------------------

// ErrBadDescriptor indicates a malformed binary descriptor string.
var ErrBadDescriptor = errors.New("malformed descriptor")

// MethodDescriptor encodes a parameter list and return type as a JVM
// binary method descriptor, e.g. "(Ljava/lang/String;I)V".
func MethodDescriptor(params []Type, ret Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range params {
		sb.WriteString(p.Descriptor())
	}
	sb.WriteByte(')')
	sb.WriteString(ret.Descriptor())
	return sb.String()
}

// ---------------------------------------------------------------------------
// Descriptor Decoding
// ---------------------------------------------------------------------------

// ParseMethodDescriptor decodes a binary method descriptor into its
// parameter types and return type. It is the inverse of MethodDescriptor.
func ParseMethodDescriptor(desc string) ([]Type, Type, error) {
	if len(desc) < 3 || desc[0] != '(' {
		return nil, nil, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
	}

	var params []Type
	pos := 1
	for pos < len(desc) && desc[pos] != ')' {
		t, next, err := parseType(desc, pos)
		if err != nil {
			return nil, nil, err
		}
		params = append(params, t)
		pos = next
	}
	if pos >= len(desc) || desc[pos] != ')' {
		return nil, nil, fmt.Errorf("%w: missing ')' in %q", ErrBadDescriptor, desc)
	}

	ret, next, err := parseType(desc, pos+1)
	if err != nil {
		return nil, nil, err
	}
	if next != len(desc) {
		return nil, nil, fmt.Errorf("%w: trailing characters in %q", ErrBadDescriptor, desc)
	}
	return params, ret, nil
}

// ParseFieldDescriptor decodes a single field type descriptor.
func ParseFieldDescriptor(desc string) (Type, error) {
	t, next, err := parseType(desc, 0)
	if err != nil {
		return nil, err
	}
	if next != len(desc) {
		return nil, fmt.Errorf("%w: trailing characters in %q", ErrBadDescriptor, desc)
	}
	return t, nil
}

// parseType parses one type starting at pos, returning the type and the
// position just past it.
func parseType(desc string, pos int) (Type, int, error) {
	if pos >= len(desc) {
		return nil, 0, fmt.Errorf("%w: truncated %q", ErrBadDescriptor, desc)
	}

	switch desc[pos] {
	case 'Z':
		return Prim{Boolean}, pos + 1, nil
	case 'B':
		return Prim{Byte}, pos + 1, nil
	case 'C':
		return Prim{Char}, pos + 1, nil
	case 'S':
		return Prim{Short}, pos + 1, nil
	case 'I':
		return Prim{Int}, pos + 1, nil
	case 'J':
		return Prim{Long}, pos + 1, nil
	case 'F':
		return Prim{Float}, pos + 1, nil
	case 'D':
		return Prim{Double}, pos + 1, nil
	case 'V':
		return Void{}, pos + 1, nil
	case '[':
		elem, next, err := parseType(desc, pos+1)
		if err != nil {
			return nil, 0, err
		}
		if _, isVoid := elem.(Void); isVoid {
			return nil, 0, fmt.Errorf("%w: array of void in %q", ErrBadDescriptor, desc)
		}
		return Array{Elem: elem}, next, nil
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end < 0 {
			return nil, 0, fmt.Errorf("%w: unterminated reference in %q", ErrBadDescriptor, desc)
		}
		name := desc[pos+1 : pos+end]
		if name == "" {
			return nil, 0, fmt.Errorf("%w: empty reference name in %q", ErrBadDescriptor, desc)
		}
		if kind, ok := BoxedKind(name); ok {
			return Boxed{Kind: kind}, pos + end + 1, nil
		}
		return Ref{Name: name}, pos + end + 1, nil
	default:
		return nil, 0, fmt.Errorf("%w: unexpected %q in %q", ErrBadDescriptor, desc[pos], desc)
	}
}
