package interop

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Resolution Failures
// ---------------------------------------------------------------------------

// FailureKind classifies a user-facing resolution failure.
type FailureKind int

const (
	// NoMatchingMember: no member of the class satisfies the binding.
	NoMatchingMember FailureKind = iota
	// AmbiguousOverload: two or more members match equally well.
	AmbiguousOverload
	// InaccessibleMember: members match by name and shape but none are
	// public.
	InaccessibleMember
)

func (k FailureKind) String() string {
	switch k {
	case NoMatchingMember:
		return "no matching member"
	case AmbiguousOverload:
		return "ambiguous overload"
	case InaccessibleMember:
		return "inaccessible member"
	}
	return "unknown failure"
}

// RejectReason records why a same-named member was excluded, so
// NoMatchingMember diagnostics can point at the near miss.
type RejectReason int

const (
	RejectArity RejectReason = iota
	RejectParam
	RejectReturn
	RejectInaccessible
)

func (r RejectReason) String() string {
	switch r {
	case RejectArity:
		return "parameter count mismatch"
	case RejectParam:
		return "incompatible parameter type"
	case RejectReturn:
		return "incompatible return type"
	case RejectInaccessible:
		return "not public"
	}
	return "rejected"
}

// RejectedMember pairs a candidate with its rejection reason. ParamIndex
// is meaningful only for RejectParam.
type RejectedMember struct {
	Member     *MemberSignature
	Reason     RejectReason
	ParamIndex int
}

// ResolutionFailure is the structured value handed to the diagnostic
// reporter when a binding cannot be resolved. It implements error so it
// can flow through ordinary error returns; rendering is the reporter's
// concern.
type ResolutionFailure struct {
	Kind   FailureKind
	Class  string // internal binary name
	Member string
	Call   CallKind
	Pos    Position

	// Candidates holds the tied members for AmbiguousOverload.
	Candidates []*MemberSignature
	// Rejected holds the near misses for NoMatchingMember.
	Rejected []RejectedMember
}

func (f *ResolutionFailure) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s '%s' on class %s",
		f.Kind, f.Call, f.Member, strings.ReplaceAll(f.Class, "/", "."))

	switch f.Kind {
	case AmbiguousOverload:
		sb.WriteString("; candidates:")
		for _, c := range f.Candidates {
			sb.WriteString("\n  ")
			sb.WriteString(c.String())
		}
	case NoMatchingMember:
		for _, r := range f.Rejected {
			fmt.Fprintf(&sb, "\n  %s: %s", r.Member, r.Reason)
			if r.Reason == RejectParam {
				fmt.Fprintf(&sb, " at position %d", r.ParamIndex+1)
			}
		}
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// Internal Errors
// ---------------------------------------------------------------------------

// InternalDescriptorError indicates a resolved type could not be encoded.
// It is a bridge or catalog defect, never user input, and aborts
// compilation of the module.
type InternalDescriptorError struct {
	Class  string
	Member string
	Detail string
}

func (e *InternalDescriptorError) Error() string {
	return fmt.Sprintf("internal descriptor error for %s.%s: %s", e.Class, e.Member, e.Detail)
}
