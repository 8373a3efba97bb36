package interop

import (
	"errors"
	"fmt"

	"github.com/chazu/tern/jvm"
)

// ---------------------------------------------------------------------------
// Overload Resolver
// ---------------------------------------------------------------------------

// Resolver selects the unique best-matching class member for a binding
// request. Resolution is a pure function of the request and the catalog
// snapshot: no global or time-dependent state, so identical requests
// resolve identically across repeated and concurrent invocations.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a resolver over the given catalog snapshot.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// candidate is a member that survived filtering, with its per-parameter
// compatibility vector.
type candidate struct {
	member *MemberSignature
	levels []Compat
	// expanded is true when the match used varargs expansion rather than
	// passing an array through the last parameter.
	expanded bool
}

// Resolve returns the single member that satisfies the request. On a
// user-facing failure the error is a *ResolutionFailure; catalog backend
// errors other than ErrClassNotFound are returned wrapped.
func (r *Resolver) Resolve(req *BindingRequest) (*MemberSignature, error) {
	members, err := r.catalog.Lookup(req.ClassName())
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return nil, &ResolutionFailure{
				Kind:   NoMatchingMember,
				Class:  req.ClassName(),
				Member: req.Member,
				Call:   req.Kind,
				Pos:    req.Func.Pos,
			}
		}
		return nil, fmt.Errorf("catalog lookup for %s: %w", req.Class, err)
	}

	var survivors []candidate
	var rejected []RejectedMember

	wantKind := req.Kind.memberKind()
	for _, m := range members {
		if m.Kind != wantKind {
			continue
		}
		// constructors are matched by kind alone; the declared member
		// name is ignored
		if wantKind != KindConstructor && m.Name != req.Member {
			continue
		}
		if m.Static != req.Static && wantKind != KindConstructor {
			continue
		}

		if !m.Public {
			rejected = append(rejected, RejectedMember{Member: m, Reason: RejectInaccessible})
			continue
		}

		cand, rej := r.match(req, m)
		if rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		survivors = append(survivors, cand)
	}

	if len(survivors) == 0 {
		kind := NoMatchingMember
		if len(rejected) > 0 && allInaccessible(rejected) {
			kind = InaccessibleMember
		}
		return nil, &ResolutionFailure{
			Kind:     kind,
			Class:    req.ClassName(),
			Member:   req.Member,
			Call:     req.Kind,
			Pos:      req.Func.Pos,
			Rejected: rejected,
		}
	}

	best := frontier(survivors)
	if len(best) > 1 {
		tied := make([]*MemberSignature, len(best))
		for i, c := range best {
			tied[i] = c.member
		}
		return nil, &ResolutionFailure{
			Kind:       AmbiguousOverload,
			Class:      req.ClassName(),
			Member:     req.Member,
			Call:       req.Kind,
			Pos:        req.Func.Pos,
			Candidates: tied,
		}
	}
	return best[0].member, nil
}

func allInaccessible(rejected []RejectedMember) bool {
	for _, r := range rejected {
		if r.Reason != RejectInaccessible {
			return false
		}
	}
	return true
}

// match checks one public member of the right kind against the request,
// returning either a surviving candidate or the rejection reason.
func (r *Resolver) match(req *BindingRequest, m *MemberSignature) (candidate, *RejectedMember) {
	switch req.Kind {
	case CallFieldGet:
		if len(req.Func.Params) != 0 {
			return candidate{}, &RejectedMember{Member: m, Reason: RejectArity}
		}
		if Compatibility(req.Func.Return, m.Return) == Incompatible {
			return candidate{}, &RejectedMember{Member: m, Reason: RejectReturn}
		}
		return candidate{member: m}, nil

	case CallFieldSet:
		if len(req.Func.Params) != 1 {
			return candidate{}, &RejectedMember{Member: m, Reason: RejectArity}
		}
		level := Compatibility(req.Func.Params[0], m.Return)
		if level == Incompatible {
			return candidate{}, &RejectedMember{Member: m, Reason: RejectParam}
		}
		return candidate{member: m, levels: []Compat{level}}, nil
	}

	cand, rej := matchParams(req.Func.Params, m)
	if rej != nil {
		return candidate{}, rej
	}
	if Compatibility(req.Func.Return, m.Return) == Incompatible {
		return candidate{}, &RejectedMember{Member: m, Reason: RejectReturn}
	}
	return cand, nil
}

// matchParams computes the per-position compatibility vector for a method
// or constructor, applying last-parameter varargs expansion when needed.
func matchParams(src []SourceType, m *MemberSignature) (candidate, *RejectedMember) {
	n := len(src)

	if !m.Varargs {
		if n != len(m.Params) {
			return candidate{}, &RejectedMember{Member: m, Reason: RejectArity}
		}
		levels := make([]Compat, n)
		for i, st := range src {
			levels[i] = Compatibility(st, m.Params[i])
			if levels[i] == Incompatible {
				return candidate{}, &RejectedMember{Member: m, Reason: RejectParam, ParamIndex: i}
			}
		}
		return candidate{member: m, levels: levels}, nil
	}

	fixed := len(m.Params) - 1
	if n < fixed {
		return candidate{}, &RejectedMember{Member: m, Reason: RejectArity}
	}
	levels := make([]Compat, n)
	for i := 0; i < fixed; i++ {
		levels[i] = Compatibility(src[i], m.Params[i])
		if levels[i] == Incompatible {
			return candidate{}, &RejectedMember{Member: m, Reason: RejectParam, ParamIndex: i}
		}
	}

	// exactly filling the arity with an array argument passes the array
	// through without expansion
	if n == len(m.Params) {
		if level := Compatibility(src[fixed], m.Params[fixed]); level != Incompatible {
			levels[fixed] = level
			return candidate{member: m, levels: levels}, nil
		}
	}

	elem := varargsElem(m)
	if elem == nil {
		return candidate{}, &RejectedMember{Member: m, Reason: RejectParam, ParamIndex: fixed}
	}
	for i := fixed; i < n; i++ {
		levels[i] = Compatibility(src[i], elem)
		if levels[i] == Incompatible {
			return candidate{}, &RejectedMember{Member: m, Reason: RejectParam, ParamIndex: i}
		}
	}
	return candidate{member: m, levels: levels, expanded: true}, nil
}

// varargsElem returns the element type of a varargs member's trailing
// array parameter, or nil if the member is malformed.
func varargsElem(m *MemberSignature) jvm.Type {
	arr, ok := m.Params[len(m.Params)-1].(jvm.Array)
	if !ok {
		return nil
	}
	return arr.Elem
}

// dominates reports whether a is a strictly better match than b: no
// position worse, and either some position better or an equal vector
// matched without varargs expansion while b needed it.
func dominates(a, b candidate) bool {
	if len(a.levels) != len(b.levels) {
		return false
	}
	strictly := false
	for i := range a.levels {
		if a.levels[i] > b.levels[i] {
			return false
		}
		if a.levels[i] < b.levels[i] {
			strictly = true
		}
	}
	if strictly {
		return true
	}
	return !a.expanded && b.expanded
}

// frontier returns the candidates not dominated by any other, preserving
// catalog order for deterministic diagnostics.
func frontier(cands []candidate) []candidate {
	var front []candidate
	for i, c := range cands {
		dominated := false
		for j, other := range cands {
			if i != j && dominates(other, c) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, c)
		}
	}
	return front
}
