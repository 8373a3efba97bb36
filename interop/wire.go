package interop

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/tern/jvm"
)

// The binding table crosses process boundaries (emitter handoff,
// incremental build cache), so encoding is canonical CBOR for
// deterministic bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("interop: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ---------------------------------------------------------------------------
// Wire model
// ---------------------------------------------------------------------------

// On the wire, JVM types travel as descriptor strings and Tern types as
// their declaration spelling; both decode back to the in-memory variants.

type wireTable struct {
	ID      string             `cbor:"id"`
	Methods []wireMethodRecord `cbor:"methods,omitempty"`
	Fields  []wireFieldRecord  `cbor:"fields,omitempty"`
}

type wireKey struct {
	Org     string `cbor:"org"`
	Module  string `cbor:"module"`
	Version string `cbor:"version"`
	Class   string `cbor:"class"`
	Member  string `cbor:"member"`
	Kind    int    `cbor:"kind"`
}

type wireFunc struct {
	Name   string   `cbor:"name"`
	Params []string `cbor:"params,omitempty"`
	Return string   `cbor:"return"`
	File   string   `cbor:"file,omitempty"`
	Line   int      `cbor:"line,omitempty"`
	Column int      `cbor:"column,omitempty"`
}

type wireMember struct {
	Kind       int      `cbor:"kind"`
	Class      string   `cbor:"class"`
	Name       string   `cbor:"name"`
	Descriptor string   `cbor:"descriptor"`
	Exceptions []string `cbor:"exceptions,omitempty"`
	Static     bool     `cbor:"static,omitempty"`
	Varargs    bool     `cbor:"varargs,omitempty"`
	Public     bool     `cbor:"public,omitempty"`
}

type wireBase struct {
	Key            wireKey  `cbor:"key"`
	Func           wireFunc `cbor:"func"`
	ClassName      string   `cbor:"className"`
	Descriptor     string   `cbor:"descriptor"`
	DescriptorBStr string   `cbor:"descriptorBString"`
}

type wireMethodRecord struct {
	Base   wireBase   `cbor:"base"`
	Member wireMember `cbor:"memberSig"`
}

type wireFieldRecord struct {
	Base  wireBase   `cbor:"base"`
	Field wireMember `cbor:"fieldSig"`
	Set   bool       `cbor:"set,omitempty"`
}

// ---------------------------------------------------------------------------
// Marshalling
// ---------------------------------------------------------------------------

// MarshalTable serializes a binding table to canonical CBOR bytes.
func MarshalTable(t *BindingTable) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wt := wireTable{ID: t.ID}
	for key, w := range t.wrappers {
		base := encodeBase(key, w.Base())
		switch wrapper := w.(type) {
		case *JMethodWrapper:
			wt.Methods = append(wt.Methods, wireMethodRecord{
				Base:   base,
				Member: encodeMember(wrapper.Member),
			})
		case *JFieldWrapper:
			wt.Fields = append(wt.Fields, wireFieldRecord{
				Base:  base,
				Field: encodeMember(wrapper.Field),
				Set:   wrapper.Mode == SetAccess,
			})
		default:
			return nil, fmt.Errorf("interop: unknown wrapper variant %T", w)
		}
	}

	// canonical encoding covers map keys, not Go slice order
	sortRecords(&wt)
	return cborEncMode.Marshal(&wt)
}

// UnmarshalTable deserializes a binding table from CBOR bytes.
func UnmarshalTable(data []byte) (*BindingTable, error) {
	var wt wireTable
	if err := cbor.Unmarshal(data, &wt); err != nil {
		return nil, fmt.Errorf("interop: unmarshal binding table: %w", err)
	}

	t := &BindingTable{ID: wt.ID, wrappers: make(map[BindingKey]Wrapper)}
	for _, rec := range wt.Methods {
		member, err := decodeMember(rec.Member)
		if err != nil {
			return nil, err
		}
		key, base := decodeBase(rec.Base)
		t.wrappers[key] = &JMethodWrapper{
			FunctionWrapper: base,
			Member:          member,
			Exceptions:      member.Exceptions,
		}
	}
	for _, rec := range wt.Fields {
		field, err := decodeMember(rec.Field)
		if err != nil {
			return nil, err
		}
		key, base := decodeBase(rec.Base)
		mode := GetAccess
		if rec.Set {
			mode = SetAccess
		}
		t.wrappers[key] = &JFieldWrapper{
			FunctionWrapper: base,
			Field:           field,
			Mode:            mode,
		}
	}
	return t, nil
}

// sortRecords orders the wrapper slices by binding key so marshalled
// bytes are stable across runs.
func sortRecords(wt *wireTable) {
	sort.Slice(wt.Methods, func(i, j int) bool {
		return lessKey(wt.Methods[i].Base.Key, wt.Methods[j].Base.Key)
	})
	sort.Slice(wt.Fields, func(i, j int) bool {
		return lessKey(wt.Fields[i].Base.Key, wt.Fields[j].Base.Key)
	})
}

func lessKey(a, b wireKey) bool {
	if a.Org != b.Org {
		return a.Org < b.Org
	}
	if a.Module != b.Module {
		return a.Module < b.Module
	}
	if a.Version != b.Version {
		return a.Version < b.Version
	}
	if a.Class != b.Class {
		return a.Class < b.Class
	}
	if a.Member != b.Member {
		return a.Member < b.Member
	}
	return a.Kind < b.Kind
}

func encodeBase(key BindingKey, fw *FunctionWrapper) wireBase {
	wf := wireFunc{
		Name:   fw.Func.Name,
		Return: fw.Func.Return.String(),
		File:   fw.Func.Pos.File,
		Line:   fw.Func.Pos.Line,
		Column: fw.Func.Pos.Column,
	}
	for _, p := range fw.Func.Params {
		wf.Params = append(wf.Params, p.String())
	}
	return wireBase{
		Key: wireKey{
			Org:     key.Org,
			Module:  key.Module,
			Version: key.Version,
			Class:   key.Class,
			Member:  key.Member,
			Kind:    int(key.Kind),
		},
		Func:           wf,
		ClassName:      fw.ClassName,
		Descriptor:     fw.MethodDescriptor,
		DescriptorBStr: fw.MethodDescriptorBString,
	}
}

func decodeBase(wb wireBase) (BindingKey, FunctionWrapper) {
	fn := &ExternFunction{
		Name: wb.Func.Name,
		Pos:  Position{File: wb.Func.File, Line: wb.Func.Line, Column: wb.Func.Column},
	}
	for _, p := range wb.Func.Params {
		st, err := ParseSourceType(p)
		if err != nil {
			st = THandle{}
		}
		fn.Params = append(fn.Params, st)
	}
	if ret, err := ParseSourceType(wb.Func.Return); err == nil {
		fn.Return = ret
	} else {
		fn.Return = THandle{}
	}

	key := BindingKey{
		Org:     wb.Key.Org,
		Module:  wb.Key.Module,
		Version: wb.Key.Version,
		Class:   wb.Key.Class,
		Member:  wb.Key.Member,
		Kind:    CallKind(wb.Key.Kind),
	}
	return key, FunctionWrapper{
		Org:                     wb.Key.Org,
		Module:                  wb.Key.Module,
		Version:                 wb.Key.Version,
		Func:                    fn,
		ClassName:               wb.ClassName,
		MethodDescriptor:        wb.Descriptor,
		MethodDescriptorBString: wb.DescriptorBStr,
	}
}

// MarshalMembers serializes a class's member list to canonical CBOR, for
// catalog backends that persist per-class entries.
func MarshalMembers(members []*MemberSignature) ([]byte, error) {
	wms := make([]wireMember, len(members))
	for i, m := range members {
		wms[i] = encodeMember(m)
	}
	return cborEncMode.Marshal(wms)
}

// UnmarshalMembers deserializes a member list written by MarshalMembers.
func UnmarshalMembers(data []byte) ([]*MemberSignature, error) {
	var wms []wireMember
	if err := cbor.Unmarshal(data, &wms); err != nil {
		return nil, fmt.Errorf("interop: unmarshal members: %w", err)
	}
	members := make([]*MemberSignature, len(wms))
	for i, wm := range wms {
		m, err := decodeMember(wm)
		if err != nil {
			return nil, err
		}
		members[i] = m
	}
	return members, nil
}

func encodeMember(m *MemberSignature) wireMember {
	return wireMember{
		Kind:       int(m.Kind),
		Class:      m.Class,
		Name:       m.Name,
		Descriptor: m.Descriptor(),
		Exceptions: m.Exceptions,
		Static:     m.Static,
		Varargs:    m.Varargs,
		Public:     m.Public,
	}
}

func decodeMember(wm wireMember) (*MemberSignature, error) {
	m := &MemberSignature{
		Kind:       MemberKind(wm.Kind),
		Class:      wm.Class,
		Name:       wm.Name,
		Exceptions: wm.Exceptions,
		Static:     wm.Static,
		Varargs:    wm.Varargs,
		Public:     wm.Public,
	}

	switch m.Kind {
	case KindField:
		ft, err := jvm.ParseFieldDescriptor(wm.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("interop: field %s.%s: %w", wm.Class, wm.Name, err)
		}
		m.Return = ft
	case KindConstructor:
		params, _, err := jvm.ParseMethodDescriptor(wm.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("interop: constructor %s: %w", wm.Class, err)
		}
		m.Params = params
		m.Return = jvm.Ref{Name: wm.Class}
	default:
		params, ret, err := jvm.ParseMethodDescriptor(wm.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("interop: method %s.%s: %w", wm.Class, wm.Name, err)
		}
		m.Params = params
		m.Return = ret
	}
	return m, nil
}
