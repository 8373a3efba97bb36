package classindex

import (
	"errors"
	"testing"

	"github.com/chazu/tern/interop"
	"github.com/chazu/tern/jvm"
)

func widgetClass() *jvm.ClassFile {
	return &jvm.ClassFile{
		Name:      "acme/Widget",
		SuperName: "java/lang/Object",
		Flags:     jvm.AccPublic,
		Methods: []jvm.MethodInfo{
			{Name: "<init>", Descriptor: "()V", Flags: jvm.AccPublic},
			{Name: "<clinit>", Descriptor: "()V", Flags: jvm.AccStatic},
			{
				Name:       "create",
				Descriptor: "(Ljava/lang/String;)Lacme/Widget;",
				Flags:      jvm.AccPublic | jvm.AccStatic,
				Exceptions: []string{"java/io/IOException"},
			},
			{Name: "lambda$0", Descriptor: "()V", Flags: jvm.AccSynthetic},
		},
		Fields: []jvm.FieldInfo{
			{Name: "count", Descriptor: "J", Flags: jvm.AccPublic},
		},
	}
}

func TestIndexAddClass(t *testing.T) {
	ix := New()
	if err := ix.AddClass(widgetClass()); err != nil {
		t.Fatalf("AddClass: %v", err)
	}

	members, err := ix.Lookup("acme/Widget")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	// <clinit> and synthetic members never enter the catalog
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}

	var ctor, create, count *interop.MemberSignature
	for _, m := range members {
		switch {
		case m.Kind == interop.KindConstructor:
			ctor = m
		case m.Name == "create":
			create = m
		case m.Name == "count":
			count = m
		}
	}

	if ctor == nil {
		t.Fatal("constructor not catalogued")
	}
	if ctor.Return != (jvm.Ref{Name: "acme/Widget"}) {
		t.Errorf("constructor return = %v, want owning class", ctor.Return)
	}

	if create == nil {
		t.Fatal("create not catalogued")
	}
	if !create.Static || !create.Public {
		t.Errorf("create flags: static=%v public=%v", create.Static, create.Public)
	}
	if len(create.Exceptions) != 1 || create.Exceptions[0] != "java/io/IOException" {
		t.Errorf("create exceptions = %v", create.Exceptions)
	}

	if count == nil || count.Kind != interop.KindField {
		t.Fatal("field not catalogued")
	}
	if count.Return != (jvm.Prim{Kind: jvm.Long}) {
		t.Errorf("field type = %v", count.Return)
	}
}

func TestIndexLookupUnknownClass(t *testing.T) {
	ix := New()
	if _, err := ix.Lookup("acme/Nothing"); !errors.Is(err, interop.ErrClassNotFound) {
		t.Errorf("expected ErrClassNotFound, got %v", err)
	}
}

func TestIndexClasses(t *testing.T) {
	ix := New()
	for _, name := range []string{"b/B", "a/A", "c/C"} {
		if err := ix.AddClass(&jvm.ClassFile{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	got := ix.Classes()
	want := []string{"a/A", "b/B", "c/C"}
	if len(got) != len(want) {
		t.Fatalf("Classes() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Classes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIndexResolvesThroughCatalog(t *testing.T) {
	ix := New()
	if err := ix.AddClass(widgetClass()); err != nil {
		t.Fatal(err)
	}

	req := &interop.BindingRequest{
		Org:     "acme",
		Module:  "widgets",
		Version: "1.0.0",
		Func: &interop.ExternFunction{
			Name:   "create",
			Params: []interop.SourceType{interop.TString{}},
			Return: interop.THandle{},
		},
		Class:  "acme.Widget",
		Member: "create",
		Kind:   interop.CallMethod,
		Static: true,
	}

	m, err := interop.NewResolver(interop.NewCachedCatalog(ix)).Resolve(req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Descriptor() != "(Ljava/lang/String;)Lacme/Widget;" {
		t.Errorf("resolved descriptor = %q", m.Descriptor())
	}
}
