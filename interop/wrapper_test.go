package interop

import (
	"testing"

	"github.com/chazu/tern/jvm"
)

func TestBuildMethodWrapper(t *testing.T) {
	cat := stringBuilderCatalog()
	req := request(sbClass, "append", CallMethod, false, []SourceType{TString{}}, THandle{})
	m := mustResolve(t, cat, req)

	w, err := BuildWrapper(req, m)
	if err != nil {
		t.Fatalf("BuildWrapper: %v", err)
	}

	mw, ok := w.(*JMethodWrapper)
	if !ok {
		t.Fatalf("expected *JMethodWrapper, got %T", w)
	}
	if mw.CallKind() != CallMethod {
		t.Errorf("call kind = %v", mw.CallKind())
	}

	base := w.Base()
	if base.ClassName != sbClass {
		t.Errorf("class name = %q", base.ClassName)
	}
	if base.Org != "acme" || base.Module != "jdk" || base.Version != "0.1.0" {
		t.Errorf("module identity not carried: %+v", base)
	}

	want := "(Ljava/lang/String;)Ljava/lang/StringBuilder;"
	if base.MethodDescriptor != want {
		t.Errorf("descriptor = %q, want %q", base.MethodDescriptor, want)
	}
	// no boxed strings declared, so both encodings agree
	if base.MethodDescriptorBString != want {
		t.Errorf("bstring descriptor = %q, want %q", base.MethodDescriptorBString, want)
	}
}

func TestBuildConstructorWrapper(t *testing.T) {
	cat := stringBuilderCatalog()
	req := request(sbClass, "", CallConstructor, false, nil, THandle{})
	m := mustResolve(t, cat, req)

	w, err := BuildWrapper(req, m)
	if err != nil {
		t.Fatal(err)
	}
	if w.CallKind() != CallConstructor {
		t.Errorf("call kind = %v", w.CallKind())
	}
	if got := w.Base().MethodDescriptor; got != "()V" {
		t.Errorf("constructor descriptor = %q, want ()V", got)
	}
}

func TestBStringSubstitution(t *testing.T) {
	str := jvm.Ref{Name: StringClass}
	cat := fakeCatalog{
		"acme/Text": {
			method("acme/Text", "concat", true, []jvm.Type{str, jvm.Prim{Kind: jvm.Long}}, str),
			method("acme/Text", "join", true, []jvm.Type{jvm.Array{Elem: str}}, str),
		},
	}

	// boxed string positions substitute; others stay as String
	req := request("acme/Text", "concat", CallMethod, true,
		[]SourceType{TString{Boxed: true}, TInt{}}, TString{Boxed: true})
	m := mustResolve(t, cat, req)

	w, err := BuildWrapper(req, m)
	if err != nil {
		t.Fatal(err)
	}
	base := w.Base()

	if base.MethodDescriptor != "(Ljava/lang/String;J)Ljava/lang/String;" {
		t.Errorf("native descriptor = %q", base.MethodDescriptor)
	}
	want := "(Lio/tern/runtime/values/BString;J)Lio/tern/runtime/values/BString;"
	if base.MethodDescriptorBString != want {
		t.Errorf("bstring descriptor = %q, want %q", base.MethodDescriptorBString, want)
	}

	// substitution is outermost-only: array element strings keep the
	// native encoding
	req = request("acme/Text", "join", CallMethod, true,
		[]SourceType{TArray{Elem: TString{Boxed: true}}}, TString{})
	m = mustResolve(t, cat, req)
	w, err = BuildWrapper(req, m)
	if err != nil {
		t.Fatal(err)
	}
	if got := w.Base().MethodDescriptorBString; got != "([Ljava/lang/String;)Ljava/lang/String;" {
		t.Errorf("array position substituted: %q", got)
	}
}

func TestFieldWrapperShapes(t *testing.T) {
	cat := fakeCatalog{
		"acme/Conf": {
			field("acme/Conf", "limit", true, jvm.Prim{Kind: jvm.Long}),
		},
	}

	// get: zero-parameter pseudo-method returning the field type
	get := request("acme/Conf", "limit", CallFieldGet, true, nil, TInt{})
	m := mustResolve(t, cat, get)
	w, err := BuildWrapper(get, m)
	if err != nil {
		t.Fatal(err)
	}
	fw, ok := w.(*JFieldWrapper)
	if !ok {
		t.Fatalf("expected *JFieldWrapper, got %T", w)
	}
	if fw.Mode != GetAccess || fw.CallKind() != CallFieldGet {
		t.Errorf("mode = %v, call kind = %v", fw.Mode, fw.CallKind())
	}
	if fw.MethodDescriptor != "()J" {
		t.Errorf("get descriptor = %q, want ()J", fw.MethodDescriptor)
	}

	// set: one-parameter void pseudo-method over the field type
	set := request("acme/Conf", "limit", CallFieldSet, true, []SourceType{TInt{}}, TNil{})
	m = mustResolve(t, cat, set)
	w, err = BuildWrapper(set, m)
	if err != nil {
		t.Fatal(err)
	}
	fw = w.(*JFieldWrapper)
	if fw.Mode != SetAccess {
		t.Errorf("mode = %v", fw.Mode)
	}
	if fw.MethodDescriptor != "(J)V" {
		t.Errorf("set descriptor = %q, want (J)V", fw.MethodDescriptor)
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	cat := stringBuilderCatalog()
	req := request(sbClass, "append", CallMethod, false, []SourceType{TString{}}, THandle{})
	m := mustResolve(t, cat, req)

	w, err := BuildWrapper(req, m)
	if err != nil {
		t.Fatal(err)
	}

	params, ret, err := jvm.ParseMethodDescriptor(w.Base().MethodDescriptor)
	if err != nil {
		t.Fatalf("decoding produced descriptor: %v", err)
	}
	if len(params) != len(m.Params) {
		t.Fatalf("param count %d, want %d", len(params), len(m.Params))
	}
	for i := range params {
		if params[i] != m.Params[i] {
			t.Errorf("param %d = %v, want %v", i, params[i], m.Params[i])
		}
	}
	if ret != m.Return {
		t.Errorf("return = %v, want %v", ret, m.Return)
	}
}

func TestBuildWrapperInternalError(t *testing.T) {
	req := request("acme/Bad", "run", CallMethod, false, nil, TNil{})
	broken := &MemberSignature{
		Kind:   KindMethod,
		Class:  "acme/Bad",
		Name:   "run",
		Params: []jvm.Type{jvm.Void{}},
		Return: jvm.Void{},
		Public: true,
	}

	_, err := BuildWrapper(req, broken)
	if err == nil {
		t.Fatal("expected internal descriptor error")
	}
	if _, ok := err.(*InternalDescriptorError); !ok {
		t.Errorf("expected *InternalDescriptorError, got %T", err)
	}
}

func TestWrapperExceptionsCarried(t *testing.T) {
	m := method("acme/IO", "read", true, nil, jvm.Prim{Kind: jvm.Long})
	m.Exceptions = []string{"java/io/IOException"}
	cat := fakeCatalog{"acme/IO": {m}}

	req := request("acme/IO", "read", CallMethod, true, nil, TInt{})
	resolved := mustResolve(t, cat, req)
	w, err := BuildWrapper(req, resolved)
	if err != nil {
		t.Fatal(err)
	}

	mw := w.(*JMethodWrapper)
	if len(mw.Exceptions) != 1 || mw.Exceptions[0] != "java/io/IOException" {
		t.Errorf("exceptions = %v", mw.Exceptions)
	}
}
