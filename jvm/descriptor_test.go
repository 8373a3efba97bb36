package jvm

import (
	"errors"
	"reflect"
	"testing"
)

func TestMethodDescriptor(t *testing.T) {
	tests := []struct {
		name   string
		params []Type
		ret    Type
		want   string
	}{
		{"no args void", nil, Void{}, "()V"},
		{"primitives", []Type{Prim{Int}, Prim{Double}}, Prim{Long}, "(ID)J"},
		{
			"string arg",
			[]Type{Ref{"java/lang/String"}},
			Ref{"java/lang/StringBuilder"},
			"(Ljava/lang/String;)Ljava/lang/StringBuilder;",
		},
		{
			"boxed and array",
			[]Type{Boxed{Long}, Array{Prim{Byte}}},
			Void{},
			"(Ljava/lang/Long;[B)V",
		},
		{
			"nested array",
			[]Type{Array{Array{Ref{"java/lang/Object"}}}},
			Prim{Boolean},
			"([[Ljava/lang/Object;)Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MethodDescriptor(tt.params, tt.ret)
			if got != tt.want {
				t.Errorf("MethodDescriptor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMethodDescriptorRoundTrip(t *testing.T) {
	descriptors := []string{
		"()V",
		"(ID)J",
		"(Ljava/lang/String;)Ljava/lang/StringBuilder;",
		"(Ljava/lang/String;[Ljava/lang/Object;)Ljava/lang/String;",
		"([[D[Ljava/lang/String;ZC)[B",
		"(Ljava/lang/Integer;)Ljava/lang/Long;",
	}

	for _, desc := range descriptors {
		params, ret, err := ParseMethodDescriptor(desc)
		if err != nil {
			t.Fatalf("ParseMethodDescriptor(%q): %v", desc, err)
		}
		if got := MethodDescriptor(params, ret); got != desc {
			t.Errorf("round trip of %q produced %q", desc, got)
		}
	}
}

func TestParseMethodDescriptorTypes(t *testing.T) {
	params, ret, err := ParseMethodDescriptor("(JLjava/lang/Integer;[Ljava/lang/String;)V")
	if err != nil {
		t.Fatal(err)
	}

	want := []Type{
		Prim{Long},
		Boxed{Int},
		Array{Ref{"java/lang/String"}},
	}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("params = %v, want %v", params, want)
	}
	if ret != (Void{}) {
		t.Errorf("ret = %v, want void", ret)
	}
}

func TestParseMethodDescriptorErrors(t *testing.T) {
	bad := []string{
		"",
		"()",
		"(I",
		"IV",
		"(X)V",
		"(Ljava/lang/String)V", // unterminated reference
		"(L;)V",                // empty reference name
		"([V)V",                // array of void
		"()VX",                 // trailing garbage
	}

	for _, desc := range bad {
		if _, _, err := ParseMethodDescriptor(desc); !errors.Is(err, ErrBadDescriptor) {
			t.Errorf("ParseMethodDescriptor(%q): expected ErrBadDescriptor, got %v", desc, err)
		}
	}
}

func TestParseFieldDescriptor(t *testing.T) {
	ft, err := ParseFieldDescriptor("[Ljava/math/BigDecimal;")
	if err != nil {
		t.Fatal(err)
	}
	want := Array{Ref{"java/math/BigDecimal"}}
	if ft != Type(want) {
		t.Errorf("field type = %v, want %v", ft, want)
	}

	if _, err := ParseFieldDescriptor("II"); !errors.Is(err, ErrBadDescriptor) {
		t.Errorf("expected ErrBadDescriptor for trailing characters, got %v", err)
	}
}

func TestBoxedRecognition(t *testing.T) {
	ft, err := ParseFieldDescriptor("Ljava/lang/Integer;")
	if err != nil {
		t.Fatal(err)
	}
	if ft != (Boxed{Int}) {
		t.Errorf("expected Boxed{Int}, got %v", ft)
	}
	if ft.Descriptor() != "Ljava/lang/Integer;" {
		t.Errorf("boxed descriptor = %q", ft.Descriptor())
	}

	// non-wrapper references stay plain refs
	ft, err = ParseFieldDescriptor("Ljava/lang/Number;")
	if err != nil {
		t.Fatal(err)
	}
	if ft != (Ref{"java/lang/Number"}) {
		t.Errorf("expected Ref, got %v", ft)
	}
}

func TestNameConversions(t *testing.T) {
	if got := InternalName("java.lang.String"); got != "java/lang/String" {
		t.Errorf("InternalName = %q", got)
	}
	if got := ExternalName("java/util/concurrent/TimeUnit"); got != "java.util.concurrent.TimeUnit" {
		t.Errorf("ExternalName = %q", got)
	}
}
