package resource

import (
	"sort"
	"testing"

	"github.com/ostium-io/ostium/sec"
)

func TestMethodNames(t *testing.T) {
	d := &Descriptor{
		Name: "account",
		Properties: map[string]Property{
			"find": {Aliases: []string{"all", "findById"}},
		},
	}

	got := d.MethodNames("find")
	want := []string{"all", "findById", "find"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if got := d.MethodNames("destroy"); len(got) != 1 || got[0] != "destroy" {
		t.Fatalf("unregistered property: got %v", got)
	}
	if got := d.MethodNames(""); got != nil {
		t.Fatalf("empty property: got %v", got)
	}
	if got := d.MethodNames(sec.All); got != nil {
		t.Fatalf("wildcard property: got %v", got)
	}

	var nilDesc *Descriptor
	if got := nilDesc.MethodNames("find"); got != nil {
		t.Fatalf("nil descriptor: got %v", got)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&Descriptor{}); err == nil {
		t.Fatal("nameless descriptor should be rejected")
	}
	if err := r.Register(&Descriptor{Name: "account"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&Descriptor{Name: "account"}); err == nil {
		t.Fatal("duplicate name should be rejected")
	}
	if err := r.Register(&Descriptor{Name: "invoice"}); err != nil {
		t.Fatal(err)
	}

	if _, ok := r.Lookup("account"); !ok {
		t.Fatal("registered descriptor not found")
	}
	if _, ok := r.Lookup("ghost"); ok {
		t.Fatal("unregistered name should miss")
	}

	names := r.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "account" || names[1] != "invoice" {
		t.Fatalf("got %v", names)
	}
}

func TestMustRegister_Panics(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(&Descriptor{Name: "account"})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r.MustRegister(&Descriptor{Name: "account"})
}
