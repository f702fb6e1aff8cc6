package types

import (
	"slices"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, created := r.GetOrCreate("a")
	if !created {
		t.Fatalf("GetOrCreate(a) created = false on first call")
	}
	a.PushBack("x")
	r.GetOrCreate("b")
	r.GetOrCreate("c")

	if again, created := r.GetOrCreate("a"); created || again != a {
		t.Errorf("GetOrCreate(a) = (%p, %t); want (%p, false)", again, created, a)
	}
	if got := r.Names(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Names() = %v; want [a b c]", got)
	}

	if !r.Drop("b") {
		t.Errorf("Drop(b) = false; want true")
	}
	if r.Drop("b") {
		t.Errorf("second Drop(b) = true; want false")
	}
	if _, ok := r.Get("b"); ok {
		t.Errorf("Get(b) found a dropped list")
	}
	if got := r.Names(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Names() = %v; want [a c]", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d; want 2", r.Len())
	}
}
