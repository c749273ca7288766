package symbols

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIdentIDsAddAllowsDuplicates(t *testing.T) {
	ids := NewIdentIDs()
	a := ids.Add("x")
	b := ids.Add("y")
	c := ids.Add("x")

	if a == c {
		t.Fatalf("second allocation of x reused id %d", a)
	}
	if diff := cmp.Diff([]IdentID{a, c}, ids.GetIDMany("x")); diff != "" {
		t.Errorf("GetIDMany(x) (-want +got):\n%s", diff)
	}
	if first, ok := ids.GetID("x"); !ok || first != a {
		t.Errorf("GetID(x) = %d, %v; want %d", first, ok, a)
	}
	if got, _ := ids.Name(b); got != "y" {
		t.Errorf("Name(%d) = %q, want y", b, got)
	}
	if ids.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ids.Len())
	}
	if _, ok := ids.GetID("missing"); ok {
		t.Errorf("GetID(missing) should fail")
	}
}

func TestIdentIDsGenUnique(t *testing.T) {
	ids := NewIdentIDsFrom("a", "b")
	u := ids.GenUnique()
	if u != 2 {
		t.Fatalf("GenUnique() = %d, want 2", u)
	}
	if !ids.IsGenerated(u) {
		t.Errorf("%d should be generated", u)
	}
	if ids.IsGenerated(0) {
		t.Errorf("0 should not be generated")
	}
	if got := ids.GetIDMany("2"); len(got) != 0 {
		t.Errorf("generated names must not be indexed, got %v", got)
	}
}

func TestIdentIDsDigitNamesAreNotGenerated(t *testing.T) {
	ids := NewIdentIDsFrom("1x")
	u := ids.GenUnique()
	clone := ids.Clone()

	id, ok := clone.GetID("1x")
	if !ok || id != 0 {
		t.Fatalf("clone.GetID(1x) = %d, %v; want 0, true", id, ok)
	}
	if clone.IsGenerated(0) {
		t.Errorf("source name 1x classified as generated")
	}
	if !clone.IsGenerated(u) {
		t.Errorf("GenUnique entry %d lost its flag", u)
	}
}

func TestIdentIDsGetIDManyReturnsCopy(t *testing.T) {
	ids := NewIdentIDsFrom("a", "a")
	got := ids.GetIDMany("a")
	got[0] = 99
	_ = append(got, 98)
	ids.Add("a")

	if diff := cmp.Diff([]IdentID{0, 1, 2}, ids.GetIDMany("a")); diff != "" {
		t.Errorf("GetIDMany(a) (-want +got):\n%s", diff)
	}
}

func TestIdentIDsCloneIsIndependent(t *testing.T) {
	ids := NewIdentIDsFrom("a")
	ids.GenUnique()
	clone := ids.Clone()
	clone.Add("a")

	if ids.Len() != 2 || clone.Len() != 3 {
		t.Fatalf("lengths = %d, %d; want 2, 3", ids.Len(), clone.Len())
	}
	if len(ids.GetIDMany("a")) != 1 {
		t.Errorf("original index changed by clone")
	}
	if !clone.IsGenerated(1) {
		t.Errorf("clone lost generated entry")
	}
}

func TestModuleIDs(t *testing.T) {
	m := NewModuleIDs()
	if id, ok := m.Get("List"); !ok || id != ModuleList {
		t.Fatalf("Get(List) = %d, %v", id, ok)
	}
	home := m.GetOrInsert("Main")
	if home != FirstUserModule {
		t.Errorf("first user module = %d, want %d", home, FirstUserModule)
	}
	if again := m.GetOrInsert("Main"); again != home {
		t.Errorf("GetOrInsert not idempotent: %d vs %d", again, home)
	}
	if name, _ := m.Name(home); name != "Main" {
		t.Errorf("Name = %q", name)
	}
}

func TestDefaultInScopeResolvesToBuiltins(t *testing.T) {
	names := NewDebugNames()
	for _, imp := range DefaultInScope() {
		ident, ok := names.IdentName(imp.Symbol)
		if !ok {
			t.Fatalf("%s has no debug name", imp.Ident)
		}
		if ident != imp.Ident {
			t.Errorf("default import %s points at %s", imp.Ident, names.SymbolName(imp.Symbol))
		}
	}
}
