package scope

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/symbols"
)

const home = symbols.ModuleAttr

var builtinIdents = []symbols.Ident{"Box", "Set", "Dict", "Str", "Ok", "False", "List", "True", "Err"}

func newTestScope(t *testing.T, opts ...Option) *Scope {
	t.Helper()
	return New(home, symbols.NewIdentIDs(), opts...)
}

func expectShadow(t *testing.T, err error) *ShadowError {
	t.Helper()
	var shadow *ShadowError
	if !errors.As(err, &shadow) {
		t.Fatalf("expected *ShadowError, got %v", err)
	}
	return shadow
}

func TestScopeContainsIntroduced(t *testing.T) {
	s := newTestScope(t)
	r := region.Zero()

	_, err := s.Lookup("mezolit", r)
	var notInScope *NotInScopeError
	require.ErrorAs(t, err, &notInScope)

	introduced, err := s.Introduce("mezolit", r)
	require.NoError(t, err)

	found, err := s.Lookup("mezolit", r)
	require.NoError(t, err)
	require.Equal(t, introduced, found)
}

func TestSecondIntroduceShadows(t *testing.T) {
	s := newTestScope(t)
	region1 := region.At(10)
	region2 := region.At(20)

	first, err := s.Introduce("mezolit", region1)
	require.NoError(t, err)

	second, err := s.Introduce("mezolit", region2)
	shadow := expectShadow(t, err)

	require.True(t, shadow.HasShadowSymbol)
	require.Equal(t, second, shadow.ShadowSymbol)
	require.NotEqual(t, first, shadow.ShadowSymbol)
	require.Equal(t, region1, shadow.OriginalRegion)
	require.Equal(t, region2, shadow.Shadow.Region)

	lookup, err := s.Lookup("mezolit", region.Zero())
	require.NoError(t, err)
	require.Equal(t, first, lookup)
}

func TestIntroduceWithoutShadowSymbol(t *testing.T) {
	s := newTestScope(t)
	_, err := s.IntroduceWithoutShadowSymbol("x", region.At(1))
	require.NoError(t, err)
	before := s.Locals().Len()

	sym, err := s.IntroduceWithoutShadowSymbol("x", region.At(2))
	shadow := expectShadow(t, err)
	require.False(t, shadow.HasShadowSymbol)
	require.Equal(t, symbols.Symbol{}, sym)
	require.Equal(t, before, s.Locals().Len(), "no entry should be allocated")
}

func TestInnerScopeDoesNotInfluenceOuter(t *testing.T) {
	s := newTestScope(t)
	r := region.Zero()

	_, err := s.Lookup("uránia", r)
	require.Error(t, err)

	s.InnerScope(func(inner *Scope) {
		_, err := inner.Introduce("uránia", r)
		require.NoError(t, err)
		_, err = inner.Lookup("uránia", r)
		require.NoError(t, err)
	})

	_, err = s.Lookup("uránia", r)
	require.Error(t, err)
}

func TestSiblingScopesDoNotLeak(t *testing.T) {
	s := newTestScope(t)
	r := region.Zero()

	var left, right symbols.Symbol
	s.InnerScope(func(inner *Scope) {
		var err error
		left, err = inner.Introduce("x", r)
		require.NoError(t, err)
	})
	s.InnerScope(func(inner *Scope) {
		_, err := inner.Lookup("x", r)
		require.Error(t, err, "x leaked from sibling scope")
		right, err = inner.Introduce("x", r)
		require.NoError(t, err, "x from a sibling scope must not count as a shadow")
	})
	require.NotEqual(t, left, right)
}

func TestNestedScopesRestoreInOrder(t *testing.T) {
	s := newTestScope(t)
	r := region.Zero()
	outer, _ := s.Introduce("a", r)

	got := Inner(s, func(mid *Scope) symbols.Symbol {
		b, _ := mid.Introduce("b", r)
		mid.InnerScope(func(inner *Scope) {
			_, err := inner.Introduce("c", r)
			require.NoError(t, err)
			require.Equal(t, 2, inner.Depth())
		})
		_, err := mid.Lookup("c", r)
		require.Error(t, err)
		_, err = mid.Lookup("b", r)
		require.NoError(t, err)
		return b
	})

	require.NotEqual(t, outer, got)
	require.Equal(t, 0, s.Depth())
	_, err := s.Lookup("b", r)
	require.Error(t, err)
	found, err := s.Lookup("a", r)
	require.NoError(t, err)
	require.Equal(t, outer, found)
}

func TestInnerScopeRevertsOnPanic(t *testing.T) {
	s := newTestScope(t)
	func() {
		defer func() { _ = recover() }()
		s.InnerScope(func(inner *Scope) {
			inner.Introduce("boom", region.Zero())
			panic("body failed")
		})
	}()
	_, err := s.Lookup("boom", region.Zero())
	require.Error(t, err)
	require.Equal(t, 0, s.Depth())
}

func TestDefaultIdentsInScope(t *testing.T) {
	s := newTestScope(t)
	if diff := cmp.Diff(builtinIdents, slices.Collect(s.IdentsInScope())); diff != "" {
		t.Errorf("IdentsInScope (-want +got):\n%s", diff)
	}

	bare := newTestScope(t, WithoutDefaultImports())
	require.Empty(t, slices.Collect(bare.IdentsInScope()))
}

func TestIdentsWithInnerScope(t *testing.T) {
	s := newTestScope(t)
	builtinCount := len(builtinIdents)
	r := region.Zero()

	for _, name := range []symbols.Ident{"uránia", "malmok", "Járnak"} {
		_, err := s.Introduce(name, r)
		require.NoError(t, err)
	}
	outer := []symbols.Ident{"uránia", "malmok", "Járnak"}
	require.Equal(t, outer, slices.Collect(s.IdentsInScope())[builtinCount:])

	s.InnerScope(func(inner *Scope) {
		inner.Introduce("Ångström", r)
		inner.Introduce("Sirály", r)
		want := append(slices.Clone(outer), "Ångström", "Sirály")
		require.Equal(t, want, slices.Collect(inner.IdentsInScope())[builtinCount:])
	})

	require.Equal(t, outer, slices.Collect(s.IdentsInScope())[builtinCount:])
}

func TestIdentsInScopeIsRestartable(t *testing.T) {
	s := newTestScope(t, WithoutDefaultImports())
	s.Introduce("a", region.Zero())
	s.Introduce("b", region.Zero())

	seq := s.IdentsInScope()
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Equal(t, first, second)

	var taken []symbols.Ident
	for name := range seq {
		taken = append(taken, name)
		break
	}
	require.Equal(t, []symbols.Ident{"a"}, taken)
}

func TestImportIsInScope(t *testing.T) {
	s := newTestScope(t)
	r := region.Zero()

	_, err := s.Lookup("product", r)
	require.Error(t, err)

	require.NoError(t, s.Import("product", symbols.ListProduct, r))

	found, err := s.Lookup("product", r)
	require.NoError(t, err)
	require.Equal(t, symbols.ListProduct, found)
	require.Contains(t, slices.Collect(s.IdentsInScope()), symbols.Ident("product"))
}

func TestDuplicateImport(t *testing.T) {
	s := newTestScope(t)
	require.NoError(t, s.Import("product", symbols.ListProduct, region.At(3)))

	err := s.Import("product", symbols.ListSum, region.At(9))
	var dup *DuplicateImportError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, symbols.ListProduct, dup.Symbol)
	require.Equal(t, region.At(3), dup.Region)

	found, _ := s.Lookup("product", region.Zero())
	require.Equal(t, symbols.ListProduct, found, "first import wins")
}

func TestShadowOfImport(t *testing.T) {
	s := newTestScope(t)
	region1 := region.At(10)
	region2 := region.At(20)

	require.NoError(t, s.Import("product", symbols.ListProduct, region1))

	sym, err := s.Introduce("product", region2)
	shadow := expectShadow(t, err)
	require.NotEqual(t, symbols.ListProduct, shadow.ShadowSymbol)
	require.Equal(t, sym, shadow.ShadowSymbol)
	require.Equal(t, region1, shadow.OriginalRegion)

	lookup, err := s.Lookup("product", region.Zero())
	require.NoError(t, err)
	require.Equal(t, symbols.ListProduct, lookup)
}

func TestShadowOfDefaultImport(t *testing.T) {
	s := newTestScope(t)
	_, err := s.Introduce("List", region.At(5))
	shadow := expectShadow(t, err)
	require.Equal(t, region.Zero(), shadow.OriginalRegion)
}

func TestNotInScopeCarriesVisibleNames(t *testing.T) {
	s := newTestScope(t)
	s.Introduce("mezolit", region.Zero())

	_, err := s.Lookup("mezolitt", region.At(7))
	var notInScope *NotInScopeError
	require.ErrorAs(t, err, &notInScope)
	require.Equal(t, symbols.Ident("mezolitt"), notInScope.Ident.Value)
	require.Equal(t, region.At(7), notInScope.Ident.Region)
	require.Equal(t, append(slices.Clone(builtinIdents), "mezolit"), notInScope.InScope)

	d := notInScope.Diagnostic()
	require.Equal(t, []string{"mezolit"}, d.Suggestions)
}

func TestUniqueness(t *testing.T) {
	s := newTestScope(t)
	r := region.Zero()
	seen := make(map[symbols.Symbol]bool)
	record := func(sym symbols.Symbol) {
		t.Helper()
		if seen[sym] {
			t.Fatalf("symbol %v handed out twice", sym)
		}
		seen[sym] = true
	}

	a, _ := s.Introduce("a", r)
	record(a)
	shadowA, _ := s.Introduce("a", r)
	record(shadowA)
	record(s.ScopelessSymbol("a", r))
	record(s.GenUniqueSymbol())
	s.InnerScope(func(inner *Scope) {
		b, _ := inner.Introduce("b", r)
		record(b)
		record(inner.GenUniqueSymbol())
	})
	b2, _ := s.Introduce("b", r)
	record(b2)
	specialized, err := s.IntroduceOrShadowAbilityMember("c", r)
	require.NoError(t, err)
	record(specialized.Symbol)
	record(s.GenUniqueSymbol())
}

func TestGenUniqueSymbolIsNotNameable(t *testing.T) {
	s := newTestScope(t, WithoutDefaultImports())
	sym := s.GenUniqueSymbol()
	require.Equal(t, home, sym.Module)
	require.False(t, s.Locals().IsInScope(sym.Ident))
	require.Empty(t, slices.Collect(s.IdentsInScope()))
}

func TestScopelessSymbolIsNotNameable(t *testing.T) {
	s := newTestScope(t)
	sym := s.ScopelessSymbol("guard", region.At(4))
	_, err := s.Lookup("guard", region.Zero())
	require.Error(t, err)

	introduced, err := s.Introduce("guard", region.At(8))
	require.NoError(t, err)
	require.NotEqual(t, sym, introduced)

	got, ok := s.Locals().Region(sym.Ident)
	require.True(t, ok)
	require.Equal(t, region.At(4), got)
}

func TestExposedIdentsKeepTheirIDs(t *testing.T) {
	initial := symbols.NewIdentIDsFrom("main", "helper")
	s := New(symbols.FirstUserModule, initial)
	require.Equal(t, 2, s.ExposedIdentCount())

	_, err := s.Lookup("helper", region.Zero())
	require.Error(t, err, "exposed names are not visible before their declaration")

	helper, err := s.Introduce("helper", region.At(30))
	require.NoError(t, err)
	require.Equal(t, symbols.NewSymbol(symbols.FirstUserModule, 1), helper)

	r, _ := s.Locals().Region(1)
	require.Equal(t, region.At(30), r)
	require.Equal(t, 2, s.Locals().Len(), "no new entry for an exposed name")

	other, err := s.Introduce("other", region.At(40))
	require.NoError(t, err)
	require.Equal(t, symbols.IdentID(2), other.Ident)

	initial.Add("late")
	require.Equal(t, 3, s.Locals().Len(), "initial table is copied")
}

func TestExposedIdentSpelledWithDigitKeepsItsID(t *testing.T) {
	s := New(symbols.FirstUserModule, symbols.NewIdentIDsFrom("1x"))

	sym, err := s.Introduce("1x", region.At(5))
	require.NoError(t, err)
	require.Equal(t, symbols.NewSymbol(symbols.FirstUserModule, 0), sym)
	require.Equal(t, 1, s.Locals().Len())
	require.False(t, s.Locals().Table().IsGenerated(0))
}

func TestExposedIdentReactivatedInInnerScopeIsReverted(t *testing.T) {
	s := New(symbols.FirstUserModule, symbols.NewIdentIDsFrom("main"))
	s.InnerScope(func(inner *Scope) {
		sym, err := inner.Introduce("main", region.At(3))
		require.NoError(t, err)
		require.Equal(t, symbols.IdentID(0), sym.Ident)
	})
	_, err := s.Lookup("main", region.Zero())
	require.Error(t, err)
}

func TestRegisterDebugIdents(t *testing.T) {
	s := New(symbols.FirstUserModule, symbols.NewIdentIDsFrom("main"))
	s.Introduce("main", region.Zero())
	unique := s.GenUniqueSymbol()

	names := symbols.NewDebugNames()
	names.RegisterModule(symbols.FirstUserModule, "Main")
	require.True(t, s.RegisterDebugIdents(names))
	require.False(t, s.RegisterDebugIdents(names))
	require.Equal(t, "Main.main", names.SymbolName(symbols.NewSymbol(symbols.FirstUserModule, 0)))
	require.Equal(t, "Main.$1", names.SymbolName(unique))
}
