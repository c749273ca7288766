package scope

import (
	"fmt"

	"github.com/funvibe/canscope/internal/config"
	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/symbols"
	"github.com/funvibe/canscope/internal/typesystem"
)

type AliasKind int

const (
	// Structural aliases are transparent: `Age : U32`.
	Structural AliasKind = iota
	// Opaque aliases hide their representation outside the declaring module: `Age := U32`.
	Opaque
)

func (k AliasKind) String() string {
	if k == Opaque {
		return "opaque"
	}
	return "structural"
}

// AliasVar is a type parameter of an alias header.
type AliasVar struct {
	Name string
	Var  typesystem.Variable
}

// LambdaSet wraps the variable standing for a function's closure set.
type LambdaSet struct {
	Type typesystem.Type
}

type Alias struct {
	Region             region.Region
	TypeVariables      []region.Loc[AliasVar]
	LambdaSetVariables []LambdaSet
	RecursionVariables []typesystem.Variable
	Type               typesystem.Type
	Kind               AliasKind
}

// HeaderRegion covers the alias name and its type parameters.
func (a *Alias) HeaderRegion() region.Region {
	out := a.Region
	for _, v := range a.TypeVariables {
		out = region.Across(out, v.Region)
	}
	return out
}

// Instantiate returns the alias body with its type parameters replaced by
// args, in header order.
func (a *Alias) Instantiate(args []typesystem.Type) (typesystem.Type, error) {
	if len(args) != len(a.TypeVariables) {
		return nil, fmt.Errorf("alias expects %d type arguments, got %d", len(a.TypeVariables), len(args))
	}
	subst := make(map[typesystem.Variable]typesystem.Type, len(args))
	for i, v := range a.TypeVariables {
		subst[v.Value.Var] = args[i]
	}
	return typesystem.Substitute(a.Type, subst), nil
}

// CreateAlias builds an Alias, deriving lambda-set and recursion variables
// from typ. Every type variable of typ must be bound by vars; with
// config.DebugAssertions on, an unbound one panics.
func CreateAlias(name symbols.Symbol, r region.Region, vars []region.Loc[AliasVar], typ typesystem.Type, kind AliasKind) *Alias {
	detail := typesystem.DetailOf(typ)

	if config.DebugAssertions {
		bound := make([]typesystem.Variable, len(vars))
		for i, v := range vars {
			bound[i] = v.Value.Var
		}
		if hidden := detail.Hidden(bound); len(hidden) > 0 {
			panic(fmt.Sprintf("Found unbound type variables %v\n in type alias %v %v : %v", hidden, name, vars, typ))
		}
	}

	lambdaSets := make([]LambdaSet, len(detail.LambdaSetVariables))
	for i, v := range detail.LambdaSetVariables {
		lambdaSets[i] = LambdaSet{Type: typesystem.TVar{Var: v}}
	}

	return &Alias{
		Region:             r,
		TypeVariables:      vars,
		LambdaSetVariables: lambdaSets,
		RecursionVariables: append([]typesystem.Variable(nil), detail.RecursionVariables...),
		Type:               typ,
		Kind:               kind,
	}
}

// aliasMap keeps aliases in insertion order so nested scopes can drop theirs by
// truncating. Re-inserting a key replaces the value in place.
type aliasMap struct {
	keys   []symbols.Symbol
	values []*Alias
	index  map[symbols.Symbol]int
}

func newAliasMap() *aliasMap {
	return &aliasMap{index: make(map[symbols.Symbol]int)}
}

func (m *aliasMap) Len() int { return len(m.keys) }

func (m *aliasMap) Insert(key symbols.Symbol, alias *Alias) {
	if i, ok := m.index[key]; ok {
		m.values[i] = alias
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, alias)
}

func (m *aliasMap) Get(key symbols.Symbol) (*Alias, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

func (m *aliasMap) Truncate(n int) {
	if n >= len(m.keys) {
		return
	}
	for _, k := range m.keys[n:] {
		delete(m.index, k)
	}
	clear(m.values[n:])
	m.keys = m.keys[:n]
	m.values = m.values[:n]
}
