// Package scope resolves names to symbols during canonicalization: it keeps a
// module's nested lexical scopes, its imports and its type aliases, and
// reports shadowing and undefined names without ever stopping the walk.
package scope

import (
	"iter"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/funvibe/canscope/internal/abilities"
	"github.com/funvibe/canscope/internal/config"
	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/symbols"
	"github.com/funvibe/canscope/internal/typesystem"
)

// AbilityQuerier is all the Scope knows about abilities.
type AbilityQuerier interface {
	IsAbilityMemberName(sym symbols.Symbol) bool
	RegisterSpecializingSymbol(specializing, member symbols.Symbol)
}

// AbilityRegistrar is implemented by ability stores that accept declarations
// through the Scope.
type AbilityRegistrar interface {
	RegisterAbility(ability symbols.Symbol, members []abilities.Member)
}

type importEntry struct {
	ident  symbols.Ident
	symbol symbols.Symbol
	region region.Region
}

type Scope struct {
	// home turns unqualified idents into symbols of this module
	home symbols.ModuleID
	// the first exposedIdentCount identifiers are exposed by the module header
	exposedIdentCount int
	imports           []importEntry
	locals            *ScopedIdents
	aliases           *aliasMap
	abilities         AbilityQuerier
	// depth counts the InnerScope calls currently running
	depth  int
	logger zerolog.Logger

	skipDefaultImports bool
}

type Option func(*Scope)

// WithLogger sets the logger conflicts are reported to at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scope) {
		s.logger = logger
	}
}

// WithAbilities replaces the default, empty abilities.Store.
func WithAbilities(store AbilityQuerier) Option {
	return func(s *Scope) {
		s.abilities = store
	}
}

// WithoutDefaultImports starts with an empty import table.
func WithoutDefaultImports() Option {
	return func(s *Scope) {
		s.skipDefaultImports = true
	}
}

// New creates the scope of module home. initial holds the identifiers the
// module header already exposes; their ids are kept stable. The table is
// copied, so later changes to initial are not seen.
func New(home symbols.ModuleID, initial *symbols.IdentIDs, opts ...Option) *Scope {
	if initial == nil {
		initial = symbols.NewIdentIDs()
	}
	s := &Scope{
		home:              home,
		exposedIdentCount: initial.Len(),
		locals:            newScopedIdents(home, initial.Clone()),
		aliases:           newAliasMap(),
		logger:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.abilities == nil {
		s.abilities = abilities.NewStore()
	}
	if !s.skipDefaultImports {
		for _, imp := range symbols.DefaultInScope() {
			s.imports = append(s.imports, importEntry{imp.Ident, imp.Symbol, imp.Region})
		}
	}
	return s
}

func (s *Scope) Home() symbols.ModuleID { return s.home }

// Depth is the number of enclosing InnerScope calls.
func (s *Scope) Depth() int { return s.depth }

// Locals exposes the scoped identifier table for reading.
func (s *Scope) Locals() *ScopedIdents { return s.locals }

func (s *Scope) Abilities() AbilityQuerier { return s.abilities }

// ExposedIdentCount is the number of identifiers pre-seeded by the header.
func (s *Scope) ExposedIdentCount() int { return s.exposedIdentCount }

// Lookup resolves ident, locals first, then imports.
func (s *Scope) Lookup(ident symbols.Ident, r region.Region) (symbols.Symbol, error) {
	if sym, _, ok := s.scopeContains(ident); ok {
		return sym, nil
	}
	return symbols.Symbol{}, &NotInScopeError{
		Ident:   region.LocAt(r, ident),
		InScope: slices.Collect(s.IdentsInScope()),
	}
}

// IdentsInScope yields the imported names, then the visible local names.
func (s *Scope) IdentsInScope() iter.Seq[symbols.Ident] {
	return func(yield func(symbols.Ident) bool) {
		for _, imp := range s.imports {
			if !yield(imp.ident) {
				return
			}
		}
		for name := range s.locals.IdentsInScope() {
			if !yield(name) {
				return
			}
		}
	}
}

// scopeContains finds ident among the locals, then among the imports.
func (s *Scope) scopeContains(ident symbols.Ident) (symbols.Symbol, region.Region, bool) {
	if sym, r, ok := s.locals.HasInScope(ident); ok {
		return sym, r, true
	}
	for _, imp := range s.imports {
		if imp.ident == ident {
			return imp.symbol, imp.region, true
		}
	}
	return symbols.Symbol{}, region.Region{}, false
}

// Introduce binds ident at r.
//
// If ident is already visible a fresh scopeless symbol is still allocated for
// the new binding: it is both the returned Symbol and the ShadowSymbol of the
// *ShadowError, so the caller always has a unique symbol to keep walking with.
// Use IntroduceWithoutShadowSymbol to skip that allocation.
func (s *Scope) Introduce(ident symbols.Ident, r region.Region) (symbols.Symbol, error) {
	sym, err := s.IntroduceWithoutShadowSymbol(ident, r)
	if err == nil {
		return sym, nil
	}
	shadow := err.(*ShadowError)
	shadow.ShadowSymbol = s.ScopelessSymbol(ident, r)
	shadow.HasShadowSymbol = true
	return shadow.ShadowSymbol, shadow
}

// IntroduceWithoutShadowSymbol is Introduce without the recovery symbol: on
// conflict it returns only the *ShadowError.
func (s *Scope) IntroduceWithoutShadowSymbol(ident symbols.Ident, r region.Region) (symbols.Symbol, error) {
	if _, original, ok := s.scopeContains(ident); ok {
		s.logger.Debug().
			Str("ident", string(ident)).
			Stringer("region", r).
			Stringer("original", original).
			Msg("illegal shadow")
		return symbols.Symbol{}, &ShadowError{
			OriginalRegion: original,
			Shadow:         region.LocAt(r, ident),
		}
	}
	return s.commitIntroduction(ident, r), nil
}

// Introduced is the result of IntroduceOrShadowAbilityMember.
type Introduced struct {
	Symbol symbols.Symbol
	// SpecializationOf is the ability member Symbol implements, when
	// IsSpecialization is set.
	SpecializationOf symbols.Symbol
	IsSpecialization bool
}

// IntroduceOrShadowAbilityMember is Introduce, except that re-declaring the
// name of an ability member is a specialization of it rather than a shadow:
// the new symbol is registered with the abilities store and no error is
// returned. On a genuine shadow the result still carries the recovery symbol.
func (s *Scope) IntroduceOrShadowAbilityMember(ident symbols.Ident, r region.Region) (Introduced, error) {
	original, originalRegion, ok := s.scopeContains(ident)
	if !ok {
		return Introduced{Symbol: s.commitIntroduction(ident, r)}, nil
	}

	shadowSymbol := s.ScopelessSymbol(ident, r)

	if s.abilities.IsAbilityMemberName(original) {
		s.abilities.RegisterSpecializingSymbol(shadowSymbol, original)
		s.logger.Debug().
			Str("ident", string(ident)).
			Stringer("region", r).
			Msg("ability member specialization")
		return Introduced{Symbol: shadowSymbol, SpecializationOf: original, IsSpecialization: true}, nil
	}

	s.logger.Debug().
		Str("ident", string(ident)).
		Stringer("region", r).
		Stringer("original", originalRegion).
		Msg("illegal shadow")
	return Introduced{Symbol: shadowSymbol}, &ShadowError{
		OriginalRegion:  originalRegion,
		Shadow:          region.LocAt(r, ident),
		ShadowSymbol:    shadowSymbol,
		HasShadowSymbol: true,
	}
}

func (s *Scope) commitIntroduction(ident symbols.Ident, r region.Region) symbols.Symbol {
	// exposed identifiers keep the IdentID other modules already refer to
	if id, ok := s.locals.table.GetID(ident); ok && id.Index() < s.exposedIdentCount {
		s.locals.activate(id, r)
		return symbols.NewSymbol(s.home, id)
	}
	id := s.locals.IntroduceIntoScope(ident, r)
	return symbols.NewSymbol(s.home, id)
}

// ScopelessSymbol allocates a symbol for ident without making it nameable.
func (s *Scope) ScopelessSymbol(ident symbols.Ident, r region.Region) symbols.Symbol {
	return s.locals.ScopelessSymbol(ident, r)
}

// Import makes symbol available as ident for the whole module. The first
// import of a name wins; a second one returns *DuplicateImportError. Locals
// are not consulted, imports come from the header before any local
// declaration. Importing inside InnerScope returns *NestedScopeError.
func (s *Scope) Import(ident symbols.Ident, symbol symbols.Symbol, r region.Region) error {
	if s.depth > 0 {
		return &NestedScopeError{What: "importing `" + string(ident) + "`", Region: r}
	}
	for _, imp := range s.imports {
		if imp.ident == ident {
			s.logger.Debug().
				Str("ident", string(ident)).
				Stringer("region", r).
				Msg("duplicate import")
			return &DuplicateImportError{
				Ident:  region.LocAt(r, ident),
				Symbol: imp.symbol,
				Region: imp.region,
			}
		}
	}
	s.imports = append(s.imports, importEntry{ident, symbol, r})
	return nil
}

// Imports calls yield for each import in order.
func (s *Scope) Imports() iter.Seq2[symbols.Ident, symbols.Symbol] {
	return func(yield func(symbols.Ident, symbols.Symbol) bool) {
		for _, imp := range s.imports {
			if !yield(imp.ident, imp.symbol) {
				return
			}
		}
	}
}

// DeclareAbility registers an ability with the abilities store. Abilities are
// module-level declarations: inside InnerScope this returns *NestedScopeError.
func (s *Scope) DeclareAbility(ability symbols.Symbol, members []abilities.Member, r region.Region) error {
	if s.depth > 0 {
		return &NestedScopeError{What: "declaring an ability", Region: r}
	}
	registrar, ok := s.abilities.(AbilityRegistrar)
	if !ok {
		panic("scope: abilities store does not accept declarations")
	}
	registrar.RegisterAbility(ability, members)
	return nil
}

// AddAlias records the alias declared as name, replacing any previous one.
// See CreateAlias for the type-variable requirement.
func (s *Scope) AddAlias(name symbols.Symbol, r region.Region, vars []region.Loc[AliasVar], typ typesystem.Type, kind AliasKind) {
	s.aliases.Insert(name, CreateAlias(name, r, vars, typ, kind))
}

func (s *Scope) ContainsAlias(name symbols.Symbol) bool {
	_, ok := s.aliases.Get(name)
	return ok
}

func (s *Scope) LookupAlias(name symbols.Symbol) (*Alias, bool) {
	return s.aliases.Get(name)
}

// Aliases calls yield for each alias in declaration order.
func (s *Scope) Aliases() iter.Seq2[symbols.Symbol, *Alias] {
	return func(yield func(symbols.Symbol, *Alias) bool) {
		for i, k := range s.aliases.keys {
			if !yield(k, s.aliases.values[i]) {
				return
			}
		}
	}
}

// LookupOpaqueRef resolves an opaque reference such as `@Age`. It must name an
// opaque alias declared in this module: `@Age` cannot reach another module's
// Age, even if it is imported.
func (s *Scope) LookupOpaqueRef(opaqueRef string, r region.Region) (symbols.Symbol, *Alias, error) {
	opaque := symbols.Ident(strings.TrimPrefix(opaqueRef, config.OpaqueSigil))

	if sym, _, ok := s.locals.HasInScope(opaque); ok {
		alias, ok := s.aliases.Get(sym)
		if !ok {
			return symbols.Symbol{}, nil, s.opaqueNotDefinedError(opaque, r, nil)
		}
		if alias.Kind == Structural {
			// a proper alias like `Age : U32`, not an opaque type
			header := alias.HeaderRegion()
			return symbols.Symbol{}, nil, s.opaqueNotDefinedError(opaque, r, &header)
		}
		return sym, alias, nil
	}

	for _, imp := range s.imports {
		if imp.ident == opaque {
			s.logger.Debug().
				Str("ident", string(opaque)).
				Stringer("region", r).
				Msg("opaque reference outside declaring module")
			return symbols.Symbol{}, nil, &OpaqueOutsideScopeError{
				Opaque:           opaque,
				ReferencedRegion: r,
				ImportedRegion:   imp.region,
			}
		}
	}

	return symbols.Symbol{}, nil, s.opaqueNotDefinedError(opaque, r, nil)
}

func (s *Scope) opaqueNotDefinedError(opaque symbols.Ident, r region.Region, definedAlias *region.Region) *OpaqueNotDefinedError {
	var opaques []symbols.Ident
	s.locals.table.IdentStrs(func(id symbols.IdentID, name symbols.Ident) bool {
		if name == "" || s.locals.table.IsGenerated(id) {
			return true
		}
		if alias, ok := s.aliases.Get(symbols.NewSymbol(s.home, id)); ok && alias.Kind == Opaque {
			opaques = append(opaques, name)
		}
		return true
	})
	return &OpaqueNotDefinedError{
		Usage:          region.LocAt(r, opaque),
		OpaquesInScope: opaques,
		DefinedAlias:   definedAlias,
	}
}

// InnerScope runs body in a nested lexical scope of s. When body returns, or
// panics, everything it introduced becomes invisible again and the aliases it
// added are dropped. Imports and abilities are not rolled back; both are
// refused while a nested scope is active.
func (s *Scope) InnerScope(body func(inner *Scope)) {
	Inner(s, func(inner *Scope) struct{} {
		body(inner)
		return struct{}{}
	})
}

// Inner is InnerScope for bodies that return a value.
func Inner[T any](s *Scope, body func(inner *Scope) T) T {
	aliasCount := s.aliases.Len()
	snapshot := s.locals.Snapshot()
	s.depth++
	defer func() {
		s.depth--
		s.aliases.Truncate(aliasCount)
		s.locals.Revert(snapshot)
	}()
	return body(s)
}

// RegisterDebugIdents publishes the module's identifier table to names. It
// returns false if the module was already registered.
func (s *Scope) RegisterDebugIdents(names *symbols.DebugNames) bool {
	return names.Register(s.home, s.locals.table)
}

// GenUniqueSymbol returns a fresh symbol with no resolvable name, e.g. for a
// closure the compiler synthesizes.
func (s *Scope) GenUniqueSymbol() symbols.Symbol {
	return symbols.NewSymbol(s.home, s.locals.GenUnique())
}
