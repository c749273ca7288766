// Package canonicalize walks a script's binding and reference sites through a
// module Scope, the way canonicalization walks a parsed module.
package canonicalize

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/funvibe/canscope/internal/abilities"
	"github.com/funvibe/canscope/internal/diagnostics"
	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/scope"
	"github.com/funvibe/canscope/internal/script"
	"github.com/funvibe/canscope/internal/symbols"
	"github.com/funvibe/canscope/internal/typesystem"
)

type Options struct {
	// Modules interns module names across scripts. A fresh one is used when nil.
	Modules *symbols.ModuleIDs
	// Names receives the home module's identifier table and the display names
	// of every module the script mentions.
	Names  *symbols.DebugNames
	Logger zerolog.Logger
}

// Resolution is what one step resolved to.
type Resolution struct {
	Kind   script.StepKind
	Name   string
	Region region.Region
	// Depth is the number of nested scopes around the step.
	Depth int

	Symbol    symbols.Symbol
	HasSymbol bool

	// SpecializationOf is set for an ability_member step that specializes a member.
	SpecializationOf *symbols.Symbol
	// Alias is the declared or referenced alias of alias and opaque_ref steps.
	Alias *scope.Alias

	// Err is the scope error the step produced, if any.
	Err error
}

// DeclaredAlias is an alias that is still visible at the end of the module.
type DeclaredAlias struct {
	Name   string
	Symbol symbols.Symbol
	Alias  *scope.Alias
}

type Output struct {
	Home      symbols.ModuleID
	Steps     []Resolution
	Aliases   []DeclaredAlias
	Problems  []*diagnostics.DiagnosticError
	Abilities *abilities.Store
	// Idents is the home module's identifier table after the walk.
	Idents *symbols.IdentIDs
}

type walker struct {
	file    string
	modules *symbols.ModuleIDs
	foreign map[string]*symbols.IdentIDs
	logger  zerolog.Logger
	out     *Output
}

// Canonicalize resolves every site of s. Problems are collected and the walk
// always runs to the end.
func Canonicalize(s *script.Script, opts Options) *Output {
	if opts.Modules == nil {
		opts.Modules = symbols.NewModuleIDs()
	}
	logger := opts.Logger.With().Str("module", s.Module).Logger()

	w := &walker{
		file:    s.File,
		modules: opts.Modules,
		foreign: make(map[string]*symbols.IdentIDs, len(s.Modules)),
		logger:  logger,
	}

	if id, ok := symbols.BuiltinModule(s.Module); ok {
		// its ids are the built-in symbols every module imports
		w.out = &Output{Home: id, Abilities: abilities.NewStore()}
		w.scriptError(region.Zero(), fmt.Sprintf("module %s is built in and cannot be redefined", s.Module))
		return w.out
	}

	foreignNames := make([]string, 0, len(s.Modules))
	for name := range s.Modules {
		foreignNames = append(foreignNames, name)
	}
	sort.Strings(foreignNames)
	for _, name := range foreignNames {
		exposed := make([]symbols.Ident, len(s.Modules[name]))
		for i, n := range s.Modules[name] {
			exposed[i] = symbols.Ident(n)
		}
		table := symbols.NewIdentIDsFrom(exposed...)
		w.foreign[name] = table
		id := opts.Modules.GetOrInsert(name)
		if opts.Names != nil {
			// the ident table is the defining module's to register
			opts.Names.RegisterModule(id, name)
		}
	}

	home := opts.Modules.GetOrInsert(s.Module)
	exposes := make([]symbols.Ident, len(s.Exposes))
	for i, n := range s.Exposes {
		exposes[i] = symbols.Ident(n)
	}

	store := abilities.NewStore()
	sc := scope.New(home, symbols.NewIdentIDsFrom(exposes...),
		scope.WithLogger(logger),
		scope.WithAbilities(store),
	)
	w.out = &Output{Home: home, Abilities: store}

	for _, imp := range s.Imports {
		w.importName(sc, imp, true)
	}
	for _, ab := range s.Abilities {
		w.declareAbility(sc, ab)
	}
	w.walk(sc, s.Steps)

	for sym, alias := range sc.Aliases() {
		name, _ := sc.Locals().Table().Name(sym.Ident)
		w.out.Aliases = append(w.out.Aliases, DeclaredAlias{Name: string(name), Symbol: sym, Alias: alias})
	}
	w.out.Idents = sc.Locals().Table()

	if opts.Names != nil {
		opts.Names.RegisterModule(home, s.Module)
		if !sc.RegisterDebugIdents(opts.Names) {
			logger.Warn().Msg("debug names already registered for module")
		}
	}

	logger.Debug().
		Int("steps", len(w.out.Steps)).
		Int("problems", len(w.out.Problems)).
		Msg("canonicalized")
	return w.out
}

func (w *walker) walk(sc *scope.Scope, steps []script.Step) {
	for i := range steps {
		w.step(sc, &steps[i])
	}
}

func (w *walker) step(sc *scope.Scope, step *script.Step) {
	res := Resolution{
		Kind:   step.Kind(),
		Name:   step.Name(),
		Region: step.Region(),
		Depth:  sc.Depth(),
	}

	switch res.Kind {
	case script.StepIntroduce:
		res.Symbol, res.Err = sc.Introduce(symbols.Ident(step.Introduce), res.Region)
		res.HasSymbol = true

	case script.StepLookup:
		res.Symbol, res.Err = sc.Lookup(symbols.Ident(step.Lookup), res.Region)
		res.HasSymbol = res.Err == nil

	case script.StepAbilityMember:
		introduced, err := sc.IntroduceOrShadowAbilityMember(symbols.Ident(step.AbilityMember), res.Region)
		res.Symbol, res.HasSymbol, res.Err = introduced.Symbol, true, err
		if introduced.IsSpecialization {
			member := introduced.SpecializationOf
			res.SpecializationOf = &member
		}

	case script.StepAlias:
		w.alias(sc, step, &res)

	case script.StepOpaqueRef:
		res.Symbol, res.Alias, res.Err = sc.LookupOpaqueRef(step.OpaqueRef, res.Region)
		res.HasSymbol = res.Err == nil

	case script.StepScopeless:
		res.Symbol, res.HasSymbol = sc.ScopelessSymbol(symbols.Ident(step.Scopeless), res.Region), true

	case script.StepUnique:
		res.Symbol, res.HasSymbol = sc.GenUniqueSymbol(), true

	case script.StepImport:
		res.Err = w.importName(sc, *step.Import, false)
		res.Region = region.At(step.Import.At)

	case script.StepScope:
		w.record(res)
		sc.InnerScope(func(inner *scope.Scope) {
			w.walk(inner, step.Scope)
		})
		return
	}

	w.record(res)
}

func (w *walker) record(res Resolution) {
	if res.Err != nil {
		w.problem(res.Err)
	}
	w.logger.Debug().
		Stringer("kind", res.Kind).
		Str("name", res.Name).
		Stringer("region", res.Region).
		Bool("ok", res.Err == nil).
		Msg("step")
	w.out.Steps = append(w.out.Steps, res)
}

func (w *walker) problem(err error) {
	var p scope.Problem
	if !errors.As(err, &p) {
		w.scriptError(region.Zero(), err.Error())
		return
	}
	d := p.Diagnostic()
	d.File = w.file
	w.out.Problems = append(w.out.Problems, d)
}

func (w *walker) scriptError(r region.Region, msg string) {
	d := diagnostics.NewError(diagnostics.ErrS001, r, msg)
	d.File = w.file
	w.out.Problems = append(w.out.Problems, d)
}

// importName resolves imp against its module's table and imports it. Unknown
// names become script errors. Scope errors are returned, and recorded here for
// header imports, which have no step to carry them.
func (w *walker) importName(sc *scope.Scope, imp script.Import, header bool) error {
	r := region.At(imp.At)
	sym, ok := w.resolveExternal(imp.From, symbols.Ident(imp.Name))
	if !ok {
		w.scriptError(r, fmt.Sprintf("module %s does not expose %s", imp.From, imp.Name))
		return nil
	}
	err := sc.Import(symbols.Ident(imp.LocalName()), sym, r)
	if err != nil && header {
		w.problem(err)
	}
	return err
}

func (w *walker) resolveExternal(module string, name symbols.Ident) (symbols.Symbol, bool) {
	var table *symbols.IdentIDs
	if id, ok := symbols.BuiltinModule(module); ok {
		table, _ = symbols.BuiltinIdentIDs(id)
	} else {
		table, ok = w.foreign[module]
		if !ok {
			return symbols.Symbol{}, false
		}
	}
	ident, ok := table.GetID(name)
	if !ok {
		return symbols.Symbol{}, false
	}
	return symbols.NewSymbol(w.modules.GetOrInsert(module), ident), true
}

func (w *walker) declareAbility(sc *scope.Scope, ab script.Ability) {
	r := region.At(ab.At)
	abilitySym, err := sc.Introduce(symbols.Ident(ab.Name), r)
	if err != nil {
		w.problem(err)
	}
	members := make([]abilities.Member, 0, len(ab.Members))
	for _, name := range ab.Members {
		sym, err := sc.Introduce(symbols.Ident(name), r)
		if err != nil {
			w.problem(err)
			continue
		}
		members = append(members, abilities.Member{Symbol: sym, Region: r})
	}
	if err := sc.DeclareAbility(abilitySym, members, r); err != nil {
		w.problem(err)
	}
}

func (w *walker) alias(sc *scope.Scope, step *script.Step, res *Resolution) {
	res.Symbol, res.Err = sc.Introduce(symbols.Ident(step.Alias), res.Region)
	res.HasSymbol = true

	env := &typesystem.Env{Vars: make(map[string]typesystem.Variable, len(step.Vars))}
	env.Store = typesystem.NewVarStore()
	vars := make([]region.Loc[scope.AliasVar], len(step.Vars))
	for i, name := range step.Vars {
		v := env.Store.Fresh()
		env.Vars[name] = v
		vars[i] = region.LocAt(res.Region, scope.AliasVar{Name: name, Var: v})
	}

	typ, err := typesystem.Parse(step.Body, env)
	if err != nil {
		// an unbound variable would trip CreateAlias's assertion; report it instead
		var unbound *typesystem.UnboundVariableError
		if errors.As(err, &unbound) {
			w.scriptError(res.Region, fmt.Sprintf("alias %s: %v", step.Alias, err))
		} else {
			w.scriptError(res.Region, fmt.Sprintf("alias %s: invalid type: %v", step.Alias, err))
		}
		return
	}

	if typesystem.MentionsTCon(typ, step.Alias) {
		rec := env.Store.Fresh()
		typ = typesystem.TRecursive{
			RecVar: rec,
			Body:   typesystem.ReplaceTCon(typ, step.Alias, typesystem.TVar{Var: rec}),
		}
	}

	kind := scope.Structural
	if step.Opaque {
		kind = scope.Opaque
	}
	sc.AddAlias(res.Symbol, res.Region, vars, typ, kind)
	res.Alias, _ = sc.LookupAlias(res.Symbol)
}
