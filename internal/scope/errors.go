package scope

import (
	"errors"
	"fmt"

	"github.com/funvibe/canscope/internal/config"
	"github.com/funvibe/canscope/internal/diagnostics"
	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/symbols"
)

// Problem is implemented by every error the Scope returns. All of them are
// recoverable: the operation that produced one still yields a usable Symbol
// where it promises one.
type Problem interface {
	error
	Diagnostic() *diagnostics.DiagnosticError
}

// ErrNestedScope is wrapped by NestedScopeError.
var ErrNestedScope = errors.New("not allowed inside a nested scope")

// NotInScopeError reports a reference to an undeclared name. InScope lists the
// imports and visible locals at the time of the lookup.
type NotInScopeError struct {
	Ident   region.Loc[symbols.Ident]
	InScope []symbols.Ident
}

func (e *NotInScopeError) Error() string {
	return fmt.Sprintf("%s: `%s` is not in scope", e.Ident.Region, e.Ident.Value)
}

func (e *NotInScopeError) Diagnostic() *diagnostics.DiagnosticError {
	names := make([]string, len(e.InScope))
	for i, n := range e.InScope {
		names[i] = string(n)
	}
	return diagnostics.NewError(diagnostics.ErrC001, e.Ident.Region, e.Ident.Value).
		WithSuggestions(diagnostics.Suggest(string(e.Ident.Value), names, config.MaxSuggestions))
}

// ShadowError reports a declaration of a name that is already visible.
// ShadowSymbol is the fresh, unnameable symbol allocated for the new binding
// when HasShadowSymbol is set.
type ShadowError struct {
	OriginalRegion  region.Region
	Shadow          region.Loc[symbols.Ident]
	ShadowSymbol    symbols.Symbol
	HasShadowSymbol bool
}

func (e *ShadowError) Error() string {
	return fmt.Sprintf("%s: `%s` shadows the definition at %s", e.Shadow.Region, e.Shadow.Value, e.OriginalRegion)
}

func (e *ShadowError) Diagnostic() *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrC002, e.Shadow.Region, e.Shadow.Value).
		WithRelated(e.OriginalRegion, "`%s` was first defined here", e.Shadow.Value)
}

// DuplicateImportError reports a second import of the same name. Symbol and
// Region describe the first import, which stays in effect.
type DuplicateImportError struct {
	Ident  region.Loc[symbols.Ident]
	Symbol symbols.Symbol
	Region region.Region
}

func (e *DuplicateImportError) Error() string {
	return fmt.Sprintf("%s: `%s` was already imported at %s", e.Ident.Region, e.Ident.Value, e.Region)
}

func (e *DuplicateImportError) Diagnostic() *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrC003, e.Ident.Region, e.Ident.Value).
		WithRelated(e.Region, "first imported here")
}

// OpaqueOutsideScopeError reports an opaque reference to a name that is only
// available as an import.
type OpaqueOutsideScopeError struct {
	Opaque           symbols.Ident
	ReferencedRegion region.Region
	ImportedRegion   region.Region
}

func (e *OpaqueOutsideScopeError) Error() string {
	return fmt.Sprintf("%s: opaque `%s` is imported (at %s) and cannot be referenced here", e.ReferencedRegion, e.Opaque, e.ImportedRegion)
}

func (e *OpaqueOutsideScopeError) Diagnostic() *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrC004, e.ReferencedRegion, e.Opaque).
		WithRelated(e.ImportedRegion, "`%s` is imported here", e.Opaque)
}

// OpaqueNotDefinedError reports an opaque reference to a name with no local
// opaque alias. DefinedAlias points at a structural alias of the same name.
type OpaqueNotDefinedError struct {
	Usage          region.Loc[symbols.Ident]
	OpaquesInScope []symbols.Ident
	DefinedAlias   *region.Region
}

func (e *OpaqueNotDefinedError) Error() string {
	if e.DefinedAlias != nil {
		return fmt.Sprintf("%s: `%s` is a structural alias (defined at %s), not an opaque type", e.Usage.Region, e.Usage.Value, *e.DefinedAlias)
	}
	return fmt.Sprintf("%s: opaque `%s` is not defined", e.Usage.Region, e.Usage.Value)
}

func (e *OpaqueNotDefinedError) Diagnostic() *diagnostics.DiagnosticError {
	names := make([]string, len(e.OpaquesInScope))
	for i, n := range e.OpaquesInScope {
		names[i] = string(n)
	}
	d := diagnostics.NewError(diagnostics.ErrC005, e.Usage.Region, e.Usage.Value).
		WithSuggestions(diagnostics.Suggest(string(e.Usage.Value), names, config.MaxSuggestions))
	if e.DefinedAlias != nil {
		d.WithRelated(*e.DefinedAlias, "`%s` is defined here as a structural alias", e.Usage.Value)
	}
	return d
}

// NestedScopeError reports an import or ability declaration attempted inside
// InnerScope.
type NestedScopeError struct {
	What   string
	Region region.Region
}

func (e *NestedScopeError) Error() string {
	return fmt.Sprintf("%s: %s is %s", e.Region, e.What, ErrNestedScope)
}

func (e *NestedScopeError) Unwrap() error { return ErrNestedScope }

func (e *NestedScopeError) Diagnostic() *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrC006, e.Region, e.What)
}
