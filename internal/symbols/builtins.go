package symbols

import (
	"github.com/funvibe/canscope/internal/config"
	"github.com/funvibe/canscope/internal/region"
)

type builtinModule struct {
	name   string
	idents []Ident
}

// Built-in modules in ModuleID order. The ident lists fix each built-in
// symbol's IdentID, so entries may only ever be appended.
var builtinModules = []builtinModule{
	{config.AttrModuleName, []Ident{"Attr"}},
	{config.BoolModuleName, []Ident{config.BoolTypeName, config.TrueCtorName, config.FalseCtorName, "and", "or", "not", "isEq"}},
	{config.StrModuleName, []Ident{config.StrTypeName, "concat", "isEmpty", "toUtf8"}},
	{config.NumModuleName, []Ident{config.NumTypeName, "add", "sub", "mul", "toStr"}},
	{config.ListModuleName, []Ident{config.ListTypeName, "map", "product", "sum", "len", "walk"}},
	{config.ResultModuleName, []Ident{config.ResultTypeName, config.OkCtorName, config.ErrCtorName, "map", "withDefault"}},
	{config.DictModuleName, []Ident{config.DictTypeName, "empty", "insert", "get"}},
	{config.SetModuleName, []Ident{config.SetTypeName, "empty", "insert", "contains"}},
	{config.BoxModuleName, []Ident{config.BoxTypeName, "box", "unbox"}},
}

const (
	ModuleAttr ModuleID = iota
	ModuleBool
	ModuleStr
	ModuleNum
	ModuleList
	ModuleResult
	ModuleDict
	ModuleSet
	ModuleBox

	// FirstUserModule is the first id handed to a non-built-in module.
	FirstUserModule
)

var (
	BoolBool     = NewSymbol(ModuleBool, 0)
	BoolTrue     = NewSymbol(ModuleBool, 1)
	BoolFalse    = NewSymbol(ModuleBool, 2)
	StrStr       = NewSymbol(ModuleStr, 0)
	NumNum       = NewSymbol(ModuleNum, 0)
	ListList     = NewSymbol(ModuleList, 0)
	ListMap      = NewSymbol(ModuleList, 1)
	ListProduct  = NewSymbol(ModuleList, 2)
	ListSum      = NewSymbol(ModuleList, 3)
	ResultResult = NewSymbol(ModuleResult, 0)
	ResultOk     = NewSymbol(ModuleResult, 1)
	ResultErr    = NewSymbol(ModuleResult, 2)
	DictDict     = NewSymbol(ModuleDict, 0)
	SetSet       = NewSymbol(ModuleSet, 0)
	BoxBoxType   = NewSymbol(ModuleBox, 0)
	BoxBoxFunc   = NewSymbol(ModuleBox, 1)
	BoxUnboxFunc = NewSymbol(ModuleBox, 2)
)

// DefaultImport is a name every module sees without importing it.
type DefaultImport struct {
	Ident  Ident
	Symbol Symbol
	Region region.Region
}

// DefaultInScope returns the names imported into every module, in import order.
func DefaultInScope() []DefaultImport {
	return []DefaultImport{
		{config.BoxTypeName, BoxBoxType, region.Zero()},
		{config.SetTypeName, SetSet, region.Zero()},
		{config.DictTypeName, DictDict, region.Zero()},
		{config.StrTypeName, StrStr, region.Zero()},
		{config.OkCtorName, ResultOk, region.Zero()},
		{config.FalseCtorName, BoolFalse, region.Zero()},
		{config.ListTypeName, ListList, region.Zero()},
		{config.TrueCtorName, BoolTrue, region.Zero()},
		{config.ErrCtorName, ResultErr, region.Zero()},
	}
}

// IsBuiltin reports whether id names a built-in module.
func IsBuiltin(id ModuleID) bool {
	return id < FirstUserModule
}

// BuiltinIdentIDs returns a fresh copy of a built-in module's identifier table.
func BuiltinIdentIDs(id ModuleID) (*IdentIDs, bool) {
	if !IsBuiltin(id) {
		return nil, false
	}
	return NewIdentIDsFrom(builtinModules[id].idents...), true
}

// BuiltinModule returns the id of the built-in module called name.
func BuiltinModule(name string) (ModuleID, bool) {
	for i, b := range builtinModules {
		if b.name == name {
			return ModuleID(i), true
		}
	}
	return 0, false
}
