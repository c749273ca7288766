package config

// ScriptFileExt is the extension of canonicalization scripts.
const ScriptFileExt = ".scope.yaml"

// ScriptFileExtensions are all recognized script file extensions
var ScriptFileExtensions = []string{".scope.yaml", ".scope.yml"}

// DebugAssertions enables internal-consistency panics (e.g. an alias body using
// a type variable its header does not bind). On by default, like a debug build;
// the CLI turns it off unless -debug is given.
var DebugAssertions = true

// OpaqueSigil prefixes opaque-type references (`@Age`).
const OpaqueSigil = "@"

// Built-in module names
const (
	AttrModuleName   = "Attr"
	BoolModuleName   = "Bool"
	StrModuleName    = "Str"
	NumModuleName    = "Num"
	ListModuleName   = "List"
	ResultModuleName = "Result"
	DictModuleName   = "Dict"
	SetModuleName    = "Set"
	BoxModuleName    = "Box"
)

// Built-in type and constructor names
const (
	BoolTypeName   = "Bool"
	TrueCtorName   = "True"
	FalseCtorName  = "False"
	StrTypeName    = "Str"
	NumTypeName    = "Num"
	ListTypeName   = "List"
	ResultTypeName = "Result"
	OkCtorName     = "Ok"
	ErrCtorName    = "Err"
	DictTypeName   = "Dict"
	SetTypeName    = "Set"
	BoxTypeName    = "Box"
)

// MaxSuggestions caps the "did you mean" list attached to a diagnostic.
const MaxSuggestions = 5
