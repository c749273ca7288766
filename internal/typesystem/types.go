package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Variable is an inference variable. The zero value means "no variable".
type Variable uint32

const NoVariable Variable = 0

func (v Variable) String() string {
	return fmt.Sprintf("v%d", uint32(v))
}

// VarStore hands out fresh inference variables.
type VarStore struct {
	next Variable
}

func NewVarStore() *VarStore {
	return &VarStore{next: 1}
}

func (s *VarStore) Fresh() Variable {
	if s.next == NoVariable {
		s.next = 1
	}
	v := s.next
	s.next++
	return v
}

// Type is the interface for the type expressions that alias bodies are made of.
type Type interface {
	String() string
	// collect adds every variable occurring in the type to d.
	collect(d *VariablesDetail)
}

// TVar represents a type variable (e.g. 'a'). Name is the source spelling, if any.
type TVar struct {
	Name string
	Var  Variable
}

func (t TVar) String() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Var.String()
}

func (t TVar) collect(d *VariablesDetail) {
	d.addTypeVariable(t.Var)
}

// TCon represents a type constant/constructor (e.g. Str, List).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }

func (t TCon) collect(*VariablesDetail) {}

// TApp represents a type application (e.g. List a).
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	parts := make([]string, 0, len(t.Args)+1)
	parts = append(parts, t.Constructor.String())
	for _, arg := range t.Args {
		parts = append(parts, atomString(arg))
	}
	return strings.Join(parts, " ")
}

func (t TApp) collect(d *VariablesDetail) {
	t.Constructor.collect(d)
	for _, arg := range t.Args {
		arg.collect(d)
	}
}

// TFunc represents a function type. LambdaSet is the variable standing for the
// set of closures the function value may be.
type TFunc struct {
	Params     []Type
	LambdaSet  Variable
	ReturnType Type
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		if _, ok := p.(TFunc); ok {
			params[i] = "(" + p.String() + ")"
		} else {
			params[i] = p.String()
		}
	}
	return fmt.Sprintf("%s -> %s", strings.Join(params, ", "), t.ReturnType.String())
}

func (t TFunc) collect(d *VariablesDetail) {
	for _, p := range t.Params {
		p.collect(d)
	}
	if t.LambdaSet != NoVariable {
		d.addLambdaSetVariable(t.LambdaSet)
	}
	t.ReturnType.collect(d)
}

// TTuple represents a tuple type (e.g. (Str, a)).
type TTuple struct {
	Elements []Type
}

func (t TTuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t TTuple) collect(d *VariablesDetail) {
	for _, e := range t.Elements {
		e.collect(d)
	}
}

// TRecord represents a record type (e.g. { name: Str, age: a }). A non-nil Row
// makes the record open.
type TRecord struct {
	Fields map[string]Type
	Row    Type
}

func (t TRecord) String() string {
	keys := t.fieldNames()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, t.Fields[k].String())
	}
	out := "{ " + strings.Join(parts, ", ") + " }"
	if len(parts) == 0 {
		out = "{}"
	}
	if t.Row != nil {
		out += t.Row.String()
	}
	return out
}

func (t TRecord) collect(d *VariablesDetail) {
	for _, k := range t.fieldNames() {
		t.Fields[k].collect(d)
	}
	if t.Row != nil {
		t.Row.collect(d)
	}
}

func (t TRecord) fieldNames() []string {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TRecursive is a recursive type whose self-references are RecVar
// (e.g. a linked list referring to itself).
type TRecursive struct {
	RecVar Variable
	Body   Type
}

func (t TRecursive) String() string {
	return fmt.Sprintf("(%s as %s)", t.Body.String(), t.RecVar.String())
}

func (t TRecursive) collect(d *VariablesDetail) {
	d.addRecursionVariable(t.RecVar)
	inner := NewVariablesDetail()
	t.Body.collect(inner)
	for _, v := range inner.TypeVariables() {
		if v != t.RecVar {
			d.addTypeVariable(v)
		}
	}
	for _, v := range inner.LambdaSetVariables {
		d.addLambdaSetVariable(v)
	}
	for _, v := range inner.RecursionVariables {
		d.addRecursionVariable(v)
	}
}

func atomString(t Type) string {
	switch t.(type) {
	case TApp, TFunc:
		return "(" + t.String() + ")"
	default:
		return t.String()
	}
}
