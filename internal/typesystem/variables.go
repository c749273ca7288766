package typesystem

// VariablesDetail classifies the variables occurring in a type: ordinary type
// variables, lambda-set variables of function arrows, and recursion variables
// of recursive types. Each list is in first-occurrence order without duplicates.
type VariablesDetail struct {
	typeVariables      []Variable
	seenType           map[Variable]bool
	LambdaSetVariables []Variable
	RecursionVariables []Variable
}

func NewVariablesDetail() *VariablesDetail {
	return &VariablesDetail{seenType: make(map[Variable]bool)}
}

// DetailOf collects the variables of t.
func DetailOf(t Type) *VariablesDetail {
	d := NewVariablesDetail()
	if t != nil {
		t.collect(d)
	}
	return d
}

// TypeVariables returns the ordinary type variables in first-occurrence order.
func (d *VariablesDetail) TypeVariables() []Variable {
	return append([]Variable(nil), d.typeVariables...)
}

// HasTypeVariable reports whether v occurs as an ordinary type variable.
func (d *VariablesDetail) HasTypeVariable(v Variable) bool {
	return d.seenType[v]
}

func (d *VariablesDetail) addTypeVariable(v Variable) {
	if v == NoVariable || d.seenType[v] {
		return
	}
	d.seenType[v] = true
	d.typeVariables = append(d.typeVariables, v)
}

func (d *VariablesDetail) addLambdaSetVariable(v Variable) {
	d.LambdaSetVariables = appendUnique(d.LambdaSetVariables, v)
}

func (d *VariablesDetail) addRecursionVariable(v Variable) {
	d.RecursionVariables = appendUnique(d.RecursionVariables, v)
}

func appendUnique(vars []Variable, v Variable) []Variable {
	for _, existing := range vars {
		if existing == v {
			return vars
		}
	}
	return append(vars, v)
}

// Hidden returns the type variables of d that are not in bound, in
// first-occurrence order.
func (d *VariablesDetail) Hidden(bound []Variable) []Variable {
	isBound := make(map[Variable]bool, len(bound))
	for _, v := range bound {
		isBound[v] = true
	}
	var hidden []Variable
	for _, v := range d.typeVariables {
		if !isBound[v] {
			hidden = append(hidden, v)
		}
	}
	return hidden
}
