package typesystem

// ReplaceTCon replaces all occurrences of the constructor name with the
// replacement type. An application headed by name is replaced as a whole, so
// `Tree a` inside the body of alias Tree becomes the replacement itself.
// This is how an alias body's self-references become a recursion variable.
func ReplaceTCon(t Type, name string, replacement Type) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case TCon:
		if typ.Name == name {
			return replacement
		}
		return typ
	case TApp:
		if con, ok := typ.Constructor.(TCon); ok && con.Name == name {
			return replacement
		}
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = ReplaceTCon(arg, name, replacement)
		}
		return TApp{
			Constructor: ReplaceTCon(typ.Constructor, name, replacement),
			Args:        newArgs,
		}
	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = ReplaceTCon(p, name, replacement)
		}
		return TFunc{
			Params:     newParams,
			LambdaSet:  typ.LambdaSet,
			ReturnType: ReplaceTCon(typ.ReturnType, name, replacement),
		}
	case TTuple:
		newElems := make([]Type, len(typ.Elements))
		for i, e := range typ.Elements {
			newElems[i] = ReplaceTCon(e, name, replacement)
		}
		return TTuple{Elements: newElems}
	case TRecord:
		newFields := make(map[string]Type, len(typ.Fields))
		for k, v := range typ.Fields {
			newFields[k] = ReplaceTCon(v, name, replacement)
		}
		return TRecord{Fields: newFields, Row: ReplaceTCon(typ.Row, name, replacement)}
	case TRecursive:
		return TRecursive{RecVar: typ.RecVar, Body: ReplaceTCon(typ.Body, name, replacement)}
	default:
		return t
	}
}

// MentionsTCon reports whether the constructor name occurs anywhere in t.
func MentionsTCon(t Type, name string) bool {
	if t == nil {
		return false
	}
	switch typ := t.(type) {
	case TCon:
		return typ.Name == name
	case TApp:
		if MentionsTCon(typ.Constructor, name) {
			return true
		}
		for _, arg := range typ.Args {
			if MentionsTCon(arg, name) {
				return true
			}
		}
	case TFunc:
		for _, p := range typ.Params {
			if MentionsTCon(p, name) {
				return true
			}
		}
		return MentionsTCon(typ.ReturnType, name)
	case TTuple:
		for _, e := range typ.Elements {
			if MentionsTCon(e, name) {
				return true
			}
		}
	case TRecord:
		for _, v := range typ.Fields {
			if MentionsTCon(v, name) {
				return true
			}
		}
		return MentionsTCon(typ.Row, name)
	case TRecursive:
		return MentionsTCon(typ.Body, name)
	}
	return false
}

// Substitute replaces the type variables of t that subst maps. Variables bound
// by a TRecursive inside t are left alone.
func Substitute(t Type, subst map[Variable]Type) Type {
	if t == nil || len(subst) == 0 {
		return t
	}
	switch typ := t.(type) {
	case TVar:
		if r, ok := subst[typ.Var]; ok {
			return r
		}
		return typ
	case TApp:
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = Substitute(arg, subst)
		}
		return TApp{Constructor: Substitute(typ.Constructor, subst), Args: newArgs}
	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = Substitute(p, subst)
		}
		return TFunc{Params: newParams, LambdaSet: typ.LambdaSet, ReturnType: Substitute(typ.ReturnType, subst)}
	case TTuple:
		newElems := make([]Type, len(typ.Elements))
		for i, e := range typ.Elements {
			newElems[i] = Substitute(e, subst)
		}
		return TTuple{Elements: newElems}
	case TRecord:
		newFields := make(map[string]Type, len(typ.Fields))
		for k, v := range typ.Fields {
			newFields[k] = Substitute(v, subst)
		}
		return TRecord{Fields: newFields, Row: Substitute(typ.Row, subst)}
	case TRecursive:
		if _, shadowed := subst[typ.RecVar]; shadowed {
			inner := make(map[Variable]Type, len(subst))
			for k, v := range subst {
				if k != typ.RecVar {
					inner[k] = v
				}
			}
			subst = inner
		}
		return TRecursive{RecVar: typ.RecVar, Body: Substitute(typ.Body, subst)}
	default:
		return t
	}
}
