package typesystem

import (
	"fmt"
	"strings"
	"unicode"
)

// Env binds the type variable names a type expression may use.
type Env struct {
	Vars  map[string]Variable
	Store *VarStore
	// AllowFree assigns fresh variables to unknown lowercase names instead of
	// rejecting them.
	AllowFree bool
}

// UnboundVariableError is returned by Parse for a type variable the Env does
// not bind.
type UnboundVariableError struct {
	Name   string
	Offset int
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("type variable %q is not bound by the alias header (offset %d)", e.Name, e.Offset)
}

// Parse reads a type expression:
//
//	type   := app (',' app)* '->' type | app
//	app    := Upper atom* | atom
//	atom   := lower | Upper | '(' type (',' type)* ')' | '{' fields ['|' lower] '}'
//	fields := [lower ':' type (',' lower ':' type)*]
//
// Every arrow gets a fresh lambda-set variable from env.Store.
func Parse(src string, env *Env) (Type, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if env.Vars == nil {
		env.Vars = make(map[string]Variable)
	}
	if env.Store == nil {
		env.Store = NewVarStore()
	}
	p := &typeParser{toks: toks, env: env}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.at(tokEOF) {
		return nil, p.errorf("unexpected %q", p.cur().text)
	}
	return t, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokLower
	tokUpper
	tokArrow
	tokPunct
)

type typeToken struct {
	kind   tokKind
	text   string
	offset int
}

func tokenize(src string) ([]typeToken, error) {
	var toks []typeToken
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '-' && i+1 < len(rs) && rs[i+1] == '>':
			toks = append(toks, typeToken{tokArrow, "->", i})
			i += 2
		case strings.ContainsRune("(){}:,|", r):
			toks = append(toks, typeToken{tokPunct, string(r), i})
			i++
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			word := string(rs[start:i])
			kind := tokLower
			if unicode.IsUpper(rs[start]) {
				kind = tokUpper
			}
			toks = append(toks, typeToken{kind, word, start})
		default:
			return nil, fmt.Errorf("type: unexpected character %q at offset %d", r, i)
		}
	}
	return append(toks, typeToken{kind: tokEOF, offset: len(rs)}), nil
}

type typeParser struct {
	toks []typeToken
	pos  int
	env  *Env
}

func (p *typeParser) cur() typeToken { return p.toks[p.pos] }

func (p *typeParser) at(kind tokKind) bool { return p.cur().kind == kind }

func (p *typeParser) atPunct(s string) bool {
	return p.cur().kind == tokPunct && p.cur().text == s
}

func (p *typeParser) next() typeToken {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *typeParser) expectPunct(s string) error {
	if !p.atPunct(s) {
		return p.errorf("expected %q", s)
	}
	p.next()
	return nil
}

func (p *typeParser) errorf(format string, args ...any) error {
	tok := p.cur()
	text := tok.text
	if tok.kind == tokEOF {
		text = "end of input"
	}
	return fmt.Errorf("type: %s at offset %d (near %s)", fmt.Sprintf(format, args...), tok.offset, text)
}

func (p *typeParser) parseType() (Type, error) {
	first, err := p.parseApp()
	if err != nil {
		return nil, err
	}
	params := []Type{first}
	for p.atPunct(",") && p.commaStartsParams() {
		p.next()
		param, err := p.parseApp()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	if !p.at(tokArrow) {
		if len(params) > 1 {
			return nil, p.errorf("expected \"->\" after parameter list")
		}
		return first, nil
	}
	p.next()
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return TFunc{Params: params, LambdaSet: p.env.Store.Fresh(), ReturnType: ret}, nil
}

// commaStartsParams reports whether the comma at the cursor separates function
// parameters (an arrow follows before the enclosing group closes) rather than
// tuple elements or record fields.
func (p *typeParser) commaStartsParams() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		switch {
		case t.kind == tokPunct && (t.text == "(" || t.text == "{"):
			depth++
		case t.kind == tokPunct && (t.text == ")" || t.text == "}"):
			if depth == 0 {
				return false
			}
			depth--
		case t.kind == tokArrow && depth == 0:
			return true
		case t.kind == tokPunct && t.text == ":" && depth == 0:
			return false
		case t.kind == tokEOF:
			return false
		}
	}
	return false
}

func (p *typeParser) parseApp() (Type, error) {
	if !p.at(tokUpper) {
		return p.parseAtom()
	}
	ctor := TCon{Name: p.next().text}
	var args []Type
	for p.startsAtom() {
		arg, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if len(args) == 0 {
		return ctor, nil
	}
	return TApp{Constructor: ctor, Args: args}, nil
}

func (p *typeParser) startsAtom() bool {
	return p.at(tokLower) || p.at(tokUpper) || p.atPunct("(") || p.atPunct("{")
}

func (p *typeParser) parseAtom() (Type, error) {
	switch {
	case p.at(tokLower):
		return p.variable(p.next())
	case p.at(tokUpper):
		return TCon{Name: p.next().text}, nil
	case p.atPunct("("):
		p.next()
		first, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems := []Type{first}
		for p.atPunct(",") {
			p.next()
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		if len(elems) == 1 {
			return first, nil
		}
		return TTuple{Elements: elems}, nil
	case p.atPunct("{"):
		return p.parseRecord()
	default:
		return nil, p.errorf("expected a type")
	}
}

func (p *typeParser) parseRecord() (Type, error) {
	p.next() // '{'
	rec := TRecord{Fields: make(map[string]Type)}
	for p.at(tokLower) {
		name := p.next()
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		if _, dup := rec.Fields[name.text]; dup {
			return nil, fmt.Errorf("type: duplicate record field %q at offset %d", name.text, name.offset)
		}
		field, err := p.parseType()
		if err != nil {
			return nil, err
		}
		rec.Fields[name.text] = field
		if !p.atPunct(",") {
			break
		}
		p.next()
	}
	if p.atPunct("|") {
		p.next()
		if !p.at(tokLower) {
			return nil, p.errorf("expected a row variable")
		}
		row, err := p.variable(p.next())
		if err != nil {
			return nil, err
		}
		rec.Row = row
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *typeParser) variable(tok typeToken) (Type, error) {
	if v, ok := p.env.Vars[tok.text]; ok {
		return TVar{Name: tok.text, Var: v}, nil
	}
	if !p.env.AllowFree {
		return nil, &UnboundVariableError{Name: tok.text, Offset: tok.offset}
	}
	v := p.env.Store.Fresh()
	p.env.Vars[tok.text] = v
	return TVar{Name: tok.text, Var: v}, nil
}
