package script

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/canscope/internal/config"
	"github.com/funvibe/canscope/internal/region"
)

type StepKind int

const (
	StepInvalid StepKind = iota
	StepIntroduce
	StepLookup
	StepAbilityMember
	StepAlias
	StepOpaqueRef
	StepScopeless
	StepUnique
	StepScope
	StepImport
)

var stepKeys = map[string]StepKind{
	"introduce":      StepIntroduce,
	"lookup":         StepLookup,
	"ability_member": StepAbilityMember,
	"alias":          StepAlias,
	"opaque_ref":     StepOpaqueRef,
	"scopeless":      StepScopeless,
	"unique":         StepUnique,
	"scope":          StepScope,
	"import":         StepImport,
}

func (k StepKind) String() string {
	for key, kind := range stepKeys {
		if kind == k {
			return key
		}
	}
	return "invalid"
}

// Step is one binding or reference site. Exactly one action key is set.
type Step struct {
	Introduce     string `yaml:"introduce,omitempty"`
	Lookup        string `yaml:"lookup,omitempty"`
	AbilityMember string `yaml:"ability_member,omitempty"`
	Scopeless     string `yaml:"scopeless,omitempty"`
	Unique        bool   `yaml:"unique,omitempty"`
	OpaqueRef     string `yaml:"opaque_ref,omitempty"`

	// alias: Name, with vars/body/opaque
	Alias  string   `yaml:"alias,omitempty"`
	Vars   []string `yaml:"vars,omitempty"`
	Body   string   `yaml:"body,omitempty"`
	Opaque bool     `yaml:"opaque,omitempty"`

	// Import inside the body; only legal at the top level.
	Import *Import `yaml:"import,omitempty"`

	// Scope is a nested block.
	Scope []Step `yaml:"scope,omitempty"`

	At  uint32 `yaml:"at,omitempty"`
	End uint32 `yaml:"end,omitempty"`

	// Line is the line of the step in the script.
	Line int `yaml:"-"`

	actions []string
}

type plainStep Step

// UnmarshalYAML records which action keys are present, so that an empty
// `scope: []` is still a scope, and the line the step starts on.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var p plainStep
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	s.Line = node.Line
	s.actions = nil
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if _, ok := stepKeys[node.Content[i].Value]; ok {
				s.actions = append(s.actions, node.Content[i].Value)
			}
		}
	}
	return nil
}

// Kind returns the action of the step.
func (s *Step) Kind() StepKind {
	if len(s.actions) == 1 {
		return stepKeys[s.actions[0]]
	}
	if s.actions != nil {
		return StepInvalid
	}
	// built in Go rather than decoded
	var set []StepKind
	add := func(ok bool, k StepKind) {
		if ok {
			set = append(set, k)
		}
	}
	add(s.Introduce != "", StepIntroduce)
	add(s.Lookup != "", StepLookup)
	add(s.AbilityMember != "", StepAbilityMember)
	add(s.Alias != "", StepAlias)
	add(s.OpaqueRef != "", StepOpaqueRef)
	add(s.Scopeless != "", StepScopeless)
	add(s.Unique, StepUnique)
	add(s.Scope != nil, StepScope)
	add(s.Import != nil, StepImport)
	if len(set) != 1 {
		return StepInvalid
	}
	return set[0]
}

// Region is where the step's name is written.
func (s *Step) Region() region.Region {
	return regionOf(s.At, s.End)
}

// Name is the identifier the step binds or references, if any.
func (s *Step) Name() string {
	switch s.Kind() {
	case StepIntroduce:
		return s.Introduce
	case StepLookup:
		return s.Lookup
	case StepAbilityMember:
		return s.AbilityMember
	case StepAlias:
		return s.Alias
	case StepOpaqueRef:
		return s.OpaqueRef
	case StepScopeless:
		return s.Scopeless
	case StepImport:
		return s.Import.LocalName()
	}
	return ""
}

func (s *Step) validate(file string) error {
	fail := func(format string, args ...any) error {
		return &Error{File: file, Line: s.Line, Msg: fmt.Sprintf(format, args...)}
	}
	if len(s.actions) > 1 {
		seen := make(map[string]bool, len(s.actions))
		for _, a := range s.actions {
			seen[a] = true
		}
		return fail("step has several actions: %s", strings.Join(sortedKeys(seen), ", "))
	}
	kind := s.Kind()
	switch kind {
	case StepInvalid:
		return fail("step has no action")
	case StepAlias:
		if s.Body == "" {
			return fail("alias %s has no body", s.Alias)
		}
		seen := make(map[string]bool, len(s.Vars))
		for _, v := range s.Vars {
			if seen[v] {
				return fail("alias %s binds %s twice", s.Alias, v)
			}
			seen[v] = true
		}
	case StepImport:
		if s.Import.Name == "" || s.Import.From == "" {
			return fail("import needs name and from")
		}
		for _, name := range []string{s.Import.Name, s.Import.LocalName()} {
			if !IsIdent(name) {
				return fail("%q is not a valid identifier", name)
			}
		}
	case StepUnique, StepScope:
	default:
		if s.Name() == "" {
			return fail("%s needs a name", kind)
		}
	}
	if kind != StepImport && kind != StepUnique && kind != StepScope {
		name := s.Name()
		if kind == StepOpaqueRef {
			name = strings.TrimPrefix(name, config.OpaqueSigil)
		}
		if !IsIdent(name) {
			return fail("%q is not a valid identifier", name)
		}
	}
	for _, v := range s.Vars {
		if !IsIdent(v) {
			return fail("type variable %q is not a valid identifier", v)
		}
	}
	if kind != StepAlias && (len(s.Vars) > 0 || s.Body != "" || s.Opaque) {
		return fail("vars/body/opaque only apply to alias steps")
	}
	return nil
}
