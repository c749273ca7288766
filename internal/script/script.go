// Package script reads canonicalization scripts: YAML documents that stand in
// for the parser's stream of binding and reference sites of one module.
package script

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/symbols"
	"github.com/funvibe/canscope/internal/utils"
)

// Script is one module's header and the binding/reference sites of its body
// in tree-walk order.
type Script struct {
	// Module is the home module name (e.g. "Main"). When omitted it is
	// derived from the file name.
	Module string `yaml:"module"`

	// Exposes lists the names the module header exposes. They are pre-seeded
	// into the identifier table so their ids are stable.
	Exposes []string `yaml:"exposes,omitempty"`

	// Modules declares the names foreign (non built-in) modules expose.
	Modules map[string][]string `yaml:"modules,omitempty"`

	// Imports are resolved before any step.
	Imports []Import `yaml:"imports,omitempty"`

	// Abilities are declared after the imports, before any step.
	Abilities []Ability `yaml:"abilities,omitempty"`

	Steps []Step `yaml:"steps,omitempty"`

	// File is the path the script was read from, if any.
	File string `yaml:"-"`
}

// Import brings `Name` of module `From` into scope, as `As` when set.
type Import struct {
	Name string `yaml:"name"`
	From string `yaml:"from"`
	As   string `yaml:"as,omitempty"`
	At   uint32 `yaml:"at,omitempty"`
}

// LocalName is the name the import is visible as.
func (i Import) LocalName() string {
	if i.As != "" {
		return i.As
	}
	return i.Name
}

// Ability declares an ability and its member names.
type Ability struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
	At      uint32   `yaml:"at,omitempty"`
}

// Load reads and validates the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a script. file is used in error messages.
func Parse(data []byte, file string) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &Error{File: file, Msg: fmt.Sprintf("invalid YAML: %v", err)}
	}
	s.File = file
	if s.Module == "" && file != "" {
		s.Module = utils.ModuleNameFromPath(file)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the header and every step.
func (s *Script) Validate() error {
	if strings.TrimSpace(s.Module) == "" {
		return &Error{File: s.File, Msg: "module name is required"}
	}
	if _, ok := symbols.BuiltinModule(s.Module); ok {
		return &Error{File: s.File, Msg: fmt.Sprintf("module %s is built in and cannot be redefined", s.Module)}
	}
	if !IsIdent(s.Module) {
		return &Error{File: s.File, Msg: fmt.Sprintf("module name %q is not a valid identifier", s.Module)}
	}
	if err := s.checkIdents("exposes", s.Exposes...); err != nil {
		return err
	}
	for name, exposed := range s.Modules {
		if err := s.checkIdents("module "+name, append([]string{name}, exposed...)...); err != nil {
			return err
		}
		if name == s.Module {
			return &Error{File: s.File, Msg: fmt.Sprintf("module %s cannot declare itself as foreign", name)}
		}
		if _, ok := symbols.BuiltinModule(name); ok {
			return &Error{File: s.File, Msg: fmt.Sprintf("module %s is built in", name)}
		}
	}
	for i, imp := range s.Imports {
		if imp.Name == "" || imp.From == "" {
			return &Error{File: s.File, Msg: fmt.Sprintf("imports[%d]: name and from are required", i)}
		}
		if err := s.checkIdents("imports", imp.Name, imp.LocalName()); err != nil {
			return err
		}
		if err := s.checkImport(imp, 0); err != nil {
			return err
		}
	}
	for i, ab := range s.Abilities {
		if ab.Name == "" {
			return &Error{File: s.File, Msg: fmt.Sprintf("abilities[%d]: name is required", i)}
		}
		if len(ab.Members) == 0 {
			return &Error{File: s.File, Msg: fmt.Sprintf("ability %s declares no members", ab.Name)}
		}
		if err := s.checkIdents("ability "+ab.Name, append([]string{ab.Name}, ab.Members...)...); err != nil {
			return err
		}
	}
	return s.validateSteps(s.Steps)
}

func (s *Script) validateSteps(steps []Step) error {
	for i := range steps {
		step := &steps[i]
		if err := step.validate(s.File); err != nil {
			return err
		}
		switch step.Kind() {
		case StepScope:
			if err := s.validateSteps(step.Scope); err != nil {
				return err
			}
		case StepImport:
			if err := s.checkImport(*step.Import, step.Line); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsIdent reports whether name can be written as a source identifier: a
// letter or underscore followed by letters, digits and underscores. Names
// starting with a digit are reserved for generated identifiers.
func IsIdent(name string) bool {
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return name != ""
}

func (s *Script) checkIdents(where string, names ...string) error {
	for _, name := range names {
		if !IsIdent(name) {
			return &Error{File: s.File, Msg: fmt.Sprintf("%s: %q is not a valid identifier", where, name)}
		}
	}
	return nil
}

// IsKnownModule reports whether name is built in or declared under modules.
func (s *Script) IsKnownModule(name string) bool {
	if _, ok := symbols.BuiltinModule(name); ok {
		return true
	}
	_, ok := s.Modules[name]
	return ok
}

func (s *Script) checkImport(imp Import, line int) error {
	if !s.IsKnownModule(imp.From) {
		return &Error{File: s.File, Line: line, Msg: fmt.Sprintf("import of %s from unknown module %s", imp.Name, imp.From)}
	}
	return nil
}

// Error is a malformed script.
type Error struct {
	File string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	loc := e.File
	if loc == "" {
		loc = "<script>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

// regionOf is the region described by at/end; end <= at means a point.
func regionOf(at, end uint32) region.Region {
	if end <= at {
		return region.At(at)
	}
	return region.Span(at, end)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
