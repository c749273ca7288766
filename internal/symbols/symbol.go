package symbols

import (
	"fmt"
	"sort"
	"sync"
)

// ModuleID identifies a module within one compilation.
type ModuleID uint32

// Symbol is a globally unique declared name: the owning module plus the index of
// its entry in that module's identifier table.
type Symbol struct {
	Module ModuleID
	Ident  IdentID
}

func NewSymbol(module ModuleID, ident IdentID) Symbol {
	return Symbol{Module: module, Ident: ident}
}

func (s Symbol) String() string {
	return fmt.Sprintf("`%d.%d`", s.Module, s.Ident)
}

// ModuleIDs interns module names. Built-in modules are pre-registered with
// their fixed ids.
type ModuleIDs struct {
	mu     sync.Mutex
	byName map[string]ModuleID
	names  []string
}

func NewModuleIDs() *ModuleIDs {
	m := &ModuleIDs{byName: make(map[string]ModuleID)}
	for _, b := range builtinModules {
		m.byName[b.name] = ModuleID(len(m.names))
		m.names = append(m.names, b.name)
	}
	return m
}

// GetOrInsert returns the id for name, allocating one on first sight.
func (m *ModuleIDs) GetOrInsert(name string) ModuleID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byName[name]; ok {
		return id
	}
	id := ModuleID(len(m.names))
	m.byName[name] = id
	m.names = append(m.names, name)
	return id
}

func (m *ModuleIDs) Get(name string) (ModuleID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byName[name]
	return id, ok
}

func (m *ModuleIDs) Name(id ModuleID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(id) >= len(m.names) {
		return "", false
	}
	return m.names[id], true
}

// Available returns the known module names, sorted.
func (m *ModuleIDs) Available() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.names))
	copy(out, m.names)
	sort.Strings(out)
	return out
}
