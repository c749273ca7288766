package symbols

import (
	"fmt"
	"sort"
	"sync"
)

// DebugNames is the process-wide registry of readable names used when printing
// symbols. Create one at process start, register each module once when its
// canonicalization completes, and only read it afterwards.
type DebugNames struct {
	mu      sync.RWMutex
	modules map[ModuleID]string
	idents  map[ModuleID][]Ident
	// generated flags of tables registered through Register
	generated map[ModuleID][]bool
}

// NewDebugNames returns a registry that already knows the built-in modules.
func NewDebugNames() *DebugNames {
	d := &DebugNames{
		modules:   make(map[ModuleID]string),
		idents:    make(map[ModuleID][]Ident),
		generated: make(map[ModuleID][]bool),
	}
	for i, b := range builtinModules {
		id := ModuleID(i)
		d.modules[id] = b.name
		d.idents[id] = append([]Ident(nil), b.idents...)
	}
	return d
}

// RegisterModule records the display name of a module. Renaming is ignored.
func (d *DebugNames) RegisterModule(id ModuleID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.modules[id]; !ok {
		d.modules[id] = name
	}
}

// Register snapshots the identifier table of a module. It returns false, and
// changes nothing, if the module's identifiers were already registered.
func (d *DebugNames) Register(id ModuleID, ids *IdentIDs) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.idents[id]; ok {
		return false
	}
	d.idents[id] = ids.Names()
	d.generated[id] = append([]bool(nil), ids.generated...)
	return true
}

// RegisterNames is Register for an already materialized name list.
func (d *DebugNames) RegisterNames(id ModuleID, names []Ident) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.idents[id]; ok {
		return false
	}
	d.idents[id] = append([]Ident(nil), names...)
	return true
}

func (d *DebugNames) ModuleName(id ModuleID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.modules[id]
	return name, ok
}

func (d *DebugNames) IdentName(sym Symbol) (Ident, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names, ok := d.idents[sym.Module]
	if !ok || sym.Ident.Index() >= len(names) {
		return "", false
	}
	return names[sym.Ident], true
}

// SymbolName renders sym as "Module.ident", falling back to the numeric form
// for parts that were never registered.
func (d *DebugNames) SymbolName(sym Symbol) string {
	module, ok := d.ModuleName(sym.Module)
	if !ok {
		module = fmt.Sprintf("%d", sym.Module)
	}
	ident, ok := d.IdentName(sym)
	if !ok {
		return fmt.Sprintf("%s.#%d", module, sym.Ident)
	}
	if d.isGenerated(sym, ident) {
		return fmt.Sprintf("%s.$%s", module, ident)
	}
	return module + "." + string(ident)
}

// Modules returns every module with registered identifiers, in id order.
func (d *DebugNames) Modules() []ModuleID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ModuleID, 0, len(d.idents))
	for id := range d.idents {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Idents returns a copy of a module's registered identifier names.
func (d *DebugNames) Idents(id ModuleID) []Ident {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Ident(nil), d.idents[id]...)
}

func (d *DebugNames) isGenerated(sym Symbol, ident Ident) bool {
	d.mu.RLock()
	flags, ok := d.generated[sym.Module]
	d.mu.RUnlock()
	if ok {
		return sym.Ident.Index() < len(flags) && flags[sym.Ident]
	}
	return isGeneratedName(ident)
}
