package scope

import (
	"iter"

	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/symbols"
)

type identEntry struct {
	inScope bool
	region  region.Region
}

// ScopedIdents is a module's identifier table plus, for every entry, whether it
// is currently resolvable by name and where it was last bound. The table and
// the entries only ever grow together, through the methods below.
type ScopedIdents struct {
	table   *symbols.IdentIDs
	entries []identEntry
	home    symbols.ModuleID
	// reactivated logs pre-existing entries made visible again, so that a
	// revert can hide them too.
	reactivated []symbols.IdentID
}

// Snapshot marks a point ScopedIdents can be reverted to.
type Snapshot struct {
	length      int
	reactivated int
}

func newScopedIdents(home symbols.ModuleID, table *symbols.IdentIDs) *ScopedIdents {
	return &ScopedIdents{
		table:   table,
		entries: make([]identEntry, table.Len()),
		home:    home,
	}
}

// Table exposes the underlying identifier table for reading.
func (s *ScopedIdents) Table() *symbols.IdentIDs {
	return s.table
}

func (s *ScopedIdents) Len() int {
	return len(s.entries)
}

func (s *ScopedIdents) Snapshot() Snapshot {
	return Snapshot{length: len(s.entries), reactivated: len(s.reactivated)}
}

// Revert hides every entry allocated at or after snap, and every older entry
// re-activated since. Nothing is deallocated.
func (s *ScopedIdents) Revert(snap Snapshot) {
	for i := snap.length; i < len(s.entries); i++ {
		s.entries[i].inScope = false
	}
	for _, id := range s.reactivated[snap.reactivated:] {
		s.entries[id].inScope = false
	}
	s.reactivated = s.reactivated[:snap.reactivated]
}

// HasInScope returns the first visible entry spelled ident.
func (s *ScopedIdents) HasInScope(ident symbols.Ident) (symbols.Symbol, region.Region, bool) {
	for _, id := range s.table.GetIDMany(ident) {
		if e := s.entries[id]; e.inScope {
			return symbols.NewSymbol(s.home, id), e.region, true
		}
	}
	return symbols.Symbol{}, region.Region{}, false
}

// IdentsInScope yields the names of the visible entries in index order.
func (s *ScopedIdents) IdentsInScope() iter.Seq[symbols.Ident] {
	return func(yield func(symbols.Ident) bool) {
		s.table.IdentStrs(func(id symbols.IdentID, name symbols.Ident) bool {
			if !s.entries[id].inScope {
				return true
			}
			return yield(name)
		})
	}
}

// IsInScope reports whether id is currently visible.
func (s *ScopedIdents) IsInScope(id symbols.IdentID) bool {
	return id.Index() < len(s.entries) && s.entries[id].inScope
}

// Region returns where id was last bound.
func (s *ScopedIdents) Region(id symbols.IdentID) (region.Region, bool) {
	if id.Index() >= len(s.entries) {
		return region.Region{}, false
	}
	return s.entries[id].region, true
}

// IntroduceIntoScope allocates a visible entry.
func (s *ScopedIdents) IntroduceIntoScope(ident symbols.Ident, r region.Region) symbols.IdentID {
	return s.push(s.table.Add(ident), true, r)
}

// ScopelessSymbol allocates an entry that cannot be found by name.
func (s *ScopedIdents) ScopelessSymbol(ident symbols.Ident, r region.Region) symbols.Symbol {
	id := s.push(s.table.Add(ident), false, r)
	return symbols.NewSymbol(s.home, id)
}

// GenUnique allocates a nameless, invisible entry.
func (s *ScopedIdents) GenUnique() symbols.IdentID {
	return s.push(s.table.GenUnique(), false, region.Zero())
}

// activate makes an existing entry visible again at r.
func (s *ScopedIdents) activate(id symbols.IdentID, r region.Region) {
	if !s.entries[id].inScope {
		s.reactivated = append(s.reactivated, id)
	}
	s.entries[id] = identEntry{inScope: true, region: r}
}

func (s *ScopedIdents) push(id symbols.IdentID, inScope bool, r region.Region) symbols.IdentID {
	if id.Index() != len(s.entries) {
		panic("scope: identifier table and scope entries out of step")
	}
	s.entries = append(s.entries, identEntry{inScope: inScope, region: r})
	return id
}
