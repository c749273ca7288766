package symbols

import (
	"slices"
	"strconv"

	"github.com/dghubble/trie"
)

// Ident is a normalized textual name as written in source. Several symbols may
// share one Ident.
type Ident string

func (i Ident) String() string { return string(i) }

// IdentID is the per-module index of an identifier-table entry.
type IdentID uint32

func (id IdentID) Index() int { return int(id) }

// IdentIDs is the append-only identifier table of one module. The same text may
// be allocated any number of times; entries are never removed.
type IdentIDs struct {
	names []Ident
	// generated[i] marks entries made by GenUnique
	generated []bool
	// index maps text -> []IdentID in allocation order. Generated names are not indexed.
	index *trie.RuneTrie
}

func NewIdentIDs() *IdentIDs {
	return &IdentIDs{index: trie.NewRuneTrie()}
}

// NewIdentIDsFrom pre-seeds a table, typically with the names a module header exposes.
func NewIdentIDsFrom(names ...Ident) *IdentIDs {
	ids := NewIdentIDs()
	for _, name := range names {
		ids.Add(name)
	}
	return ids
}

// Add allocates a new entry for name, even if name already has entries.
func (t *IdentIDs) Add(name Ident) IdentID {
	id := IdentID(len(t.names))
	t.names = append(t.names, name)
	t.generated = append(t.generated, false)

	var existing []IdentID
	if v := t.index.Get(string(name)); v != nil {
		existing = v.([]IdentID)
	}
	t.index.Put(string(name), append(existing, id))
	return id
}

// GenUnique allocates an entry whose text is its own index ("5"), which no
// source identifier can spell.
func (t *IdentIDs) GenUnique() IdentID {
	id := IdentID(len(t.names))
	t.names = append(t.names, Ident(strconv.Itoa(int(id))))
	t.generated = append(t.generated, true)
	return id
}

// GetID returns the first entry allocated for name.
func (t *IdentIDs) GetID(name Ident) (IdentID, bool) {
	ids := t.GetIDMany(name)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// GetIDMany returns every entry ever allocated for name, in allocation order.
// The slice is a copy.
func (t *IdentIDs) GetIDMany(name Ident) []IdentID {
	v := t.index.Get(string(name))
	if v == nil {
		return nil
	}
	return slices.Clone(v.([]IdentID))
}

// Name returns the text of id.
func (t *IdentIDs) Name(id IdentID) (Ident, bool) {
	if id.Index() >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

// IsGenerated reports whether id was produced by GenUnique.
func (t *IdentIDs) IsGenerated(id IdentID) bool {
	return id.Index() < len(t.generated) && t.generated[id]
}

func (t *IdentIDs) Len() int {
	return len(t.names)
}

// IdentStrs calls yield for every entry in index order until yield returns false.
func (t *IdentIDs) IdentStrs(yield func(IdentID, Ident) bool) {
	for i, name := range t.names {
		if !yield(IdentID(i), name) {
			return
		}
	}
}

// Names returns a copy of all entry texts in index order.
func (t *IdentIDs) Names() []Ident {
	out := make([]Ident, len(t.names))
	copy(out, t.names)
	return out
}

// Clone returns an independent copy of the table.
func (t *IdentIDs) Clone() *IdentIDs {
	out := NewIdentIDs()
	for i, name := range t.names {
		if t.generated[i] {
			out.names = append(out.names, name)
			out.generated = append(out.generated, true)
			continue
		}
		out.Add(name)
	}
	return out
}

// isGeneratedName recognizes GenUnique spellings in name lists that carry no
// flags, such as ones reloaded from storage.
func isGeneratedName(name Ident) bool {
	return name != "" && name[0] >= '0' && name[0] <= '9'
}
