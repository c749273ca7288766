// Package region describes source locations attached to bindings and references.
package region

import "fmt"

// Position is a byte offset into a source file.
type Position struct {
	Offset uint32
}

func (p Position) String() string {
	return fmt.Sprintf("%d", p.Offset)
}

// Region is a half-open span [Start, End) of source text.
type Region struct {
	Start Position
	End   Position
}

// Zero returns the empty region at offset 0, used for synthesized bindings.
func Zero() Region {
	return Region{}
}

// FromPos returns a zero-width region at pos.
func FromPos(pos Position) Region {
	return Region{Start: pos, End: pos}
}

// At returns a zero-width region at the given offset.
func At(offset uint32) Region {
	return FromPos(Position{Offset: offset})
}

// Span returns the region covering [start, end).
func Span(start, end uint32) Region {
	return Region{Start: Position{Offset: start}, End: Position{Offset: end}}
}

func (r Region) IsZero() bool {
	return r.Start.Offset == 0 && r.End.Offset == 0
}

// Contains reports whether other lies entirely within r.
func (r Region) Contains(other Region) bool {
	return r.Start.Offset <= other.Start.Offset && other.End.Offset <= r.End.Offset
}

// Across returns the smallest region covering both a and b.
func Across(a, b Region) Region {
	out := a
	if b.Start.Offset < out.Start.Offset {
		out.Start = b.Start
	}
	if b.End.Offset > out.End.Offset {
		out.End = b.End
	}
	return out
}

func (r Region) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("@%d", r.Start.Offset)
	}
	return fmt.Sprintf("@%d-%d", r.Start.Offset, r.End.Offset)
}

// Loc pairs a value with the region it was written at.
type Loc[T any] struct {
	Region Region
	Value  T
}

// LocAt builds a Loc.
func LocAt[T any](r Region, value T) Loc[T] {
	return Loc[T]{Region: r, Value: value}
}
