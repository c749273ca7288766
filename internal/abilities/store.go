// Package abilities records ability (typeclass) member names and the symbols
// that specialize them.
package abilities

import (
	"fmt"

	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/symbols"
)

// Member is one operation declared by an ability.
type Member struct {
	Symbol symbols.Symbol
	Region region.Region
}

// Store is the in-memory abilities registry of one module.
type Store struct {
	// Ability -> its members in declaration order
	abilityMembers map[symbols.Symbol][]Member
	// Member -> owning ability
	memberAbility map[symbols.Symbol]symbols.Symbol
	// Specializing symbol -> the member it implements
	specializationOf map[symbols.Symbol]symbols.Symbol
	// Member -> specializing symbols in registration order
	specializations map[symbols.Symbol][]symbols.Symbol
}

func NewStore() *Store {
	return &Store{
		abilityMembers:   make(map[symbols.Symbol][]Member),
		memberAbility:    make(map[symbols.Symbol]symbols.Symbol),
		specializationOf: make(map[symbols.Symbol]symbols.Symbol),
		specializations:  make(map[symbols.Symbol][]symbols.Symbol),
	}
}

// RegisterAbility declares ability with the given members. Registering the
// same ability again appends members; a member already owned by a different
// ability is an internal-consistency bug and panics.
func (s *Store) RegisterAbility(ability symbols.Symbol, members []Member) {
	for _, m := range members {
		if owner, ok := s.memberAbility[m.Symbol]; ok && owner != ability {
			panic(fmt.Sprintf("ability member %v already belongs to %v, cannot add it to %v", m.Symbol, owner, ability))
		}
		s.memberAbility[m.Symbol] = ability
	}
	s.abilityMembers[ability] = append(s.abilityMembers[ability], members...)
}

// IsAbilityMemberName reports whether sym names an ability member.
func (s *Store) IsAbilityMemberName(sym symbols.Symbol) bool {
	_, ok := s.memberAbility[sym]
	return ok
}

// RegisterSpecializingSymbol links specializing to the member it implements.
func (s *Store) RegisterSpecializingSymbol(specializing, member symbols.Symbol) {
	s.specializationOf[specializing] = member
	s.specializations[member] = append(s.specializations[member], specializing)
}

// AbilityOf returns the ability that declares member.
func (s *Store) AbilityOf(member symbols.Symbol) (symbols.Symbol, bool) {
	ability, ok := s.memberAbility[member]
	return ability, ok
}

// SpecializationOf returns the member that specializing implements.
func (s *Store) SpecializationOf(specializing symbols.Symbol) (symbols.Symbol, bool) {
	member, ok := s.specializationOf[specializing]
	return member, ok
}

// Specializations returns the symbols implementing member, in registration order.
func (s *Store) Specializations(member symbols.Symbol) []symbols.Symbol {
	return append([]symbols.Symbol(nil), s.specializations[member]...)
}

// Members returns the members of ability in declaration order.
func (s *Store) Members(ability symbols.Symbol) []Member {
	return append([]Member(nil), s.abilityMembers[ability]...)
}

// IsAbility reports whether ability has been registered.
func (s *Store) IsAbility(ability symbols.Symbol) bool {
	_, ok := s.abilityMembers[ability]
	return ok
}
