package character

import (
	"fmt"

	"github.com/cory-johannsen/duskfall/internal/game/dice"
)

// HPState is the ordered injury track of an enemy. Dead is absorbing.
type HPState int

const (
	HPUnhurt HPState = iota
	HPLight
	HPHeavy
	HPNearDeath
	HPDead
)

var hpStateIDs = [...]string{"unhurt", "light", "heavy", "near_death", "dead"}

var hpStateLabels = [...]string{"невредим", "легко ранен", "тяжело ранен", "при смерти", "мёртв"}

// Valid reports whether s is one of the five defined states.
func (s HPState) Valid() bool { return s >= HPUnhurt && s <= HPDead }

// String returns the wire identifier, e.g. "near_death".
func (s HPState) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return hpStateIDs[s]
}

// Label returns the display label used in combat logs.
func (s HPState) Label() string {
	if !s.Valid() {
		return "?"
	}
	return hpStateLabels[s]
}

// IsDead reports whether the state is terminal.
func (s HPState) IsDead() bool { return s >= HPDead }

// Advance moves the state forward by stages, clamped at HPDead.
//
// Postcondition: result >= s and result <= HPDead. Negative stages are ignored.
func (s HPState) Advance(stages int) HPState {
	if stages <= 0 {
		return s
	}
	next := s + HPState(stages)
	if next > HPDead {
		return HPDead
	}
	return next
}

// MarshalText implements encoding.TextMarshaler.
func (s HPState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid hp state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value decodes
// as HPUnhurt.
func (s *HPState) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = HPUnhurt
		return nil
	}
	for i, id := range hpStateIDs {
		if id == string(b) {
			*s = HPState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown hp state %q", string(b))
}

// Rank sets an enemy's base difficulty and damage range.
type Rank string

const (
	RankWeak   Rank = "weak"
	RankMedium Rank = "medium"
	RankStrong Rank = "strong"
	RankBoss   Rank = "boss"
)

// Archetype shifts an enemy's attack and defense difficulty.
type Archetype string

const (
	ArchetypeNone      Archetype = ""
	ArchetypeTank      Archetype = "tank"
	ArchetypeGlass     Archetype = "glass"
	ArchetypeTrickster Archetype = "trickster"
	ArchetypeHorde     Archetype = "horde"
	ArchetypeAvalanche Archetype = "avalanche"
)

type rankRules struct {
	attackDC  int
	defenseDC int
	damage    dice.Expression
}

var ranks = map[Rank]rankRules{
	RankWeak:   {attackDC: 11, defenseDC: 11, damage: dice.MustParse("1d2")},
	RankMedium: {attackDC: 14, defenseDC: 14, damage: dice.MustParse("1d3")},
	RankStrong: {attackDC: 16, defenseDC: 16, damage: dice.MustParse("1d3+1")},
	RankBoss:   {attackDC: 18, defenseDC: 18, damage: dice.MustParse("1d3+2")},
}

// archetypeShift is (attack, defense) added to the rank base.
var archetypeShift = map[Archetype][2]int{
	ArchetypeTank:      {-2, 2},
	ArchetypeAvalanche: {2, -2},
	ArchetypeTrickster: {1, 2},
}

// Valid reports whether r is a known rank.
func (r Rank) Valid() bool {
	_, ok := ranks[r]
	return ok
}

// Valid reports whether a is a known archetype or empty.
func (a Archetype) Valid() bool {
	switch a {
	case ArchetypeNone, ArchetypeTank, ArchetypeGlass, ArchetypeTrickster, ArchetypeHorde, ArchetypeAvalanche:
		return true
	}
	return false
}

// EnemyDC returns the attack and defense difficulty for an enemy.
//
// Precondition: rank must be valid.
func EnemyDC(rank Rank, archetype Archetype) (attackDC, defenseDC int, err error) {
	base, ok := ranks[rank]
	if !ok {
		return 0, 0, fmt.Errorf("unknown enemy rank %q", rank)
	}
	shift := archetypeShift[archetype]
	return base.attackDC + shift[0], base.defenseDC + shift[1], nil
}

// DamageExpression returns the base damage dice for rank. Unknown ranks fall
// back to the weak range.
func DamageExpression(rank Rank) dice.Expression {
	if r, ok := ranks[rank]; ok {
		return r.damage
	}
	return ranks[RankWeak].damage
}
