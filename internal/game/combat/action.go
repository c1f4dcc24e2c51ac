package combat

import (
	"fmt"

	"github.com/cory-johannsen/duskfall/internal/game/character"
)

// ActionKind is the player's offensive action for a round.
// The zero value decodes as ActionNone.
type ActionKind string

const (
	ActionNone  ActionKind = "none"
	ActionMelee ActionKind = "melee"
	ActionShoot ActionKind = "shoot"
	ActionMagic ActionKind = "magic"
	ActionThrow ActionKind = "throw"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionNone, ActionMelee, ActionShoot, ActionMagic, ActionThrow:
		return true
	}
	return false
}

// IsAttack reports whether k targets an enemy.
func (k ActionKind) IsAttack() bool {
	switch k {
	case ActionMelee, ActionShoot, ActionMagic, ActionThrow:
		return true
	}
	return false
}

// Ranged reports whether cover around the target raises its defense DC.
func (k ActionKind) Ranged() bool {
	return k == ActionShoot || k == ActionMagic || k == ActionThrow
}

// Skill returns the hero skill that drives k.
//
// Postcondition: returns SkillUnknown for ActionNone.
func (k ActionKind) Skill() character.Skill {
	switch k {
	case ActionMelee:
		return character.SkillCombat
	case ActionShoot:
		return character.SkillFocus
	case ActionMagic:
		return character.SkillArcana
	case ActionThrow:
		return character.SkillAthletics
	default:
		return character.SkillUnknown
	}
}

// Label returns the display label used in combat logs.
func (k ActionKind) Label() string {
	switch k {
	case ActionMelee:
		return "ближний бой"
	case ActionShoot:
		return "выстрел"
	case ActionMagic:
		return "магия"
	case ActionThrow:
		return "бросок"
	default:
		return "ожидание"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty decodes as
// ActionNone.
func (k *ActionKind) UnmarshalText(b []byte) error {
	v := ActionKind(b)
	if v == "" {
		v = ActionNone
	}
	if !v.Valid() {
		return fmt.Errorf("unknown action kind %q", string(b))
	}
	*k = v
	return nil
}

// Action is the player intent submitted with a round tick.
type Action struct {
	Kind     ActionKind `json:"kind"`
	TargetID string     `json:"targetId,omitempty"`
}
