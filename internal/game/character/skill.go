// Package character holds the hero and enemy attribute rules: skill mastery,
// flat bonuses, difficulty classes, armor and shield tables, and the
// defensive maneuvers they permit.
package character

import (
	"fmt"
	"strings"
)

// Skill identifies one hero skill. The zero value is invalid.
type Skill int

const (
	SkillUnknown Skill = iota
	SkillCombat
	SkillFocus
	SkillArcana
	SkillAthletics
	SkillAcrobatics
	SkillDefense
	SkillStealth
	SkillSleight
	SkillAwareness
	SkillIngenuity
)

var skillIDs = map[Skill]string{
	SkillCombat:     "combat",
	SkillFocus:      "focus",
	SkillArcana:     "arcana",
	SkillAthletics:  "athletics",
	SkillAcrobatics: "acrobatics",
	SkillDefense:    "defense",
	SkillStealth:    "stealth",
	SkillSleight:    "sleight",
	SkillAwareness:  "awareness",
	SkillIngenuity:  "ingenuity",
}

// skillLabels is the single mapping from skill to in-game display label.
var skillLabels = map[Skill]string{
	SkillCombat:     "Бой",
	SkillFocus:      "Фокус",
	SkillArcana:     "Аркана",
	SkillAthletics:  "Атлетика",
	SkillAcrobatics: "Акробатика",
	SkillDefense:    "Защита",
	SkillStealth:    "Скрытность",
	SkillSleight:    "Ловкость рук",
	SkillAwareness:  "Внимательность",
	SkillIngenuity:  "Смекалка",
}

// Skills returns every valid skill in declaration order.
func Skills() []Skill {
	out := make([]Skill, 0, len(skillIDs))
	for s := SkillCombat; s <= SkillIngenuity; s++ {
		out = append(out, s)
	}
	return out
}

// String returns the stable identifier, e.g. "combat".
func (s Skill) String() string {
	if id, ok := skillIDs[s]; ok {
		return id
	}
	return "unknown"
}

// Label returns the display label shown to the player.
func (s Skill) Label() string {
	if l, ok := skillLabels[s]; ok {
		return l
	}
	return "?"
}

// ParseSkill accepts either the identifier or the display label, in any case.
func ParseSkill(raw string) (Skill, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for s, id := range skillIDs {
		if key == id || key == strings.ToLower(skillLabels[s]) {
			return s, nil
		}
	}
	return SkillUnknown, fmt.Errorf("unknown skill %q", raw)
}

// MarshalText implements encoding.TextMarshaler.
func (s Skill) MarshalText() ([]byte, error) {
	if _, ok := skillIDs[s]; !ok {
		return nil, fmt.Errorf("cannot marshal invalid skill %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Skill) UnmarshalText(b []byte) error {
	parsed, err := ParseSkill(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MasteryBonus returns the additive modifier for a skill at the given
// effective level (allocated level plus temporary buffs).
//
// Postcondition: result is in [0, 8] and non-decreasing in level.
func MasteryBonus(effectiveLevel int) int {
	switch {
	case effectiveLevel <= 0:
		return 0
	case effectiveLevel <= 4:
		return 2
	case effectiveLevel <= 8:
		return 3
	case effectiveLevel <= 12:
		return 4
	case effectiveLevel <= 16:
		return 5
	case effectiveLevel <= 19:
		return 6
	case effectiveLevel <= 24:
		return 7
	default:
		return 8
	}
}
