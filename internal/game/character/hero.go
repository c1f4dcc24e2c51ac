package character

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Hero attribute limits.
const (
	MaxSkillLevel = 20
	MaxFatigue    = 20
	MaxLuck       = 20
	// LowRoll is the highest natural d20 that earns a point of luck.
	LowRoll = 5
	// MaxDefenseMasteryLevel is the defense effective level at which shield
	// damage reduction doubles.
	MaxDefenseMasteryLevel = 20
)

// PerkKind is the tier of a skill perk.
type PerkKind string

const (
	PerkMaster     PerkKind = "master"
	PerkSpecialist PerkKind = "specialist"
)

// Perk binds a perk tier to one skill.
type Perk struct {
	Kind  PerkKind `json:"kind"`
	Skill Skill    `json:"skill"`
}

// Hero is the player character as seen by the combat rules.
type Hero struct {
	Name        string        `json:"name"`
	Race        string        `json:"race,omitempty"`
	Gender      string        `json:"gender,omitempty"`
	Skills      map[Skill]int `json:"skills"`
	Buffs       map[Skill]int `json:"buffs,omitempty"`
	RaceBonus   map[Skill]int `json:"race_bonus,omitempty"`
	GenderBonus map[Skill]int `json:"gender_bonus,omitempty"`
	PB          int           `json:"pb"`
	HP          int           `json:"hp"`
	HPMax       int           `json:"hp_max"`
	Fatigue     int           `json:"fatigue"`
	Luck        int           `json:"luck"`
	Armor       ArmorID       `json:"armor"`
	Shield      ShieldID      `json:"shield"`
	Perks       []Perk        `json:"perks,omitempty"`
	// DefenseStance is set while the defense stance status is active.
	DefenseStance bool `json:"defense_stance,omitempty"`
}

// Validate checks the hero invariants and reports every violation.
func (h *Hero) Validate() error {
	var errs []string
	if h.HPMax <= 0 {
		errs = append(errs, fmt.Sprintf("hp_max must be > 0, got %d", h.HPMax))
	}
	if h.HP < 0 || h.HP > h.HPMax {
		errs = append(errs, fmt.Sprintf("hp must be in [0, %d], got %d", h.HPMax, h.HP))
	}
	if h.Fatigue < 0 || h.Fatigue > MaxFatigue {
		errs = append(errs, fmt.Sprintf("fatigue must be in [0, %d], got %d", MaxFatigue, h.Fatigue))
	}
	if h.Luck < 0 || h.Luck > MaxLuck {
		errs = append(errs, fmt.Sprintf("luck must be in [0, %d], got %d", MaxLuck, h.Luck))
	}
	if h.PB < 0 {
		errs = append(errs, fmt.Sprintf("pb must be >= 0, got %d", h.PB))
	}
	for _, s := range sortedSkills(h.Skills) {
		if lvl := h.Skills[s]; lvl < 0 || lvl > MaxSkillLevel {
			errs = append(errs, fmt.Sprintf("skill %s level must be in [0, %d], got %d", s, MaxSkillLevel, lvl))
		}
	}
	if _, ok := Armor(h.Armor); !ok {
		errs = append(errs, fmt.Sprintf("unknown armor %q", h.Armor))
	}
	if _, ok := Shield(h.Shield); !ok {
		errs = append(errs, fmt.Sprintf("unknown shield %q", h.Shield))
	}
	for _, p := range h.Perks {
		if p.Kind != PerkMaster && p.Kind != PerkSpecialist {
			errs = append(errs, fmt.Sprintf("unknown perk kind %q", p.Kind))
		}
	}
	if len(errs) > 0 {
		return errors.New("invalid hero: " + strings.Join(errs, "; "))
	}
	return nil
}

// Clone returns a deep copy of h.
func (h *Hero) Clone() *Hero {
	cp := *h
	cp.Skills = maps.Clone(h.Skills)
	cp.Buffs = maps.Clone(h.Buffs)
	cp.RaceBonus = maps.Clone(h.RaceBonus)
	cp.GenderBonus = maps.Clone(h.GenderBonus)
	cp.Perks = slices.Clone(h.Perks)
	return &cp
}

// EffectiveLevel is the allocated skill level plus any temporary buff.
func (h *Hero) EffectiveLevel(s Skill) int {
	return h.Skills[s] + h.Buffs[s]
}

// PerkBonus is +6 for a master perk on s, else +3 for a specialist perk on s.
// Master always wins when both name the same skill.
func (h *Hero) PerkBonus(s Skill) int {
	bonus := 0
	for _, p := range h.Perks {
		if p.Skill != s {
			continue
		}
		switch p.Kind {
		case PerkMaster:
			return 6
		case PerkSpecialist:
			bonus = 3
		}
	}
	return bonus
}

// FlatBonus sums race, gender and perk bonuses for s.
func (h *Hero) FlatBonus(s Skill) int {
	return h.RaceBonus[s] + h.GenderBonus[s] + h.PerkBonus(s)
}

// SkillBonus is the full modifier added to a d20 check with s: mastery,
// flat bonuses and any shield penalty.
func (h *Hero) SkillBonus(s Skill) int {
	bonus := MasteryBonus(h.EffectiveLevel(s)) + h.FlatBonus(s)
	if sh, ok := Shield(h.Shield); ok {
		bonus += sh.SkillPenalty[s]
	}
	return bonus
}

// RollModifier is the luck and fatigue adjustment applied to every hero roll.
func (h *Hero) RollModifier() int {
	return h.Luck - h.Fatigue
}

// CanDodge reports whether the worn armor and shield permit dodging.
func (h *Hero) CanDodge() bool {
	a, okA := Armor(h.Armor)
	s, okS := Shield(h.Shield)
	return okA && okS && a.AllowsDodge && s.AllowsDodge
}

// DodgeBonus is floor(acrobatics/5) + floor(pb/2), or 0 when dodging is not
// allowed.
func (h *Hero) DodgeBonus() int {
	if !h.CanDodge() {
		return 0
	}
	return h.EffectiveLevel(SkillAcrobatics)/5 + h.PB/2
}

// ParryThreshold returns the margin over attack DC that turns a successful
// defense into a parry, or nil when the gear forbids parrying.
func (h *Hero) ParryThreshold() *int {
	a, okA := Armor(h.Armor)
	s, okS := Shield(h.Shield)
	if !okA || !okS || !a.AllowsParry || !s.AllowsParry {
		return nil
	}
	t := BaseParryThreshold + a.ParryModifier
	return &t
}

// HasMaxDefenseMastery reports whether shield damage reduction is doubled.
func (h *Hero) HasMaxDefenseMastery() bool {
	return h.EffectiveLevel(SkillDefense) >= MaxDefenseMasteryLevel
}

// HeavyClass reports whether the hero wears heavy armor.
func (h *Hero) HeavyClass() bool {
	a, ok := Armor(h.Armor)
	return ok && a.HeavyClass
}

// StanceDefenseBonus is the defense check bonus granted by the defense stance
// to heroes outside heavy armor.
func (h *Hero) StanceDefenseBonus() int {
	if h.DefenseStance && !h.HeavyClass() {
		return 1
	}
	return 0
}

// DamageReduction is armor DR plus shield DR (doubled under max defense
// mastery) plus the heavy-armor defense stance bonus.
func (h *Hero) DamageReduction() int {
	dr := 0
	if a, ok := Armor(h.Armor); ok {
		dr += a.DR
	}
	if s, ok := Shield(h.Shield); ok {
		sdr := s.DR
		if h.HasMaxDefenseMastery() {
			sdr *= 2
		}
		dr += sdr
	}
	if h.DefenseStance && h.HeavyClass() {
		dr++
	}
	return dr
}

// DefenseTotal is the full defense check for a natural roll d20.
func (h *Hero) DefenseTotal(d20 int) int {
	return d20 + h.SkillBonus(SkillDefense) + h.StanceDefenseBonus() + h.RollModifier()
}

// DodgeTotal is the full dodge check for a natural roll d20.
func (h *Hero) DodgeTotal(d20 int) int {
	return d20 + h.SkillBonus(SkillAcrobatics) + h.DodgeBonus() + h.RollModifier()
}

// NoteRoll updates luck after a natural roll: luck resets to 0 once it has
// carried a roll to 20, otherwise a low roll earns a point.
//
// Postcondition: 0 <= Luck <= MaxLuck.
func (h *Hero) NoteRoll(d20 int) {
	switch {
	case h.Luck > 0 && d20+h.Luck >= 20:
		h.Luck = 0
	case d20 <= LowRoll && h.Luck < MaxLuck:
		h.Luck++
	}
}

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Postcondition: HP >= 0.
func (h *Hero) ApplyDamage(amount int) {
	if amount <= 0 {
		return
	}
	h.HP -= amount
	if h.HP < 0 {
		h.HP = 0
	}
}

// Heal restores amount HP, capped at HPMax.
func (h *Hero) Heal(amount int) {
	if amount <= 0 {
		return
	}
	h.HP += amount
	if h.HP > h.HPMax {
		h.HP = h.HPMax
	}
}

// IsDown reports whether the hero is out of the fight.
func (h *Hero) IsDown() bool { return h.HP <= 0 }

func sortedSkills(m map[Skill]int) []Skill {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
