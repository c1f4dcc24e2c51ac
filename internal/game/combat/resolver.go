package combat

import (
	"fmt"

	"github.com/cory-johannsen/duskfall/internal/game/board"
	"github.com/cory-johannsen/duskfall/internal/game/character"
	"github.com/cory-johannsen/duskfall/internal/game/dice"
)

// AttackResult holds the outcome of the hero's attack on one enemy.
type AttackResult struct {
	Kind     ActionKind
	TargetID string
	// D20 is the natural roll; Total adds skill, luck and fatigue.
	D20   int
	Total int
	// DC is the target's defense DC after any cover adjustment.
	DC      int
	Cover   bool
	Outcome Outcome
	Stages  int
	Before  character.HPState
	After   character.HPState
}

// DefenseResult holds the outcome of one enemy's attack on the hero.
type DefenseResult struct {
	EnemyID string
	// Blind is true when the enemy had no line of fire and did nothing.
	Blind    bool
	D20      int
	Total    int
	AttackDC int
	Outcome  Outcome
	Parried  bool
	// DodgeD20 is zero when no dodge was rolled.
	DodgeD20   int
	DodgeTotal int
	Dodged     bool
	BaseDamage int
	Bonus      int
	Fumble     bool
	Reduction  int
	Damage     int
}

// Counter reports whether the defense opened a counter-attack.
func (r DefenseResult) Counter() bool {
	return r.Outcome == CritSuccess || r.Parried
}

// resolvePlayerAttack rolls the hero's attack against target and advances
// the target's hp state on success.
//
// Precondition: kind.IsAttack(); target is alive and belongs to b.
// Postcondition: target.HPState >= its prior value; hero luck reflects the roll.
func resolvePlayerAttack(hero *character.Hero, b *board.Board, kind ActionKind, target *board.Enemy, roller *dice.Roller) AttackResult {
	d20 := roller.D20("attack:" + string(kind))
	total := d20 + hero.SkillBonus(kind.Skill()) + hero.RollModifier()
	hero.NoteRoll(d20)

	dc := target.DefenseDC
	cover := kind.Ranged() && b.TargetInCover(target)
	if cover {
		dc = board.CoverDC(dc)
	}
	outcome := OutcomeFor(d20, total, dc)
	stages := StagesFor(outcome)
	before := target.HPState
	target.HPState = before.Advance(stages)

	return AttackResult{
		Kind:     kind,
		TargetID: target.ID,
		D20:      d20,
		Total:    total,
		DC:       dc,
		Cover:    cover,
		Outcome:  outcome,
		Stages:   stages,
		Before:   before,
		After:    target.HPState,
	}
}

// resolveEnemyAttack runs one enemy's turn against the hero: line of fire,
// defense, parry, dodge and damage.
//
// Precondition: e is alive.
// Postcondition: hero.HP >= 0 and never increases.
func resolveEnemyAttack(hero *character.Hero, b *board.Board, e *board.Enemy, roller *dice.Roller) DefenseResult {
	r := DefenseResult{EnemyID: e.ID, AttackDC: e.AttackDC}
	if !b.EnemyCanShootHero(e) {
		r.Blind = true
		return r
	}

	r.D20 = roller.D20("defense:" + e.ID)
	r.Total = hero.DefenseTotal(r.D20)
	hero.NoteRoll(r.D20)
	r.Outcome = OutcomeFor(r.D20, r.Total, e.AttackDC)

	if r.Outcome == CritSuccess {
		return r
	}
	if r.Outcome == Success {
		if pt := hero.ParryThreshold(); pt != nil && r.Total >= e.AttackDC+*pt {
			r.Parried = true
		}
		return r
	}

	if hero.CanDodge() {
		r.DodgeD20 = roller.D20("dodge:" + e.ID)
		r.DodgeTotal = hero.DodgeTotal(r.DodgeD20)
		hero.NoteRoll(r.DodgeD20)
		if OutcomeFor(r.DodgeD20, r.DodgeTotal, e.AttackDC).Succeeded() {
			r.Dodged = true
			return r
		}
	}

	r.BaseDamage = roller.Roll("damage:"+e.ID, character.DamageExpression(e.Rank)).Total()
	r.Bonus = MarginBonus(e.AttackDC - r.Total)
	raw := r.BaseDamage + r.Bonus
	if r.Outcome == CritFailure {
		r.Fumble = true
		raw *= 2
	}
	r.Reduction = hero.DamageReduction()
	r.Damage = max(raw-r.Reduction, 0)
	hero.ApplyDamage(r.Damage)
	return r
}

// Log lines. Every sub-step of a round renders to exactly one line.

func attackLine(heroName string, r AttackResult, target *board.Enemy) string {
	head := fmt.Sprintf("%s (%s) атакует %s: d20=%d, итог %d против КС %d",
		heroName, r.Kind.Label(), target.DisplayName(), r.D20, r.Total, r.DC)
	if r.Cover {
		head += " (цель в укрытии)"
	}
	switch r.Outcome {
	case CritFailure:
		return head + ": автоматический промах."
	case Failure:
		return head + ": промах."
	case CritSuccess:
		return fmt.Sprintf("%s: КРИТИЧЕСКОЕ ПОПАДАНИЕ! %s: %s → %s.",
			head, target.DisplayName(), r.Before.Label(), r.After.Label())
	default:
		return fmt.Sprintf("%s: попадание. %s: %s → %s.",
			head, target.DisplayName(), r.Before.Label(), r.After.Label())
	}
}

func missingTargetLine(heroName string, kind ActionKind, targetID string) string {
	if targetID == "" {
		return fmt.Sprintf("%s (%s): цель не выбрана, действие пропущено.", heroName, kind.Label())
	}
	return fmt.Sprintf("%s (%s): цель %q недоступна или уже мертва, действие пропущено.", heroName, kind.Label(), targetID)
}

func defenseLine(hero *character.Hero, e *board.Enemy, r DefenseResult) string {
	name := e.DisplayName()
	if r.Blind {
		return fmt.Sprintf("%s не видит цель и выжидает.", name)
	}
	head := fmt.Sprintf("%s атакует: защита d20=%d, итог %d против КС %d", name, r.D20, r.Total, r.AttackDC)
	switch {
	case r.Outcome == CritSuccess:
		return head + ": КРИТИЧЕСКАЯ ЗАЩИТА, открыта контратака."
	case r.Parried:
		return head + ": ПАРИРОВАНИЕ! Открыта контратака."
	case r.Outcome == Success:
		return head + ": атака отражена."
	}
	if r.Outcome == CritFailure {
		head += " (провал)"
	}
	if r.Dodged {
		return fmt.Sprintf("%s; уклонение d20=%d, итог %d: УКЛОНЕНИЕ.", head, r.DodgeD20, r.DodgeTotal)
	}
	if r.DodgeD20 > 0 {
		head += fmt.Sprintf("; уклонение d20=%d, итог %d не удалось", r.DodgeD20, r.DodgeTotal)
	}
	dmg := fmt.Sprintf("урон %d", r.BaseDamage)
	if r.Bonus > 0 {
		dmg += fmt.Sprintf(" +%d", r.Bonus)
	}
	if r.Fumble {
		dmg += " ×2"
	}
	return fmt.Sprintf("%s. Попадание: %s − броня %d = %d. ОЗ героя: %d/%d.",
		head, dmg, r.Reduction, r.Damage, hero.HP, hero.HPMax)
}
