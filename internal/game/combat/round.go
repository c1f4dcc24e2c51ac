package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/duskfall/internal/game/board"
	"github.com/cory-johannsen/duskfall/internal/game/character"
	"github.com/cory-johannsen/duskfall/internal/game/dice"
)

// State is the full hero and board snapshot a round is resolved against.
type State struct {
	Hero  *character.Hero `json:"hero"`
	Board *board.Board    `json:"board"`
}

// Request is one round-tick call.
type Request struct {
	Action Action `json:"action"`
	State  State  `json:"state"`
	// Seed fixes the dice stream; absent means a fresh random seed.
	Seed *uint32 `json:"seed,omitempty"`
}

// ErrMalformedState is returned when the request lacks a hero or board, or
// when either is internally inconsistent.
var ErrMalformedState = errors.New("malformed round state")

// Validate checks that the request can be resolved.
func (r *Request) Validate() error {
	if r.State.Hero == nil {
		return fmt.Errorf("%w: hero is required", ErrMalformedState)
	}
	if r.State.Board == nil {
		return fmt.Errorf("%w: board is required", ErrMalformedState)
	}
	if err := r.State.Hero.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	if err := r.State.Board.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	if !r.Action.Kind.Valid() && r.Action.Kind != "" {
		return fmt.Errorf("%w: unknown action kind %q", ErrMalformedState, r.Action.Kind)
	}
	return nil
}

// EnemyDelta is an enemy's state after the round.
type EnemyDelta struct {
	HPState character.HPState `json:"hpState"`
}

// HeroDelta is the hero's state after the round.
type HeroDelta struct {
	HP   int `json:"hp"`
	Luck int `json:"luck"`
}

// Result is the outcome of one round.
type Result struct {
	// Enemies holds the resulting hp state of every enemy on the board.
	Enemies map[string]EnemyDelta
	Hero    HeroDelta
	Log     []string
	End     bool
	// Counters lists, in resolution order, the enemies the hero may counter.
	Counters []string
	// Player is nil when no attack was resolved.
	Player   *AttackResult
	Defenses []DefenseResult
}

// ToPlayer joins the log into the narration block shown to the player.
func (r Result) ToPlayer() string { return strings.Join(r.Log, "\n") }

// Resolve computes one combat round: the hero's action, then every living
// enemy in ascending id order, then the end check. Dice are drawn from roller
// in that order only.
//
// Precondition: roller is non-nil.
// Postcondition: req.State is not modified; every enemy hp state in the
// result is >= its input value; Hero.HP is in [0, input HP].
func Resolve(req Request, roller *dice.Roller) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	hero := req.State.Hero.Clone()
	b := req.State.Board.Clone()

	var res Result
	kind := req.Action.Kind
	if kind.IsAttack() {
		target, ok := b.Enemies[req.Action.TargetID]
		if !ok || target.IsDead() {
			res.Log = append(res.Log, missingTargetLine(hero.Name, kind, req.Action.TargetID))
		} else {
			ar := resolvePlayerAttack(hero, b, kind, target, roller)
			res.Player = &ar
			res.Log = append(res.Log, attackLine(hero.Name, ar, target))
		}
	}

	for _, e := range b.LivingEnemies() {
		dr := resolveEnemyAttack(hero, b, e, roller)
		res.Defenses = append(res.Defenses, dr)
		res.Log = append(res.Log, defenseLine(hero, e, dr))
		if dr.Counter() {
			res.Counters = append(res.Counters, e.ID)
		}
	}

	res.Enemies = make(map[string]EnemyDelta, len(b.Enemies))
	for id, e := range b.Enemies {
		res.Enemies[id] = EnemyDelta{HPState: e.HPState}
	}
	res.Hero = HeroDelta{HP: hero.HP, Luck: hero.Luck}
	res.End = hero.IsDown() || len(b.LivingEnemies()) == 0
	if res.End {
		res.Log = append(res.Log, endLine(hero))
	}
	return res, nil
}

func endLine(hero *character.Hero) string {
	if hero.IsDown() {
		return fmt.Sprintf("%s повержен. Бой окончен.", hero.Name)
	}
	return "Все враги повержены. Бой окончен."
}
