// Package turn accounts for the hero's per-turn action points, the drafted
// action for the next round, and rollback to the turn-start snapshot.
package turn

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/duskfall/internal/game/board"
	"github.com/cory-johannsen/duskfall/internal/game/combat"
	"github.com/cory-johannsen/duskfall/internal/game/condition"
)

// Draft is what the hero has queued for the round resolving at end of turn.
type Draft struct {
	Action combat.Action `json:"action"`
	Items  []Item        `json:"items,omitempty"`
	Moves  []board.Cell  `json:"moves,omitempty"`
	Defend bool          `json:"defend"`
}

func (d Draft) clone() Draft {
	d.Items = slices.Clone(d.Items)
	d.Moves = slices.Clone(d.Moves)
	return d
}

type snapshot struct {
	origin   board.Cell
	facing   board.Facing
	pools    Pools
	draft    Draft
	locked   bool
	statuses *condition.ActiveSet
}

// Controller owns the turn state of one battle. The board is shared with the
// battle: moves and facing changes are applied to it immediately and undone
// by Rollback.
//
// It is not safe for concurrent use; the caller must serialise access.
type Controller struct {
	board    *board.Board
	registry *condition.Registry

	turn           int
	phase          Phase
	pools          Pools
	draft          Draft
	movementLocked bool
	statuses       *condition.ActiveSet
	start          snapshot
}

// NewController starts turn 1 in the player phase.
//
// Precondition: b is non-nil; reg defines condition.DefenseStance.
func NewController(b *board.Board, reg *condition.Registry) (*Controller, error) {
	if b == nil {
		return nil, fmt.Errorf("turn controller: board must not be nil")
	}
	if reg == nil {
		return nil, fmt.Errorf("turn controller: condition registry must not be nil")
	}
	if _, ok := reg.Get(condition.DefenseStance); !ok {
		return nil, fmt.Errorf("turn controller: condition %q is not defined", condition.DefenseStance)
	}
	c := &Controller{
		board:    b,
		registry: reg,
		turn:     1,
		phase:    PhasePlayer,
		pools:    FullPools(),
		draft:    Draft{Action: combat.Action{Kind: combat.ActionNone}},
		statuses: condition.NewActiveSet(),
	}
	c.takeSnapshot()
	return c, nil
}

func (c *Controller) takeSnapshot() {
	c.start = snapshot{
		origin:   c.board.Origin,
		facing:   c.board.Facing,
		pools:    c.pools,
		draft:    c.draft.clone(),
		locked:   c.movementLocked,
		statuses: c.statuses.Clone(),
	}
}

// CanPerform reports, as a *RuleError, why k cannot be taken now.
func (c *Controller) CanPerform(k Kind) error {
	pool, ok := k.Pool()
	if !ok {
		return violation(ErrUnknownAction, "%q", k)
	}
	if c.phase != PhasePlayer {
		return violation(ErrWrongPhase, "")
	}
	if k == KindMove && c.movementLocked {
		return violation(ErrMovementLocked, "")
	}
	if c.statuses.IsActionRestricted(string(k)) {
		return violation(ErrRestricted, "%s", k)
	}
	if k.IsAttack() && c.draft.Action.Kind.IsAttack() {
		return violation(ErrActionDrafted, "%s", c.draft.Action.Kind)
	}
	if *c.pools.get(pool) <= 0 {
		return violation(ErrNoPoints, "%s pool", pool)
	}
	return nil
}

func (c *Controller) spend(k Kind) {
	pool, _ := k.Pool()
	*c.pools.get(pool)--
}

// Attack drafts an attack on a living enemy and locks movement.
//
// Postcondition: on error nothing changes.
func (c *Controller) Attack(kind combat.ActionKind, targetID string) error {
	k := Kind(kind)
	if !kind.IsAttack() {
		return violation(ErrUnknownAction, "%q", kind)
	}
	if err := c.CanPerform(k); err != nil {
		return err
	}
	if e, ok := c.board.Enemies[targetID]; !ok || e.IsDead() {
		return violation(ErrInvalidTarget, "%q", targetID)
	}
	c.spend(k)
	c.draft.Action = combat.Action{Kind: kind, TargetID: targetID}
	c.movementLocked = true
	return nil
}

// Move applies a local move vector to the hero's position.
//
// Postcondition: on success the board origin is the vector's destination.
func (c *Controller) Move(v board.Cell) error {
	if err := c.CanPerform(KindMove); err != nil {
		return err
	}
	dest, err := c.board.MoveDestination(v)
	if err != nil {
		return violation(ErrIllegalMove, "vector %s", v.Key())
	}
	c.spend(KindMove)
	c.board.Origin = dest
	c.draft.Moves = append(c.draft.Moves, v)
	return nil
}

// Face turns the hero. Turning is free but counts as movement.
func (c *Controller) Face(f board.Facing) error {
	if !f.Valid() {
		return violation(ErrIllegalMove, "facing %d", f)
	}
	if c.phase != PhasePlayer {
		return violation(ErrWrongPhase, "")
	}
	if c.movementLocked {
		return violation(ErrMovementLocked, "")
	}
	c.board.Facing = f
	return nil
}

// Defend takes the defense stance until the start of the next turn,
// replacing any earlier stance.
func (c *Controller) Defend() error {
	if err := c.CanPerform(KindDefense); err != nil {
		return err
	}
	def, _ := c.registry.Get(condition.DefenseStance)
	if err := c.statuses.Apply(def, c.turn); err != nil {
		return err
	}
	c.spend(KindDefense)
	c.draft.Defend = true
	return nil
}

// UseItem drafts a consumable for this round.
func (c *Controller) UseItem(it Item) error {
	k, ok := it.Kind()
	if !ok {
		return violation(ErrUnknownAction, "item %q", it)
	}
	if err := c.CanPerform(k); err != nil {
		return err
	}
	c.spend(k)
	c.draft.Items = append(c.draft.Items, it)
	return nil
}

// Rollback restores the turn-start snapshot: position, facing, pools, draft,
// movement lock and statuses.
func (c *Controller) Rollback() error {
	if c.phase != PhasePlayer {
		return violation(ErrWrongPhase, "")
	}
	c.board.Origin = c.start.origin
	c.board.Facing = c.start.facing
	c.pools = c.start.pools
	c.draft = c.start.draft.clone()
	c.movementLocked = c.start.locked
	c.statuses = c.start.statuses.Clone()
	return nil
}

// Draft returns a copy of the drafted actions.
func (c *Controller) Draft() Draft { return c.draft.clone() }

// BeginEnemyPhase closes the player phase and returns the draft to resolve.
func (c *Controller) BeginEnemyPhase() (Draft, error) {
	if c.phase != PhasePlayer {
		return Draft{}, violation(ErrWrongPhase, "")
	}
	c.phase = PhaseEnemies
	return c.draft.clone(), nil
}

// ReopenPlayerPhase returns to the player phase after a failed resolution,
// keeping the draft.
func (c *Controller) ReopenPlayerPhase() { c.phase = PhasePlayer }

// AdvanceTurn starts the next player turn: pools refill, the draft clears,
// and statuses with ExpiresAtTurn <= the new turn number lapse.
//
// Postcondition: Phase is player and a fresh rollback snapshot is taken.
func (c *Controller) AdvanceTurn() []string {
	c.turn++
	c.phase = PhasePlayer
	c.pools = FullPools()
	c.draft = Draft{Action: combat.Action{Kind: combat.ActionNone}}
	c.movementLocked = false
	expired := c.statuses.Expire(c.turn)
	c.takeSnapshot()
	return expired
}

// Turn returns the current turn number, starting at 1.
func (c *Controller) Turn() int { return c.turn }

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Pools returns the points left this turn.
func (c *Controller) Pools() Pools { return c.pools }

// MovementLocked reports whether an attack has committed the hero's position.
func (c *Controller) MovementLocked() bool { return c.movementLocked }

// HasStatus reports whether the condition id is active.
func (c *Controller) HasStatus(id string) bool { return c.statuses.Has(id) }

// DefenseStance reports whether the defense stance is active.
func (c *Controller) DefenseStance() bool { return c.statuses.Has(condition.DefenseStance) }

// Status is the wire view of an active condition.
type Status struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ExpiresAtTurn int    `json:"expiresAtTurn"`
}

// State is the wire view of the controller.
type State struct {
	Turn           int          `json:"turn"`
	Phase          Phase        `json:"phase"`
	Pools          Pools        `json:"ap"`
	MovementLocked bool         `json:"movementLocked"`
	Draft          Draft        `json:"draft"`
	Statuses       []Status     `json:"statuses"`
	Origin         board.Cell   `json:"origin"`
	Facing         board.Facing `json:"facing"`
}

// Snapshot returns the current controller state.
func (c *Controller) Snapshot() State {
	statuses := make([]Status, 0, c.statuses.Len())
	for _, ac := range c.statuses.All() {
		statuses = append(statuses, Status{ID: ac.Def.ID, Name: ac.Def.Name, ExpiresAtTurn: ac.ExpiresAtTurn})
	}
	return State{
		Turn:           c.turn,
		Phase:          c.phase,
		Pools:          c.pools,
		MovementLocked: c.movementLocked,
		Draft:          c.draft.clone(),
		Statuses:       statuses,
		Origin:         c.board.Origin,
		Facing:         c.board.Facing,
	}
}
