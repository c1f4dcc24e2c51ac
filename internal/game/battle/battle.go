// Package battle owns live battle sessions: the hero, the board, the turn
// controller and the history of resolved rounds.
package battle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/game/board"
	"github.com/cory-johannsen/duskfall/internal/game/character"
	"github.com/cory-johannsen/duskfall/internal/game/combat"
	"github.com/cory-johannsen/duskfall/internal/game/turn"
)

var (
	// ErrBattleOver is returned for any action on an inactive battle.
	ErrBattleOver = errors.New("battle is over")
	// ErrEngineFault wraps a failure inside round resolution.
	ErrEngineFault = errors.New("combat engine failure")
)

// End reasons.
const (
	EndVictory = "victory"
	EndDefeat  = "defeat"
	EndPlayer  = "ended_by_player"
)

// Round is one resolved end-of-turn.
type Round struct {
	Number     int             `json:"number"`
	Turn       int             `json:"turn"`
	Draft      turn.Draft      `json:"draft"`
	Response   combat.Response `json:"response"`
	ResolvedAt time.Time       `json:"resolvedAt"`
}

// View is a read-only copy of a battle's state.
type View struct {
	ID        string          `json:"id"`
	Active    bool            `json:"active"`
	EndReason string          `json:"endReason,omitempty"`
	Hero      *character.Hero `json:"hero"`
	Board     *board.Board    `json:"board"`
	Turn      turn.State      `json:"turn"`
	Rounds    int             `json:"rounds"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Battle is a single-writer session: every method holds the battle's mutex,
// so at most one round resolves at a time.
type Battle struct {
	mu sync.Mutex

	id        string
	active    bool
	endReason string
	hero      *character.Hero
	board     *board.Board
	ctrl      *turn.Controller
	history   []Round
	createdAt time.Time

	logger  *zap.Logger
	onRound RoundListener
	onEnd   func(battleID string, v View)
	now     func() time.Time
}

// ID returns the battle id.
func (b *Battle) ID() string { return b.id }

// View returns a deep copy of the battle's current state.
func (b *Battle) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

func (b *Battle) viewLocked() View {
	return View{
		ID:        b.id,
		Active:    b.active,
		EndReason: b.endReason,
		Hero:      b.hero.Clone(),
		Board:     b.board.Clone(),
		Turn:      b.ctrl.Snapshot(),
		Rounds:    len(b.history),
		CreatedAt: b.createdAt,
	}
}

// History returns the resolved rounds in order.
func (b *Battle) History() []Round {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Round, len(b.history))
	copy(out, b.history)
	return out
}

// act runs fn against the controller while the battle is active.
func (b *Battle) act(name string, fn func(*turn.Controller) error) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return View{}, ErrBattleOver
	}
	if err := fn(b.ctrl); err != nil {
		b.logger.Debug("action rejected", zap.String("action", name), zap.Error(err))
		return View{}, err
	}
	b.logger.Debug("action accepted", zap.String("action", name))
	return b.viewLocked(), nil
}

// Attack drafts an attack on an enemy.
func (b *Battle) Attack(kind combat.ActionKind, targetID string) (View, error) {
	return b.act("attack", func(c *turn.Controller) error { return c.Attack(kind, targetID) })
}

// Move moves the hero by a local vector.
func (b *Battle) Move(v board.Cell) (View, error) {
	return b.act("move", func(c *turn.Controller) error { return c.Move(v) })
}

// Face turns the hero.
func (b *Battle) Face(f board.Facing) (View, error) {
	return b.act("face", func(c *turn.Controller) error { return c.Face(f) })
}

// Defend takes the defense stance.
func (b *Battle) Defend() (View, error) {
	return b.act("defend", func(c *turn.Controller) error { return c.Defend() })
}

// UseItem drafts a consumable.
func (b *Battle) UseItem(it turn.Item) (View, error) {
	return b.act("item", func(c *turn.Controller) error { return c.UseItem(it) })
}

// Rollback restores the turn-start snapshot.
func (b *Battle) Rollback() (View, error) {
	return b.act("rollback", func(c *turn.Controller) error { return c.Rollback() })
}

// EndTurn resolves the drafted round and commits its deltas. Items heal
// before the enemies act; the defense stance, if active, applies to this
// round. On failure nothing is committed and the player phase reopens.
// The round listener runs before the battle lock is released, so listeners
// see rounds in order and must not call back into the battle.
//
// Postcondition: on success History grows by one; the battle is inactive
// iff the returned round ended it.
func (b *Battle) EndTurn(seed *uint32) (Round, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.endTurn(seed)
}

func (b *Battle) endTurn(seed *uint32) (Round, error) {
	if !b.active {
		return Round{}, ErrBattleOver
	}
	draft, err := b.ctrl.BeginEnemyPhase()
	if err != nil {
		return Round{}, err
	}

	hero := b.hero.Clone()
	for _, it := range draft.Items {
		hero.Heal(it.Heal())
	}
	hero.DefenseStance = b.ctrl.DefenseStance()
	req := combat.Request{
		Action: draft.Action,
		State:  combat.State{Hero: hero, Board: b.board},
		Seed:   seed,
	}
	resp, err := b.resolve(req)
	if err != nil {
		b.ctrl.ReopenPlayerPhase()
		b.logger.Error("round resolution failed", zap.Error(err))
		return Round{}, err
	}

	hero.HP = resp.Battle.Hero.HP
	hero.Luck = resp.Battle.Hero.Luck
	hero.DefenseStance = false
	b.hero = hero
	for id, d := range resp.Battle.Enemies {
		if e, ok := b.board.Enemies[id]; ok {
			e.HPState = d.HPState
		}
	}

	round := Round{
		Number:     len(b.history) + 1,
		Turn:       b.ctrl.Turn(),
		Draft:      draft,
		Response:   resp,
		ResolvedAt: b.now(),
	}
	b.history = append(b.history, round)

	if !resp.End {
		expired := b.ctrl.AdvanceTurn()
		if len(expired) > 0 {
			b.logger.Debug("statuses expired", zap.Strings("ids", expired))
		}
	}
	b.logger.Info("round resolved",
		zap.Int("round", round.Number),
		zap.Uint32("seed", resp.Seed),
		zap.Int("hero_hp", hero.HP),
		zap.Bool("end", resp.End),
	)
	if b.onRound != nil {
		b.onRound(b.id, round)
	}
	if resp.End {
		reason := EndVictory
		if hero.IsDown() {
			reason = EndDefeat
		}
		b.deactivate(reason)
	}
	return round, nil
}

// resolve runs the engine, converting a panic into ErrEngineFault.
func (b *Battle) resolve(req combat.Request) (resp combat.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEngineFault, r)
		}
	}()
	resp, err = combat.Tick(req, b.logger)
	if err != nil {
		return combat.Response{}, fmt.Errorf("%w: %w", ErrEngineFault, err)
	}
	return resp, nil
}

// End deactivates the battle at the player's request.
func (b *Battle) End() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return
	}
	b.deactivate(EndPlayer)
}

func (b *Battle) deactivate(reason string) {
	b.active = false
	b.endReason = reason
	b.logger.Info("battle ended", zap.String("reason", reason))
	if b.onEnd != nil {
		b.onEnd(b.id, b.viewLocked())
	}
}
