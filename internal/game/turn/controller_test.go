package turn_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duskfall/internal/game/board"
	"github.com/cory-johannsen/duskfall/internal/game/character"
	"github.com/cory-johannsen/duskfall/internal/game/combat"
	"github.com/cory-johannsen/duskfall/internal/game/condition"
	"github.com/cory-johannsen/duskfall/internal/game/turn"
)

func registry() *condition.Registry {
	reg := condition.NewRegistry()
	reg.Register(&condition.ConditionDef{
		ID: condition.DefenseStance, Name: "Защитная стойка",
		DurationType: condition.DurationTurns, Duration: 1, Group: "stance",
	})
	return reg
}

func newController(t *testing.T) (*turn.Controller, *board.Board) {
	t.Helper()
	b := board.New(board.Cell{X: 4, Y: 4}, board.Facing0)
	require.NoError(t, b.AddEnemy(&board.Enemy{ID: "e1", Rank: character.RankWeak, Pos: board.Cell{X: 4, Y: 7}}))
	require.NoError(t, b.AddEnemy(&board.Enemy{ID: "dead", Rank: character.RankWeak, Pos: board.Cell{X: 5, Y: 7}, HPState: character.HPDead}))
	c, err := turn.NewController(b, registry())
	require.NoError(t, err)
	return c, b
}

func code(t *testing.T, err error) string {
	t.Helper()
	var re *turn.RuleError
	require.True(t, errors.As(err, &re), "expected *RuleError, got %v", err)
	return re.Code
}

// TestNewController_RequiresStance: a nil board, nil registry or missing defense_stance definition is an error.
func TestNewController_RequiresStance(t *testing.T) {
	_, err := turn.NewController(board.New(board.Cell{}, board.Facing0), condition.NewRegistry())
	assert.Error(t, err)
	_, err = turn.NewController(nil, registry())
	assert.Error(t, err)
	_, err = turn.NewController(board.New(board.Cell{}, board.Facing0), nil)
	assert.Error(t, err)
}

// TestController_StartsWithFullPools: turn 1, player phase, one point in each pool, empty draft.
func TestController_StartsWithFullPools(t *testing.T) {
	c, _ := newController(t)
	assert.Equal(t, 1, c.Turn())
	assert.Equal(t, turn.PhasePlayer, c.Phase())
	assert.Equal(t, turn.Pools{Atk: 1, Move: 1, Simple: 1}, c.Pools())
	assert.False(t, c.MovementLocked())
	assert.Equal(t, combat.ActionNone, c.Draft().Action.Kind)
}

// TestAttack_SpendsAttackPoolAndLocksMovement: an attack drafts the action, spends atk and locks movement.
func TestAttack_SpendsAttackPoolAndLocksMovement(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Attack(combat.ActionMelee, "e1"))
	assert.Equal(t, turn.Pools{Atk: 0, Move: 1, Simple: 1}, c.Pools())
	assert.True(t, c.MovementLocked())
	assert.Equal(t, combat.Action{Kind: combat.ActionMelee, TargetID: "e1"}, c.Draft().Action)

	err := c.Move(board.Cell{X: 1, Y: 0})
	assert.ErrorIs(t, err, turn.ErrMovementLocked)
	assert.Equal(t, "movement_locked", code(t, err))
	assert.Equal(t, 1, c.Pools().Move, "rejected move spends nothing")
	assert.ErrorIs(t, c.Face(board.Facing90), turn.ErrMovementLocked)
}

// TestAttack_EmptyPoolIsRejectedWithoutSpending: attacking with atk spent is no_points and leaves pools and draft alone.
func TestAttack_EmptyPoolIsRejectedWithoutSpending(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Defend())
	before := c.Pools()
	draft := c.Draft()

	for _, k := range []combat.ActionKind{combat.ActionMelee, combat.ActionShoot, combat.ActionMagic} {
		err := c.Attack(k, "e1")
		assert.ErrorIs(t, err, turn.ErrNoPoints, k)
		assert.Equal(t, "no_points", code(t, err))
	}
	assert.Equal(t, before, c.Pools())
	assert.Equal(t, draft, c.Draft())
	assert.False(t, c.MovementLocked())
}

// TestAttack_InvalidTarget: empty, unknown and dead targets are invalid_target.
func TestAttack_InvalidTarget(t *testing.T) {
	c, _ := newController(t)
	for _, target := range []string{"", "ghost", "dead"} {
		err := c.Attack(combat.ActionShoot, target)
		assert.ErrorIs(t, err, turn.ErrInvalidTarget, target)
	}
	assert.Equal(t, turn.FullPools(), c.Pools())
	assert.False(t, c.MovementLocked())
}

// TestAttack_UnknownKind: ActionNone is not an attack.
func TestAttack_UnknownKind(t *testing.T) {
	c, _ := newController(t)
	assert.ErrorIs(t, c.Attack(combat.ActionNone, "e1"), turn.ErrUnknownAction)
}

// TestThrow_UsesSimplePoolAndOneOffensivePerTurn: a throw spends the simple pool and blocks a second offensive action.
func TestThrow_UsesSimplePoolAndOneOffensivePerTurn(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Attack(combat.ActionThrow, "e1"))
	assert.Equal(t, turn.Pools{Atk: 1, Move: 1, Simple: 0}, c.Pools())
	assert.True(t, c.MovementLocked())

	err := c.Attack(combat.ActionMelee, "e1")
	assert.ErrorIs(t, err, turn.ErrActionDrafted)
	assert.ErrorIs(t, c.UseItem(turn.ItemPotion), turn.ErrNoPoints)
	assert.NoError(t, c.Defend(), "defense is a stance, not an attack")
}

// TestMove_AppliesToBoardAndSpendsMovePool: a legal move shifts the board origin immediately and spends move.
func TestMove_AppliesToBoardAndSpendsMovePool(t *testing.T) {
	c, b := newController(t)
	require.NoError(t, c.Move(board.Cell{X: 0, Y: 2}))
	assert.Equal(t, board.Cell{X: 4, Y: 6}, b.Origin)
	assert.Equal(t, 0, c.Pools().Move)
	assert.Equal(t, []board.Cell{{X: 0, Y: 2}}, c.Draft().Moves)
	assert.ErrorIs(t, c.Move(board.Cell{X: 1, Y: 0}), turn.ErrNoPoints)
	assert.False(t, c.MovementLocked(), "moving then attacking is allowed")
	assert.NoError(t, c.Attack(combat.ActionMelee, "e1"))
}

// TestMove_IllegalVectorOrBlockedCell: non-listed vectors and blocked destinations are illegal_move.
func TestMove_IllegalVectorOrBlockedCell(t *testing.T) {
	c, b := newController(t)
	err := c.Move(board.Cell{X: 0, Y: 1})
	assert.ErrorIs(t, err, turn.ErrIllegalMove)
	assert.Equal(t, "illegal_move", code(t, err))

	b.SetTile(board.Cell{X: 5, Y: 4}, board.TileBlock)
	assert.ErrorIs(t, c.Move(board.Cell{X: 1, Y: 0}), turn.ErrIllegalMove)
	assert.Equal(t, board.Cell{X: 4, Y: 4}, b.Origin)
	assert.Equal(t, 1, c.Pools().Move)
}

// TestDefend_AppliesStanceUntilNextTurn: defend applies a stance that expires when the next turn begins.
func TestDefend_AppliesStanceUntilNextTurn(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Defend())
	assert.True(t, c.DefenseStance())
	assert.True(t, c.Draft().Defend)
	assert.Equal(t, 0, c.Pools().Atk)
	snap := c.Snapshot()
	require.Len(t, snap.Statuses, 1)
	assert.Equal(t, 2, snap.Statuses[0].ExpiresAtTurn)

	expired := c.AdvanceTurn()
	assert.Equal(t, []string{condition.DefenseStance}, expired)
	assert.False(t, c.DefenseStance())
}

// TestUseItem: items share the simple pool; unknown items are rejected.
func TestUseItem(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.UseItem(turn.ItemBandage))
	assert.Equal(t, []turn.Item{turn.ItemBandage}, c.Draft().Items)
	assert.ErrorIs(t, c.UseItem(turn.ItemPotion), turn.ErrNoPoints)
	assert.ErrorIs(t, c.UseItem("elixir"), turn.ErrUnknownAction)
	assert.Equal(t, 3, turn.ItemPotion.Heal())
	assert.Equal(t, 1, turn.ItemBandage.Heal())
}

// TestCanPerform: CanPerform mirrors the pool and lock checks without spending.
func TestCanPerform(t *testing.T) {
	c, _ := newController(t)
	assert.NoError(t, c.CanPerform(turn.KindMove))
	assert.ErrorIs(t, c.CanPerform("dance"), turn.ErrUnknownAction)
	require.NoError(t, c.Attack(combat.ActionMagic, "e1"))
	assert.ErrorIs(t, c.CanPerform(turn.KindMove), turn.ErrMovementLocked)
	assert.ErrorIs(t, c.CanPerform(turn.KindDefense), turn.ErrNoPoints)
	assert.NoError(t, c.CanPerform(turn.KindPotion))
}

// TestCanPerform_RestrictedByStatus: an active status can forbid an action kind.
func TestCanPerform_RestrictedByStatus(t *testing.T) {
	reg := registry()
	reg.Register(&condition.ConditionDef{
		ID: condition.DefenseStance, DurationType: condition.DurationTurns, Duration: 1,
		RestrictActions: []string{"move"},
	})
	c, err := turn.NewController(board.New(board.Cell{}, board.Facing0), reg)
	require.NoError(t, err)
	require.NoError(t, c.Defend())
	err = c.Move(board.Cell{X: 1, Y: 0})
	assert.ErrorIs(t, err, turn.ErrRestricted)
	assert.Equal(t, "restricted", code(t, err))
}

// TestRollback_RestoresTurnStartSnapshot: rollback restores origin, facing, pools, lock and draft from turn start.
func TestRollback_RestoresTurnStartSnapshot(t *testing.T) {
	c, b := newController(t)
	start := c.Snapshot()

	require.NoError(t, c.Move(board.Cell{X: -1, Y: 1}))
	require.NoError(t, c.Attack(combat.ActionMelee, "e1"))
	require.NoError(t, c.UseItem(turn.ItemPotion))
	require.True(t, c.MovementLocked())
	require.NotEqual(t, start.Origin, b.Origin)

	require.NoError(t, c.Rollback())
	assert.Equal(t, start, c.Snapshot())
	assert.Equal(t, board.Cell{X: 4, Y: 4}, b.Origin)
	assert.Equal(t, turn.FullPools(), c.Pools())
	assert.False(t, c.MovementLocked())
	assert.False(t, c.DefenseStance())
	assert.Equal(t, combat.ActionNone, c.Draft().Action.Kind)

	require.NoError(t, c.Move(board.Cell{X: 1, Y: 0}), "movement is available again")
}

// TestRollback_DiscardsDefenseStance: a stance drafted this turn is removed by rollback.
func TestRollback_DiscardsDefenseStance(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Face(board.Facing90))
	require.NoError(t, c.Defend())
	require.NoError(t, c.Rollback())
	assert.False(t, c.DefenseStance())
	assert.Equal(t, board.Facing0, c.Snapshot().Facing)
	assert.False(t, c.Draft().Defend)
}

// TestRollback_KeepsStanceFromPreviousTurn: rollback keeps statuses that predate the turn.
func TestRollback_KeepsStanceFromPreviousTurn(t *testing.T) {
	reg := condition.NewRegistry()
	reg.Register(&condition.ConditionDef{ID: condition.DefenseStance, DurationType: condition.DurationTurns, Duration: 2})
	c, err := turn.NewController(board.New(board.Cell{}, board.Facing0), reg)
	require.NoError(t, err)
	require.NoError(t, c.Defend())
	c.AdvanceTurn()
	require.True(t, c.DefenseStance())
	require.NoError(t, c.Rollback())
	assert.True(t, c.DefenseStance())
}

// TestEnemyPhase_BlocksPlayerActions: the enemy phase rejects player actions until reopened.
func TestEnemyPhase_BlocksPlayerActions(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Attack(combat.ActionMelee, "e1"))
	draft, err := c.BeginEnemyPhase()
	require.NoError(t, err)
	assert.Equal(t, "e1", draft.Action.TargetID)
	assert.Equal(t, turn.PhaseEnemies, c.Phase())

	assert.ErrorIs(t, c.UseItem(turn.ItemPotion), turn.ErrWrongPhase)
	assert.ErrorIs(t, c.Rollback(), turn.ErrWrongPhase)
	_, err = c.BeginEnemyPhase()
	assert.ErrorIs(t, err, turn.ErrWrongPhase)

	c.ReopenPlayerPhase()
	assert.NoError(t, c.UseItem(turn.ItemPotion))
}

// TestAdvanceTurn_ResetsPoolsAndDraft: advancing clears the draft and refills the pools.
func TestAdvanceTurn_ResetsPoolsAndDraft(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.Attack(combat.ActionMelee, "e1"))
	require.NoError(t, c.UseItem(turn.ItemBandage))
	_, err := c.BeginEnemyPhase()
	require.NoError(t, err)

	c.AdvanceTurn()
	assert.Equal(t, 2, c.Turn())
	assert.Equal(t, turn.PhasePlayer, c.Phase())
	assert.Equal(t, turn.FullPools(), c.Pools())
	assert.False(t, c.MovementLocked())
	assert.Equal(t, turn.Draft{Action: combat.Action{Kind: combat.ActionNone}}, c.Draft())
}

// TestRuleError_Format: rule errors carry their code and detail in the message.
func TestRuleError_Format(t *testing.T) {
	c, _ := newController(t)
	err := c.Attack(combat.ActionMelee, "ghost")
	assert.Contains(t, err.Error(), "[invalid_target]")
	assert.Contains(t, err.Error(), "ghost")
}

// TestPropertyController_PoolsNeverNegative: no sequence of actions drives a pool below zero.
func TestPropertyController_PoolsNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := board.New(board.Cell{X: 10, Y: 10}, board.Facing0)
		if err := b.AddEnemy(&board.Enemy{ID: "e1", Rank: character.RankWeak, Pos: board.Cell{X: 10, Y: 14}}); err != nil {
			rt.Fatalf("AddEnemy: %v", err)
		}
		c, err := turn.NewController(b, registry())
		if err != nil {
			rt.Fatalf("NewController: %v", err)
		}
		moves := board.PossibleMovesLocal()
		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 6).Draw(rt, "op") {
			case 0:
				_ = c.Attack(rapid.SampledFrom([]combat.ActionKind{combat.ActionMelee, combat.ActionShoot, combat.ActionThrow}).Draw(rt, "kind"), "e1")
			case 1:
				_ = c.Move(rapid.SampledFrom(moves).Draw(rt, "vec"))
			case 2:
				_ = c.Defend()
			case 3:
				_ = c.UseItem(turn.ItemPotion)
			case 4:
				_ = c.Rollback()
			case 5:
				c.AdvanceTurn()
			case 6:
				_ = c.Face(rapid.SampledFrom([]board.Facing{board.Facing0, board.Facing90, board.Facing180, board.Facing270}).Draw(rt, "facing"))
			}
			p := c.Pools()
			assert.True(rt, p.Atk >= 0 && p.Atk <= 1)
			assert.True(rt, p.Move >= 0 && p.Move <= 1)
			assert.True(rt, p.Simple >= 0 && p.Simple <= 1)
			if c.Draft().Action.Kind.IsAttack() {
				assert.True(rt, c.MovementLocked())
			}
		}
	})
}
