package combat_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duskfall/internal/game/combat"
	"github.com/cory-johannsen/duskfall/internal/game/dice"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

// TestRollCheck_UsesRawD20: a valid d20Raw is used instead of the source.
func TestRollCheck_UsesRawD20(t *testing.T) {
	req := combat.RollRequest{
		DC:     15,
		D20Raw: float64(12),
		Inputs: combat.RollInputs{Mastery: 3, Flat: 2, Ingenuity: 1, Luck: 1, Fatigue: 2, Situational: -1},
	}
	resp := combat.RollCheck(req, fixedSrc{val: 0})
	assert.Equal(t, 12, resp.D20)
	assert.Equal(t, 16, resp.Total)
	assert.Equal(t, 15, resp.DC)
	assert.True(t, resp.Success)
	assert.Equal(t, combat.CritNone, resp.Crit)
}

// TestRollCheck_CritOverridesComparison: natural 1 fails and natural 20 succeeds regardless of DC.
func TestRollCheck_CritOverridesComparison(t *testing.T) {
	fail := combat.RollCheck(combat.RollRequest{DC: 2, D20Raw: float64(1), Inputs: combat.RollInputs{Mastery: 8}}, fixedSrc{})
	assert.False(t, fail.Success)
	assert.Equal(t, combat.CritFail, fail.Crit)

	hit := combat.RollCheck(combat.RollRequest{DC: 40, D20Raw: float64(20)}, fixedSrc{})
	assert.True(t, hit.Success)
	assert.Equal(t, combat.CritSucceed, hit.Crit)
}

// TestRollCheck_InvalidRawFallsBackToSource: out-of-range or non-numeric d20Raw falls back to the source.
func TestRollCheck_InvalidRawFallsBackToSource(t *testing.T) {
	for _, raw := range []any{nil, float64(0), float64(21), 3.5, "abc", true} {
		resp := combat.RollCheck(combat.RollRequest{DC: 10, D20Raw: raw}, fixedSrc{val: 6})
		assert.Equal(t, 7, resp.D20, "raw %v", raw)
	}
	resp := combat.RollCheck(combat.RollRequest{DC: 10, D20Raw: "17"}, fixedSrc{val: 6})
	assert.Equal(t, 17, resp.D20)
}

// TestRollRequest_DecodesFromJSON: the wire form decodes and resolves.
func TestRollRequest_DecodesFromJSON(t *testing.T) {
	var req combat.RollRequest
	require.NoError(t, json.Unmarshal([]byte(`{"dc":12,"d20Raw":9,"inputs":{"mastery":2,"flat":0,"ingenuity":1,"luck":0,"fatigue":1}}`), &req))
	resp := combat.RollCheck(req, fixedSrc{})
	assert.Equal(t, 9, resp.D20)
	assert.Equal(t, 11, resp.Total)
	assert.False(t, resp.Success)
}

// TestRollCheck_Property_CryptoRollInRange: crypto rolls stay in 1..20.
func TestRollCheck_Property_CryptoRollInRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		dc := rapid.IntRange(1, 40).Draw(rt, "dc")
		resp := combat.RollCheck(combat.RollRequest{DC: dc}, src)
		assert.GreaterOrEqual(rt, resp.D20, 1)
		assert.LessOrEqual(rt, resp.D20, 20)
		switch resp.Crit {
		case combat.CritSucceed:
			assert.True(rt, resp.Success)
		case combat.CritFail:
			assert.False(rt, resp.Success)
		default:
			assert.Equal(rt, resp.Total >= dc, resp.Success)
		}
	})
}

// TestActionKind_UnmarshalText: empty kind decodes as none; unknown kinds fail.
func TestActionKind_UnmarshalText(t *testing.T) {
	var a combat.Action
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"","targetId":"e1"}`), &a))
	assert.Equal(t, combat.ActionNone, a.Kind)
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"throw"}`), &a))
	assert.Equal(t, combat.ActionThrow, a.Kind)
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"kick"}`), &a))
}

// TestActionKind_Mapping: shoot, magic and throw are ranged attacks; melee is not ranged.
func TestActionKind_Mapping(t *testing.T) {
	assert.False(t, combat.ActionMelee.Ranged())
	for _, k := range []combat.ActionKind{combat.ActionShoot, combat.ActionMagic, combat.ActionThrow} {
		assert.True(t, k.Ranged(), k)
		assert.True(t, k.IsAttack(), k)
	}
	assert.False(t, combat.ActionNone.IsAttack())
}
