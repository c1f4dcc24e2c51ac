package turn

import "github.com/cory-johannsen/duskfall/internal/game/combat"

// Pool names one of the three per-turn action point pools.
type Pool string

const (
	PoolAttack Pool = "atk"
	PoolMove   Pool = "move"
	PoolSimple Pool = "simple"
)

// Pools holds the points remaining in each pool.
type Pools struct {
	Atk    int `json:"atk"`
	Move   int `json:"move"`
	Simple int `json:"simple"`
}

// FullPools is the allowance at the start of every turn.
func FullPools() Pools { return Pools{Atk: 1, Move: 1, Simple: 1} }

func (p *Pools) get(pool Pool) *int {
	switch pool {
	case PoolAttack:
		return &p.Atk
	case PoolMove:
		return &p.Move
	default:
		return &p.Simple
	}
}

// Kind is every action the controller accounts for.
type Kind string

const (
	KindMelee        = Kind(combat.ActionMelee)
	KindShoot        = Kind(combat.ActionShoot)
	KindMagic        = Kind(combat.ActionMagic)
	KindThrow        = Kind(combat.ActionThrow)
	KindDefense Kind = "defense"
	KindMove    Kind = "move"
	KindPotion  Kind = "potion"
	KindBandage Kind = "bandage"
)

// Pool returns the pool k spends from.
func (k Kind) Pool() (Pool, bool) {
	switch k {
	case KindMelee, KindShoot, KindMagic, KindDefense:
		return PoolAttack, true
	case KindMove:
		return PoolMove, true
	case KindThrow, KindPotion, KindBandage:
		return PoolSimple, true
	}
	return "", false
}

// IsAttack reports whether k is an offensive action that locks movement.
func (k Kind) IsAttack() bool { return combat.ActionKind(k).IsAttack() }

// Item is a consumable used with a simple action.
type Item string

const (
	ItemPotion  Item = "potion"
	ItemBandage Item = "bandage"
)

// Kind returns the action kind for using it.
func (it Item) Kind() (Kind, bool) {
	switch it {
	case ItemPotion:
		return KindPotion, true
	case ItemBandage:
		return KindBandage, true
	}
	return "", false
}

// Heal is the hp an item restores.
func (it Item) Heal() int {
	switch it {
	case ItemPotion:
		return 3
	case ItemBandage:
		return 1
	}
	return 0
}

// Phase is whose half of the turn is running.
type Phase string

const (
	PhasePlayer  Phase = "player"
	PhaseEnemies Phase = "enemies"
)
