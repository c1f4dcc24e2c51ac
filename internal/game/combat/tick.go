package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/game/dice"
)

// BattleDelta is the "battle" object of a round-tick response.
type BattleDelta struct {
	Enemies map[string]EnemyDelta `json:"enemies"`
	Hero    HeroDelta             `json:"hero"`
	Log     []string              `json:"log"`
}

// Response is the wire form of a resolved round.
type Response struct {
	ToPlayer string      `json:"to_player"`
	Battle   BattleDelta `json:"battle"`
	End      bool        `json:"end"`
	Counters []string    `json:"counters,omitempty"`
	// Seed is the seed the round was resolved with, for replay.
	Seed uint32 `json:"seed"`
}

// Response renders r as a round-tick response.
func (r Result) Response(seed uint32) Response {
	log := r.Log
	if log == nil {
		log = []string{}
	}
	return Response{
		ToPlayer: r.ToPlayer(),
		Battle: BattleDelta{
			Enemies: r.Enemies,
			Hero:    r.Hero,
			Log:     log,
		},
		End:      r.End,
		Counters: r.Counters,
		Seed:     seed,
	}
}

// Tick resolves a round-tick request end to end. The dice stream is a
// mulberry32 generator seeded from req.Seed, or from a fresh random seed
// when the request carries none.
//
// Postcondition: equal requests with equal seeds yield equal responses.
func Tick(req Request, logger *zap.Logger) (Response, error) {
	var seed uint32
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		s, err := dice.NewSeed()
		if err != nil {
			return Response{}, fmt.Errorf("seeding round: %w", err)
		}
		seed = s
	}
	roller := dice.NewLoggedRoller(dice.NewMulberry32(seed), logger.With(zap.Uint32("seed", seed)))
	res, err := Resolve(req, roller)
	if err != nil {
		return Response{}, err
	}
	logger.Debug("round resolved",
		zap.Uint32("seed", seed),
		zap.String("action", string(req.Action.Kind)),
		zap.Int("hero_hp", res.Hero.HP),
		zap.Bool("end", res.End),
	)
	return res.Response(seed), nil
}
