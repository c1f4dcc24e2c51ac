package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/duskfall/internal/game/character"
)

// Enemy is one enemy placed on the board.
type Enemy struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Rank      character.Rank      `json:"rank"`
	Archetype character.Archetype `json:"archetype,omitempty"`
	Pos       Cell                `json:"pos"`
	AttackDC  int                 `json:"attackDC"`
	DefenseDC int                 `json:"defenseDC"`
	HPState   character.HPState   `json:"hpState"`
}

// IsDead reports whether the enemy has reached the terminal hp state.
func (e *Enemy) IsDead() bool { return e.HPState.IsDead() }

// DisplayName returns the name, falling back to the id.
func (e *Enemy) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Normalize fills missing difficulty classes from rank and archetype.
func (e *Enemy) Normalize() error {
	if !e.Rank.Valid() {
		return fmt.Errorf("enemy %q: unknown rank %q", e.ID, e.Rank)
	}
	if !e.Archetype.Valid() {
		return fmt.Errorf("enemy %q: unknown archetype %q", e.ID, e.Archetype)
	}
	if !e.HPState.Valid() {
		return fmt.Errorf("enemy %q: invalid hp state", e.ID)
	}
	if e.AttackDC == 0 || e.DefenseDC == 0 {
		atk, def, err := character.EnemyDC(e.Rank, e.Archetype)
		if err != nil {
			return fmt.Errorf("enemy %q: %w", e.ID, err)
		}
		if e.AttackDC == 0 {
			e.AttackDC = atk
		}
		if e.DefenseDC == 0 {
			e.DefenseDC = def
		}
	}
	return nil
}

// Board is the battlefield. The hero always stands at Origin; everything the
// hero sees is expressed relative to Origin and Facing.
type Board struct {
	Origin  Cell
	Facing  Facing
	Tiles   map[Cell]Tile
	Enemies map[string]*Enemy
}

// New returns an empty board with the hero at origin.
func New(origin Cell, facing Facing) *Board {
	return &Board{
		Origin:  origin,
		Facing:  facing,
		Tiles:   make(map[Cell]Tile),
		Enemies: make(map[string]*Enemy),
	}
}

// ErrCellTaken is returned when placing onto an occupied or obstructed cell.
var ErrCellTaken = errors.New("cell is occupied")

// AddEnemy places e on the board after normalizing its difficulty classes.
func (b *Board) AddEnemy(e *Enemy) error {
	if e.ID == "" {
		return errors.New("enemy id must not be empty")
	}
	if _, dup := b.Enemies[e.ID]; dup {
		return fmt.Errorf("enemy %q already on board", e.ID)
	}
	if err := e.Normalize(); err != nil {
		return err
	}
	if !e.IsDead() && (e.Pos == b.Origin || b.EnemyAt(e.Pos) != nil) {
		return fmt.Errorf("enemy %q at %s: %w", e.ID, e.Pos.Key(), ErrCellTaken)
	}
	b.Enemies[e.ID] = e
	return nil
}

// Validate reports a living enemy standing on the hero or on another living
// enemy. Corpses may share any cell.
func (b *Board) Validate() error {
	seen := make(map[Cell]string, len(b.Enemies))
	for _, e := range b.LivingEnemies() {
		if e.Pos == b.Origin {
			return fmt.Errorf("enemy %q on the hero at %s: %w", e.ID, e.Pos.Key(), ErrCellTaken)
		}
		if other, dup := seen[e.Pos]; dup {
			return fmt.Errorf("enemies %q and %q share %s: %w", other, e.ID, e.Pos.Key(), ErrCellTaken)
		}
		seen[e.Pos] = e.ID
	}
	return nil
}

// SetTile sets the terrain at a world cell. Empty tiles are stored sparsely.
func (b *Board) SetTile(world Cell, t Tile) {
	if t == TileEmpty || t == "" {
		delete(b.Tiles, world)
		return
	}
	b.Tiles[world] = t
}

// TileAt returns the terrain at a world cell; absent means empty.
func (b *Board) TileAt(world Cell) Tile {
	if t, ok := b.Tiles[world]; ok {
		return t
	}
	return TileEmpty
}

// ToLocal maps a world cell into the hero's frame.
func (b *Board) ToLocal(world Cell) Cell { return WorldToLocal(world, b.Origin, b.Facing) }

// ToWorld maps a hero-relative cell into world space.
func (b *Board) ToWorld(local Cell) Cell { return LocalToWorld(local, b.Origin, b.Facing) }

// EnemyIDs returns all enemy ids in ascending order.
func (b *Board) EnemyIDs() []string {
	return slices.Sorted(maps.Keys(b.Enemies))
}

// LivingEnemies returns enemies that are not dead, ordered by id.
func (b *Board) LivingEnemies() []*Enemy {
	var out []*Enemy
	for _, id := range b.EnemyIDs() {
		if e := b.Enemies[id]; !e.IsDead() {
			out = append(out, e)
		}
	}
	return out
}

// EnemyAt returns the living enemy on a world cell, or nil.
func (b *Board) EnemyAt(world Cell) *Enemy {
	for _, e := range b.Enemies {
		if e.Pos == world && !e.IsDead() {
			return e
		}
	}
	return nil
}

// Passable reports whether the hero may stand on a world cell.
func (b *Board) Passable(world Cell) bool {
	return b.TileAt(world) == TileEmpty && b.EnemyAt(world) == nil
}

// ErrIllegalMove is returned for move vectors that are unknown, leave the
// board, or end on or cross an impassable cell.
var ErrIllegalMove = errors.New("illegal move")

// MoveDestination resolves a local move vector to its world destination.
//
// Postcondition: on success every cell on the path is on the footprint and
// passable; the board is not modified.
func (b *Board) MoveDestination(v Cell) (Cell, error) {
	if !IsMoveVector(v) {
		return Cell{}, fmt.Errorf("vector %s: %w", v.Key(), ErrIllegalMove)
	}
	for _, step := range movePath(v) {
		if !InBoardLocal(step.X, step.Y) {
			return Cell{}, fmt.Errorf("vector %s leaves the board: %w", v.Key(), ErrIllegalMove)
		}
		if !b.Passable(b.ToWorld(step)) {
			return Cell{}, fmt.Errorf("vector %s blocked at %s: %w", v.Key(), step.Key(), ErrIllegalMove)
		}
	}
	return b.ToWorld(v), nil
}

// Clone returns a deep copy of b.
func (b *Board) Clone() *Board {
	cp := &Board{
		Origin:  b.Origin,
		Facing:  b.Facing,
		Tiles:   maps.Clone(b.Tiles),
		Enemies: make(map[string]*Enemy, len(b.Enemies)),
	}
	if cp.Tiles == nil {
		cp.Tiles = make(map[Cell]Tile)
	}
	for id, e := range b.Enemies {
		ec := *e
		cp.Enemies[id] = &ec
	}
	return cp
}

type boardWire struct {
	Origin  Cell              `json:"origin"`
	Facing  Facing            `json:"facing"`
	Tiles   map[string]Tile   `json:"tiles"`
	Enemies map[string]*Enemy `json:"enemies"`
}

// MarshalJSON renders the sparse "x,y" tile map and the id-keyed enemy map.
func (b *Board) MarshalJSON() ([]byte, error) {
	w := boardWire{
		Origin:  b.Origin,
		Facing:  b.Facing,
		Tiles:   make(map[string]Tile, len(b.Tiles)),
		Enemies: b.Enemies,
	}
	for c, t := range b.Tiles {
		if t != TileEmpty {
			w.Tiles[c.Key()] = t
		}
	}
	if w.Enemies == nil {
		w.Enemies = map[string]*Enemy{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire form, normalizes every enemy and rejects
// overlapping living enemies.
func (b *Board) UnmarshalJSON(data []byte) error {
	var w boardWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Facing.Valid() {
		return fmt.Errorf("invalid facing %d", w.Facing)
	}
	nb := New(w.Origin, w.Facing)
	for key, t := range w.Tiles {
		c, err := ParseCellKey(key)
		if err != nil {
			return err
		}
		nb.SetTile(c, t)
	}
	for id, e := range w.Enemies {
		if e == nil {
			return fmt.Errorf("enemy %q is null", id)
		}
		if e.ID == "" {
			e.ID = id
		}
		if e.ID != id {
			return fmt.Errorf("enemy key %q does not match id %q", id, e.ID)
		}
		if err := e.Normalize(); err != nil {
			return err
		}
		nb.Enemies[id] = e
	}
	if err := nb.Validate(); err != nil {
		return err
	}
	*b = *nb
	return nil
}
