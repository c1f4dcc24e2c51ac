// Package board models the tactical grid: hero-relative coordinates,
// terrain tiles, enemy placement, line of sight and cover.
package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is an integer grid coordinate, in either world or local space.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns c + o.
func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Y: c.Y + o.Y} }

// Sub returns c - o.
func (c Cell) Sub(o Cell) Cell { return Cell{X: c.X - o.X, Y: c.Y - o.Y} }

// Key renders c as the "x,y" wire key.
func (c Cell) Key() string { return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y) }

// ParseCellKey parses an "x,y" wire key.
func ParseCellKey(key string) (Cell, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Cell{}, fmt.Errorf("cell key %q: missing comma", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Cell{}, fmt.Errorf("cell key %q: %w", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Cell{}, fmt.Errorf("cell key %q: %w", key, err)
	}
	return Cell{X: x, Y: y}, nil
}

// Facing is the hero's heading in degrees: one of 0, 90, 180, 270.
type Facing int

const (
	Facing0   Facing = 0
	Facing90  Facing = 90
	Facing180 Facing = 180
	Facing270 Facing = 270
)

// Valid reports whether f is one of the four headings.
func (f Facing) Valid() bool {
	switch f {
	case Facing0, Facing90, Facing180, Facing270:
		return true
	}
	return false
}

// Inverse returns the heading that undoes f.
func (f Facing) Inverse() Facing { return (360 - f) % 360 }

// Rotate turns c clockwise by f. Local +Y is the hero's forward axis.
//
// Precondition: f.Valid().
func Rotate(c Cell, f Facing) Cell {
	switch f {
	case Facing90:
		return Cell{X: c.Y, Y: -c.X}
	case Facing180:
		return Cell{X: -c.X, Y: -c.Y}
	case Facing270:
		return Cell{X: -c.Y, Y: c.X}
	default:
		return c
	}
}

// LocalToWorld maps a hero-relative cell to absolute board coordinates.
func LocalToWorld(local, origin Cell, f Facing) Cell {
	return origin.Add(Rotate(local, f))
}

// WorldToLocal is the inverse of LocalToWorld.
func WorldToLocal(world, origin Cell, f Facing) Cell {
	return Rotate(world.Sub(origin), f.Inverse())
}

// InBoardLocal reports whether the local cell lies on the playable
// footprint: seven wide from the hero's row forward four rows, three wide one
// row behind.
func InBoardLocal(x, y int) bool {
	switch {
	case y >= 0 && y <= 4:
		return x >= -3 && x <= 3
	case y == -1:
		return x >= -1 && x <= 1
	default:
		return false
	}
}

var moveVectors = []Cell{
	{X: 0, Y: -1},  // back
	{X: -1, Y: -1}, // back-left
	{X: 1, Y: -1},  // back-right
	{X: 0, Y: 2},   // forward
	{X: -1, Y: 1},  // forward-left
	{X: 1, Y: 1},   // forward-right
	{X: -1, Y: 0},  // left
	{X: 1, Y: 0},   // right
}

// PossibleMovesLocal returns the legal hero move vectors in local space.
// Every vector costs exactly one move point.
func PossibleMovesLocal() []Cell {
	out := make([]Cell, len(moveVectors))
	copy(out, moveVectors)
	return out
}

// IsMoveVector reports whether v is one of the legal move vectors.
func IsMoveVector(v Cell) bool {
	for _, m := range moveVectors {
		if m == v {
			return true
		}
	}
	return false
}

// movePath lists the local cells crossed by v, ending at v.
func movePath(v Cell) []Cell {
	if v.X == 0 && v.Y == 2 {
		return []Cell{{X: 0, Y: 1}, v}
	}
	return []Cell{v}
}
