package board

import "fmt"

// Tile is the terrain kind of a cell.
type Tile string

const (
	TileEmpty Tile = "empty"
	TileCover Tile = "cover"
	TileBlock Tile = "block"
)

// Valid reports whether t is a known tile kind.
func (t Tile) Valid() bool {
	switch t {
	case TileEmpty, TileCover, TileBlock:
		return true
	}
	return false
}

// Obstructs reports whether t stops a line of fire.
func (t Tile) Obstructs() bool { return t == TileCover || t == TileBlock }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tile) UnmarshalText(b []byte) error {
	v := Tile(b)
	if v == "" {
		v = TileEmpty
	}
	if !v.Valid() {
		return fmt.Errorf("unknown tile %q", string(b))
	}
	*t = v
	return nil
}
