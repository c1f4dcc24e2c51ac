package board

// RayCells walks the Bresenham line from a to b, endpoints included.
func RayCells(a, b Cell) []Cell {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	cells := []Cell{{X: x, Y: y}}
	for x != b.X || y != b.Y {
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
		cells = append(cells, Cell{X: x, Y: y})
	}
	return cells
}

// LineBlocked reports whether any cell strictly between two world cells is
// cover or block. Adjacent or identical cells have nothing between them.
func (b *Board) LineBlocked(from, to Cell) bool {
	ray := RayCells(from, to)
	if len(ray) < 3 {
		return false
	}
	for _, c := range ray[1 : len(ray)-1] {
		if b.TileAt(c).Obstructs() {
			return true
		}
	}
	return false
}

// IsInCoverCone reports whether target lies in the 45° wedge that extends
// away from the hero behind a cover cell. Both cells are local.
func IsInCoverCone(cover, target Cell) bool {
	return target.Y >= cover.Y && abs(target.X-cover.X) <= target.Y-cover.Y
}

// coverTilesLocal returns every cover tile in the hero frame.
func (b *Board) coverTilesLocal() []Cell {
	var out []Cell
	for c, t := range b.Tiles {
		if t == TileCover {
			out = append(out, b.ToLocal(c))
		}
	}
	return out
}

// behindCover reports whether a local cell sits in the wedge of a cover tile
// lying between it and the hero along the forward axis.
func (b *Board) behindCover(local Cell) bool {
	for _, c := range b.coverTilesLocal() {
		if c == local || c.Y <= 0 || c.Y >= local.Y {
			continue
		}
		if IsInCoverCone(c, local) {
			return true
		}
	}
	return false
}

// EnemyCanShootHero reports whether e has a clear line to the hero: nothing
// obstructs the ray and e is not hidden in a cover wedge.
func (b *Board) EnemyCanShootHero(e *Enemy) bool {
	if b.LineBlocked(e.Pos, b.Origin) {
		return false
	}
	return !b.behindCover(b.ToLocal(e.Pos))
}

// TargetInCover reports whether e stands inside a cover wedge as seen from
// the hero.
func (b *Board) TargetInCover(e *Enemy) bool {
	return b.behindCover(b.ToLocal(e.Pos))
}

// CoverDC applies the cover multiplier (×1.3, rounded up) to a defense DC.
func CoverDC(dc int) int {
	if dc <= 0 {
		return dc
	}
	return (dc*13 + 9) / 10
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
