package engine

// wallInBounds checks the anchor parity and that the continuation slots fit
func wallInBounds(g *Grid, w Wall) bool {
	last := g.Dim - 1
	switch w.Orientation {
	case Horizontal:
		return w.Row%2 == 1 && w.Col%2 == 0 &&
			w.Row > 0 && w.Row < last && w.Col >= 0 && w.Col+2 <= last
	case Vertical:
		return w.Row%2 == 0 && w.Col%2 == 1 &&
			w.Col > 0 && w.Col < last && w.Row >= 0 && w.Row+2 <= last
	}
	return false
}

// CheckWall validates placing w with the players standing on p1 and p2.
// It returns ErrOutOfBounds, ErrSlotAlreadyBlocked or ErrNoLegalPath, or nil.
func CheckWall(g *Grid, w Wall, p1, p2 Coord) error {
	return checkWall(NewPathfinder(g.Size), g, w, p1, p2)
}

func checkWall(pf *Pathfinder, g *Grid, w Wall, p1, p2 Coord) error {
	if !wallInBounds(g, w) {
		return ErrOutOfBounds
	}
	for _, s := range w.Slots() {
		if !g.IsOpen(s) {
			return ErrSlotAlreadyBlocked
		}
	}
	hypothetical := g.CloneWith(w)
	if !pf.ExistsPath(hypothetical, p1, GoalCells(g.Size, Player1)) {
		return ErrNoLegalPath
	}
	if !pf.ExistsPath(hypothetical, p2, GoalCells(g.Size, Player2)) {
		return ErrNoLegalPath
	}
	return nil
}

// LegalWallSlots enumerates, in row-major order, every open edge slot that can
// anchor a whole wall. Anchors on the last row or column are skipped since the
// wall would run off the board. Orientation follows parity: odd rows hold
// horizontal walls, odd columns vertical ones. Valid is true only if the wall
// overlaps nothing and leaves both players a path. g is not modified.
func LegalWallSlots(g *Grid, p1, p2 Coord) []WallSlot {
	pf := NewPathfinder(g.Size)
	var slots []WallSlot
	for r := 0; r < g.Dim; r++ {
		for c := 0; c < g.Dim; c++ {
			at := Coord{r, c}
			if !at.IsEdge() || !g.IsOpen(at) {
				continue
			}
			o := Horizontal
			if c%2 == 1 {
				o = Vertical
			}
			w := Wall{Row: r, Col: c, Orientation: o}
			if !wallInBounds(g, w) {
				continue
			}
			slots = append(slots, WallSlot{
				Row:         r,
				Col:         c,
				Orientation: o,
				Valid:       checkWall(pf, g, w, p1, p2) == nil,
			})
		}
	}
	return slots
}
