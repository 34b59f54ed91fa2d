package engine

// LegalMoves returns the cells mover may step to with the opponent standing
// on opponent. A plain step is offered for every open direction except the one
// leading onto the opponent. In that direction the mover may jump straight
// over, or, when the far edge is closed or off the board, sidestep to either
// open perpendicular neighbor of the opponent. Jumps never chain.
func LegalMoves(g *Grid, mover, opponent Coord) []Coord {
	var moves []Coord
	seen := make(map[Coord]bool)
	add := func(c Coord) {
		if c == mover || c == opponent || seen[c] {
			return
		}
		seen[c] = true
		moves = append(moves, c)
	}

	for _, d := range directions {
		next, ok := g.Step(mover, d)
		if !ok {
			continue
		}
		if next != opponent {
			add(next)
			continue
		}
		if beyond, ok := g.Step(opponent, d); ok {
			add(beyond)
			continue
		}
		for _, side := range d.Perpendicular() {
			if c, ok := g.Step(opponent, side); ok {
				add(c)
			}
		}
	}
	return moves
}

// IsLegalMove reports whether dest is among LegalMoves(g, mover, opponent)
func IsLegalMove(g *Grid, mover, opponent, dest Coord) bool {
	for _, m := range LegalMoves(g, mover, opponent) {
		if m == dest {
			return true
		}
	}
	return false
}
