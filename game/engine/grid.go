package engine

import "fmt"

// Direction indexes the four orthogonal neighbors of a cell
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

var directions = [4]Direction{North, East, South, West}

// delta returns the one-slot step for d
func (d Direction) delta() (int, int) {
	switch d {
	case North:
		return -1, 0
	case East:
		return 0, 1
	case South:
		return 1, 0
	default:
		return 0, -1
	}
}

// Perpendicular returns the two directions at right angles to d
func (d Direction) Perpendicular() [2]Direction {
	if d == North || d == South {
		return [2]Direction{West, East}
	}
	return [2]Direction{North, South}
}

const noNeighbor = -1

// Cell is an arena node. neighbors holds arena indices, noNeighbor when the
// edge is blocked or falls off the board.
type Cell struct {
	Row       int
	Col       int
	neighbors [4]int
}

// Grid is the slot grid of a board with Size cells per side. Cells are always
// open; edges and intersections start open and close when a wall covers them.
type Grid struct {
	Size  int
	Dim   int
	open  []bool
	cells []Cell
}

// NewGrid builds an empty board of size x size cells
func NewGrid(size int) (*Grid, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, fmt.Errorf("board size must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, size)
	}
	return build(size), nil
}

func build(size int) *Grid {
	dim := 2*size - 1
	g := &Grid{
		Size:  size,
		Dim:   dim,
		open:  make([]bool, dim*dim),
		cells: make([]Cell, size*size),
	}
	for i := range g.open {
		g.open[i] = true
	}
	for r := 0; r < dim; r += 2 {
		for c := 0; c < dim; c += 2 {
			cell := &g.cells[g.cellIndex(Coord{r, c})]
			cell.Row, cell.Col = r, c
			g.RecomputeNeighbors(Coord{r, c})
		}
	}
	return g
}

// InBounds reports whether c lies inside the slot grid
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < g.Dim && c.Col < g.Dim
}

// IsOpen reports whether the slot at c is open. Out of bounds slots are closed.
func (g *Grid) IsOpen(c Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.open[c.Row*g.Dim+c.Col]
}

func (g *Grid) setClosed(c Coord) {
	if g.InBounds(c) {
		g.open[c.Row*g.Dim+c.Col] = false
	}
}

func (g *Grid) cellIndex(c Coord) int {
	return (c.Row/2)*g.Size + c.Col/2
}

// CellAt returns the arena cell for a cell coordinate
func (g *Grid) CellAt(c Coord) (*Cell, bool) {
	if !g.InBounds(c) || !c.IsCell() {
		return nil, false
	}
	return &g.cells[g.cellIndex(c)], true
}

// Step returns the cell reached from c in direction d, if the edge between is open
func (g *Grid) Step(c Coord, d Direction) (Coord, bool) {
	cell, ok := g.CellAt(c)
	if !ok {
		return Coord{}, false
	}
	idx := cell.neighbors[d]
	if idx == noNeighbor {
		return Coord{}, false
	}
	n := g.cells[idx]
	return Coord{n.Row, n.Col}, true
}

// Neighbors returns the reachable orthogonal cells of c in N, E, S, W order
func (g *Grid) Neighbors(c Coord) []Coord {
	var out []Coord
	for _, d := range directions {
		if n, ok := g.Step(c, d); ok {
			out = append(out, n)
		}
	}
	return out
}

// RecomputeNeighbors re-derives the neighbor set of the cell at c from the
// four adjacent edge slots
func (g *Grid) RecomputeNeighbors(c Coord) {
	cell, ok := g.CellAt(c)
	if !ok {
		return
	}
	for _, d := range directions {
		dr, dc := d.delta()
		edge := Coord{c.Row + dr, c.Col + dc}
		target := Coord{c.Row + 2*dr, c.Col + 2*dc}
		if g.IsOpen(edge) && g.InBounds(target) {
			cell.neighbors[d] = g.cellIndex(target)
		} else {
			cell.neighbors[d] = noNeighbor
		}
	}
}

// edgeCells returns the two cells an edge slot separates
func edgeCells(e Coord) [2]Coord {
	if e.Row%2 == 1 {
		return [2]Coord{{e.Row - 1, e.Col}, {e.Row + 1, e.Col}}
	}
	return [2]Coord{{e.Row, e.Col - 1}, {e.Row, e.Col + 1}}
}

// Block closes the wall's slots and refreshes only the cells bordering them.
// It does not check legality.
func (g *Grid) Block(w Wall) {
	for _, s := range w.Slots() {
		g.setClosed(s)
	}
	for _, s := range w.Slots() {
		if !s.IsEdge() {
			continue
		}
		for _, c := range edgeCells(s) {
			g.RecomputeNeighbors(c)
		}
	}
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	cp := &Grid{
		Size:  g.Size,
		Dim:   g.Dim,
		open:  make([]bool, len(g.open)),
		cells: make([]Cell, len(g.cells)),
	}
	copy(cp.open, g.open)
	copy(cp.cells, g.cells)
	return cp
}

// CloneWith returns a copy of the grid with w blocked. g is left untouched.
func (g *Grid) CloneWith(w Wall) *Grid {
	cp := g.Clone()
	cp.Block(w)
	return cp
}

// BlockedSlots lists every closed slot in row-major order
func (g *Grid) BlockedSlots() []Coord {
	out := []Coord{}
	for i, open := range g.open {
		if !open {
			out = append(out, Coord{i / g.Dim, i % g.Dim})
		}
	}
	return out
}

// CheckInvariants verifies that every cell's neighbor set matches its edges
func (g *Grid) CheckInvariants() error {
	for _, cell := range g.cells {
		c := Coord{cell.Row, cell.Col}
		for _, d := range directions {
			dr, dc := d.delta()
			edge := Coord{c.Row + dr, c.Col + dc}
			target := Coord{c.Row + 2*dr, c.Col + 2*dc}
			want := noNeighbor
			if g.IsOpen(edge) && g.InBounds(target) {
				want = g.cellIndex(target)
			}
			if cell.neighbors[d] != want {
				return fmt.Errorf("cell %s: neighbor %d is %d, edge %s implies %d", c, d, cell.neighbors[d], edge, want)
			}
		}
	}
	return nil
}

// StartCell returns the starting cell for a player on a board of size cells
func StartCell(size int, p PlayerID) Coord {
	center := 2 * (size / 2)
	if p == Player2 {
		return Coord{2*size - 2, center}
	}
	return Coord{0, center}
}

// GoalCells returns the opponent's home row, the cells p must reach to win
func GoalCells(size int, p PlayerID) []Coord {
	row := 2*size - 2
	if p == Player2 {
		row = 0
	}
	goals := make([]Coord, 0, size)
	for c := 0; c < 2*size-1; c += 2 {
		goals = append(goals, Coord{row, c})
	}
	return goals
}
