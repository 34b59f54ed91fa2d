package engine

import "container/heap"

// Pathfinder runs A* over a Grid. Its scratch arrays are parallel to the
// grid's cell arena and stamped with a generation so consecutive searches
// never read each other's values. A Pathfinder is not safe for concurrent use.
type Pathfinder struct {
	size   int
	gen    uint32
	gCost  []int
	prev   []int
	seen   []uint32
	closed []uint32
	goal   []uint32
	open   frontier
	seq    int
}

// NewPathfinder allocates scratch space for boards of size x size cells
func NewPathfinder(size int) *Pathfinder {
	n := size * size
	return &Pathfinder{
		size:   size,
		gCost:  make([]int, n),
		prev:   make([]int, n),
		seen:   make([]uint32, n),
		closed: make([]uint32, n),
		goal:   make([]uint32, n),
	}
}

type node struct {
	idx int
	f   int
	seq int
}

// frontier is a min-heap on f with insertion order breaking ties
type frontier []node

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].f != f[j].f {
		return f[i].f < f[j].f
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(node)) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	*f = old[:len(old)-1]
	return n
}

func (p *Pathfinder) reset(g *Grid) {
	if g.Size != p.size {
		*p = *NewPathfinder(g.Size)
	}
	p.gen++
	if p.gen == 0 {
		// wrapped: clear stamps so stale entries cannot collide
		for i := range p.seen {
			p.seen[i], p.closed[i], p.goal[i] = 0, 0, 0
		}
		p.gen = 1
	}
	p.open = p.open[:0]
	p.seq = 0
}

// heuristic is the Manhattan distance in cell hops to the nearest goal
func heuristic(c Coord, goals []Coord) int {
	best := -1
	for _, goal := range goals {
		d := abs(c.Row-goal.Row) + abs(c.Col-goal.Col)
		if best == -1 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0
	}
	return best / 2
}

// search returns the arena index of the first goal popped, or -1
func (p *Pathfinder) search(g *Grid, start Coord, goals []Coord) int {
	p.reset(g)
	if _, ok := g.CellAt(start); !ok {
		return -1
	}
	valid := goals[:0:0]
	for _, goal := range goals {
		if _, ok := g.CellAt(goal); ok {
			p.goal[g.cellIndex(goal)] = p.gen
			valid = append(valid, goal)
		}
	}
	if len(valid) == 0 {
		return -1
	}

	s := g.cellIndex(start)
	p.gCost[s] = 0
	p.prev[s] = noNeighbor
	p.seen[s] = p.gen
	heap.Push(&p.open, node{idx: s, f: heuristic(start, valid), seq: p.seq})
	p.seq++

	for p.open.Len() > 0 {
		cur := heap.Pop(&p.open).(node)
		if p.closed[cur.idx] == p.gen {
			continue
		}
		if p.goal[cur.idx] == p.gen {
			return cur.idx
		}
		p.closed[cur.idx] = p.gen

		cell := g.cells[cur.idx]
		for _, n := range cell.neighbors {
			if n == noNeighbor || p.closed[n] == p.gen {
				continue
			}
			cost := p.gCost[cur.idx] + 1
			if p.seen[n] == p.gen && cost >= p.gCost[n] {
				continue
			}
			p.seen[n] = p.gen
			p.gCost[n] = cost
			p.prev[n] = cur.idx
			nc := g.cells[n]
			heap.Push(&p.open, node{idx: n, f: cost + heuristic(Coord{nc.Row, nc.Col}, valid), seq: p.seq})
			p.seq++
		}
	}
	return -1
}

// ExistsPath reports whether any goal is reachable from start
func (p *Pathfinder) ExistsPath(g *Grid, start Coord, goals []Coord) bool {
	return p.search(g, start, goals) != -1
}

// ShortestPath returns a shortest route from start to the nearest reachable
// goal, both ends included
func (p *Pathfinder) ShortestPath(g *Grid, start Coord, goals []Coord) ([]Coord, bool) {
	end := p.search(g, start, goals)
	if end == -1 {
		return nil, false
	}
	var path []Coord
	for idx := end; idx != noNeighbor; idx = p.prev[idx] {
		c := g.cells[idx]
		path = append(path, Coord{c.Row, c.Col})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

// ExistsPath is a one-shot search with a fresh Pathfinder
func ExistsPath(g *Grid, start Coord, goals []Coord) bool {
	return NewPathfinder(g.Size).ExistsPath(g, start, goals)
}

// ShortestPath is a one-shot search with a fresh Pathfinder
func ShortestPath(g *Grid, start Coord, goals []Coord) ([]Coord, bool) {
	return NewPathfinder(g.Size).ShortestPath(g, start, goals)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
