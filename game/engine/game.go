package engine

import (
	"fmt"
	"time"
)

// Game is the turn state machine for one match. Commands validate first and
// commit only on success; a rejected command leaves the game untouched.
// A Game is single-threaded: callers serialize access.
type Game struct {
	config  *GameConfig
	grid    *Grid
	pf      *Pathfinder
	turn    PlayerID
	players [2]PlayerState
	history []HistoryEntry
	now     func() time.Time
}

// NewGame creates a game in its initial position. Player 1 moves first.
func NewGame(config *GameConfig) (*Game, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	grid, err := NewGrid(config.BoardSize)
	if err != nil {
		return nil, err
	}

	g := &Game{
		config:  config,
		grid:    grid,
		pf:      NewPathfinder(config.BoardSize),
		turn:    Player1,
		history: []HistoryEntry{},
		now:     time.Now,
	}
	for _, id := range []PlayerID{Player1, Player2} {
		start := StartCell(config.BoardSize, id)
		g.players[id.index()] = PlayerState{
			Row:         start.Row,
			Col:         start.Col,
			WallsPlaced: []Wall{},
			Mode:        ModeMove,
		}
	}
	return g, nil
}

// Replay rebuilds a game by applying a recorded history in order
func Replay(config *GameConfig, history []HistoryEntry) (*Game, error) {
	g, err := NewGame(config)
	if err != nil {
		return nil, err
	}
	for _, entry := range history {
		if err := g.ApplyRemote(entry.Player, entry.Event); err != nil {
			return nil, fmt.Errorf("replay move %d: %w", entry.MoveNumber, err)
		}
		last := &g.history[len(g.history)-1]
		last.Remote = entry.Remote
		last.Timestamp = entry.Timestamp
	}
	return g, nil
}

// Config returns the configuration the game was built from
func (g *Game) Config() *GameConfig {
	return g.config
}

// Grid returns the live grid. Callers must not mutate it.
func (g *Game) Grid() *Grid {
	return g.grid
}

// CurrentTurn returns the player whose command will be accepted next
func (g *Game) CurrentTurn() PlayerID {
	return g.turn
}

// PlayerState returns a copy of a player's state
func (g *Game) PlayerState(id PlayerID) PlayerState {
	if !id.Valid() {
		return PlayerState{}
	}
	return clonePlayer(g.players[id.index()])
}

func (g *Game) position(id PlayerID) Coord {
	return g.players[id.index()].Position()
}

// WallsRemaining returns how many walls id may still place
func (g *Game) WallsRemaining(id PlayerID) int {
	if !id.Valid() {
		return 0
	}
	return g.config.WallsPerPlayer - len(g.players[id.index()].WallsPlaced)
}

// LegalMoves returns the destinations available to id in the current position
func (g *Game) LegalMoves(id PlayerID) []Coord {
	if !id.Valid() {
		return nil
	}
	return LegalMoves(g.grid, g.position(id), g.position(id.Opponent()))
}

// LegalWallSlots enumerates wall anchors with their validity
func (g *Game) LegalWallSlots() []WallSlot {
	return LegalWallSlots(g.grid, g.position(Player1), g.position(Player2))
}

// ShortestPath returns a shortest route for id to its goal row
func (g *Game) ShortestPath(id PlayerID) ([]Coord, bool) {
	if !id.Valid() {
		return nil, false
	}
	return g.pf.ShortestPath(g.grid, g.position(id), GoalCells(g.config.BoardSize, id))
}

// Winner reports the player standing on the opponent's home row, if any
func (g *Game) Winner() (PlayerID, bool) {
	goal := 2*g.config.BoardSize - 2
	if g.players[Player1.index()].Row == goal {
		return Player1, true
	}
	if g.players[Player2.index()].Row == 0 {
		return Player2, true
	}
	return 0, false
}

// RequestMove moves id to dest if it is one of id's legal moves
func (g *Game) RequestMove(id PlayerID, dest Coord) (*SyncEvent, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, id)
	}
	if g.turn != id {
		return nil, reject(id, ErrNotYourTurn)
	}
	if !g.grid.InBounds(dest) || !dest.IsCell() {
		return nil, reject(id, ErrOutOfBounds)
	}
	if !IsLegalMove(g.grid, g.position(id), g.position(id.Opponent()), dest) {
		return nil, reject(id, ErrNotAdjacentOrJump)
	}

	ev := MoveEvent(dest)
	g.commit(id, ev, false)
	return &ev, nil
}

// RequestWall places wall for id if inventory allows and both players keep a path
func (g *Game) RequestWall(id PlayerID, wall Wall) (*SyncEvent, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, id)
	}
	if g.turn != id {
		return nil, reject(id, ErrNotYourTurn)
	}
	if g.WallsRemaining(id) <= 0 {
		return nil, reject(id, ErrWallInventoryExhausted)
	}
	if err := checkWall(g.pf, g.grid, wall, g.position(Player1), g.position(Player2)); err != nil {
		return nil, reject(id, err)
	}

	ev := WallEvent(wall)
	g.commit(id, ev, false)
	return &ev, nil
}

// ApplyRemote applies an event the peer already validated. Legality and turn
// ownership are trusted; only the event's shape is checked. Afterwards the
// turn belongs to the opponent of from. Nothing is emitted.
func (g *Game) ApplyRemote(from PlayerID, ev SyncEvent) error {
	if !from.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, from)
	}
	switch ev.Type {
	case EventMove:
		if !g.grid.InBounds(ev.To) || !ev.To.IsCell() {
			return fmt.Errorf("%w: move to %s", ErrMalformedEvent, ev.To)
		}
	case EventWall:
		if !wallInBounds(g.grid, ev.Wall) {
			return fmt.Errorf("%w: wall at (%d,%d) %s", ErrMalformedEvent, ev.Wall.Row, ev.Wall.Col, ev.Wall.Orientation)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	g.commit(from, ev, true)
	return nil
}

func (g *Game) commit(id PlayerID, ev SyncEvent, remote bool) {
	p := &g.players[id.index()]
	switch ev.Type {
	case EventMove:
		p.Row, p.Col = ev.To.Row, ev.To.Col
	case EventWall:
		g.grid.Block(ev.Wall)
		p.WallsPlaced = append(p.WallsPlaced, ev.Wall)
	}
	g.turn = id.Opponent()
	g.history = append(g.history, HistoryEntry{
		MoveNumber: len(g.history) + 1,
		Player:     id,
		Event:      ev,
		Remote:     remote,
		Timestamp:  g.now().Unix(),
	})
}

// ToggleMode flips id between move and wall mode. It is allowed at any time.
func (g *Game) ToggleMode(id PlayerID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, id)
	}
	p := &g.players[id.index()]
	if p.Mode == ModeWall {
		p.Mode = ModeMove
	} else {
		p.Mode = ModeWall
	}
	return nil
}

// History returns a copy of the accepted events in order
func (g *Game) History() []HistoryEntry {
	out := make([]HistoryEntry, len(g.history))
	copy(out, g.history)
	return out
}

// State returns a deep copy of the game
func (g *Game) State() *GameState {
	s := &GameState{
		ConfigName:     g.config.Name,
		BoardSize:      g.config.BoardSize,
		WallsPerPlayer: g.config.WallsPerPlayer,
		Turn:           g.turn,
		BlockedSlots:   g.grid.BlockedSlots(),
		TotalMoves:     len(g.history),
	}
	for i := range g.players {
		s.Players[i] = clonePlayer(g.players[i])
	}
	if w, ok := g.Winner(); ok {
		s.Winner = w
		s.GameOver = true
	}
	return s
}

func clonePlayer(p PlayerState) PlayerState {
	walls := make([]Wall, len(p.WallsPlaced))
	copy(walls, p.WallsPlaced)
	p.WallsPlaced = walls
	return p
}
