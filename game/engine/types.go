package engine

import "fmt"

// PlayerID identifies one of the two seats
type PlayerID int

const (
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Opponent returns the other seat
func (p PlayerID) Opponent() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Valid reports whether p names a seat
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

func (p PlayerID) index() int {
	return int(p) - 1
}

// Orientation of a wall
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Valid reports whether o is a known orientation
func (o Orientation) Valid() bool {
	return o == Horizontal || o == Vertical
}

// Mode is the interaction mode a player has selected
type Mode string

const (
	ModeMove Mode = "move"
	ModeWall Mode = "wall"
)

const (
	// Validation constants
	MinBoardSize          = 3
	MaxBoardSize          = 25
	DefaultBoardSize      = 9
	MinWallsPerPlayer     = 1
	MaxWallsPerPlayer     = 20
	DefaultWallsPerPlayer = 10
)

// Coord addresses a slot of the (2S-1)x(2S-1) grid
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// IsCell reports whether c addresses a cell slot (both coordinates even)
func (c Coord) IsCell() bool {
	return c.Row%2 == 0 && c.Col%2 == 0
}

// IsEdge reports whether c addresses an edge slot (exactly one odd coordinate)
func (c Coord) IsEdge() bool {
	return (c.Row%2 == 1) != (c.Col%2 == 1)
}

// Wall is anchored on its first edge slot. A horizontal wall at (r,c) closes
// (r,c), (r,c+1) and (r,c+2); a vertical wall closes (r,c), (r+1,c), (r+2,c).
type Wall struct {
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Orientation Orientation `json:"orientation"`
}

// Slots returns the three slots the wall occupies
func (w Wall) Slots() [3]Coord {
	if w.Orientation == Vertical {
		return [3]Coord{{w.Row, w.Col}, {w.Row + 1, w.Col}, {w.Row + 2, w.Col}}
	}
	return [3]Coord{{w.Row, w.Col}, {w.Row, w.Col + 1}, {w.Row, w.Col + 2}}
}

// WallSlot is one candidate returned by LegalWallSlots
type WallSlot struct {
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Orientation Orientation `json:"orientation"`
	Valid       bool        `json:"valid"`
}

// Wall returns the candidate as a placeable wall
func (s WallSlot) Wall() Wall {
	return Wall{Row: s.Row, Col: s.Col, Orientation: s.Orientation}
}

// PlayerState is the per-seat part of the game
type PlayerState struct {
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	WallsPlaced []Wall `json:"walls_placed"`
	Mode        Mode   `json:"mode"`
}

// Position returns the player's current cell
func (p PlayerState) Position() Coord {
	return Coord{Row: p.Row, Col: p.Col}
}

// GameState is a self-contained snapshot of a game
type GameState struct {
	ConfigName     string         `json:"config_name"`
	BoardSize      int            `json:"board_size"`
	WallsPerPlayer int            `json:"walls_per_player"`
	Turn           PlayerID       `json:"turn"`
	Players        [2]PlayerState `json:"players"`
	BlockedSlots   []Coord        `json:"blocked_slots"`
	Winner         PlayerID       `json:"winner,omitempty"`
	GameOver       bool           `json:"game_over"`
	TotalMoves     int            `json:"total_moves"`
}

// HistoryEntry records one accepted event
type HistoryEntry struct {
	MoveNumber int       `json:"move_number"`
	Player     PlayerID  `json:"player"`
	Event      SyncEvent `json:"event"`
	Remote     bool      `json:"remote,omitempty"`
	Timestamp  int64     `json:"timestamp"`
}
