package service

import (
	"time"

	"github.com/wricardo/corridor/game/engine"
)

// Seat identifies the caller of a command
type Seat struct {
	Player engine.PlayerID `json:"player"`
	Token  string          `json:"token,omitempty"`
}

// SeatGrant is returned once, to whoever claims a seat
type SeatGrant struct {
	Player engine.PlayerID `json:"player"`
	Token  string          `json:"token"`
}

// SeatStatus reports whether a seat is taken
type SeatStatus struct {
	Player  engine.PlayerID `json:"player"`
	Claimed bool            `json:"claimed"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Seats          []SeatStatus       `json:"seats"`
	Grant          *SeatGrant         `json:"grant,omitempty"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveCommand asks to move a pawn
type MoveCommand struct {
	Seat
	To engine.Coord `json:"to"`
}

// WallCommand asks to place a wall
type WallCommand struct {
	Seat
	Wall engine.Wall `json:"wall"`
}

// RemoteCommand carries an event produced by the caller's peer engine
type RemoteCommand struct {
	Seat
	Event engine.SyncEvent `json:"event"`
}

// CommandResult is the outcome of a command. A rejection is a normal result
// with Accepted false and Reason set to the rejection code.
type CommandResult struct {
	Accepted  bool              `json:"accepted"`
	Reason    string            `json:"reason,omitempty"`
	Message   string            `json:"message"`
	Player    engine.PlayerID   `json:"player"`
	Event     *engine.SyncEvent `json:"event,omitempty"`
	Winner    engine.PlayerID   `json:"winner,omitempty"`
	GameState *engine.GameState `json:"game_state"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.HistoryEntry `json:"moves"`
	TotalMoves  int                   `json:"total_moves"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"page_size"`
	TotalPages  int                   `json:"total_pages"`
	HasNext     bool                  `json:"has_next"`
	HasPrevious bool                  `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename       string `json:"filename"`
	ConfigID       string `json:"config_id"` // The identifier to use for session creation
	Name           string `json:"name"`      // Display name
	Description    string `json:"description"`
	BoardSize      int    `json:"board_size"`
	WallsPerPlayer int    `json:"walls_per_player"`
}
