package engine

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	State() *GameState
	CurrentTurn() PlayerID
	PlayerState(id PlayerID) PlayerState
	Winner() (PlayerID, bool)
	WallsRemaining(id PlayerID) int

	// Rules
	LegalMoves(id PlayerID) []Coord
	LegalWallSlots() []WallSlot
	ShortestPath(id PlayerID) ([]Coord, bool)

	// Commands
	RequestMove(id PlayerID, dest Coord) (*SyncEvent, error)
	RequestWall(id PlayerID, wall Wall) (*SyncEvent, error)
	ApplyRemote(from PlayerID, event SyncEvent) error
	ToggleMode(id PlayerID) error

	// Configuration
	Config() *GameConfig

	// History
	History() []HistoryEntry
}

var _ Engine = (*Game)(nil)
