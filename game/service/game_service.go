package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/corridor/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrSeatTaken       = errors.New("no free seat in session")
	ErrInvalidToken    = errors.New("invalid seat token")
	ErrInvalidPlayer   = errors.New("player must be 1 or 2")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	JoinSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Commands
	Move(ctx context.Context, sessionID string, cmd MoveCommand) (*CommandResult, error)
	PlaceWall(ctx context.Context, sessionID string, cmd WallCommand) (*CommandResult, error)
	ApplyRemote(ctx context.Context, sessionID string, cmd RemoteCommand) (*CommandResult, error)
	ToggleMode(ctx context.Context, sessionID string, seat Seat) (*engine.GameState, error)

	// Queries
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	LegalMoves(ctx context.Context, sessionID string, player engine.PlayerID) ([]engine.Coord, error)
	LegalWalls(ctx context.Context, sessionID string) ([]engine.WallSlot, error)
	ShortestPath(ctx context.Context, sessionID string, player engine.PlayerID) ([]engine.Coord, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles board configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active match. Tokens holds the secret for each
// claimed seat; an empty token means the seat is open.
type Session struct {
	ID             string
	Game           *engine.Game
	Config         *engine.GameConfig
	ConfigID       string
	Tokens         [2]string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// ClaimSeat hands out the first open seat
func (s *Session) ClaimSeat() (engine.PlayerID, string, error) {
	for i := range s.Tokens {
		if s.Tokens[i] == "" {
			s.Tokens[i] = uuid.NewString()
			return engine.PlayerID(i + 1), s.Tokens[i], nil
		}
	}
	return 0, "", ErrSeatTaken
}

// Authorize checks a seat token. Open seats accept any caller.
func (s *Session) Authorize(seat Seat) error {
	if !seat.Player.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidPlayer, seat.Player)
	}
	want := s.Tokens[int(seat.Player)-1]
	if want != "" && want != seat.Token {
		return fmt.Errorf("%w for player %d", ErrInvalidToken, seat.Player)
	}
	return nil
}

// Claimed reports whether a seat has been taken
func (s *Session) Claimed(p engine.PlayerID) bool {
	return p.Valid() && s.Tokens[int(p)-1] != ""
}
