package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/corridor/game/engine"
)

// gameServiceImpl implements the GameService interface. The mutex serializes
// every command, so each engine sees one command at a time.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a display name, used when a session
// was created from the default configuration
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return sess, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	seats := make([]SeatStatus, 0, 2)
	for _, p := range []engine.PlayerID{engine.Player1, engine.Player2} {
		seats = append(seats, SeatStatus{Player: p, Claimed: sess.Claimed(p)})
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Seats:          seats,
		GameState:      sess.Game.State(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a match and claims seat 1 for the caller
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("config '%s' not available (%w). Available configs: %v", configName, err, configIDs)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(config.Name)
	}

	player, token, err := sess.ClaimSeat()
	if err != nil {
		return nil, err
	}
	s.persist(sess.ID)

	info := sessionInfo(sess)
	info.Grant = &SeatGrant{Player: player, Token: token}
	return info, nil
}

// JoinSession claims the next open seat
func (s *gameServiceImpl) JoinSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	player, token, err := sess.ClaimSeat()
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sess.ID)
	s.persist(sess.ID)

	info := sessionInfo(sess)
	info.Grant = &SeatGrant{Player: player, Token: token}
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// touching LastAccessedAt is a write; readers in sessionInfo hold RLock
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sess.ID)
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move asks the engine to move the caller's pawn
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, cmd MoveCommand) (*CommandResult, error) {
	return s.command(sessionID, cmd.Seat, func(g *engine.Game) (*engine.SyncEvent, error) {
		return g.RequestMove(cmd.Player, cmd.To)
	})
}

// PlaceWall asks the engine to place a wall for the caller
func (s *gameServiceImpl) PlaceWall(ctx context.Context, sessionID string, cmd WallCommand) (*CommandResult, error) {
	return s.command(sessionID, cmd.Seat, func(g *engine.Game) (*engine.SyncEvent, error) {
		return g.RequestWall(cmd.Player, cmd.Wall)
	})
}

// ApplyRemote plays an event a peer engine produced for the caller's seat.
// The server's match is authoritative, so the event gets the same checks as
// Move and PlaceWall and is rejected the same way.
func (s *gameServiceImpl) ApplyRemote(ctx context.Context, sessionID string, cmd RemoteCommand) (*CommandResult, error) {
	ev := cmd.Event
	switch ev.Type {
	case engine.EventMove:
		return s.command(sessionID, cmd.Seat, func(g *engine.Game) (*engine.SyncEvent, error) {
			return g.RequestMove(cmd.Player, ev.To)
		})
	case engine.EventWall:
		return s.command(sessionID, cmd.Seat, func(g *engine.Game) (*engine.SyncEvent, error) {
			return g.RequestWall(cmd.Player, ev.Wall)
		})
	default:
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownEvent, ev.Type)
	}
}

func (s *gameServiceImpl) command(sessionID string, seat Seat, run func(*engine.Game) (*engine.SyncEvent, error)) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(seat); err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sess.ID)

	ev, err := run(sess.Game)
	if err != nil {
		code := engine.RejectionCode(err)
		if code == "" {
			return nil, err
		}
		return &CommandResult{
			Accepted:  false,
			Reason:    code,
			Message:   err.Error(),
			Player:    seat.Player,
			GameState: sess.Game.State(),
		}, nil
	}
	s.persist(sess.ID)

	return accepted(sess.Game, seat.Player, *ev), nil
}

func accepted(g *engine.Game, player engine.PlayerID, ev engine.SyncEvent) *CommandResult {
	result := &CommandResult{
		Accepted:  true,
		Message:   describe(player, ev),
		Player:    player,
		Event:     &ev,
		GameState: g.State(),
	}
	if w, ok := g.Winner(); ok {
		result.Winner = w
		result.Message += fmt.Sprintf(". Player %d wins!", w)
	}
	return result
}

func describe(player engine.PlayerID, ev engine.SyncEvent) string {
	if ev.Type == engine.EventWall {
		return fmt.Sprintf("Player %d placed a %s wall at (%d,%d)", player, ev.Wall.Orientation, ev.Wall.Row, ev.Wall.Col)
	}
	return fmt.Sprintf("Player %d moved to %s", player, ev.To)
}

// persist saves after a state change. Failures are logged, the command stands.
func (s *gameServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.WithField("session", sessionID).Warnf("failed to persist session: %v", err)
	}
}

// ToggleMode flips the caller between move and wall mode
func (s *gameServiceImpl) ToggleMode(ctx context.Context, sessionID string, seat Seat) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(seat); err != nil {
		return nil, err
	}
	if err := sess.Game.ToggleMode(seat.Player); err != nil {
		return nil, err
	}
	s.persist(sess.ID)
	return sess.Game.State(), nil
}

// GetGameState returns the current game state for a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Game.State(), nil
}

// LegalMoves returns the destinations available to player
func (s *gameServiceImpl) LegalMoves(ctx context.Context, sessionID string, player engine.PlayerID) ([]engine.Coord, error) {
	if !player.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayer, player)
	}

	// the engine's pathfinder scratch is shared, so queries take the write lock
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	moves := sess.Game.LegalMoves(player)
	if moves == nil {
		moves = []engine.Coord{}
	}
	return moves, nil
}

// LegalWalls enumerates wall candidates and their validity
func (s *gameServiceImpl) LegalWalls(ctx context.Context, sessionID string) ([]engine.WallSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Game.LegalWallSlots(), nil
}

// ShortestPath returns a shortest route for player to its goal row
func (s *gameServiceImpl) ShortestPath(ctx context.Context, sessionID string, player engine.PlayerID) ([]engine.Coord, error) {
	if !player.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayer, player)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	path, ok := sess.Game.ShortestPath(player)
	if !ok {
		return []engine.Coord{}, nil
	}
	return path, nil
}

// GetMoveHistory returns paginated history for a session
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Game.History()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	moves := []engine.HistoryEntry{}
	if opts.Page > totalPages {
		// past the end; also keeps (Page-1)*Limit from overflowing
		return &HistoryResponse{
			Moves:       moves,
			TotalMoves:  total,
			Page:        opts.Page,
			PageSize:    opts.Limit,
			TotalPages:  totalPages,
			HasPrevious: true,
		}, nil
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns all available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
