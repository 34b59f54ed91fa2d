package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/corridor/game/config"
	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/service"
	"github.com/wricardo/corridor/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Sessions
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/join", s.handleJoinSession).Methods("POST")

	// Queries
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/moves", s.handleLegalMoves).Methods("GET")
	api.HandleFunc("/sessions/{id}/walls", s.handleLegalWalls).Methods("GET")
	api.HandleFunc("/sessions/{id}/path", s.handleShortestPath).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Commands
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/wall", s.handleWall).Methods("POST")
	api.HandleFunc("/sessions/{id}/mode", s.handleToggleMode).Methods("POST")
	api.HandleFunc("/sessions/{id}/remote", s.handleRemote).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and engine errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, service.ErrSeatTaken), errors.Is(err, service.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidPlayer),
		errors.Is(err, engine.ErrInvalidPlayer),
		errors.Is(err, engine.ErrMalformedEvent),
		errors.Is(err, engine.ErrUnknownEvent),
		errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parsePlayer reads the "player" query parameter
func parsePlayer(r *http.Request) (engine.PlayerID, error) {
	raw := r.URL.Query().Get("player")
	n, err := strconv.Atoi(raw)
	if err != nil || !engine.PlayerID(n).Valid() {
		return 0, fmt.Errorf("%w: got %q", service.ErrInvalidPlayer, raw)
	}
	return engine.PlayerID(n), nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.WithFields(log.Fields{"session": session.ID, "config": session.ConfigName}).Info("match created")
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.JoinSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if session.Grant != nil {
		log.WithFields(log.Fields{"session": sessionID, "player": session.Grant.Player}).Info("seat claimed")
	}
	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, session.GameState)
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Query Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	player, err := parsePlayer(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	moves, err := s.service.LegalMoves(r.Context(), mux.Vars(r)["id"], player)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player": player,
		"moves":  moves,
	})
}

func (s *Server) handleLegalWalls(w http.ResponseWriter, r *http.Request) {
	slots, err := s.service.LegalWalls(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// ?valid=true drops the slots that would be rejected
	if r.URL.Query().Get("valid") == "true" {
		kept := slots[:0]
		for _, slot := range slots {
			if slot.Valid {
				kept = append(kept, slot)
			}
		}
		slots = kept
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(slots),
		"walls": slots,
	})
}

func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	player, err := parsePlayer(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	path, err := s.service.ShortestPath(r.Context(), mux.Vars(r)["id"], player)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player": player,
		"length": len(path),
		"path":   path,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Command Handlers

type seatRequest struct {
	Player engine.PlayerID `json:"player"`
	Token  string          `json:"token,omitempty"`
}

func (req seatRequest) seat() service.Seat {
	return service.Seat{Player: req.Player, Token: req.Token}
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		seatRequest
		Row int `json:"row"`
		Col int `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Move(r.Context(), sessionID, service.MoveCommand{
		Seat: req.seat(),
		To:   engine.Coord{Row: req.Row, Col: req.Col},
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publish(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleWall(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		seatRequest
		Row         int                `json:"row"`
		Col         int                `json:"col"`
		Orientation engine.Orientation `json:"orientation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Orientation == "" {
		req.Orientation = engine.Horizontal
	}
	if !req.Orientation.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("orientation must be %q or %q", engine.Horizontal, engine.Vertical))
		return
	}

	result, err := s.service.PlaceWall(r.Context(), sessionID, service.WallCommand{
		Seat: req.seat(),
		Wall: engine.Wall{Row: req.Row, Col: req.Col, Orientation: req.Orientation},
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publish(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleToggleMode(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req seatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.ToggleMode(r.Context(), sessionID, req.seat())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
	respondJSON(w, http.StatusOK, state)
}

// handleRemote plays an event forwarded from a peer engine. The server's match
// decides, so it can be rejected like any move or wall.
func (s *Server) handleRemote(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		seatRequest
		Event json.RawMessage `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Event) == 0 {
		respondError(w, http.StatusBadRequest, "event is required")
		return
	}
	var ev engine.SyncEvent
	if err := json.Unmarshal(req.Event, &ev); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.ApplyRemote(r.Context(), sessionID, service.RemoteCommand{
		Seat:  req.seat(),
		Event: ev,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publish(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

// publish logs a command outcome and broadcasts accepted events
func (s *Server) publish(sessionID string, result *service.CommandResult) {
	entry := log.WithFields(log.Fields{
		"session": sessionID,
		"player":  result.Player,
	})
	if !result.Accepted {
		entry.WithField("reason", result.Reason).Info("command rejected")
		return
	}
	entry.WithField("event", result.Event.Type).Info(result.Message)

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, result.Player, result.Event, result.GameState)
	}
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	gameConfig, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, gameConfig)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.GameConfig
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.Name), " ", "-"))
	}

	gameConfig := req.GameConfig
	if err := s.service.SaveConfig(r.Context(), configID, &gameConfig); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusServiceUnavailable)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	// player is optional; spectators connect without one
	var player engine.PlayerID
	if raw := r.URL.Query().Get("player"); raw != "" {
		p, err := parsePlayer(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		player = p
	}

	s.hub.ServeWS(w, r, sessionID, player)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
