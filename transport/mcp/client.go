package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Corridor",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Corridor - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two pawns race to the opposite side of the board. Player 1 starts on row 0
and wins on the last row; player 2 does the reverse. On your turn either move
your pawn or place a wall. A wall may never cut a player off from its goal.

AVAILABLE TOOLS:
- create_session / join_session: start a match or take the second seat
- list_sessions, get_session: inspect matches
- game_state: board, turn and walls left
- legal_moves, legal_walls, shortest_path: rule queries
- move, place_wall: play a turn (needs your seat token)
- toggle_mode: switch between move and wall mode
- apply_remote: forward an event from your peer engine; it is checked like move/place_wall
- move_history, list_configs, game_instructions

Keep the token returned by create_session or join_session; every command for
your seat must carry it.`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": "Session ID"}
}

func playerProp() map[string]interface{} {
	return map[string]interface{}{"type": "integer", "enum": []int{1, 2}, "description": "Your seat (1 or 2)"}
}

func tokenProp() map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": "Seat token from create_session or join_session"}
}

func slotProp(what string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": what + " on the slot grid (cells sit on even coordinates)"}
}

func orientationProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{string(engine.Horizontal), string(engine.Vertical)},
		"description": "Wall orientation",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new match and take seat 1. Returns the seat token.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Board configuration to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_session",
		Description: "Take the open seat of an existing match. Returns the seat token.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleJoinSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active matches",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific match",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Queries
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board, whose turn it is and walls left",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List the cells a player's pawn can move to, including jumps",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player":     playerProp(),
			},
			Required: []string{"session_id", "player"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_walls",
		Description: "List wall placements and whether each would be accepted",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"valid_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only list placements that would be accepted",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleLegalWalls)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "shortest_path",
		Description: "Show a shortest route from a player's pawn to its goal row",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player":     playerProp(),
			},
			Required: []string{"session_id", "player"},
		},
	}, c.handleShortestPath)

	// Commands
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move your pawn to a cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player":     playerProp(),
				"token":      tokenProp(),
				"row":        slotProp("Destination row"),
				"col":        slotProp("Destination column"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
			},
			Required: []string{"session_id", "player", "row", "col"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_wall",
		Description: "Place a wall anchored at an edge slot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id":  sessionProp(),
				"player":      playerProp(),
				"token":       tokenProp(),
				"row":         slotProp("Anchor row"),
				"col":         slotProp("Anchor column"),
				"orientation": orientationProp(),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this wall",
				},
			},
			Required: []string{"session_id", "player", "row", "col", "orientation"},
		},
	}, c.handlePlaceWall)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_mode",
		Description: "Switch your seat between move mode and wall mode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player":     playerProp(),
				"token":      tokenProp(),
			},
			Required: []string{"session_id", "player"},
		},
	}, c.handleToggleMode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "apply_remote",
		Description: "Forward an event from your peer engine. The server checks it like move or place_wall",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player":     playerProp(),
				"token":      tokenProp(),
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.EventMove), string(engine.EventWall)},
					"description": "Event type",
				},
				"row":         slotProp("Event row"),
				"col":         slotProp("Event column"),
				"orientation": orientationProp(),
			},
			Required: []string{"session_id", "player", "type", "row", "col"},
		},
	}, c.handleApplyRemote)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the event history of a match",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"page":       map[string]interface{}{"type": "integer", "description": "Page number"},
				"limit":      map[string]interface{}{"type": "integer", "description": "Items per page"},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules and coordinate system",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a JSON number. ok is false when the key is missing.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// seatBody reads player and token into a request body
func seatBody(args map[string]interface{}) (map[string]interface{}, error) {
	player, ok := intArg(args, "player")
	if !ok || !engine.PlayerID(player).Valid() {
		return nil, fmt.Errorf("player must be 1 or 2")
	}
	return map[string]interface{}{
		"player": player,
		"token":  stringArg(args, "token"),
	}, nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Session handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleJoinSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall("POST", sessionPath(sessionID, "/join"), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionList(response.Sessions)), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

// Query handlers

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var state engine.GameState
	if err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	player, _ := intArg(args, "player")

	var response struct {
		Moves []engine.Coord `json:"moves"`
	}
	path := sessionPath(stringArg(args, "session_id"), fmt.Sprintf("/moves?player=%d", player))
	if err := c.apiCall("GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCoords(fmt.Sprintf("Legal moves for player %d", player), response.Moves)), nil
}

func (c *Client) handleLegalWalls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	validOnly, _ := args["valid_only"].(bool)

	suffix := "/walls"
	if validOnly {
		suffix += "?valid=true"
	}

	var response struct {
		Count int               `json:"count"`
		Walls []engine.WallSlot `json:"walls"`
	}
	if err := c.apiCall("GET", sessionPath(stringArg(args, "session_id"), suffix), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatWallSlots(response.Walls)), nil
}

func (c *Client) handleShortestPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	player, _ := intArg(args, "player")

	var response struct {
		Path []engine.Coord `json:"path"`
	}
	path := sessionPath(stringArg(args, "session_id"), fmt.Sprintf("/path?player=%d", player))
	if err := c.apiCall("GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(response.Path) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Player %d has no route to its goal row", player)), nil
	}
	title := fmt.Sprintf("Shortest path for player %d (%d steps)", player, len(response.Path)-1)
	return mcp.NewToolResultText(formatCoords(title, response.Path)), nil
}

// Command handlers

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body, err := seatBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body["row"], _ = intArg(args, "row")
	body["col"], _ = intArg(args, "col")

	var result service.CommandResult
	if err := c.apiCall("POST", sessionPath(stringArg(args, "session_id"), "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handlePlaceWall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body, err := seatBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body["row"], _ = intArg(args, "row")
	body["col"], _ = intArg(args, "col")
	body["orientation"] = stringArg(args, "orientation")

	var result service.CommandResult
	if err := c.apiCall("POST", sessionPath(stringArg(args, "session_id"), "/wall"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleToggleMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body, err := seatBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall("POST", sessionPath(stringArg(args, "session_id"), "/mode"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	player := body["player"].(int)
	mode := state.Players[player-1].Mode
	return mcp.NewToolResultText(fmt.Sprintf("Player %d is now in %s mode", player, mode)), nil
}

func (c *Client) handleApplyRemote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body, err := seatBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	row, _ := intArg(args, "row")
	col, _ := intArg(args, "col")
	var ev engine.SyncEvent
	switch engine.EventType(stringArg(args, "type")) {
	case engine.EventMove:
		ev = engine.MoveEvent(engine.Coord{Row: row, Col: col})
	case engine.EventWall:
		ev = engine.WallEvent(engine.Wall{Row: row, Col: col, Orientation: engine.Orientation(stringArg(args, "orientation"))})
	default:
		return mcp.NewToolResultError(fmt.Sprintf("type must be %q or %q", engine.EventMove, engine.EventWall)), nil
	}
	body["event"] = ev

	var result service.CommandResult
	if err := c.apiCall("POST", sessionPath(stringArg(args, "session_id"), "/remote"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	suffix := "/history"
	if len(params) > 0 {
		suffix += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", sessionPath(stringArg(args, "session_id"), suffix), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatConfigs(configs)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Corridor - Rules

BOARD:
An S x S board of cells is addressed on a (2S-1) x (2S-1) slot grid. Cells sit
on even/even slots, so on the classic 9x9 board cells run from (0,0) to (16,16).
Slots with exactly one odd coordinate are edges between two cells; odd/odd
slots are intersections.

START AND GOAL:
- Player 1 starts at the top middle cell (row 0) and wins on reaching the last row.
- Player 2 starts at the bottom middle cell and wins on reaching row 0.
- Player 1 moves first; turns alternate.

MOVING:
- Step to an orthogonally adjacent cell if no wall closes the edge between.
- If the opponent is on that cell you jump over it to the cell behind.
- If the cell behind is off the board or walled off, you may step to either
  side of the opponent instead.

WALLS:
- A wall covers three slots: an edge, the intersection after it and the next
  edge. Horizontal walls are anchored on (odd row, even col); vertical walls
  on (even row, odd col).
- Walls may not overlap or cross another wall.
- A wall that would leave either player with no route to its goal row is
  rejected. Use legal_walls to see which placements are accepted.
- Each player has a limited number of walls (see game_state).

REJECTIONS:
A refused command leaves the game untouched and reports one of:
not_your_turn, out_of_bounds, slot_already_blocked, wall_inventory_exhausted,
no_legal_path, not_adjacent_or_jump.

TIPS:
- shortest_path shows both races at a glance; a wall is worth placing when it
  lengthens the opponent's path more than it costs you a turn.
- Keep your token. Without it commands for your claimed seat are refused.`
