// Package api provides the HTTP REST API for Corridor matches.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a match and claim seat 1 ({"config_id": "classic"})
//   - GET /api/sessions - List matches (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a match
//   - DELETE /api/sessions/{id} - Delete a match
//   - POST /api/sessions/{id}/join - Claim seat 2
//
// Queries:
//   - GET /api/sessions/{id}/state - Full game state
//   - GET /api/sessions/{id}/moves?player=N - Legal pawn destinations
//   - GET /api/sessions/{id}/walls[?valid=true] - Wall slots and their validity
//   - GET /api/sessions/{id}/path?player=N - A shortest route to the goal row
//   - GET /api/sessions/{id}/history?page&limit&order - Paginated event history
//
// Commands (the body always carries "player" and, for a claimed seat, "token"):
//   - POST /api/sessions/{id}/move - {"row": r, "col": c}
//   - POST /api/sessions/{id}/wall - {"row": r, "col": c, "orientation": "horizontal"}
//   - POST /api/sessions/{id}/mode - Toggle move/wall mode
//   - POST /api/sessions/{id}/remote - {"event": {...}} play a peer engine's event, checked like /move and /wall
//
// Configuration:
//   - GET /api/configs, GET /api/configs/{name}, POST /api/configs
//
// Other:
//   - GET /ws?session={id}[&player=N] - WebSocket feed
//   - GET /health
//
// A rejected move or wall is not an HTTP error: the response is 200 with
// "accepted": false and a "reason" code such as "not_your_turn". HTTP errors
// are reserved for bad requests:
//
//	{"error": "invalid seat token for player 1"}
//
// Accepted move and wall commands are broadcast to the match's websocket
// clients as "event" messages. Remote events are not, since the peer that
// produced them already relayed them.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
