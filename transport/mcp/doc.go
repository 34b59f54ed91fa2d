// Package mcp exposes Corridor to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API and the JSON reply is rendered as text, including an ASCII view of the
// slot grid.
//
// Tools:
//   - create_session, join_session, list_sessions, get_session
//   - game_state, legal_moves, legal_walls, shortest_path, move_history
//   - move, place_wall, toggle_mode, apply_remote
//   - list_configs, game_instructions
//
// Commands for a claimed seat need the token handed out by create_session
// or join_session.
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
