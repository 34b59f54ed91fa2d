// Package engine provides the rules of Corridor, a two-player wall-blocking race.
//
// The board is an S x S grid of cells stored as a (2S-1) x (2S-1) slot grid:
//   - even row, even column: a cell a pawn can stand on
//   - exactly one odd coordinate: an edge between two cells
//   - odd row, odd column: an intersection between four cells
//
// A wall covers two consecutive edges and the intersection between them.
// Cells live in a flat arena and refer to their neighbors by index, so a
// hypothetical board for a wall check is a plain copy (Grid.CloneWith).
//
// Core Types:
//
// Game is the turn state machine and implements Engine. Grid holds slot
// state and adjacency. Pathfinder runs A* with generation-stamped scratch
// arrays. SyncEvent is the wire record exchanged between peers.
//
// Usage:
//
//	game, err := engine.NewGame(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ev, err := game.RequestMove(engine.Player1, engine.Coord{Row: 2, Col: 8})
//	if errors.Is(err, engine.ErrNotAdjacentOrJump) {
//		// rejected, state unchanged
//	}
//
//	// on the other peer
//	other.ApplyRemote(engine.Player1, *ev)
//
// Game Rules:
//
// Player 1 starts on row 0 and races to row 2S-2; player 2 does the opposite.
// On a turn a player either steps to an adjacent cell, jumping the opponent
// when they block the way, or places a wall. A wall is legal only if both
// players keep a path to their goal rows. Each player holds a limited wall
// inventory. Request commands validate and emit an event; ApplyRemote trusts
// an event from the peer and emits nothing.
package engine
