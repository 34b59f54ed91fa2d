package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/service"
)

func formatSessionInfo(session *service.SessionInfo) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Session: %s\n", session.ID))
	sb.WriteString(fmt.Sprintf("Config: %s\n", session.ConfigName))
	sb.WriteString(fmt.Sprintf("Created: %s\n", session.CreatedAt.Format(time.RFC3339)))

	for _, seat := range session.Seats {
		status := "open"
		if seat.Claimed {
			status = "taken"
		}
		sb.WriteString(fmt.Sprintf("Seat %d: %s\n", seat.Player, status))
	}

	if session.Grant != nil {
		sb.WriteString(fmt.Sprintf("\nYou are player %d. Token: %s\n", session.Grant.Player, session.Grant.Token))
		sb.WriteString("Pass this token with every move, wall and mode command.\n")
	}

	if session.GameState != nil {
		sb.WriteString("\n")
		sb.WriteString(formatGameState(session.GameState))
	}

	return sb.String()
}

func formatSessionList(sessions []service.SessionInfo) string {
	if len(sessions) == 0 {
		return "No active sessions"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Active sessions (%d):\n", len(sessions)))
	for _, s := range sessions {
		open := 0
		for _, seat := range s.Seats {
			if !seat.Claimed {
				open++
			}
		}
		status := "in progress"
		if s.GameState != nil && s.GameState.GameOver {
			status = fmt.Sprintf("won by player %d", s.GameState.Winner)
		}
		sb.WriteString(fmt.Sprintf("- %s [%s] %s, open seats: %d\n", s.ID, s.ConfigName, status, open))
	}
	return sb.String()
}

func formatGameState(state *engine.GameState) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Board %dx%d (%s)\n", state.BoardSize, state.BoardSize, state.ConfigName))
	sb.WriteString(formatBoard(state))
	sb.WriteString("\n")

	for i, p := range state.Players {
		left := state.WallsPerPlayer - len(p.WallsPlaced)
		sb.WriteString(fmt.Sprintf("Player %d: %s, walls left %d/%d, mode %s\n",
			i+1, p.Position(), left, state.WallsPerPlayer, p.Mode))
	}
	sb.WriteString(fmt.Sprintf("Moves played: %d\n", state.TotalMoves))

	if state.GameOver {
		sb.WriteString(fmt.Sprintf("\nGAME OVER - player %d wins\n", state.Winner))
	} else {
		sb.WriteString(fmt.Sprintf("Turn: player %d\n", state.Turn))
	}

	return sb.String()
}

// formatBoard draws the slot grid: pawns as 1 and 2, cells as '.',
// closed edges as '-' or '|' and closed intersections as '+'.
func formatBoard(state *engine.GameState) string {
	dim := 2*state.BoardSize - 1
	if dim <= 0 {
		return ""
	}

	blocked := make(map[engine.Coord]bool, len(state.BlockedSlots))
	for _, c := range state.BlockedSlots {
		blocked[c] = true
	}
	pawns := map[engine.Coord]byte{
		state.Players[0].Position(): '1',
		state.Players[1].Position(): '2',
	}

	var sb strings.Builder
	sb.WriteString("    ")
	for col := 0; col < dim; col++ {
		sb.WriteByte(byte('0' + col%10))
	}
	sb.WriteString("\n")

	for row := 0; row < dim; row++ {
		sb.WriteString(fmt.Sprintf("%3d ", row))
		for col := 0; col < dim; col++ {
			c := engine.Coord{Row: row, Col: col}
			sb.WriteByte(slotGlyph(c, blocked[c], pawns))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func slotGlyph(c engine.Coord, closed bool, pawns map[engine.Coord]byte) byte {
	switch {
	case c.IsCell():
		if p, ok := pawns[c]; ok {
			return p
		}
		return '.'
	case !closed:
		return ' '
	case c.Row%2 == 1 && c.Col%2 == 1:
		return '+'
	case c.Row%2 == 1:
		return '-'
	default:
		return '|'
	}
}

func formatCoords(title string, coords []engine.Coord) string {
	if len(coords) == 0 {
		return title + ": none"
	}
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s:\n%s", title, strings.Join(parts, " "))
}

func formatWallSlots(slots []engine.WallSlot) string {
	if len(slots) == 0 {
		return "No wall slots"
	}

	valid := 0
	for _, s := range slots {
		if s.Valid {
			valid++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Wall slots: %d (%d placeable)\n", len(slots), valid))
	for _, s := range slots {
		mark := "ok"
		if !s.Valid {
			mark = "rejected"
		}
		sb.WriteString(fmt.Sprintf("- (%d,%d) %s: %s\n", s.Row, s.Col, s.Orientation, mark))
	}
	return sb.String()
}

func formatEvent(ev engine.SyncEvent) string {
	if ev.Type == engine.EventWall {
		return fmt.Sprintf("%s wall at (%d,%d)", ev.Wall.Orientation, ev.Wall.Row, ev.Wall.Col)
	}
	return fmt.Sprintf("move to %s", ev.To)
}

func formatCommandResult(result *service.CommandResult) string {
	var sb strings.Builder

	if result.Accepted {
		sb.WriteString(fmt.Sprintf("Accepted: player %d", result.Player))
		if result.Event != nil {
			sb.WriteString(" " + formatEvent(*result.Event))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString(fmt.Sprintf("Rejected (%s): %s\n", result.Reason, result.Message))
	}

	if result.Winner != 0 {
		sb.WriteString(fmt.Sprintf("Player %d wins!\n", result.Winner))
	}

	if result.GameState != nil {
		sb.WriteString("\n")
		sb.WriteString(formatGameState(result.GameState))
	}

	return sb.String()
}

func formatHistory(history *service.HistoryResponse) string {
	if history.TotalMoves == 0 {
		return "No moves played yet"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("History: %d moves (page %d of %d)\n", history.TotalMoves, history.Page, history.TotalPages))
	for _, entry := range history.Moves {
		origin := ""
		if entry.Remote {
			origin = " [remote]"
		}
		sb.WriteString(fmt.Sprintf("%d. player %d %s%s\n", entry.MoveNumber, entry.Player, formatEvent(entry.Event), origin))
	}
	if history.HasNext {
		sb.WriteString(fmt.Sprintf("More on page %d\n", history.Page+1))
	}
	return sb.String()
}

func formatConfigs(configs []service.ConfigInfo) string {
	if len(configs) == 0 {
		return "No configurations available"
	}

	var sb strings.Builder
	sb.WriteString("Available configurations:\n")
	for _, c := range configs {
		sb.WriteString(fmt.Sprintf("- %s: %s (%dx%d, %d walls each)\n", c.ConfigID, c.Name, c.BoardSize, c.BoardSize, c.WallsPerPlayer))
		if c.Description != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", c.Description))
		}
	}
	return sb.String()
}
