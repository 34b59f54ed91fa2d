package main

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/service"
)

// Mismatch is a probe whose outcome disagreed with the server's own listing
type Mismatch struct {
	Action   string
	Expected bool
	Accepted bool
	Reason   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected accepted=%v, got accepted=%v (%s)", m.Action, m.Expected, m.Accepted, m.Reason)
}

// Report summarizes a brute-force pass
type Report struct {
	Checked    int
	Mismatches []Mismatch
}

// Checker probes a server's rules by trying every slot on throwaway matches
type Checker struct {
	client   *Client
	configID string
}

func NewChecker(client *Client, configID string) *Checker {
	return &Checker{client: client, configID: configID}
}

// scratch creates a match in its opening position. Seat 1 is to move.
func (c *Checker) scratch() (string, service.SeatGrant, error) {
	info, err := c.client.CreateSession(c.configID)
	if err != nil {
		return "", service.SeatGrant{}, err
	}
	if info.Grant == nil {
		return "", service.SeatGrant{}, fmt.Errorf("session %s: no seat granted", info.ID)
	}
	return info.ID, *info.Grant, nil
}

func (c *Checker) discard(id string) {
	if err := c.client.DeleteSession(id); err != nil {
		log.WithField("session", id).Warnf("failed to delete scratch match: %v", err)
	}
}

// probe runs one command on a fresh match and records it against expected
func (c *Checker) probe(report *Report, action string, expected bool, run func(id string, grant service.SeatGrant) (*service.CommandResult, error)) error {
	id, grant, err := c.scratch()
	if err != nil {
		return err
	}
	defer c.discard(id)

	result, err := run(id, grant)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	report.Checked++
	if result.Accepted != expected {
		m := Mismatch{Action: action, Expected: expected, Accepted: result.Accepted, Reason: result.Reason}
		log.Warn(m.String())
		report.Mismatches = append(report.Mismatches, m)
	}
	return nil
}

// CheckWalls places every (row, col, orientation) combination as the opening
// move and compares the verdict with the slot list the server advertises.
func (c *Checker) CheckWalls() (*Report, error) {
	id, _, err := c.scratch()
	if err != nil {
		return nil, err
	}
	state, err := c.client.State(id)
	if err != nil {
		c.discard(id)
		return nil, err
	}
	slots, err := c.client.WallSlots(id, false)
	c.discard(id)
	if err != nil {
		return nil, err
	}

	listed := make(map[engine.Wall]bool, len(slots))
	for _, s := range slots {
		listed[s.Wall()] = s.Valid
	}

	report := &Report{}
	dim := 2*state.BoardSize - 1
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			for _, o := range []engine.Orientation{engine.Horizontal, engine.Vertical} {
				w := engine.Wall{Row: row, Col: col, Orientation: o}
				action := fmt.Sprintf("%s wall at (%d,%d)", o, row, col)
				err := c.probe(report, action, listed[w], func(id string, grant service.SeatGrant) (*service.CommandResult, error) {
					return c.client.Wall(id, grant, w)
				})
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return report, nil
}

// CheckMoves tries player 1's opening move to every slot of the board and
// compares the verdict with the server's legal move list.
func (c *Checker) CheckMoves() (*Report, error) {
	id, _, err := c.scratch()
	if err != nil {
		return nil, err
	}
	state, err := c.client.State(id)
	if err != nil {
		c.discard(id)
		return nil, err
	}
	moves, err := c.client.LegalMoves(id, engine.Player1)
	c.discard(id)
	if err != nil {
		return nil, err
	}

	legal := make(map[engine.Coord]bool, len(moves))
	for _, m := range moves {
		legal[m] = true
	}

	report := &Report{}
	dim := 2*state.BoardSize - 1
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			to := engine.Coord{Row: row, Col: col}
			err := c.probe(report, "move to "+to.String(), legal[to], func(id string, grant service.SeatGrant) (*service.CommandResult, error) {
				return c.client.Move(id, grant, to)
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return report, nil
}

// PlayoutResult describes one random match
type PlayoutResult struct {
	SessionID string
	Winner    engine.PlayerID
	Turns     int
}

// Playout plays both seats with uniformly random legal actions. Every action
// comes from the server's own listings, so any rejection is a rules bug.
func (c *Checker) Playout(rng *rand.Rand, maxTurns int, wallRate float64) (*PlayoutResult, error) {
	created, err := c.client.CreateSession(c.configID)
	if err != nil {
		return nil, err
	}
	joined, err := c.client.JoinSession(created.ID)
	if err != nil {
		return nil, err
	}
	grants := map[engine.PlayerID]service.SeatGrant{
		created.Grant.Player: *created.Grant,
		joined.Grant.Player:  *joined.Grant,
	}

	result := &PlayoutResult{SessionID: created.ID}
	for result.Turns < maxTurns {
		state, err := c.client.State(created.ID)
		if err != nil {
			return nil, err
		}
		if state.GameOver {
			result.Winner = state.Winner
			return result, nil
		}

		p := state.Turn
		var walls []engine.WallSlot
		if len(state.Players[p-1].WallsPlaced) < state.WallsPerPlayer {
			if walls, err = c.client.WallSlots(created.ID, true); err != nil {
				return nil, err
			}
		}

		var cmd *service.CommandResult
		var action string
		if len(walls) > 0 && rng.Float64() < wallRate {
			w := walls[rng.Intn(len(walls))].Wall()
			action = fmt.Sprintf("player %d %s wall at (%d,%d)", p, w.Orientation, w.Row, w.Col)
			cmd, err = c.client.Wall(created.ID, grants[p], w)
		} else {
			moves, lerr := c.client.LegalMoves(created.ID, p)
			if lerr != nil {
				return nil, lerr
			}
			if len(moves) == 0 {
				return nil, fmt.Errorf("turn %d: player %d has no legal move", result.Turns, p)
			}
			to := moves[rng.Intn(len(moves))]
			action = fmt.Sprintf("player %d move to %s", p, to)
			cmd, err = c.client.Move(created.ID, grants[p], to)
		}
		if err != nil {
			return nil, err
		}
		if !cmd.Accepted {
			return nil, fmt.Errorf("turn %d: listed action rejected: %s (%s)", result.Turns, action, cmd.Reason)
		}

		result.Turns++
		log.WithFields(log.Fields{"turn": result.Turns, "session": created.ID}).Debug(action)
	}

	return result, nil
}
