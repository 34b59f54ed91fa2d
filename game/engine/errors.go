package engine

import (
	"errors"
	"fmt"
)

// Rejection reasons. Commands wrap them in a *RejectionError; match with errors.Is.
var (
	ErrNotYourTurn            = errors.New("not your turn")
	ErrOutOfBounds            = errors.New("out of bounds")
	ErrSlotAlreadyBlocked     = errors.New("slot already blocked")
	ErrWallInventoryExhausted = errors.New("wall inventory exhausted")
	ErrNoLegalPath            = errors.New("wall would leave a player without a path")
	ErrNotAdjacentOrJump      = errors.New("destination is not an adjacent or jump cell")
)

// Structural errors returned by ApplyRemote and event decoding
var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrMalformedEvent = errors.New("malformed event")
	ErrInvalidPlayer  = errors.New("invalid player")
)

var rejectionCodes = map[error]string{
	ErrNotYourTurn:            "not_your_turn",
	ErrOutOfBounds:            "out_of_bounds",
	ErrSlotAlreadyBlocked:     "slot_already_blocked",
	ErrWallInventoryExhausted: "wall_inventory_exhausted",
	ErrNoLegalPath:            "no_legal_path",
	ErrNotAdjacentOrJump:      "not_adjacent_or_jump",
}

// RejectionError is returned when a command is refused. Game state is unchanged.
type RejectionError struct {
	Code   string
	Player PlayerID
	Err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("player %d: %v", e.Player, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

func reject(p PlayerID, err error) *RejectionError {
	return &RejectionError{Code: rejectionCodes[err], Player: p, Err: err}
}

// RejectionCode returns the stable code for a rejection, or "" if err is not one
func RejectionCode(err error) string {
	var re *RejectionError
	if errors.As(err, &re) {
		return re.Code
	}
	for sentinel, code := range rejectionCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}
