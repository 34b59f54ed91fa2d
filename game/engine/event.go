package engine

import (
	"encoding/json"
	"fmt"
)

// EventType tags a SyncEvent
type EventType string

const (
	EventMove EventType = "move"
	EventWall EventType = "wall"
)

// SyncEvent is the wire record of an accepted command. On the wire it is
// {"type":"move","value":{"row":r,"col":c}} or
// {"type":"wall","value":{"row":r,"col":c,"orientation":"horizontal"}}.
type SyncEvent struct {
	Type EventType
	To   Coord
	Wall Wall
}

// MoveEvent builds a move event
func MoveEvent(to Coord) SyncEvent {
	return SyncEvent{Type: EventMove, To: to}
}

// WallEvent builds a wall event
func WallEvent(w Wall) SyncEvent {
	return SyncEvent{Type: EventWall, Wall: w}
}

type wireEvent struct {
	Type  EventType       `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (e SyncEvent) MarshalJSON() ([]byte, error) {
	var value any
	switch e.Type {
	case EventMove:
		value = e.To
	case EventWall:
		value = e.Wall
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEvent{Type: e.Type, Value: raw})
}

func (e *SyncEvent) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if len(w.Value) == 0 {
		return fmt.Errorf("%w: missing value", ErrMalformedEvent)
	}
	switch w.Type {
	case EventMove:
		var c Coord
		if err := json.Unmarshal(w.Value, &c); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		*e = MoveEvent(c)
	case EventWall:
		var wall Wall
		if err := json.Unmarshal(w.Value, &wall); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		if !wall.Orientation.Valid() {
			return fmt.Errorf("%w: orientation %q", ErrMalformedEvent, wall.Orientation)
		}
		*e = WallEvent(wall)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, w.Type)
	}
	return nil
}
