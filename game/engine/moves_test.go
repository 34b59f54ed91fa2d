package engine

import (
	"reflect"
	"testing"
)

func TestLegalMoves(t *testing.T) {
	tests := []struct {
		name     string
		walls    []Wall
		mover    Coord
		opponent Coord
		want     []Coord
	}{
		{
			name:     "opening position",
			mover:    Coord{0, 8},
			opponent: Coord{16, 8},
			want:     []Coord{{0, 10}, {2, 8}, {0, 6}},
		},
		{
			name:     "straight jump",
			mover:    Coord{6, 8},
			opponent: Coord{8, 8},
			want:     []Coord{{4, 8}, {6, 10}, {10, 8}, {6, 6}},
		},
		{
			name:     "wall behind opponent gives sidesteps",
			walls:    []Wall{{Row: 9, Col: 8, Orientation: Horizontal}},
			mover:    Coord{6, 8},
			opponent: Coord{8, 8},
			want:     []Coord{{4, 8}, {6, 10}, {8, 6}, {8, 10}, {6, 6}},
		},
		{
			name:     "board edge behind opponent gives sidesteps",
			mover:    Coord{14, 8},
			opponent: Coord{16, 8},
			want:     []Coord{{12, 8}, {14, 10}, {16, 6}, {16, 10}, {14, 6}},
		},
		{
			name: "closed sidestep is not offered",
			walls: []Wall{
				{Row: 9, Col: 8, Orientation: Horizontal},
				{Row: 8, Col: 9, Orientation: Vertical},
			},
			mover:    Coord{6, 8},
			opponent: Coord{8, 8},
			want:     []Coord{{4, 8}, {6, 10}, {8, 6}, {6, 6}},
		},
		{
			name:     "wall between players blocks the jump",
			walls:    []Wall{{Row: 7, Col: 8, Orientation: Horizontal}},
			mover:    Coord{6, 8},
			opponent: Coord{8, 8},
			want:     []Coord{{4, 8}, {6, 10}, {6, 6}},
		},
		{
			name:     "corner",
			mover:    Coord{0, 0},
			opponent: Coord{16, 16},
			want:     []Coord{{0, 2}, {2, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGrid(t, 9)
			for _, w := range tt.walls {
				g.Block(w)
			}
			got := LegalMoves(g, tt.mover, tt.opponent)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LegalMoves = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLegalMoves_JumpExcludesDiagonals(t *testing.T) {
	g := mustGrid(t, 9)
	mover, opponent := Coord{6, 8}, Coord{8, 8}

	if !IsLegalMove(g, mover, opponent, Coord{10, 8}) {
		t.Error("straight jump should be legal")
	}
	for _, diag := range []Coord{{8, 6}, {8, 10}} {
		if IsLegalMove(g, mover, opponent, diag) {
			t.Errorf("diagonal %s should not be legal while the straight jump is open", diag)
		}
	}
	if IsLegalMove(g, mover, opponent, opponent) {
		t.Error("the opponent's cell is never a destination")
	}

	g.Block(Wall{Row: 9, Col: 6, Orientation: Horizontal})
	if IsLegalMove(g, mover, opponent, Coord{10, 8}) {
		t.Error("straight jump should be closed by the wall")
	}
	for _, diag := range []Coord{{8, 6}, {8, 10}} {
		if !IsLegalMove(g, mover, opponent, diag) {
			t.Errorf("diagonal %s should be legal once the jump is blocked", diag)
		}
	}
}
