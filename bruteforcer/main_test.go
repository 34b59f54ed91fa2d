package main

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wricardo/corridor/api"
	"github.com/wricardo/corridor/game/config"
	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/service"
	"github.com/wricardo/corridor/game/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	configManager, err := config.NewManager("../configs")
	if err != nil {
		t.Fatalf("config.NewManager: %v", err)
	}
	sessions := session.NewManager()
	srv := httptest.NewServer(api.NewServer(service.NewGameService(sessions, configManager), nil))
	t.Cleanup(srv.Close)
	return srv, sessions
}

func TestClient_Errors(t *testing.T) {
	srv, _ := newTestServer(t)
	client := NewClient(srv.URL)

	if _, err := client.CreateSession("no-such-board"); err == nil || !strings.Contains(err.Error(), "not available") {
		t.Errorf("Expected unknown config error, got %v", err)
	}
	if _, err := client.State("ffff"); err == nil || !strings.Contains(err.Error(), "session not found") {
		t.Errorf("Expected session not found, got %v", err)
	}

	plain := httptest.NewServer(http.NotFoundHandler())
	defer plain.Close()
	if err := NewClient(plain.URL).DeleteSession("abcd"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestClient_OpeningMove(t *testing.T) {
	srv, _ := newTestServer(t)
	client := NewClient(srv.URL)

	info, err := client.CreateSession("quick")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if info.Grant == nil || info.Grant.Player != engine.Player1 {
		t.Fatalf("Expected seat 1 grant, got %+v", info.Grant)
	}

	moves, err := client.LegalMoves(info.ID, engine.Player1)
	if err != nil {
		t.Fatalf("LegalMoves: %v", err)
	}
	if len(moves) != 3 {
		t.Errorf("Expected 3 opening moves, got %v", moves)
	}

	result, err := client.Move(info.ID, *info.Grant, engine.Coord{Row: 2, Col: 4})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !result.Accepted || result.GameState.Turn != engine.Player2 {
		t.Errorf("Expected accepted move handing the turn over, got %+v", result)
	}

	result, err = client.Wall(info.ID, *info.Grant, engine.Wall{Row: 1, Col: 0, Orientation: engine.Horizontal})
	if err != nil {
		t.Fatalf("Wall: %v", err)
	}
	if result.Accepted || result.Reason != "not_your_turn" {
		t.Errorf("Expected not_your_turn rejection, got %+v", result)
	}

	if err := client.DeleteSession(info.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
}

func TestChecker_CheckWalls(t *testing.T) {
	srv, sessions := newTestServer(t)

	report, err := NewChecker(NewClient(srv.URL), "quick").CheckWalls()
	if err != nil {
		t.Fatalf("CheckWalls: %v", err)
	}
	if report.Checked != 9*9*2 {
		t.Errorf("Expected %d probes, got %d", 9*9*2, report.Checked)
	}
	if len(report.Mismatches) != 0 {
		t.Errorf("Expected no mismatches, got %v", report.Mismatches)
	}
	if n := sessions.Count(); n != 0 {
		t.Errorf("Expected scratch matches to be deleted, %d left", n)
	}
}

func TestChecker_CheckMoves(t *testing.T) {
	srv, sessions := newTestServer(t)

	report, err := NewChecker(NewClient(srv.URL), "quick").CheckMoves()
	if err != nil {
		t.Fatalf("CheckMoves: %v", err)
	}
	if report.Checked != 81 {
		t.Errorf("Expected 81 probes, got %d", report.Checked)
	}
	if len(report.Mismatches) != 0 {
		t.Errorf("Expected no mismatches, got %v", report.Mismatches)
	}
	if n := sessions.Count(); n != 0 {
		t.Errorf("Expected scratch matches to be deleted, %d left", n)
	}
}

func TestChecker_UnknownConfig(t *testing.T) {
	srv, _ := newTestServer(t)
	checker := NewChecker(NewClient(srv.URL), "no-such-board")

	if _, err := checker.CheckWalls(); err == nil {
		t.Error("Expected CheckWalls to fail for an unknown config")
	}
	if _, err := checker.CheckMoves(); err == nil {
		t.Error("Expected CheckMoves to fail for an unknown config")
	}
}

func TestChecker_Playout(t *testing.T) {
	srv, _ := newTestServer(t)
	checker := NewChecker(NewClient(srv.URL), "quick")

	tests := []struct {
		name     string
		seed     int64
		wallRate float64
	}{
		{"moves only", 1, 0},
		{"some walls", 2, 0.3},
		{"walls first", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := checker.Playout(rand.New(rand.NewSource(tt.seed)), 400, tt.wallRate)
			if err != nil {
				t.Fatalf("Playout: %v", err)
			}
			if result.Turns > 400 {
				t.Errorf("Expected at most 400 turns, got %d", result.Turns)
			}
			if result.Winner != 0 && !result.Winner.Valid() {
				t.Errorf("Unexpected winner %d", result.Winner)
			}
		})
	}
}

func TestMismatch_String(t *testing.T) {
	m := Mismatch{Action: "move to (2,4)", Expected: true, Accepted: false, Reason: "not_adjacent_or_jump"}
	want := "move to (2,4): expected accepted=true, got accepted=false (not_adjacent_or_jump)"
	if got := m.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
