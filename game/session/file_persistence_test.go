package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/corridor/game/config"
	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/service"
)

func newTestPersistence(t *testing.T) (*FilePersistence, *config.Manager) {
	t.Helper()

	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	persistence, err := NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, configManager
}

func newTestSession(t *testing.T, id string, cfg *engine.GameConfig) *service.Session {
	t.Helper()

	game, err := engine.NewGame(cfg)
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	return &service.Session{
		ID:             id,
		Game:           game,
		Config:         game.Config(),
		CreatedAt:      time.Now().Truncate(time.Second),
		LastAccessedAt: time.Now().Truncate(time.Second),
	}
}

func TestFilePersistence_SaveAndLoad(t *testing.T) {
	persistence, configManager := newTestPersistence(t)
	session := newTestSession(t, "test1", configManager.GetDefault())
	session.ConfigID = "classic"

	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if !persistence.Exists("test1") {
		t.Fatal("Session file should exist after save")
	}

	loaded, err := persistence.Load("test1")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded.ID != session.ID {
		t.Errorf("Expected ID %s, got %s", session.ID, loaded.ID)
	}
	if loaded.ConfigID != "classic" {
		t.Errorf("Expected config ID classic, got %s", loaded.ConfigID)
	}
	if loaded.Config.Name != session.Config.Name {
		t.Errorf("Expected config name %s, got %s", session.Config.Name, loaded.Config.Name)
	}
	if !loaded.CreatedAt.Equal(session.CreatedAt) {
		t.Errorf("Expected CreatedAt %v, got %v", session.CreatedAt, loaded.CreatedAt)
	}
}

func TestFilePersistence_ReplaysHistory(t *testing.T) {
	persistence, _ := newTestPersistence(t)
	cfg := &engine.GameConfig{Name: "Small", BoardSize: 5, WallsPerPlayer: 3}
	session := newTestSession(t, "replay", cfg)

	seat, token, _ := session.ClaimSeat()
	if seat != engine.Player1 {
		t.Fatalf("Expected first claim to be player 1, got %d", seat)
	}

	if _, err := session.Game.RequestMove(engine.Player1, engine.Coord{Row: 2, Col: 4}); err != nil {
		t.Fatalf("move rejected: %v", err)
	}
	if _, err := session.Game.RequestWall(engine.Player2, engine.Wall{Row: 1, Col: 0, Orientation: engine.Horizontal}); err != nil {
		t.Fatalf("wall rejected: %v", err)
	}
	if err := session.Game.ToggleMode(engine.Player1); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	loaded, err := persistence.Load("replay")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	want := session.Game.State()
	got := loaded.Game.State()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("restored state differs\n got: %+v\nwant: %+v", got, want)
	}
	if got.Players[0].Mode != engine.ModeWall {
		t.Errorf("Expected player 1 mode to survive reload, got %s", got.Players[0].Mode)
	}
	if loaded.Tokens[0] != token {
		t.Error("Expected seat token to survive reload")
	}
	if n := len(loaded.Game.History()); n != 2 {
		t.Errorf("Expected 2 history entries, got %d", n)
	}

	// The restored game keeps enforcing the rules.
	if _, err := loaded.Game.RequestMove(engine.Player2, engine.Coord{Row: 6, Col: 4}); !errors.Is(err, engine.ErrNotYourTurn) {
		t.Errorf("Expected not-your-turn after reload, got %v", err)
	}
}

func TestFilePersistence_FallsBackToNamedConfig(t *testing.T) {
	persistence, configManager := newTestPersistence(t)
	session := newTestSession(t, "named", configManager.GetDefault())
	session.ConfigID = "classic"
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	// Strip the embedded config so Load has to resolve it by name.
	path := filepath.Join(persistence.sessionsDir, "named.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	stripped := []byte(strings.Replace(string(raw), `"config": {`, `"unused": {`, 1))
	if err := os.WriteFile(path, stripped, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := persistence.Load("named")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded.Config.BoardSize != 9 {
		t.Errorf("Expected classic board size 9, got %d", loaded.Config.BoardSize)
	}
}

func TestFilePersistence_Errors(t *testing.T) {
	persistence, _ := newTestPersistence(t)

	t.Run("load missing", func(t *testing.T) {
		if _, err := persistence.Load("nope"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		if err := persistence.Delete("nope"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("save nil", func(t *testing.T) {
		if err := persistence.Save(nil); err == nil {
			t.Error("Expected error saving nil session")
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(persistence.sessionsDir, "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := persistence.Load("bad"); err == nil {
			t.Error("Expected error loading corrupt file")
		}
	})
}

func TestFilePersistence_ListAndDelete(t *testing.T) {
	persistence, configManager := newTestPersistence(t)

	for _, id := range []string{"a1", "b2", "c3"} {
		if err := persistence.Save(newTestSession(t, id, configManager.GetDefault())); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
	}
	os.WriteFile(filepath.Join(persistence.sessionsDir, "notes.txt"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(persistence.sessionsDir, "sub.json"), 0755)

	ids, err := persistence.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	sort.Strings(ids)
	if !reflect.DeepEqual(ids, []string{"a1", "b2", "c3"}) {
		t.Errorf("ListAll = %v", ids)
	}

	if err := persistence.Delete("b2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if persistence.Exists("b2") {
		t.Error("Expected b2 to be removed")
	}
}

func TestManagerWithPersistence(t *testing.T) {
	persistence, configManager := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)

	session, err := manager.Create("auto1", configManager.GetDefault())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := session.Game.RequestMove(engine.Player1, engine.Coord{Row: 2, Col: 8}); err != nil {
		t.Fatalf("move rejected: %v", err)
	}
	if err := manager.Save("auto1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Run("get loads from persistence", func(t *testing.T) {
		manager2 := NewManagerWithPersistence(persistence)
		loaded, err := manager2.Get("AUTO1")
		if err != nil {
			t.Fatalf("Failed to get session from persistence: %v", err)
		}
		if got := loaded.Game.PlayerState(engine.Player1).Position(); got != (engine.Coord{Row: 2, Col: 8}) {
			t.Errorf("Expected player 1 at (2,8), got %v", got)
		}
		if manager2.Count() != 1 {
			t.Errorf("Expected session to be cached, count %d", manager2.Count())
		}
	})

	t.Run("load persisted sessions", func(t *testing.T) {
		manager.Create("auto2", configManager.GetDefault())
		if err := manager.SaveAllSessions(); err != nil {
			t.Fatalf("SaveAllSessions failed: %v", err)
		}

		manager3 := NewManagerWithPersistence(persistence)
		if err := manager3.LoadPersistedSessions(); err != nil {
			t.Fatalf("LoadPersistedSessions failed: %v", err)
		}
		if manager3.Count() != 2 {
			t.Errorf("Expected 2 sessions loaded, got %d", manager3.Count())
		}
	})

	t.Run("delete from memory keeps file", func(t *testing.T) {
		if err := manager.DeleteFromMemory("auto2"); err != nil {
			t.Fatalf("DeleteFromMemory failed: %v", err)
		}
		if !persistence.Exists("auto2") {
			t.Error("Expected file to remain")
		}
		if _, err := manager.Get("auto2"); err != nil {
			t.Errorf("Expected reload from file, got %v", err)
		}
	})

	t.Run("delete removes file", func(t *testing.T) {
		if err := manager.Delete("auto1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists("auto1") {
			t.Error("Expected file to be removed")
		}
		if _, err := manager.Get("auto1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}
