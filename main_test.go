package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/corridor/game/engine"
	"github.com/wricardo/corridor/game/session"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Corridor Server" {
		t.Errorf("Expected app name Corridor Server, got %s", AppName)
	}
}

// parseOptions runs the command with its actions replaced so only flag
// parsing happens.
func parseOptions(t *testing.T, args ...string) options {
	t.Helper()
	var got options
	capture := func(ctx context.Context, cmd *cli.Command) error {
		got = optionsFrom(cmd)
		return nil
	}

	cmd := newCommand()
	cmd.Action = capture
	for _, sub := range cmd.Commands {
		sub.Action = capture
	}

	if err := cmd.Run(context.Background(), append([]string{"corridor"}, args...)); err != nil {
		t.Fatalf("Run(%v): %v", args, err)
	}
	return got
}

func TestFlagDefaults(t *testing.T) {
	opts := parseOptions(t)

	if opts.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", opts.Port)
	}
	if opts.Host != "localhost" {
		t.Errorf("Expected default host localhost, got %s", opts.Host)
	}
	if opts.ConfigDir != "configs" || opts.SessionsDir != "sessions" {
		t.Errorf("Unexpected default dirs: %q %q", opts.ConfigDir, opts.SessionsDir)
	}
	if opts.SessionTTL != 24*time.Hour {
		t.Errorf("Expected 24h session TTL, got %v", opts.SessionTTL)
	}
	if opts.Ngrok {
		t.Error("ngrok should be off by default")
	}
}

func TestFlagsAndEnvironment(t *testing.T) {
	t.Setenv("SESSIONS_DIR", "/tmp/matches")
	t.Setenv("NGROK_AUTH_TOKEN", "tok")

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts options)
	}{
		{
			name: "flags before subcommand",
			args: []string{"--port", "9090", "server"},
			check: func(t *testing.T, opts options) {
				if opts.Port != 9090 {
					t.Errorf("Expected port 9090, got %d", opts.Port)
				}
			},
		},
		{
			name: "environment sources",
			args: []string{"stdio-mcp"},
			check: func(t *testing.T, opts options) {
				if opts.SessionsDir != "/tmp/matches" {
					t.Errorf("Expected sessions dir from env, got %q", opts.SessionsDir)
				}
				if opts.NgrokAuth != "tok" {
					t.Errorf("Expected ngrok token from env, got %q", opts.NgrokAuth)
				}
			},
		},
		{
			name: "flag overrides environment",
			args: []string{"--sessions-dir", "local"},
			check: func(t *testing.T, opts options) {
				if opts.SessionsDir != "local" {
					t.Errorf("Expected sessions dir local, got %q", opts.SessionsDir)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, parseOptions(t, tt.args...))
		})
	}
}

func testOptions(t *testing.T) options {
	return options{
		Host:        "localhost",
		Port:        8080,
		ConfigDir:   "configs",
		SessionsDir: t.TempDir(),
		SessionTTL:  time.Hour,
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, sessions, err := initializeServices(ctx, testOptions(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if gameService == nil || sessions == nil {
		t.Fatal("Expected game service and session manager")
	}

	info, err := gameService.CreateSession(ctx, "quick")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if info.GameConfig.BoardSize != 5 {
		t.Errorf("Expected quick board, got %+v", info.GameConfig)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	opts := testOptions(t)
	opts.ConfigDir = "/non/existent/path"

	if _, _, err := initializeServices(context.Background(), opts); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestSyncWithFilesystem(t *testing.T) {
	opts := testOptions(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, sessions, err := initializeServices(ctx, opts)
	if err != nil {
		t.Fatalf("initializeServices: %v", err)
	}

	kept, err := gameService.CreateSession(ctx, "quick")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	removed, err := gameService.CreateSession(ctx, "quick")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := os.Remove(filepath.Join(opts.SessionsDir, removed.ID+".json")); err != nil {
		t.Fatalf("removing session file: %v", err)
	}

	persistence, err := session.NewFilePersistence(opts.SessionsDir, nil)
	if err != nil {
		t.Fatalf("NewFilePersistence: %v", err)
	}
	if pruned := syncWithFilesystem(sessions, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := sessions.Get(kept.ID); err != nil {
		t.Errorf("Expected %s to survive the sync: %v", kept.ID, err)
	}
	if _, err := sessions.Get(removed.ID); err == nil {
		t.Errorf("Expected %s to be pruned", removed.ID)
	}
}

func TestNewHandler(t *testing.T) {
	gameService, _, err := initializeServices(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("initializeServices: %v", err)
	}

	srv := httptest.NewServer(newHandler(gameService, nil, "http://localhost:0"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected /health 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/mcp")
	if err != nil {
		t.Fatalf("GET /mcp: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected GET /mcp 405, got %d", resp.StatusCode)
	}

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	resp, err = http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(initialize))
	if err != nil {
		t.Fatalf("POST /mcp: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Corridor") {
		t.Errorf("Expected server info in initialize response, got %s", body)
	}
}

func TestSessionCleanupRoutineStops(t *testing.T) {
	sessions := session.NewManager()
	if _, err := sessions.Create("old", engine.DefaultConfig()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, sessions, time.Millisecond, 0)
		close(done)
	}()

	deadline := time.After(time.Second)
	for sessions.Count() > 0 {
		select {
		case <-deadline:
			t.Fatal("Expected the expired session to be cleaned up")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}
