package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/corridor/game/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantValid bool
		wantMsg   string
	}{
		{
			name:      "valid config",
			content:   `{"name": "Test", "description": "Test board", "board_size": 5, "walls_per_player": 3}`,
			wantValid: true,
			wantMsg:   "✓ Board: 5x5",
		},
		{
			name:      "smallest board",
			content:   `{"name": "Tiny", "description": "Tiny board", "board_size": 3, "walls_per_player": 1}`,
			wantValid: true,
			wantMsg:   "✓ Player 1: starts at (0,2), 2 steps to goal",
		},
		{
			name:    "invalid JSON",
			content: `{"name": "test", invalid json}`,
			wantMsg: "Invalid JSON",
		},
		{
			name:    "unknown field",
			content: `{"name": "Test", "description": "Test", "board_size": 5, "walls_per_player": 3, "grid_size": 5}`,
			wantMsg: "Invalid JSON",
		},
		{
			name:    "missing name",
			content: `{"description": "Test", "board_size": 5, "walls_per_player": 3}`,
			wantMsg: "name is required",
		},
		{
			name:    "board too small",
			content: `{"name": "Test", "description": "Test", "board_size": 2, "walls_per_player": 3}`,
			wantMsg: "board_size must be between",
		},
		{
			name:    "no walls",
			content: `{"name": "Test", "description": "Test", "board_size": 5, "walls_per_player": 0}`,
			wantMsg: "walls_per_player must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			result := validateConfig(path)
			if result.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v (%v)", tt.wantValid, result.Valid, result.Errors)
			}
			if result.File != filepath.Base(path) {
				t.Errorf("Expected file name %s, got %s", filepath.Base(path), result.File)
			}
			if !hasMessage(result.Errors, tt.wantMsg) {
				t.Errorf("Expected message containing %q, got %v", tt.wantMsg, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasMessage(result.Errors, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidatePlayability(t *testing.T) {
	result := validatePlayability(&engine.GameConfig{Name: "Test", Description: "Test", BoardSize: 9, WallsPerPlayer: 10})
	if !result.Valid {
		t.Fatalf("Expected classic board to be playable, got %v", result.Errors)
	}
	if !hasMessage(result.Errors, "✓ Player 2: starts at (16,8), 8 steps to goal") {
		t.Errorf("Expected player 2 summary, got %v", result.Errors)
	}
	if !hasMessage(result.Errors, "✓ Wall slots:") {
		t.Errorf("Expected wall slot summary, got %v", result.Errors)
	}
}

func TestShippedConfigsAreValid(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("Expected config files in ../configs")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			if result := validateConfig(file); !result.Valid {
				t.Errorf("Expected %s to be valid: %v", file, result.Errors)
			}
		})
	}
}
