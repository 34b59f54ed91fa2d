package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:           "Test Config",
		Description:    "A valid test configuration",
		BoardSize:      5,
		WallsPerPlayer: 5,
	}
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	if err := ValidateGameConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
	if err := ValidateGameConfig(DefaultConfig()); err != nil {
		t.Errorf("Expected default config to pass validation, got: %v", err)
	}
}

func TestValidateGameConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"board too small", func(c *GameConfig) { c.BoardSize = 2 }, "board_size must be between"},
		{"board too large", func(c *GameConfig) { c.BoardSize = MaxBoardSize + 1 }, "board_size must be between"},
		{"no walls", func(c *GameConfig) { c.WallsPerPlayer = 0 }, "walls_per_player must be between"},
		{"too many walls", func(c *GameConfig) { c.WallsPerPlayer = MaxWallsPerPlayer + 1 }, "walls_per_player must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.mutate(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

const testConfigJSON = `{
	"name": "Test Config",
	"description": "Test description",
	"board_size": 7,
	"walls_per_player": 8
}`

func TestLoadConfigByName(t *testing.T) {
	t.Setenv("CONFIG_DIR", "")
	tempDir := t.TempDir()

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(tempDir)

	os.MkdirAll("configs", 0755)
	if err := os.WriteFile(filepath.Join("configs", "test.json"), []byte(testConfigJSON), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadConfigByName("test")
	if err != nil {
		t.Fatalf("Failed to load config by name: %v", err)
	}
	if config.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config.Name)
	}

	config2, err := LoadConfigByName("test.json")
	if err != nil {
		t.Fatalf("Failed to load config by name with extension: %v", err)
	}
	if config2.BoardSize != 7 {
		t.Errorf("Expected board size 7, got %d", config2.BoardSize)
	}

	_, err = LoadConfigByName("nonexistent")
	if err == nil {
		t.Fatal("Expected error for non-existent config")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' error, got: %v", err)
	}
}

func TestLoadGameConfig(t *testing.T) {
	t.Setenv("CONFIG_DIR", "")
	tempFile := filepath.Join(t.TempDir(), "test_config.json")
	if err := os.WriteFile(tempFile, []byte(testConfigJSON), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadGameConfig(tempFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.BoardSize != 7 || config.WallsPerPlayer != 8 {
		t.Errorf("Expected 7x7 with 8 walls, got %dx%d with %d walls", config.BoardSize, config.BoardSize, config.WallsPerPlayer)
	}

	if _, err := LoadGameConfig("nonexistent.json"); err == nil {
		t.Error("Expected error for non-existent file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte(`{"name":"x","description":"y","board_size":1,"walls_per_player":3}`), 0644)
	if _, err := LoadGameConfig(bad); err == nil {
		t.Error("Expected validation error for board_size 1")
	}
}

func TestLoadGameConfig_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "alt.json"), []byte(testConfigJSON), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadGameConfig("configs/alt.json")
	if err != nil {
		t.Fatalf("Expected CONFIG_DIR to redirect configs/ prefix: %v", err)
	}
	if config.Name != "Test Config" {
		t.Errorf("Unexpected config name %q", config.Name)
	}
}
