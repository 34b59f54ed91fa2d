// Command validate checks the board configuration JSON files in the
// ../configs directory. It checks:
//   - JSON structure, with unknown fields rejected
//   - Name, description, board size and wall inventory ranges
//   - Playability: a fresh game gives both players a route to their goal
//     row, at least one legal move and at least one placeable wall
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/corridor/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	playability := validatePlayability(&config)
	if !playability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, playability.Errors...)

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", config.BoardSize, config.BoardSize))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Walls per player: %d", config.WallsPerPlayer))
	}

	return result
}

// validatePlayability starts a game on the config and checks that both
// players can move, reach their goal row and that some wall can be placed.
func validatePlayability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	game, err := engine.NewGame(config)
	if err != nil {
		result.fail("Cannot start a game: %v", err)
		return result
	}

	for _, p := range []engine.PlayerID{engine.Player1, engine.Player2} {
		path, ok := game.ShortestPath(p)
		if !ok {
			result.fail("Player %d has no route to its goal row", p)
			continue
		}
		if len(game.LegalMoves(p)) == 0 {
			result.fail("Player %d has no legal opening move", p)
			continue
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Player %d: starts at %s, %d steps to goal", p, game.PlayerState(p).Position(), len(path)-1))
	}

	valid := 0
	slots := game.LegalWallSlots()
	for _, slot := range slots {
		if slot.Valid {
			valid++
		}
	}
	if valid == 0 {
		result.fail("No wall can be placed on the opening board")
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Wall slots: %d of %d placeable", valid, len(slots)))
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
