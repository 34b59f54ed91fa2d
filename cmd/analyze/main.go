// Command analyze prints quick, human-readable heuristics about the board
// configurations in the project's configs directory: opening path lengths,
// how many wall slots are placeable, and which single opening wall hurts
// player 2 the most.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wricardo/corridor/game/engine"
)

// Analysis summarizes the opening position of one configuration.
type Analysis struct {
	Name           string
	BoardSize      int
	WallsPerPlayer int
	PathLengths    [2]int
	WallSlots      int
	ValidWalls     int
	BestWall       *engine.Wall
	BestWallGain   int
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analysis, err := analyzeConfig(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(analysis)
	}
}

func analyzeConfig(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	game, err := engine.NewGame(&config)
	if err != nil {
		return nil, err
	}

	return analyzeGame(game), nil
}

func analyzeGame(game *engine.Game) *Analysis {
	config := game.Config()
	a := &Analysis{
		Name:           config.Name,
		BoardSize:      config.BoardSize,
		WallsPerPlayer: config.WallsPerPlayer,
	}

	for i, p := range []engine.PlayerID{engine.Player1, engine.Player2} {
		a.PathLengths[i] = pathLength(game.Grid(), game.PlayerState(p).Position(), config.BoardSize, p)
	}

	target := game.PlayerState(engine.Player2).Position()
	for _, slot := range game.LegalWallSlots() {
		a.WallSlots++
		if !slot.Valid {
			continue
		}
		a.ValidWalls++

		w := slot.Wall()
		gain := pathLength(game.Grid().CloneWith(w), target, config.BoardSize, engine.Player2) - a.PathLengths[1]
		if a.BestWall == nil || gain > a.BestWallGain {
			a.BestWall = &w
			a.BestWallGain = gain
		}
	}

	return a
}

// pathLength counts the steps of a shortest route, or -1 if there is none
func pathLength(g *engine.Grid, from engine.Coord, size int, p engine.PlayerID) int {
	path, ok := engine.ShortestPath(g, from, engine.GoalCells(size, p))
	if !ok {
		return -1
	}
	return len(path) - 1
}

func printAnalysis(a *Analysis) {
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Board: %d x %d (slot grid %d x %d)\n", a.BoardSize, a.BoardSize, 2*a.BoardSize-1, 2*a.BoardSize-1)
	fmt.Printf("Walls per player: %d\n", a.WallsPerPlayer)
	fmt.Printf("Opening path lengths: player 1 = %d, player 2 = %d\n", a.PathLengths[0], a.PathLengths[1])
	fmt.Printf("Wall slots: %d open, %d placeable\n", a.WallSlots, a.ValidWalls)

	if a.BestWall == nil {
		fmt.Printf("⚠️  WARNING: no wall can be placed on the opening board\n")
		return
	}
	fmt.Printf("Best opening wall against player 2: %s at (%d,%d), +%d steps\n",
		a.BestWall.Orientation, a.BestWall.Row, a.BestWall.Col, a.BestWallGain)

	// A full inventory can't outweigh the race when walls are scarce
	if a.WallsPerPlayer*2 < a.PathLengths[0] {
		fmt.Printf("⚠️  Walls are scarce: %d per player for a %d step race\n", a.WallsPerPlayer, a.PathLengths[0])
	} else {
		fmt.Printf("✅ Wall inventory is enough to contest the race\n")
	}
}
