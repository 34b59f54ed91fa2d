// Command bruteforcer checks a running Corridor server's rules by brute
// force. It tries every wall slot and every move target on throwaway
// matches and compares the verdicts with what the server itself lists as
// legal, and it plays random matches made only of listed actions.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func setup(cmd *cli.Command) *Checker {
	if cmd.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
	log.Infof("Connecting to game server at %s", cmd.String("url"))
	return NewChecker(NewClient(cmd.String("url")), cmd.String("config"))
}

func printReport(name string, report *Report) error {
	log.Infof("%s: %d probes, %d mismatches", name, report.Checked, len(report.Mismatches))
	for _, m := range report.Mismatches {
		fmt.Println(m.String())
	}
	if len(report.Mismatches) > 0 {
		return fmt.Errorf("%s: %d mismatches", name, len(report.Mismatches))
	}
	return nil
}

func runWalls(ctx context.Context, cmd *cli.Command) error {
	report, err := setup(cmd).CheckWalls()
	if err != nil {
		return err
	}
	return printReport("walls", report)
}

func runMoves(ctx context.Context, cmd *cli.Command) error {
	report, err := setup(cmd).CheckMoves()
	if err != nil {
		return err
	}
	return printReport("moves", report)
}

func runPlayouts(ctx context.Context, cmd *cli.Command) error {
	checker := setup(cmd)

	seed := int64(cmd.Int("seed"))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	games := int(cmd.Int("games"))
	wins := map[int]int{}
	for i := 0; i < games; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := checker.Playout(rng, int(cmd.Int("max-turns")), cmd.Float("wall-rate"))
		if err != nil {
			return fmt.Errorf("playout %d (seed %d): %w", i+1, seed, err)
		}
		wins[int(result.Winner)]++
		log.WithFields(log.Fields{
			"session": result.SessionID,
			"turns":   result.Turns,
			"winner":  result.Winner,
		}).Info("playout finished")
	}

	log.Infof("%d playouts (seed %d): player 1 won %d, player 2 won %d, unfinished %d", games, seed, wins[1], wins[2], wins[0])
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "bruteforcer",
		Usage: "check a Corridor server's rules by brute force",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("CORRIDOR_URL")},
			&cli.StringFlag{Name: "config", Value: "quick", Usage: "board configuration for scratch matches"},
			&cli.BoolFlag{Name: "verbose", Usage: "log every action"},
		},
		Commands: []*cli.Command{
			{
				Name:   "walls",
				Usage:  "try every wall anchor and orientation on the opening board",
				Action: runWalls,
			},
			{
				Name:   "moves",
				Usage:  "try player 1's opening move to every slot",
				Action: runMoves,
			},
			{
				Name:  "playout",
				Usage: "play random matches made of listed actions",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "games", Value: 10, Usage: "number of matches"},
					&cli.IntFlag{Name: "max-turns", Value: 500, Usage: "stop a match after this many turns"},
					&cli.IntFlag{Name: "seed", Usage: "random seed (0 picks one)"},
					&cli.FloatFlag{Name: "wall-rate", Value: 0.2, Usage: "chance of placing a wall when one is available"},
				},
				Action: runPlayouts,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
