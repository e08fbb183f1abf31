package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/rpsplus/internal/simulator"
)

// SimulateCmd plays many matches between a scripted player and the bot
type SimulateCmd struct {
	Matches int           `default:"10000" help:"Number of matches to simulate"`
	Workers int           `default:"0" help:"Parallel workers (0 for one per CPU)"`
	Seed    int64         `default:"0" help:"RNG seed (0 for random)"`
	Player  string        `default:"random" enum:"random,cycle,bomb-first,chaos" help:"Scripted player: ${enum}"`
	Timeout time.Duration `default:"5m" help:"Give up after this long"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger, err := newLogger(os.Stderr, g.LogLevel, "warn", "simulate")
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("Starting simulation", "matches", c.Matches, "player", c.Player, "seed", seed)

	sim, err := simulator.New(simulator.Config{
		Matches: c.Matches,
		Workers: c.Workers,
		Seed:    seed,
		Player:  c.Player,
		Timeout: c.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	stats, err := sim.Run(setupSignalHandler(logger))
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	simulator.PrintSummary(os.Stdout, stats, c.Player)
	fmt.Printf("Seed: %d (replay with --seed)\nElapsed: %s\n", seed, time.Since(start).Round(time.Millisecond))
	return nil
}
