package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/muesli/termenv"

	"github.com/lox/rpsplus/internal/game"
	"github.com/lox/rpsplus/internal/narrate"
	"github.com/lox/rpsplus/internal/tui"
)

// PlayCmd plays against the bot in the terminal
type PlayCmd struct {
	Plain   bool   `help:"Line-by-line prompt instead of the full-screen UI"`
	Seed    *int64 `help:"Seed the bot for a reproducible match"`
	NoColor bool   `help:"Disable colours"`
	LogFile string `default:"rpsplus.log" help:"Where to write the debug log"`
}

func (c *PlayCmd) Run(g *Globals) error {
	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// The screen belongs to the game, so logs go to a file
	f, err := openLogFile(c.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	logger, err := newLogger(f, g.LogLevel, "info", "play")
	if err != nil {
		return err
	}

	var rng game.Rand = game.ProcessRand
	if c.Seed != nil {
		rng = rand.New(rand.NewSource(*c.Seed))
		logger.Info("Using deterministic seed", "seed", *c.Seed)
	}
	controller := game.NewController(game.NewBiasedPolicy(rng), logger)

	if c.Plain {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			return fmt.Errorf("failed to start readline: %w", err)
		}
		defer func() { _ = rl.Close() }()
		return newPlainSession(controller, rl, rl.Stdout(), logger).Run()
	}

	model := tui.NewTUIModel(controller, logger)
	if err := tui.Run(model); err != nil {
		return err
	}
	if model.Interrupted() {
		fmt.Fprintln(os.Stdout, narrate.Interrupted)
	}
	return nil
}
