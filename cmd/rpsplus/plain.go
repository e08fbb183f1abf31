package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"

	"github.com/lox/rpsplus/internal/game"
	"github.com/lox/rpsplus/internal/narrate"
)

const (
	movePrompt      = "Your move (rock/paper/scissors/bomb): "
	playAgainPrompt = "Play again? (y/n): "
)

// lineReader is the part of *readline.Instance the plain session uses
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// plainSession plays matches over a line-oriented terminal
type plainSession struct {
	controller *game.Controller
	in         lineReader
	out        io.Writer
	logger     *log.Logger
	state      game.MatchState
}

func newPlainSession(controller *game.Controller, in lineReader, out io.Writer, logger *log.Logger) *plainSession {
	return &plainSession{
		controller: controller,
		in:         in,
		out:        out,
		logger:     logger.WithPrefix("plain"),
	}
}

// Run reads moves until the player quits, declines a rematch or hits Ctrl+C
func (p *plainSession) Run() error {
	p.println(narrate.Rules)
	p.println("")
	p.state = game.NewMatch()
	p.in.SetPrompt(movePrompt)

	for {
		line, err := p.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			p.println(narrate.Interrupted)
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		if p.state.IsOver {
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				p.state = game.NewMatch()
				p.logger.Debug("Rematch started")
				p.println("")
				p.in.SetPrompt(movePrompt)
			case "n", "no", "quit", "exit":
				p.println("Thanks for playing!")
				return nil
			default:
				p.println("Please answer y or n.")
			}
			continue
		}

		if quit := p.handle(line); quit {
			return nil
		}
		if p.state.IsOver {
			p.in.SetPrompt(playAgainPrompt)
		}
	}
}

func (p *plainSession) handle(line string) (quit bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		p.println(narrate.EmptyInputPrompt)
		return false
	case "quit", "exit", "q":
		return true
	case "help", "rules", "?":
		p.println(narrate.Rules)
		return false
	case "history":
		p.println(narrate.History(p.state))
		return false
	case "status":
		p.println(narrate.Status(p.state))
		return false
	}

	next, result := p.controller.PlayTurn(p.state, line)
	p.state = next
	p.println(narrate.Turn(result, next))
	p.println("")
	return false
}

func (p *plainSession) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}
