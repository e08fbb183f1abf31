package simulator

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/lox/rpsplus/internal/game"
)

// Player produces the raw input a scripted player types on its turn. Inputs
// go through the same validation as a human's, so players may send garbage.
type Player interface {
	Next(state game.MatchState, rng *rand.Rand) string
}

// PlayerFunc adapts a function to Player
type PlayerFunc func(state game.MatchState, rng *rand.Rand) string

// Next implements Player
func (f PlayerFunc) Next(state game.MatchState, rng *rand.Rand) string {
	return f(state, rng)
}

var players = map[string]Player{
	// random picks uniformly among the moves still legal, bomb included
	"random": PlayerFunc(func(state game.MatchState, rng *rand.Rand) string {
		if !state.PlayerOverrideUsed && rng.Intn(len(game.CyclicActions)+1) == 0 {
			return game.Bomb.String()
		}
		return randomCyclic(rng)
	}),

	"cycle": PlayerFunc(func(state game.MatchState, _ *rand.Rand) string {
		return game.CyclicActions[state.RoundCount%len(game.CyclicActions)].String()
	}),

	"bomb-first": PlayerFunc(func(state game.MatchState, rng *rand.Rand) string {
		if !state.PlayerOverrideUsed {
			return game.Bomb.String()
		}
		return randomCyclic(rng)
	}),

	// chaos mixes in junk, odd casing and repeat bombs
	"chaos": PlayerFunc(func(state game.MatchState, rng *rand.Rand) string {
		switch rng.Intn(5) {
		case 0:
			return chaosInputs[rng.Intn(len(chaosInputs))]
		case 1:
			return "  " + strings.ToUpper(randomCyclic(rng)) + " "
		case 2:
			return "Bomb"
		default:
			return randomCyclic(rng)
		}
	}),
}

var chaosInputs = []string{"lizard", "spock", "", "   ", "rocks", "r0ck", "paper scissors"}

func randomCyclic(rng *rand.Rand) string {
	return game.CyclicActions[rng.Intn(len(game.CyclicActions))].String()
}

// PlayerNames lists the scripted players in sorted order
func PlayerNames() []string {
	names := make([]string, 0, len(players))
	for name := range players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPlayer looks up a scripted player by name
func NewPlayer(name string) (Player, error) {
	p, ok := players[name]
	if !ok {
		return nil, fmt.Errorf("unknown player %q (choose from %s)", name, strings.Join(PlayerNames(), ", "))
	}
	return p, nil
}
