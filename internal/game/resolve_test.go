package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allActions = []Action{Rock, Paper, Scissors, Bomb}

func TestResolve(t *testing.T) {
	tests := []struct {
		player, opponent Action
		want             Outcome
	}{
		// Bomb logic
		{Bomb, Bomb, Draw},
		{Bomb, Rock, PlayerWin},
		{Bomb, Paper, PlayerWin},
		{Bomb, Scissors, PlayerWin},
		{Rock, Bomb, OpponentWin},
		{Paper, Bomb, OpponentWin},
		{Scissors, Bomb, OpponentWin},

		// Same move
		{Rock, Rock, Draw},
		{Paper, Paper, Draw},
		{Scissors, Scissors, Draw},

		// Cyclic relation
		{Rock, Scissors, PlayerWin},
		{Scissors, Rock, OpponentWin},
		{Scissors, Paper, PlayerWin},
		{Paper, Scissors, OpponentWin},
		{Paper, Rock, PlayerWin},
		{Rock, Paper, OpponentWin},
	}

	// The table must cover the whole 4x4 input space.
	assert.Len(t, tests, len(allActions)*len(allActions))

	for _, tt := range tests {
		t.Run(tt.player.String()+"_vs_"+tt.opponent.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.player, tt.opponent))
		})
	}
}

func TestResolveIsSymmetricUnderSwap(t *testing.T) {
	for _, a := range allActions {
		for _, b := range allActions {
			forward := Resolve(a, b)
			backward := Resolve(b, a)
			assert.True(t, forward.IsDecided(), "%s vs %s", a, b)
			assert.Equal(t, forward.Mirror(), backward, "%s vs %s", a, b)
			// Deterministic: resolving twice gives the same answer.
			assert.Equal(t, forward, Resolve(a, b))
		}
	}
}

func TestEachCyclicActionBeatsExactlyOneOther(t *testing.T) {
	for _, a := range CyclicActions {
		wins, losses := 0, 0
		for _, b := range CyclicActions {
			switch Resolve(a, b) {
			case PlayerWin:
				wins++
			case OpponentWin:
				losses++
			}
		}
		assert.Equal(t, 1, wins, a.String())
		assert.Equal(t, 1, losses, a.String())
	}
}

func TestResolvePanicsOnUnknownAction(t *testing.T) {
	assert.Panics(t, func() { Resolve(Action(0), Rock) })
	assert.Panics(t, func() { Resolve(Rock, Action(42)) })
}

func TestExplain(t *testing.T) {
	tests := []struct {
		player, opponent Action
		want             string
	}{
		{Bomb, Bomb, "Both played bomb → Draw!"},
		{Bomb, Paper, "Bomb beats all → You win this round!"},
		{Scissors, Bomb, "Bomb beats all → Bot wins this round!"},
		{Paper, Paper, "Same move → Draw!"},
		{Rock, Scissors, "rock beats scissors → You win this round!"},
		{Rock, Paper, "paper beats rock → Bot wins this round!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Explain(tt.player, tt.opponent))
	}
}
