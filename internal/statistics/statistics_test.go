package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsplus/internal/game"
)

func result(final game.Outcome, player, opponent int, rounds ...game.Outcome) MatchResult {
	return MatchResult{FinalResult: final, PlayerScore: player, OpponentScore: opponent, Rounds: rounds}
}

func TestStatisticsEmpty(t *testing.T) {
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.9))
	assert.Error(t, stats.Validate())
}

func TestStatisticsSingleMatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(MatchResult{
		Seed:              7,
		FinalResult:       game.PlayerWin,
		PlayerScore:       2,
		OpponentScore:     0,
		Rounds:            []game.Outcome{game.PlayerWin, game.Draw, game.PlayerWin},
		Rejected:          2,
		PlayerBombRound:   1,
		OpponentBombRound: 1,
	})

	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, 2.0, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Equal(t, 2.0, stats.Median())
	assert.Equal(t, 1, stats.PlayerWins)
	assert.Equal(t, 2, stats.RoundPlayerWins)
	assert.Equal(t, 1, stats.RoundDraws)
	assert.Equal(t, 2, stats.RejectedInputs)
	assert.Equal(t, 1, stats.PlayerBombs)
	assert.Equal(t, 1, stats.OpponentBombByRound[1])
	assert.NoError(t, stats.Validate())
}

func TestStatisticsMultipleMatches(t *testing.T) {
	stats := &Statistics{}
	w, l, d := game.PlayerWin, game.OpponentWin, game.Draw

	stats.Add(result(w, 3, 0, w, w, w))
	stats.Add(result(l, 0, 2, l, d, l))
	stats.Add(result(d, 1, 1, w, l, d))
	stats.Add(result(w, 1, 0, d, d, w))

	// Margins: 3, -2, 0, 1
	assert.Equal(t, 4, stats.Matches)
	assert.InDelta(t, 0.5, stats.Mean(), 1e-9)
	assert.InDelta(t, 0.5, stats.Median(), 1e-9)

	// Sample variance of {3,-2,0,1}: mean 0.5, squared deviations 6.25+6.25+0.25+0.25 = 13, /3
	assert.InDelta(t, 13.0/3.0, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(13.0/3.0), stats.StdDev(), 1e-9)
	assert.InDelta(t, math.Sqrt(13.0/3.0)/2, stats.StdError(), 1e-9)

	low, high := stats.ConfidenceInterval95()
	assert.InDelta(t, stats.Mean(), (low+high)/2, 1e-9)
	assert.Less(t, low, high)

	assert.Equal(t, 2, stats.PlayerWins)
	assert.Equal(t, 1, stats.OpponentWins)
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 12, stats.Rounds)
	assert.Equal(t, 5, stats.RoundPlayerWins)
	assert.Equal(t, 3, stats.RoundOpponentWins)
	assert.Equal(t, 4, stats.RoundDraws)
	assert.Equal(t, 4, stats.OpponentBombByRound[0])
	require.NoError(t, stats.Validate())
}

func TestStatisticsPercentile(t *testing.T) {
	stats := &Statistics{}
	for _, m := range []int{-3, -1, 0, 1, 3} {
		stats.Add(MatchResult{FinalResult: game.Draw, PlayerScore: max(m, 0), OpponentScore: max(-m, 0)})
	}

	assert.Equal(t, -3.0, stats.Percentile(0))
	assert.Equal(t, 0.0, stats.Percentile(0.5))
	assert.Equal(t, 3.0, stats.Percentile(1))
	assert.InDelta(t, -2.0, stats.Percentile(0.125), 1e-9)
}

func TestStatisticsValidateCatchesMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(result(game.PlayerWin, 1, 0, game.PlayerWin, game.Draw, game.Draw))
	require.NoError(t, stats.Validate())

	stats.Draws++
	assert.ErrorContains(t, stats.Validate(), "verdicts")

	stats.Draws--
	stats.Rounds++
	assert.ErrorContains(t, stats.Validate(), "rounds")
}

func TestRate(t *testing.T) {
	assert.Zero(t, Rate(3, 0))
	assert.Equal(t, 0.25, Rate(1, 4))
}
