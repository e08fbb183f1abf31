package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/rpsplus/internal/game"
)

// MatchResult represents the outcome of a single simulated match
type MatchResult struct {
	Seed              int64          // RNG seed for this match (for replay)
	FinalResult       game.Outcome   // Match verdict
	PlayerScore       int            // Rounds won by the player
	OpponentScore     int            // Rounds won by the bot
	Rounds            []game.Outcome // Outcome of each round in order
	Rejected          int            // Inputs rejected before the match ended
	PlayerBombRound   int            // Round the player bombed in, 0 if never
	OpponentBombRound int            // Round the bot bombed in, 0 if never
}

// Margin is the player's score minus the bot's
func (r MatchResult) Margin() int {
	return r.PlayerScore - r.OpponentScore
}

// Statistics aggregates simulated matches
type Statistics struct {
	Matches   int
	SumMargin float64
	SumSq     float64   // Sum of squared margins for variance
	Margins   []float64 // All margins for median/percentile

	// Match verdicts
	PlayerWins   int
	OpponentWins int
	Draws        int

	// Round verdicts
	Rounds              int
	RoundPlayerWins     int
	RoundOpponentWins   int
	RoundDraws          int
	RejectedInputs      int
	PlayerBombs         int
	OpponentBombs       int
	OpponentBombByRound [game.MaxRounds + 1]int // Index 0 counts matches with no bot bomb
}

// Mean returns the average score margin per match
func (s *Statistics) Mean() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.SumMargin / float64(s.Matches)
}

// Variance returns the sample variance of the margins
func (s *Statistics) Variance() float64 {
	if s.Matches < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSq - float64(s.Matches)*mean*mean) / float64(s.Matches-1)
}

// StdDev returns the sample standard deviation of the margins
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Matches))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a match result
func (s *Statistics) Add(result MatchResult) {
	margin := float64(result.Margin())
	s.Matches++
	s.SumMargin += margin
	s.SumSq += margin * margin
	s.Margins = append(s.Margins, margin)

	switch result.FinalResult {
	case game.PlayerWin:
		s.PlayerWins++
	case game.OpponentWin:
		s.OpponentWins++
	case game.Draw:
		s.Draws++
	}

	for _, o := range result.Rounds {
		s.Rounds++
		switch o {
		case game.PlayerWin:
			s.RoundPlayerWins++
		case game.OpponentWin:
			s.RoundOpponentWins++
		case game.Draw:
			s.RoundDraws++
		}
	}

	s.RejectedInputs += result.Rejected
	if result.PlayerBombRound > 0 {
		s.PlayerBombs++
	}
	if result.OpponentBombRound > 0 {
		s.OpponentBombs++
	}
	if result.OpponentBombRound >= 0 && result.OpponentBombRound <= game.MaxRounds {
		s.OpponentBombByRound[result.OpponentBombRound]++
	}
}

// Rate returns n as a fraction of total, or 0 when total is 0
func Rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// Median returns the median margin
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the margin at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Margins) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Margins))
	copy(sorted, s.Margins)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks that the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Matches <= 0 {
		return fmt.Errorf("invalid match count: %d", s.Matches)
	}
	if len(s.Margins) != s.Matches {
		return fmt.Errorf("margins length (%d) does not match match count (%d)", len(s.Margins), s.Matches)
	}
	if verdicts := s.PlayerWins + s.OpponentWins + s.Draws; verdicts != s.Matches {
		return fmt.Errorf("verdicts (%d) do not match match count (%d)", verdicts, s.Matches)
	}
	if s.Rounds != s.Matches*game.MaxRounds {
		return fmt.Errorf("rounds (%d) is not %d per match", s.Rounds, game.MaxRounds)
	}
	if sum := s.RoundPlayerWins + s.RoundOpponentWins + s.RoundDraws; sum != s.Rounds {
		return fmt.Errorf("round verdicts (%d) do not match round count (%d)", sum, s.Rounds)
	}
	bombs := 0
	for _, n := range s.OpponentBombByRound {
		bombs += n
	}
	if bombs != s.Matches {
		return fmt.Errorf("bomb histogram (%d) does not match match count (%d)", bombs, s.Matches)
	}
	if s.PlayerBombs > s.Matches || s.OpponentBombs > s.Matches {
		return fmt.Errorf("more bombs than matches: player=%d bot=%d matches=%d", s.PlayerBombs, s.OpponentBombs, s.Matches)
	}
	return nil
}
