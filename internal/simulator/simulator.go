package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"

	"github.com/lox/rpsplus/internal/game"
	"github.com/lox/rpsplus/internal/statistics"
)

// maxTurns bounds one match. Rejected inputs do not consume rounds, so a
// player that only sends junk would otherwise never finish.
const maxTurns = 100

// ErrMatchStalled is returned when a match does not finish within maxTurns
var ErrMatchStalled = errors.New("match did not finish")

// Config holds configuration for running simulations
type Config struct {
	Matches int
	Workers int
	Seed    int64
	Player  string
	Timeout time.Duration
	Logger  *log.Logger
}

// Simulator plays many independent matches between a scripted player and the
// bot. Match i is seeded with Seed+i, so results do not depend on the number
// of workers.
type Simulator struct {
	config      Config
	player      Player
	logger      *log.Logger
	matchLogger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if config.Matches <= 0 {
		return nil, fmt.Errorf("matches must be positive, got %d", config.Matches)
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Player == "" {
		config.Player = "random"
	}
	player, err := NewPlayer(config.Player)
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	// Per-match controller logging is only wanted when debugging
	matchLogger := log.New(io.Discard)
	if logger.GetLevel() <= log.DebugLevel {
		matchLogger = logger
	}
	return &Simulator{
		config:      config,
		player:      player,
		logger:      logger.WithPrefix("simulator"),
		matchLogger: matchLogger,
	}, nil
}

// Run plays every match and returns the aggregated statistics
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	workers := min(s.config.Workers, s.config.Matches)
	results := make([]statistics.MatchResult, s.config.Matches)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < s.config.Matches; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				result, err := s.playMatch(s.config.Seed + int64(i))
				if err != nil {
					return fmt.Errorf("match %d: %w", i+1, err)
				}
				results[i] = result
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, result := range results {
		stats.Add(result)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Debug("Simulation complete",
		"matches", stats.Matches,
		"workers", workers,
		"player", s.config.Player,
		"elapsed", time.Since(start))
	return stats, nil
}

// playMatch runs one match to completion with its own random source
func (s *Simulator) playMatch(seed int64) (statistics.MatchResult, error) {
	rng := rand.New(rand.NewSource(seed))
	controller := game.NewController(game.NewBiasedPolicy(rng), s.matchLogger.With("seed", seed))

	state := game.NewMatch()
	rejected := 0
	for turn := 0; !state.IsOver; turn++ {
		if turn == maxTurns {
			return statistics.MatchResult{}, fmt.Errorf("%w after %d turns (seed %d)", ErrMatchStalled, maxTurns, seed)
		}
		next, result := controller.PlayTurn(state, s.player.Next(state, rng))
		if result.Status == game.TurnRejected {
			rejected++
		}
		state = next
	}
	if err := state.Verify(); err != nil {
		return statistics.MatchResult{}, fmt.Errorf("seed %d: %w", seed, err)
	}

	result := statistics.MatchResult{
		Seed:          seed,
		FinalResult:   state.FinalResult,
		PlayerScore:   state.PlayerScore,
		OpponentScore: state.OpponentScore,
		Rounds:        make([]game.Outcome, 0, len(state.History)),
		Rejected:      rejected,
	}
	for _, rec := range state.History {
		result.Rounds = append(result.Rounds, rec.Outcome)
		if rec.PlayerAction.IsOverride() {
			result.PlayerBombRound = rec.Round
		}
		if rec.OpponentAction.IsOverride() {
			result.OpponentBombRound = rec.Round
		}
	}
	return result, nil
}

// PrintSummary writes a report of the simulation results to w
func PrintSummary(w io.Writer, stats *statistics.Statistics, player string) {
	low, high := stats.ConfidenceInterval95()
	pct := func(n, total int) string {
		return fmt.Sprintf("%d (%.1f%%)", n, statistics.Rate(n, total)*100)
	}

	_, _ = fmt.Fprintf(w, "\n=== %d matches: %s player vs bot ===\n", stats.Matches, player)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Result", "Matches", "Rounds"})
	tw.AppendRow(table.Row{"Player wins", pct(stats.PlayerWins, stats.Matches), pct(stats.RoundPlayerWins, stats.Rounds)})
	tw.AppendRow(table.Row{"Bot wins", pct(stats.OpponentWins, stats.Matches), pct(stats.RoundOpponentWins, stats.Rounds)})
	tw.AppendRow(table.Row{"Draws", pct(stats.Draws, stats.Matches), pct(stats.RoundDraws, stats.Rounds)})
	tw.Render()

	tw = table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Score margin", "Value"})
	tw.AppendRow(table.Row{"Mean", fmt.Sprintf("%.4f", stats.Mean())})
	tw.AppendRow(table.Row{"Median", fmt.Sprintf("%.4f", stats.Median())})
	tw.AppendRow(table.Row{"Std Dev", fmt.Sprintf("%.4f", stats.StdDev())})
	tw.AppendRow(table.Row{"95% CI", fmt.Sprintf("[%.4f, %.4f]", low, high)})
	tw.AppendRow(table.Row{"P5 / P95", fmt.Sprintf("%.1f / %.1f", stats.Percentile(0.05), stats.Percentile(0.95))})
	tw.Render()

	tw = table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Bot bomb", "Matches"})
	for round := 1; round <= game.MaxRounds; round++ {
		tw.AppendRow(table.Row{fmt.Sprintf("Round %d", round), pct(stats.OpponentBombByRound[round], stats.Matches)})
	}
	tw.AppendRow(table.Row{"Never", pct(stats.OpponentBombByRound[0], stats.Matches)})
	tw.Render()

	_, _ = fmt.Fprintf(w, "Player bombs: %s\n", pct(stats.PlayerBombs, stats.Matches))
	_, _ = fmt.Fprintf(w, "Rejected inputs: %d (%.2f per match)\n",
		stats.RejectedInputs, statistics.Rate(stats.RejectedInputs, stats.Matches))
}
