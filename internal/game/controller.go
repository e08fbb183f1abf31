package game

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
)

// ErrMatchAlreadyOver is the result of a turn submitted after the final round.
var ErrMatchAlreadyOver = errors.New("match already over")

// TurnStatus says what a call to PlayTurn did.
type TurnStatus string

const (
	// TurnResolved means a round was played and the state advanced.
	TurnResolved TurnStatus = "resolved"
	// TurnRejected means the input failed validation; no round was consumed.
	TurnRejected TurnStatus = "rejected"
	// TurnMatchOver means the match had already finished; nothing happened.
	TurnMatchOver TurnStatus = "match_over"
)

// TurnResult is the structured outcome of one PlayTurn call. Round fields are
// only populated when Status is TurnResolved.
type TurnResult struct {
	Status TurnStatus
	Err    error

	Round          int
	PlayerAction   Action
	OpponentAction Action
	Outcome        Outcome
	Explanation    string
	PlayerScore    int
	OpponentScore  int

	// MatchOver is set when this turn ended the match.
	MatchOver   bool
	FinalResult Outcome
}

// Controller runs the fixed turn sequence: validate the player's input, ask
// the opponent policy for its action, resolve, and apply. It holds no match
// state, so one controller can serve any number of matches as long as each
// match has a single caller at a time.
type Controller struct {
	opponent OpponentPolicy
	logger   *log.Logger
}

// NewController creates a controller. A nil opponent uses the biased policy
// over the process-wide random source; a nil logger discards output.
func NewController(opponent OpponentPolicy, logger *log.Logger) *Controller {
	if opponent == nil {
		opponent = NewBiasedPolicy(ProcessRand)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		opponent: opponent,
		logger:   logger.WithPrefix("controller"),
	}
}

// PlayTurn advances state by one round using raw as the player's action. The
// returned state is the new authoritative state; on rejection it is the input
// unchanged.
func (c *Controller) PlayTurn(state MatchState, raw string) (MatchState, TurnResult) {
	if state.IsOver {
		c.logger.Debug("Turn submitted after match end", "rounds", state.RoundCount)
		return state, TurnResult{Status: TurnMatchOver, Err: ErrMatchAlreadyOver}
	}

	player, err := Validate(raw, state.PlayerOverrideUsed)
	if err != nil {
		c.logger.Debug("Rejected player input", "input", raw, "error", err)
		return state, TurnResult{Status: TurnRejected, Err: err}
	}

	opponent := c.opponent.ChooseAction(state)
	outcome := Resolve(player, opponent)
	next := ApplyRound(state, player, opponent, outcome)
	record, _ := next.LastRound()

	c.logger.Debug("Round resolved",
		"round", record.Round,
		"player", player,
		"opponent", opponent,
		"outcome", outcome,
		"score", [2]int{next.PlayerScore, next.OpponentScore})

	result := TurnResult{
		Status:         TurnResolved,
		Round:          record.Round,
		PlayerAction:   player,
		OpponentAction: opponent,
		Outcome:        outcome,
		Explanation:    record.Explanation,
		PlayerScore:    next.PlayerScore,
		OpponentScore:  next.OpponentScore,
	}
	if next.IsOver {
		result.MatchOver = true
		result.FinalResult = next.FinalResult
		c.logger.Info("Match finished",
			"result", next.FinalResult,
			"player", next.PlayerScore,
			"opponent", next.OpponentScore)
	}
	return next, result
}
