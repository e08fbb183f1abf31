package game

import (
	"errors"
	"fmt"
)

// MaxRounds is the fixed length of a match. The final result is decided when
// the round count reaches it, never earlier.
const MaxRounds = 3

var (
	// ErrContractViolation marks a transition no correct caller would request.
	// ApplyRound panics with an error wrapping it.
	ErrContractViolation = errors.New("match contract violation")
	// ErrInconsistentState is returned by Verify when a snapshot does not
	// reconcile with its own history.
	ErrInconsistentState = errors.New("inconsistent match state")
)

// RoundRecord is one entry of the match audit trail.
type RoundRecord struct {
	Round          int     `json:"round"`
	PlayerAction   Action  `json:"player_action"`
	OpponentAction Action  `json:"opponent_action"`
	Outcome        Outcome `json:"outcome"`
	Explanation    string  `json:"explanation,omitempty"`
}

// MatchState is the complete record of one match. It is a value: transitions
// return a new MatchState and never modify the one they were given. The JSON
// form is the snapshot handed to renderers and remote callers.
type MatchState struct {
	RoundCount           int           `json:"round_count"`
	PlayerScore          int           `json:"player_score"`
	OpponentScore        int           `json:"opponent_score"`
	PlayerOverrideUsed   bool          `json:"player_override_used"`
	OpponentOverrideUsed bool          `json:"opponent_override_used"`
	History              []RoundRecord `json:"history"`
	IsOver               bool          `json:"is_over"`
	FinalResult          Outcome       `json:"final_result,omitempty"`
}

// NewMatch returns the state of a match before its first round.
func NewMatch() MatchState {
	return MatchState{History: []RoundRecord{}}
}

// LastRound returns the most recent record, if any.
func (s MatchState) LastRound() (RoundRecord, bool) {
	if len(s.History) == 0 {
		return RoundRecord{}, false
	}
	return s.History[len(s.History)-1], true
}

// CheckApply reports why ApplyRound would refuse the given transition, or nil.
// Callers holding untrusted input (for example a remote tool call) use it to
// turn a would-be panic into an error.
func CheckApply(state MatchState, player, opponent Action, outcome Outcome) error {
	switch {
	case state.IsOver:
		return fmt.Errorf("%w: %w", ErrContractViolation, ErrMatchAlreadyOver)
	case !player.IsValid():
		return fmt.Errorf("%w: player action %s is not playable", ErrContractViolation, player)
	case !opponent.IsValid():
		return fmt.Errorf("%w: opponent action %s is not playable", ErrContractViolation, opponent)
	case !outcome.IsDecided():
		return fmt.Errorf("%w: round outcome %q is not a result", ErrContractViolation, outcome)
	case player.IsOverride() && state.PlayerOverrideUsed:
		return fmt.Errorf("%w: player bomb already consumed", ErrContractViolation)
	case opponent.IsOverride() && state.OpponentOverrideUsed:
		return fmt.Errorf("%w: opponent bomb already consumed", ErrContractViolation)
	}
	if expected := Resolve(player, opponent); outcome != expected {
		return fmt.Errorf("%w: %s vs %s resolves to %s, not %s",
			ErrContractViolation, player, opponent, expected, outcome)
	}
	return nil
}

// ApplyRound records one resolved round and returns the new state. The round
// count, the winner's score, the override flags and the history are updated
// together, and only then is termination checked: the match ends exactly when
// the round count reaches MaxRounds.
//
// ApplyRound panics if CheckApply would return an error. Applying a round to a
// finished match is a caller bug, not a game condition.
func ApplyRound(state MatchState, player, opponent Action, outcome Outcome) MatchState {
	if err := CheckApply(state, player, opponent, outcome); err != nil {
		panic(err)
	}

	next := state
	next.History = make([]RoundRecord, len(state.History), len(state.History)+1)
	copy(next.History, state.History)

	next.RoundCount++
	switch outcome {
	case PlayerWin:
		next.PlayerScore++
	case OpponentWin:
		next.OpponentScore++
	}
	if player.IsOverride() {
		next.PlayerOverrideUsed = true
	}
	if opponent.IsOverride() {
		next.OpponentOverrideUsed = true
	}
	next.History = append(next.History, RoundRecord{
		Round:          next.RoundCount,
		PlayerAction:   player,
		OpponentAction: opponent,
		Outcome:        outcome,
		Explanation:    Explain(player, opponent),
	})

	if next.RoundCount == MaxRounds {
		next.IsOver = true
		next.FinalResult = compareScores(next.PlayerScore, next.OpponentScore)
	}
	return next
}

// Verify replays the history from a fresh match and checks every recorded
// field against the replay. It returns an error wrapping ErrInconsistentState
// for the first mismatch found.
func (s MatchState) Verify() error {
	replay := NewMatch()
	for i, rec := range s.History {
		if rec.Round != i+1 {
			return fmt.Errorf("%w: history entry %d is numbered %d", ErrInconsistentState, i+1, rec.Round)
		}
		if err := CheckApply(replay, rec.PlayerAction, rec.OpponentAction, rec.Outcome); err != nil {
			return fmt.Errorf("%w: round %d: %w", ErrInconsistentState, rec.Round, err)
		}
		replay = ApplyRound(replay, rec.PlayerAction, rec.OpponentAction, rec.Outcome)
	}

	mismatch := func(field string, got, want any) error {
		return fmt.Errorf("%w: %s is %v, history implies %v", ErrInconsistentState, field, got, want)
	}
	switch {
	case s.RoundCount != replay.RoundCount:
		return mismatch("round_count", s.RoundCount, replay.RoundCount)
	case s.PlayerScore != replay.PlayerScore:
		return mismatch("player_score", s.PlayerScore, replay.PlayerScore)
	case s.OpponentScore != replay.OpponentScore:
		return mismatch("opponent_score", s.OpponentScore, replay.OpponentScore)
	case s.PlayerOverrideUsed != replay.PlayerOverrideUsed:
		return mismatch("player_override_used", s.PlayerOverrideUsed, replay.PlayerOverrideUsed)
	case s.OpponentOverrideUsed != replay.OpponentOverrideUsed:
		return mismatch("opponent_override_used", s.OpponentOverrideUsed, replay.OpponentOverrideUsed)
	case s.IsOver != replay.IsOver:
		return mismatch("is_over", s.IsOver, replay.IsOver)
	case s.FinalResult != replay.FinalResult:
		return mismatch("final_result", s.FinalResult, replay.FinalResult)
	}
	return nil
}
