package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lox/rpsplus/internal/game"
	"github.com/lox/rpsplus/internal/narrate"
	"github.com/lox/rpsplus/internal/referee"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type PlayData struct {
	Input string `json:"input"`
}

// Server → Client Messages

type WelcomeData struct {
	Rules string `json:"rules"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MatchStartedData struct {
	ID    string    `json:"id"`
	State StateData `json:"state"`
}

type MatchStateData struct {
	ID    string    `json:"id"`
	State StateData `json:"state"`
}

// The types below are shared by the websocket protocol and the HTTP API.
// Actions and outcomes travel as plain strings.

type RoundData struct {
	Round          int    `json:"round"`
	PlayerAction   string `json:"player_action"`
	OpponentAction string `json:"opponent_action"`
	Outcome        string `json:"outcome"`
	Explanation    string `json:"explanation,omitempty"`
}

type StateData struct {
	RoundCount           int         `json:"round_count"`
	PlayerScore          int         `json:"player_score"`
	OpponentScore        int         `json:"opponent_score"`
	PlayerOverrideUsed   bool        `json:"player_override_used"`
	OpponentOverrideUsed bool        `json:"opponent_override_used"`
	History              []RoundData `json:"history"`
	IsOver               bool        `json:"is_over"`
	FinalResult          string      `json:"final_result,omitempty"`
}

type TurnResultData struct {
	MatchID        string     `json:"match_id,omitempty"`
	Status         string     `json:"status"`
	Error          *ErrorData `json:"error,omitempty"`
	Round          int        `json:"round,omitempty"`
	PlayerAction   string     `json:"player_action,omitempty"`
	OpponentAction string     `json:"opponent_action,omitempty"`
	Outcome        string     `json:"outcome,omitempty"`
	Explanation    string     `json:"explanation,omitempty"`
	PlayerScore    int        `json:"player_score"`
	OpponentScore  int        `json:"opponent_score"`
	MatchOver      bool       `json:"match_over"`
	FinalResult    string     `json:"final_result,omitempty"`
	Narration      string     `json:"narration"`
	State          StateData  `json:"state"`
}

// Helper functions to convert between internal types and message types

func StateFromGame(s game.MatchState) StateData {
	history := make([]RoundData, len(s.History))
	for i, rec := range s.History {
		history[i] = RoundData{
			Round:          rec.Round,
			PlayerAction:   rec.PlayerAction.String(),
			OpponentAction: rec.OpponentAction.String(),
			Outcome:        rec.Outcome.String(),
			Explanation:    rec.Explanation,
		}
	}
	return StateData{
		RoundCount:           s.RoundCount,
		PlayerScore:          s.PlayerScore,
		OpponentScore:        s.OpponentScore,
		PlayerOverrideUsed:   s.PlayerOverrideUsed,
		OpponentOverrideUsed: s.OpponentOverrideUsed,
		History:              history,
		IsOver:               s.IsOver,
		FinalResult:          s.FinalResult.String(),
	}
}

// ToGame parses a snapshot received from a client. It checks only that every
// field is well formed; use MatchState.Verify for consistency.
func (d StateData) ToGame() (game.MatchState, error) {
	finalResult, err := game.ParseOutcome(d.FinalResult)
	if err != nil {
		return game.MatchState{}, fmt.Errorf("final_result: %w", err)
	}
	history := make([]game.RoundRecord, len(d.History))
	for i, rd := range d.History {
		player, err := parseActionField("player_action", rd.PlayerAction)
		if err != nil {
			return game.MatchState{}, fmt.Errorf("history[%d]: %w", i, err)
		}
		opponent, err := parseActionField("opponent_action", rd.OpponentAction)
		if err != nil {
			return game.MatchState{}, fmt.Errorf("history[%d]: %w", i, err)
		}
		outcome, err := game.ParseOutcome(rd.Outcome)
		if err != nil {
			return game.MatchState{}, fmt.Errorf("history[%d]: outcome: %w", i, err)
		}
		history[i] = game.RoundRecord{
			Round:          rd.Round,
			PlayerAction:   player,
			OpponentAction: opponent,
			Outcome:        outcome,
			Explanation:    rd.Explanation,
		}
	}
	return game.MatchState{
		RoundCount:           d.RoundCount,
		PlayerScore:          d.PlayerScore,
		OpponentScore:        d.OpponentScore,
		PlayerOverrideUsed:   d.PlayerOverrideUsed,
		OpponentOverrideUsed: d.OpponentOverrideUsed,
		History:              history,
		IsOver:               d.IsOver,
		FinalResult:          finalResult,
	}, nil
}

func parseActionField(field, raw string) (game.Action, error) {
	a, ok := game.ParseAction(raw)
	if !ok {
		return 0, fmt.Errorf("%s: %w: %q", field, game.ErrInvalidAction, raw)
	}
	return a, nil
}

// TurnResultFromGame builds the response for one turn on a hosted match.
func TurnResultFromGame(m referee.Match, r game.TurnResult) TurnResultData {
	data := TurnResultData{
		MatchID:       m.ID,
		Status:        string(r.Status),
		Round:         r.Round,
		PlayerScore:   r.PlayerScore,
		OpponentScore: r.OpponentScore,
		MatchOver:     r.MatchOver,
		FinalResult:   r.FinalResult.String(),
		Narration:     narrate.Turn(r, m.State),
		State:         StateFromGame(m.State),
	}
	if r.Status == game.TurnResolved {
		data.PlayerAction = r.PlayerAction.String()
		data.OpponentAction = r.OpponentAction.String()
		data.Outcome = r.Outcome.String()
		data.Explanation = r.Explanation
	}
	if r.Err != nil {
		data.Error = turnError(r.Err)
	}
	return data
}

func turnError(err error) *ErrorData {
	var verr *game.ValidationError
	switch {
	case errors.As(err, &verr):
		return &ErrorData{Code: verr.Code(), Message: verr.Error()}
	case errors.Is(err, game.ErrMatchAlreadyOver):
		return &ErrorData{Code: "match_over", Message: "The match is over. Start a new one to keep playing."}
	default:
		return &ErrorData{Code: "turn_failed", Message: err.Error()}
	}
}
