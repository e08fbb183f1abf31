// Package narrate renders referee text for a match: the rules, a report for
// each turn and the final banner. Output is plain text so every front end
// (terminal UI, line mode, websocket) can style it as it likes.
package narrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/rpsplus/internal/game"
)

// Rules is the welcome text shown at the start of a match.
const Rules = `Welcome to Rock-Paper-Scissors-Plus!

Rules (best of 3):
• Valid moves: rock, paper, scissors, bomb
• Bomb beats everything (use once per player)
• Bomb vs bomb = draw
• Invalid input does not cost you the round; just try again
• Game ends after 3 rounds`

// EmptyInputPrompt is shown when the player submits nothing.
const EmptyInputPrompt = "Please enter a move (rock, paper, scissors, or bomb)."

// Interrupted is shown when the player aborts the session.
const Interrupted = "Game interrupted by user."

const rule = "========================================"

// Turn renders the referee's response to one PlayTurn call.
func Turn(result game.TurnResult, state game.MatchState) string {
	switch result.Status {
	case game.TurnRejected:
		return "❌ " + rejectionText(result.Err)
	case game.TurnMatchOver:
		return GameOver(state)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Round %d/%d\n", result.Round, game.MaxRounds)
	fmt.Fprintf(&b, "You: %s | Bot: %s\n", result.PlayerAction, result.OpponentAction)
	b.WriteString(result.Explanation)
	b.WriteString("\n\n")
	b.WriteString(Score(result.PlayerScore, result.OpponentScore))
	if result.MatchOver {
		b.WriteString("\n")
		b.WriteString(GameOver(state))
	}
	return b.String()
}

// Score renders the running score line.
func Score(player, opponent int) string {
	return fmt.Sprintf("Score: You %d - Bot %d", player, opponent)
}

// GameOver renders the final banner. It returns an empty string while the
// match is still running.
func GameOver(state game.MatchState) string {
	if !state.IsOver {
		return ""
	}
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("🏁 GAME OVER!\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Final Score: You %d - Bot %d\n", state.PlayerScore, state.OpponentScore)
	b.WriteString(ResultLine(state.FinalResult))
	return b.String()
}

// ResultLine is the one-line verdict for a final result.
func ResultLine(result game.Outcome) string {
	switch result {
	case game.PlayerWin:
		return "🎉 You win the game!"
	case game.OpponentWin:
		return "🤖 Bot wins the game!"
	case game.Draw:
		return "🤝 It's a draw!"
	default:
		return ""
	}
}

// Status renders a compact summary of a match in progress.
func Status(state game.MatchState) string {
	round := state.RoundCount + 1
	if state.IsOver {
		round = state.RoundCount
	}
	return fmt.Sprintf("Round %d/%d | %s | Your bomb: %s | Bot bomb: %s",
		round, game.MaxRounds,
		Score(state.PlayerScore, state.OpponentScore),
		bombStatus(state.PlayerOverrideUsed),
		bombStatus(state.OpponentOverrideUsed))
}

// History renders the audit trail, one line per round.
func History(state game.MatchState) string {
	if len(state.History) == 0 {
		return "No rounds played yet."
	}
	lines := make([]string, 0, len(state.History))
	for _, rec := range state.History {
		lines = append(lines, fmt.Sprintf("%d. You: %-8s Bot: %-8s %s",
			rec.Round, rec.PlayerAction, rec.OpponentAction, rec.Explanation))
	}
	return strings.Join(lines, "\n")
}

func bombStatus(used bool) string {
	if used {
		return "used"
	}
	return "ready"
}

func rejectionText(err error) string {
	var verr *game.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if err == nil {
		return "Error processing turn. Please try again."
	}
	return err.Error()
}
