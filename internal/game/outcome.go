package game

import (
	"fmt"
	"strings"
)

// Outcome is the result of a round, or of a whole match.
type Outcome uint8

const (
	// NoOutcome is the unset value, used for the final result of a match in progress.
	NoOutcome Outcome = iota
	PlayerWin
	OpponentWin
	Draw
)

var outcomeNames = [...]string{
	NoOutcome:   "",
	PlayerWin:   "PLAYER_WIN",
	OpponentWin: "OPPONENT_WIN",
	Draw:        "DRAW",
}

func (o Outcome) String() string {
	if o <= Draw {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// IsDecided reports whether o is one of PlayerWin, OpponentWin or Draw
func (o Outcome) IsDecided() bool {
	return o >= PlayerWin && o <= Draw
}

// Mirror returns the outcome seen from the other side of the table.
func (o Outcome) Mirror() Outcome {
	switch o {
	case PlayerWin:
		return OpponentWin
	case OpponentWin:
		return PlayerWin
	default:
		return o
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	if o > Draw {
		return nil, fmt.Errorf("cannot marshal %s", o)
	}
	return []byte(outcomeNames[o]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome accepts the canonical names case-insensitively. The empty
// string parses as NoOutcome.
func ParseOutcome(s string) (Outcome, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for o := NoOutcome; o <= Draw; o++ {
		if outcomeNames[o] == normalized {
			return o, nil
		}
	}
	return NoOutcome, fmt.Errorf("unknown outcome %q", s)
}

// compareScores is the final-result rule: the higher score wins, equal scores draw.
func compareScores(player, opponent int) Outcome {
	switch {
	case player > opponent:
		return PlayerWin
	case opponent > player:
		return OpponentWin
	default:
		return Draw
	}
}
