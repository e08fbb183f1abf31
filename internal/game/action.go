package game

import (
	"fmt"
	"strings"
)

// Action is a move one side plays in a round.
type Action uint8

// The zero Action is deliberately not a move so that an unset field is never
// mistaken for rock.
const (
	Rock Action = iota + 1
	Paper
	Scissors
	Bomb
)

// CyclicActions lists the three ordinary actions in a fixed order. The
// opponent selector indexes into it, so the order is part of seeded replays.
var CyclicActions = [...]Action{Rock, Paper, Scissors}

var actionNames = [...]string{
	Rock:     "rock",
	Paper:    "paper",
	Scissors: "scissors",
	Bomb:     "bomb",
}

// String returns the canonical lowercase name of the action
func (a Action) String() string {
	if a.IsValid() {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// IsValid reports whether a is one of the four recognised actions
func (a Action) IsValid() bool {
	return a >= Rock && a <= Bomb
}

// IsOverride reports whether a is the single-use bomb
func (a Action) IsOverride() bool {
	return a == Bomb
}

// MarshalText implements encoding.TextMarshaler
func (a Action) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("cannot marshal %s", a)
	}
	return []byte(actionNames[a]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Action) UnmarshalText(text []byte) error {
	parsed, ok := ParseAction(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAction, text)
	}
	*a = parsed
	return nil
}

// ParseAction trims and lowercases raw and looks it up. It does not apply the
// single-use bomb rule; use Validate for user input.
func ParseAction(raw string) (Action, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for a := Rock; a <= Bomb; a++ {
		if actionNames[a] == normalized {
			return a, true
		}
	}
	return 0, false
}
