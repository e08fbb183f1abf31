package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned for input that is not rock, paper, scissors or bomb.
	ErrInvalidAction = errors.New("invalid action")
	// ErrOverrideAlreadyUsed is returned when a side submits bomb a second time.
	ErrOverrideAlreadyUsed = errors.New("override already used")
)

// ValidationError describes rejected player input. It wraps one of
// ErrInvalidAction or ErrOverrideAlreadyUsed, and its message is suitable for
// showing to the player as-is.
type ValidationError struct {
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrOverrideAlreadyUsed) {
		return "You already used your bomb! Choose rock, paper, or scissors."
	}
	return fmt.Sprintf("Invalid move '%s'. Valid moves: rock, paper, scissors, bomb.", e.Input)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Code returns a stable machine-readable identifier for the rejection
func (e *ValidationError) Code() string {
	if errors.Is(e.Err, ErrOverrideAlreadyUsed) {
		return "override_already_used"
	}
	return "invalid_action"
}

// Validate normalizes raw player input and checks it against the rule set.
// overrideUsed is whether the submitting side has already played its bomb.
func Validate(raw string, overrideUsed bool) (Action, error) {
	action, ok := ParseAction(raw)
	if !ok {
		return 0, &ValidationError{Input: raw, Err: ErrInvalidAction}
	}
	if action.IsOverride() && overrideUsed {
		return 0, &ValidationError{Input: raw, Err: ErrOverrideAlreadyUsed}
	}
	return action, nil
}
