package game

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		overrideUsed bool
		want         Action
		wantErr      error
	}{
		{"rock", "rock", false, Rock, nil},
		{"paper", "paper", false, Paper, nil},
		{"scissors", "scissors", false, Scissors, nil},
		{"bomb available", "bomb", false, Bomb, nil},
		{"upper case", "ROCK", false, Rock, nil},
		{"mixed case and padding", "  ScIsSoRs \t", false, Scissors, nil},
		{"trailing newline", "paper\n", true, Paper, nil},
		{"cyclic allowed after bomb", "rock", true, Rock, nil},
		{"unknown word", "xyz", false, 0, ErrInvalidAction},
		{"empty", "", false, 0, ErrInvalidAction},
		{"whitespace only", "   ", false, 0, ErrInvalidAction},
		{"inner space", "ro ck", false, 0, ErrInvalidAction},
		{"abbreviation", "r", false, 0, ErrInvalidAction},
		{"bomb used", "bomb", true, 0, ErrOverrideAlreadyUsed},
		{"bomb used shouted", "  BOMB ", true, 0, ErrOverrideAlreadyUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.input, tt.overrideUsed)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Action(0), got)

				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.input, verr.Input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateIsCaseAndWhitespaceInsensitive(t *testing.T) {
	for _, a := range []Action{Rock, Paper, Scissors, Bomb} {
		canonical, err := Validate(a.String(), false)
		require.NoError(t, err)

		noisy, err := Validate("  "+strings.ToUpper(a.String())+" ", false)
		require.NoError(t, err)

		assert.Equal(t, canonical, noisy)
		assert.Equal(t, a, canonical)

		// Feeding the canonical form back in is a fixed point.
		again, err := Validate(canonical.String(), false)
		require.NoError(t, err)
		assert.Equal(t, canonical, again)
	}
}

func TestValidationErrorMessages(t *testing.T) {
	_, err := Validate("xyz", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid move 'xyz'")
	assert.Contains(t, err.Error(), "rock, paper, scissors, bomb")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid_action", verr.Code())

	_, err = Validate("bomb", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already used")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "override_already_used", verr.Code())
}

func TestActionText(t *testing.T) {
	assert.Equal(t, "rock", Rock.String())
	assert.Equal(t, "bomb", Bomb.String())
	assert.Equal(t, "Action(0)", Action(0).String())
	assert.False(t, Action(0).IsValid())
	assert.False(t, Action(9).IsValid())
	assert.True(t, Bomb.IsOverride())
	assert.False(t, Paper.IsOverride())

	var a Action
	require.NoError(t, json.Unmarshal([]byte(`" Scissors "`), &a))
	assert.Equal(t, Scissors, a)

	err := json.Unmarshal([]byte(`"lizard"`), &a)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = json.Marshal(Action(0))
	assert.Error(t, err)
}
