package game

import "fmt"

// beats maps each cyclic action to the one it defeats.
var beats = map[Action]Action{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// Resolve decides a single round. Rules are checked in order: bomb against
// bomb draws, a lone bomb wins, identical cyclic actions draw, and otherwise
// the rock/paper/scissors relation decides.
//
// Resolve panics if either action is not valid.
func Resolve(player, opponent Action) Outcome {
	mustBeValid(player)
	mustBeValid(opponent)

	switch {
	case player.IsOverride() && opponent.IsOverride():
		return Draw
	case player.IsOverride():
		return PlayerWin
	case opponent.IsOverride():
		return OpponentWin
	case player == opponent:
		return Draw
	case beats[player] == opponent:
		return PlayerWin
	default:
		return OpponentWin
	}
}

// Explain returns the one-line referee explanation for a round.
func Explain(player, opponent Action) string {
	switch Resolve(player, opponent) {
	case Draw:
		if player.IsOverride() {
			return "Both played bomb → Draw!"
		}
		return "Same move → Draw!"
	case PlayerWin:
		if player.IsOverride() {
			return "Bomb beats all → You win this round!"
		}
		return fmt.Sprintf("%s beats %s → You win this round!", player, opponent)
	default:
		if opponent.IsOverride() {
			return "Bomb beats all → Bot wins this round!"
		}
		return fmt.Sprintf("%s beats %s → Bot wins this round!", opponent, player)
	}
}

func mustBeValid(a Action) {
	if !a.IsValid() {
		panic(fmt.Errorf("%w: %s is not a playable action", ErrContractViolation, a))
	}
}
