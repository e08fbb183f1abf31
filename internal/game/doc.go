// Package game implements the rules and state machine for a best-of-three
// rock/paper/scissors match between a player and an automated opponent, where
// each side also holds one single-use bomb that beats every ordinary action.
//
// The main type is MatchState, an immutable-by-convention value recording the
// scores, bomb usage, round history and final result of one match.
//
// # Basic Usage
//
// Drive a match through a Controller, one raw input per turn:
//
//	c := game.NewController(nil, logger)
//	state := game.NewMatch()
//	state, result := c.PlayTurn(state, "  Rock ")
//	if result.Status == game.TurnRejected {
//	    // result.Err says why; no round was consumed
//	}
//
// The four steps the controller runs are also exported for callers that
// orchestrate a turn themselves: Validate, SelectOpponentAction, Resolve and
// ApplyRound.
//
// # Deterministic Testing
//
// The opponent draws from a Rand. Pass a seeded *rand.Rand for reproducible
// matches:
//
//	rng := rand.New(rand.NewSource(42))
//	c := game.NewController(game.NewBiasedPolicy(rng), logger)
//
// or script the opponent outright with NewScriptedPolicy.
//
// # Concurrency
//
// Nothing in this package blocks or performs I/O. A MatchState must have one
// owner at a time; independent matches share nothing and may be advanced in
// parallel through the same Controller.
package game
