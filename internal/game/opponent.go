package game

import (
	"math/rand"
	"sync"
)

// OverrideProbability is the chance the opponent plays its bomb on any round
// while the bomb is still available.
const OverrideProbability = 0.15

// Rand is the source of randomness the opponent draws from. *rand.Rand
// satisfies it; use rand.New(rand.NewSource(seed)) for reproducible matches.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type processRand struct{}

func (processRand) Float64() float64 { return rand.Float64() }
func (processRand) Intn(n int) int   { return rand.Intn(n) }

// ProcessRand draws from the process-wide math/rand source and is safe for
// concurrent use.
var ProcessRand Rand = processRand{}

// SelectOpponentAction picks the automated opponent's action for one round.
// A nil rng means ProcessRand.
func SelectOpponentAction(overrideUsed bool, rng Rand) Action {
	if rng == nil {
		rng = ProcessRand
	}
	if !overrideUsed && rng.Float64() < OverrideProbability {
		return Bomb
	}
	return CyclicActions[rng.Intn(len(CyclicActions))]
}

// OpponentPolicy chooses the opponent's action given a read-only view of the
// match. Implementations must never return Bomb once
// state.OpponentOverrideUsed is true.
type OpponentPolicy interface {
	ChooseAction(state MatchState) Action
}

// BiasedPolicy is the production opponent: SelectOpponentAction over a
// configurable random source.
type BiasedPolicy struct {
	mu  sync.Mutex
	rng Rand
}

// NewBiasedPolicy creates a policy drawing from rng. Seeded *rand.Rand values
// are not goroutine-safe on their own, so draws are serialized here.
func NewBiasedPolicy(rng Rand) *BiasedPolicy {
	if rng == nil {
		rng = ProcessRand
	}
	return &BiasedPolicy{rng: rng}
}

// ChooseAction implements OpponentPolicy
func (p *BiasedPolicy) ChooseAction(state MatchState) Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return SelectOpponentAction(state.OpponentOverrideUsed, p.rng)
}
