package game

import (
	"io"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"
)

// ScriptedPolicy plays a fixed list of opponent actions in order, then
// repeats Rock. It does not check the bomb rule; scripts that play bomb twice
// make ApplyRound panic, which is what tests of that contract want.
type ScriptedPolicy struct {
	mu      sync.Mutex
	actions []Action
	next    int
}

// NewScriptedPolicy creates a policy that will play actions in order
func NewScriptedPolicy(actions ...Action) *ScriptedPolicy {
	return &ScriptedPolicy{actions: actions}
}

// ChooseAction implements OpponentPolicy
func (p *ScriptedPolicy) ChooseAction(MatchState) Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.next >= len(p.actions) {
		return Rock
	}
	a := p.actions[p.next]
	p.next++
	return a
}

// TestControllerOption configures test controller creation
type TestControllerOption func(*testControllerBuilder)

type testControllerBuilder struct {
	seed   int64
	policy OpponentPolicy
	logger *log.Logger
}

// WithSeed makes the opponent a BiasedPolicy over rand.NewSource(seed)
func WithSeed(seed int64) TestControllerOption {
	return func(b *testControllerBuilder) { b.seed = seed }
}

// WithOpponentScript makes the opponent play exactly these actions
func WithOpponentScript(actions ...Action) TestControllerOption {
	return func(b *testControllerBuilder) { b.policy = NewScriptedPolicy(actions...) }
}

func WithLogger(logger *log.Logger) TestControllerOption {
	return func(b *testControllerBuilder) { b.logger = logger }
}

// NewTestController creates a controller with sensible test defaults: a
// seeded opponent (seed 42) and a discarding logger.
func NewTestController(opts ...TestControllerOption) *Controller {
	builder := &testControllerBuilder{
		seed:   42,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(builder)
	}

	policy := builder.policy
	if policy == nil {
		policy = NewBiasedPolicy(rand.New(rand.NewSource(builder.seed)))
	}
	return NewController(policy, builder.logger)
}

// PlayAll feeds inputs to PlayTurn in order and returns the final state and
// every turn result.
func PlayAll(c *Controller, state MatchState, inputs ...string) (MatchState, []TurnResult) {
	results := make([]TurnResult, 0, len(inputs))
	for _, in := range inputs {
		var r TurnResult
		state, r = c.PlayTurn(state, in)
		results = append(results, r)
	}
	return state, results
}
