package referee

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsplus/internal/game"
)

func newTestService(t *testing.T, config Config, opts ...game.TestControllerOption) (*Service, *quartz.Mock) {
	t.Helper()
	mockClock := quartz.NewMock(t)
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	return NewService(game.NewTestController(opts...), mockClock, logger, config), mockClock
}

func TestServiceLifecycle(t *testing.T) {
	svc, _ := newTestService(t, Config{}, game.WithOpponentScript(game.Scissors, game.Rock, game.Paper))

	m, err := svc.Create()
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	assert.Equal(t, game.NewMatch(), m.State)
	assert.Equal(t, 1, svc.Count())

	m, result, err := svc.PlayTurn(m.ID, "rock")
	require.NoError(t, err)
	assert.Equal(t, game.TurnResolved, result.Status)
	assert.Equal(t, game.PlayerWin, result.Outcome)
	assert.Equal(t, 1, m.State.RoundCount)

	m, result, err = svc.PlayTurn(m.ID, "banana")
	require.NoError(t, err)
	assert.Equal(t, game.TurnRejected, result.Status)
	assert.Equal(t, 1, m.State.RoundCount)

	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.State, got.State)

	_, _, err = svc.PlayTurn(m.ID, "paper")
	require.NoError(t, err)
	m, result, err = svc.PlayTurn(m.ID, "rock")
	require.NoError(t, err)
	assert.True(t, result.MatchOver)
	assert.True(t, m.State.IsOver)
	assert.Equal(t, game.PlayerWin, m.State.FinalResult)

	_, result, err = svc.PlayTurn(m.ID, "rock")
	require.NoError(t, err)
	assert.Equal(t, game.TurnMatchOver, result.Status)

	require.NoError(t, svc.Delete(m.ID))
	assert.ErrorIs(t, svc.Delete(m.ID), ErrMatchNotFound)
	_, err = svc.Get(m.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	_, _, err = svc.PlayTurn(m.ID, "rock")
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.Zero(t, svc.Count())
}

func TestServiceCapacity(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxActive: 2})

	a, err := svc.Create()
	require.NoError(t, err)
	_, err = svc.Create()
	require.NoError(t, err)

	_, err = svc.Create()
	assert.ErrorIs(t, err, ErrTooManyMatches)

	require.NoError(t, svc.Delete(a.ID))
	_, err = svc.Create()
	assert.NoError(t, err)
}

func TestServiceMatchesAreIndependent(t *testing.T) {
	svc, _ := newTestService(t, Config{}, game.WithOpponentScript(game.Rock, game.Rock))

	a, err := svc.Create()
	require.NoError(t, err)
	b, err := svc.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	a, _, err = svc.PlayTurn(a.ID, "bomb")
	require.NoError(t, err)
	assert.True(t, a.State.PlayerOverrideUsed)

	// Spending the bomb in one match leaves it available in the other.
	b, result, err := svc.PlayTurn(b.ID, "bomb")
	require.NoError(t, err)
	assert.Equal(t, game.TurnResolved, result.Status)
	assert.True(t, b.State.PlayerOverrideUsed)
}

func TestServiceSerializesTurnsPerMatch(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	svc.controller = game.NewController(game.NewBiasedPolicy(game.ProcessRand), nil)

	const matches = 20
	const callers = 8

	ids := make([]string, matches)
	for i := range ids {
		m, err := svc.Create()
		require.NoError(t, err)
		ids[i] = m.ID
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	resolved := map[string]int{}
	for _, id := range ids {
		for c := 0; c < callers; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, result, err := svc.PlayTurn(id, "paper")
				if err != nil {
					return
				}
				if result.Status == game.TurnResolved {
					mu.Lock()
					resolved[id]++
					mu.Unlock()
				}
			}()
		}
	}
	wg.Wait()

	for _, id := range ids {
		m, err := svc.Get(id)
		require.NoError(t, err)
		assert.Equal(t, game.MaxRounds, m.State.RoundCount)
		assert.Equal(t, game.MaxRounds, resolved[id], "exactly three of the concurrent turns resolve")
		assert.True(t, m.State.IsOver)
		assert.NoError(t, m.State.Verify())
	}
}

func TestServiceSweepExpiresIdleMatches(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc, mockClock := newTestService(t, Config{IdleTimeout: 10 * time.Minute})

	stale, err := svc.Create()
	require.NoError(t, err)

	mockClock.Advance(6 * time.Minute).MustWait(ctx)
	fresh, err := svc.Create()
	require.NoError(t, err)

	mockClock.Advance(5 * time.Minute).MustWait(ctx)
	assert.Equal(t, 1, svc.Sweep())

	_, err = svc.Get(stale.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	_, err = svc.Get(fresh.ID)
	require.NoError(t, err)

	// Playing a turn counts as activity.
	mockClock.Advance(4 * time.Minute).MustWait(ctx)
	_, _, err = svc.PlayTurn(fresh.ID, "rock")
	require.NoError(t, err)
	mockClock.Advance(9 * time.Minute).MustWait(ctx)
	assert.Zero(t, svc.Sweep())

	mockClock.Advance(2 * time.Minute).MustWait(ctx)
	assert.Equal(t, 1, svc.Sweep())
	assert.Zero(t, svc.Count())
}

func TestServiceSweepDisabled(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	_, err := svc.Create()
	require.NoError(t, err)
	assert.Zero(t, svc.Sweep())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.Run(ctx))
}
