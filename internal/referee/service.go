package referee

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/rpsplus/internal/game"
)

var (
	// ErrMatchNotFound is returned for unknown or expired match IDs.
	ErrMatchNotFound = errors.New("match not found")
	// ErrTooManyMatches is returned by Create when the service is at capacity.
	ErrTooManyMatches = errors.New("too many active matches")
)

// Config bounds the service. Zero values mean unlimited / never expire.
type Config struct {
	MaxActive     int
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// Match is a point-in-time copy of a hosted match.
type Match struct {
	ID         string          `json:"id"`
	State      game.MatchState `json:"state"`
	CreatedAt  time.Time       `json:"created_at"`
	LastActive time.Time       `json:"last_active"`
}

// slot owns one match. mu serializes turns on that match only.
type slot struct {
	mu         sync.Mutex
	id         string
	state      game.MatchState
	createdAt  time.Time
	lastActive atomic.Int64 // unix nanos, read by the sweeper without mu
}

func (sl *slot) snapshot() Match {
	return Match{
		ID:         sl.id,
		State:      sl.state,
		CreatedAt:  sl.createdAt,
		LastActive: time.Unix(0, sl.lastActive.Load()),
	}
}

// Service hosts many independent matches. Turns on the same match are
// serialized; turns on different matches run in parallel. The registry lock is
// never held while a turn resolves.
type Service struct {
	controller *game.Controller
	clock      quartz.Clock
	logger     *log.Logger
	config     Config

	mu      sync.RWMutex
	matches map[string]*slot
}

// NewService creates a service. A nil controller plays the production
// opponent, a nil clock uses the real clock and a nil logger discards output.
func NewService(controller *game.Controller, clock quartz.Clock, logger *log.Logger, config Config) *Service {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if controller == nil {
		controller = game.NewController(nil, logger)
	}
	if config.IdleTimeout > 0 && config.SweepInterval <= 0 {
		config.SweepInterval = config.IdleTimeout / 2
	}
	return &Service{
		controller: controller,
		clock:      clock,
		logger:     logger.WithPrefix("referee"),
		config:     config,
		matches:    make(map[string]*slot),
	}
}

// Create starts a new match and returns it.
func (s *Service) Create() (Match, error) {
	now := s.clock.Now()
	sl := &slot{
		id:        uuid.NewString(),
		state:     game.NewMatch(),
		createdAt: now,
	}
	sl.lastActive.Store(now.UnixNano())

	s.mu.Lock()
	if s.config.MaxActive > 0 && len(s.matches) >= s.config.MaxActive {
		active := len(s.matches)
		s.mu.Unlock()
		s.logger.Warn("Refusing new match", "active", active, "max", s.config.MaxActive)
		return Match{}, ErrTooManyMatches
	}
	s.matches[sl.id] = sl
	active := len(s.matches)
	s.mu.Unlock()

	s.logger.Info("Match created", "match", sl.id, "active", active)
	return sl.snapshot(), nil
}

// Get returns the current state of a match.
func (s *Service) Get(id string) (Match, error) {
	sl, err := s.lookup(id)
	if err != nil {
		return Match{}, err
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.snapshot(), nil
}

// PlayTurn submits raw player input to a match. Rejected input and turns after
// the end are reported in the TurnResult, not as an error; the error is only
// for an unknown match.
func (s *Service) PlayTurn(id, input string) (Match, game.TurnResult, error) {
	sl, err := s.lookup(id)
	if err != nil {
		return Match{}, game.TurnResult{}, err
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	next, result := s.controller.PlayTurn(sl.state, input)
	sl.state = next
	sl.lastActive.Store(s.clock.Now().UnixNano())

	s.logger.Debug("Turn played", "match", id, "status", result.Status, "round", next.RoundCount)
	return sl.snapshot(), result, nil
}

// Delete removes a match.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return ErrMatchNotFound
	}
	delete(s.matches, id)
	s.logger.Info("Match deleted", "match", id)
	return nil
}

// Count returns the number of hosted matches.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// Sweep removes matches idle for longer than the configured timeout and
// returns how many were removed.
func (s *Service) Sweep() int {
	if s.config.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.config.IdleTimeout).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sl := range s.matches {
		if sl.lastActive.Load() < cutoff {
			delete(s.matches, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Expired idle matches", "removed", removed, "active", len(s.matches))
	}
	return removed
}

// Run sweeps idle matches on the configured interval until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	if s.config.IdleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}

	s.logger.Debug("Starting idle sweeper", "interval", s.config.SweepInterval, "timeout", s.config.IdleTimeout)
	w := s.clock.TickerFunc(ctx, s.config.SweepInterval, func() error {
		s.Sweep()
		return nil
	}, "referee", "sweep")

	err := w.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (s *Service) lookup(id string) (*slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return sl, nil
}
