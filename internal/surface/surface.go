// Package surface holds the input/display state of a weather lookup and
// the one-way flow that updates it: trigger, background fetch, result,
// state transition, render.
package surface

import (
	"context"
	"sync"

	"github.com/fakhrymubarak/weather-lookup/internal/model"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Policy decides which completion may overwrite the displayed result
// when lookups overlap.
type Policy int

const (
	// LatestRequestWins keeps the result of the most recently started
	// lookup. Superseded lookups are cancelled and their results dropped.
	LatestRequestWins Policy = iota
	// LastCompletedWins lets whichever lookup finishes last overwrite the
	// state, and never cancels a lookup once started.
	LastCompletedWins
)

func (p Policy) String() string {
	switch p {
	case LatestRequestWins:
		return "latest-request-wins"
	case LastCompletedWins:
		return "last-completed-wins"
	default:
		return "unknown"
	}
}

// Fetcher performs one lookup and reports its outcome as a result value.
type Fetcher interface {
	Lookup(ctx context.Context, query model.WeatherQuery) model.WeatherResult
}

// State is a snapshot of what the surface displays.
type State struct {
	Query      string               `json:"query"`
	Result     *model.WeatherResult `json:"result,omitempty"`
	Pending    int                  `json:"pending"`
	Generation uint64               `json:"generation"`
}

type Option func(*Surface)

func WithPolicy(p Policy) Option {
	return func(s *Surface) { s.policy = p }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

// Surface owns the last-result slot. The slot is written only by apply.
type Surface struct {
	fetcher Fetcher
	policy  Policy
	logger  *zap.SugaredLogger

	mu         sync.Mutex
	state      State
	closed     bool
	cancelPrev context.CancelFunc
	observers  []func(State)

	// notifyMu keeps observer callbacks in the same order as transitions.
	notifyMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	tasks  conc.WaitGroup
}

func New(fetcher Fetcher, opts ...Option) *Surface {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Surface{
		fetcher: fetcher,
		policy:  LatestRequestWins,
		logger:  zap.NewNop().Sugar(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to receive a copy of the state after every
// applied transition.
func (s *Surface) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// SetQuery replaces the current input text.
func (s *Surface) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state.Query = text
}

// State returns a copy of the current state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Submit sets the query and triggers a lookup for it.
func (s *Surface) Submit(text string) bool {
	s.SetQuery(text)
	return s.Trigger()
}

// Trigger starts a background lookup for the current query. It returns
// false without issuing a request when the query is blank or the
// surface has been closed.
func (s *Surface) Trigger() bool {
	s.mu.Lock()
	query := model.NewWeatherQuery(s.state.Query)
	if s.closed || query.Blank() {
		s.mu.Unlock()
		return false
	}

	s.state.Generation++
	gen := s.state.Generation
	s.state.Pending++

	ctx, cancel := context.WithCancel(s.ctx)
	if s.policy == LatestRequestWins && s.cancelPrev != nil {
		s.cancelPrev()
	}
	s.cancelPrev = cancel
	s.mu.Unlock()

	s.logger.Debugw("Lookup triggered", "city", query.City, "generation", gen, "policy", s.policy.String())

	s.tasks.Go(func() {
		defer cancel()
		result := s.fetcher.Lookup(ctx, query)
		s.apply(gen, result)
	})
	return true
}

// apply is the single completion path into the last-result slot.
func (s *Surface) apply(gen uint64, result model.WeatherResult) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debugw("Lookup finished after teardown, dropped", "generation", gen)
		return
	}
	s.state.Pending--
	if s.policy == LatestRequestWins && gen != s.state.Generation {
		s.mu.Unlock()
		s.logger.Debugw("Superseded lookup dropped", "generation", gen)
		return
	}
	s.state.Result = &result
	snap := s.snapshot()
	observers := append([]func(State){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// Wait blocks until every started lookup has completed.
func (s *Surface) Wait() {
	s.tasks.Wait()
}

// Close tears the view down. In-flight lookups are cancelled and any
// result that still arrives is ignored.
func (s *Surface) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

func (s *Surface) snapshot() State {
	snap := s.state
	if s.state.Result != nil {
		r := *s.state.Result
		snap.Result = &r
	}
	return snap
}
