// Package session drives a game: it feeds key actions and timer ticks into a
// store of snake.GameState and renders every distinct state it publishes.
package session

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/snake"
	"github.com/vovakirdan/tui-snake/internal/storage"
	"github.com/vovakirdan/tui-snake/internal/store"
	"github.com/vovakirdan/tui-snake/internal/telemetry"
)

// RoundRecorder stores finished rounds.
type RoundRecorder interface {
	SaveRound(ctx context.Context, r storage.Round) (storage.Round, error)
}

// RenderFunc draws one published state.
type RenderFunc func(snake.GameState)

// Option configures a Session.
type Option func(*Session)

// WithRender subscribes fn to every distinct state.
func WithRender(fn RenderFunc) Option {
	return func(s *Session) { s.render = fn }
}

// WithLogger sets the session logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithTracer sets the tracer used for reducer spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Session) { s.tracer = tracer }
}

// WithRecorder records every finished round into r.
func WithRecorder(r RoundRecorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithStrategy lets a computer player pick the heading before each tick.
func WithStrategy(strategy snake.Strategy) Option {
	return func(s *Session) { s.strategy = strategy }
}

// Session owns the store for one game and the subscriptions attached to it.
// Close is the single teardown path for all of them.
type Session struct {
	store    *store.Store[snake.GameState]
	render   RenderFunc
	logger   *log.Logger
	tracer   trace.Tracer
	recorder RoundRecorder
	strategy snake.Strategy

	subs   []*store.Subscription
	closed atomic.Bool
	once   sync.Once
	done   chan struct{}
}

// outcome is the round-recording projection of a state. Running games all
// project to the zero value, so each finished round is emitted once.
type outcome struct {
	Over   bool
	Won    bool
	Level  string
	Score  int
	Length int
	Ticks  uint64
}

func outcomeOf(s snake.GameState) outcome {
	if !s.GameOver {
		return outcome{}
	}
	o := outcome{
		Over:   true,
		Won:    s.Won,
		Score:  s.Score,
		Length: len(s.Snake),
		Ticks:  s.Ticks,
	}
	if s.Level != nil {
		o.Level = s.Level.ID
	}
	return o
}

// New creates a session around initial. The render callback, if any, is
// called with initial before New returns.
func New(initial snake.GameState, opts ...Option) *Session {
	s := &Session{
		store:  store.New(initial, snake.Equal),
		logger: log.New(io.Discard),
		tracer: telemetry.NoopTracer(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.recorder != nil {
		s.subs = append(s.subs, store.SelectComparable(s.store, outcomeOf).Subscribe(s.record))
	}
	if s.render != nil {
		s.subs = append(s.subs, s.store.Select().Subscribe(func(st snake.GameState) {
			s.render(st)
		}))
	}

	return s
}

// State returns the current game state.
func (s *Session) State() snake.GameState {
	return s.store.State()
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// HandleAction applies a key action. Quit closes the session.
func (s *Session) HandleAction(action core.Action) {
	if s.closed.Load() {
		return
	}

	switch action {
	case core.ActionQuit:
		s.Close()
	case core.ActionPause:
		s.reduce("pause", snake.PauseReducer)
	case core.ActionRestart:
		s.reduce("restart", snake.Restart)
	default:
		if _, ok := action.Direction(); ok {
			s.reduce("direction", func(st snake.GameState) snake.GameState {
				return snake.DirectionReducer(st, action)
			})
		}
	}
}

// Tick advances the game one step.
func (s *Session) Tick() {
	if s.closed.Load() {
		return
	}

	if s.strategy != nil {
		if dir, ok := s.strategy.NextDirection(s.store.State()); ok {
			s.HandleAction(core.ActionFor(dir))
		}
	}
	s.reduce("tick", snake.TickReducer)
}

// Run executes actions and ticks one at a time, in arrival order, until ctx
// is cancelled or the session is closed. The session is closed on return.
// A closed channel stops being read; the other source keeps running.
func (s *Session) Run(ctx context.Context, actions <-chan core.Action, ticks <-chan time.Time) error {
	defer s.Close()

	s.logger.Debug("session started", "level", s.levelID())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case action, ok := <-actions:
			if !ok {
				actions = nil
				continue
			}
			s.HandleAction(action)
		case _, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			s.Tick()
		}
	}
}

// Close detaches the render and recorder subscriptions. Later actions and
// ticks are ignored. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		for _, sub := range s.subs {
			sub.Unsubscribe()
		}
		close(s.done)

		st := s.store.State()
		s.logger.Debug("session closed",
			"score", st.Score,
			"ticks", st.Ticks,
			"status", st.Status(),
			"subscribers", s.store.Subscribers(),
		)
	})
}

// reduce applies fn to the store inside a span.
func (s *Session) reduce(name string, fn func(snake.GameState) snake.GameState) {
	_, span := s.tracer.Start(context.Background(), "session."+name)
	defer span.End()

	s.store.Reduce(fn)

	st := s.store.State()
	span.SetAttributes(
		attribute.Int64("tick", int64(st.Ticks)),
		attribute.Int("score", st.Score),
		attribute.String("status", string(st.Status())),
	)
}

// record saves a finished round.
func (s *Session) record(o outcome) {
	if !o.Over {
		return
	}

	round, err := s.recorder.SaveRound(context.Background(), storage.Round{
		Level:  o.Level,
		Score:  o.Score,
		Length: o.Length,
		Ticks:  o.Ticks,
		Won:    o.Won,
	})
	if err != nil {
		s.logger.Warn("cannot record round", "error", err)
		return
	}
	s.logger.Info("round finished", "id", round.ID, "level", o.Level, "score", o.Score, "won", o.Won)
}

func (s *Session) levelID() string {
	if lvl := s.store.State().Level; lvl != nil {
		return lvl.ID
	}
	return ""
}
