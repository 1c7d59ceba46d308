package navigation

import (
	"context"
	"sync"

	"papergen/internal/app/identity"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"
)

const runUnavailableMessage = "Paper generation is unavailable right now. Please try again in a moment."

// Job is one generation request handed to a Runner.
type Job struct {
	UserID  string
	Role    model.Role
	Request model.GenerationRequest
}

// Runner accepts generation jobs. Run must not block on the generation
// itself; results come back as events.
type Runner interface {
	Run(ctx context.Context, job Job) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, job Job) error

func (f RunnerFunc) Run(ctx context.Context, job Job) error { return f(ctx, job) }

// Session applies events for one user in order and runs their effects.
type Session struct {
	userID string
	runner Runner
	log    *logger.Logger

	mu    sync.Mutex
	state State
}

func NewSession(userID string, runner Runner, log *logger.Logger) *Session {
	return &Session{
		userID: userID,
		runner: runner,
		log:    log.With("user_id", userID),
		state:  AuthLoading{},
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies ev and returns the resulting state. Effects run after the
// session lock is released, so a Runner may dispatch back into the session.
func (s *Session) Dispatch(ctx context.Context, ev Event) State {
	s.mu.Lock()
	prev := s.state
	next, effect := Transition(prev, ev)
	s.state = next
	s.mu.Unlock()

	if prev.stateName() != next.stateName() {
		s.log.Debug("session transition", "event", ev.eventName(), "from", prev.stateName(), "to", next.stateName())
	}
	if effect == nil {
		return next
	}
	s.runEffect(ctx, next, effect)
	return s.State()
}

func (s *Session) runEffect(ctx context.Context, st State, effect Effect) {
	switch e := effect.(type) {
	case RunGeneration:
		active, ok := st.(Active)
		if !ok || s.runner == nil {
			s.Dispatch(ctx, GenerationFailed{RequestID: e.Request.ID, Message: runUnavailableMessage})
			return
		}
		job := Job{UserID: s.userID, Role: active.User.Role, Request: e.Request}
		if err := s.runner.Run(ctx, job); err != nil {
			s.log.Warn("generation could not be scheduled", "request_id", e.Request.ID, "error", err)
			s.Dispatch(ctx, GenerationFailed{RequestID: e.Request.ID, Message: runUnavailableMessage})
		}
	default:
		s.log.Error("unhandled session effect", "effect", effect.effectName())
	}
}

// Follow feeds the resolver's identity notifications into the session until
// the returned stop function is called.
func (s *Session) Follow(ctx context.Context, r *identity.Resolver) (stop func()) {
	return r.Subscribe(func(u *model.User) {
		s.Dispatch(ctx, AuthResolved{User: u})
	})
}
