package navigation

import (
	"context"
	"errors"
	"sync"

	"papergen/internal/app/identity"
	"papergen/internal/platform/logger"
)

var errNoRunner = errors.New("no generation runner configured")

// Client is the identity resolver and session kept for one user.
type Client struct {
	Resolver *identity.Resolver
	Session  *Session
	stop     func()
}

// Registry owns the clients of all users seen by this process.
type Registry struct {
	settings identity.SettingsSource
	log      *logger.Logger

	mu      sync.Mutex
	runner  Runner
	clients map[string]*Client
}

func NewRegistry(settings identity.SettingsSource, log *logger.Logger) *Registry {
	return &Registry{
		settings: settings,
		log:      log,
		clients:  map[string]*Client{},
	}
}

// SetRunner installs the generation runner used by every session.
func (r *Registry) SetRunner(runner Runner) {
	r.mu.Lock()
	r.runner = runner
	r.mu.Unlock()
}

// Client returns the client of userID, creating it on first use.
func (r *Registry) Client(userID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[userID]; ok {
		return c
	}
	resolver := identity.NewResolver(r.settings, r.log)
	session := NewSession(userID, RunnerFunc(r.run), r.log)
	c := &Client{Resolver: resolver, Session: session}
	c.stop = session.Follow(context.Background(), resolver)
	r.clients[userID] = c
	return c
}

func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[userID]
	return c, ok
}

// Dispatch delivers ev to the session of userID. It reports false when the
// user has no session in this process.
func (r *Registry) Dispatch(ctx context.Context, userID string, ev Event) (State, bool) {
	c, ok := r.Lookup(userID)
	if !ok {
		return nil, false
	}
	return c.Session.Dispatch(ctx, ev), true
}

// Pending reports whether the session of userID still waits for requestID.
func (r *Registry) Pending(userID, requestID string) bool {
	c, ok := r.Lookup(userID)
	if !ok {
		return false
	}
	active, ok := c.Session.State().(Active)
	if !ok {
		return false
	}
	req, ok := pendingRequest(active.Op)
	return ok && req.ID == requestID
}

// Close detaches every session from its resolver.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.stop()
		delete(r.clients, id)
	}
}

func (r *Registry) run(ctx context.Context, job Job) error {
	r.mu.Lock()
	runner := r.runner
	r.mu.Unlock()
	if runner == nil {
		return errNoRunner
	}
	return runner.Run(ctx, job)
}
