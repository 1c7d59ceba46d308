package identity

import (
	"context"
	"sync"

	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"
)

// AuthUser is what the auth provider knows about a signed-in account.
type AuthUser struct {
	ID                string
	Email             string
	DisplayPictureURL string
}

// SettingsSource loads the settings record merged into every emitted User.
type SettingsSource interface {
	SettingsFor(ctx context.Context, userID string) (model.Settings, bool)
}

// Resolver holds the current session for one client and fans session changes
// out to subscribers. Callbacks run synchronously on the publishing goroutine,
// outside the resolver's lock.
type Resolver struct {
	settings SettingsSource
	log      *logger.Logger

	mu          sync.Mutex
	initialized bool
	current     *model.User
	nextSubID   int
	subscribers map[int]func(*model.User)
}

func NewResolver(settings SettingsSource, log *logger.Logger) *Resolver {
	return &Resolver{
		settings:    settings,
		log:         log,
		subscribers: map[int]func(*model.User){},
	}
}

// Subscribe registers cb. If the resolver already knows the session state
// (restored, signed in or signed out) cb fires immediately with it.
func (r *Resolver) Subscribe(cb func(*model.User)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = cb
	initialized := r.initialized
	current := cloneUser(r.current)
	r.mu.Unlock()

	if initialized {
		cb(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
		})
	}
}

// Publish records a session change from the auth provider. A nil user means
// signed out.
func (r *Resolver) Publish(ctx context.Context, authUser *AuthUser) {
	var user *model.User
	if authUser != nil {
		user = r.resolve(ctx, authUser)
	}

	r.mu.Lock()
	r.initialized = true
	r.current = user
	subs := make([]func(*model.User), 0, len(r.subscribers))
	for _, cb := range r.subscribers {
		subs = append(subs, cb)
	}
	r.mu.Unlock()

	if user != nil {
		r.log.Debug("session signed in", "user_id", user.ID, "role", string(user.Role))
	} else {
		r.log.Debug("session signed out")
	}
	for _, cb := range subs {
		cb(cloneUser(user))
	}
}

// Refresh re-merges settings for the current user and republishes, e.g.
// after a role choice or profile update.
func (r *Resolver) Refresh(ctx context.Context) {
	r.mu.Lock()
	current := r.current
	r.mu.Unlock()
	if current == nil {
		return
	}
	r.Publish(ctx, &AuthUser{ID: current.ID, Email: current.Email, DisplayPictureURL: current.DisplayPictureURL})
}

// CurrentID returns the signed-in user's id; false when nobody is signed in.
func (r *Resolver) CurrentID() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return "", false
	}
	return r.current.ID, true
}

// Current returns a copy of the signed-in user, or nil.
func (r *Resolver) Current() *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.current)
}

// Context scopes ctx to the current user, leaving it anonymous when nobody
// is signed in.
func (r *Resolver) Context(ctx context.Context) context.Context {
	if id, ok := r.CurrentID(); ok {
		return WithUserID(ctx, id)
	}
	return ctx
}

func (r *Resolver) resolve(ctx context.Context, authUser *AuthUser) *model.User {
	user := &model.User{
		ID:                authUser.ID,
		Email:             authUser.Email,
		DisplayPictureURL: authUser.DisplayPictureURL,
	}
	if r.settings == nil {
		return user
	}
	settings, ok := r.settings.SettingsFor(ctx, authUser.ID)
	if !ok {
		return user
	}
	user.Role = settings.Role
	user.DefaultSchoolName = settings.DefaultSchoolName
	user.SchoolLogo = settings.SchoolLogo
	if settings.DisplayName != nil {
		user.DisplayName = *settings.DisplayName
	}
	return user
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}
