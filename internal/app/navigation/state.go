// Package navigation holds the per-user session state machine: which screen
// the user sees and whether a generation is in flight. States, views,
// operations and events are closed sets of types; Transition is the only
// place that moves between them.
package navigation

import (
	"time"

	"papergen/internal/domain/model"
)

// State is one of AuthLoading, PublicLanding, Authenticating, RoleSelection
// or Active.
type State interface {
	stateName() string
}

// AuthLoading waits for the first identity notification.
type AuthLoading struct{}

// PublicLanding is shown to anonymous visitors. Shared holds a paper opened
// from a share link for read-only viewing.
type PublicLanding struct {
	Shared    *model.QuestionPaper
	AuthError string
}

type Authenticating struct{}

// RoleSelection is shown to a signed-in user who has not chosen a role.
type RoleSelection struct {
	User model.User
}

// Active is the signed-in application.
type Active struct {
	User model.User
	View View
	Op   Op
}

func (AuthLoading) stateName() string    { return "authLoading" }
func (PublicLanding) stateName() string  { return "publicLanding" }
func (Authenticating) stateName() string { return "authenticating" }
func (RoleSelection) stateName() string  { return "roleSelection" }
func (Active) stateName() string         { return "active" }

// View is what an Active state displays. Pages that show a paper have their
// own view types so that they cannot exist without one.
type View interface {
	Page() Page
}

// PageView is any page that does not display a paper.
type PageView struct {
	page Page
}

type EditorView struct{ Paper model.QuestionPaper }
type AttemptView struct{ Paper model.QuestionPaper }
type PaperView struct{ Paper model.QuestionPaper }

func (v PageView) Page() Page  { return v.page }
func (EditorView) Page() Page  { return PageEditor }
func (AttemptView) Page() Page { return PageAttempt }
func (PaperView) Page() Page   { return PagePaper }

// viewFor builds the view for page. It fails for pages outside role and for
// paper pages without a paper.
func viewFor(role model.Role, page Page, paper *model.QuestionPaper) (View, bool) {
	if !page.Allowed(role) {
		return nil, false
	}
	if !page.NeedsPaper() {
		return PageView{page: page}, true
	}
	if paper == nil {
		return nil, false
	}
	switch page {
	case PageEditor:
		return EditorView{Paper: *paper}, true
	case PageAttempt:
		return AttemptView{Paper: *paper}, true
	default:
		return PaperView{Paper: *paper}, true
	}
}

func dashboard() View {
	return PageView{page: PageDashboard}
}

// Op is the state of the generation operation shown over an Active view.
// Loading, Queued and Failed are mutually exclusive by construction.
type Op interface {
	opName() string
}

type Idle struct{}

type Loading struct {
	Request model.GenerationRequest
}

// Queued is a rate-limited request that resumes automatically at RetryAt.
type Queued struct {
	Request model.GenerationRequest
	RetryAt time.Time
	Attempt int
}

// Failed shows a dismissible error that can be retried.
type Failed struct {
	Request model.GenerationRequest
	Message string
}

func (Idle) opName() string    { return "idle" }
func (Loading) opName() string { return "loading" }
func (Queued) opName() string  { return "queued" }
func (Failed) opName() string  { return "failed" }

// Busy reports whether op holds an in-flight request.
func Busy(op Op) bool {
	switch op.(type) {
	case Loading, Queued:
		return true
	}
	return false
}

// pendingRequest returns the request op is waiting on, if any.
func pendingRequest(op Op) (model.GenerationRequest, bool) {
	switch o := op.(type) {
	case Loading:
		return o.Request, true
	case Queued:
		return o.Request, true
	}
	return model.GenerationRequest{}, false
}
