package navigation

import (
	"time"

	"papergen/internal/domain/model"
)

// Event is an input to Transition.
type Event interface {
	eventName() string
}

// AuthResolved carries an identity notification. A nil User means signed out.
type AuthResolved struct {
	User *model.User
}

type SignInStarted struct{}

type SignInFailed struct {
	Message string
}

// RoleChosen carries the user after the role was recorded.
type RoleChosen struct {
	User model.User
}

// Navigate asks for page. Paper is required for pages that display one.
type Navigate struct {
	Page  Page
	Paper *model.QuestionPaper
}

type GenerationStarted struct {
	Request model.GenerationRequest
}

// GenerationQueued reports a rate-limited attempt that resumes at RetryAt.
type GenerationQueued struct {
	RequestID string
	RetryAt   time.Time
	Attempt   int
}

// GenerationRetrying reports that a queued request is running again.
type GenerationRetrying struct {
	RequestID string
}

type GenerationCompleted struct {
	RequestID string
	Paper     model.QuestionPaper
}

type GenerationFailed struct {
	RequestID string
	Message   string
}

type TryAgain struct{}

type DismissError struct{}

// SharedLinkOpened carries a paper decoded from a share link.
type SharedLinkOpened struct {
	Paper model.QuestionPaper
}

func (AuthResolved) eventName() string        { return "auth_resolved" }
func (SignInStarted) eventName() string       { return "sign_in_started" }
func (SignInFailed) eventName() string        { return "sign_in_failed" }
func (RoleChosen) eventName() string          { return "role_chosen" }
func (Navigate) eventName() string            { return "navigate" }
func (GenerationStarted) eventName() string   { return "generation_started" }
func (GenerationQueued) eventName() string    { return "generation_queued" }
func (GenerationRetrying) eventName() string  { return "generation_retrying" }
func (GenerationCompleted) eventName() string { return "generation_completed" }
func (GenerationFailed) eventName() string    { return "generation_failed" }
func (TryAgain) eventName() string            { return "try_again" }
func (DismissError) eventName() string        { return "dismiss_error" }
func (SharedLinkOpened) eventName() string    { return "shared_link_opened" }

// Effect is work the caller must perform after a transition.
type Effect interface {
	effectName() string
}

// RunGeneration starts the request on the generation backend.
type RunGeneration struct {
	Request model.GenerationRequest
}

func (RunGeneration) effectName() string { return "run_generation" }
