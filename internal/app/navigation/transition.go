package navigation

import (
	"papergen/internal/domain/model"
)

// Transition returns the state that follows ev in s and any effect to run.
// Events that do not apply to s leave it unchanged.
func Transition(s State, ev Event) (State, Effect) {
	if e, ok := ev.(AuthResolved); ok {
		return resolveAuth(s, e.User), nil
	}

	switch st := s.(type) {
	case AuthLoading:
		return fromLanding(st, PublicLanding{}, ev), nil
	case PublicLanding:
		return fromLanding(st, st, ev), nil
	case Authenticating:
		if e, ok := ev.(SignInFailed); ok {
			return PublicLanding{AuthError: e.Message}, nil
		}
		return st, nil
	case RoleSelection:
		if e, ok := ev.(RoleChosen); ok && e.User.ID == st.User.ID && e.User.Role.Valid() {
			return Active{User: e.User, View: dashboard(), Op: Idle{}}, nil
		}
		return st, nil
	case Active:
		return activeTransition(st, ev)
	default:
		return s, nil
	}
}

func resolveAuth(s State, user *model.User) State {
	if user == nil {
		if pl, ok := s.(PublicLanding); ok {
			return PublicLanding{Shared: pl.Shared}
		}
		return PublicLanding{}
	}
	if !user.Role.Valid() {
		return RoleSelection{User: *user}
	}
	switch st := s.(type) {
	case Active:
		if st.User.ID == user.ID && st.User.Role == user.Role {
			st.User = *user
			return st
		}
	case PublicLanding:
		if st.Shared != nil {
			return Active{User: *user, View: PaperView{Paper: *st.Shared}, Op: Idle{}}
		}
	}
	return Active{User: *user, View: dashboard(), Op: Idle{}}
}

// fromLanding handles the anonymous states. landing is the PublicLanding the
// state falls back to.
func fromLanding(s State, landing PublicLanding, ev Event) State {
	switch e := ev.(type) {
	case SignInStarted:
		return Authenticating{}
	case SharedLinkOpened:
		paper := e.Paper
		return PublicLanding{Shared: &paper}
	case SignInFailed:
		landing.AuthError = e.Message
		return landing
	}
	return s
}

func activeTransition(st Active, ev Event) (State, Effect) {
	role := st.User.Role

	switch e := ev.(type) {
	case Navigate:
		if Busy(st.Op) {
			return st, nil
		}
		view, ok := viewFor(role, e.Page, e.Paper)
		if !ok {
			return st, nil
		}
		st.View = view
		st.Op = Idle{}
		return st, nil

	case SharedLinkOpened:
		if Busy(st.Op) {
			return st, nil
		}
		page := PagePaper
		if role == model.RoleStudent {
			page = PageAttempt
		}
		view, _ := viewFor(role, page, &e.Paper)
		st.View = view
		st.Op = Idle{}
		return st, nil

	case GenerationStarted:
		if Busy(st.Op) || e.Request.ID == "" || !kindAllowed(role, e.Request.Kind) {
			return st, nil
		}
		st.Op = Loading{Request: e.Request}
		return st, RunGeneration{Request: e.Request}

	case GenerationQueued:
		req, ok := pendingRequest(st.Op)
		if !ok || req.ID != e.RequestID {
			return st, nil
		}
		st.Op = Queued{Request: req, RetryAt: e.RetryAt, Attempt: e.Attempt}
		return st, nil

	case GenerationRetrying:
		q, ok := st.Op.(Queued)
		if !ok || q.Request.ID != e.RequestID {
			return st, nil
		}
		st.Op = Loading{Request: q.Request}
		return st, nil

	case GenerationCompleted:
		req, ok := pendingRequest(st.Op)
		if !ok || req.ID != e.RequestID {
			return st, nil
		}
		page := PageEditor
		if role == model.RoleStudent {
			page = PageAttempt
		}
		view, _ := viewFor(role, page, &e.Paper)
		st.View = view
		st.Op = Idle{}
		return st, nil

	case GenerationFailed:
		req, ok := pendingRequest(st.Op)
		if !ok || req.ID != e.RequestID {
			return st, nil
		}
		st.Op = Failed{Request: req, Message: e.Message}
		return st, nil

	case TryAgain:
		f, ok := st.Op.(Failed)
		if !ok {
			return st, nil
		}
		st.Op = Loading{Request: f.Request}
		return st, RunGeneration{Request: f.Request}

	case DismissError:
		if _, ok := st.Op.(Failed); ok {
			st.Op = Idle{}
		}
		return st, nil

	default:
		return st, nil
	}
}

func kindAllowed(role model.Role, kind model.GenerationKind) bool {
	switch kind {
	case model.KindGenerate:
		return true
	case model.KindAnalysis:
		return role == model.RoleTeacher
	}
	return false
}
