package navigation

import (
	"time"

	"papergen/internal/domain/model"
)

// Snapshot is the JSON form of a session state.
type Snapshot struct {
	State     string                   `json:"state"`
	User      *model.User              `json:"user,omitempty"`
	Page      Page                     `json:"page,omitempty"`
	Pages     []Page                   `json:"pages,omitempty"`
	Paper     *model.QuestionPaper     `json:"paper,omitempty"`
	Shared    *model.QuestionPaper     `json:"shared,omitempty"`
	AuthError string                   `json:"authError,omitempty"`
	Op        string                   `json:"op,omitempty"`
	Loading   bool                     `json:"loading"`
	Queued    bool                     `json:"queued"`
	Request   *model.GenerationRequest `json:"request,omitempty"`
	RetryAt   *time.Time               `json:"retryAt,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

func SnapshotOf(s State) Snapshot {
	snap := Snapshot{State: s.stateName()}
	switch st := s.(type) {
	case PublicLanding:
		snap.Shared = st.Shared
		snap.AuthError = st.AuthError
	case RoleSelection:
		u := st.User
		snap.User = &u
	case Active:
		u := st.User
		snap.User = &u
		snap.Page = st.View.Page()
		snap.Pages = PagesFor(u.Role)
		snap.Paper = viewPaper(st.View)
		snap.Op = st.Op.opName()
		switch op := st.Op.(type) {
		case Loading:
			snap.Loading = true
			snap.Request = &op.Request
		case Queued:
			snap.Queued = true
			snap.Request = &op.Request
			retryAt := op.RetryAt
			snap.RetryAt = &retryAt
		case Failed:
			snap.Request = &op.Request
			snap.Error = op.Message
		}
	}
	return snap
}

func viewPaper(v View) *model.QuestionPaper {
	switch view := v.(type) {
	case EditorView:
		return &view.Paper
	case AttemptView:
		return &view.Paper
	case PaperView:
		return &view.Paper
	}
	return nil
}
