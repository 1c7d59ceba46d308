package service

import (
	"context"
	"errors"
	"strings"

	"papergen/internal/app/identity"
	"papergen/internal/app/navigation"
	"papergen/internal/common"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"
)

// ClientSource yields the live session client of a user.
type ClientSource interface {
	Restore(ctx context.Context, userID string) (*navigation.Client, error)
}

type NavigateRequest struct {
	Page navigation.Page `json:"page"`
	// PaperID selects the paper for pages that display one.
	PaperID  string `json:"paperId,omitempty"`
	Attended bool   `json:"attended,omitempty"`
}

// SessionService drives the acting user's navigation session.
type SessionService struct {
	clients ClientSource
	papers  *PaperService
	lib     *Library
	log     *logger.Logger
}

func NewSessionService(clients ClientSource, papers *PaperService, lib *Library, log *logger.Logger) *SessionService {
	return &SessionService{clients: clients, papers: papers, lib: lib, log: log}
}

func (s *SessionService) Snapshot(ctx context.Context) (navigation.Snapshot, error) {
	client, err := s.client(ctx)
	if err != nil {
		return navigation.Snapshot{}, err
	}
	return navigation.SnapshotOf(client.Session.State()), nil
}

// Navigate moves the session to req.Page. Requests made while a generation
// is in flight are ignored and the unchanged state is returned.
func (s *SessionService) Navigate(ctx context.Context, req NavigateRequest) (navigation.Snapshot, error) {
	client, err := s.client(ctx)
	if err != nil {
		return navigation.Snapshot{}, err
	}

	ev := navigation.Navigate{Page: req.Page}
	if req.Page.NeedsPaper() {
		if strings.TrimSpace(req.PaperID) == "" {
			return navigation.Snapshot{}, common.Errorf("page %s needs a paper: %w", req.Page, common.ErrBadRequest)
		}
		lookup := s.papers.GetPaper
		if req.Attended || req.Page == navigation.PageAttempt {
			lookup = s.papers.GetAttendedPaper
		}
		paper, err := lookup(ctx, req.PaperID)
		if err != nil {
			return navigation.Snapshot{}, err
		}
		ev.Paper = paper
	}
	return navigation.SnapshotOf(client.Session.Dispatch(ctx, ev)), nil
}

// Retry re-runs a failed generation.
func (s *SessionService) Retry(ctx context.Context) (navigation.Snapshot, error) {
	return s.dispatch(ctx, navigation.TryAgain{})
}

// Dismiss closes the error panel of a failed generation.
func (s *SessionService) Dismiss(ctx context.Context) (navigation.Snapshot, error) {
	return s.dispatch(ctx, navigation.DismissError{})
}

// Generate starts req for the acting user. It fails with
// common.ErrOperationInFlight while another request is pending.
func (s *SessionService) Generate(ctx context.Context, req model.GenerationRequest) (navigation.Snapshot, error) {
	client, err := s.client(ctx)
	if err != nil {
		return navigation.Snapshot{}, err
	}
	active, ok := client.Session.State().(navigation.Active)
	if !ok {
		return navigation.Snapshot{}, common.Errorf("choose a role before generating: %w", common.ErrForbidden)
	}
	if err := validateGeneration(active.User.Role, &req); err != nil {
		return navigation.Snapshot{}, err
	}
	if navigation.Busy(active.Op) {
		return navigation.Snapshot{}, common.ErrOperationInFlight
	}

	req.ID = s.lib.newID()
	if req.SchoolName == nil {
		req.SchoolName = active.User.DefaultSchoolName
	}

	st := client.Session.Dispatch(ctx, navigation.GenerationStarted{Request: req})
	snap := navigation.SnapshotOf(st)
	if snap.Request == nil || snap.Request.ID != req.ID {
		return navigation.Snapshot{}, common.ErrOperationInFlight
	}
	s.log.Info("generation requested", "user_id", active.User.ID, "request_id", req.ID, "kind", string(req.Kind))
	return snap, nil
}

func (s *SessionService) dispatch(ctx context.Context, ev navigation.Event) (navigation.Snapshot, error) {
	client, err := s.client(ctx)
	if err != nil {
		return navigation.Snapshot{}, err
	}
	return navigation.SnapshotOf(client.Session.Dispatch(ctx, ev)), nil
}

func (s *SessionService) client(ctx context.Context) (*navigation.Client, error) {
	userID, ok := identity.UserIDFromContext(ctx)
	if !ok {
		return nil, common.ErrUnauthorized
	}
	return s.clients.Restore(ctx, userID)
}

func validateGeneration(role model.Role, req *model.GenerationRequest) error {
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Kind == "" {
		req.Kind = model.KindGenerate
	}
	var problems []error
	if req.Subject == "" {
		problems = append(problems, errors.New("subject is required"))
	}
	if req.TotalMarks < 0 || req.DurationMinutes < 0 {
		problems = append(problems, errors.New("marks and duration cannot be negative"))
	}
	switch req.Kind {
	case model.KindGenerate:
	case model.KindAnalysis:
		if role != model.RoleTeacher {
			return common.Errorf("only teachers can analyse papers: %w", common.ErrForbidden)
		}
		if strings.TrimSpace(req.SourceText) == "" {
			problems = append(problems, errors.New("source text is required for analysis"))
		}
	default:
		problems = append(problems, errors.New("unknown generation kind"))
	}
	if len(problems) > 0 {
		return common.Errorf("%w: %w", common.ErrValidation, errors.Join(problems...))
	}
	return nil
}
