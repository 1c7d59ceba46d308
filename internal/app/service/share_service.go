package service

import (
	"context"
	"errors"

	"papergen/internal/app/identity"
	"papergen/internal/app/navigation"
	"papergen/internal/app/sharelink"
	"papergen/internal/common"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"
)

const (
	CollectionPapers   = "papers"
	CollectionAttended = "attended"
)

type ShareLink struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// OpenedPaper is the result of consuming a share link. Collection is empty
// when nothing was stored (anonymous or role-less viewers).
type OpenedPaper struct {
	Paper      *model.QuestionPaper `json:"paper"`
	Collection string               `json:"collection,omitempty"`
	ReadOnly   bool                 `json:"readOnly"`
	Session    *navigation.Snapshot `json:"session,omitempty"`
}

// ShareService builds and consumes share links.
type ShareService struct {
	baseURL string
	papers  *PaperService
	clients ClientSource
	log     *logger.Logger
}

func NewShareService(baseURL string, papers *PaperService, clients ClientSource, log *logger.Logger) *ShareService {
	return &ShareService{baseURL: baseURL, papers: papers, clients: clients, log: log}
}

// Link builds the share link of one of the acting user's papers, owned or
// attended.
func (s *ShareService) Link(ctx context.Context, paperID string) (*ShareLink, error) {
	paper, err := s.papers.GetPaper(ctx, paperID)
	if errors.Is(err, common.ErrNotFound) {
		paper, err = s.papers.GetAttendedPaper(ctx, paperID)
	}
	if err != nil {
		return nil, err
	}
	return s.LinkFor(paper)
}

func (s *ShareService) LinkFor(p *model.QuestionPaper) (*ShareLink, error) {
	token, err := sharelink.Encode(p)
	if err != nil {
		return nil, err
	}
	url, err := sharelink.BuildLink(s.baseURL, p)
	if err != nil {
		return nil, err
	}
	return &ShareLink{URL: url, Token: token}, nil
}

// Open decodes link and files the paper by the viewer's role: a teacher keeps
// a copy in papers, a student in attended papers. Anonymous viewers get the
// paper read-only.
func (s *ShareService) Open(ctx context.Context, link string) (*OpenedPaper, error) {
	paper, err := sharelink.DecodeLink(link)
	if err != nil {
		s.log.Debug("share link rejected", "error", err)
		return nil, err
	}

	userID, ok := identity.UserIDFromContext(ctx)
	if !ok {
		return &OpenedPaper{Paper: paper, ReadOnly: true}, nil
	}
	client, err := s.clients.Restore(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &OpenedPaper{Paper: paper}
	user := client.Resolver.Current()
	switch {
	case user != nil && user.Role == model.RoleTeacher:
		saved, err := s.papers.SavePaper(ctx, paper)
		if err != nil {
			return nil, err
		}
		result.Paper = saved
		result.Collection = CollectionPapers
	case user != nil && user.Role == model.RoleStudent:
		if err := s.papers.SaveAttendedPaper(ctx, paper); err != nil {
			return nil, err
		}
		result.Collection = CollectionAttended
	default:
		result.ReadOnly = true
	}

	snap := navigation.SnapshotOf(client.Session.Dispatch(ctx, navigation.SharedLinkOpened{Paper: *result.Paper}))
	result.Session = &snap
	s.log.Info("share link opened", "user_id", userID, "paper_id", paper.ID, "collection", result.Collection)
	return result, nil
}
