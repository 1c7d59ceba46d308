package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"papergen/internal/common"
	"papergen/internal/domain/model"
)

const copySuffix = " (Copy)"

// PaperService manages the acting user's owned and attended papers.
type PaperService struct {
	lib *Library
}

func NewPaperService(lib *Library) *PaperService {
	return &PaperService{lib: lib}
}

// SavePaper upserts p by id into the acting user's papers. A paper without an
// id or timestamp gets fresh ones; a new paper without a school name takes
// the user's default. Without an identity nothing is stored and the result
// is nil.
func (s *PaperService) SavePaper(ctx context.Context, p *model.QuestionPaper) (*model.QuestionPaper, error) {
	var saved *model.QuestionPaper
	err := s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		if p == nil {
			return false, common.Errorf("missing paper: %w", common.ErrBadRequest)
		}
		entry := *p
		if strings.TrimSpace(entry.ID) == "" {
			entry.ID = s.lib.newID()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = s.lib.now()
		}

		papers := store.Papers[userID]
		idx := slices.IndexFunc(papers, func(existing model.QuestionPaper) bool { return existing.ID == entry.ID })
		if idx >= 0 {
			papers[idx] = entry
		} else {
			if entry.SchoolName == nil {
				if settings, ok := store.UserSettings[userID]; ok {
					entry.SchoolName = settings.DefaultSchoolName
					if entry.SchoolLogo == nil {
						entry.SchoolLogo = settings.SchoolLogo
					}
				}
			}
			papers = append(papers, entry)
		}
		store.Papers[userID] = papers
		saved = &entry
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("save paper: %w", err)
	}
	return saved, nil
}

// ListPapers returns the acting user's papers, newest first.
func (s *PaperService) ListPapers(ctx context.Context) []model.QuestionPaper {
	store, userID, ok := s.lib.view(ctx)
	if !ok {
		return []model.QuestionPaper{}
	}
	return newestPapersFirst(store.Papers[userID])
}

func (s *PaperService) GetPaper(ctx context.Context, id string) (*model.QuestionPaper, error) {
	store, userID, ok := s.lib.view(ctx)
	if !ok {
		return nil, common.ErrNotFound
	}
	return findPaper(store.Papers[userID], id)
}

// DeletePaper removes the paper with id; an unknown id is a no-op.
func (s *PaperService) DeletePaper(ctx context.Context, id string) error {
	return s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		papers := store.Papers[userID]
		kept := slices.DeleteFunc(slices.Clone(papers), func(p model.QuestionPaper) bool { return p.ID == id })
		if len(kept) == len(papers) {
			return false, nil
		}
		store.Papers[userID] = kept
		return true, nil
	})
}

// DuplicatePaper clones the paper with id under a fresh id and timestamp.
func (s *PaperService) DuplicatePaper(ctx context.Context, id string) (*model.QuestionPaper, error) {
	var clone *model.QuestionPaper
	err := s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		original, err := findPaper(store.Papers[userID], id)
		if err != nil {
			return false, err
		}
		c := *original
		c.ID = s.lib.newID()
		c.CreatedAt = s.lib.now()
		c.Subject = original.Subject + copySuffix
		c.Instructions = slices.Clone(original.Instructions)
		c.Sections = slices.Clone(original.Sections)
		store.Papers[userID] = append(store.Papers[userID], c)
		clone = &c
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("duplicate paper %s: %w", id, err)
	}
	return clone, nil
}

// SaveAttendedPaper records p once; saving the same id again changes nothing.
func (s *PaperService) SaveAttendedPaper(ctx context.Context, p *model.QuestionPaper) error {
	return s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		if p == nil || strings.TrimSpace(p.ID) == "" {
			return false, common.Errorf("save attended paper: %w", common.ErrBadRequest)
		}
		attended := store.AttendedPapers[userID]
		if slices.ContainsFunc(attended, func(existing model.QuestionPaper) bool { return existing.ID == p.ID }) {
			return false, nil
		}
		entry := *p
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = s.lib.now()
		}
		store.AttendedPapers[userID] = append(attended, entry)
		return true, nil
	})
}

// ListAttendedPapers returns the acting user's attended papers, newest first.
func (s *PaperService) ListAttendedPapers(ctx context.Context) []model.QuestionPaper {
	store, userID, ok := s.lib.view(ctx)
	if !ok {
		return []model.QuestionPaper{}
	}
	return newestPapersFirst(store.AttendedPapers[userID])
}

func (s *PaperService) GetAttendedPaper(ctx context.Context, id string) (*model.QuestionPaper, error) {
	store, userID, ok := s.lib.view(ctx)
	if !ok {
		return nil, common.ErrNotFound
	}
	return findPaper(store.AttendedPapers[userID], id)
}

func findPaper(papers []model.QuestionPaper, id string) (*model.QuestionPaper, error) {
	for i := range papers {
		if papers[i].ID == id {
			found := papers[i]
			return &found, nil
		}
	}
	return nil, fmt.Errorf("paper %s: %w", id, common.ErrNotFound)
}
