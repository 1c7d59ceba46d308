package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"papergen/internal/app/identity"
	"papergen/internal/domain/model"
	"papergen/internal/domain/repository"
	"papergen/internal/platform/logger"

	"github.com/google/uuid"
)

// Library is the shared access path to the persisted store for the façade
// services. Every mutation is a read-modify-write of the whole document, so
// mutations are serialised per process. Separate processes sharing one
// backend race with last-write-wins.
type Library struct {
	repo repository.StoreRepository
	log  *logger.Logger

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func NewLibrary(repo repository.StoreRepository, log *logger.Logger) *Library {
	return &Library{
		repo:  repo,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: newTimeOrderedID,
	}
}

// newTimeOrderedID returns a UUIDv7, falling back to a random UUID if the
// clock source fails.
func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// view loads the store for the acting user. ok is false without an identity.
func (l *Library) view(ctx context.Context) (store *model.Store, userID string, ok bool) {
	userID, ok = identity.UserIDFromContext(ctx)
	if !ok {
		return nil, "", false
	}
	return l.repo.Read(ctx), userID, true
}

// mutate applies fn to the acting user's view of the store and writes the
// whole store back when fn reports a change. Without an identity it is a
// silent no-op. A backend read failure aborts before anything is written.
func (l *Library) mutate(ctx context.Context, fn func(store *model.Store, userID string) (changed bool, err error)) error {
	userID, ok := identity.UserIDFromContext(ctx)
	if !ok {
		l.log.Debug("store mutation skipped: no active identity")
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	store, err := l.repo.Load(ctx)
	if err != nil {
		return err
	}
	changed, err := fn(store, userID)
	if err != nil || !changed {
		return err
	}
	return l.repo.Write(ctx, store)
}

func newestPapersFirst(papers []model.QuestionPaper) []model.QuestionPaper {
	out := slices.Clone(papers)
	slices.SortStableFunc(out, func(a, b model.QuestionPaper) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if out == nil {
		out = []model.QuestionPaper{}
	}
	return out
}

func newestQuestionsFirst(questions []model.BankQuestion) []model.BankQuestion {
	out := slices.Clone(questions)
	slices.SortStableFunc(out, func(a, b model.BankQuestion) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if out == nil {
		out = []model.BankQuestion{}
	}
	return out
}
