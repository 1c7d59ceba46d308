package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"papergen/internal/app/navigation"
	"papergen/internal/common/security"
	"papergen/internal/domain/model"
	"papergen/internal/domain/repository"
	"papergen/internal/platform/logger"

	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	mu   sync.Mutex
	jobs []navigation.Job
}

func (r *stubRunner) Run(_ context.Context, job navigation.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *stubRunner) Jobs() []navigation.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]navigation.Job(nil), r.jobs...)
}

type harness struct {
	blobs    *repository.MemoryBlobStore
	lib      *Library
	papers   *PaperService
	settings *SettingsService
	registry *navigation.Registry
	runner   *stubRunner
	auth     *AuthService
	sessions *SessionService
	shares   *ShareService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	lib, blobs := newTestLibrary(t)
	return newHarnessOn(t, lib, blobs)
}

// newHarnessOn builds a fresh process view over existing storage.
func newHarnessOn(t *testing.T, lib *Library, blobs *repository.MemoryBlobStore) *harness {
	t.Helper()
	log := logger.NewNop()
	h := &harness{blobs: blobs, lib: lib, runner: &stubRunner{}}
	h.papers = NewPaperService(lib)
	h.settings = NewSettingsService(lib)
	h.registry = navigation.NewRegistry(h.settings, log)
	h.registry.SetRunner(h.runner)
	t.Cleanup(h.registry.Close)

	tokens := security.NewTokenIssuer([]byte("test-secret"), time.Hour)
	h.auth = NewAuthService(repository.NewBlobAccountRepository(blobs), h.settings, tokens, h.registry, log)
	h.sessions = NewSessionService(h.auth, h.papers, lib, log)
	h.shares = NewShareService("https://papers.example.org", h.papers, h.auth, log)
	return h
}

// signUp creates an account and, unless role is unset, chooses role for it.
func (h *harness) signUp(t *testing.T, email string, role model.Role) string {
	t.Helper()
	resp, err := h.auth.Signup(context.Background(), SignupRequest{Email: email, Password: "secret123"})
	require.NoError(t, err)
	if role != model.RoleUnset {
		_, err = h.auth.ChooseRole(context.Background(), resp.User.ID, role)
		require.NoError(t, err)
	}
	return resp.User.ID
}
