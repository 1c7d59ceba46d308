package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"papergen/internal/app/navigation"
	"papergen/internal/app/service"
	"papergen/internal/app/sharelink"
	"papergen/internal/common"
	"papergen/internal/common/security"
	"papergen/internal/domain/model"
	"papergen/internal/domain/repository"
	"papergen/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	jobs chan navigation.Job
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()
	blobs := repository.NewMemoryBlobStore()
	lib := service.NewLibrary(repository.NewStoreRepository(blobs, log), log)
	settings := service.NewSettingsService(lib)
	papers := service.NewPaperService(lib)
	tokens := security.NewTokenIssuer([]byte("router-test"), time.Hour)

	ts := &testServer{jobs: make(chan navigation.Job, 8)}
	registry := navigation.NewRegistry(settings, log)
	registry.SetRunner(navigation.RunnerFunc(func(_ context.Context, job navigation.Job) error {
		ts.jobs <- job
		return nil
	}))
	t.Cleanup(registry.Close)

	auth := service.NewAuthService(repository.NewBlobAccountRepository(blobs), settings, tokens, registry, log)
	ts.Server = httptest.NewServer(NewRouter(Services{
		Auth:     auth,
		Settings: settings,
		Papers:   papers,
		Bank:     service.NewBankService(lib),
		Sessions: service.NewSessionService(auth, papers, lib, log),
		Share:    service.NewShareService("https://papers.example.org", papers, auth, log),
		Tokens:   tokens,
	}, log))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// signUp registers an account with the given role and returns its token.
func (ts *testServer) signUp(t *testing.T, email string, role model.Role) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", service.SignupRequest{Email: email, Password: "secret123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	auth := decode[service.AuthResponse](t, resp)
	assert.Equal(t, "roleSelection", auth.Session.State)

	resp = ts.do(t, http.MethodPost, "/api/v1/auth/role", auth.Token, map[string]string{"role": string(role)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return auth.Token
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/v1/papers", "/api/v1/bank", "/api/v1/session", "/api/v1/settings"} {
		resp := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp := ts.do(t, http.MethodGet, "/api/v1/papers", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupErrorsCarryCodes(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp(t, "dup@example.org", model.RoleTeacher)

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", service.SignupRequest{Email: "dup@example.org", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[common.ErrorResponse](t, resp)
	assert.Equal(t, "auth/email-already-in-use", body.Code)

	resp = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", service.LoginRequest{Email: "dup@example.org", Password: "wrong-pass"})
	body = decode[common.ErrorResponse](t, resp)
	assert.Equal(t, "auth/wrong-password", body.Code)
	assert.Equal(t, "Invalid email or password.", body.Error)
}

func TestPaperLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp(t, "teacher@example.org", model.RoleTeacher)

	resp := ts.do(t, http.MethodPost, "/api/v1/papers", token, model.QuestionPaper{Subject: "Chemistry", ExamName: "Quiz"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[model.QuestionPaper](t, resp)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, model.SourceManual, saved.Source)

	resp = ts.do(t, http.MethodPost, "/api/v1/papers/"+saved.ID+"/duplicate", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	clone := decode[model.QuestionPaper](t, resp)
	assert.Equal(t, "Chemistry (Copy)", clone.Subject)

	resp = ts.do(t, http.MethodGet, "/api/v1/papers", token, nil)
	list := decode[[]model.QuestionPaper](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, clone.ID, list[0].ID)

	resp = ts.do(t, http.MethodGet, "/api/v1/papers/"+saved.ID+"/print?download=true", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "quiz-chemistry.html")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = ts.do(t, http.MethodDelete, "/api/v1/papers/"+saved.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = ts.do(t, http.MethodGet, "/api/v1/papers/"+saved.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPapersAreScopedToUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signUp(t, "alice@example.org", model.RoleTeacher)
	bob := ts.signUp(t, "bob@example.org", model.RoleTeacher)

	resp := ts.do(t, http.MethodPost, "/api/v1/papers", alice, model.QuestionPaper{Subject: "Biology"})
	saved := decode[model.QuestionPaper](t, resp)

	resp = ts.do(t, http.MethodGet, "/api/v1/papers/"+saved.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = ts.do(t, http.MethodGet, "/api/v1/papers", bob, nil)
	assert.Empty(t, decode[[]model.QuestionPaper](t, resp))
}

func TestBankRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp(t, "bank@example.org", model.RoleTeacher)

	resp := ts.do(t, http.MethodPost, "/api/v1/bank", token, model.BankQuestionFields{Text: "", Type: model.QuestionTypeShort})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/bank", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.BankQuestion](t, resp))
}

func TestGenerateIsSingleFlight(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp(t, "gen@example.org", model.RoleTeacher)

	req := model.GenerationRequest{Subject: "Physics", TotalMarks: 50}
	resp := ts.do(t, http.MethodPost, "/api/v1/generate", token, req)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	snap := decode[navigation.Snapshot](t, resp)
	assert.True(t, snap.Loading)

	select {
	case job := <-ts.jobs:
		assert.Equal(t, "Physics", job.Request.Subject)
	case <-time.After(time.Second):
		t.Fatal("generation job was not started")
	}

	resp = ts.do(t, http.MethodPost, "/api/v1/generate", token, req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/v1/session/navigate", token, service.NavigateRequest{Page: navigation.PageSettings})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[navigation.Snapshot](t, resp)
	assert.True(t, snap.Loading, "navigation is ignored while generating")
}

func TestStudentCannotAnalyse(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp(t, "student@example.org", model.RoleStudent)

	resp := ts.do(t, http.MethodPost, "/api/v1/generate", token, model.GenerationRequest{Kind: model.KindAnalysis, Subject: "History", SourceText: "..."})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestShareEncodeOpenAndView(t *testing.T) {
	ts := newTestServer(t)
	teacher := ts.signUp(t, "share@example.org", model.RoleTeacher)
	paper := model.QuestionPaper{ID: "shared-1", Subject: "Geography", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}

	resp := ts.do(t, http.MethodPost, "/api/v1/share/encode", teacher, paper)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	link := decode[service.ShareLink](t, resp)
	assert.True(t, strings.HasPrefix(link.URL, "https://papers.example.org/#share="))

	resp = ts.do(t, http.MethodPost, "/api/v1/share/open", "", map[string]string{"link": link.URL})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	opened := decode[service.OpenedPaper](t, resp)
	assert.True(t, opened.ReadOnly)
	assert.Equal(t, "Geography", opened.Paper.Subject)

	student := ts.signUp(t, "reader@example.org", model.RoleStudent)
	resp = ts.do(t, http.MethodPost, "/api/v1/share/open", student, map[string]string{"link": link.URL})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.do(t, http.MethodGet, "/api/v1/attended/shared-1", student, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/view/"+link.Token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Geography")
}

func TestCorruptShareLink(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/share/open", "", map[string]string{"link": "https://papers.example.org/#share=%%%"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[common.ErrorResponse](t, resp)
	assert.True(t, strings.HasPrefix(body.Code, "share/"))

	resp = ts.do(t, http.MethodGet, "/view/not-a-token", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err := sharelink.Decode("not-a-token")
	assert.Error(t, err)
}
