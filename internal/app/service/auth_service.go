package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"papergen/internal/app/identity"
	"papergen/internal/app/navigation"
	"papergen/internal/common"
	"papergen/internal/common/security"
	"papergen/internal/domain/model"
	"papergen/internal/domain/repository"
	"papergen/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	minPasswordLength = 6
	maxFailedLogins   = 5
	failedLoginWindow = 15 * time.Minute
)

type AuthService struct {
	accounts repository.AccountRepository
	settings *SettingsService
	tokens   *security.TokenIssuer
	registry *navigation.Registry
	log      *logger.Logger

	// mu guards failures and signedOut. signedOut holds users who logged
	// out; their tokens stay rejected until the next sign-in.
	mu        sync.Mutex
	failures  map[string][]time.Time
	signedOut map[string]bool
	now       func() time.Time
}

func NewAuthService(accounts repository.AccountRepository, settings *SettingsService, tokens *security.TokenIssuer, registry *navigation.Registry, log *logger.Logger) *AuthService {
	return &AuthService{
		accounts:  accounts,
		settings:  settings,
		tokens:    tokens,
		registry:  registry,
		log:       log,
		failures:  map[string][]time.Time{},
		signedOut: map[string]bool{},
		now:       time.Now,
	}
}

type SignupRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DisplayPictureURL string `json:"displayPictureUrl"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User    *model.User         `json:"user"`
	Token   string              `json:"token"`
	Session navigation.Snapshot `json:"session"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	email, err := normaliseEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, newAuthError(AuthWeakPassword)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		ID:                uuid.NewString(),
		Email:             email,
		HashedPassword:    hashedPassword,
		DisplayPictureURL: strings.TrimSpace(req.DisplayPictureURL),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, newAuthError(AuthEmailInUse)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	s.log.Info("account created", "user_id", account.ID)

	return s.signIn(ctx, account)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email, err := normaliseEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if s.lockedOut(email) {
		return nil, newAuthError(AuthTooManyRequests)
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.recordFailure(email)
			return nil, newAuthError(AuthUserNotFound)
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	client := s.registry.Client(account.ID)
	client.Session.Dispatch(ctx, navigation.SignInStarted{})

	if !security.CheckPasswordHash(req.Password, account.HashedPassword) {
		s.recordFailure(email)
		authErr := newAuthError(AuthWrongPassword)
		client.Session.Dispatch(ctx, navigation.SignInFailed{Message: AuthMessage(authErr)})
		return nil, authErr
	}
	s.clearFailures(email)

	return s.signIn(ctx, account)
}

// Logout signs userID out of its session. Requests still carrying the old
// token fail with AuthSessionExpired until the user signs in again.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	s.mu.Lock()
	s.signedOut[userID] = true
	s.mu.Unlock()
	s.log.Info("signed out", "user_id", userID)

	if client, ok := s.registry.Lookup(userID); ok {
		client.Resolver.Publish(ctx, nil)
	}
}

// Restore returns the client of userID, publishing the account to its
// resolver if this process has not seen the user since it started.
func (s *AuthService) Restore(ctx context.Context, userID string) (*navigation.Client, error) {
	if s.isSignedOut(userID) {
		return nil, newAuthError(AuthSessionExpired)
	}
	client := s.registry.Client(userID)
	if current := client.Resolver.Current(); current != nil {
		return client, nil
	}
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, newAuthError(AuthSessionExpired)
		}
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	client.Resolver.Publish(ctx, authUserOf(account))
	return client, nil
}

// Me returns the merged identity of userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	client, err := s.Restore(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := client.Resolver.Current()
	if user == nil {
		return nil, newAuthError(AuthSessionExpired)
	}
	return user, nil
}

// ChooseRole records the role once and moves the session to the role's
// dashboard.
func (s *AuthService) ChooseRole(ctx context.Context, userID string, role model.Role) (*AuthResponse, error) {
	client, err := s.Restore(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.settings.ChooseRole(identity.WithUserID(ctx, userID), role); err != nil {
		return nil, err
	}

	if current := client.Resolver.Current(); current != nil {
		chosen := *current
		chosen.Role = role
		client.Session.Dispatch(ctx, navigation.RoleChosen{User: chosen})
	}
	client.Resolver.Refresh(ctx)
	s.log.Info("role chosen", "user_id", userID, "role", string(role))

	return &AuthResponse{User: client.Resolver.Current(), Session: navigation.SnapshotOf(client.Session.State())}, nil
}

// Refresh re-reads settings into the user's identity after a profile change.
func (s *AuthService) Refresh(ctx context.Context, userID string) {
	if client, ok := s.registry.Lookup(userID); ok {
		client.Resolver.Refresh(ctx)
	}
}

func (s *AuthService) signIn(ctx context.Context, account *model.Account) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.mu.Lock()
	delete(s.signedOut, account.ID)
	s.mu.Unlock()

	client := s.registry.Client(account.ID)
	client.Resolver.Publish(ctx, authUserOf(account))

	return &AuthResponse{
		User:    client.Resolver.Current(),
		Token:   token,
		Session: navigation.SnapshotOf(client.Session.State()),
	}, nil
}

func (s *AuthService) isSignedOut(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signedOut[userID]
}

func (s *AuthService) lockedOut(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recentFailures(email)) >= maxFailedLogins
}

func (s *AuthService) recordFailure(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[email] = append(s.recentFailures(email), s.now())
}

func (s *AuthService) clearFailures(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, email)
}

// recentFailures must be called with s.mu held.
func (s *AuthService) recentFailures(email string) []time.Time {
	cutoff := s.now().Add(-failedLoginWindow)
	var recent []time.Time
	for _, at := range s.failures[email] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	if len(recent) == 0 {
		delete(s.failures, email)
	} else {
		s.failures[email] = recent
	}
	return recent
}

func normaliseEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", newAuthError(AuthInvalidEmail)
	}
	return strings.ToLower(addr.Address), nil
}

func authUserOf(account *model.Account) *identity.AuthUser {
	return &identity.AuthUser{
		ID:                account.ID,
		Email:             account.Email,
		DisplayPictureURL: account.DisplayPictureURL,
	}
}
