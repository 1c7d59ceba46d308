package service

import (
	"context"
	"fmt"
	"strings"

	"papergen/internal/common"
	"papergen/internal/domain/model"
)

// UpdateSettingsRequest carries profile changes. Nil fields are left as they
// are; an empty string clears the field.
type UpdateSettingsRequest struct {
	DisplayName       *string `json:"displayName"`
	DefaultSchoolName *string `json:"defaultSchoolName"`
	SchoolLogo        *string `json:"schoolLogo"`
}

// SettingsService manages per-user settings and the one-time role choice.
type SettingsService struct {
	lib *Library
}

func NewSettingsService(lib *Library) *SettingsService {
	return &SettingsService{lib: lib}
}

// SettingsFor loads the settings record of userID regardless of the acting
// identity. It feeds the identity resolver.
func (s *SettingsService) SettingsFor(ctx context.Context, userID string) (model.Settings, bool) {
	settings, ok := s.lib.repo.Read(ctx).UserSettings[userID]
	return settings, ok
}

// GetSettings returns the acting user's settings, or the zero value.
func (s *SettingsService) GetSettings(ctx context.Context) model.Settings {
	store, userID, ok := s.lib.view(ctx)
	if !ok {
		return model.Settings{}
	}
	return store.UserSettings[userID]
}

func (s *SettingsService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (model.Settings, error) {
	var updated model.Settings
	err := s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		settings := store.UserSettings[userID]
		settings.DisplayName = applyOptional(settings.DisplayName, req.DisplayName)
		settings.DefaultSchoolName = applyOptional(settings.DefaultSchoolName, req.DefaultSchoolName)
		settings.SchoolLogo = applyOptional(settings.SchoolLogo, req.SchoolLogo)
		settings.UpdatedAt = s.lib.now()
		store.UserSettings[userID] = settings
		updated = settings
		return true, nil
	})
	if err != nil {
		return model.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return updated, nil
}

// ChooseRole records the acting user's role. The choice is permanent: a
// second call fails with ErrConflict.
func (s *SettingsService) ChooseRole(ctx context.Context, role model.Role) (model.Settings, error) {
	if !role.Valid() {
		return model.Settings{}, common.Errorf("unknown role %q: %w", role, common.ErrValidation)
	}
	var updated model.Settings
	err := s.lib.mutate(ctx, func(store *model.Store, userID string) (bool, error) {
		settings := store.UserSettings[userID]
		if settings.Role != model.RoleUnset {
			return false, common.Errorf("role already chosen as %s: %w", settings.Role, common.ErrConflict)
		}
		settings.Role = role
		settings.UpdatedAt = s.lib.now()
		store.UserSettings[userID] = settings
		updated = settings
		return true, nil
	})
	if err != nil {
		return model.Settings{}, fmt.Errorf("choose role: %w", err)
	}
	return updated, nil
}

func applyOptional(current, change *string) *string {
	if change == nil {
		return current
	}
	v := strings.TrimSpace(*change)
	if v == "" {
		return nil
	}
	return &v
}
