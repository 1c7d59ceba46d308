package identity

import (
	"context"
	"testing"

	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSettings map[string]model.Settings

func (s staticSettings) SettingsFor(_ context.Context, userID string) (model.Settings, bool) {
	settings, ok := s[userID]
	return settings, ok
}

func TestSubscribeBeforeInitialisation(t *testing.T) {
	r := NewResolver(nil, logger.NewNop())

	var calls []*model.User
	unsubscribe := r.Subscribe(func(u *model.User) { calls = append(calls, u) })
	defer unsubscribe()
	assert.Empty(t, calls, "nothing is known before the first publish")

	r.Publish(context.Background(), nil)
	require.Len(t, calls, 1)
	assert.Nil(t, calls[0])
}

func TestSubscribeAfterInitialisationFiresImmediately(t *testing.T) {
	r := NewResolver(nil, logger.NewNop())
	r.Publish(context.Background(), &AuthUser{ID: "u1", Email: "a@example.org"})

	var got *model.User
	r.Subscribe(func(u *model.User) { got = u })
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}

func TestPublishMergesSettings(t *testing.T) {
	school := "Springfield High"
	r := NewResolver(staticSettings{"u1": {Role: model.RoleTeacher, DefaultSchoolName: &school}}, logger.NewNop())

	var got *model.User
	r.Subscribe(func(u *model.User) { got = u })
	r.Publish(context.Background(), &AuthUser{ID: "u1", Email: "a@example.org", DisplayPictureURL: "https://img/x.png"})

	require.NotNil(t, got)
	assert.Equal(t, model.RoleTeacher, got.Role)
	require.NotNil(t, got.DefaultSchoolName)
	assert.Equal(t, school, *got.DefaultSchoolName)
	assert.Equal(t, "https://img/x.png", got.DisplayPictureURL)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	r := NewResolver(nil, logger.NewNop())
	count := 0
	unsubscribe := r.Subscribe(func(*model.User) { count++ })

	r.Publish(context.Background(), &AuthUser{ID: "u1"})
	unsubscribe()
	unsubscribe()
	r.Publish(context.Background(), nil)

	assert.Equal(t, 1, count)
}

func TestCurrentIDAndContext(t *testing.T) {
	r := NewResolver(nil, logger.NewNop())

	_, ok := r.CurrentID()
	assert.False(t, ok)
	_, ok = UserIDFromContext(r.Context(context.Background()))
	assert.False(t, ok)

	r.Publish(context.Background(), &AuthUser{ID: "u1"})
	id, ok := r.CurrentID()
	require.True(t, ok)
	assert.Equal(t, "u1", id)

	ctxID, ok := UserIDFromContext(r.Context(context.Background()))
	require.True(t, ok)
	assert.Equal(t, "u1", ctxID)

	r.Publish(context.Background(), nil)
	_, ok = r.CurrentID()
	assert.False(t, ok)
}

func TestRefreshRepublishesWithNewSettings(t *testing.T) {
	settings := staticSettings{}
	r := NewResolver(settings, logger.NewNop())
	r.Publish(context.Background(), &AuthUser{ID: "u1"})
	assert.Equal(t, model.RoleUnset, r.Current().Role)

	settings["u1"] = model.Settings{Role: model.RoleStudent}
	r.Refresh(context.Background())
	assert.Equal(t, model.RoleStudent, r.Current().Role)
}

func TestWithUserIDEmptyStaysAnonymous(t *testing.T) {
	_, ok := UserIDFromContext(WithUserID(context.Background(), ""))
	assert.False(t, ok)
}
