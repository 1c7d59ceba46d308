package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"papergen/internal/app/identity"
	"papergen/internal/app/navigation"
	"papergen/internal/app/sharelink"
	"papergen/internal/domain/model"
	"papergen/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sharedPaper() *model.QuestionPaper {
	return &model.QuestionPaper{
		ID:        "shared-1",
		Subject:   "Economics",
		CreatedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		Sections:  []model.Section{{Title: "A", Questions: []model.Question{{Text: "Define GDP.", Marks: 2}}}},
	}
}

func TestShareLinkForOwnPaper(t *testing.T) {
	h := newHarness(t)
	ctx := identity.WithUserID(context.Background(), h.signUp(t, "t@example.org", model.RoleTeacher))

	saved, err := h.papers.SavePaper(ctx, sharedPaper())
	require.NoError(t, err)

	link, err := h.shares.Link(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "https://papers.example.org/#share="))

	decoded, err := sharelink.Decode(link.Token)
	require.NoError(t, err)
	assert.Equal(t, saved, decoded)

	_, err = h.shares.Link(ctx, "missing")
	assert.Error(t, err)
}

func TestOpenShareLinkByRole(t *testing.T) {
	h := newHarness(t)
	link, err := h.shares.LinkFor(sharedPaper())
	require.NoError(t, err)

	t.Run("anonymous", func(t *testing.T) {
		opened, err := h.shares.Open(context.Background(), link.URL)
		require.NoError(t, err)
		assert.True(t, opened.ReadOnly)
		assert.Empty(t, opened.Collection)
		assert.Nil(t, opened.Session)

		_, found, _ := h.blobs.Get(context.Background(), repository.StoreKey)
		assert.False(t, found, "anonymous viewing persists nothing")
	})

	t.Run("teacher", func(t *testing.T) {
		ctx := identity.WithUserID(context.Background(), h.signUp(t, "t@example.org", model.RoleTeacher))
		opened, err := h.shares.Open(ctx, link.URL)
		require.NoError(t, err)
		assert.Equal(t, CollectionPapers, opened.Collection)
		assert.Len(t, h.papers.ListPapers(ctx), 1)
		assert.Empty(t, h.papers.ListAttendedPapers(ctx))
		require.NotNil(t, opened.Session)
		assert.Equal(t, navigation.PagePaper, opened.Session.Page)
	})

	t.Run("student", func(t *testing.T) {
		ctx := identity.WithUserID(context.Background(), h.signUp(t, "s@example.org", model.RoleStudent))
		for i := 0; i < 2; i++ {
			opened, err := h.shares.Open(ctx, "#share="+link.Token)
			require.NoError(t, err)
			assert.Equal(t, CollectionAttended, opened.Collection)
			assert.Equal(t, navigation.PageAttempt, opened.Session.Page)
		}
		assert.Len(t, h.papers.ListAttendedPapers(ctx), 1)
		assert.Empty(t, h.papers.ListPapers(ctx))
	})

	t.Run("no role yet", func(t *testing.T) {
		ctx := identity.WithUserID(context.Background(), h.signUp(t, "n@example.org", model.RoleUnset))
		opened, err := h.shares.Open(ctx, link.URL)
		require.NoError(t, err)
		assert.True(t, opened.ReadOnly)
		assert.Empty(t, h.papers.ListPapers(ctx))
	})
}

func TestOpenRejectsCorruptLink(t *testing.T) {
	h := newHarness(t)
	_, err := h.shares.Open(context.Background(), "https://papers.example.org/#share=%%%")
	var decodeErr *sharelink.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "This share link is invalid or has been corrupted.", sharelink.UserMessage(err))
}
