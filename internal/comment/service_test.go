package comment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/internal/auth"
	"github.com/VitaminP8/forum/internal/logging"
	"github.com/VitaminP8/forum/internal/mocks"
	"github.com/VitaminP8/forum/internal/storage/memory"
	"github.com/VitaminP8/forum/internal/subscription"
	"github.com/VitaminP8/forum/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	events   *mocks.MockSubscriptionManager
	posts    *memory.PostMemoryStorage
	owner    uint
	stranger uint
	postID   uint
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := memory.New()
	users := memory.NewUserMemoryStorage(db)
	posts := memory.NewPostMemoryStorage(db)

	f := fixture{events: mocks.NewMockSubscriptionManager(), posts: posts}
	for _, name := range []string{"owner", "stranger"} {
		u := &models.User{Username: name, PasswordHash: "hash", PasswordLookup: "lookup-" + name}
		require.NoError(t, users.CreateUser(ctx, u))
		if name == "owner" {
			f.owner = u.ID
		} else {
			f.stranger = u.ID
		}
	}

	p := &models.Post{UserID: f.owner, Title: "A post", Body: "Post body"}
	require.NoError(t, posts.CreatePost(ctx, p))
	f.postID = p.ID

	f.svc = NewService(memory.NewCommentMemoryStorage(db), posts, f.events, logging.Discard())
	return f
}

func as(userID uint) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

func TestService_Create(t *testing.T) {
	f := setup(t)

	t.Run("Author comes from the context", func(t *testing.T) {
		c, err := f.svc.Create(as(f.stranger), f.postID, models.CommentInput{Body: "Nice one"})
		require.NoError(t, err)
		assert.Equal(t, f.stranger, c.UserID)
		assert.Equal(t, f.postID, c.PostID)
		assert.Equal(t, "stranger", c.User.Username)
	})

	t.Run("Created comments are published", func(t *testing.T) {
		before := f.events.Count(f.postID)
		c, err := f.svc.Create(as(f.owner), f.postID, models.CommentInput{Body: "Thanks"})
		require.NoError(t, err)
		assert.Equal(t, before+1, f.events.Count(f.postID))
		assert.Equal(t, c, f.events.Published[f.postID][before])
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), f.postID, models.CommentInput{Body: "Hi there"})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("Unknown post", func(t *testing.T) {
		_, err := f.svc.Create(as(f.owner), 999, models.CommentInput{Body: "Hi there"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Validation", func(t *testing.T) {
		before := f.events.Count(f.postID)
		for _, body := range []string{"", " x ", strings.Repeat("y", 2001)} {
			_, err := f.svc.Create(as(f.owner), f.postID, models.CommentInput{Body: body})
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "body of %d chars", len(body))
			assert.Contains(t, ve.Fields, "body")
		}
		assert.Equal(t, before, f.events.Count(f.postID))
	})

	t.Run("Length counts characters", func(t *testing.T) {
		_, err := f.svc.Create(as(f.owner), f.postID, models.CommentInput{Body: strings.Repeat("ж", 2000)})
		assert.NoError(t, err)
	})
}

func TestService_List(t *testing.T) {
	f := setup(t)

	for _, body := range []string{"first", "second", "third"} {
		_, err := f.svc.Create(as(f.owner), f.postID, models.CommentInput{Body: body})
		require.NoError(t, err)
	}

	list, err := f.svc.List(context.Background(), f.postID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Body)
	assert.Equal(t, "first", list[2].Body)

	_, err = f.svc.List(context.Background(), 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_ListAfterPostDeletion(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(as(f.owner), f.postID, models.CommentInput{Body: "soon gone"})
	require.NoError(t, err)

	require.NoError(t, f.posts.DeletePostByID(context.Background(), f.postID))

	_, err = f.svc.List(context.Background(), f.postID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Ownership(t *testing.T) {
	f := setup(t)
	c, err := f.svc.Create(as(f.owner), f.postID, models.CommentInput{Body: "original"})
	require.NoError(t, err)

	t.Run("Owner can update", func(t *testing.T) {
		updated, err := f.svc.Update(as(f.owner), c.ID, models.CommentInput{Body: "edited"})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Body)
	})

	t.Run("Other user cannot update", func(t *testing.T) {
		_, err := f.svc.Update(as(f.stranger), c.ID, models.CommentInput{Body: "hijacked"})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("Anonymous cannot update", func(t *testing.T) {
		_, err := f.svc.Update(context.Background(), c.ID, models.CommentInput{Body: "hijacked"})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("Unknown comment", func(t *testing.T) {
		_, err := f.svc.Update(as(f.owner), 999, models.CommentInput{Body: "edited"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Other user cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.Delete(as(f.stranger), c.ID), apperr.ErrForbidden)
	})

	t.Run("Owner can delete", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(as(f.owner), c.ID))
		list, err := f.svc.List(context.Background(), f.postID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestService_SubscribeReceivesCreatedComments(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	events := subscription.NewSubscriptionManager()
	f.svc.events = events

	ch, cancel, err := f.svc.Subscribe(ctx, f.postID)
	require.NoError(t, err)
	defer cancel()

	created, err := f.svc.Create(as(f.stranger), f.postID, models.CommentInput{Body: "live!"})
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, created, got)
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for comment")
	}

	_, _, err = f.svc.Subscribe(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
