package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/comment"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/follow"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/post"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/session"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
)

func TestUsersUniqueUsername(t *testing.T) {
	ctx := context.Background()
	store := New()

	sarah, err := store.CreateUser(ctx, user.User{Username: "sarah"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sarah.ID)
	assert.False(t, sarah.DateJoined.IsZero())

	_, err = store.CreateUser(ctx, user.User{Username: "Sarah"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	got, err := store.GetUserByUsername(ctx, "sarah")
	require.NoError(t, err)
	assert.Equal(t, sarah.ID, got.ID)

	_, err = store.GetUserByUsername(ctx, "SARAH")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostsOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	store := New()

	sarah, _ := store.CreateUser(ctx, user.User{Username: "sarah"})
	dara, _ := store.CreateUser(ctx, user.User{Username: "dara"})
	leo, err := store.CreateGroup(ctx, group.Group{Title: "leo", Slug: "leoleo"})
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		p := post.Post{Text: "sarah post", AuthorID: sarah.ID, PubDate: base.Add(time.Duration(i) * time.Minute)}
		if i%2 == 0 {
			p.GroupID = &leo.ID
		}
		_, err := store.CreatePost(ctx, p)
		require.NoError(t, err)
	}
	_, err = store.CreatePost(ctx, post.Post{Text: "dara post", AuthorID: dara.ID, PubDate: base.Add(time.Hour)})
	require.NoError(t, err)

	all, err := store.ListPosts(ctx, post.Filter{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "dara post", all[0].Text)
	assert.Equal(t, "dara", all[0].Author.Username)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].PubDate.After(all[i-1].PubDate), "newest first")
	}

	n, _ := store.CountPosts(ctx, post.Filter{GroupID: leo.ID})
	assert.Equal(t, 3, n)
	inGroup, _ := store.ListPosts(ctx, post.Filter{GroupID: leo.ID}, 0, 2)
	require.Len(t, inGroup, 2)
	require.NotNil(t, inGroup[0].Group)
	assert.Equal(t, "leoleo", inGroup[0].Group.Slug)

	n, _ = store.CountPosts(ctx, post.Filter{AuthorID: dara.ID})
	assert.Equal(t, 1, n)

	n, _ = store.CountPosts(ctx, post.Filter{ByAuthors: true})
	assert.Equal(t, 0, n, "empty author set matches nothing")

	page, _ := store.ListPosts(ctx, post.Filter{}, 5, 10)
	assert.Len(t, page, 1)
	page, _ = store.ListPosts(ctx, post.Filter{}, 50, 10)
	assert.Empty(t, page)
}

func TestCreatePostRejectsUnknownRefs(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.CreatePost(ctx, post.Post{Text: "x", AuthorID: 42})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	u, _ := store.CreateUser(ctx, user.User{Username: "sarah"})
	missing := int64(9)
	_, err = store.CreatePost(ctx, post.Post{Text: "x", AuthorID: u.ID, GroupID: &missing})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdatePostKeepsAuthor(t *testing.T) {
	ctx := context.Background()
	store := New()
	u, _ := store.CreateUser(ctx, user.User{Username: "sarah"})
	p, _ := store.CreatePost(ctx, post.Post{Text: "old", AuthorID: u.ID, Image: "posts/a.png"})

	updated, err := store.UpdatePost(ctx, post.Post{ID: p.ID, Text: "new", AuthorID: 999, Image: "posts/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Text)
	assert.Equal(t, u.ID, updated.AuthorID)
	assert.Equal(t, "posts/a.png", updated.Image)
}

func TestCommentsAndFollows(t *testing.T) {
	ctx := context.Background()
	store := New()
	sarah, _ := store.CreateUser(ctx, user.User{Username: "sarah"})
	dara, _ := store.CreateUser(ctx, user.User{Username: "dara"})
	p, _ := store.CreatePost(ctx, post.Post{Text: "hello", AuthorID: dara.ID})

	_, err := store.CreateComment(ctx, comment.Comment{PostID: p.ID, AuthorID: sarah.ID, Text: "first"})
	require.NoError(t, err)
	_, err = store.CreateComment(ctx, comment.Comment{PostID: p.ID, AuthorID: dara.ID, Text: "second"})
	require.NoError(t, err)

	list, _ := store.ListComments(ctx, p.ID)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "sarah", list[0].Author.Username)

	_, err = store.CreateFollow(ctx, follow.Follow{UserID: sarah.ID, AuthorID: dara.ID})
	require.NoError(t, err)
	_, err = store.CreateFollow(ctx, follow.Follow{UserID: sarah.ID, AuthorID: dara.ID})
	require.NoError(t, err)

	n, _ := store.CountFollowers(ctx, dara.ID)
	assert.Equal(t, 1, n)
	authors, _ := store.ListFollowedAuthors(ctx, sarah.ID)
	assert.Equal(t, []int64{dara.ID}, authors)

	require.NoError(t, store.DeleteFollow(ctx, sarah.ID, dara.ID))
	require.NoError(t, store.DeleteFollow(ctx, sarah.ID, dara.ID))
	ok, _ := store.FollowExists(ctx, sarah.ID, dara.ID)
	assert.False(t, ok)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	store := New()
	now := time.Now().UTC()

	_, err := store.CreateSession(ctx, session.Session{ID: "a", UserID: 1, TokenHash: "h1", ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)
	_, err = store.CreateSession(ctx, session.Session{ID: "b", UserID: 1, TokenHash: "h2", ExpiresAt: now.Add(-time.Minute)})
	require.NoError(t, err)

	got, err := store.GetSessionByTokenHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	require.NoError(t, store.TouchSession(ctx, "a", now))
	assert.ErrorIs(t, store.TouchSession(ctx, "zzz", now), storage.ErrNotFound)

	removed, err := store.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.GetSessionByTokenHash(ctx, "h2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
