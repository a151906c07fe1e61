package storage

import (
	"context"
	"errors"
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/comment"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/follow"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/post"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/session"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("storage: conflict")
)

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// GroupStore persists topic groups.
type GroupStore interface {
	CreateGroup(ctx context.Context, g group.Group) (group.Group, error)
	GetGroup(ctx context.Context, id int64) (group.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (group.Group, error)
	ListGroups(ctx context.Context) ([]group.Group, error)
}

// PostStore persists posts. Listings are ordered newest first.
type PostStore interface {
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	UpdatePost(ctx context.Context, p post.Post) (post.Post, error)
	GetPost(ctx context.Context, id int64) (post.Post, error)
	DeletePost(ctx context.Context, id int64) error
	CountPosts(ctx context.Context, filter post.Filter) (int, error)
	ListPosts(ctx context.Context, filter post.Filter, offset, limit int) ([]post.Post, error)
}

// CommentStore persists comments. Listings are ordered oldest first.
type CommentStore interface {
	CreateComment(ctx context.Context, c comment.Comment) (comment.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]comment.Comment, error)
	CountComments(ctx context.Context, postID int64) (int, error)
}

// FollowStore persists subscriptions between users.
type FollowStore interface {
	// CreateFollow is idempotent: an existing pair is returned unchanged.
	CreateFollow(ctx context.Context, f follow.Follow) (follow.Follow, error)
	// DeleteFollow removes the pair; a missing pair is not an error.
	DeleteFollow(ctx context.Context, userID, authorID int64) error
	FollowExists(ctx context.Context, userID, authorID int64) (bool, error)
	ListFollowedAuthors(ctx context.Context, userID int64) ([]int64, error)
	CountFollowers(ctx context.Context, authorID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s session.Session) (session.Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (session.Session, error)
	TouchSession(ctx context.Context, id string, seen time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}
