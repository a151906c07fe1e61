package follows

import (
	"context"
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/follow"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// Counts summarises a profile's subscriptions.
type Counts struct {
	Followers int
	Following int
}

// Service manages subscriptions between users.
type Service struct {
	store storage.FollowStore
	log   *logger.Logger
}

// New constructs a follow service.
func New(store storage.FollowStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("follows")
	}
	return &Service{store: store, log: log}
}

// Follow subscribes u to author. Following yourself or an existing
// subscription is a no-op.
func (s *Service) Follow(ctx context.Context, u, author user.User) error {
	if u.ID == author.ID {
		return nil
	}
	if _, err := s.store.CreateFollow(ctx, follow.Follow{UserID: u.ID, AuthorID: author.ID, Created: time.Now().UTC()}); err != nil {
		return svcerrors.Internal("create follow", err)
	}
	s.log.WithField("user", u.Username).WithField("author", author.Username).Info("followed")
	return nil
}

// Unfollow removes the subscription if there is one.
func (s *Service) Unfollow(ctx context.Context, u, author user.User) error {
	if err := s.store.DeleteFollow(ctx, u.ID, author.ID); err != nil {
		return svcerrors.Internal("delete follow", err)
	}
	s.log.WithField("user", u.Username).WithField("author", author.Username).Info("unfollowed")
	return nil
}

// IsFollowing reports whether userID follows authorID.
func (s *Service) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	ok, err := s.store.FollowExists(ctx, userID, authorID)
	if err != nil {
		return false, svcerrors.Internal("check follow", err)
	}
	return ok, nil
}

// Counts returns the follower and following totals of userID.
func (s *Service) Counts(ctx context.Context, userID int64) (Counts, error) {
	followers, err := s.store.CountFollowers(ctx, userID)
	if err != nil {
		return Counts{}, svcerrors.Internal("count followers", err)
	}
	following, err := s.store.CountFollowing(ctx, userID)
	if err != nil {
		return Counts{}, svcerrors.Internal("count following", err)
	}
	return Counts{Followers: followers, Following: following}, nil
}
