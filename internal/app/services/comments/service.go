package comments

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/comment"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/metrics"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// Service adds and lists comments on posts.
type Service struct {
	store storage.CommentStore
	posts storage.PostStore
	log   *logger.Logger
}

// New constructs a comment service.
func New(store storage.CommentStore, posts storage.PostStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("comments")
	}
	return &Service{store: store, posts: posts, log: log}
}

// Add stores a comment by author on postID.
func (s *Service) Add(ctx context.Context, author user.User, postID int64, text string) (comment.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return comment.Comment{}, svcerrors.Validation("comment text is required")
	}
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return comment.Comment{}, svcerrors.NotFound("post", strconv.FormatInt(postID, 10))
		}
		return comment.Comment{}, svcerrors.Internal("load post", err)
	}

	created, err := s.store.CreateComment(ctx, comment.Comment{
		PostID:   postID,
		AuthorID: author.ID,
		Text:     text,
		Created:  time.Now().UTC(),
	})
	if err != nil {
		return comment.Comment{}, svcerrors.Internal("create comment", err)
	}

	metrics.RecordCommentCreated()
	s.log.WithField("post_id", postID).WithField("comment_id", created.ID).Info("comment added")
	return created, nil
}

// ListForPost returns the comments on postID, oldest first.
func (s *Service) ListForPost(ctx context.Context, postID int64) ([]comment.Comment, error) {
	items, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, svcerrors.Internal("list comments", err)
	}
	return items, nil
}

// Count returns how many comments postID has.
func (s *Service) Count(ctx context.Context, postID int64) (int, error) {
	n, err := s.store.CountComments(ctx, postID)
	if err != nil {
		return 0, svcerrors.Internal("count comments", err)
	}
	return n, nil
}
