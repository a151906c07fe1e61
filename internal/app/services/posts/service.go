package posts

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/post"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/forms"
	"github.com/DariaKalinichenko/Yatube/internal/app/metrics"
	"github.com/DariaKalinichenko/Yatube/internal/app/paginator"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// Page sizes of the listing pages.
const (
	IndexPerPage   = 10
	GroupPerPage   = 4
	GroupMaxPosts  = 12
	ProfilePerPage = 4
	FeedPerPage    = 10
)

// ImageStore persists validated uploads and returns their media path.
type ImageStore interface {
	Save(ctx context.Context, upload *forms.Upload) (string, error)
	Remove(path string) error
}

// Page is one page of a post listing.
type Page struct {
	paginator.Page
	Posts []post.Post
}

// Service publishes, edits and lists posts.
type Service struct {
	posts   storage.PostStore
	users   storage.UserStore
	groups  storage.GroupStore
	follows storage.FollowStore
	images  ImageStore
	now     func() time.Time
	log     *logger.Logger
}

// Option customises the service.
type Option func(*Service)

// WithImageStore enables image uploads.
func WithImageStore(images ImageStore) Option {
	return func(s *Service) { s.images = images }
}

// WithClock overrides the time source used for publication dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a post service.
func New(posts storage.PostStore, users storage.UserStore, groups storage.GroupStore, follows storage.FollowStore, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewDefault("posts")
	}
	s := &Service{
		posts:   posts,
		users:   users,
		groups:  groups,
		follows: follows,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create publishes a post from a validated form.
func (s *Service) Create(ctx context.Context, author user.User, form *forms.PostForm) (post.Post, error) {
	if form == nil || !form.Errors.Valid() {
		return post.Post{}, svcerrors.Validation("post form is not valid")
	}
	image, err := s.storeImage(ctx, form)
	if err != nil {
		return post.Post{}, err
	}

	created, err := s.posts.CreatePost(ctx, post.Post{
		Text:     form.Text,
		PubDate:  s.now(),
		AuthorID: author.ID,
		GroupID:  form.GroupID,
		Image:    image,
	})
	if err != nil {
		s.discardImage(image)
		return post.Post{}, svcerrors.Internal("create post", err)
	}

	metrics.RecordPostCreated(created.HasImage())
	s.log.WithField("post_id", created.ID).WithField("author", author.Username).Info("post created")
	return created, nil
}

// Edit applies a validated form to an existing post. Only the author may
// edit. Without a new upload the current image is kept.
func (s *Service) Edit(ctx context.Context, editor user.User, postID int64, form *forms.PostForm) (post.Post, error) {
	existing, err := s.Get(ctx, postID)
	if err != nil {
		return post.Post{}, err
	}
	if existing.AuthorID != editor.ID {
		s.log.WithField("post_id", postID).WithField("editor", editor.Username).Warn("edit by non-author refused")
		return post.Post{}, svcerrors.Forbidden("only the author can edit this post")
	}
	if form == nil || !form.Errors.Valid() {
		return post.Post{}, svcerrors.Validation("post form is not valid")
	}

	image, err := s.storeImage(ctx, form)
	if err != nil {
		return post.Post{}, err
	}
	if image == "" {
		image = existing.Image
	}

	updated, err := s.posts.UpdatePost(ctx, post.Post{
		ID:      existing.ID,
		Text:    form.Text,
		PubDate: s.now(),
		GroupID: form.GroupID,
		Image:   image,
	})
	if err != nil {
		if image != existing.Image {
			s.discardImage(image)
		}
		return post.Post{}, svcerrors.Internal("update post", err)
	}
	if image != existing.Image {
		s.discardImage(existing.Image)
	}
	s.log.WithField("post_id", updated.ID).Info("post edited")
	return updated, nil
}

// Delete removes a post together with its comments and image.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return svcerrors.NotFound("post", strconv.FormatInt(id, 10))
		}
		return svcerrors.Internal("delete post", err)
	}
	s.discardImage(p.Image)
	s.log.WithField("post_id", id).Info("post deleted")
	return nil
}

// Get returns a post with its author and group.
func (s *Service) Get(ctx context.Context, id int64) (post.Post, error) {
	p, err := s.posts.GetPost(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return post.Post{}, svcerrors.NotFound("post", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return post.Post{}, svcerrors.Internal("load post", err)
	}
	return p, nil
}

// CountByAuthor returns how many posts authorID has published.
func (s *Service) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	n, err := s.posts.CountPosts(ctx, post.Filter{AuthorID: authorID})
	if err != nil {
		return 0, svcerrors.Internal("count posts", err)
	}
	return n, nil
}

// Index lists every post, newest first.
func (s *Service) Index(ctx context.Context, rawPage string) (Page, error) {
	return s.page(ctx, post.Filter{}, IndexPerPage, 0, rawPage)
}

// Group lists the newest posts filed under slug. Only the first
// GroupMaxPosts posts are reachable.
func (s *Service) Group(ctx context.Context, slug, rawPage string) (group.Group, Page, error) {
	g, err := s.groups.GetGroupBySlug(ctx, slug)
	if errors.Is(err, storage.ErrNotFound) {
		return group.Group{}, Page{}, svcerrors.NotFound("group", slug)
	}
	if err != nil {
		return group.Group{}, Page{}, svcerrors.Internal("load group", err)
	}
	page, err := s.page(ctx, post.Filter{GroupID: g.ID}, GroupPerPage, GroupMaxPosts, rawPage)
	return g, page, err
}

// Profile lists the posts written by username.
func (s *Service) Profile(ctx context.Context, username, rawPage string) (user.User, Page, error) {
	author, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, Page{}, svcerrors.NotFound("user", username)
	}
	if err != nil {
		return user.User{}, Page{}, svcerrors.Internal("load user", err)
	}
	page, err := s.page(ctx, post.Filter{AuthorID: author.ID}, ProfilePerPage, 0, rawPage)
	return author, page, err
}

// Feed lists posts by the authors viewerID follows.
func (s *Service) Feed(ctx context.Context, viewerID int64, rawPage string) (Page, error) {
	authors, err := s.follows.ListFollowedAuthors(ctx, viewerID)
	if err != nil {
		return Page{}, svcerrors.Internal("list followed authors", err)
	}
	return s.page(ctx, post.Filter{AuthorIDs: authors, ByAuthors: true}, FeedPerPage, 0, rawPage)
}

func (s *Service) page(ctx context.Context, filter post.Filter, perPage, maxPosts int, rawPage string) (Page, error) {
	count, err := s.posts.CountPosts(ctx, filter)
	if err != nil {
		return Page{}, svcerrors.Internal("count posts", err)
	}
	if maxPosts > 0 {
		count = paginator.Clamp(count, maxPosts)
	}

	pg := paginator.New(count, perPage, rawPage)
	limit := pg.Limit()
	if remaining := count - pg.Offset(); remaining < limit {
		limit = remaining
	}
	if limit <= 0 {
		return Page{Page: pg, Posts: []post.Post{}}, nil
	}

	items, err := s.posts.ListPosts(ctx, filter, pg.Offset(), limit)
	if err != nil {
		return Page{}, svcerrors.Internal("list posts", err)
	}
	return Page{Page: pg, Posts: items}, nil
}

func (s *Service) storeImage(ctx context.Context, form *forms.PostForm) (string, error) {
	if form.Image == nil {
		return "", nil
	}
	if s.images == nil {
		return "", svcerrors.Validation("image uploads are disabled")
	}
	path, err := s.images.Save(ctx, form.Image)
	if err != nil {
		return "", svcerrors.Internal("store image", err)
	}
	return path, nil
}

func (s *Service) discardImage(path string) {
	if path == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(path); err != nil {
		s.log.WithError(err).WithField("image", path).Warn("remove image")
	}
}
