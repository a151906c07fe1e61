package groups

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Service manages topic groups.
type Service struct {
	store storage.GroupStore
	log   *logger.Logger
}

// New constructs a group service.
func New(store storage.GroupStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("groups")
	}
	return &Service{store: store, log: log}
}

// Create validates and stores a group.
func (s *Service) Create(ctx context.Context, g group.Group) (group.Group, error) {
	g.Title = strings.TrimSpace(g.Title)
	g.Slug = strings.TrimSpace(g.Slug)
	g.Description = strings.TrimSpace(g.Description)

	switch {
	case g.Title == "":
		return group.Group{}, svcerrors.Validation("title is required")
	case len([]rune(g.Title)) > 200:
		return group.Group{}, svcerrors.Validation("title must be at most 200 characters")
	case !slugPattern.MatchString(g.Slug):
		return group.Group{}, svcerrors.Validation("slug may contain only letters, numbers, underscores or hyphens")
	}

	created, err := s.store.CreateGroup(ctx, g)
	if errors.Is(err, storage.ErrConflict) {
		return group.Group{}, svcerrors.Conflict("group with this slug already exists", err)
	}
	if err != nil {
		return group.Group{}, svcerrors.Internal("create group", err)
	}
	s.log.WithField("group_id", created.ID).WithField("slug", created.Slug).Info("group created")
	return created, nil
}

// GetGroup returns a group by ID. It satisfies forms.GroupResolver.
func (s *Service) GetGroup(ctx context.Context, id int64) (group.Group, error) {
	g, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return group.Group{}, svcerrors.NotFound("group", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return group.Group{}, svcerrors.Internal("load group", err)
	}
	return g, nil
}

// GetBySlug returns a group by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (group.Group, error) {
	g, err := s.store.GetGroupBySlug(ctx, slug)
	if errors.Is(err, storage.ErrNotFound) {
		return group.Group{}, svcerrors.NotFound("group", slug)
	}
	if err != nil {
		return group.Group{}, svcerrors.Internal("load group", err)
	}
	return g, nil
}

// List returns all groups ordered by title.
func (s *Service) List(ctx context.Context) ([]group.Group, error) {
	return s.store.ListGroups(ctx)
}
