package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/comment"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/follow"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/post"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/session"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu sync.RWMutex

	nextUserID    int64
	nextGroupID   int64
	nextPostID    int64
	nextCommentID int64

	users        map[int64]user.User
	usersByName  map[string]int64
	groups       map[int64]group.Group
	groupsBySlug map[string]int64
	posts        map[int64]post.Post
	comments     map[int64][]comment.Comment
	follows      map[followKey]follow.Follow
	sessions     map[string]session.Session
}

type followKey struct {
	user   int64
	author int64
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.GroupStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.CommentStore = (*Store)(nil)
var _ storage.FollowStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextUserID:    1,
		nextGroupID:   1,
		nextPostID:    1,
		nextCommentID: 1,
		users:         make(map[int64]user.User),
		usersByName:   make(map[string]int64),
		groups:        make(map[int64]group.Group),
		groupsBySlug:  make(map[string]int64),
		posts:         make(map[int64]post.Post),
		comments:      make(map[int64][]comment.Comment),
		follows:       make(map[followKey]follow.Follow),
		sessions:      make(map[string]session.Session),
	}
}

// UserStore implementation -----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Username)
	if _, exists := s.usersByName[key]; exists {
		return user.User{}, storage.ErrConflict
	}
	u.ID = s.nextUserID
	s.nextUserID++
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	s.users[u.ID] = u
	s.usersByName[key] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[strings.ToLower(username)]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	u := s.users[id]
	// Usernames are unique case-insensitively but matched exactly, like the
	// URL resolver does.
	if u.Username != username {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GroupStore implementation ----------------------------------------------------

func (s *Store) CreateGroup(_ context.Context, g group.Group) (group.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groupsBySlug[g.Slug]; exists {
		return group.Group{}, storage.ErrConflict
	}
	g.ID = s.nextGroupID
	s.nextGroupID++
	s.groups[g.ID] = g
	s.groupsBySlug[g.Slug] = g.ID
	return g, nil
}

func (s *Store) GetGroup(_ context.Context, id int64) (group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return group.Group{}, storage.ErrNotFound
	}
	return g, nil
}

func (s *Store) GetGroupBySlug(_ context.Context, slug string) (group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.groupsBySlug[slug]
	if !ok {
		return group.Group{}, storage.ErrNotFound
	}
	return s.groups[id], nil
}

func (s *Store) ListGroups(_ context.Context) ([]group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]group.Group, 0, len(s.groups))
	for _, g := range s.groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result, nil
}

// PostStore implementation -----------------------------------------------------

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.AuthorID]; !ok {
		return post.Post{}, storage.ErrNotFound
	}
	if p.GroupID != nil {
		if _, ok := s.groups[*p.GroupID]; !ok {
			return post.Post{}, storage.ErrNotFound
		}
	}
	p.ID = s.nextPostID
	s.nextPostID++
	if p.PubDate.IsZero() {
		p.PubDate = time.Now().UTC()
	}
	p.GroupID = cloneID(p.GroupID)
	p.Author = user.User{}
	p.Group = nil
	s.posts[p.ID] = p
	return s.hydrateLocked(p), nil
}

func (s *Store) UpdatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[p.ID]
	if !ok {
		return post.Post{}, storage.ErrNotFound
	}
	if p.GroupID != nil {
		if _, ok := s.groups[*p.GroupID]; !ok {
			return post.Post{}, storage.ErrNotFound
		}
	}
	existing.Text = p.Text
	existing.GroupID = cloneID(p.GroupID)
	existing.Image = p.Image
	if !p.PubDate.IsZero() {
		existing.PubDate = p.PubDate
	}
	s.posts[p.ID] = existing
	return s.hydrateLocked(existing), nil
}

func (s *Store) GetPost(_ context.Context, id int64) (post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, storage.ErrNotFound
	}
	return s.hydrateLocked(p), nil
}

func (s *Store) DeletePost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	delete(s.comments, id)
	return nil
}

func (s *Store) CountPosts(_ context.Context, filter post.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.filterLocked(filter)), nil
}

func (s *Store) ListPosts(_ context.Context, filter post.Filter, offset, limit int) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterLocked(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PubDate.Equal(matched[j].PubDate) {
			return matched[i].PubDate.After(matched[j].PubDate)
		}
		return matched[i].ID > matched[j].ID
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []post.Post{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	result := make([]post.Post, 0, end-offset)
	for _, p := range matched[offset:end] {
		result = append(result, s.hydrateLocked(p))
	}
	return result, nil
}

func (s *Store) filterLocked(filter post.Filter) []post.Post {
	var authors map[int64]struct{}
	if filter.ByAuthors {
		authors = make(map[int64]struct{}, len(filter.AuthorIDs))
		for _, id := range filter.AuthorIDs {
			authors[id] = struct{}{}
		}
	}

	result := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.AuthorID != 0 && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.GroupID != 0 && (p.GroupID == nil || *p.GroupID != filter.GroupID) {
			continue
		}
		if authors != nil {
			if _, ok := authors[p.AuthorID]; !ok {
				continue
			}
		}
		result = append(result, p)
	}
	return result
}

func (s *Store) hydrateLocked(p post.Post) post.Post {
	p.GroupID = cloneID(p.GroupID)
	p.Author = s.users[p.AuthorID]
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			p.Group = &g
		}
	}
	return p
}

// CommentStore implementation --------------------------------------------------

func (s *Store) CreateComment(_ context.Context, c comment.Comment) (comment.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[c.PostID]; !ok {
		return comment.Comment{}, storage.ErrNotFound
	}
	author, ok := s.users[c.AuthorID]
	if !ok {
		return comment.Comment{}, storage.ErrNotFound
	}
	c.ID = s.nextCommentID
	s.nextCommentID++
	if c.Created.IsZero() {
		c.Created = time.Now().UTC()
	}
	c.Author = user.User{}
	s.comments[c.PostID] = append(s.comments[c.PostID], c)
	c.Author = author
	return c, nil
}

func (s *Store) ListComments(_ context.Context, postID int64) ([]comment.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.comments[postID]
	result := make([]comment.Comment, 0, len(stored))
	for _, c := range stored {
		c.Author = s.users[c.AuthorID]
		result = append(result, c)
	}
	return result, nil
}

func (s *Store) CountComments(_ context.Context, postID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.comments[postID]), nil
}

// FollowStore implementation ---------------------------------------------------

func (s *Store) CreateFollow(_ context.Context, f follow.Follow) (follow.Follow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[f.UserID]; !ok {
		return follow.Follow{}, storage.ErrNotFound
	}
	if _, ok := s.users[f.AuthorID]; !ok {
		return follow.Follow{}, storage.ErrNotFound
	}
	key := followKey{user: f.UserID, author: f.AuthorID}
	if existing, ok := s.follows[key]; ok {
		return existing, nil
	}
	if f.Created.IsZero() {
		f.Created = time.Now().UTC()
	}
	s.follows[key] = f
	return f, nil
}

func (s *Store) DeleteFollow(_ context.Context, userID, authorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.follows, followKey{user: userID, author: authorID})
	return nil
}

func (s *Store) FollowExists(_ context.Context, userID, authorID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.follows[followKey{user: userID, author: authorID}]
	return ok, nil
}

func (s *Store) ListFollowedAuthors(_ context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []int64
	for key := range s.follows {
		if key.user == userID {
			result = append(result, key.author)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

func (s *Store) CountFollowers(_ context.Context, authorID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.follows {
		if key.author == authorID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountFollowing(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.follows {
		if key.user == userID {
			n++
		}
	}
	return n, nil
}

// SessionStore implementation --------------------------------------------------

func (s *Store) CreateSession(_ context.Context, sess session.Session) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return session.Session{}, storage.ErrConflict
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) GetSessionByTokenHash(_ context.Context, tokenHash string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.TokenHash == tokenHash {
			return sess, nil
		}
	}
	return session.Session{}, storage.ErrNotFound
}

func (s *Store) TouchSession(_ context.Context, id string, seen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return storage.ErrNotFound
	}
	sess.LastSeenAt = seen
	s.sessions[id] = sess
	return nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
