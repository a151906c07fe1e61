package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/comment"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/follow"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/post"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/session"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.GroupStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.CommentStore = (*Store)(nil)
var _ storage.FollowStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "postgres")}
}

// translate maps driver errors onto the storage sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", storage.ErrConflict, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%w: %s", storage.ErrNotFound, pqErr.Constraint)
		}
	}
	return err
}

// --- UserStore --------------------------------------------------------------

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash string    `db:"password_hash"`
	DateJoined   time.Time `db:"date_joined"`
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		DateJoined:   r.DateJoined.UTC(),
	}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, date_joined`

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.DateJoined).Scan(&u.ID)
	if err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return user.User{}, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE username = $1`, username); err != nil {
		return user.User{}, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, translate(err)
	}
	result := make([]user.User, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// --- GroupStore -------------------------------------------------------------

type groupRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
}

func (r groupRow) toDomain() group.Group {
	return group.Group{ID: r.ID, Title: r.Title, Slug: r.Slug, Description: r.Description}
}

func (s *Store) CreateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO groups (title, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`, g.Title, g.Slug, g.Description).Scan(&g.ID)
	if err != nil {
		return group.Group{}, translate(err)
	}
	return g, nil
}

func (s *Store) GetGroup(ctx context.Context, id int64) (group.Group, error) {
	var row groupRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, title, slug, description FROM groups WHERE id = $1`, id); err != nil {
		return group.Group{}, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (group.Group, error) {
	var row groupRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, title, slug, description FROM groups WHERE slug = $1`, slug); err != nil {
		return group.Group{}, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListGroups(ctx context.Context) ([]group.Group, error) {
	var rows []groupRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, title, slug, description FROM groups ORDER BY title`); err != nil {
		return nil, translate(err)
	}
	result := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// --- PostStore --------------------------------------------------------------

type postRow struct {
	ID       int64         `db:"id"`
	Text     string        `db:"text"`
	PubDate  time.Time     `db:"pub_date"`
	AuthorID int64         `db:"author_id"`
	GroupID  sql.NullInt64 `db:"group_id"`
	Image    string        `db:"image"`

	AuthorUsername  string `db:"author_username"`
	AuthorFirstName string `db:"author_first_name"`
	AuthorLastName  string `db:"author_last_name"`

	GroupTitle       sql.NullString `db:"group_title"`
	GroupSlug        sql.NullString `db:"group_slug"`
	GroupDescription sql.NullString `db:"group_description"`
}

func (r postRow) toDomain() post.Post {
	p := post.Post{
		ID:       r.ID,
		Text:     r.Text,
		PubDate:  r.PubDate.UTC(),
		AuthorID: r.AuthorID,
		Image:    r.Image,
		Author: user.User{
			ID:        r.AuthorID,
			Username:  r.AuthorUsername,
			FirstName: r.AuthorFirstName,
			LastName:  r.AuthorLastName,
		},
	}
	if r.GroupID.Valid {
		id := r.GroupID.Int64
		p.GroupID = &id
		p.Group = &group.Group{
			ID:          id,
			Title:       r.GroupTitle.String,
			Slug:        r.GroupSlug.String,
			Description: r.GroupDescription.String,
		}
	}
	return p
}

const postSelect = `
	SELECT p.id, p.text, p.pub_date, p.author_id, p.group_id, p.image,
	       u.username AS author_username, u.first_name AS author_first_name, u.last_name AS author_last_name,
	       g.title AS group_title, g.slug AS group_slug, g.description AS group_description
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now().UTC()
	}
	var id int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO posts (text, pub_date, author_id, group_id, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Text, p.PubDate, p.AuthorID, nullableID(p.GroupID), p.Image).Scan(&id)
	if err != nil {
		return post.Post{}, translate(err)
	}
	return s.GetPost(ctx, id)
}

func (s *Store) UpdatePost(ctx context.Context, p post.Post) (post.Post, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE posts
		SET text = $2, group_id = $3, image = $4, pub_date = COALESCE($5, pub_date)
		WHERE id = $1
	`, p.ID, p.Text, nullableID(p.GroupID), p.Image, nullableTime(p.PubDate))
	if err != nil {
		return post.Post{}, translate(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return post.Post{}, storage.ErrNotFound
	}
	return s.GetPost(ctx, p.ID)
}

func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func (s *Store) GetPost(ctx context.Context, id int64) (post.Post, error) {
	var row postRow
	if err := s.db.GetContext(ctx, &row, postSelect+` WHERE p.id = $1`, id); err != nil {
		return post.Post{}, translate(err)
	}
	return row.toDomain(), nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// whereClause renders the filter as SQL. ok is false when the filter can
// never match (an empty author set).
func whereClause(filter post.Filter) (clause string, args []interface{}, ok bool) {
	var conds []string
	if filter.AuthorID != 0 {
		args = append(args, filter.AuthorID)
		conds = append(conds, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if filter.GroupID != 0 {
		args = append(args, filter.GroupID)
		conds = append(conds, fmt.Sprintf("p.group_id = $%d", len(args)))
	}
	if filter.ByAuthors {
		if len(filter.AuthorIDs) == 0 {
			return "", nil, false
		}
		args = append(args, pq.Array(filter.AuthorIDs))
		conds = append(conds, fmt.Sprintf("p.author_id = ANY($%d)", len(args)))
	}
	if len(conds) == 0 {
		return "", args, true
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

func (s *Store) CountPosts(ctx context.Context, filter post.Filter) (int, error) {
	where, args, ok := whereClause(filter)
	if !ok {
		return 0, nil
	}
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts p`+where, args...); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *Store) ListPosts(ctx context.Context, filter post.Filter, offset, limit int) ([]post.Post, error) {
	where, args, ok := whereClause(filter)
	if !ok {
		return []post.Post{}, nil
	}
	query := postSelect + where + ` ORDER BY p.pub_date DESC, p.id DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, translate(err)
	}
	result := make([]post.Post, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

// --- CommentStore -----------------------------------------------------------

type commentRow struct {
	ID             int64     `db:"id"`
	PostID         int64     `db:"post_id"`
	AuthorID       int64     `db:"author_id"`
	Text           string    `db:"text"`
	Created        time.Time `db:"created"`
	AuthorUsername string    `db:"author_username"`
}

func (r commentRow) toDomain() comment.Comment {
	return comment.Comment{
		ID:       r.ID,
		PostID:   r.PostID,
		AuthorID: r.AuthorID,
		Text:     r.Text,
		Created:  r.Created.UTC(),
		Author:   user.User{ID: r.AuthorID, Username: r.AuthorUsername},
	}
}

func (s *Store) CreateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	if c.Created.IsZero() {
		c.Created = time.Now().UTC()
	}
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO comments (post_id, author_id, text, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.PostID, c.AuthorID, c.Text, c.Created).Scan(&c.ID)
	if err != nil {
		return comment.Comment{}, translate(err)
	}
	author, err := s.GetUser(ctx, c.AuthorID)
	if err != nil {
		return comment.Comment{}, err
	}
	c.Author = author
	return c, nil
}

func (s *Store) ListComments(ctx context.Context, postID int64) ([]comment.Comment, error) {
	var rows []commentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.post_id, c.author_id, c.text, c.created, u.username AS author_username
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created, c.id
	`, postID)
	if err != nil {
		return nil, translate(err)
	}
	result := make([]comment.Comment, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}

func (s *Store) CountComments(ctx context.Context, postID int64) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// --- FollowStore ------------------------------------------------------------

func (s *Store) CreateFollow(ctx context.Context, f follow.Follow) (follow.Follow, error) {
	if f.Created.IsZero() {
		f.Created = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (user_id, author_id, created)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, author_id) DO NOTHING
	`, f.UserID, f.AuthorID, f.Created); err != nil {
		return follow.Follow{}, translate(err)
	}

	var stored struct {
		UserID   int64     `db:"user_id"`
		AuthorID int64     `db:"author_id"`
		Created  time.Time `db:"created"`
	}
	if err := s.db.GetContext(ctx, &stored, `
		SELECT user_id, author_id, created FROM follows WHERE user_id = $1 AND author_id = $2
	`, f.UserID, f.AuthorID); err != nil {
		return follow.Follow{}, translate(err)
	}
	return follow.Follow{UserID: stored.UserID, AuthorID: stored.AuthorID, Created: stored.Created.UTC()}, nil
}

func (s *Store) DeleteFollow(ctx context.Context, userID, authorID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	return translate(err)
}

func (s *Store) FollowExists(ctx context.Context, userID, authorID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2)
	`, userID, authorID)
	return exists, translate(err)
}

func (s *Store) ListFollowedAuthors(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `
		SELECT author_id FROM follows WHERE user_id = $1 ORDER BY author_id
	`, userID); err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

func (s *Store) CountFollowers(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM follows WHERE author_id = $1`, authorID)
	return n, translate(err)
}

func (s *Store) CountFollowing(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM follows WHERE user_id = $1`, userID)
	return n, translate(err)
}

// --- SessionStore -----------------------------------------------------------

type sessionRow struct {
	ID         string    `db:"id"`
	UserID     int64     `db:"user_id"`
	TokenHash  string    `db:"token_hash"`
	CreatedAt  time.Time `db:"created_at"`
	ExpiresAt  time.Time `db:"expires_at"`
	LastSeenAt time.Time `db:"last_seen_at"`
}

func (s *Store) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, created_at, expires_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sess.ID, sess.UserID, sess.TokenHash, sess.CreatedAt, sess.ExpiresAt, sess.LastSeenAt)
	if err != nil {
		return session.Session{}, translate(err)
	}
	return sess, nil
}

func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (session.Session, error) {
	var row sessionRow
	if err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, token_hash, created_at, expires_at, last_seen_at
		FROM sessions WHERE token_hash = $1
	`, tokenHash); err != nil {
		return session.Session{}, translate(err)
	}
	return session.Session{
		ID:         row.ID,
		UserID:     row.UserID,
		TokenHash:  row.TokenHash,
		CreatedAt:  row.CreatedAt.UTC(),
		ExpiresAt:  row.ExpiresAt.UTC(),
		LastSeenAt: row.LastSeenAt.UTC(),
	}, nil
}

func (s *Store) TouchSession(ctx context.Context, id string, seen time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id, seen)
	if err != nil {
		return translate(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return translate(err)
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, translate(err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
