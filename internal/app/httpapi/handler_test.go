package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"

	app "github.com/DariaKalinichenko/Yatube/internal/app"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/post"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage/memory"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

func newTestApp(t *testing.T) (*app.Application, *memory.Store) {
	t.Helper()
	store := memory.New()
	application, err := app.New(app.Stores{
		Users: store, Groups: store, Posts: store, Comments: store, Follows: store, Sessions: store,
	}, app.Options{SecretKey: []byte("test"), MediaRoot: t.TempDir()}, logger.NewDiscard())
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	return application, store
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	return resp
}

func TestListPosts(t *testing.T) {
	application, store := newTestApp(t)
	ctx := context.Background()
	author, _ := store.CreateUser(ctx, user.User{Username: "sarah", FirstName: "Sarah", LastName: "Connor"})
	g, _ := store.CreateGroup(ctx, group.Group{Title: "Leo", Slug: "leoleo"})
	for i := 0; i < 11; i++ {
		if _, err := store.CreatePost(ctx, post.Post{Text: "post", AuthorID: author.ID}); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	if _, err := store.CreatePost(ctx, post.Post{Text: "grouped", AuthorID: author.ID, GroupID: &g.ID, Image: "posts/a.png"}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	h := NewHandler(application)
	resp := get(t, h, "/api/v1/posts/")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if got := gjson.Get(body, "count").Int(); got != 12 {
		t.Fatalf("expected count 12, got %d", got)
	}
	if got := gjson.Get(body, "results.#").Int(); got != 10 {
		t.Fatalf("expected 10 results, got %d", got)
	}
	if got := gjson.Get(body, "next").Int(); got != 2 {
		t.Fatalf("expected next page 2, got %d", got)
	}
	if !gjson.Get(body, "previous").Exists() || gjson.Get(body, "previous").Type != gjson.Null {
		t.Fatalf("expected null previous, got %s", gjson.Get(body, "previous").Raw)
	}
	if got := gjson.Get(body, "results.0.author.full_name").String(); got != "Sarah Connor" {
		t.Fatalf("unexpected author %q", got)
	}
	if got := gjson.Get(body, "results.0.group.slug").String(); got != "leoleo" {
		t.Fatalf("unexpected group %q", got)
	}
	if got := gjson.Get(body, "results.0.image").String(); got != "/media/posts/a.png" {
		t.Fatalf("unexpected image %q", got)
	}
	if cc := gjson.Get(body, "results.0.comment_count"); !cc.Exists() || cc.Int() != 0 {
		t.Fatalf("expected comment_count 0, got %s", cc.Raw)
	}

	page2 := get(t, h, "/api/v1/posts/?page=2").Body.String()
	if got := gjson.Get(page2, "results.#").Int(); got != 2 {
		t.Fatalf("expected 2 results on page 2, got %d", got)
	}
}

func TestGetPost(t *testing.T) {
	application, store := newTestApp(t)
	ctx := context.Background()
	author, _ := store.CreateUser(ctx, user.User{Username: "sarah"})
	p, _ := store.CreatePost(ctx, post.Post{Text: "hello", AuthorID: author.ID})
	if _, err := application.Comments.Add(ctx, author, p.ID, "first comment"); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	h := NewHandler(application)
	resp := get(t, h, "/api/v1/posts/1/")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if got := gjson.Get(body, "text").String(); got != "hello" {
		t.Fatalf("unexpected text %q", got)
	}
	if gjson.Get(body, "group").Type != gjson.Null {
		t.Fatalf("expected null group")
	}
	if got := gjson.Get(body, "comments.0.text").String(); got != "first comment" {
		t.Fatalf("unexpected comment %q", got)
	}

	missing := get(t, h, "/api/v1/posts/99/")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.Code)
	}
	if gjson.Get(missing.Body.String(), "error").String() == "" {
		t.Fatalf("expected error message")
	}
}

func TestGetPostWithoutComments(t *testing.T) {
	application, store := newTestApp(t)
	ctx := context.Background()
	author, _ := store.CreateUser(ctx, user.User{Username: "sarah"})
	if _, err := store.CreatePost(ctx, post.Post{Text: "quiet", AuthorID: author.ID}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	body := get(t, NewHandler(application), "/api/v1/posts/1/").Body.String()
	comments := gjson.Get(body, "comments")
	if !comments.IsArray() || len(comments.Array()) != 0 {
		t.Fatalf("expected empty comments array, got %s", comments.Raw)
	}
	if gjson.Get(body, "comment_count").Exists() {
		t.Fatalf("detail should not carry comment_count")
	}
}
