// Package httpapi exposes a read-only JSON view of the published posts.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	app "github.com/DariaKalinichenko/Yatube/internal/app"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/post"
	"github.com/DariaKalinichenko/Yatube/internal/app/media"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
)

// Prefix is where the API is mounted.
const Prefix = "/api/v1"

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// Register mounts the API routes on r, which should already carry Prefix.
func Register(r *mux.Router, application *app.Application) {
	h := &handler{app: application}
	r.HandleFunc("/posts/", h.listPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}/", h.getPost).Methods(http.MethodGet)
}

// NewHandler returns a standalone router serving the API under Prefix.
func NewHandler(application *app.Application) http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	Register(r.PathPrefix(Prefix).Subrouter(), application)
	return r
}

type authorJSON struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type groupJSON struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type postJSON struct {
	ID      int64      `json:"id"`
	Text    string     `json:"text"`
	PubDate time.Time  `json:"pub_date"`
	Author  authorJSON `json:"author"`
	Group   *groupJSON `json:"group"`
	Image   *string    `json:"image"`
	// CommentCount is only set in listings.
	CommentCount *int `json:"comment_count,omitempty"`
}

type postDetailJSON struct {
	postJSON
	Comments []commentJSON `json:"comments"`
}

type commentJSON struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

type listJSON struct {
	Count    int        `json:"count"`
	Page     int        `json:"page"`
	NumPages int        `json:"num_pages"`
	Next     *int       `json:"next"`
	Previous *int       `json:"previous"`
	Results  []postJSON `json:"results"`
}

func (h *handler) listPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.app.Posts.Index(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		writeError(w, svcerrors.HTTPStatus(err), err)
		return
	}

	out := listJSON{
		Count:    page.Count,
		Page:     page.Number,
		NumPages: page.NumPages,
		Results:  make([]postJSON, 0, len(page.Posts)),
	}
	if page.HasNext() {
		n := page.NextPageNumber()
		out.Next = &n
	}
	if page.HasPrevious() {
		p := page.PreviousPageNumber()
		out.Previous = &p
	}
	for _, p := range page.Posts {
		n, err := h.app.Comments.Count(r.Context(), p.ID)
		if err != nil {
			writeError(w, svcerrors.HTTPStatus(err), err)
			return
		}
		item := toPostJSON(p)
		item.CommentCount = &n
		out.Results = append(out.Results, item)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, svcerrors.NotFound("post", mux.Vars(r)["id"]))
		return
	}
	p, err := h.app.Posts.Get(r.Context(), id)
	if err != nil {
		writeError(w, svcerrors.HTTPStatus(err), err)
		return
	}
	items, err := h.app.Comments.ListForPost(r.Context(), id)
	if err != nil {
		writeError(w, svcerrors.HTTPStatus(err), err)
		return
	}
	out := postDetailJSON{postJSON: toPostJSON(p), Comments: make([]commentJSON, 0, len(items))}
	for _, c := range items {
		out.Comments = append(out.Comments, commentJSON{
			ID:      c.ID,
			Author:  c.Author.Username,
			Text:    c.Text,
			Created: c.Created,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func toPostJSON(p post.Post) postJSON {
	out := postJSON{
		ID:      p.ID,
		Text:    p.Text,
		PubDate: p.PubDate,
		Author:  authorJSON{Username: p.Author.Username, FullName: p.Author.FullName()},
	}
	if p.Group != nil {
		out.Group = &groupJSON{Slug: p.Group.Slug, Title: p.Group.Title}
	}
	if p.HasImage() {
		url := media.URL(p.Image)
		out.Image = &url
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	message := err.Error()
	if se := svcerrors.GetServiceError(err); se != nil {
		message = se.Message
	}
	writeJSON(w, status, map[string]string{"error": message})
}
