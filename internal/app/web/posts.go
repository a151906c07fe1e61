package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/DariaKalinichenko/Yatube/internal/app/cache"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/forms"
	"github.com/DariaKalinichenko/Yatube/internal/app/metrics"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/internal/middleware"
)

func pageParam(r *http.Request) string {
	return r.URL.Query().Get("page")
}

func profileURL(username string) string {
	return "/" + url.PathEscape(username) + "/"
}

func postURL(username string, id int64) string {
	return fmt.Sprintf("/%s/%d/", url.PathEscape(username), id)
}

func postIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["post_id"], 10, 64)
	return id, err == nil
}

// viewer returns the logged-in user. Only call it behind LoginRequired.
func viewer(r *http.Request) user.User {
	u, _ := middleware.CurrentUser(r.Context())
	return u
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := cache.Key(r.URL.RequestURI(), middleware.GetUserID(ctx))

	cached, hit, err := s.app.Cache.Get(ctx, key)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("page cache lookup")
	}
	metrics.RecordCacheLookup(hit)
	if hit {
		cached.Replay(w)
		return
	}

	page, err := s.app.Posts.Index(ctx, pageParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rendered, err := s.renderPage(r, http.StatusOK, "index.html", map[string]interface{}{"page": page})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.Cache.Set(ctx, key, rendered); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("page cache store")
	}
	rendered.Replay(w)
}

func (s *Server) groupPosts(w http.ResponseWriter, r *http.Request) {
	g, page, err := s.app.Posts.Group(r.Context(), mux.Vars(r)["slug"], pageParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "group.html", map[string]interface{}{"group": g, "page": page})
}

func (s *Server) newPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groups, err := s.app.Groups.List(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	form := forms.NewPostForm("", nil)
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1<<20)
		form = forms.ParsePostForm(r, s.opts.MaxUploadBytes)
		if form.Validate(ctx, s.app.Groups) {
			if _, err := s.app.Posts.Create(ctx, viewer(r), form); err != nil {
				s.fail(w, r, err)
				return
			}
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}
	s.render(w, r, http.StatusOK, "new.html", map[string]interface{}{"form": form, "groups": groups})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	author, page, err := s.app.Posts.Profile(ctx, mux.Vars(r)["username"], pageParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	counts, err := s.app.Follows.Counts(ctx, author.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := map[string]interface{}{
		"author": author,
		"page":   page,
		"count":  page.Count,
		"counts": counts,
	}
	if u, ok := middleware.CurrentUser(ctx); ok {
		following, err := s.app.Follows.IsFollowing(ctx, u.ID, author.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		data["following"] = following
	}
	s.render(w, r, http.StatusOK, "profile.html", data)
}

func (s *Server) postView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := mux.Vars(r)["username"]
	id, ok := postIDParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	author, err := s.app.Users.GetByUsername(ctx, username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.app.Posts.Get(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	count, err := s.app.Posts.CountByAuthor(ctx, author.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.app.Comments.ListForPost(ctx, p.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "post.html", map[string]interface{}{
		"author":   author,
		"post":     p,
		"count":    count,
		"comments": items,
		"form":     forms.NewCommentForm(),
	})
}

func (s *Server) postEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := mux.Vars(r)["username"]
	id, ok := postIDParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	p, err := s.app.Posts.Get(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	editor := viewer(r)
	if p.AuthorID != editor.ID {
		http.Redirect(w, r, postURL(username, id), http.StatusFound)
		return
	}
	groups, err := s.app.Groups.List(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	form := forms.NewPostForm(p.Text, p.GroupID)
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1<<20)
		form = forms.ParsePostForm(r, s.opts.MaxUploadBytes)
		if form.Validate(ctx, s.app.Groups) {
			_, err := s.app.Posts.Edit(ctx, editor, id, form)
			if svcerrors.IsCode(err, svcerrors.CodeForbidden) {
				http.Redirect(w, r, postURL(username, id), http.StatusFound)
				return
			}
			if err != nil {
				s.fail(w, r, err)
				return
			}
			http.Redirect(w, r, postURL(username, id), http.StatusFound)
			return
		}
	}
	s.render(w, r, http.StatusOK, "new.html", map[string]interface{}{"form": form, "groups": groups, "post": p})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := mux.Vars(r)["username"]
	id, ok := postIDParam(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	p, err := s.app.Posts.Get(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	form := forms.NewCommentForm()
	if r.Method == http.MethodPost {
		form = forms.ParseCommentForm(r)
		if form.Validate() {
			if _, err := s.app.Comments.Add(ctx, viewer(r), p.ID, form.Text); err != nil {
				s.fail(w, r, err)
				return
			}
			http.Redirect(w, r, postURL(username, id), http.StatusFound)
			return
		}
	}
	s.render(w, r, http.StatusOK, "comments.html", map[string]interface{}{"form": form, "post": p})
}

func (s *Server) followIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.app.Posts.Feed(r.Context(), viewer(r).ID, pageParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "follow.html", map[string]interface{}{"page": page})
}

func (s *Server) profileFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	author, err := s.app.Users.GetByUsername(ctx, mux.Vars(r)["username"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.Follows.Follow(ctx, viewer(r), author); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, profileURL(author.Username), http.StatusFound)
}

func (s *Server) profileUnfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	author, err := s.app.Users.GetByUsername(ctx, mux.Vars(r)["username"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.Follows.Unfollow(ctx, viewer(r), author); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, profileURL(author.Username), http.StatusFound)
}
