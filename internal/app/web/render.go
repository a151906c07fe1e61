package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/cache"
	"github.com/DariaKalinichenko/Yatube/internal/app/media"
	"github.com/DariaKalinichenko/Yatube/internal/middleware"
)

// TemplateHeader names the template that rendered a page.
const TemplateHeader = "X-Template"

//go:embed templates
var templateFS embed.FS

var pageNames = []string{
	"index.html",
	"group.html",
	"new.html",
	"profile.html",
	"post.html",
	"comments.html",
	"follow.html",
	"misc/404.html",
	"misc/500.html",
	"auth/login.html",
	"auth/signup.html",
	"auth/logged_out.html",
}

var funcs = template.FuncMap{
	"mediaURL": media.URL,
	"formatDate": func(t time.Time) string {
		return t.Format("2 January 2006 15:04")
	},
	"isoDate": func(t time.Time) string {
		return t.Format(time.RFC3339)
	},
	"linebreaks": func(text string) template.HTML {
		escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	},
}

// loadTemplates parses each page together with the layout and includes.
func loadTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html",
			"templates/includes/*.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// renderPage executes a page template into a buffer. The authenticated user
// is exposed as .viewer unless data already sets it.
func (s *Server) renderPage(r *http.Request, status int, name string, data map[string]interface{}) (cache.Page, error) {
	t, ok := s.pages[name]
	if !ok {
		return cache.Page{}, fmt.Errorf("unknown template %s", name)
	}
	if data == nil {
		data = make(map[string]interface{})
	}
	if _, set := data["viewer"]; !set {
		if u, ok := middleware.CurrentUser(r.Context()); ok {
			data["viewer"] = &u
		}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return cache.Page{}, fmt.Errorf("render %s: %w", name, err)
	}
	return cache.Page{
		Status: status,
		Header: map[string]string{
			"Content-Type": "text/html; charset=utf-8",
			TemplateHeader: name,
		},
		Body: buf.Bytes(),
	}, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	page, err := s.renderPage(r, status, name, data)
	if err != nil {
		s.log.WithContext(r.Context()).WithError(err).Error("render page")
		s.serverError(w, r)
		return
	}
	page.Replay(w)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "misc/404.html", map[string]interface{}{"path": r.URL.Path})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request) {
	page, err := s.renderPage(r, http.StatusInternalServerError, "misc/500.html", nil)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	page.Replay(w)
}
