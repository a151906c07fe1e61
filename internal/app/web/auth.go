package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/forms"
	"github.com/DariaKalinichenko/Yatube/internal/app/services/users"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/internal/middleware"
)

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	form := forms.NewSignupForm()
	if r.Method == http.MethodPost {
		form = forms.ParseSignupForm(r)
		if form.Validate() {
			u, err := s.app.Users.Register(r.Context(), users.Registration{
				Username:  form.Username,
				Email:     form.Email,
				FirstName: form.FirstName,
				LastName:  form.LastName,
				Password:  form.Password1,
			})
			switch {
			case svcerrors.IsCode(err, svcerrors.CodeConflict):
				form.Errors.Add("username", svcerrors.GetServiceError(err).Message)
			case err != nil:
				s.fail(w, r, err)
				return
			default:
				if !s.startSession(w, r, u) {
					return
				}
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
		}
	}
	s.render(w, r, http.StatusOK, "auth/signup.html", map[string]interface{}{"form": form})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	form := forms.NewLoginForm(r.URL.Query().Get("next"))
	if r.Method == http.MethodPost {
		form = forms.ParseLoginForm(r)
		if form.Validate() {
			u, err := s.app.Users.Authenticate(r.Context(), form.Username, form.Password)
			switch {
			case svcerrors.IsCode(err, svcerrors.CodeUnauthorized):
				s.log.LogSecurityEvent(r.Context(), "login_failed", map[string]interface{}{"username": form.Username})
				form.Errors.Add("", svcerrors.GetServiceError(err).Message)
			case err != nil:
				s.fail(w, r, err)
				return
			default:
				if !s.startSession(w, r, u) {
					return
				}
				http.Redirect(w, r, safeNext(form.Next), http.StatusFound)
				return
			}
		}
	}
	s.render(w, r, http.StatusOK, "auth/login.html", map[string]interface{}{"form": form})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := s.app.Sessions.Revoke(r.Context(), cookie.Value); err != nil {
			s.log.WithContext(r.Context()).WithError(err).Warn("revoke session")
		}
	}
	middleware.ClearSessionCookie(w, s.opts.SecureCookies)
	s.render(w, r, http.StatusOK, "auth/logged_out.html", map[string]interface{}{"viewer": nil})
}

// startSession issues a session cookie. It reports false after writing an
// error page.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u user.User) bool {
	token, _, err := s.app.Sessions.Issue(r.Context(), u)
	if err != nil {
		s.fail(w, r, err)
		return false
	}
	middleware.SetSessionCookie(w, token, int(s.app.Sessions.TTL().Seconds()), s.opts.SecureCookies)
	return true
}

// safeNext only allows redirects to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
