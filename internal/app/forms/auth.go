package forms

import (
	"net/http"
	"strings"
)

// SignupForm binds the registration page.
type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" validate:"required,min=8,max=128"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`

	Errors Errors
}

// NewSignupForm returns an unbound signup form.
func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}}
}

// ParseSignupForm binds the request body.
func ParseSignupForm(r *http.Request) *SignupForm {
	f := NewSignupForm()
	if err := r.ParseForm(); err != nil {
		f.Errors.Add("", "The submitted data could not be read.")
		return f
	}
	f.FirstName = strings.TrimSpace(r.PostFormValue("first_name"))
	f.LastName = strings.TrimSpace(r.PostFormValue("last_name"))
	f.Username = strings.TrimSpace(r.PostFormValue("username"))
	f.Email = strings.TrimSpace(r.PostFormValue("email"))
	f.Password1 = r.PostFormValue("password1")
	f.Password2 = r.PostFormValue("password2")
	return f
}

// Validate reports whether the form is valid. Username uniqueness is
// checked by the users service on registration.
func (f *SignupForm) Validate() bool {
	check(f, f.Errors)
	return f.Errors.Valid()
}

// LoginForm binds the login page.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"-"`

	Errors Errors
}

// NewLoginForm returns an unbound login form that will redirect to next.
func NewLoginForm(next string) *LoginForm {
	return &LoginForm{Next: next, Errors: Errors{}}
}

// ParseLoginForm binds the request body. next may come from the query
// string or a hidden field.
func ParseLoginForm(r *http.Request) *LoginForm {
	f := NewLoginForm("")
	if err := r.ParseForm(); err != nil {
		f.Errors.Add("", "The submitted data could not be read.")
		return f
	}
	f.Username = strings.TrimSpace(r.PostFormValue("username"))
	f.Password = r.PostFormValue("password")
	f.Next = r.FormValue("next")
	return f
}

// Validate reports whether the form is valid.
func (f *LoginForm) Validate() bool {
	check(f, f.Errors)
	return f.Errors.Valid()
}
