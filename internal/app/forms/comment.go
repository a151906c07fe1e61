package forms

import (
	"net/http"
	"strings"
)

// CommentForm binds the single text field of a comment.
type CommentForm struct {
	Text string `form:"text" validate:"required"`

	Errors Errors
}

// NewCommentForm returns an unbound comment form.
func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

// ParseCommentForm binds the request body.
func ParseCommentForm(r *http.Request) *CommentForm {
	f := NewCommentForm()
	if err := r.ParseForm(); err != nil {
		f.Errors.Add("", "The submitted data could not be read.")
		return f
	}
	f.Text = strings.TrimSpace(r.PostFormValue("text"))
	return f
}

// Validate reports whether the form is valid.
func (f *CommentForm) Validate() bool {
	check(f, f.Errors)
	return f.Errors.Valid()
}
