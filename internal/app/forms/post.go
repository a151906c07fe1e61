package forms

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif"}

var (
	errTooLarge   = errors.New("The uploaded file is too large.")
	errUnreadable = errors.New("The submitted file could not be read.")
	errEmptyFile  = errors.New("The submitted file is empty.")
	errNotImage   = errors.New("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
)

// GroupResolver looks up a group by its primary key.
type GroupResolver interface {
	GetGroup(ctx context.Context, id int64) (group.Group, error)
}

// Upload is a validated image file.
type Upload struct {
	Filename  string
	MediaType string
	Extension string
	Data      []byte
}

// PostForm binds the group, text and image fields of the post editor.
type PostForm struct {
	Group string `form:"group" validate:"omitempty,numeric"`
	Text  string `form:"text" validate:"required"`

	// Populated by Validate.
	GroupID *int64
	Image   *Upload

	rawImage  []byte
	imageName string
	imageErr  error

	Errors Errors
}

// NewPostForm returns an unbound form, pre-filled from existing values when
// editing.
func NewPostForm(text string, groupID *int64) *PostForm {
	f := &PostForm{Text: text, Errors: Errors{}}
	if groupID != nil {
		f.Group = strconv.FormatInt(*groupID, 10)
	}
	return f
}

// ParsePostForm binds a multipart or urlencoded request. maxImageBytes caps
// the accepted image size.
func ParsePostForm(r *http.Request, maxImageBytes int64) *PostForm {
	f := &PostForm{Errors: Errors{}}

	err := r.ParseMultipartForm(maxImageBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			f.imageErr = errTooLarge
		} else {
			f.Errors.Add("", "The submitted data could not be read.")
		}
		return f
	}

	f.Group = strings.TrimSpace(r.FormValue("group"))
	f.Text = strings.TrimSpace(r.FormValue("text"))

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		f.imageErr = errUnreadable
	default:
		defer file.Close()
		if header.Size > maxImageBytes {
			f.imageErr = errTooLarge
			break
		}
		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		if err != nil {
			f.imageErr = errUnreadable
			break
		}
		if int64(len(data)) > maxImageBytes {
			f.imageErr = errTooLarge
			break
		}
		if len(data) == 0 {
			f.imageErr = errEmptyFile
			break
		}
		f.rawImage = data
		f.imageName = header.Filename
	}
	return f
}

// Validate checks field rules, resolves the group and verifies the image.
// It reports whether the form is valid.
func (f *PostForm) Validate(ctx context.Context, groups GroupResolver) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	check(f, f.Errors)

	if f.Group != "" && !f.Errors.Has("group") {
		id, err := strconv.ParseInt(f.Group, 10, 64)
		if err == nil && groups != nil {
			_, err = groups.GetGroup(ctx, id)
		}
		if err != nil {
			f.Errors.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			f.GroupID = &id
		}
	}

	if f.imageErr != nil {
		f.Errors.Add("image", f.imageErr.Error())
	} else if f.rawImage != nil {
		upload, err := inspectImage(f.imageName, f.rawImage)
		if err != nil {
			f.Errors.Add("image", err.Error())
		} else {
			f.Image = upload
		}
	}

	return f.Errors.Valid()
}

// SelectedGroup reports whether the group option with id is selected.
func (f *PostForm) SelectedGroup(id int64) bool {
	return f.Group == strconv.FormatInt(id, 10)
}

func inspectImage(name string, data []byte) (*Upload, error) {
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, errNotImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, errNotImage
	}
	return &Upload{
		Filename:  name,
		MediaType: mtype.String(),
		Extension: mtype.Extension(),
		Data:      data,
	}, nil
}
