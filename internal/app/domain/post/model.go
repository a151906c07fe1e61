package post

import (
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/group"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
)

// Post is a published entry. Author and Group are populated by listing
// queries so templates never need a second lookup.
type Post struct {
	ID       int64
	Text     string
	PubDate  time.Time
	AuthorID int64
	GroupID  *int64
	Image    string

	Author user.User
	Group  *group.Group
}

// HasImage reports whether an image is attached.
func (p Post) HasImage() bool { return p.Image != "" }

// Filter narrows post listings. Zero value matches every post.
type Filter struct {
	AuthorID  int64
	GroupID   int64
	AuthorIDs []int64
	// ByAuthors distinguishes an empty author set (match nothing) from no
	// author-set filter at all.
	ByAuthors bool
}
