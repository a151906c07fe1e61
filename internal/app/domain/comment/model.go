package comment

import (
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
)

// Comment is a reader's reply to a post.
type Comment struct {
	ID       int64
	PostID   int64
	AuthorID int64
	Text     string
	Created  time.Time

	Author user.User
}
