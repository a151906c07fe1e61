package follow

import "time"

// Follow records that UserID subscribes to AuthorID's posts.
type Follow struct {
	UserID   int64
	AuthorID int64
	Created  time.Time
}
