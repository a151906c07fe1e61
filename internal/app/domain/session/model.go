package session

import "time"

// Session is the server-side record behind a login cookie. Only the hash of
// the signed token is stored.
type Session struct {
	ID         string
	UserID     int64
	TokenHash  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastSeenAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
