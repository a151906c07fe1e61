package group

// Group is a topic community posts can be filed under.
type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}
