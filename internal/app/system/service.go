package system

import "context"

// Service represents a lifecycle-managed component such as the HTTP server
// or the session purger. The manager starts and stops them deterministically.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
