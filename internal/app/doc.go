// Package app composes the Yatube services into a running application.
//
//	internal/app/
//	├── application.go   # Application struct, wiring and lifecycle
//	├── domain/          # Domain models (users, groups, posts, comments, follows, sessions)
//	├── storage/         # Store interfaces plus memory and postgres implementations
//	├── services/        # Business rules per aggregate
//	├── forms/           # HTML form binding and validation
//	├── paginator/       # Page windows for listings
//	├── cache/           # Rendered page cache
//	├── media/           # Uploaded image storage
//	├── web/             # Server-rendered pages
//	├── httpapi/         # Read-only JSON API
//	├── runtime/         # Config-driven wiring of stores and the HTTP server
//	├── system/          # Lifecycle manager
//	└── metrics/         # Prometheus collectors
//
// Dependencies flow downwards: cmd/yatube builds a runtime, the runtime
// builds an Application from stores, and the web and API layers call the
// Application's services.
package app
