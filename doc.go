// Package contacts provides the Contacts API server.

// This package contains the repository overview. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication, JWT issuance, and password flows
// - internal/repository: Database access for users and contacts
// - internal/email: Transactional email (SES) integration
// - internal/storage: Avatar storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/cache: Redis client used by the rate limiter
// - internal/middleware: HTTP middleware (request IDs, rate limiting, metrics)
// - internal/telemetry: OpenTelemetry tracing setup

// See the individual package documentation for detailed API reference.
package contacts
