// Package backend is the console's data service: table-style CRUD over
// named logical tables, email/password auth, file storage buckets, and a
// change feed that fires on every successful write. Handlers and stores
// depend on the Client interface, never on the SQLite implementation.
package backend

import (
	"context"
	"errors"
	"io"
	"time"
)

// Logical table names. These are part of the external contract and must
// match the intake forms that write into them.
const (
	TableBlogs      = "blogs"
	TableCategories = "categories"
	TablePassports  = "passport_applications"
	TableBirthCerts = "birth_certificates"
	TableCompanies  = "company_applications"
	TableSoleProps  = "sole_proprietorship_applications"
)

// Storage bucket names, one per upload-carrying form type plus a generic
// fallback.
const (
	BucketPassportUploads = "passport_uploads"
	BucketCompanyUploads  = "company_uploads"
	BucketSolePropUploads = "sole_proprietorship_uploads"
	BucketUploads         = "uploads"
)

var (
	// ErrNotFound is returned when a row with the requested id does not exist.
	ErrNotFound = errors.New("backend: record not found")

	// ErrMissingRequiredField maps the database's not-null constraint
	// to a message fit for a notice banner.
	ErrMissingRequiredField = errors.New("a required field is missing, please fill in all required fields")

	// ErrInvalidLogin is returned for a wrong email or password.
	ErrInvalidLogin = errors.New("invalid email or password")
)

// Record is one row of a logical table. Rows are schemaless on the wire;
// the id, created_at and updated_at keys are always present after a read.
type Record = map[string]any

// Filter restricts a Select to rows whose fields equal the given values.
// A nil filter selects every row in the table.
type Filter = map[string]any

// Op identifies the kind of write that produced a Change.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one committed write, delivered to subscribers.
type Change struct {
	Table string
	ID    string
	Op    Op
}

// User is an authenticated console account.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Client is the full data-service contract the console consumes.
type Client interface {
	// Select returns the rows of table matching filter, unordered.
	Select(ctx context.Context, table string, filter Filter) ([]Record, error)
	// Insert stores rec, assigning id and timestamps, and returns the row.
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// Update applies patch to the row with the given id and returns it.
	Update(ctx context.Context, table, id string, patch Record) (Record, error)
	// Delete removes the row with the given id.
	Delete(ctx context.Context, table, id string) error

	// Subscribe registers fn for change notifications across all tables.
	// The returned function removes the subscription.
	Subscribe(fn func(Change)) (unsubscribe func())

	// Upload stores the contents of r under bucket/path and returns the
	// storage path to persist in a record field.
	Upload(ctx context.Context, bucket, path string, r io.Reader) (string, error)
	// PublicURL resolves a stored path to a browser-reachable URL.
	PublicURL(bucket, path string) string

	// SignIn authenticates an email/password pair.
	SignIn(ctx context.Context, email, password string) (User, error)
	// CurrentUser loads the account behind a session's user id.
	CurrentUser(ctx context.Context, id string) (User, error)

	Close() error
}
