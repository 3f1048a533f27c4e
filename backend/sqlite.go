package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// requiredFields lists the not-null columns enforced per table. Intake
// forms own the submission tables, so only console-written tables appear.
var requiredFields = map[string][]string{
	TableBlogs:      {"title", "category_id"},
	TableCategories: {"name"},
}

// SQLite implements Client over a single SQLite database. Logical tables
// are stored as JSON documents so the four heterogeneous form tables and
// the blog tables share one schema.
type SQLite struct {
	db      *sql.DB
	hub     *changeHub
	storage *diskStorage
}

// Open opens (or creates) the database at dbPath, ensures the data
// directory exists, and runs schema bootstrap. Uploaded files are stored
// under uploadsDir and resolved against publicBase.
func Open(dbPath, uploadsDir, publicBase string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write, busy timeout so writers wait instead
	// of failing with SQLITE_BUSY, synchronous=NORMAL is safe with WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	c := &SQLite{
		db:      db,
		hub:     newChangeHub(),
		storage: newDiskStorage(uploadsDir, publicBase),
	}
	if err := c.ensureSchema(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *SQLite) Close() error {
	return c.db.Close()
}

func (c *SQLite) ensureSchema() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS records (
    tbl TEXT NOT NULL,
    id TEXT NOT NULL,
    data TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (tbl, id)
);
CREATE INDEX IF NOT EXISTS idx_records_tbl ON records(tbl);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`)
	return err
}

// Select returns the rows of table matching filter. Rows come back with
// id, created_at and updated_at filled from the row columns.
func (c *SQLite) Select(ctx context.Context, table string, filter Filter) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, data, created_at, updated_at FROM records WHERE tbl = ?`, table)
	if err != nil {
		return nil, friendlyErr(err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var id, data, createdAt, updatedAt string
		if err := rows.Scan(&id, &data, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		rec := Record{}
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode record %s/%s: %w", table, id, err)
		}
		rec["id"] = id
		rec["created_at"] = createdAt
		rec["updated_at"] = updatedAt
		if matchesFilter(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

// Insert stores rec in table. An id is assigned when absent, created_at
// and updated_at default to now, and the stored row is returned.
func (c *SQLite) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	if err := checkRequired(table, rec); err != nil {
		return nil, err
	}
	id, _ := rec["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	createdAt := stringOr(rec["created_at"], now)
	updatedAt := stringOr(rec["updated_at"], createdAt)

	data, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	if _, err := c.db.ExecContext(ctx,
		`INSERT INTO records (tbl, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		table, id, data, createdAt, updatedAt); err != nil {
		return nil, friendlyErr(err)
	}

	stored := cloneRecord(rec)
	stored["id"] = id
	stored["created_at"] = createdAt
	stored["updated_at"] = updatedAt
	c.hub.broadcast(Change{Table: table, ID: id, Op: OpInsert})
	return stored, nil
}

// Update merges patch into the row with the given id and returns the
// updated row. updated_at is taken from the patch when provided.
func (c *SQLite) Update(ctx context.Context, table, id string, patch Record) (Record, error) {
	var data, createdAt, updatedAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM records WHERE tbl = ? AND id = ?`, table, id).
		Scan(&data, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, friendlyErr(err)
	}

	rec := Record{}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", table, id, err)
	}
	for k, v := range patch {
		rec[k] = v
	}
	if err := checkRequired(table, rec); err != nil {
		return nil, err
	}
	updatedAt = stringOr(patch["updated_at"], time.Now().UTC().Format(time.RFC3339))

	encoded, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	if _, err := c.db.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = ? WHERE tbl = ? AND id = ?`,
		encoded, updatedAt, table, id); err != nil {
		return nil, friendlyErr(err)
	}

	rec["id"] = id
	rec["created_at"] = createdAt
	rec["updated_at"] = updatedAt
	c.hub.broadcast(Change{Table: table, ID: id, Op: OpUpdate})
	return rec, nil
}

// Delete removes the row with the given id. Deleting an absent row
// returns ErrNotFound.
func (c *SQLite) Delete(ctx context.Context, table, id string) error {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM records WHERE tbl = ? AND id = ?`, table, id)
	if err != nil {
		return friendlyErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	c.hub.broadcast(Change{Table: table, ID: id, Op: OpDelete})
	return nil
}

// Subscribe registers fn for change notifications across all tables.
func (c *SQLite) Subscribe(fn func(Change)) func() {
	return c.hub.subscribe(fn)
}

// Upload stores a file under bucket/path, processing images on the way in.
func (c *SQLite) Upload(ctx context.Context, bucket, path string, r io.Reader) (string, error) {
	return c.storage.upload(ctx, bucket, path, r)
}

// PublicURL resolves a stored path to a browser-reachable URL.
func (c *SQLite) PublicURL(bucket, path string) string {
	return c.storage.publicURL(bucket, path)
}

// CreateUser registers a console account with a bcrypt-hashed password.
// Used by the seed path at startup, not exposed over HTTP.
func (c *SQLite) CreateUser(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrMissingRequiredField
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	u := User{ID: uuid.NewString(), Email: email, CreatedAt: now}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET password_hash = excluded.password_hash`,
		u.ID, u.Email, string(hash), now.Format(time.RFC3339))
	if err != nil {
		return User{}, friendlyErr(err)
	}
	return u, nil
}

// SignIn authenticates an email/password pair.
func (c *SQLite) SignIn(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	var hash, createdAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &hash, &createdAt)
	if err == sql.ErrNoRows {
		return User{}, ErrInvalidLogin
	}
	if err != nil {
		return User{}, friendlyErr(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidLogin
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

// CurrentUser loads the account behind a session's user id.
func (c *SQLite) CurrentUser(ctx context.Context, id string) (User, error) {
	var u User
	var createdAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &createdAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, friendlyErr(err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

func checkRequired(table string, rec Record) error {
	for _, field := range requiredFields[table] {
		v, ok := rec[field]
		if !ok || v == nil {
			return ErrMissingRequiredField
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return ErrMissingRequiredField
		}
	}
	return nil
}

// encodeRecord serializes a record's payload, dropping the column-backed
// keys so they are never duplicated inside the document.
func encodeRecord(rec Record) (string, error) {
	doc := cloneRecord(rec)
	delete(doc, "id")
	delete(doc, "created_at")
	delete(doc, "updated_at")
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(b), nil
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func matchesFilter(rec Record, filter Filter) bool {
	for k, want := range filter {
		if fmt.Sprint(rec[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// friendlyErr maps database constraint failures onto the sentinel the
// notice banner knows how to phrase.
func friendlyErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "NOT NULL constraint failed") {
		return ErrMissingRequiredField
	}
	return err
}
