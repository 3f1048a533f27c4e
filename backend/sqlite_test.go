package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestClient(t *testing.T) *SQLite {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "console.db"), filepath.Join(dir, "uploads"), "/public/uploads")
	if err != nil {
		t.Fatalf("failed to open client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestInsertAndSelect(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	rec, err := c.Insert(ctx, TablePassports, Record{
		"first_name": "Ama",
		"surname":    "Mensah",
		"status":     "pending",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if rec["id"] == "" {
		t.Error("inserted record should have an id assigned")
	}
	if rec["created_at"] == "" || rec["updated_at"] == "" {
		t.Error("inserted record should carry timestamps")
	}

	rows, err := c.Select(ctx, TablePassports, nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Select count = %d, want 1", len(rows))
	}
	if rows[0]["first_name"] != "Ama" {
		t.Errorf("first_name = %v, want Ama", rows[0]["first_name"])
	}
}

func TestSelectWithFilter(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	for _, status := range []string{"pending", "approved", "pending"} {
		if _, err := c.Insert(ctx, TableBirthCerts, Record{"first_name": "K", "status": status}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	rows, err := c.Select(ctx, TableBirthCerts, Filter{"status": "pending"})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("filtered count = %d, want 2", len(rows))
	}
}

func TestSelectByID(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	rec, err := c.Insert(ctx, TableCompanies, Record{"business_name_1": "Accra Traders"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	rows, err := c.Select(ctx, TableCompanies, Filter{"id": rec["id"]})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["business_name_1"] != "Accra Traders" {
		t.Errorf("Select by id returned %v", rows)
	}
}

func TestUpdateMergesPatch(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	rec, err := c.Insert(ctx, TablePassports, Record{"first_name": "Kofi", "status": "pending"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id := rec["id"].(string)

	updated, err := c.Update(ctx, TablePassports, id, Record{
		"status":     "approved",
		"updated_at": "2025-06-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated["status"] != "approved" {
		t.Errorf("status = %v, want approved", updated["status"])
	}
	if updated["first_name"] != "Kofi" {
		t.Errorf("untouched field lost: first_name = %v", updated["first_name"])
	}
	if updated["updated_at"] != "2025-06-01T10:00:00Z" {
		t.Errorf("updated_at = %v, want patch value", updated["updated_at"])
	}
}

func TestUpdateMissingRow(t *testing.T) {
	c := setupTestClient(t)
	_, err := c.Update(context.Background(), TablePassports, "no-such-id", Record{"status": "approved"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	rec, err := c.Insert(ctx, TableBlogs, Record{"title": "Hello", "category_id": "c1"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := c.Delete(ctx, TableBlogs, rec["id"].(string)); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	rows, err := c.Select(ctx, TableBlogs, nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("row still present after delete")
	}
	if err := c.Delete(ctx, TableBlogs, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting absent row: expected ErrNotFound, got %v", err)
	}
}

func TestRequiredFields(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	if _, err := c.Insert(ctx, TableCategories, Record{"name": "   "}); !errors.Is(err, ErrMissingRequiredField) {
		t.Errorf("blank category name: expected ErrMissingRequiredField, got %v", err)
	}
	if _, err := c.Insert(ctx, TableBlogs, Record{"title": "No category"}); !errors.Is(err, ErrMissingRequiredField) {
		t.Errorf("post without category: expected ErrMissingRequiredField, got %v", err)
	}
}

func TestChangeFeed(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	var changes []Change
	unsubscribe := c.Subscribe(func(ch Change) { changes = append(changes, ch) })

	rec, err := c.Insert(ctx, TableSoleProps, Record{"business_name_1": "Kejetia Fabrics"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id := rec["id"].(string)
	if _, err := c.Update(ctx, TableSoleProps, id, Record{"status": "approved"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := c.Delete(ctx, TableSoleProps, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(changes) != 3 {
		t.Fatalf("changes = %d, want 3", len(changes))
	}
	wantOps := []Op{OpInsert, OpUpdate, OpDelete}
	for i, ch := range changes {
		if ch.Op != wantOps[i] || ch.Table != TableSoleProps || ch.ID != id {
			t.Errorf("change[%d] = %+v", i, ch)
		}
	}

	unsubscribe()
	if _, err := c.Insert(ctx, TableSoleProps, Record{"business_name_1": "Another"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if len(changes) != 3 {
		t.Errorf("subscriber still notified after unsubscribe")
	}
}

func TestAuth(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	u, err := c.CreateUser(ctx, "Admin@Example.com ", "s3cret")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.Email != "admin@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}

	got, err := c.SignIn(ctx, "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if got.Email != "admin@example.com" {
		t.Errorf("SignIn email = %q", got.Email)
	}

	if _, err := c.SignIn(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("wrong password: expected ErrInvalidLogin, got %v", err)
	}
	if _, err := c.SignIn(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidLogin) {
		t.Errorf("unknown email: expected ErrInvalidLogin, got %v", err)
	}

	cur, err := c.CurrentUser(ctx, got.ID)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if cur.ID != got.ID {
		t.Errorf("CurrentUser id = %q, want %q", cur.ID, got.ID)
	}
}

func TestUploadAndPublicURL(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	stored, err := c.Upload(ctx, BucketPassportUploads, "statement.pdf", strings.NewReader("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if stored != "statement.pdf" {
		t.Errorf("stored path = %q", stored)
	}
	if _, err := os.Stat(filepath.Join(c.storage.root, BucketPassportUploads, stored)); err != nil {
		t.Errorf("uploaded file missing on disk: %v", err)
	}

	url := c.PublicURL(BucketPassportUploads, stored)
	if url != "/public/uploads/passport_uploads/statement.pdf" {
		t.Errorf("PublicURL = %q", url)
	}

	// Unknown buckets fall back to the generic one.
	if url := c.PublicURL("whatever", "f.txt"); url != "/public/uploads/uploads/f.txt" {
		t.Errorf("fallback PublicURL = %q", url)
	}
	if c.PublicURL(BucketUploads, "") != "" {
		t.Error("empty path should resolve to empty URL")
	}
}
