// Package content is the blog side of the console: posts and categories
// as thin pass-throughs to the backend, with the local validation that
// blocks a remote call before it is attempted.
package content

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/govdesk/govdesk/backend"
)

// Validation failures are user-facing notice text, reported before any
// network call is made.
var (
	ErrTitleRequired        = errors.New("Please enter a blog title")
	ErrCategoryRequired     = errors.New("Please select a category")
	ErrCategoryNameRequired = errors.New("Category name is required")
)

// Post is one blog entry. Content is an opaque serialized document from
// the editor; the console never interprets it. CategoryID is the
// canonical foreign key into categories.
type Post struct {
	ID         string
	Title      string
	Content    string
	CategoryID string
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Category groups posts under a name.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Draft carries the fields the post editor exposes. Saves send nothing
// else.
type Draft struct {
	Title      string
	Content    string
	CategoryID string
	Published  bool
}

// Store provides post and category operations over the backend client.
type Store struct {
	client backend.Client
}

// NewStore creates a content store over the given backend client.
func NewStore(client backend.Client) *Store {
	return &Store{client: client}
}

// Posts returns every post, newest first.
func (s *Store) Posts(ctx context.Context) ([]Post, error) {
	rows, err := s.client.Select(ctx, backend.TableBlogs, nil)
	if err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(rows))
	for _, rec := range rows {
		posts = append(posts, decodePost(rec))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Post returns one post by id.
func (s *Store) Post(ctx context.Context, id string) (Post, error) {
	rows, err := s.client.Select(ctx, backend.TableBlogs, backend.Filter{"id": id})
	if err != nil {
		return Post{}, err
	}
	if len(rows) == 0 {
		return Post{}, backend.ErrNotFound
	}
	return decodePost(rows[0]), nil
}

// CreatePost validates the draft and inserts it. A missing title or
// category blocks the insert entirely.
func (s *Store) CreatePost(ctx context.Context, d Draft) (Post, error) {
	if err := validateDraft(d); err != nil {
		return Post{}, err
	}
	rec, err := s.client.Insert(ctx, backend.TableBlogs, backend.Record{
		"title":       strings.TrimSpace(d.Title),
		"content":     d.Content,
		"category_id": d.CategoryID,
		"published":   d.Published,
		"created_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Post{}, err
	}
	return decodePost(rec), nil
}

// UpdatePost saves the edited draft over an existing post. Only the
// fields the editor exposes are sent, plus the update timestamp.
func (s *Store) UpdatePost(ctx context.Context, id string, d Draft) (Post, error) {
	if err := validateDraft(d); err != nil {
		return Post{}, err
	}
	rec, err := s.client.Update(ctx, backend.TableBlogs, id, backend.Record{
		"title":       strings.TrimSpace(d.Title),
		"content":     d.Content,
		"category_id": d.CategoryID,
		"published":   d.Published,
		"updated_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Post{}, err
	}
	return decodePost(rec), nil
}

// SetPublished flips a post between draft and published. Unlike the
// submission workflow this transition runs both ways.
func (s *Store) SetPublished(ctx context.Context, id string, published bool) (Post, error) {
	rec, err := s.client.Update(ctx, backend.TableBlogs, id, backend.Record{
		"published":  published,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Post{}, err
	}
	return decodePost(rec), nil
}

// DeletePost removes a post immediately; there is no soft delete.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.client.Delete(ctx, backend.TableBlogs, id)
}

// Categories returns every category, alphabetical.
func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.client.Select(ctx, backend.TableCategories, nil)
	if err != nil {
		return nil, err
	}
	cats := make([]Category, 0, len(rows))
	for _, rec := range rows {
		cats = append(cats, Category{
			ID:        recString(rec, "id"),
			Name:      recString(rec, "name"),
			CreatedAt: recTime(rec, "created_at"),
		})
	}
	sort.SliceStable(cats, func(i, j int) bool {
		return strings.ToLower(cats[i].Name) < strings.ToLower(cats[j].Name)
	})
	return cats, nil
}

// CreateCategory inserts a category after trimming its name. A blank name
// is rejected locally and no remote call is issued.
func (s *Store) CreateCategory(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrCategoryNameRequired
	}
	rec, err := s.client.Insert(ctx, backend.TableCategories, backend.Record{"name": name})
	if err != nil {
		return Category{}, err
	}
	return Category{
		ID:        recString(rec, "id"),
		Name:      recString(rec, "name"),
		CreatedAt: recTime(rec, "created_at"),
	}, nil
}

// CategoryName resolves a category id against a fetched list, falling
// back to the id itself when the category is gone.
func CategoryName(cats []Category, id string) string {
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func validateDraft(d Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if d.CategoryID == "" {
		return ErrCategoryRequired
	}
	return nil
}

func decodePost(rec backend.Record) Post {
	published, _ := rec["published"].(bool)
	return Post{
		ID:         recString(rec, "id"),
		Title:      recString(rec, "title"),
		Content:    recString(rec, "content"),
		CategoryID: recString(rec, "category_id"),
		Published:  published,
		CreatedAt:  recTime(rec, "created_at"),
		UpdatedAt:  recTime(rec, "updated_at"),
	}
}

func recString(rec backend.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

var postTimeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func recTime(rec backend.Record, key string) time.Time {
	s, _ := rec[key].(string)
	for _, layout := range postTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
