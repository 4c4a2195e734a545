package ports

import (
	"context"
	"io"

	"github.com/inkpress/blogkit/internal/core/domain"
)

// PostSort selects the ordering of a post listing.
type PostSort int

const (
	// SortNewestPublished orders by published_at, newest first.
	SortNewestPublished PostSort = iota
	// SortRecentActivity orders by published_at falling back to updated_at,
	// newest first.
	SortRecentActivity
)

// PostFilter narrows PostRepository.List. Zero fields do not filter.
type PostFilter struct {
	AuthorID   string
	Status     domain.Status
	Visibility domain.Visibility
	// Tag matches a tag slug or a tag name.
	Tag string
	// Query is a case-insensitive substring of the title or body.
	Query  string
	Sort   PostSort
	Offset int
	Limit  int
}

// PostRepository persists posts for the reference backend.
type PostRepository interface {
	Create(ctx context.Context, p *domain.StoredPost) error
	Update(ctx context.Context, p *domain.StoredPost) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.StoredPost, error)
	FindBySlug(ctx context.Context, slug string) (*domain.StoredPost, error)
	List(ctx context.Context, f PostFilter) ([]domain.StoredPost, error)
	// Tags aggregates the tags of every stored post, most used first.
	Tags(ctx context.Context) ([]domain.Tag, error)
}

// UserRepository persists author accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) error
}

// MediaStore keeps uploaded files and returns the URL they are served at.
type MediaStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (url string, size int64, err error)
}
