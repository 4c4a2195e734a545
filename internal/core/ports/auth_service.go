package ports

import (
	"context"
	"io"

	"github.com/inkpress/blogkit/internal/core/domain"
)

// AuthService issues bearer tokens on the reference backend.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// BlogService implements the post endpoints of the reference backend.
// viewerID and authorID are user ids taken from a verified token.
type BlogService interface {
	ListPublic(ctx context.Context, q domain.PublicListQuery) (*domain.PublicList, error)
	GetPublished(ctx context.Context, slug, viewerID string) (*domain.Post, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	Create(ctx context.Context, authorID string, in domain.PostInput) (*domain.CreatedPost, error)
	GetForAuthor(ctx context.Context, authorID, id string) (*domain.AdminPost, error)
	Update(ctx context.Context, authorID, id string, in domain.PostInput) error
	Publish(ctx context.Context, authorID, id string) error
	Delete(ctx context.Context, authorID, id string) error
}

// ProfileService implements the /api/me endpoints and media uploads.
type ProfileService interface {
	Me(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateMe(ctx context.Context, userID string, patch domain.ProfilePatch) error
	MyPosts(ctx context.Context, userID string, f domain.MyPostsFilter) (*domain.MyPostList, error)
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}
