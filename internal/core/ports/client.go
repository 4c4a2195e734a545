package ports

import (
	"context"
	"io"

	"github.com/inkpress/blogkit/internal/core/domain"
)

// AuthAPI exchanges credentials for a bearer token.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)
}

// PostAPI covers the post endpoints, public and authoring.
type PostAPI interface {
	ListPublic(ctx context.Context, q domain.PublicListQuery) (*domain.PublicList, error)
	GetPublicBySlug(ctx context.Context, slug string) (*domain.Post, error)
	GetAdminByID(ctx context.Context, id string) (*domain.AdminPost, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	Create(ctx context.Context, in domain.PostInput) (*domain.CreatedPost, error)
	Update(ctx context.Context, id string, in domain.PostInput) (*domain.Ack, error)
	Publish(ctx context.Context, id string) (*domain.Ack, error)
	Delete(ctx context.Context, id string) (*domain.Ack, error)
}

// ProfileAPI covers the authenticated user's own resources.
type ProfileAPI interface {
	GetMe(ctx context.Context) (*domain.UserProfile, error)
	UpdateMe(ctx context.Context, patch domain.ProfilePatch) (*domain.Ack, error)
	GetMyPosts(ctx context.Context, f domain.MyPostsFilter) (*domain.MyPostList, error)
	UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error)
}
