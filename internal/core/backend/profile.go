package backend

import (
	"context"
	"io"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/metrics"
)

const (
	DefaultMyPostsPageSize = 20
	MaxMyPostsPageSize     = 100
)

var _ ports.ProfileService = (*ProfileService)(nil)

type ProfileService struct {
	users ports.UserRepository
	posts ports.PostRepository
	media ports.MediaStore
}

func NewProfileService(users ports.UserRepository, posts ports.PostRepository, media ports.MediaStore) *ProfileService {
	return &ProfileService{users: users, posts: posts, media: media}
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*domain.UserProfile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := u.Profile()
	return &profile, nil
}

func (s *ProfileService) UpdateMe(ctx context.Context, userID string, patch domain.ProfilePatch) error {
	return s.users.UpdateProfile(ctx, userID, patch)
}

// MyPosts lists the user's own posts, most recently active first. A status
// or visibility other than a known value does not filter.
func (s *ProfileService) MyPosts(ctx context.Context, userID string, f domain.MyPostsFilter) (*domain.MyPostList, error) {
	page := max(f.Page, 1)
	size := clamp(f.PageSize, 1, MaxMyPostsPageSize)

	filter := ports.PostFilter{
		AuthorID: userID,
		Sort:     ports.SortRecentActivity,
		Offset:   (page - 1) * size,
		Limit:    size,
	}
	switch st := domain.Status(f.Status); st {
	case domain.StatusDraft, domain.StatusPublished:
		filter.Status = st
	}
	switch v := domain.Visibility(f.Visibility); v {
	case domain.VisibilityPublic, domain.VisibilityPrivate:
		filter.Visibility = v
	}

	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]domain.MyPostItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, domain.MyPostItem{
			ID:          p.ID,
			Slug:        p.Slug,
			Title:       p.Title,
			Status:      p.Status,
			Visibility:  p.Visibility,
			PublishedAt: p.PublishedAt,
			Excerpt:     p.Excerpt,
		})
	}
	return &domain.MyPostList{Page: page, PageSize: size, Items: items}, nil
}

// Upload stores one file and returns the URL it is served at.
func (s *ProfileService) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	url, n, err := s.media.Save(ctx, filename, r)
	if err != nil {
		return "", err
	}
	metrics.MediaUploadedBytes.Add(float64(n))
	return url, nil
}
