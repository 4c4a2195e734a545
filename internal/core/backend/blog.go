package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/metrics"
)

const (
	DefaultPublicPageSize = 10
	MaxPublicPageSize     = 50
)

var _ ports.BlogService = (*BlogService)(nil)

// BlogService owns post authoring and the public read model.
type BlogService struct {
	posts ports.PostRepository
	now   func() time.Time
}

func NewBlogService(posts ports.PostRepository) *BlogService {
	return &BlogService{posts: posts, now: time.Now}
}

// ListPublic returns published public posts, newest first. page is raised to
// 1 and page size clamped to 1..MaxPublicPageSize.
func (s *BlogService) ListPublic(ctx context.Context, q domain.PublicListQuery) (*domain.PublicList, error) {
	page := max(q.Page, 1)
	size := clamp(q.PageSize, 1, MaxPublicPageSize)

	posts, err := s.posts.List(ctx, ports.PostFilter{
		Status:     domain.StatusPublished,
		Visibility: domain.VisibilityPublic,
		Tag:        q.Tag,
		Query:      q.Q,
		Sort:       ports.SortNewestPublished,
		Offset:     (page - 1) * size,
		Limit:      size,
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.PublicListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, domain.PublicListItem{
			ID:          p.ID,
			Slug:        p.Slug,
			Title:       p.Title,
			Excerpt:     p.Excerpt,
			PublishedAt: p.PublishedAt,
		})
	}
	return &domain.PublicList{Page: page, PageSize: size, Items: items}, nil
}

// GetPublished returns a published post by slug. Private posts are visible
// only to their author; everything else reads as not found.
func (s *BlogService) GetPublished(ctx context.Context, slug, viewerID string) (*domain.Post, error) {
	p, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.StatusPublished {
		return nil, domain.ErrPostNotFound
	}
	if p.Visibility != domain.VisibilityPublic && (viewerID == "" || p.AuthorID != viewerID) {
		return nil, domain.ErrPostNotFound
	}
	return &p.Post, nil
}

func (s *BlogService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.posts.Tags(ctx)
}

func (s *BlogService) Create(ctx context.Context, authorID string, in domain.PostInput) (*domain.CreatedPost, error) {
	now := s.now().UTC()
	p := &domain.StoredPost{CreatedAt: now}
	p.ID = uuid.NewString()
	p.AuthorID = authorID
	p.Tags = normalizeTags(in.Tags)
	if err := s.apply(p, in, now); err != nil {
		return nil, err
	}

	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	metrics.PostMutationsTotal.WithLabelValues("create").Inc()
	return &domain.CreatedPost{ID: p.ID, Slug: p.Slug}, nil
}

// GetForAuthor loads a post for editing. Missing posts and posts of other
// authors are both forbidden.
func (s *BlogService) GetForAuthor(ctx context.Context, authorID, id string) (*domain.AdminPost, error) {
	p, err := s.owned(ctx, authorID, id)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p.AdminPost, nil
}

// Update replaces the post with in. Tags are only replaced when in carries
// them.
func (s *BlogService) Update(ctx context.Context, authorID, id string, in domain.PostInput) error {
	p, err := s.owned(ctx, authorID, id)
	if err != nil {
		return err
	}
	if in.Tags != nil {
		p.Tags = normalizeTags(in.Tags)
	}
	if err := s.apply(p, in, s.now().UTC()); err != nil {
		return err
	}

	if err := s.posts.Update(ctx, p); err != nil {
		return err
	}
	metrics.PostMutationsTotal.WithLabelValues("update").Inc()
	return nil
}

// Publish marks the post published and stamps published_at with the
// current time.
func (s *BlogService) Publish(ctx context.Context, authorID, id string) error {
	p, err := s.owned(ctx, authorID, id)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	p.Status = domain.StatusPublished
	p.PublishedAt = &now
	p.UpdatedAt = now

	if err := s.posts.Update(ctx, p); err != nil {
		return err
	}
	metrics.PostMutationsTotal.WithLabelValues("publish").Inc()
	return nil
}

func (s *BlogService) Delete(ctx context.Context, authorID, id string) error {
	if _, err := s.owned(ctx, authorID, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	metrics.PostMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

func (s *BlogService) owned(ctx context.Context, authorID, id string) (*domain.StoredPost, error) {
	p, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, domain.ErrPostNotFound) {
		return nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if p.AuthorID != authorID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// apply copies the editable fields of in onto p and fills the defaults:
// slug from the title, status draft, visibility public.
func (s *BlogService) apply(p *domain.StoredPost, in domain.PostInput, now time.Time) error {
	slug := in.Slug
	if slug == "" {
		slug = domain.Slugify(in.Title)
	}
	if slug == "" {
		return fmt.Errorf("%w: title does not produce a slug", domain.ErrInvalidInput)
	}

	p.Slug = slug
	p.Title = in.Title
	p.Excerpt = in.Excerpt
	p.BodyMD = in.BodyMD
	p.BodyHTML = domain.RenderBody(in.BodyMD)
	p.Status = in.Status
	if p.Status == "" {
		p.Status = domain.StatusDraft
	}
	p.Visibility = in.Visibility
	if p.Visibility == "" {
		p.Visibility = domain.VisibilityPublic
	}
	if p.Status == domain.StatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	p.UpdatedAt = now
	return nil
}

// normalizeTags trims names and drops blanks and names sharing a slug.
func normalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := domain.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, name)
	}
	return out
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
