// Package memory holds in-process repositories used by the reference
// backend when no database is configured, and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
)

var _ ports.PostRepository = (*PostRepository)(nil)

type PostRepository struct {
	mu    sync.RWMutex
	posts map[string]domain.StoredPost
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]domain.StoredPost)}
}

func (r *PostRepository) Create(_ context.Context, p *domain.StoredPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(p.Slug, "") {
		return domain.ErrSlugTaken
	}
	r.posts[p.ID] = clonePost(*p)
	return nil
}

func (r *PostRepository) Update(_ context.Context, p *domain.StoredPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[p.ID]; !ok {
		return domain.ErrPostNotFound
	}
	if r.slugTaken(p.Slug, p.ID) {
		return domain.ErrSlugTaken
	}
	r.posts[p.ID] = clonePost(*p)
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepository) FindByID(_ context.Context, id string) (*domain.StoredPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	out := clonePost(p)
	return &out, nil
}

func (r *PostRepository) FindBySlug(_ context.Context, slug string) (*domain.StoredPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.Slug == slug {
			out := clonePost(p)
			return &out, nil
		}
	}
	return nil, domain.ErrPostNotFound
}

func (r *PostRepository) List(_ context.Context, f ports.PostFilter) ([]domain.StoredPost, error) {
	r.mu.RLock()
	matched := make([]domain.StoredPost, 0, len(r.posts))
	for _, p := range r.posts {
		if matches(p, f) {
			matched = append(matched, clonePost(p))
		}
	}
	r.mu.RUnlock()

	sortPosts(matched, f.Sort)

	if f.Offset >= len(matched) {
		return []domain.StoredPost{}, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (r *PostRepository) Tags(_ context.Context) ([]domain.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bySlug := make(map[string]*domain.Tag)
	for _, p := range r.posts {
		for _, name := range p.Tags {
			slug := domain.Slugify(name)
			t, ok := bySlug[slug]
			if !ok {
				t = &domain.Tag{ID: domain.TagID(slug), Slug: slug, Name: name}
				bySlug[slug] = t
			}
			t.Count++
		}
	}

	tags := make([]domain.Tag, 0, len(bySlug))
	for _, t := range bySlug {
		tags = append(tags, *t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Slug < tags[j].Slug
	})
	return tags, nil
}

// slugTaken must be called with mu held.
func (r *PostRepository) slugTaken(slug, exceptID string) bool {
	for id, p := range r.posts {
		if id != exceptID && p.Slug == slug {
			return true
		}
	}
	return false
}

func matches(p domain.StoredPost, f ports.PostFilter) bool {
	if f.AuthorID != "" && p.AuthorID != f.AuthorID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Visibility != "" && p.Visibility != f.Visibility {
		return false
	}
	if f.Tag != "" && !hasTag(p.Tags, f.Tag) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.BodyMD), q) {
			return false
		}
	}
	return true
}

func hasTag(tags []string, want string) bool {
	for _, name := range tags {
		if name == want || domain.Slugify(name) == want {
			return true
		}
	}
	return false
}

func sortPosts(posts []domain.StoredPost, order ports.PostSort) {
	key := func(p domain.StoredPost) time.Time {
		if p.PublishedAt != nil {
			return *p.PublishedAt
		}
		if order == ports.SortRecentActivity {
			return p.UpdatedAt
		}
		return time.Time{}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		ki, kj := key(posts[i]), key(posts[j])
		if !ki.Equal(kj) {
			return ki.After(kj)
		}
		if !posts[i].UpdatedAt.Equal(posts[j].UpdatedAt) {
			return posts[i].UpdatedAt.After(posts[j].UpdatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

func clonePost(p domain.StoredPost) domain.StoredPost {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}
