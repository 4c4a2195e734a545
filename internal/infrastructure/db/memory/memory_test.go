package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
)

func storedPost(id, slug string, published *time.Time, updated time.Time, tags ...string) *domain.StoredPost {
	p := &domain.StoredPost{UpdatedAt: updated}
	p.ID = id
	p.Slug = slug
	p.Title = "Title " + id
	p.BodyMD = "body of " + id
	p.AuthorID = "u1"
	p.Status = domain.StatusDraft
	p.Visibility = domain.VisibilityPublic
	p.Tags = tags
	if published != nil {
		p.Status = domain.StatusPublished
		p.PublishedAt = published
	}
	return p
}

func at(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestPostRepository_SlugUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()
	if err := repo.Create(ctx, storedPost("a", "same", nil, at(1))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, storedPost("b", "same", nil, at(1))); !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if err := repo.Update(ctx, storedPost("a", "same", nil, at(2))); err != nil {
		t.Fatalf("updating a post with its own slug: %v", err)
	}
	if err := repo.Update(ctx, storedPost("missing", "x", nil, at(2))); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()
	_ = repo.Create(ctx, storedPost("a", "a", nil, at(1), "go"))

	got, _ := repo.FindByID(ctx, "a")
	got.Tags[0] = "mutated"
	again, _ := repo.FindBySlug(ctx, "a")
	if again.Tags[0] != "go" {
		t.Fatalf("stored post was mutated through a returned copy")
	}
}

func TestPostRepository_ListFilterSortPage(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()
	_ = repo.Create(ctx, storedPost("old", "old", ptrTime(at(1)), at(1), "Go"))
	_ = repo.Create(ctx, storedPost("new", "new", ptrTime(at(5)), at(5), "Go", "Rust"))
	_ = repo.Create(ctx, storedPost("mid", "mid", ptrTime(at(3)), at(3)))
	_ = repo.Create(ctx, storedPost("draft", "draft", nil, at(9)))

	got, _ := repo.List(ctx, ports.PostFilter{Status: domain.StatusPublished})
	if ids(got) != "new,mid,old" {
		t.Fatalf("newest published first, got %s", ids(got))
	}

	got, _ = repo.List(ctx, ports.PostFilter{Sort: ports.SortRecentActivity})
	if ids(got) != "draft,new,mid,old" {
		t.Fatalf("recent activity order, got %s", ids(got))
	}

	got, _ = repo.List(ctx, ports.PostFilter{Status: domain.StatusPublished, Tag: "go"})
	if ids(got) != "new,old" {
		t.Fatalf("tag slug filter, got %s", ids(got))
	}
	got, _ = repo.List(ctx, ports.PostFilter{Tag: "Rust"})
	if ids(got) != "new" {
		t.Fatalf("tag name filter, got %s", ids(got))
	}

	got, _ = repo.List(ctx, ports.PostFilter{Query: "BODY OF MID"})
	if ids(got) != "mid" {
		t.Fatalf("case-insensitive query, got %s", ids(got))
	}

	got, _ = repo.List(ctx, ports.PostFilter{Status: domain.StatusPublished, Offset: 1, Limit: 1})
	if ids(got) != "mid" {
		t.Fatalf("pagination, got %s", ids(got))
	}
	got, _ = repo.List(ctx, ports.PostFilter{Offset: 10})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil page past the end, got %v", got)
	}
}

func TestPostRepository_Tags(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()
	_ = repo.Create(ctx, storedPost("a", "a", nil, at(1), "Go", "Web"))
	_ = repo.Create(ctx, storedPost("b", "b", nil, at(1), "Go"))

	tags, err := repo.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Slug != "go" || tags[0].Count != 2 || tags[1].Slug != "web" || tags[1].Count != 1 {
		t.Fatalf("unexpected tags %+v", tags)
	}
	if tags[0].ID != domain.TagID("go") || tags[0].Name != "Go" {
		t.Fatalf("unexpected tag identity %+v", tags[0])
	}
}

func TestPostRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()
	_ = repo.Create(ctx, storedPost("a", "a", nil, at(1)))
	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	if err := repo.Create(ctx, &domain.User{ID: "u1", Username: "alice"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &domain.User{ID: "u2", Username: "alice"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	name := "Alice"
	if err := repo.UpdateProfile(ctx, "u1", domain.ProfilePatch{DisplayName: &name}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	motto := "hi"
	_ = repo.UpdateProfile(ctx, "u1", domain.ProfilePatch{Motto: &motto})

	u, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if u.DisplayName == nil || *u.DisplayName != "Alice" || u.Motto == nil || *u.Motto != "hi" || u.AvatarURL != nil {
		t.Fatalf("patch not applied field by field: %+v", u)
	}
	if _, err := repo.FindByID(ctx, "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := repo.UpdateProfile(ctx, "nope", domain.ProfilePatch{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func ids(posts []domain.StoredPost) string {
	out := ""
	for i, p := range posts {
		if i > 0 {
			out += ","
		}
		out += p.ID
	}
	return out
}
