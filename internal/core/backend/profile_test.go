package backend

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/infrastructure/db/memory"
)

type stubMedia struct {
	name string
	body string
	err  error
}

func (s *stubMedia) Save(_ context.Context, filename string, r io.Reader) (string, int64, error) {
	if s.err != nil {
		return "", 0, s.err
	}
	b, _ := io.ReadAll(r)
	s.name, s.body = filename, string(b)
	return "/uploads/generated.png", int64(len(b)), nil
}

func newProfile(t *testing.T) (*ProfileService, *BlogService, *stubMedia) {
	t.Helper()
	users := memory.NewUserRepository()
	posts := memory.NewPostRepository()
	_ = users.Create(context.Background(), &domain.User{ID: "u1", Username: "alice"})

	blog := NewBlogService(posts)
	blog.now = (&fakeClock{}).Now
	media := &stubMedia{}
	return NewProfileService(users, posts, media), blog, media
}

func TestProfileService_MeAndPatch(t *testing.T) {
	svc, _, _ := newProfile(t)
	ctx := context.Background()

	name := "Alice"
	if err := svc.UpdateMe(ctx, "u1", domain.ProfilePatch{DisplayName: &name}); err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}
	me, err := svc.Me(ctx, "u1")
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Username != "alice" || me.DisplayName == nil || *me.DisplayName != "Alice" || me.Motto != nil {
		t.Fatalf("unexpected profile %+v", me)
	}
	if _, err := svc.Me(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProfileService_MyPostsFilters(t *testing.T) {
	svc, blog, _ := newProfile(t)
	ctx := context.Background()
	mustCreate(t, blog, "u1", domain.PostInput{Title: "Draft", BodyMD: "x"})
	mustCreate(t, blog, "u1", domain.PostInput{Title: "Live", BodyMD: "x", Status: domain.StatusPublished, Visibility: domain.VisibilityPrivate})
	mustCreate(t, blog, "u2", domain.PostInput{Title: "Theirs", BodyMD: "x"})

	tests := []struct {
		name   string
		filter domain.MyPostsFilter
		want   int
	}{
		{"all statuses", domain.MyPostsFilter{Status: "all", Visibility: "all"}, 2},
		{"unknown value ignored", domain.MyPostsFilter{Status: "bogus"}, 2},
		{"drafts", domain.MyPostsFilter{Status: "draft"}, 1},
		{"private", domain.MyPostsFilter{Visibility: "private"}, 1},
		{"published public", domain.MyPostsFilter{Status: "published", Visibility: "public"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.PageSize = DefaultMyPostsPageSize
			list, err := svc.MyPosts(ctx, "u1", tt.filter)
			if err != nil {
				t.Fatalf("MyPosts: %v", err)
			}
			if len(list.Items) != tt.want {
				t.Fatalf("got %d items, want %d", len(list.Items), tt.want)
			}
		})
	}

	list, _ := svc.MyPosts(ctx, "u1", domain.MyPostsFilter{Page: 0, PageSize: 1000})
	if list.Page != 1 || list.PageSize != MaxMyPostsPageSize {
		t.Fatalf("clamping failed: %+v", list)
	}
}

func TestProfileService_Upload(t *testing.T) {
	svc, _, media := newProfile(t)
	url, err := svc.Upload(context.Background(), "me.png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "/uploads/generated.png" || media.name != "me.png" || media.body != "img" {
		t.Fatalf("unexpected upload %q %+v", url, media)
	}

	media.err = errors.New("disk full")
	if _, err := svc.Upload(context.Background(), "x", strings.NewReader("y")); err == nil {
		t.Fatalf("expected media error to propagate")
	}
}
