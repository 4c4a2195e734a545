package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/httpclient"
)

func TestPostService_ListPublic_OmitsUnsetFilters(t *testing.T) {
	var rawQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, domain.PublicList{Page: 2, PageSize: 10})
	})

	list, err := NewPostService(c).ListPublic(context.Background(), domain.PublicListQuery{Page: 2})
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if rawQuery != "page=2" {
		t.Fatalf("query = %q, want only page=2", rawQuery)
	}
	if list.Page != 2 || list.PageSize != 10 {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestPostService_ListPublic_AllFilters(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "1" || q.Get("page_size") != "5" || q.Get("tag") != "go lang" || q.Get("q") != "a&b" {
			t.Errorf("unexpected query %v", q)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"page": 1, "page_size": 5,
			"items": []map[string]any{{"id": "p1", "slug": "hello", "title": "Hello", "excerpt": nil, "published_at": "2024-05-01T10:00:00Z"}},
		})
	})

	list, err := NewPostService(c).ListPublic(context.Background(), domain.PublicListQuery{Page: 1, PageSize: 5, Tag: "go lang", Q: "a&b"})
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Slug != "hello" || list.Items[0].Excerpt != nil || list.Items[0].PublishedAt == nil {
		t.Fatalf("unexpected items %+v", list.Items)
	}
}

func TestPostService_ListPublic_NoFilters(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query, got %q", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, domain.PublicList{})
	})
	if _, err := NewPostService(c).ListPublic(context.Background(), domain.PublicListQuery{}); err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
}

func TestPostService_GetPublicBySlug_EscapesSlug(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.EscapedPath(); got != "/api/posts/slug/a%20b%2Fc%3F" {
			t.Errorf("escaped path = %q", got)
		}
		writeJSON(w, http.StatusOK, domain.Post{ID: "p1", Slug: "a b/c?", Status: domain.StatusPublished})
	})

	post, err := NewPostService(c).GetPublicBySlug(context.Background(), "a b/c?")
	if err != nil {
		t.Fatalf("GetPublicBySlug: %v", err)
	}
	if post.ID != "p1" || post.Status != domain.StatusPublished {
		t.Fatalf("unexpected post %+v", post)
	}
}

func TestPostService_Mutations(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		if r.Method == http.MethodPost && r.URL.Path == "/api/posts" {
			var in domain.PostInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Title != "Hello" || in.BodyMD != "# hi" || len(in.Tags) != 1 {
				t.Errorf("unexpected input %+v", in)
			}
			writeJSON(w, http.StatusOK, domain.CreatedPost{ID: "id-1", Slug: "hello"})
			return
		}
		writeJSON(w, http.StatusOK, domain.Ack{OK: true})
	})

	svc := NewPostService(c)
	ctx := context.Background()
	in := domain.PostInput{Title: "Hello", BodyMD: "# hi", Tags: []string{"go"}}

	created, err := svc.Create(ctx, in)
	if err != nil || created.ID != "id-1" || created.Slug != "hello" {
		t.Fatalf("Create = %+v, %v", created, err)
	}
	for name, fn := range map[string]func() (*domain.Ack, error){
		"update":  func() (*domain.Ack, error) { return svc.Update(ctx, "id-1", in) },
		"publish": func() (*domain.Ack, error) { return svc.Publish(ctx, "id-1") },
		"delete":  func() (*domain.Ack, error) { return svc.Delete(ctx, "id-1") },
	} {
		ack, err := fn()
		if err != nil || !ack.OK {
			t.Fatalf("%s = %+v, %v", name, ack, err)
		}
	}

	want := map[call]bool{
		{http.MethodPost, "/api/posts"}:              true,
		{http.MethodPut, "/api/posts/id-1"}:          true,
		{http.MethodPost, "/api/posts/id-1/publish"}: true,
		{http.MethodDelete, "/api/posts/id-1"}:       true,
	}
	if len(calls) != len(want) {
		t.Fatalf("unexpected calls %+v", calls)
	}
	for _, c := range calls {
		if !want[c] {
			t.Fatalf("unexpected call %+v", c)
		}
	}
}

func TestPostService_GetAdminByIDAndTags(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts/id-9":
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "id-9", "slug": "s", "title": "T", "body_html": "<p>x</p>", "body_md": "x",
				"author_id": "u1", "status": "draft", "visibility": "private", "tags": []string{"a", "b"},
			})
		case "/api/tags":
			writeJSON(w, http.StatusOK, []domain.Tag{{ID: "t1", Slug: "go", Name: "Go", Count: 3}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	svc := NewPostService(c)
	post, err := svc.GetAdminByID(context.Background(), "id-9")
	if err != nil {
		t.Fatalf("GetAdminByID: %v", err)
	}
	if post.BodyMD != "x" || post.AuthorID != "u1" || len(post.Tags) != 2 || post.Visibility != domain.VisibilityPrivate {
		t.Fatalf("unexpected admin post %+v", post)
	}
	tags, err := svc.ListTags(context.Background())
	if err != nil || len(tags) != 1 || tags[0].Count != 3 {
		t.Fatalf("ListTags = %+v, %v", tags, err)
	}
}

func TestPostService_ErrorsPropagateUnchanged(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	})

	_, err := NewPostService(c).Publish(context.Background(), "someone-elses")
	var re *httpclient.RequestError
	if !errors.As(err, &re) || re.Message != "forbidden" {
		t.Fatalf("expected forbidden RequestError, got %v", err)
	}
}
