package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/httpclient"
)

var _ ports.PostAPI = (*PostService)(nil)

// PostService wraps the /api/posts endpoints.
type PostService struct {
	http *httpclient.Client
}

func NewPostService(c *httpclient.Client) *PostService {
	return &PostService{http: c}
}

// ListPublic fetches a page of published public posts. Zero-valued query
// fields are left out of the request.
func (s *PostService) ListPublic(ctx context.Context, q domain.PublicListQuery) (*domain.PublicList, error) {
	params := url.Values{}
	setInt(params, "page", q.Page)
	setInt(params, "page_size", q.PageSize)
	setString(params, "tag", q.Tag)
	setString(params, "q", q.Q)

	var out domain.PublicList
	if err := s.get(ctx, "/api/posts", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PostService) GetPublicBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	var out domain.Post
	if err := s.get(ctx, "/api/posts/slug/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAdminByID loads a post with its Markdown source for editing.
func (s *PostService) GetAdminByID(ctx context.Context, id string) (*domain.AdminPost, error) {
	var out domain.AdminPost
	if err := s.get(ctx, postPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PostService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	if err := s.get(ctx, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostService) Create(ctx context.Context, in domain.PostInput) (*domain.CreatedPost, error) {
	resp, err := s.http.PostJSON(ctx, "/api/posts", in)
	if err != nil {
		return nil, err
	}
	var out domain.CreatedPost
	if err := httpclient.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PostService) Update(ctx context.Context, id string, in domain.PostInput) (*domain.Ack, error) {
	resp, err := s.http.PutJSON(ctx, postPath(id), in)
	if err != nil {
		return nil, err
	}
	return decodeAck(resp)
}

func (s *PostService) Publish(ctx context.Context, id string) (*domain.Ack, error) {
	resp, err := s.http.PostJSON(ctx, postPath(id)+"/publish", nil)
	if err != nil {
		return nil, err
	}
	return decodeAck(resp)
}

func (s *PostService) Delete(ctx context.Context, id string) (*domain.Ack, error) {
	resp, err := s.http.Delete(ctx, postPath(id))
	if err != nil {
		return nil, err
	}
	return decodeAck(resp)
}

func (s *PostService) get(ctx context.Context, path string, params url.Values, v any) error {
	resp, err := s.http.Get(ctx, path, params)
	if err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp, v)
}

func postPath(id string) string {
	return "/api/posts/" + url.PathEscape(id)
}

func decodeAck(resp *httpclient.Response) (*domain.Ack, error) {
	var out domain.Ack
	if err := httpclient.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setInt(v url.Values, key string, n int) {
	if n != 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}
