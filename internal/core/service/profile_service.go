package service

import (
	"context"
	"io"
	"net/url"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/httpclient"
)

var _ ports.ProfileAPI = (*ProfileService)(nil)

// ProfileService wraps the /api/me endpoints and avatar upload.
type ProfileService struct {
	http *httpclient.Client
}

func NewProfileService(c *httpclient.Client) *ProfileService {
	return &ProfileService{http: c}
}

func (s *ProfileService) GetMe(ctx context.Context) (*domain.UserProfile, error) {
	resp, err := s.http.Get(ctx, "/api/me", nil)
	if err != nil {
		return nil, err
	}
	var out domain.UserProfile
	if err := httpclient.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe sends only the non-nil fields of patch.
func (s *ProfileService) UpdateMe(ctx context.Context, patch domain.ProfilePatch) (*domain.Ack, error) {
	resp, err := s.http.PutJSON(ctx, "/api/me", patch)
	if err != nil {
		return nil, err
	}
	return decodeAck(resp)
}

func (s *ProfileService) GetMyPosts(ctx context.Context, f domain.MyPostsFilter) (*domain.MyPostList, error) {
	params := url.Values{}
	setString(params, "status", f.Status)
	setString(params, "visibility", f.Visibility)
	setInt(params, "page", f.Page)
	setInt(params, "page_size", f.PageSize)

	resp, err := s.http.Get(ctx, "/api/me/posts", params)
	if err != nil {
		return nil, err
	}
	var out domain.MyPostList
	if err := httpclient.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAvatar uploads one file and returns its first stored reference,
// or "" when the server stored nothing.
func (s *ProfileService) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	resp, err := s.http.PostMultipart(ctx, "/api/media", "file", filename, r)
	if err != nil {
		return "", err
	}
	var out domain.UploadResult
	if err := httpclient.DecodeJSON(resp, &out); err != nil {
		return "", err
	}
	if len(out.Files) == 0 {
		return "", nil
	}
	return out.Files[0], nil
}
