package domain

import (
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// User models an author account on the backend.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  *string   `json:"display_name"`
	AvatarURL    *string   `json:"avatar_url"`
	Motto        *string   `json:"motto"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile converts a stored user into its public profile.
func (u *User) Profile() UserProfile {
	created := u.CreatedAt
	return UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Motto:       u.Motto,
		CreatedAt:   &created,
	}
}

// UserProfile is the authenticated user's profile.
type UserProfile struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Motto       *string    `json:"motto,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// ProfilePatch updates only the fields that are non-nil.
type ProfilePatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Motto       *string `json:"motto,omitempty"`
}

// MyPostItem is one entry of the author's own post listing.
type MyPostItem struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Status      Status     `json:"status"`
	Visibility  Visibility `json:"visibility"`
	PublishedAt *time.Time `json:"published_at"`
	Excerpt     *string    `json:"excerpt"`
}

// MyPostList is a page of the author's own posts.
type MyPostList struct {
	Page     int          `json:"page,omitempty"`
	PageSize int          `json:"page_size,omitempty"`
	Items    []MyPostItem `json:"items"`
}

// MyPostsFilter narrows the author's listing. Empty fields are not sent;
// "all" disables a filter on the server.
type MyPostsFilter struct {
	Status     string
	Visibility string
	Page       int
	PageSize   int
}

// LoginResult carries the bearer token issued on login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
}

// UploadResult lists the stored references of uploaded files.
type UploadResult struct {
	Files []string `json:"files"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
