package domain

import (
	"errors"
	"time"
)

// Status is the editorial state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Visibility controls who may read a published post.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

var (
	ErrPostNotFound = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrSlugTaken    = errors.New("slug already in use")
	ErrInvalidInput = errors.New("invalid input")
)

// Post is the public representation of a single post.
type Post struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     *string    `json:"excerpt"`
	BodyHTML    string     `json:"body_html"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    string     `json:"author_id"`
	Visibility  Visibility `json:"visibility"`
	Status      Status     `json:"status"`
}

// AdminPost is the author's view of a post, including its source.
type AdminPost struct {
	Post
	BodyMD string   `json:"body_md"`
	Tags   []string `json:"tags"`
}

// StoredPost is what the backend persists for a post.
type StoredPost struct {
	AdminPost
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostInput is the payload for creating or replacing a post.
type PostInput struct {
	Title      string     `json:"title"              validate:"required"`
	Slug       string     `json:"slug,omitempty"`
	Excerpt    *string    `json:"excerpt,omitempty"`
	BodyMD     string     `json:"body_md"            validate:"required"`
	Tags       []string   `json:"tags,omitempty"`
	Status     Status     `json:"status,omitempty"     validate:"omitempty,oneof=draft published"`
	Visibility Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// PublicListItem is one entry of the public post listing.
type PublicListItem struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     *string    `json:"excerpt"`
	PublishedAt *time.Time `json:"published_at"`
}

// PublicList is a page of the public post listing.
type PublicList struct {
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []PublicListItem `json:"items"`
}

// PublicListQuery filters the public listing. Zero values are not sent.
type PublicListQuery struct {
	Page     int
	PageSize int
	Tag      string
	Q        string
}

// Tag is a post label together with how many posts carry it.
type Tag struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CreatedPost identifies a freshly created post.
type CreatedPost struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// Ack is the boolean acknowledgment returned by mutating endpoints.
type Ack struct {
	OK bool `json:"ok"`
}
