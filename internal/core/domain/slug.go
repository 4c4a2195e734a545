package domain

import (
	"html"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

// RenderBody produces body_html from Markdown source. The source is shown
// verbatim; rendering Markdown is left to the frontend.
func RenderBody(md string) string {
	return "<pre>" + html.EscapeString(md) + "</pre>"
}

// TagID derives a stable identifier for the tag with the given slug.
func TagID(slug string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("blogkit:tag:"+slug)).String()
}
