// Package router is the route table of the blog frontend and the guard that
// keeps signed-out users away from authoring routes.
package router

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/inkpress/blogkit/internal/session"
)

// Route names.
const (
	Home  = "home"
	Post  = "post"
	Login = "login"
	New   = "new"
	Edit  = "edit"
	Me    = "me"
)

// RedirectParam is the login query parameter carrying the intended path.
const RedirectParam = "redirect"

type Route struct {
	Name         string
	Pattern      string
	RequiresAuth bool
}

// Routes mirrors the frontend route table.
var Routes = []Route{
	{Name: Home, Pattern: "/"},
	{Name: Post, Pattern: "/p/:slug"},
	{Name: Login, Pattern: "/login"},
	{Name: New, Pattern: "/new", RequiresAuth: true},
	{Name: Edit, Pattern: "/edit/:id", RequiresAuth: true},
	{Name: Me, Pattern: "/me", RequiresAuth: true},
}

// Decision is the outcome of a navigation.
type Decision struct {
	// Route is the matched route; nil when nothing matched.
	Route  *Route
	Params map[string]string
	// Redirect is set when navigation is refused and holds the login path
	// with the requested full path in its query.
	Redirect string
}

// Allowed reports whether navigation may proceed.
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

type Guard struct {
	store  session.Store
	routes []Route
}

func NewGuard(store session.Store) *Guard {
	return &Guard{store: store, routes: Routes}
}

// Navigate resolves fullPath and refuses auth routes while the store holds
// no token. Paths that match no route are allowed.
func (g *Guard) Navigate(ctx context.Context, fullPath string) Decision {
	route, params, ok := g.Match(fullPath)
	if !ok {
		return Decision{}
	}
	d := Decision{Route: &route, Params: params}
	if route.RequiresAuth && !session.Present(ctx, g.store) {
		d.Redirect = LoginPath(fullPath)
	}
	return d
}

// Match finds the route for the path part of fullPath.
func (g *Guard) Match(fullPath string) (Route, map[string]string, bool) {
	path := fullPath
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segs := split(path)

	for _, r := range g.routes {
		if params, ok := matchPattern(split(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

// Path builds the path of the named route.
func (g *Guard) Path(name string, params map[string]string) (string, error) {
	for _, r := range g.routes {
		if r.Name != name {
			continue
		}
		segs := split(r.Pattern)
		for i, s := range segs {
			if !strings.HasPrefix(s, ":") {
				continue
			}
			v, ok := params[s[1:]]
			if !ok || v == "" {
				return "", fmt.Errorf("route %s: missing param %s", name, s[1:])
			}
			segs[i] = url.PathEscape(v)
		}
		return "/" + strings.Join(segs, "/"), nil
	}
	return "", fmt.Errorf("unknown route %q", name)
}

// LoginPath is the login route carrying fullPath as the return target.
func LoginPath(fullPath string) string {
	return "/login?" + url.Values{RedirectParam: {fullPath}}.Encode()
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			v, err := url.PathUnescape(segs[i])
			if err != nil || v == "" {
				return nil, false
			}
			params[p[1:]] = v
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}
