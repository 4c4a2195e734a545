package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/inkpress/blogkit/internal/api"
	"github.com/inkpress/blogkit/internal/core/backend"
	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/infrastructure/db/memory"
	"github.com/inkpress/blogkit/internal/infrastructure/media"
	"github.com/inkpress/blogkit/internal/session"
)

const testSecret = "cli-secret"

func startBackend(t *testing.T) string {
	t.Helper()
	users := memory.NewUserRepository()
	posts := memory.NewPostRepository()
	uploadDir := filepath.Join(t.TempDir(), "uploads")

	auth := backend.NewAuthService(users, testSecret, time.Hour)
	if err := auth.Seed(context.Background(), map[string]string{"alice": "alice-pw"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Auth:      auth,
		Blog:      backend.NewBlogService(posts),
		Profile:   backend.NewProfileService(users, posts, media.NewLocalStore(uploadDir)),
		JWTSecret: testSecret,
		UploadDir: uploadDir,
		Log:       zerolog.Nop(),
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

type harness struct {
	t     *testing.T
	base  string
	store *session.MemoryStore
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, base: startBackend(t), store: session.NewMemoryStore()}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), args, Options{
		Out: &out,
		Err: io.Discard,
		Lookuper: envconfig.MapLookuper(map[string]string{
			"BLOG_API_BASE": h.base,
			"SESSION_STORE": "memory",
			"LOG_LEVEL":     "error",
			"ENV":           "test",
		}),
		Store: h.store,
	})
	return out.String(), err
}

// mustRun runs args and decodes the JSON output into v when v is non-nil.
func (h *harness) mustRun(v any, args ...string) {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("blogctl %s: %v", strings.Join(args, " "), err)
	}
	if v != nil {
		if err := json.Unmarshal([]byte(out), v); err != nil {
			h.t.Fatalf("decode output of %s: %v\n%s", strings.Join(args, " "), err, out)
		}
	}
}

func (h *harness) login() {
	h.t.Helper()
	h.mustRun(nil, "login", "-u", "alice", "-p", "alice-pw")
}

func TestGuardedCommandsRequireSession(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		args     []string
		redirect string
	}{
		{args: []string{"posts", "get", "42"}, redirect: "/login?redirect=%2Fedit%2F42"},
		{args: []string{"posts", "create", "--title", "x", "--body", "y"}, redirect: "/login?redirect=%2Fnew"},
		{args: []string{"posts", "publish", "1", "2"}, redirect: "/login?redirect=%2Fedit%2F1"},
		{args: []string{"me", "show"}, redirect: "/login?redirect=%2Fme"},
		{args: []string{"me", "posts"}, redirect: "/login?redirect=%2Fme"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := h.run(tt.args...)
			if !errors.Is(err, ErrSignedOut) {
				t.Fatalf("expected ErrSignedOut, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.redirect) {
				t.Fatalf("error %q does not name %s", err, tt.redirect)
			}
			if out != "" {
				t.Fatalf("expected no output, got %q", out)
			}
		})
	}
}

func TestPublicCommandsWorkSignedOut(t *testing.T) {
	h := newHarness(t)

	var list domain.PublicList
	h.mustRun(&list, "posts", "list", "--page-size", "5")
	if list.Page != 1 || list.PageSize != 5 || len(list.Items) != 0 {
		t.Fatalf("unexpected listing %+v", list)
	}

	_, err := h.run("posts", "show", "missing")
	if err == nil || err.Error() != "not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoginStoresTokenAndWhoami(t *testing.T) {
	h := newHarness(t)

	var res loginOutput
	h.mustRun(&res, "login", "-u", "alice", "-p", "alice-pw", "--redirect", "/edit/7")
	if res.UserID == "" || res.Redirect != "/edit/7" {
		t.Fatalf("unexpected login output %+v", res)
	}
	if !session.Present(context.Background(), h.store) {
		t.Fatalf("token was not stored")
	}

	var who whoamiOutput
	h.mustRun(&who, "whoami")
	if !who.SignedIn || who.UserID != res.UserID {
		t.Fatalf("whoami = %+v, want user %q", who, res.UserID)
	}

	h.mustRun(&res, "login", "-u", "alice", "-p", "alice-pw", "--redirect", "/nowhere")
	if res.Redirect != "/" {
		t.Fatalf("unknown redirect should fall back to home, got %q", res.Redirect)
	}
}

func TestLoginFailureLeavesStoreEmpty(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("login", "-u", "alice", "-p", "wrong")
	if err == nil || err.Error() != "unauthorized" {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := h.store.Get(context.Background()); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected empty store, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.mustRun(nil, "logout")

	var who whoamiOutput
	h.mustRun(&who, "whoami")
	if who.SignedIn {
		t.Fatalf("still signed in after logout")
	}
	if _, err := h.run("me", "show"); !errors.Is(err, ErrSignedOut) {
		t.Fatalf("expected ErrSignedOut after logout, got %v", err)
	}
}

func TestPostLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	var created domain.CreatedPost
	h.mustRun(&created, "posts", "create", "--title", "Hello World", "--body", "# hi", "--tag", "Go", "--tag", "go")
	if created.Slug != "hello-world" {
		t.Fatalf("slug = %q", created.Slug)
	}

	var ack domain.Ack
	h.mustRun(&ack, "posts", "update", created.ID, "--excerpt", "short")
	if !ack.OK {
		t.Fatalf("update not acknowledged")
	}

	var admin domain.AdminPost
	h.mustRun(&admin, "posts", "get", created.ID)
	if admin.BodyMD != "# hi" || admin.Excerpt == nil || *admin.Excerpt != "short" || admin.Title != "Hello World" {
		t.Fatalf("update lost fields: %+v", admin)
	}

	out, err := h.run("posts", "publish", created.ID, "missing-id")
	if err == nil {
		t.Fatalf("expected batch failure")
	}
	var results []batchResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode batch output: %v\n%s", err, out)
	}
	if len(results) != 2 || results[0].ID != created.ID || !results[0].OK {
		t.Fatalf("unexpected batch results %+v", results)
	}
	if results[1].ID != "missing-id" || results[1].OK || results[1].Error != "forbidden" {
		t.Fatalf("unexpected failure result %+v", results[1])
	}

	var post domain.Post
	h.mustRun(&post, "posts", "show", "hello-world")
	if post.BodyHTML != "<pre># hi</pre>" || post.PublishedAt == nil {
		t.Fatalf("unexpected post %+v", post)
	}

	var tags []domain.Tag
	h.mustRun(&tags, "posts", "tags")
	if len(tags) != 1 || tags[0].Slug != "go" || tags[0].Count != 1 {
		t.Fatalf("unexpected tags %+v", tags)
	}

	var list domain.PublicList
	h.mustRun(&list, "posts", "list", "--tag", "go")
	if len(list.Items) != 1 || list.Items[0].ID != created.ID {
		t.Fatalf("unexpected listing %+v", list)
	}

	h.mustRun(&results, "posts", "delete", created.ID)
	if len(results) != 1 || !results[0].OK {
		t.Fatalf("delete results %+v", results)
	}
	if _, err := h.run("posts", "show", "hello-world"); err == nil || err.Error() != "not found" {
		t.Fatalf("expected deleted post to be gone, got %v", err)
	}
}

func TestCreateReadsBodyFile(t *testing.T) {
	h := newHarness(t)
	h.login()

	path := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(path, []byte("from file"), 0o600); err != nil {
		t.Fatal(err)
	}
	var created domain.CreatedPost
	h.mustRun(&created, "posts", "create", "--title", "Filed", "--body-file", path)

	var admin domain.AdminPost
	h.mustRun(&admin, "posts", "get", created.ID)
	if admin.BodyMD != "from file" {
		t.Fatalf("body = %q", admin.BodyMD)
	}

	if _, err := h.run("posts", "create", "--title", "x", "--body", "a", "--body-file", path); err == nil {
		t.Fatalf("expected --body and --body-file to conflict")
	}
}

func TestProfileCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	if _, err := h.run("me", "update"); err == nil || err.Error() != "nothing to update" {
		t.Fatalf("expected nothing to update, got %v", err)
	}
	h.mustRun(nil, "me", "update", "--motto", "ship it")

	var me domain.UserProfile
	h.mustRun(&me, "me", "show")
	if me.Username != "alice" || me.Motto == nil || *me.Motto != "ship it" {
		t.Fatalf("unexpected profile %+v", me)
	}

	img := filepath.Join(t.TempDir(), "face.png")
	if err := os.WriteFile(img, []byte("\x89PNG fake"), 0o600); err != nil {
		t.Fatal(err)
	}
	var avatar avatarOutput
	h.mustRun(&avatar, "me", "avatar", img)
	if !strings.HasPrefix(avatar.AvatarURL, media.URLPrefix+"/") {
		t.Fatalf("unexpected avatar url %q", avatar.AvatarURL)
	}
	h.mustRun(&me, "me", "show")
	if me.AvatarURL == nil || *me.AvatarURL != avatar.AvatarURL {
		t.Fatalf("profile not pointed at avatar: %+v", me)
	}

	h.mustRun(nil, "posts", "create", "--title", "Draft one", "--body", "x")
	var mine domain.MyPostList
	h.mustRun(&mine, "me", "posts", "--status", "draft")
	if len(mine.Items) != 1 || mine.Items[0].Status != domain.StatusDraft {
		t.Fatalf("unexpected own posts %+v", mine)
	}
}

func TestUnknownSessionBackendFailsConfig(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), []string{"whoami"}, Options{
		Out:      &out,
		Err:      io.Discard,
		Lookuper: envconfig.MapLookuper(map[string]string{"SESSION_STORE": "cookie"}),
	})
	if err == nil || !strings.Contains(err.Error(), "SESSION_STORE") {
		t.Fatalf("expected config error, got %v", err)
	}
}
