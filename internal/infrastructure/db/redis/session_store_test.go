package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/inkpress/blogkit/internal/session"
)

func newTestStore(t *testing.T, profile string) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, profile), mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, "default")

	if _, err := store.Get(ctx); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if err := store.Set(ctx, "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := store.Get(ctx); err != nil || got != "abc" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if v, _ := mr.Get("blogkit:default:token"); v != "abc" {
		t.Fatalf("unexpected key contents %q", v)
	}
	if ttl := mr.TTL("blogkit:default:token"); ttl != 0 {
		t.Fatalf("token must not expire in the store, ttl=%v", ttl)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear should be idempotent: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected ErrNoToken after clear, got %v", err)
	}
}

func TestSessionStore_ProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := Connect(ctx, Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	work := NewSessionStore(client, "work")
	home := NewSessionStore(client, "home")
	_ = work.Set(ctx, "w")

	if _, err := home.Get(ctx); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("home profile should be empty, got %v", err)
	}
	if id, ok := session.CurrentUserID(ctx, home); ok {
		t.Fatalf("unexpected identity %q", id)
	}
}

func TestSessionStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t, "default")
	mr.Close()

	if _, err := store.Get(context.Background()); err == nil || errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	if _, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestConnect_Password(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	if _, err := Connect(context.Background(), Config{Addr: mr.Addr()}); err == nil {
		t.Fatalf("expected auth failure without password")
	}
	client, err := Connect(context.Background(), Config{Addr: mr.Addr(), Password: "s3cret"})
	if err != nil {
		t.Fatalf("Connect with password: %v", err)
	}
	_ = client.Close()
}
