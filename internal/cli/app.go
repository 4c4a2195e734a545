// Package cli implements blogctl, a terminal client for the blog API and a
// launcher for the reference backend.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/core/service"
	"github.com/inkpress/blogkit/internal/httpclient"
	"github.com/inkpress/blogkit/internal/infrastructure/config"
	redisdb "github.com/inkpress/blogkit/internal/infrastructure/db/redis"
	"github.com/inkpress/blogkit/internal/infrastructure/queue"
	"github.com/inkpress/blogkit/internal/router"
	"github.com/inkpress/blogkit/internal/session"
	"github.com/inkpress/blogkit/pkg/logger"
)

const userAgent = "blogctl"

// ErrSignedOut is returned by commands that need a session when none is
// stored.
var ErrSignedOut = errors.New("not signed in")

// Options configures a run. Zero fields fall back to the process defaults.
type Options struct {
	Out      io.Writer
	Err      io.Writer
	Lookuper envconfig.Lookuper
	// Store replaces the session store selected by SESSION_STORE.
	Store session.Store
	// HTTPOptions are appended to the client pipeline.
	HTTPOptions []httpclient.Option
}

type app struct {
	opts    Options
	cfg     *config.Config
	log     zerolog.Logger
	apiBase string
	workers int

	store   session.Store
	closers []func() error
	client  *httpclient.Client
	auth    ports.AuthAPI
	posts   ports.PostAPI
	profile ports.ProfileAPI
	guard   *router.Guard
	jobs    *queue.Dispatcher
}

// Run executes blogctl with args and releases every connection it opened.
func Run(ctx context.Context, args []string, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Lookuper == nil {
		opts.Lookuper = envconfig.OsLookuper()
	}

	a := &app{opts: opts}
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// setup loads configuration and the logger. It runs before every command.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.LoadWith(ctx, a.opts.Lookuper)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
		Output: a.opts.Err,
		App:    userAgent,
	})
	a.log = logger.Get()
	return nil
}

// connect opens the session store and builds the API services.
func (a *app) connect(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	a.store = store

	opts := []httpclient.Option{
		httpclient.WithRequestStage(httpclient.UserAgent(userAgent)),
		httpclient.WithResponseStage(httpclient.LogExchanges(a.log), httpclient.Instrument()),
	}
	opts = append(opts, a.opts.HTTPOptions...)
	a.client = httpclient.New(a.baseURL(), store, opts...)

	a.auth = service.NewAuthService(a.client)
	a.posts = service.NewPostService(a.client)
	a.profile = service.NewProfileService(a.client)
	a.guard = router.NewGuard(store)
	a.jobs = queue.NewDispatcher(a.workers, logger.Component("queue"))
	return nil
}

func (a *app) openStore(ctx context.Context) (session.Store, error) {
	if a.opts.Store != nil {
		return a.opts.Store, nil
	}
	switch a.cfg.Session.Store {
	case config.SessionStoreMemory:
		return session.NewMemoryStore(), nil
	case config.SessionStoreRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return redisdb.NewSessionStore(client, a.cfg.Session.Profile), nil
	default:
		dir, err := a.cfg.SessionDir()
		if err != nil {
			return nil, err
		}
		return session.NewFileStore(dir), nil
	}
}

// baseURL prefers the --api flag, then BLOG_API_BASE, then the local
// reference backend.
func (a *app) baseURL() string {
	switch {
	case a.apiBase != "":
		return a.apiBase
	case a.cfg.APIBase != "":
		return a.cfg.APIBase
	default:
		return "http://localhost:" + a.cfg.Server.Port
	}
}

// enter runs the route guard for the named frontend route.
func (a *app) enter(ctx context.Context, name string, params map[string]string) error {
	path, err := a.guard.Path(name, params)
	if err != nil {
		return err
	}
	if d := a.guard.Navigate(ctx, path); !d.Allowed() {
		return fmt.Errorf("%w: log in first (%s)", ErrSignedOut, d.Redirect)
	}
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.opts.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
