package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkpress/blogkit/internal/api"
	"github.com/inkpress/blogkit/internal/api/handler"
	"github.com/inkpress/blogkit/internal/core/backend"
	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/infrastructure/config"
	"github.com/inkpress/blogkit/internal/infrastructure/db/memory"
	mongodb "github.com/inkpress/blogkit/internal/infrastructure/db/mongo"
	"github.com/inkpress/blogkit/internal/infrastructure/media"
	"github.com/inkpress/blogkit/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference blog API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				a.cfg.Server.Port = port
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT)")
	return cmd
}

type repositories struct {
	users    ports.UserRepository
	posts    ports.PostRepository
	checkers []handler.Checker
}

func (a *app) openRepositories(ctx context.Context) (*repositories, error) {
	if a.cfg.Server.Storage != config.StorageMongo {
		return &repositories{users: memory.NewUserRepository(), posts: memory.NewPostRepository()}, nil
	}

	db, err := mongodb.Connect(ctx, mongodb.Config{URI: a.cfg.Mongo.URI, Database: a.cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		return db.Client().Disconnect(context.Background())
	})

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	posts := mongodb.NewPostRepository(db)
	if err := posts.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return &repositories{
		users:    users,
		posts:    posts,
		checkers: []handler.Checker{mongodb.NewChecker(db)},
	}, nil
}

// serve blocks until ctx is cancelled, then drains in-flight requests.
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg.Server
	repos, err := a.openRepositories(ctx)
	if err != nil {
		return err
	}

	auth := backend.NewAuthService(repos.users, cfg.JWTSecret, cfg.TokenTTL)
	if err := auth.Seed(ctx, cfg.SeedUsers); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	e := api.NewRouter(api.Deps{
		Auth:      auth,
		Blog:      backend.NewBlogService(repos.posts),
		Profile:   backend.NewProfileService(repos.users, repos.posts, media.NewLocalStore(cfg.UploadDir)),
		JWTSecret: cfg.JWTSecret,
		UploadDir: cfg.UploadDir,
		Checkers:  repos.checkers,
		Log:       logger.Component("api"),
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().
			Str("port", cfg.Port).
			Str("storage", cfg.Storage).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
