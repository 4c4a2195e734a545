package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/inkpress/blogkit/internal/api/handler"
	"github.com/inkpress/blogkit/internal/api/middleware"
	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/infrastructure/media"
)

// MaxUploadSize bounds the body of a media upload.
const MaxUploadSize = "10M"

// Deps are the services the router exposes.
type Deps struct {
	Auth      ports.AuthService
	Blog      ports.BlogService
	Profile   ports.ProfileService
	JWTSecret string
	UploadDir string
	Checkers  []handler.Checker
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	authHandler := handler.NewAuthHandler(d.Auth)
	postHandler := handler.NewPostHandler(d.Blog)
	meHandler := handler.NewMeHandler(d.Profile)
	requireAuth := middleware.Auth(d.JWTSecret)

	api := e.Group("/api")

	// --- Public ---
	api.POST("/auth/login", authHandler.Login)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/slug/:slug", postHandler.GetBySlug, middleware.OptionalAuth(d.JWTSecret))
	api.GET("/tags", postHandler.Tags)

	// --- Authoring ---
	api.POST("/posts", postHandler.Create, requireAuth)
	api.GET("/posts/:id", postHandler.Get, requireAuth)
	api.PUT("/posts/:id", postHandler.Update, requireAuth)
	api.POST("/posts/:id/publish", postHandler.Publish, requireAuth)
	api.DELETE("/posts/:id", postHandler.Delete, requireAuth)
	api.POST("/media", meHandler.Upload, requireAuth, echomiddleware.BodyLimit(MaxUploadSize))

	// --- Current user ---
	api.GET("/me", meHandler.Get, requireAuth)
	api.PUT("/me", meHandler.Update, requireAuth)
	api.GET("/me/posts", meHandler.Posts, requireAuth)

	if d.UploadDir != "" {
		e.Static(media.URLPrefix, d.UploadDir)
	}

	// --- Operations ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checkers...).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
