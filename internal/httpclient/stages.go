package httpclient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/inkpress/blogkit/internal/metrics"
	"github.com/inkpress/blogkit/internal/session"
)

// BearerAuth sets "Authorization: Bearer <token>" when store holds a token
// and leaves the header absent otherwise.
func BearerAuth(store session.Store) RequestStage {
	return func(req *http.Request) error {
		token, err := store.Get(req.Context())
		if errors.Is(err, session.ErrNoToken) || (err == nil && token == "") {
			return nil
		}
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
}

// UserAgent sets the User-Agent header on every request.
func UserAgent(ua string) RequestStage {
	return func(req *http.Request) error {
		req.Header.Set("User-Agent", ua)
		return nil
	}
}

// LogExchanges logs every call. Headers are never logged.
func LogExchanges(log zerolog.Logger) ResponseStage {
	return func(ex *Exchange) {
		if ex.Err != nil {
			log.Warn().
				Err(ex.Err).
				Str("method", ex.Request.Method).
				Str("path", ex.Request.URL.Path).
				Dur("elapsed", ex.Elapsed).
				Msg("request failed")
			return
		}
		log.Debug().
			Str("method", ex.Request.Method).
			Str("path", ex.Request.URL.Path).
			Int("status", ex.Response.StatusCode).
			Dur("elapsed", ex.Elapsed).
			Msg("request completed")
	}
}

// Instrument records request counts and latency.
func Instrument() ResponseStage {
	return func(ex *Exchange) {
		code := "error"
		if ex.Err == nil && ex.Response != nil {
			code = strconv.Itoa(ex.Response.StatusCode)
		}
		metrics.ClientRequestsTotal.WithLabelValues(ex.Request.Method, code).Inc()
		metrics.ClientRequestDuration.WithLabelValues(ex.Request.Method).Observe(ex.Elapsed.Seconds())
	}
}
