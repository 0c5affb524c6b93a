package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/internal/auth"
	"github.com/goliatone/go-market-dashboard/internal/lib/sl"
)

// AccessTokenParam carries the token for clients that cannot set headers,
// such as browser WebSocket and EventSource connections.
const AccessTokenParam = "access_token"

// Authenticate verifies the bearer token of every request and logs the
// outcome once the response is written.
func Authenticate(log *slog.Logger, verifier Verifier) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetReqID(r.Context())
			remote := r.RemoteAddr
			if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
				remote = forwarded
			}
			logger := log.With(
				mod,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", remote),
				slog.String("request_id", id),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			started := time.Now()
			defer func() {
				logger.With(
					slog.Int("status", ww.Status()),
					slog.Int("size", ww.BytesWritten()),
					slog.Float64("duration", time.Since(started).Seconds()),
				).Info("incoming request")
			}()

			token := requestToken(r)
			if token == "" {
				logger = logger.With(slog.String("auth", "token not found"))
				authFailed(ww, r, "authorization token not found")
				return
			}
			logger = logger.With(sl.Secret("token", token))

			viewer, err := verifier.Verify(token)
			if err != nil {
				logger = logger.With(sl.Err(err))
				authFailed(ww, r, "unauthorized: "+panels.ErrorMessage(err))
				return
			}
			logger = logger.With(
				slog.String("user", viewer.UserID),
				slog.String("role", viewer.Role.String()),
			)

			ww.Header().Set("X-Request-ID", id)
			next.ServeHTTP(ww, r.WithContext(panels.ContextWithViewer(r.Context(), viewer)))
		}
		return http.HandlerFunc(fn)
	}
}

func requestToken(r *http.Request) string {
	if token := auth.BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get(AccessTokenParam))
}

func authFailed(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"error": message})
}
