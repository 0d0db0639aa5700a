package server

import (
	"net/http"

	"blog-service/internal/auth"
	"blog-service/internal/metrics"
	"blog-service/internal/post"
	"blog-service/internal/ratelimit"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/jwt"

	"github.com/sirupsen/logrus"
)

type Deps struct {
	Posts   post.Service
	Auth    *auth.Authenticator
	Tokens  *jwt.Manager
	Limiter ratelimit.Limiter
	Log     logrus.FieldLogger
}

// NewHandler builds the full route table wrapped in request logging and
// metrics. Limiter may be nil to disable rate limiting.
func NewHandler(d Deps) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteText(w, "ok", http.StatusOK)
	})

	limit := func(scope string) func(http.Handler) http.Handler {
		if d.Limiter == nil {
			return func(h http.Handler) http.Handler { return h }
		}
		return ratelimit.Middleware(d.Limiter, scope, d.Log)
	}
	authMW := httpx.AuthMiddleware(d.Tokens)
	protect := func(h http.Handler) http.Handler {
		return httpx.Chain(h, authMW, limit("write"))
	}

	post.NewHandler(d.Posts, d.Log).Register(mux, protect)

	ah := auth.NewHandler(d.Auth, d.Tokens, d.Log)
	mux.Handle("POST /login", httpx.Chain(httpx.Wrap(ah.Login), limit("login")))
	mux.Handle("POST /oauth/access_token", httpx.Chain(httpx.Wrap(ah.Refresh), limit("login")))
	mux.Handle("GET /whoami", authMW(httpx.Wrap(ah.Whoami)))

	return httpx.Chain(mux, httpx.RequestLogger(d.Log), metrics.Instrument)
}
