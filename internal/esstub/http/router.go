// Package http exposes the ES stub service over the ES wire format.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/memberauth/internal/esstub/service"
	"github.com/aussiebroadwan/memberauth/internal/esstub/store"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/httpx"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store   *store.Store
	service *service.Service

	// ExposeOutbox serves the latest dispatched code per username on
	// GET /_dev/outbox/{username}. Local development only.
	ExposeOutbox bool
}

func NewRouter(svc *service.Service, st *store.Store, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		service:      svc,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerSteps()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	// Rate limited by IP + username so one member's retries don't starve others
	r.Mux.Handle("POST "+esapi.PathLogin,
		httpx.Chain(handle(r.service.Login),
			httpx.RateLimitByIPAndJSONField(httpx.ModerateLimit, "username"),
		),
	)
}

func (r *Router) registerSteps() {
	steps := map[string]http.Handler{
		esapi.PathSelectDevice:      handle(r.service.SelectDevice),
		esapi.PathProvideOTP:        handle(r.service.ProvideOTP),
		esapi.PathVerifyEmail:       handle(r.service.VerifyEmail),
		esapi.PathReactivate:        handle(r.service.Reactivate),
		esapi.PathVerifyUniqueEmail: handle(r.service.VerifyUniqueEmail),
		esapi.PathUpdateEmail:       handle(r.service.UpdateEmail),
		esapi.PathResetPassword:     handle(r.service.ResetPassword),
		esapi.PathDeactivateAccount: handle(r.service.DeactivateAccount),
	}
	for path, h := range steps {
		r.Mux.Handle("POST "+path,
			httpx.Chain(h, httpx.RateLimitByIP(httpx.LenientLimit)),
		)
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.ExposeOutbox {
		r.Mux.Handle("GET /_dev/outbox/{username}", OutboxHandler(r.service.Outbox))
	}
}
