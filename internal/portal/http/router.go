// Package http is the member portal's backend-for-frontend. It keeps one
// login.Flow per browser, keyed by a cookie, and renders the flow state as
// JSON after every step.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/memberauth/api/portal" // Swagger docs
	"github.com/aussiebroadwan/memberauth/internal/portal/flowstore"
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

	flows   *flowstore.Store
	es      healthChecker
	metrics *Metrics
	cookies CookieConfig
}

type healthChecker interface {
	Health(ctx context.Context) (*esapi.HealthResponse, error)
}

func NewRouter(flows *flowstore.Store, es healthChecker, cookies CookieConfig, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		flows:        flows,
		es:           es,
		metrics:      NewMetrics(flows.Len),
		cookies:      cookies,
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

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Member Portal Login API
//	@version		0.1.0
//	@description	Backend-for-frontend for the member login and MFA step-up flow. Every step answers with the rendered flow state.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/memberauth
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// flowContext puts the flow cookie on the request context so per-flow
// rate limits can key on it.
func flowContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if id, ok := flowIDFromRequest(req); ok {
			req = req.WithContext(httpx.WithFlowID(req.Context(), id.String()))
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) registerLogin() {
	// Credential submissions are limited by IP + username
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(step(r, "login", true, handleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)
}

func (r *Router) registerSteps() {
	steps := map[string]http.Handler{
		"/v1/login/mfa/device":    step(r, "select_device", false, handleSelectDevice),
		"/v1/login/mfa/code":      step(r, "submit_code", false, handleSubmitCode),
		"/v1/login/mfa/resend":    step(r, "resend_code", false, handleResendCode),
		"/v1/login/mfa/different": step(r, "different_method", false, handleDifferentMethod),
		"/v1/login/email/verify":  step(r, "verify_email", false, handleVerifyEmail),
		"/v1/login/email/resend":  step(r, "resend_email", false, handleResendEmail),
		"/v1/login/email/unique":  step(r, "unique_email", false, handleUniqueEmail),
		"/v1/login/password":      step(r, "reset_password", false, handlePassword),
		"/v1/login/duplicate":     step(r, "resolve_duplicate", false, handleDuplicate),
	}
	for path, h := range steps {
		r.Mux.Handle("POST "+path,
			httpx.Chain(h, flowContext, httpx.RateLimitByFlow(httpx.ModerateLimit)),
		)
	}

	r.Mux.Handle("POST /v1/login/reset",
		httpx.Chain(http.HandlerFunc(r.ResetHandler), flowContext, httpx.RateLimitByFlow(httpx.LenientLimit)),
	)
	r.Mux.Handle("GET /v1/login/state",
		httpx.Chain(http.HandlerFunc(r.StateHandler), flowContext, httpx.RateLimitByFlow(httpx.LenientLimit)),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.es),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics",
		httpx.Chain(r.metrics.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 OK while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	esapi.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, esapi.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Returns 503 while the ES API is not ready.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	esapi.HealthResponse	"status, uptime, version"
//	@Failure		503	{object}	esapi.HealthResponse	"ES API unavailable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, es healthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := esapi.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		if _, err := es.Health(ctx); err != nil {
			slogx.FromContext(ctx).Warn("es api not ready", "err", err)
			resp.Status = "unavailable"
			httpx.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
