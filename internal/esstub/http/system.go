package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/memberauth/internal/esstub/service"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/httpx"
)

// LivezHandler always returns 200 OK while the process is serving.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, esapi.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler reports 503 while the account store is unreachable.
func ReadyzHandler(startTime time.Time, version string, db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := esapi.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		if err := db.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			httpx.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

type outboxEntry struct {
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	Code        string    `json:"code"`
	SentAt      time.Time `json:"sentAt"`
}

// OutboxHandler returns the latest code dispatched to a username.
func OutboxHandler(outbox *service.Outbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := outbox.Last(r.PathValue("username"))
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no code dispatched")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, outboxEntry{
			Channel:     string(d.Channel),
			Destination: d.Destination,
			Code:        d.Code,
			SentAt:      d.SentAt,
		})
	}
}
