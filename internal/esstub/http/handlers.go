package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/httpx"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

const maxBodyBytes = 64 << 10

var errServer = esapi.NewAPIError(http.StatusInternalServerError, esapi.CodeServerError, "internal error")

// handle adapts a service call to an HTTP handler: decode the JSON body,
// call, and write either the response or the ES error.
func handle[Req, Resp any](call func(context.Context, Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		var req Req
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			log.Warn("failed to parse request", "err", err)
			esapi.NewAPIError(http.StatusBadRequest, esapi.CodeInvalidRequest, "invalid JSON body").WriteError(w)
			return
		}

		resp, err := call(ctx, req)
		if err != nil {
			writeServiceError(w, log, r.URL.Path, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

func writeServiceError(w http.ResponseWriter, log *slog.Logger, path string, err error) {
	var apiErr *esapi.APIError
	if errors.As(err, &apiErr) {
		log.Info("request rejected", "path", path, "code", apiErr.Code)
		apiErr.WriteError(w)
		return
	}
	log.Error("request failed", "path", path, "err", err)
	errServer.WriteError(w)
}
