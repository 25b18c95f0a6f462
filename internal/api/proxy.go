package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avlasiuk/campaignwiz/internal/backend"
)

// NewProxyHandler returns the open forwarding surface. Each endpoint
// relays the request body to the upstream audience API verbatim and
// translates transport failures into the error shape the web client
// expects.
func NewProxyHandler(client *backend.Client) http.Handler {
	r := chi.NewRouter()
	RegisterProxyRoutes(r, client)
	return r
}

// RegisterProxyRoutes attaches the forwarding endpoints to r. These routes
// carry no auth, matching the upstream API they front.
func RegisterProxyRoutes(r chi.Router, client *backend.Client) {
	r.Get("/health", handleHealth)
	r.Get("/test-connection", handleTestConnection(client))
	r.Post("/audiences/generate", handleForward(client.GenerateAudiences))
	r.Put("/audiences/modify", handleForward(client.ModifyAudience))
	r.Delete("/audiences/delete", handleForward(client.DeleteAudience))
	r.Post("/growth-levers/generate", handleForward(client.GenerateGrowthLevers))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleTestConnection(client *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, status, err := client.Probe(r.Context())
		if err != nil {
			code, msg := forwardFailure(err)
			writeJSON(w, code, map[string]any{
				"success": false,
				"error":   msg,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"status":  status,
			"data":    data,
		})
	}
}

func handleForward(call func(ctx context.Context, body []byte) (json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
			return
		}

		raw, err := call(r.Context(), body)
		if err != nil {
			code, msg := forwardFailure(err)
			writeJSON(w, code, map[string]any{"error": msg})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
	}
}

// forwardFailure maps a backend error to the status code and message the
// web client shows the user.
func forwardFailure(err error) (int, string) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrTimeout):
		return http.StatusRequestTimeout, "Request timeout - API took too long to respond"
	case errors.Is(err, backend.ErrUnreachable):
		return http.StatusServiceUnavailable, "Network error - Unable to connect to API"
	case errors.As(err, &apiErr):
		return apiErr.Status, apiErr.Message
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
