package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avlasiuk/campaignwiz/internal/audience"
	"github.com/avlasiuk/campaignwiz/internal/lever"
	"github.com/avlasiuk/campaignwiz/internal/storage"
	"github.com/avlasiuk/campaignwiz/internal/wizard"
)

// AppDeps holds dependencies for the session surface.
type AppDeps struct {
	Wizard     *wizard.Manager
	Store      *storage.Store // optional; nil disables the listing endpoints
	Token      string
	HTTPClient *http.Client
}

// NewAppHandler returns the authenticated session surface driving the
// campaign wizard.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	RegisterAppRoutes(r, deps)
	return r
}

// RegisterAppRoutes attaches the session and brief endpoints to r behind
// bearer auth.
func RegisterAppRoutes(r chi.Router, deps AppDeps) {
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/sessions", handleCreateSession(deps))
		r.Get("/sessions", handleListSessions(deps))
		r.Get("/sessions/{id}", handleGetSession(deps))
		r.Post("/sessions/{id}/begin", handleBeginSession(deps))
		r.Post("/sessions/{id}/generate", handleGenerate(deps))
		r.Post("/sessions/{id}/modify", handleModify(deps))
		r.Post("/sessions/{id}/audiences/configure", handleConfigureAudience(deps))
		r.Delete("/sessions/{id}/audiences/{audienceID}", handleDeleteAudience(deps))
		r.Post("/sessions/{id}/finalize-audiences", handleFinalizeAudiences(deps))
		r.Post("/sessions/{id}/levers/configure", handleConfigureLever(deps))
		r.Delete("/sessions/{id}/levers/{leverID}", handleDeleteLever(deps))
		r.Post("/sessions/{id}/finalize-levers", handleFinalizeLevers(deps))
		r.Get("/sessions/{id}/finalized", handleListFinalized(deps))
		r.Post("/briefs", handleBrief(deps))
	})
}

// sessionResponse is the uniform payload for operations that mutate a
// session.
type sessionResponse struct {
	Session wizard.Snapshot   `json:"session"`
	Notices []audience.Notice `json:"notices,omitempty"`
}

func handleCreateSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Agent string `json:"agent"`
		}
		// An empty body is a plain no-agent session.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		snap, err := deps.Wizard.Create(req.Agent)
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sessionResponse{Session: snap})
	}
}

func handleListSessions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			writeJSON(w, http.StatusOK, []storage.SessionRecord{})
			return
		}
		limit := parseIntParam(r, "limit", 20, 100)
		sessions, err := deps.Store.ListSessions(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list sessions: %v", err)
			return
		}
		if sessions == nil {
			sessions = []storage.SessionRecord{}
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

func handleGetSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Wizard.Get(chi.URLParam(r, "id"))
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
	}
}

func handleBeginSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Wizard.Begin(chi.URLParam(r, "id"))
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
	}
}

func handleGenerate(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Prompt == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "prompt is required")
			return
		}

		snap, notices, err := deps.Wizard.Generate(r.Context(), chi.URLParam(r, "id"), req.Prompt)
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap, Notices: notices})
	}
}

func handleModify(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			AudienceID string `json:"audience_id"`
			Prompt     string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.AudienceID == "" || req.Prompt == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "audience_id and prompt are required")
			return
		}

		snap, notices, err := deps.Wizard.Modify(r.Context(), chi.URLParam(r, "id"), req.AudienceID, req.Prompt)
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap, Notices: notices})
	}
}

func handleConfigureAudience(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req audience.Audience
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.ID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "id is required")
			return
		}

		snap, err := deps.Wizard.ConfigureAudience(chi.URLParam(r, "id"), req)
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
	}
}

func handleDeleteAudience(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Wizard.DeleteAudience(chi.URLParam(r, "id"), chi.URLParam(r, "audienceID"))
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
	}
}

func handleFinalizeAudiences(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			SelectedIDs []string `json:"selected_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.SelectedIDs) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "selected_ids is required and must not be empty")
			return
		}

		snap, notices, err := deps.Wizard.FinalizeAudiences(r.Context(), chi.URLParam(r, "id"), req.SelectedIDs)
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap, Notices: notices})
	}
}

func handleConfigureLever(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req lever.GrowthLever
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.ID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "id is required")
			return
		}

		snap, err := deps.Wizard.ConfigureLever(chi.URLParam(r, "id"), req)
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
	}
}

func handleDeleteLever(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Wizard.DeleteLever(chi.URLParam(r, "id"), chi.URLParam(r, "leverID"))
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap})
	}
}

func handleFinalizeLevers(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req struct {
			SelectedIDs []string `json:"selected_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		snap, notices, err := deps.Wizard.FinalizeLevers(r.Context(), chi.URLParam(r, "id"), req.SelectedIDs)
		if err != nil {
			wizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Session: snap, Notices: notices})
	}
}

func handleListFinalized(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			writeJSON(w, http.StatusOK, []storage.FinalizedRecord{})
			return
		}
		kind := r.URL.Query().Get("kind")
		records, err := deps.Store.ListFinalized(chi.URLParam(r, "id"), kind)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list finalized records: %v", err)
			return
		}
		if records == nil {
			records = []storage.FinalizedRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// wizardError maps manager errors to HTTP status codes.
func wizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		httpError(w, http.StatusNotFound, "not_found", "session not found")
	case errors.Is(err, wizard.ErrAudienceNotFound):
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
	case errors.Is(err, wizard.ErrLeverNotFound):
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
	case errors.Is(err, wizard.ErrInvalidStep):
		httpError(w, http.StatusConflict, "invalid_request_error", "%v", err)
	case errors.Is(err, wizard.ErrUnknownAgent):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}
