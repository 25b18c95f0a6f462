package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/avlasiuk/campaignwiz/internal/brief"
)

const maxBriefBodySize = 10 << 20 // 10MB

// BriefRequest carries campaign source material. PDF content is base64
// encoded; url briefs are fetched server-side.
type BriefRequest struct {
	Type    string `json:"type"` // "text", "pdf" or "url"
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

func handleBrief(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBriefBodySize)
		defer r.Body.Close()

		var req BriefRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Type == "" {
			req.Type = "text"
		}

		var (
			b   brief.Brief
			err error
		)
		switch req.Type {
		case "text":
			if req.Content == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
				return
			}
			b = brief.FromText(req.Title, req.Content)
		case "pdf":
			if req.Content == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
				return
			}
			data, decErr := base64.StdEncoding.DecodeString(req.Content)
			if decErr != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid base64 content")
				return
			}
			b, err = brief.FromPDF(req.Title, data)
		case "url":
			if req.URL == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required")
				return
			}
			b, err = brief.FromURL(r.Context(), deps.HTTPClient, req.URL)
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown brief type %q", req.Type)
			return
		}
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "failed to process brief: %v", err)
			return
		}
		if b.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "brief contains no extractable text")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"brief":  b,
			"prompt": b.Prompt(),
		})
	}
}
