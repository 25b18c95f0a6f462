// Package backend talks to the remote generation service. It performs a
// single attempt per call with a bounded wait and maps every failure into a
// small taxonomy the orchestrators can branch on: timeout, unreachable, or a
// structured API error.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://reactjs-a4hv.onrender.com"
	generateTimeout = 30 * time.Second
	probeTimeout    = 10 * time.Second
)

// generationFaultSignature marks a known upstream output-validation failure.
// The backend occasionally rejects its own LLM output; the orchestrators
// treat this as "service up, generation broken" and fall back locally.
const generationFaultSignature = "SuggestedAudiencesOutput"

var (
	// ErrTimeout is returned when the bounded wait elapses before a response.
	ErrTimeout = errors.New("request timeout")
	// ErrUnreachable is returned on transport failures (DNS, refused, reset).
	ErrUnreachable = errors.New("network error")
)

// APIError is a non-success HTTP response from the generation service.
type APIError struct {
	Status          int
	Message         string
	GenerationFault bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// Client issues requests against the generation service base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting baseURL, or the production default
// when baseURL is empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 0, // per-request context deadlines instead
		},
	}
}

// BaseURL reports the configured upstream origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Probe checks upstream reachability with a short bounded GET against the
// service root. The returned payload is whatever the root handler responds
// with; callers only need the error.
func (c *Client) Probe(ctx context.Context) (json.RawMessage, int, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, c.apiError(resp.StatusCode, body)
	}

	if json.Valid(body) {
		return json.RawMessage(body), resp.StatusCode, nil
	}
	preview := string(body)
	if len(preview) > 100 {
		preview = preview[:100]
	}
	payload, _ := json.Marshal(map[string]string{
		"message": "API responded with non-JSON",
		"preview": preview,
	})
	return payload, resp.StatusCode, nil
}

// GenerateAudiences forwards a generation request body and returns the raw
// JSON response.
func (c *Client) GenerateAudiences(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/audiences/generate", body)
}

// ModifyAudience forwards a modification request body.
func (c *Client) ModifyAudience(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, "/audiences/modify", body)
}

// DeleteAudience forwards a deletion request body.
func (c *Client) DeleteAudience(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, "/audiences/delete", body)
}

// GenerateGrowthLevers forwards a growth-lever generation request body.
func (c *Client) GenerateGrowthLevers(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/growth-levers/generate", body)
}

// FinalizeAudiences attempts the remote persist of a finalized selection.
func (c *Client) FinalizeAudiences(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/audiences/finalize", body)
}

// FinalizeGrowthLevers attempts the remote persist of selected levers.
func (c *Client) FinalizeGrowthLevers(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/growth-levers/finalize", body)
}

// do issues one request with the generation timeout. No retries: failures
// surface immediately so the caller can decide between error and fallback.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.apiError(resp.StatusCode, respBody)
	}

	if !json.Valid(respBody) {
		return nil, &APIError{Status: http.StatusInternalServerError, Message: "Invalid JSON response from API"}
	}
	return json.RawMessage(respBody), nil
}

// apiError builds an APIError from a non-success response. A structured
// {"detail": ...} body wins; otherwise the raw text; otherwise a generic
// status message.
func (c *Client) apiError(status int, body []byte) *APIError {
	msg := fmt.Sprintf("API Error: %d - %s", status, http.StatusText(status))

	var structured struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Detail != "" {
		msg = structured.Detail
	} else if len(bytes.TrimSpace(body)) > 0 {
		msg = string(body)
	}

	apiErr := &APIError{Status: status, Message: msg}
	if strings.Contains(msg, generationFaultSignature) {
		apiErr.Message = "Backend LLM Error: " + msg
		apiErr.GenerationFault = true
	}
	return apiErr
}

// transportError classifies a client-side failure as timeout or unreachable.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
