package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbeNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>welcome</html>"))
	}))
	defer srv.Close()

	data, status, err := NewClient(srv.URL).Probe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d", status)
	}
	var payload struct {
		Message string `json:"message"`
		Preview string `json:"preview"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Message != "API responded with non-JSON" || payload.Preview != "<html>welcome</html>" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestDoUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).GenerateAudiences(context.Background(), []byte(`{}`))
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}

func TestDoAPIErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"user_prompt is required"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateAudiences(context.Background(), []byte(`{}`))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "user_prompt is required" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if apiErr.GenerationFault {
		t.Error("plain validation error misclassified as generation fault")
	}
}

func TestDoGenerationFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"1 validation error for SuggestedAudiencesOutput"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateAudiences(context.Background(), []byte(`{}`))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if !apiErr.GenerationFault {
		t.Error("generation fault not flagged")
	}
	if apiErr.Message != "Backend LLM Error: 1 validation error for SuggestedAudiencesOutput" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestDoRejectsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateAudiences(context.Background(), []byte(`{}`))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Message != "Invalid JSON response from API" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:9000/")
	if c.BaseURL() != "http://localhost:9000" {
		t.Errorf("base url = %q", c.BaseURL())
	}
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	if NewClient("").BaseURL() != "https://reactjs-a4hv.onrender.com" {
		t.Errorf("base url = %q", NewClient("").BaseURL())
	}
}
