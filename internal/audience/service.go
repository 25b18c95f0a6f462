package audience

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Generator is the subset of the backend client the audience orchestrator
// needs. Kept narrow so tests can stand in a fake.
type Generator interface {
	Probe(ctx context.Context) (json.RawMessage, int, error)
	GenerateAudiences(ctx context.Context, body []byte) (json.RawMessage, error)
	ModifyAudience(ctx context.Context, body []byte) (json.RawMessage, error)
	FinalizeAudiences(ctx context.Context, body []byte) (json.RawMessage, error)
}

// Notice is a user-visible, non-blocking notification attached to an
// operation result, typically announcing degraded (sample-data) mode.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Service owns the audience lifecycle: generation with graceful degradation,
// backend or local modification, deletion, and soft-success finalize. No
// operation returns an error to its caller; every failure path resolves to a
// usable audience list plus a Notice.
type Service struct {
	backend Generator
	userID  string
	logger  *slog.Logger
}

// NewService creates a Service calling backend on behalf of userID.
func NewService(backend Generator, userID string) *Service {
	if userID == "" {
		userID = "user-123"
	}
	return &Service{backend: backend, userID: userID, logger: slog.Default()}
}

// TestConnection reports whether the generation backend is reachable.
// It never returns an error; any failure resolves to false.
func (s *Service) TestConnection(ctx context.Context) bool {
	_, _, err := s.backend.Probe(ctx)
	if err != nil {
		s.logger.Debug("connection test failed", "error", err)
		return false
	}
	return true
}

// Generate asks the backend for audience suggestions. When the backend is
// unreachable, errors, or returns an unusable payload, the built-in sample
// set is returned instead, with a Notice explaining the degraded mode.
func (s *Service) Generate(ctx context.Context, prompt string, current []Audience) ([]Audience, Notice) {
	if !s.TestConnection(ctx) {
		return SampleAudiences(), Notice{
			Title:       "Using Mock Data",
			Description: "API connection failed. Using sample audiences for development.",
		}
	}

	body, err := json.Marshal(GenerateRequest{UserPrompt: prompt, CurrentAudiences: current})
	if err != nil {
		s.logger.Error("marshalling generate request", "error", err)
		return SampleAudiences(), sampleDataNotice()
	}

	raw, err := s.backend.GenerateAudiences(ctx, body)
	if err != nil {
		s.logger.Warn("audience generation failed", "error", err)
		return SampleAudiences(), sampleDataNotice()
	}

	records := extractList(raw)
	if len(records) == 0 {
		s.logger.Warn("audience generation returned no usable records")
		return SampleAudiences(), Notice{
			Title:       "Using Sample Data",
			Description: "API returned no audiences. Using sample data for development.",
		}
	}

	sanitized := SanitizeList(records)
	return sanitized, Notice{
		Title:       "Success",
		Description: fmt.Sprintf("Generated %d audiences", len(sanitized)),
	}
}

// Modify rewrites the audience identified by audienceID according to the
// prompt. The backend is tried first; any failure to reach it, parse its
// response, or locate a valid modified record falls through to the local
// keyword modifier. Returns the full list with only the target replaced.
// An unknown audienceID is a no-op returning the input unchanged.
func (s *Service) Modify(ctx context.Context, audienceID, prompt string, current []Audience) ([]Audience, Notice) {
	target, ok := findByID(current, audienceID)
	if !ok {
		s.logger.Warn("modify target not found", "audience_id", audienceID)
		return current, Notice{}
	}

	modified, remote := s.modifyRemote(ctx, target, prompt, current)
	if !remote {
		modified = ModifyLocally(target, prompt, timeNow())
	}

	// The backend sometimes re-keys the record; the caller's id wins.
	modified.ID = audienceID

	updated := replaceByID(current, modified)
	if remote {
		return updated, Notice{
			Title:       "Backend Modification Success",
			Description: fmt.Sprintf("Modified %q using backend AI", target.Name),
		}
	}
	return updated, Notice{
		Title:       "API Error",
		Description: "Backend call failed, using local modification",
	}
}

// modifyRemote attempts the backend modification. The boolean reports
// whether a valid modified record was obtained.
func (s *Service) modifyRemote(ctx context.Context, target Audience, prompt string, current []Audience) (Audience, bool) {
	body, err := json.Marshal(ModifyRequest{
		AudienceID:       target.ID,
		UserPrompt:       prompt,
		CurrentAudience:  target,
		CurrentAudiences: current,
	})
	if err != nil {
		s.logger.Error("marshalling modify request", "error", err)
		return Audience{}, false
	}

	raw, err := s.backend.ModifyAudience(ctx, body)
	if err != nil {
		s.logger.Warn("backend modification failed", "error", err)
		return Audience{}, false
	}

	record, ok := extractModified(raw)
	if !ok {
		s.logger.Warn("no modified audience found in backend response")
		return Audience{}, false
	}

	// A record the backend forgot to key is treated as invalid.
	if coerceString(record["id"]) == "" {
		s.logger.Warn("backend modified audience missing id")
		return Audience{}, false
	}
	return Sanitize(record), true
}

// Delete removes the audience with the given id. Purely local; always
// succeeds (removing an absent id is a no-op).
func (s *Service) Delete(audienceID string, current []Audience) []Audience {
	updated := make([]Audience, 0, len(current))
	for _, a := range current {
		if a.ID != audienceID {
			updated = append(updated, a)
		}
	}
	return updated
}

// Finalize filters to the selected subset and attempts the remote persist.
// Failure of any kind is a soft success: finalize never blocks progression
// to the next step. The selected subset is returned for the caller to carry
// forward.
func (s *Service) Finalize(ctx context.Context, selectedIDs []string, all []Audience) ([]Audience, Notice) {
	selected := filterByIDs(all, selectedIDs)

	body, err := json.Marshal(FinalizeRequest{
		UserID:           s.userID,
		CurrentAudiences: selected,
		ActionFinalize:   "overwrite",
	})
	if err == nil {
		_, err = s.backend.FinalizeAudiences(ctx, body)
	}
	if err != nil {
		s.logger.Info("audience finalize not persisted remotely", "error", err)
		return selected, Notice{
			Title: "Development Mode",
			Description: fmt.Sprintf("%d selected audiences would be saved in production. Proceeding to next step.",
				len(selected)),
		}
	}

	return selected, Notice{
		Title:       "Success",
		Description: fmt.Sprintf("%d audiences finalized and saved to database", len(selected)),
	}
}

func sampleDataNotice() Notice {
	return Notice{
		Title:       "Using Sample Data",
		Description: "API error occurred. Using sample audiences for development.",
	}
}

func findByID(list []Audience, id string) (Audience, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return Audience{}, false
}

func replaceByID(list []Audience, replacement Audience) []Audience {
	updated := make([]Audience, len(list))
	for i, a := range list {
		if a.ID == replacement.ID {
			updated[i] = replacement
		} else {
			updated[i] = a
		}
	}
	return updated
}

func filterByIDs(list []Audience, ids []string) []Audience {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := make([]Audience, 0, len(ids))
	for _, a := range list {
		if keep[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
