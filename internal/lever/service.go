package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/avlasiuk/campaignwiz/internal/audience"
)

// Generator is the subset of the backend client the lever orchestrator needs.
type Generator interface {
	GenerateGrowthLevers(ctx context.Context, body []byte) (json.RawMessage, error)
	FinalizeGrowthLevers(ctx context.Context, body []byte) (json.RawMessage, error)
}

// Service owns growth-lever generation and finalize. Like the audience
// orchestrator it never surfaces an error: backend failure degrades to the
// deterministic template expansion.
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

// Generate produces growth levers for the finalized audience set. The
// backend is asked first with an enumerating prompt; any failure or empty
// result falls back to GenerateForAudiences.
func (s *Service) Generate(ctx context.Context, selected []audience.Audience) ([]GrowthLever, audience.Notice) {
	levers, err := s.generateRemote(ctx, selected)
	if err != nil {
		s.logger.Warn("growth lever generation fell back to templates", "error", err)
		levers = GenerateForAudiences(selected)
	}

	perAudience := 0
	if len(selected) > 0 {
		perAudience = int(math.Round(float64(len(levers)) / float64(len(selected))))
	}
	return levers, audience.Notice{
		Title: "Growth Levers Generated",
		Description: fmt.Sprintf("Generated %d personalized growth levers for your %d audiences (%d per audience)",
			len(levers), len(selected), perAudience),
	}
}

func (s *Service) generateRemote(ctx context.Context, selected []audience.Audience) ([]GrowthLever, error) {
	body, err := json.Marshal(GenerateRequest{
		UserPrompt:          BuildPrompt(selected),
		CurrentGrowthLevers: []GrowthLever{},
		SelectedAudiences:   selected,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	raw, err := s.backend.GenerateGrowthLevers(ctx, body)
	if err != nil {
		return nil, err
	}

	levers, err := extractLevers(raw)
	if err != nil {
		return nil, err
	}
	if len(levers) == 0 {
		return nil, fmt.Errorf("no growth levers returned from API")
	}
	return levers, nil
}

// Finalize attempts the remote persist of the selected levers; failure is a
// soft success and never blocks progression. Returns the selected subset.
func (s *Service) Finalize(ctx context.Context, selectedIDs []string, all []GrowthLever) ([]GrowthLever, audience.Notice) {
	keep := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		keep[id] = true
	}
	selected := make([]GrowthLever, 0, len(selectedIDs))
	for _, l := range all {
		if keep[l.ID] {
			selected = append(selected, l)
		}
	}

	body, err := json.Marshal(FinalizeRequest{
		UserID:              s.userID,
		CurrentGrowthLevers: selected,
		ActionFinalize:      "overwrite",
	})
	if err == nil {
		_, err = s.backend.FinalizeGrowthLevers(ctx, body)
	}
	if err != nil {
		s.logger.Info("growth lever finalize not persisted remotely", "error", err)
		return selected, audience.Notice{
			Title: "Growth Levers Finalized",
			Description: fmt.Sprintf("%d growth levers configured. Proceeding to campaign generation.",
				len(selected)),
		}
	}

	return selected, audience.Notice{
		Title: "Growth Levers Finalized",
		Description: fmt.Sprintf("Successfully saved %d growth levers to database. Proceeding to campaign generation.",
			len(selected)),
	}
}

// BuildPrompt enumerates every finalized audience with its size, conversion
// rate, and cohort score, asking for a dedicated strategy set per audience.
func BuildPrompt(selected []audience.Audience) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate 3 specific growth levers for EACH of these %d audiences. ", len(selected))
	sb.WriteString("Each audience should get its own dedicated set of growth strategies:\n\n")

	for i, aud := range selected {
		size := formatThousands(defaultAudienceSize)
		if aud.EstimatedSize != nil {
			size = formatThousands(*aud.EstimatedSize)
		}
		rate := aud.EstimatedConversionRate
		if rate == 0 {
			rate = defaultConversionRate
		}
		score := aud.CohortScore
		if score == 0 {
			score = defaultCohortScore
		}
		fmt.Fprintf(&sb, "%d. %s (%s people, %d%% conversion rate, cohort score: %d)\n",
			i+1, aud.Name, size, int(math.Round(rate*100)), score)
	}

	sb.WriteString("\nPlease create personalized growth levers that are specifically tailored to each ")
	sb.WriteString("audience's characteristics, size, and conversion potential. Each audience should have ")
	sb.WriteString("distinct strategies.")
	return sb.String()
}

// extractLevers probes the accepted response envelopes: "data" as the array,
// "suggested_growth_levers", or a bare top-level array.
func extractLevers(raw json.RawMessage) ([]GrowthLever, error) {
	var envelope struct {
		Data                 json.RawMessage `json:"data"`
		SuggestedGrowthLevers json.RawMessage `json:"suggested_growth_levers"`
	}

	var levers []GrowthLever
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if len(envelope.Data) > 0 && json.Unmarshal(envelope.Data, &levers) == nil && levers != nil {
			return levers, nil
		}
		if len(envelope.SuggestedGrowthLevers) > 0 && json.Unmarshal(envelope.SuggestedGrowthLevers, &levers) == nil && levers != nil {
			return levers, nil
		}
	}
	if err := json.Unmarshal(raw, &levers); err == nil {
		return levers, nil
	}
	return nil, fmt.Errorf("unrecognized growth lever response shape")
}
