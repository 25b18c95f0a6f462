// Package wizard drives the campaign wizard: a linear step machine over
// in-memory session state, delegating all generation work to the audience
// and lever orchestrators.
package wizard

import (
	"time"

	"github.com/avlasiuk/campaignwiz/internal/audience"
	"github.com/avlasiuk/campaignwiz/internal/lever"
)

// Step is a wizard stage. Transitions are forward-only; there is no
// implemented path backwards.
type Step string

const (
	StepHomepage          Step = "homepage"
	StepInitialPrompt     Step = "initial-prompt"
	StepAudienceSelection Step = "audience-selection"
	StepLeverLoading      Step = "growth-lever-loading"
	StepLeverSelection    Step = "growth-lever-selection"
	StepDone              Step = "done"
)

// OpKind identifies one of the long-running operations a session can run.
type OpKind string

const (
	OpGenerate          OpKind = "generate"
	OpModify            OpKind = "modify"
	OpFinalizeAudiences OpKind = "finalize-audiences"
	OpGenerateLevers    OpKind = "generate-levers"
	OpFinalizeLevers    OpKind = "finalize-levers"
)

// OpStatus is the lifecycle state of an operation. Explicit lifecycle state
// (rather than a busy boolean) lets overlapping calls be resolved
// deterministically: each start bumps an epoch, and only the completion
// carrying the current epoch may commit its result.
type OpStatus string

const (
	OpIdle      OpStatus = "idle"
	OpInFlight  OpStatus = "in-flight"
	OpSucceeded OpStatus = "succeeded"
	OpFailed    OpStatus = "failed"
)

type opState struct {
	status OpStatus
	epoch  uint64
}

// session is the mutable wizard state for one user flow. All list fields
// are replaced wholesale on mutation, never edited in place.
type session struct {
	id                 string
	agent              string
	prompt             string
	step               Step
	audiences          []audience.Audience
	levers             []lever.GrowthLever
	finalizedAudiences []audience.Audience
	finalizedLevers    []lever.GrowthLever
	ops                map[OpKind]*opState
	createdAt          time.Time
	updatedAt          time.Time
}

func newSession(id string, now time.Time) *session {
	return &session{
		id:        id,
		step:      StepHomepage,
		ops:       make(map[OpKind]*opState),
		createdAt: now,
		updatedAt: now,
	}
}

// begin marks op in-flight and returns the epoch this attempt must present
// to commit.
func (s *session) begin(op OpKind) uint64 {
	st := s.ops[op]
	if st == nil {
		st = &opState{}
		s.ops[op] = st
	}
	st.epoch++
	st.status = OpInFlight
	return st.epoch
}

// settle records the outcome of an attempt. It reports whether the attempt
// is current; a stale attempt (superseded by a newer begin) must not commit
// its result.
func (s *session) settle(op OpKind, epoch uint64, ok bool) bool {
	st := s.ops[op]
	if st == nil || st.epoch != epoch {
		return false
	}
	if ok {
		st.status = OpSucceeded
	} else {
		st.status = OpFailed
	}
	return true
}

func (s *session) opStatus(op OpKind) OpStatus {
	if st := s.ops[op]; st != nil {
		return st.status
	}
	return OpIdle
}

// AudienceView is an audience plus its derived display metrics.
type AudienceView struct {
	audience.Audience
	Metrics AudienceMetrics `json:"metrics"`
}

// LeverView is a growth lever plus its derived display metrics.
type LeverView struct {
	lever.GrowthLever
	Metrics LeverMetrics `json:"metrics"`
}

// Snapshot is an immutable copy of session state handed to the API layer.
type Snapshot struct {
	ID                 string              `json:"id"`
	Agent              string              `json:"agent,omitempty"`
	Step               Step                `json:"step"`
	Audiences          []AudienceView      `json:"audiences"`
	GrowthLevers       []LeverView         `json:"growth_levers"`
	FinalizedAudiences []audience.Audience `json:"finalized_audiences"`
	FinalizedLevers    []lever.GrowthLever `json:"finalized_levers"`
	Operations         map[OpKind]OpStatus `json:"operations"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func (s *session) snapshot() Snapshot {
	snap := Snapshot{
		ID:                 s.id,
		Agent:              s.agent,
		Step:               s.step,
		Audiences:          make([]AudienceView, len(s.audiences)),
		GrowthLevers:       make([]LeverView, len(s.levers)),
		FinalizedAudiences: append([]audience.Audience(nil), s.finalizedAudiences...),
		FinalizedLevers:    append([]lever.GrowthLever(nil), s.finalizedLevers...),
		Operations:         make(map[OpKind]OpStatus, len(s.ops)),
		CreatedAt:          s.createdAt,
		UpdatedAt:          s.updatedAt,
	}
	for i, a := range s.audiences {
		snap.Audiences[i] = AudienceView{Audience: a, Metrics: AudienceStableMetrics(a)}
	}
	for i, l := range s.levers {
		snap.GrowthLevers[i] = LeverView{GrowthLever: l, Metrics: LeverStableMetrics(l)}
	}
	for op, st := range s.ops {
		snap.Operations[op] = st.status
	}
	if snap.FinalizedAudiences == nil {
		snap.FinalizedAudiences = []audience.Audience{}
	}
	if snap.FinalizedLevers == nil {
		snap.FinalizedLevers = []lever.GrowthLever{}
	}
	return snap
}
