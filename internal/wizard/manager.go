package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/avlasiuk/campaignwiz/internal/audience"
	"github.com/avlasiuk/campaignwiz/internal/lever"
	"github.com/avlasiuk/campaignwiz/internal/storage"
)

var (
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidStep is returned when an operation is not legal in the
	// session's current step.
	ErrInvalidStep = errors.New("operation not valid in current step")
	// ErrUnknownAgent is returned for an unrecognized agent id.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrAudienceNotFound is returned when a per-audience operation names
	// an id missing from the session.
	ErrAudienceNotFound = errors.New("audience not found")
	// ErrLeverNotFound is returned when a per-lever operation names an id
	// missing from the session.
	ErrLeverNotFound = errors.New("growth lever not found")
)

// Manager owns all live wizard sessions. Session state is guarded by one
// mutex; long-running backend calls run outside the lock and commit their
// results only if their operation epoch is still current, so the slower of
// two overlapping calls cannot clobber the newer result.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	audiences *audience.Service
	levers    *lever.Service
	store     *storage.Store // optional; nil disables persistence
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager creates a Manager. store may be nil, in which case sessions
// are purely in-memory.
func NewManager(audiences *audience.Service, levers *lever.Service, store *storage.Store) *Manager {
	return &Manager{
		sessions:  make(map[string]*session),
		audiences: audiences,
		levers:    levers,
		store:     store,
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// Create starts a new session on the homepage step. A non-empty agentID
// must name one of the preset agents.
func (m *Manager) Create(agentID string) (Snapshot, error) {
	if agentID != "" && !KnownAgent(agentID) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownAgent, agentID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess := newSession(uuid.New().String(), m.now())
	sess.agent = agentID
	m.sessions[sess.id] = sess
	m.persistLocked(sess)
	return sess.snapshot(), nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	return sess.snapshot(), nil
}

// Begin moves a homepage session to the initial prompt step (the no-agent
// path; agent sessions generate straight from the homepage).
func (m *Manager) Begin(id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if sess.step != StepHomepage {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidStep, sess.step)
	}
	sess.step = StepInitialPrompt
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	return sess.snapshot(), nil
}

// Generate runs audience generation for the session. Valid from the
// homepage (agent flow), initial prompt, and audience selection (repeat
// generation) steps. The session's agent context, when set, is prepended to
// the prompt.
func (m *Manager) Generate(ctx context.Context, id, prompt string) (Snapshot, []audience.Notice, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return Snapshot{}, nil, ErrSessionNotFound
	}
	switch sess.step {
	case StepHomepage, StepInitialPrompt, StepAudienceSelection:
	default:
		step := sess.step
		m.mu.Unlock()
		return Snapshot{}, nil, fmt.Errorf("%w: %s", ErrInvalidStep, step)
	}
	epoch := sess.begin(OpGenerate)
	current := append([]audience.Audience(nil), sess.audiences...)
	if ctxText := AgentContext(sess.agent); ctxText != "" {
		prompt = ctxText + "\n\n" + prompt
	}
	m.mu.Unlock()

	generated, notice := m.audiences.Generate(ctx, prompt, current)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !sess.settle(OpGenerate, epoch, true) {
		// A newer generation superseded this one; its result stands.
		return sess.snapshot(), []audience.Notice{notice}, nil
	}
	sess.audiences = generated
	sess.prompt = prompt
	sess.step = StepAudienceSelection
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	return sess.snapshot(), []audience.Notice{notice}, nil
}

// Modify rewrites one audience in the session per the free-text prompt.
func (m *Manager) Modify(ctx context.Context, id, audienceID, prompt string) (Snapshot, []audience.Notice, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return Snapshot{}, nil, ErrSessionNotFound
	}
	if sess.step != StepAudienceSelection {
		step := sess.step
		m.mu.Unlock()
		return Snapshot{}, nil, fmt.Errorf("%w: %s", ErrInvalidStep, step)
	}
	if _, ok := findAudience(sess.audiences, audienceID); !ok {
		m.mu.Unlock()
		return Snapshot{}, nil, fmt.Errorf("%w: %s", ErrAudienceNotFound, audienceID)
	}
	epoch := sess.begin(OpModify)
	current := append([]audience.Audience(nil), sess.audiences...)
	m.mu.Unlock()

	updated, notice := m.audiences.Modify(ctx, audienceID, prompt, current)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !sess.settle(OpModify, epoch, true) {
		return sess.snapshot(), []audience.Notice{notice}, nil
	}
	sess.audiences = updated
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	return sess.snapshot(), []audience.Notice{notice}, nil
}

// ConfigureAudience replaces one audience wholesale (the manual configure
// dialog path). The replacement keeps the id it names.
func (m *Manager) ConfigureAudience(id string, updated audience.Audience) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if sess.step != StepAudienceSelection {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidStep, sess.step)
	}
	if _, ok := findAudience(sess.audiences, updated.ID); !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrAudienceNotFound, updated.ID)
	}

	replaced := make([]audience.Audience, len(sess.audiences))
	for i, a := range sess.audiences {
		if a.ID == updated.ID {
			replaced[i] = updated
		} else {
			replaced[i] = a
		}
	}
	sess.audiences = replaced
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	return sess.snapshot(), nil
}

// DeleteAudience removes one audience from the session list.
func (m *Manager) DeleteAudience(id, audienceID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if sess.step != StepAudienceSelection {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidStep, sess.step)
	}
	sess.audiences = m.audiences.Delete(audienceID, sess.audiences)
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	return sess.snapshot(), nil
}

// FinalizeAudiences finalizes the selected subset and generates growth
// levers for it. The two backend calls run concurrently, matching the
// original flow; both are fallback-safe, so the step always progresses to
// lever selection.
func (m *Manager) FinalizeAudiences(ctx context.Context, id string, selectedIDs []string) (Snapshot, []audience.Notice, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return Snapshot{}, nil, ErrSessionNotFound
	}
	if sess.step != StepAudienceSelection {
		step := sess.step
		m.mu.Unlock()
		return Snapshot{}, nil, fmt.Errorf("%w: %s", ErrInvalidStep, step)
	}
	finEpoch := sess.begin(OpFinalizeAudiences)
	levEpoch := sess.begin(OpGenerateLevers)
	sess.step = StepLeverLoading
	all := append([]audience.Audience(nil), sess.audiences...)
	m.mu.Unlock()

	selected := selectAudiences(all, selectedIDs)

	var (
		finalized []audience.Audience
		finNotice audience.Notice
		levers    []lever.GrowthLever
		levNotice audience.Notice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		finalized, finNotice = m.audiences.Finalize(gctx, selectedIDs, all)
		return nil
	})
	g.Go(func() error {
		levers, levNotice = m.levers.Generate(gctx, selected)
		return nil
	})
	// Both branches are fallback-safe and never error.
	_ = g.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	finCurrent := sess.settle(OpFinalizeAudiences, finEpoch, true)
	levCurrent := sess.settle(OpGenerateLevers, levEpoch, true)
	if !finCurrent || !levCurrent {
		return sess.snapshot(), []audience.Notice{finNotice, levNotice}, nil
	}
	sess.finalizedAudiences = finalized
	sess.levers = levers
	sess.step = StepLeverSelection
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	m.recordFinalizedAudiencesLocked(sess)
	return sess.snapshot(), []audience.Notice{finNotice, levNotice}, nil
}

// ConfigureLever replaces one growth lever wholesale.
func (m *Manager) ConfigureLever(id string, updated lever.GrowthLever) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if sess.step != StepLeverSelection {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidStep, sess.step)
	}
	found := false
	replaced := make([]lever.GrowthLever, len(sess.levers))
	for i, l := range sess.levers {
		if l.ID == updated.ID {
			replaced[i] = updated
			found = true
		} else {
			replaced[i] = l
		}
	}
	if !found {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrLeverNotFound, updated.ID)
	}
	sess.levers = replaced
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	return sess.snapshot(), nil
}

// DeleteLever removes one growth lever from the session list.
func (m *Manager) DeleteLever(id, leverID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if sess.step != StepLeverSelection {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidStep, sess.step)
	}
	kept := make([]lever.GrowthLever, 0, len(sess.levers))
	for _, l := range sess.levers {
		if l.ID != leverID {
			kept = append(kept, l)
		}
	}
	sess.levers = kept
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	return sess.snapshot(), nil
}

// FinalizeLevers finalizes the selected levers and completes the wizard.
// Finalize is soft-success: the step always progresses to done.
func (m *Manager) FinalizeLevers(ctx context.Context, id string, selectedIDs []string) (Snapshot, []audience.Notice, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return Snapshot{}, nil, ErrSessionNotFound
	}
	if sess.step != StepLeverSelection {
		step := sess.step
		m.mu.Unlock()
		return Snapshot{}, nil, fmt.Errorf("%w: %s", ErrInvalidStep, step)
	}
	epoch := sess.begin(OpFinalizeLevers)
	all := append([]lever.GrowthLever(nil), sess.levers...)
	m.mu.Unlock()

	selected, notice := m.levers.Finalize(ctx, selectedIDs, all)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !sess.settle(OpFinalizeLevers, epoch, true) {
		return sess.snapshot(), []audience.Notice{notice}, nil
	}
	sess.finalizedLevers = selected
	sess.step = StepDone
	sess.updatedAt = m.now()
	m.persistLocked(sess)
	m.recordFinalizedLeversLocked(sess)
	return sess.snapshot(), []audience.Notice{notice}, nil
}

// persistLocked snapshots the session to storage. Persistence is
// best-effort; a failure is logged and the in-memory session stays
// authoritative. Callers hold m.mu.
func (m *Manager) persistLocked(sess *session) {
	if m.store == nil {
		return
	}
	payload, err := json.Marshal(sess.snapshot())
	if err != nil {
		m.logger.Error("marshalling session snapshot", "session_id", sess.id, "error", err)
		return
	}
	rec := storage.SessionRecord{
		ID:        sess.id,
		Step:      string(sess.step),
		Payload:   string(payload),
		CreatedAt: sess.createdAt,
		UpdatedAt: sess.updatedAt,
	}
	if err := m.store.SaveSession(rec); err != nil {
		m.logger.Error("persisting session", "session_id", sess.id, "error", err)
	}
}

func (m *Manager) recordFinalizedAudiencesLocked(sess *session) {
	if m.store == nil {
		return
	}
	records := make([]storage.FinalizedRecord, 0, len(sess.finalizedAudiences))
	for _, a := range sess.finalizedAudiences {
		payload, err := json.Marshal(a)
		if err != nil {
			m.logger.Error("marshalling finalized audience", "audience_id", a.ID, "error", err)
			continue
		}
		records = append(records, storage.FinalizedRecord{
			ID:        uuid.New().String(),
			SessionID: sess.id,
			Kind:      "audience",
			RecordID:  a.ID,
			Name:      a.Name,
			Payload:   string(payload),
			CreatedAt: sess.updatedAt,
		})
	}
	if err := m.store.SaveFinalized(sess.id, "audience", records); err != nil {
		m.logger.Error("recording finalized audiences", "session_id", sess.id, "error", err)
	}
}

func (m *Manager) recordFinalizedLeversLocked(sess *session) {
	if m.store == nil {
		return
	}
	records := make([]storage.FinalizedRecord, 0, len(sess.finalizedLevers))
	for _, l := range sess.finalizedLevers {
		payload, err := json.Marshal(l)
		if err != nil {
			m.logger.Error("marshalling finalized lever", "lever_id", l.ID, "error", err)
			continue
		}
		records = append(records, storage.FinalizedRecord{
			ID:        uuid.New().String(),
			SessionID: sess.id,
			Kind:      "growth_lever",
			RecordID:  l.ID,
			Name:      l.Name,
			Payload:   string(payload),
			CreatedAt: sess.updatedAt,
		})
	}
	if err := m.store.SaveFinalized(sess.id, "growth_lever", records); err != nil {
		m.logger.Error("recording finalized levers", "session_id", sess.id, "error", err)
	}
}

func findAudience(list []audience.Audience, id string) (audience.Audience, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return audience.Audience{}, false
}

func selectAudiences(list []audience.Audience, ids []string) []audience.Audience {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := make([]audience.Audience, 0, len(ids))
	for _, a := range list {
		if keep[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
