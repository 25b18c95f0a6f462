package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/avlasiuk/campaignwiz/internal/audience"
	"github.com/avlasiuk/campaignwiz/internal/lever"
	"github.com/avlasiuk/campaignwiz/internal/storage"
)

// fakeBackend satisfies both orchestrators' backend interfaces. With
// offline set every call fails, which drives the sample-data and template
// fallbacks end to end.
type fakeBackend struct {
	offline      bool
	generateRaw  json.RawMessage
	generateBody []byte
}

var errOffline = errors.New("connection refused")

func (f *fakeBackend) Probe(context.Context) (json.RawMessage, int, error) {
	if f.offline {
		return nil, 0, errOffline
	}
	return json.RawMessage(`{"status":"ok"}`), 200, nil
}

func (f *fakeBackend) GenerateAudiences(_ context.Context, body []byte) (json.RawMessage, error) {
	f.generateBody = body
	if f.offline {
		return nil, errOffline
	}
	return f.generateRaw, nil
}

func (f *fakeBackend) ModifyAudience(context.Context, []byte) (json.RawMessage, error) {
	return nil, errOffline
}

func (f *fakeBackend) FinalizeAudiences(context.Context, []byte) (json.RawMessage, error) {
	return nil, errOffline
}

func (f *fakeBackend) GenerateGrowthLevers(context.Context, []byte) (json.RawMessage, error) {
	return nil, errOffline
}

func (f *fakeBackend) FinalizeGrowthLevers(context.Context, []byte) (json.RawMessage, error) {
	return nil, errOffline
}

func newTestManager(t *testing.T, backend *fakeBackend, store *storage.Store) *Manager {
	t.Helper()
	return NewManager(
		audience.NewService(backend, "user-test"),
		lever.NewService(backend, "user-test"),
		store,
	)
}

func offlineManager(t *testing.T) *Manager {
	return newTestManager(t, &fakeBackend{offline: true}, nil)
}

func TestCreateUnknownAgent(t *testing.T) {
	m := offlineManager(t)

	_, err := m.Create("marketing-iq")
	if !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("err = %v, want ErrUnknownAgent", err)
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := offlineManager(t)

	_, err := m.Get("nope")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestBeginTransition(t *testing.T) {
	m := offlineManager(t)
	snap, err := m.Create("")
	if err != nil {
		t.Fatal(err)
	}

	snap, err = m.Begin(snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Step != StepInitialPrompt {
		t.Errorf("step = %q", snap.Step)
	}

	// Begin is only legal from the homepage.
	if _, err := m.Begin(snap.ID); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("second begin err = %v, want ErrInvalidStep", err)
	}
}

func TestGenerateOfflineFallsBackToSamples(t *testing.T) {
	m := offlineManager(t)
	snap, _ := m.Create("")
	snap, _ = m.Begin(snap.ID)

	snap, notices, err := m.Generate(context.Background(), snap.ID, "eco-friendly sneaker shoppers")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Step != StepAudienceSelection {
		t.Errorf("step = %q", snap.Step)
	}
	if len(snap.Audiences) != 3 {
		t.Fatalf("got %d audiences, want the sample set", len(snap.Audiences))
	}
	if snap.Audiences[0].ID != "sample-1" {
		t.Errorf("first audience = %q", snap.Audiences[0].ID)
	}
	if len(notices) != 1 || notices[0].Title != "Using Mock Data" {
		t.Errorf("notices = %+v", notices)
	}
	if snap.Operations[OpGenerate] != OpSucceeded {
		t.Errorf("generate status = %q", snap.Operations[OpGenerate])
	}
}

func TestGenerateFromDoneStepRejected(t *testing.T) {
	m := offlineManager(t)
	id := runToDone(t, m)

	_, _, err := m.Generate(context.Background(), id, "again")
	if !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("err = %v", err)
	}
}

func TestGeneratePrependsAgentContext(t *testing.T) {
	backend := &fakeBackend{generateRaw: json.RawMessage(`{"data":[{"id":"a1","name":"Loyal Buyers"}]}`)}
	m := newTestManager(t, backend, nil)
	snap, err := m.Create("retain-iq")
	if err != nil {
		t.Fatal(err)
	}

	// Agent sessions generate straight from the homepage.
	snap, _, err = m.Generate(context.Background(), snap.ID, "repeat purchasers")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Audiences) != 1 || snap.Audiences[0].Name != "Loyal Buyers" {
		t.Fatalf("audiences = %+v", snap.Audiences)
	}

	var req struct {
		UserPrompt string `json:"user_prompt"`
	}
	if err := json.Unmarshal(backend.generateBody, &req); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(req.UserPrompt, AgentContext("retain-iq")) {
		t.Errorf("prompt does not start with the agent context: %q", req.UserPrompt)
	}
	if !strings.HasSuffix(req.UserPrompt, "repeat purchasers") {
		t.Errorf("prompt lost the user text: %q", req.UserPrompt)
	}
}

func TestModifyValidation(t *testing.T) {
	m := offlineManager(t)
	snap, _ := m.Create("")

	// Wrong step first.
	_, _, err := m.Modify(context.Background(), snap.ID, "sample-1", "bigger")
	if !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("err = %v", err)
	}

	snap, _ = m.Begin(snap.ID)
	snap, _, _ = m.Generate(context.Background(), snap.ID, "prompt")

	_, _, err = m.Modify(context.Background(), snap.ID, "missing", "bigger")
	if !errors.Is(err, ErrAudienceNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestModifyOfflineUsesHeuristics(t *testing.T) {
	m := offlineManager(t)
	snap, _ := m.Create("")
	snap, _ = m.Begin(snap.ID)
	snap, _, _ = m.Generate(context.Background(), snap.ID, "prompt")

	snap, notices, err := m.Modify(context.Background(), snap.ID, "sample-1", "refine this segment")
	if err != nil {
		t.Fatal(err)
	}
	if len(notices) != 1 {
		t.Fatalf("notices = %+v", notices)
	}
	modified, ok := snapshotAudience(snap, "sample-1")
	if !ok {
		t.Fatal("modified audience missing from snapshot")
	}
	if !strings.HasSuffix(modified.Name, "(AI Modified)") {
		t.Errorf("name = %q", modified.Name)
	}
	if len(snap.Audiences) != 3 {
		t.Errorf("modify must not change the list length, got %d", len(snap.Audiences))
	}
}

func TestConfigureAudience(t *testing.T) {
	m := offlineManager(t)
	snap, _ := m.Create("")
	snap, _ = m.Begin(snap.ID)
	snap, _, _ = m.Generate(context.Background(), snap.ID, "prompt")

	replacement, _ := snapshotAudience(snap, "sample-2")
	replacement.Name = "Hand-Tuned Segment"
	snap, err := m.ConfigureAudience(snap.ID, replacement)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := snapshotAudience(snap, "sample-2")
	if got.Name != "Hand-Tuned Segment" {
		t.Errorf("name = %q", got.Name)
	}

	_, err = m.ConfigureAudience(snap.ID, audience.Audience{ID: "missing"})
	if !errors.Is(err, ErrAudienceNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteAudience(t *testing.T) {
	m := offlineManager(t)
	snap, _ := m.Create("")
	snap, _ = m.Begin(snap.ID)
	snap, _, _ = m.Generate(context.Background(), snap.ID, "prompt")

	snap, err := m.DeleteAudience(snap.ID, "sample-3")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Audiences) != 2 {
		t.Errorf("got %d audiences", len(snap.Audiences))
	}
	if _, ok := snapshotAudience(snap, "sample-3"); ok {
		t.Error("deleted audience still present")
	}
}

func TestFinalizeAudiencesProgression(t *testing.T) {
	m := offlineManager(t)
	snap, _ := m.Create("")
	snap, _ = m.Begin(snap.ID)
	snap, _, _ = m.Generate(context.Background(), snap.ID, "prompt")

	snap, notices, err := m.FinalizeAudiences(context.Background(), snap.ID, []string{"sample-1", "sample-2"})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Step != StepLeverSelection {
		t.Errorf("step = %q", snap.Step)
	}
	if len(snap.FinalizedAudiences) != 2 {
		t.Errorf("finalized %d audiences", len(snap.FinalizedAudiences))
	}
	// Template fallback: three levers per finalized audience.
	if len(snap.GrowthLevers) != 6 {
		t.Errorf("got %d levers", len(snap.GrowthLevers))
	}
	for _, l := range snap.GrowthLevers {
		if l.TargetAudienceID != "sample-1" && l.TargetAudienceID != "sample-2" {
			t.Errorf("lever targets %q", l.TargetAudienceID)
		}
	}
	if len(notices) != 2 {
		t.Fatalf("notices = %+v", notices)
	}
	if snap.Operations[OpFinalizeAudiences] != OpSucceeded || snap.Operations[OpGenerateLevers] != OpSucceeded {
		t.Errorf("operations = %+v", snap.Operations)
	}
}

func TestConfigureAndDeleteLever(t *testing.T) {
	m := offlineManager(t)
	snap, _ := m.Create("")
	snap, _ = m.Begin(snap.ID)
	snap, _, _ = m.Generate(context.Background(), snap.ID, "prompt")
	snap, _, _ = m.FinalizeAudiences(context.Background(), snap.ID, []string{"sample-1"})

	replacement := snap.GrowthLevers[0].GrowthLever
	replacement.Name = "Hand-Tuned Lever"
	snap, err := m.ConfigureLever(snap.ID, replacement)
	if err != nil {
		t.Fatal(err)
	}
	if snap.GrowthLevers[0].Name != "Hand-Tuned Lever" {
		t.Errorf("name = %q", snap.GrowthLevers[0].Name)
	}

	if _, err := m.ConfigureLever(snap.ID, lever.GrowthLever{ID: "missing"}); !errors.Is(err, ErrLeverNotFound) {
		t.Fatalf("err = %v", err)
	}

	snap, err = m.DeleteLever(snap.ID, replacement.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.GrowthLevers) != 2 {
		t.Errorf("got %d levers after delete", len(snap.GrowthLevers))
	}
}

func TestFinalizeLeversCompletesWizard(t *testing.T) {
	m := offlineManager(t)
	snap, _ := m.Create("")
	snap, _ = m.Begin(snap.ID)
	snap, _, _ = m.Generate(context.Background(), snap.ID, "prompt")
	snap, _, _ = m.FinalizeAudiences(context.Background(), snap.ID, []string{"sample-1"})

	keep := []string{snap.GrowthLevers[0].ID, snap.GrowthLevers[2].ID}
	snap, notices, err := m.FinalizeLevers(context.Background(), snap.ID, keep)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Step != StepDone {
		t.Errorf("step = %q", snap.Step)
	}
	if len(snap.FinalizedLevers) != 2 {
		t.Errorf("finalized %d levers", len(snap.FinalizedLevers))
	}
	if len(notices) != 1 || notices[0].Title != "Growth Levers Finalized" {
		t.Errorf("notices = %+v", notices)
	}
}

func TestFullFlowPersists(t *testing.T) {
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	m := newTestManager(t, &fakeBackend{offline: true}, store)

	id := runToDone(t, m)

	rec, err := store.GetSession(id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Step != string(StepDone) {
		t.Errorf("persisted step = %q", rec.Step)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(rec.Payload), &snap); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if snap.ID != id {
		t.Errorf("payload id = %q", snap.ID)
	}

	finalized, err := store.ListFinalized(id, "audience")
	if err != nil {
		t.Fatal(err)
	}
	if len(finalized) != 2 {
		t.Errorf("got %d finalized audiences", len(finalized))
	}
	levers, err := store.ListFinalized(id, "growth_lever")
	if err != nil {
		t.Fatal(err)
	}
	if len(levers) != 6 {
		t.Errorf("got %d finalized levers", len(levers))
	}
}

// runToDone drives a session through the whole offline flow: two finalized
// audiences, all six fallback levers kept.
func runToDone(t *testing.T, m *Manager) string {
	t.Helper()
	snap, err := m.Create("")
	if err != nil {
		t.Fatal(err)
	}
	if snap, err = m.Begin(snap.ID); err != nil {
		t.Fatal(err)
	}
	if snap, _, err = m.Generate(context.Background(), snap.ID, "prompt"); err != nil {
		t.Fatal(err)
	}
	if snap, _, err = m.FinalizeAudiences(context.Background(), snap.ID, []string{"sample-1", "sample-2"}); err != nil {
		t.Fatal(err)
	}
	ids := make([]string, len(snap.GrowthLevers))
	for i, l := range snap.GrowthLevers {
		ids[i] = l.ID
	}
	if snap, _, err = m.FinalizeLevers(context.Background(), snap.ID, ids); err != nil {
		t.Fatal(err)
	}
	return snap.ID
}

func snapshotAudience(snap Snapshot, id string) (audience.Audience, bool) {
	for _, v := range snap.Audiences {
		if v.ID == id {
			return v.Audience, true
		}
	}
	return audience.Audience{}, false
}
