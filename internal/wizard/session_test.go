package wizard

import (
	"testing"
	"time"
)

func TestNewSessionStartsOnHomepage(t *testing.T) {
	s := newSession("s1", time.Now())

	if s.step != StepHomepage {
		t.Errorf("step = %q", s.step)
	}
	if s.opStatus(OpGenerate) != OpIdle {
		t.Errorf("generate status = %q, want idle before any begin", s.opStatus(OpGenerate))
	}
}

func TestBeginSettleLifecycle(t *testing.T) {
	s := newSession("s1", time.Now())

	epoch := s.begin(OpGenerate)
	if epoch != 1 {
		t.Fatalf("first epoch = %d", epoch)
	}
	if s.opStatus(OpGenerate) != OpInFlight {
		t.Errorf("status = %q", s.opStatus(OpGenerate))
	}

	if !s.settle(OpGenerate, epoch, true) {
		t.Fatal("current attempt should commit")
	}
	if s.opStatus(OpGenerate) != OpSucceeded {
		t.Errorf("status = %q", s.opStatus(OpGenerate))
	}
}

func TestSettleFailureMarksFailed(t *testing.T) {
	s := newSession("s1", time.Now())

	epoch := s.begin(OpModify)
	if !s.settle(OpModify, epoch, false) {
		t.Fatal("current attempt should still be reported current")
	}
	if s.opStatus(OpModify) != OpFailed {
		t.Errorf("status = %q", s.opStatus(OpModify))
	}
}

func TestStaleSettleCannotCommit(t *testing.T) {
	s := newSession("s1", time.Now())

	first := s.begin(OpGenerate)
	second := s.begin(OpGenerate)

	if s.settle(OpGenerate, first, true) {
		t.Fatal("superseded attempt must not commit")
	}
	// The stale settle leaves the newer attempt in flight.
	if s.opStatus(OpGenerate) != OpInFlight {
		t.Errorf("status = %q", s.opStatus(OpGenerate))
	}

	if !s.settle(OpGenerate, second, true) {
		t.Fatal("newest attempt should commit")
	}
	if s.opStatus(OpGenerate) != OpSucceeded {
		t.Errorf("status = %q", s.opStatus(OpGenerate))
	}
}

func TestSettleAfterLateWinnerStaysStale(t *testing.T) {
	s := newSession("s1", time.Now())

	first := s.begin(OpGenerate)
	second := s.begin(OpGenerate)

	if !s.settle(OpGenerate, second, true) {
		t.Fatal("newest attempt should commit")
	}
	// The slower first attempt arrives after the winner settled.
	if s.settle(OpGenerate, first, true) {
		t.Fatal("stale attempt must stay stale after the winner commits")
	}
	if s.opStatus(OpGenerate) != OpSucceeded {
		t.Errorf("status = %q", s.opStatus(OpGenerate))
	}
}

func TestOpsAreIndependent(t *testing.T) {
	s := newSession("s1", time.Now())

	genEpoch := s.begin(OpGenerate)
	modEpoch := s.begin(OpModify)

	if genEpoch != 1 || modEpoch != 1 {
		t.Fatalf("epochs = %d, %d; each op tracks its own counter", genEpoch, modEpoch)
	}
	s.settle(OpGenerate, genEpoch, true)
	if s.opStatus(OpModify) != OpInFlight {
		t.Errorf("modify status = %q", s.opStatus(OpModify))
	}
}

func TestSnapshotNeverNilLists(t *testing.T) {
	s := newSession("s1", time.Now())

	snap := s.snapshot()

	if snap.Audiences == nil || snap.GrowthLevers == nil {
		t.Error("view lists must be non-nil")
	}
	if snap.FinalizedAudiences == nil || snap.FinalizedLevers == nil {
		t.Error("finalized lists must be non-nil")
	}
}
