package lifecycle

import (
	"context"
	"testing"
)

func TestIsShuttingDown_DefaultFalse(t *testing.T) {
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true, want false by default")
	}
}

func TestSetShuttingDown_Toggle(t *testing.T) {
	SetShuttingDown(true)
	if !IsShuttingDown() {
		t.Error("IsShuttingDown() = false after SetShuttingDown(true), want true")
	}
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true after SetShuttingDown(false), want false")
	}
}

func TestTracker_LinearProgress(t *testing.T) {
	var tr Tracker
	if tr.Stage() != StageReceived {
		t.Fatalf("zero Tracker stage = %v, want received", tr.Stage())
	}
	tr.Advance(StageCoordinatesResolved)
	tr.Advance(StageUpstreamRequestSent)
	tr.Advance(StageCoordinatesResolved) // backwards, ignored
	if tr.Stage() != StageUpstreamRequestSent {
		t.Errorf("Stage() = %v, want upstream_request_sent", tr.Stage())
	}
	tr.Advance(StageResponseClassified)
	if got := tr.Complete(); got != StageResponseClassified {
		t.Errorf("Complete() = %v, want response_classified", got)
	}
	if tr.Stage() != StageCompleted {
		t.Errorf("Stage() = %v, want completed", tr.Stage())
	}
}

func TestTracker_ShortCircuit(t *testing.T) {
	var tr Tracker
	tr.Advance(StageCoordinatesResolved)
	if got := tr.Complete(); got != StageCoordinatesResolved {
		t.Errorf("Complete() = %v, want coordinates_resolved", got)
	}
	tr.Advance(StageUpstreamRequestSent)
	if tr.Stage() != StageCompleted {
		t.Error("Advance after Completed changed the stage")
	}
	if got := tr.Complete(); got != StageCoordinatesResolved {
		t.Errorf("second Complete() = %v, want unchanged coordinates_resolved", got)
	}
}

func TestStage_String(t *testing.T) {
	tests := map[Stage]string{
		StageReceived:            "received",
		StageCoordinatesResolved: "coordinates_resolved",
		StageUpstreamRequestSent: "upstream_request_sent",
		StageResponseClassified:  "response_classified",
		StageCompleted:           "completed",
		Stage(42):                "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Stage(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestTracker_Context(t *testing.T) {
	if got := TrackerFromContext(context.Background()); got != nil {
		t.Fatalf("TrackerFromContext() = %v, want nil", got)
	}
	tr := &Tracker{}
	ctx := WithTracker(context.Background(), tr)
	TrackerFromContext(ctx).Advance(StageUpstreamRequestSent)
	if tr.Stage() != StageUpstreamRequestSent {
		t.Errorf("Stage() = %v, want upstream_request_sent", tr.Stage())
	}
}

func TestTracker_NilSafe(t *testing.T) {
	var tr *Tracker
	tr.Advance(StageCompleted)
	if tr.Stage() != StageReceived || tr.Complete() != StageReceived {
		t.Error("nil Tracker should report received and ignore updates")
	}
}
