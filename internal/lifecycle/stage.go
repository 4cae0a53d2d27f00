package lifecycle

import "context"

// Stage is how far a single weather request got through the pipeline.
// Requests move forward only; Completed is reachable from any stage.
type Stage int

const (
	StageReceived Stage = iota
	StageCoordinatesResolved
	StageUpstreamRequestSent
	StageResponseClassified
	StageCompleted
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageCoordinatesResolved:
		return "coordinates_resolved"
	case StageUpstreamRequestSent:
		return "upstream_request_sent"
	case StageResponseClassified:
		return "response_classified"
	case StageCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Tracker records the stage of one request. Not safe for concurrent use; each request owns one.
type Tracker struct {
	stage Stage
	// last is the stage reached before Complete was called.
	last Stage
}

// Advance moves the tracker to s. Moving backwards or leaving Completed is ignored.
// A nil tracker ignores every call.
func (t *Tracker) Advance(s Stage) {
	if t == nil || t.stage == StageCompleted || s <= t.stage {
		return
	}
	if s == StageCompleted {
		t.last = t.stage
	}
	t.stage = s
}

// Complete short-circuits to Completed and returns the stage the request had reached.
func (t *Tracker) Complete() Stage {
	if t == nil {
		return StageReceived
	}
	t.Advance(StageCompleted)
	return t.last
}

// Stage returns the current stage.
func (t *Tracker) Stage() Stage {
	if t == nil {
		return StageReceived
	}
	return t.stage
}

type trackerKey struct{}

// WithTracker attaches t to ctx so that code deeper in the pipeline can advance it.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the request's tracker, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}
