package metrics

import "time"

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Event counter names emitted by the workflow.
const (
	EventSubmitted    = "submitted"
	EventPaid         = "paid"
	EventExpired      = "expired"
	EventBuildError   = "build_error"
	EventSubmitError  = "submit_error"
	EventPollError    = "poll_error"
	EventRecordError  = "record_error"
	EventStaleDiscard = "stale_discard"
)
