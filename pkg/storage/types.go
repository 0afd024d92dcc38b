package storage

import "time"

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusStale  = "stale"
)

// Run records the outcome of one dashboard invocation. Metric values are
// never stored.
type Run struct {
	ID         string
	PageID     string
	Generation uint64
	Status     string // ok | failed | stale
	Category   string // failure category, empty unless Status is failed
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is how long the invocation took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunStats aggregates runs per status.
type RunStats struct {
	Status string
	Count  int
	Last   time.Time
}
