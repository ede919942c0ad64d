package stats

import "sync/atomic"

// Snapshot is a read-only view of the processing counters
type Snapshot struct {
	ProcessedCount         int64 `json:"processed_count"`
	SuccessCount           int64 `json:"success_count"`
	FailureCount           int64 `json:"failure_count"`
	LastProcessedTimestamp int64 `json:"last_processed_timestamp"`
}

// Tracker holds process-wide message counters. The processor is the
// single writer; the status endpoints read concurrently via Snapshot.
type Tracker struct {
	processed     atomic.Int64
	success       atomic.Int64
	failure       atomic.Int64
	lastProcessed atomic.Int64
}

// NewTracker creates a zeroed tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordSuccess counts one successfully processed message
func (t *Tracker) RecordSuccess(timestamp int64) {
	t.processed.Add(1)
	t.success.Add(1)
	t.lastProcessed.Store(timestamp)
}

// RecordFailure counts one failed message
func (t *Tracker) RecordFailure(timestamp int64) {
	t.processed.Add(1)
	t.failure.Add(1)
	t.lastProcessed.Store(timestamp)
}

// Snapshot returns the current counter values
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		ProcessedCount:         t.processed.Load(),
		SuccessCount:           t.success.Load(),
		FailureCount:           t.failure.Load(),
		LastProcessedTimestamp: t.lastProcessed.Load(),
	}
}
