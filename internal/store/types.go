// Package store persists per-run metric snapshots in SQLite so analysis
// runs can be compared over time.
package store

import "time"

// Snapshot is a point-in-time capture of one analysis run's headline
// metrics.
type Snapshot struct {
	ID      int64     `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Version string    `json:"version"`
}

// Metric is one named value within a snapshot. Classification counts use
// the form "classification:<label>"; detail carries free-form context such
// as the analyzed period.
type Metric struct {
	ID         int64   `json:"id"`
	SnapshotID int64   `json:"snapshot_id"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Detail     string  `json:"detail,omitempty"`
}

// Delta is the change of one metric between two snapshots.
type Delta struct {
	Name     string  `json:"name"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Change   float64 `json:"change"`
}
