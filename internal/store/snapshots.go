package store

import (
	"database/sql"
	"sort"
	"time"
)

// CreateSnapshot inserts a new snapshot and returns its ID.
func (db *DB) CreateSnapshot(version string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO snapshots (taken_at, version) VALUES (?, ?)",
		time.Now().UTC().Format(time.RFC3339), version,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetSnapshotN returns the Nth most recent snapshot (1 = latest, 2 =
// previous, ...), or nil if there are fewer than N.
func (db *DB) GetSnapshotN(n int) (*Snapshot, error) {
	row := db.conn.QueryRow(
		"SELECT id, taken_at, version FROM snapshots ORDER BY id DESC LIMIT 1 OFFSET ?",
		n-1,
	)
	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &takenAt, &s.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}

// InsertMetric records one named metric for a snapshot.
func (db *DB) InsertMetric(snapshotID int64, name string, value float64, detail string) error {
	_, err := db.conn.Exec(
		"INSERT INTO snapshot_metrics (snapshot_id, metric_name, metric_value, detail) VALUES (?, ?, ?, ?)",
		snapshotID, name, value, detail,
	)
	return err
}

// GetMetrics returns all metrics for a snapshot.
func (db *DB) GetMetrics(snapshotID int64) ([]Metric, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, metric_name, metric_value, detail FROM snapshot_metrics WHERE snapshot_id = ?",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []Metric
	for rows.Next() {
		var m Metric
		var detail sql.NullString
		if err := rows.Scan(&m.ID, &m.SnapshotID, &m.Name, &m.Value, &detail); err != nil {
			return nil, err
		}
		m.Detail = detail.String
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// Compare returns the deltas of metric names present in both snapshots,
// sorted by name.
func (db *DB) Compare(previousID, currentID int64) ([]Delta, error) {
	prev, err := db.GetMetrics(previousID)
	if err != nil {
		return nil, err
	}
	curr, err := db.GetMetrics(currentID)
	if err != nil {
		return nil, err
	}

	prevByName := make(map[string]float64, len(prev))
	for _, m := range prev {
		prevByName[m.Name] = m.Value
	}

	var deltas []Delta
	for _, m := range curr {
		p, ok := prevByName[m.Name]
		if !ok {
			continue
		}
		deltas = append(deltas, Delta{
			Name:     m.Name,
			Previous: p,
			Current:  m.Value,
			Change:   m.Value - p,
		})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Name < deltas[j].Name })
	return deltas, nil
}
