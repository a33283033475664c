package event

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Filter narrows the event stream on load. Zero values mean no constraint.
type Filter struct {
	Since   time.Time
	Until   time.Time
	Project string
	Source  string
}

// Load reads events.jsonl and returns the normalized events matching the
// filter, in file order. Data-quality problems never surface as errors:
// blank or malformed lines, records without an ID, and records with an
// unparseable timestamp are skipped. A missing file yields an empty result.
func Load(path string, f Filter) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []Event

	scanner := bufio.NewScanner(file)
	// Increase buffer for long JSONL lines (up to 10MB).
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if e.ID == "" || e.Time.IsZero() {
			continue
		}
		if e.Source == "" {
			e.Source = "unknown"
		}

		if !f.Since.IsZero() && e.Time.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && e.Time.After(f.Until) {
			continue
		}
		if f.Project != "" && e.Project != f.Project {
			continue
		}
		if f.Source != "" && e.Source != f.Source {
			continue
		}

		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return events, err
	}

	return events, nil
}

// Append writes events to the log file, one JSON object per line, creating
// the parent directory if needed. The log itself is append-only; the engine
// never rewrites it.
func Append(path string, events []Event) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			_ = file.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// LoadIDs returns the set of event IDs already present in the log. Used by
// backfill to keep re-runs idempotent.
func LoadIDs(path string) (map[string]bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	defer file.Close()

	ids := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		var rec struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if rec.ID != "" {
			ids[rec.ID] = true
		}
	}
	return ids, scanner.Err()
}
