package event

import (
	"encoding/json"
	"regexp"
	"time"
)

// sessionIDRe matches <session-identity>-<sequence>. The identity itself may
// contain hyphens (RFC 4122 UUIDs do), so only the trailing digit run is
// treated as the sequence.
var sessionIDRe = regexp.MustCompile(`^(.+)-(\d+)$`)

// SessionID derives the session identity from an event ID by stripping the
// trailing -<sequence> suffix. An ID with no parseable suffix is returned
// unchanged and becomes its own singleton session.
func SessionID(eventID string) string {
	if m := sessionIDRe.FindStringSubmatch(eventID); m != nil {
		return m[1]
	}
	return eventID
}

// timestamp layouts accepted for string-encoded instants, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp normalizes a wire timestamp to a UTC instant. The value may
// be an RFC 3339 (or date-only) string or an epoch-millisecond number.
// Returns false for anything else.
func ParseTimestamp(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
