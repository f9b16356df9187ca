package model

import (
	"fmt"
	"strings"
	"time"
)

// naiveISO8601 matches timestamps produced without a zone offset, such as
// Python's datetime.isoformat(). They are interpreted as UTC.
const naiveISO8601 = "2006-01-02T15:04:05.999999999"

// Timestamp is a time.Time that accepts both RFC 3339 and naive ISO-8601
// encodings on the wire. It marshals as RFC 3339 with nanoseconds in UTC.
type Timestamp struct {
	time.Time
}

// Now returns the current time as a Timestamp in UTC.
func Now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

// NewTimestamp wraps t as a Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t}
}

// UnmarshalJSON parses a quoted timestamp, trying RFC 3339 first and falling
// back to zone-less ISO-8601.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(naiveISO8601, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", s)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON encodes the timestamp as RFC 3339 in UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
