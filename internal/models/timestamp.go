package models

import (
	"bytes"
	"fmt"
	"time"
)

// naiveLayout is how the workshop backend writes its DateTime columns: no zone, microseconds.
const naiveLayout = "2006-01-02T15:04:05.999999"

// Timestamp is a backend time. Values without a zone are read as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t.UTC()} }

// MarshalJSON writes the zone-less form the backend itself sends.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(naiveLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("timestamp: not a string: %s", b)
	}
	s := string(b[1 : len(b)-1])
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = v
		return nil
	}
	v, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("timestamp: %q is neither RFC3339 nor %s", s, naiveLayout)
	}
	t.Time = v
	return nil
}
