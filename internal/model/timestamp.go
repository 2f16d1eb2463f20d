package model

import (
	"bytes"
	"fmt"
	"time"
)

// Layouts for timestamps that carry no zone offset. The API writes
// Python isoformat() output, which omits the offset for naive datetimes.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

const dateOnlyLayout = "2006-01-02"

// Timestamp is an API timestamp. A value without a zone offset is a wall
// clock reading; In resolves it against the caller's zone.
type Timestamp struct {
	time.Time
	Naive bool
}

// At returns a zoned Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// Wall returns a Timestamp for a wall clock reading with no zone.
func Wall(year int, month time.Month, day, hour, min, sec int) Timestamp {
	return Timestamp{Time: time.Date(year, month, day, hour, min, sec, 0, time.UTC), Naive: true}
}

// In returns the instant in loc. Naive timestamps keep their wall clock.
func (ts Timestamp) In(loc *time.Location) time.Time {
	if !ts.Naive {
		return ts.Time.In(loc)
	}
	t := ts.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// ParseTimestamp parses RFC 3339, naive ISO-8601 and date-only values.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Naive: true}, nil
		}
	}
	// Date-only values are midnight UTC, as browsers read them.
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Timestamp.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	if ts.Naive {
		return []byte(`"` + ts.Time.Format(naiveLayouts[0]) + `"`), nil
	}
	return []byte(`"` + ts.Time.Format(time.RFC3339Nano) + `"`), nil
}

// Present reports whether ts points at a non-empty timestamp.
func (ts *Timestamp) Present() bool {
	return ts != nil && !ts.IsZero()
}
