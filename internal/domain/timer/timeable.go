package timer

import (
	"strings"
	"time"
)

// Timeable is the "has an end time" capability shared by every pending game
// action. Kinds embed it by value.
//
// A nil EndedAt means the action was never scheduled. Remaining is then 0, so
// the action counts as expired; the same holds for timestamps that failed to
// parse (see ParseEndedAt).
type Timeable struct {
	EndedAt *time.Time
}

// NewTimeable schedules completion at endedAt
func NewTimeable(endedAt time.Time) Timeable {
	t := endedAt.UTC()
	return Timeable{EndedAt: &t}
}

// TimeableFrom builds a Timeable from a raw ended_at value of any supported shape
func TimeableFrom(raw any) Timeable {
	t, ok := ParseEndedAt(raw)
	if !ok {
		return Timeable{}
	}
	return Timeable{EndedAt: &t}
}

// Remaining returns the whole seconds left until EndedAt, floored at zero.
// Fractions are truncated, never rounded up.
func (t Timeable) Remaining(now time.Time) int64 {
	if t.EndedAt == nil {
		return 0
	}
	d := t.EndedAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// IsExpired reports whether Remaining has reached zero
func (t Timeable) IsExpired(now time.Time) bool {
	return t.Remaining(now) == 0
}

// IsScheduled reports whether an end time is set
func (t Timeable) IsScheduled() bool {
	return t.EndedAt != nil
}

// EndsAt returns the scheduled end time, or the zero time when unset
func (t Timeable) EndsAt() time.Time {
	if t.EndedAt == nil {
		return time.Time{}
	}
	return *t.EndedAt
}

// endedAtLayouts are tried in order for string values. Drivers and older
// writers disagree on the format of stored timestamps.
var endedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseEndedAt normalises an ended_at value that may arrive as a time value,
// a string or nil. It never fails loudly: anything it cannot interpret yields
// ok == false, which callers treat as "unset".
func ParseEndedAt(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.UTC(), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return v.UTC(), true
	case string:
		return parseEndedAtString(v)
	case []byte:
		return parseEndedAtString(string(v))
	default:
		return time.Time{}, false
	}
}

func parseEndedAtString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range endedAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
