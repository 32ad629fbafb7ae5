package persistence

import (
	"database/sql/driver"
	"time"

	"github.com/andrescamacho/solarion-go/internal/domain/timer"
)

// LenientTime is an ended_at column that never fails to scan. Rows written by
// older clients may hold strings in assorted layouts, NULL, or garbage;
// anything unreadable scans as unset.
type LenientTime struct {
	Time  time.Time
	Valid bool
}

// NewLenientTime wraps a known time
func NewLenientTime(t time.Time) LenientTime {
	return LenientTime{Time: t.UTC(), Valid: true}
}

// Scan implements sql.Scanner
func (lt *LenientTime) Scan(src interface{}) error {
	*lt = lenientFrom(timer.TimeableFrom(src))
	return nil
}

// Value implements driver.Valuer
func (lt LenientTime) Value() (driver.Value, error) {
	if !lt.Valid {
		return nil, nil
	}
	return lt.Time.UTC(), nil
}

// GormDataType maps the column to the dialect's timestamp type
func (LenientTime) GormDataType() string {
	return "time"
}

// Timeable converts the column into the domain value
func (lt LenientTime) Timeable() timer.Timeable {
	if !lt.Valid {
		return timer.Timeable{}
	}
	return timer.NewTimeable(lt.Time)
}

func lenientFrom(t timer.Timeable) LenientTime {
	if t.EndedAt == nil {
		return LenientTime{}
	}
	return NewLenientTime(*t.EndedAt)
}
