package timer

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies one of the five pending-action tables
type Kind string

const (
	KindConstruction Kind = "construction"
	KindUpgrade      Kind = "upgrade"
	KindTraining     Kind = "training"
	KindResearch     Kind = "research"
	KindMovement     Kind = "movement"
)

// Kinds lists every kind in the fixed order the sweeper processes them
var Kinds = []Kind{
	KindConstruction,
	KindUpgrade,
	KindTraining,
	KindResearch,
	KindMovement,
}

// ParseKind converts a user-supplied name into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

func (k Kind) String() string {
	return string(k)
}

// Entity is implemented by the five pending kinds
type Entity interface {
	PendingID() int64
	Kind() Kind
	EndsAt() time.Time
	Remaining(now time.Time) int64
	IsExpired(now time.Time) bool
}

// Ref addresses a pending entity without carrying its payload. It is all a
// deferred completion attempt needs.
type Ref struct {
	Kind Kind
	ID   int64
}

// RefOf returns the Ref of a loaded entity
func RefOf(e Entity) Ref {
	return Ref{Kind: e.Kind(), ID: e.PendingID()}
}

func (r Ref) String() string {
	return fmt.Sprintf("%s[%d]", r.Kind, r.ID)
}
