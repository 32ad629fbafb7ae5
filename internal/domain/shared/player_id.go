package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// PlayerID is a value object representing a player's unique identifier
type PlayerID struct {
	value int64
}

// NewPlayerID creates a new PlayerID value object
func NewPlayerID(id int64) (PlayerID, error) {
	if id <= 0 {
		return PlayerID{}, NewValidationError("player_id", "must be positive")
	}
	return PlayerID{value: id}, nil
}

// ParsePlayerID parses the identifier carried by the X-Player-ID header or a CLI flag
func ParsePlayerID(raw string) (PlayerID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PlayerID{}, NewValidationError("player_id", "is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return PlayerID{}, NewValidationError("player_id", fmt.Sprintf("invalid value %q", raw))
	}
	return NewPlayerID(id)
}

// MustNewPlayerID creates a new PlayerID value object, panicking if invalid.
// Use only for ids read back from the database.
func MustNewPlayerID(id int64) PlayerID {
	playerID, err := NewPlayerID(id)
	if err != nil {
		panic(err)
	}
	return playerID
}

// Value returns the integer value of the PlayerID
func (p PlayerID) Value() int64 {
	return p.value
}

// String returns a string representation of the PlayerID
func (p PlayerID) String() string {
	return strconv.FormatInt(p.value, 10)
}

// Equals checks if two PlayerIDs are equal
func (p PlayerID) Equals(other PlayerID) bool {
	return p.value == other.value
}

// IsZero reports whether the id was never set
func (p PlayerID) IsZero() bool {
	return p.value == 0
}
