package utils

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// GenerateLockOwner creates a human-readable owner token for a keyed lock.
// Format: {operation}-{hostname}-{8charHexUUID}
//
// Example:
//   - Input: operation="sweep", hostname "game-web-01.internal"
//   - Output: "sweep-game-web-01-a3f8e2b1"
//
// The token is stored with the lock row so that only the acquiring process
// can release it, and shows up in logs when a sweep is skipped.
func GenerateLockOwner(operation string) string {
	return operation + "-" + shortHostname() + "-" + generateShortUUID()
}

// shortHostname returns the first DNS label of the hostname, or "local".
//   - "game-web-01.internal" -> "game-web-01"
//   - "worker" -> "worker"
func shortHostname() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "local"
	}
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	return host
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
