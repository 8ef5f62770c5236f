// Package uuid generates and validates the UUIDv7 identifiers used as
// primary keys across all Patrimo tables. UUIDv7 embeds a millisecond
// Unix timestamp in its most significant bits, so lexicographic order of
// ids matches insertion order. The quote store relies on this property
// to break ties between observations with identical timestamps.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New generates a new UUIDv7 string based on the current timestamp.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to UUIDv4 if the system clock or entropy source misbehaves.
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates and canonicalizes a UUID string.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
