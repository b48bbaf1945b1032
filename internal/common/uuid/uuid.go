// Package uuid wraps github.com/google/uuid and sets UUIDv7 (time-ordered)
// as the default for all generated identifiers. Time-ordered IDs keep index
// pages warm for entities and versions that are created append-only.
package uuid

import (
	"time"

	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// Nil is the zero UUID value.
var Nil = uuid.Nil

// New returns a new UUIDv7. Panics if generation fails.
func New() UUID {
	u, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return u
}

// NewRandom returns a new UUIDv7 and any error encountered during generation.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// Parse parses a UUID string. Returns an error if the string is not a valid UUID.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// MustParse parses a UUID string and panics if it is not valid.
func MustParse(s string) UUID {
	return uuid.MustParse(s)
}

// Timestamp extracts the creation time embedded in a UUIDv7.
func Timestamp(u UUID) time.Time {
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
