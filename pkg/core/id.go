package core

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7 string. Records created within the same
// millisecond still get distinct ids thanks to the random tail.
func NewID() ID {
	u, err := uuid.NewV7()
	if err != nil {
		return ID(uuid.NewString())
	}
	return ID(u.String())
}
