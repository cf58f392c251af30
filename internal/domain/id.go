package domain

import "github.com/google/uuid"

// NewID returns a fresh record identifier. UUIDv7 combines a millisecond
// timestamp with random bits, which keeps collisions negligible across the
// devices that edit the shared documents.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
