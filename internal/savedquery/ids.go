package savedquery

import "github.com/google/uuid"

// IDGenerator produces saved query ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-ordered UUIDv7 ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
