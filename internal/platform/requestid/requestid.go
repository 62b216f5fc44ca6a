package requestid

import "github.com/google/uuid"

// New returns a fresh request correlation id.
func New() string {
	return uuid.NewString()
}
