// Package trace generates request trace IDs.
package trace

import "github.com/google/uuid"

// NewID returns a random UUID string used to correlate a single
// evaluation across logs, audit entries, and the response envelope.
func NewID() string {
	return uuid.NewString()
}
