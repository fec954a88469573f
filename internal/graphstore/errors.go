package graphstore

import (
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	ErrTimeout = errors.New("graph store call timed out")
	ErrClosed  = errors.New("graph store client is closed")
)

// IsRetryable reports whether a failed call may succeed if repeated:
// timeouts, and whatever the driver itself classifies as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) {
		return true
	}
	return neo4j.IsRetryable(err)
}
