package session

import (
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

// State is the authentication state of the client.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
	// StatePendingProvisioning holds a credential whose profile the backend has not created yet.
	StatePendingProvisioning
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	case StatePendingProvisioning:
		return "pending_provisioning"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the store state handed to callers and subscribers.
type Snapshot struct {
	State    State
	Loading  bool
	Identity *domain.Identity
}

// RetryConfig bounds the wait for a freshly created profile.
type RetryConfig struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
	MaxAttempts     uint64
}

func DefaultRetry() RetryConfig {
	return RetryConfig{
		InitialInterval: 250 * time.Millisecond,
		Multiplier:      2,
		MaxInterval:     2 * time.Second,
		MaxElapsed:      10 * time.Second,
		MaxAttempts:     6,
	}
}
