package ports

import (
	"context"
	"errors"
)

// ErrGateNotConfigured is the recognized no-op outcome for a gate with
// missing credentials. Callers proceed without the gating side effect;
// it is distinct from a failure.
var ErrGateNotConfigured = errors.New("gate not configured")

// Gate toggles remote access to the distraction source. Both verbs are
// idempotent at the remote end and keyed by a fixed domain. Implementations
// must carry their own short network timeout so a slow remote never stalls
// a session-start request.
type Gate interface {
	// Block denies access to the distraction source
	Block(ctx context.Context) error

	// Unblock allows access to the distraction source
	Unblock(ctx context.Context) error
}
