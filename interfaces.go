package handodds

import "context"

// CoefficientCache stores binomial coefficients keyed by the (n, k) pair the
// caller asked for. Entries are never invalidated.
type CoefficientCache interface {
	// Load returns the cached coefficient for key
	Load(key CombinationKey) (float64, bool)

	// Store records value for key; an existing entry is left untouched
	Store(key CombinationKey, value float64)

	// Len returns the number of entries visible to this process
	Len() int
}

// InputStore persists the user-editable fields of a Session
type InputStore interface {
	// Load returns the persisted inputs for sessionID or ErrStateNotFound
	Load(ctx context.Context, sessionID string) (*PersistedInputs, error)

	// Save persists inputs for sessionID
	Save(ctx context.Context, sessionID string, inputs *PersistedInputs) error

	// Delete drops the persisted inputs for sessionID
	Delete(ctx context.Context, sessionID string) error
}

// PrecisionHook receives coefficients whose incremental computation drifted
// further than the configured tolerance from the returned rounded value.
type PrecisionHook func(n, k int, raw, rounded float64)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}
