package domain

import "errors"

// Error kinds surfaced by the engine. Callers inspect them with errors.Is;
// every error returned by the core wraps exactly one of these.
var (
	// ErrNotFound: collection or document absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict: duplicate collection name, or a store opened with a
	// different embedding model than it was created with.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument: empty content, bad pagination bounds,
	// non-positive top_k, threshold outside the score range.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrModelUnavailable: unknown model identifier or the inference
	// endpoint cannot serve it.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrEmbedding: inference failed on otherwise valid input.
	ErrEmbedding = errors.New("embedding failed")
	// ErrStorage: I/O failure reading or writing persisted state.
	ErrStorage = errors.New("storage failure")
	// ErrTransfer: malformed tabular input or a named column is missing.
	ErrTransfer = errors.New("transfer failed")
)
