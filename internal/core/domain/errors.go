package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Retrieval errors. Retrieve never returns these to its caller; they are
	// logged and the affected unit of work is skipped.

	// ErrCollectionUnavailable indicates the vector service rejected or timed
	// out for one collection. The collection contributes zero candidates.
	ErrCollectionUnavailable = errors.New("collection unavailable")

	// ErrMalformedRegex indicates a stored keyword regex failed to compile.
	// The pattern contributes nothing to boost scoring.
	ErrMalformedRegex = errors.New("malformed keyword regex")

	// ErrMissingChunkMetadata indicates the vector service returned a hash
	// with no corresponding chunk. The hit is dropped.
	ErrMissingChunkMetadata = errors.New("missing chunk metadata")

	// ErrEmptyQuery indicates empty query text or no activated collections.
	ErrEmptyQuery = errors.New("empty query")

	// ErrVectorServiceUnavailable indicates the vector service is not configured.
	ErrVectorServiceUnavailable = errors.New("vector service unavailable")
)
