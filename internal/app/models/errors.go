package models

import "errors"

// Domain errors shared between the catalog repository and the enrichment
// pipeline.
var (
	ErrNotFound           = errors.New("requested item not found")
	ErrConflict           = errors.New("item already exists or conflict")
	ErrBadRequest         = errors.New("bad request")
	ErrValidation         = errors.New("validation failed")
	ErrStoreUnavailable   = errors.New("entity store unavailable")
	ErrAlreadyClaimed     = errors.New("entity already claimed by another run")
	ErrRateLimited        = errors.New("generation provider rate limited")
	ErrProviderFailure    = errors.New("generation provider failure")
	ErrMalformedOutput    = errors.New("generation output failed to parse")
	ErrIncompleteContent  = errors.New("generated content missing required fields")
	ErrConstraintViolated = errors.New("persist violated a store constraint")
)
