package db

import (
	"errors"

	"github.com/kailas-cloud/sportdex/internal/domain"
)

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrIndexExists = errors.New("db: index already exists")
)

// Op constants map to Redis command names for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpSugAdd      = "FT.SUGADD"
	OpSugGet      = "FT.SUGGET"
	OpJSONSet     = "JSON.SET"
	OpHSet        = "HSET"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
// Unavailable marks transport failures: the command never got a server reply.
type Error struct {
	Op          string
	Err         error
	Unavailable bool
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

// Unwrap exposes the cause and, for transport failures, domain.ErrStoreUnavailable.
func (e *Error) Unwrap() []error {
	if e.Unavailable {
		return []error{e.Err, domain.ErrStoreUnavailable}
	}
	return []error{e.Err}
}
