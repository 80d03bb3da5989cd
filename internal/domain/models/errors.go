package models

import "errors"

// Failure modes of the refresh-and-forecast pipeline. Callers match with
// errors.Is; wrapped detail carries the provider/process context.
var (
	// ErrDataSourceUnavailable means the upstream fetch failed (network,
	// rate limit, unknown symbol). Refresh is skipped and stale data served
	// when any exists.
	ErrDataSourceUnavailable = errors.New("market data source unavailable")

	// ErrInsufficientHistory means fewer usable training rows than the
	// configured minimum remained after feature construction.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrProcessFailed means the numeric subprocess exited non-zero.
	ErrProcessFailed = errors.New("forecast process failed")

	// ErrMalformedOutput means the subprocess exited zero but its stdout was
	// not a valid forecast document.
	ErrMalformedOutput = errors.New("malformed forecast output")

	// ErrStoreWriteFailed means the persistence layer rejected an upsert or
	// replace.
	ErrStoreWriteFailed = errors.New("store write failed")
)
