package blockio

import "errors"

// Error classification codes. Implementations MAY wrap these with
// additional context; classify with errors.Is.
var (
	// ErrCancelled indicates the stop signal fired before the operation
	// completed.
	ErrCancelled = errors.New("blockio: cancelled")
	// ErrShortRead indicates the underlying file ended before the declared
	// byte range was satisfied.
	ErrShortRead = errors.New("blockio: short read")
)
