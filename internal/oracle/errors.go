package oracle

import "errors"

var (
	// ErrUnavailable means the oracle binary is not on PATH. Fatal: the run
	// aborts before the first batch.
	ErrUnavailable = errors.New("oracle binary unavailable")
	// ErrTimeout means one invocation exceeded its hard deadline.
	ErrTimeout = errors.New("oracle call timed out")
	// ErrTransport covers subprocess failures and non-zero exits.
	ErrTransport = errors.New("oracle transport error")
	// ErrParse means the response envelope yielded no usable JSON payload.
	ErrParse = errors.New("oracle response unparseable")
)
