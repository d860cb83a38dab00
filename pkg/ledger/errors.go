package ledger

import "errors"

var (
	// ErrInvalidArgument reports a caller-supplied value that cannot be used,
	// such as an empty username or a negative terminal.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound reports that the user has no login record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSession reports a login/logout pair that cannot form a session.
	// Seeing it from a query means the event sequence is corrupt.
	ErrInvalidSession = errors.New("invalid session")
)
