package chathub

import "errors"

var (
	// ErrMalformedInput rejects an invocation before anything is persisted.
	ErrMalformedInput = errors.New("malformed input")
	// ErrStoreUnavailable means the message store failed; the caller must be told.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAuthenticationMissing refuses a connection with no trusted user id.
	ErrAuthenticationMissing = errors.New("authentication missing")
)
