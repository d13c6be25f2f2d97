package catalog

import "errors"

// Sentinel errors returned by the HTTP client.
var (
	// ErrNotFound means the host doesn't know the requested item.
	ErrNotFound = errors.New("catalog item not found")
	// ErrUnauthorized means the API token was rejected.
	ErrUnauthorized = errors.New("catalog request unauthorized")
	// ErrServer means the host failed on its side.
	ErrServer = errors.New("catalog server error")
)
