package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates no response was received from the server
	ErrServerOffline = errors.New("server is unreachable")

	// ErrNodeNotFound indicates the requested node does not exist
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidResponse indicates a response was received but could not be decoded
	ErrInvalidResponse = errors.New("invalid response")
)

// StatusError is returned by repositories when the server answered with a
// non-success HTTP status
type StatusError struct {
	StatusCode int
	Endpoint   string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("%s returned status %d (%s)", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected status %d (%s)", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is(err, ErrNodeNotFound) match a 404 from the node endpoint
func (e *StatusError) Is(target error) bool {
	return target == ErrNodeNotFound && e.StatusCode == http.StatusNotFound
}
