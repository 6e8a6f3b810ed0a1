package pager

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mmcdole/topics/internal/domain"
)

// Kind classifies a failed page request
type Kind int

const (
	// KindNetwork means no usable response was received
	KindNetwork Kind = iota
	// KindNotFound means the server answered 404, usually an invalid node
	KindNotFound
	// KindHTTP means the server answered with another non-success status
	KindHTTP
)

// String returns the kind name used in logs and metric labels
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// ListError is the classified failure exposed to the display layer. The
// display layer never inspects raw transport errors.
type ListError struct {
	Kind       Kind
	StatusCode int    // Set for KindNotFound and KindHTTP
	Message    string // Transport description for KindNetwork
	Err        error
}

// Title returns a short heading for error views
func (e *ListError) Title() string {
	switch e.Kind {
	case KindNetwork:
		return "Network Error"
	case KindNotFound:
		return "Not Found"
	default:
		return "Server Error"
	}
}

// Detail returns a one-line description for error views and notices
func (e *ListError) Detail() string {
	switch e.Kind {
	case KindNetwork:
		return e.Message
	case KindNotFound:
		return "The list you requested does not exist."
	default:
		if text := http.StatusText(e.StatusCode); text != "" {
			return fmt.Sprintf("The server responded with %d %s.", e.StatusCode, text)
		}
		return fmt.Sprintf("The server responded with status %d.", e.StatusCode)
	}
}

// Error implements the error interface
func (e *ListError) Error() string {
	return e.Title() + ": " + e.Detail()
}

// Unwrap implements error unwrapping for errors.Is/As
func (e *ListError) Unwrap() error {
	return e.Err
}

// Classify maps a repository error to a ListError. A received response with
// status 404 is KindNotFound, any other status is KindHTTP, and everything
// else (no response, cancelled, undecodable body) is KindNetwork.
func Classify(err error) *ListError {
	if err == nil {
		return nil
	}

	var listErr *ListError
	if errors.As(err, &listErr) {
		return listErr
	}

	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound {
			return &ListError{Kind: KindNotFound, StatusCode: statusErr.StatusCode, Err: err}
		}
		return &ListError{Kind: KindHTTP, StatusCode: statusErr.StatusCode, Err: err}
	}

	return &ListError{Kind: KindNetwork, Message: err.Error(), Err: err}
}
