package pager

import "github.com/mmcdole/topics/internal/domain"

// Trigger identifies what asked for a page
type Trigger int

const (
	TriggerRefresh Trigger = iota
	TriggerLoadMore
)

// String returns the trigger name used in logs and metric labels
func (t Trigger) String() string {
	switch t {
	case TriggerRefresh:
		return "refresh"
	case TriggerLoadMore:
		return "load_more"
	default:
		return "unknown"
	}
}

// Request is one page request: offset 0 replaces the list, any other offset
// appends to it
type Request struct {
	Filter  domain.Filter
	Offset  int
	Limit   int
	Trigger Trigger
}

// phase is the controller's tagged state. Exactly one request can be
// outstanding, and only the idle phase accepts a new one.
type phase interface {
	accepts() bool
}

type idlePhase struct{}

func (idlePhase) accepts() bool { return true }

type loadingPhase struct {
	req Request
	gen uint64
}

func (loadingPhase) accepts() bool { return false }
