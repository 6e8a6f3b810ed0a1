package pager

import "github.com/mmcdole/topics/internal/domain"

// Severity tells the display layer how to present a failure
type Severity int

const (
	// SeverityNone means there is no error to show
	SeverityNone Severity = iota
	// SeverityTransient means content is on screen: show a dismissible notice
	SeverityTransient
	// SeverityBlocking means nothing usable is on screen: replace the list
	// with an error view offering retry
	SeverityBlocking
)

// Snapshot is an immutable view of the controller state handed to the
// display layer after every transition. Items must not be modified.
type Snapshot struct {
	Filter  domain.Filter
	Items   []domain.Topic
	Loaded  bool // False until the first successful page
	Loading bool
	Pending Trigger // What is in flight; meaningful only while Loading
	HasMore bool
	Err     *ListError
}

// Severity derives error presentation from the current item count
func (s Snapshot) Severity() Severity {
	switch {
	case s.Err == nil:
		return SeverityNone
	case len(s.Items) > 0:
		return SeverityTransient
	default:
		return SeverityBlocking
	}
}

// Len returns the number of items held
func (s Snapshot) Len() int {
	return len(s.Items)
}

// Empty reports a successfully loaded list with no items
func (s Snapshot) Empty() bool {
	return s.Loaded && len(s.Items) == 0
}
