package tui

import (
	"github.com/mmcdole/topics/internal/domain"
	"github.com/mmcdole/topics/internal/pager"
)

// Message types for the TUI

// PageLoadedMsg carries a finished page fetch back to the controller that
// dispatched it
type PageLoadedMsg struct {
	Controller *pager.Controller
	Result     pager.Result
}

// TitleResolvedMsg carries the header label for a filter
type TitleResolvedMsg struct {
	Filter domain.Filter
	Title  string
}

// NodesLoadedMsg carries the node list for the picker
type NodesLoadedMsg struct {
	Nodes []domain.Node
	Err   error
}

// OpenedMsg reports the outcome of opening a page in the browser
type OpenedMsg struct {
	Path string
	Err  error
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message it was scheduled for
type ClearStatusMsg struct {
	Seq int
}
