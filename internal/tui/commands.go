package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/topics/internal/domain"
	"github.com/mmcdole/topics/internal/pager"
	"github.com/mmcdole/topics/internal/service"
)

// Command factories for async operations

// FetchPageCmd runs a dispatched fetch off the update loop. The controller
// bounds it with its own timeout.
func FetchPageCmd(ctrl *pager.Controller, fetch *pager.Fetch) tea.Cmd {
	return func() tea.Msg {
		return PageLoadedMsg{Controller: ctrl, Result: fetch.Run(context.Background())}
	}
}

// ResolveTitleCmd resolves the header label independently of list loading
func ResolveTitleCmd(svc *service.TitleService, filter domain.Filter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		return TitleResolvedMsg{Filter: filter, Title: svc.Resolve(ctx, filter)}
	}
}

// LoadNodesCmd loads the node list for the picker
func LoadNodesCmd(svc *service.NodeService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		nodes, err := svc.Nodes(ctx)
		return NodesLoadedMsg{Nodes: nodes, Err: err}
	}
}

// OpenCmd opens a site path in the browser
func OpenCmd(opener Opener, path string) tea.Cmd {
	return func() tea.Msg {
		return OpenedMsg{Path: path, Err: opener.Open(path)}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
