package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
	"github.com/mmcdole/topics/internal/opener"
	"github.com/mmcdole/topics/internal/pager"
	"github.com/mmcdole/topics/internal/service"
	"github.com/mmcdole/topics/internal/tui/components"
	"github.com/mmcdole/topics/internal/tui/styles"
)

// Timing for animations and transient notices
const (
	tickInterval      = 100 * time.Millisecond
	transientDuration = 5 * time.Second
	noticeDuration    = 3 * time.Second

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// Opener opens a site path in the browser
type Opener interface {
	Open(path string) error
}

// Deps are the collaborators the model needs
type Deps struct {
	Topics   domain.TopicRepository
	Titles   *service.TitleService
	Nodes    *service.NodeService
	Opener   Opener
	Logger   zerolog.Logger
	PageSize int
	Timeout  time.Duration // Per-page fetch deadline
}

// Model is the main Bubble Tea model. It owns exactly one list controller at
// a time; a new filter gets a new controller.
type Model struct {
	Ready bool

	deps   Deps
	logger zerolog.Logger

	// List state
	Controller *pager.Controller
	Snapshot   pager.Snapshot
	Title      string

	// UI Components
	List       *components.TopicList
	ErrorView  components.ErrorView
	NodePicker components.NodePicker

	// Dimensions
	Width  int
	Height int

	// UI state
	ShowHelp     bool
	StatusMsg    string
	StatusIsErr  bool
	StatusIsOK   bool
	statusSeq    int
	SpinnerFrame int
}

// NewModel creates a model listing filter
func NewModel(deps Deps, filter domain.Filter) Model {
	m := Model{
		deps:       deps,
		logger:     deps.Logger.With().Str("component", "tui").Logger(),
		List:       components.NewTopicList(""),
		ErrorView:  components.NewErrorView(),
		NodePicker: components.NewNodePicker(),
	}
	m.useFilter(filter)
	return m
}

// Init starts the first page and the title lookup
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		ResolveTitleCmd(m.deps.Titles, m.Controller.Filter()),
		TickCmd(tickInterval),
	)
}

// Filter returns the filter being listed
func (m Model) Filter() domain.Filter {
	return m.Controller.Filter()
}

// useFilter swaps in a fresh controller for filter and closes the old one
func (m *Model) useFilter(filter domain.Filter) {
	if m.Controller != nil {
		m.Controller.Close()
	}
	m.Controller = pager.New(m.deps.Topics, filter,
		pager.WithLimit(m.deps.PageSize),
		pager.WithTimeout(m.deps.Timeout),
		pager.WithLogger(m.deps.Logger),
	)
	m.Snapshot = m.Controller.Snapshot()
	m.Title = m.deps.Titles.Placeholder(filter)
	m.ErrorView.SetError(nil)
	m.List.ClearFilter()
	m.List.SetTopics(nil, true)
	m.syncList()
	m.logger.Info().Str("filter", filter.String()).Msg("listing")
}

// switchFilter lists filter from scratch: new controller, title and first page
func (m *Model) switchFilter(filter domain.Filter) tea.Cmd {
	if filter == m.Controller.Filter() {
		return nil
	}
	m.useFilter(filter)
	return tea.Batch(m.refresh(), ResolveTitleCmd(m.deps.Titles, filter))
}

// refresh asks for the first page. Any error on screen is cleared at trigger
// time.
func (m *Model) refresh() tea.Cmd {
	fetch, ok := m.Controller.Refresh()
	if !ok {
		return nil
	}
	m.ErrorView.SetError(nil)
	if m.StatusIsErr {
		m.clearStatus()
	}
	m.Snapshot = m.Controller.Snapshot()
	m.syncList()
	return FetchPageCmd(m.Controller, fetch)
}

// retry is refresh offered by the blocking error view
func (m *Model) retry() tea.Cmd {
	fetch, ok := m.Controller.Retry()
	if !ok {
		return nil
	}
	m.ErrorView.SetError(nil)
	m.Snapshot = m.Controller.Snapshot()
	m.syncList()
	return FetchPageCmd(m.Controller, fetch)
}

func (m *Model) loadMore() tea.Cmd {
	fetch, ok := m.Controller.LoadMore()
	if !ok {
		return nil
	}
	m.Snapshot = m.Controller.Snapshot()
	m.syncList()
	return FetchPageCmd(m.Controller, fetch)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		// Init dispatches on a copy of the model; pick up its loading state
		m.Snapshot = m.Controller.Snapshot()
		m.syncList()
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.List.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(tickInterval)

	case PageLoadedMsg:
		return m.handlePageLoaded(msg)

	case TitleResolvedMsg:
		// Late answers for a previous filter are ignored
		if msg.Filter == m.Controller.Filter() {
			m.Title = msg.Title
			m.syncList()
		}
		return m, nil

	case NodesLoadedMsg:
		m.NodePicker.SetNodes(msg.Nodes, msg.Err)
		return m, nil

	case OpenedMsg:
		if msg.Err != nil {
			m.logger.Warn().Err(msg.Err).Str("path", msg.Path).Msg("open failed")
			return m, m.setStatus("Could not open browser: "+msg.Err.Error(), true, noticeDuration)
		}
		cmd := m.setStatus("Opened "+msg.Path, false, noticeDuration)
		m.StatusIsOK = true
		return m, cmd

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.clearStatus()
		}
		return m, nil
	}

	// Cursor blink and other input messages
	if m.NodePicker.IsVisible() {
		var cmd tea.Cmd
		m.NodePicker, cmd, _ = m.NodePicker.Update(msg)
		return m, cmd
	}
	if m.List.IsFilterTyping() {
		return m, m.List.Update(msg)
	}
	return m, nil
}

func (m Model) handlePageLoaded(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Controller != m.Controller {
		// The filter changed; the old controller is closed and drops it
		msg.Controller.Apply(msg.Result)
		return m, nil
	}

	snap, applied := m.Controller.Apply(msg.Result)
	if !applied {
		return m, nil
	}
	m.Snapshot = snap
	// A failed refresh leaves the items alone, so the cursor stays put
	m.List.SetTopics(snap.Items, snap.Err == nil && msg.Result.Request.Offset == 0)
	m.syncList()

	switch snap.Severity() {
	case pager.SeverityNone:
		m.ErrorView.SetError(nil)
	case pager.SeverityBlocking:
		m.ErrorView.SetError(snap.Err)
	case pager.SeverityTransient:
		return m, m.setStatus(snap.Err.Error(), true, transientDuration)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal layers take input first
	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.NodePicker.IsVisible() {
		var cmd tea.Cmd
		var chosen bool
		m.NodePicker, cmd, chosen = m.NodePicker.Update(msg)
		if chosen {
			if node, ok := m.NodePicker.Selected(); ok {
				filter := m.Controller.Filter()
				filter.NodeID = node.ID
				return m, m.switchFilter(filter)
			}
		}
		return m, cmd
	}

	if m.List.IsFilterTyping() {
		return m, m.List.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		m.Controller.Close()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		if m.ErrorView.IsVisible() {
			return m, m.retry()
		}
		return m, m.refresh()

	case key.Matches(msg, Keys.LoadMore):
		return m, m.loadMore()

	case key.Matches(msg, Keys.CycleType):
		filter := m.Controller.Filter()
		filter.Type = filter.Type.Next()
		return m, m.switchFilter(filter)

	case key.Matches(msg, Keys.PickNode):
		m.NodePicker.Show()
		if m.NodePicker.HasNodes() {
			return m, nil
		}
		m.NodePicker.SetLoading()
		return m, LoadNodesCmd(m.deps.Nodes)

	case key.Matches(msg, Keys.Filter):
		if m.ErrorView.IsVisible() {
			return m, nil
		}
		if m.List.IsFiltering() {
			return m, m.List.Update(msg)
		}
		m.List.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Open):
		if t, ok := m.List.Selected(); ok {
			return m, OpenCmd(m.deps.Opener, opener.TopicIntent(t))
		}
		return m, nil

	case key.Matches(msg, Keys.OpenUser):
		if t, ok := m.List.Selected(); ok {
			if path := opener.UserIntent(t); path != "" {
				return m, OpenCmd(m.deps.Opener, path)
			}
		}
		return m, nil

	case key.Matches(msg, Keys.OpenNode):
		if t, ok := m.List.Selected(); ok {
			return m, OpenCmd(m.deps.Opener, opener.NodeIntent(m.Controller.Filter(), t))
		}
		return m, nil

	case key.Matches(msg, Keys.Escape) && !m.List.IsFiltering():
		m.clearStatus()
		return m, nil
	}

	if m.ErrorView.IsVisible() {
		return m, nil
	}

	cmd := m.List.Update(msg)
	if m.List.AtEnd() {
		// Reaching the last row asks for the next page
		return m, tea.Batch(cmd, m.loadMore())
	}
	return m, cmd
}

func (m *Model) setStatus(text string, isErr bool, d time.Duration) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	m.StatusIsOK = false
	return ClearStatusCmd(m.statusSeq, d)
}

func (m *Model) clearStatus() {
	m.StatusMsg = ""
	m.StatusIsErr = false
	m.StatusIsOK = false
}

// syncList pushes header and footer state into the list component
func (m *Model) syncList() {
	snap := m.Snapshot
	title := m.Title
	if snap.Filter.HasNode() {
		title = fmt.Sprintf("%s · %s", m.Title, snap.Filter.Type.Label())
	}
	if n := snap.Len(); n > 0 {
		title = fmt.Sprintf("%s (%d)", title, n)
	}
	m.List.SetTitle(title)
	m.List.SetFooter(snap.Loaded, snap.Loading && snap.Pending == pager.TriggerLoadMore, snap.HasMore)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	contentHeight := m.Height - ChromeHeight
	m.List.SetSize(m.Width, contentHeight)
	m.ErrorView.SetSize(m.Width, contentHeight)
	m.NodePicker.SetSize(m.Width, m.Height)
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.ShowHelp {
		return m.renderHelp()
	}

	contentHeight := m.Height - ChromeHeight
	var content string
	switch {
	case m.ErrorView.IsVisible():
		content = m.ErrorView.View()
	case !m.Snapshot.Loaded && m.Snapshot.Loading:
		loading := styles.RenderSpinner(m.SpinnerFrame) + styles.DimStyle.Render(" Loading "+m.Title+"...")
		content = lipgloss.Place(m.Width, contentHeight, lipgloss.Center, lipgloss.Center, loading)
	default:
		content = m.List.View()
	}

	view := lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())

	if m.NodePicker.IsVisible() {
		view = m.NodePicker.View()
	}
	return view
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	bar := components.StatusBar{
		Width:        m.Width,
		SpinnerFrame: m.SpinnerFrame,
		Message:      m.StatusMsg,
		IsError:      m.StatusIsErr,
		IsSuccess:    m.StatusIsOK,
		Hints: []components.Hint{
			{Key: "t", Desc: m.Controller.Filter().Type.Label()},
			{Key: "?", Desc: "help"},
		},
	}
	if m.Snapshot.Loading {
		switch m.Snapshot.Pending {
		case pager.TriggerLoadMore:
			bar.Loading = "Loading more..."
		default:
			bar.Loading = "Refreshing..."
		}
	}
	return bar.View()
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      ACTIONS
  j/k        Up/down               Enter  Open topic
  g/Home     First item            u      Open author
  G/End      Last item             o      Open node
  PgUp/PgDn  Scroll page           r      Refresh / retry
  Ctrl+u/d   Scroll half page      n      Load more

LISTS                           OTHER
  /          Filter loaded topics  q      Quit
  t          Next list type        ?      This help
  N          Choose node           Esc    Dismiss

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}
