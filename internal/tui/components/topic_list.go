package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/topics/internal/domain"
	"github.com/mmcdole/topics/internal/tui/styles"
)

// Layout constants for the topic list
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and the footer line) each take 1 line
	ScrollIndicatorLines = 2
)

// TopicList is a scrollable list of topics with a local fuzzy filter.
// It renders whatever slice it is handed and never mutates it.
type TopicList struct {
	topics []domain.Topic

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	title string

	// Footer state mirrored from the list snapshot
	loadingMore  bool
	hasMore      bool
	loaded       bool
	spinnerFrame int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into topics
}

// NewTopicList creates an empty topic list
func NewTopicList(title string) *TopicList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &TopicList{
		title:       title,
		filterInput: ti,
	}
}

// SetTopics replaces the rendered topics. A reset moves the cursor back to
// the top; otherwise the selection is kept, which is what an appended page
// needs.
func (l *TopicList) SetTopics(topics []domain.Topic, reset bool) {
	l.topics = topics
	if reset {
		l.cursor = 0
		l.offset = 0
	}
	if l.filterActive && l.filterQuery != "" {
		l.applyFilter(false)
	}
	if count := l.ItemCount(); l.cursor >= count {
		l.cursor = max(count-1, 0)
	}
	l.ensureVisible()
}

// SetFooter mirrors paging state for the last line of the list
func (l *TopicList) SetFooter(loaded, loadingMore, hasMore bool) {
	l.loaded = loaded
	l.loadingMore = loadingMore
	l.hasMore = hasMore
}

// Update handles navigation and filter input
func (l *TopicList) Update(msg tea.Msg) tea.Cmd {
	keyMsg, isKey := msg.(tea.KeyMsg)

	// Typing into the filter
	if l.filterActive && l.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, TopicListKeys.Escape):
				l.clearFilter()
				return nil
			case key.Matches(keyMsg, TopicListKeys.Enter):
				l.filterInput.Blur()
				return nil
			case keyMsg.String() == "backspace" && l.filterInput.Value() == "":
				l.clearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter(true)
		return cmd
	}

	if !isKey {
		return nil
	}

	// Filter applied but blurred: navigation over the matches
	if l.filterActive {
		switch {
		case key.Matches(keyMsg, TopicListKeys.Escape):
			l.clearFilter()
			return nil
		case key.Matches(keyMsg, TopicListKeys.Filter):
			l.filterInput.Focus()
			return nil
		}
	}

	count := l.ItemCount()
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, TopicListKeys.Down):
		if l.cursor < count-1 {
			l.cursor++
		}
	case key.Matches(keyMsg, TopicListKeys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(keyMsg, TopicListKeys.Home):
		l.cursor = 0
	case key.Matches(keyMsg, TopicListKeys.End):
		l.cursor = count - 1
	case key.Matches(keyMsg, TopicListKeys.HalfDown):
		l.cursor = min(l.cursor+l.maxVisible/2, count-1)
	case key.Matches(keyMsg, TopicListKeys.HalfUp):
		l.cursor = max(l.cursor-l.maxVisible/2, 0)
	case key.Matches(keyMsg, TopicListKeys.PageDown):
		l.cursor = min(l.cursor+l.maxVisible, count-1)
	case key.Matches(keyMsg, TopicListKeys.PageUp):
		l.cursor = max(l.cursor-l.maxVisible, 0)
	}
	l.ensureVisible()
	return nil
}

// View renders the list inside a border
func (l *TopicList) View() string {
	style := styles.ActiveBorder
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(l.width - frameW).
		Height(l.height - frameH).
		Render(l.renderContent())
}

// SetSize sets the outer dimensions
func (l *TopicList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// SetTitle sets the header line
func (l *TopicList) SetTitle(title string) {
	l.title = title
}

// Title returns the header line
func (l *TopicList) Title() string {
	return l.title
}

// SetSpinnerFrame updates the spinner animation frame
func (l *TopicList) SetSpinnerFrame(frame int) {
	l.spinnerFrame = frame
}

// Selected returns the topic under the cursor
func (l *TopicList) Selected() (domain.Topic, bool) {
	count := l.ItemCount()
	if count == 0 || l.cursor >= count {
		return domain.Topic{}, false
	}
	return l.topics[l.mapIndex(l.cursor)], true
}

// SelectedIndex returns the cursor position among the visible rows
func (l *TopicList) SelectedIndex() int {
	return l.cursor
}

// ItemCount returns the number of rows shown, after filtering
func (l *TopicList) ItemCount() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.topics)
}

// AtEnd reports whether the cursor sits on the last row of the unfiltered
// list. Reaching it asks for the next page.
func (l *TopicList) AtEnd() bool {
	if l.filterActive || len(l.topics) == 0 {
		return false
	}
	return l.cursor == len(l.topics)-1
}

// ToggleFilter activates the filter input
func (l *TopicList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *TopicList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if the filter input has focus
func (l *TopicList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all topics
func (l *TopicList) ClearFilter() {
	l.clearFilter()
}

func (l *TopicList) recalcMaxVisible() {
	interiorHeight := l.height - BorderHeight
	l.maxVisible = interiorHeight - ScrollIndicatorLines - 1 // -1 for title
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *TopicList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *TopicList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
	l.ensureVisible()
}

// topicTitles adapts topics to fuzzy.Source
type topicTitles []domain.Topic

func (t topicTitles) String(i int) string { return strings.ToLower(t[i].Title) }
func (t topicTitles) Len() int            { return len(t) }

func (l *TopicList) applyFilter(resetCursor bool) {
	query := l.filterInput.Value()
	l.filterQuery = query

	if query == "" {
		l.filteredIdx = nil
		return
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), topicTitles(l.topics))
	l.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		l.filteredIdx[i] = match.Index
	}

	if resetCursor {
		l.cursor = 0
		l.offset = 0
	}
}

func (l *TopicList) mapIndex(i int) int {
	if l.filteredIdx != nil && i < len(l.filteredIdx) {
		return l.filteredIdx[i]
	}
	return i
}

// Rendering

func (l *TopicList) renderContent() string {
	itemWidth := l.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	count := l.ItemCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No topics")
		if l.filterActive && l.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n" + " " + "\n" + emptyMsg + "\n" + " "
		if l.filterActive {
			content += "\n" + l.renderFilterBar()
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderTopic(l.topics[l.mapIndex(i)], i == l.cursor, itemWidth))
	}

	// Header and footer lines are always reserved to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}

	footer := " "
	switch {
	case end < count:
		footer = styles.DimStyle.Render("↓ more")
	case l.filterActive:
	case l.loadingMore:
		footer = styles.RenderSpinner(l.spinnerFrame) + styles.DimStyle.Render(" Loading more...")
	case l.loaded && !l.hasMore:
		footer = styles.DimStyle.Render("end of list")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	return content
}

// TopicMeta is the secondary text for a topic row: node, author, replies and
// last activity
func TopicMeta(t domain.Topic) string {
	parts := make([]string, 0, 4)
	if t.NodeName != "" {
		parts = append(parts, t.NodeName)
	}
	if login := t.User.Login; login != "" {
		parts = append(parts, login)
	}
	parts = append(parts, t.FormattedReplies())
	if at := t.ActivityAt(); !at.IsZero() {
		parts = append(parts, humanize.Time(at))
	}
	return strings.Join(parts, " · ")
}

func (l *TopicList) renderTopic(t domain.Topic, selected bool, width int) string {
	markerChar := styles.NormalChar
	markerFg := styles.DimGray
	if t.Excellent {
		markerChar = styles.ExcellentChar
		markerFg = styles.Gold
	}

	meta := TopicMeta(t)
	metaFg := styles.DimGray

	// width - marker(1) - spaces(2) - margins(2)
	available := width - 5
	metaWidth := lipgloss.Width(meta)
	if metaWidth > available/2 {
		meta = styles.Truncate(meta, available/2)
		metaWidth = lipgloss.Width(meta)
	}
	titleWidth := max(available-metaWidth-1, 5)
	title := styles.Pad(t.Title, titleWidth)

	parts := []styles.RowPart{
		{Text: markerChar, Foreground: &markerFg},
		{Text: " " + title + " ", Foreground: nil},
		{Text: meta, Foreground: &metaFg},
	}

	return styles.RenderListRow(parts, selected, width)
}

func (l *TopicList) renderFilterBar() string {
	input := l.filterInput.View()

	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.ItemCount(), len(l.topics)))
	}
	return input + countStr
}
