package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/topics/internal/domain"
	"github.com/mmcdole/topics/internal/service"
	"github.com/mmcdole/topics/internal/tui/styles"
)

// AllNodes is the picker row that removes the node scope
var AllNodes = domain.Node{Name: "All nodes"}

// NodePicker is the modal for scoping the list to a node
type NodePicker struct {
	input   textinput.Model
	nodes   []domain.Node
	results []domain.Node
	cursor  int
	visible bool
	loading bool
	err     error
	width   int
	height  int
}

// NewNodePicker creates a new node picker
func NewNodePicker() NodePicker {
	ti := textinput.New()
	ti.Placeholder = "Type to search nodes..."
	ti.CharLimit = 60
	ti.Width = 40
	ti.Prompt = "# "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return NodePicker{input: ti}
}

// Show makes the picker visible and focuses the input
func (p *NodePicker) Show() {
	p.visible = true
	p.input.SetValue("")
	p.input.Focus()
	p.cursor = 0
	p.refilter()
}

// Hide hides the picker
func (p *NodePicker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns true if the picker is visible
func (p NodePicker) IsVisible() bool {
	return p.visible
}

// HasNodes reports whether the node list has been loaded
func (p NodePicker) HasNodes() bool {
	return p.nodes != nil
}

// SetLoading marks the node list as loading
func (p *NodePicker) SetLoading() {
	p.loading = true
	p.err = nil
}

// SetNodes sets the node list, or the error that prevented loading it
func (p *NodePicker) SetNodes(nodes []domain.Node, err error) {
	p.loading = false
	p.err = err
	if err == nil {
		p.nodes = nodes
	}
	p.refilter()
}

// SetSize updates the component dimensions
func (p *NodePicker) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(width/2-10, 10)
}

// Selected returns the node under the cursor
func (p NodePicker) Selected() (domain.Node, bool) {
	if p.cursor >= len(p.results) {
		return domain.Node{}, false
	}
	return p.results[p.cursor], true
}

// Update handles messages. The final result reports a confirmed selection.
func (p NodePicker) Update(msg tea.Msg) (NodePicker, tea.Cmd, bool) {
	if !p.visible {
		return p, nil, false
	}

	var cmd tea.Cmd
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, NodePickerKeys.Escape):
			p.Hide()
			return p, nil, false

		case key.Matches(keyMsg, NodePickerKeys.Enter):
			if len(p.results) > 0 {
				p.Hide()
				return p, nil, true
			}
			return p, nil, false

		case key.Matches(keyMsg, NodePickerKeys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
			return p, nil, false

		case key.Matches(keyMsg, NodePickerKeys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil, false
		}

		before := p.input.Value()
		p.input, cmd = p.input.Update(msg)
		if p.input.Value() != before {
			p.cursor = 0
			p.refilter()
		}
		return p, cmd, false
	}

	p.input, cmd = p.input.Update(msg)
	return p, cmd, false
}

func (p *NodePicker) refilter() {
	query := strings.TrimSpace(p.input.Value())
	matches := service.MatchNodes(p.nodes, query)
	if query == "" {
		p.results = append([]domain.Node{AllNodes}, matches...)
		return
	}
	p.results = matches
}

// View renders the picker as a centered modal
func (p NodePicker) View() string {
	if !p.visible {
		return ""
	}

	modalWidth := min(max(p.width*2/3, 40), 80)
	maxResults := max(min(p.height-12, 12), 3)

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Choose Node"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	switch {
	case p.loading:
		b.WriteString(styles.SpinnerStyle.Render("Loading nodes..."))
	case p.err != nil:
		b.WriteString(styles.ErrorStyle.Render("Could not load nodes: " + p.err.Error()))
	default:
		p.renderResults(&b, modalWidth, maxResults)
	}

	content := lipgloss.NewStyle().Width(modalWidth - 4).Render(b.String())
	modal := styles.ModalStyle.Width(modalWidth).Render(content)

	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, modal)
}

func (p NodePicker) renderResults(b *strings.Builder, modalWidth, maxResults int) {
	if len(p.results) == 0 {
		b.WriteString(styles.DimStyle.Render("No matching nodes"))
		return
	}

	// Keep the cursor inside the window
	start := 0
	if p.cursor >= maxResults {
		start = p.cursor - maxResults + 1
	}
	end := min(start+maxResults, len(p.results))

	for i := start; i < end; i++ {
		n := p.results[i]
		label := styles.Truncate(n.Name, modalWidth-24)
		if n.SectionName != "" {
			label = fmt.Sprintf("%s  %s", label, styles.DimStyle.Render(styles.Truncate(n.SectionName, 14)))
		}
		if i == p.cursor {
			b.WriteString(styles.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if rest := len(p.results) - end; rest > 0 {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("... and %d more", rest)))
	}
}
