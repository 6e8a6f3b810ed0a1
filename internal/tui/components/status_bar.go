package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/topics/internal/tui/styles"
)

// StatusBar is the single-line footer: activity or a transient message on
// the left, key hints on the right
type StatusBar struct {
	Width        int
	Loading      string // Non-empty while a request is in flight
	SpinnerFrame int
	Message      string
	IsError      bool
	IsSuccess    bool
	Hints        []Hint
}

// Hint is a key and its description
type Hint struct {
	Key  string
	Desc string
}

// View renders the status bar
func (s StatusBar) View() string {
	var left string
	switch {
	case s.Message != "" && s.IsError:
		left = styles.ErrorStyle.Render(s.Message)
	case s.Message != "" && s.IsSuccess:
		left = styles.SuccessStyle.Render(s.Message)
	case s.Loading != "":
		left = styles.RenderSpinner(s.SpinnerFrame) + " " + styles.DimStyle.Render(s.Loading)
	case s.Message != "":
		left = styles.DimStyle.Render(s.Message)
	}

	hints := make([]string, 0, len(s.Hints))
	for _, h := range s.Hints {
		hints = append(hints, styles.HelpKeyStyle.Render(h.Key)+styles.HelpDescStyle.Render(" "+h.Desc))
	}
	right := strings.Join(hints, "  ")

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if leftWidth+rightWidth >= s.Width {
		// Not enough space for hints
		return left
	}
	return left + strings.Repeat(" ", s.Width-leftWidth-rightWidth) + right
}
