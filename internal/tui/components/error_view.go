package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/topics/internal/pager"
	"github.com/mmcdole/topics/internal/tui/styles"
)

// ErrorView replaces the list when a failure leaves nothing to show
type ErrorView struct {
	err    *pager.ListError
	width  int
	height int
}

// NewErrorView creates an empty error view
func NewErrorView() ErrorView {
	return ErrorView{}
}

// SetError sets the error to present; nil clears it
func (e *ErrorView) SetError(err *pager.ListError) {
	e.err = err
}

// Err returns the presented error
func (e ErrorView) Err() *pager.ListError {
	return e.err
}

// IsVisible reports whether there is an error to present
func (e ErrorView) IsVisible() bool {
	return e.err != nil
}

// SetSize updates the component dimensions
func (e *ErrorView) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// View renders the error centered with a retry hint
func (e ErrorView) View() string {
	if e.err == nil {
		return ""
	}

	boxWidth := min(max(e.width*2/3, 30), 70)

	var b strings.Builder
	b.WriteString(styles.ErrorTitleStyle.Render(e.err.Title()))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(boxWidth - 8).Render(e.err.Detail()))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpKeyStyle.Render("r"))
	b.WriteString(styles.HelpDescStyle.Render(" retry   "))
	b.WriteString(styles.HelpKeyStyle.Render("q"))
	b.WriteString(styles.HelpDescStyle.Render(" quit"))

	box := styles.ErrorBoxStyle.Width(boxWidth).Render(b.String())
	return lipgloss.Place(e.width, e.height, lipgloss.Center, lipgloss.Center, box)
}
