// Package plain prints topic lists to a non-interactive writer.
package plain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/pager"
)

// ErrNothingToPrint is returned when the first page failed
var ErrNothingToPrint = errors.New("no topics loaded")

// Printer drives a controller synchronously and prints every page it gets
type Printer struct {
	out    io.Writer
	errOut io.Writer
	logger zerolog.Logger
}

// NewPrinter creates a printer writing rows to out and notices to errOut
func NewPrinter(out, errOut io.Writer, logger zerolog.Logger) *Printer {
	return &Printer{
		out:    out,
		errOut: errOut,
		logger: logger.With().Str("component", "plain").Logger(),
	}
}

// Print loads up to pages pages and prints them under a heading. The heading
// is taken from title if it has arrived by the time the first page is ready,
// otherwise fallback is printed. A failure after the first page is reported
// as a notice and ends the listing; a failure on the first page is returned.
func (p *Printer) Print(ctx context.Context, ctrl *pager.Controller, title <-chan string, fallback string, pages int) error {
	if pages < 1 {
		pages = 1
	}

	fetch, ok := ctrl.Refresh()
	if !ok {
		return fmt.Errorf("refresh not dispatched")
	}
	snap, _ := ctrl.Apply(fetch.Run(ctx))
	if snap.Severity() == pager.SeverityBlocking {
		return fmt.Errorf("%w: %w", ErrNothingToPrint, snap.Err)
	}

	fmt.Fprintf(p.out, "%s\n\n", heading(title, fallback))
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	printed := p.printRows(tw, snap, 0)

	for page := 1; page < pages; page++ {
		fetch, ok := ctrl.LoadMore()
		if !ok {
			break
		}
		snap, _ = ctrl.Apply(fetch.Run(ctx))
		if snap.Err != nil {
			p.logger.Warn().Err(snap.Err).Int("page", page+1).Msg("stopping after failed page")
			fmt.Fprintf(p.errOut, "warning: %s\n", snap.Err.Error())
			break
		}
		printed = p.printRows(tw, snap, printed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if snap.Empty() {
		fmt.Fprintln(p.out, "No topics.")
	}
	p.logger.Debug().Int("printed", printed).Bool("has_more", snap.HasMore).Msg("listing printed")
	return nil
}

func heading(title <-chan string, fallback string) string {
	select {
	case t := <-title:
		if t != "" {
			return t
		}
	default:
	}
	return fallback
}

// printRows prints the items after the first from rows and returns the new
// printed count
func (p *Printer) printRows(w io.Writer, snap pager.Snapshot, from int) int {
	for _, t := range snap.Items[from:] {
		marker := " "
		if t.Excellent {
			marker = "*"
		}
		activity := ""
		if at := t.ActivityAt(); !at.IsZero() {
			activity = humanize.Time(at)
		}
		fmt.Fprintf(w, "%s#%d\t%s\t%s\t%s\t%s\t%s\n",
			marker, t.ID, t.Title, t.NodeName, t.User.Login, t.FormattedReplies(), activity)
	}
	return len(snap.Items)
}
