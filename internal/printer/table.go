package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
)

// TablePrinter prints task information in a table format.
type TablePrinter struct {
	writer  io.Writer
	noColor bool
}

// NewTablePrinter creates a new table printer. Statuses are colored unless noColor is set.
func NewTablePrinter(w io.Writer, noColor bool) *TablePrinter {
	return &TablePrinter{writer: w, noColor: noColor}
}

// PrintList prints tasks in a table format.
func (t *TablePrinter) PrintList(tasks []model.TaskSnapshot) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tERRORS\tCREATED")
	for _, s := range tasks {
		// Color codes would break the tabwriter alignment.
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%d\t%s\n",
			s.ID,
			s.Status,
			s.ProgressPercent,
			s.ErrorCount,
			TimeAgo(s.CreatedAt),
		)
	}

	return nil
}

// PrintStatus prints the detailed task status.
func (t *TablePrinter) PrintStatus(view monitor.View) error {
	s := view.Snapshot()
	if s != nil {
		fmt.Fprintf(t.writer, "ID:         %s\n", s.ID)
	}
	fmt.Fprintf(t.writer, "Status:     %s\n", colorStatus(view.StatusText(), view.Color(), t.noColor))
	if s == nil {
		return nil
	}

	fmt.Fprintf(t.writer, "Progress:   %s %d%% (%d/%d units)\n", ProgressBar(view.ProgressPercent(), progressBarWidth), view.ProgressPercent(), s.CompletedUnits, s.TotalUnits)
	fmt.Fprintf(t.writer, "Errors:     %d\n", s.ErrorCount)
	if est := view.EstimatedTimeRemaining(); est.State != monitor.EstimateUnavailable {
		fmt.Fprintf(t.writer, "Remaining:  %s\n", est)
	}
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(s.CreatedAt))
	if s.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Finished:   %s\n", FormatTimestamp(*s.CompletedAt))
	}
	if acts := actions(view); len(acts) > 0 {
		fmt.Fprintf(t.writer, "Actions:    %s\n", strings.Join(acts, ", "))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
