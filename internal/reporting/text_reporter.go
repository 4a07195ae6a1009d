package reporting

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// TextReporter writes a human-readable table of per-record outcomes,
// one row per input record in input order, followed by the summary.
type TextReporter struct {
	writer io.WriteCloser
}

// NewTextReporter creates a text reporter. It takes ownership of the
// writer.
func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{writer: writer}
}

func (r *TextReporter) Write(run *schemas.PipelineRun) error {
	if _, err := fmt.Fprintf(r.writer, "Import run %s (%s/%s)\n\n", run.RunID, run.ModuleKey, run.TaskKey); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tRECORD\tSTATUS\tREASON")
	for _, res := range run.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", res.Index+1, res.RecordID, res.Status.Code, res.Status.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(r.writer, "\n%d succeeded, %d failed, %d skipped",
		run.Summary.Succeeded, run.Summary.Failed, run.Summary.Skipped)
	if err != nil {
		return err
	}
	if run.Aborted {
		if _, err := fmt.Fprintf(r.writer, " (run aborted, %d records processed)", len(run.Results)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(r.writer)
	return err
}

func (r *TextReporter) Close() error {
	return r.writer.Close()
}
