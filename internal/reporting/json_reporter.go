package reporting

import (
	"encoding/json"
	"io"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// JSONReporter writes the run as one indented JSON document, the
// canonical machine-readable report format.
type JSONReporter struct {
	writer io.WriteCloser
}

// NewJSONReporter creates a JSON reporter. It takes ownership of the
// writer.
func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: writer}
}

func (r *JSONReporter) Write(run *schemas.PipelineRun) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
