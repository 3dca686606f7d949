package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/secretsanta/internal/history"
)

// timeFormat is how timestamps are shown in text and Markdown output.
const timeFormat = "2006-01-02 15:04:05 MST"

// SimpleWriter writes a plain-text listing for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the record's digest, source and saved path.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose adds per-record details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter returns a SimpleWriter writing to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *SimpleWriter) Write(records []*history.Record) (int, error) {
	var sb strings.Builder

	if len(records) == 0 {
		sb.WriteString("No submissions recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	sum := Summarize(records)
	fmt.Fprintf(&sb, "Submissions: %d (%d succeeded, %d failed)\n\n", sum.Total, sum.Succeeded, sum.Failed)

	for _, r := range records {
		fmt.Fprintf(&sb, "[%s] %s  %s\n", Outcome(r), r.Timestamp.Local().Format(timeFormat), r.SubmissionID)
		fmt.Fprintf(&sb, "    server:  %s%s\n", r.Server, r.Endpoint)
		fmt.Fprintf(&sb, "    status:  %s\n", StatusLabel(r))
		if r.Succeeded() {
			fmt.Fprintf(&sb, "    file:    %s (%d bytes)\n", r.FileName, r.Size)
		} else {
			fmt.Fprintf(&sb, "    error:   %s\n", r.Error)
		}
		if w.verbose {
			fmt.Fprintf(&sb, "    source:  %s\n", orDash(r.Source))
			fmt.Fprintf(&sb, "    saved:   %s\n", orDash(r.SavedPath))
			fmt.Fprintf(&sb, "    sha3:    %s\n", orDash(r.Digest))
		}
		sb.WriteString("\n")
	}

	return io.WriteString(w.output, sb.String())
}
