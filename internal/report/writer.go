package report

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/secretsanta/internal/history"
)

// Writer renders a list of history records.
type Writer interface {
	// Write outputs records and returns the number of bytes written.
	Write(records []*history.Record) (int, error)
}

// MultiWriter writes the same records to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a Writer that writes to all writers in order.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes to every writer, stopping at the first error.
func (m *MultiWriter) Write(records []*history.Record) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(records)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// title title-cases s. A Caser keeps state, so one is made per call.
func title(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// Outcome returns "Succeeded" or "Failed" for r.
func Outcome(r *history.Record) string {
	if r.Succeeded() {
		return title("succeeded")
	}
	return title("failed")
}

// StatusLabel returns "<code> <Reason Phrase>" for r, or "-" when no response was received.
func StatusLabel(r *history.Record) string {
	if r.StatusCode == 0 {
		return "-"
	}
	if r.StatusText == "" {
		return strconv.Itoa(r.StatusCode)
	}
	return strconv.Itoa(r.StatusCode) + " " + title(r.StatusText)
}

// Summary counts successes and failures.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Summarize counts records by outcome.
func Summarize(records []*history.Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Succeeded() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// truncateString shortens s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
