package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/secretsanta/internal/history"
)

// JSONWriter writes the history as a JSON document.
type JSONWriter struct {
	baseWriter

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents the output by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter returns a JSONWriter writing to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type jsonRecord struct {
	SubmissionID string    `json:"submission_id"`
	Timestamp    time.Time `json:"timestamp"`
	Outcome      string    `json:"outcome"`
	Server       string    `json:"server"`
	Endpoint     string    `json:"endpoint"`
	FormID       string    `json:"form_id"`
	Source       string    `json:"source,omitempty"`
	StatusCode   int       `json:"status_code,omitempty"`
	StatusText   string    `json:"status_text,omitempty"`
	FileName     string    `json:"file_name,omitempty"`
	SavedPath    string    `json:"saved_path,omitempty"`
	Size         int64     `json:"size"`
	Digest       string    `json:"sha3_256,omitempty"`
	Error        string    `json:"error,omitempty"`
}

type jsonDocument struct {
	Summary     Summary      `json:"summary"`
	Submissions []jsonRecord `json:"submissions"`
}

// Write implements Writer.
func (w *JSONWriter) Write(records []*history.Record) (int, error) {
	doc := jsonDocument{
		Summary:     Summarize(records),
		Submissions: make([]jsonRecord, 0, len(records)),
	}
	for _, r := range records {
		doc.Submissions = append(doc.Submissions, jsonRecord{
			SubmissionID: r.SubmissionID,
			Timestamp:    r.Timestamp,
			Outcome:      Outcome(r),
			Server:       r.Server,
			Endpoint:     r.Endpoint,
			FormID:       r.FormID,
			Source:       r.Source,
			StatusCode:   r.StatusCode,
			StatusText:   r.StatusText,
			FileName:     r.FileName,
			SavedPath:    r.SavedPath,
			Size:         r.Size,
			Digest:       r.Digest,
			Error:        r.Error,
		})
	}

	var (
		data []byte
		err  error
	)
	if w.indentString != "" {
		data, err = json.MarshalIndent(doc, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
