package uploader

import (
	"context"
	"errors"
	"time"

	"github.com/nao1215/secretsanta/internal/blob"
	"github.com/nao1215/secretsanta/internal/transport"
)

// Outcome describes one handled submit.
type Outcome struct {
	// SubmissionID identifies the submit across logs and history.
	SubmissionID string

	// FormID and Endpoint are the handler settings the submit ran with.
	FormID   string
	Endpoint string

	// StartedAt is when the submit was intercepted; FinishedAt when handling ended.
	StartedAt  time.Time
	FinishedAt time.Time

	// StatusCode and StatusText are zero when no response was received.
	StatusCode int
	StatusText string

	// FileName is the suggested download name; empty unless a download was triggered.
	FileName string

	// Blob is the downloaded body; nil unless a download was triggered.
	Blob *blob.Blob

	// Err is the failure, if any.
	Err error
}

// Succeeded reports whether the submit ended with a download being triggered.
func (o *Outcome) Succeeded() bool {
	return o.Err == nil
}

// Duration returns how long handling took.
func (o *Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// StatusError returns the server rejection, if that is why the submit failed.
func (o *Outcome) StatusError() (*transport.StatusError, bool) {
	var se *transport.StatusError
	if errors.As(o.Err, &se) {
		return se, true
	}
	return nil, false
}

// Recorder receives every outcome after the submit is handled.
type Recorder interface {
	Record(ctx context.Context, o *Outcome)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, o *Outcome)

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, o *Outcome) {
	f(ctx, o)
}
