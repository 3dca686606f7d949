package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nao1215/secretsanta/internal/blob"
)

// maxErrorBody bounds how much of a failed response is read for its detail.
const maxErrorBody = 64 * 1024

// Response is a received HTTP response whose body has not been consumed yet.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// StatusText is the reason phrase, e.g. "Bad Request".
	StatusText string

	// Header holds the response headers.
	Header http.Header

	body io.ReadCloser
}

func newResponse(resp *http.Response) *Response {
	return &Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp.StatusCode, resp.Status),
		Header:     resp.Header,
		body:       resp.Body,
	}
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Blob reads the whole body into a Blob typed by the Content-Type header and
// closes the body.
func (r *Response) Blob() (*blob.Blob, error) {
	defer r.Close()

	data, err := io.ReadAll(r.body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBodyRead, err)
	}
	return blob.New(data, r.Header.Get("Content-Type")), nil
}

// Err returns a *StatusError for a non-2xx response and nil otherwise. For a
// failed response it reads a bounded prefix of the body looking for a JSON
// "detail" field, then closes the body.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	defer r.Close()

	se := &StatusError{Code: r.StatusCode, Text: r.StatusText}

	data, err := io.ReadAll(io.LimitReader(r.body, maxErrorBody))
	if err == nil && len(data) > 0 {
		var payload struct {
			Detail json.RawMessage `json:"detail"`
		}
		if json.Unmarshal(data, &payload) == nil && len(payload.Detail) > 0 {
			se.Detail = detailString(payload.Detail)
		}
	}
	return se
}

// Close releases the body. It is safe to call more than once.
func (r *Response) Close() error {
	if r.body == nil {
		return nil
	}
	err := r.body.Close()
	r.body = nil
	return err
}

// detailString renders a detail value: strings as-is, anything else as JSON.
func detailString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
