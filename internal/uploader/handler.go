package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/secretsanta/internal/dom"
	"github.com/nao1215/secretsanta/internal/formdata"
	"github.com/nao1215/secretsanta/internal/transport"
)

const (
	// DefaultFormID is the id of the upload form on the page.
	DefaultFormID = "upload-form"

	// DefaultEndpoint is the path the form is posted to.
	DefaultEndpoint = "/upload/employee_list"

	// errorMessage prefixes every failure reported by the submit listener.
	errorMessage = "An error occurred:"
)

// ResultFileName returns the download name for a result produced in year.
func ResultFileName(year int) string {
	return fmt.Sprintf("Secret_Santa_Result_%d.csv", year)
}

// Poster sends a form to the server.
type Poster interface {
	PostForm(ctx context.Context, path string, fd *formdata.FormData) (*transport.Response, error)
}

// Handler intercepts submits of the upload form.
type Handler struct {
	poster   Poster
	formID   string
	endpoint string
	logger   *slog.Logger
	now      func() time.Time
	recorder Recorder
}

// Option configures a Handler.
type Option func(*Handler)

// WithFormID sets the id of the form to intercept.
func WithFormID(id string) Option {
	return func(h *Handler) {
		h.formID = id
	}
}

// WithEndpoint sets the path submits are posted to.
func WithEndpoint(endpoint string) Option {
	return func(h *Handler) {
		h.endpoint = endpoint
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithClock sets the clock the result year is read from.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithRecorder sets a Recorder that receives every outcome.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		h.recorder = r
	}
}

// New returns a Handler posting through p.
func New(p Poster, opts ...Option) *Handler {
	h := &Handler{
		poster:   p,
		formID:   DefaultFormID,
		endpoint: DefaultEndpoint,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// FormID returns the id of the intercepted form.
func (h *Handler) FormID() string {
	return h.formID
}

// Endpoint returns the path submits are posted to.
func (h *Handler) Endpoint() string {
	return h.endpoint
}

// Register subscribes to the document's page-load event. When the page has
// loaded, the form is looked up and a submit listener is attached to it. Each
// load signal attaches another listener.
func (h *Handler) Register(doc dom.Document) {
	doc.AddEventListener(dom.EventDOMContentLoaded, func(_ context.Context, _ *dom.Event) {
		form := doc.GetElementByID(h.formID)
		if form == nil {
			h.logger.Error(errorMessage, "error", fmt.Errorf("%w: #%s", ErrFormNotFound, h.formID))
			return
		}

		form.AddEventListener(dom.EventSubmit, func(ctx context.Context, e *dom.Event) {
			o := h.HandleSubmit(ctx, doc, form, e)
			if o.Err != nil {
				h.logger.Error(errorMessage, "error", o.Err, "submission", o.SubmissionID)
			}
			if h.recorder != nil {
				h.recorder.Record(ctx, o)
			}
		})
		h.logger.Debug("submit listener attached", "form", h.formID)
	})
}

// HandleSubmit runs one submit of form: the default action is cancelled, the
// form is posted, and on a 2xx response the body is downloaded through a
// temporary anchor. The returned Outcome is never nil; Outcome.Err holds any
// failure. Panics are recovered into Outcome.Err.
func (h *Handler) HandleSubmit(ctx context.Context, doc dom.Document, form *dom.Element, e *dom.Event) (o *Outcome) {
	o = &Outcome{
		SubmissionID: uuid.NewString(),
		FormID:       h.formID,
		Endpoint:     h.endpoint,
		StartedAt:    time.Now(),
	}
	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		o.FinishedAt = time.Now()
	}()

	e.PreventDefault()
	o.Err = h.submit(ctx, doc, form, o)
	return o
}

func (h *Handler) submit(ctx context.Context, doc dom.Document, form *dom.Element, o *Outcome) error {
	fd, err := dom.NewFormData(form)
	if err != nil {
		return err
	}

	resp, err := h.poster.PostForm(ctx, h.endpoint, fd)
	if err != nil {
		return err
	}
	o.StatusCode = resp.StatusCode
	o.StatusText = resp.StatusText

	if !resp.OK() {
		return resp.Err()
	}

	b, err := resp.Blob()
	if err != nil {
		return err
	}

	body := doc.Body()
	if body == nil {
		return ErrNoBody
	}

	name := ResultFileName(h.now().Year())
	href := doc.CreateObjectURL(b)
	defer doc.RevokeObjectURL(href)

	a := doc.CreateElement("a")
	a.SetAttribute("href", href)
	a.SetAttribute("download", name)
	a.SetAttribute("style", "display: none")
	body.AppendChild(a)
	a.Click(ctx)
	a.Remove()

	o.FileName = name
	o.Blob = b
	h.logger.Info("result download triggered", "name", name, "bytes", b.Size(), "submission", o.SubmissionID)
	return nil
}
