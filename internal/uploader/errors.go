package uploader

import "errors"

var (
	// ErrFormNotFound is returned when the document has no element with the form id.
	ErrFormNotFound = errors.New("upload form not found")

	// ErrNoBody is returned when the document has no body to attach the download anchor to.
	ErrNoBody = errors.New("document has no body")

	// ErrPanic wraps a panic recovered while handling a submit.
	ErrPanic = errors.New("panic while handling submit")
)
