package dom

import "errors"

var (
	// ErrElementNotFound is returned when no element has the requested id.
	ErrElementNotFound = errors.New("element not found")

	// ErrNotForm is returned when a form operation targets a non-form element.
	ErrNotForm = errors.New("element is not a form")

	// ErrNotFileInput is returned when files are assigned to an element that is
	// not an <input type="file">.
	ErrNotFileInput = errors.New("element is not a file input")

	// ErrNoDownloader is recorded when an anchor is activated on a page
	// without a Downloader.
	ErrNoDownloader = errors.New("page has no downloader")

	// ErrUnresolvedURL is recorded when an anchor's href is not a live blob: URL.
	ErrUnresolvedURL = errors.New("object URL does not resolve")
)
