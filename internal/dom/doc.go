// Package dom provides a small, headless document model: the page-structure
// handle the upload handler works against.
//
// It covers exactly what an upload page needs: locating elements by id,
// creating elements, dispatching DOMContentLoaded/submit/click events,
// collecting a form's entry list, and performing the default action of an
// <a download> element, which saves the referenced blob through a Downloader.
//
// Page is the concrete implementation. It is built from HTML markup parsed with
// golang.org/x/net/html, so the same template a browser would render can be
// driven from the command line or from tests.
//
// Event listeners run synchronously: dispatching an event returns only after
// every listener has returned, which lets an asynchronous handler be awaited by
// the dispatcher.
package dom
