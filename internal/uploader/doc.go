// Package uploader implements the upload-and-download handler of the Secret
// Santa page.
//
// Once registered on a document, the handler waits for the page-load event,
// then intercepts submits of the upload form. Each submit is turned into a
// single multipart POST to the employee-list endpoint. A 2xx response body is
// offered to the user as Secret_Santa_Result_<year>.csv through a temporary
// object URL and a hidden anchor; any failure is reported through the logger
// and nothing is downloaded.
package uploader
