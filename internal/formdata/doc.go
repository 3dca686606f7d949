// Package formdata models the entry list of an HTML form and encodes it as a
// multipart/form-data request body.
//
// Entries keep their insertion order and their values are passed through
// unmodified; file entries carry the raw file bytes and a content type chosen
// the way browsers choose it (by file extension).
package formdata
