package blob

import (
	"bytes"
	"io"
)

// DefaultType is used when a Blob is created without a content type.
const DefaultType = "application/octet-stream"

// Blob is an immutable chunk of binary data with a MIME type.
// The bytes are never inspected or transformed.
type Blob struct {
	data        []byte
	contentType string
}

// New creates a Blob over data. The slice is not copied; callers must not
// modify it afterwards.
func New(data []byte, contentType string) *Blob {
	if contentType == "" {
		contentType = DefaultType
	}
	return &Blob{data: data, contentType: contentType}
}

// Size returns the number of bytes in the blob.
func (b *Blob) Size() int {
	return len(b.data)
}

// Type returns the blob's MIME type.
func (b *Blob) Type() string {
	return b.contentType
}

// Bytes returns the blob content. The returned slice must be treated as read-only.
func (b *Blob) Bytes() []byte {
	return b.data
}

// Reader returns a fresh reader over the blob content.
func (b *Blob) Reader() io.Reader {
	return bytes.NewReader(b.data)
}
