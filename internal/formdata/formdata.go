package formdata

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
)

// DefaultFileType is the content type used for files with an unknown extension.
const DefaultFileType = "application/octet-stream"

// knownTypes overrides the system MIME table for extensions whose type
// browsers report consistently but Go's builtin table lacks.
var knownTypes = map[string]string{
	".csv": "text/csv",
	".tsv": "text/tab-separated-values",
	".txt": "text/plain",
}

// File is a file attached to a form entry.
type File struct {
	// Name is the file name sent in the Content-Disposition header.
	Name string

	// ContentType is the part's Content-Type. Empty means DefaultFileType.
	ContentType string

	// Data is the file content.
	Data []byte
}

// Entry is a single name/value pair of the form. Exactly one of Value or File is meaningful.
type Entry struct {
	Name  string
	Value string
	File  *File
}

// IsFile reports whether the entry carries a file.
func (e Entry) IsFile() bool {
	return e.File != nil
}

// FormData is an ordered list of form entries.
type FormData struct {
	entries []Entry
}

// New returns an empty FormData.
func New() *FormData {
	return &FormData{}
}

// Append adds a plain field.
func (f *FormData) Append(name, value string) {
	f.entries = append(f.entries, Entry{Name: name, Value: value})
}

// AppendFile adds a file field. An empty content type is derived from the file name.
func (f *FormData) AppendFile(name string, file *File) {
	if file == nil {
		file = &File{}
	}
	if file.ContentType == "" {
		file.ContentType = ContentTypeFor(file.Name)
	}
	f.entries = append(f.entries, Entry{Name: name, File: file})
}

// Get returns the first entry with the given name.
func (f *FormData) Get(name string) (Entry, bool) {
	for _, e := range f.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the entry list.
func (f *FormData) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Len returns the number of entries.
func (f *FormData) Len() int {
	return len(f.entries)
}

// Encode serialises the entries as a multipart/form-data body.
// It returns the body and the Content-Type header value including the boundary.
func (f *FormData) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, e := range f.entries {
		if !e.IsFile() {
			if err := w.WriteField(e.Name, e.Value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %q: %w", e.Name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(e.Name), escapeQuotes(e.File.Name)))
		ct := e.File.ContentType
		if ct == "" {
			ct = DefaultFileType
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %q: %w", e.Name, err)
		}
		if _, err := part.Write(e.File.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file %q: %w", e.File.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// ContentTypeFor returns the content type a browser would attach to a file
// with the given name.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return DefaultFileType
	}
	if ct, ok := knownTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return DefaultFileType
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
