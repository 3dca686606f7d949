package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nao1215/secretsanta/internal/blob"
)

// maxDuplicates bounds the " (n)" suffix search.
const maxDuplicates = 1000

// fallbackName is used when the suggested name has no usable file name.
const fallbackName = "download"

// ErrTooManyDuplicates is returned when every candidate name up to maxDuplicates is taken.
var ErrTooManyDuplicates = errors.New("too many files with the same name")

// Dir stores downloads in a directory. It is safe for concurrent use.
type Dir struct {
	path   string
	logger *slog.Logger

	// mu serialises name selection so concurrent downloads of the same
	// name get distinct suffixes.
	mu sync.Mutex
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger used for download events.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dir) {
		d.logger = logger
	}
}

// NewDir returns a Dir writing into path. The directory is created on first download.
func NewDir(path string, opts ...Option) *Dir {
	d := &Dir{path: path}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Path returns the target directory.
func (d *Dir) Path() string {
	return d.path
}

// Download writes b into the directory under name (or a de-duplicated variant)
// and returns the full path of the written file.
func (d *Dir) Download(ctx context.Context, name string, b *blob.Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.path, 0750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	f, path, err := d.create(SanitizeName(name))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, b.Reader()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	d.logger.Debug("file written", "path", path, "bytes", b.Size())
	return path, nil
}

// create opens the first free candidate for name exclusively.
func (d *Dir) create(name string) (*os.File, string, error) {
	for i := 0; i <= maxDuplicates; i++ {
		path := filepath.Join(d.path, CandidateName(name, i))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600) //nolint:gosec // path is built from a sanitised name
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrTooManyDuplicates, name)
}

// SanitizeName reduces a suggested download name to a bare file name.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.FromSlash(name))
	name = strings.ReplaceAll(name, "..", "")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fallbackName
	}
	return name
}

// CandidateName returns the n-th candidate for name: name itself for n == 0,
// otherwise "base (n).ext".
func CandidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}
