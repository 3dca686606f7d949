package download

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nao1215/secretsanta/internal/blob"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	return NewDir(filepath.Join(t.TempDir(), "downloads"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "Secret_Santa_Result_2024.csv", "Secret_Santa_Result_2024.csv"},
		{"unix path", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\me\result.csv`, "result.csv"},
		{"dot dot inside", "a..b.csv", "ab.csv"},
		{"empty", "", fallbackName},
		{"only dots", "..", fallbackName},
		{"whitespace", "   ", fallbackName},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeName(tc.input); got != tc.expected {
				t.Errorf("SanitizeName(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestCandidateName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		n        int
		expected string
	}{
		{"result.csv", 0, "result.csv"},
		{"result.csv", 1, "result (1).csv"},
		{"result.csv", 12, "result (12).csv"},
		{"README", 2, "README (2)"},
	}

	for _, tc := range testCases {
		if got := CandidateName(tc.name, tc.n); got != tc.expected {
			t.Errorf("CandidateName(%q, %d) = %q, expected %q", tc.name, tc.n, got, tc.expected)
		}
	}
}

func TestDirDownload(t *testing.T) {
	t.Parallel()

	t.Run("writes content unmodified", func(t *testing.T) {
		t.Parallel()

		d := newTestDir(t)
		path, err := d.Download(context.Background(), "Secret_Santa_Result_2024.csv", blob.New([]byte("x,y,z"), "text/csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(path) != "Secret_Santa_Result_2024.csv" {
			t.Errorf("unexpected path %q", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read download: %v", err)
		}
		if string(data) != "x,y,z" {
			t.Errorf("content = %q, expected x,y,z", data)
		}
	})

	t.Run("does not overwrite existing files", func(t *testing.T) {
		t.Parallel()

		d := newTestDir(t)
		first, err := d.Download(context.Background(), "r.csv", blob.New([]byte("1"), ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := d.Download(context.Background(), "r.csv", blob.New([]byte("2"), ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if filepath.Base(second) != "r (1).csv" {
			t.Errorf("expected de-duplicated name, got %q", second)
		}
		data, _ := os.ReadFile(first)
		if string(data) != "1" {
			t.Errorf("first download was modified: %q", data)
		}
	})

	t.Run("concurrent downloads get distinct names", func(t *testing.T) {
		t.Parallel()

		d := newTestDir(t)
		var wg sync.WaitGroup
		var mu sync.Mutex
		seen := map[string]bool{}

		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				path, err := d.Download(context.Background(), "same.csv", blob.New([]byte("x"), ""))
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				mu.Lock()
				seen[path] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		if len(seen) != 10 {
			t.Errorf("expected 10 distinct files, got %d", len(seen))
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		d := newTestDir(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := d.Download(ctx, "x.csv", blob.New([]byte("x"), "")); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
