package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "data", "secretsanta")
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if s.Path() != filepath.Join(dir, FileName) {
			t.Errorf("Path() = %q", s.Path())
		}
	})

	t.Run("missing database without create", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		if err := s.Save(context.Background(), &Record{SubmissionID: "a", Server: "http://x", Endpoint: "/e", FormID: "f"}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		_ = s.Close()

		s, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}
		defer s.Close()

		r, err := s.Get(context.Background(), "a")
		if err != nil || r == nil {
			t.Fatalf("record not found after reopen: %v", err)
		}
	})
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	when := time.Date(2024, time.December, 1, 9, 30, 0, 123, time.UTC)
	r := &Record{
		SubmissionID: "0b7c9a3e",
		Timestamp:    when,
		Server:       "http://127.0.0.1:8000",
		Endpoint:     "/upload/employee_list",
		FormID:       "upload-form",
		Source:       "employees.csv",
		StatusCode:   200,
		StatusText:   "OK",
		FileName:     "Secret_Santa_Result_2024.csv",
		SavedPath:    "/tmp/Secret_Santa_Result_2024.csv",
		Size:         42,
		Digest:       Digest([]byte("result")),
	}
	if err := s.Save(ctx, r); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if r.ID == 0 {
		t.Error("expected ID to be set")
	}

	got, err := s.Get(ctx, "0b7c9a3e")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if !got.Timestamp.Equal(when) {
		t.Errorf("Timestamp = %v, expected %v", got.Timestamp, when)
	}
	if got.FileName != r.FileName || got.SavedPath != r.SavedPath || got.Size != 42 || got.Digest != r.Digest {
		t.Errorf("record mismatch: %+v", got)
	}
	if !got.Succeeded() {
		t.Error("expected success")
	}

	missing, err := s.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing record, got %v, %v", missing, err)
	}

	if err := s.Save(ctx, &Record{SubmissionID: "0b7c9a3e"}); err == nil {
		t.Error("expected duplicate submission id to fail")
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		r := &Record{
			SubmissionID: id,
			Timestamp:    base.Add(time.Duration(i) * time.Second),
			Server:       "http://127.0.0.1:8000",
			Endpoint:     "/upload/employee_list",
			FormID:       "upload-form",
		}
		if id == "second" {
			r.StatusCode = 400
			r.Error = "Failed to upload files. Bad Request"
		}
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("failed to save %s: %v", id, err)
		}
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].SubmissionID != "third" || all[2].SubmissionID != "first" {
		t.Errorf("expected newest first, got %s..%s", all[0].SubmissionID, all[2].SubmissionID)
	}
	if all[1].Succeeded() {
		t.Error("failed record reported as success")
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 records, got %d", len(limited))
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()

	// SHA3-256 of the empty string.
	const empty = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := Digest(nil); got != empty {
		t.Errorf("Digest(nil) = %s", got)
	}
	if Digest([]byte("a")) == Digest([]byte("b")) {
		t.Error("different inputs share a digest")
	}
}
