package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSecureHandler_SanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{"cookie key", "cookie", "session=abc123", true},
		{"uppercase Cookie key", "Cookie", "session=abc123", true},
		{"authorization key", "authorization", "Bearer token123", true},
		{"token key", "token", "abc", true},
		{"key containing auth", "x_auth_header", "v", true},
		{"key containing cookie", "request_cookie", "v", true},
		{"url key", "url", "http://127.0.0.1:8000/upload/employee_list", false},
		{"status key", "status", "400", false},
		{"name key", "name", "Secret_Santa_Result_2024.csv", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("test", tt.key, tt.value)

			out := buf.String()
			if tt.wantMask {
				if !strings.Contains(out, MaskValue) || strings.Contains(out, tt.value) {
					t.Errorf("expected %q to be masked, got %s", tt.key, out)
				}
			} else if !strings.Contains(out, tt.value) {
				t.Errorf("expected %q to be kept, got %s", tt.value, out)
			}
		})
	}
}

func TestSecureHandler_SanitizesSensitiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{"bearer token", "Bearer abc.def.ghi"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"jwt", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			NewSecureLogger(&buf, true).Info("test", "header", tt.value)
			if strings.Contains(buf.String(), tt.value) {
				t.Errorf("value not masked: %s", buf.String())
			}
		})
	}
}

func TestMaskEmails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"alice@example.com", "a***@example.com"},
		{"Duplicate: bob.smith@corp.example.org, carol@x.io", "Duplicate: b***@corp.example.org, c***@x.io"},
		{"no address here", "no address here"},
		{"user@localhost", "user@localhost"},
	}

	for _, tt := range tests {
		if got := MaskEmails(tt.input); got != tt.expected {
			t.Errorf("MaskEmails(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSecureHandler_MasksEmails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true)
	logger.Error("rejected alice@example.com",
		"row", "Bob,bob@example.com",
		"error", errors.New("duplicate employee carol@example.com"),
	)

	out := buf.String()
	for _, leaked := range []string{"alice@", "bob@", "carol@"} {
		if strings.Contains(out, leaked) {
			t.Errorf("address %q leaked: %s", leaked, out)
		}
	}
	for _, kept := range []string{"a***@example.com", "b***@example.com", "c***@example.com"} {
		if !strings.Contains(out, kept) {
			t.Errorf("expected %q in %s", kept, out)
		}
	}
}

func TestSecureHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureJSONLogger(&buf, true)
	logger.With("cookie", "session=1").WithGroup("req").Info("sent",
		slog.Group("headers", "Authorization", "Bearer x", "Accept", "text/csv"),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log: %v\n%s", err, buf.String())
	}
	if entry["cookie"] != MaskValue {
		t.Errorf("cookie = %v", entry["cookie"])
	}
	req, _ := entry["req"].(map[string]any)
	headers, _ := req["headers"].(map[string]any)
	if headers["Authorization"] != MaskValue || headers["Accept"] != "text/csv" {
		t.Errorf("unexpected headers %v", headers)
	}
}

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var quiet, verbose bytes.Buffer
	NewSecureLogger(&quiet, false).Info("hidden")
	NewSecureLogger(&verbose, true).Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("info should be dropped without verbose: %s", quiet.String())
	}
	if !strings.Contains(verbose.String(), "shown") {
		t.Error("debug should be logged with verbose")
	}
}

func TestNewSecureHandlerNil(t *testing.T) {
	t.Parallel()

	if h := NewSecureHandler(nil); h.handler == nil {
		t.Error("expected default handler")
	}
}
