package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	testCases := []struct {
		name     string
		got      any
		expected any
	}{
		{"ServerURL", cfg.ServerURL, "http://127.0.0.1:8000"},
		{"Endpoint", cfg.Endpoint, "/upload/employee_list"},
		{"FormID", cfg.FormID, "upload-form"},
		{"FileField", cfg.FileField, "file"},
		{"Timeout", cfg.Timeout, time.Duration(0)},
		{"BatchSize", cfg.BatchSize, DefaultBatchSize},
		{"UserAgent", cfg.UserAgent, DefaultUserAgent},
		{"EnvFile", cfg.EnvFile, ".env"},
		{"NoHistory", cfg.NoHistory, false},
	}
	for _, tc := range testCases {
		if tc.got != tc.expected {
			t.Errorf("default %s = %v, expected %v", tc.name, tc.got, tc.expected)
		}
	}

	if cfg.DownloadDir == "" {
		t.Error("expected a default download directory")
	}
	if !strings.HasSuffix(cfg.DBDir, AppName) {
		t.Errorf("DBDir = %q, expected it to end in %q", cfg.DBDir, AppName)
	}
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("XDGDataDir() = %q", XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("XDGConfigDir() = %q", XDGConfigDir())
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Inputs = []string{"employees.csv"}
		return cfg
	}

	testCases := []struct {
		name     string
		modify   func(*Config)
		expected error
	}{
		{"valid", func(*Config) {}, nil},
		{"no input", func(c *Config) { c.Inputs = nil }, ErrNoInput},
		{"bad server scheme", func(c *Config) { c.ServerURL = "ftp://x" }, ErrInvalidServerURL},
		{"server without host", func(c *Config) { c.ServerURL = "http://" }, ErrInvalidServerURL},
		{"server without scheme", func(c *Config) { c.ServerURL = "localhost:8000" }, ErrInvalidServerURL},
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }, ErrInvalidEndpoint},
		{"absolute endpoint", func(c *Config) { c.Endpoint = "http://other/upload" }, ErrInvalidEndpoint},
		{"empty form id", func(c *Config) { c.FormID = " " }, ErrNoFormID},
		{"empty field", func(c *Config) { c.FileField = "" }, ErrNoFileField},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, nil},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"both formats", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expected == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestApplyServerConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Headers = map[string]string{"X-Keep": "1", "X-Team": "old"}
	cfg.ApplyServerConfig(ServerConfig{
		Cookie:   "session=abc",
		Endpoint: "/v2/upload",
		Headers:  map[string]string{"X-Team": "north"},
	})

	if cfg.Cookie != "session=abc" || cfg.Endpoint != "/v2/upload" {
		t.Errorf("scalar settings not applied: %+v", cfg)
	}
	if cfg.FormID != DefaultFormID || cfg.FileField != DefaultFileField {
		t.Error("unset settings should keep their value")
	}
	if cfg.Headers["X-Keep"] != "1" || cfg.Headers["X-Team"] != "north" {
		t.Errorf("headers not merged: %v", cfg.Headers)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("parses defaults and servers", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), DefaultConfigFile, `
defaults:
  headers:
    X-Team: everyone
servers:
  "santa.example.com:8443":
    cookie: session=abc
    endpoint: /api/upload
    headers:
      X-Team: north
  "http://127.0.0.1:8000":
    formId: list-form
    fileField: employees
`)
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sc := f.ServerConfig("https://santa.example.com:8443")
		if sc.Cookie != "session=abc" || sc.Endpoint != "/api/upload" || sc.Headers["X-Team"] != "north" {
			t.Errorf("host match not applied: %+v", sc)
		}

		sc = f.ServerConfig("http://127.0.0.1:8000/")
		if sc.FormID != "list-form" || sc.FileField != "employees" {
			t.Errorf("base URL match not applied: %+v", sc)
		}
		if sc.Headers["X-Team"] != "everyone" {
			t.Errorf("defaults not applied: %+v", sc)
		}

		sc = f.ServerConfig("http://unknown:1")
		if sc.Cookie != "" || sc.Headers["X-Team"] != "everyone" {
			t.Errorf("unknown server should get defaults only: %+v", sc)
		}

		// Lookups must not mutate the defaults.
		if f.Defaults.Headers["X-Team"] != "everyone" {
			t.Error("defaults were modified by a lookup")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "bad.yaml", "servers: [unclosed")
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "empty.yaml", "")
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Servers == nil {
			t.Error("expected initialized Servers map")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", "")

	if got := FindConfigFile(path); got != path {
		t.Errorf("FindConfigFile(%q) = %q", path, got)
	}
	if got := FindConfigFile(filepath.Join(dir, "missing.yaml")); got != "" {
		t.Errorf("expected empty result for missing explicit path, got %q", got)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvProxy, "")
	t.Setenv(EnvDownloadDir, "")
	t.Setenv(EnvServer, "http://from-process:9000")

	path := writeFile(t, t.TempDir(), ".env", "SECRETSANTA_SERVER=http://from-file:8000\nSECRETSANTA_PROXY=127.0.0.1:1080\n")

	env, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env[EnvServer] != "http://from-process:9000" {
		t.Errorf("process environment should win, got %q", env[EnvServer])
	}
	if env[EnvProxy] != "127.0.0.1:1080" {
		t.Errorf("file value missing, got %q", env[EnvProxy])
	}

	cfg := NewConfig()
	before := cfg.DownloadDir
	cfg.ApplyEnv(env)
	if cfg.ServerURL != "http://from-process:9000" || cfg.ProxyAddress != "127.0.0.1:1080" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.DownloadDir != before {
		t.Error("unset variable changed DownloadDir")
	}

	env, err = LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("missing dotenv file should not fail: %v", err)
	}
	if env[EnvServer] != "http://from-process:9000" {
		t.Error("process environment missing without a dotenv file")
	}
}
