package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".secretsanta"

// ServerConfig holds settings for one Secret Santa server.
type ServerConfig struct {
	// Cookie is sent with every request, e.g. "session=abc".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Endpoint overrides the upload path.
	Endpoint string `yaml:"endpoint,omitempty"`

	// FormID overrides the id of the upload form.
	FormID string `yaml:"formId,omitempty"`

	// FileField overrides the name of the file input.
	FileField string `yaml:"fileField,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File is the structure of the .secretsanta configuration file.
type File struct {
	// Defaults apply to every server.
	Defaults ServerConfig `yaml:"defaults,omitempty"`

	// Servers maps a server ("host:port" or its base URL) to its settings.
	Servers map[string]ServerConfig `yaml:"servers,omitempty"`
}

// ServerConfig returns the settings for serverURL: the defaults overlaid by
// the entry matching the full base URL or, failing that, its host.
func (f *File) ServerConfig(serverURL string) ServerConfig {
	result := f.Defaults
	if len(f.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(f.Defaults.Headers))
		for k, v := range f.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	sc, ok := f.Servers[strings.TrimSuffix(serverURL, "/")]
	if !ok {
		if u, err := url.Parse(serverURL); err == nil {
			sc, ok = f.Servers[u.Host]
		}
	}
	if !ok {
		return result
	}

	if sc.Cookie != "" {
		result.Cookie = sc.Cookie
	}
	if sc.Endpoint != "" {
		result.Endpoint = sc.Endpoint
	}
	if sc.FormID != "" {
		result.FormID = sc.FormID
	}
	if sc.FileField != "" {
		result.FileField = sc.FileField
	}
	if sc.UserAgent != "" {
		result.UserAgent = sc.UserAgent
	}
	if len(sc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(sc.Headers))
		}
		for k, v := range sc.Headers {
			result.Headers[k] = v
		}
	}
	return result
}

// LoadConfigFile reads a configuration file. A missing file yields ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Servers == nil {
		f.Servers = make(map[string]ServerConfig)
	}
	return &f, nil
}

// FindConfigFile returns the configuration file to use: configPath if given
// and present, else .secretsanta in the current directory, else in the XDG
// config directory, else in the home directory. It returns "" if none exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
