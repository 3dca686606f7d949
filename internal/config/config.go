package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultServerURL is where the Secret Santa server listens in development.
	DefaultServerURL = "http://127.0.0.1:8000"

	// DefaultEndpoint is the upload path of the server.
	DefaultEndpoint = "/upload/employee_list"

	// DefaultFormID is the id of the upload form on the page.
	DefaultFormID = "upload-form"

	// DefaultFileField is the name of the form's file input.
	DefaultFileField = "file"

	// DefaultBatchSize is the number of employee lists submitted at once.
	DefaultBatchSize = 4

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "secretsanta/1.0 (+https://github.com/nao1215/secretsanta)"

	// AppName is the application name used for XDG directory paths.
	AppName = "secretsanta"
)

// Config holds every option of a secretsanta run. It is filled from
// defaults, the environment, the config file and finally CLI flags.
type Config struct {
	// ServerURL is the base URL of the Secret Santa server.
	ServerURL string

	// Endpoint is the path the form is posted to, relative to ServerURL.
	Endpoint string

	// FormID is the id of the form whose submit is intercepted.
	FormID string

	// FileField is the name of the file input the employee list is put in.
	FileField string

	// PagePath is an HTML page to load instead of the built-in one.
	PagePath string

	// UploadName overrides the file name sent with the upload.
	UploadName string

	// DownloadDir is where result files are saved.
	DownloadDir string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// Cookie is sent with every request.
	Cookie string

	// Headers are extra headers sent with every request.
	Headers map[string]string

	// UserAgent is the User-Agent header.
	UserAgent string

	// BatchSize is the number of lists submitted concurrently.
	BatchSize int

	// DBDir is the directory of the history database.
	DBDir string

	// NoHistory disables recording submissions.
	NoHistory bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the history output format.
	JSONReport     bool
	MarkdownReport bool

	// ConfigFilePath is an explicit .secretsanta path.
	ConfigFilePath string

	// EnvFile is the dotenv file read for overrides.
	EnvFile string

	// Inputs are the employee list files to submit.
	Inputs []string
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL:   DefaultServerURL,
		Endpoint:    DefaultEndpoint,
		FormID:      DefaultFormID,
		FileField:   DefaultFileField,
		DownloadDir: DefaultDownloadDir(),
		UserAgent:   DefaultUserAgent,
		BatchSize:   DefaultBatchSize,
		DBDir:       XDGDataDir(),
		EnvFile:     DefaultEnvFile,
	}
}

// DefaultDownloadDir returns the user's download directory, falling back to
// ~/Downloads when the platform does not define one.
func DefaultDownloadDir() string {
	if xdg.UserDirs.Download != "" {
		return xdg.UserDirs.Download
	}
	return filepath.Join(xdg.Home, "Downloads")
}

// XDGDataDir returns the data directory, e.g. ~/.local/share/secretsanta.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory, e.g. ~/.config/secretsanta.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration for a submit run and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if err := ValidateServerURL(c.ServerURL); err != nil {
		return err
	}
	if c.Endpoint == "" || strings.Contains(c.Endpoint, "://") {
		return ErrInvalidEndpoint
	}
	if strings.TrimSpace(c.FormID) == "" {
		return ErrNoFormID
	}
	if strings.TrimSpace(c.FileField) == "" {
		return ErrNoFileField
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	return c.ValidateReportFormat()
}

// ValidateReportFormat checks that at most one report format is selected.
func (c *Config) ValidateReportFormat() error {
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ValidateServerURL checks that raw is an absolute http(s) URL with a host.
func ValidateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServerURL
	}
	return nil
}

// ApplyServerConfig merges settings from the config file into c. Cookie and
// scalar settings replace the current value when set; headers are merged with
// the file's headers taking precedence.
func (c *Config) ApplyServerConfig(sc ServerConfig) {
	if sc.Cookie != "" {
		c.Cookie = sc.Cookie
	}
	if sc.Endpoint != "" {
		c.Endpoint = sc.Endpoint
	}
	if sc.FormID != "" {
		c.FormID = sc.FormID
	}
	if sc.FileField != "" {
		c.FileField = sc.FileField
	}
	if sc.UserAgent != "" {
		c.UserAgent = sc.UserAgent
	}
	if len(sc.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(sc.Headers))
		}
		for k, v := range sc.Headers {
			c.Headers[k] = v
		}
	}
}
