package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/secretsanta/internal/config"
	"github.com/nao1215/secretsanta/internal/dom"
	"github.com/nao1215/secretsanta/internal/download"
	"github.com/nao1215/secretsanta/internal/formdata"
	"github.com/nao1215/secretsanta/internal/history"
	"github.com/nao1215/secretsanta/internal/transport"
	"github.com/nao1215/secretsanta/internal/uploader"
)

var (
	// errNotIntercepted is returned when the page's submit was not taken over by the handler.
	errNotIntercepted = errors.New("form submission was not intercepted")

	// errNoFileInput is returned when the form has no file input with the configured name.
	errNoFileInput = errors.New("form has no file input")

	// errSubmissionsFailed summarises failures of a multi-file run.
	errSubmissionsFailed = errors.New("submissions failed")
)

// NewSubmitCmd creates the submit command.
func NewSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <employee-list.csv>...",
		Short: "Upload employee lists and save the Secret Santa results",
		Long: `Submit uploads each employee list through the server's upload form.

On success the server's response is saved as Secret_Santa_Result_<year>.csv in
the download directory (a " (n)" suffix is added if the name is taken). On
failure "Failed to upload files. <status>" is reported, nothing is saved and
the exit status is 1.

Examples:
  # Upload to the default server (http://127.0.0.1:8000)
  secretsanta submit employees.csv

  # Upload to another server and save into ./results
  secretsanta submit -s https://santa.example.com -o results employees.csv

  # Several lists at once, two in flight
  secretsanta submit -b 2 team-a.csv team-b.csv team-c.csv

  # Use the server's own page markup
  secretsanta submit --page upload.html employees.csv`,
		Args: cobra.ArbitraryArgs,
		RunE: runSubmitCmd,
	}

	f := cmd.Flags()
	f.StringP("server", "s", config.DefaultServerURL, "Base URL of the Secret Santa server")
	f.String("endpoint", config.DefaultEndpoint, "Upload path on the server")
	f.String("form-id", config.DefaultFormID, "Id of the upload form on the page")
	f.String("field", config.DefaultFileField, "Name of the form's file input")
	f.String("page", "", "HTML page holding the upload form (default: built-in page)")
	f.String("upload-name", "", "File name sent with the upload (default: the input's base name)")
	f.StringP("output", "o", "", "Directory to save results in (default: your downloads directory)")
	f.String("proxy", "", "SOCKS5 proxy address (host:port)")
	f.DurationP("timeout", "t", 0, "Request timeout (0 means none)")
	f.IntP("batch", "b", config.DefaultBatchSize, "Number of lists submitted concurrently")
	f.String("cookie", "", "Cookie sent with every request")
	f.StringToStringP("header", "H", nil, "Extra request header (Name=Value, repeatable)")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent header")
	f.StringP("config", "c", "", "Configuration file path (default: .secretsanta in current or home directory)")
	f.String("env-file", config.DefaultEnvFile, "dotenv file with SECRETSANTA_* overrides")
	f.String("db-dir", "", "History database directory (default: XDG data directory)")
	f.Bool("no-history", false, "Do not record the submission")

	return cmd
}

func runSubmitCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildSubmitConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSubmit(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildSubmitConfig merges defaults, environment, config file and flags, in
// increasing order of precedence.
func buildSubmitConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	cfg.Verbose = getBoolFlag(cmd, "verbose")

	var err error
	if cfg.EnvFile, err = flags.GetString("env-file"); err != nil {
		return nil, err
	}
	env, err := config.LoadEnv(cfg.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cfg.EnvFile, err)
	}
	cfg.ApplyEnv(env)

	// The server decides which config file entry applies.
	if err := setIfChanged(flags, "server", &cfg.ServerURL); err != nil {
		return nil, err
	}

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	file, err := loadConfigFile(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	if file != nil {
		cfg.ApplyServerConfig(file.ServerConfig(cfg.ServerURL))
	}

	for name, dst := range map[string]*string{
		"endpoint":    &cfg.Endpoint,
		"form-id":     &cfg.FormID,
		"field":       &cfg.FileField,
		"output":      &cfg.DownloadDir,
		"proxy":       &cfg.ProxyAddress,
		"cookie":      &cfg.Cookie,
		"user-agent":  &cfg.UserAgent,
		"db-dir":      &cfg.DBDir,
		"page":        &cfg.PagePath,
		"upload-name": &cfg.UploadName,
	} {
		if err := setIfChanged(flags, name, dst); err != nil {
			return nil, err
		}
	}

	headers, err := flags.GetStringToString("header")
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}

	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.NoHistory, err = flags.GetBool("no-history"); err != nil {
		return nil, err
	}

	cfg.Inputs = args
	return cfg, nil
}

// setIfChanged copies a string flag into dst when it was given on the command line.
func setIfChanged(flags *pflag.FlagSet, name string, dst *string) error {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// loadConfigFile loads the config file. An explicitly given path must exist;
// otherwise a missing file yields nil.
func loadConfigFile(explicitPath string) (*config.File, error) {
	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return nil, nil
	}

	f, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return f, nil
}

// submitter holds everything shared by the submissions of one run.
type submitter struct {
	cfg        *config.Config
	client     *transport.Client
	downloader *download.Dir
	store      *history.Store
	page       []byte
	logger     *slog.Logger

	outMu sync.Mutex
	out   io.Writer
}

func runSubmit(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	client, err := transport.NewClient(cfg.ServerURL,
		transport.WithTimeout(cfg.Timeout),
		transport.WithProxy(cfg.ProxyAddress),
		transport.WithCookie(cfg.Cookie),
		transport.WithHeaders(cfg.Headers),
		transport.WithUserAgent(cfg.UserAgent),
		transport.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	if cfg.ProxyAddress != "" {
		if status := transport.CheckProxy(ctx, cfg.ProxyAddress); status != transport.ProxyStatusOK {
			return fmt.Errorf("proxy check failed: %s: %w", status, status.Err())
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}

	page := dom.DefaultPageHTML()
	if cfg.PagePath != "" {
		if page, err = os.ReadFile(cfg.PagePath); err != nil {
			return fmt.Errorf("failed to read page: %w", err)
		}
	}

	s := &submitter{
		cfg:        cfg,
		client:     client,
		downloader: download.NewDir(cfg.DownloadDir, download.WithLogger(logger)),
		page:       page,
		logger:     logger,
		out:        out,
	}

	if !cfg.NoHistory {
		store, err := history.Open(cfg.DBDir, history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()
		s.store = store
	}

	if len(cfg.Inputs) == 1 || cfg.BatchSize == 1 {
		var failed int
		for _, input := range cfg.Inputs {
			if err := s.submit(ctx, input); err != nil {
				if len(cfg.Inputs) == 1 {
					return err
				}
				s.printf("%s: %v\n", input, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d", errSubmissionsFailed, failed, len(cfg.Inputs))
		}
		return nil
	}

	batch := uploader.NewBatchSubmitter(
		uploader.WithConcurrency(cfg.BatchSize),
		uploader.WithBatchLogger(logger),
	)
	errs := batch.Submit(ctx, cfg.Inputs, s.submit)

	var failed int
	for i, err := range errs {
		if err != nil {
			s.printf("%s: %v\n", cfg.Inputs[i], err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errSubmissionsFailed, failed, len(cfg.Inputs))
	}
	return nil
}

func (s *submitter) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// submit runs one employee list through a freshly loaded page.
func (s *submitter) submit(ctx context.Context, input string) error {
	data, err := os.ReadFile(input) //nolint:gosec // user-provided input path is intentional
	if err != nil {
		return fmt.Errorf("failed to read employee list: %w", err)
	}

	page, err := dom.ParsePage(bytes.NewReader(s.page),
		dom.WithOrigin(s.client.Origin()),
		dom.WithDownloader(s.downloader),
		dom.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}

	var outcome *uploader.Outcome
	h := uploader.New(s.client,
		uploader.WithFormID(s.cfg.FormID),
		uploader.WithEndpoint(s.cfg.Endpoint),
		uploader.WithLogger(s.logger),
		uploader.WithRecorder(uploader.RecorderFunc(func(_ context.Context, o *uploader.Outcome) {
			outcome = o
		})),
	)
	h.Register(page)
	page.Load(ctx)

	if err := selectFile(page, s.cfg, input, data); err != nil {
		return err
	}

	e, err := page.Submit(ctx, s.cfg.FormID)
	if err != nil {
		return err
	}
	if !e.DefaultPrevented() || outcome == nil {
		return fmt.Errorf("%w: #%s", errNotIntercepted, s.cfg.FormID)
	}

	saved, err := savedDownload(page, outcome)
	s.record(ctx, input, outcome, saved, err)

	if outcome.Err != nil {
		return outcome.Err
	}
	if err != nil {
		return err
	}
	s.printf("Saved %s\n", saved)
	return nil
}

// selectFile puts the employee list into the form's file input.
func selectFile(page *dom.Page, cfg *config.Config, input string, data []byte) error {
	form := page.GetElementByID(cfg.FormID)
	if form == nil {
		return fmt.Errorf("%w: #%s", dom.ErrElementNotFound, cfg.FormID)
	}
	field := form.FieldByName(cfg.FileField)
	if field == nil {
		return fmt.Errorf("%w named %q", errNoFileInput, cfg.FileField)
	}

	name := cfg.UploadName
	if name == "" {
		name = filepath.Base(input)
	}
	return field.SetFiles(&formdata.File{
		Name:        name,
		ContentType: formdata.ContentTypeFor(name),
		Data:        data,
	})
}

// savedDownload returns where the outcome's result file was written.
func savedDownload(page *dom.Page, o *uploader.Outcome) (string, error) {
	if o.Err != nil {
		return "", nil
	}
	downloads := page.Downloads()
	for i := len(downloads) - 1; i >= 0; i-- {
		d := downloads[i]
		if d.Name != o.FileName {
			continue
		}
		if d.Err != nil {
			return "", fmt.Errorf("failed to save %s: %w", d.Name, d.Err)
		}
		return d.Path, nil
	}
	return "", fmt.Errorf("no download recorded for %s", o.FileName)
}

// record stores the outcome in the history database, if enabled.
func (s *submitter) record(ctx context.Context, input string, o *uploader.Outcome, saved string, saveErr error) {
	if s.store == nil {
		return
	}

	r := &history.Record{
		SubmissionID: o.SubmissionID,
		Timestamp:    o.StartedAt,
		Server:       s.client.BaseURL(),
		Endpoint:     o.Endpoint,
		FormID:       o.FormID,
		Source:       input,
		StatusCode:   o.StatusCode,
		StatusText:   o.StatusText,
		SavedPath:    saved,
	}
	switch {
	case o.Err != nil:
		r.Error = o.Err.Error()
	case saveErr != nil:
		r.Error = saveErr.Error()
	default:
		r.FileName = o.FileName
		r.Size = int64(o.Blob.Size())
		r.Digest = history.Digest(o.Blob.Bytes())
	}

	if err := s.store.Save(ctx, r); err != nil {
		s.logger.Warn("failed to record submission", "submission", o.SubmissionID, "error", err)
	}
}
