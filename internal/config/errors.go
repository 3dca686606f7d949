package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	// ErrNoInput is returned when no employee list was given.
	ErrNoInput = errors.New("no input specified: provide at least one employee list file")

	// ErrInvalidServerURL is returned when the server URL is not an absolute http(s) URL.
	ErrInvalidServerURL = errors.New("invalid server URL: expected http(s)://host[:port]")

	// ErrInvalidEndpoint is returned when the endpoint is empty or not a path.
	ErrInvalidEndpoint = errors.New("invalid endpoint: must be a path such as /upload/employee_list")

	// ErrNoFormID is returned when the form id is empty.
	ErrNoFormID = errors.New("form id must not be empty")

	// ErrNoFileField is returned when the file field name is empty.
	ErrNoFileField = errors.New("file field name must not be empty")

	// ErrInvalidTimeout is returned when the timeout is negative. Zero means no timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
