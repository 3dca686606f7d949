// Package config holds the secretsanta configuration: built-in defaults,
// the optional .secretsanta YAML file with per-server settings, .env and
// environment overrides, and validation of the merged result.
package config
