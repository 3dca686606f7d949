package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// Environment variables read by ApplyEnv.
const (
	EnvServer      = "SECRETSANTA_SERVER"
	EnvDownloadDir = "SECRETSANTA_DOWNLOAD_DIR"
	EnvProxy       = "SECRETSANTA_PROXY"
)

// LoadEnv returns the variables of the dotenv file at path overlaid by the
// process environment. A missing file is not an error.
func LoadEnv(path string) (map[string]string, error) {
	env := map[string]string{}
	if path != "" {
		values, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		for k, v := range values {
			env[k] = v
		}
	}

	for _, key := range []string{EnvServer, EnvDownloadDir, EnvProxy} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			env[key] = v
		}
	}
	return env, nil
}

// ApplyEnv sets fields from env for the variables that are present and non-empty.
func (c *Config) ApplyEnv(env map[string]string) {
	if v := env[EnvServer]; v != "" {
		c.ServerURL = v
	}
	if v := env[EnvDownloadDir]; v != "" {
		c.DownloadDir = v
	}
	if v := env[EnvProxy]; v != "" {
		c.ProxyAddress = v
	}
}
