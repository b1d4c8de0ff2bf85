// Package config loads the run configuration from defaults, an optional YAML
// file and the environment.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable holding the GitHub token.
const TokenEnv = "GITHUB_TOKEN"

// DefaultAPIURL is the public GitHub REST API.
const DefaultAPIURL = "https://api.github.com/"

// ErrMissingCredential is returned when TokenEnv is unset or empty.
var ErrMissingCredential = errors.New(TokenEnv + " environment variable is not set")

// Config holds every setting of a run.
type Config struct {
	Limit         int           `yaml:"limit"`
	Top           int           `yaml:"top"`
	Delay         time.Duration `yaml:"delay"`
	Timeout       time.Duration `yaml:"timeout"`
	APIURL        string        `yaml:"api_url"`
	GraphQLURL    string        `yaml:"graphql_url"`
	GraphQL       bool          `yaml:"graphql"`
	WaitRateLimit bool          `yaml:"wait_rate_limit"`
	ExcludeSelf   bool          `yaml:"exclude_self"`

	// Token is never read from the file.
	Token string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Limit:   100,
		Top:     10,
		Delay:   time.Second,
		Timeout: 30 * time.Second,
		APIURL:  DefaultAPIURL,
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return cfg, nil
}

// TokenFromEnv returns the token held in TokenEnv.
func TokenFromEnv() (string, error) {
	token := os.Getenv(TokenEnv)
	if token == "" {
		return "", ErrMissingCredential
	}
	return token, nil
}

// Validate checks the numeric settings.
func (c Config) Validate() error {
	switch {
	case c.Limit < 0:
		return errors.Errorf("limit must be 0 (unlimited) or positive, got %d", c.Limit)
	case c.Top < 1:
		return errors.Errorf("top must be at least 1, got %d", c.Top)
	case c.Delay < 0:
		return errors.Errorf("delay must not be negative, got %s", c.Delay)
	case c.Timeout < 0:
		return errors.Errorf("timeout must not be negative, got %s", c.Timeout)
	case c.APIURL == "":
		return errors.New("api_url must not be empty")
	}
	return nil
}
