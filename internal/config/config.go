// Package config holds run options and EdgeGrid credentials.
//
// Credentials are read from the process environment into an explicit struct
// once at startup and passed into the client — never kept as ambient global
// state.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables holding the EdgeGrid identity.
const (
	EnvHost             = "AKAMAI_HOST"
	EnvClientToken      = "AKAMAI_CLIENT_TOKEN"
	EnvClientSecret     = "AKAMAI_CLIENT_SECRET" //nolint:gosec // variable name, not a credential
	EnvAccessToken      = "AKAMAI_ACCESS_TOKEN"  //nolint:gosec // variable name, not a credential
	EnvAccountSwitchKey = "AKAMAI_ACCOUNT_SWITCH_KEY"
)

// Credentials is the EdgeGrid identity for one account. The four identity
// values are required; the account switch key is optional.
type Credentials struct {
	Host             string
	ClientToken      string
	ClientSecret     string
	AccessToken      string
	AccountSwitchKey string
}

// MissingCredentialsError lists the required environment variables that were
// not set. The CLI maps it to exit code 2 before any network call.
type MissingCredentialsError struct {
	Vars []string
}

func (e *MissingCredentialsError) Error() string {
	return "missing EdgeGrid environment variables: " + strings.Join(e.Vars, ", ")
}

// CredentialsFromEnv reads the EdgeGrid identity from the environment.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		Host:             os.Getenv(EnvHost),
		ClientToken:      os.Getenv(EnvClientToken),
		ClientSecret:     os.Getenv(EnvClientSecret),
		AccessToken:      os.Getenv(EnvAccessToken),
		AccountSwitchKey: os.Getenv(EnvAccountSwitchKey),
	}

	var missing []string
	for _, v := range []struct{ name, val string }{
		{EnvHost, creds.Host},
		{EnvClientToken, creds.ClientToken},
		{EnvClientSecret, creds.ClientSecret},
		{EnvAccessToken, creds.AccessToken},
	} {
		if v.val == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return Credentials{}, &MissingCredentialsError{Vars: missing}
	}
	return creds, nil
}

// HostLooksStandard reports whether the host resembles an EdgeGrid API host.
// A mismatch is only worth a warning; some accounts use custom hostnames.
func (c Credentials) HostLooksStandard() bool {
	return strings.HasPrefix(c.Host, "akab-") || strings.HasPrefix(c.Host, "akamai")
}

// Config holds edgeshift run options, optionally loaded from a YAML file.
type Config struct {
	OutDir          string        `yaml:"outDir"`          // default "./out"
	IncludeRules    bool          `yaml:"includeRules"`    // fetch and classify rule trees
	IncludeProducts bool          `yaml:"includeProducts"` // Edge DNS, GTM, EdgeWorkers, Cloudlets, Cloud Wrapper
	MetricsFile     string        `yaml:"metricsFile"`     // Prometheus textfile path, empty = off
	ScanTimeout     time.Duration `yaml:"scanTimeout"`     // whole-run deadline, default 30m
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		OutDir:      "./out",
		ScanTimeout: 30 * time.Minute,
	}
}

// Load reads a YAML config file and merges with defaults.
func Load(path string) (*Config, error) {
	c := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return c, nil
}

// Validate checks that the config values are sane.
func (c *Config) Validate() error {
	if c.OutDir == "" {
		return fmt.Errorf("outDir must not be empty")
	}
	if c.ScanTimeout <= 0 {
		return fmt.Errorf("scanTimeout must be positive, got %s", c.ScanTimeout)
	}
	return nil
}
