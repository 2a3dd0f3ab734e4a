package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all lattice configuration.
type Config struct {
	// Debug enables the instant-solve key in every session.
	Debug bool `yaml:"debug"`

	// SplashDuration is how long the logo shows before the puzzle.
	SplashDuration string `yaml:"splash_duration"`

	// InviteFile is the CSV the email form appends to.
	InviteFile string `yaml:"invite_file"`

	Logging LoggingConfig `yaml:"logging"`
	SSH     SSHConfig     `yaml:"ssh"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // empty: stderr for servers, nowhere for the local TUI
}

// SSHConfig configures the credentialless gateway.
type SSHConfig struct {
	Addr        string  `yaml:"addr"`
	HostKey     string  `yaml:"host_key"`
	MaxSessions int64   `yaml:"max_sessions"`
	AcceptRate  float64 `yaml:"accept_rate"` // new connections per second
	AcceptBurst int     `yaml:"accept_burst"`
	IdleTimeout string  `yaml:"idle_timeout"`
}

// HTTPConfig configures the JSON API and metrics endpoint.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SplashDuration: "3s",
		InviteFile:     "invite_submissions.csv",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		SSH: SSHConfig{
			Addr:        "0.0.0.0:1337",
			HostKey:     ".ssh/lattice_ssh_host_ed25519",
			MaxSessions: 512,
			AcceptRate:  20,
			AcceptBurst: 40,
			IdleTimeout: "30m",
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8080",
		},
	}
}

// Load reads a YAML file over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("LATTICE_DEBUG"); ok {
		c.Debug = truthy(v)
	}
	if v := os.Getenv("LATTICE_INVITE_FILE"); v != "" {
		c.InviteFile = v
	}
	if v := os.Getenv("LATTICE_SSH_ADDR"); v != "" {
		c.SSH.Addr = v
	}
	if v := os.Getenv("LATTICE_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LATTICE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetSplashDuration returns the splash delay, 3s when unparsable.
func (c *Config) GetSplashDuration() time.Duration {
	d, err := time.ParseDuration(c.SplashDuration)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

// GetIdleTimeout returns how long an SSH session may sit without input.
func (c *Config) GetIdleTimeout() time.Duration {
	d, err := time.ParseDuration(c.SSH.IdleTimeout)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// SSHPort is the numeric port of SSH.Addr, for display.
func (c *Config) SSHPort() int {
	i := strings.LastIndex(c.SSH.Addr, ":")
	if i < 0 {
		return 22
	}
	p, err := strconv.Atoi(c.SSH.Addr[i+1:])
	if err != nil {
		return 22
	}
	return p
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.SplashDuration); err != nil {
		return fmt.Errorf("invalid splash_duration %q: %w", c.SplashDuration, err)
	}
	if _, err := time.ParseDuration(c.SSH.IdleTimeout); err != nil {
		return fmt.Errorf("invalid ssh.idle_timeout %q: %w", c.SSH.IdleTimeout, err)
	}
	if strings.TrimSpace(c.InviteFile) == "" {
		return fmt.Errorf("invite_file must not be empty")
	}

	validLevel := false
	for _, l := range validLevels {
		if strings.EqualFold(c.Logging.Level, l) {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLevels)
	}
	if f := c.Logging.Format; f != "json" && f != "console" {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", f)
	}

	if c.SSH.MaxSessions < 1 {
		return fmt.Errorf("ssh.max_sessions must be positive, got %d", c.SSH.MaxSessions)
	}
	if c.SSH.AcceptRate <= 0 || c.SSH.AcceptBurst < 1 {
		return fmt.Errorf("ssh accept limiter needs a positive rate and burst, got %v/%d", c.SSH.AcceptRate, c.SSH.AcceptBurst)
	}
	return nil
}
