package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. A minimal file only needs the
// account section, everything else has a default.
type Config struct {
	DB      string        `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Status  StatusConfig  `yaml:"status"`
	Account AccountConfig `yaml:"account"`
}

type LogConfig struct {
	File     string `yaml:"file"`
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type StatusConfig struct {
	Default       string   `yaml:"default"`
	Emoji         string   `yaml:"emoji"`
	MinutesBefore *float64 `yaml:"minutes_before"`
	MaxEvents     int64    `yaml:"max_events"`
}

// Lead is how long before an event starts the status becomes active.
func (c StatusConfig) Lead() time.Duration {
	minutes := 5.0
	if c.MinutesBefore != nil {
		minutes = *c.MinutesBefore
	}
	return time.Duration(minutes * float64(time.Minute))
}

type AccountConfig struct {
	Platform        string `yaml:"platform"`
	Name            string `yaml:"name"`
	CalendarID      string `yaml:"calendar_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", filename, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default is the configuration used before any file exists, e.g. on the
// first configure run.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Save writes the configuration atomically, keeping it private to the user.
func Save(filename string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".syncstatus-*.yml")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("config: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: writing %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.Rename(tmp.Name(), filename)
}

func (c *Config) applyDefaults() {
	if c.DB == "" {
		c.DB = "syncstatus.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
	if c.Status.Default == "" {
		c.Status.Default = "busy"
	}
	if c.Status.Emoji == "" {
		c.Status.Emoji = ":spiral_calendar_pad:"
	}
	if c.Status.MaxEvents == 0 {
		c.Status.MaxEvents = 10
	}
	if c.Account.Platform == "" {
		c.Account.Platform = "google"
	}
	if c.Account.CredentialsFile == "" {
		c.Account.CredentialsFile = "credentials.json"
	}
	if c.Account.CalendarID == "" && c.Account.Platform == "google" {
		c.Account.CalendarID = "primary"
	}
}

// Validate checks the parts only a fully configured account has. Commands
// that set the account up skip it.
func (c *Config) Validate() error {
	if c.Account.Name == "" {
		return fmt.Errorf("config: account.name is required")
	}
	if c.Account.CalendarID == "" {
		return fmt.Errorf("config: account.calendar_id is required for platform %q", c.Account.Platform)
	}
	return nil
}
