package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gridline/internal/editor"
	"github.com/roach88/gridline/internal/notify"
	"github.com/roach88/gridline/internal/query"
)

// DefaultEndpoint is the remote collection used when neither the
// config file nor the --endpoint flag names one.
const DefaultEndpoint = "http://localhost:3000"

// Duration wraps time.Duration so config files can say "30s" or "3s".
type Duration time.Duration

// UnmarshalYAML parses a duration string ("30s", "1m30s").
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds tunable controller settings. Precedence is defaults,
// then the config file, then command-line flags.
type Config struct {
	// Endpoint is the remote collection base URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// RowsPerPage is the initial page size.
	RowsPerPage int `yaml:"rows_per_page,omitempty"`

	// PickerTimeout bounds how long an untouched date picker stays open.
	PickerTimeout Duration `yaml:"picker_timeout,omitempty"`

	// NotificationTTL is how long sync notifications stay visible.
	NotificationTTL Duration `yaml:"notification_ttl,omitempty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Endpoint:        DefaultEndpoint,
		RowsPerPage:     query.DefaultRowsPerPage,
		PickerTimeout:   Duration(editor.DefaultPickerTimeout),
		NotificationTTL: Duration(notify.DefaultTTL),
	}
}

// LoadConfig reads a YAML config file and merges it over the defaults.
// An empty path returns the defaults as-is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.Endpoint != "" {
		cfg.Endpoint = file.Endpoint
	}
	if file.RowsPerPage > 0 {
		cfg.RowsPerPage = file.RowsPerPage
	}
	if file.PickerTimeout > 0 {
		cfg.PickerTimeout = file.PickerTimeout
	}
	if file.NotificationTTL > 0 {
		cfg.NotificationTTL = file.NotificationTTL
	}
	return cfg, nil
}
