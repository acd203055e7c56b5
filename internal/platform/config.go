package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the data directory when no config file is given.
const ConfigFileName = "notebook.yaml"

// FileConfig is the on-disk configuration.
//
//	adapter: sqlite
//	locale: en-US
//	timezone: America/Sao_Paulo
//	compare_and_swap: true
type FileConfig struct {
	Adapter        string `yaml:"adapter,omitempty"`
	Locale         string `yaml:"locale,omitempty"`
	Timezone       string `yaml:"timezone,omitempty"`
	EventBuffer    int    `yaml:"event_buffer,omitempty"`
	ReadOnly       *bool  `yaml:"read_only,omitempty"`
	CompareAndSwap *bool  `yaml:"compare_and_swap,omitempty"`
	MaxRetries     int    `yaml:"max_retries,omitempty"`
}

// LoadConfig reads a config file. A missing file yields a zero config unless
// required is set.
func LoadConfig(path string, required bool) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path.
func SaveConfig(path string, cfg FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Options turns the file settings into options. Unset fields yield none.
func (c FileConfig) Options() ([]Option, error) {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.Locale != "" {
		opts = append(opts, WithLocale(c.Locale))
	}
	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
		opts = append(opts, WithLocation(loc))
	}
	if c.EventBuffer > 0 {
		opts = append(opts, WithEventBuffer(c.EventBuffer))
	}
	if c.ReadOnly != nil {
		opts = append(opts, WithReadOnly(*c.ReadOnly))
	}
	if c.CompareAndSwap != nil {
		opts = append(opts, WithCompareAndSwap(*c.CompareAndSwap))
	}
	if c.MaxRetries > 0 {
		opts = append(opts, WithMaxRetries(c.MaxRetries))
	}
	return opts, nil
}

// resolve merges the config file under the explicit options: file values
// first, then every option again so explicit ones win.
func resolve(uri string, opts []Option) (*options, error) {
	o := apply(opts)

	path, required := o.configFile, true
	if path == "" {
		if o.storage != nil || o.adapter == AdapterMemory || uri == "" {
			return o, nil
		}
		path, required = filepath.Join(uri, ConfigFileName), false
	}

	cfg, err := LoadConfig(path, required)
	if err != nil {
		return nil, err
	}
	fileOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if len(fileOpts) == 0 {
		return o, nil
	}
	if o.logger != nil {
		o.logger.Debug("loaded config file", "path", path)
	}
	return apply(append(fileOpts, opts...)), nil
}
