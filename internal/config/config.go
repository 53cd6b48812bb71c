package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

// CurrentVersion is the only configuration format version understood by Load.
const CurrentVersion = "1"

// Config is the assetrev configuration file.
type Config struct {
	Version         string         `yaml:"version"`
	RootDir         string         `yaml:"root_dir"`   // Root for root-absolute references
	OutputDir       string         `yaml:"output_dir"` // Where revisioned files are written
	HashLength      int            `yaml:"hash_length"`
	Algorithm       Algorithm      `yaml:"algorithm"`
	Ignore          []string       `yaml:"ignore"`  // Suffixes, or "re:" regular expressions
	Prefix          string         `yaml:"prefix"`  // Absolute URL prefix for rewritten references
	Include         []string       `yaml:"include"` // Extensions collected from root_dir; empty means all files
	ResolveExternal bool           `yaml:"resolve_external"`
	Manifest        ManifestConfig `yaml:"manifest"`
	Log             LogConfig      `yaml:"log"`
	Metrics         MetricsConfig  `yaml:"metrics"`
	Notify          NotifyConfig   `yaml:"notify"`
	Watch           WatchConfig    `yaml:"watch"`
}

// ManifestConfig controls the revision manifest written after each run.
type ManifestConfig struct {
	Enabled bool           `yaml:"enabled"`
	Path    string         `yaml:"path"` // Relative paths are placed in output_dir
	Format  ManifestFormat `yaml:"format"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile dump.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // Empty disables metrics output
}

// NotifyConfig enables run notifications over NATS.
type NotifyConfig struct {
	URL     string `yaml:"url"` // Empty disables notifications
	Subject string `yaml:"subject"`
	Timeout string `yaml:"timeout"`
	Retries int    `yaml:"retries"` // Publish attempts after the first failure
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
	Resync   string `yaml:"resync"` // Periodic full re-run; empty disables
}

// DebounceDuration returns the parsed debounce window. Validation guarantees it parses.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(w.Debounce)
	return d
}

// ResyncInterval returns the periodic resync interval, or 0 when disabled.
func (w WatchConfig) ResyncInterval() time.Duration {
	if w.Resync == "" {
		return 0
	}
	d, _ := time.ParseDuration(w.Resync)
	return d
}

// TimeoutDuration returns the publish timeout. Validation guarantees it parses.
func (n NotifyConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(n.Timeout)
	return d
}

// ManifestPath returns the manifest location, resolved against the output directory.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest.Path) {
		return c.Manifest.Path
	}
	return filepath.Join(c.OutputDir, c.Manifest.Path)
}

// Load reads, normalizes, defaults and validates a configuration file. Environment files
// next to the configuration are loaded first so ${VAR} references can use them.
func Load(configPath string) (*Config, error) {
	if loaded, err := loadEnvFiles(filepath.Dir(configPath)); err != nil {
		return nil, err
	} else if len(loaded) > 0 {
		slog.Debug("Loaded environment files", slog.Any("files", loaded))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "configuration file not found").
				WithContext("path", configPath).
				UserAction().
				Fatal().
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration file").
			WithContext("path", configPath).
			Fatal().
			Build()
	}
	return Parse(data)
}

// Parse builds a configuration from YAML content, expanding ${VAR} references.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
			Fatal().
			UserAction().
			Build()
	}
	if cfg.Version != "" && cfg.Version != CurrentVersion {
		return nil, errors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize normalizes, defaults and validates c. Call it again after applying command line
// overrides.
func (c *Config) Finalize() error {
	res := NormalizeConfig(c)
	for _, w := range res.Warnings {
		slog.Warn("Configuration normalized", slog.String("detail", w))
	}
	ApplyDefaults(c)
	return ValidateConfig(c)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Version:    CurrentVersion,
		RootDir:    "./public",
		OutputDir:  "./dist",
		HashLength: 8,
		Algorithm:  AlgorithmBLAKE3,
		Ignore:     []string{"favicon.ico", "robots.txt", "re:^/index\\.html$"},
		Include:    []string{".html", ".css", ".js", ".png", ".jpg", ".svg", ".woff2"},
		Manifest: ManifestConfig{
			Enabled: true,
			Path:    "rev-manifest.json",
			Format:  ManifestFormatJSON,
		},
		Log: LogConfig{Level: LogLevelInfo, Format: LogFormatText},
		Notify: NotifyConfig{
			URL:     "${ASSETREV_NATS_URL}",
			Subject: DefaultNotifySubject,
			Retries: 2,
		},
		Watch: WatchConfig{Debounce: "500ms", Resync: "1h"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example configuration").Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create configuration directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
