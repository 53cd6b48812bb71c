package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/assetrev/internal/config"
	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

// Global is shared with every subcommand.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Rev   RevCmd   `cmd:"" default:"withargs" help:"Revision assets once and write them to the output directory"`
	Watch WatchCmd `cmd:"" help:"Revision assets and re-run whenever files below the root change"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// Overrides are the configuration values settable from the command line.
type Overrides struct {
	Root       string   `short:"r" name:"root" help:"Root directory of the assets" type:"path"`
	Output     string   `short:"o" name:"output" help:"Output directory for revisioned files" type:"path"`
	HashLength int      `name:"hash-length" help:"Digest characters in file names"`
	Algorithm  string   `name:"algorithm" help:"Digest algorithm (blake3|sha256)"`
	Prefix     string   `name:"prefix" help:"URL prefix for rewritten references, e.g. https://cdn.example.com/"`
	Ignore     []string `name:"ignore" help:"Suffix or re:pattern of files that keep their name (repeatable)"`
	Include    []string `name:"include" help:"Only collect files with these extensions (repeatable)"`
	External   bool     `name:"resolve-external" help:"Resolve references to files outside the collected set"`
	Manifest   string   `name:"manifest" help:"Write the revision manifest to this path"`
}

// apply copies every flag that was set onto cfg.
func (o *Overrides) apply(cfg *config.Config) {
	if o.Root != "" {
		cfg.RootDir = o.Root
	}
	if o.Output != "" {
		cfg.OutputDir = o.Output
	}
	if o.HashLength != 0 {
		cfg.HashLength = o.HashLength
	}
	if o.Algorithm != "" {
		cfg.Algorithm = config.Algorithm(o.Algorithm)
	}
	if o.Prefix != "" {
		cfg.Prefix = o.Prefix
	}
	if len(o.Ignore) > 0 {
		if cfg.Ignore == nil {
			cfg.Ignore = append([]string(nil), config.DefaultIgnore...)
		}
		cfg.Ignore = append(cfg.Ignore, o.Ignore...)
	}
	if len(o.Include) > 0 {
		cfg.Include = o.Include
	}
	if o.External {
		cfg.ResolveExternal = true
	}
	if o.Manifest != "" {
		cfg.Manifest.Enabled = true
		cfg.Manifest.Path = o.Manifest
	}
}

// LoadConfig reads the configuration file, when given, and applies overrides. Root and
// output directories are required from one source or the other.
func LoadConfig(path string, o *Overrides) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	o.apply(cfg)
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	if cfg.RootDir == "" {
		return nil, errors.ConfigError("root directory is required (--root or root_dir)").Build()
	}
	if cfg.OutputDir == "" {
		return nil, errors.ConfigError("output directory is required (--output or output_dir)").Build()
	}
	return cfg, nil
}

// NewLogger builds the slog logger described by the configuration; verbose forces debug.
func NewLogger(w io.Writer, lc config.LogConfig, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lc.Level.SlogLevel()}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// absDir resolves a configured directory for consistent comparisons.
func absDir(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
