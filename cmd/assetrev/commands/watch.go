package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/assetrev/internal/logfields"
	"git.home.luguber.info/inful/assetrev/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Overrides `embed:""`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config, &w.Overrides)
	if err != nil {
		return err
	}
	logger := NewLogger(os.Stderr, cfg.Log, root.Verbose)
	g.Logger = logger
	slog.SetDefault(logger)

	runner, err := NewRunner(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := watch.New(watch.Config{
		Root:     cfg.RootDir,
		Skip:     []string{cfg.OutputDir},
		Debounce: cfg.Watch.DebounceDuration(),
		Resync:   cfg.Watch.ResyncInterval(),
		Logger:   logger,
		Run: func(ctx context.Context, reason string) error {
			_, err := runner.Run(ctx, reason)
			return err
		},
	})
	if err != nil {
		return err
	}

	logger.Info("Watching for changes", logfields.Root(cfg.RootDir))
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("Watcher stopped")
	return nil
}
