package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/assetrev/internal/logfields"
)

// RevCmd implements the 'rev' command.
type RevCmd struct {
	Overrides `embed:""`
}

func (r *RevCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config, &r.Overrides)
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

	start := time.Now()
	res, err := runner.Run(context.Background(), "")
	if err != nil {
		return err
	}
	logger.Info("Revision complete",
		logfields.Root(res.Root),
		logfields.Count(len(res.Outputs)),
		slog.Int("unresolved_references", res.Unresolved),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}
