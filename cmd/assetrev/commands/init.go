package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/assetrev/internal/config"
	"git.home.luguber.info/inful/assetrev/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Output string `short:"o" default:"assetrev.yaml" help:"Where to write the configuration file"`
	Force  bool   `short:"f" help:"Overwrite an existing file"`
}

func (i *InitCmd) Run(_ *Global, _ *CLI) error {
	if err := config.Init(i.Output, i.Force); err != nil {
		return err
	}
	slog.Info("Configuration written", logfields.Path(i.Output))
	return nil
}
