package cli

import (
	"context"

	"github.com/piwi3910/SlabPlan/internal/logging"
	"github.com/piwi3910/SlabPlan/internal/ui"
)

func launchUI(ctx context.Context, opts *rootOpts, path string) error {
	return ui.Run(ctx, ui.Config{
		App:        opts.cfg,
		ConfigPath: opts.configPath,
		Optimizer:  opts.client(ctx),
		Logger:     logging.FromContext(ctx),
		OpenPath:   path,
	})
}
