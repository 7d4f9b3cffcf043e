package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabPlan/internal/logging"
	"github.com/piwi3910/SlabPlan/internal/project"
	"github.com/piwi3910/SlabPlan/internal/server"
	"github.com/piwi3910/SlabPlan/internal/view"
)

// newServeCmd creates the serve command, which runs the browser preview.
func newServeCmd(root *rootOpts) *cobra.Command {
	var addr, resultPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the preview API for a browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = root.cfg.ListenAddr
			}
			logger := logging.FromContext(ctx)
			v := view.New(view.WithLogger(logger))
			if resultPath != "" {
				result, err := project.LoadResult(resultPath)
				if err != nil {
					return err
				}
				v.Show(result)
			}

			srv := server.New(v, root.client(ctx),
				server.WithLogger(logger),
				server.WithPixelRatio(root.cfg.PixelRatio),
			)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&resultPath, "result", "", "placement result to show on start")
	return cmd
}
