// Package cli implements the slabplan command-line interface. Without a
// subcommand it opens the desktop application.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabPlan/internal/logging"
	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/optimizer"
	"github.com/piwi3910/SlabPlan/internal/project"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// main calls it with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOpts holds the persistent flags and the configuration resolved from
// them before any command runs.
type rootOpts struct {
	verbose      bool
	configPath   string
	optimizerURL string

	cfg model.AppConfig
}

// launcher opens the desktop application. Tests replace it.
type launcher func(ctx context.Context, opts *rootOpts, path string) error

// Execute runs the slabplan CLI and returns an error if any command fails.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
func Execute() error {
	return newRootCmd(launchUI).ExecuteContext(context.Background())
}

func newRootCmd(launch launcher) *cobra.Command {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "slabplan [job-file]",
		Short:        "SlabPlan lays out cut pieces on sheets and rolls",
		Long:         `SlabPlan sends a piece list to a cutting-stock optimization service and renders the returned plan as sheet images, a paginated PDF report, piece labels and a DXF drawing.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithLogger(cmd.Context(), logging.New(os.Stderr, logging.Level(opts.verbose)))
			cmd.SetContext(ctx)
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return launch(cmd.Context(), opts, path)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("slabplan %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", project.DefaultConfigPath(), "path to the config file")
	root.PersistentFlags().StringVar(&opts.optimizerURL, "optimizer-url", "", "optimization service address (overrides config)")

	root.AddCommand(newOptimizeCmd(opts))
	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newLabelsCmd(opts))
	root.AddCommand(newDXFCmd(opts))
	root.AddCommand(newMetricsCmd(opts))
	root.AddCommand(newServeCmd(opts))

	return root
}

// load reads the config file and applies flag overrides.
func (o *rootOpts) load(cmd *cobra.Command) error {
	cfg, err := project.LoadAppConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.optimizerURL != "" {
		cfg.OptimizerURL = o.optimizerURL
	}
	o.cfg = cfg
	logging.FromContext(cmd.Context()).Debug("config loaded", "path", o.configPath, "optimizer", cfg.OptimizerURL)
	return nil
}

// client builds an optimizer client from the resolved configuration.
func (o *rootOpts) client(ctx context.Context) *optimizer.Client {
	return optimizer.New(o.cfg.OptimizerURL,
		time.Duration(o.cfg.RequestTimeoutSeconds)*time.Second,
		optimizer.WithLogger(logging.FromContext(ctx)),
	)
}
