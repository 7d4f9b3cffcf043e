package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabPlan/internal/export"
	"github.com/piwi3910/SlabPlan/internal/importer"
	"github.com/piwi3910/SlabPlan/internal/logging"
	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/project"
	"github.com/piwi3910/SlabPlan/internal/view"
)

// optimizeOpts holds the command-line flags for the optimize command.
type optimizeOpts struct {
	output   string  // result JSON path, stdout when empty
	pdf      string  // optional report path
	material string  // "sheet" or "roll"
	width    float64 // sheet or roll width in mm
	height   float64 // sheet height in mm
	kerf     float64 // blade width in mm
	grain    bool    // keep pieces aligned with the grain
}

// newOptimizeCmd creates the optimize command. The input is a saved job, a
// bare request payload, or a CSV/Excel piece list combined with the
// configured sheet defaults.
func newOptimizeCmd(root *rootOpts) *cobra.Command {
	var opts optimizeOpts

	cmd := &cobra.Command{
		Use:   "optimize [request|pieces.csv|pieces.xlsx]",
		Short: "Send a piece list to the optimizer and save the placement result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(cmd, root.cfg, args[0], &opts)
			if err != nil {
				return err
			}
			return runOptimize(cmd.Context(), cmd.OutOrStdout(), root, req, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "result JSON file (default stdout)")
	cmd.Flags().StringVar(&opts.pdf, "pdf", "", "also write the PDF report to this file")
	cmd.Flags().StringVar(&opts.material, "material", "", "material type: sheet, roll")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "sheet or roll width in mm")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "sheet height in mm")
	cmd.Flags().Float64Var(&opts.kerf, "kerf", 0, "kerf in mm")
	cmd.Flags().BoolVar(&opts.grain, "grain", false, "respect grain direction")

	return cmd
}

// buildRequest reads the input file and applies flag overrides.
func buildRequest(cmd *cobra.Command, cfg model.AppConfig, path string, opts *optimizeOpts) (model.OptimizationRequest, error) {
	logger := logging.FromContext(cmd.Context())

	var req model.OptimizationRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		r, err := project.LoadRequest(path)
		if err != nil {
			return req, err
		}
		req = r
	default:
		res := importer.ImportFile(path)
		for _, w := range res.Warnings {
			logger.Warn(w)
		}
		if !res.OK() {
			if len(res.Errors) == 0 {
				return req, fmt.Errorf("no pieces found in %s", path)
			}
			return req, fmt.Errorf("failed to import %s: %s", path, strings.Join(res.Errors, "; "))
		}
		req = model.NewRequest(cfg.DefaultMaterial, model.Dimensions{}, 0)
		cfg.ApplyToRequest(&req)
		req.Pieces = res.Pieces
		logger.Info("imported pieces", "file", path, "types", len(res.Pieces), "total", req.TotalPieces())
	}

	flags := cmd.Flags()
	if flags.Changed("material") {
		req.MaterialType = model.MaterialType(opts.material).Normalize()
	}
	if flags.Changed("width") {
		req.Sheet.Width = opts.width
	}
	if flags.Changed("height") {
		req.Sheet.Height = opts.height
	}
	if flags.Changed("kerf") {
		req.Kerf = opts.kerf
	}
	if flags.Changed("grain") {
		grain := opts.grain
		req.RespectGrain = &grain
	}

	if err := req.Validate(); err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

func runOptimize(ctx context.Context, stdout io.Writer, root *rootOpts, req model.OptimizationRequest, opts *optimizeOpts) error {
	logger := logging.FromContext(ctx)
	client := root.client(ctx)
	v := view.New(view.WithLogger(logger))

	prog := logging.NewProgress(logger)
	err := v.Run(ctx, func(ctx context.Context) (*model.PlacementResult, error) {
		return client.Optimize(ctx, req)
	})
	if err != nil {
		return err
	}
	prog.Done("Optimization finished")

	snap := v.Snapshot()
	data, err := json.MarshalIndent(snap.Result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if opts.output == "" {
		fmt.Fprintln(stdout, string(data))
	} else {
		if err := os.WriteFile(opts.output, data, 0644); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		logger.Info("result saved", "path", opts.output)
		fmt.Fprint(stdout, snap.Display.Text())
	}

	if opts.pdf == "" {
		return nil
	}
	if snap.State == view.Empty {
		logger.Warn("nothing was placed, skipping report")
		return nil
	}
	doc, err := v.Export(ctx, export.NewExporter(logger), root.cfg.PixelRatio, export.Options{})
	if err != nil {
		return err
	}
	if err := doc.Save(opts.pdf); err != nil {
		return err
	}
	logger.Info("report saved", "path", opts.pdf, "pages", doc.PageCount())
	return nil
}
