package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabPlan/internal/export"
	"github.com/piwi3910/SlabPlan/internal/logging"
	"github.com/piwi3910/SlabPlan/internal/project"
	"github.com/piwi3910/SlabPlan/internal/view"
)

// loadView reads a saved placement result and shows it in a fresh view.
func loadView(ctx context.Context, path string) (*view.View, error) {
	result, err := project.LoadResult(path)
	if err != nil {
		return nil, err
	}
	v := view.New(view.WithLogger(logging.FromContext(ctx)))
	v.Show(result)
	return v, nil
}

// newRenderCmd creates the render command, which writes one PNG per
// drawable sheet.
func newRenderCmd(root *rootOpts) *cobra.Command {
	var outDir string
	var ratio float64

	cmd := &cobra.Command{
		Use:   "render [result.json]",
		Short: "Render every sheet of a placement result to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("ratio") {
				ratio = root.cfg.PixelRatio
			}
			return runRender(cmd.Context(), args[0], outDir, ratio)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "directory for the PNG files")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "device pixels per mm (default from config)")

	return cmd
}

func runRender(ctx context.Context, input, outDir string, ratio float64) error {
	logger := logging.FromContext(ctx)
	v, err := loadView(ctx, input)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	prog := logging.NewProgress(logger)
	images := v.RenderSheets(ratio)
	if len(images) == 0 {
		return fmt.Errorf("%s has no drawable sheets", input)
	}
	for _, si := range images {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("sheet-%d.png", si.Sheet.SheetIndex))
		if err := writePNG(path, si); err != nil {
			return err
		}
		logger.Debug("sheet written", "path", path)
	}
	prog.Done(fmt.Sprintf("Rendered %d sheet(s) to %s", len(images), outDir))
	return nil
}

func writePNG(path string, si view.SheetImage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, si.Image); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode sheet %d: %w", si.Sheet.SheetIndex, err)
	}
	return f.Close()
}

// newExportCmd creates the export command for the paginated PDF report.
func newExportCmd(root *rootOpts) *cobra.Command {
	var output, title string
	var ratio float64

	cmd := &cobra.Command{
		Use:   "export [result.json]",
		Short: "Write the paginated PDF report for a placement result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = root.cfg.ExportFileName
			}
			if !cmd.Flags().Changed("ratio") {
				ratio = root.cfg.PixelRatio
			}
			ctx := cmd.Context()
			v, err := loadView(ctx, args[0])
			if err != nil {
				return err
			}
			logger := logging.FromContext(ctx)
			doc, err := v.Export(ctx, export.NewExporter(logger), ratio, export.Options{Title: title})
			if err != nil {
				return err
			}
			if err := doc.Save(output); err != nil {
				return err
			}
			logger.Info("report saved", "path", output, "pages", doc.PageCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PDF file (default from config)")
	cmd.Flags().StringVar(&title, "title", "", "report title")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "device pixels per mm (default from config)")

	return cmd
}

// newLabelsCmd creates the labels command for QR-coded piece labels.
func newLabelsCmd(_ *rootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "labels [result.json]",
		Short: "Write one QR-coded label per placed piece",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := project.LoadResult(args[0])
			if err != nil {
				return err
			}
			if err := export.ExportLabels(output, result); err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Info("labels saved", "path", output, "count", len(export.CollectLabelInfos(result)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "labels.pdf", "PDF file")
	return cmd
}

func newDXFCmd(_ *rootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dxf [result.json]",
		Short: "Write the cutting plan as a DXF drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := project.LoadResult(args[0])
			if err != nil {
				return err
			}
			if err := export.ExportDXF(output, result); err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Info("drawing saved", "path", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "cutting-plan.dxf", "DXF file")
	return cmd
}

// newMetricsCmd creates the metrics command, which prints the summary panel.
func newMetricsCmd(_ *rootOpts) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "metrics [result.json]",
		Short: "Print the summary figures of a placement result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadView(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			display := v.Snapshot().Display
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(display)
			}
			_, err = fmt.Fprint(out, display.Text())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
