// Package export turns rendered cutting plans into printable documents:
// the paginated PDF report, QR-coded piece labels and a DXF drawing.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"
	"golang.org/x/image/draw"

	"github.com/piwi3910/SlabPlan/internal/model"
)

// DefaultFileName is the name the report is saved under.
const DefaultFileName = "cutting-plan.pdf"

// ErrNoSurfaces is returned when there is nothing to export.
var ErrNoSurfaces = errors.New("no rendered sheets to export")

// Options configures the report header.
type Options struct {
	Title    string
	Subtitle string
}

// Exporter captures rendered sheets and lays them out on fixed-size pages.
type Exporter struct {
	Layout PageLayout
	Logger *log.Logger
}

func NewExporter(logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{Layout: A4Portrait(), Logger: logger}
}

// Document is a finished report held in memory.
type Document struct {
	plan Plan
	data []byte
}

// Plan returns the page layout the document was built from.
func (d *Document) Plan() Plan { return d.plan }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.plan.Pages) }

// Bytes returns the encoded PDF.
func (d *Document) Bytes() []byte { return d.data }

// WriteTo writes the encoded PDF to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// Save writes the document to path through a temporary file in the same
// directory, so a failed write never leaves a partial report behind.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".slabplan-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(d.data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Export captures every surface in sheet index order and paginates the
// images: one unbroken block per sheet for sheet goods, one tall image
// sliced across pages for rolls. Any failure aborts the whole export and
// no document is returned.
func (e *Exporter) Export(ctx context.Context, surfaces []Capturable, mode model.MaterialType, opts Options) (*Document, error) {
	if len(surfaces) == 0 {
		return nil, ErrNoSurfaces
	}
	logger := e.Logger
	if logger == nil {
		logger = log.Default()
	}
	mode = mode.Normalize()

	images, err := captureAll(ctx, surfaces)
	if err != nil {
		logger.Warn("export aborted", "err", err)
		return nil, err
	}
	logger.Debug("captured sheets", "count", len(images), "mode", mode)

	var plan Plan
	switch mode {
	case model.MaterialRoll:
		roll := stackImages(images)
		images = []image.Image{roll}
		b := roll.Bounds()
		plan = PlanContinuous(ImageSize{Width: float64(b.Dx()), Height: float64(b.Dy())}, e.Layout)
	default:
		sizes := make([]ImageSize, len(images))
		for i, img := range images {
			b := img.Bounds()
			sizes[i] = ImageSize{Width: float64(b.Dx()), Height: float64(b.Dy())}
		}
		plan = PlanDiscrete(sizes, e.Layout)
	}

	data, err := e.writePDF(plan, images, mode, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("report built", "pages", len(plan.Pages), "images", plan.ImageCount(), "bytes", len(data))
	return &Document{plan: plan, data: data}, nil
}

// stackImages joins roll segments top to bottom at the first segment's
// width. A single image is returned unchanged.
func stackImages(images []image.Image) image.Image {
	if len(images) == 1 {
		return images[0]
	}
	width := images[0].Bounds().Dx()
	heights := make([]int, len(images))
	total := 0
	for i, img := range images {
		b := img.Bounds()
		heights[i] = max(1, b.Dy()*width/b.Dx())
		total += heights[i]
	}

	out := image.NewRGBA(image.Rect(0, 0, width, total))
	y := 0
	for i, img := range images {
		dst := image.Rect(0, y, width, y+heights[i])
		draw.ApproxBiLinear.Scale(out, dst, img, img.Bounds(), draw.Src, nil)
		y += heights[i]
	}
	return out
}

func (e *Exporter) writePDF(plan Plan, images []image.Image, mode model.MaterialType, opts Options) ([]byte, error) {
	l := e.Layout
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetMargins(l.MarginLeft, l.MarginTop, l.MarginRight)
	pdf.SetAutoPageBreak(false, l.MarginBottom)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := opts.Title
	if title == "" {
		title = "Cutting Plan"
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("SlabPlan", true)

	names := make([]string, len(images))
	for i, img := range images {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode image %d: %w", i+1, err)
		}
		names[i] = fmt.Sprintf("sheet_%d", i)
		pdf.RegisterImageOptionsReader(names[i], fpdf.ImageOptions{ImageType: "PNG"}, &buf)
	}

	for n, page := range plan.Pages {
		pdf.AddPage()
		switch {
		case n == 0:
			drawTitle(pdf, l, tr(title), tr(opts.Subtitle))
		case mode == model.MaterialRoll:
			drawRunningHeader(pdf, l, tr(title), n+1)
		}

		for _, p := range page.Placements {
			if p.Clip != nil {
				pdf.ClipRect(p.Clip.X, p.Clip.Y, p.Clip.W, p.Clip.H, false)
			}
			pdf.ImageOptions(names[p.Image], p.X, p.Y, p.W, p.H, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			if p.Clip != nil {
				pdf.ClipEnd()
			}
		}
		drawFooter(pdf, l)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to build PDF: %w", err)
	}
	return out.Bytes(), nil
}

func drawTitle(pdf *fpdf.Fpdf, l PageLayout, title, subtitle string) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(l.MarginLeft, l.MarginTop)
	pdf.CellFormat(l.PrintableWidth(), 9, title, "", 0, "L", false, 0, "")

	if subtitle != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(80, 80, 80)
		pdf.SetXY(l.MarginLeft, l.MarginTop+9)
		pdf.CellFormat(l.PrintableWidth(), 5, subtitle, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	y := l.ContentTop() - 2
	pdf.Line(l.MarginLeft, y, l.PageWidth-l.MarginRight, y)
}

func drawRunningHeader(pdf *fpdf.Fpdf, l PageLayout, title string, pageNo int) {
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(l.MarginLeft, l.MarginTop)
	pdf.CellFormat(l.PrintableWidth(), 5, fmt.Sprintf("%s (continued, page %d)", title, pageNo), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func drawFooter(pdf *fpdf.Fpdf, l PageLayout) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(l.MarginLeft, l.PageHeight-l.MarginBottom+3)
	pdf.CellFormat(l.PrintableWidth(), 4, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
