package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/render"
)

// ErrCaptureFailed matches any *CaptureError via errors.Is.
var ErrCaptureFailed = errors.New("capture failed")

// errNothingToDraw is returned when a sheet has no drawable area.
var errNothingToDraw = errors.New("sheet has nothing to draw")

// CaptureError records which sheet could not be rasterized.
type CaptureError struct {
	SheetIndex int
	Err        error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture of sheet %d failed: %v", e.SheetIndex, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

func (e *CaptureError) Is(target error) bool { return target == ErrCaptureFailed }

// Capturable is a rendered surface that can be turned into a raster image.
type Capturable interface {
	SheetIndex() int
	Capture(ctx context.Context) (image.Image, error)
}

// Expandable is implemented by surfaces whose container has to be forced
// open while it is captured. The returned restore func puts it back.
type Expandable interface {
	Expand() (restore func(), err error)
}

// captureAll rasterizes surfaces one at a time in ascending sheet index.
// Each surface is restored before the next one is touched.
func captureAll(ctx context.Context, surfaces []Capturable) ([]image.Image, error) {
	ordered := make([]Capturable, len(surfaces))
	copy(ordered, surfaces)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SheetIndex() < ordered[j].SheetIndex()
	})

	images := make([]image.Image, 0, len(ordered))
	for _, s := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := captureOne(ctx, s)
		if err != nil {
			return nil, &CaptureError{SheetIndex: s.SheetIndex(), Err: err}
		}
		images = append(images, img)
	}
	return images, nil
}

func captureOne(ctx context.Context, s Capturable) (img image.Image, err error) {
	if e, ok := s.(Expandable); ok {
		restore, err := e.Expand()
		if err != nil {
			return nil, fmt.Errorf("expand: %w", err)
		}
		if restore != nil {
			defer restore()
		}
	}
	img, err = s.Capture(ctx)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	return img, nil
}

// SheetCapture rasterizes a sheet off-screen with the shared renderer and
// color registry.
type SheetCapture struct {
	Sheet      model.Sheet
	Colors     render.ColorSource
	Renderer   *render.Renderer
	PixelRatio float64
}

func (c SheetCapture) SheetIndex() int { return c.Sheet.SheetIndex }

func (c SheetCapture) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := c.Renderer
	if r == nil {
		r = render.NewRenderer()
	}
	img, ok := r.RenderImage(c.Sheet, c.Colors, c.PixelRatio)
	if !ok {
		return nil, errNothingToDraw
	}
	return img, nil
}

// SheetCaptures builds one capture per drawable sheet of result, in sheet
// index order. Sheets with degenerate dimensions were never drawn and are
// left out.
func SheetCaptures(result model.PlacementResult, colors render.ColorSource, r *render.Renderer, pixelRatio float64) []Capturable {
	var out []Capturable
	for _, s := range result.SortedSheets() {
		if !(s.SheetDimensions.Width > 0) || !(s.DrawHeight() > 0) {
			continue
		}
		out = append(out, SheetCapture{Sheet: s, Colors: colors, Renderer: r, PixelRatio: pixelRatio})
	}
	return out
}
