// Package render draws a single sheet or roll segment with its placed
// pieces onto a raster surface.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/piwi3910/SlabPlan/internal/model"
)

// Label legibility thresholds, in sheet units. Pieces at or below either
// threshold get no label.
const (
	LabelMinWidth     = 30.0
	LabelMinHeight    = 20.0
	LabelMinFontSize  = 10.0
	LabelMaxFontSize  = 48.0
	labelFontFraction = 0.15
)

// Surface is the drawing target. Coordinates are in sheet units.
type Surface interface {
	// Reset discards previous content and sizes the surface.
	Reset(width, height float64)
	FillRect(x, y, w, h float64, c color.Color)
	StrokeRect(x, y, w, h, lineWidth float64, c color.Color)
	FillText(lines []string, cx, cy, size float64, c color.Color)
}

// ColorSource resolves a piece base id to its fill color.
type ColorSource interface {
	ColorOf(baseID string) color.NRGBA
}

// Renderer holds the fixed styling used for every sheet.
type Renderer struct {
	Background   color.NRGBA
	Border       color.NRGBA
	Outline      color.NRGBA
	Text         color.NRGBA
	BorderWidth  float64
	OutlineWidth float64
}

func NewRenderer() *Renderer {
	return &Renderer{
		Background:   color.NRGBA{R: 210, G: 180, B: 140, A: 255}, // wood
		Border:       color.NRGBA{R: 100, G: 100, B: 100, A: 255},
		Outline:      color.NRGBA{R: 30, G: 30, B: 30, A: 255},
		Text:         color.NRGBA{A: 255},
		BorderWidth:  2,
		OutlineWidth: 1,
	}
}

// Render draws sheet onto s. A sheet with no positive width or drawable
// height is a valid "nothing to draw yet" state and leaves s untouched.
// Every call starts from a fresh surface.
func (r *Renderer) Render(s Surface, sheet model.Sheet, colors ColorSource) {
	width := sheet.SheetDimensions.Width
	height := sheet.DrawHeight()
	if s == nil || !(width > 0) || !(height > 0) {
		return
	}

	s.Reset(width, height)
	s.FillRect(0, 0, width, height, r.Background)
	s.StrokeRect(0, 0, width, height, r.BorderWidth, r.Border)

	for _, p := range sheet.PlacedPieces {
		if !(p.Width > 0) || !(p.Height > 0) {
			continue
		}
		fill := color.NRGBA{R: 200, G: 200, B: 200, A: 255}
		if colors != nil {
			fill = colors.ColorOf(p.Key())
		}
		s.FillRect(p.X, p.Y, p.Width, p.Height, fill)
		s.StrokeRect(p.X, p.Y, p.Width, p.Height, r.OutlineWidth, r.Outline)

		if HasLabel(p) {
			lines := []string{p.Key(), fmt.Sprintf("%.0fx%.0f", p.Width, p.Height)}
			s.FillText(lines, p.X+p.Width/2, p.Y+p.Height/2, LabelFontSize(p.Width, p.Height), r.Text)
		}
	}
}

// HasLabel reports whether a piece is large enough to carry a readable label.
func HasLabel(p model.PlacedPiece) bool {
	return p.Width > LabelMinWidth && p.Height > LabelMinHeight
}

// LabelFontSize scales with the smaller piece dimension.
func LabelFontSize(w, h float64) float64 {
	size := math.Min(w, h) * labelFontFraction
	return math.Max(LabelMinFontSize, math.Min(size, LabelMaxFontSize))
}

// RenderImage draws sheet on a new Raster. The boolean is false when the
// sheet has nothing to draw.
func (r *Renderer) RenderImage(sheet model.Sheet, colors ColorSource, pixelRatio float64) (*image.RGBA, bool) {
	raster := NewRaster(pixelRatio)
	r.Render(raster, sheet, colors)
	if raster.Image() == nil {
		return nil, false
	}
	return raster.Image(), true
}
