package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// MaxRasterSide caps either pixel dimension of a Raster. Long rolls drawn at
// a high pixel ratio are scaled down to stay under it.
const MaxRasterSide = 16384

var (
	fontOnce   sync.Once
	parsedFont *opentype.Font
	fontErr    error
)

func regularFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return parsedFont, fontErr
}

// Raster is a Surface backed by an in-memory RGBA image. Coordinates are in
// sheet units (mm) and multiplied by the pixel ratio on the way to pixels.
type Raster struct {
	pixelRatio float64
	ratio      float64
	img        *image.RGBA
	faces      map[int]font.Face
}

// NewRaster returns an empty raster drawing at pixelRatio device pixels per
// unit. Ratios <= 0 are treated as 1.
func NewRaster(pixelRatio float64) *Raster {
	if !(pixelRatio > 0) {
		pixelRatio = 1
	}
	return &Raster{
		pixelRatio: pixelRatio,
		ratio:      pixelRatio,
		faces:      make(map[int]font.Face),
	}
}

// Reset allocates a fresh transparent image sized width x height units.
func (r *Raster) Reset(width, height float64) {
	r.ratio = r.pixelRatio
	if width*r.ratio > MaxRasterSide {
		r.ratio = MaxRasterSide / width
	}
	if height*r.ratio > MaxRasterSide {
		r.ratio = MaxRasterSide / height
	}
	w := min(MaxRasterSide, max(1, int(math.Ceil(width*r.ratio))))
	h := min(MaxRasterSide, max(1, int(math.Ceil(height*r.ratio))))
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Image returns the drawn image, or nil before the first Reset.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Ratio returns the effective pixels-per-unit after clamping.
func (r *Raster) Ratio() float64 {
	return r.ratio
}

func (r *Raster) toPixels(x, y, w, h float64) image.Rectangle {
	x0 := int(math.Round(x * r.ratio))
	y0 := int(math.Round(y * r.ratio))
	x1 := int(math.Round((x + w) * r.ratio))
	y1 := int(math.Round((y + h) * r.ratio))
	return image.Rect(x0, y0, x1, y1)
}

func (r *Raster) FillRect(x, y, w, h float64, c color.Color) {
	if r.img == nil {
		return
	}
	rect := r.toPixels(x, y, w, h).Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}

// StrokeRect draws the outline inside the rectangle so adjacent pieces do
// not paint over each other. Line width never drops below one pixel.
func (r *Raster) StrokeRect(x, y, w, h, lineWidth float64, c color.Color) {
	if r.img == nil {
		return
	}
	outer := r.toPixels(x, y, w, h)
	t := max(1, int(math.Round(lineWidth*r.ratio)))
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+t),
		image.Rect(outer.Min.X, outer.Max.Y-t, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+t, outer.Max.Y),
		image.Rect(outer.Max.X-t, outer.Min.Y, outer.Max.X, outer.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(r.img.Bounds())
		if !e.Empty() {
			draw.Draw(r.img, e, src, image.Point{}, draw.Src)
		}
	}
}

// FillText draws lines centered as a block on (cx, cy).
func (r *Raster) FillText(lines []string, cx, cy, size float64, c color.Color) {
	if r.img == nil || len(lines) == 0 {
		return
	}
	face, err := r.face(size * r.ratio)
	if err != nil {
		return
	}
	m := face.Metrics()
	lineHeight := m.Height.Ceil()
	top := int(math.Round(cy*r.ratio)) - lineHeight*len(lines)/2

	d := &font.Drawer{Dst: r.img, Src: image.NewUniform(c), Face: face}
	for i, line := range lines {
		width := d.MeasureString(line).Ceil()
		x := int(math.Round(cx*r.ratio)) - width/2
		baseline := top + i*lineHeight + m.Ascent.Ceil()
		d.Dot = fixed.P(x, baseline)
		d.DrawString(line)
	}
}

func (r *Raster) face(px float64) (font.Face, error) {
	key := max(1, int(math.Round(px)))
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	ft, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", err)
	}
	f, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %dpx face: %w", key, err)
	}
	r.faces[key] = f
	return f, nil
}
