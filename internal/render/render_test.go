package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/palette"
)

type call struct {
	op    string
	x, y  float64
	w, h  float64
	lines []string
	size  float64
	color color.Color
}

// recorder is a Surface that remembers every call.
type recorder struct {
	calls []call
}

func (r *recorder) Reset(w, h float64) {
	r.calls = append(r.calls, call{op: "reset", w: w, h: h})
}

func (r *recorder) FillRect(x, y, w, h float64, c color.Color) {
	r.calls = append(r.calls, call{op: "fill", x: x, y: y, w: w, h: h, color: c})
}

func (r *recorder) StrokeRect(x, y, w, h, _ float64, c color.Color) {
	r.calls = append(r.calls, call{op: "stroke", x: x, y: y, w: w, h: h, color: c})
}

func (r *recorder) FillText(lines []string, cx, cy, size float64, c color.Color) {
	r.calls = append(r.calls, call{op: "text", x: cx, y: cy, lines: lines, size: size, color: c})
}

func (r *recorder) ops(op string) []call {
	var out []call
	for _, c := range r.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type fixedColors map[string]color.NRGBA

func (f fixedColors) ColorOf(id string) color.NRGBA {
	if c, ok := f[id]; ok {
		return c
	}
	return palette.Fallback
}

func sheetWith(pieces ...model.PlacedPiece) model.Sheet {
	return model.Sheet{
		SheetIndex:      1,
		SheetDimensions: model.Dimensions{Width: 1000, Height: 500},
		PlacedPieces:    pieces,
	}
}

func TestRenderDegenerateDimensionsDrawsNothing(t *testing.T) {
	tests := []struct {
		name string
		dims model.Dimensions
	}{
		{"zero width", model.Dimensions{Width: 0, Height: 500}},
		{"zero height", model.Dimensions{Width: 1000, Height: 0}},
		{"negative height", model.Dimensions{Width: 1000, Height: -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			sheet := model.Sheet{SheetDimensions: tt.dims, PlacedPieces: []model.PlacedPiece{{ID: "A", Width: 50, Height: 50}}}
			assert.NotPanics(t, func() { NewRenderer().Render(rec, sheet, fixedColors{}) })
			assert.Empty(t, rec.calls)
		})
	}
}

func TestRenderNilSurfaceIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { NewRenderer().Render(nil, sheetWith(), nil) })
}

func TestRenderDrawsBackgroundBorderAndPieces(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	rec := &recorder{}
	sheet := sheetWith(
		model.PlacedPiece{ID: "A-1", BaseID: "A", InstanceIndex: 1, X: 0, Y: 0, Width: 50, Height: 50},
		model.PlacedPiece{ID: "A-2", BaseID: "A", InstanceIndex: 2, X: 60, Y: 0, Width: 50, Height: 50},
	)
	NewRenderer().Render(rec, sheet, fixedColors{"A": red})

	require.Equal(t, "reset", rec.calls[0].op)
	assert.Equal(t, 1000.0, rec.calls[0].w)
	assert.Equal(t, 500.0, rec.calls[0].h)

	fills := rec.ops("fill")
	require.Len(t, fills, 3, "background plus two pieces")
	assert.Equal(t, 1000.0, fills[0].w)
	assert.Equal(t, red, fills[1].color)
	assert.Equal(t, red, fills[2].color)
	assert.Equal(t, 60.0, fills[2].x)

	assert.Len(t, rec.ops("stroke"), 3, "border plus two outlines")
}

func TestRenderLabelThresholds(t *testing.T) {
	rec := &recorder{}
	sheet := sheetWith(
		model.PlacedPiece{ID: "narrow", BaseID: "narrow", X: 0, Y: 0, Width: 20, Height: 50},
		model.PlacedPiece{ID: "flat", BaseID: "flat", X: 0, Y: 100, Width: 100, Height: 20},
		model.PlacedPiece{ID: "ok", BaseID: "ok", X: 200, Y: 100, Width: 50, Height: 50},
	)
	NewRenderer().Render(rec, sheet, fixedColors{})

	texts := rec.ops("text")
	require.Len(t, texts, 1)
	label := texts[0]
	assert.Equal(t, []string{"ok", "50x50"}, label.lines)
	assert.Equal(t, 225.0, label.x, "label centered horizontally")
	assert.Equal(t, 125.0, label.y, "label centered vertically")
	assert.Equal(t, LabelMinFontSize, label.size)
}

func TestRenderUsesBaseIDForLabel(t *testing.T) {
	rec := &recorder{}
	var p model.PlacedPiece
	p.ID, p.Width, p.Height = "door-3", 400.4, 200.6
	p.BaseID, p.InstanceIndex = model.SplitInstanceID(p.ID)
	NewRenderer().Render(rec, sheetWith(p), fixedColors{})

	texts := rec.ops("text")
	require.Len(t, texts, 1)
	assert.Equal(t, []string{"door", "400x201"}, texts[0].lines)
}

func TestRenderIsIdempotent(t *testing.T) {
	sheet := sheetWith(model.PlacedPiece{ID: "A", BaseID: "A", Width: 100, Height: 100})
	r := NewRenderer()

	first := &recorder{}
	r.Render(first, sheet, fixedColors{})
	second := &recorder{}
	r.Render(second, sheet, fixedColors{})
	assert.Equal(t, first.calls, second.calls)

	raster := NewRaster(1)
	r.Render(raster, sheet, fixedColors{"A": {R: 255, A: 255}})
	r.Render(raster, sheetWith(), fixedColors{})
	assert.Equal(t, r.Background, color.NRGBAModel.Convert(raster.Image().At(50, 50)),
		"a re-render must not keep stale pieces")
}

func TestRenderSkipsDegeneratePieces(t *testing.T) {
	rec := &recorder{}
	sheet := sheetWith(
		model.PlacedPiece{ID: "zero", Width: 0, Height: 10},
		model.PlacedPiece{ID: "outside", BaseID: "outside", X: 990, Y: 490, Width: 100, Height: 100},
	)
	NewRenderer().Render(rec, sheet, fixedColors{})
	assert.Len(t, rec.ops("fill"), 2, "background plus the out-of-bounds piece")

	raster := NewRaster(1)
	assert.NotPanics(t, func() { NewRenderer().Render(raster, sheet, fixedColors{}) })
}

func TestRenderRollUsesDrawHeight(t *testing.T) {
	consumed := 1500.0
	sheet := model.Sheet{
		SheetDimensions: model.Dimensions{Width: 1200, Height: 999999},
		Metrics:         model.SheetMetrics{ConsumedLengthMM: &consumed},
	}
	rec := &recorder{}
	NewRenderer().Render(rec, sheet, fixedColors{})
	require.NotEmpty(t, rec.calls)
	assert.Equal(t, 1500.0, rec.calls[0].h)
}

func TestLabelFontSize(t *testing.T) {
	assert.Equal(t, LabelMinFontSize, LabelFontSize(31, 21))
	assert.Equal(t, 15.0, LabelFontSize(100, 200))
	assert.Equal(t, LabelMaxFontSize, LabelFontSize(2000, 1000))
}

func TestRasterPixelRatio(t *testing.T) {
	r := NewRaster(2)
	r.Reset(100, 50)
	b := r.Image().Bounds()
	assert.Equal(t, 200, b.Dx())
	assert.Equal(t, 100, b.Dy())
	assert.Equal(t, 2.0, r.Ratio())
}

func TestRasterClampsLongRolls(t *testing.T) {
	r := NewRaster(2)
	r.Reset(1000, 40000)
	b := r.Image().Bounds()
	assert.LessOrEqual(t, b.Dy(), MaxRasterSide)
	assert.Less(t, r.Ratio(), 2.0)
}

func TestRasterDrawsPixels(t *testing.T) {
	blue := color.NRGBA{B: 255, A: 255}
	img, ok := NewRenderer().RenderImage(
		sheetWith(model.PlacedPiece{ID: "A", BaseID: "A", X: 100, Y: 100, Width: 200, Height: 200}),
		fixedColors{"A": blue}, 1)
	require.True(t, ok)

	assert.Equal(t, 1000, img.Bounds().Dx())
	// Corner of the piece, away from outline and label.
	assert.Equal(t, blue, color.NRGBAModel.Convert(img.At(110, 110)))
	// Inside the sheet but outside any piece.
	assert.Equal(t, NewRenderer().Background, color.NRGBAModel.Convert(img.At(500, 400)))
}

func TestRenderImageDegenerate(t *testing.T) {
	img, ok := NewRenderer().RenderImage(model.Sheet{}, nil, 2)
	assert.False(t, ok)
	assert.Nil(t, img)
}
