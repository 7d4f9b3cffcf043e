package widgets

import (
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/palette"
	"github.com/piwi3910/SlabPlan/internal/view"
)

// SheetCanvas shows one rendered sheet scaled to fit within a maximum size.
type SheetCanvas struct {
	widget.BaseWidget
	image     image.Image
	maxWidth  float32
	maxHeight float32
}

func NewSheetCanvas(img image.Image, maxW, maxH float32) *SheetCanvas {
	sc := &SheetCanvas{
		image:     img,
		maxWidth:  maxW,
		maxHeight: maxH,
	}
	sc.ExtendBaseWidget(sc)
	return sc
}

func (sc *SheetCanvas) CreateRenderer() fyne.WidgetRenderer {
	img := canvas.NewImageFromImage(sc.image)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	border.StrokeWidth = 1

	return &sheetCanvasRenderer{sc: sc, img: img, border: border}
}

type sheetCanvasRenderer struct {
	sc     *SheetCanvas
	img    *canvas.Image
	border *canvas.Rectangle
}

func (r *sheetCanvasRenderer) Layout(size fyne.Size) {
	fit := r.MinSize()
	r.img.Resize(fit)
	r.img.Move(fyne.NewPos(0, 0))
	r.border.Resize(fit)
}

func (r *sheetCanvasRenderer) MinSize() fyne.Size {
	b := r.sc.image.Bounds()
	return FitSize(float32(b.Dx()), float32(b.Dy()), r.sc.maxWidth, r.sc.maxHeight)
}

func (r *sheetCanvasRenderer) Refresh() {
	r.img.Image = r.sc.image
	r.img.Refresh()
}

func (r *sheetCanvasRenderer) Destroy() {}

func (r *sheetCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.img, r.border}
}

// FitSize scales w×h down to fit maxW×maxH, keeping the aspect ratio.
// Images smaller than the box keep their size.
func FitSize(w, h, maxW, maxH float32) fyne.Size {
	if w <= 0 || h <= 0 {
		return fyne.NewSize(0, 0)
	}
	scale := float32(1)
	if maxW > 0 && w*scale > maxW {
		scale = maxW / w
	}
	if maxH > 0 && h*scale > maxH {
		scale = maxH / h
	}
	return fyne.NewSize(w*scale, h*scale)
}

// SheetHeader is the caption shown above a sheet.
func SheetHeader(s model.Sheet, material model.MaterialType) string {
	if material == model.MaterialRoll {
		return fmt.Sprintf("Roll segment %d (%.0f wide, %.0f used): %d pieces, %.1f%% efficiency",
			s.SheetIndex, s.SheetDimensions.Width, s.DrawHeight(), len(s.PlacedPieces), s.Efficiency())
	}
	return fmt.Sprintf("Sheet %d (%.0f × %.0f): %d pieces, %.1f%% efficiency",
		s.SheetIndex, s.SheetDimensions.Width, s.SheetDimensions.Height, len(s.PlacedPieces), s.Efficiency())
}

// NewLegend shows one color swatch per piece id.
func NewLegend(entries []palette.Entry) fyne.CanvasObject {
	items := make([]fyne.CanvasObject, 0, len(entries))
	for _, e := range entries {
		swatch := canvas.NewRectangle(e.Color)
		swatch.SetMinSize(fyne.NewSize(14, 14))
		swatch.StrokeColor = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
		swatch.StrokeWidth = 1
		items = append(items, container.NewHBox(container.NewCenter(swatch), widget.NewLabel(e.BaseID)))
	}
	return container.NewGridWrap(fyne.NewSize(140, 24), items...)
}

// RenderSheetResults creates a scrollable container of all rendered sheets
// followed by the color legend.
func RenderSheetResults(images []view.SheetImage, material model.MaterialType, legend []palette.Entry) fyne.CanvasObject {
	if len(images) == 0 {
		return widget.NewLabel("No sheets to show.")
	}

	var items []fyne.CanvasObject
	for _, si := range images {
		header := widget.NewLabel(SheetHeader(si.Sheet, material))
		header.TextStyle = fyne.TextStyle{Bold: true}
		items = append(items, header, NewSheetCanvas(si.Image, 800, 600), widget.NewSeparator())
	}

	if len(legend) > 0 {
		legendHeader := widget.NewLabel("Pieces:")
		legendHeader.TextStyle = fyne.TextStyle{Bold: true}
		items = append(items, legendHeader, NewLegend(legend))
	}

	return container.NewVScroll(container.NewVBox(items...))
}
