package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/render"
)

// DXF layer names.
const (
	LayerSheets = "SHEETS"
	LayerPieces = "PIECES"
	LayerLabels = "LABELS"
)

// dxfSheetGap is the horizontal space between sheets in the drawing (mm).
const dxfSheetGap = 100.0

// ExportDXF writes the cutting plan as a DXF drawing: every drawable sheet
// side by side in index order, piece outlines on their own layer and
// labels on a third. Coordinates are in mm with the Y axis pointing up.
func ExportDXF(path string, result model.PlacementResult) error {
	d, err := BuildDXF(result)
	if err != nil {
		return err
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}

// BuildDXF assembles the drawing without saving it.
func BuildDXF(result model.PlacementResult) (*drawing.Drawing, error) {
	d := dxf.NewDrawing()
	layers := []struct {
		name string
		cl   color.ColorNumber
	}{
		{LayerSheets, color.White},
		{LayerPieces, color.Cyan},
		{LayerLabels, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.cl, dxf.DefaultLineType, false); err != nil {
			return nil, fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	originX := 0.0
	drawn := 0
	for _, sheet := range result.SortedSheets() {
		width := sheet.SheetDimensions.Width
		height := sheet.DrawHeight()
		if !(width > 0) || !(height > 0) {
			continue
		}

		// DXF grows upward; flip so piece y=0 sits at the sheet's top edge.
		flip := func(y float64) float64 { return height - y }

		if err := d.ChangeLayer(LayerSheets); err != nil {
			return nil, err
		}
		if err := dxfRect(d, originX, 0, width, height); err != nil {
			return nil, err
		}
		if err := d.ChangeLayer(LayerLabels); err != nil {
			return nil, err
		}
		if _, err := d.Text(fmt.Sprintf("Sheet %d", sheet.SheetIndex), originX, height+20, 0, 40); err != nil {
			return nil, err
		}

		for _, p := range sheet.PlacedPieces {
			if !(p.Width > 0) || !(p.Height > 0) {
				continue
			}
			if err := d.ChangeLayer(LayerPieces); err != nil {
				return nil, err
			}
			if err := dxfRect(d, originX+p.X, flip(p.Y+p.Height), p.Width, p.Height); err != nil {
				return nil, err
			}
			if !render.HasLabel(p) {
				continue
			}
			if err := d.ChangeLayer(LayerLabels); err != nil {
				return nil, err
			}
			size := render.LabelFontSize(p.Width, p.Height)
			label := fmt.Sprintf("%s %.0fx%.0f", p.Key(), p.Width, p.Height)
			if _, err := d.Text(label, originX+p.X+2, flip(p.Y)-size-2, 0, size); err != nil {
				return nil, err
			}
		}

		originX += width + dxfSheetGap
		drawn++
	}

	if drawn == 0 {
		return nil, fmt.Errorf("no drawable sheets")
	}
	return d, nil
}

func dxfRect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [5][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y}}
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[i+1]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return err
		}
	}
	return nil
}
