package widgets

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabPlan/internal/metrics"
)

// NewMetricsPanel lays out the projected metrics as a label/value grid.
// Values that need attention use the warning importance.
func NewMetricsPanel(d metrics.Display) fyne.CanvasObject {
	grid := container.NewGridWithColumns(2)
	for _, it := range d.Items {
		value := widget.NewLabel(it.Value)
		if it.Warning {
			value.Importance = widget.WarningImportance
		}
		grid.Add(widget.NewLabelWithStyle(it.Label, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		grid.Add(value)
	}

	items := []fyne.CanvasObject{grid}
	if d.Impossible != nil {
		items = append(items, idListLabel("Impossible to place", d.Impossible, widget.DangerImportance))
	}
	if d.Unplaced != nil {
		items = append(items, idListLabel("Not placed", d.Unplaced, widget.WarningImportance))
	}
	return widget.NewCard("Summary", string(d.Material), container.NewVBox(items...))
}

func idListLabel(title string, list *metrics.IDList, importance widget.Importance) *widget.Label {
	l := widget.NewLabel(fmt.Sprintf("%s (%d): %s", title, list.Count, strings.Join(list.IDs, ", ")))
	l.Wrapping = fyne.TextWrapWord
	l.Importance = importance
	return l
}
