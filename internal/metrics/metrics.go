// Package metrics selects and formats the summary figures shown next to a
// placement result. Everything here is a pure function of the result.
package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/SlabPlan/internal/model"
)

// Item keys, stable for templates and the HTTP API.
const (
	KeySheetsUsed     = "sheets_used"
	KeyConsumedLength = "consumed_length"
	KeyPlaced         = "placed"
	KeyMaterialArea   = "material_area"
	KeyWaste          = "waste"
	KeyEstimatedTime  = "estimated_time"
)

// Item is one displayed metric.
type Item struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Warning bool   `json:"warning,omitempty"`
}

// IDList is a counted list of piece ids.
type IDList struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// Display is the projected metrics panel. Impossible and Unplaced are nil
// when the corresponding list in the result is empty.
type Display struct {
	Material   model.MaterialType `json:"material_type"`
	Items      []Item             `json:"items"`
	Impossible *IDList            `json:"impossible,omitempty"`
	Unplaced   *IDList            `json:"unplaced,omitempty"`
}

// Item returns the item with key, if present.
func (d Display) Item(key string) (Item, bool) {
	for _, it := range d.Items {
		if it.Key == key {
			return it, true
		}
	}
	return Item{}, false
}

// HasWarning reports whether any item or id list needs attention.
func (d Display) HasWarning() bool {
	for _, it := range d.Items {
		if it.Warning {
			return true
		}
	}
	return d.Impossible != nil || d.Unplaced != nil
}

// Project derives the display from result. Optional metrics that are
// absent are left out rather than shown as zero.
func Project(result model.PlacementResult) Display {
	m := result.GlobalMetrics
	d := Display{Material: result.Material()}

	switch d.Material {
	case model.MaterialRoll:
		if sheets := result.SortedSheets(); len(sheets) > 0 {
			d.Items = append(d.Items, Item{
				Key:   KeyConsumedLength,
				Label: "Consumed length",
				Value: FormatLength(sheets[0].ConsumedLength()),
			})
		}
	default:
		used := len(result.Sheets)
		if m.TotalSheetsUsed != nil {
			used = *m.TotalSheetsUsed
		}
		d.Items = append(d.Items, Item{
			Key:   KeySheetsUsed,
			Label: "Sheets used",
			Value: fmt.Sprintf("%d", used),
		})
	}

	d.Items = append(d.Items, Item{
		Key:     KeyPlaced,
		Label:   "Pieces placed",
		Value:   fmt.Sprintf("%d / %d", m.TotalPlacedPieces, m.TotalPieces),
		Warning: m.TotalPlacedPieces < m.TotalPieces,
	})

	if m.TotalMaterialAreaSqm != nil {
		d.Items = append(d.Items, Item{
			Key:   KeyMaterialArea,
			Label: "Material area",
			Value: fmt.Sprintf("%.2f m²", *m.TotalMaterialAreaSqm),
		})
	}
	if m.WastePercentage != nil {
		d.Items = append(d.Items, Item{
			Key:   KeyWaste,
			Label: "Waste",
			Value: fmt.Sprintf("%.1f%%", *m.WastePercentage),
		})
	}
	if m.EstimatedTimeSeconds != nil {
		d.Items = append(d.Items, Item{
			Key:   KeyEstimatedTime,
			Label: "Estimated time",
			Value: FormatTime(*m.EstimatedTimeSeconds),
		})
	}

	if len(result.ImpossibleToPlaceIDs) > 0 {
		d.Impossible = newIDList(result.ImpossibleToPlaceIDs)
	}
	if len(result.UnplacedPieceIDs) > 0 {
		d.Unplaced = newIDList(result.UnplacedPieceIDs)
	}
	return d
}

func newIDList(ids []string) *IDList {
	cp := make([]string, len(ids))
	copy(cp, ids)
	return &IDList{Count: len(cp), IDs: cp}
}

// FormatLength renders a length as whole millimetres.
func FormatLength(mm float64) string {
	if math.IsNaN(mm) || math.IsInf(mm, 0) {
		mm = 0
	}
	return fmt.Sprintf("%.0f mm", mm)
}

// FormatTime renders seconds as HH:MM:SS. Zero, negative and NaN inputs
// all render as the zero duration. Hours are not wrapped at 24.
func FormatTime(seconds float64) string {
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return "00:00:00"
	}
	total := int64(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Text renders the display as plain lines for terminals and reports.
func (d Display) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Material: %s\n", d.Material)
	for _, it := range d.Items {
		fmt.Fprintf(&b, "%s: %s", it.Label, it.Value)
		if it.Warning {
			b.WriteString(" (!)")
		}
		b.WriteString("\n")
	}
	if d.Impossible != nil {
		fmt.Fprintf(&b, "Impossible to place (%d): %s\n", d.Impossible.Count, strings.Join(d.Impossible.IDs, ", "))
	}
	if d.Unplaced != nil {
		fmt.Fprintf(&b, "Not placed (%d): %s\n", d.Unplaced.Count, strings.Join(d.Unplaced.IDs, ", "))
	}
	return b.String()
}
