package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// MaterialType distinguishes discrete sheet goods from continuous roll goods.
type MaterialType string

const (
	MaterialSheet MaterialType = "sheet"
	MaterialRoll  MaterialType = "roll"
)

// Normalize maps unknown or empty values to MaterialSheet.
func (m MaterialType) Normalize() MaterialType {
	if strings.EqualFold(string(m), string(MaterialRoll)) {
		return MaterialRoll
	}
	return MaterialSheet
}

func (m MaterialType) String() string {
	return string(m.Normalize())
}

// RollSentinelHeight is the threshold at or above which a sheet height is
// read as "unbounded roll" rather than a physical dimension (mm).
const RollSentinelHeight = 100000.0

// Dimensions is a width/height pair in mm.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Metrics holds the optimizer's global summary. Every pointer field is
// optional on the wire.
type Metrics struct {
	MaterialType         MaterialType `json:"material_type"`
	TotalSheetsUsed      *int         `json:"total_sheets_used,omitempty"`
	TotalPlacedPieces    int          `json:"total_placed_pieces"`
	TotalPieces          int          `json:"total_pieces"`
	TotalMaterialAreaSqm *float64     `json:"total_material_area_sqm,omitempty"`
	WastePercentage      *float64     `json:"waste_percentage,omitempty"`
	EstimatedTimeSeconds *float64     `json:"estimated_time_seconds,omitempty"`
}

// SheetMetrics holds per-sheet figures reported by the optimizer.
type SheetMetrics struct {
	PieceCount           int      `json:"piece_count"`
	ConsumedLengthMM     *float64 `json:"consumed_length_mm,omitempty"`
	EfficiencyPercentage *float64 `json:"efficiency_percentage,omitempty"`
	UsedAreaSqMM         *float64 `json:"used_area_sq_mm,omitempty"`
}

// PlacedPiece is one piece instance positioned on a sheet.
type PlacedPiece struct {
	ID            string  `json:"id"`
	BaseID        string  `json:"base_id"`
	InstanceIndex int     `json:"instance_index"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Rotated       bool    `json:"rotated"`
}

// UnmarshalJSON fills BaseID and InstanceIndex from the compound id when the
// optimizer did not send them explicitly.
func (p *PlacedPiece) UnmarshalJSON(data []byte) error {
	type wirePiece PlacedPiece
	var w wirePiece
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = PlacedPiece(w)
	if p.BaseID == "" {
		p.BaseID, p.InstanceIndex = SplitInstanceID(p.ID)
	}
	return nil
}

// SplitInstanceID splits "<base>-<n>" into base and n. Ids without a numeric
// suffix are returned whole with instance 0.
func SplitInstanceID(id string) (string, int) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 || i == len(id)-1 {
		return id, 0
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 0 {
		return id, 0
	}
	return id[:i], n
}

// Key returns the piece-type identifier used for coloring and labels.
func (p PlacedPiece) Key() string {
	if p.BaseID != "" {
		return p.BaseID
	}
	base, _ := SplitInstanceID(p.ID)
	return base
}

// Sheet is one sheet, or one roll segment, with its placed pieces.
type Sheet struct {
	SheetIndex      int           `json:"sheet_index"`
	SheetDimensions Dimensions    `json:"sheet_dimensions"`
	PlacedPieces    []PlacedPiece `json:"placed_pieces"`
	Metrics         SheetMetrics  `json:"metrics"`
}

// ConsumedLength returns the consumed-length metric, falling back to the
// sheet's height field when the optimizer omitted it.
func (s Sheet) ConsumedLength() float64 {
	if s.Metrics.ConsumedLengthMM != nil {
		return *s.Metrics.ConsumedLengthMM
	}
	return s.SheetDimensions.Height
}

// DrawHeight returns the height that should be drawn. Rolls report a
// sentinel height; their drawable extent is the consumed length, or the
// furthest piece edge when no consumed length is known.
func (s Sheet) DrawHeight() float64 {
	if c := s.Metrics.ConsumedLengthMM; c != nil && *c > 0 {
		return *c
	}
	if s.SheetDimensions.Height < RollSentinelHeight {
		return s.SheetDimensions.Height
	}
	var extent float64
	for _, p := range s.PlacedPieces {
		if e := p.Y + p.Height; e > extent {
			extent = e
		}
	}
	return extent
}

// UsedArea returns the total area covered by placed pieces (mm²).
func (s Sheet) UsedArea() float64 {
	if s.Metrics.UsedAreaSqMM != nil {
		return *s.Metrics.UsedAreaSqMM
	}
	var total float64
	for _, p := range s.PlacedPieces {
		total += p.Width * p.Height
	}
	return total
}

// Efficiency returns the reported efficiency, or one derived from the drawn
// area when the optimizer omitted it.
func (s Sheet) Efficiency() float64 {
	if s.Metrics.EfficiencyPercentage != nil {
		return *s.Metrics.EfficiencyPercentage
	}
	area := s.SheetDimensions.Width * s.DrawHeight()
	if area <= 0 {
		return 0
	}
	return s.UsedArea() / area * 100.0
}

// PlacementResult is the optimizer's full response. It is replaced as a
// whole on every request and never patched.
type PlacementResult struct {
	GlobalMetrics        Metrics  `json:"global_metrics"`
	Sheets               []Sheet  `json:"sheets"`
	ImpossibleToPlaceIDs []string `json:"impossible_to_place_ids"`
	UnplacedPieceIDs     []string `json:"unplaced_piece_ids"`
}

// Material returns the normalized material type of the result.
func (r PlacementResult) Material() MaterialType {
	return r.GlobalMetrics.MaterialType.Normalize()
}

// SortedSheets returns the sheets in ascending sheet_index order. The
// receiver is left untouched.
func (r PlacementResult) SortedSheets() []Sheet {
	sheets := make([]Sheet, len(r.Sheets))
	copy(sheets, r.Sheets)
	sort.SliceStable(sheets, func(i, j int) bool {
		return sheets[i].SheetIndex < sheets[j].SheetIndex
	})
	return sheets
}

// PlacedCount returns the number of pieces drawn across all sheets.
func (r PlacementResult) PlacedCount() int {
	total := 0
	for _, s := range r.Sheets {
		total += len(s.PlacedPieces)
	}
	return total
}

// DecodeResult parses an optimizer response body.
func DecodeResult(data []byte) (PlacementResult, error) {
	var r PlacementResult
	if err := json.Unmarshal(data, &r); err != nil {
		return PlacementResult{}, err
	}
	return r, nil
}
