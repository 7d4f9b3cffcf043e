package metrics

import (
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabPlan/internal/model"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestProjectSheetWithWarningAndNoOptionals(t *testing.T) {
	d := Project(model.PlacementResult{
		GlobalMetrics: model.Metrics{MaterialType: model.MaterialSheet, TotalPlacedPieces: 8, TotalPieces: 10},
	})

	placed, ok := d.Item(KeyPlaced)
	require.True(t, ok)
	assert.Equal(t, "8 / 10", placed.Value)
	assert.True(t, placed.Warning)

	_, ok = d.Item(KeySheetsUsed)
	assert.True(t, ok)
	for _, key := range []string{KeyWaste, KeyEstimatedTime, KeyMaterialArea, KeyConsumedLength} {
		_, ok := d.Item(key)
		assert.False(t, ok, "%s must be omitted", key)
	}
	assert.Nil(t, d.Impossible)
	assert.Nil(t, d.Unplaced)
	assert.True(t, d.HasWarning())
}

func TestProjectRollFallsBackToSheetHeight(t *testing.T) {
	d := Project(model.PlacementResult{
		GlobalMetrics: model.Metrics{MaterialType: model.MaterialRoll, TotalPlacedPieces: 5, TotalPieces: 5},
		Sheets: []model.Sheet{{
			SheetIndex:      1,
			SheetDimensions: model.Dimensions{Width: 1200, Height: 1500},
		}},
	})

	length, ok := d.Item(KeyConsumedLength)
	require.True(t, ok)
	assert.Equal(t, "1500 mm", length.Value)

	_, ok = d.Item(KeySheetsUsed)
	assert.False(t, ok)

	placed, _ := d.Item(KeyPlaced)
	assert.False(t, placed.Warning)
	assert.False(t, d.HasWarning())
}

func TestProjectRollPrefersConsumedLengthOfFirstSheet(t *testing.T) {
	d := Project(model.PlacementResult{
		GlobalMetrics: model.Metrics{MaterialType: model.MaterialRoll},
		Sheets: []model.Sheet{
			{SheetIndex: 2, SheetDimensions: model.Dimensions{Width: 1200, Height: 999999},
				Metrics: model.SheetMetrics{ConsumedLengthMM: floatPtr(10)}},
			{SheetIndex: 1, SheetDimensions: model.Dimensions{Width: 1200, Height: 999999},
				Metrics: model.SheetMetrics{ConsumedLengthMM: floatPtr(2345.6)}},
		},
	})
	length, ok := d.Item(KeyConsumedLength)
	require.True(t, ok)
	assert.Equal(t, "2346 mm", length.Value)
}

func TestProjectRollWithoutSheets(t *testing.T) {
	d := Project(model.PlacementResult{GlobalMetrics: model.Metrics{MaterialType: model.MaterialRoll}})
	_, ok := d.Item(KeyConsumedLength)
	assert.False(t, ok)
	_, ok = d.Item(KeyPlaced)
	assert.True(t, ok)
}

func TestProjectSheetsUsedFallsBackToSheetCount(t *testing.T) {
	d := Project(model.PlacementResult{Sheets: []model.Sheet{{SheetIndex: 1}, {SheetIndex: 2}}})
	used, ok := d.Item(KeySheetsUsed)
	require.True(t, ok)
	assert.Equal(t, "2", used.Value)
}

func TestProjectKeepsIDListsSeparate(t *testing.T) {
	r := model.PlacementResult{
		ImpossibleToPlaceIDs: []string{"huge"},
		UnplacedPieceIDs:     []string{"B-1", "B-2"},
	}
	d := Project(r)

	require.NotNil(t, d.Impossible)
	require.NotNil(t, d.Unplaced)
	assert.Equal(t, 1, d.Impossible.Count)
	assert.Equal(t, []string{"huge"}, d.Impossible.IDs)
	assert.Equal(t, 2, d.Unplaced.Count)
	assert.Equal(t, []string{"B-1", "B-2"}, d.Unplaced.IDs)

	d.Unplaced.IDs[0] = "changed"
	assert.Equal(t, "B-1", r.UnplacedPieceIDs[0], "projection must not alias the result")
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{-5, "00:00:00"},
		{math.NaN(), "00:00:00"},
		{math.Inf(1), "00:00:00"},
		{59, "00:00:59"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
		{1.6, "00:00:02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.in), "FormatTime(%v)", tt.in)
	}
}

func TestFormatLength(t *testing.T) {
	assert.Equal(t, "1500 mm", FormatLength(1500))
	assert.Equal(t, "0 mm", FormatLength(math.NaN()))
}

func TestDisplayTextGolden(t *testing.T) {
	g := goldie.New(t)

	full := Project(model.PlacementResult{
		GlobalMetrics: model.Metrics{
			MaterialType:         model.MaterialSheet,
			TotalSheetsUsed:      intPtr(2),
			TotalPlacedPieces:    8,
			TotalPieces:          10,
			TotalMaterialAreaSqm: floatPtr(5.9536),
			WastePercentage:      floatPtr(12.34),
			EstimatedTimeSeconds: floatPtr(3661),
		},
		ImpossibleToPlaceIDs: []string{"X"},
		UnplacedPieceIDs:     []string{"B-1", "B-2"},
	})
	g.Assert(t, "sheet_full", []byte(full.Text()))

	roll := Project(model.PlacementResult{
		GlobalMetrics: model.Metrics{MaterialType: model.MaterialRoll, TotalPlacedPieces: 5, TotalPieces: 5},
		Sheets:        []model.Sheet{{SheetIndex: 1, SheetDimensions: model.Dimensions{Width: 1200, Height: 1500}}},
	})
	g.Assert(t, "roll_minimal", []byte(roll.Text()))
}
