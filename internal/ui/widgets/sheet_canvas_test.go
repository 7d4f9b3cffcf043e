package widgets

import (
	"testing"

	"github.com/piwi3910/SlabPlan/internal/model"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		name       string
		w, h       float32
		maxW, maxH float32
		wantW      float32
		wantH      float32
	}{
		{"fits already", 400, 200, 800, 600, 400, 200},
		{"width bound", 1600, 400, 800, 600, 800, 200},
		{"height bound", 400, 1200, 800, 600, 200, 600},
		{"both bound", 2000, 2000, 800, 600, 600, 600},
		{"degenerate", 0, 100, 800, 600, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitSize(tt.w, tt.h, tt.maxW, tt.maxH)
			if got.Width != tt.wantW || got.Height != tt.wantH {
				t.Errorf("FitSize() = %vx%v, want %vx%v", got.Width, got.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSheetHeader(t *testing.T) {
	eff := 42.0
	s := model.Sheet{
		SheetIndex:      3,
		SheetDimensions: model.Dimensions{Width: 2440, Height: 1220},
		PlacedPieces:    []model.PlacedPiece{{ID: "a"}, {ID: "b"}},
		Metrics:         model.SheetMetrics{EfficiencyPercentage: &eff},
	}
	want := "Sheet 3 (2440 × 1220): 2 pieces, 42.0% efficiency"
	if got := SheetHeader(s, model.MaterialSheet); got != want {
		t.Errorf("SheetHeader() = %q, want %q", got, want)
	}

	used := 800.0
	s.SheetDimensions.Height = model.RollSentinelHeight
	s.Metrics.ConsumedLengthMM = &used
	want = "Roll segment 3 (2440 wide, 800 used): 2 pieces, 42.0% efficiency"
	if got := SheetHeader(s, model.MaterialRoll); got != want {
		t.Errorf("SheetHeader() = %q, want %q", got, want)
	}
}
