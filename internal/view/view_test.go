package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabPlan/internal/export"
	"github.com/piwi3910/SlabPlan/internal/metrics"
	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/palette"
)

func sampleResult() model.PlacementResult {
	return model.PlacementResult{
		GlobalMetrics: model.Metrics{MaterialType: model.MaterialSheet, TotalPlacedPieces: 3, TotalPieces: 4},
		Sheets: []model.Sheet{
			{
				SheetIndex:      2,
				SheetDimensions: model.Dimensions{Width: 1000, Height: 500},
				PlacedPieces: []model.PlacedPiece{
					{ID: "A-3", BaseID: "A", InstanceIndex: 3, X: 0, Y: 0, Width: 200, Height: 100},
				},
			},
			{
				SheetIndex:      1,
				SheetDimensions: model.Dimensions{Width: 1000, Height: 500},
				PlacedPieces: []model.PlacedPiece{
					{ID: "A-1", BaseID: "A", InstanceIndex: 1, X: 0, Y: 0, Width: 200, Height: 100},
					{ID: "B", BaseID: "B", X: 300, Y: 0, Width: 200, Height: 100},
				},
			},
		},
		UnplacedPieceIDs: []string{"A-4"},
	}
}

func TestStateTransitions(t *testing.T) {
	v := New(WithPalette(palette.New(palette.WithSeed(1))))

	var seen []State
	v.OnChange(func(s State) { seen = append(seen, s) })

	assert.Equal(t, Idle, v.Snapshot().State)

	v.BeginRequest()
	assert.Equal(t, Loading, v.Snapshot().State)

	v.Show(sampleResult())
	snap := v.Snapshot()
	assert.Equal(t, Populated, snap.State)
	require.NotNil(t, snap.Result)
	assert.Len(t, snap.Result.Sheets, 2)
	placed, ok := snap.Display.Item(metrics.KeyPlaced)
	require.True(t, ok)
	assert.True(t, placed.Warning)

	v.BeginRequest()
	assert.NotNil(t, v.Snapshot().Result, "previous result stays until replaced")

	v.Fail(errors.New("connection refused"))
	snap = v.Snapshot()
	assert.Equal(t, Error, snap.State)
	assert.EqualError(t, snap.Err, "connection refused")

	v.Show(model.PlacementResult{})
	assert.Equal(t, Empty, v.Snapshot().State)

	assert.Equal(t, []State{Loading, Populated, Loading, Error, Empty}, seen)
}

func TestShowRebuildsColors(t *testing.T) {
	v := New()
	v.Show(sampleResult())

	assert.Equal(t, 2, v.Colors().Len())
	assert.NotEqual(t, palette.Fallback, v.Colors().ColorOf("A"))
	assert.NotEqual(t, palette.Fallback, v.Colors().ColorOf("B"))

	v.Show(model.PlacementResult{Sheets: []model.Sheet{{
		SheetIndex:   1,
		PlacedPieces: []model.PlacedPiece{{ID: "C", BaseID: "C", Width: 1, Height: 1}},
	}}})
	assert.Equal(t, 1, v.Colors().Len())
	assert.Equal(t, palette.Fallback, v.Colors().ColorOf("A"))
}

func TestRunDropsStaleResponses(t *testing.T) {
	v := New()
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	var slowErr error
	go func() {
		defer wg.Done()
		slowErr = v.Run(context.Background(), func(context.Context) (*model.PlacementResult, error) {
			close(started)
			<-release
			r := sampleResult()
			return &r, nil
		})
	}()
	<-started

	err := v.Run(context.Background(), func(context.Context) (*model.PlacementResult, error) {
		return &model.PlacementResult{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, Empty, v.Snapshot().State)

	close(release)
	wg.Wait()
	assert.ErrorIs(t, slowErr, ErrStale)
	assert.Equal(t, Empty, v.Snapshot().State, "a stale response must not replace the newer result")
}

func TestRunFailure(t *testing.T) {
	v := New()
	boom := errors.New("503 from optimizer")
	err := v.Run(context.Background(), func(context.Context) (*model.PlacementResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Error, v.Snapshot().State)

	err = v.Run(context.Background(), func(context.Context) (*model.PlacementResult, error) {
		return nil, nil
	})
	assert.Error(t, err)
	assert.Equal(t, Error, v.Snapshot().State)
}

func TestRenderSheets(t *testing.T) {
	v := New()
	assert.Nil(t, v.RenderSheets(1))

	r := sampleResult()
	r.Sheets = append(r.Sheets, model.Sheet{SheetIndex: 3})
	v.Show(r)

	images := v.RenderSheets(0.5)
	require.Len(t, images, 2)
	assert.Equal(t, 1, images[0].Sheet.SheetIndex)
	assert.Equal(t, 2, images[1].Sheet.SheetIndex)
	assert.Equal(t, 500, images[0].Image.Bounds().Dx())
	assert.Equal(t, 250, images[0].Image.Bounds().Dy())

	img, ok := v.RenderSheet(2, 0.5)
	require.True(t, ok)
	assert.Equal(t, 500, img.Bounds().Dx())

	_, ok = v.RenderSheet(3, 0.5)
	assert.False(t, ok)
	_, ok = v.RenderSheet(42, 0.5)
	assert.False(t, ok)
}

func TestExportRequiresPopulated(t *testing.T) {
	v := New()
	_, err := v.Export(context.Background(), nil, 0.25, export.Options{})
	assert.ErrorIs(t, err, ErrNotPopulated)

	v.Show(model.PlacementResult{})
	_, err = v.Export(context.Background(), nil, 0.25, export.Options{})
	assert.ErrorIs(t, err, ErrNotPopulated)
}

func TestExportRejectsOverlap(t *testing.T) {
	v := New()
	v.Show(sampleResult())

	v.mu.Lock()
	v.exporting = true
	v.mu.Unlock()

	_, err := v.Export(context.Background(), nil, 0.25, export.Options{})
	assert.ErrorIs(t, err, ErrExportInProgress)
}

func TestExportBuildsDocument(t *testing.T) {
	v := New()
	r := sampleResult()
	v.Show(r)

	doc, err := v.Export(context.Background(), nil, 0.25, export.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, 2, doc.Plan().ImageCount())
	assert.False(t, v.Snapshot().Exporting)
	assert.Equal(t, Populated, v.Snapshot().State)
}

func TestExportFailureLeavesViewIntact(t *testing.T) {
	v := New()
	v.Show(sampleResult())
	before := v.Snapshot()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := v.Export(ctx, nil, 0.25, export.Options{})
	require.Error(t, err)

	after := v.Snapshot()
	assert.Equal(t, before.State, after.State)
	assert.Same(t, before.Result, after.Result)
	assert.False(t, after.Exporting)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "populated", Populated.String())
	assert.Equal(t, "state(9)", State(9).String())
}
