// Package view holds the displayed optimization result and the
// loading/error/empty/populated state around it. It owns the color
// registry, the sheet renderer and the metrics projection for one result.
package view

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/SlabPlan/internal/export"
	"github.com/piwi3910/SlabPlan/internal/metrics"
	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/palette"
	"github.com/piwi3910/SlabPlan/internal/render"
)

// State is the display state of a View.
type State int

const (
	Idle State = iota
	Loading
	Error
	Empty
	Populated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrExportInProgress is returned when an export is triggered while
	// another one is still running.
	ErrExportInProgress = errors.New("an export is already in progress")
	// ErrNotPopulated is returned when there is no result to export.
	ErrNotPopulated = errors.New("no placement result to export")
	// ErrStale is returned by Run when a newer request superseded it.
	ErrStale = errors.New("superseded by a newer request")
)

// Snapshot is a consistent copy of the view's state.
type Snapshot struct {
	State     State
	Result    *model.PlacementResult
	Display   metrics.Display
	Err       error
	Exporting bool
}

// SheetImage is one rendered sheet ready for display.
type SheetImage struct {
	Sheet model.Sheet
	Image *image.RGBA
}

// Option configures a View.
type Option func(*View)

func WithLogger(l *log.Logger) Option {
	return func(v *View) { v.logger = l }
}

func WithPalette(r *palette.Registry) Option {
	return func(v *View) { v.colors = r }
}

func WithRenderer(r *render.Renderer) Option {
	return func(v *View) { v.renderer = r }
}

// View is safe for concurrent use. The optimizer round-trip finishes on
// another goroutine than the one driving the display.
type View struct {
	mu        sync.RWMutex
	state     State
	result    *model.PlacementResult
	display   metrics.Display
	err       error
	exporting bool
	requests  uint64

	colors    *palette.Registry
	renderer  *render.Renderer
	logger    *log.Logger
	listeners []func(State)
}

func New(opts ...Option) *View {
	v := &View{}
	for _, opt := range opts {
		opt(v)
	}
	if v.colors == nil {
		v.colors = palette.New()
	}
	if v.renderer == nil {
		v.renderer = render.NewRenderer()
	}
	if v.logger == nil {
		v.logger = log.Default()
	}
	return v
}

// OnChange registers fn to be called after every state transition. It is
// called without the view's lock held.
func (v *View) OnChange(fn func(State)) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	v.listeners = append(v.listeners, fn)
	v.mu.Unlock()
}

func (v *View) notify(s State) {
	v.mu.RLock()
	listeners := make([]func(State), len(v.listeners))
	copy(listeners, v.listeners)
	v.mu.RUnlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// BeginRequest moves to Loading. The current result stays available until
// a new one replaces it. The returned ticket identifies the request.
func (v *View) BeginRequest() uint64 {
	v.mu.Lock()
	v.requests++
	ticket := v.requests
	v.state = Loading
	v.err = nil
	v.mu.Unlock()

	v.logger.Debug("optimization requested", "ticket", ticket)
	v.notify(Loading)
	return ticket
}

// Fail moves to Error. The renderer, registry and any running export are
// left alone.
func (v *View) Fail(err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	v.mu.Lock()
	v.state = Error
	v.err = err
	v.mu.Unlock()

	v.logger.Warn("optimization failed", "err", err)
	v.notify(Error)
}

// Show replaces the displayed result. The color registry is rebuilt once
// and the metrics are projected once per result.
func (v *View) Show(result model.PlacementResult) {
	v.mu.Lock()
	v.colors.Rebuild(result)
	v.result = &result
	v.display = metrics.Project(result)
	v.err = nil
	if len(result.Sheets) == 0 {
		v.state = Empty
	} else {
		v.state = Populated
	}
	state := v.state
	v.mu.Unlock()

	v.logger.Info("result received",
		"material", result.Material(),
		"sheets", len(result.Sheets),
		"placed", result.GlobalMetrics.TotalPlacedPieces,
		"total", result.GlobalMetrics.TotalPieces,
	)
	v.notify(state)
}

// Run performs one optimization round-trip through fetch. Only the most
// recent request may change the view; an older one finishing late returns
// ErrStale and is dropped.
func (v *View) Run(ctx context.Context, fetch func(context.Context) (*model.PlacementResult, error)) error {
	ticket := v.BeginRequest()
	result, err := fetch(ctx)

	v.mu.RLock()
	stale := ticket != v.requests
	v.mu.RUnlock()
	if stale {
		v.logger.Debug("dropping stale response", "ticket", ticket)
		return ErrStale
	}

	if err == nil && result == nil {
		err = errors.New("optimizer returned no result")
	}
	if err != nil {
		v.Fail(err)
		return err
	}
	v.Show(*result)
	return nil
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		State:     v.state,
		Result:    v.result,
		Display:   v.display,
		Err:       v.err,
		Exporting: v.exporting,
	}
}

// Colors returns the registry for the displayed result.
func (v *View) Colors() *palette.Registry { return v.colors }

// RenderSheets draws every drawable sheet of the displayed result, in sheet
// index order. Sheets with nothing to draw are left out.
func (v *View) RenderSheets(pixelRatio float64) []SheetImage {
	v.mu.RLock()
	result := v.result
	v.mu.RUnlock()
	if result == nil {
		return nil
	}

	var out []SheetImage
	for _, sheet := range result.SortedSheets() {
		img, ok := v.renderer.RenderImage(sheet, v.colors, pixelRatio)
		if !ok {
			continue
		}
		out = append(out, SheetImage{Sheet: sheet, Image: img})
	}
	return out
}

// RenderSheet draws the sheet with the given index.
func (v *View) RenderSheet(index int, pixelRatio float64) (*image.RGBA, bool) {
	v.mu.RLock()
	result := v.result
	v.mu.RUnlock()
	if result == nil {
		return nil, false
	}
	for _, sheet := range result.Sheets {
		if sheet.SheetIndex == index {
			return v.renderer.RenderImage(sheet, v.colors, pixelRatio)
		}
	}
	return nil, false
}

// Export builds the report for the displayed result. Roll results are
// sliced continuously, sheet results get one block per sheet. Only one
// export may run at a time; a failed export leaves the view as it was.
func (v *View) Export(ctx context.Context, exp *export.Exporter, pixelRatio float64, opts export.Options) (*export.Document, error) {
	v.mu.Lock()
	if v.state != Populated || v.result == nil {
		v.mu.Unlock()
		return nil, ErrNotPopulated
	}
	if v.exporting {
		v.mu.Unlock()
		return nil, ErrExportInProgress
	}
	v.exporting = true
	result := *v.result
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.exporting = false
		v.mu.Unlock()
	}()

	if exp == nil {
		exp = export.NewExporter(v.logger)
	}
	if opts.Title == "" {
		opts.Title = "Cutting Plan"
	}
	if opts.Subtitle == "" {
		opts.Subtitle = subtitle(result)
	}
	surfaces := export.SheetCaptures(result, v.colors, v.renderer, pixelRatio)
	return exp.Export(ctx, surfaces, result.Material(), opts)
}

func subtitle(r model.PlacementResult) string {
	m := r.GlobalMetrics
	if r.Material() == model.MaterialRoll {
		return fmt.Sprintf("Roll, %d of %d pieces placed", m.TotalPlacedPieces, m.TotalPieces)
	}
	return fmt.Sprintf("%d sheet(s), %d of %d pieces placed", len(r.Sheets), m.TotalPlacedPieces, m.TotalPieces)
}
