// Package palette assigns display colors to piece types.
//
// A Registry is rebuilt once per placement result and then answers
// ColorOf lookups for every sheet of that result, so all instances of a
// piece type share one color.
package palette

import (
	"image/color"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/piwi3910/SlabPlan/internal/model"
)

// Fallback is returned for base ids the registry has never seen.
var Fallback = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

// goldenAngle spreads consecutive hues as far apart as possible.
const goldenAngle = 137.50776405003785

// Entry is one base id with its assigned color.
type Entry struct {
	BaseID string
	Color  color.NRGBA
}

// Option configures a Registry.
type Option func(*Registry)

// WithSeed makes color choice reproducible, mainly for tests and golden output.
func WithSeed(seed uint64) Option {
	return func(r *Registry) {
		r.source = func() *rand.Rand {
			return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
}

// Registry maps base ids to colors.
type Registry struct {
	mu     sync.RWMutex
	colors map[string]color.NRGBA
	order  []string
	source func() *rand.Rand
}

func New(opts ...Option) *Registry {
	r := &Registry{
		colors: make(map[string]color.NRGBA),
		source: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rebuild discards every entry and assigns colors for the base ids found in
// result, visiting sheets in sheet_index order and pieces in given order.
func (r *Registry) Rebuild(result model.PlacementResult) {
	rng := r.source()
	start := rng.Float64() * 360

	colors := make(map[string]color.NRGBA)
	var order []string
	for _, sheet := range result.SortedSheets() {
		for _, p := range sheet.PlacedPieces {
			id := p.Key()
			if _, ok := colors[id]; ok {
				continue
			}
			hue := math.Mod(start+float64(len(order))*goldenAngle, 360)
			colors[id] = generate(rng, hue)
			order = append(order, id)
		}
	}

	r.mu.Lock()
	r.colors = colors
	r.order = order
	r.mu.Unlock()
}

// generate picks a light, saturated color that keeps black text legible.
func generate(rng *rand.Rand, hue float64) color.NRGBA {
	s := 0.55 + rng.Float64()*0.20
	l := 0.65 + rng.Float64()*0.13
	cr, cg, cb := colorful.Hsl(hue, s, l).Clamped().RGB255()
	return color.NRGBA{R: cr, G: cg, B: cb, A: 255}
}

// ColorOf returns the color for baseID, or Fallback when it is unknown.
func (r *Registry) ColorOf(baseID string) color.NRGBA {
	if r == nil {
		return Fallback
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.colors[baseID]; ok {
		return c
	}
	return Fallback
}

// Len returns the number of registered base ids.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Legend returns the entries in first-seen order.
func (r *Registry) Legend() []Entry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]Entry, len(r.order))
	for i, id := range r.order {
		entries[i] = Entry{BaseID: id, Color: r.colors[id]}
	}
	return entries
}
