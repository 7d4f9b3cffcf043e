package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RequestPiece is one entry of the piece list sent to the optimizer.
type RequestPiece struct {
	ID       string  `json:"id"`
	Width    float64 `json:"width"`  // mm
	Height   float64 `json:"height"` // mm
	Quantity *int    `json:"quantity,omitempty"`
}

// NewRequestPiece builds a piece. An empty label gets a short random id so
// every piece type stays addressable in the result.
func NewRequestPiece(label string, w, h float64, qty int) RequestPiece {
	if label == "" {
		label = uuid.New().String()[:8]
	}
	q := qty
	return RequestPiece{
		ID:       label,
		Width:    w,
		Height:   h,
		Quantity: &q,
	}
}

// Count returns the quantity, defaulting to 1 when omitted.
func (p RequestPiece) Count() int {
	if p.Quantity == nil {
		return 1
	}
	return *p.Quantity
}

// OptimizationRequest is the payload POSTed to the optimization service.
type OptimizationRequest struct {
	MaterialType      MaterialType   `json:"material_type"`
	Sheet             Dimensions     `json:"sheet"`
	Pieces            []RequestPiece `json:"pieces"`
	Kerf              float64        `json:"kerf"`
	RespectGrain      *bool          `json:"respect_grain,omitempty"`
	CuttingSpeedMMS   *float64       `json:"cutting_speed_mms,omitempty"`
	SheetThicknessMM  *float64       `json:"sheet_thickness_mm,omitempty"`
	CutDepthPerPassMM *float64       `json:"cut_depth_per_pass_mm,omitempty"`
}

// NewRequest returns an empty request for the given material with the
// sheet size and kerf pre-filled.
func NewRequest(material MaterialType, sheet Dimensions, kerf float64) OptimizationRequest {
	return OptimizationRequest{
		MaterialType: material.Normalize(),
		Sheet:        sheet,
		Pieces:       []RequestPiece{},
		Kerf:         kerf,
	}
}

// TotalPieces returns the number of piece instances requested.
func (r OptimizationRequest) TotalPieces() int {
	total := 0
	for _, p := range r.Pieces {
		total += p.Count()
	}
	return total
}

var errNoPieces = errors.New("request has no pieces")

// Validate reports payloads the optimizer is certain to reject. Roll
// requests may leave the sheet height at zero.
func (r OptimizationRequest) Validate() error {
	if r.Sheet.Width <= 0 {
		return fmt.Errorf("sheet width must be > 0, got %.1f", r.Sheet.Width)
	}
	if r.MaterialType.Normalize() == MaterialSheet && r.Sheet.Height <= 0 {
		return fmt.Errorf("sheet height must be > 0, got %.1f", r.Sheet.Height)
	}
	if r.Kerf < 0 {
		return fmt.Errorf("kerf must not be negative, got %.1f", r.Kerf)
	}
	if len(r.Pieces) == 0 {
		return errNoPieces
	}
	for i, p := range r.Pieces {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("piece %d (%s): width and height must be > 0", i+1, p.ID)
		}
		if p.Count() <= 0 {
			return fmt.Errorf("piece %d (%s): quantity must be > 0", i+1, p.ID)
		}
	}
	return nil
}

// Job ties a request to the last result received for it.
type Job struct {
	Name    string              `json:"name"`
	Request OptimizationRequest `json:"request"`
	Result  *PlacementResult    `json:"result,omitempty"`
}

func NewJob() Job {
	return Job{
		Name:    "Untitled",
		Request: NewRequest(MaterialSheet, Dimensions{Width: 2440, Height: 1220}, 3.2),
	}
}
