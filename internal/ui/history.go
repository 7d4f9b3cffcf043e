package ui

import "github.com/piwi3910/SlabPlan/internal/model"

const defaultMaxDepth = 50

// Snapshot captures the editable request state at a point in time.
type Snapshot struct {
	Material model.MaterialType
	Sheet    model.Dimensions
	Kerf     float64
	Pieces   []model.RequestPiece
	Label    string // Human-readable description (e.g. "Add Piece")
}

// History manages undo/redo stacks of request snapshots.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{
		maxDepth: defaultMaxDepth,
	}
}

// Push saves a snapshot onto the undo stack and clears the redo stack.
// This should be called before the modification is applied.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo pops the most recent snapshot from the undo stack and pushes
// the current state onto the redo stack. Returns the snapshot to restore
// and true, or an empty snapshot and false if nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo pops the most recent snapshot from the redo stack and pushes
// the current state onto the undo stack.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// copyPieces returns a deep copy of a piece slice. Quantities are pointers
// and get their own storage.
func copyPieces(pieces []model.RequestPiece) []model.RequestPiece {
	if pieces == nil {
		return nil
	}
	cp := make([]model.RequestPiece, len(pieces))
	for i, p := range pieces {
		cp[i] = p
		if p.Quantity != nil {
			q := *p.Quantity
			cp[i].Quantity = &q
		}
	}
	return cp
}

// MakeSnapshot captures req with a label.
func MakeSnapshot(req model.OptimizationRequest, label string) Snapshot {
	return Snapshot{
		Material: req.MaterialType,
		Sheet:    req.Sheet,
		Kerf:     req.Kerf,
		Pieces:   copyPieces(req.Pieces),
		Label:    label,
	}
}

// Restore writes the snapshot back into req. Optional fields that are not
// tracked by the history are left alone.
func (s Snapshot) Restore(req *model.OptimizationRequest) {
	req.MaterialType = s.Material
	req.Sheet = s.Sheet
	req.Kerf = s.Kerf
	req.Pieces = copyPieces(s.Pieces)
}
