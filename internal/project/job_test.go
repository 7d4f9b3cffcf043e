package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabPlan/internal/model"
)

func TestSaveAndLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs", "kitchen.json")

	job := model.NewJob()
	job.Name = "Kitchen"
	job.Request.Pieces = append(job.Request.Pieces, model.NewRequestPiece("Door", 400, 800, 2))
	job.Result = &model.PlacementResult{
		GlobalMetrics: model.Metrics{MaterialType: model.MaterialSheet, TotalPlacedPieces: 2, TotalPieces: 2},
		Sheets: []model.Sheet{{
			SheetIndex:   1,
			PlacedPieces: []model.PlacedPiece{{ID: "Door-2", X: 0, Y: 0, Width: 400, Height: 800}},
		}},
	}

	if err := SaveJob(path, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	loaded, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	if loaded.Name != "Kitchen" {
		t.Errorf("expected name Kitchen, got %s", loaded.Name)
	}
	if len(loaded.Request.Pieces) != 1 || loaded.Request.Pieces[0].Count() != 2 {
		t.Errorf("unexpected pieces: %+v", loaded.Request.Pieces)
	}
	if loaded.Result == nil || len(loaded.Result.Sheets) != 1 {
		t.Fatal("expected the saved result to round-trip")
	}
	p := loaded.Result.Sheets[0].PlacedPieces[0]
	if p.BaseID != "Door" || p.InstanceIndex != 2 {
		t.Errorf("expected Door #2, got %s #%d", p.BaseID, p.InstanceIndex)
	}
}

func TestLoadJobMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	if err := os.WriteFile(path, []byte(`{"job":{"name":"x"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJob(path); err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestLoadJobMissingFile(t *testing.T) {
	if _, err := LoadJob(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRequestFromJobFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	job := model.NewJob()
	job.Request.Pieces = append(job.Request.Pieces, model.NewRequestPiece("Shelf", 600, 300, 4))
	if err := SaveJob(path, job); err != nil {
		t.Fatal(err)
	}

	req, err := LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest failed: %v", err)
	}
	if req.TotalPieces() != 4 {
		t.Errorf("expected 4 pieces, got %d", req.TotalPieces())
	}
}

func TestLoadRequestFromBarePayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	payload := `{"material_type":"ROLL","sheet":{"width":1200,"height":0},"pieces":[{"id":"A","width":100,"height":50}],"kerf":0}`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	req, err := LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest failed: %v", err)
	}
	if req.MaterialType != model.MaterialRoll {
		t.Errorf("expected roll, got %s", req.MaterialType)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("roll request with zero height should validate: %v", err)
	}
}

func TestLoadResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	body := `{"global_metrics":{"material_type":"sheet","total_placed_pieces":1,"total_pieces":1},
"sheets":[{"sheet_index":1,"sheet_dimensions":{"width":100,"height":100},"placed_pieces":[{"id":"A-1","x":0,"y":0,"width":10,"height":10}]}]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadResult(path)
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}
	if r.PlacedCount() != 1 {
		t.Errorf("expected 1 placed piece, got %d", r.PlacedCount())
	}

	if err := os.WriteFile(path, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadResult(path); err == nil {
		t.Error("expected parse error")
	}
}
