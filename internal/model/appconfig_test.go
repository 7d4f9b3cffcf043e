package model

import "testing"

func TestDefaultAppConfigMatchesNewJob(t *testing.T) {
	cfg := DefaultAppConfig()
	job := NewJob()

	if cfg.DefaultKerf != job.Request.Kerf {
		t.Errorf("Kerf mismatch: config=%f job=%f", cfg.DefaultKerf, job.Request.Kerf)
	}
	if cfg.DefaultSheetWidth != job.Request.Sheet.Width {
		t.Errorf("SheetWidth mismatch: config=%f job=%f", cfg.DefaultSheetWidth, job.Request.Sheet.Width)
	}
	if cfg.DefaultMaterial != MaterialSheet {
		t.Errorf("expected default material sheet, got %s", cfg.DefaultMaterial)
	}
	if cfg.Theme != "system" {
		t.Errorf("expected default theme=system, got %s", cfg.Theme)
	}
	if cfg.RecentFiles == nil {
		t.Error("RecentFiles should not be nil")
	}
}

func TestApplyToRequest(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultKerf = 5.0
	cfg.DefaultMaterial = MaterialRoll
	cfg.DefaultSheetWidth = 1500

	r := NewJob().Request
	cfg.ApplyToRequest(&r)

	if r.Kerf != 5.0 {
		t.Errorf("expected Kerf=5.0, got %f", r.Kerf)
	}
	if r.MaterialType != MaterialRoll {
		t.Errorf("expected roll, got %s", r.MaterialType)
	}
	if r.Sheet.Width != 1500 {
		t.Errorf("expected width 1500, got %f", r.Sheet.Width)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := AppConfig{OptimizerURL: "http://optimizer:9000"}.Normalize()

	if cfg.OptimizerURL != "http://optimizer:9000" {
		t.Errorf("explicit URL was overwritten: %s", cfg.OptimizerURL)
	}
	if cfg.PixelRatio != 2.0 {
		t.Errorf("expected pixel ratio 2, got %f", cfg.PixelRatio)
	}
	if cfg.ExportFileName != "cutting-plan.pdf" {
		t.Errorf("unexpected export file name %q", cfg.ExportFileName)
	}
	if cfg.RequestTimeoutSeconds != 60 {
		t.Errorf("expected 60s timeout, got %d", cfg.RequestTimeoutSeconds)
	}
}

func TestAddRecentFile(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentFile("a.json")
	cfg.AddRecentFile("b.json")
	cfg.AddRecentFile("a.json")

	if len(cfg.RecentFiles) != 2 {
		t.Fatalf("expected 2 recent files, got %d", len(cfg.RecentFiles))
	}
	if cfg.RecentFiles[0] != "a.json" || cfg.RecentFiles[1] != "b.json" {
		t.Errorf("unexpected order: %v", cfg.RecentFiles)
	}

	for i := 0; i < 20; i++ {
		cfg.AddRecentFile(string(rune('c' + i)))
	}
	if len(cfg.RecentFiles) != maxRecentFiles {
		t.Errorf("expected list capped at %d, got %d", maxRecentFiles, len(cfg.RecentFiles))
	}
}
