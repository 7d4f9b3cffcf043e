package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/SlabPlan/internal/model"
)

// JobFileVersion is written into every saved job.
const JobFileVersion = "1.0.0"

// JobFile is the on-disk form of a job: the request, and the last result
// received for it when there is one.
type JobFile struct {
	Version string    `json:"version"`
	SavedAt string    `json:"saved_at"`
	Job     model.Job `json:"job"`
}

// SaveJob writes job to path as JSON, creating parent directories.
func SaveJob(path string, job model.Job) error {
	file := JobFile{
		Version: JobFileVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Job:     job,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}
	return nil
}

// LoadJob reads a file written by SaveJob.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to read job file: %w", err)
	}
	var file JobFile
	if err := json.Unmarshal(data, &file); err != nil {
		return model.Job{}, fmt.Errorf("failed to parse job file: %w", err)
	}
	if file.Version == "" {
		return model.Job{}, fmt.Errorf("invalid job file: missing version field")
	}
	if file.Job.Request.Pieces == nil {
		file.Job.Request.Pieces = []model.RequestPiece{}
	}
	file.Job.Request.MaterialType = file.Job.Request.MaterialType.Normalize()
	return file.Job, nil
}

// LoadRequest reads an optimization request from either a saved job or a
// bare request payload as sent to the optimizer.
func LoadRequest(path string) (model.OptimizationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.OptimizationRequest{}, fmt.Errorf("failed to read request: %w", err)
	}

	var probe struct {
		Version string          `json:"version"`
		Job     json.RawMessage `json:"job"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return model.OptimizationRequest{}, fmt.Errorf("failed to parse request: %w", err)
	}
	if probe.Version != "" && len(probe.Job) > 0 {
		job, err := LoadJob(path)
		if err != nil {
			return model.OptimizationRequest{}, err
		}
		return job.Request, nil
	}

	var req model.OptimizationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return model.OptimizationRequest{}, fmt.Errorf("failed to parse request: %w", err)
	}
	req.MaterialType = req.MaterialType.Normalize()
	return req, nil
}

// LoadResult reads a placement result saved as optimizer JSON.
func LoadResult(path string) (model.PlacementResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PlacementResult{}, fmt.Errorf("failed to read result: %w", err)
	}
	r, err := model.DecodeResult(data)
	if err != nil {
		return model.PlacementResult{}, fmt.Errorf("failed to parse result %s: %w", path, err)
	}
	return r, nil
}
