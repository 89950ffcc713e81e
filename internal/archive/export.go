// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes up to limit runs with their articles to
// dataDir/export.yaml and returns the file path. Zero exports all runs.
func (s *Store) ExportYAML(ctx context.Context, limit int) (string, error) {
	runs, err := s.exportRuns(ctx, limit)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.yaml")
	data, err := yaml.Marshal(runs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes up to limit runs with their articles to
// dataDir/export.json and returns the file path. Zero exports all runs.
func (s *Store) ExportJSON(ctx context.Context, limit int) (string, error) {
	runs, err := s.exportRuns(ctx, limit)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.json")
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = exportLimit
	}
	runs, err := s.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	for i := range runs {
		runs[i].Articles, err = s.articles(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	if runs == nil {
		runs = []Run{}
	}
	return runs, nil
}
