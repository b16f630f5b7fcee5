package outputter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"archatlas/internal/domain"
	"archatlas/internal/logging"
)

// SaveReport persists the full report as JSON under the results directory
// and returns the file path.
func SaveReport(report *domain.Report, resultsDir string) (string, error) {
	if resultsDir == "" {
		resultsDir = "results"
	}
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(resultsDir, fmt.Sprintf("analysis_%s.json", report.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	logging.LogDebug("report saved", map[string]any{"file": path})
	return path, nil
}
