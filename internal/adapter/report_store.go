package adapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	m "axegrind.dev/pkg/axegrind/internal/model"
)

// ReportStore persists scan reports so traversal visibility survives the
// invocation. Reports are JSON; axe tooling is JSON-native.
type ReportStore interface {
	Save(report m.ScanReport, dir m.Path) (m.Path, error)
	Load(path m.Path) (m.ScanReport, error)
}

// JSONReportStore is the concrete file-backed implementation.
type JSONReportStore struct{}

// NewReportStore constructs a JSONReportStore.
func NewReportStore() *JSONReportStore {
	return &JSONReportStore{}
}

// Save writes the report under dir and returns the file it created.
func (s *JSONReportStore) Save(report m.ScanReport, dir m.Path) (m.Path, error) {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		slog.Error("Failed to create reports dir", "dir", dir, "error", err)
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	name := fmt.Sprintf("scan-%s.json", report.CreatedAt.UTC().Format("20060102-150405"))
	path := filepath.Join(string(dir), name)

	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		slog.Error("Failed to write report", "path", path, "error", err)
		return "", fmt.Errorf("write report: %w", err)
	}

	return m.Path(path), nil
}

// Load reads a report back from path.
func (s *JSONReportStore) Load(path m.Path) (m.ScanReport, error) {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return m.ScanReport{}, fmt.Errorf("read report: %w", err)
	}

	var report m.ScanReport
	if err := json.Unmarshal(content, &report); err != nil {
		return m.ScanReport{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	if report.Version > m.CurrentReportVersion {
		return m.ScanReport{}, fmt.Errorf("report %s has unsupported version %d", path, report.Version)
	}

	return report, nil
}

// NewReport assembles a versioned report from per-target summaries.
func NewReport(summaries []m.ScanSummary) m.ScanReport {
	return m.ScanReport{
		Version:   m.CurrentReportVersion,
		CreatedAt: time.Now(),
		Summaries: summaries,
	}
}
