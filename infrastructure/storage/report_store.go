package storage

import (
	"auth_harness/domain/entities"
	"auth_harness/domain/interfaces"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const latestReportFile = "latest.json"

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type reportStore struct {
	dir string
}

// NewReportStore - creates report storage rooted at dir
func NewReportStore(dir string) (interfaces.ReportStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		dir = filepath.Join(homeDir, ".auth_harness", "reports")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	return &reportStore{dir: dir}, nil
}

// SaveReport - saves report as <run_id>.json and latest.json
func (s *reportStore) SaveReport(report *entities.Report) error {
	if report == nil || report.RunID == "" {
		return errors.New("report has no run id")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.reportPath(report.RunID), data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, latestReportFile), data, 0644)
}

// LoadReport - loads report by run id
func (s *reportStore) LoadReport(runID string) (*entities.Report, error) {
	return s.load(s.reportPath(runID))
}

// LatestReport - loads the most recently saved report
func (s *reportStore) LatestReport() (*entities.Report, error) {
	return s.load(filepath.Join(s.dir, latestReportFile))
}

// SaveArtifact - writes artifact into the run's directory
func (s *reportStore) SaveArtifact(runID, name string, data []byte) (string, error) {
	runDir := filepath.Join(s.dir, sanitize(runID))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	path := filepath.Join(runDir, sanitize(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *reportStore) load(path string) (*entities.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no report at %s: %w", path, err)
		}
		return nil, err
	}

	var report entities.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}

	return &report, nil
}

func (s *reportStore) reportPath(runID string) string {
	return filepath.Join(s.dir, sanitize(runID)+".json")
}

// sanitize - keeps file names inside the report directory
func sanitize(name string) string {
	name = unsafeName.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
