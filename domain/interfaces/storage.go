package interfaces

import "auth_harness/domain/entities"

// ReportStore persists run reports and their artifacts
type ReportStore interface {
	// SaveReport stores a finished report and marks it as the latest run
	SaveReport(report *entities.Report) error

	// LoadReport loads a report by run ID
	LoadReport(runID string) (*entities.Report, error)

	// LatestReport loads the most recently saved report
	LatestReport() (*entities.Report, error)

	// SaveArtifact writes a named artifact for a run and returns its path
	SaveArtifact(runID, name string, data []byte) (string, error)
}
