package datapersistence

import (
	"time"

	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/monitor"
	"github.com/google/uuid"
)

// ArtifactRecord is the persisted outcome of evaluating one artifact.
type ArtifactRecord struct {
	Artifact      string     `json:"artifact"`
	DisplayName   string     `json:"displayName"`
	CheckedAt     time.Time  `json:"checkedAt"`
	Found         bool       `json:"found"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	DaysRemaining int        `json:"daysRemaining"`
	Verdict       string     `json:"verdict"`
	Notified      bool       `json:"notified"`
	Error         string     `json:"error,omitempty"`
}

type RunReport struct {
	RunID      string           `json:"runId"`
	CheckedAt  time.Time        `json:"checkedAt"`
	ClientName string           `json:"clientName"`
	Results    []ArtifactRecord `json:"results"`
}

// BuildReport converts the monitor's results into the persisted report form.
// `checkedAt` is the run timestamp, supplied by the caller so it comes from the
// same clock as the evaluations themselves.
func BuildReport(clientName string, checkedAt time.Time, results []monitor.Result) *RunReport {
	records := make([]ArtifactRecord, len(results))
	for i, result := range results {
		record := ArtifactRecord{
			Artifact:      result.Artifact.Kind.String(),
			DisplayName:   result.Artifact.DisplayName,
			CheckedAt:     result.CheckedAt,
			Found:         result.Found,
			DaysRemaining: result.DaysRemaining,
			Verdict:       result.Verdict.String(),
			Notified:      result.Notified,
		}
		if result.Found {
			expiresAt := result.ExpiresAt
			record.ExpiresAt = &expiresAt
		}
		if result.Error != nil {
			record.Error = result.Error.Error()
		}
		records[i] = record
	}

	return &RunReport{
		RunID:      uuid.New().String(),
		CheckedAt:  checkedAt,
		ClientName: clientName,
		Results:    records,
	}
}
