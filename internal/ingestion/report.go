package ingestion

import "github.com/rpattn/grosscalc/internal/domain"

// BuildReport aggregates per-file results into a batch report. Totals are
// always recomputed from the uploads so they cannot drift from the issues.
func BuildReport(uploads []domain.UploadResult) *domain.ValidationReport {
	report := &domain.ValidationReport{
		Uploads:    uploads,
		TotalFiles: len(uploads),
	}
	for _, upload := range uploads {
		report.TotalValidRows += upload.ValidRows
		report.TotalInvalidRows += upload.InvalidRows
		if len(upload.Issues) > 0 {
			report.HasErrors = true
		}
	}
	return report
}
