package domain

// FileType identifies which schema a submitted file is validated against.
type FileType string

const (
	FileTypeTimecard FileType = "timecard"
	FileTypeEmployee FileType = "employee"
	FileTypeProject  FileType = "project"
)

// Known reports whether the file type is one of the supported schemas.
func (t FileType) Known() bool {
	switch t {
	case FileTypeTimecard, FileTypeEmployee, FileTypeProject:
		return true
	default:
		return false
	}
}

// FileSubmission is one file attached to a batch. Immutable once validation
// of the batch starts.
type FileSubmission struct {
	FileType FileType
	Filename string
	Raw      []byte
}

// ValidationIssue captures a single rule violation found during validation.
// A row violating several rules produces one issue per violated rule, all
// carrying the same row index.
type ValidationIssue struct {
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error"`
}

// UploadResult is the per-file validation outcome. Issues are ordered by the
// 1-based data row index they refer to; ValidRows+InvalidRows always equals
// TotalRows.
type UploadResult struct {
	Filename    string            `json:"filename"`
	FileType    FileType          `json:"file_type"`
	TotalRows   int               `json:"total_rows"`
	ValidRows   int               `json:"valid_rows"`
	InvalidRows int               `json:"invalid_rows"`
	Issues      []ValidationIssue `json:"issues"`
}

// ValidationReport aggregates the UploadResults of one batch in file
// attachment order. Totals are recomputed from the uploads, never trusted
// from callers.
type ValidationReport struct {
	Uploads          []UploadResult `json:"uploads"`
	TotalFiles       int            `json:"total_files"`
	TotalValidRows   int            `json:"total_valid_rows"`
	TotalInvalidRows int            `json:"total_invalid_rows"`
	HasErrors        bool           `json:"has_errors"`
}
