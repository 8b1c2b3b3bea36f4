package schema

import "github.com/rpattn/grosscalc/internal/domain"

// Canonical column names per file type. Uploaded headers are sanitized by
// the tabular package and then mapped through the synonym table below, so
// "Employee ID", "EMP_ID" and "EmpId" all land on EMPLOYEE_ID.
const (
	ColEmployeeID    = "EMPLOYEE_ID"
	ColEmployeeName  = "EMPLOYEE_NAME"
	ColDailyDate     = "DAILY_DATE"
	ColTimeWorked    = "TIME_WORKED"
	ColProjectName   = "PROJECT_NAME"
	ColTimeCardState = "TIME_CARD_STATE"
	ColTaskType      = "TASK_TYPE"
	ColCTC           = "CTC"
	ColCTCPerHour    = "CTCPHR"
	ColSOW           = "SOW"
	ColProjectID     = "PROJECT_ID"
)

type fileSchema struct {
	required []string
	optional []string
	synonyms map[string]string // sanitized alternate header -> canonical
}

var fileSchemas = map[domain.FileType]fileSchema{
	domain.FileTypeTimecard: {
		required: []string{ColEmployeeID, ColEmployeeName, ColDailyDate, ColTimeWorked, ColProjectName},
		optional: []string{ColTimeCardState, ColTaskType},
		synonyms: map[string]string{
			"EMP_ID":       ColEmployeeID,
			"EMPID":        ColEmployeeID,
			"EMPLOYEEID":   ColEmployeeID,
			"EMP_NAME":     ColEmployeeName,
			"EMPNAME":      ColEmployeeName,
			"NAME":         ColEmployeeName,
			"DATE":         ColDailyDate,
			"WORK_DATE":    ColDailyDate,
			"WORKDATE":     ColDailyDate,
			"HOURS_WORKED": ColTimeWorked,
			"HOURSWORKED":  ColTimeWorked,
			"HOURS":        ColTimeWorked,
			"TIME":         ColTimeWorked,
			"PROJECT":      ColProjectName,
			"PROJECTNAME":  ColProjectName,
			"STATE":        ColTimeCardState,
			"STATUS":       ColTimeCardState,
			"CARDSTATE":    ColTimeCardState,
			"TASK":         ColTaskType,
			"TYPE":         ColTaskType,
			"TASKTYPE":     ColTaskType,
		},
	},
	domain.FileTypeEmployee: {
		required: []string{ColEmployeeID, ColEmployeeName, ColCTC},
		optional: []string{ColCTCPerHour},
		synonyms: map[string]string{
			"EMP_ID":          ColEmployeeID,
			"EMPID":           ColEmployeeID,
			"EMPLOYEEID":      ColEmployeeID,
			"EMP_NAME":        ColEmployeeName,
			"EMPNAME":         ColEmployeeName,
			"NAME":            ColEmployeeName,
			"CTC_ANNUAL":      ColCTC,
			"CTCANNUAL":       ColCTC,
			"ANNUAL_CTC":      ColCTC,
			"COST_TO_COMPANY": ColCTC,
			"SALARY":          ColCTC,
			"CTC_HOURLY":      ColCTCPerHour,
			"HOURLY_RATE":     ColCTCPerHour,
			"HOURLYRATE":      ColCTCPerHour,
		},
	},
	domain.FileTypeProject: {
		required: []string{ColProjectName, ColSOW},
		optional: []string{ColProjectID},
		synonyms: map[string]string{
			"PROJECT":           ColProjectName,
			"PROJECTNAME":       ColProjectName,
			"NAME":              ColProjectName,
			"BUDGET":            ColSOW,
			"SOW_VALUE":         ColSOW,
			"PROJECT_BUDGET":    ColSOW,
			"STATEMENT_OF_WORK": ColSOW,
			"ID":                ColProjectID,
			"PROJECTID":         ColProjectID,
		},
	},
}

// canonicalize rewrites sanitized headers to their canonical names for the
// given file type. Unknown columns pass through untouched and are ignored by
// validation.
func canonicalize(fileType domain.FileType, headers []string) []string {
	s, ok := fileSchemas[fileType]
	if !ok {
		return headers
	}
	out := make([]string, len(headers))
	for i, header := range headers {
		if canonical, found := s.synonyms[header]; found {
			out[i] = canonical
			continue
		}
		out[i] = header
	}
	return out
}
