package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpattn/grosscalc/internal/domain"
	"github.com/rpattn/grosscalc/internal/tabular"
)

var (
	hoursMin = decimal.RequireFromString("0.1")
	hoursMax = decimal.RequireFromString("999.9")

	employeeIDPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

	dateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"02/01/2006",
		time.RFC3339,
	}
)

const (
	maxEmployeeIDLen  = 10
	maxNameLen        = 120
	maxProjectNameLen = 200
)

// RowTimeCard pairs a validated record with its 1-based data row index.
type RowTimeCard struct {
	Row    int
	Record domain.TimeCard
}

// RowEmployee pairs a validated record with its 1-based data row index.
type RowEmployee struct {
	Row    int
	Record domain.Employee
}

// RowProject pairs a validated record with its 1-based data row index.
type RowProject struct {
	Row    int
	Record domain.Project
}

// Outcome is the result of validating one file: the UploadResult contract
// plus the typed records for the rows that passed. Only the slice matching
// the file type is populated.
type Outcome struct {
	Result    domain.UploadResult
	Timecards []RowTimeCard
	Employees []RowEmployee
	Projects  []RowProject
}

// ValidateSubmission parses and validates one attached file. Parse failures
// become a synthetic issue on an otherwise empty result so the rest of the
// batch keeps processing.
func ValidateSubmission(sub domain.FileSubmission) Outcome {
	table, err := tabular.Parse(sub.Filename, sub.Raw)
	if err != nil {
		perr := &domain.FileParseError{Filename: sub.Filename, Err: err}
		return Outcome{Result: domain.UploadResult{
			Filename: sub.Filename,
			FileType: sub.FileType,
			Issues: []domain.ValidationIssue{{
				Row:    0,
				Column: "SYSTEM",
				Error:  perr.Error(),
			}},
		}}
	}
	return Validate(sub.FileType, sub.Filename, table)
}

// Validate checks every data row of the table against the schema for the
// declared file type. It is pure and deterministic: identical input yields
// an identical result, rows are processed in file order, and a row violating
// several rules yields one issue per violated rule.
func Validate(fileType domain.FileType, filename string, table tabular.Table) Outcome {
	outcome := Outcome{Result: domain.UploadResult{
		Filename: filename,
		FileType: fileType,
		Issues:   []domain.ValidationIssue{},
	}}

	s, known := fileSchemas[fileType]
	if !known {
		outcome.Result.Issues = append(outcome.Result.Issues, domain.ValidationIssue{
			Row:    0,
			Column: "SYSTEM",
			Error:  fmt.Sprintf("unknown file type %q", fileType),
		})
		return outcome
	}

	table.Headers = canonicalize(fileType, table.Headers)
	outcome.Result.TotalRows = len(table.Rows)

	var missing []string
	for _, column := range s.required {
		if !table.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		// File-level failure: every row is invalid, one issue per row per
		// missing column.
		for i := range table.Rows {
			for _, column := range missing {
				outcome.Result.Issues = append(outcome.Result.Issues, domain.ValidationIssue{
					Row:    i + 1,
					Column: column,
					Error:  fmt.Sprintf("missing required column %s", column),
				})
			}
		}
		outcome.Result.InvalidRows = len(table.Rows)
		return outcome
	}

	seenKeys := make(map[string]int)
	for i, row := range table.Rows {
		rowNum := i + 1
		var issues []domain.ValidationIssue

		switch fileType {
		case domain.FileTypeTimecard:
			record, rowIssues := validateTimecardRow(table, row, rowNum)
			issues = rowIssues
			if len(issues) == 0 {
				outcome.Timecards = append(outcome.Timecards, RowTimeCard{Row: rowNum, Record: record})
			}
		case domain.FileTypeEmployee:
			record, rowIssues := validateEmployeeRow(table, row, rowNum, seenKeys)
			issues = rowIssues
			if len(issues) == 0 {
				outcome.Employees = append(outcome.Employees, RowEmployee{Row: rowNum, Record: record})
			}
		case domain.FileTypeProject:
			record, rowIssues := validateProjectRow(table, row, rowNum, seenKeys)
			issues = rowIssues
			if len(issues) == 0 {
				outcome.Projects = append(outcome.Projects, RowProject{Row: rowNum, Record: record})
			}
		}

		if len(issues) > 0 {
			outcome.Result.InvalidRows++
			outcome.Result.Issues = append(outcome.Result.Issues, issues...)
		} else {
			outcome.Result.ValidRows++
		}
	}

	return outcome
}

func validateTimecardRow(table tabular.Table, row []string, rowNum int) (domain.TimeCard, []domain.ValidationIssue) {
	var issues []domain.ValidationIssue
	var record domain.TimeCard

	employeeID, ok := requireCell(table, row, ColEmployeeID, rowNum, &issues)
	if ok {
		record.EmployeeID, issues = checkEmployeeID(employeeID, rowNum, issues)
	}

	name, ok := requireCell(table, row, ColEmployeeName, rowNum, &issues)
	if ok {
		if len(name) > maxNameLen {
			issues = append(issues, issue(rowNum, ColEmployeeName, name,
				fmt.Sprintf("exceeds maximum length of %d characters", maxNameLen)))
		} else {
			record.EmployeeName = name
		}
	}

	rawDate, ok := requireCell(table, row, ColDailyDate, rowNum, &issues)
	if ok {
		date, err := parseDate(rawDate)
		switch {
		case err != nil:
			issues = append(issues, issue(rowNum, ColDailyDate, rawDate, "invalid date format"))
		case date.After(time.Now()):
			issues = append(issues, issue(rowNum, ColDailyDate, rawDate, "date must not be in the future"))
		default:
			record.Date = date
		}
	}

	rawHours, ok := requireCell(table, row, ColTimeWorked, rowNum, &issues)
	if ok {
		hours, err := decimal.NewFromString(rawHours)
		switch {
		case err != nil:
			issues = append(issues, issue(rowNum, ColTimeWorked, rawHours, "must be a number"))
		case hours.LessThan(hoursMin) || hours.GreaterThan(hoursMax):
			issues = append(issues, issue(rowNum, ColTimeWorked, rawHours,
				fmt.Sprintf("value %s outside allowed range [%s, %s]", rawHours, hoursMin, hoursMax)))
		default:
			record.HoursWorked = hours
		}
	}

	project, ok := requireCell(table, row, ColProjectName, rowNum, &issues)
	if ok {
		if len(project) > maxProjectNameLen {
			issues = append(issues, issue(rowNum, ColProjectName, project,
				fmt.Sprintf("exceeds maximum length of %d characters", maxProjectNameLen)))
		} else {
			record.ProjectName = strings.ToUpper(project)
		}
	}

	if state, found := table.Cell(row, ColTimeCardState); found {
		record.State = state
	}
	if taskType, found := table.Cell(row, ColTaskType); found {
		record.TaskType = taskType
	}

	return record, issues
}

func validateEmployeeRow(table tabular.Table, row []string, rowNum int, seen map[string]int) (domain.Employee, []domain.ValidationIssue) {
	var issues []domain.ValidationIssue
	var record domain.Employee

	employeeID, ok := requireCell(table, row, ColEmployeeID, rowNum, &issues)
	if ok {
		record.EmployeeID, issues = checkEmployeeID(employeeID, rowNum, issues)
		if record.EmployeeID != "" {
			key := "employee:" + record.EmployeeID
			if firstRow, dup := seen[key]; dup {
				issues = append(issues, issue(rowNum, ColEmployeeID, employeeID,
					fmt.Sprintf("duplicate employee id, first seen at row %d", firstRow)))
			} else {
				seen[key] = rowNum
			}
		}
	}

	name, ok := requireCell(table, row, ColEmployeeName, rowNum, &issues)
	if ok {
		if len(name) > maxNameLen {
			issues = append(issues, issue(rowNum, ColEmployeeName, name,
				fmt.Sprintf("exceeds maximum length of %d characters", maxNameLen)))
		} else {
			record.EmployeeName = name
		}
	}

	rawCTC, ok := requireCell(table, row, ColCTC, rowNum, &issues)
	if ok {
		ctc, err := decimal.NewFromString(rawCTC)
		switch {
		case err != nil:
			issues = append(issues, issue(rowNum, ColCTC, rawCTC, "must be a number"))
		case ctc.IsNegative():
			issues = append(issues, issue(rowNum, ColCTC, rawCTC, "must not be negative"))
		default:
			record.CTC = ctc
		}
	}

	if raw, found := table.Cell(row, ColCTCPerHour); found && raw != "" {
		rate, err := decimal.NewFromString(raw)
		switch {
		case err != nil:
			issues = append(issues, issue(rowNum, ColCTCPerHour, raw, "must be a number"))
		case rate.IsNegative():
			issues = append(issues, issue(rowNum, ColCTCPerHour, raw, "must not be negative"))
		default:
			record.CTCPerHour = &rate
		}
	}

	return record, issues
}

func validateProjectRow(table tabular.Table, row []string, rowNum int, seen map[string]int) (domain.Project, []domain.ValidationIssue) {
	var issues []domain.ValidationIssue
	var record domain.Project

	project, ok := requireCell(table, row, ColProjectName, rowNum, &issues)
	if ok {
		if len(project) > maxProjectNameLen {
			issues = append(issues, issue(rowNum, ColProjectName, project,
				fmt.Sprintf("exceeds maximum length of %d characters", maxProjectNameLen)))
		} else {
			record.ProjectName = strings.ToUpper(project)
			key := "project:" + record.ProjectName
			if firstRow, dup := seen[key]; dup {
				issues = append(issues, issue(rowNum, ColProjectName, project,
					fmt.Sprintf("duplicate project name, first seen at row %d", firstRow)))
			} else {
				seen[key] = rowNum
			}
		}
	}

	rawSOW, ok := requireCell(table, row, ColSOW, rowNum, &issues)
	if ok {
		sow, err := decimal.NewFromString(rawSOW)
		switch {
		case err != nil:
			issues = append(issues, issue(rowNum, ColSOW, rawSOW, "must be a number"))
		case sow.IsNegative():
			issues = append(issues, issue(rowNum, ColSOW, rawSOW, "must not be negative"))
		default:
			record.SOW = sow
		}
	}

	if raw, found := table.Cell(row, ColProjectID); found && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			issues = append(issues, issue(rowNum, ColProjectID, raw, "must be an integer"))
		} else {
			record.ProjectID = &id
		}
	}

	return record, issues
}

// requireCell fetches a required column's value, recording an issue when the
// cell is empty. ok is false when validation of the value should not proceed.
func requireCell(table tabular.Table, row []string, column string, rowNum int, issues *[]domain.ValidationIssue) (string, bool) {
	value, _ := table.Cell(row, column)
	if value == "" {
		*issues = append(*issues, issue(rowNum, column, "", "required value is empty"))
		return "", false
	}
	return value, true
}

func checkEmployeeID(raw string, rowNum int, issues []domain.ValidationIssue) (string, []domain.ValidationIssue) {
	id := strings.ToUpper(raw)
	if len(id) > maxEmployeeIDLen {
		return "", append(issues, issue(rowNum, ColEmployeeID, raw,
			fmt.Sprintf("exceeds maximum length of %d characters", maxEmployeeIDLen)))
	}
	if !employeeIDPattern.MatchString(id) {
		return "", append(issues, issue(rowNum, ColEmployeeID, raw, "must contain only letters and digits"))
	}
	return id, issues
}

func issue(row int, column, value, message string) domain.ValidationIssue {
	return domain.ValidationIssue{Row: row, Column: column, Value: value, Error: message}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
