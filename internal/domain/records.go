package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is a validated employee record prior to persistence. CTC is the
// annual cost-to-company figure and is sensitive: it only ever reaches
// storage in encrypted form.
type Employee struct {
	EmployeeID   string
	EmployeeName string
	CTC          decimal.Decimal
	CTCPerHour   *decimal.Decimal
}

// StoredEmployee is the persisted shape of an employee. Compensation columns
// hold AES-GCM ciphertext; plaintext never leaves the secure package.
type StoredEmployee struct {
	EmployeeID          string
	EmployeeName        string
	CTCEncrypted        []byte
	CTCPerHourEncrypted []byte
}

// Project is a validated project record. ProjectName is the natural key
// timecards reference.
type Project struct {
	ProjectID   *int64
	ProjectName string
	SOW         decimal.Decimal
}

// TimeCard is a validated timecard row. Employee and project are weak
// references by natural key; a timecard whose referent is absent fails
// validation rather than dangling.
type TimeCard struct {
	EmployeeID   string
	EmployeeName string
	Date         time.Time
	HoursWorked  decimal.Decimal
	ProjectName  string
	State        string
	TaskType     string
}
