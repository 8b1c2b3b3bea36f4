package secure

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rpattn/grosscalc/internal/domain"
)

// standardAnnualHours converts an annual CTC into an hourly rate when no
// explicit hourly figure was supplied: 48 working weeks of 40 hours.
var standardAnnualHours = decimal.NewFromInt(1920)

// RateResolver is the narrow capability through which compensation leaves
// storage. It decrypts internally and hands out only the derived hourly
// rate, keeping plaintext CTC out of general data paths.
type RateResolver struct {
	cipher *Cipher
}

// NewRateResolver wraps a cipher as a rate capability.
func NewRateResolver(cipher *Cipher) *RateResolver {
	return &RateResolver{cipher: cipher}
}

// HourlyRate returns the employee's hourly cost: the stored CTCPHR when
// present, otherwise annual CTC divided by standardAnnualHours.
func (r *RateResolver) HourlyRate(emp domain.StoredEmployee) (decimal.Decimal, error) {
	if len(emp.CTCPerHourEncrypted) > 0 {
		raw, err := r.cipher.Decrypt(emp.CTCPerHourEncrypted)
		if err != nil {
			return decimal.Zero, fmt.Errorf("employee %s: %w", emp.EmployeeID, err)
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("employee %s: stored hourly rate is not numeric: %w", emp.EmployeeID, err)
		}
		return rate, nil
	}

	raw, err := r.cipher.Decrypt(emp.CTCEncrypted)
	if err != nil {
		return decimal.Zero, fmt.Errorf("employee %s: %w", emp.EmployeeID, err)
	}
	ctc, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("employee %s: stored ctc is not numeric: %w", emp.EmployeeID, err)
	}
	return ctc.Div(standardAnnualHours), nil
}

// SealEmployee produces the persisted shape of an employee, encrypting both
// compensation fields. This is the only write path for CTC.
func (r *RateResolver) SealEmployee(emp domain.Employee) (domain.StoredEmployee, error) {
	ctcSealed, err := r.cipher.Encrypt(emp.CTC.String())
	if err != nil {
		return domain.StoredEmployee{}, fmt.Errorf("employee %s: %w", emp.EmployeeID, err)
	}
	stored := domain.StoredEmployee{
		EmployeeID:   emp.EmployeeID,
		EmployeeName: emp.EmployeeName,
		CTCEncrypted: ctcSealed,
	}
	if emp.CTCPerHour != nil {
		rateSealed, err := r.cipher.Encrypt(emp.CTCPerHour.String())
		if err != nil {
			return domain.StoredEmployee{}, fmt.Errorf("employee %s: %w", emp.EmployeeID, err)
		}
		stored.CTCPerHourEncrypted = rateSealed
	}
	return stored, nil
}
