package secure

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rpattn/grosscalc/internal/domain"
)

func TestHourlyRateFromAnnualCTC(t *testing.T) {
	rates := NewRateResolver(testCipher(t))

	stored, err := rates.SealEmployee(domain.Employee{
		EmployeeID:   "E001",
		EmployeeName: "Alice",
		CTC:          decimal.NewFromInt(96000),
	})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if stored.CTCPerHourEncrypted != nil {
		t.Error("expected no hourly ciphertext without an explicit rate")
	}

	rate, err := rates.HourlyRate(stored)
	if err != nil {
		t.Fatalf("hourly rate failed: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected 96000/1920 = 50, got %s", rate)
	}
}

func TestHourlyRatePrefersExplicitRate(t *testing.T) {
	rates := NewRateResolver(testCipher(t))

	explicit := decimal.NewFromInt(75)
	stored, err := rates.SealEmployee(domain.Employee{
		EmployeeID:   "E002",
		EmployeeName: "Bob",
		CTC:          decimal.NewFromInt(96000),
		CTCPerHour:   &explicit,
	})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	rate, err := rates.HourlyRate(stored)
	if err != nil {
		t.Fatalf("hourly rate failed: %v", err)
	}
	if !rate.Equal(explicit) {
		t.Errorf("expected explicit rate 75, got %s", rate)
	}
}

func TestSealEmployeeHidesCompensation(t *testing.T) {
	rates := NewRateResolver(testCipher(t))

	stored, err := rates.SealEmployee(domain.Employee{
		EmployeeID:   "E003",
		EmployeeName: "Carol",
		CTC:          decimal.NewFromInt(120000),
	})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if string(stored.CTCEncrypted) == "120000" {
		t.Error("stored CTC must be ciphertext")
	}
}
