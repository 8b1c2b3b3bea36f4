package tabular

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	payload := []byte("Employee ID,Employee Name,Hours\nE001,Alice,8\nE002,Bob,7.5\n")

	table, err := Parse("timecards.csv", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantHeaders := []string{"EMPLOYEE_ID", "EMPLOYEE_NAME", "HOURS"}
	for i, want := range wantHeaders {
		if table.Headers[i] != want {
			t.Errorf("header %d: got %s, want %s", i, table.Headers[i], want)
		}
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(table.Rows))
	}
	if value, ok := table.Cell(table.Rows[1], "EMPLOYEE_NAME"); !ok || value != "Bob" {
		t.Errorf("expected Bob, got %q (found=%v)", value, ok)
	}
}

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte("NAME\nvalue\n")...)

	table, err := Parse("data.csv", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Headers[0] != "NAME" {
		t.Errorf("expected NAME header after BOM strip, got %q", table.Headers[0])
	}
}

func TestParseCSVSkipsBlankLeadingRows(t *testing.T) {
	payload := []byte(",,\n\nNAME,VALUE\na,1\n")

	table, err := Parse("data.csv", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Headers[0] != "NAME" {
		t.Errorf("expected first non-empty row as header, got %q", table.Headers[0])
	}
	if len(table.Rows) != 1 {
		t.Errorf("expected 1 data row, got %d", len(table.Rows))
	}
}

func TestParsePadsShortRows(t *testing.T) {
	payload := []byte("A,B,C\n1\n")

	table, err := Parse("data.csv", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows[0]) != 3 {
		t.Fatalf("expected row padded to 3 cells, got %d", len(table.Rows[0]))
	}
	if value, ok := table.Cell(table.Rows[0], "C"); !ok || value != "" {
		t.Errorf("expected empty padded cell, got %q", value)
	}
}

func TestParseDeduplicatesHeaders(t *testing.T) {
	payload := []byte("Hours,hours\n1,2\n")

	table, err := Parse("data.csv", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Headers[0] != "HOURS" || table.Headers[1] != "HOURS_2" {
		t.Errorf("expected HOURS, HOURS_2, got %v", table.Headers)
	}
}

func TestParseExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Project Name", "SOW"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"APOLLO", 1000})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}

	table, err := Parse("projects.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Headers[0] != "PROJECT_NAME" || table.Headers[1] != "SOW" {
		t.Errorf("unexpected headers: %v", table.Headers)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 data row, got %d", len(table.Rows))
	}
	if value, _ := table.Cell(table.Rows[0], "SOW"); value != "1000" {
		t.Errorf("expected 1000, got %q", value)
	}
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, err := Parse("notes.txt", []byte("hello"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseRejectsEmptyPayload(t *testing.T) {
	if _, err := Parse("data.csv", nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
