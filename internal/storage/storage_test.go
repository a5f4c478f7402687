package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
)

func sampleComplaints() []complaint.Complaint {
	deadline := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	days := 2
	return []complaint.Complaint{
		{
			ID:             "2025-0001",
			Sequence:       1,
			Title:          "Missing onions, again",
			Category:       complaint.CategoryIngredientRequest,
			Status:         complaint.StatusPending,
			UserName:       "kim",
			SubmissionDate: "2025-03-01",
			Deadline:       &deadline,
			DaysLeft:       &days,
		},
		{
			ID:             "2025-0002",
			Sequence:       2,
			Title:          "Fridge \"noise\"",
			Category:       complaint.CategoryGeneralComplaint,
			Status:         complaint.StatusCompleted,
			UserName:       "lee",
			SubmissionDate: "2025-03-02",
			Feedback:       &complaint.Feedback{ID: 101, Content: "Fixed\nthe fridge"},
		},
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, sampleComplaints()); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if !reflect.DeepEqual(records[0], Header) {
		t.Errorf("header = %v", records[0])
	}

	first := records[1]
	if first[0] != "2025-0001" || first[2] != "Missing onions, again" || first[7] != "2025-03-12" || first[8] != "2" {
		t.Errorf("unexpected first row %v", first)
	}
	if first[9] != "" || first[10] != "" {
		t.Errorf("expected empty feedback fields, got %v", first[9:])
	}

	second := records[2]
	if second[7] != "" || second[8] != "" {
		t.Errorf("expected empty deadline fields, got %v", second[7:9])
	}
	if second[9] != "101" || second[10] != "Fixed\nthe fridge" {
		t.Errorf("unexpected feedback fields %v", second[9:])
	}
}

func TestExportCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, nil); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if len(records) != 1 {
		t.Errorf("expected only the header, got %d records", len(records))
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complaints.csv")

	if err := WriteFile(path, sampleComplaints()); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records on disk, got %d", len(records))
	}
}

func TestWriteFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "complaints.csv")
	if err := WriteFile(path, nil); err == nil {
		t.Error("expected error for a missing directory")
	}
}
