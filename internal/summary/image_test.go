package summary

import (
	"bytes"
	"image/png"
	"reflect"
	"testing"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
)

// fixedWidth measures every rune as 10 units wide.
type fixedWidth struct{}

func (fixedWidth) MeasureString(s string) (float64, float64) {
	return float64(len([]rune(s))) * 10, 12
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"fits", "short", 100, []string{"short"}},
		{"no limit", "a very long line indeed", 0, []string{"a very long line indeed"}},
		{"wraps on words", "spoiled milk in the fridge", 120, []string{"spoiled milk", "in the", "fridge"}},
		{"newlines flattened", "two\nlines", 200, []string{"two lines"}},
		{"blank", "   ", 10, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(fixedWidth{}, tt.text, tt.maxWidth); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func sampleStats() (complaint.Stats, []complaint.Complaint) {
	days := func(n int) *int { return &n }
	all := []complaint.Complaint{
		{ID: "2025-0001", Title: "Missing onions", Category: complaint.CategoryIngredientRequest, Status: complaint.StatusPending, DaysLeft: days(1), SubmissionDate: "2025-03-01"},
		{ID: "2025-0002", Title: "Broken freezer door that will not close", Category: complaint.CategoryGeneralComplaint, Status: complaint.StatusProcessing, DaysLeft: days(-2), SubmissionDate: "2025-03-02"},
		{ID: "2025-0003", Title: "Thanks", Category: complaint.CategoryOther, Status: complaint.StatusCompleted, SubmissionDate: "2025-03-03"},
	}
	return complaint.Summarize(all), complaint.AttentionComplaints(all)
}

func TestStatusTable(t *testing.T) {
	st, _ := sampleStats()
	tbl := statusTable(st)

	// 4 statuses, 3 categories, urgent and overdue
	if len(tbl.rows) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(tbl.rows))
	}
	if !reflect.DeepEqual(tbl.rows[0], []string{"Pending", "1"}) {
		t.Errorf("first row = %v", tbl.rows[0])
	}
	if !reflect.DeepEqual(tbl.rows[8], []string{"Overdue", "1"}) {
		t.Errorf("last row = %v", tbl.rows[8])
	}
}

func TestUrgentTable(t *testing.T) {
	_, urgent := sampleStats()
	tbl := urgentTable(urgent)

	if len(tbl.rows) != 2 {
		t.Fatalf("expected 2 urgent rows, got %d", len(tbl.rows))
	}
	for _, row := range tbl.rows {
		if len(row) != len(tbl.columns) {
			t.Errorf("row %v does not match %d columns", row, len(tbl.columns))
		}
	}
}

func TestRenderStats(t *testing.T) {
	if !FontsAvailable() {
		t.Skip("no system font available")
	}
	st, urgent := sampleStats()

	data, err := RenderStats(st, urgent, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RenderStats() error = %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width < 900 || cfg.Height <= titlePadding+footerPadding {
		t.Errorf("unexpected image size %dx%d", cfg.Width, cfg.Height)
	}
}
