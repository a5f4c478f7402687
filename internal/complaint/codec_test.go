package complaint

import (
	"testing"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
)

func TestStatusCodec(t *testing.T) {
	tests := []struct {
		status Status
		label  string
		code   int
	}{
		{StatusPending, "Pending", 1},
		{StatusProcessing, "Processing", 2},
		{StatusCompleted, "Completed", 3},
		{StatusRejected, "Rejected", 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			if got := tt.status.Code(); got != tt.code {
				t.Errorf("Code() = %d, want %d", got, tt.code)
			}

			back, err := StatusFromCode(tt.code)
			if err != nil || back != tt.status {
				t.Errorf("StatusFromCode(%d) = %q, %v", tt.code, back, err)
			}

			parsed, err := ParseStatus(tt.label)
			if err != nil || parsed != tt.status {
				t.Errorf("ParseStatus(%q) = %q, %v", tt.label, parsed, err)
			}
		})
	}
}

func TestStatusInvalid(t *testing.T) {
	var empty Status
	if empty.Valid() {
		t.Error("empty status must not be valid")
	}
	if empty.Code() != 0 {
		t.Errorf("Code() of empty status = %d, want 0", empty.Code())
	}

	for _, code := range []int{0, 5, -1} {
		if _, err := StatusFromCode(code); !errors.IsValidationFailed(err) {
			t.Errorf("StatusFromCode(%d) error = %v, want ValidationFailed", code, err)
		}
	}

	if _, err := ParseStatus("  "); !errors.IsValidationFailed(err) {
		t.Errorf("ParseStatus(blank) error = %v, want ValidationFailed", err)
	}
	if _, err := ParseStatus("archived"); !errors.IsValidationFailed(err) {
		t.Errorf("ParseStatus(archived) error = %v, want ValidationFailed", err)
	}
}

func TestSequenceOf(t *testing.T) {
	tests := []struct {
		id        string
		want      int
		malformed bool
	}{
		{id: "2025-0042", want: 42},
		{id: "2025-0001", want: 1},
		{id: "2024-12345", want: 12345},
		{id: "20250042", malformed: true},
		{id: "2025-", malformed: true},
		{id: "2025-00a2", malformed: true},
		{id: "2025--12", malformed: true},
		{id: "", malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := SequenceOf(tt.id)
			if tt.malformed {
				if !errors.IsMalformedIdentifier(err) {
					t.Errorf("SequenceOf(%q) error = %v, want MalformedIdentifier", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SequenceOf(%q) error = %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("SequenceOf(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestDisplayIDRoundTrip(t *testing.T) {
	for _, id := range []string{"2025-0042", "2024-0001", "2025-9999", "2023-10000"} {
		seq, err := SequenceOf(id)
		if err != nil {
			t.Fatalf("SequenceOf(%q) error = %v", id, err)
		}
		if got := FormatDisplayID(PrefixOf(id), seq); got != id {
			t.Errorf("round trip of %q gave %q", id, got)
		}
	}
}

func TestCategoryCodec(t *testing.T) {
	tests := []struct {
		wire string
		want Category
	}{
		{"INGREDIENT_REQUEST", CategoryIngredientRequest},
		{"general_complaint", CategoryGeneralComplaint},
		{"OTHER", CategoryOther},
		{"PRAISE", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			if got := CategoryFromWire(tt.wire); got != tt.want {
				t.Errorf("CategoryFromWire(%q) = %q, want %q", tt.wire, got, tt.want)
			}
		})
	}

	if got, err := ParseCategory("Ingredient request"); err != nil || got != CategoryIngredientRequest {
		t.Errorf("ParseCategory(label) = %q, %v", got, err)
	}
	if CategoryGeneralComplaint.Wire() != "GENERAL_COMPLAINT" {
		t.Errorf("Wire() = %q", CategoryGeneralComplaint.Wire())
	}
}

func TestFromRemote(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	deadline := api.Timestamp{Time: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)}

	c, err := FromRemote(api.RemoteComplaint{
		ComplaintID: 42,
		Title:       "Missing onions",
		Category:    "INGREDIENT_REQUEST",
		Status:      2,
		CreatedAt:   api.Timestamp{Time: time.Date(2024, 12, 30, 8, 0, 0, 0, time.UTC)},
		Deadline:    &deadline,
	}, now)
	if err != nil {
		t.Fatalf("FromRemote() error = %v", err)
	}

	if c.ID != "2024-0042" {
		t.Errorf("ID = %q, want 2024-0042", c.ID)
	}
	if c.SubmissionDate != "2024-12-30" {
		t.Errorf("SubmissionDate = %q", c.SubmissionDate)
	}
	if c.Status != StatusProcessing || c.Category != CategoryIngredientRequest {
		t.Errorf("Status/Category = %q/%q", c.Status, c.Category)
	}
	if c.DaysLeft == nil || *c.DaysLeft != 2 {
		t.Errorf("DaysLeft = %v, want 2", c.DaysLeft)
	}
}

func TestFromRemoteFallbacks(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	days := -4

	c, err := FromRemote(api.RemoteComplaint{ComplaintID: 7, Status: 1, DaysLeft: &days}, now)
	if err != nil {
		t.Fatalf("FromRemote() error = %v", err)
	}
	if c.ID != "2025-0007" {
		t.Errorf("ID = %q, want clock year prefix", c.ID)
	}
	if c.Deadline != nil {
		t.Error("Deadline should be nil")
	}
	if c.DaysLeft == nil || *c.DaysLeft != -4 {
		t.Errorf("DaysLeft = %v, want -4", c.DaysLeft)
	}

	if _, err := FromRemote(api.RemoteComplaint{ComplaintID: 8}, now); !errors.IsValidationFailed(err) {
		t.Errorf("missing status error = %v, want ValidationFailed", err)
	}
}

func TestFeedbackFromRemote(t *testing.T) {
	created := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	fb := FeedbackFromRemote(api.RemoteFeedback{
		ID:          101,
		ComplaintID: 5,
		Content:     "Replaced",
		CreateAt:    api.Timestamp{Time: created},
	}, "Title", "lee")

	if !fb.UpdatedAt.Equal(created) {
		t.Errorf("UpdatedAt = %v, want CreatedAt", fb.UpdatedAt)
	}
	if fb.Assignee != "lee" {
		t.Errorf("Assignee = %q, want draft assignee", fb.Assignee)
	}

	modified := api.Timestamp{Time: created.Add(time.Hour)}
	fb = FeedbackFromRemote(api.RemoteFeedback{
		ID:                101,
		ResponderNickname: "kim",
		CreateAt:          api.Timestamp{Time: created},
		ModifiedAt:        &modified,
	}, "", "lee")

	if fb.Assignee != "kim" {
		t.Errorf("Assignee = %q, want responder nickname", fb.Assignee)
	}
	if !fb.UpdatedAt.Equal(modified.Time) {
		t.Errorf("UpdatedAt = %v, want %v", fb.UpdatedAt, modified.Time)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		deadline time.Time
		want     int
	}{
		{time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC), 1},
		{time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), -3},
		{time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), 31},
	}

	for _, tt := range tests {
		if got := DaysUntil(tt.deadline, now); got != tt.want {
			t.Errorf("DaysUntil(%v) = %d, want %d", tt.deadline, got, tt.want)
		}
	}
}
