package complaint

import (
	"testing"
)

func daysPtr(n int) *int { return &n }

func TestSummarize(t *testing.T) {
	complaints := []Complaint{
		{ID: "2025-0001", Status: StatusPending, Category: CategoryIngredientRequest, DaysLeft: daysPtr(0)},
		{ID: "2025-0002", Status: StatusProcessing, Category: CategoryIngredientRequest, DaysLeft: daysPtr(3)},
		{ID: "2025-0003", Status: StatusPending, Category: CategoryGeneralComplaint, DaysLeft: daysPtr(4)},
		{ID: "2025-0004", Status: StatusCompleted, Category: CategoryOther, DaysLeft: daysPtr(1)},
		{ID: "2025-0005", Status: StatusPending, Category: CategoryOther, DaysLeft: daysPtr(-2)},
		{ID: "2025-0006", Status: StatusRejected, Category: CategoryOther},
		{ID: "2025-0007", Status: StatusPending, Category: CategoryOther},
	}

	st := Summarize(complaints)

	if st.Total != 7 {
		t.Errorf("Total = %d, want 7", st.Total)
	}
	want := map[Status]int{StatusPending: 4, StatusProcessing: 1, StatusCompleted: 1, StatusRejected: 1}
	for s, n := range want {
		if st.Count(s) != n {
			t.Errorf("Count(%s) = %d, want %d", s, st.Count(s), n)
		}
	}
	if st.ByCategory[CategoryOther] != 4 {
		t.Errorf("ByCategory[other] = %d, want 4", st.ByCategory[CategoryOther])
	}
	if st.Urgent != 2 {
		t.Errorf("Urgent = %d, want 2", st.Urgent)
	}
	if st.Overdue != 1 {
		t.Errorf("Overdue = %d, want 1", st.Overdue)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil)
	if st.Total != 0 || st.Urgent != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
	if len(st.ByStatus) != 4 {
		t.Errorf("ByStatus should list every status, got %v", st.ByStatus)
	}
}

func TestAttentionComplaintsIncludesOverdue(t *testing.T) {
	complaints := []Complaint{
		{ID: "2025-0001", Status: StatusPending, DaysLeft: daysPtr(2)},
		{ID: "2025-0002", Status: StatusProcessing, DaysLeft: daysPtr(-3)},
		{ID: "2025-0003", Status: StatusPending, DaysLeft: daysPtr(9)},
		{ID: "2025-0004", Status: StatusRejected, DaysLeft: daysPtr(-1)},
		{ID: "2025-0005", Status: StatusPending},
	}

	got := AttentionComplaints(complaints)

	wantIDs := []string{"2025-0002", "2025-0001"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d complaints, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("attention[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if n := len(UrgentComplaints(complaints)); n != 1 {
		t.Errorf("UrgentComplaints returned %d, want 1 (overdue excluded)", n)
	}
}

func TestUrgentComplaintsOrder(t *testing.T) {
	complaints := []Complaint{
		{ID: "2025-0003", Status: StatusPending, DaysLeft: daysPtr(2)},
		{ID: "2025-0001", Status: StatusProcessing, DaysLeft: daysPtr(0)},
		{ID: "2025-0002", Status: StatusPending, DaysLeft: daysPtr(2)},
		{ID: "2025-0004", Status: StatusCompleted, DaysLeft: daysPtr(0)},
	}

	got := UrgentComplaints(complaints)

	wantIDs := []string{"2025-0001", "2025-0002", "2025-0003"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d urgent complaints, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("urgent[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}
