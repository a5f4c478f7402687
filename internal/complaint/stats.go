package complaint

import (
	"sort"
)

// UrgentWithinDays is the deadline horizon of an urgent complaint.
const UrgentWithinDays = 3

// Stats is the aggregate view of a complaint collection.
type Stats struct {
	Total      int
	ByStatus   map[Status]int
	ByCategory map[Category]int
	Urgent     int // unresolved, due within UrgentWithinDays
	Overdue    int // unresolved, past the deadline
}

// Count returns the number of complaints in status s.
func (st Stats) Count(s Status) int {
	return st.ByStatus[s]
}

// IsUrgent reports whether c is unresolved and due within UrgentWithinDays.
func IsUrgent(c Complaint) bool {
	return c.Unresolved() && c.DaysLeft != nil && *c.DaysLeft >= 0 && *c.DaysLeft <= UrgentWithinDays
}

// IsOverdue reports whether c is unresolved and past its deadline.
func IsOverdue(c Complaint) bool {
	return c.Unresolved() && c.DaysLeft != nil && *c.DaysLeft < 0
}

// Summarize aggregates complaints. It makes no remote calls.
func Summarize(complaints []Complaint) Stats {
	st := Stats{
		Total:      len(complaints),
		ByStatus:   make(map[Status]int, len(statusTable)),
		ByCategory: make(map[Category]int, len(categoryTable)),
	}
	for _, s := range Statuses() {
		st.ByStatus[s] = 0
	}

	for _, c := range complaints {
		st.ByStatus[c.Status]++
		st.ByCategory[c.Category]++
		if IsUrgent(c) {
			st.Urgent++
		}
		if IsOverdue(c) {
			st.Overdue++
		}
	}
	return st
}

// UrgentComplaints returns the urgent complaints, soonest deadline first.
func UrgentComplaints(complaints []Complaint) []Complaint {
	return byDaysLeft(complaints, IsUrgent)
}

// AttentionComplaints returns the urgent and overdue complaints, most
// overdue first.
func AttentionComplaints(complaints []Complaint) []Complaint {
	return byDaysLeft(complaints, func(c Complaint) bool {
		return IsUrgent(c) || IsOverdue(c)
	})
}

func byDaysLeft(complaints []Complaint, keep func(Complaint) bool) []Complaint {
	var out []Complaint
	for _, c := range complaints {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if *out[i].DaysLeft != *out[j].DaysLeft {
			return *out[i].DaysLeft < *out[j].DaysLeft
		}
		return out[i].ID < out[j].ID
	})
	return out
}
