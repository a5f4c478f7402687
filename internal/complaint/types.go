// Package complaint holds the complaint model, the status codec, the
// in-memory ComplaintStore and the statistics projection.
package complaint

import (
	"time"
)

// Status is the internal status tag of a complaint. The zero value is not a
// valid status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// Category is the internal category tag of a complaint.
type Category string

const (
	CategoryIngredientRequest Category = "ingredient_request"
	CategoryGeneralComplaint  Category = "general_complaint"
	CategoryOther             Category = "other"
)

// Complaint is one complaint record as the console holds it.
//
// Fields:
//   - ID: display identifier "<prefix>-<seq>", e.g. "2025-0042"
//   - Sequence: numeric remote key encoded in ID
//   - SubmissionDate: display-formatted date (2006-01-02)
//   - Deadline, DaysLeft: nil when no deadline applies
//   - Feedback: local copy of the linked feedback, if attached
type Complaint struct {
	ID             string
	Sequence       int
	Title          string
	Content        string
	Category       Category
	UserName       string
	SubmissionDate string
	CreatedAt      time.Time
	Deadline       *time.Time
	DaysLeft       *int
	Status         Status
	Feedback       *Feedback
}

// Unresolved reports whether the complaint still needs work.
func (c Complaint) Unresolved() bool {
	return c.Status == StatusPending || c.Status == StatusProcessing
}

// clone returns a copy that shares no pointers with c.
func (c Complaint) clone() Complaint {
	out := c
	if c.Deadline != nil {
		d := *c.Deadline
		out.Deadline = &d
	}
	if c.DaysLeft != nil {
		n := *c.DaysLeft
		out.DaysLeft = &n
	}
	if c.Feedback != nil {
		fb := *c.Feedback
		out.Feedback = &fb
	}
	return out
}

// Feedback is the response attached to a complaint. A complaint has at most
// one.
//
// Fields:
//   - ID: remote id, 0 until persisted
//   - ComplaintID: remote sequence of the owning complaint
//   - Assignee: responder name, a local display hint
//   - UpdatedAt: equals CreatedAt when the remote reports no modification
type Feedback struct {
	ID          int64
	ComplaintID int
	Assignee    string
	Title       string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Failure is one failed id of a bulk operation.
type Failure struct {
	ID  string
	Err error
}

// BulkResult reports the per-item outcome of BulkSetStatus. Both lists are in
// input order.
type BulkResult struct {
	Status    Status
	Succeeded []string
	Failed    []Failure
}

// SucceededCount returns the number of ids that transitioned.
func (r BulkResult) SucceededCount() int {
	return len(r.Succeeded)
}

// FailedCount returns the number of ids left unchanged.
func (r BulkResult) FailedCount() int {
	return len(r.Failed)
}

// Total returns the number of distinct ids attempted.
func (r BulkResult) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// FailedIDs returns the ids of the failed items.
func (r BulkResult) FailedIDs() []string {
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.ID
	}
	return ids
}

// LoadState tells an empty store that has never loaded apart from one whose
// first load failed, and from a loaded store with zero complaints.
type LoadState int

const (
	StateEmpty LoadState = iota
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "empty"
	}
}
