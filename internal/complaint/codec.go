package complaint

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
)

// DateLayout is the display format of SubmissionDate.
const DateLayout = "2006-01-02"

// idSeparator splits a display identifier into prefix and sequence.
const idSeparator = "-"

// statusTable is ordered by remote code. The codes must match the remote
// authority's enumeration exactly.
var statusTable = []struct {
	status Status
	label  string
	code   int
}{
	{StatusPending, "Pending", 1},
	{StatusProcessing, "Processing", 2},
	{StatusCompleted, "Completed", 3},
	{StatusRejected, "Rejected", 4},
}

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(statusTable))
	for i, row := range statusTable {
		out[i] = row.status
	}
	return out
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	return s.Code() != 0
}

// Label returns the human-facing label of s.
func (s Status) Label() string {
	for _, row := range statusTable {
		if row.status == s {
			return row.label
		}
	}
	return string(s)
}

// Code returns the remote numeric code of s, or 0 for an invalid status.
func (s Status) Code() int {
	for _, row := range statusTable {
		if row.status == s {
			return row.code
		}
	}
	return 0
}

// StatusFromCode maps a remote numeric code to a Status.
func StatusFromCode(code int) (Status, error) {
	for _, row := range statusTable {
		if row.code == code {
			return row.status, nil
		}
	}
	return "", errors.NewValidationFailedError("status", fmt.Sprintf("unknown status code %d", code))
}

// ParseStatus accepts a tag ("pending") or a label ("Pending"), case-insensitive.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewValidationFailedError("status", "status is required")
	}
	for _, row := range statusTable {
		if strings.EqualFold(s, string(row.status)) || strings.EqualFold(s, row.label) {
			return row.status, nil
		}
	}
	return "", errors.NewValidationFailedError("status", fmt.Sprintf("unknown status %q", s))
}

var categoryTable = []struct {
	category Category
	label    string
	wire     string
}{
	{CategoryIngredientRequest, "Ingredient request", "INGREDIENT_REQUEST"},
	{CategoryGeneralComplaint, "General complaint", "GENERAL_COMPLAINT"},
	{CategoryOther, "Other", "OTHER"},
}

// Categories returns every category.
func Categories() []Category {
	out := make([]Category, len(categoryTable))
	for i, row := range categoryTable {
		out[i] = row.category
	}
	return out
}

// Label returns the human-facing label of c.
func (c Category) Label() string {
	for _, row := range categoryTable {
		if row.category == c {
			return row.label
		}
	}
	return string(c)
}

// Wire returns the remote value of c.
func (c Category) Wire() string {
	for _, row := range categoryTable {
		if row.category == c {
			return row.wire
		}
	}
	return "OTHER"
}

// CategoryFromWire maps a remote category value. Unknown values map to
// CategoryOther.
func CategoryFromWire(v string) Category {
	for _, row := range categoryTable {
		if strings.EqualFold(v, row.wire) {
			return row.category
		}
	}
	return CategoryOther
}

// ParseCategory accepts a tag, a label or a wire value, case-insensitive.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, row := range categoryTable {
		if strings.EqualFold(s, string(row.category)) || strings.EqualFold(s, row.label) || strings.EqualFold(s, row.wire) {
			return row.category, nil
		}
	}
	return "", errors.NewValidationFailedError("category", fmt.Sprintf("unknown category %q", s))
}

// SequenceOf decodes the remote sequence from a display identifier such as
// "2025-0042".
func SequenceOf(displayID string) (int, error) {
	parts := strings.Split(displayID, idSeparator)
	if len(parts) < 2 || parts[1] == "" {
		return 0, errors.NewMalformedIdentifierError(displayID, "missing sequence segment")
	}

	seg := parts[1]
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, errors.NewMalformedIdentifierError(displayID, "sequence is not numeric")
		}
	}

	seq, err := strconv.Atoi(seg)
	if err != nil {
		return 0, errors.NewMalformedIdentifierError(displayID, err.Error())
	}
	return seq, nil
}

// PrefixOf returns the prefix segment of a display identifier.
func PrefixOf(displayID string) string {
	prefix, _, _ := strings.Cut(displayID, idSeparator)
	return prefix
}

// FormatDisplayID encodes a sequence with at least four zero-padded digits.
func FormatDisplayID(prefix string, seq int) string {
	return fmt.Sprintf("%s%s%04d", prefix, idSeparator, seq)
}

// FromRemote decodes one list item. now is used for DaysLeft and as the
// prefix year when the remote reports no creation time.
func FromRemote(rc api.RemoteComplaint, now time.Time) (Complaint, error) {
	status, err := StatusFromCode(rc.Status)
	if err != nil {
		return Complaint{}, err
	}

	created := rc.CreatedAt.Time
	prefixYear := now.Year()
	if !created.IsZero() {
		prefixYear = created.Year()
	}

	c := Complaint{
		ID:        FormatDisplayID(strconv.Itoa(prefixYear), rc.ComplaintID),
		Sequence:  rc.ComplaintID,
		Title:     rc.Title,
		Content:   rc.Content,
		Category:  CategoryFromWire(rc.Category),
		UserName:  strings.TrimSpace(rc.UserName),
		CreatedAt: created,
		Status:    status,
	}
	if !created.IsZero() {
		c.SubmissionDate = created.Format(DateLayout)
	}

	switch {
	case rc.Deadline != nil && !rc.Deadline.IsZero():
		deadline := rc.Deadline.Time
		days := DaysUntil(deadline, now)
		c.Deadline = &deadline
		c.DaysLeft = &days
	case rc.DaysLeft != nil:
		days := *rc.DaysLeft
		c.DaysLeft = &days
	}

	return c, nil
}

// FeedbackFromRemote normalizes a remote feedback. assignee is used when the
// remote reports no responder nickname.
func FeedbackFromRemote(rf api.RemoteFeedback, title, assignee string) Feedback {
	fb := Feedback{
		ID:          rf.ID,
		ComplaintID: rf.ComplaintID,
		Assignee:    assignee,
		Title:       title,
		Content:     rf.Content,
		CreatedAt:   rf.CreateAt.Time,
		UpdatedAt:   rf.CreateAt.Time,
	}
	if nick := strings.TrimSpace(rf.ResponderNickname); nick != "" {
		fb.Assignee = nick
	}
	if rf.ModifiedAt != nil && !rf.ModifiedAt.IsZero() {
		fb.UpdatedAt = rf.ModifiedAt.Time
	}
	return fb
}

// DaysUntil returns the signed number of calendar days from now to deadline.
func DaysUntil(deadline, now time.Time) int {
	d := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(n).Hours() / 24)
}
