package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// envelope is the wrapper every JSON response from the remote authority uses.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RemoteComplaint is one item of the complaint list.
//
// Fields map to API response JSON:
//   - complaintId: numeric sequence, the remote key
//   - category: INGREDIENT_REQUEST, GENERAL_COMPLAINT or OTHER
//   - status: numeric status code (1..4)
//   - deadline, daysLeft: optional
type RemoteComplaint struct {
	ComplaintID int        `json:"complaintId"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Status      int        `json:"status"`
	UserName    string     `json:"userName,omitempty"`
	CreatedAt   Timestamp  `json:"createdAt"`
	Deadline    *Timestamp `json:"deadline,omitempty"`
	DaysLeft    *int       `json:"daysLeft,omitempty"`
}

// RemoteFeedback is the feedback shape returned by the probe, create and
// update calls. The field names are the remote authority's, including
// createAt (sic).
type RemoteFeedback struct {
	ID                int64      `json:"id"`
	ComplaintID       int        `json:"complaintId"`
	Content           string     `json:"content"`
	ResponderNickname string     `json:"responderNickname"`
	CreateAt          Timestamp  `json:"createAt"`
	ModifiedAt        *Timestamp `json:"modifiedAt,omitempty"`
}

// FeedbackBody is the payload of create and update feedback calls.
type FeedbackBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// FeedbackLookup is the outcome of a feedback probe. A nil Feedback means
// the remote authority reported that no feedback exists for the complaint.
type FeedbackLookup struct {
	ComplaintID int
	Feedback    *RemoteFeedback
}

// Found reports whether the probe returned a feedback.
func (l FeedbackLookup) Found() bool {
	return l.Feedback != nil
}

type statusBody struct {
	Status int `json:"status"`
}

// timestampLayouts are tried in order when decoding a Timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp decodes the several date formats the remote authority emits.
// JSON null and "" decode to the zero time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

// MarshalJSON implements json.Marshaler using RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
