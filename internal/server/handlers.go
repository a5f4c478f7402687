package server

import (
	"bytes"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/console"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/feedback"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/storage"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/summary"

	"github.com/gin-gonic/gin"
)

// envelope mirrors the remote authority's response shape.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

// fail writes err with the status its kind maps to.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), envelope{Success: false, Message: err.Error()})
}

// statusFor maps the error taxonomy onto HTTP statuses. An unexpected
// failure wins over the remote error it wraps.
func statusFor(err error) int {
	switch {
	case errors.IsSessionExpired(err):
		return http.StatusUnauthorized
	case errors.IsValidationFailed(err), errors.IsMalformedIdentifier(err):
		return http.StatusBadRequest
	case errors.IsUnexpectedFailure(err):
		return http.StatusBadGateway
	case errors.IsNetworkFailure(err):
		return http.StatusServiceUnavailable
	case errors.IsRemoteRejected(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ---- DTOs ----

type feedbackJSON struct {
	ID          int64      `json:"id"`
	ComplaintID int        `json:"complaintId"`
	Assignee    string     `json:"assignee"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type complaintJSON struct {
	ID             string        `json:"id"`
	Sequence       int           `json:"sequence"`
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	Category       string        `json:"category"`
	CategoryLabel  string        `json:"categoryLabel"`
	Status         string        `json:"status"`
	StatusLabel    string        `json:"statusLabel"`
	UserName       string        `json:"userName"`
	SubmissionDate string        `json:"submissionDate"`
	Deadline       string        `json:"deadline,omitempty"`
	DaysLeft       *int          `json:"daysLeft,omitempty"`
	Urgent         bool          `json:"urgent"`
	Overdue        bool          `json:"overdue"`
	Feedback       *feedbackJSON `json:"feedback,omitempty"`
}

type pageJSON struct {
	Items      []complaintJSON `json:"items"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalItems int             `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
}

type failureJSON struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type bulkJSON struct {
	Status    string        `json:"status"`
	Succeeded []string      `json:"succeeded"`
	Failed    []failureJSON `json:"failed"`
}

type statsJSON struct {
	Total      int             `json:"total"`
	ByStatus   map[string]int  `json:"byStatus"`
	ByCategory map[string]int  `json:"byCategory"`
	Urgent     int             `json:"urgent"`
	Overdue    int             `json:"overdue"`
	UrgentList []complaintJSON `json:"urgentList"`
}

func toFeedbackJSON(fb *complaint.Feedback) *feedbackJSON {
	if fb == nil {
		return nil
	}
	out := &feedbackJSON{
		ID:          fb.ID,
		ComplaintID: fb.ComplaintID,
		Assignee:    fb.Assignee,
		Title:       fb.Title,
		Content:     fb.Content,
		CreatedAt:   fb.CreatedAt,
	}
	if !fb.UpdatedAt.IsZero() {
		updated := fb.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

func toComplaintJSON(c complaint.Complaint) complaintJSON {
	out := complaintJSON{
		ID:             c.ID,
		Sequence:       c.Sequence,
		Title:          c.Title,
		Content:        c.Content,
		Category:       string(c.Category),
		CategoryLabel:  c.Category.Label(),
		Status:         string(c.Status),
		StatusLabel:    c.Status.Label(),
		UserName:       c.UserName,
		SubmissionDate: c.SubmissionDate,
		DaysLeft:       c.DaysLeft,
		Urgent:         complaint.IsUrgent(c),
		Overdue:        complaint.IsOverdue(c),
		Feedback:       toFeedbackJSON(c.Feedback),
	}
	if c.Deadline != nil {
		out.Deadline = c.Deadline.Format(complaint.DateLayout)
	}
	return out
}

func toComplaintsJSON(cs []complaint.Complaint) []complaintJSON {
	out := make([]complaintJSON, len(cs))
	for i, c := range cs {
		out[i] = toComplaintJSON(c)
	}
	return out
}

func toBulkJSON(res complaint.BulkResult) bulkJSON {
	out := bulkJSON{
		Status:    string(res.Status),
		Succeeded: append([]string{}, res.Succeeded...),
		Failed:    make([]failureJSON, len(res.Failed)),
	}
	for i, f := range res.Failed {
		out.Failed[i] = failureJSON{ID: f.ID, Error: f.Err.Error()}
	}
	return out
}

// ---- query parsing ----

// queryFrom reads search, status and category. Empty values mean "all".
func queryFrom(c *gin.Context) (console.Query, error) {
	q := console.Query{Search: c.Query("search")}
	if v := c.Query("status"); v != "" {
		s, err := complaint.ParseStatus(v)
		if err != nil {
			return q, err
		}
		q.Status = s
	}
	if v := c.Query("category"); v != "" {
		cat, err := complaint.ParseCategory(v)
		if err != nil {
			return q, err
		}
		q.Category = cat
	}
	return q, nil
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewValidationFailedError(name, "must be an integer")
	}
	return n, nil
}

// ---- handlers ----

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"health":    s.monitor.Status(),
		"store":     s.store.State().String(),
		"loadedAt":  s.store.LoadedAt(),
		"complaint": len(s.store.Complaints()),
	})
}

func (s *Server) handleList(c *gin.Context) {
	q, err := queryFrom(c)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := intParam(c, "page", 1)
	if err != nil {
		fail(c, err)
		return
	}
	size, err := intParam(c, "size", s.cfg.PageSize)
	if err != nil {
		fail(c, err)
		return
	}

	p := console.Derive(s.store.Complaints(), q, page, size)
	ok(c, http.StatusOK, pageJSON{
		Items:      toComplaintsJSON(p.Items),
		Page:       p.Number,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	})
}

func (s *Server) handleReload(c *gin.Context) {
	loaded, err := s.store.Load(c.Request.Context())
	s.monitor.RecordLoad(err)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"count": len(loaded)})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errors.NewValidationFailedError("body", err.Error()))
		return
	}
	status, err := complaint.ParseStatus(req.Status)
	if err != nil {
		fail(c, err)
		return
	}

	id := c.Param("id")
	if err := s.store.SetStatus(c.Request.Context(), id, status); err != nil {
		fail(c, err)
		return
	}
	updated, _ := s.store.Get(id)
	ok(c, http.StatusOK, toComplaintJSON(updated))
}

type bulkRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
	Notify bool     `json:"notify"`
}

func (s *Server) handleBulkStatus(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errors.NewValidationFailedError("body", err.Error()))
		return
	}
	status, err := complaint.ParseStatus(req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	if len(req.IDs) == 0 {
		fail(c, errors.NewValidationFailedError("ids", "at least one id is required"))
		return
	}

	res := s.store.BulkSetStatus(c.Request.Context(), req.IDs, status)
	s.monitor.RecordBulk(res)
	if req.Notify && s.notifier != nil {
		if err := s.notifier.SendBulkReport(res); err != nil {
			log.Printf("⚠️  Bulk report not sent: %v", err)
		}
	}

	code := http.StatusOK
	if res.FailedCount() > 0 {
		code = http.StatusMultiStatus
	}
	c.JSON(code, envelope{Success: res.FailedCount() == 0, Data: toBulkJSON(res)})
}

// feedbackTarget resolves the :id path parameter to a known complaint.
func (s *Server) feedbackTarget(c *gin.Context) (complaint.Complaint, bool) {
	if s.linker == nil {
		fail(c, errors.NewValidationFailedError("feedback", "feedback editing is not configured"))
		return complaint.Complaint{}, false
	}
	id := c.Param("id")
	if _, err := complaint.SequenceOf(id); err != nil {
		fail(c, err)
		return complaint.Complaint{}, false
	}
	cmp, found := s.store.Get(id)
	if !found {
		fail(c, errors.NewValidationFailedError("id", "unknown complaint "+id))
		return complaint.Complaint{}, false
	}
	return cmp, true
}

func (s *Server) handleGetFeedback(c *gin.Context) {
	cmp, found := s.feedbackTarget(c)
	if !found {
		return
	}

	lookup, err := s.linker.Probe(c.Request.Context(), cmp.Sequence)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.store.AttachFeedback(cmp.ID, lookup.Feedback); err != nil {
		fail(c, err)
		return
	}
	if !lookup.Present() {
		ok(c, http.StatusOK, gin.H{"present": false})
		return
	}
	ok(c, http.StatusOK, gin.H{"present": true, "feedback": toFeedbackJSON(lookup.Feedback)})
}

func (s *Server) handleSaveFeedback(c *gin.Context) {
	cmp, found := s.feedbackTarget(c)
	if !found {
		return
	}

	var draft feedback.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		fail(c, errors.NewValidationFailedError("body", err.Error()))
		return
	}

	fb, err := s.linker.Save(c.Request.Context(), cmp.Sequence, draft)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.store.AttachFeedback(cmp.ID, &fb); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, toFeedbackJSON(&fb))
}

func (s *Server) handleDeleteFeedback(c *gin.Context) {
	cmp, found := s.feedbackTarget(c)
	if !found {
		return
	}

	if err := s.linker.Delete(c.Request.Context(), cmp.Sequence); err != nil {
		fail(c, err)
		return
	}
	if err := s.store.AttachFeedback(cmp.ID, nil); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) handleStats(c *gin.Context) {
	all := s.store.Complaints()
	st := complaint.Summarize(all)

	out := statsJSON{
		Total:      st.Total,
		ByStatus:   make(map[string]int, len(st.ByStatus)),
		ByCategory: make(map[string]int, len(st.ByCategory)),
		Urgent:     st.Urgent,
		Overdue:    st.Overdue,
		UrgentList: toComplaintsJSON(complaint.UrgentComplaints(all)),
	}
	for k, v := range st.ByStatus {
		out.ByStatus[string(k)] = v
	}
	for k, v := range st.ByCategory {
		out.ByCategory[string(k)] = v
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) handleSummaryImage(c *gin.Context) {
	all := s.store.Complaints()
	png, err := summary.RenderStats(complaint.Summarize(all), complaint.AttentionComplaints(all), s.store.Now())
	if err != nil {
		log.Printf("⚠️  Summary image failed: %v", err)
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleExport(c *gin.Context) {
	q, err := queryFrom(c)
	if err != nil {
		fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := storage.ExportCSV(&buf, console.Filter(s.store.Complaints(), q)); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="complaints.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
