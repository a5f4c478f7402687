// Package apitest provides an in-memory remote authority for tests. It serves
// the same wire contract as the real backend over an httptest server, with
// per-operation call counters and failure injection.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api"

	"github.com/go-chi/chi/v5"
)

// Operation names accepted by Calls.
const (
	OpList   = "list"
	OpStatus = "status"
	OpProbe  = "probe"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Fake is a fake remote authority.
type Fake struct {
	srv *httptest.Server

	mu             sync.Mutex
	complaints     map[int]api.RemoteComplaint
	feedback       map[int]api.RemoteFeedback // keyed by complaint sequence
	nextFeedbackID int64
	calls          map[string]int

	statusFailures map[int]int // seq -> HTTP status
	probeFailures  map[int]int
	listFailure    int
	listFailLeft   int // < 0 means every call
}

// New starts a fake seeded with complaints. The server is closed when the
// test ends.
func New(t testing.TB, complaints ...api.RemoteComplaint) *Fake {
	t.Helper()

	f := &Fake{
		complaints:     make(map[int]api.RemoteComplaint),
		feedback:       make(map[int]api.RemoteFeedback),
		nextFeedbackID: 100,
		calls:          make(map[string]int),
		statusFailures: make(map[int]int),
		probeFailures:  make(map[int]int),
	}
	for _, c := range complaints {
		f.complaints[c.ComplaintID] = c
	}

	r := chi.NewRouter()
	r.Route("/admin/complaints", func(r chi.Router) {
		r.Get("/", f.listComplaints)
		r.Patch("/{seq}/status", f.updateStatus)
	})
	r.Route("/feedbacks", func(r chi.Router) {
		r.Get("/complaints/{seq}", f.probeFeedback)
		r.Post("/complaints/{seq}", f.createFeedback)
		r.Put("/{id}", f.updateFeedback)
		r.Delete("/{id}", f.deleteFeedback)
	})

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

// NewComplaint builds a remote complaint created on 2025-03-01.
func NewComplaint(seq int, title string, status int) api.RemoteComplaint {
	return api.RemoteComplaint{
		ComplaintID: seq,
		Title:       title,
		Content:     title + " details",
		Category:    "GENERAL_COMPLAINT",
		Status:      status,
		UserName:    "user" + strconv.Itoa(seq),
		CreatedAt:   api.Timestamp{Time: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
}

// URL returns the base URL of the fake.
func (f *Fake) URL() string {
	return f.srv.URL
}

// Authority returns a client wired to the fake.
func (f *Fake) Authority(opts ...api.Option) *api.Authority {
	doer := api.NewHTTPDoer(f.srv.URL, "test-token")
	doer.Client = f.srv.Client()
	return api.NewAuthority(doer, opts...)
}

// FailStatusUpdate makes every status update for seq answer with code.
func (f *Fake) FailStatusUpdate(seq, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusFailures[seq] = code
}

// FailList makes the next times list calls answer with code. times <= 0
// fails every call.
func (f *Fake) FailList(code, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFailure = code
	if times <= 0 {
		f.listFailLeft = -1
	} else {
		f.listFailLeft = times
	}
}

// FailProbe makes every feedback probe for seq answer with code.
func (f *Fake) FailProbe(seq, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeFailures[seq] = code
}

// SetComplaints replaces the served collection.
func (f *Fake) SetComplaints(complaints ...api.RemoteComplaint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.complaints = make(map[int]api.RemoteComplaint)
	for _, c := range complaints {
		f.complaints[c.ComplaintID] = c
	}
}

// Calls returns how many requests op has received.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Complaint returns the fake's copy of a complaint.
func (f *Fake) Complaint(seq int) (api.RemoteComplaint, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.complaints[seq]
	return c, ok
}

// SeedFeedback stores a feedback for seq as if it had been created earlier.
func (f *Fake) SeedFeedback(seq int, content, nickname string) api.RemoteFeedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	fb := f.newFeedbackLocked(seq, content, nickname)
	f.feedback[seq] = fb
	return fb
}

// FeedbackFor returns the stored feedback for seq.
func (f *Fake) FeedbackFor(seq int) (api.RemoteFeedback, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fb, ok := f.feedback[seq]
	return fb, ok
}

func (f *Fake) newFeedbackLocked(seq int, content, nickname string) api.RemoteFeedback {
	f.nextFeedbackID++
	return api.RemoteFeedback{
		ID:                f.nextFeedbackID,
		ComplaintID:       seq,
		Content:           content,
		ResponderNickname: nickname,
		CreateAt:          api.Timestamp{Time: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)},
	}
}

func (f *Fake) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *Fake) listComplaints(w http.ResponseWriter, r *http.Request) {
	f.count(OpList)

	f.mu.Lock()
	if f.listFailLeft != 0 {
		code := f.listFailure
		if f.listFailLeft > 0 {
			f.listFailLeft--
		}
		f.mu.Unlock()
		writeError(w, code, "list unavailable")
		return
	}
	items := make([]api.RemoteComplaint, 0, len(f.complaints))
	for _, c := range f.complaints {
		items = append(items, c)
	}
	f.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ComplaintID < items[j].ComplaintID })
	writeData(w, http.StatusOK, items)
}

func (f *Fake) updateStatus(w http.ResponseWriter, r *http.Request) {
	f.count(OpStatus)

	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var req struct {
		Status int `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if code, ok := f.statusFailures[seq]; ok {
		writeError(w, code, "status update failed")
		return
	}
	c, ok := f.complaints[seq]
	if !ok {
		writeError(w, http.StatusNotFound, "complaint not found")
		return
	}
	if req.Status < 1 || req.Status > 4 {
		writeError(w, http.StatusBadRequest, "unknown status code")
		return
	}
	c.Status = req.Status
	f.complaints[seq] = c
	writeData(w, http.StatusOK, nil)
}

func (f *Fake) probeFeedback(w http.ResponseWriter, r *http.Request) {
	f.count(OpProbe)

	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if code, ok := f.probeFailures[seq]; ok {
		writeError(w, code, "feedback lookup failed")
		return
	}
	fb, ok := f.feedback[seq]
	if !ok {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}
	writeData(w, http.StatusOK, fb)
}

type feedbackRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (f *Fake) createFeedback(w http.ResponseWriter, r *http.Request) {
	f.count(OpCreate)

	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.complaints[seq]; !ok {
		writeError(w, http.StatusNotFound, "complaint not found")
		return
	}
	if _, exists := f.feedback[seq]; exists {
		writeError(w, http.StatusConflict, "feedback already exists")
		return
	}
	fb := f.newFeedbackLocked(seq, req.Content, "admin")
	f.feedback[seq] = fb
	writeData(w, http.StatusCreated, fb)
}

func (f *Fake) updateFeedback(w http.ResponseWriter, r *http.Request) {
	f.count(OpUpdate)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback id")
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for seq, fb := range f.feedback {
		if fb.ID != id {
			continue
		}
		fb.Content = req.Content
		fb.ModifiedAt = &api.Timestamp{Time: fb.CreateAt.Add(time.Hour)}
		f.feedback[seq] = fb
		writeData(w, http.StatusOK, fb)
		return
	}
	writeError(w, http.StatusNotFound, "feedback not found")
}

func (f *Fake) deleteFeedback(w http.ResponseWriter, r *http.Request) {
	f.count(OpDelete)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback id")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for seq, fb := range f.feedback {
		if fb.ID == id {
			delete(f.feedback, seq)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "feedback not found")
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "ok",
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": msg,
		"data":    nil,
	})
}
