// Package health tracks the console's load and bulk activity for the /health
// endpoint.
package health

import (
	"sync"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/clock"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
)

const timeLayout = "2006-01-02 15:04:05"

// Status represents the application health status.
//
// Status is "healthy" until a load fails, "degraded" while the most recent
// load failed.
type Status struct {
	Status              string      `json:"status"`
	Uptime              string      `json:"uptime"`
	LastLoadTime        string      `json:"last_load_time"`
	LastLoadStatus      string      `json:"last_load_status"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	LastBulk            *BulkStatus `json:"last_bulk,omitempty"`
}

// BulkStatus summarizes the most recent bulk status change.
type BulkStatus struct {
	Time      string `json:"time"`
	Status    string `json:"status"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// Monitor tracks application health metrics.
//
// Thread-safety:
//   - All fields are protected by RWMutex
type Monitor struct {
	clock clock.Clock

	mu                  sync.RWMutex
	startTime           time.Time
	lastLoadTime        time.Time
	lastLoadStatus      string
	consecutiveFailures int
	lastBulk            *BulkStatus
}

// NewMonitor creates a new health monitor. A nil clock means the system
// clock.
func NewMonitor(clk clock.Clock) *Monitor {
	if clk == nil {
		clk = clock.Real()
	}
	return &Monitor{
		clock:          clk,
		startTime:      clk.Now(),
		lastLoadStatus: "not started",
	}
}

// RecordLoad records the outcome of a store load.
func (m *Monitor) RecordLoad(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastLoadTime = m.clock.Now()
	if err != nil {
		m.lastLoadStatus = "error: " + err.Error()
		m.consecutiveFailures++
		return
	}
	m.lastLoadStatus = "success"
	m.consecutiveFailures = 0
}

// RecordBulk records the counts of a bulk status change.
func (m *Monitor) RecordBulk(res complaint.BulkResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastBulk = &BulkStatus{
		Time:      m.clock.Now().Format(timeLayout),
		Status:    res.Status.Label(),
		Succeeded: res.SucceededCount(),
		Failed:    res.FailedCount(),
	}
}

// ConsecutiveFailures returns how many loads in a row have failed.
func (m *Monitor) ConsecutiveFailures() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consecutiveFailures
}

// Status returns the current health status.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{
		Status:              "healthy",
		Uptime:              m.clock.Now().Sub(m.startTime).String(),
		LastLoadStatus:      m.lastLoadStatus,
		ConsecutiveFailures: m.consecutiveFailures,
	}
	if m.consecutiveFailures > 0 {
		st.Status = "degraded"
	}
	if !m.lastLoadTime.IsZero() {
		st.LastLoadTime = m.lastLoadTime.Format(timeLayout)
	}
	if m.lastBulk != nil {
		bulk := *m.lastBulk
		st.LastBulk = &bulk
	}
	return st
}
