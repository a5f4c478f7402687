package complaint

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/clock"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
)

// Remote is the part of the remote authority the store talks to.
// *api.Authority satisfies it.
type Remote interface {
	ListComplaints(ctx context.Context) ([]api.RemoteComplaint, error)
	StatusUpdater
}

// Store is the canonical in-memory complaint collection.
//
// Thread-safety:
//   - The collection is guarded by an RWMutex and only mutated after the
//     triggering remote call has settled
//   - Readers get copies; nothing outside the store aliases its records
//   - Change listeners run after the lock is released
type Store struct {
	remote     Remote
	clock      clock.Clock
	workers    int
	maxRetries int
	retryDelay time.Duration

	mu         sync.RWMutex
	complaints []Complaint
	index      map[string]int
	state      LoadState
	lastErr    error
	loadedAt   time.Time

	listenersMu sync.Mutex
	listeners   []func()
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the clock used for DaysLeft and load retry delays.
func WithClock(c clock.Clock) StoreOption {
	return func(s *Store) {
		s.clock = c
	}
}

// WithWorkers sets the bulk fan-out worker count.
func WithWorkers(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLoadRetry sets how many attempts Load makes on network failures and
// the delay between them.
func WithLoadRetry(attempts int, delay time.Duration) StoreOption {
	return func(s *Store) {
		if attempts > 0 {
			s.maxRetries = attempts
		}
		s.retryDelay = delay
	}
}

// NewStore creates an empty store backed by remote.
func NewStore(remote Remote, opts ...StoreOption) *Store {
	s := &Store{
		remote:     remote,
		clock:      clock.Real(),
		workers:    10,
		maxRetries: 3,
		retryDelay: 5 * time.Second,
		index:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to be called after every change to the collection.
func (s *Store) OnChange(fn func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify() {
	s.listenersMu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Load fetches the full collection and replaces the current one atomically.
//
// Network failures are retried up to the configured attempts. On failure the
// previous collection is kept; a store whose first load fails stays empty
// and reports StateFailed.
func (s *Store) Load(ctx context.Context) ([]Complaint, error) {
	log.Println("📋 Loading complaints...")

	var (
		items    []api.RemoteComplaint
		err      error
		attempts int
	)
	for attempts = 1; ; attempts++ {
		items, err = s.remote.ListComplaints(ctx)
		if err == nil || !errors.IsRetryable(err) || attempts >= s.maxRetries {
			break
		}

		log.Printf("⚠️  Load attempt %d/%d failed: %v", attempts, s.maxRetries, err)
		log.Printf("   ⏳ Retrying in %v...", s.retryDelay)
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-s.clock.After(s.retryDelay):
			continue
		}
		break
	}

	if err != nil {
		s.mu.Lock()
		firstLoad := s.state != StateReady
		if firstLoad {
			s.state = StateFailed
		}
		s.lastErr = err
		s.mu.Unlock()

		log.Printf("⚠️  Failed to load complaints after %d attempt(s): %v", attempts, err)
		return nil, errors.NewLoadFailedError(firstLoad, attempts, err)
	}

	now := s.clock.Now()
	next := make([]Complaint, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		c, decodeErr := FromRemote(item, now)
		if decodeErr != nil {
			log.Printf("⚠️  Skipping complaint %d: %v", item.ComplaintID, decodeErr)
			continue
		}
		if _, dup := index[c.ID]; dup {
			log.Printf("⚠️  Skipping duplicate complaint %s", c.ID)
			continue
		}
		index[c.ID] = len(next)
		next = append(next, c)
	}

	s.mu.Lock()
	// Feedback is local only; carry it over for complaints that survive the reload.
	for i := range next {
		if old, ok := s.index[next[i].ID]; ok && s.complaints[old].Feedback != nil {
			fb := *s.complaints[old].Feedback
			next[i].Feedback = &fb
		}
	}
	s.complaints = next
	s.index = index
	s.state = StateReady
	s.lastErr = nil
	s.loadedAt = now
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	log.Printf("  ✓ Loaded %d complaints\n", len(snapshot))
	s.notify()
	return snapshot, nil
}

// SetStatus changes the status of one complaint. The record is updated only
// after the remote authority accepted the change.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return errors.NewValidationFailedError("status", fmt.Sprintf("invalid status %q", status))
	}
	seq, err := s.resolve(id)
	if err != nil {
		return err
	}

	log.Printf("  → Setting %s to %s...\n", id, status.Label())
	if err := s.remote.UpdateComplaintStatus(ctx, seq, status.Code()); err != nil {
		log.Printf("⚠️  Failed to set %s to %s: %v", id, status.Label(), err)
		return err
	}

	s.mu.Lock()
	if i, ok := s.index[id]; ok {
		s.complaints[i].Status = status
	}
	s.mu.Unlock()

	log.Printf("  ✓ %s is now %s\n", id, status.Label())
	s.notify()
	return nil
}

// resolve decodes id and checks that the store holds it.
func (s *Store) resolve(id string) (int, error) {
	seq, err := SequenceOf(id)
	if err != nil {
		return 0, err
	}
	s.mu.RLock()
	_, ok := s.index[id]
	s.mu.RUnlock()
	if !ok {
		return 0, errors.NewValidationFailedError("id", fmt.Sprintf("unknown complaint %s", id))
	}
	return seq, nil
}

// BulkSetStatus issues one remote status update per distinct id,
// concurrently, and waits for all of them. Every id whose call succeeded is
// set to status; every other id keeps its prior status. The result lists
// both groups in input order.
func (s *Store) BulkSetStatus(ctx context.Context, ids []string, status Status) BulkResult {
	result := BulkResult{Status: status}

	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	outcomes := make([]error, len(unique))
	var jobs []statusJob
	for i, id := range unique {
		if !status.Valid() {
			outcomes[i] = errors.NewValidationFailedError("status", fmt.Sprintf("invalid status %q", status))
			continue
		}
		seq, err := s.resolve(id)
		if err != nil {
			outcomes[i] = err
			continue
		}
		jobs = append(jobs, statusJob{index: i, id: id, seq: seq})
	}

	log.Printf("📋 Bulk status update: %d complaint(s) to %s\n", len(unique), status.Label())

	if len(jobs) > 0 {
		pool := NewWorkerPool(ctx, s.remote, status.Code(), s.workers, len(jobs))
		for _, job := range jobs {
			pool.Submit(job)
		}
		pool.Close()

		for res := range pool.Results() {
			outcomes[res.index] = res.err
		}
	}

	s.mu.Lock()
	for i, id := range unique {
		if outcomes[i] != nil {
			continue
		}
		if idx, ok := s.index[id]; ok {
			s.complaints[idx].Status = status
		}
	}
	s.mu.Unlock()

	for i, id := range unique {
		if outcomes[i] == nil {
			result.Succeeded = append(result.Succeeded, id)
		} else {
			result.Failed = append(result.Failed, Failure{ID: id, Err: outcomes[i]})
		}
	}

	if result.FailedCount() > 0 {
		log.Printf("⚠️  Bulk status update: %d succeeded, %d failed %v", result.SucceededCount(), result.FailedCount(), result.FailedIDs())
	} else {
		log.Printf("  ✓ Bulk status update: %d succeeded\n", result.SucceededCount())
	}

	if result.SucceededCount() > 0 {
		s.notify()
	}
	return result
}

// AttachFeedback sets the local feedback copy of a complaint. A nil fb
// detaches it.
func (s *Store) AttachFeedback(id string, fb *Feedback) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return errors.NewValidationFailedError("id", fmt.Sprintf("unknown complaint %s", id))
	}
	if fb == nil {
		s.complaints[i].Feedback = nil
	} else {
		cp := *fb
		s.complaints[i].Feedback = &cp
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Complaints returns a copy of the current collection.
func (s *Store) Complaints() []Complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []Complaint {
	out := make([]Complaint, len(s.complaints))
	for i, c := range s.complaints {
		out[i] = c.clone()
	}
	return out
}

// Get returns a copy of one complaint.
func (s *Store) Get(id string) (Complaint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Complaint{}, false
	}
	return s.complaints[i].clone(), true
}

// FindBySequence returns the complaint with the given remote sequence.
func (s *Store) FindBySequence(seq int) (Complaint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.complaints {
		if c.Sequence == seq {
			return c.clone(), true
		}
	}
	return Complaint{}, false
}

// State returns the load state.
func (s *Store) State() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastError returns the error of the most recent failed load, or nil.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LoadedAt returns when the collection was last replaced.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}
