// Package feedback links complaints to their single optional feedback on the
// remote authority.
//
// The create-vs-update decision is always taken from a probe result keyed by
// the complaint's own sequence, never from shared "current feedback" state,
// so a feedback id seen while editing one complaint can never be used to
// update another.
package feedback

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
)

// MaxContentLength is the input limit of feedback content, in characters.
const MaxContentLength = 1000

// Remote is the part of the remote authority the linker talks to.
// *api.Authority satisfies it.
type Remote interface {
	FeedbackByComplaint(ctx context.Context, seq int) (api.FeedbackLookup, error)
	CreateFeedback(ctx context.Context, seq int, body api.FeedbackBody) (*api.RemoteFeedback, error)
	UpdateFeedback(ctx context.Context, id int64, body api.FeedbackBody) (*api.RemoteFeedback, error)
	DeleteFeedback(ctx context.Context, id int64) error
}

// Draft is what the operator typed. Assignee is a local display hint and is
// not sent to the remote authority.
type Draft struct {
	Assignee string `json:"assignee"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// Validate checks the input preconditions of Save.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Assignee) == "" {
		return errors.NewValidationFailedError("assignee", "assignee is required")
	}
	content := strings.TrimSpace(d.Content)
	if content == "" {
		return errors.NewValidationFailedError("content", "content is required")
	}
	if n := utf8.RuneCountInString(content); n > MaxContentLength {
		return errors.NewValidationFailedError("content",
			fmt.Sprintf("content is %d characters, limit is %d", n, MaxContentLength))
	}
	return nil
}

// Lookup is a probe result for one complaint. A nil Feedback means Absent.
type Lookup struct {
	ComplaintID int
	Feedback    *complaint.Feedback
}

// Present reports whether a feedback exists.
func (l Lookup) Present() bool {
	return l.Feedback != nil
}

// Linker probes, creates, updates and deletes feedback.
//
// Thread-safety: safe for concurrent use; the cache does its own locking.
type Linker struct {
	remote Remote
	cache  ProbeCache
}

// NewLinker creates a linker. A nil cache means an in-memory cache.
func NewLinker(remote Remote, cache ProbeCache) *Linker {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Linker{remote: remote, cache: cache}
}

// DefaultTitle is the title sent when the draft has none.
func DefaultTitle(seq int) string {
	return fmt.Sprintf("Feedback for complaint #%d", seq)
}

// Probe asks the remote authority for the feedback of the complaint with the
// given sequence. Not-found is the normal Absent outcome and returns a nil
// error; any other failure is an UnexpectedFailureError.
func (l *Linker) Probe(ctx context.Context, seq int) (Lookup, error) {
	remote, err := l.remote.FeedbackByComplaint(ctx, seq)
	if err != nil {
		log.Printf("⚠️  Feedback probe for complaint %d failed: %v", seq, err)
		return Lookup{ComplaintID: seq}, errors.NewUnexpectedFailureError("probe feedback", err)
	}

	lookup := Lookup{ComplaintID: seq}
	if remote.Found() {
		if owner := remote.Feedback.ComplaintID; owner != 0 && owner != seq {
			log.Printf("⚠️  Feedback %d returned for complaint %d belongs to complaint %d", remote.Feedback.ID, seq, owner)
			return lookup, errors.NewUnexpectedFailureError("probe feedback",
				fmt.Errorf("feedback %d belongs to complaint %d", remote.Feedback.ID, owner))
		}
		fb := complaint.FeedbackFromRemote(*remote.Feedback, "", "")
		if fb.ComplaintID == 0 {
			fb.ComplaintID = seq
		}
		lookup.Feedback = &fb
	}

	l.cache.Put(ctx, lookup)
	return lookup, nil
}

// current returns the probe result for seq, from the cache when it is scoped
// to seq and from a fresh probe otherwise.
func (l *Linker) current(ctx context.Context, seq int) (Lookup, error) {
	if cached, ok := l.cache.Get(ctx, seq); ok {
		if cached.ComplaintID == seq && (cached.Feedback == nil || cached.Feedback.ComplaintID == seq) {
			return cached, nil
		}
		log.Printf("⚠️  Discarding probe cached for complaint %d under key %d", cached.ComplaintID, seq)
		l.cache.Delete(ctx, seq)
	}
	return l.Probe(ctx, seq)
}

// Save creates or updates the feedback of the complaint with the given
// sequence. It updates only when a probe scoped to this complaint found a
// feedback with a known id; otherwise it creates.
func (l *Linker) Save(ctx context.Context, seq int, draft Draft) (complaint.Feedback, error) {
	if err := draft.Validate(); err != nil {
		return complaint.Feedback{}, err
	}

	lookup, err := l.current(ctx, seq)
	if err != nil {
		return complaint.Feedback{}, err
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = DefaultTitle(seq)
	}
	body := api.FeedbackBody{Title: title, Content: strings.TrimSpace(draft.Content)}

	var saved *api.RemoteFeedback
	if lookup.Present() && lookup.Feedback.ID != 0 && lookup.Feedback.ComplaintID == seq {
		log.Printf("  → Updating feedback %d for complaint %d...\n", lookup.Feedback.ID, seq)
		saved, err = l.remote.UpdateFeedback(ctx, lookup.Feedback.ID, body)
	} else {
		log.Printf("  → Creating feedback for complaint %d...\n", seq)
		saved, err = l.remote.CreateFeedback(ctx, seq, body)
	}
	if err != nil {
		// The remote state may differ from what was cached; re-probe next time.
		l.cache.Delete(ctx, seq)
		log.Printf("⚠️  Failed to save feedback for complaint %d: %v", seq, err)
		return complaint.Feedback{}, err
	}

	fb := complaint.FeedbackFromRemote(*saved, title, strings.TrimSpace(draft.Assignee))
	if fb.ComplaintID == 0 {
		fb.ComplaintID = seq
	}
	l.cache.Put(ctx, Lookup{ComplaintID: seq, Feedback: &fb})

	log.Printf("  ✓ Saved feedback %d for complaint %d\n", fb.ID, seq)
	return fb, nil
}

// Delete removes the feedback of the complaint with the given sequence. It
// is a no-op when the complaint has none.
func (l *Linker) Delete(ctx context.Context, seq int) error {
	lookup, err := l.current(ctx, seq)
	if err != nil {
		return err
	}
	if !lookup.Present() || lookup.Feedback.ID == 0 || lookup.Feedback.ComplaintID != seq {
		return nil
	}

	if err := l.remote.DeleteFeedback(ctx, lookup.Feedback.ID); err != nil {
		l.cache.Delete(ctx, seq)
		log.Printf("⚠️  Failed to delete feedback %d: %v", lookup.Feedback.ID, err)
		return err
	}

	l.cache.Put(ctx, Lookup{ComplaintID: seq})
	log.Printf("  ✓ Deleted feedback %d of complaint %d\n", lookup.Feedback.ID, seq)
	return nil
}

// Forget drops the cached probe of a complaint.
func (l *Linker) Forget(ctx context.Context, seq int) {
	l.cache.Delete(ctx, seq)
}
