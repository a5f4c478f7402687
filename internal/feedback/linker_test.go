package feedback_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api/apitest"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/feedback"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinker(t *testing.T, seqs ...int) (*feedback.Linker, *apitest.Fake) {
	t.Helper()
	complaints := make([]api.RemoteComplaint, len(seqs))
	for i, seq := range seqs {
		complaints[i] = apitest.NewComplaint(seq, "Complaint", 1)
	}
	fake := apitest.New(t, complaints...)
	return feedback.NewLinker(fake.Authority(), nil), fake
}

var draft = feedback.Draft{Assignee: "lee", Title: "Replacement", Content: "We replaced the batch."}

func TestProbeNotFoundIsAbsentWithoutError(t *testing.T) {
	linker, _ := newLinker(t, 1)

	lookup, err := linker.Probe(context.Background(), 1)

	// No error branch may fire for a missing feedback.
	require.NoError(t, err)
	assert.False(t, lookup.Present())
	assert.Equal(t, 1, lookup.ComplaintID)
}

func TestProbeFound(t *testing.T) {
	linker, fake := newLinker(t, 1)
	seeded := fake.SeedFeedback(1, "Already answered", "kim")

	lookup, err := linker.Probe(context.Background(), 1)

	require.NoError(t, err)
	require.True(t, lookup.Present())
	assert.Equal(t, seeded.ID, lookup.Feedback.ID)
	assert.Equal(t, "kim", lookup.Feedback.Assignee)
	assert.Equal(t, lookup.Feedback.CreatedAt, lookup.Feedback.UpdatedAt)
}

func TestProbeFailureIsUnexpected(t *testing.T) {
	linker, fake := newLinker(t, 1)
	fake.FailProbe(1, http.StatusInternalServerError)

	_, err := linker.Probe(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, errors.IsUnexpectedFailure(err))
}

func TestSaveTwiceCreatesThenUpdates(t *testing.T) {
	linker, fake := newLinker(t, 1)
	ctx := context.Background()

	first, err := linker.Save(ctx, 1, draft)
	require.NoError(t, err)

	second, err := linker.Save(ctx, 1, feedback.Draft{Assignee: "lee", Content: "Follow-up note."})
	require.NoError(t, err)

	assert.Equal(t, 1, fake.Calls(apitest.OpCreate))
	assert.Equal(t, 1, fake.Calls(apitest.OpUpdate))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Follow-up note.", second.Content)
	assert.Equal(t, feedback.DefaultTitle(1), second.Title)
	assert.True(t, second.UpdatedAt.After(second.CreatedAt))

	stored, ok := fake.FeedbackFor(1)
	require.True(t, ok)
	assert.Equal(t, "Follow-up note.", stored.Content)
}

func TestSaveUpdatesExistingFeedback(t *testing.T) {
	linker, fake := newLinker(t, 4)
	seeded := fake.SeedFeedback(4, "Old answer", "")

	fb, err := linker.Save(context.Background(), 4, draft)

	require.NoError(t, err)
	assert.Equal(t, seeded.ID, fb.ID)
	assert.Equal(t, "lee", fb.Assignee, "draft assignee is used when the remote reports no nickname")
	assert.Equal(t, "Replacement", fb.Title)
	assert.Equal(t, 1, fake.Calls(apitest.OpProbe))
	assert.Zero(t, fake.Calls(apitest.OpCreate))
}

func TestSaveNeverReusesAnotherComplaintsFeedback(t *testing.T) {
	linker, fake := newLinker(t, 1, 2)
	ctx := context.Background()

	first, err := linker.Save(ctx, 1, draft)
	require.NoError(t, err)
	second, err := linker.Save(ctx, 2, draft)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, second.ComplaintID)
	assert.Equal(t, 2, fake.Calls(apitest.OpCreate))
	assert.Zero(t, fake.Calls(apitest.OpUpdate))
}

func TestSaveDiscardsMisscopedCacheEntry(t *testing.T) {
	fake := apitest.New(t, apitest.NewComplaint(1, "One", 1), apitest.NewComplaint(2, "Two", 1))
	other := fake.SeedFeedback(2, "Belongs to two", "kim")
	cache := &staleCache{MemoryCache: feedback.NewMemoryCache(), stale: feedback.Lookup{
		ComplaintID: 1,
		Feedback:    &complaint.Feedback{ID: other.ID, ComplaintID: 2},
	}}
	linker := feedback.NewLinker(fake.Authority(), cache)

	fb, err := linker.Save(context.Background(), 1, draft)

	require.NoError(t, err)
	assert.NotEqual(t, other.ID, fb.ID)
	assert.Zero(t, fake.Calls(apitest.OpUpdate))
	assert.Equal(t, 1, fake.Calls(apitest.OpCreate))

	untouched, _ := fake.FeedbackFor(2)
	assert.Equal(t, "Belongs to two", untouched.Content)
}

func TestSaveValidation(t *testing.T) {
	linker, fake := newLinker(t, 1)

	tests := []struct {
		name  string
		draft feedback.Draft
	}{
		{"blank assignee", feedback.Draft{Assignee: "  ", Content: "ok"}},
		{"blank content", feedback.Draft{Assignee: "lee", Content: "\t"}},
		{"content too long", feedback.Draft{Assignee: "lee", Content: strings.Repeat("가", feedback.MaxContentLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := linker.Save(context.Background(), 1, tt.draft)
			assert.True(t, errors.IsValidationFailed(err))
		})
	}

	assert.Zero(t, fake.Calls(apitest.OpProbe))
	assert.Zero(t, fake.Calls(apitest.OpCreate))
}

func TestSaveContentAtLimit(t *testing.T) {
	linker, _ := newLinker(t, 1)

	_, err := linker.Save(context.Background(), 1, feedback.Draft{
		Assignee: "lee",
		Content:  strings.Repeat("가", feedback.MaxContentLength),
	})

	assert.NoError(t, err)
}

func TestSaveAbortsOnProbeFailure(t *testing.T) {
	linker, fake := newLinker(t, 1)
	fake.FailProbe(1, http.StatusInternalServerError)

	_, err := linker.Save(context.Background(), 1, draft)

	assert.True(t, errors.IsUnexpectedFailure(err))
	assert.Zero(t, fake.Calls(apitest.OpCreate))
}

func TestDelete(t *testing.T) {
	linker, fake := newLinker(t, 1)
	ctx := context.Background()

	_, err := linker.Save(ctx, 1, draft)
	require.NoError(t, err)

	require.NoError(t, linker.Delete(ctx, 1))
	_, ok := fake.FeedbackFor(1)
	assert.False(t, ok)

	// Absent now: a second delete is a no-op and the next save creates.
	require.NoError(t, linker.Delete(ctx, 1))
	assert.Equal(t, 1, fake.Calls(apitest.OpDelete))

	_, err = linker.Save(ctx, 1, draft)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls(apitest.OpCreate))
}

func TestForgetForcesReprobe(t *testing.T) {
	linker, fake := newLinker(t, 1)
	ctx := context.Background()

	_, err := linker.Probe(ctx, 1)
	require.NoError(t, err)
	fake.SeedFeedback(1, "Created elsewhere", "kim")

	linker.Forget(ctx, 1)
	fb, err := linker.Save(ctx, 1, draft)

	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls(apitest.OpProbe))
	assert.Equal(t, 1, fake.Calls(apitest.OpUpdate))
	assert.Zero(t, fake.Calls(apitest.OpCreate))
	assert.Equal(t, "kim", fb.Assignee)
}

// staleCache serves one fixed entry for every key until it is deleted.
type staleCache struct {
	*feedback.MemoryCache
	stale   feedback.Lookup
	dropped bool
}

func (c *staleCache) Get(ctx context.Context, seq int) (feedback.Lookup, bool) {
	if !c.dropped {
		return c.stale, true
	}
	return c.MemoryCache.Get(ctx, seq)
}

func (c *staleCache) Delete(ctx context.Context, seq int) {
	c.dropped = true
	c.MemoryCache.Delete(ctx, seq)
}

// misroutedRemote answers every probe with a feedback owned by another
// complaint and counts the writes it receives.
type misroutedRemote struct {
	owner   int
	creates int
	updates int
}

func (r *misroutedRemote) FeedbackByComplaint(_ context.Context, seq int) (api.FeedbackLookup, error) {
	return api.FeedbackLookup{ComplaintID: seq, Feedback: &api.RemoteFeedback{ID: 77, ComplaintID: r.owner, Content: "other"}}, nil
}

func (r *misroutedRemote) CreateFeedback(_ context.Context, seq int, body api.FeedbackBody) (*api.RemoteFeedback, error) {
	r.creates++
	return &api.RemoteFeedback{ID: 90, ComplaintID: seq, Content: body.Content}, nil
}

func (r *misroutedRemote) UpdateFeedback(_ context.Context, id int64, body api.FeedbackBody) (*api.RemoteFeedback, error) {
	r.updates++
	return &api.RemoteFeedback{ID: id, ComplaintID: r.owner, Content: body.Content}, nil
}

func (r *misroutedRemote) DeleteFeedback(context.Context, int64) error { return nil }

func TestProbeRejectsFeedbackOfAnotherComplaint(t *testing.T) {
	remote := &misroutedRemote{owner: 2}
	cache := feedback.NewMemoryCache()
	linker := feedback.NewLinker(remote, cache)
	ctx := context.Background()

	_, err := linker.Probe(ctx, 1)

	require.Error(t, err)
	assert.True(t, errors.IsUnexpectedFailure(err))
	_, cached := cache.Get(ctx, 1)
	assert.False(t, cached, "a misrouted probe must not be cached")
}

func TestSaveNeverUpdatesFeedbackOfAnotherComplaint(t *testing.T) {
	remote := &misroutedRemote{owner: 2}
	linker := feedback.NewLinker(remote, nil)

	_, err := linker.Save(context.Background(), 1, draft)

	require.Error(t, err)
	assert.Zero(t, remote.updates)
	assert.Zero(t, remote.creates)
}
