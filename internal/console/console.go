package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/feedback"
)

// Console ties the derived view, the selection, the status menu and the
// feedback editor to one store.
//
// Thread-safety:
//   - All UI state is guarded by mu
//   - mu is never held across a store mutation, because the store calls
//     back into onStoreChange once the mutation is applied
type Console struct {
	store    *complaint.Store
	linker   *feedback.Linker
	pageSize int

	mu        sync.Mutex
	query     Query
	page      int
	selection *Selection
	menu      Menu
	editing   string // complaint id of the open feedback editor, "" when closed
}

// New creates a console over store. linker may be nil when feedback editing
// is not needed.
func New(store *complaint.Store, linker *feedback.Linker, pageSize int) *Console {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &Console{
		store:     store,
		linker:    linker,
		pageSize:  pageSize,
		page:      1,
		selection: NewSelection(),
	}
	store.OnChange(c.onStoreChange)
	return c
}

// onStoreChange keeps the selection inside the filtered set and closes a
// menu whose row left the current page.
func (c *Console) onStoreChange() {
	all := c.store.Complaints()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection.Prune(FilteredIDs(all, c.query))
	c.menu.Retain(Derive(all, c.query, c.page, c.pageSize).IDs())
}

// resetLocked is the common reaction to a filter change.
func (c *Console) resetLocked() {
	c.page = 1
	c.selection.Clear()
	c.menu.Close()
}

// Query returns the active filter.
func (c *Console) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetQuery replaces the whole filter. Any change resets to page 1, clears the
// selection and closes the menu.
func (c *Console) SetQuery(q Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q == c.query {
		return
	}
	c.query = q
	c.resetLocked()
}

// SetSearch changes the free-text search.
func (c *Console) SetSearch(search string) {
	q := c.Query()
	q.Search = search
	c.SetQuery(q)
}

// SetStatusFilter changes the status filter; "" means all.
func (c *Console) SetStatusFilter(s complaint.Status) {
	q := c.Query()
	q.Status = s
	c.SetQuery(q)
}

// SetCategoryFilter changes the category filter; "" means all.
func (c *Console) SetCategoryFilter(cat complaint.Category) {
	q := c.Query()
	q.Category = cat
	c.SetQuery(q)
}

// SetPage moves to page n. The selection is cleared and the menu closed.
func (c *Console) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n == c.page {
		return
	}
	c.page = n
	c.selection.Clear()
	c.menu.Close()
}

// PageNumber returns the current page number.
func (c *Console) PageNumber() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// View derives the current page.
func (c *Console) View() Page {
	all := c.store.Complaints()
	c.mu.Lock()
	defer c.mu.Unlock()
	return Derive(all, c.query, c.page, c.pageSize)
}

// ToggleAll applies select-all semantics over the filtered set.
func (c *Console) ToggleAll() {
	all := c.store.Complaints()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.ToggleAll(FilteredIDs(all, c.query))
}

// Toggle flips the selection of one visible id.
func (c *Console) Toggle(id string) bool {
	all := c.store.Complaints()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Toggle(id, FilteredIDs(all, c.query))
}

// Selected returns the selected ids, sorted.
func (c *Console) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.IDs()
}

// OpenMenu opens the status menu of a row on the current page and returns
// where it renders.
func (c *Console) OpenMenu(id string) (Placement, error) {
	page := c.View()
	index := page.IndexOf(id)
	if index < 0 {
		return Below, errors.NewValidationFailedError("id", fmt.Sprintf("%s is not on the current page", id))
	}

	c.mu.Lock()
	c.menu.Open(id)
	c.mu.Unlock()
	return PlacementFor(index, len(page.Items)), nil
}

// OpenMenuRow returns the row whose menu is open.
func (c *Console) OpenMenuRow() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.menu.OpenRow()
}

// CloseMenu closes the status menu.
func (c *Console) CloseMenu() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menu.Close()
}

// Click reports a click on row id ("" for outside any row).
func (c *Console) Click(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menu.ClickOutside(id)
}

// ChooseStatus is a status pick from a row's menu: the menu closes and the
// change is sent through the store.
func (c *Console) ChooseStatus(ctx context.Context, id string, status complaint.Status) error {
	c.CloseMenu()
	return c.store.SetStatus(ctx, id, status)
}

// BulkSetSelected changes the status of every selected complaint. The
// selection is cleared when at least one id succeeded.
func (c *Console) BulkSetSelected(ctx context.Context, status complaint.Status) complaint.BulkResult {
	ids := c.Selected()
	res := c.store.BulkSetStatus(ctx, ids, status)

	if res.SucceededCount() > 0 {
		c.mu.Lock()
		c.selection.Clear()
		c.mu.Unlock()
	}
	return res
}

// OpenEditor opens the feedback editor for complaint id, replacing any other
// open editor, and probes its feedback. When the probe fails the previous
// editor, if any, stays open.
func (c *Console) OpenEditor(ctx context.Context, id string) (feedback.Lookup, error) {
	if c.linker == nil {
		return feedback.Lookup{}, errors.NewValidationFailedError("feedback", "feedback editing is not configured")
	}
	cmp, ok := c.store.Get(id)
	if !ok {
		return feedback.Lookup{}, errors.NewValidationFailedError("id", fmt.Sprintf("unknown complaint %s", id))
	}

	c.mu.Lock()
	previous := c.editing
	c.editing = id
	c.mu.Unlock()

	lookup, err := c.linker.Probe(ctx, cmp.Sequence)
	if err == nil {
		err = c.store.AttachFeedback(id, lookup.Feedback)
	}
	if err != nil {
		c.mu.Lock()
		if c.editing == id {
			c.editing = previous
		}
		c.mu.Unlock()
		return lookup, err
	}
	return lookup, nil
}

// Editing returns the complaint id of the open editor.
func (c *Console) Editing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing, c.editing != ""
}

// CloseEditor closes the feedback editor.
func (c *Console) CloseEditor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = ""
}

// SaveFeedback saves draft for the complaint whose editor is open, attaches
// the result locally and closes the editor.
func (c *Console) SaveFeedback(ctx context.Context, draft feedback.Draft) (complaint.Feedback, error) {
	id, seq, err := c.editingTarget()
	if err != nil {
		return complaint.Feedback{}, err
	}

	fb, err := c.linker.Save(ctx, seq, draft)
	if err != nil {
		return fb, err
	}
	if err := c.store.AttachFeedback(id, &fb); err != nil {
		return fb, err
	}

	c.mu.Lock()
	if c.editing == id {
		c.editing = ""
	}
	c.mu.Unlock()
	return fb, nil
}

// DeleteFeedback deletes the feedback of the complaint whose editor is open.
func (c *Console) DeleteFeedback(ctx context.Context) error {
	id, seq, err := c.editingTarget()
	if err != nil {
		return err
	}
	if err := c.linker.Delete(ctx, seq); err != nil {
		return err
	}
	return c.store.AttachFeedback(id, nil)
}

func (c *Console) editingTarget() (string, int, error) {
	if c.linker == nil {
		return "", 0, errors.NewValidationFailedError("feedback", "feedback editing is not configured")
	}
	id, ok := c.Editing()
	if !ok {
		return "", 0, errors.NewValidationFailedError("feedback", "no feedback editor is open")
	}
	seq, err := complaint.SequenceOf(id)
	if err != nil {
		return "", 0, err
	}
	return id, seq, nil
}

// Stats summarizes the whole collection.
func (c *Console) Stats() complaint.Stats {
	return complaint.Summarize(c.store.Complaints())
}

// Snapshot is everything RenderPage needs.
type Snapshot struct {
	Query    Query
	Page     Page
	Selected map[string]bool
	OpenMenu string
	Editing  string
	State    complaint.LoadState
}

// Snapshot captures the current console state.
func (c *Console) Snapshot() Snapshot {
	all := c.store.Complaints()
	state := c.store.State()

	c.mu.Lock()
	defer c.mu.Unlock()

	selected := make(map[string]bool, c.selection.Len())
	for _, id := range c.selection.IDs() {
		selected[id] = true
	}
	open, _ := c.menu.OpenRow()
	return Snapshot{
		Query:    c.query,
		Page:     Derive(all, c.query, c.page, c.pageSize),
		Selected: selected,
		OpenMenu: open,
		Editing:  c.editing,
		State:    state,
	}
}
