// Package console derives what the admin console shows from the complaint
// store: the filtered and paginated view, the selection, the per-row status
// menu and the feedback editor, plus their terminal rendering.
package console

import (
	"strings"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
)

// DefaultPageSize is used when a page size is not positive.
const DefaultPageSize = 10

// Query is the active filter. Empty fields match everything.
type Query struct {
	Search   string
	Status   complaint.Status
	Category complaint.Category
}

// Matches reports whether c passes every predicate of q. Search is a
// case-insensitive substring match against title, id and content.
func (q Query) Matches(c complaint.Complaint) bool {
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if q.Category != "" && c.Category != q.Category {
		return false
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), search) ||
		strings.Contains(strings.ToLower(c.ID), search) ||
		strings.Contains(strings.ToLower(c.Content), search)
}

// Filter returns the complaints matching q, in collection order.
func Filter(all []complaint.Complaint, q Query) []complaint.Complaint {
	out := make([]complaint.Complaint, 0, len(all))
	for _, c := range all {
		if q.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// FilteredIDs returns the ids of the complaints matching q.
func FilteredIDs(all []complaint.Complaint, q Query) []string {
	var ids []string
	for _, c := range all {
		if q.Matches(c) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Page is one derived page of the filtered collection.
type Page struct {
	Items      []complaint.Complaint
	Number     int // 1-based, as requested
	Size       int
	TotalItems int // filtered count
	TotalPages int
}

// IDs returns the ids on the page, in display order.
func (p Page) IDs() []string {
	ids := make([]string, len(p.Items))
	for i, c := range p.Items {
		ids[i] = c.ID
	}
	return ids
}

// IndexOf returns the row index of id on the page, or -1.
func (p Page) IndexOf(id string) int {
	for i, c := range p.Items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// TotalPages returns ceil(items / size).
func TotalPages(items, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (items + size - 1) / size
}

// Derive filters all by q and cuts out page number (1-based). A page outside
// [1, TotalPages] yields an empty page, not an error.
func Derive(all []complaint.Complaint, q Query, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	filtered := Filter(all, q)

	p := Page{
		Items:      []complaint.Complaint{},
		Number:     number,
		Size:       size,
		TotalItems: len(filtered),
		TotalPages: TotalPages(len(filtered), size),
	}
	if number < 1 || number > p.TotalPages {
		return p
	}

	start := (number - 1) * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	p.Items = filtered[start:end]
	return p
}
