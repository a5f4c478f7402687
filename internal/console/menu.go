package console

// Placement is where a row's status menu renders relative to its trigger.
type Placement int

const (
	Below Placement = iota
	Above
)

func (p Placement) String() string {
	if p == Above {
		return "above"
	}
	return "below"
}

// aboveFromRow is the first 0-based row index whose menu opens upwards on a
// page with at least that many rows.
const aboveFromRow = 7

// PlacementFor returns Above for rows at index 7 or later on a page showing
// at least 7 rows, and Below otherwise.
func PlacementFor(index, visibleRows int) Placement {
	if visibleRows >= aboveFromRow && index >= aboveFromRow {
		return Above
	}
	return Below
}

// Menu is the status menu state: the id of the row whose menu is open, or
// none. A single value means at most one menu is ever open.
type Menu struct {
	open string
}

// Open opens the menu of row id, closing any other.
func (m *Menu) Open(id string) {
	m.open = id
}

// Close closes the open menu, if any.
func (m *Menu) Close() {
	m.open = ""
}

// Toggle opens row id's menu, or closes it if it is already open.
func (m *Menu) Toggle(id string) {
	if m.open == id {
		m.open = ""
		return
	}
	m.open = id
}

// OpenRow returns the row whose menu is open.
func (m *Menu) OpenRow() (string, bool) {
	return m.open, m.open != ""
}

// IsOpen reports whether row id's menu is open.
func (m *Menu) IsOpen(id string) bool {
	return m.open != "" && m.open == id
}

// ClickOutside handles a click on row clickedRow ("" for outside any row).
// The menu closes unless the click landed on its owning row.
func (m *Menu) ClickOutside(clickedRow string) {
	if m.open != "" && clickedRow != m.open {
		m.open = ""
	}
}

// Retain closes the menu when its row is no longer among visibleIDs.
func (m *Menu) Retain(visibleIDs []string) {
	if m.open == "" {
		return
	}
	for _, id := range visibleIDs {
		if id == m.open {
			return
		}
	}
	m.open = ""
}
