package console

import (
	"fmt"
	"strings"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5F5F5")).Background(lipgloss.Color("#34495E"))
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F8C8D"))
	urgentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)
	menuStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3498DB")).Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var statusColors = map[complaint.Status]lipgloss.Color{
	complaint.StatusPending:    lipgloss.Color("#F1C40F"),
	complaint.StatusProcessing: lipgloss.Color("#3498DB"),
	complaint.StatusCompleted:  lipgloss.Color("#2ECC71"),
	complaint.StatusRejected:   lipgloss.Color("#95A5A6"),
}

// StatusBadge renders a status label in its colour.
func StatusBadge(s complaint.Status) string {
	return lipgloss.NewStyle().
		Foreground(statusColors[s]).
		Bold(true).
		Width(10).
		Render(s.Label())
}

// column widths of the complaint table
const (
	colCheck = 3
	colID    = 11
	colTitle = 32
	colCat   = 18
	colDate  = 10
	colDays  = 6
)

// RenderPage draws the current page as a table with selection checkboxes,
// status badges and, under or over the row that owns it, the open status
// menu. The menu marker shows its placement: ▼ below, ▲ above.
func RenderPage(s Snapshot) string {
	var b strings.Builder

	b.WriteString(renderFilterLine(s.Query))
	b.WriteString("\n")

	if s.State == complaint.StateFailed {
		b.WriteString(urgentStyle.Render("Complaints could not be loaded."))
		b.WriteString("\n")
		return b.String()
	}

	header := strings.Join([]string{
		pad("", colCheck),
		pad("ID", colID),
		pad("Title", colTitle),
		pad("Category", colCat),
		pad("Submitted", colDate),
		pad("Days", colDays),
		"Status",
	}, " ")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(s.Page.Items) == 0 {
		b.WriteString(faintStyle.Render("  No complaints match."))
		b.WriteString("\n")
	}

	for i, c := range s.Page.Items {
		open := s.OpenMenu == c.ID
		placement := PlacementFor(i, len(s.Page.Items))

		if open && placement == Above {
			b.WriteString(renderMenu(c))
			b.WriteString("\n")
		}

		b.WriteString(renderRow(c, s.Selected[c.ID], open, placement, s.Editing == c.ID))
		b.WriteString("\n")

		if open && placement == Below {
			b.WriteString(renderMenu(c))
			b.WriteString("\n")
		}
	}

	footer := fmt.Sprintf("Page %d/%d · %d complaint(s) · %d selected",
		s.Page.Number, max(s.Page.TotalPages, 1), s.Page.TotalItems, len(s.Selected))
	b.WriteString(faintStyle.Render(footer))
	b.WriteString("\n")
	return b.String()
}

func renderFilterLine(q Query) string {
	parts := []string{"Filter:"}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", q.Search))
	}
	if q.Status != "" {
		parts = append(parts, "status="+q.Status.Label())
	}
	if q.Category != "" {
		parts = append(parts, "category="+q.Category.Label())
	}
	if len(parts) == 1 {
		parts = append(parts, "all")
	}
	return faintStyle.Render(strings.Join(parts, " "))
}

func renderRow(c complaint.Complaint, selected, menuOpen bool, placement Placement, editing bool) string {
	check := "[ ]"
	if selected {
		check = "[x]"
	}

	days := pad("-", colDays)
	if c.DaysLeft != nil {
		days = pad(fmt.Sprintf("%d", *c.DaysLeft), colDays)
		if complaint.IsUrgent(c) || complaint.IsOverdue(c) {
			days = urgentStyle.Render(days)
		}
	}

	title := c.Title
	if c.Feedback != nil {
		title = "✓ " + title
	}
	if editing {
		title = "✎ " + title
	}

	marker := ""
	if menuOpen {
		marker = " ▼"
		if placement == Above {
			marker = " ▲"
		}
	}

	return strings.Join([]string{
		pad(check, colCheck),
		pad(c.ID, colID),
		pad(truncate(title, colTitle), colTitle),
		pad(c.Category.Label(), colCat),
		pad(c.SubmissionDate, colDate),
		days,
		StatusBadge(c.Status) + marker,
	}, " ")
}

func renderMenu(c complaint.Complaint) string {
	var options []string
	for _, s := range complaint.Statuses() {
		prefix := "  "
		if s == c.Status {
			prefix = "• "
		}
		options = append(options, prefix+StatusBadge(s))
	}
	indent := strings.Repeat(" ", colCheck+colID+colTitle+colCat+colDate+colDays+6)
	menu := menuStyle.Render(strings.Join(options, "\n"))

	lines := strings.Split(menu, "\n")
	for i := range lines {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

// RenderStats draws the statistics block.
func RenderStats(st complaint.Stats) string {
	var rows []string
	rows = append(rows, headerStyle.Render(fmt.Sprintf("Complaints: %d", st.Total)))
	for _, s := range complaint.Statuses() {
		rows = append(rows, fmt.Sprintf("%s %d", StatusBadge(s), st.Count(s)))
	}
	rows = append(rows, "")
	for _, cat := range complaint.Categories() {
		rows = append(rows, fmt.Sprintf("%s %d", pad(cat.Label(), colCat), st.ByCategory[cat]))
	}
	rows = append(rows, "")
	rows = append(rows, urgentStyle.Render(fmt.Sprintf("Urgent (≤%d days): %d", complaint.UrgentWithinDays, st.Urgent)))
	rows = append(rows, urgentStyle.Render(fmt.Sprintf("Overdue: %d", st.Overdue)))

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// RenderBulkResult draws the outcome of a bulk status change.
func RenderBulkResult(res complaint.BulkResult) string {
	var rows []string
	rows = append(rows, fmt.Sprintf("%s: %d succeeded, %d failed",
		StatusBadge(res.Status), res.SucceededCount(), res.FailedCount()))
	for _, f := range res.Failed {
		rows = append(rows, urgentStyle.Render("  ✗ "+f.ID)+faintStyle.Render(" "+f.Err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func pad(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
