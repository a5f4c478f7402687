// Package summary renders the complaint statistics as a PNG for sharing.
package summary

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"

	"github.com/fogleman/gg"
)

// Table styling constants, rendered at 2x scale for chat clients
const (
	cellPaddingX  = 20
	cellPaddingY  = 16
	minRowHeight  = 64
	headerHeight  = 76
	fontSize      = 24
	headerFontSz  = 24
	titleFontSz   = 38
	sectionFontSz = 28
	titlePadding  = 110
	sectionGap    = 90
	footerPadding = 80
	minColWidth   = 110
	maxTitleWidth = 480.0
	margin        = 40.0
)

// Light theme colors
var (
	bgColor         = color.RGBA{R: 245, G: 247, B: 250, A: 255}
	titleColor      = color.RGBA{R: 30, G: 41, B: 59, A: 255}
	headerBgColor   = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	urgentBgColor   = color.RGBA{R: 220, G: 38, B: 38, A: 255}
	headerTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rowEvenColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rowOddColor     = color.RGBA{R: 241, G: 245, B: 249, A: 255}
	textColor       = color.RGBA{R: 30, G: 41, B: 59, A: 255}
	borderColor     = color.RGBA{R: 203, G: 213, B: 225, A: 255}
	footerColor     = color.RGBA{R: 100, G: 116, B: 139, A: 255}
)

// column of a rendered table.
type column struct {
	header   string
	maxWidth float64 // 0 means auto
}

// table is a titled grid of text cells.
type table struct {
	title    string
	headerBg color.Color
	columns  []column
	rows     [][]string

	// layout, filled by measure
	colWidths  []float64
	rowHeights []float64
}

func (t *table) width() float64 {
	var w float64
	for _, cw := range t.colWidths {
		w += cw
	}
	return w
}

func (t *table) height() float64 {
	h := float64(headerHeight)
	for _, rh := range t.rowHeights {
		h += rh
	}
	return h
}

// statusTable lists the count per status and per category.
func statusTable(st complaint.Stats) *table {
	t := &table{
		title:    "Complaints by status",
		headerBg: headerBgColor,
		columns:  []column{{header: "Status"}, {header: "Count"}},
	}
	for _, s := range complaint.Statuses() {
		t.rows = append(t.rows, []string{s.Label(), strconv.Itoa(st.Count(s))})
	}
	for _, c := range complaint.Categories() {
		t.rows = append(t.rows, []string{c.Label(), strconv.Itoa(st.ByCategory[c])})
	}
	t.rows = append(t.rows,
		[]string{fmt.Sprintf("Urgent (≤%d days)", complaint.UrgentWithinDays), strconv.Itoa(st.Urgent)},
		[]string{"Overdue", strconv.Itoa(st.Overdue)},
	)
	return t
}

// urgentTable lists the unresolved complaints that are due soon or overdue.
func urgentTable(urgent []complaint.Complaint) *table {
	t := &table{
		title:    "Due soon and overdue",
		headerBg: urgentBgColor,
		columns: []column{
			{header: "ID"},
			{header: "Title", maxWidth: maxTitleWidth},
			{header: "Category"},
			{header: "Status"},
			{header: "Submitted"},
			{header: "Days left"},
		},
	}
	for _, c := range urgent {
		days := "-"
		if c.DaysLeft != nil {
			days = strconv.Itoa(*c.DaysLeft)
		}
		t.rows = append(t.rows, []string{
			c.ID, c.Title, c.Category.Label(), c.Status.Label(), c.SubmissionDate, days,
		})
	}
	return t
}

// findFont locates a font file across Linux, macOS and Windows paths.
// It returns "" when none exists.
func findFont(bold bool) string {
	var candidates []string
	switch runtime.GOOS {
	case "windows":
		winRoot := os.Getenv("WINDIR")
		if winRoot == "" {
			winRoot = `C:\Windows`
		}
		if bold {
			candidates = []string{winRoot + `\Fonts\arialbd.ttf`}
		} else {
			candidates = []string{winRoot + `\Fonts\arial.ttf`}
		}
	case "darwin":
		if bold {
			candidates = []string{"/System/Library/Fonts/Supplemental/Arial Bold.ttf"}
		} else {
			candidates = []string{"/System/Library/Fonts/Supplemental/Arial.ttf"}
		}
	default:
		if bold {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
			}
		} else {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/usr/share/fonts/TTF/DejaVuSans.ttf",
				"/usr/share/fonts/dejavu/DejaVuSans.ttf",
			}
		}
	}
	if env := os.Getenv("SUMMARY_FONT"); env != "" && !bold {
		candidates = append([]string{env}, candidates...)
	}
	if env := os.Getenv("SUMMARY_FONT_BOLD"); env != "" && bold {
		candidates = append([]string{env}, candidates...)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FontsAvailable reports whether RenderStats can find its fonts.
func FontsAvailable() bool {
	return findFont(true) != "" && findFont(false) != ""
}

// measurer is the part of gg.Context that layout needs.
type measurer interface {
	MeasureString(s string) (float64, float64)
}

// wrapText splits text into multiple lines to fit within maxWidth.
func wrapText(dc measurer, text string, maxWidth float64) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	if maxWidth <= 0 {
		return []string{text}
	}
	if w, _ := dc.MeasureString(text); w <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	currentLine := words[0]
	for _, word := range words[1:] {
		testLine := currentLine + " " + word
		if tw, _ := dc.MeasureString(testLine); tw > maxWidth {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine = testLine
		}
	}
	return append(lines, currentLine)
}

// measure computes column widths with the header font and row heights with
// the body font.
func (t *table) measure(dc *gg.Context, boldFont, regularFont string) error {
	if err := dc.LoadFontFace(boldFont, headerFontSz); err != nil {
		return fmt.Errorf("failed to load bold font: %w", err)
	}
	t.colWidths = make([]float64, len(t.columns))
	for i, col := range t.columns {
		w, _ := dc.MeasureString(col.header)
		t.colWidths[i] = max(w+cellPaddingX*2+4, float64(minColWidth))
	}

	if err := dc.LoadFontFace(regularFont, fontSize); err != nil {
		return fmt.Errorf("failed to load regular font: %w", err)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			w, _ := dc.MeasureString(cell)
			t.colWidths[i] = max(t.colWidths[i], w+cellPaddingX*2+4)
		}
	}
	for i, col := range t.columns {
		if col.maxWidth > 0 && t.colWidths[i] > col.maxWidth {
			t.colWidths[i] = col.maxWidth
		}
	}

	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4
	t.rowHeights = make([]float64, len(t.rows))
	for r, row := range t.rows {
		maxLines := 1
		for i, cell := range row {
			if n := len(wrapText(dc, cell, t.colWidths[i]-cellPaddingX*2)); n > maxLines {
				maxLines = n
			}
		}
		t.rowHeights[r] = max(float64(maxLines)*lineSpacing+cellPaddingY*2, float64(minRowHeight))
	}
	return nil
}

// draw renders the table with its top-left corner at (x, y).
func (t *table) draw(dc *gg.Context, x, y float64, boldFont, regularFont string) {
	totalWidth := t.width()

	dc.LoadFontFace(boldFont, sectionFontSz)
	dc.SetColor(titleColor)
	dc.DrawString(t.title, x, y-24)

	// Header row
	dc.SetColor(t.headerBg)
	dc.DrawRoundedRectangle(x, y, totalWidth, float64(headerHeight), 16)
	dc.Fill()

	dc.LoadFontFace(boldFont, headerFontSz)
	dc.SetColor(headerTextColor)
	cx := x
	for i, col := range t.columns {
		dc.DrawStringAnchored(col.header, cx+t.colWidths[i]/2, y+float64(headerHeight)/2, 0.5, 0.5)
		cx += t.colWidths[i]
	}

	// Data rows
	dc.LoadFontFace(regularFont, fontSize)
	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4
	curY := y + float64(headerHeight)

	for r, row := range t.rows {
		rh := t.rowHeights[r]

		if r%2 == 0 {
			dc.SetColor(rowEvenColor)
		} else {
			dc.SetColor(rowOddColor)
		}
		dc.DrawRectangle(x, curY, totalWidth, rh)
		dc.Fill()

		dc.SetColor(borderColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(x, curY+rh, x+totalWidth, curY+rh)
		dc.Stroke()

		dc.SetColor(textColor)
		cx := x
		for i, cell := range row {
			wrapped := wrapText(dc, cell, t.colWidths[i]-cellPaddingX*2)
			startY := curY + (rh-float64(len(wrapped))*lineSpacing)/2 + lineH
			for l, line := range wrapped {
				dc.DrawString(line, cx+cellPaddingX, startY+float64(l)*lineSpacing)
			}
			cx += t.colWidths[i]
		}
		curY += rh
	}

	// Outer border and column separators
	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, y, totalWidth, t.height(), 16)
	dc.Stroke()

	dc.SetLineWidth(0.5)
	cx = x
	for i := 0; i < len(t.columns)-1; i++ {
		cx += t.colWidths[i]
		dc.DrawLine(cx, y+float64(headerHeight), cx, y+t.height())
		dc.Stroke()
	}
}

// RenderStats draws the status counts followed, when any exist, by the
// urgent complaints, and returns PNG bytes.
func RenderStats(st complaint.Stats, urgent []complaint.Complaint, now time.Time) ([]byte, error) {
	boldFont, regularFont := findFont(true), findFont(false)
	if boldFont == "" || regularFont == "" {
		return nil, fmt.Errorf("no usable font found; set SUMMARY_FONT and SUMMARY_FONT_BOLD")
	}

	tables := []*table{statusTable(st)}
	if len(urgent) > 0 {
		tables = append(tables, urgentTable(urgent))
	}

	// ---- Step 1: Measure ----
	tmpDC := gg.NewContext(1, 1)
	var contentWidth, contentHeight float64
	for i, t := range tables {
		if err := t.measure(tmpDC, boldFont, regularFont); err != nil {
			return nil, err
		}
		contentWidth = max(contentWidth, t.width())
		contentHeight += t.height()
		if i > 0 {
			contentHeight += sectionGap
		}
	}

	// ---- Step 2: Canvas size ----
	canvasWidth := max(contentWidth+margin*2, 900)
	canvasHeight := float64(titlePadding) + contentHeight + float64(footerPadding)

	// ---- Step 3: Draw ----
	dc := gg.NewContext(int(canvasWidth), int(canvasHeight))
	dc.SetColor(bgColor)
	dc.Clear()

	dc.LoadFontFace(boldFont, titleFontSz)
	dc.SetColor(titleColor)
	title := fmt.Sprintf("Complaint Summary  ·  %s", now.Format("02 Jan 2006, 03:04 PM"))
	dc.DrawStringAnchored(title, canvasWidth/2, float64(titlePadding)/2-8, 0.5, 0.5)

	y := float64(titlePadding)
	for _, t := range tables {
		t.draw(dc, margin, y, boldFont, regularFont)
		y += t.height() + sectionGap
	}

	dc.LoadFontFace(regularFont, 22)
	dc.SetColor(footerColor)
	footer := fmt.Sprintf("Total: %d complaint(s) · %d unresolved", st.Total,
		st.Count(complaint.StatusPending)+st.Count(complaint.StatusProcessing))
	dc.DrawStringAnchored(footer, canvasWidth/2, canvasHeight-30, 0.5, 0.5)

	// ---- Step 4: Encode to PNG ----
	return encodeImage(dc.Image())
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
