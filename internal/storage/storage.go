// Package storage exports complaint snapshots to CSV.
//
// Performance optimizations:
//   - Buffered I/O for file exports
//   - One csv.Writer flush per export
package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
)

// bufferSize for buffered file I/O (64KB)
const bufferSize = 64 * 1024

// Header is the first row of every export.
var Header = []string{
	"id", "sequence", "title", "category", "status", "user",
	"submitted", "deadline", "days_left", "feedback_id", "feedback_content",
}

// Row converts one complaint to its CSV fields. Absent optional values are
// written as empty fields.
func Row(c complaint.Complaint) []string {
	deadline, daysLeft := "", ""
	if c.Deadline != nil {
		deadline = c.Deadline.Format(complaint.DateLayout)
	}
	if c.DaysLeft != nil {
		daysLeft = strconv.Itoa(*c.DaysLeft)
	}

	feedbackID, feedbackContent := "", ""
	if c.Feedback != nil {
		feedbackID = strconv.FormatInt(c.Feedback.ID, 10)
		feedbackContent = c.Feedback.Content
	}

	return []string{
		c.ID,
		strconv.Itoa(c.Sequence),
		c.Title,
		c.Category.Label(),
		c.Status.Label(),
		c.UserName,
		c.SubmissionDate,
		deadline,
		daysLeft,
		feedbackID,
		feedbackContent,
	}
}

// ExportCSV writes a header row followed by one row per complaint.
func ExportCSV(w io.Writer, complaints []complaint.Complaint) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range complaints {
		if err := cw.Write(Row(c)); err != nil {
			return fmt.Errorf("write csv row %s: %w", c.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile exports complaints to path, replacing any existing file.
func WriteFile(path string, complaints []complaint.Complaint) error {
	start := time.Now()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriterSize(file, bufferSize)
	if err := ExportCSV(writer, complaints); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	log.Printf("  ✓ Exported %d complaint(s) to %s (%v)", len(complaints), path, time.Since(start))
	return nil
}
