// Package telegram sends console notifications through the Telegram bot API.
//
// A nil *Client means Telegram is not configured: every method logs and
// returns nil, so callers never need to check.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
)

// DefaultBaseURL is the public bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// maxListed caps the ids and complaints listed in one message.
const maxListed = 20

// Client represents a Telegram bot client.
type Client struct {
	BotToken   string
	ChatID     string
	BaseURL    string // DefaultBaseURL when empty
	HTTPClient *http.Client
}

// Message represents a Telegram message for sending.
type Message struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse is the bot API's reply envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// NewClient creates a Telegram client, or returns nil if either setting is
// missing.
func NewClient(botToken, chatID string) *Client {
	if botToken == "" || chatID == "" {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set. Telegram notifications disabled.")
		if botToken == "" {
			log.Println("   → Missing: TELEGRAM_BOT_TOKEN")
		}
		if chatID == "" {
			log.Println("   → Missing: TELEGRAM_CHAT_ID")
		}
		return nil
	}

	log.Println("✓ Telegram configured successfully")
	return &Client{
		BotToken:   botToken,
		ChatID:     chatID,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) endpoint(method string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(base, "/"), c.BotToken, method)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// doRequest posts body to a bot API method and checks the reply.
func (c *Client) doRequest(method, contentType string, body io.Reader) error {
	resp, err := c.httpClient().Post(c.endpoint(method), contentType, body)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("Telegram API error: %s", result.Description)
	}
	return nil
}

// sendMessage sends an HTML message to the configured chat.
func (c *Client) sendMessage(text string) error {
	payload, err := json.Marshal(Message{
		ChatID:                c.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.doRequest("sendMessage", "application/json", bytes.NewReader(payload))
}

// SendBulkReport reports the outcome of a bulk status change.
func (c *Client) SendBulkReport(res complaint.BulkResult) error {
	if c == nil {
		log.Println("   ⚠️  Telegram not configured, skipping bulk report")
		return nil
	}

	log.Println("   📨 Sending bulk report to Telegram...")
	if err := c.sendMessage(FormatBulkReport(res)); err != nil {
		return fmt.Errorf("failed to send bulk report: %w", err)
	}
	log.Println("   ✓ Bulk report sent")
	return nil
}

// SendUrgentDigest lists the complaints that are due soon or overdue.
func (c *Client) SendUrgentDigest(urgent []complaint.Complaint) error {
	if c == nil {
		log.Println("   ⚠️  Telegram not configured, skipping urgent digest")
		return nil
	}

	log.Println("   📨 Sending urgent digest to Telegram...")
	if err := c.sendMessage(FormatUrgentDigest(urgent)); err != nil {
		return fmt.Errorf("failed to send urgent digest: %w", err)
	}
	log.Println("   ✓ Urgent digest sent")
	return nil
}

// SendCriticalAlert sends a critical failure alert to Telegram.
func (c *Client) SendCriticalAlert(errorType, errorMsg string, retryCount int) error {
	if c == nil {
		log.Println("   ⚠️  Telegram not configured, skipping critical alert")
		return nil
	}

	log.Println("   🚨 Sending critical alert to Telegram...")

	message := fmt.Sprintf(
		"🚨 <b>CRITICAL ALERT - COMPLAINT CONSOLE</b>\n\n"+
			"<b>Error Type:</b> %s\n"+
			"<b>Error Message:</b> %s\n"+
			"<b>Retry Attempts:</b> %d\n"+
			"<b>Timestamp:</b> %s\n\n"+
			"⚠️ <b>Action Required:</b> Please check the service immediately.",
		html.EscapeString(errorType),
		html.EscapeString(errorMsg),
		retryCount,
		time.Now().Format("2006-01-02 15:04:05"),
	)

	if err := c.sendMessage(message); err != nil {
		return fmt.Errorf("failed to send Telegram alert: %w", err)
	}

	log.Println("   ✓ Critical alert successfully sent to Telegram")
	return nil
}

// SendPhoto uploads a PNG with an HTML caption.
func (c *Client) SendPhoto(png []byte, caption string) error {
	if c == nil {
		log.Println("   ⚠️  Telegram not configured, skipping photo")
		return nil
	}

	log.Println("   📨 Sending summary image to Telegram...")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{"chat_id": c.ChatID, "caption": caption, "parse_mode": "HTML"}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to build photo form: %w", err)
		}
	}
	part, err := form.CreateFormFile("photo", "summary.png")
	if err != nil {
		return fmt.Errorf("failed to build photo form: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("failed to build photo form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("failed to build photo form: %w", err)
	}

	if err := c.doRequest("sendPhoto", form.FormDataContentType(), &body); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	log.Println("   ✓ Summary image sent")
	return nil
}

// FormatBulkReport renders a bulk result as an HTML message.
func FormatBulkReport(res complaint.BulkResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Bulk status change → %s</b>\n\n", html.EscapeString(res.Status.Label()))
	fmt.Fprintf(&b, "✅ Succeeded: %d\n", res.SucceededCount())
	fmt.Fprintf(&b, "❌ Failed: %d\n", res.FailedCount())

	if len(res.Failed) > 0 {
		b.WriteString("\n<b>Failures:</b>\n")
		for i, f := range res.Failed {
			if i == maxListed {
				fmt.Fprintf(&b, "… and %d more\n", len(res.Failed)-maxListed)
				break
			}
			fmt.Fprintf(&b, "• <code>%s</code> %s\n", html.EscapeString(f.ID), html.EscapeString(f.Err.Error()))
		}
	}
	return b.String()
}

// FormatUrgentDigest renders the urgent complaints as an HTML message.
func FormatUrgentDigest(urgent []complaint.Complaint) string {
	if len(urgent) == 0 {
		return "✅ <b>No urgent complaints</b>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏰ <b>%d complaint(s) overdue or due within %d days</b>\n\n", len(urgent), complaint.UrgentWithinDays)
	for i, c := range urgent {
		if i == maxListed {
			fmt.Fprintf(&b, "… and %d more\n", len(urgent)-maxListed)
			break
		}
		due := "no deadline"
		switch {
		case c.DaysLeft == nil:
		case *c.DaysLeft < 0:
			due = fmt.Sprintf("%d days overdue", -*c.DaysLeft)
		default:
			due = fmt.Sprintf("%d days left", *c.DaysLeft)
		}
		fmt.Fprintf(&b, "• <code>%s</code> %s (%s, %s)\n",
			html.EscapeString(c.ID), html.EscapeString(c.Title), html.EscapeString(c.Status.Label()), due)
	}
	return b.String()
}
