// Package auth handles the admin console's login gate for the browser
// transport.
//
// This package provides:
//   - Login automation against the console login form
//   - Session expiry detection
//   - EnsureSession, which logs in only when the gate redirected
package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"

	"github.com/chromedp/chromedp"
)

// Selectors locate the login form fields.
type Selectors struct {
	Username string
	Password string
	Submit   string
}

// DefaultSelectors match the console's login form.
var DefaultSelectors = Selectors{
	Username: `input[name="email"]`,
	Password: `input[name="password"]`,
	Submit:   `button[type="submit"]`,
}

// Credentials describe how to reach and pass the login gate.
type Credentials struct {
	LoginURL   string
	ConsoleURL string // page to land on after login; fetches run from here
	Username   string
	Password   string
	Selectors  Selectors // zero value means DefaultSelectors

	// Settle is how long to wait for the post-login redirect (default 3s).
	Settle time.Duration
}

// Validate checks that the credentials can drive a login.
func (c Credentials) Validate() error {
	if c.LoginURL == "" {
		return errors.NewValidationFailedError("LOGIN_URL", "login page URL is required")
	}
	if c.ConsoleURL == "" {
		return errors.NewValidationFailedError("CONSOLE_URL", "console page URL is required")
	}
	if c.Username == "" || c.Password == "" {
		return errors.NewValidationFailedError("credentials", "username and password are required")
	}
	return nil
}

func (c Credentials) withDefaults() Credentials {
	if c.Selectors == (Selectors{}) {
		c.Selectors = DefaultSelectors
	}
	if c.Settle <= 0 {
		c.Settle = 3 * time.Second
	}
	return c
}

// Login fills and submits the console login form, then opens the console
// page.
//
// Returns LoginFailedError for any step failure.
func Login(ctx context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	creds = creds.withDefaults()
	sel := creds.Selectors

	log.Println("  → Navigating to login page...")
	err := chromedp.Run(ctx,
		chromedp.Navigate(creds.LoginURL),
		chromedp.WaitVisible(sel.Username, chromedp.ByQuery),
	)
	if err != nil {
		log.Println("  ✗ Failed to load login page:", err)
		return errors.NewLoginFailedError("failed to load login page", err)
	}
	log.Println("  ✓ Login page loaded")

	log.Println("  → Submitting login credentials...")
	err = chromedp.Run(ctx,
		chromedp.SendKeys(sel.Username, creds.Username, chromedp.ByQuery),
		chromedp.SendKeys(sel.Password, creds.Password, chromedp.ByQuery),
		chromedp.Click(sel.Submit, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.Sleep(creds.Settle),
	)
	if err != nil {
		log.Println("  ✗ Failed to submit login form:", err)
		return errors.NewLoginFailedError("failed to submit login form", err)
	}

	if err := chromedp.Run(ctx, chromedp.Navigate(creds.ConsoleURL)); err != nil {
		return errors.NewLoginFailedError("failed to open console page", err)
	}
	if IsSessionExpired(ctx, creds.Selectors) {
		return errors.NewLoginFailedError("console redirected back to the login page", nil)
	}

	log.Println("  ✓ Login successful")
	return nil
}

// IsSessionExpired reports whether the current page is the login form, which
// is where the gate sends an unauthenticated tab.
func IsSessionExpired(ctx context.Context, sel Selectors) bool {
	if sel == (Selectors{}) {
		sel = DefaultSelectors
	}

	var loginFormExists bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(loginFormProbe(sel.Username), &loginFormExists),
	)
	return err == nil && loginFormExists
}

// EnsureSession opens the console page and logs in only if the gate
// redirected to the login form. Login is retried up to attempts times.
func EnsureSession(ctx context.Context, creds Credentials, attempts int, delay time.Duration) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	creds = creds.withDefaults()

	if err := chromedp.Run(ctx, chromedp.Navigate(creds.ConsoleURL)); err != nil {
		return errors.NewLoginFailedError("failed to open console page", err)
	}
	if !IsSessionExpired(ctx, creds.Selectors) {
		log.Println("  ✓ Console session is valid")
		return nil
	}

	log.Println("  ⚠️  Console session expired, logging in...")
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = Login(ctx, creds); lastErr == nil {
			return nil
		}
		log.Printf("⚠️  Login attempt %d/%d failed: %v", attempt, attempts, lastErr)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}

func loginFormProbe(selector string) string {
	return fmt.Sprintf("document.querySelector(%q) !== null", selector)
}
