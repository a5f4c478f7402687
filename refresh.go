package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/auth"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
)

// reloadWithRecovery implements the serve loop's error handling:
//
//	Load fails
//	  ├─ not a session problem → log & return
//	  └─ session expired (browser transport)
//	      ├─ re-login succeeds → reload
//	      └─ re-login fails
//	          ├─ restart browser
//	          ├─ log in again → reload
//	          └─ still failing → Telegram alert
func (a *app) reloadWithRecovery(ctx context.Context) error {
	err := a.load(ctx)
	if err == nil {
		return nil
	}

	if !errors.IsSessionExpired(err) || a.browser == nil {
		log.Println("⚠️  Error loading complaints:", err)
		if a.monitor.ConsecutiveFailures() == a.cfg.MaxLoadRetries {
			a.alert("Complaint Load Failure", err, a.monitor.ConsecutiveFailures())
		}
		return err
	}

	log.Println("🔄 Session expired, attempting re-login...")
	loginErr := auth.Login(a.browser.Get(), a.creds)
	if loginErr == nil {
		log.Println("✓ Re-login successful, reloading...")
		return a.load(ctx)
	}

	log.Println("❌ Re-login failed:", loginErr)
	log.Println("🔄 Restarting browser context...")
	browserCtx := a.browser.Restart()

	loginErr = auth.EnsureSession(browserCtx, a.creds, maxLoginRetries, loginRetryDelay)
	if loginErr == nil {
		log.Println("✓ Login successful after browser restart, reloading...")
		return a.load(ctx)
	}

	log.Println("❌ All login attempts failed:", loginErr)
	a.alert("Login Failure After Browser Restart", loginErr, maxLoginRetries+1)
	return fmt.Errorf("all retry attempts failed: %w", loginErr)
}

func (a *app) alert(kind string, err error, retries int) {
	log.Println("🚨 Sending critical failure alert...")
	if alertErr := a.telegram.SendCriticalAlert(kind, err.Error(), retries); alertErr != nil {
		log.Println("⚠️  Failed to send Telegram alert:", alertErr)
	}
}

// refreshLoop reloads every interval until ctx is cancelled.
func (a *app) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Println("📬 Refreshing complaints list...")
			log.Println("⏰ Time:", time.Now().Format("2006-01-02 15:04:05"))
			_ = a.reloadWithRecovery(ctx)
			log.Println("═══════════════════════════════════════════════════════════")
		}
	}
}
