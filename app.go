package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/auth"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/browser"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/config"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/feedback"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/health"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/telegram"
)

// Login retry settings for the browser transport.
const (
	maxLoginRetries = 3
	loginRetryDelay = 5 * time.Second
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	store    *complaint.Store
	linker   *feedback.Linker
	monitor  *health.Monitor
	telegram *telegram.Client

	// browser transport only
	browser *browser.ContextHolder
	creds   auth.Credentials
}

// newApp wires the transport, the probe cache and the store from cfg.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:      cfg,
		monitor:  health.NewMonitor(nil),
		telegram: telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID),
	}

	api.SetHTTPClient(api.NewHTTPClient(cfg.HTTPTimeout, cfg.HTTPMaxConns))

	doer, err := a.newDoer()
	if err != nil {
		return nil, err
	}

	if cfg.DebugMode {
		log.Println("🐛 DEBUG MODE ENABLED - status updates will be logged, not sent")
	}
	authority := api.NewAuthority(doer, api.WithDryRun(cfg.DebugMode))

	a.linker = feedback.NewLinker(authority, newProbeCache(cfg))
	a.store = complaint.NewStore(authority,
		complaint.WithWorkers(cfg.WorkerPoolSize),
		complaint.WithLoadRetry(cfg.MaxLoadRetries, cfg.LoadRetryDelay),
	)
	return a, nil
}

func (a *app) newDoer() (api.Doer, error) {
	cfg := a.cfg
	if cfg.Transport != config.TransportBrowser {
		log.Printf("  → Using HTTP transport to %s", cfg.RemoteBaseURL)
		return api.NewHTTPDoer(cfg.RemoteBaseURL, cfg.RemoteAuthToken), nil
	}

	log.Println("📋 Initializing browser context...")
	a.browser = browser.NewContextHolder(browser.DefaultOptions)
	a.creds = auth.Credentials{
		LoginURL:   cfg.LoginURL,
		ConsoleURL: cfg.ConsoleURL,
		Username:   cfg.ConsoleUsername,
		Password:   cfg.ConsolePassword,
	}

	log.Println("🔐 Checking console session...")
	if err := auth.EnsureSession(a.browser.Get(), a.creds, maxLoginRetries, loginRetryDelay); err != nil {
		a.browser.Cancel()
		return nil, fmt.Errorf("browser session: %w", err)
	}
	return api.NewBrowserDoer(a.browser, cfg.RemoteBaseURL, loginPath(cfg.LoginURL)), nil
}

// newProbeCache returns a Redis-backed cache when REDIS_URL is set and
// reachable, else the in-memory one.
func newProbeCache(cfg *config.Config) feedback.ProbeCache {
	if cfg.RedisURL == "" {
		return feedback.NewExpiringMemoryCache(cfg.ProbeCacheTTL, nil)
	}
	client, err := feedback.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Redis probe cache unavailable, using memory: %v", err)
		return feedback.NewExpiringMemoryCache(cfg.ProbeCacheTTL, nil)
	}
	log.Println("  ✓ Using Redis probe cache")
	return feedback.NewRedisCache(client, cfg.ProbeCacheTTL)
}

// close releases the browser, if any.
func (a *app) close() {
	if a.browser != nil {
		a.browser.Cancel()
	}
}

// load runs one store load and records it on the monitor.
func (a *app) load(ctx context.Context) error {
	_, err := a.store.Load(ctx)
	a.monitor.RecordLoad(err)
	return err
}

// loginPath extracts the path of the login page, which is what the gate
// redirects to. It defaults to "/login".
func loginPath(loginURL string) string {
	u, err := url.Parse(loginURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/login"
	}
	return u.Path
}
