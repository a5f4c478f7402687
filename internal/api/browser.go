package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ContextSource yields the current browser context. browser.ContextHolder
// satisfies it.
type ContextSource interface {
	Get() context.Context
}

// BrowserDoer sends requests with fetch() inside an authenticated console tab,
// so the session cookies set by the login flow ride along automatically.
//
// A request that ends on the login page means the external gate redirected:
// it is reported as SessionExpiredError and the caller is expected to log in
// again (see auth.EnsureSession).
type BrowserDoer struct {
	Source    ContextSource
	BaseURL   string
	LoginPath string // e.g. "/login"
}

// NewBrowserDoer creates a BrowserDoer for baseURL.
func NewBrowserDoer(source ContextSource, baseURL, loginPath string) *BrowserDoer {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &BrowserDoer{
		Source:    source,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		LoginPath: loginPath,
	}
}

// fetchOutcome is what the injected script returns.
type fetchOutcome struct {
	Status     int    `json:"status"`
	Body       string `json:"body"`
	Redirected bool   `json:"redirected"`
	URL        string `json:"url"`
	Error      string `json:"error"`
}

// fetchScript builds the async fetch call. Every interpolated value is a JSON
// literal, so arbitrary bodies cannot break out of the script.
func fetchScript(url, method string, body []byte) (string, error) {
	urlJSON, err := json.Marshal(url)
	if err != nil {
		return "", err
	}
	methodJSON, err := json.Marshal(method)
	if err != nil {
		return "", err
	}
	bodyJSON := []byte("null")
	if body != nil {
		if bodyJSON, err = json.Marshal(string(body)); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf(`
		(async function() {
			try {
				const init = {
					method: %s,
					credentials: 'include',
					headers: {
						'Accept': 'application/json',
						'Content-Type': 'application/json',
						'X-Requested-With': 'XMLHttpRequest'
					}
				};
				const body = %s;
				if (body !== null) init.body = body;

				const response = await fetch(%s, init);
				return {
					status: response.status,
					body: await response.text(),
					redirected: response.redirected,
					url: response.url,
					error: ''
				};
			} catch (error) {
				return { status: 0, body: '', redirected: false, url: '', error: error.message };
			}
		})()
	`, methodJSON, bodyJSON, urlJSON), nil
}

// Do runs the request inside the browser context.
func (d *BrowserDoer) Do(ctx context.Context, req Request) (*Response, error) {
	script, err := fetchScript(d.BaseURL+req.Path, req.Method, req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch script: %w", err)
	}

	// Once issued, the fetch runs to completion in the tab; ctx only gates
	// whether it is issued at all.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out fetchOutcome
	err = chromedp.Run(d.Source.Get(),
		chromedp.Evaluate(script, &out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute fetch: %w", err)
	}

	if out.Error != "" {
		return nil, fmt.Errorf("fetch failed: %s", out.Error)
	}

	if out.Redirected && d.isLoginURL(out.URL) {
		return nil, errors.NewSessionExpiredError("redirected to " + out.URL)
	}

	return &Response{StatusCode: out.Status, Body: []byte(out.Body)}, nil
}

func (d *BrowserDoer) isLoginURL(url string) bool {
	path := url
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
		if j := strings.Index(path, "/"); j >= 0 {
			path = path[j:]
		} else {
			path = "/"
		}
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.HasPrefix(path, d.LoginPath)
}
