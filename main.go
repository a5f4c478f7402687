package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/config"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/console"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/feedback"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/server"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/storage"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/summary"
	"github.com/spf13/pflag"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"serve":       {"run the console API with periodic reloads", runServe},
	"list":        {"print one page of the filtered complaint list", runList},
	"set-status":  {"change the status of one complaint", runSetStatus},
	"bulk-status": {"change the status of several complaints", runBulkStatus},
	"feedback":    {"show, save or delete the feedback of a complaint", runFeedback},
	"stats":       {"print status and category counts", runStats},
	"summary":     {"render the statistics image", runSummary},
	"export":      {"write the filtered list as CSV", runExport},
	"digest":      {"send the urgent complaint digest to Telegram", runDigest},
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage()
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	log.Println("🚀 Starting complaint console...")
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	log.Println("✓ Configuration loaded")

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.run(ctx, a, args[1:])
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: complaints <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", name, commands[name].summary)
	}
}

// parseFlags parses args. A --help request prints the flag defaults and
// reports done.
func parseFlags(fs *pflag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return true, nil
		}
		return false, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return false, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return false, nil
}

// filterFlags registers the shared list filter flags.
type filterFlags struct {
	search   string
	status   string
	category string
}

func (f *filterFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&f.search, "search", "", "case-insensitive match on title, id and content")
	fs.StringVar(&f.status, "status-filter", "", "only complaints with this status")
	fs.StringVar(&f.category, "category", "", "only complaints in this category")
}

func (f *filterFlags) query() (console.Query, error) {
	q := console.Query{Search: f.search}
	if f.status != "" {
		s, err := complaint.ParseStatus(f.status)
		if err != nil {
			return q, err
		}
		q.Status = s
	}
	if f.category != "" {
		c, err := complaint.ParseCategory(f.category)
		if err != nil {
			return q, err
		}
		q.Category = c
	}
	return q, nil
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	port := fs.String("port", a.cfg.ListenPort, "listen port")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}

	log.Println("═══════════════════════════════════════════════════════════")
	if err := a.reloadWithRecovery(ctx); err != nil {
		log.Println("⚠️  Initial load failed, serving empty list until next refresh")
	}
	log.Println("═══════════════════════════════════════════════════════════")

	go a.refreshLoop(ctx, a.cfg.RefreshInterval)
	log.Printf("⏰ Refreshing every %v", a.cfg.RefreshInterval)

	srv := server.New(server.Config{
		PageSize:        a.cfg.PageSize,
		GateSecret:      a.cfg.GateSecret,
		GateRedirectURL: a.cfg.GateRedirectURL,
		AllowedOrigins:  a.cfg.AllowedOrigins,
	}, a.store, a.linker, a.monitor, a.telegram)
	return srv.Start(ctx, *port)
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	var filters filterFlags
	filters.add(fs)
	page := fs.Int("page", 1, "page number, 1-based")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	q, err := filters.query()
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	c := console.New(a.store, a.linker, a.cfg.PageSize)
	c.SetQuery(q)
	c.SetPage(*page)
	fmt.Println(console.RenderPage(c.Snapshot()))
	return nil
}

func runSetStatus(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("set-status", pflag.ContinueOnError)
	id := fs.String("id", "", "complaint display id, e.g. 2025-0042")
	status := fs.String("status", "", "pending, processing, completed or rejected")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	target, err := complaint.ParseStatus(*status)
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	if err := a.store.SetStatus(ctx, *id, target); err != nil {
		return err
	}
	log.Printf("✓ %s is now %s", *id, target.Label())
	return nil
}

func runBulkStatus(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("bulk-status", pflag.ContinueOnError)
	var filters filterFlags
	filters.add(fs)
	ids := fs.StringSlice("ids", nil, "comma-separated complaint ids")
	allFiltered := fs.Bool("all-filtered", false, "apply to every complaint matching the filters")
	status := fs.String("status", "", "target status")
	notify := fs.Bool("notify", false, "send the result to Telegram")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	target, err := complaint.ParseStatus(*status)
	if err != nil {
		return err
	}
	if len(*ids) == 0 && !*allFiltered {
		return fmt.Errorf("either --ids or --all-filtered is required")
	}
	q, err := filters.query()
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	var res complaint.BulkResult
	if *allFiltered {
		c := console.New(a.store, a.linker, a.cfg.PageSize)
		c.SetQuery(q)
		c.ToggleAll()
		log.Printf("📋 Updating %d filtered complaint(s) to %s", len(c.Selected()), target.Label())
		res = c.BulkSetSelected(ctx, target)
	} else {
		log.Printf("📋 Updating %d complaint(s) to %s", len(*ids), target.Label())
		res = a.store.BulkSetStatus(ctx, *ids, target)
	}
	a.monitor.RecordBulk(res)
	fmt.Println(console.RenderBulkResult(res))

	if *notify {
		if err := a.telegram.SendBulkReport(res); err != nil {
			log.Printf("⚠️  Failed to send bulk report: %v", err)
		}
	}
	if res.FailedCount() > 0 {
		return fmt.Errorf("%d of %d updates failed", res.FailedCount(), res.Total())
	}
	return nil
}

func runFeedback(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("feedback", pflag.ContinueOnError)
	id := fs.String("id", "", "complaint display id")
	var draft feedback.Draft
	fs.StringVar(&draft.Assignee, "assignee", "", "who answers the complaint")
	fs.StringVar(&draft.Title, "title", "", "feedback title (defaults to the complaint number)")
	fs.StringVar(&draft.Content, "content", "", "feedback text")
	del := fs.Bool("delete", false, "delete the existing feedback")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	c := console.New(a.store, a.linker, a.cfg.PageSize)
	lookup, err := c.OpenEditor(ctx, *id)
	if err != nil {
		return err
	}
	defer c.CloseEditor()

	switch {
	case *del:
		if !lookup.Present() {
			log.Printf("  → %s has no feedback", *id)
			return nil
		}
		if err := c.DeleteFeedback(ctx); err != nil {
			return err
		}
		log.Printf("✓ Deleted feedback of %s", *id)
	case strings.TrimSpace(draft.Content) != "" || draft.Assignee != "":
		fb, err := c.SaveFeedback(ctx, draft)
		if err != nil {
			return err
		}
		log.Printf("✓ Saved feedback %d for %s", fb.ID, *id)
		printFeedback(fb)
	case lookup.Present():
		printFeedback(*lookup.Feedback)
	default:
		fmt.Printf("%s has no feedback\n", *id)
	}
	return nil
}

func printFeedback(fb complaint.Feedback) {
	fmt.Printf("Feedback #%d\n", fb.ID)
	if fb.Assignee != "" {
		fmt.Printf("  Assignee: %s\n", fb.Assignee)
	}
	fmt.Printf("  Title:    %s\n", fb.Title)
	fmt.Printf("  Content:  %s\n", fb.Content)
	if !fb.UpdatedAt.IsZero() {
		fmt.Printf("  Updated:  %s\n", fb.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func runStats(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	fmt.Println(console.RenderStats(complaint.Summarize(a.store.Complaints())))
	return nil
}

func runSummary(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("summary", pflag.ContinueOnError)
	out := fs.String("out", "summary.png", "output PNG path")
	send := fs.Bool("send", false, "send the image to Telegram")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	all := a.store.Complaints()
	png, err := summary.RenderStats(complaint.Summarize(all), complaint.AttentionComplaints(all), a.store.Now())
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	if err := os.WriteFile(*out, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("✓ Summary written to %s", *out)

	if *send {
		caption := fmt.Sprintf("Complaint summary %s", a.store.Now().Format("2006-01-02 15:04"))
		if err := a.telegram.SendPhoto(png, caption); err != nil {
			return fmt.Errorf("send summary: %w", err)
		}
	}
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	var filters filterFlags
	filters.add(fs)
	out := fs.String("out", "complaints.csv", "output CSV path")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	q, err := filters.query()
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	return storage.WriteFile(*out, console.Filter(a.store.Complaints(), q))
}

func runDigest(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("digest", pflag.ContinueOnError)
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	urgent := complaint.AttentionComplaints(a.store.Complaints())
	log.Printf("📋 %d urgent or overdue complaint(s)", len(urgent))
	return a.telegram.SendUrgentDigest(urgent)
}
