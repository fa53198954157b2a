// Command certctl administers certificates through the admin API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"certportal/internal/adminclient"
)

const usage = `usage: certctl <command> [flags]

commands:
  list                              list certificates
  create  --user N --course N [--approved]
  approve <id>...                   set status approved
  revoke  <id>...                   set status pending
  delete  <id>...                   delete certificates

global flags:
  --url     admin API base URL (env CERTPORTAL_URL)
  --token   admin token (env ADMIN_API_TOKEN)
  --timeout request timeout
  --json    print JSON instead of a table`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type globals struct {
	url     string
	token   string
	timeout time.Duration
	json    bool
}

func (g *globals) bind(fs *flag.FlagSet) {
	fs.StringVar(&g.url, "url", envOr("CERTPORTAL_URL", "http://localhost:8080"), "admin API base URL")
	fs.StringVar(&g.token, "token", os.Getenv("ADMIN_API_TOKEN"), "admin token")
	fs.DurationVar(&g.timeout, "timeout", 10*time.Second, "request timeout")
	fs.BoolVar(&g.json, "json", false, "print JSON")
}

func (g *globals) client() *adminclient.Client {
	return adminclient.New(g.url, g.token, g.timeout)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]

	var g globals
	fs := flag.NewFlagSet("certctl "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	g.bind(fs)

	var err error
	switch cmd {
	case "list":
		if err = parse(fs, rest); err == nil {
			err = runList(ctx, g, stdout)
		}
	case "create":
		user := fs.Int64("user", 0, "learner id")
		course := fs.Int64("course", 0, "course id")
		approved := fs.Bool("approved", false, "create already approved")
		if err = parse(fs, rest); err == nil {
			err = runCreate(ctx, g, stdout, *user, *course, *approved)
		}
	case "approve", "revoke":
		parallel := fs.Int("parallel", 4, "concurrent requests")
		status := "approved"
		if cmd == "revoke" {
			status = "pending"
		}
		if err = parse(fs, rest); err == nil {
			err = runSetStatus(ctx, g, stdout, fs.Args(), status, *parallel)
		}
	case "delete":
		if err = parse(fs, rest); err == nil {
			err = runDelete(ctx, g, stdout, fs.Args())
		}
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s\n", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case isUsage(err):
		fmt.Fprintln(stderr, err)
		return 2
	default:
		fmt.Fprintln(stderr, "certctl:", err)
		return 1
	}
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func isUsage(err error) bool {
	_, ok := err.(usageError)
	return ok
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}
	return nil
}

func runList(ctx context.Context, g globals, stdout io.Writer) error {
	certs, err := g.client().List(ctx)
	if err != nil {
		return err
	}
	if g.json {
		return writeJSON(stdout, certs)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tCOURSE\tSTATUS\tISSUED\tLEARNER\tTITLE")
	for _, c := range certs {
		issued := "-"
		if c.IssuedAt != nil {
			issued = c.IssuedAt.UTC().Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n", c.ID, c.UserID, c.CourseID, c.Status, issued, c.Username, c.CourseTitle)
	}
	return tw.Flush()
}

func runCreate(ctx context.Context, g globals, stdout io.Writer, user, course int64, approved bool) error {
	if user <= 0 || course <= 0 {
		return usageError{msg: "create requires --user and --course"}
	}
	status := ""
	if approved {
		status = "approved"
	}
	cert, err := g.client().Create(ctx, user, course, status)
	if err != nil {
		return err
	}
	if g.json {
		return writeJSON(stdout, cert)
	}
	fmt.Fprintf(stdout, "created %s (%s)\n", cert.ID, cert.Status)
	return nil
}

func runSetStatus(ctx context.Context, g globals, stdout io.Writer, ids []string, status string, parallel int) error {
	if len(ids) == 0 {
		return usageError{msg: "at least one certificate id is required"}
	}
	tracker := adminclient.NewTracker()
	err := g.client().SetStatusAll(ctx, tracker, ids, status, parallel)
	report(stdout, tracker, "status", ids)
	return err
}

func runDelete(ctx context.Context, g globals, stdout io.Writer, ids []string) error {
	if len(ids) == 0 {
		return usageError{msg: "at least one certificate id is required"}
	}
	tracker := adminclient.NewTracker()
	client := g.client()
	var failed int
	for _, certID := range ids {
		if err := tracker.Do(ctx, adminclient.OpID("delete", certID), func(ctx context.Context) error {
			return client.Delete(ctx, certID)
		}); err != nil {
			failed++
		}
	}
	report(stdout, tracker, "delete", ids)
	if failed > 0 {
		return fmt.Errorf("%d of %d deletes failed", failed, len(ids))
	}
	return nil
}

// report prints one line per certificate in the order given.
func report(w io.Writer, tracker *adminclient.Tracker, verb string, ids []string) {
	for _, certID := range ids {
		st := tracker.State(adminclient.OpID(verb, certID))
		line := certID + "\t" + string(st.Phase)
		if st.Err != nil {
			line += "\t" + st.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
