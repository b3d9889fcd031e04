package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/wesm/tempbox/internal/mediator"
	"github.com/wesm/tempbox/internal/session"
	"github.com/wesm/tempbox/internal/store"
	"github.com/wesm/tempbox/internal/tempmail"
)

// openStore opens the local database and brings its schema up to date.
func openStore() (*store.Store, error) {
	s, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := s.InitSchema(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// newClient creates an API client from the loaded configuration.
func newClient(l *slog.Logger) *tempmail.Client {
	return tempmail.NewClient(cfg.API.BaseURL,
		tempmail.WithRateLimit(cfg.API.RateLimitQPS),
		tempmail.WithLogger(l))
}

// execute runs one command through the worker's dispatch table without the
// queues. CLI commands are one-shot, so there is nothing to pipeline.
func execute(ctx context.Context, c mediator.Command) (mediator.Response, error) {
	w := mediator.NewWorker(newClient(logger), nil, nil, nil,
		mediator.WithPageSize(cfg.API.PageSize),
		mediator.WithLogger(logger))
	return w.Execute(ctx, c)
}

// loadIdentity returns the saved mailbox name and domain. When nothing is
// saved yet a name is generated and persisted so later commands agree.
func loadIdentity(s *store.Store) (store.Preferences, error) {
	p, err := s.LoadPreferences()
	if err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}
	changed := false
	if p.Name == "" {
		p.Name = session.GenerateName(cfg.Mailbox.NameLength)
		changed = true
	}
	if p.Domain == "" {
		p.Domain = cfg.Mailbox.DefaultDomain
		changed = true
	}
	if changed {
		if err := saveIdentity(s, p); err != nil {
			return p, err
		}
	}
	return p, nil
}

// resolveAddress returns the address given on the command line, or the saved
// one when args is empty.
func resolveAddress(args []string) (string, error) {
	if len(args) > 0 {
		if err := tempmail.ValidateAddress(args[0]); err != nil {
			return "", err
		}
		return args[0], nil
	}

	s, err := openStore()
	if err != nil {
		return "", err
	}
	defer s.Close()

	p, err := loadIdentity(s)
	if err != nil {
		return "", err
	}
	return p.Name + "@" + p.Domain, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var headerStyle = lipgloss.NewStyle().Bold(true)

// writeTable aligns rows into columns. The first row is the header, styled
// when out is a terminal.
func writeTable(out io.Writer, rows [][]string) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	w.Flush()

	head, rest, _ := strings.Cut(buf.String(), "\n")
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		head = headerStyle.Render(strings.TrimRight(head, " "))
	}
	fmt.Fprintln(out, head)
	fmt.Fprint(out, rest)
}
