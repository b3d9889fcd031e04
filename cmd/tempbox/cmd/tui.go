package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/wesm/tempbox/internal/fileutil"
	"github.com/wesm/tempbox/internal/mediator"
	"github.com/wesm/tempbox/internal/scheduler"
	"github.com/wesm/tempbox/internal/session"
	"github.com/wesm/tempbox/internal/store"
	"github.com/wesm/tempbox/internal/tui"
	"golang.org/x/sync/errgroup"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive inbox",
	Long: `Open an interactive terminal inbox for the saved address.

Inbox:
  ↑/k, ↓/j    Move up/down
  Enter       Open message
  d / D       Delete message / delete all
  r           Refresh
  m           Load more

Message:
  Esc         Back to inbox
  a           Load attachments
  ←/→         Select attachment
  o / p       Open attachment / preview image
  x           Close newest image preview

Address:
  e           Edit name
  n           New random name
  Tab         Next domain
  c           Copy address
  q           Quit

Network calls run on a single background worker; the screen never waits on
them. The log is written to tempbox.log in the home directory.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Log to a file so output never corrupts the screen.
	logFile, err := fileutil.OpenPrivate(cfg.LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	tuiLogger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	prefs, err := loadIdentity(s)
	if err != nil {
		return err
	}
	if err := s.RecordAddress(prefs.Name+"@"+prefs.Domain, time.Now()); err != nil {
		tuiLogger.Warn("record address", "error", err)
	}

	commands := mediator.NewQueue[mediator.Request]()
	replies := mediator.NewQueue[mediator.Reply]()
	failures := mediator.NewQueue[mediator.Failure]()
	worker := mediator.NewWorker(newClient(tuiLogger), commands, replies, failures,
		mediator.WithPageSize(cfg.API.PageSize),
		mediator.WithLogger(tuiLogger))

	sess := session.New(session.Options{
		Name:              prefs.Name,
		Domain:            prefs.Domain,
		AttachmentBaseURL: cfg.AttachmentBaseURL(),
		Commands:          commands,
		Replies:           replies,
		Failures:          failures,
		Logger:            tuiLogger,
	})
	if err := sess.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	model := tui.New(sess, tui.Options{
		FrameInterval: cfg.FrameInterval(),
		NameLength:    cfg.Mailbox.NameLength,
		Store:         s,
		Version:       Version,
		Logger:        tuiLogger,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	sched, err := newTUIScheduler(program, tuiLogger)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	tuiLogger.Info("tui starting", "address", sess.Address(), "api", cfg.API.BaseURL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := worker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		// Whatever ends the program also stops the worker.
		defer cancel()
		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	})
	runErr := g.Wait()

	// The program has exited, so the session is no longer shared.
	final := store.Preferences{Name: sess.Name(), Domain: sess.Domain()}
	if err := s.SavePreferences(final); err != nil {
		tuiLogger.Error("save preferences", "error", err)
	}
	tuiLogger.Info("tui stopped", "address", sess.Address())

	if runErr != nil {
		return runErr
	}
	return cmd.Context().Err()
}

// newTUIScheduler schedules autosave and the optional refresh. Jobs never
// touch the session; they send messages the model handles on its own loop.
func newTUIScheduler(program *tea.Program, l *slog.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New().WithLogger(l)

	if iv := cfg.AutosaveInterval(); iv > 0 {
		err := sched.AddJob("autosave", scheduler.Every(iv), func(ctx context.Context) error {
			program.Send(tui.SaveMsg{})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("schedule autosave: %w", err)
		}
	}

	if expr := cfg.Refresh.Schedule; expr != "" {
		err := sched.AddJob("refresh", expr, func(ctx context.Context) error {
			program.Send(tui.RefreshMsg{})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("refresh.schedule: %w", err)
		}
	}
	return sched, nil
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
