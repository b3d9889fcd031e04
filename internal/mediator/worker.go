package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wesm/tempbox/internal/tempmail"
)

// DefaultPageSize is the number of messages fetched per page.
const DefaultPageSize = 50

// Worker executes requests from the command queue one at a time.
type Worker struct {
	api      tempmail.API
	commands *Queue[Request]
	replies  *Queue[Reply]
	failures *Queue[Failure]
	pageSize int
	logger   *slog.Logger
	observer func(Request)
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithPageSize sets how many messages one page holds.
func WithPageSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.pageSize = n
		}
	}
}

// WithLogger sets the logger for the worker.
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithObserver registers fn to be called with each request just before it
// executes.
func WithObserver(fn func(Request)) WorkerOption {
	return func(w *Worker) {
		w.observer = fn
	}
}

// NewWorker creates a worker that reads commands and writes replies and
// failures. Failures may be nil, in which case failed requests are only logged.
func NewWorker(api tempmail.API, commands *Queue[Request], replies *Queue[Reply], failures *Queue[Failure], opts ...WorkerOption) *Worker {
	w := &Worker{
		api:      api,
		commands: commands,
		replies:  replies,
		failures: failures,
		pageSize: DefaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PageSize returns the configured page size.
func (w *Worker) PageSize() int {
	return w.pageSize
}

// Run processes requests until the command queue is closed and drained, or
// ctx is canceled. Only one request is ever in flight.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Debug("worker started", "page_size", w.pageSize)
	for {
		req, err := w.commands.Pop(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				w.logger.Debug("worker stopped", "reason", "queue closed")
				return nil
			}
			return err
		}
		w.handle(ctx, req)
	}
}

func (w *Worker) handle(ctx context.Context, req Request) {
	if w.observer != nil {
		w.observer(req)
	}

	op := req.Command.Op()
	start := time.Now()
	resp, err := w.Execute(ctx, req.Command)
	if err != nil {
		w.logger.Error("request failed", "op", op, "id", uint64(req.ID), "error", err)
		if w.failures != nil {
			if perr := w.failures.Push(Failure{ID: req.ID, Op: op, Err: err}); perr != nil {
				w.logger.Warn("drop failure", "op", op, "id", uint64(req.ID), "error", perr)
			}
		}
		return
	}

	w.logger.Debug("request done", "op", op, "id", uint64(req.ID), "duration", time.Since(start))
	if perr := w.replies.Push(Reply{ID: req.ID, Response: resp}); perr != nil {
		w.logger.Warn("drop reply", "op", op, "id", uint64(req.ID), "error", perr)
	}
}

// Execute performs the API call for cmd and maps the result to a Response.
func (w *Worker) Execute(ctx context.Context, cmd Command) (Response, error) {
	switch c := cmd.(type) {
	case FetchDomains:
		domains, err := w.api.Domains(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch domains: %w", err)
		}
		return Domains{Domains: domains}, nil

	case FetchEmails:
		mb, err := w.api.Mailbox(c.Address)
		if err != nil {
			return nil, err
		}
		emails, err := mb.Emails(ctx, w.pageSize, 0)
		if err != nil {
			return nil, fmt.Errorf("fetch emails for %s: %w", c.Address, err)
		}
		return Emails{Emails: emails}, nil

	case FetchMoreEmails:
		mb, err := w.api.Mailbox(c.Address)
		if err != nil {
			return nil, err
		}
		offset := (c.Offset + 1) * w.pageSize
		emails, err := mb.Emails(ctx, w.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch emails for %s at offset %d: %w", c.Address, offset, err)
		}
		return EmailsMore{Emails: emails}, nil

	case FetchEmail:
		email, err := w.api.Email(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch email %s: %w", c.ID, err)
		}
		return Email{Email: *email}, nil

	case CountEmails:
		mb, err := w.api.Mailbox(c.Address)
		if err != nil {
			return nil, err
		}
		n, err := mb.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count emails for %s: %w", c.Address, err)
		}
		return Count{Count: n}, nil

	case DeleteEmail:
		if err := w.api.DeleteEmail(ctx, c.ID); err != nil {
			return nil, fmt.Errorf("delete email %s: %w", c.ID, err)
		}
		return EmailDeleted{Index: c.Index}, nil

	case DeleteAllEmails:
		mb, err := w.api.Mailbox(c.Address)
		if err != nil {
			return nil, err
		}
		n, err := mb.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("delete all emails for %s: %w", c.Address, err)
		}
		w.logger.Info("inbox emptied", "address", c.Address, "deleted", n)
		return EmailsDeleted{}, nil

	case GetAttachments:
		atts, err := w.api.Attachments(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("get attachments for %s: %w", c.ID, err)
		}
		return Attachments{Attachments: atts}, nil

	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
}
