package sync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/draytht/lvsk-calendar-extended/internal/logging"
)

// EventKind identifies what the worker is reporting.
type EventKind int

const (
	// SyncStarted opens a full pass.
	SyncStarted EventKind = iota
	// SyncComplete closes a full pass and carries the totals.
	SyncComplete
	// SyncError reports one failed remote call; the pass continues.
	SyncError
	// AuthRequired means a pass was skipped because no usable
	// credential could be established.
	AuthRequired
	// AuthComplete means the authorization code exchange succeeded.
	AuthComplete
)

func (k EventKind) String() string {
	switch k {
	case SyncStarted:
		return "sync_started"
	case SyncComplete:
		return "sync_complete"
	case SyncError:
		return "sync_error"
	case AuthRequired:
		return "auth_required"
	case AuthComplete:
		return "auth_complete"
	default:
		return "unknown"
	}
}

// Event is one progress report on the worker's event stream. Pulled and
// Pushed are set on SyncComplete, Message on SyncError.
type Event struct {
	Kind    EventKind
	Pulled  int
	Pushed  int
	Message string
}

type commandKind int

const (
	cmdSyncNow commandKind = iota
	cmdPushDirty
	cmdExchangeCode
	cmdShutdown
)

type command struct {
	kind commandKind
	code string
}

// Authenticator is the slice of the token manager the worker gates
// passes through.
type Authenticator interface {
	EnsureAuthenticated(ctx context.Context) (*oauth2.Token, error)
	ExchangeCode(ctx context.Context, code string) error
}

// Options tunes the worker loop.
type Options struct {
	// Interval between automatic passes. Zero falls back to five
	// minutes.
	Interval time.Duration
	// AutoSync enables the periodic timer.
	AutoSync bool
}

// Worker serializes sync passes behind a single command loop, so a
// manual request and a timer tick can never run concurrently. Progress
// goes out on a buffered event stream.
type Worker struct {
	rec  *Reconciler
	auth Authenticator
	log  logging.Logger
	opts Options

	cmds   chan command
	events chan Event
}

func NewWorker(rec *Reconciler, auth Authenticator, log logging.Logger, opts Options) *Worker {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	return &Worker{
		rec:    rec,
		auth:   auth,
		log:    log,
		opts:   opts,
		cmds:   make(chan command, 32),
		events: make(chan Event, 64),
	}
}

// Events is the stream of progress reports. It is closed when Run
// returns; requests submitted after that are never serviced.
func (w *Worker) Events() <-chan Event {
	return w.events
}

// SyncNow requests one full pass.
func (w *Worker) SyncNow() {
	w.send(command{kind: cmdSyncNow})
}

// PushDirty requests a push-only pass, used after a single local edit
// for low-latency propagation. No start/complete events surround it.
func (w *Worker) PushDirty() {
	w.send(command{kind: cmdPushDirty})
}

// ExchangeCode hands the OAuth callback code to the worker; on success
// the worker runs a full pass right away.
func (w *Worker) ExchangeCode(code string) {
	w.send(command{kind: cmdExchangeCode, code: code})
}

// Shutdown asks the loop to exit.
func (w *Worker) Shutdown() {
	w.send(command{kind: cmdShutdown})
}

func (w *Worker) send(c command) {
	select {
	case w.cmds <- c:
	default:
		w.log.Warn(context.Background(), "command dropped, worker backed up")
	}
}

// Run executes the loop until Shutdown or ctx cancellation. The first
// timer tick fires one full interval after start, so a fresh process
// does not immediately duplicate a startup sync.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.events)

	var tick <-chan time.Time
	if w.opts.AutoSync {
		ticker := time.NewTicker(w.opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	w.log.Info(ctx, "sync worker started",
		"interval", w.opts.Interval, "auto_sync", w.opts.AutoSync)

	for {
		select {
		case <-ctx.Done():
			w.log.Info(ctx, "sync worker stopped", "reason", ctx.Err())
			return

		case cmd := <-w.cmds:
			switch cmd.kind {
			case cmdShutdown:
				w.log.Info(ctx, "sync worker stopped")
				return
			case cmdExchangeCode:
				w.exchangeCode(ctx, cmd.code)
			case cmdSyncNow:
				if !w.checkAuth(ctx) {
					continue
				}
				w.runSync(ctx)
			case cmdPushDirty:
				if !w.checkAuth(ctx) {
					continue
				}
				w.runPush(ctx)
			}

		case <-tick:
			if !w.checkAuth(ctx) {
				continue
			}
			w.runSync(ctx)
		}
	}
}

// checkAuth gates a pass. On failure it reports AuthRequired and the
// pass is skipped without a single remote call.
func (w *Worker) checkAuth(ctx context.Context) bool {
	if _, err := w.auth.EnsureAuthenticated(ctx); err != nil {
		w.log.Warn(ctx, "not authenticated, skipping pass", "error", err)
		w.emit(ctx, Event{Kind: AuthRequired})
		return false
	}
	return true
}

func (w *Worker) exchangeCode(ctx context.Context, code string) {
	if err := w.auth.ExchangeCode(ctx, code); err != nil {
		w.log.Error(ctx, "oauth exchange failed", "error", err)
		w.emit(ctx, Event{Kind: SyncError, Message: fmt.Sprintf("auth failed: %v", err)})
		return
	}

	w.emit(ctx, Event{Kind: AuthComplete})
	w.log.Info(ctx, "oauth exchange succeeded, starting sync")
	w.runSync(ctx)
}

func (w *Worker) runSync(ctx context.Context) {
	w.emit(ctx, Event{Kind: SyncStarted})

	pulled, pushed, errs := w.rec.FullSync(ctx)
	for _, err := range errs {
		w.emit(ctx, Event{Kind: SyncError, Message: err.Error()})
	}

	w.emit(ctx, Event{Kind: SyncComplete, Pulled: pulled, Pushed: pushed})
	w.log.Info(ctx, "sync finished", "pulled", pulled, "pushed", pushed, "errors", len(errs))
}

func (w *Worker) runPush(ctx context.Context) {
	pushed, errs := w.rec.PushDirty(ctx)
	for _, err := range errs {
		w.emit(ctx, Event{Kind: SyncError, Message: err.Error()})
	}
	w.log.Info(ctx, "push finished", "pushed", pushed, "errors", len(errs))
}

// emit never blocks: when the consumer is backed up the report is
// dropped rather than stalling a pass.
func (w *Worker) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	default:
		w.log.Warn(ctx, "event dropped, consumer backed up", "kind", ev.Kind.String())
	}
}
