// Package cli wires the lvsk command line front end: configuration,
// logging, storage, and the sync worker behind the auth, sync, events,
// and tasks commands.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/draytht/lvsk-calendar-extended/internal/auth"
	"github.com/draytht/lvsk-calendar-extended/internal/config"
	"github.com/draytht/lvsk-calendar-extended/internal/filex"
	"github.com/draytht/lvsk-calendar-extended/internal/google"
	"github.com/draytht/lvsk-calendar-extended/internal/logging"
	"github.com/draytht/lvsk-calendar-extended/internal/services"
	"github.com/draytht/lvsk-calendar-extended/internal/storage"
	"github.com/draytht/lvsk-calendar-extended/internal/sync"
)

// App carries the runtime built once per invocation and shared by every
// command.
type App struct {
	cfg   *config.Config
	log   logging.Logger
	store *storage.Storage

	events services.EventService
	tasks  services.TaskService
}

// New builds the lvsk command tree.
func New() *cli.App {
	a := &App{}

	return &cli.App{
		Name:    "lvsk",
		Usage:   "Offline-first calendar and tasks with Google sync.",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "config file `PATH` (default: <user config dir>/lvsk/config.toml)"},
			&cli.StringFlag{Name: "db", Usage: "database file `PATH`, overrides the config"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Before: a.setup,
		After:  a.teardown,
		Commands: []*cli.Command{
			a.authCommand(),
			a.syncCommand(),
			a.eventsCommand(),
			a.tasksCommand(),
		},
	}
}

func (a *App) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}

	a.cfg = cfg
	a.log = logging.Setup(cfg.Log.Level, cfg.Log.File)

	if err := filex.EnsureDir(filepath.Dir(cfg.DBPath)); err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	store, err := storage.Open(c.Context, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	a.store = store
	a.events = services.NewEventService(store.DB, store.Events, a.log)
	a.tasks = services.NewTaskService(store.DB, store.Tasks, a.log)
	return nil
}

func (a *App) teardown(c *cli.Context) error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// newWorker assembles the sync pipeline: token manager over the stored
// credential, remote client on its token source, reconciler, worker.
func (a *App) newWorker(ctx context.Context, autoSync bool) (*sync.Worker, error) {
	oauthCfg := google.OAuthConfig(a.cfg.Google.ClientID, a.cfg.Google.ClientSecret)
	manager := auth.NewManager(oauthCfg, a.store.Credentials, a.log)

	remote, err := google.NewService(ctx, manager.TokenSource(ctx), a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to build remote client: %w", err)
	}

	rec := sync.NewReconciler(remote, a.store.Events, a.store.Tasks,
		a.cfg.Google.CalendarIDs, a.cfg.Google.TaskListIDs, a.log)

	return sync.NewWorker(rec, manager, a.log, sync.Options{
		Interval: a.cfg.Sync.Interval(),
		AutoSync: autoSync,
	}), nil
}

// startWorker runs the worker loop in the background. The returned stop
// function cancels the loop and blocks until it has exited and closed
// the event stream.
func startWorker(ctx context.Context, w *sync.Worker) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}
