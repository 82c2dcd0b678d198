package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/draytht/lvsk-calendar-extended/internal/sync"
)

func (a *App) syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run a sync pass against Google",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Usage: "keep syncing on the configured interval until interrupted"},
		},
		Action: a.runSync,
	}
}

func (a *App) runSync(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watch := c.Bool("watch")

	worker, err := a.newWorker(ctx, watch && a.cfg.Sync.AutoSync)
	if err != nil {
		return err
	}
	stopWorker := startWorker(ctx, worker)
	defer stopWorker()

	worker.SyncNow()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-worker.Events():
			fprintWorkerEvent(c.App.Writer, ev)
			if watch {
				continue
			}
			switch ev.Kind {
			case sync.AuthRequired:
				return fmt.Errorf("not authenticated; run 'lvsk auth' first")
			case sync.SyncComplete:
				return nil
			}
		}
	}
}

func fprintWorkerEvent(w io.Writer, ev sync.Event) {
	switch ev.Kind {
	case sync.SyncStarted:
		fmt.Fprintln(w, "Syncing...")
	case sync.SyncComplete:
		fmt.Fprintf(w, "Sync complete: pulled %d, pushed %d.\n", ev.Pulled, ev.Pushed)
	case sync.SyncError:
		fmt.Fprintf(w, "Sync error: %s\n", ev.Message)
	case sync.AuthRequired:
		fmt.Fprintln(w, "Not authenticated. Run 'lvsk auth' first.")
	case sync.AuthComplete:
		fmt.Fprintln(w, "Authorization complete.")
	}
}
