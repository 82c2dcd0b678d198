package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
	"github.com/draytht/lvsk-calendar-extended/internal/google"
	"github.com/draytht/lvsk-calendar-extended/internal/sync"
)

// authTimeout bounds how long the command waits for the browser
// redirect.
const authTimeout = 5 * time.Minute

func (a *App) authCommand() *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize access to Google Calendar and Tasks",
		Action: a.runAuth,
	}
}

func (a *App) runAuth(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Google.ClientID == "" || a.cfg.Google.ClientSecret == "" {
		return fmt.Errorf("%w; set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET", common.ErrMissingClientCredentials)
	}
	oauthCfg := google.OAuthConfig(a.cfg.Google.ClientID, a.cfg.Google.ClientSecret)

	listener, err := google.NewCodeListener(google.CallbackAddr)
	if err != nil {
		return fmt.Errorf("failed to start the callback listener: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Open this link in your browser to authorize lvsk:\n\n%s\n\n", google.AuthURL(oauthCfg))
	fmt.Fprintf(c.App.Writer, "Waiting for the redirect on %s...\n", listener.Addr())

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	code, err := listener.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("authorization did not complete: %w", err)
	}

	// The code goes through the worker, which exchanges it and follows
	// up with a first full sync.
	worker, err := a.newWorker(ctx, false)
	if err != nil {
		return err
	}
	stopWorker := startWorker(ctx, worker)
	defer stopWorker()

	worker.ExchangeCode(code)

	authDone := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-worker.Events():
			fprintWorkerEvent(c.App.Writer, ev)
			switch ev.Kind {
			case sync.AuthComplete:
				authDone = true
			case sync.SyncError:
				// Before AuthComplete the only error is a failed
				// exchange; afterwards errors belong to the follow-up
				// sync and the pass still finishes.
				if !authDone {
					return errors.New(ev.Message)
				}
			case sync.SyncComplete:
				return nil
			}
		}
	}
}
