package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// CodeListener is a one-shot local HTTP server that captures the
// authorization code Google appends to the redirect URI.
type CodeListener struct {
	ln    net.Listener
	srv   *http.Server
	codes chan string
	errs  chan error
}

// NewCodeListener binds addr right away so the browser redirect cannot
// race the accept loop.
func NewCodeListener(addr string) (*CodeListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for oauth callback: %w", err)
	}

	l := &CodeListener{
		ln:    ln,
		codes: make(chan string, 1),
		errs:  make(chan error, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", l.handleCallback)
	l.srv = &http.Server{Handler: mux}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case l.errs <- err:
			default:
			}
		}
	}()

	return l, nil
}

func (l *CodeListener) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h2>Authorized! You can close this tab.</h2></body></html>")

	select {
	case l.codes <- code:
	default:
	}
}

// Addr returns the bound address, useful when the listener was started
// on port 0.
func (l *CodeListener) Addr() string {
	return l.ln.Addr().String()
}

// Wait blocks until a code arrives, the server fails, or ctx is done.
// The listener is shut down before returning.
func (l *CodeListener) Wait(ctx context.Context) (string, error) {
	defer l.Close()

	select {
	case code := <-l.codes:
		return code, nil
	case err := <-l.errs:
		return "", fmt.Errorf("oauth callback server: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close shuts the server down. Safe to call more than once.
func (l *CodeListener) Close() error {
	return l.srv.Close()
}
