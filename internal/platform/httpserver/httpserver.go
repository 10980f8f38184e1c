package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"companion.local/internal/platform/config"
)

func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		Addr:              cfg.Addr,
	}
}

// TLSFiles names a certificate/key pair. The zero value serves plain HTTP.
type TLSFiles struct {
	CertFile string
	KeyFile  string
}

func (t TLSFiles) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// Check fails fast on unreadable certificate files instead of at first accept.
func (t TLSFiles) Check() error {
	if !t.Enabled() {
		return nil
	}
	for _, f := range []string{t.CertFile, t.KeyFile} {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("tls file: %w", err)
		}
	}
	return nil
}

func RunWithGracefulShutdown(srv *http.Server, tls TLSFiles, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunWithGracefulShutdownContext(srv, tls, shutdownTimeout, ctx)
}

func RunWithGracefulShutdownContext(srv *http.Server, tls TLSFiles, shutdownTimeout time.Duration, stopCtx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if tls.Enabled() {
			errCh <- srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	return nil
}
