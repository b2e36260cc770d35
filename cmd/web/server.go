package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/myrjola/surprise/internal/errors"
	"golang.org/x/sync/errgroup"
)

// defaultTimeout covers reading a selfie upload and waiting for the submission endpoint.
const defaultTimeout = 45 * time.Second

// configureAndStartServer serves the application on addr until ctx is cancelled and then shuts down gracefully.
func (app *application) configureAndStartServer(ctx context.Context, addr string) error {
	var err error
	idleTimeout := time.Minute
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(),
		IdleTimeout:       idleTimeout,
		ReadTimeout:       defaultTimeout,
		WriteTimeout:      defaultTimeout,
		ReadHeaderTimeout: time.Second,
	}

	var listener net.Listener
	if listener, err = net.Listen("tcp", addr); err != nil {
		return errors.Wrap(err, "TCP listen", slog.String("listen_addr", addr))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.String("addr", listener.Addr().String()))
		if serveErr := srv.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			return errors.Wrap(serveErr, "server serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second) //nolint:mnd // 5s
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			return errors.Wrap(shutdownErr, "shutdown server")
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		return errors.Wrap(err, "serve")
	}
	return nil
}
