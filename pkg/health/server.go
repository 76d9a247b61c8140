package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Serve runs the operational endpoints on addr until ctx is done, then
// shuts down gracefully. It blocks; run it in its own goroutine or errgroup.
func Serve(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Info("health server started", slog.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("health server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
